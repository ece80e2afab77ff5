// Package bench compares generators through the four extraction
// operations. Each worker owns its generator unless a case says otherwise.
package bench

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	"github.com/rcrowley/go-metrics"
	"github.com/rs/zerolog"
)

// Generator is the extraction surface shared by well.Generator,
// well.Locked and Baseline.
type Generator interface {
	Rand(includeNegative bool) int32
	Random(includeNegative bool) float64
	RandInt(a, b int) int
	RandBits(bits uint) uint32
}

type Op string

const (
	OpRand     Op = "rand"
	OpRandom   Op = "random"
	OpRandInt  Op = "randint"
	OpRandBits Op = "randbits"
)

var AllOps = []Op{OpRand, OpRandom, OpRandInt, OpRandBits}

var (
	ErrNoCases        = errors.New("no cases to run")
	ErrInvalidOptions = errors.New("invalid options")
)

// Case names a generator family. New is called once per worker.
type Case struct {
	Name string
	New  func(worker int) Generator
}

type Options struct {
	Iterations int
	Workers    int
	BatchSize  int
	Ops        []Op

	// Arguments for RandInt and RandBits.
	Min, Max int
	Bits     uint

	// Optional. Metrics are registered as "<case>.<op>.ops" and
	// "<case>.<op>.batch".
	Registry metrics.Registry
	Logger   *zerolog.Logger
}

type Result struct {
	Case      string
	Op        Op
	Count     int64
	Elapsed   time.Duration
	MeanRate  float64
	BatchMean float64
	BatchP99  float64
	Checksum  uint64
}

func (o *Options) setDefaults() error {
	if o.Iterations == 0 {
		o.Iterations = 1_000_000
	}
	if o.Workers == 0 {
		o.Workers = 1
	}
	if o.BatchSize == 0 {
		o.BatchSize = 1024
	}
	if len(o.Ops) == 0 {
		o.Ops = AllOps
	}
	if o.Min == 0 && o.Max == 0 {
		o.Min, o.Max = 1, 6
	}
	if o.Bits == 0 {
		o.Bits = 3
	}
	if o.Logger == nil {
		nop := zerolog.Nop()
		o.Logger = &nop
	}

	switch {
	case o.Iterations < 0, o.Workers < 0, o.BatchSize < 0:
		return fmt.Errorf("%w: iterations, workers and batch size must be positive", ErrInvalidOptions)
	case o.Min > o.Max:
		return fmt.Errorf("%w: min %d > max %d", ErrInvalidOptions, o.Min, o.Max)
	case o.Bits > 31:
		return fmt.Errorf("%w: bits must be between 1 and 31, got %d", ErrInvalidOptions, o.Bits)
	}
	for _, op := range o.Ops {
		if !validOp(op) {
			return fmt.Errorf("%w: unknown op %q", ErrInvalidOptions, op)
		}
	}
	return nil
}

func validOp(op Op) bool {
	for _, o := range AllOps {
		if o == op {
			return true
		}
	}
	return false
}

// Run measures every op of every case in turn. It stops at the first
// batch boundary after ctx is done and returns the results so far along
// with ctx.Err().
func Run(ctx context.Context, cases []Case, opts Options) ([]Result, error) {
	if len(cases) == 0 {
		return nil, ErrNoCases
	}
	if err := opts.setDefaults(); err != nil {
		return nil, err
	}

	var results []Result
	for _, c := range cases {
		for _, op := range opts.Ops {
			if err := ctx.Err(); err != nil {
				return results, err
			}
			res := runOp(ctx, c, op, &opts)
			results = append(results, res)
			opts.Logger.Info().
				Str("case", c.Name).
				Str("op", string(op)).
				Int64("count", res.Count).
				Str("elapsed", res.Elapsed.String()).
				Float64("rate", res.MeanRate).
				Msg("done")
		}
	}
	return results, ctx.Err()
}

func runOp(ctx context.Context, c Case, op Op, opts *Options) Result {
	ops := metrics.NewMeter()
	defer ops.Stop()
	batches := metrics.NewHistogram(metrics.NewUniformSample(1028))
	if opts.Registry != nil {
		prefix := c.Name + "." + string(op)
		opts.Registry.Unregister(prefix + ".ops")
		opts.Registry.Unregister(prefix + ".batch")
		opts.Registry.Register(prefix+".ops", ops)
		opts.Registry.Register(prefix+".batch", batches)
	}

	done := make(chan struct{})
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	go func() {
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				opts.Logger.Debug().
					Str("case", c.Name).
					Str("op", string(op)).
					Int64("count", ops.Count()).
					Float64("m1_rate", ops.Rate1()).
					Float64("mean_rate", ops.RateMean()).
					Msg("progress")
			}
		}
	}()

	sums := make([]uint64, opts.Workers)
	start := time.Now()
	var wg sync.WaitGroup
	for w := 0; w < opts.Workers; w++ {
		n := opts.Iterations / opts.Workers
		if w == 0 {
			n += opts.Iterations % opts.Workers
		}
		wg.Add(1)
		go func(worker, n int) {
			defer wg.Done()
			g := c.New(worker)
			var sum uint64
			for n > 0 && ctx.Err() == nil {
				batch := opts.BatchSize
				if batch > n {
					batch = n
				}
				t := time.Now()
				for i := 0; i < batch; i++ {
					sum += call(g, op, opts)
				}
				batches.Update(int64(time.Since(t)))
				ops.Mark(int64(batch))
				n -= batch
			}
			sums[worker] = sum
		}(w, n)
	}
	wg.Wait()
	close(done)

	res := Result{
		Case:      c.Name,
		Op:        op,
		Count:     ops.Count(),
		Elapsed:   time.Since(start),
		BatchMean: batches.Mean(),
		BatchP99:  batches.Percentile(0.99),
	}
	if secs := res.Elapsed.Seconds(); secs > 0 {
		res.MeanRate = float64(res.Count) / secs
	}
	for _, s := range sums {
		res.Checksum += s
	}
	return res
}

// call returns the drawn value as bits so workers can fold it into a sum.
func call(g Generator, op Op, opts *Options) uint64 {
	switch op {
	case OpRand:
		return uint64(uint32(g.Rand(true)))
	case OpRandom:
		return math.Float64bits(g.Random(false))
	case OpRandInt:
		return uint64(g.RandInt(opts.Min, opts.Max))
	default:
		return uint64(g.RandBits(opts.Bits))
	}
}

func WriteCSV(w io.Writer, results []Result) error {
	records := [][]string{{"case", "op", "count", "elapsed_ns", "mean_rate", "batch_mean_ns", "batch_p99_ns", "checksum"}}
	for _, r := range results {
		records = append(records, []string{
			r.Case,
			string(r.Op),
			fmt.Sprintf("%d", r.Count),
			fmt.Sprintf("%d", r.Elapsed.Nanoseconds()),
			fmt.Sprintf("%.6f", r.MeanRate),
			fmt.Sprintf("%.6f", r.BatchMean),
			fmt.Sprintf("%.6f", r.BatchP99),
			fmt.Sprintf("%016x", r.Checksum),
		})
	}
	writer := csv.NewWriter(w)
	if err := writer.WriteAll(records); err != nil {
		return err
	}
	writer.Flush()
	return writer.Error()
}
