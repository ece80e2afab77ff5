package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/fysac/wellrand/bench"
	"github.com/fysac/wellrand/cfg"
	"github.com/fysac/wellrand/rand/well"
	"github.com/rcrowley/go-metrics"
	"github.com/rs/zerolog"
)

const usage = `usage: wellrand <command> [flags]

commands:
  draw   run a JSON draw plan and print the values
  seed   print a seed plan (random unless -seed32 or -passphrase is given)
  bench  compare WELL1024a with baseline generators
`

var errUsage = errors.New("usage")

func main() {
	l := zerolog.New(zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
		w.Out = os.Stderr
		w.TimeFormat = "15:04:05.000"
	})).With().Timestamp().Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := run(ctx, os.Stdout, os.Args[1:], &l)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if errors.Is(err, errUsage) {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "wellrand: %v\n", err)
		os.Exit(2)
	}
}

func run(ctx context.Context, stdout io.Writer, args []string, l *zerolog.Logger) error {
	if len(args) == 0 {
		return errUsage
	}
	cmd, args := args[0], args[1:]
	switch cmd {
	case "draw":
		return draw(stdout, args)
	case "seed":
		return seed(stdout, args)
	case "bench":
		return runBench(ctx, stdout, args, l)
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
}

func draw(stdout io.Writer, args []string) error {
	fs := flag.NewFlagSet("draw", flag.ContinueOnError)
	planFile := fs.String("plan", "", "draw plan to run (required)")
	out := fs.String("out", "", "output file (default: stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *planFile == "" {
		fs.Usage()
		return errors.New("draw needs a plan file")
	}
	b, err := os.ReadFile(*planFile)
	if err != nil {
		return err
	}
	plan, err := cfg.Load(b)
	if err != nil {
		return fmt.Errorf("%v: %w", getAbsPath(*planFile), err)
	}
	g, err := plan.Generator()
	if err != nil {
		return err
	}
	values, err := plan.Run(g)
	if err != nil {
		return err
	}
	return output(stdout, *out, values)
}

func seed(stdout io.Writer, args []string) error {
	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	seed32 := fs.String("seed32", "", "expand a 32-bit seed instead of seeding randomly")
	passphrase := fs.String("passphrase", "", "derive the seed from a shared passphrase")
	salt := fs.String("salt", "", "salt for -passphrase")
	out := fs.String("out", "", "output file (default: stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var g *well.Generator
	switch {
	case *seed32 != "" && *passphrase != "":
		fs.Usage()
		return errors.New("-seed32 and -passphrase are mutually exclusive")
	case *seed32 != "":
		v, err := strconv.ParseUint(*seed32, 0, 32)
		if err != nil {
			return err
		}
		g = well.NewFromUint32(uint32(v))
	case *passphrase != "":
		var err error
		g, err = well.New(well.FromPassphrase(*passphrase, *salt))
		if err != nil {
			return err
		}
	default:
		g = well.NewRandom()
	}

	b, err := cfg.SeedJSON(g.State(), g.Pointer())
	if err != nil {
		return err
	}
	return output(stdout, *out, b)
}

func runBench(ctx context.Context, stdout io.Writer, args []string, l *zerolog.Logger) error {
	fs := flag.NewFlagSet("bench", flag.ContinueOnError)
	iterations := fs.Int("n", 1_000_000, "calls per case and op")
	workers := fs.Int("workers", runtime.NumCPU(), "number of worker goroutines")
	batchSize := fs.Int("batch", 1024, "calls per timed batch")
	benchSeed := fs.Uint("seed", 1, "base seed; worker w uses seed+w")
	shared := fs.Bool("shared", false, "also run one locked WELL generator shared by all workers")
	out := fs.String("out", "", "CSV results file (default: stdout)")
	verbose := fs.Bool("v", false, "log progress and dump metrics")
	if err := fs.Parse(args); err != nil {
		return err
	}

	level := zerolog.InfoLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	logger := l.Level(level)

	cases := bench.Cases(uint32(*benchSeed))
	if *shared {
		cases = append(cases, bench.SharedCase(uint32(*benchSeed)))
	}
	registry := metrics.NewRegistry()
	logger.Info().Int("n", *iterations).Int("workers", *workers).Int("cases", len(cases)).Msg("starting benchmark")

	results, err := bench.Run(ctx, cases, bench.Options{
		Iterations: *iterations,
		Workers:    *workers,
		BatchSize:  *batchSize,
		Registry:   registry,
		Logger:     &logger,
	})
	if *verbose {
		metrics.WriteOnce(registry, os.Stderr)
	}
	if err != nil && len(results) == 0 {
		return err
	}
	if err != nil {
		logger.Warn().Err(err).Int("results", len(results)).Msg("benchmark interrupted, writing partial results")
	}

	var buf bytes.Buffer
	if err := bench.WriteCSV(&buf, results); err != nil {
		return err
	}
	return output(stdout, *out, buf.Bytes())
}

func output(stdout io.Writer, name string, b []byte) error {
	if name == "" {
		_, err := stdout.Write(b)
		return err
	}
	if err := writeFileNoTrunc(name, b); err != nil {
		return err
	}
	fmt.Fprintln(os.Stderr, "Wrote", getAbsPath(name))
	return nil
}

func getAbsPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		panic(err)
	}
	return abs
}

func writeFileNoTrunc(name string, b []byte) error {
	f, err := os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return err
	}
	if _, err = f.Write(b); err != nil {
		return err
	}
	return f.Close()
}
