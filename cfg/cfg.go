package cfg

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/fysac/wellrand/rand/well"
	"github.com/tidwall/gjson"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

const (
	// A draw without an explicit count produces one value.
	defaultCount = 1

	// Upper bound on values per draw, keeps a typo from exhausting memory.
	maxCount = 1 << 20
)

var (
	ErrSyntax      = errors.New("invalid json")
	ErrSeedSource  = errors.New("exactly one of seed, seed32 or passphrase is required")
	ErrInvalidWord = errors.New("invalid seed word")
	ErrInvalidDraw = errors.New("invalid draw")
)

// Draw describes one named series of values taken from the generator.
type Draw struct {
	Op       string `json:"op"`
	Negative bool   `json:"negative,omitempty"`
	Min      int    `json:"min,omitempty"`
	Max      int    `json:"max,omitempty"`
	Bits     uint   `json:"bits,omitempty"`
	Count    int    `json:"count,omitempty"`

	op Op
}

// Plan is a seed plus draws that run in document order. Two parties
// loading the same plan get the same output.
type Plan struct {
	Seed    []uint32
	Pointer int
	Draws   *orderedmap.OrderedMap[string, Draw]
}

func Load(b []byte) (*Plan, error) {
	if !gjson.ValidBytes(b) {
		return nil, ErrSyntax
	}
	doc := gjson.ParseBytes(b)
	if !doc.IsObject() {
		return nil, fmt.Errorf("%w: plan must be an object", ErrSyntax)
	}

	seed, err := parseSeed(doc)
	if err != nil {
		return nil, err
	}
	pointer, err := parsePointer(doc.Get("pointer"))
	if err != nil {
		return nil, err
	}
	plan := &Plan{
		Seed:    seed,
		Pointer: pointer,
		Draws:   orderedmap.New[string, Draw](),
	}

	draws := doc.Get("draws")
	if !draws.Exists() {
		return plan, nil
	}
	if !draws.IsObject() {
		return nil, fmt.Errorf("%w: draws must be an object", ErrInvalidDraw)
	}
	// A repeated name would silently replace the earlier draw and shift
	// every value after it.
	seen := make(map[string]bool)
	var dupErr error
	draws.ForEach(func(key, _ gjson.Result) bool {
		if seen[key.String()] {
			dupErr = fmt.Errorf("%w: duplicate draw %q", ErrInvalidDraw, key.String())
			return false
		}
		seen[key.String()] = true
		return true
	})
	if dupErr != nil {
		return nil, dupErr
	}
	if err := plan.Draws.UnmarshalJSON([]byte(draws.Raw)); err != nil {
		return nil, fmt.Errorf("draws: %w", err)
	}
	for pair := plan.Draws.Oldest(); pair != nil; pair = pair.Next() {
		d, err := resolve(pair.Value)
		if err != nil {
			return nil, fmt.Errorf("draw %q: %w", pair.Key, err)
		}
		pair.Value = d
	}
	return plan, nil
}

// Generator returns a fresh generator positioned at the plan's seed.
func (p *Plan) Generator() (*well.Generator, error) {
	g, err := well.New(p.Seed)
	if err != nil {
		return nil, err
	}
	if err := g.SetState(p.Seed, p.Pointer); err != nil {
		return nil, err
	}
	return g, nil
}

// Run executes every draw against g and returns the values as an
// indented JSON object keyed by draw name.
func (p *Plan) Run(g *well.Generator) ([]byte, error) {
	out := orderedmap.New[string, []any]()
	for pair := p.Draws.Oldest(); pair != nil; pair = pair.Next() {
		d := pair.Value
		values := make([]any, 0, d.Count)
		for i := 0; i < d.Count; i++ {
			values = append(values, d.next(g))
		}
		out.Set(pair.Key, values)
	}
	return indent(out)
}

// SeedJSON renders a state vector as a plan that Load accepts.
func SeedJSON(state []uint32, pointer int) ([]byte, error) {
	words := make([]string, len(state))
	for i, w := range state {
		words[i] = fmt.Sprintf("0x%08x", w)
	}
	doc := orderedmap.New[string, any]()
	doc.Set("seed", words)
	doc.Set("pointer", pointer)
	return indent(doc)
}

func (d Draw) next(g *well.Generator) any {
	switch d.op {
	case OpRandom:
		return g.Random(d.Negative)
	case OpInt:
		return g.RandInt(d.Min, d.Max)
	case OpBits:
		return g.RandBits(d.Bits)
	default:
		return g.Rand(d.Negative)
	}
}

func resolve(d Draw) (Draw, error) {
	op, ok := Ops()[d.Op]
	if !ok {
		return d, fmt.Errorf("%w: unknown op %q", ErrInvalidDraw, d.Op)
	}
	d.op = op

	if d.Count == 0 {
		d.Count = defaultCount
	}
	if d.Count < 0 || d.Count > maxCount {
		return d, fmt.Errorf("%w: count %d out of range", ErrInvalidDraw, d.Count)
	}
	switch op {
	case OpInt:
		if d.Min > d.Max {
			return d, fmt.Errorf("%w: min %d > max %d", ErrInvalidDraw, d.Min, d.Max)
		}
	case OpBits:
		if d.Bits < 1 || d.Bits > 31 {
			return d, fmt.Errorf("%w: bits must be between 1 and 31, got %d", ErrInvalidDraw, d.Bits)
		}
	}
	return d, nil
}

func parseSeed(doc gjson.Result) ([]uint32, error) {
	seed := doc.Get("seed")
	seed32 := doc.Get("seed32")
	passphrase := doc.Get("passphrase")

	sources := 0
	for _, r := range []gjson.Result{seed, seed32, passphrase} {
		if r.Exists() {
			sources++
		}
	}
	if sources != 1 {
		return nil, ErrSeedSource
	}

	switch {
	case seed32.Exists():
		w, err := parseWord(seed32)
		if err != nil {
			return nil, fmt.Errorf("seed32: %w", err)
		}
		return well.Expand(w), nil
	case passphrase.Exists():
		return well.FromPassphrase(passphrase.String(), doc.Get("salt").String()), nil
	}

	if !seed.IsArray() {
		return nil, fmt.Errorf("seed: %w: not an array", ErrInvalidWord)
	}
	elems := seed.Array()
	if len(elems) != well.StateSize {
		return nil, fmt.Errorf("seed: %w: got %d words, want %d", well.ErrInvalidStateLength, len(elems), well.StateSize)
	}
	words := make([]uint32, len(elems))
	for i, r := range elems {
		w, err := parseWord(r)
		if err != nil {
			return nil, fmt.Errorf("seed[%d]: %w", i, err)
		}
		words[i] = w
	}
	return words, nil
}

// parsePointer accepts any integer; SetState reduces it modulo StateSize.
func parsePointer(r gjson.Result) (int, error) {
	if !r.Exists() {
		return 0, nil
	}
	if r.Type != gjson.Number || float64(r.Int()) != r.Num {
		return 0, fmt.Errorf("pointer: %w: %s is not an integer", ErrInvalidWord, r.Raw)
	}
	return int(r.Int()), nil
}

// parseWord accepts a signed or unsigned 32-bit number, or a string in
// any base strconv understands ("0x..." for hex).
func parseWord(r gjson.Result) (uint32, error) {
	var v int64
	switch r.Type {
	case gjson.Number:
		v = r.Int()
		if float64(v) != r.Num {
			return 0, fmt.Errorf("%w: %s is not an integer", ErrInvalidWord, r.Raw)
		}
	case gjson.String:
		var err error
		v, err = strconv.ParseInt(r.Str, 0, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidWord, r.Str)
		}
	default:
		return 0, fmt.Errorf("%w: %s", ErrInvalidWord, r.Raw)
	}
	if v < math.MinInt32 || v > math.MaxUint32 {
		return 0, fmt.Errorf("%w: %d does not fit in 32 bits", ErrInvalidWord, v)
	}
	return uint32(v), nil
}

func indent(m json.Marshaler) ([]byte, error) {
	b, err := m.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err = json.Indent(&buf, b, "", "\t"); err != nil {
		return nil, err
	}
	buf.WriteString("\n")
	return buf.Bytes(), nil
}
