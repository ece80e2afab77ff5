// Implements the WELL1024a generator of Panneton, L'Ecuyer and Matsumoto.
// Output is bit-for-bit reproducible from a 32-word state and a pointer,
// so independent processes seeded alike derive the same sequence.
//
// The generator is not cryptographically secure. A Generator must not be
// used from several goroutines at once; see Locked.

package well

import (
	"errors"
	"fmt"
	"math/rand/v2"
)

const (
	// Number of 32-bit words in the state vector.
	StateSize = 32

	// Multiplier mapping Rand output onto floats.
	// The same constant is applied to signed draws, see Random.
	Scale = 1.0 / (1<<31 - 1)

	// Clears the sign bit of a raw word.
	PositiveMask = 0x7fffffff

	// Bit width of one raw word, and the "cache empty" offset.
	wordBits = 32
)

var ErrInvalidStateLength = errors.New("invalid state length")

// Generator is a WELL1024a stream. The zero value is not usable: obtain
// one from New, NewFromUint32 or NewRandom.
type Generator struct {
	state [StateSize]uint32
	i     int

	// Leftover bits of the last word drawn by RandBits.
	bitWord uint32
	bitOff  uint
}

// New returns a generator seeded with exactly StateSize words.
func New(seed []uint32) (*Generator, error) {
	g := &Generator{bitOff: wordBits}
	if err := g.SetState(seed, 0); err != nil {
		return nil, err
	}
	return g, nil
}

// NewRandom seeds a generator from the math/rand/v2 global source. The
// resulting sequence cannot be reproduced unless State is saved first.
func NewRandom() *Generator {
	g := &Generator{bitOff: wordBits}
	for i := range g.state {
		g.state[i] = uint32(rand.Float64() * (1 << wordBits))
	}
	return g
}

// State returns a copy of the state vector.
func (g *Generator) State() []uint32 {
	state := make([]uint32, StateSize)
	copy(state, g.state[:])
	return state
}

func (g *Generator) Pointer() int {
	return g.i
}

// SetState replaces the state vector with a copy of state and moves the
// pointer to pointer mod StateSize. Cached bits are discarded. If state
// is not StateSize words long the generator is left untouched.
func (g *Generator) SetState(state []uint32, pointer int) error {
	if len(state) != StateSize {
		return fmt.Errorf("%w: got %d words, want %d", ErrInvalidStateLength, len(state), StateSize)
	}
	copy(g.state[:], state)
	g.i = ((pointer % StateSize) + StateSize) % StateSize
	g.bitWord = 0
	g.bitOff = wordBits
	return nil
}

// next advances the recurrence by one word and returns it.
func (g *Generator) next() uint32 {
	s := &g.state
	n := g.i

	z0 := s[(n+31)%StateSize]
	a := s[(n+3)%StateSize]
	b := s[(n+24)%StateSize]
	c := s[(n+10)%StateSize]

	// a is shifted as a signed word: the sign bit must be replicated.
	z1 := z0 ^ (a ^ uint32(int32(a)>>8))
	z2 := b ^ b<<19 ^ c ^ c<<14
	s[n] = z1 ^ z2

	n = (n + 31) % StateSize
	s[n] = z0 ^ z0<<11 ^ z1 ^ z1<<7 ^ z2 ^ z2<<13
	g.i = n
	return s[n]
}

// Rand returns the next word. With includeNegative the full signed word
// is returned, otherwise the sign bit is cleared.
func (g *Generator) Rand(includeNegative bool) int32 {
	raw := g.next()
	if includeNegative {
		return int32(raw)
	}
	return int32(raw & PositiveMask)
}

// Random returns Rand(includeNegative) * Scale: [0, 1] without
// includeNegative, roughly [-1, 1] with it. The signed range is not
// symmetric since both branches share one scale.
func (g *Generator) Random(includeNegative bool) float64 {
	return float64(g.Rand(includeNegative)) * Scale
}

// RandInt returns an integer in [a, b] by reducing a 31-bit draw modulo
// the span, keeping the low-order bias of the reduction. It panics if a > b.
func (g *Generator) RandInt(a, b int) int {
	if a > b {
		panic("well: invalid argument to RandInt")
	}
	v := uint64(g.Rand(false))
	// n wraps to zero only when [a, b] covers every uint64.
	if n := uint64(b) - uint64(a) + 1; n != 0 {
		v %= n
	}
	return a + int(v)
}

// RandBits returns an integer in [0, 2^bits). Successive calls slice one
// raw word until it runs out of bits; unused high bits are dropped when a
// wider request forces a refill. It panics unless 1 <= bits <= 31.
func (g *Generator) RandBits(bits uint) uint32 {
	if bits < 1 || bits >= wordBits {
		panic("well: invalid argument to RandBits")
	}
	mask := uint32(1)<<bits - 1

	unshift := g.bitOff
	if g.bitOff+bits > wordBits {
		g.bitWord = uint32(g.Rand(true))
		g.bitOff = bits
		unshift = 0
	} else {
		g.bitOff += bits
	}
	return (g.bitWord >> unshift) & mask
}
