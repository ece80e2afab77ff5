// musl libc random number generator
// Derived from src/prng/rand.c

package musl

// Source holds the 64-bit LCG state that musl keeps in a static.
type Source struct {
	state uint64
}

func New(seed uint32) *Source {
	s := &Source{}
	s.Srand(seed)
	return s
}

func (s *Source) Srand(seed uint32) {
	s.state = uint64(seed - 1)
}

// Rand matches rand(3): 31 bits taken from the top of the state.
func (s *Source) Rand() int32 {
	s.state = 6364136223846793005*s.state + 1
	return int32(s.state >> 33)
}

// Uint32 spreads two outputs over a full word, high half first.
func (s *Source) Uint32() uint32 {
	hi := uint32(s.Rand()) >> 15
	lo := uint32(s.Rand()) >> 15
	return hi<<16 | lo
}
