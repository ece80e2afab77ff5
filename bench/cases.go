package bench

import (
	"math/rand/v2"

	"github.com/fysac/wellrand/rand/musl"
	"github.com/fysac/wellrand/rand/well"
	uclibc "github.com/fysac/wellrand/uclibc/rand"
)

// Source32 is any generator of full 32-bit words.
type Source32 interface {
	Uint32() uint32
}

// Baseline gives a word source the extraction operations with one word
// per call and no bit cache.
type Baseline struct {
	src Source32
}

func NewBaseline(src Source32) *Baseline {
	return &Baseline{src: src}
}

func (b *Baseline) Rand(includeNegative bool) int32 {
	w := b.src.Uint32()
	if includeNegative {
		return int32(w)
	}
	return int32(w & well.PositiveMask)
}

func (b *Baseline) Random(includeNegative bool) float64 {
	return float64(b.Rand(includeNegative)) * well.Scale
}

func (b *Baseline) RandInt(lo, hi int) int {
	if lo > hi {
		panic("bench: invalid argument to RandInt")
	}
	v := uint64(b.Rand(false))
	if n := uint64(hi) - uint64(lo) + 1; n != 0 {
		v %= n
	}
	return lo + int(v)
}

func (b *Baseline) RandBits(bits uint) uint32 {
	return b.src.Uint32() & (uint32(1)<<bits - 1)
}

// Cases returns the standard line-up. Worker w of every case is seeded
// with seed+w.
func Cases(seed uint32) []Case {
	return []Case{
		{Name: "well", New: func(w int) Generator {
			return well.NewFromUint32(seed + uint32(w))
		}},
		{Name: "uclibc", New: func(w int) Generator {
			return NewBaseline(uclibc.Srand(seed + uint32(w)))
		}},
		{Name: "musl", New: func(w int) Generator {
			return NewBaseline(musl.New(seed + uint32(w)))
		}},
		{Name: "pcg", New: func(w int) Generator {
			return NewBaseline(rand.New(rand.NewPCG(uint64(seed), uint64(w))))
		}},
	}
}

// SharedCase hands one locked generator to every worker, to measure the
// cost of contention against per-worker instances.
func SharedCase(seed uint32) Case {
	shared := well.NewLocked(well.NewFromUint32(seed))
	return Case{Name: "well-locked", New: func(int) Generator { return shared }}
}
