package well

import (
	"encoding/binary"
	"math/rand"
)

const maxInt63 = 1<<63 - 1

var _ rand.Source64 = (*Generator)(nil)

func (g *Generator) Uint32() uint32 {
	return g.next()
}

// Uint64 joins two consecutive words, the first one high.
func (g *Generator) Uint64() uint64 {
	return uint64(g.next())<<32 | uint64(g.next())
}

func (g *Generator) Int63() int64 {
	return int64(g.Uint64() & maxInt63)
}

func (g *Generator) Float64() float64 {
	return g.Random(false)
}

// Seed resets the generator to the state expanded from seed, as
// NewFromUint32 does for 32-bit seeds.
func (g *Generator) Seed(seed int64) {
	// Length is always StateSize.
	_ = g.SetState(expand(uint64(seed)), 0)
}

// Read fills p with consecutive words in little-endian order. A trailing
// partial word is truncated. It never returns an error.
func (g *Generator) Read(p []byte) (n int, err error) {
	n = len(p)
	for len(p) >= 4 {
		binary.LittleEndian.PutUint32(p, g.next())
		p = p[4:]
	}
	if len(p) > 0 {
		var last [4]byte
		binary.LittleEndian.PutUint32(last[:], g.next())
		copy(p, last[:])
	}
	return n, nil
}
