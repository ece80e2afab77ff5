package well

import (
	"bytes"
	"io"
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpand(t *testing.T) {
	tests := []struct {
		seed uint32
		want []uint32
	}{
		{0, []uint32{0xe220a839, 0x7b1dcdaf, 0x6e789e6a, 0xa1b965f4}},
		{42, []uint32{0xbdd73226, 0x2feb6e95, 0x28efe333, 0xb266f103}},
	}
	for _, test := range tests {
		state := Expand(test.seed)
		require.Len(t, state, StateSize)
		assert.Equal(t, test.want, state[:len(test.want)], "seed %d", test.seed)
	}
}

func TestNewFromUint32(t *testing.T) {
	g := NewFromUint32(42)
	want := []int32{780680065, 1371888924, 2039686191, 1997372960, 101566145, -358594474}
	for i, w := range want {
		if got := g.Rand(true); got != w {
			t.Fatalf("draw %d: got %d, want %d", i, got, w)
		}
	}
}

func TestFromPassphrase(t *testing.T) {
	state := FromPassphrase("correct horse", "")
	require.Len(t, state, StateSize)
	assert.Equal(t, []uint32{0x83d959ed, 0x5c273d59, 0x6d787036, 0x91ed196a}, state[:4])
	assert.NotEqual(t, state, FromPassphrase("correct horse", "battery"))
}

func TestUint64(t *testing.T) {
	g := newSequential(t)
	assert.Equal(t, uint64(6397805370198210065), g.Uint64())
}

func TestInt63(t *testing.T) {
	g := NewFromUint32(3)
	for i := 0; i < 1000; i++ {
		if v := g.Int63(); v < 0 {
			t.Fatalf("Int63() = %d", v)
		}
	}
}

func TestRead(t *testing.T) {
	g := newSequential(t)
	p := make([]byte, 8)
	n, err := g.Read(p)
	require.NoError(t, err)
	assert.Equal(t, 8, n)
	assert.Equal(t, []byte{22, 146, 201, 88, 17, 54, 192, 80}, p)

	// A partial word consumes a whole one.
	g = newSequential(t)
	p = make([]byte, 5)
	_, err = io.ReadFull(g, p)
	require.NoError(t, err)
	assert.Equal(t, []byte{22, 146, 201, 88, 17}, p)
	assert.Equal(t, uint32(1220115996), g.Uint32())
}

func TestSeed(t *testing.T) {
	g := newSequential(t)
	g.RandBits(5)
	g.Seed(42)
	assert.Equal(t, Expand(42), g.State())
	assert.Equal(t, 0, g.Pointer())

	// Seeds are not truncated to 32 bits.
	g.Seed(1 << 40)
	assert.NotEqual(t, Expand(0), g.State())
}

func TestMathRandSource(t *testing.T) {
	a := rand.New(NewFromUint32(5))
	b := rand.New(NewFromUint32(5))
	for i := 0; i < 100; i++ {
		require.Equal(t, a.Intn(1000), b.Intn(1000))
	}

	r := rand.New(NewFromUint32(6))
	r.Seed(6)
	assert.Equal(t, rand.New(NewFromUint32(6)).Uint64(), r.Uint64())
}

func TestLocked(t *testing.T) {
	l := NewLocked(NewFromUint32(11))
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			buf := make([]byte, 16)
			for i := 0; i < 250; i++ {
				l.Rand(true)
				l.Random(false)
				l.RandInt(0, 9)
				l.RandBits(4)
				l.Uint64()
				l.Read(buf)
			}
		}()
	}
	wg.Wait()

	state, pointer := l.State()
	g, err := New(state)
	require.NoError(t, err)
	require.NoError(t, g.SetState(state, pointer))
	require.NoError(t, l.SetState(state, pointer))
	assert.Equal(t, g.Rand(true), l.Rand(true))

	l.Seed(1)
	assert.Equal(t, NewFromUint32(1).Uint32(), l.Uint32())
	assert.GreaterOrEqual(t, l.Int63(), int64(0))
}

func TestLockedSetStateError(t *testing.T) {
	l := NewLocked(newSequential(t))
	err := l.SetState([]uint32{1, 2, 3}, 0)
	assert.ErrorIs(t, err, ErrInvalidStateLength)
	state, _ := l.State()
	assert.Equal(t, sequentialState(), state)
}

func FuzzRead(f *testing.F) {
	f.Add(uint32(0), 0)
	f.Add(uint32(42), 13)
	f.Fuzz(func(t *testing.T, seed uint32, size int) {
		if size < 0 || size > 4096 {
			return
		}
		a := make([]byte, size)
		b := make([]byte, size)
		NewFromUint32(seed).Read(a)
		NewFromUint32(seed).Read(b)
		if !bytes.Equal(a, b) {
			t.Fatalf("streams for seed %d diverged", seed)
		}
	})
}
