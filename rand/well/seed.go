package well

import (
	"crypto/sha256"
	"encoding/binary"

	"golang.org/x/crypto/pbkdf2"
)

const (
	golden = 0x9e3779b97f4a7c15

	passphraseRounds = 2048
)

// NewFromUint32 returns a generator seeded with Expand(seed).
func NewFromUint32(seed uint32) *Generator {
	g := &Generator{}
	// Length is always StateSize.
	_ = g.SetState(Expand(seed), 0)
	return g
}

// Expand derives a full state vector from a 32-bit seed with splitmix64.
// Every seed, including zero, yields a state that is not all zero.
func Expand(seed uint32) []uint32 {
	return expand(uint64(seed))
}

func expand(seed uint64) []uint32 {
	state := make([]uint32, StateSize)
	x := seed
	for i := 0; i < StateSize; i += 2 {
		x += golden
		z := splitmix(x)
		state[i] = uint32(z >> 32)
		state[i+1] = uint32(z)
	}
	return state
}

func splitmix(z uint64) uint64 {
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

// FromPassphrase stretches a shared passphrase into a state vector with
// PBKDF2-HMAC-SHA256. Words are read big-endian.
func FromPassphrase(passphrase, salt string) []uint32 {
	key := pbkdf2.Key([]byte(passphrase), []byte("wellrand"+salt), passphraseRounds, StateSize*4, sha256.New)
	state := make([]uint32, StateSize)
	for i := range state {
		state[i] = binary.BigEndian.Uint32(key[i*4:])
	}
	return state
}
