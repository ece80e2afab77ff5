package well

import "sync"

// Locked serializes access to a Generator so one stream can be shared
// between goroutines. The interleaving of draws between callers is not
// deterministic.
type Locked struct {
	mu sync.Mutex
	g  *Generator
}

func NewLocked(g *Generator) *Locked {
	return &Locked{g: g}
}

func (l *Locked) Rand(includeNegative bool) int32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.g.Rand(includeNegative)
}

func (l *Locked) Random(includeNegative bool) float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.g.Random(includeNegative)
}

func (l *Locked) RandInt(a, b int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.g.RandInt(a, b)
}

func (l *Locked) RandBits(bits uint) uint32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.g.RandBits(bits)
}

func (l *Locked) Uint32() uint32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.g.Uint32()
}

func (l *Locked) Uint64() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.g.Uint64()
}

func (l *Locked) Int63() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.g.Int63()
}

func (l *Locked) Seed(seed int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.g.Seed(seed)
}

func (l *Locked) Read(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.g.Read(p)
}

// State and SetState behave as on Generator.
func (l *Locked) State() ([]uint32, int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.g.State(), l.g.Pointer()
}

func (l *Locked) SetState(state []uint32, pointer int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.g.SetState(state, pointer)
}
