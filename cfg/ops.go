package cfg

import "fmt"

type Op int

const (
	OpRand Op = iota
	OpRandom
	OpInt
	OpBits
)

var opNames = [...]string{
	OpRand:   "rand",
	OpRandom: "random",
	OpInt:    "int",
	OpBits:   "bits",
}

func (o Op) String() string {
	if o < 0 || int(o) >= len(opNames) {
		return fmt.Sprintf("Op(%d)", int(o))
	}
	return opNames[o]
}

// ops maps every accepted spelling of an op, canonical names included.
var ops = map[string]Op{
	"rand":  OpRand,
	"int31": OpRand,

	"random": OpRandom,
	"float":  OpRandom,

	"int":     OpInt,
	"randint": OpInt,

	"bits":     OpBits,
	"randbits": OpBits,
}

func Ops() map[string]Op {
	for k, v := range ops {
		// Sanity check
		if ops[v.String()] != v {
			panic(fmt.Errorf("alias %q resolves to %v, whose canonical name is not registered", k, v))
		}
	}
	return ops
}
