// Implements the TYPE_3 random number generator used by uClibc
// Derived from random.c and random_r.c
//
// glibc shares the algorithm, so seeded output matches random(3) there too.

package rand

const deg3 uint = 31
const sep3 uint = 3

var randtbl = [deg3]int32{
	-1726662223,
	379960547,
	1735697613,
	1040273694,
	1313901226,
	1627687941,
	-179304937,
	-2073333483,
	1780058412,
	-1989503057,
	-615974602,
	344556628,
	939512070,
	-1249116260,
	1507946756,
	-812545463,
	154635395,
	1388815473,
	-1926676823,
	525320961,
	-1009028674,
	968117788,
	-123449607,
	1284210865,
	435012392,
	-2017506339,
	-911064859,
	-370259173,
	1132637927,
	1398500161,
	-205601318,
}

type RandomData struct {
	frontIdx uint
	rearIdx  uint
	state    [deg3]int32
}

// Srand seeds a table the way srandom_r does: a Park-Miller sequence
// followed by 310 discarded outputs. A zero seed is treated as 1.
func Srand(seed uint32) *RandomData {
	rd := &RandomData{}
	rd.Seed(seed)
	return rd
}

func (rd *RandomData) Seed(seed uint32) {
	rd.state = randtbl
	rd.frontIdx = sep3
	rd.rearIdx = 0

	word := int64(seed)
	if word == 0 {
		word = 1
	}
	rd.state[0] = int32(word)
	for i := uint(1); i < deg3; i++ {
		hi := word / 127773
		lo := word % 127773
		word = 16807*lo - 2836*hi
		if word < 0 {
			word += 2147483647
		}
		rd.state[i] = int32(word)
	}

	for kc := 0; kc < int(deg3)*10; kc++ {
		rd.Rand()
	}
}

// Rand returns the next value in [0, 2^31), same as random_r.
func (rd *RandomData) Rand() int32 {
	val := rd.state[rd.frontIdx] + rd.state[rd.rearIdx]
	rd.state[rd.frontIdx] = val
	result := (val >> 1) & 0x7fffffff

	rd.frontIdx++
	if rd.frontIdx >= deg3 {
		rd.frontIdx = 0
		rd.rearIdx++
	} else {
		rd.rearIdx++
		if rd.rearIdx >= deg3 {
			rd.rearIdx = 0
		}
	}
	return result
}

// Uint32 combines the high 16 bits of two outputs.
func (rd *RandomData) Uint32() uint32 {
	hi := uint32(rd.Rand()) >> 15
	lo := uint32(rd.Rand()) >> 15
	return hi<<16 | lo
}
