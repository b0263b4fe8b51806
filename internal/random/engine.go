package random

const (
	engineStateWords = 624
	engineShift      = 397
	engineMatrixA    = 0x9908b0df
	engineUpperMask  = 0x80000000
	engineLowerMask  = 0x7fffffff
)

// engine is an MT19937 Mersenne Twister: 624 32-bit words of state
// regenerated in blocks, with the reference tempering transform applied
// to each extracted word. The state is ~2.5KB, which is why Generator
// keeps exactly one engine and never duplicates it.
type engine struct {
	state [engineStateWords]uint32
	index int
}

func newEngine(seed uint64) *engine {
	e := &engine{}
	e.seed(seed)
	return e
}

// seed reinitializes the full state from a single seed value. Seeds that
// fit in 32 bits use the reference init_genrand recurrence (matching
// std::mt19937 with the same seed); wider seeds feed both halves through
// the reference init_by_array schedule.
func (e *engine) seed(seed uint64) {
	if seed <= 0xffffffff {
		e.seedWord(uint32(seed))
		return
	}
	e.seedWords([]uint32{uint32(seed), uint32(seed >> 32)})
}

func (e *engine) seedWord(seed uint32) {
	e.state[0] = seed
	for i := 1; i < engineStateWords; i++ {
		e.state[i] = 1812433253*(e.state[i-1]^(e.state[i-1]>>30)) + uint32(i)
	}
	e.index = engineStateWords
}

func (e *engine) seedWords(key []uint32) {
	e.seedWord(19650218)
	i, j := 1, 0
	for k := max(engineStateWords, len(key)); k > 0; k-- {
		e.state[i] = (e.state[i] ^ ((e.state[i-1] ^ (e.state[i-1] >> 30)) * 1664525)) + key[j] + uint32(j)
		i++
		j++
		if i >= engineStateWords {
			e.state[0] = e.state[engineStateWords-1]
			i = 1
		}
		if j >= len(key) {
			j = 0
		}
	}
	for k := engineStateWords - 1; k > 0; k-- {
		e.state[i] = (e.state[i] ^ ((e.state[i-1] ^ (e.state[i-1] >> 30)) * 1566083941)) - uint32(i)
		i++
		if i >= engineStateWords {
			e.state[0] = e.state[engineStateWords-1]
			i = 1
		}
	}
	e.state[0] = 0x80000000
	e.index = engineStateWords
}

// next returns the next 32 bits of the sequence.
func (e *engine) next() uint32 {
	if e.index >= engineStateWords {
		e.twist()
	}
	y := e.state[e.index]
	e.index++

	y ^= y >> 11
	y ^= (y << 7) & 0x9d2c5680
	y ^= (y << 15) & 0xefc60000
	y ^= y >> 18
	return y
}

// twist regenerates the full state block.
func (e *engine) twist() {
	for i := 0; i < engineStateWords; i++ {
		y := (e.state[i] & engineUpperMask) | (e.state[(i+1)%engineStateWords] & engineLowerMask)
		value := e.state[(i+engineShift)%engineStateWords] ^ (y >> 1)
		if y&1 == 1 {
			value ^= engineMatrixA
		}
		e.state[i] = value
	}
	e.index = 0
}

// next64 combines two 32-bit draws, high word first.
func (e *engine) next64() uint64 {
	hi := uint64(e.next())
	lo := uint64(e.next())
	return hi<<32 | lo
}

// bounded returns a uniformly distributed value in [0, n), n > 0.
// Rejection keeps the result unbiased when n does not divide 2^64.
func (e *engine) bounded(n uint64) uint64 {
	if n&(n-1) == 0 {
		return e.next64() & (n - 1)
	}
	threshold := -n % n
	for {
		v := e.next64()
		if v >= threshold {
			return v % n
		}
	}
}

// real returns a 53-bit resolution float in the closed interval [0, 1].
func (e *engine) real() float64 {
	a := uint64(e.next() >> 5)
	b := uint64(e.next() >> 6)
	return (float64(a)*67108864.0 + float64(b)) / 9007199254740991.0
}
