package utility

import "math/rand/v2"

// Random is a seeded pseudo-random source that does not allocate per draw,
// so it can be used from the audio callback.
type Random struct {
	rand *rand.Rand
}

// NewRandom creates a random source. Equal seeds give equal sequences.
func NewRandom(seed uint64) *Random {
	return &Random{
		rand: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// Intn returns a uniform integer in [0, n). n <= 0 returns 0.
func (r *Random) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return r.rand.IntN(n)
}

// Float returns a uniform value in [0, 1).
func (r *Random) Float() float64 {
	return r.rand.Float64()
}

// Chance reports true with probability p.
func (r *Random) Chance(p float64) bool {
	if p <= 0 {
		return false
	}
	return r.rand.Float64() < p
}
