// Package compose orders candidate lists: a seeded, reproducible shuffle
// followed by per-bucket minimum representation.
package compose

import "strings"

const (
	lcgMul = 9301
	lcgInc = 49297
	lcgMod = 233280
)

// Rand is a linear congruential generator. Its output depends only on the
// seed it was created with.
type Rand struct {
	state int64
}

// NewRand returns a generator seeded with seed.
func NewRand(seed int64) *Rand {
	s := seed % lcgMod
	if s < 0 {
		s += lcgMod
	}
	return &Rand{state: s}
}

// Float64 returns the next value in [0, 1).
func (r *Rand) Float64() float64 {
	r.state = (r.state*lcgMul + lcgInc) % lcgMod
	return float64(r.state) / lcgMod
}

// Intn returns the next value in [0, n).
func (r *Rand) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return int(r.Float64() * float64(n))
}

// DeriveSeed folds a caller seed string, an explicit salt and the symptom
// list into one numeric seed. Each string contributes the sum of
// rune * (position+1). The same inputs always give the same seed.
func DeriveSeed(seed string, salt int64, symptoms []string) int64 {
	return weightedSum(seed) + salt + weightedSum(strings.Join(symptoms, ","))
}

func weightedSum(s string) int64 {
	var sum int64
	for i, r := range []rune(s) {
		sum += int64(r) * int64(i+1)
	}
	return sum
}
