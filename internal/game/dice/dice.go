// Package dice provides the randomness abstraction used by the fight engine:
// injectable sources, a weighted-choice sampler, and a logged roller.
package dice

// Source is the randomness provider for every probabilistic decision in a bout.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
	// Float64 returns a random float in [0, 1).
	Float64() float64
}

// Chance reports whether a uniform draw from src falls below p.
//
// Postcondition: Returns false when p <= 0 and true when p >= 1.
func Chance(src Source, p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return src.Float64() < p
}

// Uniform returns a random float in [lo, hi).
//
// Precondition: lo <= hi.
func Uniform(src Source, lo, hi float64) float64 {
	return lo + src.Float64()*(hi-lo)
}
