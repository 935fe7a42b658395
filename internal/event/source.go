package event

import "math/rand/v2"

// Source draws random integers. IntN returns a value in [0, n).
type Source interface {
	IntN(n int) int
}

// SourceFunc builds the Source used for a single Init call.
type SourceFunc func() Source

// NewSource returns a freshly seeded generator. Each Init constructs its own
// and discards it afterwards.
func NewSource() Source {
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// Between draws uniformly from the inclusive range [lo, hi].
func Between(src Source, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + src.IntN(hi-lo+1)
}
