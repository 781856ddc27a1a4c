package engine

import (
	"math"
	"math/rand"
)

// MinLambda is the floor applied to expected-goal rates before
// sampling. Keeps weak-attack/strong-defense pairings from producing a
// non-positive rate.
const MinLambda = 0.05

// PoissonSample draws a goal count from a Poisson distribution using
// Knuth's inversion method: multiply uniform draws until the product
// drops below e^-lambda, counting iterations. Rates at or below zero
// are clamped to MinLambda so the result is always a valid count.
func PoissonSample(rng *rand.Rand, lambda float64) int {
	if lambda < MinLambda {
		lambda = MinLambda
	}

	limit := math.Exp(-lambda)
	k := 0
	p := 1.0
	for {
		p *= rng.Float64()
		if p <= limit {
			return k
		}
		k++
	}
}
