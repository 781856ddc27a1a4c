package engine

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPoissonSampleNeverNegative(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for _, lambda := range []float64{-3, 0, 0.05, 0.5, 1.5, 4} {
		for i := 0; i < 1000; i++ {
			assert.GreaterOrEqual(t, PoissonSample(rng, lambda), 0, "lambda=%v", lambda)
		}
	}
}

func TestPoissonSampleFlooredLambdaMostlyZero(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	zeros := 0
	const draws = 10000
	for i := 0; i < draws; i++ {
		if PoissonSample(rng, 0) == 0 {
			zeros++
		}
	}
	// At the MinLambda floor, P(0) = e^-0.05 ≈ 0.951
	assert.Greater(t, zeros, draws*9/10)
}

func TestPoissonSampleMeanConvergence(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	const lambda = 1.5
	const draws = 10000
	sum := 0
	for i := 0; i < draws; i++ {
		sum += PoissonSample(rng, lambda)
	}
	mean := float64(sum) / draws
	assert.InDelta(t, lambda, mean, 0.1)
}
