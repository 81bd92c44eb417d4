// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package strategy

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFitRecoversLinearRelation(t *testing.T) {
	require := require.New(t)
	rng := rand.New(rand.NewSource(1))

	// y = 2 + 3*x1 - x2 with a little noise.
	n := 200
	X := make([][]float64, n)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		x1 := rng.Float64() * 10
		x2 := rng.Float64() * 5
		X[i] = []float64{x1, x2}
		y[i] = 2 + 3*x1 - x2 + rng.NormFloat64()*0.01
	}

	model, err := fitRegressor(X, y)
	require.NoError(err)

	got, err := model.predict([]float64{4, 1})
	require.NoError(err)
	require.InDelta(2+12-1, got, 0.1)
}

func TestFitTooFewSamples(t *testing.T) {
	_, err := fitRegressor([][]float64{{1, 2, 3}}, []float64{1})
	require.ErrorIs(t, err, errTooFewSamples)

	_, err = fitRegressor(nil, nil)
	require.ErrorIs(t, err, errTooFewSamples)
}

func TestFitCollinearFeatures(t *testing.T) {
	require := require.New(t)
	rng := rand.New(rand.NewSource(2))

	// One-hot columns summing to the intercept are the worst case the
	// strategy feeds in; ridge keeps the system solvable.
	n := 50
	X := make([][]float64, n)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		a, b := 0.0, 1.0
		if i%2 == 0 {
			a, b = 1.0, 0.0
		}
		X[i] = []float64{a, b}
		y[i] = 1 + a + rng.NormFloat64()*0.01
	}

	model, err := fitRegressor(X, y)
	require.NoError(err)

	got, err := model.predict([]float64{1, 0})
	require.NoError(err)
	require.InDelta(2.0, got, 0.05)
}

func TestPredictDimensionMismatch(t *testing.T) {
	model := &regressor{weights: []float64{1, 2}}
	_, err := model.predict([]float64{1, 2, 3})
	require.ErrorIs(t, err, errFeatureMismatch)
}
