// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package strategy

import (
	"errors"
	"math"
)

var (
	errTooFewSamples   = errors.New("strategy: too few samples to fit")
	errSingularMatrix  = errors.New("strategy: normal equations are singular")
	errFeatureMismatch = errors.New("strategy: feature dimension mismatch")
)

// regressor is a ridge-regularized least-squares model with an
// intercept term. Stored weights are [intercept, w1..wn].
type regressor struct {
	weights []float64
}

const ridgeLambda = 1e-6

// fitRegressor solves the normal equations for X, y. Returns an error
// when the sample count is below the feature dimension or the system
// is singular; callers fall back to the heuristic bid.
func fitRegressor(X [][]float64, y []float64) (*regressor, error) {
	n := len(X)
	if n == 0 || n != len(y) {
		return nil, errTooFewSamples
	}
	dim := len(X[0]) + 1 // leading intercept column
	if n < dim {
		return nil, errTooFewSamples
	}

	// A = X'X + lambda*I, b = X'y over the augmented design matrix.
	A := make([][]float64, dim)
	for i := range A {
		A[i] = make([]float64, dim)
	}
	b := make([]float64, dim)

	row := make([]float64, dim)
	for s := 0; s < n; s++ {
		if len(X[s])+1 != dim {
			return nil, errFeatureMismatch
		}
		row[0] = 1
		copy(row[1:], X[s])
		for i := 0; i < dim; i++ {
			for j := 0; j < dim; j++ {
				A[i][j] += row[i] * row[j]
			}
			b[i] += row[i] * y[s]
		}
	}
	for i := 0; i < dim; i++ {
		A[i][i] += ridgeLambda
	}

	weights, err := solve(A, b)
	if err != nil {
		return nil, err
	}
	return &regressor{weights: weights}, nil
}

// predict evaluates the model on a feature vector.
func (r *regressor) predict(features []float64) (float64, error) {
	if len(features)+1 != len(r.weights) {
		return 0, errFeatureMismatch
	}
	v := r.weights[0]
	for i, f := range features {
		v += r.weights[i+1] * f
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errSingularMatrix
	}
	return v, nil
}

// solve performs Gaussian elimination with partial pivoting on A x = b.
// A and b are clobbered.
func solve(A [][]float64, b []float64) ([]float64, error) {
	n := len(A)

	for col := 0; col < n; col++ {
		pivot := col
		for r := col + 1; r < n; r++ {
			if math.Abs(A[r][col]) > math.Abs(A[pivot][col]) {
				pivot = r
			}
		}
		if math.Abs(A[pivot][col]) < 1e-12 {
			return nil, errSingularMatrix
		}
		A[col], A[pivot] = A[pivot], A[col]
		b[col], b[pivot] = b[pivot], b[col]

		for r := col + 1; r < n; r++ {
			f := A[r][col] / A[col][col]
			for c := col; c < n; c++ {
				A[r][c] -= f * A[col][c]
			}
			b[r] -= f * b[col]
		}
	}

	x := make([]float64, n)
	for i := n - 1; i >= 0; i-- {
		sum := b[i]
		for j := i + 1; j < n; j++ {
			sum -= A[i][j] * x[j]
		}
		x[i] = sum / A[i][i]
	}
	return x, nil
}
