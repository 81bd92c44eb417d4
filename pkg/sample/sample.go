// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package sample provides the random draws used by the market and
// opportunity models. Every draw takes an explicit *rand.Rand so a
// simulation run is reproducible from a single seed.
package sample

import (
	"math"
	"math/rand"
)

// Normal draws from N(mean, std).
func Normal(rng *rand.Rand, mean, std float64) float64 {
	return mean + std*rng.NormFloat64()
}

// LogNormal draws from a log-normal distribution with location mu and
// shape sigma.
func LogNormal(rng *rand.Rand, mu, sigma float64) float64 {
	return math.Exp(mu + sigma*rng.NormFloat64())
}

// Poisson draws from a Poisson distribution with the given mean using
// Knuth's multiplication method. Adequate for the small means used in
// competitor modeling; means above ~700 would underflow.
func Poisson(rng *rand.Rand, mean float64) int {
	if mean <= 0 {
		return 0
	}
	l := math.Exp(-mean)
	k := 0
	p := 1.0
	for {
		p *= rng.Float64()
		if p <= l {
			return k
		}
		k++
	}
}

// Gamma draws from a gamma distribution with the given shape and scale
// using the Marsaglia-Tsang squeeze method.
func Gamma(rng *rand.Rand, shape, scale float64) float64 {
	if shape <= 0 || scale <= 0 {
		return 0
	}
	if shape < 1 {
		// Boost: Ga(a) = Ga(a+1) * U^(1/a)
		u := rng.Float64()
		return Gamma(rng, shape+1, scale) * math.Pow(u, 1/shape)
	}

	d := shape - 1.0/3.0
	c := 1.0 / math.Sqrt(9.0*d)
	for {
		x := rng.NormFloat64()
		v := 1.0 + c*x
		if v <= 0 {
			continue
		}
		v = v * v * v
		u := rng.Float64()
		if u < 1.0-0.0331*x*x*x*x {
			return d * v * scale
		}
		if math.Log(u) < 0.5*x*x+d*(1.0-v+math.Log(v)) {
			return d * v * scale
		}
	}
}

// Beta draws from a beta distribution with parameters alpha and beta.
func Beta(rng *rand.Rand, alpha, beta float64) float64 {
	x := Gamma(rng, alpha, 1)
	y := Gamma(rng, beta, 1)
	if x+y == 0 {
		return 0
	}
	return x / (x + y)
}

// Uniform draws uniformly from [lo, hi).
func Uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + (hi-lo)*rng.Float64()
}
