// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package analytics

import (
	"sort"

	"github.com/adxyz/rtbsim/pkg/auction"
)

// Comparison metrics accepted by Significance.
const (
	MetricWinRate = "win_rate"
	MetricCPA     = "cpa"
	MetricROAS    = "roas"
)

const significanceLevel = 0.05

// SignificanceResult reports a statistical comparison between two
// strategies. InsufficientData is set instead of fabricating a result
// when sample counts cannot support the test.
type SignificanceResult struct {
	Metric           string  `json:"metric"`
	Statistic        float64 `json:"statistic,omitempty"`
	PValue           float64 `json:"p_value,omitempty"`
	Significant      bool    `json:"significant"`
	ValueA           float64 `json:"strategy_a_value"`
	ValueB           float64 `json:"strategy_b_value"`
	InsufficientData bool    `json:"insufficient_data,omitempty"`

	// Bootstrap confidence intervals, ROAS metric only.
	CIA [2]float64 `json:"strategy_a_ci,omitempty"`
	CIB [2]float64 `json:"strategy_b_ci,omitempty"`
}

// Significance tests whether the two outcome sequences differ on the
// given metric: a chi-square test of win rates, a Welch t-test of
// per-conversion prices, or a bootstrap CI comparison of ROAS.
func (a *Analyzer) Significance(outA, outB []*auction.Outcome, metric string) (*SignificanceResult, error) {
	switch metric {
	case MetricWinRate:
		return a.winRateTest(outA, outB), nil
	case MetricCPA:
		return a.cpaTest(outA, outB), nil
	case MetricROAS:
		return a.roasTest(outA, outB), nil
	default:
		return nil, ErrUnknownMetric
	}
}

func (a *Analyzer) winRateTest(outA, outB []*auction.Outcome) *SignificanceResult {
	if len(outA) < 2 || len(outB) < 2 {
		return &SignificanceResult{Metric: MetricWinRate, InsufficientData: true}
	}

	winsA, winsB := countWins(outA), countWins(outB)
	nA, nB := float64(len(outA)), float64(len(outB))

	// 2x2 chi-square with one degree of freedom.
	obs := [2][2]float64{
		{float64(winsA), nA - float64(winsA)},
		{float64(winsB), nB - float64(winsB)},
	}
	colWins := obs[0][0] + obs[1][0]
	colLosses := obs[0][1] + obs[1][1]
	total := nA + nB

	if colWins == 0 || colLosses == 0 {
		// Degenerate table: identical all-win or all-loss columns.
		return &SignificanceResult{
			Metric:           MetricWinRate,
			InsufficientData: true,
			ValueA:           float64(winsA) / nA,
			ValueB:           float64(winsB) / nB,
		}
	}

	chi2 := 0.0
	rows := [2]float64{nA, nB}
	cols := [2]float64{colWins, colLosses}
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			expected := rows[i] * cols[j] / total
			diff := obs[i][j] - expected
			chi2 += diff * diff / expected
		}
	}

	p := chiSquarePValue(chi2)
	return &SignificanceResult{
		Metric:      MetricWinRate,
		Statistic:   chi2,
		PValue:      p,
		Significant: p < significanceLevel,
		ValueA:      float64(winsA) / nA,
		ValueB:      float64(winsB) / nB,
	}
}

func (a *Analyzer) cpaTest(outA, outB []*auction.Outcome) *SignificanceResult {
	cpasA := convertedPrices(outA)
	cpasB := convertedPrices(outB)

	if len(cpasA) < 2 || len(cpasB) < 2 {
		return &SignificanceResult{Metric: MetricCPA, InsufficientData: true}
	}

	t, df := welchT(cpasA, cpasB)
	p := studentTPValue(t, df)

	return &SignificanceResult{
		Metric:      MetricCPA,
		Statistic:   t,
		PValue:      p,
		Significant: p < significanceLevel,
		ValueA:      mean(cpasA),
		ValueB:      mean(cpasB),
	}
}

const bootstrapRounds = 1000

func (a *Analyzer) roasTest(outA, outB []*auction.Outcome) *SignificanceResult {
	if len(outA) < 2 || len(outB) < 2 {
		return &SignificanceResult{Metric: MetricROAS, InsufficientData: true}
	}

	ciA := a.bootstrapROAS(outA)
	ciB := a.bootstrapROAS(outB)

	// Non-overlapping intervals mean the difference is significant.
	overlap := !(ciA[1] < ciB[0] || ciB[1] < ciA[0])

	return &SignificanceResult{
		Metric:      MetricROAS,
		Significant: !overlap,
		ValueA:      roas(outA),
		ValueB:      roas(outB),
		CIA:         ciA,
		CIB:         ciB,
	}
}

func (a *Analyzer) bootstrapROAS(outs []*auction.Outcome) [2]float64 {
	samples := make([]float64, bootstrapRounds)
	for r := 0; r < bootstrapRounds; r++ {
		spend, revenue := 0.0, 0.0
		for i := 0; i < len(outs); i++ {
			out := outs[a.rng.Intn(len(outs))]
			revenue += out.Revenue
			if out.DidWin {
				spend += out.ClearingPrice
			}
		}
		if spend > 0 {
			samples[r] = revenue / spend
		}
	}
	sort.Float64s(samples)
	return [2]float64{percentile(samples, 2.5), percentile(samples, 97.5)}
}

func countWins(outs []*auction.Outcome) int {
	wins := 0
	for _, out := range outs {
		if out.DidWin {
			wins++
		}
	}
	return wins
}

func convertedPrices(outs []*auction.Outcome) []float64 {
	var prices []float64
	for _, out := range outs {
		if out.DidWin && out.Converted {
			prices = append(prices, out.ClearingPrice)
		}
	}
	return prices
}

func roas(outs []*auction.Outcome) float64 {
	spend, revenue := 0.0, 0.0
	for _, out := range outs {
		revenue += out.Revenue
		if out.DidWin {
			spend += out.ClearingPrice
		}
	}
	if spend == 0 {
		return 0
	}
	return revenue / spend
}

// percentile on a pre-sorted slice, with linear interpolation.
func percentile(sorted []float64, pct float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	pos := pct / 100 * float64(len(sorted)-1)
	lo := int(pos)
	if lo >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[lo+1]*frac
}
