// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package analytics aggregates auction outcomes into performance
// metrics, compares strategies, and tests whether observed differences
// are statistically meaningful.
package analytics

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/adxyz/rtbsim/pkg/auction"
	"github.com/adxyz/rtbsim/pkg/bid"
	"github.com/adxyz/rtbsim/pkg/log"
)

var (
	ErrNoOutcomes    = errors.New("analytics: no outcomes to analyze")
	ErrUnknownMetric = errors.New("analytics: unknown comparison metric")
)

// Metrics is the full performance picture for one strategy run.
type Metrics struct {
	StrategyName     string  `json:"strategy_name"`
	TotalAuctions    int     `json:"total_auctions"`
	Wins             int     `json:"wins"`
	WinRate          float64 `json:"win_rate"`
	TotalSpend       float64 `json:"total_spend"`
	TotalRevenue     float64 `json:"total_revenue"`
	Conversions      int     `json:"conversions"`
	AvgCPA           float64 `json:"avg_cpa"`
	MedianCPA        float64 `json:"median_cpa"`
	CPAStd           float64 `json:"cpa_std"`
	ROAS             float64 `json:"roas"`
	AvgBid           float64 `json:"avg_bid"`
	AvgWinningPrice  float64 `json:"avg_winning_price"`
	BudgetEfficiency float64 `json:"budget_efficiency"`

	// Segmented views, populated when the opportunity sequence is
	// supplied alongside the outcomes.
	WinRateByHour map[int]float64    `json:"win_rate_by_hour,omitempty"`
	SpendByDevice map[string]float64 `json:"spend_by_device,omitempty"`
}

// Analyzer computes metrics over outcome sequences. The seed drives
// the bootstrap resampling in significance tests.
type Analyzer struct {
	rng *rand.Rand
	log log.Logger
}

// NewAnalyzer creates an analyzer.
func NewAnalyzer(seed int64, logger log.Logger) *Analyzer {
	if logger == nil {
		logger = log.NoOp()
	}
	return &Analyzer{
		rng: rand.New(rand.NewSource(seed)),
		log: logger,
	}
}

// Analyze computes the full metric set for one strategy's outcomes.
// opps may be nil; it enables the hour and device segments and must
// be index-aligned with outs when present. An empty outcome sequence
// is an error, not a zero-metrics result.
func (a *Analyzer) Analyze(name string, outs []*auction.Outcome, opps []*bid.Opportunity) (*Metrics, error) {
	if len(outs) == 0 {
		return nil, ErrNoOutcomes
	}
	if opps != nil && len(opps) != len(outs) {
		return nil, fmt.Errorf("analytics: %d opportunities for %d outcomes", len(opps), len(outs))
	}

	m := &Metrics{
		StrategyName:  name,
		TotalAuctions: len(outs),
	}

	var cpas []float64
	bidSum := 0.0
	for _, out := range outs {
		m.TotalRevenue += out.Revenue
		if out.Converted {
			m.Conversions++
			if out.DidWin {
				cpas = append(cpas, out.ClearingPrice)
			}
		}
		if out.DidWin {
			m.Wins++
			m.TotalSpend += out.ClearingPrice
			if out.WinnerBid != nil {
				bidSum += *out.WinnerBid
			}
		}
	}

	m.WinRate = float64(m.Wins) / float64(m.TotalAuctions)
	if m.Conversions > 0 {
		m.AvgCPA = m.TotalSpend / float64(m.Conversions)
	}
	m.MedianCPA = median(cpas)
	if len(cpas) > 1 {
		m.CPAStd = stddev(cpas)
	}
	if m.TotalSpend > 0 {
		m.ROAS = m.TotalRevenue / m.TotalSpend
		m.BudgetEfficiency = m.TotalRevenue / m.TotalSpend
	}
	if m.Wins > 0 {
		m.AvgBid = bidSum / float64(m.Wins)
		m.AvgWinningPrice = m.TotalSpend / float64(m.Wins)
	}

	if opps != nil {
		m.WinRateByHour = winRateByHour(outs, opps)
		m.SpendByDevice = spendByDevice(outs, opps)
	}

	return m, nil
}

// ComparisonRow is one strategy's line in a side-by-side comparison.
type ComparisonRow struct {
	Strategy         string  `json:"strategy"`
	WinRate          float64 `json:"win_rate"`
	Conversions      int     `json:"conversions"`
	AvgCPA           float64 `json:"avg_cpa"`
	ROAS             float64 `json:"roas"`
	TotalSpend       float64 `json:"total_spend"`
	TotalRevenue     float64 `json:"total_revenue"`
	BudgetEfficiency float64 `json:"budget_efficiency"`
}

// Compare produces comparison rows for multiple strategies, sorted by
// strategy name for stable output.
func (a *Analyzer) Compare(results map[string][]*auction.Outcome) ([]ComparisonRow, error) {
	names := make([]string, 0, len(results))
	for name := range results {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := make([]ComparisonRow, 0, len(names))
	for _, name := range names {
		m, err := a.Analyze(name, results[name], nil)
		if err != nil {
			return nil, fmt.Errorf("analytics: strategy %q: %w", name, err)
		}
		rows = append(rows, ComparisonRow{
			Strategy:         name,
			WinRate:          m.WinRate,
			Conversions:      m.Conversions,
			AvgCPA:           m.AvgCPA,
			ROAS:             m.ROAS,
			TotalSpend:       m.TotalSpend,
			TotalRevenue:     m.TotalRevenue,
			BudgetEfficiency: m.BudgetEfficiency,
		})
	}
	return rows, nil
}

// Insights derives advisory notes from a metric set.
func (a *Analyzer) Insights(m *Metrics) []string {
	var insights []string

	if m.WinRate < 0.3 {
		insights = append(insights, fmt.Sprintf("Low win rate (%.1f%%). Consider increasing bids.", m.WinRate*100))
	} else if m.WinRate > 0.7 {
		insights = append(insights, fmt.Sprintf("High win rate (%.1f%%). Possible overbidding; reducing bids may improve efficiency.", m.WinRate*100))
	}

	if m.AvgCPA > 0 && m.CPAStd/m.AvgCPA > 0.5 {
		insights = append(insights, fmt.Sprintf("High CPA variance (std $%.2f). Bidding could be more consistent.", m.CPAStd))
	}

	if m.ROAS < 2.0 {
		insights = append(insights, fmt.Sprintf("Low ROAS (%.2fx). Focus on higher-quality inventory or reduce bids.", m.ROAS))
	} else if m.ROAS > 5.0 {
		insights = append(insights, fmt.Sprintf("Excellent ROAS (%.2fx). Consider scaling this strategy.", m.ROAS))
	}

	if m.BudgetEfficiency < 1.5 {
		insights = append(insights, fmt.Sprintf("Low budget efficiency (%.2f). Review targeting and bid strategy.", m.BudgetEfficiency))
	}

	if m.Wins > 0 {
		cvr := float64(m.Conversions) / float64(m.Wins)
		if cvr < 0.01 {
			insights = append(insights, fmt.Sprintf("Low conversion rate (%.2f%%). Improve targeting or creative quality.", cvr*100))
		}
	}

	return insights
}

func winRateByHour(outs []*auction.Outcome, opps []*bid.Opportunity) map[int]float64 {
	total := make(map[int]int)
	wins := make(map[int]int)
	for i, out := range outs {
		hour := opps[i].Timestamp.Hour()
		total[hour]++
		if out.DidWin {
			wins[hour]++
		}
	}

	byHour := make(map[int]float64, len(total))
	for hour, n := range total {
		byHour[hour] = float64(wins[hour]) / float64(n)
	}
	return byHour
}

func spendByDevice(outs []*auction.Outcome, opps []*bid.Opportunity) map[string]float64 {
	byDevice := make(map[string]float64)
	for i, out := range outs {
		if out.DidWin {
			byDevice[string(opps[i].Device.Type)] += out.ClearingPrice
		}
	}
	return byDevice
}

func median(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

func stddev(vals []float64) float64 {
	if len(vals) < 2 {
		return 0
	}
	m := mean(vals)
	ss := 0.0
	for _, v := range vals {
		ss += (v - m) * (v - m)
	}
	return math.Sqrt(ss / float64(len(vals)))
}
