// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package analytics

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/adxyz/rtbsim/pkg/auction"
	"github.com/adxyz/rtbsim/pkg/bid"
	"github.com/adxyz/rtbsim/pkg/log"
)

func won(price, revenue float64, converted bool) *auction.Outcome {
	winner := price
	return &auction.Outcome{
		WinnerBid:     &winner,
		ClearingPrice: price,
		DidWin:        true,
		Converted:     converted,
		Revenue:       revenue,
	}
}

func lost(marketBid float64) *auction.Outcome {
	return &auction.Outcome{
		WinnerBid:     &marketBid,
		ClearingPrice: marketBid,
	}
}

func TestAnalyzeEmptyIsError(t *testing.T) {
	a := NewAnalyzer(1, log.NoOp())
	_, err := a.Analyze("x", nil, nil)
	require.ErrorIs(t, err, ErrNoOutcomes)
}

func TestAnalyzeBasicMetrics(t *testing.T) {
	require := require.New(t)
	a := NewAnalyzer(1, log.NoOp())

	outs := []*auction.Outcome{
		won(2.0, 10.0, true),
		won(4.0, 0, false),
		lost(6.0),
		lost(5.0),
	}

	m, err := a.Analyze("test", outs, nil)
	require.NoError(err)
	require.Equal(4, m.TotalAuctions)
	require.Equal(2, m.Wins)
	require.Equal(0.5, m.WinRate)
	require.Equal(6.0, m.TotalSpend)
	require.Equal(10.0, m.TotalRevenue)
	require.Equal(1, m.Conversions)
	require.Equal(6.0, m.AvgCPA)
	require.Equal(2.0, m.MedianCPA)
	require.InDelta(10.0/6.0, m.ROAS, 1e-9)
	require.Equal(3.0, m.AvgWinningPrice)
	require.Nil(m.WinRateByHour)
}

func TestAnalyzeMismatchedOpportunities(t *testing.T) {
	a := NewAnalyzer(1, log.NoOp())
	_, err := a.Analyze("x", []*auction.Outcome{won(1, 0, false)}, bid.Generate(3, 1))
	require.Error(t, err)
}

func TestAnalyzeSegments(t *testing.T) {
	require := require.New(t)
	a := NewAnalyzer(1, log.NoOp())

	opps := bid.Generate(3, 2)
	opps[0].Device.Type = bid.DeviceMobile
	opps[1].Device.Type = bid.DeviceMobile
	opps[2].Device.Type = bid.DeviceDesktop

	outs := []*auction.Outcome{won(2.0, 0, false), won(3.0, 0, false), lost(9.0)}

	m, err := a.Analyze("test", outs, opps)
	require.NoError(err)
	require.Equal(5.0, m.SpendByDevice["mobile"])
	require.NotContains(m.SpendByDevice, "desktop")

	hour := opps[0].Timestamp.Hour()
	require.Contains(m.WinRateByHour, hour)
}

func TestCompareRowsSorted(t *testing.T) {
	require := require.New(t)
	a := NewAnalyzer(1, log.NoOp())

	rows, err := a.Compare(map[string][]*auction.Outcome{
		"b-strategy": {won(2.0, 4.0, true)},
		"a-strategy": {lost(3.0)},
	})
	require.NoError(err)
	require.Len(rows, 2)
	require.Equal("a-strategy", rows[0].Strategy)
	require.Equal("b-strategy", rows[1].Strategy)
}

func TestCompareEmptyStrategyIsError(t *testing.T) {
	a := NewAnalyzer(1, log.NoOp())
	_, err := a.Compare(map[string][]*auction.Outcome{"empty": {}})
	require.ErrorIs(t, err, ErrNoOutcomes)
}

func TestInsightsThresholds(t *testing.T) {
	require := require.New(t)
	a := NewAnalyzer(1, log.NoOp())

	m := &Metrics{WinRate: 0.1, ROAS: 6.0, BudgetEfficiency: 6.0, Wins: 100, Conversions: 50}
	insights := a.Insights(m)
	require.NotEmpty(insights)

	var hasLowWinRate, hasHighROAS bool
	for _, s := range insights {
		if len(s) >= 12 && s[:12] == "Low win rate" {
			hasLowWinRate = true
		}
		if len(s) >= 14 && s[:14] == "Excellent ROAS" {
			hasHighROAS = true
		}
	}
	require.True(hasLowWinRate)
	require.True(hasHighROAS)
}

func TestMedianAndStddev(t *testing.T) {
	require := require.New(t)
	require.Equal(0.0, median(nil))
	require.Equal(2.0, median([]float64{3, 1, 2}))
	require.Equal(2.5, median([]float64{4, 1, 2, 3}))
	require.Equal(0.0, stddev([]float64{5}))
	require.InDelta(2.0, stddev([]float64{2, 4, 4, 4, 5, 5, 7, 9}), 1e-9)
}
