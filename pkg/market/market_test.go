// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package market

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/adxyz/rtbsim/pkg/bid"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"default ok", DefaultConfig(), false},
		{"zero competitors", Config{Volatility: 0.3, FloorPriceMean: 0.5}, true},
		{"negative volatility", Config{AvgCompetitors: 5, Volatility: -0.1}, true},
		{"negative floor std", Config{AvgCompetitors: 5, FloorPriceStd: -1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestFloorPriceMinimum(t *testing.T) {
	require := require.New(t)

	// Mean well below the minimum forces the clamp.
	d, err := New(Config{AvgCompetitors: 5, FloorPriceMean: -1.0, FloorPriceStd: 0.1}, 1)
	require.NoError(err)

	for i := 0; i < 1000; i++ {
		require.GreaterOrEqual(d.FloorPrice(), MinFloorPrice)
	}
}

func TestCompetitorCountFloorOfOne(t *testing.T) {
	require := require.New(t)

	d, err := New(Config{AvgCompetitors: 0.01, Volatility: 0.3}, 2)
	require.NoError(err)

	opp := bid.New()
	for i := 0; i < 500; i++ {
		require.GreaterOrEqual(d.CompetitorCount(opp), 1)
	}
}

func TestCompetitorCountScalesWithQuality(t *testing.T) {
	require := require.New(t)

	premium := bid.New()
	premium.Placement.Position = bid.PositionAboveFold
	premium.Placement.ViewabilityScore = 0.9
	premium.User.BehaviorScore = 0.8

	remnant := bid.New()
	remnant.Placement.Position = bid.PositionBelowFold
	remnant.Placement.ViewabilityScore = 0.4
	remnant.User.BehaviorScore = 0.2

	d, err := New(DefaultConfig(), 3)
	require.NoError(err)

	const n = 5000
	premiumTotal, remnantTotal := 0, 0
	for i := 0; i < n; i++ {
		premiumTotal += d.CompetitorCount(premium)
		remnantTotal += d.CompetitorCount(remnant)
	}
	require.Greater(premiumTotal, remnantTotal)
}

func TestCompetitorBidsSortedAndAboveFloor(t *testing.T) {
	require := require.New(t)

	d, err := New(DefaultConfig(), 4)
	require.NoError(err)

	opp := bid.New()
	const floor = 0.75

	for i := 0; i < 100; i++ {
		bids := d.CompetitorBids(8, floor, opp)
		require.Len(bids, 8)
		require.True(sort.IsSorted(sort.Reverse(sort.Float64Slice(bids))))
		for _, b := range bids {
			require.GreaterOrEqual(b, floor)
		}
	}
}

func TestCompetitorBidsEmpty(t *testing.T) {
	require := require.New(t)

	d, err := New(DefaultConfig(), 5)
	require.NoError(err)
	require.Nil(d.CompetitorBids(0, 0.5, bid.New()))
}

func TestDeterministicReplay(t *testing.T) {
	require := require.New(t)

	opp := bid.New()

	a, err := New(DefaultConfig(), 42)
	require.NoError(err)
	b, err := New(DefaultConfig(), 42)
	require.NoError(err)

	for i := 0; i < 50; i++ {
		require.Equal(a.FloorPrice(), b.FloorPrice())
		require.Equal(a.CompetitorCount(opp), b.CompetitorCount(opp))
	}
}
