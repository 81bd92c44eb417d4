// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package market simulates competitive pressure for an auction: how
// many rival bidders show up, what they bid, and what floor the
// publisher sets.
package market

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/adxyz/rtbsim/pkg/bid"
	"github.com/adxyz/rtbsim/pkg/sample"
)

// MinFloorPrice is the lowest floor a publisher will set.
const MinFloorPrice = 0.10

// Config parameterizes market intensity and volatility.
type Config struct {
	AvgCompetitors float64 `toml:"avg_competitors"`
	Volatility     float64 `toml:"volatility"`
	FloorPriceMean float64 `toml:"floor_price_mean"`
	FloorPriceStd  float64 `toml:"floor_price_std"`
}

// DefaultConfig returns an average open-exchange market.
func DefaultConfig() Config {
	return Config{
		AvgCompetitors: 5,
		Volatility:     0.3,
		FloorPriceMean: 0.5,
		FloorPriceStd:  0.2,
	}
}

// Validate checks the config at the construction boundary.
func (c Config) Validate() error {
	if c.AvgCompetitors <= 0 {
		return fmt.Errorf("market: avg_competitors must be positive, got %v", c.AvgCompetitors)
	}
	if c.Volatility < 0 {
		return fmt.Errorf("market: volatility must be non-negative, got %v", c.Volatility)
	}
	if c.FloorPriceStd < 0 {
		return fmt.Errorf("market: floor_price_std must be non-negative, got %v", c.FloorPriceStd)
	}
	return nil
}

// Dynamics generates competitive context for auctions. It owns its
// random source; a Dynamics built from the same seed replays the same
// market.
type Dynamics struct {
	cfg Config
	rng *rand.Rand
}

// New creates market dynamics from a config and seed.
func New(cfg Config, seed int64) (*Dynamics, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Dynamics{
		cfg: cfg,
		rng: rand.New(rand.NewSource(seed)),
	}, nil
}

// FloorPrice draws a publisher floor price.
func (d *Dynamics) FloorPrice() float64 {
	price := sample.Normal(d.rng, d.cfg.FloorPriceMean, d.cfg.FloorPriceStd)
	return math.Max(MinFloorPrice, price)
}

// CompetitorCount draws the number of rival bidders for an
// opportunity. Quality signals attract more demand.
func (d *Dynamics) CompetitorCount(opp *bid.Opportunity) int {
	base := d.cfg.AvgCompetitors

	if opp.AboveFold() {
		base *= 1.3
	}
	if opp.Placement.ViewabilityScore > 0.8 {
		base *= 1.2
	}
	if opp.User.BehaviorScore > 0.7 {
		base *= 1.4
	}

	n := sample.Poisson(d.rng, base)
	if n < 1 {
		return 1
	}
	return n
}

// CompetitorBids draws n rival bids at or above the floor, sorted
// descending. The auction ranking step relies on the ordering.
func (d *Dynamics) CompetitorBids(n int, floorPrice float64, opp *bid.Opportunity) []float64 {
	if n <= 0 {
		return nil
	}

	fold := 0.7
	if opp.AboveFold() {
		fold = 1.0
	}
	quality := opp.Placement.ViewabilityScore*0.5 +
		opp.User.BehaviorScore*0.3 +
		fold*0.2

	basePrice := floorPrice + 2.0*quality
	mu := math.Log(basePrice)

	bids := make([]float64, n)
	for i := range bids {
		b := sample.LogNormal(d.rng, mu, d.cfg.Volatility)
		bids[i] = math.Max(floorPrice, b)
	}

	sort.Sort(sort.Reverse(sort.Float64Slice(bids)))
	return bids
}
