// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package strategy

import (
	"github.com/adxyz/rtbsim/pkg/auction"
	"github.com/adxyz/rtbsim/pkg/bid"
)

// adaptiveWindow is how many outcomes must accrue before running
// statistics start scaling bids.
const adaptiveWindow = 50

// smoothingFactor is the exponential smoothing weight for the running
// win rate and CPA.
const smoothingFactor = 0.1

var deviceMultipliers = map[bid.DeviceType]float64{
	bid.DeviceDesktop: 1.1,
	bid.DeviceMobile:  1.0,
	bid.DeviceTablet:  0.95,
	bid.DeviceCTV:     1.2,
}

// DynamicConfig parameterizes the dynamic strategy.
type DynamicConfig struct {
	BaseBid        float64 `toml:"base_bid"`
	MaxBid         float64 `toml:"max_bid"`
	TargetCPA      float64 `toml:"target_cpa"`
	Aggressiveness float64 `toml:"aggressiveness"`
}

// DefaultDynamicConfig returns a moderate dynamic configuration.
func DefaultDynamicConfig() DynamicConfig {
	return DynamicConfig{
		BaseBid:        2.0,
		MaxBid:         15.0,
		TargetCPA:      20.0,
		Aggressiveness: 1.0,
	}
}

// Validate rejects malformed configuration at the construction
// boundary.
func (c DynamicConfig) Validate() error {
	if c.BaseBid < 0 {
		return ErrNegativeBid
	}
	if c.MaxBid < c.BaseBid {
		return ErrInvalidBidBounds
	}
	if c.TargetCPA <= 0 {
		return ErrInvalidTargetCPA
	}
	if c.Aggressiveness <= 0 {
		return ErrInvalidTargetCPA
	}
	return nil
}

// Dynamic prices each opportunity from its expected value and quality
// signals, then adapts against its own running win rate and CPA.
type Dynamic struct {
	cfg     DynamicConfig
	history *tracker

	runningWinRate float64
	runningCPA     float64
}

// NewDynamic creates a dynamic strategy.
func NewDynamic(cfg DynamicConfig) (*Dynamic, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Dynamic{
		cfg:            cfg,
		history:        newTracker("Dynamic Bid"),
		runningWinRate: 0.5,
		runningCPA:     cfg.TargetCPA,
	}, nil
}

func (d *Dynamic) Name() string { return d.history.name }

// GetBid prices the opportunity: expected value scaled by quality and
// aggressiveness, nudged by running performance once enough history
// exists, clamped to [base, max].
func (d *Dynamic) GetBid(opp *bid.Opportunity) float64 {
	quality := qualityScore(opp)

	expectedValue := opp.ConversionProbability * opp.EstimatedValue * quality
	amount := expectedValue * d.cfg.Aggressiveness

	if len(d.history.outcomes) > adaptiveWindow {
		switch {
		case d.runningWinRate < 0.3:
			// Losing too often: push harder.
			amount *= 1.2
		case d.runningWinRate > 0.7 && d.runningCPA < d.cfg.TargetCPA*0.8:
			// Winning cheaply: there is headroom.
			amount *= 1.3
		case d.runningCPA > d.cfg.TargetCPA*1.2:
			// Paying too much per conversion: back off.
			amount *= 0.8
		}
	}

	return roundCents(clamp(amount, d.cfg.BaseBid, d.cfg.MaxBid))
}

// qualityScore rates the opportunity on [0.3, 2.0]; 1.0 is neutral.
func qualityScore(opp *bid.Opportunity) float64 {
	score := 1.0
	score += (opp.Placement.ViewabilityScore - 0.5) * 0.4
	if opp.AboveFold() {
		score += 0.3
	}
	score += (opp.User.BehaviorScore - 0.5) * 0.6

	if mult, ok := deviceMultipliers[opp.Device.Type]; ok {
		score *= mult
	}

	return clamp(score, 0.3, 2.0)
}

// Update records the outcome and refreshes the smoothed running
// statistics.
func (d *Dynamic) Update(opp *bid.Opportunity, out *auction.Outcome) {
	d.history.record(opp, out)

	won := 0.0
	if out.DidWin {
		won = 1.0
	}
	d.runningWinRate = (1-smoothingFactor)*d.runningWinRate + smoothingFactor*won

	if out.DidWin && out.Converted {
		d.runningCPA = (1-smoothingFactor)*d.runningCPA + smoothingFactor*out.ClearingPrice
	}
}

func (d *Dynamic) Stats() Stats { return d.history.stats() }

func (d *Dynamic) Reset() {
	d.history.reset()
	d.runningWinRate = 0.5
	d.runningCPA = d.cfg.TargetCPA
}
