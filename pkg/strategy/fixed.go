// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package strategy

import (
	"github.com/adxyz/rtbsim/pkg/auction"
	"github.com/adxyz/rtbsim/pkg/bid"
)

// Fixed bids a constant amount regardless of opportunity content. The
// baseline every other strategy is compared against.
type Fixed struct {
	amount  float64
	history *tracker
}

// NewFixed creates a fixed strategy. A negative amount is rejected.
func NewFixed(amount float64) (*Fixed, error) {
	if amount < 0 {
		return nil, ErrNegativeBid
	}
	return &Fixed{
		amount:  amount,
		history: newTracker("Fixed Bid"),
	}, nil
}

func (f *Fixed) Name() string { return f.history.name }

// GetBid always returns the configured amount.
func (f *Fixed) GetBid(*bid.Opportunity) float64 { return f.amount }

// Update records the outcome. Fixed does not adapt.
func (f *Fixed) Update(opp *bid.Opportunity, out *auction.Outcome) {
	f.history.record(opp, out)
}

func (f *Fixed) Stats() Stats { return f.history.stats() }

func (f *Fixed) Reset() { f.history.reset() }
