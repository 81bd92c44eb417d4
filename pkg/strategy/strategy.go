// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package strategy implements bidding strategies behind a single
// contract. Each variant owns its configuration and history state;
// nothing is shared across instances.
package strategy

import (
	"errors"
	"math"
	"time"

	"github.com/adxyz/rtbsim/pkg/auction"
	"github.com/adxyz/rtbsim/pkg/bid"
)

var (
	ErrNegativeBid        = errors.New("strategy: bid amount must be non-negative")
	ErrInvalidBidBounds   = errors.New("strategy: max bid must be at least base bid")
	ErrInvalidTargetCPA   = errors.New("strategy: target CPA must be positive")
	ErrInvalidExploration = errors.New("strategy: exploration rate must be in [0,1]")
)

// Strategy is a bidding strategy. Update is a no-op for variants that
// do not learn from outcomes.
type Strategy interface {
	Name() string
	GetBid(opp *bid.Opportunity) float64
	Update(opp *bid.Opportunity, out *auction.Outcome)
	Stats() Stats
	Reset()
}

// Stats summarizes a strategy's recorded performance. All fields are
// zero when no outcomes have been recorded.
type Stats struct {
	StrategyName  string  `json:"strategy_name"`
	TotalAuctions int     `json:"total_auctions"`
	Wins          int     `json:"wins"`
	WinRate       float64 `json:"win_rate"`
	TotalSpend    float64 `json:"total_spend"`
	TotalRevenue  float64 `json:"total_revenue"`
	Conversions   int     `json:"conversions"`
	AvgCPA        float64 `json:"avg_cpa"`
	ROAS          float64 `json:"roas"`
	AvgBid        float64 `json:"avg_bid"`
	AvgPricePaid  float64 `json:"avg_price_paid"`
}

// BidRecord is one entry of a strategy's bid history.
type BidRecord struct {
	OpportunityID string
	Amount        float64
	Timestamp     time.Time
}

// tracker owns the two append-only histories every strategy keeps.
// Exactly one entry lands in each per auction participated in.
type tracker struct {
	name     string
	bids     []BidRecord
	outcomes []*auction.Outcome
}

func newTracker(name string) *tracker {
	return &tracker{name: name}
}

func (t *tracker) record(opp *bid.Opportunity, out *auction.Outcome) {
	amount := 0.0
	if out.DidWin && out.WinnerBid != nil {
		amount = *out.WinnerBid
	}
	t.bids = append(t.bids, BidRecord{
		OpportunityID: opp.ID,
		Amount:        amount,
		Timestamp:     opp.Timestamp,
	})
	t.outcomes = append(t.outcomes, out)
}

func (t *tracker) reset() {
	t.bids = nil
	t.outcomes = nil
}

func (t *tracker) stats() Stats {
	if len(t.outcomes) == 0 {
		return Stats{StrategyName: t.name}
	}

	s := Stats{
		StrategyName:  t.name,
		TotalAuctions: len(t.outcomes),
	}

	bidSum := 0.0
	for _, out := range t.outcomes {
		s.TotalRevenue += out.Revenue
		if out.Converted {
			s.Conversions++
		}
		if out.DidWin {
			s.Wins++
			s.TotalSpend += out.ClearingPrice
			if out.WinnerBid != nil {
				bidSum += *out.WinnerBid
			}
		}
	}

	s.WinRate = float64(s.Wins) / float64(s.TotalAuctions)
	if s.Conversions > 0 {
		s.AvgCPA = s.TotalSpend / float64(s.Conversions)
	}
	if s.TotalSpend > 0 {
		s.ROAS = s.TotalRevenue / s.TotalSpend
	}
	if s.Wins > 0 {
		s.AvgBid = bidSum / float64(s.Wins)
		s.AvgPricePaid = s.TotalSpend / float64(s.Wins)
	}

	return s
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
