// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package auction resolves simulated ad auctions: one bid from us,
// market-generated competition, a pricing rule, and a conversion draw.
package auction

import (
	"math/rand"
	"sort"

	"github.com/adxyz/rtbsim/pkg/bid"
	"github.com/adxyz/rtbsim/pkg/log"
	"github.com/adxyz/rtbsim/pkg/metric"
)

// MarketDynamics supplies the competitive context for an auction.
// *market.Dynamics is the production implementation.
type MarketDynamics interface {
	FloorPrice() float64
	CompetitorCount(opp *bid.Opportunity) int
	CompetitorBids(n int, floorPrice float64, opp *bid.Opportunity) []float64
}

// PricingRule selects how the winner's price is set.
type PricingRule string

const (
	// FirstPrice: winner pays their own bid.
	FirstPrice PricingRule = "first_price"
	// SecondPrice: winner pays the runner-up's bid, or the floor when
	// there is no runner-up.
	SecondPrice PricingRule = "second_price"
	// VCG: single-item VCG collapses to the winner paying their own
	// bid. Kept as a distinct rule for configuration compatibility.
	VCG PricingRule = "vcg"
)

// Outcome is the result of one resolved auction. It is created exactly
// once per auction and never mutated afterward.
type Outcome struct {
	OpportunityID string `json:"opportunity_id"`

	// WinnerBid is the top bid of the round: ours on a win, the
	// market's on a loss. Nil when the auction never ran because our
	// bid fell below the floor.
	WinnerBid *float64 `json:"winner_bid,omitempty"`

	// ClearingPrice is what we paid on a win. On a loss after a full
	// competitive round it reports the market's winning bid for
	// reference; on a floor rejection it is strictly zero.
	ClearingPrice float64 `json:"clearing_price"`

	// SecondPrice is the runner-up bid across all bids, nil when fewer
	// than two bids existed.
	SecondPrice *float64 `json:"second_price,omitempty"`

	DidWin         bool    `json:"did_win"`
	NumCompetitors int     `json:"num_competitors"`
	FloorPrice     float64 `json:"floor_price"`
	Converted      bool    `json:"converted"`
	Revenue        float64 `json:"revenue"`
}

// Simulator resolves auctions under a fixed pricing rule and market.
// It holds no per-auction state across batches beyond its
// configuration and random source.
type Simulator struct {
	rule    PricingRule
	market  MarketDynamics
	rng     *rand.Rand
	log     log.Logger
	metrics *metric.Metrics
}

// NewSimulator creates an auction simulator. The seed drives the
// conversion draws; metrics may be nil.
func NewSimulator(rule PricingRule, dyn MarketDynamics, seed int64, logger log.Logger, metrics *metric.Metrics) *Simulator {
	if logger == nil {
		logger = log.NoOp()
	}
	return &Simulator{
		rule:    rule,
		market:  dyn,
		rng:     rand.New(rand.NewSource(seed)),
		log:     log.Named(logger, "auction"),
		metrics: metrics,
	}
}

// Run resolves a single auction for our bid on the given opportunity.
// It never fails for a well-formed opportunity: every call produces
// exactly one outcome.
func (s *Simulator) Run(opp *bid.Opportunity, ourBid float64) *Outcome {
	// Lazy floor: populated exactly once if the opportunity arrived
	// without one.
	if opp.FloorPrice <= 0 {
		opp.FloorPrice = s.market.FloorPrice()
	}

	if ourBid < opp.FloorPrice {
		s.observe(&stats{})
		s.log.Debug("bid below floor",
			"opportunity", opp.ID,
			"bid", ourBid,
			"floor", opp.FloorPrice)
		return &Outcome{
			OpportunityID: opp.ID,
			FloorPrice:    opp.FloorPrice,
		}
	}

	numCompetitors := s.market.CompetitorCount(opp)
	competitorBids := s.market.CompetitorBids(numCompetitors, opp.FloorPrice, opp)

	// Our bid first, then competitors: on an exact top-bid tie the
	// earlier entry survives the stable sort, so ties resolve in our
	// favor. This is a deliberate policy, asserted in tests.
	allBids := make([]float64, 0, len(competitorBids)+1)
	allBids = append(allBids, ourBid)
	allBids = append(allBids, competitorBids...)
	sort.SliceStable(allBids, func(i, j int) bool { return allBids[i] > allBids[j] })

	didWin := allBids[0] == ourBid

	var secondPrice *float64
	if len(allBids) > 1 {
		sp := allBids[1]
		secondPrice = &sp
	}

	var clearingPrice float64
	switch s.rule {
	case SecondPrice:
		runnerUp := opp.FloorPrice
		if secondPrice != nil {
			runnerUp = *secondPrice
		}
		if didWin {
			clearingPrice = runnerUp
		} else {
			clearingPrice = allBids[0]
		}
	default: // FirstPrice and VCG: winner pays own bid
		if didWin {
			clearingPrice = ourBid
		} else {
			clearingPrice = allBids[0]
		}
	}

	converted := false
	revenue := 0.0
	if didWin {
		converted = s.rng.Float64() < opp.ConversionProbability
		if converted {
			revenue = opp.EstimatedValue
		}
	}

	winnerBid := allBids[0]
	out := &Outcome{
		OpportunityID:  opp.ID,
		WinnerBid:      &winnerBid,
		ClearingPrice:  clearingPrice,
		SecondPrice:    secondPrice,
		DidWin:         didWin,
		NumCompetitors: numCompetitors,
		FloorPrice:     opp.FloorPrice,
		Converted:      converted,
		Revenue:        revenue,
	}

	s.observe(&stats{
		ran:         true,
		won:         didWin,
		converted:   converted,
		price:       clearingPrice,
		revenue:     revenue,
		competitors: numCompetitors,
	})

	return out
}

type stats struct {
	ran         bool
	won         bool
	converted   bool
	price       float64
	revenue     float64
	competitors int
}

func (s *Simulator) observe(st *stats) {
	if s.metrics == nil {
		return
	}
	s.metrics.AuctionsRun.Inc()
	if !st.ran {
		s.metrics.FloorRejects.Inc()
		return
	}
	s.metrics.CompetitorN.Observe(float64(st.competitors))
	if st.won {
		s.metrics.AuctionsWon.Inc()
		s.metrics.SpendTotal.Add(st.price)
		s.metrics.ClearingPrice.Observe(st.price)
	}
	if st.converted {
		s.metrics.Conversions.Inc()
		s.metrics.RevenueTotal.Add(st.revenue)
	}
}
