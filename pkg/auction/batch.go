// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package auction

import (
	"github.com/adxyz/rtbsim/pkg/bid"
)

// BidStrategy is the consumer-side view of a bidding strategy. Update
// is invoked synchronously after each auction so adaptive strategies
// see outcomes in input order.
type BidStrategy interface {
	Name() string
	GetBid(opp *bid.Opportunity) float64
	Update(opp *bid.Opportunity, out *Outcome)
}

// SimulateBatch drives the opportunities through the strategy in input
// order, strictly sequentially. The returned outcomes match the input
// order one to one.
func (s *Simulator) SimulateBatch(opps []*bid.Opportunity, strategy BidStrategy) []*Outcome {
	outcomes := make([]*Outcome, 0, len(opps))

	for _, opp := range opps {
		amount := strategy.GetBid(opp)
		if s.metrics != nil {
			s.metrics.BidsRequested.WithLabelValues(strategy.Name()).Inc()
		}

		out := s.Run(opp, amount)
		outcomes = append(outcomes, out)

		strategy.Update(opp, out)
	}

	s.log.Info("batch complete",
		"strategy", strategy.Name(),
		"auctions", len(outcomes))

	return outcomes
}
