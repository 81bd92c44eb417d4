// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package strategy

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/adxyz/rtbsim/pkg/auction"
	"github.com/adxyz/rtbsim/pkg/bid"
	"github.com/adxyz/rtbsim/pkg/log"
)

func newTestPredictive(t *testing.T, mutate func(*PredictiveConfig)) *Predictive {
	t.Helper()
	cfg := DefaultPredictiveConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	s, err := NewPredictive(cfg, log.NoOp())
	require.NoError(t, err)
	return s
}

func TestPredictiveConstruction(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*PredictiveConfig)
		ok     bool
	}{
		{"defaults", nil, true},
		{"negative base", func(c *PredictiveConfig) { c.BaseBid = -1 }, false},
		{"max below base", func(c *PredictiveConfig) { c.MaxBid = 0.5 }, false},
		{"exploration above one", func(c *PredictiveConfig) { c.ExplorationRate = 1.5 }, false},
		{"min samples too small", func(c *PredictiveConfig) { c.MinSamples = 1 }, false},
		{"zero retrain interval", func(c *PredictiveConfig) { c.RetrainInterval = 0 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultPredictiveConfig()
			if tt.mutate != nil {
				tt.mutate(&cfg)
			}
			_, err := NewPredictive(cfg, log.NoOp())
			if tt.ok {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
			}
		})
	}
}

func TestPredictiveBidBounds(t *testing.T) {
	require := require.New(t)

	s := newTestPredictive(t, nil)
	for _, opp := range bid.Generate(300, 1) {
		amount := s.GetBid(opp)
		require.GreaterOrEqual(amount, s.cfg.BaseBid)
		require.LessOrEqual(amount, s.cfg.MaxBid)
	}
}

func TestPredictiveHeuristicBeforeMinSamples(t *testing.T) {
	require := require.New(t)

	// Exploration off so the path is deterministic.
	s := newTestPredictive(t, func(c *PredictiveConfig) { c.ExplorationRate = 0 })

	opp := bid.New()
	require.Equal(modelUntrained, s.state)
	require.Equal(s.heuristicBid(opp), s.GetBid(opp))
	require.Equal(modelUntrained, s.state)
}

func TestPredictiveLazyTrainTransition(t *testing.T) {
	require := require.New(t)

	s := newTestPredictive(t, func(c *PredictiveConfig) {
		c.ExplorationRate = 0
		c.MinSamples = 20
		c.RetrainInterval = 1000 // keep periodic refit out of the way
	})

	opps := bid.Generate(20, 2)
	for _, opp := range opps {
		amount := s.GetBid(opp)
		s.Update(opp, wonOutcome(opp.ID, amount, 0, false))
	}
	require.Equal(modelUntrained, s.state)

	// First bid past the threshold triggers the lazy fit.
	probe := bid.New()
	s.GetBid(probe)
	require.Equal(modelTrained, s.state)
	require.NotNil(s.model)
}

func TestPredictiveFeaturePairing(t *testing.T) {
	require := require.New(t)

	s := newTestPredictive(t, func(c *PredictiveConfig) { c.ExplorationRate = 0 })

	opp := bid.New()
	amount := s.GetBid(opp)
	require.Contains(s.pending, opp.ID)

	s.Update(opp, wonOutcome(opp.ID, amount, 5.0, true))
	require.NotContains(s.pending, opp.ID)
	require.Len(s.samples, 1)
	require.InDelta(amount*0.95, s.samples[0].target, 1e-9)
	require.Len(s.samples[0].features, 11)
}

func TestTrainingTargets(t *testing.T) {
	require := require.New(t)

	target, ok := trainingTarget(wonOutcome("a", 10.0, 20.0, true))
	require.True(ok)
	require.InDelta(9.5, target, 1e-9)

	target, ok = trainingTarget(wonOutcome("b", 10.0, 0, false))
	require.True(ok)
	require.InDelta(7.0, target, 1e-9)

	target, ok = trainingTarget(lostOutcome("c", 10.0))
	require.True(ok)
	require.InDelta(9.0*1.05, target, 1e-9)

	// Loss without an observed second price carries no signal.
	_, ok = trainingTarget(&auction.Outcome{DidWin: false})
	require.False(ok)
}

func TestPredictiveSkipsUnusableSample(t *testing.T) {
	require := require.New(t)

	s := newTestPredictive(t, func(c *PredictiveConfig) { c.ExplorationRate = 0 })

	opp := bid.New()
	s.GetBid(opp)

	out := lostOutcome(opp.ID, 8.0)
	out.SecondPrice = nil
	s.Update(opp, out)

	require.Empty(s.samples)
	require.NotContains(s.pending, opp.ID)
	require.Equal(1, s.Stats().TotalAuctions)
}

func TestPredictiveReset(t *testing.T) {
	require := require.New(t)

	s := newTestPredictive(t, func(c *PredictiveConfig) {
		c.ExplorationRate = 0
		c.MinSamples = 15
		c.RetrainInterval = 15
	})

	// The 15th update lands on the retrain cadence and fits the model.
	opps := bid.Generate(15, 3)
	for _, opp := range opps {
		amount := s.GetBid(opp)
		s.Update(opp, wonOutcome(opp.ID, amount, 0, false))
	}
	require.Equal(modelTrained, s.state)

	s.Reset()
	require.Equal(modelUntrained, s.state)
	require.Nil(s.model)
	require.Empty(s.samples)
	require.Equal(0, s.Stats().TotalAuctions)
}

func TestCompositeQuality(t *testing.T) {
	require := require.New(t)

	opp := bid.New() // viewability 0.7, behavior 0.5, above fold
	require.InDelta(0.7*0.4+0.5*0.3+1.0*0.3, compositeQuality(opp), 1e-9)

	opp.Placement.Position = bid.PositionBelowFold
	require.InDelta(0.7*0.4+0.5*0.3+0.5*0.3, compositeQuality(opp), 1e-9)
}
