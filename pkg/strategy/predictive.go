// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package strategy

import (
	"math/rand"

	"github.com/adxyz/rtbsim/pkg/auction"
	"github.com/adxyz/rtbsim/pkg/bid"
	"github.com/adxyz/rtbsim/pkg/log"
	"github.com/adxyz/rtbsim/pkg/sample"
)

// conservativeMultiplier discounts the heuristic bid used before the
// model has trained.
const conservativeMultiplier = 0.8

// modelState tags the predictive model lifecycle explicitly.
type modelState int

const (
	modelUntrained modelState = iota
	modelTrained
)

// PredictiveConfig parameterizes the predictive strategy.
type PredictiveConfig struct {
	BaseBid         float64 `toml:"base_bid"`
	MaxBid          float64 `toml:"max_bid"`
	TargetCPA       float64 `toml:"target_cpa"`
	ExplorationRate float64 `toml:"exploration_rate"`
	MinSamples      int     `toml:"min_samples"`
	RetrainInterval int     `toml:"retrain_interval"`
	Seed            int64   `toml:"seed"`
}

// DefaultPredictiveConfig returns the stock predictive configuration.
func DefaultPredictiveConfig() PredictiveConfig {
	return PredictiveConfig{
		BaseBid:         2.0,
		MaxBid:          15.0,
		TargetCPA:       20.0,
		ExplorationRate: 0.1,
		MinSamples:      100,
		RetrainInterval: 500,
	}
}

// Validate rejects malformed configuration at the construction
// boundary.
func (c PredictiveConfig) Validate() error {
	if c.BaseBid < 0 {
		return ErrNegativeBid
	}
	if c.MaxBid < c.BaseBid {
		return ErrInvalidBidBounds
	}
	if c.ExplorationRate < 0 || c.ExplorationRate > 1 {
		return ErrInvalidExploration
	}
	if c.MinSamples < 2 {
		return errTooFewSamples
	}
	if c.RetrainInterval < 1 {
		return errTooFewSamples
	}
	return nil
}

// trainingSample pairs a feature vector captured at bid time with the
// target bid derived from its eventual outcome.
type trainingSample struct {
	features []float64
	target   float64
}

// Predictive learns a bid from historical outcomes with a lazily
// fitted, periodically refitted regression model. Until enough history
// exists, or whenever the model is unavailable, it degrades to a
// conservative heuristic.
type Predictive struct {
	cfg     PredictiveConfig
	history *tracker
	rng     *rand.Rand
	log     log.Logger

	state   modelState
	model   *regressor
	pending map[string][]float64 // opportunity ID -> features captured at bid time
	samples []trainingSample
}

// NewPredictive creates a predictive strategy.
func NewPredictive(cfg PredictiveConfig, logger log.Logger) (*Predictive, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.NoOp()
	}
	logger = log.Named(logger, "predictive")
	return &Predictive{
		cfg:     cfg,
		history: newTracker("Predictive Bid"),
		rng:     rand.New(rand.NewSource(cfg.Seed)),
		log:     logger,
		state:   modelUntrained,
		pending: make(map[string][]float64),
	}, nil
}

func (p *Predictive) Name() string { return p.history.name }

// GetBid returns a model-driven bid, exploring randomly with the
// configured probability. Features are captured here, at bid time, so
// Update can pair them with the outcome.
func (p *Predictive) GetBid(opp *bid.Opportunity) float64 {
	features := extractFeatures(opp)
	p.pending[opp.ID] = features

	// Exploration keeps the training data varied.
	if p.rng.Float64() < p.cfg.ExplorationRate {
		return roundCents(sample.Uniform(p.rng, p.cfg.BaseBid, p.cfg.MaxBid))
	}

	if len(p.history.outcomes) < p.cfg.MinSamples {
		return p.heuristicBid(opp)
	}

	if p.state == modelUntrained {
		p.train()
	}
	if p.state != modelTrained {
		return p.heuristicBid(opp)
	}

	predicted, err := p.model.predict(features)
	if err != nil {
		p.log.Debug("prediction failed, using heuristic", "error", err)
		return p.heuristicBid(opp)
	}
	return roundCents(clamp(predicted, p.cfg.BaseBid, p.cfg.MaxBid))
}

// heuristicBid is the documented fallback: expected value with a
// conservative discount, clamped to the configured bounds.
func (p *Predictive) heuristicBid(opp *bid.Opportunity) float64 {
	ev := opp.ConversionProbability * opp.EstimatedValue * compositeQuality(opp)
	return roundCents(clamp(ev*conservativeMultiplier, p.cfg.BaseBid, p.cfg.MaxBid))
}

// Update pairs the outcome with the features captured at bid time,
// derives a training target, and refits on the configured cadence.
func (p *Predictive) Update(opp *bid.Opportunity, out *auction.Outcome) {
	p.history.record(opp, out)

	features, ok := p.pending[opp.ID]
	if ok {
		delete(p.pending, opp.ID)
		if target, usable := trainingTarget(out); usable {
			p.samples = append(p.samples, trainingSample{features: features, target: target})
		}
	}

	n := len(p.history.outcomes)
	if n >= p.cfg.MinSamples && n%p.cfg.RetrainInterval == 0 {
		p.train()
	}
}

// trainingTarget converts an outcome into a target bid:
// won and converted means the price was near-optimal, won without a
// conversion means we overbid, and a loss means the runner-up price
// plus a margin would have been needed. Losses without an observed
// second price carry no signal and are skipped.
func trainingTarget(out *auction.Outcome) (float64, bool) {
	switch {
	case out.DidWin && out.Converted:
		return out.ClearingPrice * 0.95, true
	case out.DidWin:
		return out.ClearingPrice * 0.7, true
	case out.SecondPrice != nil:
		return *out.SecondPrice * 1.05, true
	default:
		return 0, false
	}
}

// train fits the regression model on the accumulated samples. Failure
// is not an error surface: the strategy simply stays on (or returns
// to) the heuristic.
func (p *Predictive) train() {
	if len(p.samples) < p.cfg.MinSamples {
		return
	}

	X := make([][]float64, len(p.samples))
	y := make([]float64, len(p.samples))
	for i, s := range p.samples {
		X[i] = s.features
		y[i] = s.target
	}

	model, err := fitRegressor(X, y)
	if err != nil {
		p.log.Warn("model fit failed, keeping heuristic", "error", err, "samples", len(p.samples))
		return
	}

	p.model = model
	p.state = modelTrained
	p.log.Debug("model trained", "samples", len(p.samples))
}

func (p *Predictive) Stats() Stats { return p.history.stats() }

func (p *Predictive) Reset() {
	p.history.reset()
	p.state = modelUntrained
	p.model = nil
	p.pending = make(map[string][]float64)
	p.samples = nil
}

// extractFeatures builds the model input vector from an opportunity.
func extractFeatures(opp *bid.Opportunity) []float64 {
	features := make([]float64, 0, 11)

	features = append(features,
		opp.ConversionProbability,
		opp.EstimatedValue,
		opp.Placement.ViewabilityScore,
		opp.User.BehaviorScore,
	)

	for _, dt := range bid.DeviceTypes {
		if opp.Device.Type == dt {
			features = append(features, 1)
		} else {
			features = append(features, 0)
		}
	}

	fold := 0.0
	if opp.AboveFold() {
		fold = 1.0
	}
	features = append(features,
		fold,
		float64(opp.Timestamp.Hour()),
		compositeQuality(opp),
	)

	return features
}

// compositeQuality blends viewability, behavior, and fold position
// into one score.
func compositeQuality(opp *bid.Opportunity) float64 {
	fold := 0.5
	if opp.AboveFold() {
		fold = 1.0
	}
	return opp.Placement.ViewabilityScore*0.4 +
		opp.User.BehaviorScore*0.3 +
		fold*0.3
}
