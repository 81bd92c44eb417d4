// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package sim

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/adxyz/rtbsim/pkg/analytics"
	"github.com/adxyz/rtbsim/pkg/auction"
	"github.com/adxyz/rtbsim/pkg/bid"
	"github.com/adxyz/rtbsim/pkg/log"
	"github.com/adxyz/rtbsim/pkg/market"
	"github.com/adxyz/rtbsim/pkg/metric"
	"github.com/adxyz/rtbsim/pkg/strategy"
)

// StrategyRun holds one strategy's full results.
type StrategyRun struct {
	Stats    strategy.Stats     `json:"stats"`
	Metrics  *analytics.Metrics `json:"metrics"`
	Outcomes []*auction.Outcome `json:"outcomes,omitempty"`
}

// Result is the output of a complete scenario run.
type Result struct {
	Auctions    int                       `json:"auctions"`
	Seed        int64                     `json:"seed"`
	PricingRule string                    `json:"pricing_rule"`
	Runs        map[string]*StrategyRun   `json:"runs"`
	Comparison  []analytics.ComparisonRow `json:"comparison"`

	// Best names the strategy with the highest ROAS; Insights holds
	// the analyzer's advisory notes for it.
	Best     string   `json:"best_strategy,omitempty"`
	Insights []string `json:"insights,omitempty"`
}

// Runner drives a scenario end to end.
type Runner struct {
	cfg        Config
	strategies []strategy.Strategy
	log        log.Logger
	metrics    *metric.Metrics
}

// NewRunner validates the scenario and constructs its strategies.
// metrics may be nil.
func NewRunner(cfg Config, logger log.Logger, metrics *metric.Metrics) (*Runner, error) {
	if logger == nil {
		logger = log.NoOp()
	}
	logger = log.Named(logger, "sim")
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var strategies []strategy.Strategy
	if cfg.Fixed != nil {
		s, err := strategy.NewFixed(cfg.Fixed.Amount)
		if err != nil {
			return nil, err
		}
		strategies = append(strategies, s)
	}
	if cfg.Dynamic != nil {
		s, err := strategy.NewDynamic(*cfg.Dynamic)
		if err != nil {
			return nil, err
		}
		strategies = append(strategies, s)
	}
	if cfg.Predictive != nil {
		pcfg := *cfg.Predictive
		if pcfg.Seed == 0 {
			pcfg.Seed = cfg.Seed
		}
		s, err := strategy.NewPredictive(pcfg, logger)
		if err != nil {
			return nil, err
		}
		strategies = append(strategies, s)
	}

	return &Runner{
		cfg:        cfg,
		strategies: strategies,
		log:        logger,
		metrics:    metrics,
	}, nil
}

// Run generates the opportunity stream once and drives every strategy
// through it sequentially under a single market. All strategies see
// the same opportunities and the same lazily generated floors, so the
// comparison is apples to apples. The context is checked between
// strategy batches; a batch itself always runs to completion.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	r.log.Info("scenario starting",
		"auctions", r.cfg.Auctions,
		"strategies", len(r.strategies),
		"rule", r.cfg.PricingRule,
		"seed", r.cfg.Seed)

	opps := bid.Generate(r.cfg.Auctions, r.cfg.Seed)

	dyn, err := market.New(r.cfg.Market, r.cfg.Seed)
	if err != nil {
		return nil, err
	}
	simulator := auction.NewSimulator(
		auction.PricingRule(r.cfg.PricingRule), dyn, r.cfg.Seed+1, r.log, r.metrics)

	analyzer := analytics.NewAnalyzer(r.cfg.Seed, r.log)

	result := &Result{
		Auctions:    r.cfg.Auctions,
		Seed:        r.cfg.Seed,
		PricingRule: r.cfg.PricingRule,
		Runs:        make(map[string]*StrategyRun, len(r.strategies)),
	}
	byName := make(map[string][]*auction.Outcome, len(r.strategies))

	for _, strat := range r.strategies {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		outcomes := simulator.SimulateBatch(opps, strat)

		metrics, err := analyzer.Analyze(strat.Name(), outcomes, opps)
		if err != nil {
			return nil, fmt.Errorf("sim: analyze %q: %w", strat.Name(), err)
		}

		result.Runs[strat.Name()] = &StrategyRun{
			Stats:    strat.Stats(),
			Metrics:  metrics,
			Outcomes: outcomes,
		}
		byName[strat.Name()] = outcomes
	}

	comparison, err := analyzer.Compare(byName)
	if err != nil {
		return nil, err
	}
	result.Comparison = comparison

	if len(comparison) > 0 {
		best := comparison[0]
		for _, row := range comparison[1:] {
			if row.ROAS > best.ROAS {
				best = row
			}
		}
		result.Best = best.Strategy
		result.Insights = analyzer.Insights(result.Runs[best.Strategy].Metrics)
	}

	r.log.Info("scenario complete",
		"strategies", len(result.Runs),
		"best", result.Best)
	return result, nil
}

// WriteFile writes the result as indented JSON.
func (res *Result) WriteFile(path string) error {
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("sim: marshal result: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("sim: write result: %w", err)
	}
	return nil
}
