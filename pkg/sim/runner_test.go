// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package sim

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/adxyz/rtbsim/pkg/analytics"
	"github.com/adxyz/rtbsim/pkg/auction"
	"github.com/adxyz/rtbsim/pkg/bid"
	"github.com/adxyz/rtbsim/pkg/log"
	"github.com/adxyz/rtbsim/pkg/market"
	"github.com/adxyz/rtbsim/pkg/strategy"
)

func TestConfigValidate(t *testing.T) {
	fixed := FixedConfig{Amount: 2.5}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"default ok", func(*Config) {}, false},
		{"zero auctions", func(c *Config) { c.Auctions = 0 }, true},
		{"bad pricing rule", func(c *Config) { c.PricingRule = "dutch" }, true},
		{"no strategies", func(c *Config) { c.Fixed, c.Dynamic, c.Predictive = nil, nil, nil }, true},
		{"negative fixed", func(c *Config) { f := FixedConfig{Amount: -1}; c.Fixed = &f }, true},
		{"bad market", func(c *Config) { c.Market.AvgCompetitors = 0 }, true},
		{"only fixed", func(c *Config) { c.Fixed, c.Dynamic, c.Predictive = &fixed, nil, nil }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	require := require.New(t)

	path := filepath.Join(t.TempDir(), "scenario.toml")
	require.NoError(os.WriteFile(path, []byte(`
auctions = 500
seed = 7
pricing_rule = "first_price"

[market]
avg_competitors = 3.0
volatility = 0.2
floor_price_mean = 0.4
floor_price_std = 0.1

[fixed]
amount = 1.75
`), 0o644))

	cfg, err := Load(path)
	require.NoError(err)
	require.Equal(500, cfg.Auctions)
	require.Equal(int64(7), cfg.Seed)
	require.Equal("first_price", cfg.PricingRule)
	require.Equal(3.0, cfg.Market.AvgCompetitors)
	require.NotNil(cfg.Fixed)
	require.Equal(1.75, cfg.Fixed.Amount)
	require.Nil(cfg.Dynamic)
	require.NoError(cfg.Validate())
}

func TestRunnerRejectsInvalidConfig(t *testing.T) {
	cfg := Default()
	cfg.Auctions = -5
	_, err := NewRunner(cfg, log.NoOp(), nil)
	require.Error(t, err)
}

func TestBatchOrderAndCount(t *testing.T) {
	require := require.New(t)

	dyn, err := market.New(market.DefaultConfig(), 1)
	require.NoError(err)
	simulator := auction.NewSimulator(auction.SecondPrice, dyn, 1, log.NoOp(), nil)

	strat, err := strategy.NewFixed(2.5)
	require.NoError(err)

	opps := bid.Generate(100, 42)
	outcomes := simulator.SimulateBatch(opps, strat)

	require.Len(outcomes, 100)
	for i, out := range outcomes {
		require.Equal(opps[i].ID, out.OpportunityID)
	}
	require.Equal(100, strat.Stats().TotalAuctions)
}

func TestFixedBidSecondPriceScenario(t *testing.T) {
	require := require.New(t)

	// 100 seeded opportunities at $2.50 fixed under second price with
	// intensity 5: the market's randomness makes a clean sweep in
	// either direction implausible.
	dyn, err := market.New(market.DefaultConfig(), 42)
	require.NoError(err)
	simulator := auction.NewSimulator(auction.SecondPrice, dyn, 42, log.NoOp(), nil)

	strat, err := strategy.NewFixed(2.5)
	require.NoError(err)

	outcomes := simulator.SimulateBatch(bid.Generate(100, 42), strat)
	wins := 0
	for _, out := range outcomes {
		if out.DidWin {
			wins++
		}
	}
	require.Greater(wins, 0)
	require.Less(wins, 100)
}

func TestRunnerFullScenario(t *testing.T) {
	require := require.New(t)

	cfg := Default()
	cfg.Auctions = 300

	r, err := NewRunner(cfg, log.NoOp(), nil)
	require.NoError(err)

	result, err := r.Run(context.Background())
	require.NoError(err)
	require.Len(result.Runs, 3)
	require.Len(result.Comparison, 3)

	for name, run := range result.Runs {
		require.Equal(300, run.Stats.TotalAuctions, name)
		require.Len(run.Outcomes, 300)
		require.NotNil(run.Metrics)
		require.Equal(300, run.Metrics.TotalAuctions)
	}
}

func TestRunnerReportsBestStrategy(t *testing.T) {
	require := require.New(t)

	cfg := Default()
	cfg.Auctions = 300

	r, err := NewRunner(cfg, log.NoOp(), nil)
	require.NoError(err)

	result, err := r.Run(context.Background())
	require.NoError(err)

	require.NotEmpty(result.Best)
	require.Contains(result.Runs, result.Best)

	bestROAS := result.Runs[result.Best].Metrics.ROAS
	for _, row := range result.Comparison {
		require.GreaterOrEqual(bestROAS, row.ROAS)
	}

	// The advisory notes belong to the winning strategy's metrics.
	expected := analytics.NewAnalyzer(0, log.NoOp()).Insights(result.Runs[result.Best].Metrics)
	require.Equal(expected, result.Insights)
}

func TestRunnerContextCancelled(t *testing.T) {
	require := require.New(t)

	cfg := Default()
	cfg.Auctions = 10

	r, err := NewRunner(cfg, log.NoOp(), nil)
	require.NoError(err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = r.Run(ctx)
	require.ErrorIs(err, context.Canceled)
}

func TestResultWriteFile(t *testing.T) {
	require := require.New(t)

	cfg := Default()
	cfg.Auctions = 50
	cfg.Dynamic = nil
	cfg.Predictive = nil

	r, err := NewRunner(cfg, log.NoOp(), nil)
	require.NoError(err)
	result, err := r.Run(context.Background())
	require.NoError(err)

	path := filepath.Join(t.TempDir(), "results.json")
	require.NoError(result.WriteFile(path))

	data, err := os.ReadFile(path)
	require.NoError(err)

	var decoded Result
	require.NoError(json.Unmarshal(data, &decoded))
	require.Equal(50, decoded.Auctions)
	require.Contains(decoded.Runs, "Fixed Bid")
}
