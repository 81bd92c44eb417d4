// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package sim runs complete simulation scenarios: a generated
// opportunity stream driven through each configured strategy under one
// market, with per-strategy analytics at the end.
package sim

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/adxyz/rtbsim/pkg/auction"
	"github.com/adxyz/rtbsim/pkg/market"
	"github.com/adxyz/rtbsim/pkg/strategy"
)

// FixedConfig configures the fixed baseline strategy.
type FixedConfig struct {
	Amount float64 `toml:"amount"`
}

// Config is a full simulation scenario. Strategy sections are
// optional; a nil section means the strategy does not run.
type Config struct {
	Auctions    int    `toml:"auctions"`
	Seed        int64  `toml:"seed"`
	PricingRule string `toml:"pricing_rule"`

	Market market.Config `toml:"market"`

	Fixed      *FixedConfig               `toml:"fixed"`
	Dynamic    *strategy.DynamicConfig    `toml:"dynamic"`
	Predictive *strategy.PredictiveConfig `toml:"predictive"`
}

// Default returns the stock scenario: 10k second-price auctions with
// all three strategies enabled.
func Default() Config {
	fixed := FixedConfig{Amount: 2.5}
	dynamic := strategy.DefaultDynamicConfig()
	predictive := strategy.DefaultPredictiveConfig()

	return Config{
		Auctions:    10000,
		Seed:        42,
		PricingRule: string(auction.SecondPrice),
		Market:      market.DefaultConfig(),
		Fixed:       &fixed,
		Dynamic:     &dynamic,
		Predictive:  &predictive,
	}
}

// Load reads a scenario from a TOML file, applying defaults for
// omitted top-level fields.
func Load(path string) (Config, error) {
	cfg := Config{
		Auctions:    10000,
		Seed:        42,
		PricingRule: string(auction.SecondPrice),
		Market:      market.DefaultConfig(),
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("sim: load config: %w", err)
	}
	return cfg, nil
}

// Validate checks the scenario at the construction boundary. Strategy
// sections validate themselves again inside their constructors.
func (c Config) Validate() error {
	if c.Auctions <= 0 {
		return fmt.Errorf("sim: auctions must be positive, got %d", c.Auctions)
	}
	switch auction.PricingRule(c.PricingRule) {
	case auction.FirstPrice, auction.SecondPrice, auction.VCG:
	default:
		return fmt.Errorf("sim: unknown pricing rule %q", c.PricingRule)
	}
	if err := c.Market.Validate(); err != nil {
		return err
	}
	if c.Fixed == nil && c.Dynamic == nil && c.Predictive == nil {
		return fmt.Errorf("sim: no strategies configured")
	}
	if c.Fixed != nil && c.Fixed.Amount < 0 {
		return strategy.ErrNegativeBid
	}
	if c.Dynamic != nil {
		if err := c.Dynamic.Validate(); err != nil {
			return err
		}
	}
	if c.Predictive != nil {
		if err := c.Predictive.Validate(); err != nil {
			return err
		}
	}
	return nil
}
