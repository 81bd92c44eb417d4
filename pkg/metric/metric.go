// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package metric

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all simulator metrics.
type Metrics struct {
	registry *prometheus.Registry

	// Auction metrics
	AuctionsRun  prometheus.Counter
	AuctionsWon  prometheus.Counter
	FloorRejects prometheus.Counter
	Conversions  prometheus.Counter

	// Per-strategy metrics
	BidsRequested *prometheus.CounterVec

	// Money metrics
	SpendTotal   prometheus.Counter
	RevenueTotal prometheus.Counter

	// Distribution metrics
	ClearingPrice prometheus.Histogram
	CompetitorN   prometheus.Histogram
}

// New creates a metrics instance with its own registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		AuctionsRun: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "rtbsim",
			Name:      "auctions_run_total",
			Help:      "Total number of auctions resolved",
		}),
		AuctionsWon: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "rtbsim",
			Name:      "auctions_won_total",
			Help:      "Total number of auctions we won",
		}),
		FloorRejects: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "rtbsim",
			Name:      "floor_rejects_total",
			Help:      "Total number of bids rejected below floor",
		}),
		Conversions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "rtbsim",
			Name:      "conversions_total",
			Help:      "Total number of simulated conversions",
		}),
		BidsRequested: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rtbsim",
			Name:      "bids_requested_total",
			Help:      "Total bids requested from strategies",
		}, []string{"strategy"}),
		SpendTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "rtbsim",
			Name:      "spend_total",
			Help:      "Total simulated spend in currency units",
		}),
		RevenueTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "rtbsim",
			Name:      "revenue_total",
			Help:      "Total simulated revenue in currency units",
		}),
		ClearingPrice: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "rtbsim",
			Name:      "clearing_price",
			Help:      "Distribution of clearing prices paid",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10),
		}),
		CompetitorN: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "rtbsim",
			Name:      "competitors",
			Help:      "Distribution of competitor counts per auction",
			Buckets:   prometheus.LinearBuckets(0, 2, 12),
		}),
	}

	registry.MustRegister(
		m.AuctionsRun,
		m.AuctionsWon,
		m.FloorRejects,
		m.Conversions,
		m.BidsRequested,
		m.SpendTotal,
		m.RevenueTotal,
		m.ClearingPrice,
		m.CompetitorN,
	)

	return m
}

// Registry exposes the underlying registry for scraping or gathering.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
