// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/adxyz/rtbsim/pkg/log"
	"github.com/adxyz/rtbsim/pkg/metric"
	"github.com/adxyz/rtbsim/pkg/sim"
)

var (
	Version   = "dev"
	GitCommit = "unknown"
)

func main() {
	var (
		configPath = flag.String("config", "", "Scenario TOML file (defaults to the stock scenario)")
		auctions   = flag.Int("auctions", 0, "Override the number of auctions")
		seed       = flag.Int64("seed", 0, "Override the random seed")
		outPath    = flag.String("out", "simulation_results.json", "Result JSON output file")
		logLevel   = flag.String("log-level", "info", "Log level (debug, info, warn, error)")
		version    = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *version {
		fmt.Printf("rtbsim v%s (commit: %s)\n", Version, GitCommit)
		os.Exit(0)
	}

	logger := log.NewWithLevel(*logLevel)
	defer logger.Sync()

	cfg := sim.Default()
	if *configPath != "" {
		loaded, err := sim.Load(*configPath)
		if err != nil {
			logger.Error("failed to load scenario", "path", *configPath, "error", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if *auctions > 0 {
		cfg.Auctions = *auctions
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}

	runner, err := sim.NewRunner(cfg, logger, metric.New())
	if err != nil {
		logger.Error("invalid scenario", "error", err)
		os.Exit(1)
	}

	result, err := runner.Run(context.Background())
	if err != nil {
		logger.Error("simulation failed", "error", err)
		os.Exit(1)
	}

	printComparison(result)

	if *outPath != "" {
		if err := result.WriteFile(*outPath); err != nil {
			logger.Error("failed to write results", "path", *outPath, "error", err)
			os.Exit(1)
		}
		logger.Info("results written", "path", *outPath)
	}
}

func printComparison(result *sim.Result) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "STRATEGY\tWIN RATE\tCONVERSIONS\tAVG CPA\tROAS\tSPEND\tREVENUE")
	for _, row := range result.Comparison {
		fmt.Fprintf(w, "%s\t%.1f%%\t%d\t$%.2f\t%.2fx\t$%.2f\t$%.2f\n",
			row.Strategy,
			row.WinRate*100,
			row.Conversions,
			row.AvgCPA,
			row.ROAS,
			row.TotalSpend,
			row.TotalRevenue,
		)
	}
	w.Flush()

	if result.Best != "" {
		fmt.Printf("\nBest strategy: %s\n", result.Best)
		for _, insight := range result.Insights {
			fmt.Printf("  - %s\n", insight)
		}
	}
}
