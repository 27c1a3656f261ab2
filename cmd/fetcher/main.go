package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taxipulse/internal/config"
	"taxipulse/internal/dataset"
	"taxipulse/internal/infrastructure"
)

func main() {
	month := flag.String("month", "", "month of trip data to fetch (YYYY-MM), defaults to the configured month")
	outDir := flag.String("out", "", "directory to save the files (defaults to the configured data dir)")
	baseURL := flag.String("base-url", "", "override the TLC bucket base URL")
	timeout := flag.Duration("timeout", 30*time.Minute, "overall fetch timeout")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	if *month == "" {
		*month = cfg.Dataset.Month
	}
	if *outDir == "" {
		*outDir = cfg.Paths.DataDir
	}
	if *baseURL == "" {
		*baseURL = cfg.Dataset.FetchBaseURL
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Fetching trip data",
		slog.String("month", *month),
		slog.String("out", *outDir))

	fetcher := dataset.NewFetcher(*outDir, *baseURL, logger)
	if err := fetcher.FetchMonth(ctx, *month); err != nil {
		logger.Error("Fetch failed",
			slog.String("month", *month),
			slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("Fetch complete", slog.String("month", *month))
}
