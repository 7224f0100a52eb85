// Peerspend - social-network purchase anomaly detection
package main

import (
	"context"
	"fmt"
	"os"

	"peerspend/internal/config"
	"peerspend/internal/logging"
	"peerspend/internal/processor"
	"peerspend/internal/traces"
)

// Build info - set by ldflags
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

const usage = "usage: peerspend <batch-file> <stream-file> <flagged-output-file>"

func main() {
	// Create logger
	logger := logging.New("info", "text")

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger = logging.New(cfg.LogLevel, cfg.LogFormat)

	args := os.Args[1:]
	if len(args) < 3 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	logger.Info("starting peerspend",
		"version", Version,
		"commit", Commit,
		"build_time", BuildTime,
	)

	ctx := logging.WithLogger(context.Background(), logger)
	ctx = logging.WithRunID(ctx, logging.NewRunID())

	shutdown, err := traces.Init(ctx, cfg.OTLPEndpoint, logger)
	if err != nil {
		logger.Error("failed to initialize tracing", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			logger.Error("tracing shutdown failed", "error", err)
		}
	}()

	p := processor.New(logger, processor.WithStrictEvents(cfg.StrictEvents))
	if err := p.Run(ctx, args[0], args[1], args[2]); err != nil {
		logging.L(ctx).Error("run failed", "error", err)
		os.Exit(1)
	}
}
