package main

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"mcfarmerz/internal/config"
	"mcfarmerz/internal/storage"
	"mcfarmerz/internal/storage/postgres"
	"mcfarmerz/internal/watch"
)

func runWatch(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadWatch(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	owner, err := parseKey("owner", cfg.Owner)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	client, reader, err := connect(cfg.Config, logger)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.Health(ctx); err != nil {
		logger.Warn("rpc health check failed", zap.Error(err))
	}

	sinks, closeSinks, err := openSinks(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeSinks()

	runner := watch.NewRunner(watch.RunConfig{
		Owner:    owner,
		Interval: cfg.Interval,
		MaxRuns:  cfg.MaxRuns,
	}, reader, sinks, logger)

	logger.Info("watch start",
		zap.String("rpc", cfg.RPCURL),
		zap.String("owner", owner.String()),
		zap.Duration("interval", cfg.Interval),
		zap.Int("max_runs", cfg.MaxRuns),
		zap.String("out", cfg.Out),
		zap.String("pool_stats_out", cfg.PoolStatsOut),
		zap.String("pg_dsn", redactDSN(cfg.PGDSN)),
	)

	if err := runner.Run(ctx); err != nil {
		return err
	}
	if latest, ok := runner.Latest(); ok {
		logger.Info("watch complete",
			zap.String("run_id", latest.RunID),
			zap.Int("lots", len(latest.Snapshots)),
		)
	}
	return nil
}

func openSinks(ctx context.Context, cfg config.WatchConfig) (storage.Multi, func(), error) {
	var sinks storage.Multi
	closeFn := func() {}

	if cfg.Out != "" {
		sinks = append(sinks, storage.NewJsonlStorage(cfg.Out, cfg.PoolStatsOut))
	}
	if cfg.PGDSN != "" {
		store, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return nil, closeFn, err
		}
		if err := store.EnsureSchema(ctx); err != nil {
			store.Close()
			return nil, closeFn, err
		}
		sinks = append(sinks, store)
		closeFn = store.Close
	}
	return sinks, closeFn, nil
}
