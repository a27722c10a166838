package main

import (
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"mcfarmerz/internal/config"
	"mcfarmerz/internal/model"
	"mcfarmerz/internal/snapshot"
	"mcfarmerz/internal/stake"
)

type dashboardOutput struct {
	Owner      string                 `json:"owner"`
	ObservedAt time.Time              `json:"observed_at"`
	Lots       []model.SnapshotRecord `json:"lots"`
}

func runDashboard(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadRead(cfgFile, cmd.Flags())
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
	now, err := config.ParseNow(cfg.Now, time.Now)
	if err != nil {
		return err
	}
	poolFilter, _ := cmd.Flags().GetString("pool")

	ctx, stop := signalContext()
	defer stop()

	client, reader, err := connect(cfg.Config, logger)
	if err != nil {
		return err
	}
	defer client.Close()

	logger.Info("dashboard start",
		zap.String("rpc", cfg.RPCURL),
		zap.String("owner", owner.String()),
		zap.Time("now", now),
	)

	snaps, err := reader.Dashboard(ctx, owner, now)
	if err != nil {
		return err
	}
	if poolFilter != "" {
		poolType, err := model.ParsePoolType(poolFilter)
		if err != nil {
			return err
		}
		snaps = snapshot.Filter(snaps, poolType)
	}

	runID := uuid.NewString()
	out := dashboardOutput{Owner: owner.String(), ObservedAt: now, Lots: make([]model.SnapshotRecord, 0, len(snaps))}
	for _, s := range snaps {
		out.Lots = append(out.Lots, snapshot.Record(s, runID, now))
	}

	logger.Info("dashboard complete", zap.Int("lots", len(out.Lots)))
	return printJSON(out)
}

type statsOutput struct {
	stake.Stats
	ReferralLink string `json:"referral_link,omitempty"`
}

func runStats(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadRead(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signalContext()
	defer stop()

	client, reader, err := connect(cfg.Config, logger)
	if err != nil {
		return err
	}
	defer client.Close()

	logger.Info("stats start", zap.String("rpc", cfg.RPCURL))

	stats, err := reader.Stats(ctx, time.Now().UTC())
	if err != nil {
		return err
	}
	out := statsOutput{Stats: stats}
	if cfg.Owner != "" {
		owner, err := parseKey("owner", cfg.Owner)
		if err != nil {
			return err
		}
		link, err := stake.ReferralLink(cfg.SiteOrigin, owner)
		if err != nil {
			return err
		}
		out.ReferralLink = link
	}
	return printJSON(out)
}
