package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"mcfarmerz/internal/chain"
	"mcfarmerz/internal/config"
	"mcfarmerz/internal/stake"
)

func main() {
	root := &cobra.Command{
		Use:          "mcfarm",
		Short:        "McFarmerz staking client",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	root.AddCommand(newDeriveCmd())

	dashboardCmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Print the stake lots of an owner with accrued rewards",
		RunE:  runDashboard,
	}
	addChainFlags(dashboardCmd.Flags())
	dashboardCmd.Flags().String("owner", "", "wallet public key")
	dashboardCmd.Flags().String("pool", "", "only show lots of this pool type")
	dashboardCmd.Flags().String("now", "", "evaluation time (unix seconds or RFC3339), default now")
	root.AddCommand(dashboardCmd)

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Print pool parameters and total value locked",
		RunE:  runStats,
	}
	addChainFlags(statsCmd.Flags())
	statsCmd.Flags().String("owner", "", "wallet public key for the referral link")
	statsCmd.Flags().String("site-origin", "https://mcfarmerz.fun", "site origin for referral links")
	root.AddCommand(statsCmd)

	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Refresh the dashboard periodically and record snapshots",
		RunE:  runWatch,
	}
	addChainFlags(watchCmd.Flags())
	watchCmd.Flags().String("owner", "", "wallet public key")
	watchCmd.Flags().Duration("interval", 30*time.Second, "refresh interval")
	watchCmd.Flags().Int("max-runs", 0, "stop after this many refreshes, 0 means run until interrupted")
	watchCmd.Flags().String("out", "./data/snapshots.jsonl", "snapshot JSONL path, empty disables JSONL output")
	watchCmd.Flags().String("pool-stats-out", "./data/pool_stats.jsonl", "pool stats JSONL path, empty disables")
	watchCmd.Flags().String("pg-dsn", "", "Postgres DSN")
	root.AddCommand(watchCmd)

	for _, c := range newTxCmds() {
		root.AddCommand(c)
	}

	root.AddCommand(newFarmCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func addChainFlags(flags *pflag.FlagSet) {
	flags.String("rpc", "https://api.devnet.solana.com", "Solana RPC URL")
	flags.String("program-id", "GjezjztjW5knE9JuvnCFtU7tu8WFmdgvzL4YHnb7PFRo", "staking program id")
	flags.String("commitment", "confirmed", "commitment (processed, confirmed, finalized)")
	flags.Uint64("seconds-per-year", 365*24*60*60, "seconds per reward year")
	flags.Uint8("default-decimals", stake.DefaultDecimals, "decimals used when the mint cannot be read")
	flags.Int("max-retries", 3, "maximum retry attempts")
	flags.Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// connect opens the RPC client and a reader bound to it.
func connect(cfg config.Config, logger *zap.Logger) (*chain.Client, *stake.Reader, error) {
	if cfg.RPCURL == "" {
		return nil, nil, fmt.Errorf("rpc url is required")
	}
	programID, err := solana.PublicKeyFromBase58(cfg.ProgramID)
	if err != nil {
		return nil, nil, fmt.Errorf("parse program id: %w", err)
	}
	client, err := chain.NewClient(cfg.RPCURL, cfg.Commitment)
	if err != nil {
		return nil, nil, fmt.Errorf("connect rpc: %w", err)
	}
	reader := stake.NewReader(stake.ReaderConfig{
		ProgramID:       programID,
		DefaultDecimals: cfg.DefaultDecimals,
		SecondsPerYear:  cfg.SecondsPerYear,
		MaxRetries:      cfg.MaxRetries,
		RetryBackoff:    cfg.RetryBackoff,
	}, client, logger)
	return client, reader, nil
}

func parseKey(name, value string) (solana.PublicKey, error) {
	if strings.TrimSpace(value) == "" {
		return solana.PublicKey{}, fmt.Errorf("%s is required", name)
	}
	key, err := solana.PublicKeyFromBase58(strings.TrimSpace(value))
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("parse %s: %w", name, err)
	}
	return key, nil
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func redactDSN(dsn string) string {
	if dsn == "" {
		return dsn
	}
	return "***"
}
