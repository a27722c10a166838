package main

import (
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"mcfarmerz/internal/config"
	"mcfarmerz/internal/farm"
	"mcfarmerz/internal/storage/postgres"
)

func newFarmCmd() *cobra.Command {
	farmCmd := &cobra.Command{
		Use:   "farm",
		Short: "Play the Fry Station clicker",
	}
	farmCmd.PersistentFlags().String("state-file", "./data/farm.json", "game state file")
	farmCmd.PersistentFlags().String("pg-dsn", "", "Postgres DSN, stores state in the database instead of the state file")
	farmCmd.PersistentFlags().String("player", "default", "state name when using Postgres")
	farmCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show points, per-tap yield and upgrade costs",
		RunE:  runFarm(nil),
	}

	tapCmd := &cobra.Command{
		Use:   "tap",
		Short: "Tap the fryer",
		RunE: runFarm(func(st *farm.State, cfg config.FarmConfig, _ []string) error {
			for i := 0; i < cfg.Count; i++ {
				st.Tap()
			}
			return nil
		}),
	}
	tapCmd.Flags().Int("count", 1, "number of taps")

	tickCmd := &cobra.Command{
		Use:   "tick",
		Short: "Pay out auto farming",
		RunE: runFarm(func(st *farm.State, cfg config.FarmConfig, _ []string) error {
			n := cfg.Count
			if cfg.For > 0 {
				n = farm.Ticks(cfg.For)
			}
			st.AutoTick(n)
			return nil
		}),
	}
	tickCmd.Flags().Int("count", 1, "number of auto intervals")
	tickCmd.Flags().Duration("for", 0, "elapsed time to pay out, overrides --count")

	buyCmd := &cobra.Command{
		Use:   "buy <upgrade>",
		Short: "Buy one level of an upgrade by name or index",
		Args:  cobra.MinimumNArgs(1),
		RunE: runFarm(func(st *farm.State, _ config.FarmConfig, args []string) error {
			id, err := farm.ParseUpgrade(strings.Join(args, " "))
			if err != nil {
				return err
			}
			return st.Buy(id)
		}),
	}

	farmCmd.AddCommand(statusCmd, tapCmd, tickCmd, buyCmd)
	return farmCmd
}

type upgradeStatus struct {
	Name     string `json:"name"`
	Level    uint32 `json:"level"`
	NextCost uint64 `json:"next_cost"`
	CanBuy   bool   `json:"can_buy"`
}

type farmStatus struct {
	Points   uint64          `json:"points"`
	PerTap   uint64          `json:"per_tap"`
	Auto     bool            `json:"auto"`
	AutoGain uint64          `json:"auto_gain,omitempty"`
	Upgrades []upgradeStatus `json:"upgrades"`
}

func statusOf(st farm.State) farmStatus {
	out := farmStatus{Points: st.Points, PerTap: st.PerTap, Auto: st.AutoEnabled()}
	if out.Auto {
		out.AutoGain = st.AutoGain()
	}
	for i, u := range farm.Upgrades {
		id := farm.UpgradeID(i)
		cost, _ := st.NextCost(id)
		out.Upgrades = append(out.Upgrades, upgradeStatus{
			Name:     u.Name,
			Level:    st.Levels[id],
			NextCost: cost,
			CanBuy:   st.CanBuy(id),
		})
	}
	return out
}

// runFarm loads the game state, applies action and saves. A nil action only
// prints the state.
func runFarm(action func(st *farm.State, cfg config.FarmConfig, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfgFile, _ := cmd.Flags().GetString("config")
		cfg, err := config.LoadFarm(cfgFile, cmd.Flags())
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

		var store farm.StateStore = &farm.FileStateStore{Path: cfg.StateFile}
		if cfg.PGDSN != "" {
			pg, err := postgres.NewStore(ctx, cfg.PGDSN)
			if err != nil {
				return err
			}
			defer pg.Close()
			if err := pg.EnsureSchema(ctx); err != nil {
				return err
			}
			store = &farm.DBStateStore{Backend: pg, Name: cfg.Player}
		}

		st, found, err := store.Load(ctx)
		if err != nil {
			return err
		}
		logger.Debug("farm state loaded",
			zap.String("state_file", cfg.StateFile),
			zap.String("pg_dsn", redactDSN(cfg.PGDSN)),
			zap.Bool("found", found),
			zap.Uint64("points", st.Points),
		)

		if action != nil {
			before := st.Points
			if err := action(&st, cfg, args); err != nil {
				return err
			}
			if err := store.Save(ctx, st); err != nil {
				return err
			}
			logger.Info(cmd.Name()+" complete",
				zap.Uint64("points_before", before),
				zap.Uint64("points", st.Points),
			)
		}
		return printJSON(statusOf(st))
	}
}
