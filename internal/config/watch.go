package config

import (
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// WatchConfig holds configuration for the watch command.
type WatchConfig struct {
	Config
	Owner        string
	Interval     time.Duration
	MaxRuns      int
	Out          string
	PoolStatsOut string
	PGDSN        string
}

// LoadWatch merges config file, environment variables, and flags into WatchConfig.
func LoadWatch(cfgFile string, flags *pflag.FlagSet) (WatchConfig, error) {
	v, err := load(cfgFile, flags, func(v *viper.Viper) {
		setSharedDefaults(v)
		v.SetDefault("interval", 30*time.Second)
		v.SetDefault("out", "./data/snapshots.jsonl")
		v.SetDefault("pool-stats-out", "./data/pool_stats.jsonl")
	})
	if err != nil {
		return WatchConfig{}, err
	}
	base, err := shared(v)
	if err != nil {
		return WatchConfig{}, err
	}
	return WatchConfig{
		Config:       base,
		Owner:        v.GetString("owner"),
		Interval:     v.GetDuration("interval"),
		MaxRuns:      v.GetInt("max-runs"),
		Out:          v.GetString("out"),
		PoolStatsOut: v.GetString("pool-stats-out"),
		PGDSN:        v.GetString("pg-dsn"),
	}, nil
}
