package config

import (
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// FarmConfig holds configuration for the farm commands.
type FarmConfig struct {
	StateFile string
	PGDSN     string
	Player    string
	Count     int
	For       time.Duration
	LogLevel  string
}

// LoadFarm merges config file, environment variables, and flags into FarmConfig.
func LoadFarm(cfgFile string, flags *pflag.FlagSet) (FarmConfig, error) {
	v, err := load(cfgFile, flags, func(v *viper.Viper) {
		v.SetDefault("state-file", "./data/farm.json")
		v.SetDefault("player", "default")
		v.SetDefault("count", 1)
		v.SetDefault("log-level", "info")
	})
	if err != nil {
		return FarmConfig{}, err
	}
	return FarmConfig{
		StateFile: v.GetString("state-file"),
		PGDSN:     v.GetString("pg-dsn"),
		Player:    v.GetString("player"),
		Count:     v.GetInt("count"),
		For:       v.GetDuration("for"),
		LogLevel:  v.GetString("log-level"),
	}, nil
}
