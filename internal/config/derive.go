package config

import (
	"github.com/spf13/pflag"
)

// DeriveConfig holds inputs for the offline address lookups.
type DeriveConfig struct {
	ProgramID string
	Owner     string
	Pool      string
	Index     int64
	Mint      string
	LogLevel  string
}

// LoadDerive merges config file, environment variables, and flags into DeriveConfig.
func LoadDerive(cfgFile string, flags *pflag.FlagSet) (DeriveConfig, error) {
	v, err := load(cfgFile, flags, setSharedDefaults)
	if err != nil {
		return DeriveConfig{}, err
	}
	return DeriveConfig{
		ProgramID: v.GetString("program-id"),
		Owner:     v.GetString("owner"),
		Pool:      v.GetString("pool"),
		Index:     v.GetInt64("index"),
		Mint:      v.GetString("mint"),
		LogLevel:  v.GetString("log-level"),
	}, nil
}
