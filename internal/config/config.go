package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "MCFARM"

// Config holds settings shared by every chain-facing command.
type Config struct {
	RPCURL          string
	ProgramID       string
	Commitment      string
	SecondsPerYear  uint64
	DefaultDecimals uint8
	MaxRetries      int
	RetryBackoff    time.Duration
	LogLevel        string
}

func setSharedDefaults(v *viper.Viper) {
	v.SetDefault("rpc", "https://api.devnet.solana.com")
	v.SetDefault("program-id", "GjezjztjW5knE9JuvnCFtU7tu8WFmdgvzL4YHnb7PFRo")
	v.SetDefault("commitment", "confirmed")
	v.SetDefault("seconds-per-year", uint64(365*24*60*60))
	v.SetDefault("default-decimals", 6)
	v.SetDefault("max-retries", 3)
	v.SetDefault("retry-backoff", 500*time.Millisecond)
	v.SetDefault("log-level", "info")
}

func shared(v *viper.Viper) (Config, error) {
	decimals := v.GetUint("default-decimals")
	if decimals > 255 {
		return Config{}, fmt.Errorf("default-decimals out of range: %d", decimals)
	}
	return Config{
		RPCURL:          v.GetString("rpc"),
		ProgramID:       v.GetString("program-id"),
		Commitment:      v.GetString("commitment"),
		SecondsPerYear:  v.GetUint64("seconds-per-year"),
		DefaultDecimals: uint8(decimals),
		MaxRetries:      v.GetInt("max-retries"),
		RetryBackoff:    v.GetDuration("retry-backoff"),
		LogLevel:        v.GetString("log-level"),
	}, nil
}

// load merges config file, environment variables and flags. defaults runs
// before flags are bound so flag defaults do not mask file values.
func load(cfgFile string, flags *pflag.FlagSet, defaults func(*viper.Viper)) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if defaults != nil {
		defaults(v)
	}

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}
	return v, nil
}

// Load builds the shared Config for read-only commands.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v, err := load(cfgFile, flags, setSharedDefaults)
	if err != nil {
		return Config{}, err
	}
	return shared(v)
}

// ReadConfig holds settings for dashboard, stats and derive commands.
type ReadConfig struct {
	Config
	Owner      string
	Now        string
	SiteOrigin string
}

// LoadRead merges config for the read commands.
func LoadRead(cfgFile string, flags *pflag.FlagSet) (ReadConfig, error) {
	v, err := load(cfgFile, flags, func(v *viper.Viper) {
		setSharedDefaults(v)
		v.SetDefault("site-origin", "https://mcfarmerz.fun")
	})
	if err != nil {
		return ReadConfig{}, err
	}
	base, err := shared(v)
	if err != nil {
		return ReadConfig{}, err
	}
	return ReadConfig{
		Config:     base,
		Owner:      v.GetString("owner"),
		Now:        v.GetString("now"),
		SiteOrigin: v.GetString("site-origin"),
	}, nil
}
