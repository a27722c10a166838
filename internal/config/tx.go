package config

import (
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// TxConfig holds configuration for commands that sign transactions.
type TxConfig struct {
	Config
	Keypair        string
	Amount         string
	Index          int64
	Pool           string
	APY            uint64
	MinStake       string
	Mint           string
	Admin          string
	Now            string
	ConfirmTimeout time.Duration
	PollInterval   time.Duration
}

// LoadTx merges config file, environment variables, and flags into TxConfig.
func LoadTx(cfgFile string, flags *pflag.FlagSet) (TxConfig, error) {
	v, err := load(cfgFile, flags, func(v *viper.Viper) {
		setSharedDefaults(v)
		v.SetDefault("keypair", "~/.config/solana/id.json")
		v.SetDefault("pool", "flexible")
		v.SetDefault("admin", "GdLfQn7SkU2MCH4vH1Q7cY8q3feHwhRFGJjHXNkRK3hS")
		v.SetDefault("confirm-timeout", 60*time.Second)
		v.SetDefault("poll-interval", 2*time.Second)
	})
	if err != nil {
		return TxConfig{}, err
	}
	base, err := shared(v)
	if err != nil {
		return TxConfig{}, err
	}
	return TxConfig{
		Config:         base,
		Keypair:        v.GetString("keypair"),
		Amount:         v.GetString("amount"),
		Index:          v.GetInt64("index"),
		Pool:           v.GetString("pool"),
		APY:            v.GetUint64("apy"),
		MinStake:       v.GetString("min-stake"),
		Mint:           v.GetString("mint"),
		Admin:          v.GetString("admin"),
		Now:            v.GetString("now"),
		ConfirmTimeout: v.GetDuration("confirm-timeout"),
		PollInterval:   v.GetDuration("poll-interval"),
	}, nil
}
