package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"mcfarmerz/internal/chain"
	"mcfarmerz/internal/config"
	"mcfarmerz/internal/model"
	"mcfarmerz/internal/program"
	"mcfarmerz/internal/snapshot"
	"mcfarmerz/internal/stake"
	"mcfarmerz/internal/txn"
	"mcfarmerz/internal/wallet"
)

func newTxCmds() []*cobra.Command {
	stakeCmd := &cobra.Command{
		Use:   "stake",
		Short: "Stake tokens into a new lot",
		RunE:  runStake,
	}
	addTxFlags(stakeCmd.Flags())
	stakeCmd.Flags().String("pool", "flexible", "pool type (flexible, locked)")
	stakeCmd.Flags().String("amount", "", "amount in tokens, e.g. 12.5")

	unstakeCmd := &cobra.Command{
		Use:   "unstake",
		Short: "Withdraw tokens from a lot",
		RunE:  runUnstake,
	}
	addTxFlags(unstakeCmd.Flags())
	unstakeCmd.Flags().String("pool", "flexible", "pool type of the lot")
	unstakeCmd.Flags().Int64("index", 0, "lot index")
	unstakeCmd.Flags().String("amount", "", "amount in tokens, default the whole lot")
	unstakeCmd.Flags().String("now", "", "lock check time (unix seconds or RFC3339), default now")

	claimCmd := &cobra.Command{
		Use:   "claim",
		Short: "Claim the accrued reward of a lot",
		RunE:  runClaim,
	}
	addTxFlags(claimCmd.Flags())
	claimCmd.Flags().String("pool", "flexible", "pool type of the lot")
	claimCmd.Flags().Int64("index", 0, "lot index")

	initCmd := &cobra.Command{
		Use:   "init-pool",
		Short: "Create a pool (admin only)",
		RunE:  runInitPool,
	}
	addTxFlags(initCmd.Flags())
	initCmd.Flags().String("pool", "flexible", "pool type (flexible, locked)")
	initCmd.Flags().Uint64("apy", 0, "APY in basis points")
	initCmd.Flags().String("min-stake", "0", "minimum stake in tokens")
	initCmd.Flags().String("mint", "", "token mint")

	return []*cobra.Command{stakeCmd, unstakeCmd, claimCmd, initCmd}
}

func addTxFlags(flags *pflag.FlagSet) {
	addChainFlags(flags)
	flags.String("keypair", "~/.config/solana/id.json", "solana-keygen keypair file")
	flags.String("admin", "GdLfQn7SkU2MCH4vH1Q7cY8q3feHwhRFGJjHXNkRK3hS", "fee admin public key")
	flags.Duration("confirm-timeout", 60*time.Second, "confirmation timeout")
	flags.Duration("poll-interval", 2*time.Second, "signature status poll interval")
}

// txSession is everything a signing command needs.
type txSession struct {
	cfg       config.TxConfig
	logger    *zap.Logger
	client    *chain.Client
	reader    *stake.Reader
	wallet    *wallet.KeypairWallet
	submitter *txn.Submitter
	user      solana.PublicKey
}

func (s *txSession) Close() {
	if s.wallet != nil {
		_ = s.wallet.Disconnect(context.Background())
	}
	if s.client != nil {
		_ = s.client.Close()
	}
	_ = s.logger.Sync()
}

func openTx(ctx context.Context, cmd *cobra.Command) (*txSession, error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadTx(cfgFile, cmd.Flags())
	if err != nil {
		return nil, err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	sess := &txSession{cfg: cfg, logger: logger}

	admin, err := parseKey("admin", cfg.Admin)
	if err != nil {
		sess.Close()
		return nil, err
	}

	sess.client, sess.reader, err = connect(cfg.Config, logger)
	if err != nil {
		sess.Close()
		return nil, err
	}

	sess.wallet = wallet.NewKeygenFileWallet(expandHome(cfg.Keypair))
	sess.user, err = sess.wallet.Connect(ctx)
	if err != nil {
		sess.Close()
		return nil, err
	}

	sess.submitter = txn.NewSubmitter(txn.Config{
		ProgramID:      sess.reader.ProgramID(),
		Admin:          admin,
		ConfirmTimeout: cfg.ConfirmTimeout,
		PollInterval:   cfg.PollInterval,
		MaxRetries:     cfg.MaxRetries,
		RetryBackoff:   cfg.RetryBackoff,
	}, sess.client, sess.wallet, sess.reader, logger)
	return sess, nil
}

// lot finds the user's lot of poolType at index among the fetched lots.
func (s *txSession) lot(ctx context.Context, poolType model.PoolType, index int64) (model.StakeLot, error) {
	lots, err := s.reader.Lots(ctx, s.user)
	if err != nil {
		return model.StakeLot{}, err
	}
	for _, l := range lots {
		if l.PoolType == poolType && l.LotIndex == index {
			return l, nil
		}
	}
	return model.StakeLot{}, fmt.Errorf("no %s lot with index %d for %s", poolType, index, s.user)
}

func (s *txSession) finish(action string, res txn.Result, err error) error {
	if err != nil {
		s.logger.Error(action+" failed", zap.String("message", program.Message(err)), zap.Error(err))
		return err
	}
	s.logger.Info(action+" complete", zap.String("signature", res.Signature))
	return printJSON(res)
}

func runStake(cmd *cobra.Command, _ []string) error {
	ctx, stop := signalContext()
	defer stop()

	sess, err := openTx(ctx, cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	poolType, err := model.ParsePoolType(sess.cfg.Pool)
	if err != nil {
		return err
	}
	if sess.cfg.Amount == "" {
		return fmt.Errorf("amount is required")
	}
	pool, err := sess.reader.Pool(ctx, poolType)
	if err != nil {
		return err
	}
	amount, err := snapshot.ParseAmount(sess.cfg.Amount, pool.TokenDecimals)
	if err != nil {
		return err
	}

	sess.logger.Info("stake start",
		zap.String("user", sess.user.String()),
		zap.String("pool", poolType.String()),
		zap.Uint64("amount_raw", amount),
		zap.Int64("lot_index", pool.StakeCounter),
	)
	res, err := sess.submitter.Stake(ctx, poolType, amount)
	return sess.finish("stake", res, err)
}

func runUnstake(cmd *cobra.Command, _ []string) error {
	ctx, stop := signalContext()
	defer stop()

	sess, err := openTx(ctx, cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	poolType, err := model.ParsePoolType(sess.cfg.Pool)
	if err != nil {
		return err
	}
	now, err := config.ParseNow(sess.cfg.Now, time.Now)
	if err != nil {
		return err
	}
	lot, err := sess.lot(ctx, poolType, sess.cfg.Index)
	if err != nil {
		return err
	}

	amount := lot.AmountRaw
	if sess.cfg.Amount != "" {
		pool, err := sess.reader.Pool(ctx, poolType)
		if err != nil {
			return err
		}
		amount, err = snapshot.ParseAmount(sess.cfg.Amount, pool.TokenDecimals)
		if err != nil {
			return err
		}
	}

	sess.logger.Info("unstake start",
		zap.String("user", sess.user.String()),
		zap.String("lot", lot.Address.String()),
		zap.Int64("lot_index", lot.LotIndex),
		zap.Uint64("amount_raw", amount),
	)
	res, err := sess.submitter.Withdraw(ctx, lot, amount, now)
	return sess.finish("unstake", res, err)
}

func runClaim(cmd *cobra.Command, _ []string) error {
	ctx, stop := signalContext()
	defer stop()

	sess, err := openTx(ctx, cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	poolType, err := model.ParsePoolType(sess.cfg.Pool)
	if err != nil {
		return err
	}
	lot, err := sess.lot(ctx, poolType, sess.cfg.Index)
	if err != nil {
		return err
	}

	sess.logger.Info("claim start",
		zap.String("user", sess.user.String()),
		zap.String("lot", lot.Address.String()),
		zap.Int64("lot_index", lot.LotIndex),
	)
	res, err := sess.submitter.Claim(ctx, lot)
	return sess.finish("claim", res, err)
}

func runInitPool(cmd *cobra.Command, _ []string) error {
	ctx, stop := signalContext()
	defer stop()

	sess, err := openTx(ctx, cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	poolType, err := model.ParsePoolType(sess.cfg.Pool)
	if err != nil {
		return err
	}
	mint, err := parseKey("mint", sess.cfg.Mint)
	if err != nil {
		return err
	}
	if sess.cfg.APY == 0 {
		return fmt.Errorf("apy is required")
	}

	decimals, err := sess.client.MintDecimals(ctx, mint)
	if err != nil {
		sess.logger.Warn("mint decimals unavailable, using default",
			zap.String("mint", mint.String()),
			zap.Uint8("decimals", sess.cfg.DefaultDecimals),
			zap.Error(err),
		)
		decimals = sess.cfg.DefaultDecimals
	}
	var minStake uint64
	if m := strings.TrimSpace(sess.cfg.MinStake); m != "" && m != "0" {
		minStake, err = snapshot.ParseAmount(m, decimals)
		if err != nil {
			return err
		}
	}

	sess.logger.Info("init pool start",
		zap.String("admin", sess.user.String()),
		zap.String("pool", poolType.String()),
		zap.Uint64("apy_bp", sess.cfg.APY),
		zap.Uint64("min_stake_raw", minStake),
		zap.String("mint", mint.String()),
	)
	res, err := sess.submitter.InitPool(ctx, sess.cfg.APY, poolType, minStake, mint)
	return sess.finish("init pool", res, err)
}
