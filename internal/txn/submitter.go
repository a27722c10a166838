// Package txn builds, signs, sends and confirms McStake transactions.
package txn

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"mcfarmerz/internal/chain"
	"mcfarmerz/internal/derive"
	"mcfarmerz/internal/model"
	"mcfarmerz/internal/program"
	"mcfarmerz/internal/retry"
	"mcfarmerz/internal/wallet"
)

var (
	ErrAmountRequired  = errors.New("amount must be greater than 0")
	ErrBelowMinimum    = errors.New("amount below pool minimum stake")
	ErrExceedsLot      = errors.New("amount exceeds lot balance")
	ErrLotLocked       = errors.New("tokens are still locked, withdrawal not allowed yet")
	ErrLotMismatch     = errors.New("lot reference changed, refresh and try again")
	ErrNothingToClaim  = errors.New("lot has no stake")
	ErrConfirmTimeout  = errors.New("timed out waiting for confirmation")
	ErrInvalidPoolType = errors.New("invalid pool type")
)

// Chain is the write-side RPC surface.
type Chain interface {
	LatestBlockhash(ctx context.Context) (solana.Hash, error)
	SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error)
	SignatureStatus(ctx context.Context, sig solana.Signature) (chain.SignatureStatus, error)
}

// PoolSource returns fresh pool parameters.
type PoolSource interface {
	Pool(ctx context.Context, poolType model.PoolType) (model.PoolParameters, error)
}

// Config holds submission settings.
type Config struct {
	ProgramID      solana.PublicKey
	Admin          solana.PublicKey
	ConfirmTimeout time.Duration
	PollInterval   time.Duration
	MaxRetries     int
	RetryBackoff   time.Duration
}

// Result describes a confirmed transaction.
type Result struct {
	Signature string           `json:"signature"`
	Action    string           `json:"action"`
	PoolType  model.PoolType   `json:"pool_type"`
	Lot       solana.PublicKey `json:"lot"`
	LotIndex  int64            `json:"lot_index"`
	AmountRaw uint64           `json:"amount_raw,omitempty"`
}

// Submitter sends program instructions signed by an injected wallet.
type Submitter struct {
	cfg    Config
	chain  Chain
	wallet wallet.Wallet
	pools  PoolSource
	logger *zap.Logger
}

// NewSubmitter builds a Submitter with its dependencies.
func NewSubmitter(cfg Config, chainClient Chain, w wallet.Wallet, pools PoolSource, logger *zap.Logger) *Submitter {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ProgramID.IsZero() {
		cfg.ProgramID = program.DefaultProgramID
	}
	if cfg.Admin.IsZero() {
		cfg.Admin = program.AdminPubkey
	}
	if cfg.ConfirmTimeout <= 0 {
		cfg.ConfirmTimeout = 60 * time.Second
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 2 * time.Second
	}
	return &Submitter{cfg: cfg, chain: chainClient, wallet: w, pools: pools, logger: logger}
}

func (s *Submitter) owner() (solana.PublicKey, error) {
	if s.wallet == nil {
		return solana.PublicKey{}, wallet.ErrNotConnected
	}
	pk, ok := s.wallet.PublicKey()
	if !ok {
		return solana.PublicKey{}, wallet.ErrNotConnected
	}
	return pk, nil
}

// Stake deposits amountRaw into a new lot of poolType. The lot index is the
// pool's current stake counter.
func (s *Submitter) Stake(ctx context.Context, poolType model.PoolType, amountRaw uint64) (Result, error) {
	if !poolType.Valid() {
		return Result{}, ErrInvalidPoolType
	}
	if amountRaw == 0 {
		return Result{}, ErrAmountRequired
	}
	user, err := s.owner()
	if err != nil {
		return Result{}, err
	}
	pool, err := s.pools.Pool(ctx, poolType)
	if err != nil {
		return Result{}, err
	}
	if amountRaw < pool.MinimumStakeRaw {
		return Result{}, fmt.Errorf("%w: %d < %d", ErrBelowMinimum, amountRaw, pool.MinimumStakeRaw)
	}

	lot, err := derive.UserStakeAddress(s.cfg.ProgramID, user, poolType, pool.StakeCounter)
	if err != nil {
		return Result{}, err
	}
	accts, err := s.tokenAccounts(user, pool)
	if err != nil {
		return Result{}, err
	}

	ix, err := program.NewStakeInstruction(s.cfg.ProgramID, amountRaw, program.StakeAccounts{
		User:              user,
		Pool:              pool.Address,
		UserStake:         lot.Key,
		Mint:              pool.Mint,
		UserTokenAccount:  accts.user,
		TokenVault:        accts.vault,
		AdminTokenAccount: accts.admin,
	})
	if err != nil {
		return Result{}, err
	}

	sig, err := s.submit(ctx, user, ix)
	if err != nil {
		return Result{}, err
	}
	return Result{Signature: sig.String(), Action: "stake", PoolType: poolType, Lot: lot.Key, LotIndex: pool.StakeCounter, AmountRaw: amountRaw}, nil
}

// Withdraw takes amountRaw out of lot. The lot must be unlocked at now and its
// address must still match its seeds.
func (s *Submitter) Withdraw(ctx context.Context, lot model.StakeLot, amountRaw uint64, now time.Time) (Result, error) {
	if amountRaw == 0 {
		return Result{}, ErrAmountRequired
	}
	if amountRaw > lot.AmountRaw {
		return Result{}, fmt.Errorf("%w: max %d", ErrExceedsLot, lot.AmountRaw)
	}
	user, err := s.owner()
	if err != nil {
		return Result{}, err
	}
	if err := s.verifyLot(user, lot); err != nil {
		return Result{}, err
	}
	pool, err := s.pools.Pool(ctx, lot.PoolType)
	if err != nil {
		return Result{}, err
	}
	if pool.PoolType == model.PoolTypeLocked && now.Unix() < lot.LastDepositTimeSeconds+pool.LockPeriodSeconds {
		return Result{}, ErrLotLocked
	}

	accts, err := s.tokenAccounts(user, pool)
	if err != nil {
		return Result{}, err
	}
	ix, err := program.NewWithdrawInstruction(s.cfg.ProgramID, amountRaw, lot.LotIndex, program.WithdrawAccounts{
		User:              user,
		Pool:              pool.Address,
		UserStake:         lot.Address,
		Mint:              pool.Mint,
		UserTokenAccount:  accts.user,
		TokenVault:        accts.vault,
		AdminTokenAccount: accts.admin,
	})
	if err != nil {
		return Result{}, err
	}

	sig, err := s.submit(ctx, user, ix)
	if err != nil {
		return Result{}, err
	}
	return Result{Signature: sig.String(), Action: "withdraw", PoolType: lot.PoolType, Lot: lot.Address, LotIndex: lot.LotIndex, AmountRaw: amountRaw}, nil
}

// Claim pays out the accrued reward of lot.
func (s *Submitter) Claim(ctx context.Context, lot model.StakeLot) (Result, error) {
	if lot.Empty() {
		return Result{}, ErrNothingToClaim
	}
	user, err := s.owner()
	if err != nil {
		return Result{}, err
	}
	if err := s.verifyLot(user, lot); err != nil {
		return Result{}, err
	}
	pool, err := s.pools.Pool(ctx, lot.PoolType)
	if err != nil {
		return Result{}, err
	}
	accts, err := s.tokenAccounts(user, pool)
	if err != nil {
		return Result{}, err
	}

	ix, err := program.NewClaimInstruction(s.cfg.ProgramID, lot.LotIndex, program.ClaimAccounts{
		User:             user,
		Pool:             pool.Address,
		UserStake:        lot.Address,
		Mint:             pool.Mint,
		UserTokenAccount: accts.user,
		TokenVault:       accts.vault,
	})
	if err != nil {
		return Result{}, err
	}

	sig, err := s.submit(ctx, user, ix)
	if err != nil {
		return Result{}, err
	}
	return Result{Signature: sig.String(), Action: "claim", PoolType: lot.PoolType, Lot: lot.Address, LotIndex: lot.LotIndex}, nil
}

// InitPool creates the poolType pool for mint. Only the program admin can
// sign this successfully.
func (s *Submitter) InitPool(ctx context.Context, apyBasisPoints uint64, poolType model.PoolType, minStakeRaw uint64, mint solana.PublicKey) (Result, error) {
	if !poolType.Valid() {
		return Result{}, ErrInvalidPoolType
	}
	if mint.IsZero() {
		return Result{}, fmt.Errorf("mint is required")
	}
	admin, err := s.owner()
	if err != nil {
		return Result{}, err
	}
	pool, err := derive.PoolAddress(s.cfg.ProgramID, poolType)
	if err != nil {
		return Result{}, err
	}
	vault, err := derive.AssociatedTokenAddress(pool.Key, mint)
	if err != nil {
		return Result{}, err
	}

	ix, err := program.NewInitPoolInstruction(s.cfg.ProgramID, apyBasisPoints, poolType, minStakeRaw, program.InitPoolAccounts{
		Admin:      admin,
		Pool:       pool.Key,
		Mint:       mint,
		TokenVault: vault.Key,
	})
	if err != nil {
		return Result{}, err
	}

	sig, err := s.submit(ctx, admin, ix)
	if err != nil {
		return Result{}, err
	}
	return Result{Signature: sig.String(), Action: "init_pool", PoolType: poolType, Lot: pool.Key}, nil
}

func (s *Submitter) verifyLot(user solana.PublicKey, lot model.StakeLot) error {
	if !lot.Owner.IsZero() && !lot.Owner.Equals(user) {
		return fmt.Errorf("%w: lot owned by %s", ErrLotMismatch, lot.Owner)
	}
	expected, err := derive.UserStakeAddress(s.cfg.ProgramID, user, lot.PoolType, lot.LotIndex)
	if err != nil {
		return err
	}
	if !expected.Key.Equals(lot.Address) {
		return ErrLotMismatch
	}
	return nil
}

type tokenAccounts struct {
	user  solana.PublicKey
	vault solana.PublicKey
	admin solana.PublicKey
}

func (s *Submitter) tokenAccounts(user solana.PublicKey, pool model.PoolParameters) (tokenAccounts, error) {
	userATA, err := derive.AssociatedTokenAddress(user, pool.Mint)
	if err != nil {
		return tokenAccounts{}, err
	}
	adminATA, err := derive.AssociatedTokenAddress(s.cfg.Admin, pool.Mint)
	if err != nil {
		return tokenAccounts{}, err
	}
	vault := pool.TokenVault
	if vault.IsZero() {
		derived, err := derive.AssociatedTokenAddress(pool.Address, pool.Mint)
		if err != nil {
			return tokenAccounts{}, err
		}
		vault = derived.Key
	}
	return tokenAccounts{user: userATA.Key, vault: vault, admin: adminATA.Key}, nil
}

func (s *Submitter) policy() retry.Policy {
	return retry.Policy{MaxRetries: s.cfg.MaxRetries, BaseDelay: s.cfg.RetryBackoff}
}

func (s *Submitter) submit(ctx context.Context, payer solana.PublicKey, ix solana.Instruction) (solana.Signature, error) {
	if s.chain == nil {
		return solana.Signature{}, fmt.Errorf("chain client is nil")
	}

	blockhash, err := retry.Value(ctx, s.policy(), s.chain.LatestBlockhash)
	if err != nil {
		return solana.Signature{}, err
	}
	tx, err := solana.NewTransaction([]solana.Instruction{ix}, blockhash, solana.TransactionPayer(payer))
	if err != nil {
		return solana.Signature{}, fmt.Errorf("create transaction: %w", err)
	}

	signed, err := s.wallet.SignTransaction(ctx, tx)
	if err != nil {
		return solana.Signature{}, program.ParseError(err)
	}

	sig, err := s.chain.SendTransaction(ctx, signed)
	if err != nil {
		return solana.Signature{}, program.ParseError(err)
	}
	s.logger.Info("transaction sent", zap.String("signature", sig.String()))

	if err := s.confirm(ctx, sig); err != nil {
		return sig, err
	}
	s.logger.Info("transaction confirmed", zap.String("signature", sig.String()))
	return sig, nil
}

func (s *Submitter) confirm(ctx context.Context, sig solana.Signature) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.ConfirmTimeout)
	defer cancel()

	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	for {
		status, err := retry.Value(ctx, s.policy(), func(ctx context.Context) (chain.SignatureStatus, error) {
			return s.chain.SignatureStatus(ctx, sig)
		})
		switch {
		case err != nil && ctx.Err() == nil:
			s.logger.Warn("signature status failed", zap.String("signature", sig.String()), zap.Error(err))
		case err == nil && status.Err != nil:
			return program.ParseError(fmt.Errorf("transaction %s failed: %s", sig, statusError(status.Err)))
		case err == nil && status.Confirmed():
			return nil
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %s", ErrConfirmTimeout, sig)
		case <-ticker.C:
		}
	}
}

func statusError(v interface{}) string {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(raw)
}
