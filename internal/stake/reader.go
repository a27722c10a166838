// Package stake reads McStake pools and lots from chain and projects them
// into dashboard snapshots.
package stake

import (
	"context"
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
	"mcfarmerz/internal/snapshot"
)

// DefaultDecimals is the usual fallback precision for unreadable mints.
const DefaultDecimals uint8 = 6

// Source is the chain surface the reader needs.
type Source interface {
	AccountData(ctx context.Context, key solana.PublicKey) ([]byte, error)
	ProgramAccounts(ctx context.Context, program solana.PublicKey, filters ...chain.Filter) ([]chain.KeyedAccount, error)
	MintDecimals(ctx context.Context, mint solana.PublicKey) (uint8, error)
}

// ReaderConfig holds read-side settings.
type ReaderConfig struct {
	ProgramID solana.PublicKey
	// DefaultDecimals is used as is when a mint cannot be read, zero
	// included.
	DefaultDecimals uint8
	SecondsPerYear  uint64
	MaxRetries      int
	RetryBackoff    time.Duration
}

// Reader fetches program state. It keeps no copy of pools or lots between
// calls; only mint decimals are cached.
type Reader struct {
	cfg      ReaderConfig
	source   Source
	calc     snapshot.Calculator
	decimals *DecimalsCache
	logger   *zap.Logger
}

// NewReader builds a Reader with its dependencies.
func NewReader(cfg ReaderConfig, source Source, logger *zap.Logger) *Reader {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ProgramID.IsZero() {
		cfg.ProgramID = program.DefaultProgramID
	}
	return &Reader{
		cfg:      cfg,
		source:   source,
		calc:     snapshot.NewCalculator(cfg.SecondsPerYear),
		decimals: NewDecimalsCache(64),
		logger:   logger,
	}
}

// ProgramID is the program the reader targets.
func (r *Reader) ProgramID() solana.PublicKey {
	return r.cfg.ProgramID
}

// Calculator returns the snapshot calculator in use.
func (r *Reader) Calculator() snapshot.Calculator {
	return r.calc
}

func (r *Reader) policy() retry.Policy {
	return retry.Policy{
		MaxRetries: r.cfg.MaxRetries,
		BaseDelay:  r.cfg.RetryBackoff,
		Permanent:  func(err error) bool { return errors.Is(err, chain.ErrAccountNotFound) },
	}
}

// Pool fetches and decodes the pool for poolType, with mint decimals attached.
func (r *Reader) Pool(ctx context.Context, poolType model.PoolType) (model.PoolParameters, error) {
	if r.source == nil {
		return model.PoolParameters{}, fmt.Errorf("chain source is nil")
	}
	addr, err := derive.PoolAddress(r.cfg.ProgramID, poolType)
	if err != nil {
		return model.PoolParameters{}, err
	}

	data, err := retry.Value(ctx, r.policy(), func(ctx context.Context) ([]byte, error) {
		return r.source.AccountData(ctx, addr.Key)
	})
	if err != nil {
		return model.PoolParameters{}, fmt.Errorf("fetch %s pool: %w", poolType, err)
	}

	pool, err := program.DecodePool(addr.Key, data)
	if err != nil {
		return model.PoolParameters{}, err
	}
	if pool.PoolType != poolType {
		return model.PoolParameters{}, fmt.Errorf("pool %s: stored type %s, want %s", addr.Key, pool.PoolType, poolType)
	}

	pool.TokenDecimals = r.mintDecimals(ctx, pool.Mint)
	return pool, nil
}

func (r *Reader) mintDecimals(ctx context.Context, mint solana.PublicKey) uint8 {
	if decimals, ok := r.decimals.Get(mint); ok {
		return decimals
	}
	decimals, err := retry.Value(ctx, r.policy(), func(ctx context.Context) (uint8, error) {
		return r.source.MintDecimals(ctx, mint)
	})
	if err != nil {
		r.logger.Warn("mint decimals fetch failed, using default",
			zap.String("mint", mint.String()),
			zap.Uint8("default", r.cfg.DefaultDecimals),
			zap.Error(err),
		)
		return r.cfg.DefaultDecimals
	}
	r.decimals.Set(mint, decimals)
	return decimals
}

// Pools fetches every pool that exists. Missing or unreadable pools are
// logged and left out.
func (r *Reader) Pools(ctx context.Context) (map[model.PoolType]model.PoolParameters, error) {
	pools := make(map[model.PoolType]model.PoolParameters, len(model.PoolTypes))
	for _, poolType := range model.PoolTypes {
		pool, err := r.Pool(ctx, poolType)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			r.logger.Warn("pool unavailable", zap.String("pool_type", poolType.String()), zap.Error(err))
			continue
		}
		pools[poolType] = pool
	}
	return pools, nil
}

// Lots lists the non-empty lots owned by owner. Accounts are matched by
// discriminator and owner only, so allocations larger than the decoded
// layout are still found. Accounts whose address does not match the lot's
// seeds are skipped.
func (r *Reader) Lots(ctx context.Context, owner solana.PublicKey) ([]model.StakeLot, error) {
	if r.source == nil {
		return nil, fmt.Errorf("chain source is nil")
	}
	accounts, err := retry.Value(ctx, r.policy(), func(ctx context.Context) ([]chain.KeyedAccount, error) {
		return r.source.ProgramAccounts(ctx, r.cfg.ProgramID,
			chain.Memcmp(0, program.UserStakeDiscriminator[:]),
			chain.Memcmp(program.UserStakeOwnerOffset, owner.Bytes()),
		)
	})
	if err != nil {
		return nil, fmt.Errorf("list lots for %s: %w", owner, err)
	}

	lots := make([]model.StakeLot, 0, len(accounts))
	for _, acc := range accounts {
		lot, err := program.DecodeUserStake(acc.Address, acc.Data)
		if err != nil {
			r.logger.Warn("skip undecodable lot", zap.String("address", acc.Address.String()), zap.Error(err))
			continue
		}
		if !lot.Owner.Equals(owner) {
			r.logger.Warn("skip lot with foreign owner", zap.String("address", acc.Address.String()))
			continue
		}
		expected, err := derive.UserStakeAddress(r.cfg.ProgramID, owner, lot.PoolType, lot.LotIndex)
		if err != nil || !expected.Key.Equals(acc.Address) {
			r.logger.Warn("skip lot with unexpected address",
				zap.String("address", acc.Address.String()),
				zap.Int64("index", lot.LotIndex),
				zap.String("pool_type", lot.PoolType.String()),
			)
			continue
		}
		lots = append(lots, lot)
	}
	return snapshot.Visible(lots), nil
}

// Dashboard fetches pools and lots for owner and projects them at now, in
// listing order. Lots whose pool is unavailable are left out.
func (r *Reader) Dashboard(ctx context.Context, owner solana.PublicKey, now time.Time) ([]snapshot.Snapshot, error) {
	pools, err := r.Pools(ctx)
	if err != nil {
		return nil, err
	}
	return r.dashboard(ctx, owner, pools, now)
}

// Overview is a dashboard and pool stats built from a single pool read.
type Overview struct {
	Snapshots []snapshot.Snapshot
	Pools     []model.PoolStat
}

// Overview fetches the pools once and derives both the dashboard for owner
// and the pool stats from that read.
func (r *Reader) Overview(ctx context.Context, owner solana.PublicKey, now time.Time) (Overview, error) {
	pools, err := r.Pools(ctx)
	if err != nil {
		return Overview{}, err
	}
	snaps, err := r.dashboard(ctx, owner, pools, now)
	if err != nil {
		return Overview{}, err
	}
	return Overview{Snapshots: snaps, Pools: poolStats(pools, now)}, nil
}

func (r *Reader) dashboard(ctx context.Context, owner solana.PublicKey, pools map[model.PoolType]model.PoolParameters, now time.Time) ([]snapshot.Snapshot, error) {
	lots, err := r.Lots(ctx, owner)
	if err != nil {
		return nil, err
	}

	nowSeconds := now.Unix()
	snaps := make([]snapshot.Snapshot, 0, len(lots))
	for _, lot := range lots {
		pool, ok := pools[lot.PoolType]
		if !ok {
			continue
		}
		snaps = append(snaps, r.calc.Compute(lot, pool, nowSeconds))
	}
	snapshot.Sort(snaps)
	return snaps, nil
}
