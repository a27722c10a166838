package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"mcfarmerz/internal/model"
)

// Store persists snapshot observations and pool stats in Postgres.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// EnsureSchema creates the tables if they are missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// PutSnapshotBatch inserts one row per lot per run. Re-sending a run is a
// no-op.
func (s *Store) PutSnapshotBatch(ctx context.Context, records []model.SnapshotRecord) error {
	if len(records) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, r := range records {
		batch.Queue(`
			INSERT INTO stake_snapshots (
				run_id, observed_at, owner, lot_address, pool_address, pool_type, lot_index, decimals,
				amount_raw, apy_bp, last_deposit_time, elapsed_seconds, accrued_reward_raw,
				unlock_time, unlock_in_seconds, is_locked
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9::numeric,$10,$11,$12,$13::numeric,$14,$15,$16)
			ON CONFLICT (run_id, lot_address) DO NOTHING
		`, snapshotArgs(r)...)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range records {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("insert snapshot: %w", err)
		}
	}
	return nil
}

// PutPoolStats upserts the latest observation per pool.
func (s *Store) PutPoolStats(ctx context.Context, stats []model.PoolStat) error {
	if len(stats) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, st := range stats {
		batch.Queue(`
			INSERT INTO pool_stats (
				pool_address, pool_type, mint, decimals, apy_bp, lock_period_seconds,
				total_staked_raw, observed_at, updated_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7::numeric,$8,now())
			ON CONFLICT (pool_address)
			DO UPDATE SET
				pool_type = EXCLUDED.pool_type,
				mint = EXCLUDED.mint,
				decimals = EXCLUDED.decimals,
				apy_bp = EXCLUDED.apy_bp,
				lock_period_seconds = EXCLUDED.lock_period_seconds,
				total_staked_raw = EXCLUDED.total_staked_raw,
				observed_at = EXCLUDED.observed_at,
				updated_at = now()
			WHERE pool_stats.observed_at <= EXCLUDED.observed_at
		`, poolStatArgs(st)...)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range stats {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("upsert pool stat: %w", err)
		}
	}
	return nil
}

// LatestPoolStat returns the stored stat for a pool.
func (s *Store) LatestPoolStat(ctx context.Context, poolAddress string) (model.PoolStat, bool, error) {
	var (
		st       model.PoolStat
		poolType string
		decimals int16
		apy      int64
	)
	row := s.pool.QueryRow(ctx, `
		SELECT pool_address, pool_type, mint, decimals, apy_bp, lock_period_seconds,
			total_staked_raw::text, observed_at
		FROM pool_stats WHERE pool_address = $1
	`, poolAddress)
	err := row.Scan(&st.PoolAddress, &poolType, &st.Mint, &decimals, &apy, &st.LockPeriod, &st.TotalStakedRaw, &st.ObservedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.PoolStat{}, false, nil
	}
	if err != nil {
		return model.PoolStat{}, false, err
	}
	if err := st.PoolType.UnmarshalText([]byte(poolType)); err != nil {
		return model.PoolStat{}, false, err
	}
	st.Decimals = uint8(decimals)
	st.APYBasisPoints = uint64(apy)
	return st, true, nil
}

// LoadState returns the JSON state stored under name.
func (s *Store) LoadState(ctx context.Context, name string) ([]byte, bool, error) {
	if name == "" {
		return nil, false, fmt.Errorf("state name required")
	}
	var data []byte
	row := s.pool.QueryRow(ctx, `SELECT state::text FROM client_state WHERE name=$1`, name)
	if err := row.Scan(&data); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return data, true, nil
}

// SaveState upserts the JSON state for name.
func (s *Store) SaveState(ctx context.Context, name string, data []byte) error {
	if name == "" {
		return fmt.Errorf("state name required")
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO client_state (name, state, updated_at)
		VALUES ($1, $2::jsonb, now())
		ON CONFLICT (name) DO UPDATE
		SET state = EXCLUDED.state, updated_at = now()
	`, name, string(data))
	return err
}

func snapshotArgs(r model.SnapshotRecord) []any {
	return []any{
		r.RunID,
		r.ObservedAt,
		r.Owner,
		r.LotAddress,
		r.PoolAddress,
		r.PoolType.String(),
		r.LotIndex,
		int16(r.Decimals),
		r.AmountRaw,
		int64(r.APYBasisPoints),
		r.LastDepositTime,
		r.ElapsedSeconds,
		r.AccruedRewardRaw,
		r.UnlockTime,
		r.UnlockInSeconds,
		r.IsLocked,
	}
}

func poolStatArgs(st model.PoolStat) []any {
	return []any{
		st.PoolAddress,
		st.PoolType.String(),
		st.Mint,
		int16(st.Decimals),
		int64(st.APYBasisPoints),
		st.LockPeriod,
		st.TotalStakedRaw,
		st.ObservedAt,
	}
}
