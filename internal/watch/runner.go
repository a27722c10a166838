// Package watch periodically refreshes a wallet's dashboard and records each
// fresh projection.
package watch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"mcfarmerz/internal/model"
	"mcfarmerz/internal/projection"
	"mcfarmerz/internal/snapshot"
	"mcfarmerz/internal/stake"
	"mcfarmerz/internal/storage"
)

// DefaultInterval matches the dapp refresh period.
const DefaultInterval = 30 * time.Second

// Source produces a dashboard and pool stats from one chain read.
type Source interface {
	Overview(ctx context.Context, owner solana.PublicKey, now time.Time) (stake.Overview, error)
}

// RunConfig holds runtime settings for the watcher.
type RunConfig struct {
	Owner    solana.PublicKey
	Interval time.Duration
	// MaxRuns stops the watcher after that many fetches were started. Zero
	// runs until the context ends.
	MaxRuns int
}

// Projection is one committed dashboard refresh.
type Projection struct {
	RunID      string
	ObservedAt time.Time
	Snapshots  []snapshot.Snapshot
	Pools      []model.PoolStat
}

// Runner drives the refresh loop.
type Runner struct {
	cfg     RunConfig
	source  Source
	storage storage.Storage
	logger  *zap.Logger
	tracker projection.Tracker[Projection]
	now     func() time.Time
}

// NewRunner builds a Runner with its dependencies.
func NewRunner(cfg RunConfig, source Source, storageSink storage.Storage, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	return &Runner{
		cfg:     cfg,
		source:  source,
		storage: storageSink,
		logger:  logger,
		now:     time.Now,
	}
}

// Latest returns the most recently committed projection.
func (r *Runner) Latest() (Projection, bool) {
	p, _, ok := r.tracker.Latest()
	return p, ok
}

// Run fetches immediately and then once per interval. Fetches may overlap;
// a fetch that finishes after a newer one has committed is dropped.
func (r *Runner) Run(ctx context.Context) error {
	if r.source == nil {
		return fmt.Errorf("source is nil")
	}
	if r.storage == nil {
		return fmt.Errorf("storage is nil")
	}
	if r.cfg.Owner.IsZero() {
		return fmt.Errorf("owner is required")
	}

	var wg sync.WaitGroup
	defer wg.Wait()

	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	started := 0
	for {
		ticket := r.tracker.Begin()
		started++
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.refresh(ctx, ticket)
		}()

		if r.cfg.MaxRuns > 0 && started >= r.cfg.MaxRuns {
			return nil
		}

		select {
		case <-ctx.Done():
			r.logger.Info("watch stopped", zap.Int("runs", started))
			return nil
		case <-ticker.C:
		}
	}
}

func (r *Runner) refresh(ctx context.Context, ticket projection.Ticket) {
	runID := uuid.NewString()
	observedAt := r.now().UTC()
	logger := r.logger.With(zap.String("run_id", runID), zap.Uint64("ticket", uint64(ticket)))

	overview, err := r.source.Overview(ctx, r.cfg.Owner, observedAt)
	if err != nil {
		if ctx.Err() == nil {
			logger.Warn("dashboard fetch failed", zap.Error(err))
		}
		return
	}
	snaps, pools := overview.Snapshots, overview.Pools

	p := Projection{RunID: runID, ObservedAt: observedAt, Snapshots: snaps, Pools: pools}
	if err := r.tracker.Commit(ticket, p); err != nil {
		if errors.Is(err, projection.ErrStaleProjection) {
			logger.Debug("drop stale projection")
			return
		}
		logger.Warn("commit projection failed", zap.Error(err))
		return
	}

	records := make([]model.SnapshotRecord, 0, len(snaps))
	for _, s := range snaps {
		records = append(records, snapshot.Record(s, runID, observedAt))
	}
	if err := r.storage.PutSnapshotBatch(ctx, records); err != nil {
		logger.Error("store snapshots failed", zap.Error(err))
		return
	}
	if err := r.storage.PutPoolStats(ctx, pools); err != nil {
		logger.Error("store pool stats failed", zap.Error(err))
		return
	}

	logger.Info("refresh complete", zap.Int("lots", len(records)), zap.Int("pools", len(pools)))
}
