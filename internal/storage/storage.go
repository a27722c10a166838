package storage

import (
	"context"

	"mcfarmerz/internal/model"
)

// Storage is an append-only sink for observations. Nothing is read back to
// serve the dashboard.
type Storage interface {
	PutSnapshotBatch(ctx context.Context, records []model.SnapshotRecord) error
	PutPoolStats(ctx context.Context, stats []model.PoolStat) error
}
