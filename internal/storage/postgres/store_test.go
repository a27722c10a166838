package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mcfarmerz/internal/model"
)

func TestSnapshotArgsOrder(t *testing.T) {
	r := model.SnapshotRecord{
		RunID:            "run",
		PoolType:         model.PoolTypeLocked,
		Decimals:         6,
		AmountRaw:        "10",
		APYBasisPoints:   1500,
		AccruedRewardRaw: "3",
		IsLocked:         true,
	}
	args := snapshotArgs(r)
	require.Len(t, args, 16)
	assert.Equal(t, "run", args[0])
	assert.Equal(t, "locked", args[5])
	assert.Equal(t, int16(6), args[7])
	assert.Equal(t, "10", args[8])
	assert.Equal(t, int64(1500), args[9])
	assert.Equal(t, "3", args[12])
	assert.Equal(t, true, args[15])
}

func TestPoolStatArgsOrder(t *testing.T) {
	args := poolStatArgs(model.PoolStat{PoolAddress: "p", PoolType: model.PoolTypeFlexible, TotalStakedRaw: "99"})
	require.Len(t, args, 8)
	assert.Equal(t, "flexible", args[1])
	assert.Equal(t, "99", args[6])
}

func TestNewStoreRequiresDSN(t *testing.T) {
	_, err := NewStore(context.Background(), "")
	assert.Error(t, err)
}

// Runs against a real database when MCFARM_TEST_PG_DSN is set.
func TestStoreRoundTrip(t *testing.T) {
	dsn := os.Getenv("MCFARM_TEST_PG_DSN")
	if dsn == "" {
		t.Skip("MCFARM_TEST_PG_DSN not set")
	}
	ctx := context.Background()
	store, err := NewStore(ctx, dsn)
	require.NoError(t, err)
	defer store.Close()
	require.NoError(t, store.EnsureSchema(ctx))

	runID := uuid.NewString()
	observed := time.Now().UTC().Truncate(time.Second)
	rec := model.SnapshotRecord{
		RunID:            runID,
		ObservedAt:       observed,
		Owner:            "owner",
		LotAddress:       "lot-" + runID,
		PoolAddress:      "pool",
		PoolType:         model.PoolTypeFlexible,
		AmountRaw:        "18446744073709551615",
		AccruedRewardRaw: "0",
	}
	require.NoError(t, store.PutSnapshotBatch(ctx, []model.SnapshotRecord{rec}))
	require.NoError(t, store.PutSnapshotBatch(ctx, []model.SnapshotRecord{rec}))

	stat := model.PoolStat{
		PoolAddress:    "pool-" + runID,
		PoolType:       model.PoolTypeLocked,
		Mint:           "mint",
		Decimals:       6,
		APYBasisPoints: 1500,
		LockPeriod:     604800,
		TotalStakedRaw: "123",
		ObservedAt:     observed,
	}
	require.NoError(t, store.PutPoolStats(ctx, []model.PoolStat{stat}))

	got, ok, err := store.LatestPoolStat(ctx, stat.PoolAddress)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "123", got.TotalStakedRaw)
	assert.Equal(t, model.PoolTypeLocked, got.PoolType)
	assert.True(t, observed.Equal(got.ObservedAt))

	_, ok, err = store.LatestPoolStat(ctx, "missing-"+runID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLoadStateRequiresName(t *testing.T) {
	var s Store
	_, _, err := s.LoadState(context.Background(), "")
	assert.Error(t, err)
	assert.Error(t, s.SaveState(context.Background(), "", nil))
}

func TestStateRoundTrip(t *testing.T) {
	dsn := os.Getenv("MCFARM_TEST_PG_DSN")
	if dsn == "" {
		t.Skip("MCFARM_TEST_PG_DSN not set")
	}
	ctx := context.Background()
	store, err := NewStore(ctx, dsn)
	require.NoError(t, err)
	defer store.Close()
	require.NoError(t, store.EnsureSchema(ctx))

	name := "farm-" + uuid.NewString()
	_, found, err := store.LoadState(ctx, name)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.SaveState(ctx, name, []byte(`{"points":1}`)))
	require.NoError(t, store.SaveState(ctx, name, []byte(`{"points":2}`)))
	data, found, err := store.LoadState(ctx, name)
	require.NoError(t, err)
	assert.True(t, found)
	assert.JSONEq(t, `{"points":2}`, string(data))
}
