package snapshot

import (
	"math"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mcfarmerz/internal/model"
)

func TestAccruedRewardZeroCases(t *testing.T) {
	assert.True(t, AccruedRewardRaw(1_000_000, 1000, 0, DefaultSecondsPerYear).IsZero())
	assert.True(t, AccruedRewardRaw(1_000_000, 0, 31_536_000, DefaultSecondsPerYear).IsZero())
	assert.True(t, AccruedRewardRaw(0, 1000, 31_536_000, DefaultSecondsPerYear).IsZero())
	assert.True(t, AccruedRewardRaw(1_000_000, 1000, -10, DefaultSecondsPerYear).IsZero())
}

func TestAccruedRewardOneYearTenPercent(t *testing.T) {
	got := AccruedRewardRaw(1_000_000_000, 1000, 31_536_000, DefaultSecondsPerYear)
	assert.Equal(t, uint64(100_000_000), got.Uint64())
}

func TestAccruedRewardIdempotent(t *testing.T) {
	a := AccruedRewardRaw(123_456_789, 1500, 86_400, DefaultSecondsPerYear)
	b := AccruedRewardRaw(123_456_789, 1500, 86_400, DefaultSecondsPerYear)
	assert.Equal(t, a.Dec(), b.Dec())
}

func TestAccruedRewardFloors(t *testing.T) {
	// 1 * 10000 * 1 / (10000 * 31536000) < 1
	assert.True(t, AccruedRewardRaw(1, 10_000, 1, DefaultSecondsPerYear).IsZero())
	// 3 * 5000 * 31536000 / (10000 * 31536000) = 1.5
	assert.Equal(t, uint64(1), AccruedRewardRaw(3, 5000, 31_536_000, DefaultSecondsPerYear).Uint64())
}

func TestAccruedRewardNoOverflow(t *testing.T) {
	got := AccruedRewardRaw(math.MaxUint64, math.MaxUint64, math.MaxInt64, DefaultSecondsPerYear)

	want := new(uint256.Int).Mul(uint256.NewInt(math.MaxUint64), uint256.NewInt(math.MaxUint64))
	want.Mul(want, uint256.NewInt(math.MaxInt64))
	want.Div(want, new(uint256.Int).Mul(uint256.NewInt(10_000), uint256.NewInt(DefaultSecondsPerYear)))

	assert.Equal(t, want.Dec(), got.Dec())
	assert.False(t, got.IsUint64())
}

func TestAccruedRewardCustomYear(t *testing.T) {
	// A 360-day year accrues more per second than a 365-day one.
	year360 := uint64(360 * 24 * 60 * 60)
	got := AccruedRewardRaw(1_000_000_000, 1000, int64(year360), year360)
	assert.Equal(t, uint64(100_000_000), got.Uint64())
}

func TestComputeScaledAmount(t *testing.T) {
	calc := NewCalculator(0)
	snap := calc.Compute(
		model.StakeLot{AmountRaw: 1_000_000, PoolType: model.PoolTypeFlexible},
		model.PoolParameters{PoolType: model.PoolTypeFlexible, TokenDecimals: 6},
		0,
	)
	assert.Equal(t, 1.0, snap.ScaledAmount)
	assert.Equal(t, DefaultSecondsPerYear, calc.SecondsPerYear)
}

func TestComputeFlexibleNeverLocked(t *testing.T) {
	calc := NewCalculator(DefaultSecondsPerYear)
	snap := calc.Compute(
		model.StakeLot{AmountRaw: 10, LastDepositTimeSeconds: 1000, PoolType: model.PoolTypeFlexible},
		model.PoolParameters{PoolType: model.PoolTypeFlexible, LockPeriodSeconds: 604800},
		1001,
	)
	assert.False(t, snap.IsLocked)
	assert.Zero(t, snap.UnlockTimeSeconds)
	assert.Zero(t, snap.UnlockInSeconds)
	assert.Equal(t, int64(1), snap.ElapsedSeconds)
}

func TestComputeLockBoundary(t *testing.T) {
	const start = int64(1_700_000_000)
	calc := NewCalculator(DefaultSecondsPerYear)
	lot := model.StakeLot{AmountRaw: 1_000_000, LastDepositTimeSeconds: start, PoolType: model.PoolTypeLocked}
	pool := model.PoolParameters{PoolType: model.PoolTypeLocked, LockPeriodSeconds: 604800, APYBasisPoints: 1500, TokenDecimals: 6}

	before := calc.Compute(lot, pool, start+604800-1)
	assert.True(t, before.IsLocked)
	assert.Equal(t, start+604800, before.UnlockTimeSeconds)
	assert.Equal(t, int64(1), before.UnlockInSeconds)

	at := calc.Compute(lot, pool, start+604800)
	assert.False(t, at.IsLocked)
	assert.Zero(t, at.UnlockInSeconds)
}

func TestComputeClockBehindDeposit(t *testing.T) {
	calc := NewCalculator(DefaultSecondsPerYear)
	snap := calc.Compute(
		model.StakeLot{AmountRaw: 1_000_000, LastDepositTimeSeconds: 2000, PoolType: model.PoolTypeFlexible},
		model.PoolParameters{PoolType: model.PoolTypeFlexible, APYBasisPoints: 1000},
		1000,
	)
	assert.Zero(t, snap.ElapsedSeconds)
	assert.True(t, snap.AccruedRewardRaw.IsZero())
}

func TestComputeDoesNotMutateInputs(t *testing.T) {
	calc := NewCalculator(DefaultSecondsPerYear)
	lot := model.StakeLot{AmountRaw: 5, LastDepositTimeSeconds: 10, PoolType: model.PoolTypeLocked, LotIndex: 3}
	pool := model.PoolParameters{PoolType: model.PoolTypeLocked, LockPeriodSeconds: 100, APYBasisPoints: 1}
	lotCopy, poolCopy := lot, pool

	_ = calc.Compute(lot, pool, 50)
	require.Equal(t, lotCopy, lot)
	require.Equal(t, poolCopy, pool)
}
