// Package snapshot projects on-chain stake lots into display values.
//
// Everything here is pure: a projection is recomputed from a fresh fetch on
// every refresh and never written back.
package snapshot

import (
	"github.com/holiman/uint256"

	"mcfarmerz/internal/model"
)

const (
	// DefaultSecondsPerYear is a 365-day year.
	DefaultSecondsPerYear uint64 = 365 * 24 * 60 * 60

	basisPointsDenominator uint64 = 10_000
)

// Snapshot is the display-ready projection of one lot.
type Snapshot struct {
	Lot  model.StakeLot
	Pool model.PoolParameters

	ScaledAmount      float64
	ElapsedSeconds    int64
	AccruedRewardRaw  *uint256.Int
	ScaledReward      float64
	UnlockTimeSeconds int64
	UnlockInSeconds   int64
	IsLocked          bool
}

// Calculator computes snapshots. The year length is configuration because
// the program's own accrual constant cannot be read from chain.
type Calculator struct {
	SecondsPerYear uint64
}

func NewCalculator(secondsPerYear uint64) Calculator {
	if secondsPerYear == 0 {
		secondsPerYear = DefaultSecondsPerYear
	}
	return Calculator{SecondsPerYear: secondsPerYear}
}

// Compute projects lot under pool at nowSeconds.
func (c Calculator) Compute(lot model.StakeLot, pool model.PoolParameters, nowSeconds int64) Snapshot {
	spy := c.SecondsPerYear
	if spy == 0 {
		spy = DefaultSecondsPerYear
	}

	elapsed := ElapsedSeconds(lot.LastDepositTimeSeconds, nowSeconds)
	reward := AccruedRewardRaw(lot.AmountRaw, pool.APYBasisPoints, elapsed, spy)

	snap := Snapshot{
		Lot:              lot,
		Pool:             pool,
		ScaledAmount:     Scale(uint256.NewInt(lot.AmountRaw), pool.TokenDecimals),
		ElapsedSeconds:   elapsed,
		AccruedRewardRaw: reward,
		ScaledReward:     Scale(reward, pool.TokenDecimals),
	}

	if pool.PoolType == model.PoolTypeLocked {
		snap.UnlockTimeSeconds = lot.LastDepositTimeSeconds + pool.LockPeriodSeconds
		snap.IsLocked = nowSeconds < snap.UnlockTimeSeconds
		if snap.IsLocked {
			snap.UnlockInSeconds = snap.UnlockTimeSeconds - nowSeconds
		}
	}

	return snap
}

// ElapsedSeconds is max(0, now-last).
func ElapsedSeconds(lastDepositSeconds, nowSeconds int64) int64 {
	if nowSeconds <= lastDepositSeconds {
		return 0
	}
	return nowSeconds - lastDepositSeconds
}

// AccruedRewardRaw is floor(amount * apyBp * elapsed / (10_000 * secondsPerYear)),
// simple interest with no compounding. The product is taken in 256 bits so
// it cannot overflow for any u64/i64 inputs.
func AccruedRewardRaw(amountRaw, apyBasisPoints uint64, elapsedSeconds int64, secondsPerYear uint64) *uint256.Int {
	if amountRaw == 0 || apyBasisPoints == 0 || elapsedSeconds <= 0 || secondsPerYear == 0 {
		return uint256.NewInt(0)
	}

	num := uint256.NewInt(amountRaw)
	num.Mul(num, uint256.NewInt(apyBasisPoints))
	num.Mul(num, uint256.NewInt(uint64(elapsedSeconds)))

	den := uint256.NewInt(basisPointsDenominator)
	den.Mul(den, uint256.NewInt(secondsPerYear))

	return num.Div(num, den)
}
