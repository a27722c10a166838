package snapshot

import (
	"strconv"
	"time"

	"github.com/holiman/uint256"

	"mcfarmerz/internal/model"
)

// Record converts a snapshot into its stored form.
func Record(s Snapshot, runID string, observedAt time.Time) model.SnapshotRecord {
	amount := uint256.NewInt(s.Lot.AmountRaw)
	decimals := s.Pool.TokenDecimals

	return model.SnapshotRecord{
		RunID:            runID,
		ObservedAt:       observedAt.UTC(),
		Owner:            s.Lot.Owner.String(),
		LotAddress:       s.Lot.Address.String(),
		PoolAddress:      s.Pool.Address.String(),
		PoolType:         s.Lot.PoolType,
		LotIndex:         s.Lot.LotIndex,
		Decimals:         decimals,
		AmountRaw:        strconv.FormatUint(s.Lot.AmountRaw, 10),
		Amount:           FormatAmount(amount, decimals),
		APYBasisPoints:   s.Pool.APYBasisPoints,
		LastDepositTime:  s.Lot.LastDepositTimeSeconds,
		ElapsedSeconds:   s.ElapsedSeconds,
		AccruedRewardRaw: s.AccruedRewardRaw.Dec(),
		AccruedReward:    FormatAmount(s.AccruedRewardRaw, decimals),
		UnlockTime:       s.UnlockTimeSeconds,
		UnlockInSeconds:  s.UnlockInSeconds,
		IsLocked:         s.IsLocked,
	}
}
