package snapshot

import (
	"sort"

	"mcfarmerz/internal/model"
)

// Visible drops fully withdrawn lots.
func Visible(lots []model.StakeLot) []model.StakeLot {
	out := make([]model.StakeLot, 0, len(lots))
	for _, lot := range lots {
		if lot.Empty() {
			continue
		}
		out = append(out, lot)
	}
	return out
}

// Sort orders flexible lots before locked ones. Locked lots come soonest
// unlock first, flexible lots most recent deposit first.
func Sort(snaps []Snapshot) {
	sort.SliceStable(snaps, func(i, j int) bool {
		a, b := snaps[i], snaps[j]
		if a.Lot.PoolType != b.Lot.PoolType {
			return a.Lot.PoolType < b.Lot.PoolType
		}
		if a.Lot.PoolType == model.PoolTypeLocked {
			return a.UnlockInSeconds < b.UnlockInSeconds
		}
		return a.Lot.LastDepositTimeSeconds > b.Lot.LastDepositTimeSeconds
	})
}

// Filter returns the snapshots of one pool type.
func Filter(snaps []Snapshot, poolType model.PoolType) []Snapshot {
	out := make([]Snapshot, 0, len(snaps))
	for _, s := range snaps {
		if s.Lot.PoolType == poolType {
			out = append(out, s)
		}
	}
	return out
}
