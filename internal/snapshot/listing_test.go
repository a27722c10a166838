package snapshot

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"mcfarmerz/internal/model"
)

func TestVisibleDropsEmptyLots(t *testing.T) {
	lots := []model.StakeLot{
		{LotIndex: 0, AmountRaw: 0},
		{LotIndex: 1, AmountRaw: 10},
		{LotIndex: 2, AmountRaw: 0},
	}
	got := Visible(lots)
	assert.Len(t, got, 1)
	assert.Equal(t, int64(1), got[0].LotIndex)
}

func TestSortOrder(t *testing.T) {
	snaps := []Snapshot{
		{Lot: model.StakeLot{LotIndex: 1, PoolType: model.PoolTypeLocked}, UnlockInSeconds: 500},
		{Lot: model.StakeLot{LotIndex: 2, PoolType: model.PoolTypeFlexible, LastDepositTimeSeconds: 10}},
		{Lot: model.StakeLot{LotIndex: 3, PoolType: model.PoolTypeLocked}, UnlockInSeconds: 100},
		{Lot: model.StakeLot{LotIndex: 4, PoolType: model.PoolTypeFlexible, LastDepositTimeSeconds: 20}},
	}

	Sort(snaps)

	order := make([]int64, 0, len(snaps))
	for _, s := range snaps {
		order = append(order, s.Lot.LotIndex)
	}
	assert.Equal(t, []int64{4, 2, 3, 1}, order)
	assert.Len(t, Filter(snaps, model.PoolTypeLocked), 2)
}
