package model

import "time"

// SnapshotRecord is the stored form of a stake projection. Raw amounts are
// decimal strings so they survive JSON without precision loss.
type SnapshotRecord struct {
	RunID            string    `json:"run_id"`
	ObservedAt       time.Time `json:"observed_at"`
	Owner            string    `json:"owner"`
	LotAddress       string    `json:"lot_address"`
	PoolAddress      string    `json:"pool_address"`
	PoolType         PoolType  `json:"pool_type"`
	LotIndex         int64     `json:"lot_index"`
	Decimals         uint8     `json:"decimals"`
	AmountRaw        string    `json:"amount_raw"`
	Amount           string    `json:"amount"`
	APYBasisPoints   uint64    `json:"apy_bp"`
	LastDepositTime  int64     `json:"last_deposit_time"`
	ElapsedSeconds   int64     `json:"elapsed_seconds"`
	AccruedRewardRaw string    `json:"accrued_reward_raw"`
	AccruedReward    string    `json:"accrued_reward"`
	UnlockTime       int64     `json:"unlock_time,omitempty"`
	UnlockInSeconds  int64     `json:"unlock_in_seconds,omitempty"`
	IsLocked         bool      `json:"is_locked"`
}

// PoolStat is a point-in-time TVL observation for one pool.
type PoolStat struct {
	PoolAddress    string    `json:"pool_address"`
	PoolType       PoolType  `json:"pool_type"`
	Mint           string    `json:"mint"`
	Decimals       uint8     `json:"decimals"`
	APYBasisPoints uint64    `json:"apy_bp"`
	LockPeriod     int64     `json:"lock_period_seconds"`
	TotalStakedRaw string    `json:"total_staked_raw"`
	TotalStaked    string    `json:"total_staked"`
	ObservedAt     time.Time `json:"observed_at"`
}
