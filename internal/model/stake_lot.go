package model

import "github.com/gagliardetto/solana-go"

// StakeLot is one user deposit as recorded by the program's UserStake account.
type StakeLot struct {
	Address                solana.PublicKey
	Owner                  solana.PublicKey
	AmountRaw              uint64
	LastDepositTimeSeconds int64
	PoolType               PoolType
	LotIndex               int64
	Bump                   uint8
}

// Empty reports whether the lot has been fully withdrawn. Empty lots are
// treated as absent.
func (l StakeLot) Empty() bool {
	return l.AmountRaw == 0
}
