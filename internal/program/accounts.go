package program

import (
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"mcfarmerz/internal/model"
)

const (
	// PoolAccountSize is discriminator + Pool.
	PoolAccountSize = 8 + 32 + 32 + 8 + 1 + 8 + 8 + 8 + 8 + 8 + 8 + 1
	// UserStakeAccountSize is discriminator + UserStake.
	UserStakeAccountSize = 8 + 32 + 8 + 8 + 1 + 8 + 1

	// UserStakeOwnerOffset is where the owner key starts in a UserStake
	// account, used for memcmp filters.
	UserStakeOwnerOffset = 8
)

type poolAccount struct {
	Discriminator Discriminator
	Mint          solana.PublicKey
	TokenVault    solana.PublicKey
	APY           uint64
	PoolType      uint8
	LockPeriod    int64
	MinStake      uint64
	TotalStaked   uint64
	StakeFeeBP    uint64
	UnstakeFeeBP  uint64
	StakeCounter  int64
	Bump          uint8
}

type userStakeAccount struct {
	Discriminator Discriminator
	User          solana.PublicKey
	Amount        uint64
	LastStakeTime int64
	PoolType      uint8
	Index         int64
	Bump          uint8
}

// DecodePool parses a Pool account. Decimals are not part of the account and
// are left zero.
func DecodePool(address solana.PublicKey, data []byte) (model.PoolParameters, error) {
	if !PoolDiscriminator.Matches(data) {
		return model.PoolParameters{}, fmt.Errorf("decode pool %s: discriminator mismatch", address)
	}
	if len(data) < PoolAccountSize {
		return model.PoolParameters{}, fmt.Errorf("decode pool %s: short data: %d bytes", address, len(data))
	}

	var acc poolAccount
	if err := bin.NewBorshDecoder(data).Decode(&acc); err != nil {
		return model.PoolParameters{}, fmt.Errorf("decode pool %s: %w", address, err)
	}
	poolType := model.PoolType(acc.PoolType)
	if !poolType.Valid() {
		return model.PoolParameters{}, fmt.Errorf("decode pool %s: invalid pool type %d", address, acc.PoolType)
	}

	return model.PoolParameters{
		Address:               address,
		Mint:                  acc.Mint,
		TokenVault:            acc.TokenVault,
		APYBasisPoints:        acc.APY,
		PoolType:              poolType,
		LockPeriodSeconds:     acc.LockPeriod,
		MinimumStakeRaw:       acc.MinStake,
		TotalStakedRaw:        acc.TotalStaked,
		StakeFeeBasisPoints:   acc.StakeFeeBP,
		UnstakeFeeBasisPoints: acc.UnstakeFeeBP,
		StakeCounter:          acc.StakeCounter,
		Bump:                  acc.Bump,
	}, nil
}

// DecodeUserStake parses a UserStake account.
func DecodeUserStake(address solana.PublicKey, data []byte) (model.StakeLot, error) {
	if !UserStakeDiscriminator.Matches(data) {
		return model.StakeLot{}, fmt.Errorf("decode user stake %s: discriminator mismatch", address)
	}
	if len(data) < UserStakeAccountSize {
		return model.StakeLot{}, fmt.Errorf("decode user stake %s: short data: %d bytes", address, len(data))
	}

	var acc userStakeAccount
	if err := bin.NewBorshDecoder(data).Decode(&acc); err != nil {
		return model.StakeLot{}, fmt.Errorf("decode user stake %s: %w", address, err)
	}
	poolType := model.PoolType(acc.PoolType)
	if !poolType.Valid() {
		return model.StakeLot{}, fmt.Errorf("decode user stake %s: invalid pool type %d", address, acc.PoolType)
	}

	return model.StakeLot{
		Address:                address,
		Owner:                  acc.User,
		AmountRaw:              acc.Amount,
		LastDepositTimeSeconds: acc.LastStakeTime,
		PoolType:               poolType,
		LotIndex:               acc.Index,
		Bump:                   acc.Bump,
	}, nil
}

// EncodePool is the inverse of DecodePool. It exists for fixtures and
// local simulation.
func EncodePool(p model.PoolParameters) ([]byte, error) {
	return bin.MarshalBorsh(&poolAccount{
		Discriminator: PoolDiscriminator,
		Mint:          p.Mint,
		TokenVault:    p.TokenVault,
		APY:           p.APYBasisPoints,
		PoolType:      uint8(p.PoolType),
		LockPeriod:    p.LockPeriodSeconds,
		MinStake:      p.MinimumStakeRaw,
		TotalStaked:   p.TotalStakedRaw,
		StakeFeeBP:    p.StakeFeeBasisPoints,
		UnstakeFeeBP:  p.UnstakeFeeBasisPoints,
		StakeCounter:  p.StakeCounter,
		Bump:          p.Bump,
	})
}

// EncodeUserStake is the inverse of DecodeUserStake.
func EncodeUserStake(l model.StakeLot) ([]byte, error) {
	return bin.MarshalBorsh(&userStakeAccount{
		Discriminator: UserStakeDiscriminator,
		User:          l.Owner,
		Amount:        l.AmountRaw,
		LastStakeTime: l.LastDepositTimeSeconds,
		PoolType:      uint8(l.PoolType),
		Index:         l.LotIndex,
		Bump:          l.Bump,
	})
}
