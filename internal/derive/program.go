package derive

import (
	"github.com/gagliardetto/solana-go"

	"mcfarmerz/internal/model"
)

var (
	SeedPool = Label("pool")
	SeedUser = Label("user")
)

// PoolSeeds returns ["pool", pool_type].
func PoolSeeds(poolType model.PoolType) []Seed {
	return []Seed{SeedPool, Seed(poolType.Seed())}
}

// UserStakeSeeds returns ["user", owner, pool_type, i64le(index)].
func UserStakeSeeds(owner solana.PublicKey, poolType model.PoolType, lotIndex int64) []Seed {
	return []Seed{SeedUser, Key(owner), Seed(poolType.Seed()), Int64LE(lotIndex)}
}

// AssociatedTokenSeeds returns [owner, token_program, mint].
func AssociatedTokenSeeds(owner, mint solana.PublicKey) []Seed {
	return []Seed{Key(owner), Key(solana.TokenProgramID), Key(mint)}
}

func PoolAddress(program solana.PublicKey, poolType model.PoolType) (Address, error) {
	return Find(program, PoolSeeds(poolType)...)
}

func UserStakeAddress(program, owner solana.PublicKey, poolType model.PoolType, lotIndex int64) (Address, error) {
	return Find(program, UserStakeSeeds(owner, poolType, lotIndex)...)
}

// AssociatedTokenAddress derives the SPL associated token account of owner
// for mint. Owners may themselves be PDAs (the pool vault).
func AssociatedTokenAddress(owner, mint solana.PublicKey) (Address, error) {
	return Find(solana.SPLAssociatedTokenAccountProgramID, AssociatedTokenSeeds(owner, mint)...)
}
