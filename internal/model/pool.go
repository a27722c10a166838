package model

import (
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"
)

// PoolType mirrors the program's PoolType enum (borsh variant index).
type PoolType uint8

const (
	PoolTypeFlexible PoolType = 0
	PoolTypeLocked   PoolType = 1
)

// PoolTypes lists every pool variant in listing order.
var PoolTypes = []PoolType{PoolTypeFlexible, PoolTypeLocked}

func (p PoolType) String() string {
	switch p {
	case PoolTypeFlexible:
		return "flexible"
	case PoolTypeLocked:
		return "locked"
	default:
		return fmt.Sprintf("pool_type(%d)", uint8(p))
	}
}

// Seed returns the label the program uses for this pool type in PDA seeds.
func (p PoolType) Seed() []byte {
	return []byte(p.String())
}

// Valid reports whether p is a known variant.
func (p PoolType) Valid() bool {
	return p == PoolTypeFlexible || p == PoolTypeLocked
}

func (p PoolType) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("invalid pool type: %d", uint8(p))
	}
	return []byte(p.String()), nil
}

func (p *PoolType) UnmarshalText(text []byte) error {
	parsed, err := ParsePoolType(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// ParsePoolType accepts "flexible"/"flex" or "locked"/"lock".
func ParsePoolType(input string) (PoolType, error) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "flexible", "flex":
		return PoolTypeFlexible, nil
	case "locked", "lock":
		return PoolTypeLocked, nil
	default:
		return 0, fmt.Errorf("invalid pool type: %q", input)
	}
}

// PoolParameters is the decoded Pool account plus the mint decimals.
// It is owned by the program and never mutated locally.
type PoolParameters struct {
	Address               solana.PublicKey
	Mint                  solana.PublicKey
	TokenVault            solana.PublicKey
	APYBasisPoints        uint64
	PoolType              PoolType
	LockPeriodSeconds     int64
	MinimumStakeRaw       uint64
	TotalStakedRaw        uint64
	StakeFeeBasisPoints   uint64
	UnstakeFeeBasisPoints uint64
	StakeCounter          int64
	Bump                  uint8
	TokenDecimals         uint8
}
