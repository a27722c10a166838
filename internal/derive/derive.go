// Package derive reproduces the staking program's program-derived-address
// rules so accounts can be located before they are fetched.
package derive

import (
	"errors"
	"fmt"
	"math"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

const (
	maxSeeds      = 16
	maxSeedLength = 32
)

var (
	ErrDerivationExhausted = errors.New("no viable bump seed")
	ErrTooManySeeds        = errors.New("too many seeds")
	ErrSeedTooLong         = errors.New("max seed length exceeded")
)

// createProgramAddress is swapped out in tests to force off-curve failures.
var createProgramAddress = solana.CreateProgramAddress

// Seed is one component of a derivation input.
type Seed []byte

// Label is a constant ASCII seed such as "pool" or "user".
func Label(s string) Seed {
	return Seed(s)
}

// Key is a 32-byte account identifier seed.
func Key(pk solana.PublicKey) Seed {
	return Seed(pk.Bytes())
}

// Int64LE encodes v as an 8-byte two's-complement little-endian seed. Lot
// indexes are i64 on chain even though they never go negative.
func Int64LE(v int64) Seed {
	buf := make([]byte, 8)
	bin.LE.PutUint64(buf, uint64(v))
	return Seed(buf)
}

// Address is a program-derived address and the bump that produced it.
type Address struct {
	Key  solana.PublicKey
	Bump uint8
}

// Find walks bump seeds from 255 down to 1 and returns the first address
// that falls off the ed25519 curve, matching find_program_address.
func Find(program solana.PublicKey, seeds ...Seed) (Address, error) {
	if len(seeds)+1 > maxSeeds {
		return Address{}, ErrTooManySeeds
	}

	raw := make([][]byte, 0, len(seeds)+1)
	for _, s := range seeds {
		if len(s) > maxSeedLength {
			return Address{}, fmt.Errorf("seed %x: %w", []byte(s), ErrSeedTooLong)
		}
		raw = append(raw, s)
	}

	bump := []byte{math.MaxUint8}
	raw = append(raw, bump)
	for ; bump[0] > 0; bump[0]-- {
		key, err := createProgramAddress(raw, program)
		if err == nil {
			return Address{Key: key, Bump: bump[0]}, nil
		}
	}

	return Address{}, fmt.Errorf("derive %s: %w", program, ErrDerivationExhausted)
}

// Bytes flattens seeds for display.
func Bytes(seeds []Seed) [][]byte {
	out := make([][]byte, 0, len(seeds))
	for _, s := range seeds {
		out = append(out, []byte(s))
	}
	return out
}
