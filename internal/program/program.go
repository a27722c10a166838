// Package program is the client-side codec for the McStake Anchor program:
// discriminators, account layouts, instruction builders and error codes.
package program

import (
	"bytes"
	"crypto/sha256"

	"github.com/gagliardetto/solana-go"
)

// DefaultProgramID is the deployed McStake program.
var DefaultProgramID = solana.MustPublicKeyFromBase58("GjezjztjW5knE9JuvnCFtU7tu8WFmdgvzL4YHnb7PFRo")

// AdminPubkey receives stake and unstake fees.
var AdminPubkey = solana.MustPublicKeyFromBase58("GdLfQn7SkU2MCH4vH1Q7cY8q3feHwhRFGJjHXNkRK3hS")

// Discriminator is the 8-byte Anchor type tag prefixed to accounts and
// instruction data.
type Discriminator [8]byte

func anchorDiscriminator(namespace, name string) Discriminator {
	sum := sha256.Sum256([]byte(namespace + ":" + name))
	var d Discriminator
	copy(d[:], sum[:8])
	return d
}

var (
	PoolDiscriminator      = anchorDiscriminator("account", "Pool")
	UserStakeDiscriminator = anchorDiscriminator("account", "UserStake")

	StakeDiscriminator    = anchorDiscriminator("global", "stake")
	WithdrawDiscriminator = anchorDiscriminator("global", "withdraw")
	ClaimDiscriminator    = anchorDiscriminator("global", "claim")
	InitPoolDiscriminator = anchorDiscriminator("global", "init_pool")
)

// Matches reports whether data starts with d.
func (d Discriminator) Matches(data []byte) bool {
	return len(data) >= len(d) && bytes.Equal(data[:len(d)], d[:])
}
