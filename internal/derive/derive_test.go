package derive

import (
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mcfarmerz/internal/model"
)

var testProgram = solana.MustPublicKeyFromBase58("GjezjztjW5knE9JuvnCFtU7tu8WFmdgvzL4YHnb7PFRo")

func TestFindDeterministic(t *testing.T) {
	a, err := Find(testProgram, Label("pool"), Label("flexible"))
	require.NoError(t, err)
	b, err := Find(testProgram, Label("pool"), Label("flexible"))
	require.NoError(t, err)

	assert.Equal(t, a.Key, b.Key)
	assert.Equal(t, a.Bump, b.Bump)
}

func TestFindMatchesSolanaSDK(t *testing.T) {
	owner := solana.MustPublicKeyFromBase58("GdLfQn7SkU2MCH4vH1Q7cY8q3feHwhRFGJjHXNkRK3hS")
	seedSets := [][]Seed{
		PoolSeeds(model.PoolTypeFlexible),
		PoolSeeds(model.PoolTypeLocked),
		UserStakeSeeds(owner, model.PoolTypeLocked, 0),
		UserStakeSeeds(owner, model.PoolTypeFlexible, 42),
	}

	for _, seeds := range seedSets {
		got, err := Find(testProgram, seeds...)
		require.NoError(t, err)

		wantKey, wantBump, err := solana.FindProgramAddress(Bytes(seeds), testProgram)
		require.NoError(t, err)

		assert.Equal(t, wantKey, got.Key)
		assert.Equal(t, wantBump, got.Bump)
	}
}

func TestFindReferenceVectors(t *testing.T) {
	references := []struct {
		programID string
		expected  string
	}{
		{programID: "4uQeVj5tqViQh7yWWGStvkEG1Zmhx6uasJtWCJziofM", expected: "Bn9pAWUXWc5Kd849xTkQcHqiCbHUEizLFn4r5Cf8XYnd"},
		{programID: "8opHzTAnfzRpPEx21XtnrVTX28YQuCpAjcn1PczScKh", expected: "oDvUHiiGdMo31xYzjefAzUekWH8EbCKrxgs2FkyTs1S"},
		{programID: "CiDwVBFgWV9E5MvXWoLgnEgn2hK7rJikbvfWavzAQz3", expected: "B2vBn2bmF9GuaGkebrm8oUqDC34pE6m4bagjNcVE6msv"},
	}

	for _, r := range references {
		program := solana.MustPublicKeyFromBase58(r.programID)
		got, err := Find(program, Label("Lil'"), Label("Bits"))
		require.NoError(t, err)
		assert.Equal(t, r.expected, got.Key.String())
	}
}

func TestFindExhausted(t *testing.T) {
	calls := 0
	createProgramAddress = func(seeds [][]byte, program solana.PublicKey) (solana.PublicKey, error) {
		calls++
		return solana.PublicKey{}, errors.New("on curve")
	}
	defer func() {
		createProgramAddress = solana.CreateProgramAddress
	}()

	_, err := Find(testProgram, Label("pool"), Label("locked"))
	assert.ErrorIs(t, err, ErrDerivationExhausted)
	assert.Equal(t, 255, calls)
}

func TestFindSeedLimits(t *testing.T) {
	_, err := Find(testProgram, Seed(make([]byte, maxSeedLength+1)))
	assert.ErrorIs(t, err, ErrSeedTooLong)

	_, err = Find(testProgram, Seed(make([]byte, maxSeedLength)))
	assert.NoError(t, err)

	many := make([]Seed, maxSeeds)
	for i := range many {
		many[i] = Label("x")
	}
	_, err = Find(testProgram, many...)
	assert.ErrorIs(t, err, ErrTooManySeeds)
}

func TestInt64LESignedEncoding(t *testing.T) {
	pos := Int64LE(5)
	neg := Int64LE(-5)

	assert.Equal(t, Seed{0x05, 0, 0, 0, 0, 0, 0, 0}, pos)
	assert.Equal(t, Seed{0xfb, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}, neg)
	require.Len(t, pos, 8)
	require.Len(t, neg, 8)
	for i := range pos {
		assert.NotEqual(t, pos[i], neg[i], "byte %d", i)
	}
}

func TestUserStakeAddressDistinct(t *testing.T) {
	owner := solana.MustPublicKeyFromBase58("GdLfQn7SkU2MCH4vH1Q7cY8q3feHwhRFGJjHXNkRK3hS")

	flex0, err := UserStakeAddress(testProgram, owner, model.PoolTypeFlexible, 0)
	require.NoError(t, err)
	flex1, err := UserStakeAddress(testProgram, owner, model.PoolTypeFlexible, 1)
	require.NoError(t, err)
	lock0, err := UserStakeAddress(testProgram, owner, model.PoolTypeLocked, 0)
	require.NoError(t, err)

	assert.NotEqual(t, flex0.Key, flex1.Key)
	assert.NotEqual(t, flex0.Key, lock0.Key)
}

func TestAssociatedTokenAddressMatchesSDK(t *testing.T) {
	owner := solana.MustPublicKeyFromBase58("GdLfQn7SkU2MCH4vH1Q7cY8q3feHwhRFGJjHXNkRK3hS")
	mint := solana.MustPublicKeyFromBase58("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")

	got, err := AssociatedTokenAddress(owner, mint)
	require.NoError(t, err)

	want, _, err := solana.FindAssociatedTokenAddress(owner, mint)
	require.NoError(t, err)
	assert.Equal(t, want, got.Key)
}
