package chain

import (
	"encoding/binary"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rawMint(decimals uint8) []byte {
	authority := solana.NewWallet().PublicKey()
	buf := make([]byte, 0, 82)
	buf = binary.LittleEndian.AppendUint32(buf, 1)
	buf = append(buf, authority[:]...)
	buf = binary.LittleEndian.AppendUint64(buf, 1_000_000_000)
	buf = append(buf, decimals, 1)
	buf = binary.LittleEndian.AppendUint32(buf, 1)
	buf = append(buf, authority[:]...)
	return buf
}

func TestDecodeMintDecimals(t *testing.T) {
	decimals, err := DecodeMintDecimals(rawMint(9))
	require.NoError(t, err)
	assert.Equal(t, uint8(9), decimals)

	_, err = DecodeMintDecimals([]byte{1, 2, 3})
	assert.Error(t, err)
}

func TestParseCommitment(t *testing.T) {
	c, err := ParseCommitment("")
	require.NoError(t, err)
	assert.Equal(t, rpc.CommitmentConfirmed, c)

	c, err = ParseCommitment("finalized")
	require.NoError(t, err)
	assert.Equal(t, rpc.CommitmentFinalized, c)

	_, err = ParseCommitment("max")
	assert.Error(t, err)
}

func TestNewClientRequiresURL(t *testing.T) {
	_, err := NewClient("", "confirmed")
	assert.Error(t, err)

	c, err := NewClient("http://127.0.0.1:8899", "processed")
	require.NoError(t, err)
	assert.Equal(t, rpc.CommitmentProcessed, c.commitment)
}

func TestFilters(t *testing.T) {
	owner := solana.NewWallet().PublicKey()
	f := Memcmp(8, owner[:])
	assert.Equal(t, uint64(8), f.Offset)
	assert.Equal(t, owner[:], f.Bytes)
	assert.Zero(t, f.DataSize)

	assert.Equal(t, uint64(66), DataSize(66).DataSize)
}

func TestSignatureStatusConfirmed(t *testing.T) {
	assert.False(t, SignatureStatus{}.Confirmed())
	assert.False(t, SignatureStatus{ConfirmationStatus: rpc.ConfirmationStatusProcessed}.Confirmed())
	assert.True(t, SignatureStatus{ConfirmationStatus: rpc.ConfirmationStatusConfirmed}.Confirmed())
	assert.True(t, SignatureStatus{ConfirmationStatus: rpc.ConfirmationStatusFinalized}.Confirmed())
}

func TestFilterMatches(t *testing.T) {
	data := []byte{0, 1, 2, 3, 4, 5}

	assert.True(t, Memcmp(2, []byte{2, 3}).Matches(data))
	assert.False(t, Memcmp(2, []byte{3}).Matches(data))
	assert.False(t, Memcmp(5, []byte{5, 6}).Matches(data))
	assert.True(t, DataSize(6).Matches(data))
	assert.False(t, DataSize(5).Matches(data))
}
