package chain

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/gagliardetto/solana-go/rpc"
)

// ErrAccountNotFound is returned when an account does not exist at the
// client's commitment.
var ErrAccountNotFound = errors.New("account not found")

// Filter narrows a program account scan. Either Bytes (memcmp at Offset) or
// DataSize is set.
type Filter struct {
	Offset   uint64
	Bytes    []byte
	DataSize uint64
}

// Memcmp matches accounts whose data contains b at offset.
func Memcmp(offset uint64, b []byte) Filter {
	return Filter{Offset: offset, Bytes: b}
}

// DataSize matches accounts of exactly size bytes.
func DataSize(size uint64) Filter {
	return Filter{DataSize: size}
}

// Matches applies the filter to raw account data the way the RPC node does.
func (f Filter) Matches(data []byte) bool {
	if f.DataSize > 0 {
		return uint64(len(data)) == f.DataSize
	}
	end := f.Offset + uint64(len(f.Bytes))
	return end <= uint64(len(data)) && bytes.Equal(data[f.Offset:end], f.Bytes)
}

// KeyedAccount is a program-owned account and its raw data.
type KeyedAccount struct {
	Address solana.PublicKey
	Data    []byte
}

// SignatureStatus is the confirmation state of a sent transaction.
type SignatureStatus struct {
	Found              bool
	ConfirmationStatus rpc.ConfirmationStatusType
	Err                interface{}
}

// Confirmed reports whether the transaction reached confirmed or finalized.
func (s SignatureStatus) Confirmed() bool {
	return s.ConfirmationStatus == rpc.ConfirmationStatusConfirmed ||
		s.ConfirmationStatus == rpc.ConfirmationStatusFinalized
}

// Client wraps the Solana JSON-RPC client and provides helper methods.
type Client struct {
	rpcClient  *rpc.Client
	commitment rpc.CommitmentType
}

// NewClient creates a new chain client from the RPC URL.
func NewClient(rpcURL string, commitment string) (*Client, error) {
	if rpcURL == "" {
		return nil, fmt.Errorf("rpc url is required")
	}
	c, err := ParseCommitment(commitment)
	if err != nil {
		return nil, err
	}
	return &Client{
		rpcClient:  rpc.New(rpcURL),
		commitment: c,
	}, nil
}

// ParseCommitment accepts processed, confirmed or finalized. Empty means
// confirmed, the level the dapp uses.
func ParseCommitment(value string) (rpc.CommitmentType, error) {
	switch value {
	case "", "confirmed":
		return rpc.CommitmentConfirmed, nil
	case "processed":
		return rpc.CommitmentProcessed, nil
	case "finalized":
		return rpc.CommitmentFinalized, nil
	default:
		return "", fmt.Errorf("invalid commitment: %q", value)
	}
}

// Close closes the underlying RPC client.
func (c *Client) Close() error {
	if c.rpcClient != nil {
		return c.rpcClient.Close()
	}
	return nil
}

// Health returns nil when the node reports ok.
func (c *Client) Health(ctx context.Context) error {
	status, err := c.rpcClient.GetHealth(ctx)
	if err != nil {
		return fmt.Errorf("get health: %w", err)
	}
	if status != rpc.HealthOk {
		return fmt.Errorf("node unhealthy: %s", status)
	}
	return nil
}

// AccountData returns the raw data of key.
func (c *Client) AccountData(ctx context.Context, key solana.PublicKey) ([]byte, error) {
	out, err := c.rpcClient.GetAccountInfoWithOpts(ctx, key, &rpc.GetAccountInfoOpts{
		Encoding:   solana.EncodingBase64,
		Commitment: c.commitment,
	})
	if errors.Is(err, rpc.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", key, ErrAccountNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get account %s: %w", key, err)
	}
	if out == nil || out.Value == nil || out.Value.Data == nil {
		return nil, fmt.Errorf("%s: %w", key, ErrAccountNotFound)
	}
	return out.Value.Data.GetBinary(), nil
}

// ProgramAccounts lists accounts owned by program that match every filter.
func (c *Client) ProgramAccounts(ctx context.Context, program solana.PublicKey, filters ...Filter) ([]KeyedAccount, error) {
	opts := &rpc.GetProgramAccountsOpts{
		Encoding:   solana.EncodingBase64,
		Commitment: c.commitment,
	}
	for _, f := range filters {
		if f.DataSize > 0 {
			opts.Filters = append(opts.Filters, rpc.RPCFilter{DataSize: f.DataSize})
			continue
		}
		opts.Filters = append(opts.Filters, rpc.RPCFilter{
			Memcmp: &rpc.RPCFilterMemcmp{Offset: f.Offset, Bytes: solana.Base58(f.Bytes)},
		})
	}

	out, err := c.rpcClient.GetProgramAccountsWithOpts(ctx, program, opts)
	if err != nil {
		return nil, fmt.Errorf("get program accounts %s: %w", program, err)
	}

	accounts := make([]KeyedAccount, 0, len(out))
	for _, keyed := range out {
		if keyed == nil || keyed.Account == nil || keyed.Account.Data == nil {
			continue
		}
		accounts = append(accounts, KeyedAccount{
			Address: keyed.Pubkey,
			Data:    keyed.Account.Data.GetBinary(),
		})
	}
	return accounts, nil
}

// MintDecimals reads the decimals of an SPL token mint.
func (c *Client) MintDecimals(ctx context.Context, mint solana.PublicKey) (uint8, error) {
	data, err := c.AccountData(ctx, mint)
	if err != nil {
		return 0, err
	}
	return DecodeMintDecimals(data)
}

// DecodeMintDecimals parses an SPL mint account.
func DecodeMintDecimals(data []byte) (uint8, error) {
	var mint token.Mint
	if err := bin.NewBinDecoder(data).Decode(&mint); err != nil {
		return 0, fmt.Errorf("decode mint: %w", err)
	}
	return mint.Decimals, nil
}

// LatestBlockhash returns a recent blockhash for new transactions.
func (c *Client) LatestBlockhash(ctx context.Context) (solana.Hash, error) {
	out, err := c.rpcClient.GetLatestBlockhash(ctx, c.commitment)
	if err != nil {
		return solana.Hash{}, fmt.Errorf("get latest blockhash: %w", err)
	}
	if out == nil || out.Value == nil {
		return solana.Hash{}, fmt.Errorf("get latest blockhash: empty response")
	}
	return out.Value.Blockhash, nil
}

// SendTransaction submits a signed transaction with preflight at the
// client's commitment.
func (c *Client) SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	sig, err := c.rpcClient.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		SkipPreflight:       false,
		PreflightCommitment: c.commitment,
	})
	if err != nil {
		return solana.Signature{}, fmt.Errorf("send transaction: %w", err)
	}
	return sig, nil
}

// SignatureStatus looks up sig including transaction history.
func (c *Client) SignatureStatus(ctx context.Context, sig solana.Signature) (SignatureStatus, error) {
	out, err := c.rpcClient.GetSignatureStatuses(ctx, true, sig)
	if err != nil {
		return SignatureStatus{}, fmt.Errorf("get signature status %s: %w", sig, err)
	}
	if out == nil || len(out.Value) == 0 || out.Value[0] == nil {
		return SignatureStatus{}, nil
	}
	status := out.Value[0]
	return SignatureStatus{
		Found:              true,
		ConfirmationStatus: status.ConfirmationStatus,
		Err:                status.Err,
	}, nil
}
