package program

import (
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"mcfarmerz/internal/model"
)

// StakeAccounts are the accounts of the stake instruction in IDL order.
type StakeAccounts struct {
	User              solana.PublicKey
	Pool              solana.PublicKey
	UserStake         solana.PublicKey
	Mint              solana.PublicKey
	UserTokenAccount  solana.PublicKey
	TokenVault        solana.PublicKey
	AdminTokenAccount solana.PublicKey
}

// WithdrawAccounts are the accounts of the withdraw instruction.
type WithdrawAccounts = StakeAccounts

// ClaimAccounts are the accounts of the claim instruction.
type ClaimAccounts struct {
	User             solana.PublicKey
	Pool             solana.PublicKey
	UserStake        solana.PublicKey
	Mint             solana.PublicKey
	UserTokenAccount solana.PublicKey
	TokenVault       solana.PublicKey
}

// InitPoolAccounts are the accounts of the init_pool instruction.
type InitPoolAccounts struct {
	Admin      solana.PublicKey
	Pool       solana.PublicKey
	Mint       solana.PublicKey
	TokenVault solana.PublicKey
}

type stakeArgs struct {
	Discriminator Discriminator
	Amount        uint64
}

type withdrawArgs struct {
	Discriminator Discriminator
	Amount        uint64
	StakeIndex    int64
}

type claimArgs struct {
	Discriminator Discriminator
	StakeIndex    int64
}

type initPoolArgs struct {
	Discriminator Discriminator
	APY           uint64
	PoolType      uint8
	MinStake      uint64
}

// NewStakeInstruction deposits amount into a new lot.
func NewStakeInstruction(programID solana.PublicKey, amount uint64, a StakeAccounts) (solana.Instruction, error) {
	data, err := bin.MarshalBorsh(&stakeArgs{Discriminator: StakeDiscriminator, Amount: amount})
	if err != nil {
		return nil, fmt.Errorf("encode stake: %w", err)
	}
	return solana.NewInstruction(programID, solana.AccountMetaSlice{
		solana.Meta(a.User).WRITE().SIGNER(),
		solana.Meta(a.Pool).WRITE(),
		solana.Meta(a.UserStake).WRITE(),
		solana.Meta(a.Mint),
		solana.Meta(a.UserTokenAccount).WRITE(),
		solana.Meta(a.TokenVault).WRITE(),
		solana.Meta(a.AdminTokenAccount).WRITE(),
		solana.Meta(solana.TokenProgramID),
		solana.Meta(solana.SystemProgramID),
	}, data), nil
}

// NewWithdrawInstruction withdraws amount from the lot at stakeIndex.
func NewWithdrawInstruction(programID solana.PublicKey, amount uint64, stakeIndex int64, a WithdrawAccounts) (solana.Instruction, error) {
	data, err := bin.MarshalBorsh(&withdrawArgs{Discriminator: WithdrawDiscriminator, Amount: amount, StakeIndex: stakeIndex})
	if err != nil {
		return nil, fmt.Errorf("encode withdraw: %w", err)
	}
	return solana.NewInstruction(programID, solana.AccountMetaSlice{
		solana.Meta(a.User).WRITE().SIGNER(),
		solana.Meta(a.Pool).WRITE(),
		solana.Meta(a.UserStake).WRITE(),
		solana.Meta(a.Mint),
		solana.Meta(a.UserTokenAccount).WRITE(),
		solana.Meta(a.TokenVault).WRITE(),
		solana.Meta(a.AdminTokenAccount).WRITE(),
		solana.Meta(solana.TokenProgramID),
	}, data), nil
}

// NewClaimInstruction pays out the accrued reward of the lot at stakeIndex.
func NewClaimInstruction(programID solana.PublicKey, stakeIndex int64, a ClaimAccounts) (solana.Instruction, error) {
	data, err := bin.MarshalBorsh(&claimArgs{Discriminator: ClaimDiscriminator, StakeIndex: stakeIndex})
	if err != nil {
		return nil, fmt.Errorf("encode claim: %w", err)
	}
	return solana.NewInstruction(programID, solana.AccountMetaSlice{
		solana.Meta(a.User).WRITE().SIGNER(),
		solana.Meta(a.Pool).WRITE(),
		solana.Meta(a.UserStake).WRITE(),
		solana.Meta(a.Mint),
		solana.Meta(a.UserTokenAccount).WRITE(),
		solana.Meta(a.TokenVault).WRITE(),
		solana.Meta(solana.TokenProgramID),
	}, data), nil
}

// NewInitPoolInstruction creates the pool for poolType. Admin only.
func NewInitPoolInstruction(programID solana.PublicKey, apyBasisPoints uint64, poolType model.PoolType, minStake uint64, a InitPoolAccounts) (solana.Instruction, error) {
	if !poolType.Valid() {
		return nil, fmt.Errorf("encode init_pool: invalid pool type %d", uint8(poolType))
	}
	data, err := bin.MarshalBorsh(&initPoolArgs{
		Discriminator: InitPoolDiscriminator,
		APY:           apyBasisPoints,
		PoolType:      uint8(poolType),
		MinStake:      minStake,
	})
	if err != nil {
		return nil, fmt.Errorf("encode init_pool: %w", err)
	}
	return solana.NewInstruction(programID, solana.AccountMetaSlice{
		solana.Meta(a.Admin).WRITE().SIGNER(),
		solana.Meta(a.Pool).WRITE(),
		solana.Meta(a.Mint),
		solana.Meta(a.TokenVault).WRITE(),
		solana.Meta(solana.TokenProgramID),
		solana.Meta(solana.SystemProgramID),
		solana.Meta(solana.SPLAssociatedTokenAccountProgramID),
	}, data), nil
}
