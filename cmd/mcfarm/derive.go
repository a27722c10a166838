package main

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"

	"mcfarmerz/internal/config"
	"mcfarmerz/internal/derive"
	"mcfarmerz/internal/model"
)

func newDeriveCmd() *cobra.Command {
	deriveCmd := &cobra.Command{
		Use:   "derive",
		Short: "Derive program addresses offline",
	}

	poolCmd := &cobra.Command{
		Use:   "pool",
		Short: "Derive a pool address",
		RunE:  runDerivePool,
	}
	poolCmd.Flags().String("pool", "flexible", "pool type (flexible, locked)")

	lotCmd := &cobra.Command{
		Use:   "lot",
		Short: "Derive a user stake lot address",
		RunE:  runDeriveLot,
	}
	lotCmd.Flags().String("owner", "", "wallet public key")
	lotCmd.Flags().String("pool", "flexible", "pool type (flexible, locked)")
	lotCmd.Flags().Int64("index", 0, "lot index")

	ataCmd := &cobra.Command{
		Use:   "ata",
		Short: "Derive an associated token account",
		RunE:  runDeriveATA,
	}
	ataCmd.Flags().String("owner", "", "token account owner")
	ataCmd.Flags().String("mint", "", "token mint")

	for _, c := range []*cobra.Command{poolCmd, lotCmd, ataCmd} {
		c.Flags().String("program-id", "GjezjztjW5knE9JuvnCFtU7tu8WFmdgvzL4YHnb7PFRo", "staking program id")
		deriveCmd.AddCommand(c)
	}
	return deriveCmd
}

func loadDerive(cmd *cobra.Command) (config.DeriveConfig, solana.PublicKey, error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadDerive(cfgFile, cmd.Flags())
	if err != nil {
		return cfg, solana.PublicKey{}, err
	}
	programID, err := parseKey("program id", cfg.ProgramID)
	return cfg, programID, err
}

func runDerivePool(cmd *cobra.Command, _ []string) error {
	cfg, programID, err := loadDerive(cmd)
	if err != nil {
		return err
	}
	poolType, err := model.ParsePoolType(cfg.Pool)
	if err != nil {
		return err
	}
	addr, err := derive.PoolAddress(programID, poolType)
	if err != nil {
		return err
	}
	return printJSON(derivedAddress(programID, addr, derive.PoolSeeds(poolType)))
}

func runDeriveLot(cmd *cobra.Command, _ []string) error {
	cfg, programID, err := loadDerive(cmd)
	if err != nil {
		return err
	}
	owner, err := parseKey("owner", cfg.Owner)
	if err != nil {
		return err
	}
	poolType, err := model.ParsePoolType(cfg.Pool)
	if err != nil {
		return err
	}
	if cfg.Index < 0 {
		return fmt.Errorf("index must not be negative")
	}
	addr, err := derive.UserStakeAddress(programID, owner, poolType, cfg.Index)
	if err != nil {
		return err
	}
	return printJSON(derivedAddress(programID, addr, derive.UserStakeSeeds(owner, poolType, cfg.Index)))
}

func runDeriveATA(cmd *cobra.Command, _ []string) error {
	cfg, _, err := loadDerive(cmd)
	if err != nil {
		return err
	}
	owner, err := parseKey("owner", cfg.Owner)
	if err != nil {
		return err
	}
	mint, err := parseKey("mint", cfg.Mint)
	if err != nil {
		return err
	}
	addr, err := derive.AssociatedTokenAddress(owner, mint)
	if err != nil {
		return err
	}
	return printJSON(derivedAddress(solana.SPLAssociatedTokenAccountProgramID, addr, derive.AssociatedTokenSeeds(owner, mint)))
}

func derivedAddress(programID solana.PublicKey, addr derive.Address, seeds []derive.Seed) model.DerivedAddress {
	raw := derive.Bytes(seeds)
	out := model.DerivedAddress{
		Program: programID.String(),
		Address: addr.Key.String(),
		Bump:    addr.Bump,
		Seeds:   make([]hexutil.Bytes, len(raw)),
	}
	for i, s := range raw {
		out.Seeds[i] = hexutil.Bytes(s)
	}
	return out
}
