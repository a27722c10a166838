package stake

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mcfarmerz/internal/chain"
	"mcfarmerz/internal/derive"
	"mcfarmerz/internal/model"
	"mcfarmerz/internal/program"
)

type fakeSource struct {
	accounts     map[solana.PublicKey][]byte
	programAccts []chain.KeyedAccount
	decimals     map[solana.PublicKey]uint8
	mintCalls    int
	accountCalls int
	lastFilters  []chain.Filter
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		accounts: make(map[solana.PublicKey][]byte),
		decimals: make(map[solana.PublicKey]uint8),
	}
}

func (f *fakeSource) AccountData(_ context.Context, key solana.PublicKey) ([]byte, error) {
	f.accountCalls++
	data, ok := f.accounts[key]
	if !ok {
		return nil, fmt.Errorf("%s: %w", key, chain.ErrAccountNotFound)
	}
	return data, nil
}

func (f *fakeSource) ProgramAccounts(_ context.Context, _ solana.PublicKey, filters ...chain.Filter) ([]chain.KeyedAccount, error) {
	f.lastFilters = filters
	var out []chain.KeyedAccount
	for _, acc := range f.programAccts {
		matched := true
		for _, filter := range filters {
			if !filter.Matches(acc.Data) {
				matched = false
				break
			}
		}
		if matched {
			out = append(out, acc)
		}
	}
	return out, nil
}

func (f *fakeSource) MintDecimals(_ context.Context, mint solana.PublicKey) (uint8, error) {
	f.mintCalls++
	d, ok := f.decimals[mint]
	if !ok {
		return 0, errors.New("mint unreadable")
	}
	return d, nil
}

func (f *fakeSource) addPool(t *testing.T, poolType model.PoolType, mint solana.PublicKey, apy uint64, lock int64, total uint64) solana.PublicKey {
	t.Helper()
	addr, err := derive.PoolAddress(program.DefaultProgramID, poolType)
	require.NoError(t, err)
	data, err := program.EncodePool(model.PoolParameters{
		Mint:              mint,
		APYBasisPoints:    apy,
		PoolType:          poolType,
		LockPeriodSeconds: lock,
		TotalStakedRaw:    total,
		Bump:              addr.Bump,
	})
	require.NoError(t, err)
	f.accounts[addr.Key] = data
	return addr.Key
}

func (f *fakeSource) addLot(t *testing.T, owner solana.PublicKey, poolType model.PoolType, index int64, amount uint64, last int64) solana.PublicKey {
	t.Helper()
	addr, err := derive.UserStakeAddress(program.DefaultProgramID, owner, poolType, index)
	require.NoError(t, err)
	data, err := program.EncodeUserStake(model.StakeLot{
		Owner:                  owner,
		AmountRaw:              amount,
		LastDepositTimeSeconds: last,
		PoolType:               poolType,
		LotIndex:               index,
		Bump:                   addr.Bump,
	})
	require.NoError(t, err)
	f.programAccts = append(f.programAccts, chain.KeyedAccount{Address: addr.Key, Data: data})
	return addr.Key
}

func TestPoolAttachesDecimals(t *testing.T) {
	src := newFakeSource()
	mint := solana.NewWallet().PublicKey()
	src.decimals[mint] = 9
	src.addPool(t, model.PoolTypeFlexible, mint, 1000, 0, 5)

	r := NewReader(ReaderConfig{}, src, nil)
	pool, err := r.Pool(context.Background(), model.PoolTypeFlexible)
	require.NoError(t, err)
	assert.Equal(t, uint8(9), pool.TokenDecimals)
	assert.Equal(t, uint64(1000), pool.APYBasisPoints)

	_, err = r.Pool(context.Background(), model.PoolTypeFlexible)
	require.NoError(t, err)
	assert.Equal(t, 1, src.mintCalls)
}

func TestPoolFallsBackToDefaultDecimals(t *testing.T) {
	src := newFakeSource()
	src.addPool(t, model.PoolTypeLocked, solana.NewWallet().PublicKey(), 1500, 604800, 0)

	r := NewReader(ReaderConfig{DefaultDecimals: DefaultDecimals}, src, nil)
	pool, err := r.Pool(context.Background(), model.PoolTypeLocked)
	require.NoError(t, err)
	assert.Equal(t, DefaultDecimals, pool.TokenDecimals)
}

func TestPoolKeepsZeroDefaultDecimals(t *testing.T) {
	src := newFakeSource()
	src.addPool(t, model.PoolTypeFlexible, solana.NewWallet().PublicKey(), 1000, 0, 0)

	r := NewReader(ReaderConfig{DefaultDecimals: 0}, src, nil)
	pool, err := r.Pool(context.Background(), model.PoolTypeFlexible)
	require.NoError(t, err)
	assert.Equal(t, uint8(0), pool.TokenDecimals)
}

func TestPoolMissing(t *testing.T) {
	r := NewReader(ReaderConfig{MaxRetries: 3, RetryBackoff: time.Hour}, newFakeSource(), nil)
	_, err := r.Pool(context.Background(), model.PoolTypeFlexible)
	assert.ErrorIs(t, err, chain.ErrAccountNotFound)
}

func TestLotsFiltersAndVerifies(t *testing.T) {
	src := newFakeSource()
	owner := solana.NewWallet().PublicKey()
	kept := src.addLot(t, owner, model.PoolTypeFlexible, 0, 100, 10)
	src.addLot(t, owner, model.PoolTypeFlexible, 1, 0, 10)

	// Valid lot bytes stored under an address that does not match the seeds.
	src.addLot(t, owner, model.PoolTypeLocked, 2, 50, 10)
	src.programAccts[len(src.programAccts)-1].Address = solana.NewWallet().PublicKey()

	src.programAccts = append(src.programAccts, chain.KeyedAccount{Address: solana.NewWallet().PublicKey(), Data: []byte{1, 2, 3}})

	// Matches both filters but is too short to decode.
	short := src.addLot(t, owner, model.PoolTypeFlexible, 3, 10, 10)
	last := &src.programAccts[len(src.programAccts)-1]
	last.Data = last.Data[:program.UserStakeOwnerOffset+32]
	require.NotEqual(t, kept, short)

	// Another owner's lot is filtered out by the owner memcmp.
	src.addLot(t, solana.NewWallet().PublicKey(), model.PoolTypeFlexible, 0, 100, 10)

	r := NewReader(ReaderConfig{}, src, nil)
	lots, err := r.Lots(context.Background(), owner)
	require.NoError(t, err)
	require.Len(t, lots, 1)
	assert.Equal(t, kept, lots[0].Address)

	require.Len(t, src.lastFilters, 2)
	assert.Equal(t, program.UserStakeDiscriminator[:], src.lastFilters[0].Bytes)
	assert.Equal(t, uint64(program.UserStakeOwnerOffset), src.lastFilters[1].Offset)
	assert.Equal(t, owner.Bytes(), src.lastFilters[1].Bytes)
	for _, f := range src.lastFilters {
		assert.Zero(t, f.DataSize)
	}
}

func TestLotsFindsPaddedAccounts(t *testing.T) {
	src := newFakeSource()
	owner := solana.NewWallet().PublicKey()
	addr := src.addLot(t, owner, model.PoolTypeLocked, 0, 500, 10)
	last := &src.programAccts[len(src.programAccts)-1]
	last.Data = append(last.Data, make([]byte, 80-len(last.Data))...)
	require.Len(t, last.Data, 80)

	r := NewReader(ReaderConfig{}, src, nil)
	lots, err := r.Lots(context.Background(), owner)
	require.NoError(t, err)
	require.Len(t, lots, 1)
	assert.Equal(t, addr, lots[0].Address)
	assert.Equal(t, uint64(500), lots[0].AmountRaw)
}

func TestOverviewReadsPoolsOnce(t *testing.T) {
	src := newFakeSource()
	mint := solana.NewWallet().PublicKey()
	src.decimals[mint] = 6
	src.addPool(t, model.PoolTypeFlexible, mint, 1000, 0, 1_000_000)
	src.addPool(t, model.PoolTypeLocked, mint, 1500, 604800, 2_000_000)
	owner := solana.NewWallet().PublicKey()
	src.addLot(t, owner, model.PoolTypeFlexible, 0, 1_000_000, 100)

	r := NewReader(ReaderConfig{}, src, nil)
	ov, err := r.Overview(context.Background(), owner, time.Unix(1000, 0))
	require.NoError(t, err)

	assert.Equal(t, len(model.PoolTypes), src.accountCalls)
	require.Len(t, ov.Snapshots, 1)
	require.Len(t, ov.Pools, 2)
	assert.Equal(t, "1000000", ov.Pools[0].TotalStakedRaw)
	assert.Equal(t, model.PoolTypeLocked, ov.Pools[1].PoolType)
	assert.Equal(t, ov.Pools[0].PoolAddress, ov.Snapshots[0].Pool.Address.String())
}

func TestDashboardSortsAndSkipsMissingPool(t *testing.T) {
	src := newFakeSource()
	mint := solana.NewWallet().PublicKey()
	src.decimals[mint] = 6
	src.addPool(t, model.PoolTypeFlexible, mint, 1000, 0, 0)
	owner := solana.NewWallet().PublicKey()

	src.addLot(t, owner, model.PoolTypeFlexible, 0, 1_000_000, 100)
	src.addLot(t, owner, model.PoolTypeFlexible, 1, 2_000_000, 200)
	src.addLot(t, owner, model.PoolTypeLocked, 2, 3_000_000, 300)

	r := NewReader(ReaderConfig{}, src, nil)
	snaps, err := r.Dashboard(context.Background(), owner, time.Unix(1000, 0))
	require.NoError(t, err)
	require.Len(t, snaps, 2)
	assert.Equal(t, int64(1), snaps[0].Lot.LotIndex)
	assert.Equal(t, int64(0), snaps[1].Lot.LotIndex)
	assert.Equal(t, 2.0, snaps[0].ScaledAmount)
	assert.Equal(t, int64(800), snaps[0].ElapsedSeconds)
}

func TestStats(t *testing.T) {
	src := newFakeSource()
	mint := solana.NewWallet().PublicKey()
	src.decimals[mint] = 6
	src.addPool(t, model.PoolTypeFlexible, mint, 1000, 0, 1_500_000)
	src.addPool(t, model.PoolTypeLocked, mint, 1500, 604800, 2_250_000)

	r := NewReader(ReaderConfig{}, src, nil)
	stats, err := r.Stats(context.Background(), time.Unix(0, 0))
	require.NoError(t, err)
	require.Len(t, stats.Pools, 2)
	assert.Equal(t, "1.500000", stats.Pools[0].TotalStaked)
	assert.Equal(t, "2.250000", stats.Pools[1].TotalStaked)
	assert.Equal(t, "3.75", stats.TotalValue)

	_, err = NewReader(ReaderConfig{}, newFakeSource(), nil).Stats(context.Background(), time.Unix(0, 0))
	assert.Error(t, err)
}

func TestReferralLink(t *testing.T) {
	owner := solana.MustPublicKeyFromBase58("GdLfQn7SkU2MCH4vH1Q7cY8q3feHwhRFGJjHXNkRK3hS")

	link, err := ReferralLink("https://mcfarmerz.fun/", owner)
	require.NoError(t, err)
	assert.Equal(t, "https://mcfarmerz.fun/?ref=GdLfQn7SkU2MCH4vH1Q7cY8q3feHwhRFGJjHXNkRK3hS", link)

	_, err = ReferralLink("", owner)
	assert.Error(t, err)
	_, err = ReferralLink("mcfarmerz.fun", owner)
	assert.Error(t, err)
}
