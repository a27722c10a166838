package stake

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"

	"mcfarmerz/internal/model"
	"mcfarmerz/internal/snapshot"
)

// Stats is the token-denominated TVL of every pool.
type Stats struct {
	Pools      []model.PoolStat `json:"pools"`
	TotalValue string           `json:"total_value_locked"`
	ObservedAt time.Time        `json:"observed_at"`
}

// Stats reads both pools and sums their scaled total stake. Pools may use
// different mints, so the total is a plain token count.
func (r *Reader) Stats(ctx context.Context, now time.Time) (Stats, error) {
	pools, err := r.Pools(ctx)
	if err != nil {
		return Stats{}, err
	}
	if len(pools) == 0 {
		return Stats{}, fmt.Errorf("no pools available")
	}

	out := Stats{ObservedAt: now.UTC(), Pools: poolStats(pools, now)}
	total := decimal.Zero
	for _, stat := range out.Pools {
		scaled, err := decimal.NewFromString(stat.TotalStaked)
		if err != nil {
			return Stats{}, fmt.Errorf("parse total staked: %w", err)
		}
		total = total.Add(scaled)
	}
	out.TotalValue = total.String()
	return out, nil
}

// poolStats lists the stats of pools in pool type order.
func poolStats(pools map[model.PoolType]model.PoolParameters, now time.Time) []model.PoolStat {
	var out []model.PoolStat
	for _, poolType := range model.PoolTypes {
		if pool, ok := pools[poolType]; ok {
			out = append(out, PoolStat(pool, now))
		}
	}
	return out
}

// PoolStat converts pool into its stored TVL form.
func PoolStat(pool model.PoolParameters, now time.Time) model.PoolStat {
	return model.PoolStat{
		PoolAddress:    pool.Address.String(),
		PoolType:       pool.PoolType,
		Mint:           pool.Mint.String(),
		Decimals:       pool.TokenDecimals,
		APYBasisPoints: pool.APYBasisPoints,
		LockPeriod:     pool.LockPeriodSeconds,
		TotalStakedRaw: strconv.FormatUint(pool.TotalStakedRaw, 10),
		TotalStaked:    snapshot.FormatAmount(uint256.NewInt(pool.TotalStakedRaw), pool.TokenDecimals),
		ObservedAt:     now.UTC(),
	}
}

// ReferralLink returns origin/?ref=<owner>.
func ReferralLink(origin string, owner solana.PublicKey) (string, error) {
	origin = strings.TrimRight(strings.TrimSpace(origin), "/")
	if origin == "" {
		return "", fmt.Errorf("site origin is required")
	}
	base, err := url.Parse(origin)
	if err != nil {
		return "", fmt.Errorf("parse site origin: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return "", fmt.Errorf("site origin must be absolute: %q", origin)
	}
	base.Path = strings.TrimRight(base.Path, "/") + "/"
	base.RawQuery = url.Values{"ref": []string{owner.String()}}.Encode()
	return base.String(), nil
}
