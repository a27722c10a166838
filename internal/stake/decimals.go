package stake

import (
	"github.com/bluele/gcache"
	"github.com/gagliardetto/solana-go"
)

// DecimalsCache caches mint decimals by mint address. Decimals are fixed at
// mint creation so entries never expire.
type DecimalsCache struct {
	cache gcache.Cache
}

func NewDecimalsCache(size int) *DecimalsCache {
	if size <= 0 {
		size = 64
	}
	return &DecimalsCache{cache: gcache.New(size).LRU().Build()}
}

func (c *DecimalsCache) Get(mint solana.PublicKey) (uint8, bool) {
	v, err := c.cache.Get(mint)
	if err != nil {
		return 0, false
	}
	decimals, ok := v.(uint8)
	return decimals, ok
}

func (c *DecimalsCache) Set(mint solana.PublicKey, decimals uint8) {
	_ = c.cache.Set(mint, decimals)
}
