// Package statecache keeps the client's last-known view of the pool, the
// connected account's balances and allowances, and token metadata. It is the
// single writer for that state; everything else reads snapshots.
package statecache

import (
	"sync"

	"miniammClient/internal/model"
)

// Cache holds the mirrored ledger state. All getters return copies, so
// callers can never alias the cached big.Ints.
type Cache struct {
	mu         sync.RWMutex
	pool       model.PoolState
	balances   model.TokenBalances
	allowances model.Allowances

	token0Meta model.TokenMeta
	token1Meta model.TokenMeta
	lpMeta     model.TokenMeta
	metaLoaded bool
}

func NewCache() *Cache {
	return &Cache{
		pool:       model.NewPoolState(),
		balances:   model.NewTokenBalances(),
		allowances: model.NewAllowances(),
		token0Meta: model.DefaultToken0Meta,
		token1Meta: model.DefaultToken1Meta,
		lpMeta:     model.DefaultLPMeta,
	}
}

// Pool returns the last-known pool state.
func (c *Cache) Pool() model.PoolState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.pool.Clone()
}

// Balances returns the last-known wallet balances.
func (c *Cache) Balances() model.TokenBalances {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.balances.Clone()
}

// Allowances returns the last-known spend approvals.
func (c *Cache) Allowances() model.Allowances {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.allowances.Clone()
}

// Metadata returns the three token metadata records (token0, token1, LP).
func (c *Cache) Metadata() (model.TokenMeta, model.TokenMeta, model.TokenMeta) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token0Meta, c.token1Meta, c.lpMeta
}

// MetadataLoaded reports whether the one-shot metadata fetch has completed.
func (c *Cache) MetadataLoaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.metaLoaded
}

func (c *Cache) setPool(pool model.PoolState) {
	c.mu.Lock()
	c.pool = pool.Clone()
	c.mu.Unlock()
}

// zeroPool is the display-degradation fallback when every pool read fails.
func (c *Cache) zeroPool() {
	c.mu.Lock()
	c.pool = model.NewPoolState()
	c.mu.Unlock()
}

func (c *Cache) setBalances(balances model.TokenBalances) {
	c.mu.Lock()
	c.balances = balances.Clone()
	c.mu.Unlock()
}

func (c *Cache) setAllowances(allowances model.Allowances) {
	c.mu.Lock()
	c.allowances = allowances.Clone()
	c.mu.Unlock()
}

func (c *Cache) setMetadata(token0, token1, lp model.TokenMeta) {
	c.mu.Lock()
	c.token0Meta = token0
	c.token1Meta = token1
	c.lpMeta = lp
	c.metaLoaded = true
	c.mu.Unlock()
}
