package statecache

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"miniammClient/internal/model"
)

// Reader is the view-call surface the poller depends on. *contract.Reader
// satisfies it; tests use fakes.
type Reader interface {
	Reserve0(ctx context.Context) (*big.Int, error)
	Reserve1(ctx context.Context) (*big.Int, error)
	TotalSupply(ctx context.Context) (*big.Int, error)
	BalanceOf(ctx context.Context, token, account common.Address) (*big.Int, error)
	LPBalanceOf(ctx context.Context, account common.Address) (*big.Int, error)
	Allowance(ctx context.Context, token, owner common.Address) (*big.Int, error)
	TokenMeta(ctx context.Context, token common.Address, defaults model.TokenMeta) model.TokenMeta
	LPTokenMeta(ctx context.Context, defaults model.TokenMeta) model.TokenMeta
}

// Config holds the poller's runtime settings.
type Config struct {
	Token0  common.Address
	Token1  common.Address
	Account common.Address

	Interval     time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
}

// Poller refreshes the cache on a fixed interval and on demand. Refresh
// requests are coalesced, never queued: at most one request can be pending
// while a cycle is in flight, and whichever cycle lands last wins.
type Poller struct {
	cache  *Cache
	reader Reader
	cfg    Config
	logger *zap.Logger

	refreshCh chan struct{}
	done      chan struct{}
}

func NewPoller(cache *Cache, reader Reader, cfg Config, logger *zap.Logger) *Poller {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 10 * time.Second
	}
	return &Poller{
		cache:     cache,
		reader:    reader,
		cfg:       cfg,
		logger:    logger,
		refreshCh: make(chan struct{}, 1),
		done:      make(chan struct{}),
	}
}

// Start runs the polling loop until ctx is cancelled. Metadata is fetched
// once up front; it never blocks the balance/pool cycle.
func (p *Poller) Start(ctx context.Context) {
	defer close(p.done)

	p.LoadMetadata(ctx)
	p.Refresh(ctx)

	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Refresh(ctx)
		case <-p.refreshCh:
			p.Refresh(ctx)
		}
	}
}

// Done is closed when the polling loop has exited.
func (p *Poller) Done() <-chan struct{} {
	return p.done
}

// RefreshNow requests an immediate refresh without blocking the caller. If a
// request is already pending it is coalesced into it.
func (p *Poller) RefreshNow() {
	select {
	case p.refreshCh <- struct{}{}:
	default:
	}
}

// Refresh runs one cache refresh cycle: balances, pool state, and allowances
// are read concurrently, and each group fails soft without touching the
// fields the others own.
func (p *Poller) Refresh(ctx context.Context) {
	var g errgroup.Group

	g.Go(func() error {
		p.refreshPool(ctx)
		return nil
	})

	if p.cfg.Account != (common.Address{}) {
		g.Go(func() error {
			p.refreshBalances(ctx)
			return nil
		})
		g.Go(func() error {
			p.refreshAllowances(ctx)
			return nil
		})
	}

	// Sub-tasks never return errors; the group is only a completion barrier
	// so one cycle's writes land before the next cycle starts.
	_ = g.Wait()
}

func (p *Poller) refreshPool(ctx context.Context) {
	reserve0, err0 := p.readWithRetry(ctx, p.reader.Reserve0)
	reserve1, err1 := p.readWithRetry(ctx, p.reader.Reserve1)
	supply, err2 := p.readWithRetry(ctx, p.reader.TotalSupply)

	if err0 != nil && err1 != nil && err2 != nil {
		p.logger.Warn("pool refresh failed, zeroing pool state",
			zap.Error(err0),
		)
		p.cache.zeroPool()
		return
	}

	pool := p.cache.Pool()
	if err0 == nil {
		pool.Reserve0 = reserve0
	}
	if err1 == nil {
		pool.Reserve1 = reserve1
	}
	if err2 == nil {
		pool.TotalSupply = supply
	}
	p.cache.setPool(pool)
}

func (p *Poller) refreshBalances(ctx context.Context) {
	balances := p.cache.Balances()
	updated := false

	if v, err := p.readWithRetry(ctx, func(ctx context.Context) (*big.Int, error) {
		return p.reader.BalanceOf(ctx, p.cfg.Token0, p.cfg.Account)
	}); err == nil {
		balances.Token0 = v
		updated = true
	} else {
		p.logger.Warn("token0 balance fetch failed", zap.Error(err))
	}

	if v, err := p.readWithRetry(ctx, func(ctx context.Context) (*big.Int, error) {
		return p.reader.BalanceOf(ctx, p.cfg.Token1, p.cfg.Account)
	}); err == nil {
		balances.Token1 = v
		updated = true
	} else {
		p.logger.Warn("token1 balance fetch failed", zap.Error(err))
	}

	if v, err := p.readWithRetry(ctx, func(ctx context.Context) (*big.Int, error) {
		return p.reader.LPBalanceOf(ctx, p.cfg.Account)
	}); err == nil {
		balances.LPToken = v
		updated = true
	} else {
		p.logger.Warn("lp balance fetch failed", zap.Error(err))
	}

	if updated {
		p.cache.setBalances(balances)
	}
}

func (p *Poller) refreshAllowances(ctx context.Context) {
	allowances := p.cache.Allowances()
	updated := false

	if v, err := p.readWithRetry(ctx, func(ctx context.Context) (*big.Int, error) {
		return p.reader.Allowance(ctx, p.cfg.Token0, p.cfg.Account)
	}); err == nil {
		allowances.Token0 = v
		updated = true
	} else {
		p.logger.Warn("token0 allowance fetch failed", zap.Error(err))
	}

	if v, err := p.readWithRetry(ctx, func(ctx context.Context) (*big.Int, error) {
		return p.reader.Allowance(ctx, p.cfg.Token1, p.cfg.Account)
	}); err == nil {
		allowances.Token1 = v
		updated = true
	} else {
		p.logger.Warn("token1 allowance fetch failed", zap.Error(err))
	}

	if updated {
		p.cache.setAllowances(allowances)
	}
}

// LoadMetadata reads token names, symbols and decimals into the cache, falling
// back per field to the configured defaults. Start calls it once; one-shot
// callers invoke it directly.
func (p *Poller) LoadMetadata(ctx context.Context) {
	token0 := p.reader.TokenMeta(ctx, p.cfg.Token0, model.DefaultToken0Meta)
	token1 := p.reader.TokenMeta(ctx, p.cfg.Token1, model.DefaultToken1Meta)
	lp := p.reader.LPTokenMeta(ctx, model.DefaultLPMeta)
	p.cache.setMetadata(token0, token1, lp)

	p.logger.Info("token metadata loaded",
		zap.String("token0", token0.Symbol),
		zap.String("token1", token1.Symbol),
		zap.String("lp", lp.Symbol),
	)
}

func (p *Poller) readWithRetry(ctx context.Context, read func(context.Context) (*big.Int, error)) (*big.Int, error) {
	var value *big.Int
	err := withRetry(ctx, p.cfg.MaxRetries, p.cfg.RetryBackoff, func(ctx context.Context) error {
		var err error
		value, err = read(ctx)
		return err
	})
	return value, err
}
