// Package miniammclient is a client for a single constant-product MiniAMM
// pool: exact-integer swap and liquidity previews that match on-chain
// execution, a polling cache of reserves, balances and allowances, and a
// submit/confirm/reconcile lifecycle for every mutating operation.
//
// The Client is an explicitly constructed context object: the embedding
// application builds one, starts it, reads snapshots and previews from it,
// invokes operations on it, and stops it on teardown. There is no package
// level mutable state.
package miniammclient

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"miniammClient/internal/chain"
	"miniammClient/internal/contract"
	"miniammClient/internal/model"
	"miniammClient/internal/notify"
	"miniammClient/internal/quote"
	"miniammClient/internal/statecache"
	"miniammClient/internal/txflow"
)

// Config assembles a Client. Auth may be nil for a read-only client; every
// mutating operation then fails before submission.
type Config struct {
	RPCURL  string
	AMM     common.Address
	Token0  common.Address
	Token1  common.Address
	Account common.Address
	Auth    *bind.TransactOpts

	PollInterval   time.Duration
	ConfirmTimeout time.Duration
	MaxRetries     int
	RetryBackoff   time.Duration

	Logger *zap.Logger
}

// Client owns the pool client's moving parts. Construct with New, call
// Start to begin polling, Stop on teardown.
type Client struct {
	chain       *chain.Client
	reader      *contract.Reader
	writer      *contract.Writer
	cache       *statecache.Cache
	poller      *statecache.Poller
	notifier    *notify.Center
	controllers txflow.Set
	logger      *zap.Logger

	token0 common.Address
	token1 common.Address

	stop context.CancelFunc
}

// New dials the RPC endpoint and wires the client together. Polling does not
// begin until Start.
func New(ctx context.Context, cfg Config) (*Client, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("connect rpc: %w", err)
	}

	chainID, err := chainClient.ChainID(ctx)
	if err != nil {
		chainClient.Close()
		return nil, fmt.Errorf("chain id: %w", err)
	}

	addrs := contract.Addresses{AMM: cfg.AMM, Token0: cfg.Token0, Token1: cfg.Token1}
	reader := contract.NewReader(chainClient, addrs, logger)
	writer := contract.NewWriter(chainClient, addrs, cfg.Auth, logger)

	cache := statecache.NewCache()
	poller := statecache.NewPoller(cache, reader, statecache.Config{
		Token0:       cfg.Token0,
		Token1:       cfg.Token1,
		Account:      cfg.Account,
		Interval:     cfg.PollInterval,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
	}, logger)

	notifier := notify.NewCenter(logger)

	// Both hooks funnel into the same poller; a cycle refreshes balances and
	// pool together, so the balance hook alone already covers reconciliation
	// and the pool hook exists for interface parity with callers that track
	// the distinction.
	hooks := txflow.Hooks{
		RefreshBalances: poller.RefreshNow,
		RefreshPool:     poller.RefreshNow,
	}
	controllers := txflow.NewSet(notifier, hooks, chainID.Uint64(), logger)
	if cfg.ConfirmTimeout > 0 {
		for _, controller := range controllers {
			controller.SetTimeout(cfg.ConfirmTimeout)
		}
	}

	return &Client{
		chain:       chainClient,
		reader:      reader,
		writer:      writer,
		cache:       cache,
		poller:      poller,
		notifier:    notifier,
		controllers: controllers,
		logger:      logger,
		token0:      cfg.Token0,
		token1:      cfg.Token1,
	}, nil
}

// Start launches the polling loop. It returns immediately.
func (c *Client) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	c.stop = cancel
	go c.poller.Start(ctx)
}

// Stop cancels polling, waits for the loop to exit, and releases the RPC
// connection. In-flight reads are not force-cancelled; their results are
// discarded by last-write-wins.
func (c *Client) Stop() {
	if c.stop != nil {
		c.stop()
		<-c.poller.Done()
	}
	c.notifier.Close()
	c.chain.Close()
}

// Pool returns the cached pool state.
func (c *Client) Pool() model.PoolState { return c.cache.Pool() }

// Balances returns the cached wallet balances.
func (c *Client) Balances() model.TokenBalances { return c.cache.Balances() }

// Allowances returns the cached spend approvals.
func (c *Client) Allowances() model.Allowances { return c.cache.Allowances() }

// Metadata returns token0, token1 and LP token metadata.
func (c *Client) Metadata() (model.TokenMeta, model.TokenMeta, model.TokenMeta) {
	return c.cache.Metadata()
}

// Notification returns the current user-facing message, if any.
func (c *Client) Notification() (model.Notification, bool) {
	return c.notifier.Current()
}

// TxState returns the lifecycle snapshot for one operation kind.
func (c *Client) TxState(kind model.TxKind) model.TransactionState {
	return c.controllers[kind].State()
}

// RefreshNow requests an immediate cache refresh without blocking.
func (c *Client) RefreshNow() { c.poller.RefreshNow() }

// SwapPreview is a display-side quote against the cached reserves.
type SwapPreview struct {
	AmountOut   *big.Int
	PriceImpact float64
}

// PreviewSwap quotes amountIn of token0 (or token1 when reverse) against the
// cached reserves.
func (c *Client) PreviewSwap(amountIn *big.Int, reverse bool) SwapPreview {
	pool := c.cache.Pool()
	reserveIn, reserveOut := pool.Reserve0, pool.Reserve1
	if reverse {
		reserveIn, reserveOut = pool.Reserve1, pool.Reserve0
	}
	return SwapPreview{
		AmountOut:   quote.SwapOutput(amountIn, reserveIn, reserveOut),
		PriceImpact: quote.PriceImpact(amountIn, reserveIn, reserveOut),
	}
}

// PreviewDeposit quotes the LP tokens minted for a deposit.
func (c *Client) PreviewDeposit(amount0, amount1 *big.Int) *big.Int {
	return quote.LPTokensForDeposit(amount0, amount1, c.cache.Pool())
}

// PreviewWithdraw quotes the amounts released for burning lpAmount.
func (c *Client) PreviewWithdraw(lpAmount *big.Int) (*big.Int, *big.Int) {
	return quote.WithdrawAmounts(lpAmount, c.cache.Pool())
}

// CounterpartAmount returns the buffered amount of the other token needed to
// match changedAmount at the current pool ratio. The 0.1% buffer absorbs
// reserve drift between quote and submission.
func (c *Client) CounterpartAmount(changedAmount *big.Int, changedIsToken0 bool) *big.Int {
	pool := c.cache.Pool()
	changedReserve, otherReserve := pool.Reserve0, pool.Reserve1
	if !changedIsToken0 {
		changedReserve, otherReserve = pool.Reserve1, pool.Reserve0
	}
	required := quote.RequiredCounterpartAmount(changedAmount, changedReserve, otherReserve)
	return quote.WithSlippageBuffer(required)
}

// NeedsApproval reports whether the cached allowance for the given token is
// below amount.
func (c *Client) NeedsApproval(amount *big.Int, isToken0 bool) bool {
	if amount == nil || amount.Sign() <= 0 {
		return false
	}
	allowances := c.cache.Allowances()
	allowance := allowances.Token0
	if !isToken0 {
		allowance = allowances.Token1
	}
	return allowance.Cmp(amount) < 0
}

// Mint calls the token faucet. Balances refresh on success; reserves are
// untouched by a mint.
func (c *Client) Mint(ctx context.Context, amount *big.Int, isToken0 bool, successMessage string) error {
	token := c.tokenAddress(isToken0)
	return c.controllers[model.TxMint].Execute(ctx, func(ctx context.Context) (txflow.Handle, error) {
		handle, err := c.writer.Mint(ctx, token, amount)
		if err != nil {
			return nil, err
		}
		return txflow.WrapHandle(handle), nil
	}, txflow.Options{SuccessMessage: successMessage})
}

// Approve grants the pool a spend allowance on one token.
func (c *Client) Approve(ctx context.Context, amount *big.Int, isToken0 bool, successMessage string) error {
	token := c.tokenAddress(isToken0)
	return c.controllers[model.TxApprove].Execute(ctx, func(ctx context.Context) (txflow.Handle, error) {
		handle, err := c.writer.Approve(ctx, token, amount)
		if err != nil {
			return nil, err
		}
		return txflow.WrapHandle(handle), nil
	}, txflow.Options{SuccessMessage: successMessage})
}

// Swap trades amountIn of token0 for token1 (or the reverse). Reserves move,
// so the pool is refreshed on success.
func (c *Client) Swap(ctx context.Context, amountIn *big.Int, reverse bool) error {
	xIn, yIn := amountIn, new(big.Int)
	if reverse {
		xIn, yIn = new(big.Int), amountIn
	}
	return c.controllers[model.TxSwap].Execute(ctx, func(ctx context.Context) (txflow.Handle, error) {
		handle, err := c.writer.Swap(ctx, xIn, yIn)
		if err != nil {
			return nil, err
		}
		return txflow.WrapHandle(handle), nil
	}, txflow.Options{SuccessMessage: "Swap successful!", RefetchPool: true})
}

// AddLiquidity deposits both tokens at the current ratio.
func (c *Client) AddLiquidity(ctx context.Context, amount0, amount1 *big.Int) error {
	return c.controllers[model.TxAddLiquidity].Execute(ctx, func(ctx context.Context) (txflow.Handle, error) {
		handle, err := c.writer.AddLiquidity(ctx, amount0, amount1)
		if err != nil {
			return nil, err
		}
		return txflow.WrapHandle(handle), nil
	}, txflow.Options{SuccessMessage: "Liquidity added successfully!", RefetchPool: true})
}

// RemoveLiquidity burns LP tokens for the underlying reserves.
func (c *Client) RemoveLiquidity(ctx context.Context, lpAmount *big.Int) error {
	return c.controllers[model.TxRemoveLiquidity].Execute(ctx, func(ctx context.Context) (txflow.Handle, error) {
		handle, err := c.writer.RemoveLiquidity(ctx, lpAmount)
		if err != nil {
			return nil, err
		}
		return txflow.WrapHandle(handle), nil
	}, txflow.Options{SuccessMessage: "Liquidity removed successfully!", RefetchPool: true})
}

func (c *Client) tokenAddress(isToken0 bool) common.Address {
	if isToken0 {
		return c.token0
	}
	return c.token1
}
