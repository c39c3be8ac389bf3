package statecache

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"miniammClient/internal/model"
)

var (
	token0Addr  = common.HexToAddress("0x1000000000000000000000000000000000000001")
	token1Addr  = common.HexToAddress("0x1000000000000000000000000000000000000002")
	accountAddr = common.HexToAddress("0x2000000000000000000000000000000000000001")
)

// fakeReader returns canned values and lets individual reads be failed.
type fakeReader struct {
	mu sync.Mutex

	reserve0 int64
	reserve1 int64
	supply   int64
	balances map[common.Address]int64
	lp       int64
	allows   map[common.Address]int64

	failReserve0   bool
	failReserve1   bool
	failSupply     bool
	failBalances   bool
	failAllowances bool
	failMeta       bool

	metaCalls int
}

func newFakeReader() *fakeReader {
	return &fakeReader{
		reserve0: 1000,
		reserve1: 2000,
		supply:   500,
		balances: map[common.Address]int64{token0Addr: 11, token1Addr: 22},
		lp:       33,
		allows:   map[common.Address]int64{token0Addr: 44, token1Addr: 55},
	}
}

var errRead = errors.New("read failed")

func (f *fakeReader) Reserve0(ctx context.Context) (*big.Int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failReserve0 {
		return nil, errRead
	}
	return big.NewInt(f.reserve0), nil
}

func (f *fakeReader) Reserve1(ctx context.Context) (*big.Int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failReserve1 {
		return nil, errRead
	}
	return big.NewInt(f.reserve1), nil
}

func (f *fakeReader) TotalSupply(ctx context.Context) (*big.Int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSupply {
		return nil, errRead
	}
	return big.NewInt(f.supply), nil
}

func (f *fakeReader) BalanceOf(ctx context.Context, token, account common.Address) (*big.Int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failBalances {
		return nil, errRead
	}
	return big.NewInt(f.balances[token]), nil
}

func (f *fakeReader) LPBalanceOf(ctx context.Context, account common.Address) (*big.Int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failBalances {
		return nil, errRead
	}
	return big.NewInt(f.lp), nil
}

func (f *fakeReader) Allowance(ctx context.Context, token, owner common.Address) (*big.Int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAllowances {
		return nil, errRead
	}
	return big.NewInt(f.allows[token]), nil
}

func (f *fakeReader) TokenMeta(ctx context.Context, token common.Address, defaults model.TokenMeta) model.TokenMeta {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.metaCalls++
	if f.failMeta {
		return defaults
	}
	if token == token0Addr {
		return model.TokenMeta{Name: "Alpha", Symbol: "ALF", Decimals: 18}
	}
	return model.TokenMeta{Name: "Beta", Symbol: "BET", Decimals: 6}
}

func (f *fakeReader) LPTokenMeta(ctx context.Context, defaults model.TokenMeta) model.TokenMeta {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failMeta {
		return defaults
	}
	return model.TokenMeta{Name: "Pool Share", Symbol: "PSH", Decimals: 18}
}

func newTestPoller(reader *fakeReader) (*Poller, *Cache) {
	cache := NewCache()
	poller := NewPoller(cache, reader, Config{
		Token0:  token0Addr,
		Token1:  token1Addr,
		Account: accountAddr,
	}, nil)
	return poller, cache
}

func TestRefreshPopulatesCache(t *testing.T) {
	reader := newFakeReader()
	poller, cache := newTestPoller(reader)

	poller.Refresh(context.Background())

	pool := cache.Pool()
	if pool.Reserve0.Int64() != 1000 || pool.Reserve1.Int64() != 2000 || pool.TotalSupply.Int64() != 500 {
		t.Fatalf("pool not refreshed: %+v", pool)
	}

	balances := cache.Balances()
	if balances.Token0.Int64() != 11 || balances.Token1.Int64() != 22 || balances.LPToken.Int64() != 33 {
		t.Fatalf("balances not refreshed: %+v", balances)
	}

	allowances := cache.Allowances()
	if allowances.Token0.Int64() != 44 || allowances.Token1.Int64() != 55 {
		t.Fatalf("allowances not refreshed: %+v", allowances)
	}
}

func TestPartialPoolFailureKeepsOtherFields(t *testing.T) {
	reader := newFakeReader()
	poller, cache := newTestPoller(reader)

	poller.Refresh(context.Background())

	reader.mu.Lock()
	reader.failReserve1 = true
	reader.reserve0 = 7777
	reader.mu.Unlock()

	poller.Refresh(context.Background())

	pool := cache.Pool()
	if pool.Reserve0.Int64() != 7777 {
		t.Fatalf("reserve0 should have updated, got %s", pool.Reserve0)
	}
	if pool.Reserve1.Int64() != 2000 {
		t.Fatalf("failed reserve1 read should keep cached value, got %s", pool.Reserve1)
	}
}

func TestTotalPoolFailureZeroesPool(t *testing.T) {
	reader := newFakeReader()
	poller, cache := newTestPoller(reader)

	poller.Refresh(context.Background())

	reader.mu.Lock()
	reader.failReserve0 = true
	reader.failReserve1 = true
	reader.failSupply = true
	reader.mu.Unlock()

	poller.Refresh(context.Background())

	pool := cache.Pool()
	if pool.Reserve0.Sign() != 0 || pool.Reserve1.Sign() != 0 || pool.TotalSupply.Sign() != 0 {
		t.Fatalf("total pool failure should zero pool, got %+v", pool)
	}
}

func TestBalanceFailureDoesNotCorruptPool(t *testing.T) {
	reader := newFakeReader()
	poller, cache := newTestPoller(reader)

	poller.Refresh(context.Background())

	reader.mu.Lock()
	reader.failBalances = true
	reader.failAllowances = true
	reader.reserve0 = 1234
	reader.mu.Unlock()

	poller.Refresh(context.Background())

	if got := cache.Pool().Reserve0.Int64(); got != 1234 {
		t.Fatalf("pool should update despite balance failure, got %d", got)
	}
	if got := cache.Balances().Token0.Int64(); got != 11 {
		t.Fatalf("failed balances should keep cached values, got %d", got)
	}
	if got := cache.Allowances().Token0.Int64(); got != 44 {
		t.Fatalf("failed allowances should keep cached values, got %d", got)
	}
}

func TestMetadataFallsBackPerField(t *testing.T) {
	reader := newFakeReader()
	reader.failMeta = true
	poller, cache := newTestPoller(reader)

	poller.LoadMetadata(context.Background())

	token0, token1, lp := cache.Metadata()
	if token0 != model.DefaultToken0Meta || token1 != model.DefaultToken1Meta || lp != model.DefaultLPMeta {
		t.Fatalf("failed metadata fetch should keep defaults: %+v %+v %+v", token0, token1, lp)
	}
	if !cache.MetadataLoaded() {
		t.Fatalf("metadata fetch should be marked complete even on fallback")
	}
}

func TestMetadataFetchSucceeds(t *testing.T) {
	reader := newFakeReader()
	poller, cache := newTestPoller(reader)

	poller.LoadMetadata(context.Background())

	token0, token1, lp := cache.Metadata()
	if token0.Symbol != "ALF" || token1.Symbol != "BET" || lp.Symbol != "PSH" {
		t.Fatalf("unexpected metadata: %+v %+v %+v", token0, token1, lp)
	}
	if token1.Decimals != 6 {
		t.Fatalf("token1 decimals should be 6, got %d", token1.Decimals)
	}
}

func TestNoAccountSkipsBalances(t *testing.T) {
	reader := newFakeReader()
	cache := NewCache()
	poller := NewPoller(cache, reader, Config{Token0: token0Addr, Token1: token1Addr}, nil)

	poller.Refresh(context.Background())

	if got := cache.Pool().Reserve0.Int64(); got != 1000 {
		t.Fatalf("pool should refresh without an account, got %d", got)
	}
	if got := cache.Balances().Token0.Sign(); got != 0 {
		t.Fatalf("balances should stay zero without an account")
	}
}

func TestRefreshNowCoalesces(t *testing.T) {
	reader := newFakeReader()
	poller, _ := newTestPoller(reader)

	// Multiple requests while nothing is draining the channel collapse into
	// one pending refresh; none of them block.
	for i := 0; i < 10; i++ {
		poller.RefreshNow()
	}
	if len(poller.refreshCh) != 1 {
		t.Fatalf("pending refreshes should coalesce to one, got %d", len(poller.refreshCh))
	}
}

func TestStartStopsOnContextCancel(t *testing.T) {
	reader := newFakeReader()
	poller, cache := newTestPoller(reader)

	ctx, cancel := context.WithCancel(context.Background())
	go poller.Start(ctx)

	cancel()
	<-poller.Done()

	// The initial refresh may or may not have landed before cancellation;
	// the loop exiting is the property under test.
	_ = cache.Pool()
}
