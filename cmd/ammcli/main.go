package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"miniammClient/internal/amount"
	"miniammClient/internal/chain"
	"miniammClient/internal/config"
	"miniammClient/internal/contract"
	"miniammClient/internal/quote"
	"miniammClient/internal/statecache"
)

func main() {
	root := &cobra.Command{
		Use:          "ammcli",
		Short:        "MiniAMM pool client",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Poll pool state and balances until interrupted",
		RunE:  runWatch,
	}
	addCommonFlags(watchCmd)
	root.AddCommand(watchCmd)

	quoteCmd := &cobra.Command{
		Use:   "quote [amountIn]",
		Short: "Preview a swap against current reserves",
		Args:  cobra.ExactArgs(1),
		RunE:  runQuote,
	}
	addCommonFlags(quoteCmd)
	quoteCmd.Flags().Bool("reverse", false, "quote token1 -> token0 instead of token0 -> token1")
	root.AddCommand(quoteCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func addCommonFlags(cmd *cobra.Command) {
	cmd.Flags().String("rpc", "", "chain RPC URL")
	cmd.Flags().String("amm", "", "MiniAMM contract address")
	cmd.Flags().String("token0", "", "token0 contract address")
	cmd.Flags().String("token1", "", "token1 contract address")
	cmd.Flags().String("account", "", "account address for balance/allowance reads")
	cmd.Flags().Duration("poll-interval", 10*time.Second, "cache refresh interval")
	cmd.Flags().Duration("confirm-timeout", 180*time.Second, "confirmation wait bound")
	cmd.Flags().Int("max-retries", 2, "read retry attempts")
	cmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial read retry backoff")
	cmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
}

func runWatch(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	addrs, account, err := parseAddresses(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer chainClient.Close()

	reader := contract.NewReader(chainClient, addrs, logger)
	cache := statecache.NewCache()
	poller := statecache.NewPoller(cache, reader, statecache.Config{
		Token0:       addrs.Token0,
		Token1:       addrs.Token1,
		Account:      account,
		Interval:     cfg.PollInterval,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
	}, logger)

	logger.Info("watch start",
		zap.String("rpc", cfg.RPCURL),
		zap.String("amm", addrs.AMM.Hex()),
		zap.Duration("poll_interval", cfg.PollInterval),
	)

	go poller.Start(ctx)

	ticker := time.NewTicker(cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			<-poller.Done()
			logger.Info("watch stopped")
			return nil
		case <-ticker.C:
			logSnapshot(logger, cache)
		}
	}
}

func runQuote(cmd *cobra.Command, args []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	addrs, _, err := parseAddresses(cfg)
	if err != nil {
		return err
	}

	reverse, _ := cmd.Flags().GetBool("reverse")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer chainClient.Close()

	reader := contract.NewReader(chainClient, addrs, logger)
	cache := statecache.NewCache()
	poller := statecache.NewPoller(cache, reader, statecache.Config{
		Token0: addrs.Token0,
		Token1: addrs.Token1,
	}, logger)

	// One-shot: metadata plus a single refresh, no polling loop.
	poller.LoadMetadata(ctx)
	poller.Refresh(ctx)
	token0Meta, token1Meta, _ := cache.Metadata()
	pool := cache.Pool()

	inMeta, outMeta := token0Meta, token1Meta
	reserveIn, reserveOut := pool.Reserve0, pool.Reserve1
	if reverse {
		inMeta, outMeta = token1Meta, token0Meta
		reserveIn, reserveOut = pool.Reserve1, pool.Reserve0
	}

	amountIn := amount.Parse(args[0], inMeta.Decimals)
	if amountIn.Sign() == 0 {
		return fmt.Errorf("amount %q parsed to zero", args[0])
	}

	amountOut := quote.SwapOutput(amountIn, reserveIn, reserveOut)
	impact := quote.PriceImpact(amountIn, reserveIn, reserveOut)

	fmt.Printf("pool: %s %s / %s %s (supply %s)\n",
		amount.FormatDefault(pool.Reserve0, token0Meta.Decimals), token0Meta.Symbol,
		amount.FormatDefault(pool.Reserve1, token1Meta.Decimals), token1Meta.Symbol,
		pool.TotalSupply,
	)
	fmt.Printf("swap %s %s -> %s %s (price impact %s)\n",
		amount.FormatDefault(amountIn, inMeta.Decimals), inMeta.Symbol,
		amount.FormatDefault(amountOut, outMeta.Decimals), outMeta.Symbol,
		amount.FormatPercent(impact, 2),
	)

	return nil
}

func parseAddresses(cfg config.Config) (contract.Addresses, common.Address, error) {
	var account common.Address

	for name, value := range map[string]string{
		"amm": cfg.AMMAddress, "token0": cfg.Token0Address, "token1": cfg.Token1Address,
	} {
		if !common.IsHexAddress(value) {
			return contract.Addresses{}, account, fmt.Errorf("invalid %s address %q", name, value)
		}
	}

	if cfg.Account != "" {
		if !common.IsHexAddress(cfg.Account) {
			return contract.Addresses{}, account, fmt.Errorf("invalid account address %q", cfg.Account)
		}
		account = common.HexToAddress(cfg.Account)
	}

	return contract.Addresses{
		AMM:    common.HexToAddress(cfg.AMMAddress),
		Token0: common.HexToAddress(cfg.Token0Address),
		Token1: common.HexToAddress(cfg.Token1Address),
	}, account, nil
}

func logSnapshot(logger *zap.Logger, cache *statecache.Cache) {
	pool := cache.Pool()
	balances := cache.Balances()
	token0Meta, token1Meta, lpMeta := cache.Metadata()

	logger.Info("pool state",
		zap.String("reserve0", amount.FormatDefault(pool.Reserve0, token0Meta.Decimals)),
		zap.String("reserve1", amount.FormatDefault(pool.Reserve1, token1Meta.Decimals)),
		zap.String("lp_supply", amount.FormatDefault(pool.TotalSupply, lpMeta.Decimals)),
		zap.Float64("ratio", quote.PoolRatio(pool)),
		zap.String("balance0", amount.FormatDefault(balances.Token0, token0Meta.Decimals)),
		zap.String("balance1", amount.FormatDefault(balances.Token1, token1Meta.Decimals)),
		zap.String("lp_balance", amount.FormatDefault(balances.LPToken, lpMeta.Decimals)),
	)
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
