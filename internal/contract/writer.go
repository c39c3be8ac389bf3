package contract

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"miniammClient/internal/chain"
	"miniammClient/internal/model"
)

// ErrGasEstimation marks a pre-flight probe failure: the node reports the
// transaction would revert, so it is never submitted.
var ErrGasEstimation = errors.New("gas estimation failed")

// Fixed gas budgets per operation kind. The steady path never estimates gas
// for the actual submission; estimation runs only as a failure probe and a
// successful estimate is discarded.
var gasLimits = map[model.TxKind]uint64{
	model.TxMint:            200_000,
	model.TxApprove:         100_000,
	model.TxSwap:            500_000,
	model.TxAddLiquidity:    800_000,
	model.TxRemoveLiquidity: 350_000,
}

// GasLimitFor returns the fixed gas budget for an operation kind.
func GasLimitFor(kind model.TxKind) uint64 {
	return gasLimits[kind]
}

// TxHandle is the result of an accepted submission: the assigned hash plus an
// awaitable confirmation.
type TxHandle struct {
	Hash    common.Hash
	tx      *types.Transaction
	backend bind.DeployBackend
}

// Wait blocks until the transaction is mined or ctx expires. A receipt with
// status 0 is returned alongside a reverted error.
func (h *TxHandle) Wait(ctx context.Context) (*types.Receipt, error) {
	receipt, err := bind.WaitMined(ctx, h.backend, h.tx)
	if err != nil {
		return nil, err
	}
	if receipt.Status == types.ReceiptStatusFailed {
		return receipt, errors.New("Transaction failed - reverted")
	}
	return receipt, nil
}

// Writer submits the mutating operations against the AMM and its tokens.
// Signing is delegated to the TransactOpts supplied by the composition root.
type Writer struct {
	chain  *chain.Client
	addrs  Addresses
	auth   *bind.TransactOpts
	logger *zap.Logger
}

func NewWriter(chainClient *chain.Client, addrs Addresses, auth *bind.TransactOpts, logger *zap.Logger) *Writer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Writer{chain: chainClient, addrs: addrs, auth: auth, logger: logger}
}

// Mint calls the token's test faucet for the sender.
func (w *Writer) Mint(ctx context.Context, token common.Address, amount *big.Int) (*TxHandle, error) {
	parsed, err := ERC20ABI()
	if err != nil {
		return nil, err
	}
	return w.transact(ctx, model.TxMint, token, parsed, "freeMintToSender", amount)
}

// Approve grants the AMM contract a spend allowance on the token.
func (w *Writer) Approve(ctx context.Context, token common.Address, amount *big.Int) (*TxHandle, error) {
	parsed, err := ERC20ABI()
	if err != nil {
		return nil, err
	}
	return w.transact(ctx, model.TxApprove, token, parsed, "approve", w.addrs.AMM, amount)
}

// Swap trades through the pool. Exactly one of the two input amounts is
// expected to be non-zero.
func (w *Writer) Swap(ctx context.Context, xAmountIn, yAmountIn *big.Int) (*TxHandle, error) {
	parsed, err := MiniAMMABI()
	if err != nil {
		return nil, err
	}
	return w.transact(ctx, model.TxSwap, w.addrs.AMM, parsed, "swap", xAmountIn, yAmountIn)
}

// AddLiquidity deposits both tokens into the pool.
func (w *Writer) AddLiquidity(ctx context.Context, amount0, amount1 *big.Int) (*TxHandle, error) {
	parsed, err := MiniAMMABI()
	if err != nil {
		return nil, err
	}
	return w.transact(ctx, model.TxAddLiquidity, w.addrs.AMM, parsed, "addLiquidity", amount0, amount1)
}

// RemoveLiquidity burns LP tokens for the underlying reserves.
func (w *Writer) RemoveLiquidity(ctx context.Context, lpAmount *big.Int) (*TxHandle, error) {
	parsed, err := MiniAMMABI()
	if err != nil {
		return nil, err
	}
	return w.transact(ctx, model.TxRemoveLiquidity, w.addrs.AMM, parsed, "removeLiquidity", lpAmount)
}

func (w *Writer) transact(ctx context.Context, kind model.TxKind, to common.Address, parsed abi.ABI, method string, args ...interface{}) (*TxHandle, error) {
	if w.auth == nil {
		return nil, errors.New("signer not configured")
	}

	data, err := parsed.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}

	// Failure probe only. A doomed transaction is cheaper to reject here
	// than to submit and watch revert.
	probe := ethereum.CallMsg{From: w.auth.From, To: &to, Data: data}
	if _, err := w.chain.EstimateGas(ctx, probe); err != nil {
		w.logger.Warn("gas estimation probe failed",
			zap.String("kind", string(kind)),
			zap.String("method", method),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %s: %v", ErrGasEstimation, method, err)
	}

	opts := *w.auth
	opts.Context = ctx
	opts.GasLimit = GasLimitFor(kind)

	bound := bind.NewBoundContract(to, parsed, w.chain.Backend(), w.chain.Backend(), w.chain.Backend())
	tx, err := bound.Transact(&opts, method, args...)
	if err != nil {
		return nil, err
	}

	w.logger.Info("transaction submitted",
		zap.String("kind", string(kind)),
		zap.String("hash", tx.Hash().Hex()),
		zap.Uint64("gas_limit", opts.GasLimit),
	)

	return &TxHandle{Hash: tx.Hash(), tx: tx, backend: w.chain.Backend()}, nil
}
