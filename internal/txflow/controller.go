// Package txflow drives each mutating operation through its
// submit -> confirm -> reconcile lifecycle: one controller per operation
// kind, a fixed confirmation timeout, error classification, cache refresh
// triggers, and exactly one terminal notification per invocation (none for
// user-initiated cancellation).
package txflow

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"miniammClient/internal/contract"
	"miniammClient/internal/model"
	"miniammClient/internal/notify"
)

// DefaultConfirmTimeout bounds the confirmation wait. The underlying
// transaction may still land after the bound; the explorer link in the
// timeout notification covers manual verification.
const DefaultConfirmTimeout = 180 * time.Second

// Handle is what an operation yields once the ledger accepts the submission.
type Handle interface {
	Hash() string
	// Wait blocks until confirmation and returns the confirmed transaction
	// hash. A reverted execution is an error.
	Wait(ctx context.Context) (string, error)
}

// Operation performs the external submission.
type Operation func(ctx context.Context) (Handle, error)

// Options tunes one Execute invocation.
type Options struct {
	SuccessMessage string
	// RefetchPool requests a pool-state refresh on success. Balances are
	// always refreshed; reserves only move for swaps and liquidity changes.
	RefetchPool bool
	OnSuccess   func(confirmedHash string)
}

// Hooks are the controller's side-effect outlets, owned by the composition
// root.
type Hooks struct {
	RefreshBalances func()
	RefreshPool     func()
}

// Controller owns the lifecycle state for one operation kind. It does not
// guard against concurrent Execute calls for the same kind; callers disable
// the trigger while a transaction is loading.
type Controller struct {
	kind     model.TxKind
	notifier *notify.Center
	hooks    Hooks
	timeout  time.Duration
	chainID  uint64
	logger   *zap.Logger

	mu    sync.Mutex
	state model.TransactionState
}

func NewController(kind model.TxKind, notifier *notify.Center, hooks Hooks, chainID uint64, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		kind:     kind,
		notifier: notifier,
		hooks:    hooks,
		timeout:  DefaultConfirmTimeout,
		chainID:  chainID,
		logger:   logger.With(zap.String("kind", string(kind))),
	}
}

// SetTimeout overrides the confirmation bound. Call before Execute.
func (c *Controller) SetTimeout(d time.Duration) {
	if d > 0 {
		c.timeout = d
	}
}

// Kind returns the operation family this controller owns.
func (c *Controller) Kind() model.TxKind {
	return c.kind
}

// State returns the current lifecycle snapshot.
func (c *Controller) State() model.TransactionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Execute drives one operation through the lifecycle and returns the raw
// error on failure so callers can branch on it.
func (c *Controller) Execute(ctx context.Context, op Operation, opts Options) error {
	c.setState(model.TransactionState{IsLoading: true})

	handle, err := op(ctx)
	if err != nil {
		// Submission failed before a hash was assigned.
		return c.fail(err, "")
	}

	hash := handle.Hash()
	c.setState(model.TransactionState{IsLoading: true, Hash: hash})
	c.notifier.Publish(model.Notification{
		Type:    model.NotifyInfo,
		Message: "Transaction pending...",
		TxHash:  hash,
	}, notify.DefaultDismiss)

	c.logger.Info("awaiting confirmation", zap.String("hash", hash))

	waitCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	confirmedHash, err := handle.Wait(waitCtx)
	if err != nil {
		return c.fail(err, hash)
	}

	c.setState(model.TransactionState{IsLoading: false})

	message := opts.SuccessMessage
	if message == "" {
		message = "Transaction successful!"
	}
	c.notifier.Publish(model.Notification{
		Type:    model.NotifySuccess,
		Message: message,
		TxHash:  confirmedHash,
	}, notify.DefaultDismiss)

	if c.hooks.RefreshBalances != nil {
		c.hooks.RefreshBalances()
	}
	if opts.RefetchPool && c.hooks.RefreshPool != nil {
		c.hooks.RefreshPool()
	}
	if opts.OnSuccess != nil {
		opts.OnSuccess(confirmedHash)
	}

	c.logger.Info("transaction confirmed", zap.String("hash", confirmedHash))
	return nil
}

func (c *Controller) fail(err error, hash string) error {
	classification := Classify(err)

	if classification.Kind == KindUserCancelled {
		// Intentional, not an error: back to idle, no message retained.
		c.setState(model.TransactionState{IsLoading: false})
		c.logger.Info("transaction cancelled by user")
		return err
	}

	c.setState(model.TransactionState{IsLoading: false, Error: classification.Message})

	switch classification.Kind {
	case KindTimeout:
		message := classification.Message
		if hash != "" {
			message += " " + contract.ExplorerTxURL(c.chainID, hash)
		}
		c.notifier.Publish(model.Notification{
			Type:    model.NotifyWarning,
			Message: message,
			TxHash:  hash,
		}, notify.TimeoutDismiss)
		c.logger.Warn("confirmation timed out", zap.String("hash", hash))
	default:
		c.notifier.Publish(model.Notification{
			Type:    model.NotifyError,
			Message: classification.Message,
			TxHash:  hash,
		}, notify.DefaultDismiss)
		c.logger.Warn("transaction failed",
			zap.String("hash", hash),
			zap.String("reason", classification.Message),
			zap.Error(err),
		)
	}

	return err
}

func (c *Controller) setState(state model.TransactionState) {
	c.mu.Lock()
	c.state = state
	c.mu.Unlock()
}

// ContractHandle adapts a contract.TxHandle to the controller's Handle.
type ContractHandle struct {
	inner *contract.TxHandle
}

func WrapHandle(inner *contract.TxHandle) *ContractHandle {
	return &ContractHandle{inner: inner}
}

func (h *ContractHandle) Hash() string {
	return h.inner.Hash.Hex()
}

func (h *ContractHandle) Wait(ctx context.Context) (string, error) {
	receipt, err := h.inner.Wait(ctx)
	if err != nil {
		return "", err
	}
	return receipt.TxHash.Hex(), nil
}
