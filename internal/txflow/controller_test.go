package txflow

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"miniammClient/internal/model"
	"miniammClient/internal/notify"
)

// fakeHandle simulates an accepted submission with a scripted confirmation.
type fakeHandle struct {
	hash    string
	confirm func(ctx context.Context) (string, error)
}

func (h *fakeHandle) Hash() string { return h.hash }

func (h *fakeHandle) Wait(ctx context.Context) (string, error) {
	return h.confirm(ctx)
}

type hookCounter struct {
	balances atomic.Int32
	pool     atomic.Int32
}

func (h *hookCounter) hooks() Hooks {
	return Hooks{
		RefreshBalances: func() { h.balances.Add(1) },
		RefreshPool:     func() { h.pool.Add(1) },
	}
}

func newTestController(t *testing.T) (*Controller, *notify.Center, *hookCounter) {
	t.Helper()
	notifier := notify.NewCenter(nil)
	counter := &hookCounter{}
	controller := NewController(model.TxSwap, notifier, counter.hooks(), 114, nil)
	return controller, notifier, counter
}

func TestExecuteSuccess(t *testing.T) {
	controller, notifier, counter := newTestController(t)

	handle := &fakeHandle{
		hash: "0xabc",
		confirm: func(ctx context.Context) (string, error) {
			return "0xabc", nil
		},
	}

	err := controller.Execute(context.Background(), func(ctx context.Context) (Handle, error) {
		return handle, nil
	}, Options{SuccessMessage: "Swap complete", RefetchPool: true})
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}

	state := controller.State()
	if state.IsLoading || state.Error != "" {
		t.Fatalf("state should be idle after success: %+v", state)
	}

	n, ok := notifier.Current()
	if !ok || n.Type != model.NotifySuccess || n.Message != "Swap complete" {
		t.Fatalf("unexpected terminal notification: %+v ok=%v", n, ok)
	}

	if counter.balances.Load() != 1 {
		t.Fatalf("balances refresh should always fire, got %d", counter.balances.Load())
	}
	if counter.pool.Load() != 1 {
		t.Fatalf("pool refresh should fire when requested, got %d", counter.pool.Load())
	}
}

func TestExecuteSuccessWithoutPoolRefetch(t *testing.T) {
	controller, _, counter := newTestController(t)

	handle := &fakeHandle{hash: "0x1", confirm: func(ctx context.Context) (string, error) { return "0x1", nil }}
	err := controller.Execute(context.Background(), func(ctx context.Context) (Handle, error) {
		return handle, nil
	}, Options{})
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}

	if counter.pool.Load() != 0 {
		t.Fatalf("pool refresh should not fire for non-reserve operations")
	}
	if counter.balances.Load() != 1 {
		t.Fatalf("balances refresh should fire")
	}
}

func TestSubmitFailureBeforeHash(t *testing.T) {
	controller, notifier, counter := newTestController(t)

	submitErr := errors.New("insufficient funds for gas * price + value")
	err := controller.Execute(context.Background(), func(ctx context.Context) (Handle, error) {
		return nil, submitErr
	}, Options{})
	if !errors.Is(err, submitErr) {
		t.Fatalf("raw error should propagate, got %v", err)
	}

	state := controller.State()
	if state.IsLoading {
		t.Fatalf("loading should clear on failure")
	}
	if state.Error != "Insufficient funds for transaction" {
		t.Fatalf("unexpected error message: %q", state.Error)
	}

	n, ok := notifier.Current()
	if !ok || n.Type != model.NotifyError {
		t.Fatalf("failure should emit an error notification: %+v ok=%v", n, ok)
	}
	if counter.balances.Load() != 0 {
		t.Fatalf("no refresh on failure")
	}
}

func TestRevertedConfirmation(t *testing.T) {
	controller, notifier, _ := newTestController(t)

	handle := &fakeHandle{
		hash: "0xdead",
		confirm: func(ctx context.Context) (string, error) {
			return "", errors.New("Transaction failed - reverted")
		},
	}

	err := controller.Execute(context.Background(), func(ctx context.Context) (Handle, error) {
		return handle, nil
	}, Options{})
	if err == nil {
		t.Fatalf("revert should surface as an error")
	}

	if got := controller.State().Error; got != "Transaction failed - reverted" {
		t.Fatalf("unexpected state error: %q", got)
	}
	if n, ok := notifier.Current(); !ok || n.Type != model.NotifyError {
		t.Fatalf("revert should emit an error notification: %+v", n)
	}
}

func TestConfirmationTimeout(t *testing.T) {
	controller, notifier, _ := newTestController(t)
	controller.timeout = 10 * time.Millisecond

	handle := &fakeHandle{
		hash: "0xslow",
		confirm: func(ctx context.Context) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		},
	}

	err := controller.Execute(context.Background(), func(ctx context.Context) (Handle, error) {
		return handle, nil
	}, Options{})
	if err == nil {
		t.Fatalf("timeout should surface as an error")
	}

	state := controller.State()
	if state.IsLoading {
		t.Fatalf("loading should clear on timeout")
	}
	if !strings.Contains(state.Error, "taking longer than expected") {
		t.Fatalf("unexpected timeout message: %q", state.Error)
	}

	n, ok := notifier.Current()
	if !ok || n.Type != model.NotifyWarning {
		t.Fatalf("timeout should emit a warning: %+v ok=%v", n, ok)
	}
	if !strings.Contains(n.Message, "coston2-explorer.flare.network/tx/0xslow") {
		t.Fatalf("timeout warning should carry the explorer link: %q", n.Message)
	}
}

func TestUserCancellationIsSilent(t *testing.T) {
	controller, notifier, counter := newTestController(t)

	err := controller.Execute(context.Background(), func(ctx context.Context) (Handle, error) {
		return nil, &walletError{code: 4001, msg: "User rejected the request."}
	}, Options{})
	if err == nil {
		t.Fatalf("cancellation should still return the error to the caller")
	}

	if _, ok := notifier.Current(); ok {
		t.Fatalf("cancellation must not emit a notification")
	}

	state := controller.State()
	if state.IsLoading || state.Error != "" {
		t.Fatalf("cancellation should return to idle with no error: %+v", state)
	}
	if counter.balances.Load() != 0 || counter.pool.Load() != 0 {
		t.Fatalf("no refresh on cancellation")
	}
}

func TestKindsRunIndependently(t *testing.T) {
	notifier := notify.NewCenter(nil)
	set := NewSet(notifier, Hooks{}, 114, nil)

	if len(set) != len(model.TxKinds()) {
		t.Fatalf("set should hold one controller per kind, got %d", len(set))
	}
	if set.AnyLoading() {
		t.Fatalf("fresh set should be idle")
	}

	set[model.TxMint].setState(model.TransactionState{IsLoading: true})
	if !set.AnyLoading() {
		t.Fatalf("AnyLoading should see the mint controller")
	}
	if set[model.TxSwap].State().IsLoading {
		t.Fatalf("kinds must not share state")
	}
}
