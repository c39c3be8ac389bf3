package notify

import (
	"testing"
	"time"

	"miniammClient/internal/model"
)

// manualTimers captures scheduled dismissals so tests can fire them in any
// order, simulating slow timers racing newer notifications.
type manualTimers struct {
	scheduled []func()
	delays    []time.Duration
}

func (m *manualTimers) afterFunc(d time.Duration, f func()) *time.Timer {
	m.scheduled = append(m.scheduled, f)
	m.delays = append(m.delays, d)
	// Far enough out that the real timer never fires during the test.
	return time.AfterFunc(time.Hour, func() {})
}

func newTestCenter() (*Center, *manualTimers) {
	center := NewCenter(nil)
	timers := &manualTimers{}
	center.afterFunc = timers.afterFunc
	return center, timers
}

func TestPublishAndCurrent(t *testing.T) {
	center, timers := newTestCenter()

	center.Publish(model.Notification{Type: model.NotifyInfo, Message: "Transaction pending..."}, DefaultDismiss)

	got, ok := center.Current()
	if !ok || got.Message != "Transaction pending..." {
		t.Fatalf("unexpected current: %+v ok=%v", got, ok)
	}
	if len(timers.delays) != 1 || timers.delays[0] != DefaultDismiss {
		t.Fatalf("unexpected dismiss delays: %v", timers.delays)
	}
}

func TestDismissTimerClears(t *testing.T) {
	center, timers := newTestCenter()

	center.Publish(model.Notification{Type: model.NotifySuccess, Message: "done"}, DefaultDismiss)
	timers.scheduled[0]()

	if _, ok := center.Current(); ok {
		t.Fatalf("notification should have been dismissed")
	}
}

func TestStaleTimerCannotClearNewerNotification(t *testing.T) {
	center, timers := newTestCenter()

	center.Publish(model.Notification{Type: model.NotifyInfo, Message: "first"}, DefaultDismiss)
	center.Publish(model.Notification{Type: model.NotifyError, Message: "second"}, DefaultDismiss)

	// Fire the first (stale) dismissal after the second publish.
	timers.scheduled[0]()

	got, ok := center.Current()
	if !ok || got.Message != "second" {
		t.Fatalf("stale timer cleared newer notification: %+v ok=%v", got, ok)
	}

	timers.scheduled[1]()
	if _, ok := center.Current(); ok {
		t.Fatalf("second notification should dismiss on its own timer")
	}
}

func TestTimeoutDismissClass(t *testing.T) {
	center, timers := newTestCenter()

	center.Publish(model.Notification{Type: model.NotifyWarning, Message: "taking longer than expected"}, TimeoutDismiss)
	if timers.delays[0] != TimeoutDismiss {
		t.Fatalf("warning should use the timeout dismiss window, got %v", timers.delays[0])
	}
}

func TestExplicitDismiss(t *testing.T) {
	center, timers := newTestCenter()

	center.Publish(model.Notification{Type: model.NotifyInfo, Message: "x"}, DefaultDismiss)
	center.Dismiss()

	if _, ok := center.Current(); ok {
		t.Fatalf("dismiss should clear immediately")
	}

	// The cancelled timer firing later must not resurrect or clear anything
	// a later publish set.
	center.Publish(model.Notification{Type: model.NotifyInfo, Message: "y"}, DefaultDismiss)
	timers.scheduled[0]()
	if got, ok := center.Current(); !ok || got.Message != "y" {
		t.Fatalf("cancelled timer affected later notification: %+v ok=%v", got, ok)
	}
}
