// Package notify holds the single current user-facing message. Every publish
// overwrites the previous message and re-arms one owned timer, so a stale
// auto-dismiss can never clear a newer notification.
package notify

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"miniammClient/internal/model"
)

const (
	// DefaultDismiss is how long a notification stays up.
	DefaultDismiss = 5 * time.Second
	// TimeoutDismiss is the longer window for timeout-classified warnings,
	// which the user may need to act on (check the explorer).
	TimeoutDismiss = 10 * time.Second
)

// Center owns the singleton notification and its auto-dismiss timer.
type Center struct {
	mu      sync.Mutex
	current *model.Notification
	timer   *time.Timer
	seq     uint64
	logger  *zap.Logger

	// afterFunc is swappable for tests.
	afterFunc func(d time.Duration, f func()) *time.Timer
}

func NewCenter(logger *zap.Logger) *Center {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Center{logger: logger, afterFunc: time.AfterFunc}
}

// Publish replaces the current notification and schedules its dismissal.
// Any pending dismissal from an earlier notification is cancelled first.
func (c *Center) Publish(n model.Notification, dismissAfter time.Duration) {
	if dismissAfter <= 0 {
		dismissAfter = DefaultDismiss
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.timer != nil {
		c.timer.Stop()
	}

	c.seq++
	seq := c.seq
	c.current = &n

	c.logger.Debug("notification published",
		zap.String("type", string(n.Type)),
		zap.String("message", n.Message),
	)

	c.timer = c.afterFunc(dismissAfter, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		// A later publish supersedes this dismissal.
		if c.seq == seq {
			c.current = nil
		}
	})
}

// Current returns a copy of the live notification, if any.
func (c *Center) Current() (model.Notification, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return model.Notification{}, false
	}
	return *c.current, true
}

// Dismiss clears the current notification immediately.
func (c *Center) Dismiss() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.timer != nil {
		c.timer.Stop()
	}
	c.current = nil
	c.seq++
}

// Close stops the pending timer. The Center is unusable afterwards only by
// convention; it holds no other resources.
func (c *Center) Close() {
	c.Dismiss()
}
