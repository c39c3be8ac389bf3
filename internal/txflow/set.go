package txflow

import (
	"go.uber.org/zap"

	"miniammClient/internal/model"
	"miniammClient/internal/notify"
)

// Set owns one controller per operation kind. Kinds do not share state, so
// different kinds may run concurrently.
type Set map[model.TxKind]*Controller

func NewSet(notifier *notify.Center, hooks Hooks, chainID uint64, logger *zap.Logger) Set {
	set := make(Set, len(model.TxKinds()))
	for _, kind := range model.TxKinds() {
		set[kind] = NewController(kind, notifier, hooks, chainID, logger)
	}
	return set
}

// AnyLoading reports whether any kind currently has a transaction in flight.
func (s Set) AnyLoading() bool {
	for _, controller := range s {
		if controller.State().IsLoading {
			return true
		}
	}
	return false
}
