package domain

import (
	"context"
	"log/slog"
	"sync"
)

// MatchObserver receives match lifecycle events published by the matcher.
type MatchObserver interface {
	OnMatchFound(ctx context.Context, m *Match) error
	OnMatchUpdated(ctx context.Context, m *Match) error
	OnMatchCancelled(ctx context.Context, m *Match) error
}

// Registry fans match lifecycle events out to subscribed observers. It is the
// only in-process shared mutable state in the matching core and is safe for
// concurrent subscription and publishing: publishes iterate over a snapshot,
// so registration during a publish neither drops nor double-delivers events.
//
// An observer error is logged and never prevents delivery to the observers
// after it, nor does it propagate to the publisher.
type Registry struct {
	mu        sync.RWMutex
	observers []MatchObserver
	logger    *slog.Logger
}

// NewRegistry creates an empty observer registry.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{logger: logger}
}

// Subscribe registers an observer. Subscribing the same observer twice has no
// additional effect.
func (r *Registry) Subscribe(o MatchObserver) {
	if o == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.observers {
		if existing == o {
			return
		}
	}
	r.observers = append(r.observers, o)
}

// Unsubscribe removes an observer. Unknown observers are ignored.
func (r *Registry) Unsubscribe(o MatchObserver) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.observers {
		if existing == o {
			r.observers = append(r.observers[:i], r.observers[i+1:]...)
			return
		}
	}
}

// PublishMatchFound synchronously notifies every observer, in subscription
// order, that a match was created.
func (r *Registry) PublishMatchFound(ctx context.Context, m *Match) {
	for _, o := range r.snapshot() {
		if err := o.OnMatchFound(ctx, m); err != nil {
			r.logger.Error("match observer failed", "event", "found", "match_id", m.ID, "error", err)
		}
	}
}

// PublishMatchUpdated synchronously notifies every observer that a match's
// status changed.
func (r *Registry) PublishMatchUpdated(ctx context.Context, m *Match) {
	for _, o := range r.snapshot() {
		if err := o.OnMatchUpdated(ctx, m); err != nil {
			r.logger.Error("match observer failed", "event", "updated", "match_id", m.ID, "error", err)
		}
	}
}

// PublishMatchCancelled synchronously notifies every observer that a match
// was cancelled.
func (r *Registry) PublishMatchCancelled(ctx context.Context, m *Match) {
	for _, o := range r.snapshot() {
		if err := o.OnMatchCancelled(ctx, m); err != nil {
			r.logger.Error("match observer failed", "event", "cancelled", "match_id", m.ID, "error", err)
		}
	}
}

func (r *Registry) snapshot() []MatchObserver {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]MatchObserver, len(r.observers))
	copy(out, r.observers)
	return out
}
