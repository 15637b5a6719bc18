package notify

import (
	"context"

	"github.com/campuskeep/lostfound/internal/domain"
)

// Bridge adapts a domain.Notifier to the matcher's observer registry. It is
// the default (and usually only) registry subscriber; errors bubble to the
// registry, which logs them without interrupting delivery to other observers.
type Bridge struct {
	notifier domain.Notifier
}

// NewBridge wraps a notifier as a match observer.
func NewBridge(notifier domain.Notifier) *Bridge {
	return &Bridge{notifier: notifier}
}

func (b *Bridge) OnMatchFound(ctx context.Context, m *domain.Match) error {
	return b.notifier.MatchFound(ctx, m)
}

func (b *Bridge) OnMatchUpdated(ctx context.Context, m *domain.Match) error {
	return b.notifier.MatchUpdated(ctx, m)
}

func (b *Bridge) OnMatchCancelled(ctx context.Context, m *domain.Match) error {
	return b.notifier.MatchCancelled(ctx, m)
}
