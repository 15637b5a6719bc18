// Package notify persists per-user notifications for match lifecycle events
// and bridges the matcher's observer registry to Notifier implementations.
package notify

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/campuskeep/lostfound/internal/domain"
)

// Notification types.
const (
	TypeMatchFound     = "MATCH_FOUND"
	TypeMatchCompleted = "MATCH_COMPLETED"
	TypeMatchCancelled = "MATCH_CANCELLED"
)

// Notification is a stored, user-facing alert.
type Notification struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	MatchID   *int64    `json:"match_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	Read      bool      `json:"read"`
}

// StoreNotifier implements domain.Notifier by writing one notification row
// per recipient. Each match event alerts both posting owners, with the
// message worded for their side of the pair.
type StoreNotifier struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewStoreNotifier creates a notifier over an open database handle.
func NewStoreNotifier(db *sql.DB, logger *slog.Logger) *StoreNotifier {
	return &StoreNotifier{db: db, logger: logger}
}

// MatchFound alerts both owners that a candidate pairing was created.
func (n *StoreNotifier) MatchFound(ctx context.Context, m *domain.Match) error {
	lostMsg := fmt.Sprintf("A found-item report %q may match your lost item %q.", m.FoundTitle, m.LostTitle)
	foundMsg := fmt.Sprintf("A lost-item report %q may match the item you found, %q.", m.LostTitle, m.FoundTitle)
	return n.insertPair(ctx, m, TypeMatchFound, "Possible match found", lostMsg, foundMsg)
}

// MatchUpdated alerts both owners about a status change, currently only
// completion is user-visible.
func (n *StoreNotifier) MatchUpdated(ctx context.Context, m *domain.Match) error {
	if m.Status != domain.MatchCompleted {
		return nil
	}
	lostMsg := fmt.Sprintf("Your match for lost item %q has been completed.", m.LostTitle)
	foundMsg := fmt.Sprintf("Your match for found item %q has been completed.", m.FoundTitle)
	return n.insertPair(ctx, m, TypeMatchCompleted, "Match completed", lostMsg, foundMsg)
}

// MatchCancelled alerts both owners that a match was withdrawn.
func (n *StoreNotifier) MatchCancelled(ctx context.Context, m *domain.Match) error {
	lostMsg := fmt.Sprintf("The match for your lost item %q was cancelled.", m.LostTitle)
	foundMsg := fmt.Sprintf("The match for your found item %q was cancelled.", m.FoundTitle)
	return n.insertPair(ctx, m, TypeMatchCancelled, "Match cancelled", lostMsg, foundMsg)
}

func (n *StoreNotifier) insertPair(ctx context.Context, m *domain.Match, typ, title, lostMsg, foundMsg string) error {
	if err := n.insert(ctx, m.LostOwnerID, typ, title, lostMsg, m.ID); err != nil {
		return err
	}
	return n.insert(ctx, m.FoundOwnerID, typ, title, foundMsg, m.ID)
}

func (n *StoreNotifier) insert(ctx context.Context, userID int64, typ, title, message string, matchID int64) error {
	_, err := n.db.ExecContext(ctx, `
		INSERT INTO notifications (user_id, type, title, message, match_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		userID, typ, title, message, matchID, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert notification for user %d: %w", userID, err)
	}
	return nil
}

// ListForUser returns the user's notifications, newest first.
func (n *StoreNotifier) ListForUser(ctx context.Context, userID int64, limit int) ([]Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := n.db.QueryContext(ctx, `
		SELECT id, user_id, type, title, message, match_id, created_at, read
		FROM notifications
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query notifications for user %d: %w", userID, err)
	}
	defer rows.Close()

	var notifications []Notification
	for rows.Next() {
		var nt Notification
		var matchID sql.NullInt64
		if err := rows.Scan(&nt.ID, &nt.UserID, &nt.Type, &nt.Title, &nt.Message, &matchID, &nt.CreatedAt, &nt.Read); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		if matchID.Valid {
			id := matchID.Int64
			nt.MatchID = &id
		}
		notifications = append(notifications, nt)
	}
	return notifications, rows.Err()
}

// MarkRead marks a single notification as read.
func (n *StoreNotifier) MarkRead(ctx context.Context, id int64) error {
	_, err := n.db.ExecContext(ctx, `UPDATE notifications SET read = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark notification %d read: %w", id, err)
	}
	return nil
}
