package domain

import (
	"fmt"
	"time"
)

// MatchStatus is the lifecycle state of a match record. ACTIVE is the only
// non-terminal state.
type MatchStatus string

const (
	MatchActive    MatchStatus = "ACTIVE"
	MatchCompleted MatchStatus = "COMPLETED"
	MatchExpired   MatchStatus = "EXPIRED"
	MatchCancelled MatchStatus = "CANCELLED"
)

// Match is a persisted pairing between exactly one LOST and one FOUND posting.
type Match struct {
	ID             int64
	LostPostingID  int64
	FoundPostingID int64

	// MatchWeight is the [0,1] score the pairing carried when the record was
	// created, either computed by the matcher or snapshotted from a
	// user-confirmed suggestion.
	MatchWeight float64

	MatchedAt   time.Time
	Status      MatchStatus
	CompletedAt *time.Time

	// Joined fields (not always populated).
	LostOwnerID  int64
	FoundOwnerID int64
	LostTitle    string
	FoundTitle   string
}

// NewMatch pairs two postings of opposite post-type into an ACTIVE match,
// orienting them so the LOST posting is always on the lost side regardless of
// argument order.
func NewMatch(a, b *Posting, score float64, now time.Time) (*Match, error) {
	if a.PostType == b.PostType {
		return nil, &ValidationError{Reason: "postings must have opposite post types"}
	}
	lost, found := a, b
	if a.IsFound() {
		lost, found = b, a
	}
	return &Match{
		LostPostingID:  lost.ID,
		FoundPostingID: found.ID,
		MatchWeight:    score,
		MatchedAt:      now,
		Status:         MatchActive,
		LostOwnerID:    lost.OwnerID,
		FoundOwnerID:   found.OwnerID,
		LostTitle:      lost.Title,
		FoundTitle:     found.Title,
	}, nil
}

func (m *Match) IsActive() bool { return m.Status == MatchActive }

// InvolvesPosting reports whether the match references the given posting.
func (m *Match) InvolvesPosting(postingID int64) bool {
	return m.LostPostingID == postingID || m.FoundPostingID == postingID
}

// InvolvesUser reports whether the match references a posting owned by the
// given user. Requires the joined owner fields to be populated.
func (m *Match) InvolvesUser(userID int64) bool {
	return m.LostOwnerID == userID || m.FoundOwnerID == userID
}

// Complete transitions ACTIVE -> COMPLETED and stamps the completion time.
func (m *Match) Complete(now time.Time) error {
	if err := m.ensureActive("complete"); err != nil {
		return err
	}
	m.Status = MatchCompleted
	m.CompletedAt = &now
	return nil
}

// Cancel transitions ACTIVE -> CANCELLED.
func (m *Match) Cancel() error {
	if err := m.ensureActive("cancel"); err != nil {
		return err
	}
	m.Status = MatchCancelled
	return nil
}

// Expire transitions ACTIVE -> EXPIRED.
func (m *Match) Expire() error {
	if err := m.ensureActive("expire"); err != nil {
		return err
	}
	m.Status = MatchExpired
	return nil
}

func (m *Match) ensureActive(op string) error {
	if m.Status != MatchActive {
		return fmt.Errorf("cannot %s match %d in status %s: %w", op, m.ID, m.Status, ErrTerminalState)
	}
	return nil
}
