package domain

import (
	"context"
	"time"
)

// PostingRepository defines persistence operations over postings. It doubles
// as the candidate store: the two Find*Candidates methods return only
// approved, live postings of the requested post-type.
type PostingRepository interface {
	// CreatePosting inserts a new posting and assigns its ID.
	CreatePosting(ctx context.Context, p *Posting) error

	// GetPosting retrieves a posting by id. Returns ErrPostingNotFound when
	// the id does not resolve.
	GetPosting(ctx context.Context, id int64) (*Posting, error)

	// UpdatePosting persists all mutable posting fields, including the
	// derived total weight.
	UpdatePosting(ctx context.Context, p *Posting) error

	// DeletePosting removes a posting. Returns ErrPostingNotFound when the id
	// does not resolve.
	DeletePosting(ctx context.Context, id int64) error

	// FindAutoCandidates returns live postings of the given post-type with
	// exactly the given total weight and primary location, created on or
	// after since. This is the cheap pre-filter for automatic matching.
	FindAutoCandidates(ctx context.Context, postType PostType, totalWeight int, location Location, since time.Time) ([]Posting, error)

	// FindCandidatesSince returns all live postings of the given post-type
	// created or occurring on or after since, with no weight or location
	// pre-filter. This is the suggestion-mode candidate universe.
	FindCandidatesSince(ctx context.Context, postType PostType, since time.Time) ([]Posting, error)

	// FindByOwner returns the user's postings, newest first.
	FindByOwner(ctx context.Context, ownerID int64) ([]Posting, error)
}

// MatchRepository defines persistence operations over match records.
type MatchRepository interface {
	// CreateMatch inserts a new ACTIVE match and assigns its ID. The insert
	// is an atomic check-and-insert: if an ACTIVE match already exists for
	// the pair it returns ErrDuplicateMatch and persists nothing.
	CreateMatch(ctx context.Context, m *Match) error

	// GetMatch retrieves a match by id. Returns ErrMatchNotFound when the id
	// does not resolve.
	GetMatch(ctx context.Context, id int64) (*Match, error)

	// UpdateMatch persists the match's status and completion time.
	UpdateMatch(ctx context.Context, m *Match) error

	// ActiveMatchBetween returns the ACTIVE match pairing the two postings,
	// in either orientation, or nil when none exists.
	ActiveMatchBetween(ctx context.Context, postingA, postingB int64) (*Match, error)

	// FindMatchesForPosting returns all matches referencing the posting on
	// either side, newest first.
	FindMatchesForPosting(ctx context.Context, postingID int64) ([]Match, error)

	// FindActiveByUser returns ACTIVE matches referencing any posting owned
	// by the user.
	FindActiveByUser(ctx context.Context, userID int64) ([]Match, error)

	// FindActiveOlderThan returns ACTIVE matches created before the cutoff,
	// for the expiry sweep.
	FindActiveOlderThan(ctx context.Context, cutoff time.Time) ([]Match, error)
}

// Notifier delivers user-facing alerts about a match to the owners of its two
// postings. Delivery is best-effort: a failing notifier must never roll back
// or fail the match transaction that triggered it.
type Notifier interface {
	MatchFound(ctx context.Context, m *Match) error
	MatchUpdated(ctx context.Context, m *Match) error
	MatchCancelled(ctx context.Context, m *Match) error
}
