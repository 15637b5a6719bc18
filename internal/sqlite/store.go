package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/campuskeep/lostfound/internal/domain"
)

// Store implements domain.PostingRepository and domain.MatchRepository on a
// shared SQLite handle.
type Store struct {
	db *sql.DB
}

// NewStore wraps an open database handle. The caller owns the handle's
// lifetime.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// liveStatusClause matches postings that are approved and still open to
// matching.
const liveStatusClause = `approved = 1 AND status IN ('PENDING_CLAIM', 'CLAIMED')`

const postingColumns = `id, title, description, category, post_type, status,
	location, detailed_location, lost_found_time, created_at, approved,
	owner_id, total_weight`

// CreatePosting inserts a new posting and assigns its ID.
func (s *Store) CreatePosting(ctx context.Context, p *domain.Posting) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO postings (title, description, category, post_type, status,
			location, detailed_location, lost_found_time, created_at, approved,
			owner_id, total_weight)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.Title, p.Description, string(p.Category), string(p.PostType), string(p.Status),
		string(p.Location), string(p.DetailedLocation), p.LostFoundTime.UTC(), p.CreatedAt.UTC(),
		p.Approved, p.OwnerID, p.TotalWeight,
	)
	if err != nil {
		return fmt.Errorf("insert posting: %w", err)
	}
	p.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("posting insert id: %w", err)
	}
	return nil
}

// GetPosting retrieves a posting by id.
func (s *Store) GetPosting(ctx context.Context, id int64) (*domain.Posting, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+postingColumns+` FROM postings WHERE id = ?`, id)
	p, err := scanPosting(row)
	if err == sql.ErrNoRows {
		return nil, domain.ErrPostingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get posting %d: %w", id, err)
	}
	return p, nil
}

// UpdatePosting persists all mutable posting fields.
func (s *Store) UpdatePosting(ctx context.Context, p *domain.Posting) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE postings
		SET title = ?, description = ?, category = ?, status = ?, location = ?,
			detailed_location = ?, lost_found_time = ?, approved = ?, total_weight = ?
		WHERE id = ?`,
		p.Title, p.Description, string(p.Category), string(p.Status), string(p.Location),
		string(p.DetailedLocation), p.LostFoundTime.UTC(), p.Approved, p.TotalWeight, p.ID,
	)
	if err != nil {
		return fmt.Errorf("update posting %d: %w", p.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update posting %d: %w", p.ID, err)
	}
	if affected == 0 {
		return domain.ErrPostingNotFound
	}
	return nil
}

// DeletePosting removes a posting by id.
func (s *Store) DeletePosting(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM postings WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete posting %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete posting %d: %w", id, err)
	}
	if affected == 0 {
		return domain.ErrPostingNotFound
	}
	return nil
}

// FindAutoCandidates returns live postings matching the automatic-mode
// pre-filter: opposite type, exact weight, exact primary location.
func (s *Store) FindAutoCandidates(ctx context.Context, postType domain.PostType, totalWeight int, location domain.Location, since time.Time) ([]domain.Posting, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+postingColumns+`
		FROM postings
		WHERE post_type = ? AND `+liveStatusClause+`
			AND total_weight = ? AND location = ? AND created_at >= ?
		ORDER BY created_at DESC`,
		string(postType), totalWeight, string(location), since.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("query auto candidates: %w", err)
	}
	return collectPostings(rows)
}

// FindCandidatesSince returns all live postings of the given type created or
// occurring on or after since.
func (s *Store) FindCandidatesSince(ctx context.Context, postType domain.PostType, since time.Time) ([]domain.Posting, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+postingColumns+`
		FROM postings
		WHERE post_type = ? AND `+liveStatusClause+`
			AND (created_at >= ? OR lost_found_time >= ?)
		ORDER BY created_at DESC`,
		string(postType), since.UTC(), since.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("query candidates: %w", err)
	}
	return collectPostings(rows)
}

// FindByOwner returns the user's postings, newest first.
func (s *Store) FindByOwner(ctx context.Context, ownerID int64) ([]domain.Posting, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+postingColumns+`
		FROM postings
		WHERE owner_id = ?
		ORDER BY created_at DESC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("query postings by owner: %w", err)
	}
	return collectPostings(rows)
}

const matchColumns = `m.id, m.lost_posting_id, m.found_posting_id,
	m.match_weight, m.matched_at, m.status, m.completed_at,
	lp.owner_id, fp.owner_id, lp.title, fp.title`

const matchJoins = `
	FROM matches m
	JOIN postings lp ON lp.id = m.lost_posting_id
	JOIN postings fp ON fp.id = m.found_posting_id`

// CreateMatch inserts a new ACTIVE match. The partial unique index on
// (lost, found) where status = 'ACTIVE' makes this an atomic
// check-and-insert; a conflict surfaces as domain.ErrDuplicateMatch.
func (s *Store) CreateMatch(ctx context.Context, m *domain.Match) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO matches (lost_posting_id, found_posting_id, match_weight, matched_at, status)
		VALUES (?, ?, ?, ?, ?)`,
		m.LostPostingID, m.FoundPostingID, m.MatchWeight, m.MatchedAt.UTC(), string(m.Status),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return domain.ErrDuplicateMatch
		}
		return fmt.Errorf("insert match: %w", err)
	}
	m.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("match insert id: %w", err)
	}
	return nil
}

// GetMatch retrieves a match by id with its joined owner and title fields.
func (s *Store) GetMatch(ctx context.Context, id int64) (*domain.Match, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+matchColumns+matchJoins+` WHERE m.id = ?`, id)
	m, err := scanMatch(row)
	if err == sql.ErrNoRows {
		return nil, domain.ErrMatchNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get match %d: %w", id, err)
	}
	return m, nil
}

// UpdateMatch persists the match's status and completion time.
func (s *Store) UpdateMatch(ctx context.Context, m *domain.Match) error {
	var completedAt any
	if m.CompletedAt != nil {
		completedAt = m.CompletedAt.UTC()
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE matches SET status = ?, completed_at = ? WHERE id = ?`,
		string(m.Status), completedAt, m.ID,
	)
	if err != nil {
		return fmt.Errorf("update match %d: %w", m.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update match %d: %w", m.ID, err)
	}
	if affected == 0 {
		return domain.ErrMatchNotFound
	}
	return nil
}

// ActiveMatchBetween returns the ACTIVE match pairing the two postings in
// either orientation, or nil when none exists.
func (s *Store) ActiveMatchBetween(ctx context.Context, postingA, postingB int64) (*domain.Match, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+matchColumns+matchJoins+`
		WHERE m.status = 'ACTIVE'
			AND ((m.lost_posting_id = ? AND m.found_posting_id = ?)
			  OR (m.lost_posting_id = ? AND m.found_posting_id = ?))`,
		postingA, postingB, postingB, postingA,
	)
	m, err := scanMatch(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query active match between %d and %d: %w", postingA, postingB, err)
	}
	return m, nil
}

// FindMatchesForPosting returns all matches referencing the posting on either
// side, newest first.
func (s *Store) FindMatchesForPosting(ctx context.Context, postingID int64) ([]domain.Match, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+matchColumns+matchJoins+`
		WHERE m.lost_posting_id = ? OR m.found_posting_id = ?
		ORDER BY m.matched_at DESC, m.id DESC`,
		postingID, postingID,
	)
	if err != nil {
		return nil, fmt.Errorf("query matches for posting %d: %w", postingID, err)
	}
	return collectMatches(rows)
}

// FindActiveByUser returns ACTIVE matches referencing any posting owned by
// the user.
func (s *Store) FindActiveByUser(ctx context.Context, userID int64) ([]domain.Match, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+matchColumns+matchJoins+`
		WHERE m.status = 'ACTIVE' AND (lp.owner_id = ? OR fp.owner_id = ?)
		ORDER BY m.matched_at DESC, m.id DESC`,
		userID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query matches for user %d: %w", userID, err)
	}
	return collectMatches(rows)
}

// FindActiveOlderThan returns ACTIVE matches created before the cutoff.
func (s *Store) FindActiveOlderThan(ctx context.Context, cutoff time.Time) ([]domain.Match, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+matchColumns+matchJoins+`
		WHERE m.status = 'ACTIVE' AND m.matched_at < ?
		ORDER BY m.matched_at ASC`,
		cutoff.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("query stale matches: %w", err)
	}
	return collectMatches(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPosting(row rowScanner) (*domain.Posting, error) {
	var p domain.Posting
	var category, postType, status, location, detailedLocation string
	err := row.Scan(
		&p.ID, &p.Title, &p.Description, &category, &postType, &status,
		&location, &detailedLocation, &p.LostFoundTime, &p.CreatedAt,
		&p.Approved, &p.OwnerID, &p.TotalWeight,
	)
	if err != nil {
		return nil, err
	}
	p.Category = domain.Category(category)
	p.PostType = domain.PostType(postType)
	p.Status = domain.PostingStatus(status)
	p.Location = domain.Location(location)
	p.DetailedLocation = domain.DetailedLocation(detailedLocation)
	return &p, nil
}

func collectPostings(rows *sql.Rows) ([]domain.Posting, error) {
	defer rows.Close()
	var postings []domain.Posting
	for rows.Next() {
		p, err := scanPosting(rows)
		if err != nil {
			return nil, fmt.Errorf("scan posting: %w", err)
		}
		postings = append(postings, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate postings: %w", err)
	}
	return postings, nil
}

func scanMatch(row rowScanner) (*domain.Match, error) {
	var m domain.Match
	var status string
	var completedAt sql.NullTime
	err := row.Scan(
		&m.ID, &m.LostPostingID, &m.FoundPostingID,
		&m.MatchWeight, &m.MatchedAt, &status, &completedAt,
		&m.LostOwnerID, &m.FoundOwnerID, &m.LostTitle, &m.FoundTitle,
	)
	if err != nil {
		return nil, err
	}
	m.Status = domain.MatchStatus(status)
	if completedAt.Valid {
		t := completedAt.Time
		m.CompletedAt = &t
	}
	return &m, nil
}

func collectMatches(rows *sql.Rows) ([]domain.Match, error) {
	defer rows.Close()
	var matches []domain.Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		matches = append(matches, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate matches: %w", err)
	}
	return matches, nil
}
