package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"
)

const (
	defaultSuggestWindowDays = 30
	defaultSuggestLimit      = 20
)

// MatcherConfig carries the tunables of the matching core. The thresholds are
// tuning choices, not invariants, so they are configuration rather than
// constants.
type MatcherConfig struct {
	// AutoThreshold is the minimum automatic-mode score at which a match
	// record is created.
	AutoThreshold float64

	// SuggestFloor is the minimum publishable suggestion-mode score.
	SuggestFloor float64

	// SuggestWindowDays is the default lookback window for suggestion-mode
	// candidate discovery.
	SuggestWindowDays int
}

// Service is the matching core: weight computation at the write boundary,
// candidate discovery, scoring, match-record lifecycle, and event fan-out.
// It is the single write path that creates match records.
type Service struct {
	postings PostingRepository
	matches  MatchRepository
	registry *Registry
	auto     Profile
	suggest  Profile
	window   int
	logger   *slog.Logger

	// now is swappable for tests.
	now func() time.Time
}

// NewService creates the matching service.
func NewService(postings PostingRepository, matches MatchRepository, registry *Registry, cfg MatcherConfig, logger *slog.Logger) (*Service, error) {
	if cfg.AutoThreshold <= 0 || cfg.AutoThreshold > 1 {
		return nil, fmt.Errorf("auto threshold must be in (0,1], got %v", cfg.AutoThreshold)
	}
	if cfg.SuggestFloor <= 0 || cfg.SuggestFloor > 1 {
		return nil, fmt.Errorf("suggestion floor must be in (0,1], got %v", cfg.SuggestFloor)
	}
	window := cfg.SuggestWindowDays
	if window <= 0 {
		window = defaultSuggestWindowDays
	}
	return &Service{
		postings: postings,
		matches:  matches,
		registry: registry,
		auto:     AutoProfile(cfg.AutoThreshold),
		suggest:  SuggestProfile(cfg.SuggestFloor),
		window:   window,
		logger:   logger,
		now:      time.Now,
	}, nil
}

// CreatePosting stores a new posting awaiting approval. The derived total
// weight is computed here, at the write boundary.
func (s *Service) CreatePosting(ctx context.Context, p *Posting) error {
	if p.Title == "" {
		return &ValidationError{Reason: "title is required"}
	}
	if p.PostType != PostLost && p.PostType != PostFound {
		return &ValidationError{Reason: "post type must be LOST or FOUND"}
	}
	now := s.now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	if p.LostFoundTime.IsZero() {
		p.LostFoundTime = now
	}
	p.Status = PostingPendingApproval
	p.Approved = false
	p.TotalWeight = ComputeWeight(p, now)

	if err := s.postings.CreatePosting(ctx, p); err != nil {
		return fmt.Errorf("create posting: %w", err)
	}
	s.logger.Info("posting created", "posting_id", p.ID, "post_type", p.PostType, "category", p.Category, "total_weight", p.TotalWeight)
	return nil
}

// UpdatePosting persists edits to a posting, recomputing the derived weight
// so it never drifts from the posting's location, category, or age.
func (s *Service) UpdatePosting(ctx context.Context, p *Posting) error {
	p.TotalWeight = ComputeWeight(p, s.now())
	if err := s.postings.UpdatePosting(ctx, p); err != nil {
		return fmt.Errorf("update posting: %w", err)
	}
	return nil
}

// RejectPosting removes a posting that failed moderation. Only postings still
// awaiting approval can be rejected; anything later in the lifecycle may
// already be referenced by matches.
func (s *Service) RejectPosting(ctx context.Context, postingID int64) error {
	p, err := s.postings.GetPosting(ctx, postingID)
	if err != nil {
		return err
	}
	if p.Status != PostingPendingApproval {
		return &ValidationError{Reason: "only postings awaiting approval can be rejected"}
	}
	if err := s.postings.DeletePosting(ctx, postingID); err != nil {
		return fmt.Errorf("reject posting: %w", err)
	}
	s.logger.Info("posting rejected", "posting_id", postingID)
	return nil
}

// ApprovePosting moves a posting out of moderation and runs automatic
// matching against it. It returns the match records created or rediscovered.
func (s *Service) ApprovePosting(ctx context.Context, postingID int64) ([]*Match, error) {
	p, err := s.postings.GetPosting(ctx, postingID)
	if err != nil {
		return nil, err
	}
	if p.Status == PostingCompleted {
		return nil, &ValidationError{Reason: "posting is already completed"}
	}

	p.Approved = true
	p.Status = PostingPendingClaim
	p.TotalWeight = ComputeWeight(p, s.now())
	if err := s.postings.UpdatePosting(ctx, p); err != nil {
		return nil, fmt.Errorf("approve posting: %w", err)
	}
	s.logger.Info("posting approved", "posting_id", p.ID, "total_weight", p.TotalWeight)

	return s.FindAndCreateMatches(ctx, p)
}

// FindAndCreateMatches runs automatic-mode discovery and scoring for an
// approved posting, persisting an ACTIVE match for every candidate at or
// above the automatic threshold. It is idempotent per pair: candidates that
// already have an ACTIVE match with the posting are skipped, and a uniqueness
// conflict on insert is resolved by falling back to the existing record.
func (s *Service) FindAndCreateMatches(ctx context.Context, p *Posting) ([]*Match, error) {
	if !p.IsLive() {
		return nil, nil
	}

	since := s.now().AddDate(0, 0, -s.window)
	candidates, err := s.postings.FindAutoCandidates(ctx, p.PostType.Opposite(), p.TotalWeight, p.Location, since)
	if err != nil {
		return nil, fmt.Errorf("find auto candidates: %w", err)
	}
	s.logger.Info("automatic candidate scan", "posting_id", p.ID, "candidates", len(candidates))

	var created []*Match
	for i := range candidates {
		candidate := &candidates[i]
		if candidate.ID == p.ID {
			continue
		}

		existing, err := s.matches.ActiveMatchBetween(ctx, p.ID, candidate.ID)
		if err != nil {
			return created, fmt.Errorf("check existing match: %w", err)
		}
		if existing != nil {
			continue
		}

		score, _, ok := s.auto.Score(p, candidate)
		if !ok {
			continue
		}

		match, err := NewMatch(p, candidate, score, s.now())
		if err != nil {
			return created, err
		}
		if err := s.matches.CreateMatch(ctx, match); err != nil {
			if errors.Is(err, ErrDuplicateMatch) {
				// Lost the race against a concurrent approval of the
				// candidate; the record exists, which is all we wanted.
				if existing, lookupErr := s.matches.ActiveMatchBetween(ctx, p.ID, candidate.ID); lookupErr == nil && existing != nil {
					created = append(created, existing)
				}
				continue
			}
			return created, fmt.Errorf("create match: %w", err)
		}

		s.logger.Info("match created", "match_id", match.ID, "lost_posting_id", match.LostPostingID, "found_posting_id", match.FoundPostingID, "score", score)
		s.registry.PublishMatchFound(ctx, match)
		created = append(created, match)
	}
	return created, nil
}

// ConfirmMatch is the manual confirmation path: the user accepts a suggested
// candidate and the score they saw is persisted as a snapshot, not
// recomputed. Confirming an already-matched pair returns the existing record.
func (s *Service) ConfirmMatch(ctx context.Context, sourceID, candidateID int64, score float64) (*Match, error) {
	if score < 0 || score > 1 {
		return nil, &ValidationError{Reason: fmt.Sprintf("score must be within [0,1], got %v", score)}
	}

	source, err := s.postings.GetPosting(ctx, sourceID)
	if err != nil {
		return nil, err
	}
	candidate, err := s.postings.GetPosting(ctx, candidateID)
	if err != nil {
		return nil, err
	}
	if source.PostType == candidate.PostType {
		return nil, &ValidationError{Reason: "postings must have opposite post types"}
	}

	if existing, err := s.matches.ActiveMatchBetween(ctx, sourceID, candidateID); err != nil {
		return nil, fmt.Errorf("check existing match: %w", err)
	} else if existing != nil {
		return existing, nil
	}

	match, err := NewMatch(source, candidate, score, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.matches.CreateMatch(ctx, match); err != nil {
		if errors.Is(err, ErrDuplicateMatch) {
			existing, lookupErr := s.matches.ActiveMatchBetween(ctx, sourceID, candidateID)
			if lookupErr != nil {
				return nil, fmt.Errorf("lookup after duplicate: %w", lookupErr)
			}
			return existing, nil
		}
		return nil, fmt.Errorf("create confirmed match: %w", err)
	}

	s.logger.Info("match confirmed", "match_id", match.ID, "source_posting_id", sourceID, "candidate_posting_id", candidateID, "score", score)
	s.registry.PublishMatchFound(ctx, match)
	return match, nil
}

// SuggestMatchesForPosting produces a ranked, unpersisted candidate list for
// interactive browsing. Already-created ACTIVE matches lead the list; fresh
// candidates are scored under the suggestion profile.
func (s *Service) SuggestMatchesForPosting(ctx context.Context, p *Posting, daysWindow, maxResults int) ([]Candidate, error) {
	if daysWindow <= 0 {
		daysWindow = s.window
	}
	if maxResults <= 0 {
		maxResults = defaultSuggestLimit
	}

	matched := make(map[int64]bool)
	suggestions := []Candidate{}

	existing, err := s.matches.FindMatchesForPosting(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("find existing matches: %w", err)
	}
	for i := range existing {
		m := &existing[i]
		if !m.IsActive() {
			continue
		}
		counterpartID := m.FoundPostingID
		if p.IsFound() {
			counterpartID = m.LostPostingID
		}
		counterpart, err := s.postings.GetPosting(ctx, counterpartID)
		if err != nil {
			if errors.Is(err, ErrPostingNotFound) {
				continue
			}
			return nil, fmt.Errorf("load matched posting: %w", err)
		}
		if !counterpart.IsLive() {
			continue
		}

		reasons := []string{ReasonAutoMatch, ReasonCategoryMatch}
		if p.Location == counterpart.Location {
			reasons = append(reasons, ReasonLocationMatch)
		}
		if p.DetailedLocation != "" && p.DetailedLocation == counterpart.DetailedLocation {
			reasons = append(reasons, ReasonDetailedLocation)
		}
		matched[counterpart.ID] = true
		suggestions = append(suggestions, Candidate{
			Posting: counterpart,
			Score:   round2(m.MatchWeight),
			Reasons: reasons,
		})
	}

	since := s.now().AddDate(0, 0, -daysWindow)
	candidates, err := s.postings.FindCandidatesSince(ctx, p.PostType.Opposite(), since)
	if err != nil {
		return nil, fmt.Errorf("find candidates: %w", err)
	}
	for i := range candidates {
		candidate := &candidates[i]
		if candidate.ID == p.ID || matched[candidate.ID] {
			continue
		}
		if !candidate.IsLive() {
			continue
		}
		score, reasons, ok := s.suggest.Score(p, candidate)
		if !ok {
			continue
		}
		suggestions = append(suggestions, Candidate{
			Posting: candidate,
			Score:   score,
			Reasons: reasons,
		})
	}

	// Rank by score; equal scores break toward the more recent event time,
	// then the lower posting id, so ordering is deterministic.
	sort.SliceStable(suggestions, func(i, j int) bool {
		a, b := suggestions[i], suggestions[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if !a.Posting.LostFoundTime.Equal(b.Posting.LostFoundTime) {
			return a.Posting.LostFoundTime.After(b.Posting.LostFoundTime)
		}
		return a.Posting.ID < b.Posting.ID
	})

	if len(suggestions) > maxResults {
		suggestions = suggestions[:maxResults]
	}
	return suggestions, nil
}

// SuggestMatchesForUser groups ranked candidate lists under each of the
// user's live, approved postings.
func (s *Service) SuggestMatchesForUser(ctx context.Context, userID int64, daysWindow, limitPerItem int) ([]PostingCandidates, error) {
	mine, err := s.postings.FindByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("find user postings: %w", err)
	}

	groups := []PostingCandidates{}
	for i := range mine {
		p := &mine[i]
		if !p.Approved || p.Status == PostingCompleted {
			continue
		}
		candidates, err := s.SuggestMatchesForPosting(ctx, p, daysWindow, limitPerItem)
		if err != nil {
			return nil, err
		}
		groups = append(groups, PostingCandidates{Posting: p, Candidates: candidates})
	}
	return groups, nil
}

// CompletePosting marks a posting resolved and cascades the completion to
// every ACTIVE match that references it, so no match stays ACTIVE against a
// COMPLETED posting. Completing an already-completed posting is a no-op.
func (s *Service) CompletePosting(ctx context.Context, postingID int64) error {
	p, err := s.postings.GetPosting(ctx, postingID)
	if err != nil {
		return err
	}
	if p.Status == PostingCompleted {
		return nil
	}

	p.Status = PostingCompleted
	if err := s.postings.UpdatePosting(ctx, p); err != nil {
		return fmt.Errorf("complete posting: %w", err)
	}

	matches, err := s.matches.FindMatchesForPosting(ctx, postingID)
	if err != nil {
		return fmt.Errorf("find matches for posting: %w", err)
	}
	now := s.now()
	for i := range matches {
		m := &matches[i]
		if !m.IsActive() {
			continue
		}
		if err := m.Complete(now); err != nil {
			return err
		}
		if err := s.matches.UpdateMatch(ctx, m); err != nil {
			return fmt.Errorf("complete match %d: %w", m.ID, err)
		}
		s.registry.PublishMatchUpdated(ctx, m)
	}
	s.logger.Info("posting completed", "posting_id", postingID)
	return nil
}

// CancelMatch is the moderation hook transitioning a match ACTIVE ->
// CANCELLED. Attempts on a terminal match fail with ErrTerminalState.
func (s *Service) CancelMatch(ctx context.Context, matchID int64) (*Match, error) {
	m, err := s.matches.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if err := m.Cancel(); err != nil {
		return nil, err
	}
	if err := s.matches.UpdateMatch(ctx, m); err != nil {
		return nil, fmt.Errorf("cancel match: %w", err)
	}
	s.logger.Info("match cancelled", "match_id", matchID)
	s.registry.PublishMatchCancelled(ctx, m)
	return m, nil
}

// ExpireStaleMatches transitions ACTIVE matches older than maxAge to EXPIRED
// and returns how many were expired.
func (s *Service) ExpireStaleMatches(ctx context.Context, maxAge time.Duration) (int, error) {
	cutoff := s.now().Add(-maxAge)
	stale, err := s.matches.FindActiveOlderThan(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("find stale matches: %w", err)
	}

	expired := 0
	for i := range stale {
		m := &stale[i]
		if err := m.Expire(); err != nil {
			return expired, err
		}
		if err := s.matches.UpdateMatch(ctx, m); err != nil {
			return expired, fmt.Errorf("expire match %d: %w", m.ID, err)
		}
		s.registry.PublishMatchUpdated(ctx, m)
		expired++
	}
	return expired, nil
}

// StartExpiryJob runs the expiry sweep immediately and then at the given
// interval until ctx is cancelled.
func (s *Service) StartExpiryJob(ctx context.Context, interval, maxAge time.Duration) {
	s.runExpiry(ctx, maxAge)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runExpiry(ctx, maxAge)
		}
	}
}

func (s *Service) runExpiry(ctx context.Context, maxAge time.Duration) {
	expired, err := s.ExpireStaleMatches(ctx, maxAge)
	if err != nil {
		s.logger.Error("match expiry sweep failed", "error", err)
	} else if expired > 0 {
		s.logger.Info("match expiry sweep complete", "expired", expired)
	}
}

// GetPosting resolves a posting for the surrounding application code.
func (s *Service) GetPosting(ctx context.Context, id int64) (*Posting, error) {
	return s.postings.GetPosting(ctx, id)
}

// MatchesForUser returns the user's ACTIVE matches.
func (s *Service) MatchesForUser(ctx context.Context, userID int64) ([]Match, error) {
	return s.matches.FindActiveByUser(ctx, userID)
}
