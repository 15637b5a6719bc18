package domain

import (
	"context"
	"testing"
	"time"
)

// fakeStore is an in-memory PostingRepository and MatchRepository mirroring
// the persistence semantics the matcher depends on, including the one-ACTIVE-
// match-per-pair rule on insert.
type fakeStore struct {
	postings map[int64]*Posting
	matches  map[int64]*Match
	nextPost int64
	nextMat  int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		postings: make(map[int64]*Posting),
		matches:  make(map[int64]*Match),
	}
}

func (f *fakeStore) CreatePosting(_ context.Context, p *Posting) error {
	f.nextPost++
	p.ID = f.nextPost
	cp := *p
	f.postings[p.ID] = &cp
	return nil
}

func (f *fakeStore) GetPosting(_ context.Context, id int64) (*Posting, error) {
	p, ok := f.postings[id]
	if !ok {
		return nil, ErrPostingNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeStore) UpdatePosting(_ context.Context, p *Posting) error {
	if _, ok := f.postings[p.ID]; !ok {
		return ErrPostingNotFound
	}
	cp := *p
	f.postings[p.ID] = &cp
	return nil
}

func (f *fakeStore) DeletePosting(_ context.Context, id int64) error {
	if _, ok := f.postings[id]; !ok {
		return ErrPostingNotFound
	}
	delete(f.postings, id)
	return nil
}

func (f *fakeStore) FindAutoCandidates(_ context.Context, postType PostType, totalWeight int, location Location, since time.Time) ([]Posting, error) {
	var out []Posting
	for _, p := range f.postings {
		if p.PostType == postType && p.IsLive() &&
			p.TotalWeight == totalWeight && p.Location == location &&
			!p.CreatedAt.Before(since) {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeStore) FindCandidatesSince(_ context.Context, postType PostType, since time.Time) ([]Posting, error) {
	var out []Posting
	for _, p := range f.postings {
		if p.PostType == postType && p.IsLive() &&
			(!p.CreatedAt.Before(since) || !p.LostFoundTime.Before(since)) {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeStore) FindByOwner(_ context.Context, ownerID int64) ([]Posting, error) {
	var out []Posting
	for _, p := range f.postings {
		if p.OwnerID == ownerID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeStore) CreateMatch(_ context.Context, m *Match) error {
	for _, existing := range f.matches {
		if existing.Status == MatchActive &&
			existing.LostPostingID == m.LostPostingID &&
			existing.FoundPostingID == m.FoundPostingID {
			return ErrDuplicateMatch
		}
	}
	f.nextMat++
	m.ID = f.nextMat
	cp := *m
	f.matches[m.ID] = &cp
	return nil
}

func (f *fakeStore) GetMatch(_ context.Context, id int64) (*Match, error) {
	m, ok := f.matches[id]
	if !ok {
		return nil, ErrMatchNotFound
	}
	cp := *m
	return &cp, nil
}

func (f *fakeStore) UpdateMatch(_ context.Context, m *Match) error {
	if _, ok := f.matches[m.ID]; !ok {
		return ErrMatchNotFound
	}
	cp := *m
	f.matches[m.ID] = &cp
	return nil
}

func (f *fakeStore) ActiveMatchBetween(_ context.Context, a, b int64) (*Match, error) {
	for _, m := range f.matches {
		if m.Status != MatchActive {
			continue
		}
		if (m.LostPostingID == a && m.FoundPostingID == b) ||
			(m.LostPostingID == b && m.FoundPostingID == a) {
			cp := *m
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) FindMatchesForPosting(_ context.Context, postingID int64) ([]Match, error) {
	var out []Match
	for _, m := range f.matches {
		if m.InvolvesPosting(postingID) {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (f *fakeStore) FindActiveByUser(_ context.Context, userID int64) ([]Match, error) {
	var out []Match
	for _, m := range f.matches {
		if m.Status == MatchActive && m.InvolvesUser(userID) {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (f *fakeStore) FindActiveOlderThan(_ context.Context, cutoff time.Time) ([]Match, error) {
	var out []Match
	for _, m := range f.matches {
		if m.Status == MatchActive && m.MatchedAt.Before(cutoff) {
			out = append(out, *m)
		}
	}
	return out, nil
}

// countingObserver counts deliveries per event type.
type countingObserver struct {
	found, updated, cancelled int
}

func (o *countingObserver) OnMatchFound(context.Context, *Match) error {
	o.found++
	return nil
}

func (o *countingObserver) OnMatchUpdated(context.Context, *Match) error {
	o.updated++
	return nil
}

func (o *countingObserver) OnMatchCancelled(context.Context, *Match) error {
	o.cancelled++
	return nil
}

func newTestService(t *testing.T, store *fakeStore) (*Service, *countingObserver) {
	t.Helper()
	registry := NewRegistry(discardLogger())
	observer := &countingObserver{}
	registry.Subscribe(observer)
	svc, err := NewService(store, store, registry, MatcherConfig{
		AutoThreshold: 0.7,
		SuggestFloor:  0.30,
	}, discardLogger())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc, observer
}

func seedPair(t *testing.T, svc *Service, store *fakeStore) (*Posting, *Posting) {
	t.Helper()
	ctx := context.Background()
	lost := &Posting{
		Title:            "Lost black wallet",
		Description:      "black leather wallet",
		Category:         CategoryWallet,
		PostType:         PostLost,
		Location:         LocationLibrary,
		DetailedLocation: "LIBRARY_READING_ROOM",
		OwnerID:          1,
	}
	found := &Posting{
		Title:            "Found black wallet",
		Description:      "black leather wallet",
		Category:         CategoryWallet,
		PostType:         PostFound,
		Location:         LocationLibrary,
		DetailedLocation: "LIBRARY_READING_ROOM",
		OwnerID:          2,
	}
	for _, p := range []*Posting{lost, found} {
		if err := svc.CreatePosting(ctx, p); err != nil {
			t.Fatalf("CreatePosting: %v", err)
		}
	}
	return lost, found
}

func TestCreatePostingValidatesAndComputesWeight(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestService(t, store)
	ctx := context.Background()

	if err := svc.CreatePosting(ctx, &Posting{PostType: PostLost}); !IsValidation(err) {
		t.Errorf("missing title: expected validation error, got %v", err)
	}
	if err := svc.CreatePosting(ctx, &Posting{Title: "x", PostType: "MAYBE"}); !IsValidation(err) {
		t.Errorf("bad post type: expected validation error, got %v", err)
	}

	p := &Posting{Title: "Lost wallet", Category: CategoryWallet, PostType: PostLost, Location: LocationLibrary}
	if err := svc.CreatePosting(ctx, p); err != nil {
		t.Fatalf("CreatePosting: %v", err)
	}
	if p.Status != PostingPendingApproval || p.Approved {
		t.Errorf("new posting must await approval, got %s approved=%v", p.Status, p.Approved)
	}
	// library 10 + wallet 10 + fresh 10
	if p.TotalWeight != 30 {
		t.Errorf("expected total weight 30, got %d", p.TotalWeight)
	}
}

func TestRejectPosting(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestService(t, store)
	ctx := context.Background()

	lost, found := seedPair(t, svc, store)

	if err := svc.RejectPosting(ctx, lost.ID); err != nil {
		t.Fatalf("RejectPosting: %v", err)
	}
	if _, err := store.GetPosting(ctx, lost.ID); err != ErrPostingNotFound {
		t.Errorf("rejected posting must be gone, got %v", err)
	}

	// Approved postings cannot be rejected.
	approveQuietly(t, svc, found.ID)
	if err := svc.RejectPosting(ctx, found.ID); !IsValidation(err) {
		t.Errorf("expected validation error for approved posting, got %v", err)
	}
}

func TestApprovePostingCreatesAutomaticMatch(t *testing.T) {
	store := newFakeStore()
	svc, observer := newTestService(t, store)
	ctx := context.Background()

	lost, found := seedPair(t, svc, store)
	if _, err := svc.ApprovePosting(ctx, lost.ID); err != nil {
		t.Fatalf("approve lost: %v", err)
	}
	matches, err := svc.ApprovePosting(ctx, found.ID)
	if err != nil {
		t.Fatalf("approve found: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	m := matches[0]
	if m.LostPostingID != lost.ID || m.FoundPostingID != found.ID {
		t.Errorf("match pairs wrong postings: %+v", m)
	}
	if m.MatchWeight != 1.0 {
		t.Errorf("expected score 1.0, got %v", m.MatchWeight)
	}
	if observer.found != 1 {
		t.Errorf("expected exactly 1 found event, got %d", observer.found)
	}
}

func TestFindAndCreateMatchesIsIdempotent(t *testing.T) {
	store := newFakeStore()
	svc, observer := newTestService(t, store)
	ctx := context.Background()

	lost, found := seedPair(t, svc, store)
	if _, err := svc.ApprovePosting(ctx, lost.ID); err != nil {
		t.Fatalf("approve lost: %v", err)
	}
	if _, err := svc.ApprovePosting(ctx, found.ID); err != nil {
		t.Fatalf("approve found: %v", err)
	}

	p, _ := store.GetPosting(ctx, found.ID)
	again, err := svc.FindAndCreateMatches(ctx, p)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if len(again) != 0 {
		t.Errorf("second run created %d matches, want 0", len(again))
	}
	if len(store.matches) != 1 {
		t.Errorf("expected 1 stored match, got %d", len(store.matches))
	}
	if observer.found != 1 {
		t.Errorf("expected exactly 1 found event, got %d", observer.found)
	}
}

func TestFindAndCreateMatchesSkipsUnapproved(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestService(t, store)
	ctx := context.Background()

	lost, _ := seedPair(t, svc, store)
	p, _ := store.GetPosting(ctx, lost.ID)
	matches, err := svc.FindAndCreateMatches(ctx, p)
	if err != nil {
		t.Fatalf("FindAndCreateMatches: %v", err)
	}
	if matches != nil {
		t.Errorf("unapproved posting must not match, got %v", matches)
	}
}

func TestConfirmMatchPersistsSnapshotScore(t *testing.T) {
	store := newFakeStore()
	svc, observer := newTestService(t, store)
	ctx := context.Background()

	lost, found := seedPair(t, svc, store)
	approveQuietly(t, svc, lost.ID, found.ID)

	// Cancel the automatic match so confirmation creates a fresh record.
	for id := range store.matches {
		if _, err := svc.CancelMatch(ctx, id); err != nil {
			t.Fatalf("cancel: %v", err)
		}
	}

	m, err := svc.ConfirmMatch(ctx, lost.ID, found.ID, 0.55)
	if err != nil {
		t.Fatalf("ConfirmMatch: %v", err)
	}
	if m.MatchWeight != 0.55 {
		t.Errorf("expected snapshotted score 0.55, got %v", m.MatchWeight)
	}

	// Confirming again returns the same record without a new event.
	foundEvents := observer.found
	m2, err := svc.ConfirmMatch(ctx, found.ID, lost.ID, 0.99)
	if err != nil {
		t.Fatalf("second ConfirmMatch: %v", err)
	}
	if m2.ID != m.ID {
		t.Errorf("expected existing match %d, got %d", m.ID, m2.ID)
	}
	if m2.MatchWeight != 0.55 {
		t.Errorf("existing score must not be overwritten, got %v", m2.MatchWeight)
	}
	if observer.found != foundEvents {
		t.Errorf("re-confirmation must not publish a new event")
	}
}

func TestConfirmMatchValidation(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestService(t, store)
	ctx := context.Background()

	lost, found := seedPair(t, svc, store)

	if _, err := svc.ConfirmMatch(ctx, lost.ID, found.ID, 1.5); !IsValidation(err) {
		t.Errorf("out-of-range score: expected validation error, got %v", err)
	}
	if _, err := svc.ConfirmMatch(ctx, lost.ID, 999, 0.5); err != ErrPostingNotFound {
		t.Errorf("unknown candidate: expected ErrPostingNotFound, got %v", err)
	}

	otherLost := &Posting{Title: "Lost keys", Category: CategoryKey, PostType: PostLost, Location: LocationGym, OwnerID: 3}
	if err := svc.CreatePosting(ctx, otherLost); err != nil {
		t.Fatalf("CreatePosting: %v", err)
	}
	if _, err := svc.ConfirmMatch(ctx, lost.ID, otherLost.ID, 0.5); !IsValidation(err) {
		t.Errorf("same post types: expected validation error, got %v", err)
	}
}

func TestSuggestMatchesForPostingRanksAndFilters(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestService(t, store)
	ctx := context.Background()

	now := time.Now()
	lost := &Posting{
		Title:         "Lost umbrella",
		Category:      CategoryUmbrella,
		PostType:      PostLost,
		Location:      LocationLibrary,
		LostFoundTime: now,
		OwnerID:       1,
	}
	sameLocation := &Posting{
		Title:         "Found umbrella in library",
		Category:      CategoryUmbrella,
		PostType:      PostFound,
		Location:      LocationLibrary,
		LostFoundTime: now,
		OwnerID:       2,
	}
	otherLocation := &Posting{
		Title:         "Found umbrella at gym",
		Category:      CategoryUmbrella,
		PostType:      PostFound,
		Location:      LocationGym,
		LostFoundTime: now,
		OwnerID:       3,
	}
	wrongCategory := &Posting{
		Title:         "Found wallet",
		Category:      CategoryWallet,
		PostType:      PostFound,
		Location:      LocationLibrary,
		LostFoundTime: now,
		OwnerID:       4,
	}
	for _, p := range []*Posting{lost, sameLocation, otherLocation, wrongCategory} {
		if err := svc.CreatePosting(ctx, p); err != nil {
			t.Fatalf("CreatePosting: %v", err)
		}
		approveQuietly(t, svc, p.ID)
	}

	p, _ := store.GetPosting(ctx, lost.ID)
	suggestions, err := svc.SuggestMatchesForPosting(ctx, p, 30, 10)
	if err != nil {
		t.Fatalf("SuggestMatchesForPosting: %v", err)
	}

	if len(suggestions) != 2 {
		t.Fatalf("expected 2 suggestions, got %d", len(suggestions))
	}
	if suggestions[0].Posting.ID != sameLocation.ID {
		t.Errorf("expected same-location candidate ranked first, got posting %d", suggestions[0].Posting.ID)
	}
	if suggestions[0].Score <= suggestions[1].Score {
		t.Errorf("expected strictly descending scores, got %v then %v",
			suggestions[0].Score, suggestions[1].Score)
	}
	for _, s := range suggestions {
		if s.Posting.ID == wrongCategory.ID {
			t.Error("wrong-category candidate must be gated out")
		}
	}
}

func TestSuggestMatchesForPostingEmptyResultIsNotError(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestService(t, store)
	ctx := context.Background()

	lost := &Posting{Title: "Lost keys", Category: CategoryKey, PostType: PostLost, Location: LocationGym, OwnerID: 1}
	if err := svc.CreatePosting(ctx, lost); err != nil {
		t.Fatalf("CreatePosting: %v", err)
	}
	approveQuietly(t, svc, lost.ID)

	p, _ := store.GetPosting(ctx, lost.ID)
	suggestions, err := svc.SuggestMatchesForPosting(ctx, p, 30, 10)
	if err != nil {
		t.Fatalf("expected no error for empty candidate set, got %v", err)
	}
	if suggestions == nil || len(suggestions) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", suggestions)
	}
}

func TestCompletePostingCascadesToMatches(t *testing.T) {
	store := newFakeStore()
	svc, observer := newTestService(t, store)
	ctx := context.Background()

	lost, found := seedPair(t, svc, store)
	approveQuietly(t, svc, lost.ID, found.ID)

	if err := svc.CompletePosting(ctx, lost.ID); err != nil {
		t.Fatalf("CompletePosting: %v", err)
	}

	p, _ := store.GetPosting(ctx, lost.ID)
	if p.Status != PostingCompleted {
		t.Errorf("expected COMPLETED posting, got %s", p.Status)
	}
	for _, m := range store.matches {
		if m.Status != MatchCompleted || m.CompletedAt == nil {
			t.Errorf("match %d not completed: %s", m.ID, m.Status)
		}
	}
	if observer.updated != 1 {
		t.Errorf("expected 1 updated event, got %d", observer.updated)
	}

	// Completing again is a no-op.
	if err := svc.CompletePosting(ctx, lost.ID); err != nil {
		t.Errorf("second completion must be a no-op, got %v", err)
	}
	if observer.updated != 1 {
		t.Errorf("no-op completion published events")
	}
}

func TestCancelMatch(t *testing.T) {
	store := newFakeStore()
	svc, observer := newTestService(t, store)
	ctx := context.Background()

	lost, found := seedPair(t, svc, store)
	approveQuietly(t, svc, lost.ID, found.ID)

	var matchID int64
	for id := range store.matches {
		matchID = id
	}

	m, err := svc.CancelMatch(ctx, matchID)
	if err != nil {
		t.Fatalf("CancelMatch: %v", err)
	}
	if m.Status != MatchCancelled {
		t.Errorf("expected CANCELLED, got %s", m.Status)
	}
	if observer.cancelled != 1 {
		t.Errorf("expected 1 cancelled event, got %d", observer.cancelled)
	}

	if _, err := svc.CancelMatch(ctx, matchID); err == nil {
		t.Error("cancelling a terminal match must fail")
	}
}

func TestExpireStaleMatches(t *testing.T) {
	store := newFakeStore()
	svc, observer := newTestService(t, store)
	ctx := context.Background()

	lost, found := seedPair(t, svc, store)
	approveQuietly(t, svc, lost.ID, found.ID)

	// Backdate the match past the expiry horizon.
	for _, m := range store.matches {
		m.MatchedAt = time.Now().Add(-40 * 24 * time.Hour)
	}

	expired, err := svc.ExpireStaleMatches(ctx, 30*24*time.Hour)
	if err != nil {
		t.Fatalf("ExpireStaleMatches: %v", err)
	}
	if expired != 1 {
		t.Errorf("expected 1 expiry, got %d", expired)
	}
	for _, m := range store.matches {
		if m.Status != MatchExpired {
			t.Errorf("expected EXPIRED, got %s", m.Status)
		}
	}
	if observer.updated != 1 {
		t.Errorf("expected 1 updated event, got %d", observer.updated)
	}

	// A second sweep finds nothing.
	expired, err = svc.ExpireStaleMatches(ctx, 30*24*time.Hour)
	if err != nil || expired != 0 {
		t.Errorf("second sweep: expected 0 expiries, got %d (%v)", expired, err)
	}
}

func approveQuietly(t *testing.T, svc *Service, ids ...int64) {
	t.Helper()
	for _, id := range ids {
		if _, err := svc.ApprovePosting(context.Background(), id); err != nil {
			t.Fatalf("ApprovePosting %d: %v", id, err)
		}
	}
}
