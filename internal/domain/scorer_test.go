package domain

import (
	"reflect"
	"testing"
	"time"
)

func pairAt(t1, t2 time.Time) (*Posting, *Posting) {
	lost := &Posting{
		ID:               1,
		Title:            "Lost black wallet",
		Description:      "black leather wallet with cards",
		Category:         CategoryWallet,
		PostType:         PostLost,
		Location:         LocationLibrary,
		DetailedLocation: "LIBRARY_READING_ROOM",
		LostFoundTime:    t1,
		TotalWeight:      34,
	}
	found := &Posting{
		ID:               2,
		Title:            "Found black wallet",
		Description:      "black leather wallet with cards",
		Category:         CategoryWallet,
		PostType:         PostFound,
		Location:         LocationLibrary,
		DetailedLocation: "LIBRARY_READING_ROOM",
		LostFoundTime:    t2,
		TotalWeight:      34,
	}
	return lost, found
}

func TestAutoProfilePerfectPair(t *testing.T) {
	now := time.Now()
	lost, found := pairAt(now, now)

	score, reasons, ok := AutoProfile(0.7).Score(lost, found)
	if !ok {
		t.Fatal("expected perfect pair to clear the threshold")
	}
	if score != 1.0 {
		t.Errorf("expected score 1.0, got %v", score)
	}
	want := []string{ReasonEqualWeight, ReasonLocationMatch, ReasonDetailedLocation, ReasonCategoryMatch}
	if !reflect.DeepEqual(reasons, want) {
		t.Errorf("expected reasons %v, got %v", want, reasons)
	}
}

func TestAutoProfileThresholdBoundary(t *testing.T) {
	now := time.Now()
	lost, found := pairAt(now, now)

	// Weight and location only: 0.40 + 0.30 = 0.70, exactly at threshold.
	lost.DetailedLocation = ""
	found.DetailedLocation = ""
	found.Category = CategoryUmbrella

	score, _, ok := AutoProfile(0.7).Score(lost, found)
	if score != 0.70 {
		t.Fatalf("expected score 0.70, got %v", score)
	}
	if !ok {
		t.Error("score equal to the threshold must pass")
	}

	// Location only: 0.30, below threshold.
	found.TotalWeight = 20
	score, _, ok = AutoProfile(0.7).Score(lost, found)
	if ok {
		t.Errorf("score %v must not pass the 0.7 threshold", score)
	}
}

func TestSuggestProfileCategoryGate(t *testing.T) {
	now := time.Now()
	lost, found := pairAt(now, now)
	found.Category = CategoryUmbrella

	score, reasons, ok := SuggestProfile(0.30).Score(lost, found)
	if ok || score != 0 || reasons != nil {
		t.Errorf("different categories must be rejected outright, got score %v ok %v reasons %v", score, ok, reasons)
	}
}

func TestSuggestProfileCategoryOnlyPairClearsFloor(t *testing.T) {
	lost, found := pairAt(time.Now(), time.Now().Add(-30*24*time.Hour))
	lost.Title, lost.Description = "aaa", ""
	found.Title, found.Description = "bbb", ""
	lost.DetailedLocation = ""
	found.DetailedLocation = ""
	found.Location = LocationGym

	score, reasons, ok := SuggestProfile(0.30).Score(lost, found)
	if !ok {
		t.Fatal("category-only pair must clear the 0.30 floor")
	}
	if score != 0.30 {
		t.Errorf("expected score 0.30, got %v", score)
	}
	if !reflect.DeepEqual(reasons, []string{ReasonCategoryMatch}) {
		t.Errorf("expected category reason only, got %v", reasons)
	}
}

func TestSuggestProfileTimeBrackets(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		delta  time.Duration
		reason string
		credit float64
	}{
		{2 * 24 * time.Hour, ReasonTimeVeryClose, 0.15},
		{3 * 24 * time.Hour, ReasonTimeVeryClose, 0.15},
		{5 * 24 * time.Hour, ReasonTimeClose, 0.08},
		{7 * 24 * time.Hour, ReasonTimeClose, 0.08},
		{9 * 24 * time.Hour, "", 0},
	}
	for _, tt := range tests {
		lost, found := pairAt(base, base.Add(-tt.delta))
		lost.Title, lost.Description = "aaa", ""
		found.Title, found.Description = "bbb", ""
		lost.DetailedLocation = ""
		found.DetailedLocation = ""
		found.Location = LocationGym

		score, reasons, _ := SuggestProfile(0.30).Score(lost, found)
		want := round2(0.30 + tt.credit)
		if score != want {
			t.Errorf("delta %v: expected score %v, got %v", tt.delta, want, score)
		}
		if tt.reason != "" && !contains(reasons, tt.reason) {
			t.Errorf("delta %v: expected reason %q in %v", tt.delta, tt.reason, reasons)
		}
		if tt.reason == "" && (contains(reasons, ReasonTimeVeryClose) || contains(reasons, ReasonTimeClose)) {
			t.Errorf("delta %v: unexpected time reason in %v", tt.delta, reasons)
		}
	}
}

func TestSuggestProfileTextCredit(t *testing.T) {
	now := time.Now()
	lost, found := pairAt(now, now)
	found.Title = lost.Title

	// Identical text: jaccard 1.0, credit capped at 0.10.
	score, reasons, _ := SuggestProfile(0.30).Score(lost, found)
	// category 0.30 + location 0.25 + detailed 0.20 + time 0.15 + text 0.10
	if score != 1.0 {
		t.Errorf("expected full suggestion score 1.0, got %v", score)
	}
	if !contains(reasons, ReasonTextHighlySimilar) {
		t.Errorf("expected %q in %v", ReasonTextHighlySimilar, reasons)
	}
}

func TestTextSimilarity(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"black leather wallet", "black leather wallet", 1.0},
		{"black wallet", "red umbrella", 0.0},
		{"", "anything at all", 0.0},
		{"black wallet cards", "black wallet keys", 0.5},
	}
	for _, tt := range tests {
		if got := TextSimilarity(tt.a, tt.b); got != tt.want {
			t.Errorf("TextSimilarity(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestTextSimilarityDropsShortTokens(t *testing.T) {
	// Single-rune tokens are dropped, so only "wallet" remains on each side.
	if got := TextSimilarity("a wallet", "b wallet"); got != 1.0 {
		t.Errorf("expected 1.0 after dropping short tokens, got %v", got)
	}
}

func TestScoreIsRoundedToTwoDecimals(t *testing.T) {
	now := time.Now()
	lost, found := pairAt(now, now)
	lost.Title, lost.Description = "black wallet cards", ""
	found.Title, found.Description = "black wallet keys", ""
	lost.DetailedLocation = ""
	found.DetailedLocation = ""
	found.Location = LocationGym

	// category 0.30 + time 0.15 + jaccard 0.5 * 0.10 = 0.50 exactly after
	// rounding.
	score, _, _ := SuggestProfile(0.30).Score(lost, found)
	if score != 0.50 {
		t.Errorf("expected rounded score 0.50, got %v", score)
	}
	if score*100 != float64(int(score*100)) {
		t.Errorf("score %v has more than two decimals", score)
	}
}

func contains(tags []string, want string) bool {
	for _, tag := range tags {
		if tag == want {
			return true
		}
	}
	return false
}
