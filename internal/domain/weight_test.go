package domain

import (
	"testing"
	"time"
)

func TestComputeWeightSumsFactors(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	p := &Posting{
		Category:         CategoryWallet,
		Location:         LocationLibrary,
		DetailedLocation: "LIBRARY_READING_ROOM",
		CreatedAt:        now.Add(-2 * time.Hour),
	}

	// library 10 + reading room 4 + wallet 10 + fresh 10
	if got := ComputeWeight(p, now); got != 34 {
		t.Errorf("expected weight 34, got %d", got)
	}
}

func TestComputeWeightDeterministic(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	p := &Posting{
		Category:         CategoryMobilePhone,
		Location:         LocationGym,
		DetailedLocation: "GYM_EQUIPMENT_ROOM",
		CreatedAt:        now.Add(-5 * 24 * time.Hour),
	}

	first := ComputeWeight(p, now)
	for i := 0; i < 10; i++ {
		if got := ComputeWeight(p, now); got != first {
			t.Fatalf("weight changed between calls: %d then %d", first, got)
		}
	}
}

func TestFreshnessWeightBrackets(t *testing.T) {
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		age  time.Duration
		want int
	}{
		{1 * time.Hour, 10},
		{24 * time.Hour, 10},
		{24*time.Hour + time.Second, 8},
		{72 * time.Hour, 8},
		{73 * time.Hour, 5},
		{168 * time.Hour, 5},
		{169 * time.Hour, 3},
		{336 * time.Hour, 3},
		{337 * time.Hour, 1},
		{90 * 24 * time.Hour, 1},
	}
	for _, tt := range tests {
		if got := freshnessWeight(now.Add(-tt.age), now); got != tt.want {
			t.Errorf("age %v: expected freshness %d, got %d", tt.age, tt.want, got)
		}
	}
}

func TestUnknownValuesGetFloorWeights(t *testing.T) {
	if got := Category("JETPACK").Weight(); got != 1 {
		t.Errorf("unknown category: expected weight 1, got %d", got)
	}
	if got := Location("MOON_BASE").Weight(); got != 1 {
		t.Errorf("unknown location: expected weight 1, got %d", got)
	}
	if got := DetailedLocation("SOMEWHERE").Weight(); got != 1 {
		t.Errorf("unknown detailed location: expected weight 1, got %d", got)
	}
	if got := DetailedLocation("").Weight(); got != 0 {
		t.Errorf("empty detailed location: expected weight 0, got %d", got)
	}
}
