package domain

import (
	"math"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Reason tags appended by the scorer, in evaluation order.
const (
	ReasonAutoMatch         = "auto match"
	ReasonCategoryMatch     = "category match"
	ReasonEqualWeight       = "equal weight"
	ReasonLocationMatch     = "location match"
	ReasonDetailedLocation  = "detailed location match"
	ReasonTimeVeryClose     = "time very close"
	ReasonTimeClose         = "time close"
	ReasonTextHighlySimilar = "text highly similar"
	ReasonTextSimilar       = "text similar"
)

// Event-time proximity brackets, in days.
const (
	timeNearDays = 3
	timeFarDays  = 7
)

// Profile is a named weight scheme for scoring a pair of postings. The
// automatic and suggestion discovery modes use different profiles; the
// scoring, gating, and rounding logic is shared.
type Profile struct {
	Name string

	// RequireCategory rejects the pair outright when categories differ,
	// instead of treating category as a partial-credit factor.
	RequireCategory bool

	EqualWeight      float64
	Location         float64
	DetailedLocation float64
	Category         float64
	TimeNear         float64
	TimeFar          float64

	// TextCap bounds the credit from text similarity: the pair earns
	// jaccard * TextCap, capped at TextCap.
	TextCap float64

	// MinScore is the floor below which the pair is not publishable. For the
	// automatic profile this doubles as the match-creation threshold.
	MinScore float64
}

// AutoProfile is the weight scheme used to decide automatic match creation.
// The factor weights sum to exactly 1.0 when everything matches.
func AutoProfile(threshold float64) Profile {
	return Profile{
		Name:             "auto",
		EqualWeight:      0.40,
		Location:         0.30,
		DetailedLocation: 0.20,
		Category:         0.10,
		MinScore:         threshold,
	}
}

// SuggestProfile is the weight scheme used for interactive ranked candidate
// lists. Category equality is a hard gate worth 0.30 on pass, so the floor
// admits category-only pairs and nothing else.
func SuggestProfile(floor float64) Profile {
	return Profile{
		Name:             "suggest",
		RequireCategory:  true,
		Category:         0.30,
		Location:         0.25,
		DetailedLocation: 0.20,
		TimeNear:         0.15,
		TimeFar:          0.08,
		TextCap:          0.10,
		MinScore:         floor,
	}
}

// Score evaluates the pair under the profile's weight scheme. It returns the
// score rounded to two decimals, the reason tags in evaluation order, and
// whether the pair is publishable (not gated out, at or above MinScore).
func (pr Profile) Score(a, b *Posting) (float64, []string, bool) {
	var score float64
	var reasons []string

	if pr.RequireCategory {
		if a.Category != b.Category {
			return 0, nil, false
		}
		score += pr.Category
		reasons = append(reasons, ReasonCategoryMatch)
	}

	if pr.EqualWeight > 0 && a.TotalWeight == b.TotalWeight {
		score += pr.EqualWeight
		reasons = append(reasons, ReasonEqualWeight)
	}

	if pr.Location > 0 && a.Location == b.Location {
		score += pr.Location
		reasons = append(reasons, ReasonLocationMatch)
	}

	if pr.DetailedLocation > 0 &&
		a.DetailedLocation != "" && b.DetailedLocation != "" &&
		a.DetailedLocation == b.DetailedLocation {
		score += pr.DetailedLocation
		reasons = append(reasons, ReasonDetailedLocation)
	}

	if !pr.RequireCategory && pr.Category > 0 && a.Category == b.Category {
		score += pr.Category
		reasons = append(reasons, ReasonCategoryMatch)
	}

	if (pr.TimeNear > 0 || pr.TimeFar > 0) &&
		!a.LostFoundTime.IsZero() && !b.LostFoundTime.IsZero() {
		delta := a.LostFoundTime.Sub(b.LostFoundTime)
		if delta < 0 {
			delta = -delta
		}
		days := int(delta.Hours() / 24)
		switch {
		case days <= timeNearDays:
			score += pr.TimeNear
			reasons = append(reasons, ReasonTimeVeryClose)
		case days <= timeFarDays:
			score += pr.TimeFar
			reasons = append(reasons, ReasonTimeClose)
		}
	}

	if pr.TextCap > 0 {
		jaccard := TextSimilarity(a.Title+" "+a.Description, b.Title+" "+b.Description)
		score += math.Min(pr.TextCap, jaccard*pr.TextCap)
		if jaccard >= 0.5 {
			reasons = append(reasons, ReasonTextHighlySimilar)
		} else if jaccard >= 0.25 {
			reasons = append(reasons, ReasonTextSimilar)
		}
	}

	rounded := round2(score)
	return rounded, reasons, rounded >= pr.MinScore
}

// tokenPattern keeps CJK and alphanumeric runs; everything else separates
// tokens.
var tokenPattern = regexp.MustCompile(`[\p{Han}a-z0-9]+`)

// TextSimilarity computes the token-set Jaccard similarity of two strings.
// Input is lowercased; tokens shorter than two runes are dropped.
func TextSimilarity(a, b string) float64 {
	setA := tokenSet(a)
	setB := tokenSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}
	intersection := 0
	for token := range setA {
		if _, ok := setB[token]; ok {
			intersection++
		}
	}
	return float64(intersection) / float64(len(setA)+len(setB)-intersection)
}

func tokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, token := range tokenPattern.FindAllString(strings.ToLower(s), -1) {
		if utf8.RuneCountInString(token) >= 2 {
			set[token] = struct{}{}
		}
	}
	return set
}

// round2 rounds to two decimal places for display determinism.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
