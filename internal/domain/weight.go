package domain

import "time"

// ComputeWeight returns the salience weight for a posting: the sum of its
// location, sub-location, and category weights plus a freshness weight based
// on when the report was filed. It is a pure function of its inputs; callers
// apply it at the write boundary and must never set TotalWeight directly.
func ComputeWeight(p *Posting, now time.Time) int {
	return p.Location.Weight() +
		p.DetailedLocation.Weight() +
		p.Category.Weight() +
		freshnessWeight(p.CreatedAt, now)
}

// freshnessWeight is a step function of report age. Brackets are inclusive of
// their upper bound: a report filed exactly 24h ago still weighs 10.
func freshnessWeight(createdAt, now time.Time) int {
	age := now.Sub(createdAt)
	switch {
	case age <= 24*time.Hour:
		return 10
	case age <= 3*24*time.Hour:
		return 8
	case age <= 7*24*time.Hour:
		return 5
	case age <= 14*24*time.Hour:
		return 3
	default:
		return 1
	}
}
