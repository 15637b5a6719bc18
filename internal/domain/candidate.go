package domain

// Candidate is a transient, scored pairing suggestion produced by the
// read-only suggestion path. Nothing about it is persisted.
type Candidate struct {
	Posting *Posting
	Score   float64

	// Reasons are human-readable tags explaining the score, in the order the
	// scoring factors were evaluated.
	Reasons []string
}

// PostingCandidates groups ranked candidates under one of a user's postings.
type PostingCandidates struct {
	Posting    *Posting
	Candidates []Candidate
}
