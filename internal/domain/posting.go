package domain

import "time"

// PostType distinguishes lost-item reports from found-item reports.
type PostType string

const (
	PostLost  PostType = "LOST"
	PostFound PostType = "FOUND"
)

// Opposite returns the post type a posting is matched against.
func (t PostType) Opposite() PostType {
	if t == PostLost {
		return PostFound
	}
	return PostLost
}

// PostingStatus is the moderation/claim lifecycle state of a posting.
type PostingStatus string

const (
	PostingPendingApproval PostingStatus = "PENDING_APPROVAL"
	PostingPendingClaim    PostingStatus = "PENDING_CLAIM"
	PostingClaimed         PostingStatus = "CLAIMED"
	PostingUnclaimed       PostingStatus = "UNCLAIMED"
	PostingExpired         PostingStatus = "EXPIRED"
	PostingCompleted       PostingStatus = "COMPLETED"
)

// Posting is a single lost- or found-item report.
type Posting struct {
	ID               int64
	Title            string
	Description      string
	Category         Category
	PostType         PostType
	Status           PostingStatus
	Location         Location
	DetailedLocation DetailedLocation

	// LostFoundTime is when the item was lost or found, as reported by the
	// owner. Distinct from CreatedAt, which is when the report was filed.
	LostFoundTime time.Time
	CreatedAt     time.Time

	Approved bool
	OwnerID  int64

	// TotalWeight is a derived salience weight (see ComputeWeight). It is
	// recomputed at every write boundary and never set by callers.
	TotalWeight int
}

func (p *Posting) IsLost() bool  { return p.PostType == PostLost }
func (p *Posting) IsFound() bool { return p.PostType == PostFound }

// IsLive reports whether the posting participates in matching: approved and
// neither resolved nor awaiting moderation.
func (p *Posting) IsLive() bool {
	return p.Approved && (p.Status == PostingPendingClaim || p.Status == PostingClaimed)
}
