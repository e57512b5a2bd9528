package domain

// Rating is the Bronze/Silver/Gold tier derived from a donor's share of the
// global donation total.
type Rating string

const (
	RatingGold   Rating = "Gold"
	RatingSilver Rating = "Silver"
	RatingBronze Rating = "Bronze"
)

// RatingFor maps a contribution percentage to a tier. Lower bounds are
// inclusive and evaluated top down.
func RatingFor(percentage float64) Rating {
	switch {
	case percentage >= 15:
		return RatingGold
	case percentage >= 5:
		return RatingSilver
	default:
		return RatingBronze
	}
}

// Summary is the derived per-donor contribution view. It is computed from
// the ledger on demand and never stored.
type Summary struct {
	DonorIdentity    string  `json:"donor_identity"`
	DonorTotalCents  int64   `json:"donor_total_cents"`
	GlobalTotalCents int64   `json:"global_total_cents"`
	Percentage       float64 `json:"percentage"`
	Rating           Rating  `json:"rating"`
}

// Stats is the global reporting view across the whole ledger and queue.
type Stats struct {
	RecordCount      int64 `json:"record_count"`
	GlobalTotalCents int64 `json:"global_total_cents"`
	DistinctDonors   int64 `json:"distinct_donors"`
	DistinctServed   int64 `json:"distinct_served"`
}
