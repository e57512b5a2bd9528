package domain

import "time"

// EntryStatus is the lifecycle state of a queue entry.
type EntryStatus string

const (
	StatusPending  EntryStatus = "pending"
	StatusClaimed  EntryStatus = "claimed"
	StatusServed   EntryStatus = "served"
	StatusReleased EntryStatus = "released"
)

// ClaimToken identifies one exclusive, time-bounded reservation of a queue
// entry. Tokens are single-use: a resolved token is never valid again.
type ClaimToken string

// ResolveOutcome is the terminal decision for a claimed entry.
type ResolveOutcome string

const (
	// OutcomeServed retires the entry permanently.
	OutcomeServed ResolveOutcome = "served"
	// OutcomeReleased returns the entry to pending, keeping its original
	// submission time so its place in line is preserved.
	OutcomeReleased ResolveOutcome = "released"
)

// QueueEntry is one applicant awaiting assistance. Description and
// ProofFilename are opaque intake metadata; the queue never interprets them.
type QueueEntry struct {
	Identity      string      `json:"identity"`
	Description   string      `json:"description"`
	ProofFilename string      `json:"proof_filename"`
	SubmittedAt   time.Time   `json:"submitted_at"`
	Status        EntryStatus `json:"status"`
}
