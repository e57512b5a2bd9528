package domain

import (
	"context"
	"time"
)

// LedgerStore is the append-only record of completed donations. Appended
// records are never mutated or deleted.
type LedgerStore interface {
	// Append validates and stores a record, assigning ID and CreatedAt.
	// Returns ErrInvalidRecord on bad input.
	Append(ctx context.Context, record DonationRecord) (DonationRecord, error)
	// Scan streams every record in insertion order. A scan started while
	// appends are in flight may or may not see them, but never observes a
	// partially written record.
	Scan(ctx context.Context, fn func(DonationRecord) error) error
	// FindByDonor returns the records for one donor in insertion order.
	FindByDonor(ctx context.Context, identity string) ([]DonationRecord, error)
}

// AssistanceQueue holds applicants awaiting assistance in FIFO order by
// submission time. Only the matching coordinator transitions entry state.
type AssistanceQueue interface {
	// Submit enqueues an applicant and returns their 1-based position among
	// pending entries at submission time. Returns ErrDuplicateApplicant if
	// the identity already has a pending or claimed entry.
	Submit(ctx context.Context, identity, description, proofFilename string) (int, error)
	// PeekNext returns the earliest pending entry without changing state,
	// or ErrQueueEmpty.
	PeekNext(ctx context.Context) (QueueEntry, error)
	// Claim atomically moves the named entry from pending to claimed for at
	// most the lease duration. Exactly one concurrent caller wins; losers
	// get ErrAlreadyClaimed. Unknown identities get ErrNotFound.
	Claim(ctx context.Context, identity string, lease time.Duration) (ClaimToken, error)
	// Resolve retires a claimed entry (OutcomeServed) or returns it to
	// pending with its original submission time (OutcomeReleased). A spent
	// or unknown token gets ErrInvalidToken.
	Resolve(ctx context.Context, token ClaimToken, outcome ResolveOutcome) error
	// ReapExpired releases every claimed entry whose lease has lapsed and
	// reports how many were released.
	ReapExpired(ctx context.Context) (int, error)
}
