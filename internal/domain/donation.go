package domain

import "time"

// DonationRecord is one completed transfer from a donor to an assisted
// recipient. Records are immutable once appended to the ledger.
type DonationRecord struct {
	ID                int64     `json:"id"`
	DonorIdentity     string    `json:"donor_identity"`
	RecipientIdentity string    `json:"recipient_identity"`
	AmountCents       int64     `json:"amount_cents"`
	CreatedAt         time.Time `json:"created_at"`
}

// Validate checks the caller-supplied fields of a record before the store
// assigns ID and CreatedAt.
func (d DonationRecord) Validate() error {
	if d.DonorIdentity == "" || d.RecipientIdentity == "" {
		return ErrInvalidRecord
	}
	if d.AmountCents <= 0 {
		return ErrInvalidRecord
	}
	return nil
}
