// Package notify informs recipients that a donation reached them. Delivery
// is best effort: the coordinator logs failures and moves on.
package notify

import "context"

// Notifier delivers a "donation received" message to a recipient.
type Notifier interface {
	DonationReceived(ctx context.Context, recipientIdentity, donorIdentity string, amountCents int64) error
}

// Noop discards notifications. Used when no SMTP relay is configured.
type Noop struct{}

func (Noop) DonationReceived(ctx context.Context, recipientIdentity, donorIdentity string, amountCents int64) error {
	return nil
}
