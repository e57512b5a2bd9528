// Package match orchestrates a donation: claim the queue head, append to
// the ledger, and resolve the claim. Every claim taken here is resolved on
// every exit path, so no entry is left dangling in the claimed state.
package match

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"financetrack/internal/domain"
	"financetrack/internal/metrics"
	"financetrack/internal/notify"
)

// Options tune the coordinator.
type Options struct {
	// MaxClaimRetries bounds how often a lost claim race is retried before
	// giving up with ErrContended.
	MaxClaimRetries int
	// ClaimLease bounds how long a claim may stay unresolved before the
	// queue reaper returns the entry to pending.
	ClaimLease time.Duration
}

// DefaultOptions mirror the configuration defaults.
func DefaultOptions() Options {
	return Options{MaxClaimRetries: 3, ClaimLease: 30 * time.Second}
}

// Coordinator is the only component allowed to transition queue entries and
// append ledger records.
type Coordinator struct {
	queue    domain.AssistanceQueue
	ledger   domain.LedgerStore
	notifier notify.Notifier
	metrics  *metrics.Metrics
	logger   zerolog.Logger
	opts     Options
}

// New builds a coordinator. A nil notifier falls back to notify.Noop.
func New(queue domain.AssistanceQueue, ledger domain.LedgerStore, notifier notify.Notifier, m *metrics.Metrics, logger zerolog.Logger, opts Options) *Coordinator {
	if notifier == nil {
		notifier = notify.Noop{}
	}
	if opts.MaxClaimRetries <= 0 {
		opts.MaxClaimRetries = DefaultOptions().MaxClaimRetries
	}
	if opts.ClaimLease <= 0 {
		opts.ClaimLease = DefaultOptions().ClaimLease
	}
	return &Coordinator{
		queue:    queue,
		ledger:   ledger,
		notifier: notifier,
		metrics:  m,
		logger:   logger.With().Str("component", "coordinator").Logger(),
		opts:     opts,
	}
}

// Donate matches the donor with the current queue head and records the
// transfer. A recipient is matched to at most one successful donation; any
// failure after the claim releases the recipient back to their original
// place in line.
func (c *Coordinator) Donate(ctx context.Context, donorIdentity string, amountCents int64) (domain.DonationRecord, error) {
	for attempt := 0; attempt <= c.opts.MaxClaimRetries; attempt++ {
		head, err := c.queue.PeekNext(ctx)
		if err != nil {
			if errors.Is(err, domain.ErrQueueEmpty) {
				c.metrics.DonationFailed("queue_empty")
				return domain.DonationRecord{}, domain.ErrQueueEmpty
			}
			return domain.DonationRecord{}, fmt.Errorf("peek next recipient: %w", err)
		}

		token, err := c.queue.Claim(ctx, head.Identity, c.opts.ClaimLease)
		if err != nil {
			// Another donor won the race between our peek and claim, or the
			// head was served in the meantime. Re-peek and try again.
			if errors.Is(err, domain.ErrAlreadyClaimed) || errors.Is(err, domain.ErrNotFound) {
				c.metrics.ClaimLost()
				c.logger.Debug().Str("recipient", head.Identity).Int("attempt", attempt).Msg("claim race lost, retrying")
				continue
			}
			return domain.DonationRecord{}, fmt.Errorf("claim %s: %w", head.Identity, err)
		}

		return c.settle(ctx, donorIdentity, head.Identity, amountCents, token)
	}

	c.metrics.DonationFailed("contended")
	return domain.DonationRecord{}, domain.ErrContended
}

// settle runs the post-claim steps. The claim is resolved exactly once on
// every path through this function.
func (c *Coordinator) settle(ctx context.Context, donorIdentity, recipientIdentity string, amountCents int64, token domain.ClaimToken) (domain.DonationRecord, error) {
	if donorIdentity == "" || amountCents <= 0 {
		c.release(ctx, token, recipientIdentity)
		c.metrics.DonationFailed("invalid_request")
		return domain.DonationRecord{}, fmt.Errorf("%w: donor identity and positive amount are required", domain.ErrInvalidRequest)
	}

	record, err := c.ledger.Append(ctx, domain.DonationRecord{
		DonorIdentity:     donorIdentity,
		RecipientIdentity: recipientIdentity,
		AmountCents:       amountCents,
	})
	if err != nil {
		c.release(ctx, token, recipientIdentity)
		if errors.Is(err, domain.ErrInvalidRecord) {
			c.metrics.DonationFailed("invalid_record")
			return domain.DonationRecord{}, err
		}
		c.metrics.DonationFailed("storage")
		return domain.DonationRecord{}, fmt.Errorf("%w: %v", domain.ErrStorageFailure, err)
	}

	if err := c.queue.Resolve(ctx, token, domain.OutcomeServed); err != nil {
		// The record exists and the entry could not be retired. This should
		// not happen in correct usage; surface it loudly.
		c.logger.Error().Err(err).Str("recipient", recipientIdentity).Int64("record_id", record.ID).Msg("resolve served failed after append")
		return domain.DonationRecord{}, fmt.Errorf("resolve served: %w", err)
	}

	c.metrics.DonationSucceeded(record.AmountCents)
	c.logger.Info().
		Str("donor", donorIdentity).
		Str("recipient", recipientIdentity).
		Int64("amount_cents", record.AmountCents).
		Int64("record_id", record.ID).
		Msg("donation recorded")

	if err := c.notifier.DonationReceived(ctx, recipientIdentity, donorIdentity, record.AmountCents); err != nil {
		// Best effort, never fatal.
		c.logger.Warn().Err(err).Str("recipient", recipientIdentity).Msg("donation notification failed")
	}

	return record, nil
}

func (c *Coordinator) release(ctx context.Context, token domain.ClaimToken, recipientIdentity string) {
	if err := c.queue.Resolve(ctx, token, domain.OutcomeReleased); err != nil {
		c.logger.Error().Err(err).Str("recipient", recipientIdentity).Msg("release after failure did not resolve")
		return
	}
	c.metrics.Released()
}
