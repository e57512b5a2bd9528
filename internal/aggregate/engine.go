// Package aggregate derives contribution statistics from the ledger. All
// views are computed by a single scan and never cached, so results may be
// stale relative to concurrent donations but are always self-consistent.
package aggregate

import (
	"context"
	"fmt"

	"financetrack/internal/domain"
)

// Engine computes reporting views over a ledger store.
type Engine struct {
	ledger domain.LedgerStore
}

// New builds an engine over the given store.
func New(ledger domain.LedgerStore) *Engine {
	return &Engine{ledger: ledger}
}

// ComputeSummary returns the per-donor contribution view: donor total,
// global total, percentage share and tier rating. A donor with no records
// gets zero totals, zero percentage and Bronze.
func (e *Engine) ComputeSummary(ctx context.Context, identity string) (domain.Summary, error) {
	summary := domain.Summary{DonorIdentity: identity}
	err := e.ledger.Scan(ctx, func(rec domain.DonationRecord) error {
		summary.GlobalTotalCents += rec.AmountCents
		if rec.DonorIdentity == identity {
			summary.DonorTotalCents += rec.AmountCents
		}
		return nil
	})
	if err != nil {
		return domain.Summary{}, fmt.Errorf("scan ledger: %w", err)
	}

	if summary.GlobalTotalCents > 0 {
		summary.Percentage = float64(summary.DonorTotalCents) / float64(summary.GlobalTotalCents) * 100
	}
	summary.Rating = domain.RatingFor(summary.Percentage)
	return summary, nil
}

// ComputeStats returns the global ledger view used by dashboards.
func (e *Engine) ComputeStats(ctx context.Context) (domain.Stats, error) {
	var stats domain.Stats
	donors := make(map[string]struct{})
	served := make(map[string]struct{})
	err := e.ledger.Scan(ctx, func(rec domain.DonationRecord) error {
		stats.RecordCount++
		stats.GlobalTotalCents += rec.AmountCents
		donors[rec.DonorIdentity] = struct{}{}
		served[rec.RecipientIdentity] = struct{}{}
		return nil
	})
	if err != nil {
		return domain.Stats{}, fmt.Errorf("scan ledger: %w", err)
	}
	stats.DistinctDonors = int64(len(donors))
	stats.DistinctServed = int64(len(served))
	return stats, nil
}
