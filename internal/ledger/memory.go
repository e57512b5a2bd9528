// Package ledger provides the in-memory ledger store, the default backend
// for recorded donations.
package ledger

import (
	"context"
	"sync"
	"time"

	"financetrack/internal/domain"
)

// Memory is an append-only, RWMutex-guarded ledger. Records are immutable
// and the backing slice only ever grows, so a scan can iterate over a
// length snapshot without holding the lock.
type Memory struct {
	mu      sync.RWMutex
	records []domain.DonationRecord
	nextID  int64
	lastAt  time.Time
}

// NewMemory builds an empty ledger.
func NewMemory() *Memory {
	return &Memory{nextID: 1}
}

// Append implements domain.LedgerStore.
func (l *Memory) Append(ctx context.Context, record domain.DonationRecord) (domain.DonationRecord, error) {
	if err := record.Validate(); err != nil {
		return domain.DonationRecord{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	record.ID = l.nextID
	l.nextID++

	// Timestamps are monotonic within the store even if the wall clock
	// steps backwards.
	now := time.Now().UTC()
	if !now.After(l.lastAt) {
		now = l.lastAt.Add(time.Nanosecond)
	}
	l.lastAt = now
	record.CreatedAt = now

	l.records = append(l.records, record)
	return record, nil
}

// Scan implements domain.LedgerStore. The snapshot is the record count at
// call time; concurrent appends are not visited.
func (l *Memory) Scan(ctx context.Context, fn func(domain.DonationRecord) error) error {
	l.mu.RLock()
	snapshot := l.records[:len(l.records):len(l.records)]
	l.mu.RUnlock()

	for _, record := range snapshot {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(record); err != nil {
			return err
		}
	}
	return nil
}

// FindByDonor implements domain.LedgerStore.
func (l *Memory) FindByDonor(ctx context.Context, identity string) ([]domain.DonationRecord, error) {
	var out []domain.DonationRecord
	err := l.Scan(ctx, func(record domain.DonationRecord) error {
		if record.DonorIdentity == identity {
			out = append(out, record)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

var _ domain.LedgerStore = (*Memory)(nil)
