// Package repo provides the PostgreSQL-backed implementations of the ledger
// store and assistance queue, selected with DATA_BACKEND=postgres.
package repo

import (
	"context"
	"fmt"

	"financetrack/internal/domain"
	"financetrack/internal/infra"
	"financetrack/internal/sqlinline"
)

// LedgerRepositoryPG implements domain.LedgerStore on PostgreSQL. The table
// only ever receives inserts; IDs come from a BIGSERIAL so the monotonic
// append sequence is the database's own.
type LedgerRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewLedgerRepository creates a new ledger repo.
func NewLedgerRepository(sql infra.SQLExecutor) *LedgerRepositoryPG {
	return &LedgerRepositoryPG{sql: sql}
}

// Append implements domain.LedgerStore.
func (r *LedgerRepositoryPG) Append(ctx context.Context, record domain.DonationRecord) (domain.DonationRecord, error) {
	if err := record.Validate(); err != nil {
		return domain.DonationRecord{}, err
	}
	row := r.sql.QueryRow(ctx, sqlinline.QInsertDonation,
		record.DonorIdentity, record.RecipientIdentity, record.AmountCents)
	if err := row.Scan(&record.ID, &record.CreatedAt); err != nil {
		return domain.DonationRecord{}, fmt.Errorf("insert donation record: %w", err)
	}
	return record, nil
}

// Scan implements domain.LedgerStore. Rows stream from the database in
// insertion order; the MVCC snapshot taken at query start guarantees no
// half-written record is visible.
func (r *LedgerRepositoryPG) Scan(ctx context.Context, fn func(domain.DonationRecord) error) error {
	rows, err := r.sql.Query(ctx, sqlinline.QScanDonations)
	if err != nil {
		return fmt.Errorf("scan donation records: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var record domain.DonationRecord
		if err := rows.Scan(&record.ID, &record.DonorIdentity, &record.RecipientIdentity, &record.AmountCents, &record.CreatedAt); err != nil {
			return fmt.Errorf("scan donation row: %w", err)
		}
		if err := fn(record); err != nil {
			return err
		}
	}
	return rows.Err()
}

// FindByDonor implements domain.LedgerStore.
func (r *LedgerRepositoryPG) FindByDonor(ctx context.Context, identity string) ([]domain.DonationRecord, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QFindByDonor, identity)
	if err != nil {
		return nil, fmt.Errorf("find donations by donor: %w", err)
	}
	defer rows.Close()

	var items []domain.DonationRecord
	for rows.Next() {
		var record domain.DonationRecord
		if err := rows.Scan(&record.ID, &record.DonorIdentity, &record.RecipientIdentity, &record.AmountCents, &record.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan donation row: %w", err)
		}
		items = append(items, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

var _ domain.LedgerStore = (*LedgerRepositoryPG)(nil)
