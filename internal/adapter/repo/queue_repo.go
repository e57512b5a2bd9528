package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"financetrack/internal/domain"
	"financetrack/internal/infra"
	"financetrack/internal/sqlinline"
)

// QueueRepositoryPG implements domain.AssistanceQueue on PostgreSQL.
// Claim exclusivity rides on a single conditional UPDATE: only one
// transaction can move a row out of 'pending'. The partial unique index on
// live identities backs the duplicate-applicant invariant even under
// concurrent submits.
type QueueRepositoryPG struct {
	sql           infra.SQLExecutor
	allowResubmit bool
}

// NewQueueRepository creates a new queue repo.
func NewQueueRepository(sql infra.SQLExecutor, allowResubmit bool) *QueueRepositoryPG {
	return &QueueRepositoryPG{sql: sql, allowResubmit: allowResubmit}
}

// Submit implements domain.AssistanceQueue.
func (r *QueueRepositoryPG) Submit(ctx context.Context, identity, description, proofFilename string) (int, error) {
	if identity == "" {
		return 0, fmt.Errorf("%w: identity is required", domain.ErrInvalidRequest)
	}

	if !r.allowResubmit {
		var servedBefore bool
		row := r.sql.QueryRow(ctx, sqlinline.QHasServed, identity)
		if err := row.Scan(&servedBefore); err != nil {
			return 0, fmt.Errorf("check served history: %w", err)
		}
		if servedBefore {
			return 0, domain.ErrDuplicateApplicant
		}
	}

	var id int64
	var submittedAt time.Time
	row := r.sql.QueryRow(ctx, sqlinline.QSubmitApplicant, identity, description, proofFilename)
	if err := row.Scan(&id, &submittedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrDuplicateApplicant
		}
		// A racing submit can beat the NOT EXISTS guard; the partial unique
		// index then rejects the insert.
		if isUniqueViolation(err) {
			return 0, domain.ErrDuplicateApplicant
		}
		return 0, fmt.Errorf("insert queue entry: %w", err)
	}

	var position int
	row = r.sql.QueryRow(ctx, sqlinline.QPendingPosition, submittedAt, id)
	if err := row.Scan(&position); err != nil {
		return 0, fmt.Errorf("compute queue position: %w", err)
	}
	return position, nil
}

// PeekNext implements domain.AssistanceQueue.
func (r *QueueRepositoryPG) PeekNext(ctx context.Context) (domain.QueueEntry, error) {
	var entry domain.QueueEntry
	row := r.sql.QueryRow(ctx, sqlinline.QPeekNext)
	if err := row.Scan(&entry.Identity, &entry.Description, &entry.ProofFilename, &entry.SubmittedAt, &entry.Status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.QueueEntry{}, domain.ErrQueueEmpty
		}
		return domain.QueueEntry{}, fmt.Errorf("peek queue head: %w", err)
	}
	return entry, nil
}

// Claim implements domain.AssistanceQueue.
func (r *QueueRepositoryPG) Claim(ctx context.Context, identity string, lease time.Duration) (domain.ClaimToken, error) {
	token := uuid.NewString()
	row := r.sql.QueryRow(ctx, sqlinline.QClaimEntry, identity, token, lease.String())

	var claimed string
	if err := row.Scan(&claimed); err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return "", fmt.Errorf("claim queue entry: %w", err)
		}
		// The conditional update matched nothing. Distinguish a lost race
		// from an identity that was never pending.
		var status string
		statusRow := r.sql.QueryRow(ctx, sqlinline.QEntryStatus, identity)
		if err := statusRow.Scan(&status); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return "", domain.ErrNotFound
			}
			return "", fmt.Errorf("check entry status: %w", err)
		}
		if status == string(domain.StatusClaimed) {
			return "", domain.ErrAlreadyClaimed
		}
		return "", domain.ErrNotFound
	}
	return domain.ClaimToken(claimed), nil
}

// Resolve implements domain.AssistanceQueue.
func (r *QueueRepositoryPG) Resolve(ctx context.Context, token domain.ClaimToken, outcome domain.ResolveOutcome) error {
	if token == "" {
		return domain.ErrInvalidToken
	}

	var query string
	switch outcome {
	case domain.OutcomeServed:
		query = sqlinline.QResolveServed
	case domain.OutcomeReleased:
		query = sqlinline.QResolveReleased
	default:
		return fmt.Errorf("%w: unknown outcome %q", domain.ErrInvalidToken, outcome)
	}

	tag, err := r.sql.Exec(ctx, query, string(token))
	if err != nil {
		return fmt.Errorf("resolve claim: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInvalidToken
	}
	return nil
}

// ReapExpired implements domain.AssistanceQueue.
func (r *QueueRepositoryPG) ReapExpired(ctx context.Context) (int, error) {
	tag, err := r.sql.Exec(ctx, sqlinline.QReapExpired)
	if err != nil {
		return 0, fmt.Errorf("reap expired claims: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func isUniqueViolation(err error) bool {
	var pgErr interface{ SQLState() string }
	if errors.As(err, &pgErr) {
		return pgErr.SQLState() == "23505"
	}
	return false
}

var _ domain.AssistanceQueue = (*QueueRepositoryPG)(nil)
