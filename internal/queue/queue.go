// Package queue provides the in-memory assistance queue. It is the default
// backend and the reference for the claim protocol: pending entries are
// ordered by submission time, a claim is an exclusive time-bounded
// reservation, and a released entry keeps its original place in line.
package queue

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"financetrack/internal/domain"
)

type entry struct {
	identity      string
	description   string
	proofFilename string
	submittedAt   time.Time
	seq           uint64
	status        domain.EntryStatus
	token         domain.ClaimToken
	leaseExpires  time.Time
}

// Options tune queue policy.
type Options struct {
	// AllowResubmit permits an identity to re-enter the queue after its
	// prior entry was served. Policy only; the pending/claimed uniqueness
	// invariant holds either way.
	AllowResubmit bool
	// Now overrides the clock, used by tests. Defaults to time.Now.
	Now func() time.Time
}

// Memory is a mutex-guarded assistance queue. All state transitions happen
// under one lock, which is what makes Claim an at-most-one-winner operation.
type Memory struct {
	mu      sync.Mutex
	entries []*entry
	served  map[string]struct{}
	nextSeq uint64
	opts    Options
}

// NewMemory builds an empty queue.
func NewMemory(opts Options) *Memory {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Memory{
		served: make(map[string]struct{}),
		opts:   opts,
	}
}

// Submit implements domain.AssistanceQueue.
func (q *Memory) Submit(ctx context.Context, identity, description, proofFilename string) (int, error) {
	if identity == "" {
		return 0, fmt.Errorf("%w: identity is required", domain.ErrInvalidRequest)
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	for _, e := range q.entries {
		if e.identity == identity && (e.status == domain.StatusPending || e.status == domain.StatusClaimed) {
			return 0, domain.ErrDuplicateApplicant
		}
	}
	if !q.opts.AllowResubmit {
		if _, ok := q.served[identity]; ok {
			return 0, domain.ErrDuplicateApplicant
		}
	}

	e := &entry{
		identity:      identity,
		description:   description,
		proofFilename: proofFilename,
		submittedAt:   q.opts.Now(),
		seq:           q.nextSeq,
		status:        domain.StatusPending,
	}
	q.nextSeq++
	q.entries = append(q.entries, e)

	// 1-based position among pending entries, a snapshot at submission.
	position := 0
	for _, other := range q.pendingOrder() {
		position++
		if other == e {
			break
		}
	}
	return position, nil
}

// PeekNext implements domain.AssistanceQueue.
func (q *Memory) PeekNext(ctx context.Context) (domain.QueueEntry, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	pending := q.pendingOrder()
	if len(pending) == 0 {
		return domain.QueueEntry{}, domain.ErrQueueEmpty
	}
	return pending[0].view(), nil
}

// Claim implements domain.AssistanceQueue.
func (q *Memory) Claim(ctx context.Context, identity string, lease time.Duration) (domain.ClaimToken, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, e := range q.entries {
		if e.identity != identity {
			continue
		}
		switch e.status {
		case domain.StatusPending:
			e.status = domain.StatusClaimed
			e.token = domain.ClaimToken(uuid.NewString())
			e.leaseExpires = q.opts.Now().Add(lease)
			return e.token, nil
		case domain.StatusClaimed:
			return "", domain.ErrAlreadyClaimed
		}
	}
	return "", domain.ErrNotFound
}

// Resolve implements domain.AssistanceQueue.
func (q *Memory) Resolve(ctx context.Context, token domain.ClaimToken, outcome domain.ResolveOutcome) error {
	if token == "" {
		return domain.ErrInvalidToken
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	for i, e := range q.entries {
		if e.token != token {
			continue
		}
		if e.status != domain.StatusClaimed {
			return domain.ErrInvalidToken
		}
		switch outcome {
		case domain.OutcomeServed:
			q.served[e.identity] = struct{}{}
			q.entries = append(q.entries[:i], q.entries[i+1:]...)
		case domain.OutcomeReleased:
			// submittedAt and seq are untouched so FIFO order survives.
			e.status = domain.StatusPending
			e.token = ""
			e.leaseExpires = time.Time{}
		default:
			return fmt.Errorf("%w: unknown outcome %q", domain.ErrInvalidToken, outcome)
		}
		return nil
	}
	return domain.ErrInvalidToken
}

// ReapExpired implements domain.AssistanceQueue.
func (q *Memory) ReapExpired(ctx context.Context) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	now := q.opts.Now()
	released := 0
	for _, e := range q.entries {
		if e.status == domain.StatusClaimed && now.After(e.leaseExpires) {
			e.status = domain.StatusPending
			e.token = ""
			e.leaseExpires = time.Time{}
			released++
		}
	}
	return released, nil
}

func (q *Memory) pendingOrder() []*entry {
	pending := make([]*entry, 0, len(q.entries))
	for _, e := range q.entries {
		if e.status == domain.StatusPending {
			pending = append(pending, e)
		}
	}
	sort.SliceStable(pending, func(i, j int) bool {
		if pending[i].submittedAt.Equal(pending[j].submittedAt) {
			return pending[i].seq < pending[j].seq
		}
		return pending[i].submittedAt.Before(pending[j].submittedAt)
	})
	return pending
}

func (e *entry) view() domain.QueueEntry {
	return domain.QueueEntry{
		Identity:      e.identity,
		Description:   e.description,
		ProofFilename: e.proofFilename,
		SubmittedAt:   e.submittedAt,
		Status:        e.status,
	}
}

var _ domain.AssistanceQueue = (*Memory)(nil)
