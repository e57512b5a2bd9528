package match

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"financetrack/internal/domain"
	"financetrack/internal/ledger"
	"financetrack/internal/queue"
)

func newTestCoordinator(t *testing.T) (*Coordinator, *queue.Memory, *ledger.Memory) {
	t.Helper()
	q := queue.NewMemory(queue.Options{AllowResubmit: true})
	l := ledger.NewMemory()
	c := New(q, l, nil, nil, zerolog.Nop(), DefaultOptions())
	return c, q, l
}

func TestDonateMatchesQueueHead(t *testing.T) {
	ctx := context.Background()
	c, q, l := newTestCoordinator(t)

	if _, err := q.Submit(ctx, "a@x.com", "", ""); err != nil {
		t.Fatalf("submit a: %v", err)
	}
	if _, err := q.Submit(ctx, "b@x.com", "", ""); err != nil {
		t.Fatalf("submit b: %v", err)
	}

	record, err := c.Donate(ctx, "donor@x.com", 5000)
	if err != nil {
		t.Fatalf("donate: %v", err)
	}
	if record.RecipientIdentity != "a@x.com" {
		t.Fatalf("recipient = %q, want a@x.com", record.RecipientIdentity)
	}
	if record.DonorIdentity != "donor@x.com" || record.AmountCents != 5000 {
		t.Fatalf("unexpected record: %+v", record)
	}

	var count int
	if err := l.Scan(ctx, func(domain.DonationRecord) error { count++; return nil }); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if count != 1 {
		t.Fatalf("ledger records = %d, want 1", count)
	}

	head, err := q.PeekNext(ctx)
	if err != nil {
		t.Fatalf("peek after donate: %v", err)
	}
	if head.Identity != "b@x.com" {
		t.Fatalf("next head = %q, want b@x.com", head.Identity)
	}
}

func TestDonateOnEmptyQueue(t *testing.T) {
	ctx := context.Background()
	c, _, _ := newTestCoordinator(t)

	_, err := c.Donate(ctx, "donor@x.com", 5000)
	if !errors.Is(err, domain.ErrQueueEmpty) {
		t.Fatalf("err = %v, want ErrQueueEmpty", err)
	}
}

func TestDonateReleasesClaimOnBadInput(t *testing.T) {
	ctx := context.Background()
	c, q, l := newTestCoordinator(t)

	if _, err := q.Submit(ctx, "a@x.com", "", ""); err != nil {
		t.Fatalf("submit: %v", err)
	}

	if _, err := c.Donate(ctx, "", 5000); !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("empty donor: err = %v, want ErrInvalidRequest", err)
	}
	if _, err := c.Donate(ctx, "donor@x.com", 0); !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("zero amount: err = %v, want ErrInvalidRequest", err)
	}

	// The applicant must still be claimable after the failed attempts.
	head, err := q.PeekNext(ctx)
	if err != nil {
		t.Fatalf("peek: %v", err)
	}
	if head.Identity != "a@x.com" {
		t.Fatalf("head = %q, want a@x.com", head.Identity)
	}

	var count int
	if err := l.Scan(ctx, func(domain.DonationRecord) error { count++; return nil }); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if count != 0 {
		t.Fatalf("ledger records = %d, want 0", count)
	}
}

type failingLedger struct{}

func (failingLedger) Append(ctx context.Context, record domain.DonationRecord) (domain.DonationRecord, error) {
	return domain.DonationRecord{}, errors.New("connection refused")
}

func (failingLedger) Scan(ctx context.Context, fn func(domain.DonationRecord) error) error {
	return nil
}

func (failingLedger) FindByDonor(ctx context.Context, identity string) ([]domain.DonationRecord, error) {
	return nil, nil
}

func TestDonateReleasesClaimOnStorageFailure(t *testing.T) {
	ctx := context.Background()
	q := queue.NewMemory(queue.Options{AllowResubmit: true})
	c := New(q, failingLedger{}, nil, nil, zerolog.Nop(), DefaultOptions())

	if _, err := q.Submit(ctx, "a@x.com", "", ""); err != nil {
		t.Fatalf("submit: %v", err)
	}

	_, err := c.Donate(ctx, "donor@x.com", 5000)
	if !errors.Is(err, domain.ErrStorageFailure) {
		t.Fatalf("err = %v, want ErrStorageFailure", err)
	}

	head, err := q.PeekNext(ctx)
	if err != nil {
		t.Fatalf("peek after storage failure: %v", err)
	}
	if head.Identity != "a@x.com" {
		t.Fatalf("head = %q, want a@x.com", head.Identity)
	}
}

func TestConcurrentDonationsNeverDoublePayOneRecipient(t *testing.T) {
	ctx := context.Background()
	c, q, l := newTestCoordinator(t)

	const applicants = 4
	const donors = 12
	identities := []string{"r1@x.com", "r2@x.com", "r3@x.com", "r4@x.com"}
	for _, identity := range identities {
		if _, err := q.Submit(ctx, identity, "", ""); err != nil {
			t.Fatalf("submit %s: %v", identity, err)
		}
	}

	var wg sync.WaitGroup
	for i := 0; i < donors; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Donate(ctx, "donor@x.com", 100)
			if err != nil && !errors.Is(err, domain.ErrQueueEmpty) && !errors.Is(err, domain.ErrContended) {
				t.Errorf("unexpected donate error: %v", err)
			}
		}()
	}
	wg.Wait()

	recipients := make(map[string]int)
	if err := l.Scan(ctx, func(rec domain.DonationRecord) error {
		recipients[rec.RecipientIdentity]++
		return nil
	}); err != nil {
		t.Fatalf("scan: %v", err)
	}
	for identity, n := range recipients {
		if n != 1 {
			t.Fatalf("recipient %s was paid %d times", identity, n)
		}
	}
	if len(recipients) > applicants {
		t.Fatalf("paid %d recipients with only %d applicants", len(recipients), applicants)
	}
}

func TestDonateSurfacesContentionAfterBoundedRetries(t *testing.T) {
	ctx := context.Background()
	q := queue.NewMemory(queue.Options{AllowResubmit: true})
	l := ledger.NewMemory()
	c := New(q, l, nil, nil, zerolog.Nop(), Options{MaxClaimRetries: 2, ClaimLease: time.Minute})

	if _, err := q.Submit(ctx, "a@x.com", "", ""); err != nil {
		t.Fatalf("submit: %v", err)
	}
	// Hold the only entry so every coordinator claim loses.
	if _, err := q.Claim(ctx, "a@x.com", time.Minute); err != nil {
		t.Fatalf("claim: %v", err)
	}

	_, err := c.Donate(ctx, "donor@x.com", 100)
	if !errors.Is(err, domain.ErrContended) {
		t.Fatalf("err = %v, want ErrContended", err)
	}
}

type recordingNotifier struct {
	mu    sync.Mutex
	calls []string
}

func (n *recordingNotifier) DonationReceived(ctx context.Context, recipient, donor string, amountCents int64) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, recipient)
	return errors.New("relay down")
}

func TestNotifierFailureIsNotFatal(t *testing.T) {
	ctx := context.Background()
	q := queue.NewMemory(queue.Options{AllowResubmit: true})
	l := ledger.NewMemory()
	n := &recordingNotifier{}
	c := New(q, l, n, nil, zerolog.Nop(), DefaultOptions())

	if _, err := q.Submit(ctx, "a@x.com", "", ""); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := c.Donate(ctx, "donor@x.com", 100); err != nil {
		t.Fatalf("donate: %v", err)
	}
	if len(n.calls) != 1 || n.calls[0] != "a@x.com" {
		t.Fatalf("notifier calls = %v, want [a@x.com]", n.calls)
	}
}
