package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"financetrack/internal/domain"
	"financetrack/internal/match"
)

func submitApplicant(t *testing.T, app *App, email string) {
	t.Helper()
	if _, err := app.Queue.Submit(context.Background(), email, "", ""); err != nil {
		t.Fatalf("submit %s: %v", email, err)
	}
}

func TestDonationsCreateMatchesQueueHead(t *testing.T) {
	app := newTestApp(t)
	submitApplicant(t, app, "a@x.com")
	submitApplicant(t, app, "b@x.com")

	req := httptest.NewRequest(http.MethodPost, "/v1/donations",
		strings.NewReader(`{"donor_email":"d1@x.com","amount":"50"}`))
	rr := httptest.NewRecorder()
	app.DonationsCreate(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rr.Code, rr.Body.String())
	}
	var record domain.DonationRecord
	if err := json.NewDecoder(rr.Body).Decode(&record); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if record.RecipientIdentity != "a@x.com" {
		t.Fatalf("recipient = %q, want a@x.com", record.RecipientIdentity)
	}
	if record.AmountCents != 5000 {
		t.Fatalf("amount = %d, want 5000", record.AmountCents)
	}

	// The next donation goes to the next applicant.
	rr = httptest.NewRecorder()
	app.AssistanceNext(rr, httptest.NewRequest(http.MethodGet, "/v1/assistance/next", nil))
	var next struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&next); err != nil {
		t.Fatalf("decode next: %v", err)
	}
	if next.Email != "b@x.com" {
		t.Fatalf("next = %q, want b@x.com", next.Email)
	}
}

func TestDonationsCreateEmptyQueue(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/donations",
		strings.NewReader(`{"donor_email":"d1@x.com","amount":"50"}`))
	rr := httptest.NewRecorder()
	app.DonationsCreate(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}
}

func TestDonationsCreateValidation(t *testing.T) {
	app := newTestApp(t)
	submitApplicant(t, app, "a@x.com")

	cases := []struct {
		name string
		body string
	}{
		{"missing donor", `{"amount":"50"}`},
		{"zero amount", `{"donor_email":"d1@x.com","amount":"0"}`},
		{"negative amount", `{"donor_email":"d1@x.com","amount":"-5"}`},
		{"garbage amount", `{"donor_email":"d1@x.com","amount":"lots"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/v1/donations", strings.NewReader(tc.body))
			rr := httptest.NewRecorder()
			app.DonationsCreate(rr, req)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400: %s", rr.Code, rr.Body.String())
			}
		})
	}

	// The applicant must still be next in line after all the bad requests.
	rr := httptest.NewRecorder()
	app.AssistanceNext(rr, httptest.NewRequest(http.MethodGet, "/v1/assistance/next", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("applicant lost after failed donations: %d", rr.Code)
	}
}

// contendedQueue always loses the claim race, as if another coordinator
// instance keeps winning between peek and claim.
type contendedQueue struct {
	domain.AssistanceQueue
}

func (q contendedQueue) PeekNext(ctx context.Context) (domain.QueueEntry, error) {
	return domain.QueueEntry{Identity: "a@x.com", Status: domain.StatusPending}, nil
}

func (q contendedQueue) Claim(ctx context.Context, identity string, lease time.Duration) (domain.ClaimToken, error) {
	return "", domain.ErrAlreadyClaimed
}

func TestDonationsCreateContendedConflict(t *testing.T) {
	app := newTestApp(t)
	q := contendedQueue{AssistanceQueue: app.Queue}
	app.Coordinator = match.New(q, app.Ledger, nil, nil, zerolog.Nop(), match.DefaultOptions())

	req := httptest.NewRequest(http.MethodPost, "/v1/donations",
		strings.NewReader(`{"donor_email":"d1@x.com","amount":"50"}`))
	rr := httptest.NewRecorder()
	app.DonationsCreate(rr, req)

	if rr.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409: %s", rr.Code, rr.Body.String())
	}
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Error != "contended" {
		t.Fatalf("error = %q, want contended", payload.Error)
	}
}

func TestDonationsList(t *testing.T) {
	app := newTestApp(t)
	submitApplicant(t, app, "a@x.com")
	submitApplicant(t, app, "b@x.com")

	for _, donor := range []string{"d1@x.com", "d2@x.com"} {
		req := httptest.NewRequest(http.MethodPost, "/v1/donations",
			strings.NewReader(`{"donor_email":"`+donor+`","amount":"25"}`))
		rr := httptest.NewRecorder()
		app.DonationsCreate(rr, req)
		if rr.Code != http.StatusCreated {
			t.Fatalf("donate as %s: %d", donor, rr.Code)
		}
	}

	rr := httptest.NewRecorder()
	app.DonationsList(rr, httptest.NewRequest(http.MethodGet, "/v1/donations", nil))
	var payload struct {
		Items []domain.DonationRecord `json:"items"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(payload.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(payload.Items))
	}

	rr = httptest.NewRecorder()
	app.DonationsList(rr, httptest.NewRequest(http.MethodGet, "/v1/donations?donor=d1@x.com", nil))
	payload.Items = nil
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("decode filtered: %v", err)
	}
	if len(payload.Items) != 1 || payload.Items[0].DonorIdentity != "d1@x.com" {
		t.Fatalf("filtered items = %+v", payload.Items)
	}
}

func TestDonationsSummary(t *testing.T) {
	app := newTestApp(t)
	submitApplicant(t, app, "r1@x.com")
	submitApplicant(t, app, "r2@x.com")

	donate := func(donor, amount string) {
		req := httptest.NewRequest(http.MethodPost, "/v1/donations",
			strings.NewReader(`{"donor_email":"`+donor+`","amount":"`+amount+`"}`))
		rr := httptest.NewRecorder()
		app.DonationsCreate(rr, req)
		if rr.Code != http.StatusCreated {
			t.Fatalf("donate %s: %d", donor, rr.Code)
		}
	}
	donate("d1@x.com", "100")
	donate("d2@x.com", "300")

	rr := httptest.NewRecorder()
	app.DonationsSummary(rr, httptest.NewRequest(http.MethodGet, "/v1/donations/summary?donor=d1@x.com", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	var summary domain.Summary
	if err := json.NewDecoder(rr.Body).Decode(&summary); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if summary.GlobalTotalCents != 40000 || summary.DonorTotalCents != 10000 {
		t.Fatalf("summary = %+v", summary)
	}
	if summary.Percentage != 25 || summary.Rating != domain.RatingGold {
		t.Fatalf("summary = %+v, want 25%% Gold", summary)
	}

	rr = httptest.NewRecorder()
	app.DonationsSummary(rr, httptest.NewRequest(http.MethodGet, "/v1/donations/summary", nil))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("missing donor: status = %d, want 400", rr.Code)
	}
}

func TestStatsSummary(t *testing.T) {
	app := newTestApp(t)
	submitApplicant(t, app, "r1@x.com")

	req := httptest.NewRequest(http.MethodPost, "/v1/donations",
		strings.NewReader(`{"donor_email":"d1@x.com","amount":"10"}`))
	app.DonationsCreate(httptest.NewRecorder(), req)

	rr := httptest.NewRecorder()
	app.StatsSummary(rr, httptest.NewRequest(http.MethodGet, "/v1/stats", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	var stats domain.Stats
	if err := json.NewDecoder(rr.Body).Decode(&stats); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if stats.RecordCount != 1 || stats.GlobalTotalCents != 1000 {
		t.Fatalf("stats = %+v", stats)
	}
}
