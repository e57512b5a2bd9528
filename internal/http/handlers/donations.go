package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"financetrack/internal/domain"
)

type donationRequest struct {
	DonorEmail string `json:"donor_email"`
	Amount     string `json:"amount"`
}

// DonationsCreate matches the donor with the next recipient in the queue
// and records the transfer. The recipient is chosen server side; clients
// never name one.
func (a *App) DonationsCreate(w http.ResponseWriter, r *http.Request) {
	var req donationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "invalid_request", "invalid payload")
		return
	}
	req.DonorEmail = strings.TrimSpace(req.DonorEmail)
	if req.DonorEmail == "" {
		a.error(w, http.StatusBadRequest, "invalid_request", "donor_email is required")
		return
	}
	amountCents, err := domain.ParseAmountCents(req.Amount)
	if err != nil {
		a.domainError(w, r, err)
		return
	}

	record, err := a.Coordinator.Donate(r.Context(), req.DonorEmail, amountCents)
	if err != nil {
		a.domainError(w, r, err)
		return
	}
	a.json(w, http.StatusCreated, record)
}

// DonationsList renders the ledger, optionally filtered by donor.
func (a *App) DonationsList(w http.ResponseWriter, r *http.Request) {
	donor := strings.TrimSpace(r.URL.Query().Get("donor"))

	var items []domain.DonationRecord
	var err error
	if donor != "" {
		items, err = a.Ledger.FindByDonor(r.Context(), donor)
	} else {
		err = a.Ledger.Scan(r.Context(), func(rec domain.DonationRecord) error {
			items = append(items, rec)
			return nil
		})
	}
	if err != nil {
		a.domainError(w, r, err)
		return
	}
	if items == nil {
		items = []domain.DonationRecord{}
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}
