package handlers

import (
	"encoding/json"
	"net/http"
	"net/mail"
	"strings"
)

type submitRequest struct {
	Email         string `json:"email"`
	Description   string `json:"description"`
	ProofFilename string `json:"proof_filename"`
}

// AssistanceSubmit enqueues a low-income applicant and returns their
// 1-based position among pending entries.
func (a *App) AssistanceSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "invalid_request", "invalid payload")
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" {
		a.error(w, http.StatusBadRequest, "invalid_request", "email is required")
		return
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		a.error(w, http.StatusBadRequest, "invalid_request", "email is not a valid address")
		return
	}

	position, err := a.Queue.Submit(r.Context(), req.Email, req.Description, req.ProofFilename)
	if err != nil {
		a.domainError(w, r, err)
		return
	}
	a.Metrics.Submitted()
	a.Logger.Info().Str("applicant", req.Email).Int("position", position).Msg("applicant queued")
	a.json(w, http.StatusCreated, map[string]any{"position": position})
}

// AssistanceNext reports the current queue head without claiming it. Any
// dashboard may poll this; the claim happens only inside the donation flow.
func (a *App) AssistanceNext(w http.ResponseWriter, r *http.Request) {
	entry, err := a.Queue.PeekNext(r.Context())
	if err != nil {
		a.domainError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"email":        entry.Identity,
		"submitted_at": entry.SubmittedAt,
	})
}
