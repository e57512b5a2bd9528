// Package handlers exposes the donation ledger and assistance queue over
// HTTP. Handlers translate domain errors into the API's status codes and
// never leak internal storage errors to clients.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"financetrack/internal/aggregate"
	"financetrack/internal/domain"
	"financetrack/internal/match"
	"financetrack/internal/metrics"
	"financetrack/internal/middleware"
)

// App is the handler container wired in cmd/api.
type App struct {
	Queue       domain.AssistanceQueue
	Ledger      domain.LedgerStore
	Coordinator *match.Coordinator
	Engine      *aggregate.Engine
	Metrics     *metrics.Metrics
	Logger      zerolog.Logger
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, errCode, message string) {
	a.json(w, code, map[string]any{"error": errCode, "message": message})
}

// domainError maps a domain error onto the API surface, localizing the
// user-visible messages. Unknown errors become a generic 500 so internal
// details stay out of responses.
func (a *App) domainError(w http.ResponseWriter, r *http.Request, err error) {
	locale := middleware.LocaleFromContext(r.Context())
	switch {
	case errors.Is(err, domain.ErrInvalidRequest), errors.Is(err, domain.ErrInvalidRecord):
		a.error(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, domain.ErrQueueEmpty):
		a.error(w, http.StatusNotFound, "queue_empty", msgNoRecipients.forLocale(locale))
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, http.StatusNotFound, "not_found", "not found")
	case errors.Is(err, domain.ErrDuplicateApplicant):
		a.error(w, http.StatusConflict, "duplicate_applicant", msgDuplicateApplicant.forLocale(locale))
	case errors.Is(err, domain.ErrAlreadyClaimed), errors.Is(err, domain.ErrContended):
		a.error(w, http.StatusConflict, "contended", msgTryAgain.forLocale(locale))
	default:
		a.Logger.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		a.error(w, http.StatusInternalServerError, "internal", msgInternal.forLocale(locale))
	}
}

// User-visible strings, keyed by negotiated locale. English is the
// fallback for any locale missing a key.
var (
	msgNoRecipients = localized{
		"en": "no recipients available",
		"es": "no hay beneficiarios disponibles",
	}
	msgTryAgain = localized{
		"en": "another donation is in progress, please try again",
		"es": "hay otra donación en curso, inténtelo de nuevo",
	}
	msgDuplicateApplicant = localized{
		"en": "an application for this email is already in the queue",
		"es": "ya existe una solicitud en la cola para este correo",
	}
	msgInternal = localized{
		"en": "something went wrong, please try again later",
		"es": "algo salió mal, inténtelo más tarde",
	}
)

type localized map[string]string

func (l localized) forLocale(locale string) string {
	if msg, ok := l[locale]; ok {
		return msg
	}
	return l["en"]
}
