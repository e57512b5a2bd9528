package handlers

import (
	"net/http"
	"strings"
)

// DonationsSummary computes the per-donor contribution view: totals,
// percentage share and tier rating.
func (a *App) DonationsSummary(w http.ResponseWriter, r *http.Request) {
	donor := strings.TrimSpace(r.URL.Query().Get("donor"))
	if donor == "" {
		a.error(w, http.StatusBadRequest, "invalid_request", "donor query parameter is required")
		return
	}

	summary, err := a.Engine.ComputeSummary(r.Context(), donor)
	if err != nil {
		a.domainError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, summary)
}

// StatsSummary renders the global reporting view for dashboards.
func (a *App) StatsSummary(w http.ResponseWriter, r *http.Request) {
	stats, err := a.Engine.ComputeStats(r.Context())
	if err != nil {
		a.domainError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, stats)
}
