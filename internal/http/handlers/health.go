package handlers

import "net/http"

// Health reports process liveness. It deliberately does not touch the
// storage backend, so a database outage degrades the API without flapping
// the liveness probe.
func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "financetrack",
	})
}
