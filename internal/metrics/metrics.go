// Package metrics exposes Prometheus counters for the donation pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics bundles the service counters. A nil *Metrics is a no-op so tests
// and callers that do not care about instrumentation can pass nothing.
type Metrics struct {
	DonationsTotal      prometheus.Counter
	DonationCentsTotal  prometheus.Counter
	DonationFailures    *prometheus.CounterVec
	ClaimContention     prometheus.Counter
	QueueSubmissions    prometheus.Counter
	QueueReleases       prometheus.Counter
	LeaseExpiryReleases prometheus.Counter
}

// New registers the counters on the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		DonationsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "financetrack_donations_total",
			Help: "Donations successfully appended to the ledger.",
		}),
		DonationCentsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "financetrack_donation_cents_total",
			Help: "Total donated amount in cents.",
		}),
		DonationFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "financetrack_donation_failures_total",
			Help: "Failed donation attempts by reason.",
		}, []string{"reason"}),
		ClaimContention: factory.NewCounter(prometheus.CounterOpts{
			Name: "financetrack_claim_contention_total",
			Help: "Claim attempts that lost the race for a queue entry.",
		}),
		QueueSubmissions: factory.NewCounter(prometheus.CounterOpts{
			Name: "financetrack_queue_submissions_total",
			Help: "Applicants accepted into the assistance queue.",
		}),
		QueueReleases: factory.NewCounter(prometheus.CounterOpts{
			Name: "financetrack_queue_releases_total",
			Help: "Claimed entries returned to pending after a failed donation.",
		}),
		LeaseExpiryReleases: factory.NewCounter(prometheus.CounterOpts{
			Name: "financetrack_lease_expiry_releases_total",
			Help: "Claimed entries auto-released because their lease lapsed.",
		}),
	}
}

func (m *Metrics) DonationSucceeded(amountCents int64) {
	if m == nil {
		return
	}
	m.DonationsTotal.Inc()
	m.DonationCentsTotal.Add(float64(amountCents))
}

func (m *Metrics) DonationFailed(reason string) {
	if m == nil {
		return
	}
	m.DonationFailures.WithLabelValues(reason).Inc()
}

func (m *Metrics) ClaimLost() {
	if m == nil {
		return
	}
	m.ClaimContention.Inc()
}

func (m *Metrics) Submitted() {
	if m == nil {
		return
	}
	m.QueueSubmissions.Inc()
}

func (m *Metrics) Released() {
	if m == nil {
		return
	}
	m.QueueReleases.Inc()
}

func (m *Metrics) LeaseExpired(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.LeaseExpiryReleases.Add(float64(n))
}
