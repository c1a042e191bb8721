package metrics

import "github.com/prometheus/client_golang/prometheus"

// DomainMetrics records platform-level counters for the auth gate and the
// rating engine.
type DomainMetrics struct {
	authFailures      *prometheus.CounterVec
	ratingSubmissions *prometheus.CounterVec
	upsertRetries     prometheus.Counter
}

// NewDomainMetrics registers the domain metrics on the provided registerer.
func NewDomainMetrics(reg prometheus.Registerer) *DomainMetrics {
	if reg == nil {
		return &DomainMetrics{}
	}
	authFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_failures_total",
		Help: "Rejected authentication attempts partitioned by stage.",
	}, []string{"stage"})
	ratingSubmissions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rating_submissions_total",
		Help: "Rating submissions partitioned by outcome (created/updated).",
	}, []string{"outcome"})
	upsertRetries := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rating_upsert_retries_total",
		Help: "Rating inserts that lost a race and retried as updates.",
	})
	reg.MustRegister(authFailures, ratingSubmissions, upsertRetries)
	return &DomainMetrics{
		authFailures:      authFailures,
		ratingSubmissions: ratingSubmissions,
		upsertRetries:     upsertRetries,
	}
}

// IncAuthFailure counts a rejected authentication attempt.
func (d *DomainMetrics) IncAuthFailure(stage string) {
	if d == nil || d.authFailures == nil {
		return
	}
	d.authFailures.WithLabelValues(normalizeLabel(stage)).Inc()
}

// IncRatingSubmission counts a successful rating submission.
func (d *DomainMetrics) IncRatingSubmission(outcome string) {
	if d == nil || d.ratingSubmissions == nil {
		return
	}
	d.ratingSubmissions.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncUpsertRetry counts an insert converted to an update after a unique
// constraint race.
func (d *DomainMetrics) IncUpsertRetry() {
	if d == nil || d.upsertRetries == nil {
		return
	}
	d.upsertRetries.Inc()
}
