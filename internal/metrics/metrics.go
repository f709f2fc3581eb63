package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Login outcomes.
const (
	OutcomeRedirected  = "redirected"
	OutcomeSuccess     = "success"
	OutcomeUnavailable = "provider_unavailable"
	OutcomeState       = "state_mismatch"
	OutcomeExchange    = "token_exchange"
	OutcomeProfile     = "profile_fetch"
	OutcomeIncomplete  = "incomplete_profile"
	OutcomeDenied      = "provider_denied"
	OutcomeInternal    = "internal"
)

type Metrics struct {
	LoginAttempts *prometheus.CounterVec
	PingDuration  prometheus.Histogram
}

// New registers the gateway metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		LoginAttempts: f.NewCounterVec(prometheus.CounterOpts{
			Name: "connect_login_attempts_total",
			Help: "Login requests by provider and outcome",
		}, []string{"provider", "outcome"}),
		PingDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "connect_provider_ping_seconds",
			Help:    "Latency of the provider availability ping",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

func (m *Metrics) Login(provider, outcome string) {
	m.LoginAttempts.WithLabelValues(provider, outcome).Inc()
}

func (m *Metrics) ObservePing(d time.Duration) {
	m.PingDuration.Observe(d.Seconds())
}
