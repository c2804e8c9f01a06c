// Package metrics holds the Prometheus collectors of the auth server and
// the handler that exposes them.
package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "gophauth"

// Login outcomes used as the "result" label of logins_total.
const (
	ResultIssued   = "issued"
	ResultAwaiting = "awaiting_second_factor"
	ResultVerified = "verified"
	ResultRejected = "rejected"
	ResultError    = "error"
)

// Metrics is safe to use through a nil pointer; every method is then a no-op.
type Metrics struct {
	registry *prometheus.Registry

	credentialsIssued  prometheus.Counter
	credentialsRevoked prometheus.Counter
	logins             *prometheus.CounterVec
	otpChecks          *prometheus.CounterVec
	keysSwept          prometheus.Counter
	sweepDuration      prometheus.Histogram
	rpcDuration        *prometheus.HistogramVec
}

// New creates the collectors and registers them on a fresh registry.
// activeKeys, when non-nil, is sampled on every scrape.
func New(activeKeys func() int) (*Metrics, error) {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		credentialsIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "credentials_issued_total",
			Help:      "Credentials issued.",
		}),
		credentialsRevoked: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "credentials_revoked_total",
			Help:      "Credentials invalidated by logout.",
		}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logins_total",
			Help:      "Login attempts by flow and result.",
		}, []string{"flow", "result"}),
		otpChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "otp_checks_total",
			Help:      "One-time code verifications by outcome.",
		}, []string{"valid"}),
		keysSwept: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "keys_swept_total",
			Help:      "Signing keys removed by the expiry sweep.",
		}),
		sweepDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sweep_duration_seconds",
			Help:      "Duration of key store sweeps.",
			Buckets:   []float64{0.0001, 0.001, 0.01, 0.1, 1},
		}),
		rpcDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rpc_duration_seconds",
			Help:      "gRPC handling latency by method and status code.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "code"}),
	}

	collectors := []prometheus.Collector{
		m.credentialsIssued, m.credentialsRevoked, m.logins, m.otpChecks,
		m.keysSwept, m.sweepDuration, m.rpcDuration,
	}
	if activeKeys != nil {
		collectors = append(collectors, prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_keys",
			Help:      "Signing keys currently held.",
		}, func() float64 { return float64(activeKeys()) }))
	}

	var errs []error
	for _, c := range collectors {
		errs = append(errs, m.registry.Register(c))
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	return m, nil
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Gatherer exposes the registry, mainly for tests.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	if m == nil {
		return prometheus.NewRegistry()
	}
	return m.registry
}

func (m *Metrics) CredentialIssued() {
	if m != nil {
		m.credentialsIssued.Inc()
	}
}

func (m *Metrics) CredentialRevoked() {
	if m != nil {
		m.credentialsRevoked.Inc()
	}
}

func (m *Metrics) Login(flow, result string) {
	if m != nil {
		m.logins.WithLabelValues(flow, result).Inc()
	}
}

func (m *Metrics) OTPCheck(valid bool) {
	if m == nil {
		return
	}
	label := "false"
	if valid {
		label = "true"
	}
	m.otpChecks.WithLabelValues(label).Inc()
}

func (m *Metrics) Swept(n int, took time.Duration) {
	if m != nil {
		m.keysSwept.Add(float64(n))
		m.sweepDuration.Observe(took.Seconds())
	}
}

func (m *Metrics) RPC(method, code string, took time.Duration) {
	if m != nil {
		m.rpcDuration.WithLabelValues(method, code).Observe(took.Seconds())
	}
}
