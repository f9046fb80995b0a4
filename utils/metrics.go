package utils

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the service's prometheus collectors.
type Metrics struct {
	checkIns        *prometheus.CounterVec
	rewardSummaries *prometheus.CounterVec
	approvals       prometheus.Counter
	requestDuration *prometheus.HistogramVec
}

var (
	metricsOnce     sync.Once
	metricsRegistry *Metrics
)

// AppMetrics returns the process-wide metrics, registering them on first use.
func AppMetrics() *Metrics {
	metricsOnce.Do(func() {
		metricsRegistry = &Metrics{
			checkIns: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "questhub_checkins_total",
				Help: "Check-in attempts by kind and outcome.",
			}, []string{"kind", "outcome"}),
			rewardSummaries: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "questhub_reward_summaries_total",
				Help: "Reward summary lookups by cache result.",
			}, []string{"cache"}),
			approvals: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "questhub_submission_approvals_total",
				Help: "Approved task submissions that produced a reward distribution.",
			}),
			requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Name:    "questhub_http_request_duration_seconds",
				Help:    "HTTP request latency by route and status.",
				Buckets: prometheus.DefBuckets,
			}, []string{"method", "route", "status"}),
		}
		prometheus.MustRegister(
			metricsRegistry.checkIns,
			metricsRegistry.rewardSummaries,
			metricsRegistry.approvals,
			metricsRegistry.requestDuration,
		)
	})
	return metricsRegistry
}

func (m *Metrics) ObserveCheckIn(kind, outcome string) {
	if m == nil {
		return
	}
	m.checkIns.WithLabelValues(kind, outcome).Inc()
}

func (m *Metrics) ObserveRewardSummary(cacheHit bool) {
	if m == nil {
		return
	}
	label := "miss"
	if cacheHit {
		label = "hit"
	}
	m.rewardSummaries.WithLabelValues(label).Inc()
}

func (m *Metrics) ObserveApproval() {
	if m == nil {
		return
	}
	m.approvals.Inc()
}

func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.requestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}
