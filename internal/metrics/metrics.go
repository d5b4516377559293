package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for credit decisions and the HTTP API.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	// Decisions by outcome ("approved", "rejected")
	Decisions *prometheus.CounterVec

	// Rule failures by rule id
	RuleFailures *prometheus.CounterVec

	// Evaluations that fell back to the rule-only probability
	ScoringFallbacks prometheus.Counter

	EvaluateLatency prometheus.Histogram

	// HTTP requests by route template, method and status code
	Requests *prometheus.CounterVec
}

// New registers the service metrics on reg
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Decisions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "credit_decisions_total",
			Help: "Total credit decisions by outcome",
		}, []string{"outcome"}),

		RuleFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "credit_rule_failures_total",
			Help: "Total rule failures by rule",
		}, []string{"rule"}),

		ScoringFallbacks: f.NewCounter(prometheus.CounterOpts{
			Name: "credit_scoring_fallbacks_total",
			Help: "Evaluations where the scoring model was unavailable",
		}),

		EvaluateLatency: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "credit_evaluate_duration_seconds",
			Help:    "Duration of credit analysis including the client lookup",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),

		Requests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "credit_http_requests_total",
			Help: "HTTP requests by route, method and status",
		}, []string{"route", "method", "status"}),
	}
}

// ObserveDecision records one decision and the rules it failed
func (m *Metrics) ObserveDecision(approved bool, failedRules []string, scoringFallback bool) {
	if m == nil {
		return
	}
	outcome := "rejected"
	if approved {
		outcome = "approved"
	}
	m.Decisions.WithLabelValues(outcome).Inc()
	for _, rule := range failedRules {
		m.RuleFailures.WithLabelValues(rule).Inc()
	}
	if scoringFallback {
		m.ScoringFallbacks.Inc()
	}
}

// ObserveEvaluateLatency records the duration of one analysis
func (m *Metrics) ObserveEvaluateLatency(d time.Duration) {
	if m != nil {
		m.EvaluateLatency.Observe(d.Seconds())
	}
}

// IncrementRequest records a served HTTP request
func (m *Metrics) IncrementRequest(route, method, status string) {
	if m != nil {
		m.Requests.WithLabelValues(route, method, status).Inc()
	}
}
