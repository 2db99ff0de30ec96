// Package metrics exposes Prometheus counters for question generation,
// duplicate filtering and the HTTP layer.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/abhisek/calcmaster/internal/questiongen"
)

// Metrics satisfies questiongen.Observer and dedup.Observer.
type Metrics struct {
	reg *prometheus.Registry

	generated   *prometheus.CounterVec
	fallbacks   *prometheus.CounterVec
	dropped     *prometheus.CounterVec
	quizzes     *prometheus.CounterVec
	requests    *prometheus.CounterVec
	reqDuration *prometheus.HistogramVec
}

// New registers every collector on a fresh registry, along with the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		reg: reg,
		generated: f.NewCounterVec(prometheus.CounterOpts{
			Name: "calcmaster_questions_generated_total",
			Help: "Questions generated by topic and tier",
		}, []string{"topic", "difficulty"}),
		fallbacks: f.NewCounterVec(prometheus.CounterOpts{
			Name: "calcmaster_generator_fallbacks_total",
			Help: "Generator fallbacks by topic and reason",
		}, []string{"topic", "reason"}),
		dropped: f.NewCounterVec(prometheus.CounterOpts{
			Name: "calcmaster_questions_dropped_total",
			Help: "Questions removed by the duplicate filter by reason",
		}, []string{"reason"}),
		quizzes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "calcmaster_quizzes_served_total",
			Help: "Quizzes served by kind",
		}, []string{"kind"}),
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "calcmaster_http_requests_total",
			Help: "HTTP requests by route and status",
		}, []string{"route", "status"}),
		reqDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "calcmaster_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~2s
		}, []string{"route"}),
	}
}

func (m *Metrics) QuestionGenerated(t questiongen.Topic, d questiongen.Difficulty) {
	m.generated.WithLabelValues(string(t), string(d)).Inc()
}

func (m *Metrics) Fallback(t questiongen.Topic, reason string) {
	m.fallbacks.WithLabelValues(string(t), reason).Inc()
}

func (m *Metrics) Dropped(reason string) {
	m.dropped.WithLabelValues(reason).Inc()
}

// QuizServed counts a quiz of the given kind: a topic name, "general"
// or "personalized".
func (m *Metrics) QuizServed(kind string) {
	m.quizzes.WithLabelValues(kind).Inc()
}

// ObserveRequest records one finished HTTP request.
func (m *Metrics) ObserveRequest(route string, status int, elapsed time.Duration) {
	m.requests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	m.reqDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}
