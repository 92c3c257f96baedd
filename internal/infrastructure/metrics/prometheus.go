// Package metrics implements ports.Metrics with Prometheus collectors.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/0xcro3dile/voices-of-independence/internal/domain/entities"
)

const namespace = "voices"

// Recorder counts submissions and times gateway calls on its own registry.
type Recorder struct {
	registry    *prometheus.Registry
	submissions *prometheus.CounterVec
	rejections  *prometheus.CounterVec
	latency     *prometheus.HistogramVec
}

// NewRecorder registers the collectors on a fresh registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submissions_total",
			Help:      "Completed submissions by persona and outcome.",
		}, []string{"mode", "outcome"}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submit_rejections_total",
			Help:      "Submissions refused before reaching the backend.",
		}, []string{"kind"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "gateway_request_seconds",
			Help:      "Backend round trip time.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"outcome"}),
	}
	r.registry.MustRegister(r.submissions, r.rejections, r.latency)
	return r
}

// ObserveSubmission records one finished gateway call. An empty kind is a success.
func (r *Recorder) ObserveSubmission(persona entities.Persona, kind entities.ErrorKind, elapsed time.Duration) {
	outcome := outcomeLabel(kind)
	r.submissions.WithLabelValues(string(persona), outcome).Inc()
	r.latency.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

func (r *Recorder) ObserveRejection(kind entities.ErrorKind) {
	r.rejections.WithLabelValues(string(kind)).Inc()
}

// Handler exposes the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

func outcomeLabel(kind entities.ErrorKind) string {
	if kind == entities.ErrorKindNone {
		return "success"
	}
	return string(kind)
}
