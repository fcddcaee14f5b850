package metrics

import (
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusRecorder implements Recorder with Prometheus collectors.
type PrometheusRecorder struct {
	conversions    *prom.HistogramVec
	jobOutcomes    *prom.CounterVec
	queueDepth     prom.Gauge
	publishRetries prom.Counter
}

// NewPrometheusRecorder registers its collectors on reg. A nil reg gets a
// fresh registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		conversions: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "adocgest",
			Name:      "conversion_duration_seconds",
			Help:      "Duration of document conversions",
			Buckets:   prom.DefBuckets,
		}, []string{"outcome"}),
		jobOutcomes: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "adocgest",
			Name:      "job_outcomes_total",
			Help:      "Finished jobs by final status",
		}, []string{"outcome"}),
		queueDepth: prom.NewGauge(prom.GaugeOpts{
			Namespace: "adocgest",
			Name:      "queue_depth",
			Help:      "Jobs waiting for a worker",
		}),
		publishRetries: prom.NewCounter(prom.CounterOpts{
			Namespace: "adocgest",
			Name:      "publish_retries_total",
			Help:      "Publisher requests retried after a transient failure",
		}),
	}
	reg.MustRegister(pr.conversions, pr.jobOutcomes, pr.queueDepth, pr.publishRetries)
	return pr
}

func (p *PrometheusRecorder) ObserveConversion(d time.Duration, outcome Outcome) {
	p.conversions.WithLabelValues(string(outcome)).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncJobOutcome(outcome Outcome) {
	p.jobOutcomes.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) SetQueueDepth(n int) { p.queueDepth.Set(float64(n)) }

func (p *PrometheusRecorder) IncPublishRetry() { p.publishRetries.Inc() }

// HTTPHandler serves the metrics gathered by reg.
func HTTPHandler(reg *prom.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
