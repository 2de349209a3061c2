package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	postOutcomes    *prom.CounterVec
	postDuration    prom.Histogram
	pendingImages   prom.Gauge
	lastPostedIndex prom.Gauge
}

// NewPrometheusRecorder constructs and registers Prometheus metrics on the
// given registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		postOutcomes: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "storyposter",
			Name:      "post_outcomes_total",
			Help:      "Publish attempt counts by outcome",
		}, []string{"outcome"}),
		postDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: "storyposter",
			Name:      "post_duration_seconds",
			Help:      "Duration of publish attempts",
			Buckets:   prom.DefBuckets,
		}),
		pendingImages: prom.NewGauge(prom.GaugeOpts{
			Namespace: "storyposter",
			Name:      "pending_images",
			Help:      "Number of images not yet posted",
		}),
		lastPostedIndex: prom.NewGauge(prom.GaugeOpts{
			Namespace: "storyposter",
			Name:      "last_posted_index",
			Help:      "Persisted index of the last successfully posted image (-1 = none)",
		}),
	}
	reg.MustRegister(pr.postOutcomes, pr.postDuration, pr.pendingImages, pr.lastPostedIndex)
	return pr
}

func (p *PrometheusRecorder) IncPostOutcome(outcome Outcome) {
	p.postOutcomes.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) ObservePostDuration(d time.Duration) {
	p.postDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) SetPendingImages(n int) {
	p.pendingImages.Set(float64(n))
}

func (p *PrometheusRecorder) SetLastPostedIndex(index int) {
	p.lastPostedIndex.Set(float64(index))
}
