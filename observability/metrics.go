package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusMetrics records render metrics in Prometheus collectors.
type PrometheusMetrics struct {
	duration prometheus.Histogram
	pages    prometheus.Histogram
	failures *prometheus.CounterVec
}

// NewPrometheusMetrics creates the render collectors and registers them
// with registerer, or the default registerer when nil.
func NewPrometheusMetrics(registerer prometheus.Registerer) (*PrometheusMetrics, error) {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	m := &PrometheusMetrics{
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    MetricRenderDuration,
			Help:    "Time spent laying out and serializing one invoice.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
		pages: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    MetricRenderPages,
			Help:    "Pages per rendered invoice.",
			Buckets: []float64{1, 2, 3, 5, 10, 20},
		}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricRenderFailures,
			Help: "Failed renders by error kind.",
		}, []string{"kind"}),
	}
	for _, c := range []prometheus.Collector{m.duration, m.pages, m.failures} {
		if err := registerer.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *PrometheusMetrics) ObserveRender(d time.Duration, pages int) {
	if m == nil {
		return
	}
	m.duration.Observe(d.Seconds())
	m.pages.Observe(float64(pages))
}

func (m *PrometheusMetrics) RenderFailed(kind string) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(kind).Inc()
}
