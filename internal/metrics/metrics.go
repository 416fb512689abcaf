package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector owns a private registry so tests can build isolated instances.
type Collector struct {
	registry *prometheus.Registry

	Probes         *prometheus.CounterVec
	ProbeDurations prometheus.Histogram
	TargetsAdded   prometheus.Counter
	AlertsSent     *prometheus.CounterVec
}

func New() *Collector {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	registry.MustRegister(collectors.NewGoCollector())

	factory := promauto.With(registry)
	return &Collector{
		registry: registry,
		Probes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pingprobe_probes_total",
			Help: "Probes performed, by verdict",
		}, []string{"verdict"}),
		ProbeDurations: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "pingprobe_probe_duration_seconds",
			Help:    "Wall-clock duration of ping invocations",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		TargetsAdded: factory.NewCounter(prometheus.CounterOpts{
			Name: "pingprobe_targets_added_total",
			Help: "Targets registered through the API",
		}),
		AlertsSent: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pingprobe_alerts_sent_total",
			Help: "Notifications sent, by kind",
		}, []string{"kind"}),
	}
}

func (c *Collector) ObserveProbe(verdict string, seconds float64) {
	c.Probes.WithLabelValues(verdict).Inc()
	c.ProbeDurations.Observe(seconds)
}

// Handler serves the registry for the /metrics route.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
