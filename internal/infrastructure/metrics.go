package infrastructure

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus instruments for the merge service.
type Metrics struct {
	registry *prometheus.Registry

	MergeRequests *prometheus.CounterVec
	FilesParsed   prometheus.Counter
	RowsMerged    prometheus.Counter
	MergeDuration prometheus.Histogram
}

// NewMetrics creates a metrics registry with process and Go collectors plus
// the merge-specific instruments.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		MergeRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mcmerge",
			Name:      "merge_requests_total",
			Help:      "Merge requests processed, labelled by outcome.",
		}, []string{"outcome"}),
		FilesParsed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "mcmerge",
			Name:      "files_parsed_total",
			Help:      "Allocation export files successfully parsed.",
		}),
		RowsMerged: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "mcmerge",
			Name:      "rows_merged_total",
			Help:      "Source rows carried into consolidated workbooks.",
		}),
		MergeDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "mcmerge",
			Name:      "merge_duration_seconds",
			Help:      "End-to-end merge request duration.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

// Handler returns the HTTP handler serving the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
