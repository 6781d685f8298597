package crawler

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for the crawl pipeline.
type Metrics struct {
	Registry         *prometheus.Registry
	PagesFetched     prometheus.Counter
	BlocksLocated    prometheus.Counter
	RecordsExtracted prometheus.Counter
	RecordsKept      prometheus.Counter
	StopsTotal       *prometheus.CounterVec
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	pages := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "crawler_pages_fetched_total",
			Help: "Total catalog pages fetched.",
		},
	)
	blocks := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "crawler_blocks_located_total",
			Help: "Total candidate product blocks located.",
		},
	)
	extracted := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "crawler_records_extracted_total",
			Help: "Total records extracted from candidate blocks.",
		},
	)
	kept := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "crawler_records_kept_total",
			Help: "Total records passing the discount threshold.",
		},
	)
	stops := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crawler_stops_total",
			Help: "Total crawl terminations by stop reason.",
		},
		[]string{"reason"},
	)

	registry.MustRegister(pages, blocks, extracted, kept, stops)

	return &Metrics{
		Registry:         registry,
		PagesFetched:     pages,
		BlocksLocated:    blocks,
		RecordsExtracted: extracted,
		RecordsKept:      kept,
		StopsTotal:       stops,
	}
}

// IncPages increments the fetched pages counter.
func (m *Metrics) IncPages() {
	if m == nil {
		return
	}
	m.PagesFetched.Inc()
}

// AddBlocks adds to the located blocks counter.
func (m *Metrics) AddBlocks(n int) {
	if m == nil {
		return
	}
	m.BlocksLocated.Add(float64(n))
}

// IncExtracted increments the extracted records counter.
func (m *Metrics) IncExtracted() {
	if m == nil {
		return
	}
	m.RecordsExtracted.Inc()
}

// IncKept increments the kept records counter.
func (m *Metrics) IncKept() {
	if m == nil {
		return
	}
	m.RecordsKept.Inc()
}

// IncStop increments the stop counter for a reason label.
func (m *Metrics) IncStop(reason StopReason) {
	if m == nil {
		return
	}
	m.StopsTotal.WithLabelValues(string(reason)).Inc()
}
