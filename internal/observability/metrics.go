package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Metrics holds the Prometheus counters, histograms, and gauges for one run.
type Metrics struct {
	FilesScanned    prometheus.Counter
	ExtractFailures prometheus.Counter
	Readings        *prometheus.CounterVec // label: category={measured,no_data,undetect,out_of_grid}
	ReportEntries   prometheus.Gauge
	RunDuration     prometheus.Histogram

	// Archive download metrics.
	Downloads     *prometheus.CounterVec // label: outcome={downloaded,skipped,failed}
	DownloadBytes prometheus.Counter
}

// NewMetrics creates and registers all run metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		FilesScanned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "radar_point",
			Name:      "files_scanned_total",
			Help:      "Total grid files considered by the scan.",
		}),
		ExtractFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "radar_point",
			Name:      "extract_failures_total",
			Help:      "Total files that failed to parse or project.",
		}),
		Readings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "radar_point",
			Name:      "readings_total",
			Help:      "Extracted readings by category.",
		}, []string{"category"}),
		ReportEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "radar_point",
			Name:      "report_entries",
			Help:      "Readings that met the threshold in the last run.",
		}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "radar_point",
			Name:      "run_duration_seconds",
			Help:      "Duration of a complete scan run.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		Downloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "radar_point",
			Name:      "downloads_total",
			Help:      "Archive file download attempts by outcome.",
		}, []string{"outcome"}),
		DownloadBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "radar_point",
			Name:      "download_bytes_total",
			Help:      "Total bytes fetched from the archive.",
		}),
	}

	prometheus.MustRegister(
		m.FilesScanned,
		m.ExtractFailures,
		m.Readings,
		m.ReportEntries,
		m.RunDuration,
		m.Downloads,
		m.DownloadBytes,
	)

	return m
}

// NewMetricsForTesting creates Metrics with no registration to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		FilesScanned:    prometheus.NewCounter(prometheus.CounterOpts{Namespace: "radar_point", Name: "files_scanned_total"}),
		ExtractFailures: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "radar_point", Name: "extract_failures_total"}),
		Readings:        prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "radar_point", Name: "readings_total"}, []string{"category"}),
		ReportEntries:   prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "radar_point", Name: "report_entries"}),
		RunDuration:     prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "radar_point", Name: "run_duration_seconds"}),
		Downloads:       prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "radar_point", Name: "downloads_total"}, []string{"outcome"}),
		DownloadBytes:   prometheus.NewCounter(prometheus.CounterOpts{Namespace: "radar_point", Name: "download_bytes_total"}),
	}
}

// Push delivers the run's metrics to a Pushgateway. A one-shot process has no
// scrape surface, so completed runs push instead; run_id keeps overlapping
// invocations apart.
func (m *Metrics) Push(gatewayURL, runID string) error {
	return push.New(gatewayURL, "radar_point").
		Collector(m.FilesScanned).
		Collector(m.ExtractFailures).
		Collector(m.Readings).
		Collector(m.ReportEntries).
		Collector(m.RunDuration).
		Collector(m.Downloads).
		Collector(m.DownloadBytes).
		Grouping("run_id", runID).
		Push()
}
