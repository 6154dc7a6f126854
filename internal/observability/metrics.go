package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// fetch tooling and mirror service.
type Metrics struct {
	// Archive retrieval metrics.
	Downloads        *prometheus.CounterVec   // labels: source={aws,nomads}, outcome={success,error}
	DownloadBytes    prometheus.Counter
	DownloadDuration *prometheus.HistogramVec // labels: source={aws,nomads}
	Probes           *prometheus.CounterVec   // labels: source={aws,nomads}, outcome={found,missing,error}
	ProbeCache       *prometheus.CounterVec   // labels: result={hit,miss}

	// Mirror loop metrics.
	MirrorRunning   prometheus.Gauge
	CyclesCompleted prometheus.Counter
	FetchErrors     prometheus.Counter

	// Synoptic observation API metrics.
	SynopticRequests *prometheus.CounterVec // labels: outcome={success,error}
	SynopticDuration prometheus.Histogram
	ObservationRows  prometheus.Counter
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.Downloads,
		m.DownloadBytes,
		m.DownloadDuration,
		m.Probes,
		m.ProbeCache,
		m.MirrorRunning,
		m.CyclesCompleted,
		m.FetchErrors,
		m.SynopticRequests,
		m.SynopticDuration,
		m.ObservationRows,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		Downloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "naqfc_fetch",
			Name:      "downloads_total",
			Help:      "Artifact downloads by archive source and outcome.",
		}, []string{"source", "outcome"}),
		DownloadBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "naqfc_fetch",
			Name:      "download_bytes_total",
			Help:      "Total bytes of grib2 data written to disk.",
		}),
		DownloadDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "naqfc_fetch",
			Name:      "download_duration_seconds",
			Help:      "Duration of a complete artifact download.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}, []string{"source"}),
		Probes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "naqfc_fetch",
			Name:      "probes_total",
			Help:      "HEAD existence probes by archive source and outcome.",
		}, []string{"source", "outcome"}),
		ProbeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "naqfc_fetch",
			Name:      "probe_cache_total",
			Help:      "Probe cache lookups by result.",
		}, []string{"result"}),
		MirrorRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "naqfc_fetch",
			Name:      "mirror_running",
			Help:      "1 when the mirror loop is active, 0 when shut down.",
		}),
		CyclesCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "naqfc_fetch",
			Name:      "cycles_completed_total",
			Help:      "Forecast cycles fully mirrored.",
		}),
		FetchErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "naqfc_fetch",
			Name:      "fetch_errors_total",
			Help:      "Artifact fetch failures inside the mirror loop.",
		}),
		SynopticRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "naqfc_fetch",
			Name:      "synoptic_requests_total",
			Help:      "Synoptic API requests by outcome.",
		}, []string{"outcome"}),
		SynopticDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "naqfc_fetch",
			Name:      "synoptic_request_duration_seconds",
			Help:      "Synoptic API request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		ObservationRows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "naqfc_fetch",
			Name:      "observation_rows_total",
			Help:      "Observation rows returned by the Synoptic API.",
		}),
	}
}
