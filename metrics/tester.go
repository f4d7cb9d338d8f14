package metrics

import (
	"time"

	"github.com/dreitier/testermon/tester"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	LabelNameMode    = "mode"
	LabelNameSerial  = "serial_number"
	LabelNameProduct = "product"
	LabelNameVersion = "firmware_version"
)

// TesterMetric exports the activity of one tester. It is registered as the
// session's tester.Observer.
type TesterMetric struct {
	connected       prometheus.Gauge
	queryDuration   prometheus.Histogram
	slowQueries     prometheus.Counter
	downloads       *prometheus.CounterVec
	downloadedBytes *prometheus.CounterVec
	missingFiles    prometheus.Counter
	storageUsed     prometheus.Gauge
	storageFree     prometheus.Gauge
	info            *prometheus.GaugeVec
	lastCheckedAt   prometheus.Gauge
}

func NewTester(testerName string) *TesterMetric {
	GetApplicationMetrics().testersTotal.Inc()

	presetLabels := map[string]string{"tester": testerName}
	m := &TesterMetric{
		connected: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Subsystem:   subsystem,
			Name:        "connected",
			Help:        "Indicates whether the last connection attempt to this tester succeeded.",
			ConstLabels: presetLabels,
		}),
		queryDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   namespace,
			Subsystem:   subsystem,
			Name:        "query_duration_seconds",
			Help:        "Elapsed time of the queries sent to this tester.",
			Buckets:     []float64{.01, .05, .1, .25, .5, 1, 2, 3, 5, 10},
			ConstLabels: presetLabels,
		}),
		slowQueries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   subsystem,
			Name:        "slow_queries_total",
			Help:        "The amount of queries which exceeded the query time limit.",
			ConstLabels: presetLabels,
		}),
		downloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   subsystemDownloads,
			Name:        "total",
			Help:        "The amount of files downloaded from this tester.",
			ConstLabels: presetLabels,
		}, []string{
			LabelNameMode,
		}),
		downloadedBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   subsystemDownloads,
			Name:        "bytes_total",
			Help:        "The amount of bytes downloaded from this tester.",
			ConstLabels: presetLabels,
		}, []string{
			LabelNameMode,
		}),
		missingFiles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Subsystem:   subsystemDownloads,
			Name:        "missing_total",
			Help:        "The amount of configured files which did not exist on this tester.",
			ConstLabels: presetLabels,
		}),
		storageUsed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Subsystem:   subsystem,
			Name:        "storage_used_bytes",
			Help:        "The amount of bytes used on the tester's filesystem.",
			ConstLabels: presetLabels,
		}),
		storageFree: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Subsystem:   subsystem,
			Name:        "storage_free_bytes",
			Help:        "The amount of bytes left on the tester's filesystem.",
			ConstLabels: presetLabels,
		}),
		info: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   namespace,
			Subsystem:   subsystem,
			Name:        "info",
			Help:        "Identification of the tester, the value is always 1.",
			ConstLabels: presetLabels,
		}, []string{
			LabelNameSerial,
			LabelNameProduct,
			LabelNameVersion,
		}),
		lastCheckedAt: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Subsystem:   subsystem,
			Name:        "last_checked_at",
			Help:        "Unix timestamp of the last successful base info check.",
			ConstLabels: presetLabels,
		}),
	}

	registry.MustRegister(m.connected)
	registry.MustRegister(m.queryDuration)
	registry.MustRegister(m.slowQueries)
	registry.MustRegister(m.downloads)
	registry.MustRegister(m.downloadedBytes)
	registry.MustRegister(m.missingFiles)
	registry.MustRegister(m.storageUsed)
	registry.MustRegister(m.storageFree)
	registry.MustRegister(m.info)
	registry.MustRegister(m.lastCheckedAt)
	return m
}

func (m *TesterMetric) Drop() {
	registry.Unregister(m.connected)
	registry.Unregister(m.queryDuration)
	registry.Unregister(m.slowQueries)
	registry.Unregister(m.downloads)
	registry.Unregister(m.downloadedBytes)
	registry.Unregister(m.missingFiles)
	registry.Unregister(m.storageUsed)
	registry.Unregister(m.storageFree)
	registry.Unregister(m.info)
	registry.Unregister(m.lastCheckedAt)

	GetApplicationMetrics().testersTotal.Dec()
}

func (m *TesterMetric) Connected(connected bool) {
	if connected {
		m.connected.Set(1)
	} else {
		m.connected.Set(0)
	}
}

func (m *TesterMetric) QueryCompleted(_ string, elapsed time.Duration, slow bool) {
	m.queryDuration.Observe(elapsed.Seconds())

	if slow {
		m.slowQueries.Inc()
	}
}

func (m *TesterMetric) FileDownloaded(mode tester.TransferMode, bytes int) {
	m.downloads.WithLabelValues(mode.String()).Inc()
	m.downloadedBytes.WithLabelValues(mode.String()).Add(float64(bytes))
}

func (m *TesterMetric) FileMissing() {
	m.missingFiles.Inc()
}

// UpdateBaseInfo replaces the info labels and the storage usage
func (m *TesterMetric) UpdateBaseInfo(info *tester.BaseInfo, checkedAt time.Time) {
	m.info.Reset()
	m.info.WithLabelValues(info.SerialNumber, info.ProductName, info.FirmwareVersion).Set(1)
	m.lastCheckedAt.Set(float64(checkedAt.Unix()))

	if info.Storage != nil {
		m.storageUsed.Set(info.Storage.UsedBytes)
		m.storageFree.Set(info.Storage.FreeBytes)
	}
}
