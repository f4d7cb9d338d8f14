package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type ApplicationMetrics struct {
	LastRefresh     prometheus.Gauge
	RefreshDuration prometheus.Gauge
	// only make the total testers updatable from the tester metrics methods
	testersTotal prometheus.Gauge
}

var (
	applicationMetrics *ApplicationMetrics
	once               sync.Once
)

func GetApplicationMetrics() *ApplicationMetrics {
	once.Do(func() {
		applicationMetrics = &ApplicationMetrics{
			LastRefresh: prometheus.NewGauge(prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_refresh_at",
				Help:      "Unix timestamp of the last completed refresh of all testers",
			}),
			RefreshDuration: prometheus.NewGauge(prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "refresh_duration_seconds",
				Help:      "Duration of the last refresh of all testers",
			}),
			testersTotal: prometheus.NewGauge(prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystemTesters,
				Name:      "total",
				Help:      "Total number of registered testers",
			}),
		}

		registry.MustRegister(applicationMetrics.LastRefresh)
		registry.MustRegister(applicationMetrics.RefreshDuration)
		registry.MustRegister(applicationMetrics.testersTotal)
	})

	return applicationMetrics
}

// RefreshCompleted records a refresh which started at started and ended at now
func (m *ApplicationMetrics) RefreshCompleted(started time.Time, now time.Time) {
	m.LastRefresh.Set(float64(now.Unix()))
	m.RefreshDuration.Set(now.Sub(started).Seconds())
}
