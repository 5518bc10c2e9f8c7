package portal

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks portal rejection activity.
type Metrics struct {
	Rejections *prometheus.CounterVec
	Sessions   prometheus.Gauge
}

// NewMetrics registers the portal metrics with reg, or with a private
// registry when reg is nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	return &Metrics{
		Rejections: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "decline_rejections_total",
			Help: "Rejection submit attempts by outcome.",
		}, []string{"outcome"}),

		Sessions: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "decline_dialog_sessions",
			Help: "Active signing sessions holding a rejection dialog.",
		}),
	}
}
