package recipient

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sony/gobreaker"
)

// Metrics tracks calls to the recipient API.
type Metrics struct {
	RequestDuration *prometheus.HistogramVec
	BreakerState    prometheus.Gauge
}

// NewMetrics registers the client metrics with reg, or with a private
// registry when reg is nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	return &Metrics{
		RequestDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "decline_upstream_request_duration_seconds",
			Help:    "Latency of recipient API calls.",
			Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"operation", "result"}),

		BreakerState: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "decline_upstream_breaker_state",
			Help: "Circuit breaker state for the recipient API (0=closed, 1=half-open, 2=open).",
		}),
	}
}

func (m *Metrics) setBreakerState(state gobreaker.State) {
	switch state {
	case gobreaker.StateClosed:
		m.BreakerState.Set(0)
	case gobreaker.StateHalfOpen:
		m.BreakerState.Set(1)
	case gobreaker.StateOpen:
		m.BreakerState.Set(2)
	}
}
