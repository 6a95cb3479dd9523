package observability

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	commandsHandled = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dream",
			Subsystem: "server",
			Name:      "commands_total",
			Help:      "Commands handled by the mock DREAM server.",
		},
		[]string{"key", "response"},
	)
	commandDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "dream",
			Subsystem: "server",
			Name:      "command_duration_seconds",
			Help:      "Command execution duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"key"},
	)
	telemetrySent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dream",
			Subsystem: "server",
			Name:      "telemetry_total",
			Help:      "Telemetry lines sent to the client.",
		},
		[]string{"kind"},
	)
	clientConnected = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "dream",
			Subsystem: "server",
			Name:      "client_connected",
			Help:      "Whether a client is attached (1) or not (0).",
		},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(commandsHandled, commandDuration, telemetrySent, clientConnected)
	})
}

func RecordCommand(key, response string, duration time.Duration) {
	RegisterMetrics()
	commandsHandled.WithLabelValues(key, response).Inc()
	commandDuration.WithLabelValues(key).Observe(duration.Seconds())
}

func RecordTelemetry(kind string) {
	RegisterMetrics()
	telemetrySent.WithLabelValues(kind).Inc()
}

func SetClientConnected(connected bool) {
	RegisterMetrics()
	if connected {
		clientConnected.Set(1)
		return
	}
	clientConnected.Set(0)
}
