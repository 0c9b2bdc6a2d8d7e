package observability

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	DirectionIn  = "in"
	DirectionOut = "out"
)

var (
	registerOnce sync.Once

	framesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "icm",
			Subsystem: "ipc",
			Name:      "frames_total",
			Help:      "Frames transferred, by direction and message name.",
		},
		[]string{"direction", "message"},
	)
	frameBytes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "icm",
			Subsystem: "ipc",
			Name:      "frame_bytes_total",
			Help:      "Frame bytes including header, by direction.",
		},
		[]string{"direction"},
	)
	frameErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "icm",
			Subsystem: "ipc",
			Name:      "frame_errors_total",
			Help:      "Frames rejected or failed, by reason.",
		},
		[]string{"reason"},
	)
	handleDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "icm",
			Subsystem: "ipc",
			Name:      "handle_duration_seconds",
			Help:      "Time spent handling one inbound message.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"message"},
	)
	connections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "icm",
			Subsystem: "ipc",
			Name:      "connections",
			Help:      "Currently connected clients.",
		},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(framesTotal, frameBytes, frameErrors, handleDuration, connections)
	})
}

func RecordFrame(direction, message string, length uint32) {
	RegisterMetrics()
	framesTotal.WithLabelValues(direction, message).Inc()
	frameBytes.WithLabelValues(direction).Add(float64(length))
}

func RecordFrameError(reason string) {
	RegisterMetrics()
	frameErrors.WithLabelValues(reason).Inc()
}

func RecordHandle(message string, duration time.Duration) {
	RegisterMetrics()
	handleDuration.WithLabelValues(message).Observe(duration.Seconds())
}

func ConnectionOpened() {
	RegisterMetrics()
	connections.Inc()
}

func ConnectionClosed() {
	RegisterMetrics()
	connections.Dec()
}
