// Package telemetry provides Prometheus metrics and correlation-id aware logging helpers.
package telemetry

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	once sync.Once

	// Counters
	MessagesCaptured prometheus.Counter
	MessagesFiltered prometheus.Counter
	InsertFailures   prometheus.Counter
	HandlerErrors    prometheus.Counter
	Reconnects       prometheus.Counter
	ProbeFailures    prometheus.Counter

	// Histograms (seconds)
	HandlerDuration prometheus.Observer

	// Gauges
	ConnectedGauge      prometheus.Gauge // 1=connected,0=disconnected
	WatchedThreadsGauge prometheus.Gauge
	SSEClientsGauge     prometheus.Gauge
)

// Init registers metrics (idempotent).
func Init() {
	once.Do(func() {
		MessagesCaptured = promauto.NewCounter(prometheus.CounterOpts{Name: "radar_messages_captured_total", Help: "Messages matching the watched group/threads that were recorded"})
		MessagesFiltered = promauto.NewCounter(prometheus.CounterOpts{Name: "radar_messages_filtered_total", Help: "Incoming messages dropped by the group/thread filter"})
		InsertFailures = promauto.NewCounter(prometheus.CounterOpts{Name: "radar_insert_failures_total", Help: "Captured messages that failed to persist"})
		HandlerErrors = promauto.NewCounter(prometheus.CounterOpts{Name: "radar_handler_errors_total", Help: "Errors returned by the new-message handler"})
		Reconnects = promauto.NewCounter(prometheus.CounterOpts{Name: "radar_reconnects_total", Help: "Telegram client reconnect attempts"})
		ProbeFailures = promauto.NewCounter(prometheus.CounterOpts{Name: "radar_probe_failures_total", Help: "Failed connectivity probes"})
		HandlerDuration = promauto.NewHistogram(prometheus.HistogramOpts{Name: "radar_handler_duration_seconds", Help: "New-message handler duration seconds", Buckets: prometheus.DefBuckets})
		ConnectedGauge = promauto.NewGauge(prometheus.GaugeOpts{Name: "radar_connected", Help: "Telegram client connected=1 disconnected=0"})
		WatchedThreadsGauge = promauto.NewGauge(prometheus.GaugeOpts{Name: "radar_watched_threads", Help: "Number of thread ids in the watch list (0 = all)"})
		SSEClientsGauge = promauto.NewGauge(prometheus.GaugeOpts{Name: "radar_sse_clients", Help: "Connected live-tail SSE clients"})
	})
}

var connected atomic.Bool

// SetConnected sets the connected gauge to 1 if up else 0.
func SetConnected(up bool) {
	connected.Store(up)
	if ConnectedGauge != nil {
		if up {
			ConnectedGauge.Set(1)
		} else {
			ConnectedGauge.Set(0)
		}
	}
}

// IsConnected reports the last value passed to SetConnected, for the status
// surface.
func IsConnected() bool {
	return connected.Load()
}

// SetWatchedThreads records the current watch list size.
func SetWatchedThreads(n int) {
	if WatchedThreadsGauge != nil {
		WatchedThreadsGauge.Set(float64(n))
	}
}

// TimeFunc measures the duration of fn and records in observer if non-nil.
func TimeFunc(obs prometheus.Observer, fn func()) time.Duration {
	start := time.Now()
	fn()
	d := time.Since(start)
	if obs != nil {
		obs.Observe(d.Seconds())
	}
	return d
}

// Correlation ID helpers ----------------------------------------------------

type corrKeyType struct{}

var corrKey corrKeyType

// WithCorrelation returns a new context embedding correlation id (if absent) and the id.
func WithCorrelation(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, corrKey, id)
}

// GetCorrelation returns correlation id or empty string.
func GetCorrelation(ctx context.Context) string {
	v := ctx.Value(corrKey)
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// LoggerWithCorr returns a logger with corr attribute if present.
func LoggerWithCorr(ctx context.Context) *slog.Logger {
	if id := GetCorrelation(ctx); id != "" {
		return slog.Default().With(slog.String("corr", id))
	}
	return slog.Default()
}
