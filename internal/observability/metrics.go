package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Message outcomes recorded for incoming handover messages.
const (
	OutcomeHandled    = "handled"
	OutcomeIgnored    = "ignored"
	OutcomeMalformed  = "malformed"
	OutcomeSendFailed = "send_failed"
)

var (
	registerOnce sync.Once

	handoverMessages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "handover",
			Subsystem: "messages",
			Name:      "total",
			Help:      "Handover messages processed by kind and outcome.",
		},
		[]string{"kind", "outcome"},
	)
	pairings = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "handover",
			Subsystem: "pairings",
			Name:      "total",
			Help:      "Pairing attempts by direction and result.",
		},
		[]string{"direction", "success"},
	)
	transfers = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "handover",
			Subsystem: "transfers",
			Name:      "total",
			Help:      "Outgoing transfers resolved, by completion status.",
		},
		[]string{"status"},
	)
	transferDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "handover",
			Subsystem: "transfers",
			Name:      "duration_seconds",
			Help:      "Time from outgoing transfer start to completion.",
			Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
		[]string{"status"},
	)
	queuedActions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "handover",
			Subsystem: "radio",
			Name:      "queued_actions",
			Help:      "Actions waiting for the secondary radio to become ready.",
		},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(handoverMessages, pairings, transfers, transferDuration, queuedActions)
	})
}

func RecordMessage(kind, outcome string) {
	RegisterMetrics()
	handoverMessages.WithLabelValues(kind, outcome).Inc()
}

func RecordPairing(direction string, success bool) {
	RegisterMetrics()
	pairings.WithLabelValues(direction, strconv.FormatBool(success)).Inc()
}

func RecordTransfer(status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	transfers.WithLabelValues(statusLabel).Inc()
	transferDuration.WithLabelValues(statusLabel).Observe(duration.Seconds())
}

func SetQueuedActions(n int) {
	RegisterMetrics()
	queuedActions.Set(float64(n))
}
