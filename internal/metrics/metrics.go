// Package metrics exposes Prometheus counters for the ingest path, the
// command gateway, history queries and the bus connection.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	messagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "coop_bridge_messages_total",
		Help: "Decoded bus messages by kind and reconcile outcome",
	}, []string{"kind", "outcome"})

	decodeErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "coop_bridge_decode_errors_total",
		Help: "Bus messages dropped by the codec",
	}, []string{"reason"})

	storageErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "coop_bridge_storage_errors_total",
		Help: "History store failures by operation",
	}, []string{"op"})

	commandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "coop_bridge_commands_total",
		Help: "Operator commands by kind and result",
	}, []string{"kind", "result"})

	busConnected = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "coop_bridge_bus_connected",
		Help: "1 while the MQTT connection is up",
	})

	busReconnectsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "coop_bridge_bus_connects_total",
		Help: "Successful MQTT connects, including reconnects",
	})

	historyQueryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "coop_bridge_history_query_duration_seconds",
		Help:    "History list and summary latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"store", "op"})
)

// Command results.
const (
	ResultForwarded   = "forwarded"
	ResultSuppressed  = "suppressed"
	ResultInvalid     = "invalid"
	ResultUnavailable = "unavailable"
)

func ObserveMessage(kind, outcome string) { messagesTotal.WithLabelValues(kind, outcome).Inc() }

func ObserveDecodeError(reason string) { decodeErrorsTotal.WithLabelValues(reason).Inc() }

func ObserveStorageError(op string) { storageErrorsTotal.WithLabelValues(op).Inc() }

func ObserveCommand(kind, result string) { commandsTotal.WithLabelValues(kind, result).Inc() }

// SetBusConnected matches bus.WithStatusHook.
func SetBusConnected(connected bool) {
	if connected {
		busConnected.Set(1)
		busReconnectsTotal.Inc()
		return
	}
	busConnected.Set(0)
}

// QueryTimer starts a latency observation; call ObserveDuration when done.
func QueryTimer(store, op string) *prometheus.Timer {
	return prometheus.NewTimer(historyQueryDuration.WithLabelValues(store, op))
}

// Handler serves the default registry.
func Handler() http.Handler { return promhttp.Handler() }
