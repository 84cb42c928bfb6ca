package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "contenthub"

var HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "http",
	Name:      "requests_total",
	Help:      "Number of HTTP requests by route, method and status",
}, []string{"method", "route", "status"})

var HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: namespace,
	Subsystem: "http",
	Name:      "request_duration_seconds",
	Help:      "HTTP request latency",
	Buckets:   prometheus.DefBuckets,
}, []string{"method", "route"})

var BillingCallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "billing",
	Name:      "calls_total",
	Help:      "Number of payment provider calls by operation and result",
}, []string{"op", "result"})

var LedgerChangesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "ledger",
	Name:      "changes_total",
	Help:      "Number of subscription ledger activations and cancellations",
}, []string{"change", "source"})

var WebhookEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "webhook",
	Name:      "events_total",
	Help:      "Number of provider webhook events by type and outcome",
}, []string{"type", "outcome"})

var WebsocketConnections = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: namespace,
	Subsystem: "websocket",
	Name:      "connections",
	Help:      "Number of open websocket connections",
})

// Result label values.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Ledger change label values.
const (
	ChangeActivated = "activated"
	ChangeCancelled = "cancelled"

	SourceAPI     = "api"
	SourceWebhook = "webhook"
)

// ObserveBilling counts one provider call.
func ObserveBilling(op string, err error) {
	result := ResultOK
	if err != nil {
		result = ResultError
	}
	BillingCallsTotal.WithLabelValues(op, result).Inc()
}
