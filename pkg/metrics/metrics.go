// stkpush-relay/pkg/metrics/metrics.go
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	RelayRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "relay",
			Name:      "requests_total",
			Help:      "Total inbound requests per route",
		},
		[]string{"route", "status", "method"},
	)

	RelayRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "relay",
			Name:      "request_duration_seconds",
			Help:      "Inbound request latency per route",
			Buckets: []float64{
				0.01, 0.02, 0.03, 0.05, 0.08, 0.12,
				0.2, 0.3, 0.5, 0.8, 1.2, 2, 3, 5, 10, 30,
			},
		},
		[]string{"route", "status"},
	)

	GatewayCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "relay",
			Name:      "gateway_calls_total",
			Help:      "Outbound payment gateway calls by outcome",
		},
		[]string{"outcome"},
	)

	// upper buckets follow the 30s gateway timeout
	GatewayCallDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "relay",
			Name:      "gateway_call_duration_seconds",
			Help:      "Outbound payment gateway latency by outcome",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 3, 5, 8, 12, 20, 30},
		},
		[]string{"outcome"},
	)

	CallbacksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "relay",
			Name:      "callbacks_total",
			Help:      "Inbound gateway callbacks by classified status",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(
		RelayRequestsTotal,
		RelayRequestDuration,
		GatewayCallsTotal,
		GatewayCallDuration,
		CallbacksTotal,
	)
}

func IncRequest(route, status, method string) {
	RelayRequestsTotal.WithLabelValues(route, status, method).Inc()
}

func ObserveDuration(route, status string, seconds float64) {
	RelayRequestDuration.WithLabelValues(route, status).Observe(seconds)
}

func IncGatewayCall(outcome string) {
	GatewayCallsTotal.WithLabelValues(outcome).Inc()
}

func ObserveGatewayDuration(outcome string, seconds float64) {
	GatewayCallDuration.WithLabelValues(outcome).Observe(seconds)
}

func IncCallback(outcome string) {
	CallbacksTotal.WithLabelValues(outcome).Inc()
}
