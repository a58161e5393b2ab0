package observability

import "github.com/prometheus/client_golang/prometheus"

var (
	APIRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "crm_api_requests_total", Help: "API requests"},
		[]string{"endpoint", "status"},
	)
	Broadcasts = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "crm_broadcasts_total", Help: "Broadcast requests by result"},
		[]string{"result"},
	)
	GatewaySend = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "gateway_send_total", Help: "Gateway send outcomes"},
		[]string{"result"},
	)
	GatewayLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{Name: "gateway_send_latency_seconds", Help: "Gateway send latency"},
	)
	DispatchInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "crm_dispatch_in_flight", Help: "Broadcast dispatch loops currently running"},
	)
)

func Register(reg prometheus.Registerer) {
	reg.MustRegister(APIRequests, Broadcasts, GatewaySend, GatewayLatency, DispatchInFlight)
}
