package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the process-wide counters exposed on /metrics.
type Metrics struct {
	registry *prometheus.Registry

	OrdersCreated   prometheus.Counter
	PaymentAttempts *prometheus.CounterVec
	WebhookEvents   *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		registry: registry,
		OrdersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "foodcourt_orders_created_total",
			Help: "Orders accepted by the API.",
		}),
		PaymentAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "foodcourt_payment_attempts_total",
			Help: "Payment attempts by method and outcome.",
		}, []string{"method", "outcome"}),
		WebhookEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "foodcourt_webhook_events_total",
			Help: "Provider webhook deliveries by result.",
		}, []string{"result"}),
	}
	registry.MustRegister(m.OrdersCreated, m.PaymentAttempts, m.WebhookEvents)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
