package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "boarbot"

// Metrics holds the collectors shared by the login flow and the dispatch
// engine. Each Metrics owns a private registry.
type Metrics struct {
	Registry *prometheus.Registry

	EventsDispatched    *prometheus.CounterVec
	ModuleFailures      *prometheus.CounterVec
	ModuleHandleSeconds *prometheus.HistogramVec

	Logins        *prometheus.CounterVec
	QRCodeFetches prometheus.Counter
	QRCodePolls   *prometheus.CounterVec
}

// New builds and registers all collectors, plus the Go runtime and process
// collectors.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		EventsDispatched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_dispatched_total",
			Help:      "Events broadcast to the registered modules, by event kind.",
		}, []string{"kind"}),
		ModuleFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "module_failures_total",
			Help:      "Module handler failures, by module and reason (error or panic).",
		}, []string{"module", "reason"}),
		ModuleHandleSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "module_handle_seconds",
			Help:      "Time spent in a module handler for one event.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"module"}),
		Logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "login_total",
			Help:      "Login attempts, by method (token or qrcode) and result.",
		}, []string{"method", "result"}),
		QRCodeFetches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "qrcode_fetches_total",
			Help:      "QR challenges fetched from the gateway.",
		}),
		QRCodePolls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "qrcode_polls_total",
			Help:      "QR login poll results, by reported phase.",
		}, []string{"phase"}),
	}

	m.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.EventsDispatched,
		m.ModuleFailures,
		m.ModuleHandleSeconds,
		m.Logins,
		m.QRCodeFetches,
		m.QRCodePolls,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
