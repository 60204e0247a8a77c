package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"http-logging/domain/port"
)

const namespace = "http_logging"

// PrometheusMetrics 将 exchange logger 的统计写入 Prometheus
//
// Metrics:
//   - http_logging_exchanges_total: exchanges logged at debug level, by direction
//   - http_logging_bodies_total: body handling outcomes, by direction and outcome
//   - http_logging_body_bytes: size of logged bodies, by direction
type PrometheusMetrics struct {
	registry *prometheus.Registry

	exchangesTotal *prometheus.CounterVec
	bodiesTotal    *prometheus.CounterVec
	bodyBytes      *prometheus.HistogramVec
}

// NewPrometheusMetrics creates and registers the metrics with registry. A nil
// registry gets a fresh one with the Go and process collectors.
func NewPrometheusMetrics(registry *prometheus.Registry) *PrometheusMetrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	m := &PrometheusMetrics{
		registry: registry,
		exchangesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "exchanges_total",
				Help:      "Total number of HTTP exchanges logged at debug level",
			},
			[]string{"direction"},
		),
		bodiesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "bodies_total",
				Help:      "Body handling outcomes",
			},
			[]string{"direction", "outcome"},
		),
		bodyBytes: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "body_bytes",
				Help:      "Size of logged bodies in bytes",
				Buckets:   prometheus.ExponentialBuckets(64, 4, 8), // 64B to 1MB
			},
			[]string{"direction"},
		),
	}

	registry.MustRegister(m.exchangesTotal, m.bodiesTotal, m.bodyBytes)
	return m
}

// IncExchanges 增加已记录交换计数
func (m *PrometheusMetrics) IncExchanges(direction string) {
	m.exchangesTotal.WithLabelValues(direction).Inc()
}

// ObserveBody 记录 body 处理结果
func (m *PrometheusMetrics) ObserveBody(direction, outcome string, bytes int) {
	m.bodiesTotal.WithLabelValues(direction, outcome).Inc()
	if outcome == port.BodyLogged {
		m.bodyBytes.WithLabelValues(direction).Observe(float64(bytes))
	}
}

// Registry returns the registry the metrics are registered with.
func (m *PrometheusMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *PrometheusMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// 确保 PrometheusMetrics 实现 port.MetricsProvider 接口
var _ port.MetricsProvider = (*PrometheusMetrics)(nil)
