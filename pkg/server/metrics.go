package server

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics receives server events. Implementations must be safe for concurrent use.
type Metrics interface {
	Request(route string, code int)
	Parse(ok bool)
	Groups(n int)
}

// NoopMetrics is a drop-in Metrics implementation that does nothing.
type NoopMetrics struct{}

func (NoopMetrics) Request(string, int) {}
func (NoopMetrics) Parse(bool)          {}
func (NoopMetrics) Groups(int)          {}

var _ Metrics = NoopMetrics{}

// PromMetrics implements Metrics with Prometheus counters and gauges.
type PromMetrics struct {
	requests *prometheus.CounterVec
	parses   *prometheus.CounterVec
	groups   prometheus.Gauge
}

// NewPromMetrics constructs a Prometheus metrics adapter.
//   - reg:          registry to register metrics with (nil => prometheus.DefaultRegisterer)
//   - ns, sub:      Prometheus namespace and subsystem
//   - constLabels:  static labels applied to all metrics (may be nil)
func NewPromMetrics(reg prometheus.Registerer, ns, sub string, constLabels prometheus.Labels) *PromMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &PromMetrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   sub,
				Name:        "http_requests_total",
				Help:        "HTTP requests by route and status code",
				ConstLabels: constLabels,
			},
			[]string{"route", "code"},
		),
		parses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   sub,
				Name:        "log_parses_total",
				Help:        "Log parses by result",
				ConstLabels: constLabels,
			},
			[]string{"result"},
		),
		groups: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "log_groups",
			Help:        "Number of configuration groups in the last successful parse",
			ConstLabels: constLabels,
		}),
	}
	reg.MustRegister(m.requests, m.parses, m.groups)
	return m
}

// Request counts one served request.
func (m *PromMetrics) Request(route string, code int) {
	m.requests.WithLabelValues(route, strconv.Itoa(code)).Inc()
}

// Parse counts one parse attempt.
func (m *PromMetrics) Parse(ok bool) {
	result := "ok"
	if !ok {
		result = "error"
	}
	m.parses.WithLabelValues(result).Inc()
}

// Groups records the group count of the latest parse.
func (m *PromMetrics) Groups(n int) { m.groups.Set(float64(n)) }

var _ Metrics = (*PromMetrics)(nil)
