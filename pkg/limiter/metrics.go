package limiter

import "github.com/prometheus/client_golang/prometheus"

const (
	metricCall    = "ratelimit.call"
	metricLatency = "ratelimit.latency"

	resultAllowed = "allowed"
	resultDenied  = "denied"
	resultError   = "error"
	resultInvalid = "invalid"
)

// MetricsRecorder receives counters and latency observations from a limiter.
// Every Check adds 1 to "ratelimit.call" tagged with result (allowed, denied,
// error or invalid) and, when the store was consulted, observes
// "ratelimit.latency" in seconds.
type MetricsRecorder interface {
	Add(name string, value float64, tags map[string]string)
	Observe(name string, value float64, tags map[string]string)
}

// NoOpMetricsRecorder is a placeholder that does nothing.
// It ensures we never have to check 'if r.recorder != nil' in our hot path.
type NoOpMetricsRecorder struct{}

func (n *NoOpMetricsRecorder) Add(name string, value float64, tags map[string]string)     {}
func (n *NoOpMetricsRecorder) Observe(name string, value float64, tags map[string]string) {}

// PrometheusRecorder exports limiter metrics as
// ratelimit_checks_total{result} and ratelimit_check_duration_seconds{result}.
// Names other than ratelimit.call and ratelimit.latency are ignored.
type PrometheusRecorder struct {
	checks   *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewPrometheusRecorder creates the collectors and registers them with reg.
// A nil reg uses prometheus.DefaultRegisterer.
func NewPrometheusRecorder(reg prometheus.Registerer) (*PrometheusRecorder, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	p := &PrometheusRecorder{
		checks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ratelimit_checks_total",
			Help: "Rate limit checks by outcome.",
		}, []string{"result"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ratelimit_check_duration_seconds",
			Help:    "Latency of the admission script round trip.",
			Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"result"}),
	}

	for _, c := range []prometheus.Collector{p.checks, p.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (p *PrometheusRecorder) Add(name string, value float64, tags map[string]string) {
	if name != metricCall {
		return
	}
	p.checks.WithLabelValues(tags["result"]).Add(value)
}

func (p *PrometheusRecorder) Observe(name string, value float64, tags map[string]string) {
	if name != metricLatency {
		return
	}
	p.duration.WithLabelValues(tags["result"]).Observe(value)
}
