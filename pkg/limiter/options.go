package limiter

import (
	"strings"
	"time"

	"go.uber.org/zap"
)

type config struct {
	prefix   string
	timeout  time.Duration
	recorder MetricsRecorder
	logger   *zap.Logger
	now      func() time.Time
}

func defaultConfig() config {
	return config{
		prefix:   DefaultPrefix,
		timeout:  5 * time.Second,
		recorder: &NoOpMetricsRecorder{},
		logger:   zap.NewNop(),
		now:      time.Now,
	}
}

func newConfig(opts []Option) config {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// Option configures a limiter.
type Option func(*config)

// WithPrefix sets the namespace prefix of Window Record keys. An empty prefix,
// or one containing '{' or '}', is ignored since it would change which part
// of the key Redis Cluster hashes.
func WithPrefix(prefix string) Option {
	return func(c *config) {
		if prefix != "" && !strings.ContainsAny(prefix, "{}") {
			c.prefix = prefix
		}
	}
}

// WithTimeout bounds each store round trip. Zero or negative leaves the
// caller's context untouched.
func WithTimeout(d time.Duration) Option {
	return func(c *config) { c.timeout = d }
}

// WithRecorder injects a metrics backend.
func WithRecorder(r MetricsRecorder) Option {
	return func(c *config) {
		if r != nil {
			c.recorder = r
		}
	}
}

// WithLogger sets the logger used for store failures and decisions.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(c *config) {
		if now != nil {
			c.now = now
		}
	}
}
