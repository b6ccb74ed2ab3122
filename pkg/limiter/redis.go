package limiter

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

//go:embed sliding_window.lua
var slidingWindowSource string

//go:embed reset.lua
var resetSource string

var (
	slidingWindowScript = redis.NewScript(slidingWindowSource)
	resetScript         = redis.NewScript(resetSource)
)

// RedisLimiter is a distributed sliding-window limiter. All state lives in
// Redis; every Check is one atomic script execution.
type RedisLimiter struct {
	client   redis.Scripter
	prefix   string
	timeout  time.Duration
	recorder MetricsRecorder
	logger   *zap.Logger
	now      func() time.Time
}

// NewRedisLimiter wraps any go-redis client able to run scripts
// (*redis.Client, *redis.ClusterClient, *redis.Ring). It performs no I/O; the
// script is loaded lazily by the first Check.
func NewRedisLimiter(client redis.Scripter, opts ...Option) (*RedisLimiter, error) {
	if client == nil {
		return nil, ErrNilClient
	}

	cfg := newConfig(opts)
	return &RedisLimiter{
		client:   client,
		prefix:   cfg.prefix,
		timeout:  cfg.timeout,
		recorder: cfg.recorder,
		logger:   cfg.logger,
		now:      cfg.now,
	}, nil
}

// Keyname returns the Window Record key for name and seconds under this
// limiter's prefix.
func (r *RedisLimiter) Keyname(name string, seconds int) string {
	return keyname(r.prefix, name, seconds)
}

// Check reports whether a request for name is admitted under every
// constraint. On true the current second has been recorded in each Window
// Record; on false no record gained an entry.
//
// A non-nil error means the outcome is unknown: either the arguments were
// invalid (errors.Is(err, ErrInvalidArgument)) or Redis could not run the
// script. If ctx expires while the script is in flight Redis may still apply
// it.
func (r *RedisLimiter) Check(ctx context.Context, name string, constraints ...Constraint) (bool, error) {
	trivial, err := validate(constraints)
	if err != nil {
		r.recorder.Add(metricCall, 1, map[string]string{"result": resultInvalid})
		return false, err
	}
	if trivial {
		r.recorder.Add(metricCall, 1, map[string]string{"result": resultDenied})
		return false, nil
	}

	now := r.now().Unix()
	ws := windows(constraints, func(seconds int) string { return r.Keyname(name, seconds) })

	keys := make([]string, len(ws))
	args := make([]interface{}, 0, 1+2*len(ws))
	args = append(args, now)
	for i, w := range ws {
		keys[i] = w.key
		args = append(args, w.max, w.seconds)
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	start := time.Now()
	reply, err := slidingWindowScript.Run(ctx, r.client, keys, args...).Int64()
	latency := time.Since(start).Seconds()

	result := resultDenied
	switch {
	case err != nil:
		result = resultError
		r.logger.Warn("rate limit script failed",
			zap.String("name", name),
			zap.Strings("keys", keys),
			zap.Error(err),
		)
	case reply == 1:
		result = resultAllowed
	case reply != 0:
		result = resultError
		err = fmt.Errorf("%w: %d", ErrUnexpectedReply, reply)
	}

	tags := map[string]string{"result": result}
	r.recorder.Add(metricCall, 1, tags)
	r.recorder.Observe(metricLatency, latency, tags)

	if err != nil {
		return false, err
	}

	r.logger.Debug("rate limit decision",
		zap.String("name", name),
		zap.Int64("now", now),
		zap.String("result", result),
	)
	return reply == 1, nil
}

// Reset deletes the Window Records of name for the given window lengths.
func (r *RedisLimiter) Reset(ctx context.Context, name string, seconds ...int) error {
	if len(seconds) == 0 {
		return &ValidationError{Field: "constraints", Reason: "must name at least one window to reset"}
	}

	keys := make([]string, len(seconds))
	for i, s := range seconds {
		keys[i] = r.Keyname(name, s)
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	return resetScript.Run(ctx, r.client, keys).Err()
}

var _ RateLimiter = (*RedisLimiter)(nil)
