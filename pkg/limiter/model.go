package limiter

import (
	"context"
	"time"
)

// Constraint is a single sliding-window rule: at most Max admissions within
// any trailing window of Seconds seconds.
type Constraint struct {
	Max     int
	Seconds int
}

// NewConstraint returns a Constraint after checking that both fields are
// non-negative.
func NewConstraint(max, seconds int) (Constraint, error) {
	c := Constraint{Max: max, Seconds: seconds}
	if err := c.validate(0); err != nil {
		return Constraint{}, err
	}
	return c, nil
}

// Per builds a Constraint from a time.Duration window. The window must be a
// whole number of seconds.
func Per(max int, window time.Duration) (Constraint, error) {
	if window < 0 || window%time.Second != 0 {
		return Constraint{}, &ValidationError{Field: "seconds", Index: 0, Reason: "must be a whole, non-negative number of seconds"}
	}
	return NewConstraint(max, int(window/time.Second))
}

// Window returns the constraint's window as a time.Duration.
func (c Constraint) Window() time.Duration {
	return time.Duration(c.Seconds) * time.Second
}

// trivial reports whether the constraint can never admit anything.
func (c Constraint) trivial() bool {
	return c.Max == 0 || c.Seconds == 0
}

// RateLimiter is implemented by RedisLimiter and MemoryLimiter.
type RateLimiter interface {
	Check(ctx context.Context, name string, constraints ...Constraint) (bool, error)
	Keyname(name string, seconds int) string
	Reset(ctx context.Context, name string, seconds ...int) error
}
