package limiter

import (
	"errors"
	"fmt"
)

var (
	// ErrNilClient is returned by NewRedisLimiter when no store client is supplied.
	ErrNilClient = errors.New("limiter: redis client must not be nil")

	// ErrInvalidArgument matches every *ValidationError via errors.Is.
	ErrInvalidArgument = errors.New("limiter: invalid argument")

	// ErrUnexpectedReply is returned when the admission script answers with
	// something other than 0 or 1.
	ErrUnexpectedReply = errors.New("limiter: unexpected script reply")
)

// ValidationError describes a rejected Check argument. Index is the position
// of the offending constraint.
type ValidationError struct {
	Field  string
	Index  int
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "constraints" {
		return fmt.Sprintf("limiter: constraints %s", e.Reason)
	}
	return fmt.Sprintf("limiter: constraint %d: %s %s", e.Index, e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidArgument
}

func (c Constraint) validate(i int) error {
	if c.Max < 0 {
		return &ValidationError{Field: "max", Index: i, Reason: "must be a non-negative integer"}
	}
	if c.Seconds < 0 {
		return &ValidationError{Field: "seconds", Index: i, Reason: "must be a non-negative integer"}
	}
	return nil
}

// validate checks a Check call before any store access. It reports whether
// the call can short-circuit to a rejection because some constraint is zero.
func validate(constraints []Constraint) (trivial bool, err error) {
	if len(constraints) == 0 {
		return false, &ValidationError{Field: "constraints", Reason: "must contain at least one rate limit interval"}
	}
	for i, c := range constraints {
		if err := c.validate(i); err != nil {
			return false, err
		}
		if c.trivial() {
			trivial = true
		}
	}
	return trivial, nil
}

// window is one Window Record touched by a Check call.
type window struct {
	key     string
	max     int
	seconds int
}

// windows merges constraints that map to the same record, keeping the
// tightest max, and preserves first-seen order.
func windows(constraints []Constraint, keyname func(int) string) []window {
	out := make([]window, 0, len(constraints))
	seen := make(map[int]int, len(constraints))
	for _, c := range constraints {
		if i, ok := seen[c.Seconds]; ok {
			if c.Max < out[i].max {
				out[i].max = c.Max
			}
			continue
		}
		seen[c.Seconds] = len(out)
		out = append(out, window{key: keyname(c.Seconds), max: c.Max, seconds: c.Seconds})
	}
	return out
}
