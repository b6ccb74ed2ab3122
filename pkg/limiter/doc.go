// Package limiter provides local and distributed rate limiting based on a
// sliding window log.
//
// The primary entry point is the RateLimiter interface:
//
//	ok, err := l.Check(ctx, "login:user_123",
//		limiter.Constraint{Max: 5, Seconds: 60},
//		limiter.Constraint{Max: 100, Seconds: 3600},
//	)
//
// Check admits the request only if every Constraint has room, and then
// records it against all of them. A rejected request is recorded nowhere, so
// hitting the per-minute limit never eats into the hourly budget.
//
// # Overview
//
// Each (name, seconds) pair owns a Window Record: a list of the Unix
// timestamps (whole seconds) of recent admissions, newest first. For each
// constraint the record is checked as follows:
//
//   - fewer than Max entries: there is room;
//   - otherwise look at the oldest entry. If it is younger than Seconds the
//     window is full and the whole call is rejected. If not, it is evicted to
//     make room.
//
// Only when every constraint has room is the current second pushed to every
// record and each record's expiry reset to its window length. Records that
// see no traffic for a full window disappear on their own.
//
// At most one stale entry is evicted per record per call. Constraints in one
// call that share a window length share a record; the smallest Max applies.
//
// A constraint with Max or Seconds equal to zero can never admit, so Check
// returns false for it without touching the store.
//
// # Backends
//
//   - RedisLimiter: a distributed limiter backed by Redis. The whole
//     check-then-record cycle is a single Lua script, which Redis runs
//     atomically with respect to every other client. This is the only
//     synchronization point; no process-local lock is involved.
//
//   - MemoryLimiter: an in-process limiter backed by a Go map with the same
//     rules. Useful for tests and single-instance deployments.
//
// # Keys
//
// Keyname(name, seconds) returns "limiter:{n:name}:seconds". The braces are a
// Redis Cluster hash tag, so one name's records share a slot and the
// multi-key script is legal on a cluster. The "n:" marker keeps the tag
// non-empty for an empty name, and WithPrefix refuses prefixes containing
// braces. Callers may rely on the key being
// unique per (name, seconds) and containing both, not on the exact format.
//
// # Context and Error Policy
//
// Check accepts a context.Context and passes it to Redis. WithTimeout adds a
// per-call deadline on top (default 5s).
//
// Errors fall in three groups:
//
//   - ErrNilClient from NewRedisLimiter.
//   - *ValidationError (errors.Is(err, ErrInvalidArgument)) for an empty
//     constraint list or negative fields. The store is not contacted.
//   - Anything else comes from Redis unmodified.
//
// A non-nil error never means "rejected". This package does not impose a fail
// open or fail closed policy, and does not retry. Note that when the context
// expires the script may already be running and will still take effect, so
// the outcome of a timed-out call is unknown.
//
// # Configuration
//
//	l, _ := limiter.NewRedisLimiter(client,
//		limiter.WithPrefix("myapp:rate:"),
//		limiter.WithTimeout(100*time.Millisecond),
//		limiter.WithRecorder(rec),
//		limiter.WithLogger(logger),
//	)
//
// WithClock overrides time.Now and exists for tests.
package limiter
