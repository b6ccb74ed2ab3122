package limiter

import (
	"context"
	"math"
	"sync"
	"time"
)

type record struct {
	entries   []int64 // oldest first
	expiresAt int64
}

// MemoryLimiter is an in-process sliding-window rate limiter with the same
// admission rules as RedisLimiter.
//
// It is safe for concurrent use by multiple goroutines, but its state is local
// to the process and is not shared across replicas. Use RedisLimiter when you
// need a single global limit across multiple instances.
type MemoryLimiter struct {
	mu      sync.Mutex
	records map[string]*record

	prefix   string
	recorder MetricsRecorder
	now      func() time.Time
}

// NewMemoryLimiter constructs a MemoryLimiter with empty state. WithTimeout
// and WithLogger have no effect on it.
func NewMemoryLimiter(opts ...Option) *MemoryLimiter {
	cfg := newConfig(opts)
	return &MemoryLimiter{
		records:  make(map[string]*record),
		prefix:   cfg.prefix,
		recorder: cfg.recorder,
		now:      cfg.now,
	}
}

// Keyname returns the record key used for name and a window of seconds.
func (m *MemoryLimiter) Keyname(name string, seconds int) string {
	return keyname(m.prefix, name, seconds)
}

// Check applies the sliding-window admission rules under a single lock.
func (m *MemoryLimiter) Check(ctx context.Context, name string, constraints ...Constraint) (bool, error) {
	trivial, err := validate(constraints)
	if err != nil {
		m.recorder.Add(metricCall, 1, map[string]string{"result": resultInvalid})
		return false, err
	}
	if trivial {
		m.recorder.Add(metricCall, 1, map[string]string{"result": resultDenied})
		return false, nil
	}
	if err := ctx.Err(); err != nil {
		m.recorder.Add(metricCall, 1, map[string]string{"result": resultError})
		return false, err
	}

	now := m.now().Unix()
	ws := windows(constraints, func(seconds int) string { return m.Keyname(name, seconds) })

	m.mu.Lock()
	allowed := m.admit(ws, now)
	m.mu.Unlock()

	result := resultDenied
	if allowed {
		result = resultAllowed
	}
	m.recorder.Add(metricCall, 1, map[string]string{"result": result})
	return allowed, nil
}

func (m *MemoryLimiter) admit(ws []window, now int64) bool {
	for _, w := range ws {
		rec := m.live(w.key, now)
		if rec == nil || len(rec.entries) < w.max {
			continue
		}
		if now-rec.entries[0] < int64(w.seconds) {
			return false
		}
		rec.entries = rec.entries[1:]
	}

	for _, w := range ws {
		rec := m.live(w.key, now)
		if rec == nil {
			rec = &record{}
			m.records[w.key] = rec
		}
		rec.entries = append(rec.entries, now)
		rec.expiresAt = expiry(now, w.seconds)
	}
	return true
}

// expiry returns now+seconds, saturating at math.MaxInt64.
func expiry(now int64, seconds int) int64 {
	if int64(seconds) > math.MaxInt64-now {
		return math.MaxInt64
	}
	return now + int64(seconds)
}

// live returns the record for key, dropping it first if it has expired.
func (m *MemoryLimiter) live(key string, now int64) *record {
	rec, ok := m.records[key]
	if !ok {
		return nil
	}
	if now >= rec.expiresAt {
		delete(m.records, key)
		return nil
	}
	return rec
}

// Reset drops the records for name in each of the given windows.
func (m *MemoryLimiter) Reset(ctx context.Context, name string, seconds ...int) error {
	if len(seconds) == 0 {
		return &ValidationError{Field: "constraints", Reason: "must name at least one window to reset"}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range seconds {
		delete(m.records, m.Keyname(name, s))
	}
	return nil
}

// Cleanup removes every expired record.
func (m *MemoryLimiter) Cleanup() {
	now := m.now().Unix()

	m.mu.Lock()
	defer m.mu.Unlock()

	for key, rec := range m.records {
		if now >= rec.expiresAt {
			delete(m.records, key)
		}
	}
}

// StartJanitor runs Cleanup every interval until ctx is done.
func (m *MemoryLimiter) StartJanitor(ctx context.Context, every time.Duration) {
	if every <= 0 {
		return
	}

	t := time.NewTicker(every)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				m.Cleanup()
			}
		}
	}()
}

// recordLen reports the number of entries held for key; expired records count as
// empty.
func (m *MemoryLimiter) recordLen(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[key]
	if !ok || m.now().Unix() >= rec.expiresAt {
		return 0
	}
	return len(rec.entries)
}

var _ RateLimiter = (*MemoryLimiter)(nil)
