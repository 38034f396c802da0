package topdeck

import (
	"sync"
	"time"
)

// RateLimiter enforces a minimum interval between outbound requests. Calls
// arriving early block until the interval has elapsed; Wait never fails.
//
// The clock is injectable so tests can drive it deterministically.
type RateLimiter struct {
	mu          sync.Mutex
	minInterval time.Duration
	last        time.Time

	now   func() time.Time
	sleep func(time.Duration)
}

// NewRateLimiter returns a limiter with the given minimum spacing, using
// the real clock.
func NewRateLimiter(minInterval time.Duration) *RateLimiter {
	return &RateLimiter{
		minInterval: minInterval,
		now:         time.Now,
		sleep:       time.Sleep,
	}
}

// NewRateLimiterWithClock returns a limiter driven by the supplied clock
// functions. Used in tests.
func NewRateLimiterWithClock(minInterval time.Duration, now func() time.Time, sleep func(time.Duration)) *RateLimiter {
	return &RateLimiter{
		minInterval: minInterval,
		now:         now,
		sleep:       sleep,
	}
}

// Wait blocks until at least minInterval has passed since the previous
// request, then records the current time as the new reference point.
func (r *RateLimiter) Wait() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.last.IsZero() {
		elapsed := r.now().Sub(r.last)
		if elapsed < r.minInterval {
			r.sleep(r.minInterval - elapsed)
		}
	}
	r.last = r.now()
}
