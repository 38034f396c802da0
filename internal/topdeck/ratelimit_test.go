package topdeck

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// fakeClock advances only when the limiter sleeps.
type fakeClock struct {
	now    time.Time
	sleeps []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(1700000000, 0)}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Sleep(d time.Duration) {
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
}

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func TestRateLimiterFirstCallDoesNotBlock(t *testing.T) {
	clock := newFakeClock()
	limiter := NewRateLimiterWithClock(time.Second, clock.Now, clock.Sleep)

	limiter.Wait()

	assert.Empty(t, clock.sleeps)
}

func TestRateLimiterEnforcesSpacing(t *testing.T) {
	clock := newFakeClock()
	limiter := NewRateLimiterWithClock(time.Second, clock.Now, clock.Sleep)

	limiter.Wait()
	clock.Advance(300 * time.Millisecond)
	limiter.Wait()

	// The second call arrived 300ms in, so it blocks for the remaining 700ms.
	assert.Equal(t, []time.Duration{700 * time.Millisecond}, clock.sleeps)
}

func TestRateLimiterBackToBackCalls(t *testing.T) {
	clock := newFakeClock()
	limiter := NewRateLimiterWithClock(time.Second, clock.Now, clock.Sleep)

	limiter.Wait()
	limiter.Wait()
	limiter.Wait()

	// Each immediate follow-up waits a full interval.
	assert.Equal(t, []time.Duration{time.Second, time.Second}, clock.sleeps)
}

func TestRateLimiterIdleGapDoesNotBlock(t *testing.T) {
	clock := newFakeClock()
	limiter := NewRateLimiterWithClock(time.Second, clock.Now, clock.Sleep)

	limiter.Wait()
	clock.Advance(5 * time.Second)
	limiter.Wait()

	assert.Empty(t, clock.sleeps)
}
