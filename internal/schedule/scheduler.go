// Package schedule computes the randomized wait between replay cycles.
package schedule

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// Interval randomization bounds relative to the configured base interval.
const (
	IntervalVariationMin = 0.85
	IntervalVariationMax = 1.15
)

// Scheduler owns the wait between replays. Each cycle's wait is drawn
// fresh from [IntervalVariationMin, IntervalVariationMax] x base; missed
// cycles are never caught up.
type Scheduler struct {
	base time.Duration
	rnd  *rand.Rand
	now  func() time.Time

	mu           sync.Mutex
	lastActivity time.Time
	deadline     time.Time

	resets chan struct{}
}

// New creates a scheduler for the given base interval, drawing
// randomness from rnd.
func New(base time.Duration, rnd *rand.Rand) *Scheduler {
	return NewWithClock(base, rnd, time.Now)
}

// NewWithClock creates a scheduler with an injectable clock for tests.
func NewWithClock(base time.Duration, rnd *rand.Rand, now func() time.Time) *Scheduler {
	return &Scheduler{
		base:   base,
		rnd:    rnd,
		now:    now,
		resets: make(chan struct{}, 1),
	}
}

// NextInterval draws the randomized wait for one cycle.
func (s *Scheduler) NextInterval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	f := IntervalVariationMin + s.rnd.Float64()*(IntervalVariationMax-IntervalVariationMin)
	return time.Duration(float64(s.base) * f)
}

// Reset stamps the last activity time and abandons any in-progress wait.
// Invoked whenever a manual override is detected.
func (s *Scheduler) Reset() {
	s.mu.Lock()
	s.lastActivity = s.now()
	s.mu.Unlock()

	select {
	case s.resets <- struct{}{}:
	default:
	}
}

// LastActivity returns the most recent reset time.
func (s *Scheduler) LastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActivity
}

// Deadline returns when the current wait ends, for status display.
func (s *Scheduler) Deadline() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deadline
}

// Wait blocks until the next randomized interval elapses. A Reset during
// the wait discards the remaining time and starts a fresh full interval.
// Returns ctx.Err() if the context is cancelled first.
func (s *Scheduler) Wait(ctx context.Context) error {
	// Drop any reset signalled before the wait began; it only needs to
	// discard in-progress waits.
	select {
	case <-s.resets:
	default:
	}

	for {
		interval := s.NextInterval()

		s.mu.Lock()
		s.deadline = s.now().Add(interval)
		s.mu.Unlock()

		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-s.resets:
			timer.Stop()
			continue
		case <-timer.C:
			return nil
		}
	}
}
