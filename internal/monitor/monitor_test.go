package monitor

import (
	"testing"
	"time"

	"github.com/pzielke/ghosthand/internal/platform"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time {
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.t = c.t.Add(d)
}

func newTestMonitor() (*Monitor, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	return NewWithClock(clock.now), clock
}

func moveAt(clock *fakeClock, x, y int) platform.Event {
	return platform.Event{Kind: platform.EventMove, X: x, Y: y, Time: clock.t}
}

func clickAt(clock *fakeClock, x, y int) platform.Event {
	return platform.Event{Kind: platform.EventClick, X: x, Y: y, Button: platform.ButtonLeft, Pressed: true, Time: clock.t}
}

func assertNoOverride(t *testing.T, m *Monitor) {
	t.Helper()
	select {
	case <-m.Overrides():
		t.Fatal("unexpected override signalled")
	default:
	}
}

func assertOverride(t *testing.T, m *Monitor) {
	t.Helper()
	select {
	case <-m.Overrides():
	default:
		t.Fatal("expected an override to be signalled")
	}
}

func TestGraceIgnoresAllMotion(t *testing.T) {
	m, clock := newTestMonitor()
	m.BeginGrace()
	m.SetCommanded(100, 100)

	m.Observe(moveAt(clock, 900, 900))
	m.Observe(clickAt(clock, 900, 900))

	if m.State() != StateGrace {
		t.Errorf("state = %v, want GracePeriod", m.State())
	}
	assertNoOverride(t, m)
}

func TestGracePromotesToArmedOnExpiry(t *testing.T) {
	m, clock := newTestMonitor()
	m.BeginGrace()
	m.Arm(false)
	if m.State() != StateGrace {
		t.Fatalf("arming during grace should keep grace, state = %v", m.State())
	}

	clock.advance(GracePeriod + time.Second)
	m.SetCommanded(100, 100)
	m.Observe(moveAt(clock, 105, 100))

	if m.State() != StateArmed {
		t.Errorf("state = %v, want Armed after grace expiry", m.State())
	}
	assertNoOverride(t, m)
}

func TestArmedDetectionThreshold(t *testing.T) {
	tests := []struct {
		name       string
		tremorMode bool
		x, y       int
		wantTrip   bool
	}{
		{"within base threshold", false, 114, 100, false},
		{"at base threshold boundary", false, 115, 100, false},
		{"beyond base threshold", false, 116, 100, true},
		{"diagonal within threshold", false, 110, 110, false},
		{"y axis beyond threshold", false, 100, 116, true},
		{"tremor mode tolerates wider delta", true, 118, 100, false},
		{"tremor mode boundary", true, 120, 100, false},
		{"tremor mode beyond threshold", true, 121, 100, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, clock := newTestMonitor()
			m.Arm(tt.tremorMode)
			m.SetCommanded(100, 100)

			m.Observe(moveAt(clock, tt.x, tt.y))

			if tt.wantTrip {
				if m.State() != StateOverride {
					t.Errorf("state = %v, want ManualOverrideDetected", m.State())
				}
				assertOverride(t, m)
			} else {
				if m.State() != StateArmed {
					t.Errorf("state = %v, want Armed", m.State())
				}
				assertNoOverride(t, m)
			}
		})
	}
}

func TestArmedClickAlwaysTrips(t *testing.T) {
	m, clock := newTestMonitor()
	m.Arm(true)
	m.SetCommanded(100, 100)

	// A click at the commanded position is still a takeover.
	m.Observe(clickAt(clock, 100, 100))

	if m.State() != StateOverride {
		t.Errorf("state = %v, want ManualOverrideDetected", m.State())
	}
	assertOverride(t, m)
}

func TestArmedWithoutCommandedNeverTrips(t *testing.T) {
	m, clock := newTestMonitor()
	m.Arm(false)

	m.Observe(moveAt(clock, 5000, 5000))

	if m.State() != StateArmed {
		t.Errorf("state = %v, want Armed (no commanded reference yet)", m.State())
	}
	assertNoOverride(t, m)
}

func TestArmResetsCommandedReference(t *testing.T) {
	m, clock := newTestMonitor()
	m.Arm(false)
	m.SetCommanded(100, 100)
	m.Disarm()

	// Re-arming must forget the previous replay's commanded position.
	m.Arm(false)
	m.Observe(moveAt(clock, 900, 900))

	if m.State() != StateArmed {
		t.Errorf("state = %v, want Armed", m.State())
	}
	assertNoOverride(t, m)
}

func TestIdleAndQuietCheckRecordActivityOnly(t *testing.T) {
	m, clock := newTestMonitor()
	m.SetCommanded(0, 0)

	mark := clock.t
	clock.advance(time.Second)
	m.BeginQuietCheck()
	m.Observe(moveAt(clock, 500, 500))

	if m.State() != StateQuietCheck {
		t.Errorf("state = %v, want QuietWindowCheck", m.State())
	}
	assertNoOverride(t, m)
	if !m.ActivitySince(mark) {
		t.Error("activity during quiet check not recorded")
	}
}

func TestActivitySince(t *testing.T) {
	m, clock := newTestMonitor()

	if m.ActivitySince(clock.t.Add(-time.Hour)) {
		t.Error("ActivitySince true before any event")
	}

	m.Observe(moveAt(clock, 10, 10))
	if !m.ActivitySince(clock.t.Add(-time.Second)) {
		t.Error("ActivitySince false after an event")
	}
	if m.ActivitySince(clock.t.Add(time.Second)) {
		t.Error("ActivitySince true for a mark after the event")
	}
}

func TestOverrideSignalDoesNotBlock(t *testing.T) {
	m, clock := newTestMonitor()
	m.Arm(false)
	m.SetCommanded(0, 0)

	// Two trips with nobody draining; the second must not block.
	m.Observe(moveAt(clock, 500, 500))
	m.Arm(false)
	m.SetCommanded(0, 0)
	m.Observe(moveAt(clock, 600, 600))

	assertOverride(t, m)
	assertNoOverride(t, m)
}

func TestGraceRestartAfterOverride(t *testing.T) {
	m, clock := newTestMonitor()
	m.Arm(false)
	m.SetCommanded(0, 0)
	m.Observe(moveAt(clock, 500, 500))
	assertOverride(t, m)

	m.BeginGrace()
	if m.State() != StateGrace {
		t.Errorf("state = %v, want GracePeriod after override handling", m.State())
	}

	// Still inside grace: nothing trips.
	m.Observe(moveAt(clock, 900, 900))
	assertNoOverride(t, m)
}

func TestFreeMotionAfterTakeoverNeverTrips(t *testing.T) {
	m, clock := newTestMonitor()
	m.Arm(false)
	m.SetCommanded(200, 200)
	m.Observe(moveAt(clock, 700, 700))
	assertOverride(t, m)

	// The engine hands control back and restarts grace; no replay is in
	// flight any more.
	m.BeginGrace()
	clock.advance(GracePeriod + time.Second)

	// The user moving freely during the idle wait, long after grace
	// expired, is not a takeover of anything.
	m.Observe(moveAt(clock, 50, 50))
	m.Observe(moveAt(clock, 800, 800))

	if m.State() != StateIdle {
		t.Errorf("state = %v, want Idle (no arm pending)", m.State())
	}
	assertNoOverride(t, m)
}

func TestGraceForgetsCommandedReference(t *testing.T) {
	m, _ := newTestMonitor()
	m.Arm(false)
	m.SetCommanded(200, 200)

	m.BeginGrace()
	if _, _, ok := m.Commanded(); ok {
		t.Error("commanded reference should be cleared on grace entry")
	}
}

func TestSetGracePeriod(t *testing.T) {
	m, clock := newTestMonitor()
	m.SetGracePeriod(500 * time.Millisecond)
	m.BeginGrace()
	m.Arm(false)

	clock.advance(time.Second)
	m.SetCommanded(100, 100)
	m.Observe(moveAt(clock, 100, 100))

	if m.State() != StateArmed {
		t.Errorf("state = %v, want Armed after shortened grace", m.State())
	}
}

func TestStateString(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateIdle, "Idle"},
		{StateGrace, "GracePeriod"},
		{StateArmed, "Armed"},
		{StateQuietCheck, "QuietWindowCheck"},
		{StateOverride, "ManualOverrideDetected"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}
