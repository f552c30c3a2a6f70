// Package monitor implements the manual override state machine. It runs
// concurrently with replay, watching live cursor events and the replay's
// last commanded position to tell script-generated motion from genuine
// user input.
package monitor

import (
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pzielke/ghosthand/internal/platform"
)

// State is the override detection state. Transitions per cycle are
// strictly sequential: Grace -> Armed -> (Override | Idle), with
// QuietCheck entered independently before each scheduled replay.
type State int

const (
	StateIdle State = iota
	StateGrace
	StateArmed
	StateQuietCheck
	StateOverride
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateGrace:
		return "GracePeriod"
	case StateArmed:
		return "Armed"
	case StateQuietCheck:
		return "QuietWindowCheck"
	case StateOverride:
		return "ManualOverrideDetected"
	default:
		return "Unknown"
	}
}

const (
	// GracePeriod is how long after startup or a detected override all
	// cursor motion is ignored, absorbing the script's own moves.
	GracePeriod = 5 * time.Second

	// QuietWindow is the pre-replay observation window that must pass
	// with zero user activity before automation may start.
	QuietWindow = 5 * time.Second

	// QuietRetryDelay is how long a replay is postponed after activity
	// is seen during the quiet window.
	QuietRetryDelay = 5 * time.Second

	// BaseThresholdPixels is the distance from the last commanded
	// position treated as manual motion.
	BaseThresholdPixels = 15

	// TremorThresholdPixels widens the detection threshold while the
	// synthesizer is applying its own per-step tremor.
	TremorThresholdPixels = 20
)

// commandedUnset marks the commanded position as not yet written. Moves
// observed before the first commanded write never trip detection.
const commandedUnset = ^uint64(0)

// Monitor arbitrates cursor ownership between the replay engine and the
// user. Only the listener goroutine calls Observe; the engine reads state
// and receives detections through Overrides.
type Monitor struct {
	now func() time.Time

	mu         sync.Mutex
	state      State
	grace      time.Duration
	graceUntil time.Time
	armPending bool
	tremorMode bool

	commanded    atomic.Uint64 // packed x,y of last commanded move
	lastActivity atomic.Int64  // unix nanos of last observed event

	overrides chan time.Time
}

// New creates a monitor in the Idle state using the wall clock.
func New() *Monitor {
	return NewWithClock(time.Now)
}

// NewWithClock creates a monitor with an injectable clock for tests.
func NewWithClock(now func() time.Time) *Monitor {
	m := &Monitor{
		now:       now,
		grace:     GracePeriod,
		overrides: make(chan time.Time, 1),
	}
	m.commanded.Store(commandedUnset)
	return m
}

// SetGracePeriod overrides the default grace window. A short grace is
// appropriate when replaying a known pattern; a freshly recorded one
// leaves the cursor wherever the user put it, so the full default is
// safer there.
func (m *Monitor) SetGracePeriod(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d > 0 {
		m.grace = d
	}
}

// State returns the current detection state.
func (m *Monitor) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Overrides delivers the detection time of each manual override. The
// channel holds at most one pending detection.
func (m *Monitor) Overrides() <-chan time.Time {
	return m.overrides
}

// BeginGrace enters the grace period. Called at engine start and
// immediately after every detected override. Any pending arm is
// cancelled and the commanded reference forgotten: the aborted replay's
// last position must never be compared against later motion.
func (m *Monitor) BeginGrace() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = StateGrace
	m.graceUntil = m.now().Add(m.grace)
	m.armPending = false
	m.commanded.Store(commandedUnset)
}

// Arm enables detection for a replay. tremorMode widens the threshold to
// tolerate the synthesizer's own per-step tremor. If a grace period is
// still running the monitor stays in Grace and promotes itself to Armed
// once the period expires.
func (m *Monitor) Arm(tremorMode bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tremorMode = tremorMode
	m.commanded.Store(commandedUnset)
	if m.state == StateGrace && m.now().Before(m.graceUntil) {
		m.armPending = true
		return
	}
	m.state = StateArmed
}

// Disarm returns to Idle after a replay completes naturally.
func (m *Monitor) Disarm() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = StateIdle
	m.armPending = false
}

// BeginQuietCheck enters the pre-replay quiet window.
func (m *Monitor) BeginQuietCheck() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = StateQuietCheck
}

// SetCommanded records the position the engine is about to command. Must
// be called before the corresponding driver move is issued so detection
// never compares against a stale reference.
func (m *Monitor) SetCommanded(x, y int) {
	m.commanded.Store(packPosition(x, y))
}

// Commanded returns the last commanded position and whether one is set.
func (m *Monitor) Commanded() (x, y int, ok bool) {
	packed := m.commanded.Load()
	if packed == commandedUnset {
		return 0, 0, false
	}
	x, y = unpackPosition(packed)
	return x, y, true
}

// LastActivity returns the time of the most recently observed event.
func (m *Monitor) LastActivity() time.Time {
	ns := m.lastActivity.Load()
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns)
}

// ActivitySince reports whether any event was observed after t.
func (m *Monitor) ActivitySince(t time.Time) bool {
	return m.LastActivity().After(t)
}

// Observe consumes one live input event. Called from the listener
// goroutine; never blocks.
func (m *Monitor) Observe(ev platform.Event) {
	when := ev.Time
	if when.IsZero() {
		when = m.now()
	}
	m.lastActivity.Store(when.UnixNano())

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == StateGrace {
		if m.now().Before(m.graceUntil) {
			return
		}
		// Armed is only entered on behalf of a replay. An expired grace
		// with no arm pending means the cycle was abandoned; fall back
		// to Idle so free cursor motion is never measured against a
		// stale reference.
		if !m.armPending {
			m.state = StateIdle
			return
		}
		m.armPending = false
		m.state = StateArmed
		log.Printf("monitor: grace period ended, detection armed")
	}
	if m.state != StateArmed {
		return
	}

	if ev.Kind == platform.EventClick {
		m.trip(when, "click")
		return
	}

	cx, cy, ok := m.Commanded()
	if !ok {
		// Nothing commanded yet this replay; do not flag.
		return
	}

	threshold := BaseThresholdPixels
	if m.tremorMode {
		threshold = TremorThresholdPixels
	}
	if chebyshev(ev.X, ev.Y, cx, cy) > threshold {
		m.trip(when, "movement")
	}
}

// trip transitions to Override and signals the engine. Caller holds mu.
func (m *Monitor) trip(when time.Time, cause string) {
	m.state = StateOverride
	log.Printf("monitor: manual override detected (%s)", cause)
	select {
	case m.overrides <- when:
	default:
	}
}

// chebyshev is the per-axis maximum distance between two positions.
func chebyshev(x1, y1, x2, y2 int) int {
	dx := abs(x1 - x2)
	dy := abs(y1 - y2)
	if dx > dy {
		return dx
	}
	return dy
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func packPosition(x, y int) uint64 {
	return uint64(uint32(int32(x)))<<32 | uint64(uint32(int32(y)))
}

func unpackPosition(packed uint64) (int, int) {
	return int(int32(packed >> 32)), int(int32(packed & 0xffffffff))
}
