package engine

import (
	"context"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pzielke/ghosthand/internal/pattern"
	"github.com/pzielke/ghosthand/internal/platform"
)

// fakeDriver records every commanded move and click.
type fakeDriver struct {
	mu     sync.Mutex
	moves  [][2]int
	clicks []string
}

func (d *fakeDriver) MoveTo(x, y int) error {
	d.mu.Lock()
	d.moves = append(d.moves, [2]int{x, y})
	d.mu.Unlock()
	return nil
}

func (d *fakeDriver) Click(button string, pressed bool) error {
	d.mu.Lock()
	d.clicks = append(d.clicks, button)
	d.mu.Unlock()
	return nil
}

func (d *fakeDriver) Position() (int, int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.moves) == 0 {
		return 0, 0, nil
	}
	last := d.moves[len(d.moves)-1]
	return last[0], last[1], nil
}

func (d *fakeDriver) moveCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.moves)
}

func (d *fakeDriver) lastMove() (int, int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.moves) == 0 {
		return 0, 0
	}
	last := d.moves[len(d.moves)-1]
	return last[0], last[1]
}

// fakeListener delivers events the test pushes by hand.
type fakeListener struct {
	events chan platform.Event
}

func newFakeListener() *fakeListener {
	return &fakeListener{events: make(chan platform.Event, 64)}
}

func (l *fakeListener) Start(ctx context.Context) error { return nil }

func (l *fakeListener) Events() <-chan platform.Event { return l.events }

func (l *fakeListener) push(ev platform.Event) {
	select {
	case l.events <- ev:
	default:
	}
}

func twoPointPattern(dur time.Duration) pattern.Pattern {
	return pattern.Pattern{
		{Kind: platform.EventMove, X: 0, Y: 0, T: 0},
		{Kind: platform.EventMove, X: 100, Y: 100, T: dur},
	}
}

func newTestEngine(t *testing.T, cfg Config) (*Engine, *fakeDriver, *fakeListener) {
	t.Helper()

	drv := &fakeDriver{}
	lis := newFakeListener()
	cfg.Driver = drv
	cfg.Listener = lis
	if cfg.Rand == nil {
		cfg.Rand = rand.New(rand.NewSource(1))
	}

	eng, err := New(cfg)
	require.NoError(t, err)
	return eng, drv, lis
}

func TestNewValidation(t *testing.T) {
	_, err := New(Config{Interval: time.Minute})
	assert.ErrorIs(t, err, pattern.ErrInvalidPattern)

	_, err = New(Config{Pattern: twoPointPattern(time.Second), Interval: 0, Driver: &fakeDriver{}, Listener: newFakeListener()})
	assert.Error(t, err)
}

func TestEngineReplaysPattern(t *testing.T) {
	eng, drv, _ := newTestEngine(t, Config{
		Pattern:  twoPointPattern(100 * time.Millisecond),
		Interval: 20 * time.Millisecond,
	})
	eng.quietWindow = 10 * time.Millisecond
	eng.quietRetry = 10 * time.Millisecond

	require.NoError(t, eng.StartIndefinite())
	defer eng.Stop()

	require.Eventually(t, func() bool {
		return eng.Status().Replays >= 1
	}, 5*time.Second, 10*time.Millisecond, "no replay completed")

	x, y := drv.lastMove()
	assert.Equal(t, 100, x, "replay should land on the recorded endpoint")
	assert.Equal(t, 100, y)
	assert.Greater(t, drv.moveCount(), 2, "synthesis should add intermediate steps")
}

func TestEngineReplaysClicks(t *testing.T) {
	pat := pattern.Pattern{
		{Kind: platform.EventMove, X: 0, Y: 0, T: 0},
		{Kind: platform.EventClick, X: 50, Y: 50, Button: platform.ButtonLeft, Pressed: true, T: 50 * time.Millisecond},
		{Kind: platform.EventMove, X: 100, Y: 100, T: 100 * time.Millisecond},
	}
	eng, drv, _ := newTestEngine(t, Config{Pattern: pat, Interval: 20 * time.Millisecond})
	eng.quietWindow = 10 * time.Millisecond
	eng.quietRetry = 10 * time.Millisecond

	require.NoError(t, eng.StartIndefinite())
	defer eng.Stop()

	require.Eventually(t, func() bool {
		return eng.Status().Replays >= 1
	}, 5*time.Second, 10*time.Millisecond)

	drv.mu.Lock()
	defer drv.mu.Unlock()
	require.Len(t, drv.clicks, 1)
	assert.Equal(t, platform.ButtonLeft, drv.clicks[0])
}

func TestStopDuringReplay(t *testing.T) {
	eng, drv, _ := newTestEngine(t, Config{
		Pattern:  twoPointPattern(5 * time.Second),
		Interval: 10 * time.Millisecond,
	})
	eng.quietWindow = 5 * time.Millisecond
	eng.quietRetry = 5 * time.Millisecond

	require.NoError(t, eng.StartIndefinite())

	// Wait until the replay is mid-flight.
	require.Eventually(t, func() bool {
		return drv.moveCount() > 0
	}, 5*time.Second, 5*time.Millisecond, "replay never started")

	start := time.Now()
	require.NoError(t, eng.StopWithTimeout(2*time.Second))
	assert.Less(t, time.Since(start), time.Second, "stop should unwind within one step delay")
	assert.False(t, eng.IsRunning())

	// No further moves after stop.
	n := drv.moveCount()
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, n, drv.moveCount())
}

func TestManualOverrideAbortsReplay(t *testing.T) {
	eng, drv, lis := newTestEngine(t, Config{
		Pattern:     twoPointPattern(5 * time.Second),
		Interval:    10 * time.Millisecond,
		GracePeriod: time.Millisecond,
	})
	eng.quietWindow = 5 * time.Millisecond
	eng.quietRetry = 5 * time.Millisecond

	require.NoError(t, eng.StartIndefinite())
	defer eng.Stop()

	require.Eventually(t, func() bool {
		return drv.moveCount() > 0
	}, 5*time.Second, 5*time.Millisecond, "replay never started")

	// A cursor position far from anything commanded means the user has
	// grabbed the mouse.
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		for {
			select {
			case <-stop:
				return
			case <-time.After(5 * time.Millisecond):
				lis.push(platform.Event{Kind: platform.EventMove, X: 5000, Y: 5000, Time: time.Now()})
			}
		}
	}()

	require.Eventually(t, func() bool {
		return eng.Status().Overrides >= 1
	}, 5*time.Second, 10*time.Millisecond, "override never detected")

	st := eng.Status()
	assert.False(t, st.LastOverride.IsZero())
}

func TestTakeoverDoesNotEchoIntoNextCycle(t *testing.T) {
	eng, drv, lis := newTestEngine(t, Config{
		Pattern:     twoPointPattern(300 * time.Millisecond),
		Interval:    200 * time.Millisecond,
		GracePeriod: time.Millisecond,
	})
	eng.quietWindow = 5 * time.Millisecond
	eng.quietRetry = 5 * time.Millisecond

	require.NoError(t, eng.StartIndefinite())
	defer eng.Stop()

	require.Eventually(t, func() bool {
		return drv.moveCount() > 0
	}, 5*time.Second, 5*time.Millisecond, "replay never started")

	// Genuine takeover: far-away motion while the replay is in flight.
	require.Eventually(t, func() bool {
		lis.push(platform.Event{Kind: platform.EventMove, X: 5000, Y: 5000, Time: time.Now()})
		return eng.Status().Overrides == 1
	}, 5*time.Second, 10*time.Millisecond, "takeover never detected")

	// Free motion during the post-takeover idle wait, well past grace
	// expiry, must not count as another takeover or skip the next cycle.
	time.Sleep(30 * time.Millisecond)
	lis.push(platform.Event{Kind: platform.EventMove, X: 5000, Y: 5000, Time: time.Now()})

	require.Eventually(t, func() bool {
		return eng.Status().Replays >= 1
	}, 5*time.Second, 10*time.Millisecond, "next cycle never replayed")
	assert.EqualValues(t, 1, eng.Status().Overrides, "idle motion counted as a takeover")
}

func TestQuietWindowPostponesReplay(t *testing.T) {
	eng, _, lis := newTestEngine(t, Config{
		Pattern:  twoPointPattern(50 * time.Millisecond),
		Interval: time.Millisecond,
	})
	eng.quietWindow = 50 * time.Millisecond
	eng.quietRetry = 10 * time.Millisecond

	require.NoError(t, eng.StartIndefinite())
	defer eng.Stop()

	// Keep the cursor busy; the quiet window should never elapse.
	busy := make(chan struct{})
	go func() {
		x := 0
		for {
			select {
			case <-busy:
				return
			case <-time.After(10 * time.Millisecond):
				x++
				lis.push(platform.Event{Kind: platform.EventMove, X: x, Y: x, Time: time.Now()})
			}
		}
	}()

	time.Sleep(300 * time.Millisecond)
	assert.Zero(t, eng.Status().Replays, "replay should be postponed while the user is active")

	close(busy)
	require.Eventually(t, func() bool {
		return eng.Status().Replays >= 1
	}, 5*time.Second, 10*time.Millisecond, "replay never ran after activity stopped")
}

func TestLifecycle(t *testing.T) {
	eng, _, _ := newTestEngine(t, Config{
		Pattern:  twoPointPattern(100 * time.Millisecond),
		Interval: time.Minute,
	})

	assert.NoError(t, eng.Stop(), "stopping a stopped engine is a no-op")
	assert.Error(t, eng.StartTimed(0))

	require.NoError(t, eng.StartTimed(time.Minute))
	assert.True(t, eng.IsRunning())
	assert.Greater(t, eng.TimeRemaining(), 59*time.Second)

	assert.Error(t, eng.StartIndefinite(), "double start must fail")

	require.NoError(t, eng.Stop())
	assert.False(t, eng.IsRunning())
	assert.Zero(t, eng.TimeRemaining())
}

func TestSetPattern(t *testing.T) {
	eng, _, _ := newTestEngine(t, Config{
		Pattern:  twoPointPattern(100 * time.Millisecond),
		Interval: time.Minute,
	})

	assert.ErrorIs(t, eng.SetPattern(nil), pattern.ErrInvalidPattern)
	assert.NoError(t, eng.SetPattern(twoPointPattern(time.Second)))

	require.NoError(t, eng.StartIndefinite())
	assert.Error(t, eng.SetPattern(twoPointPattern(time.Second)), "replacement must be rejected while running")
	require.NoError(t, eng.Stop())

	assert.NoError(t, eng.SetPattern(twoPointPattern(time.Second)))
}

func TestTimedRunStopsItself(t *testing.T) {
	eng, _, _ := newTestEngine(t, Config{
		Pattern:  twoPointPattern(100 * time.Millisecond),
		Interval: time.Minute,
	})

	require.NoError(t, eng.StartTimed(30*time.Millisecond))
	require.Eventually(t, func() bool {
		return !eng.IsRunning()
	}, 2*time.Second, 10*time.Millisecond, "timed run should stop on its own")
}
