// Package engine drives the replay loop: wait, quiet-window check,
// sampled and synthesized motion, and override arbitration.
package engine

import (
	"context"
	"errors"
	"log"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pzielke/ghosthand/internal/monitor"
	"github.com/pzielke/ghosthand/internal/pattern"
	"github.com/pzielke/ghosthand/internal/platform"
	"github.com/pzielke/ghosthand/internal/replay"
	"github.com/pzielke/ghosthand/internal/schedule"
)

// Config assembles an Engine. Pattern and Interval are required; nil
// Driver, Listener or Rand fall back to the platform implementations and
// a time-seeded source.
type Config struct {
	Pattern  pattern.Pattern
	Interval time.Duration
	Driver   platform.CursorDriver
	Listener platform.InputListener
	Rand     *rand.Rand

	// MaxX and MaxY bound commanded coordinates. Zero values use the
	// replay package defaults.
	MaxX int
	MaxY int

	// GracePeriod overrides the monitor's default grace window. The
	// full default suits freshly recorded patterns; a short grace is
	// enough when replaying a known one.
	GracePeriod time.Duration
}

// Engine owns one replay loop. Starting and stopping follows the same
// lifecycle as a timed/indefinite background keeper: a context scopes the
// run, a timer bounds timed sessions, and Stop unwinds cooperatively.
type Engine struct {
	mu      sync.Mutex
	running bool
	ctx     context.Context
	cancel  context.CancelFunc
	timer   *time.Timer
	endTime time.Time
	done    chan struct{}

	pat      pattern.Pattern
	interval time.Duration
	driver   platform.CursorDriver
	listener platform.InputListener
	rnd      *rand.Rand
	maxX     int
	maxY     int

	mon   *monitor.Monitor
	sched *schedule.Scheduler
	synth *replay.Synthesizer

	// Quiet-window timing, overridable in tests.
	quietWindow time.Duration
	quietRetry  time.Duration

	replayCount   atomic.Int64
	overrideCount atomic.Int64
	lastOverride  atomic.Int64 // unix nanos
}

// New validates the configuration and builds a stopped engine.
func New(cfg Config) (*Engine, error) {
	if err := cfg.Pattern.Validate(); err != nil {
		return nil, err
	}
	if cfg.Interval <= 0 {
		return nil, errors.New("replay interval must be positive")
	}

	driver := cfg.Driver
	if driver == nil {
		var err error
		driver, err = platform.NewCursorDriver()
		if err != nil {
			return nil, err
		}
	}
	listener := cfg.Listener
	if listener == nil {
		var err error
		listener, err = platform.NewInputListener(driver)
		if err != nil {
			return nil, err
		}
	}
	rnd := cfg.Rand
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	maxX, maxY := cfg.MaxX, cfg.MaxY
	if maxX <= 0 {
		maxX = replay.DefaultMaxX
	}
	if maxY <= 0 {
		maxY = replay.DefaultMaxY
	}

	mon := monitor.New()
	if cfg.GracePeriod > 0 {
		mon.SetGracePeriod(cfg.GracePeriod)
	}

	return &Engine{
		pat:         cfg.Pattern,
		interval:    cfg.Interval,
		driver:      driver,
		listener:    listener,
		rnd:         rnd,
		maxX:        maxX,
		maxY:        maxY,
		mon:         mon,
		sched:       schedule.New(cfg.Interval, rnd),
		synth:       replay.NewSynthesizer(rnd),
		quietWindow: monitor.QuietWindow,
		quietRetry:  monitor.QuietRetryDelay,
	}, nil
}

// SetPattern replaces the replay pattern. The engine must be stopped;
// the next start picks up the new pattern.
func (e *Engine) SetPattern(p pattern.Pattern) error {
	if err := p.Validate(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.running {
		return errors.New("cannot replace pattern while running")
	}
	e.pat = p
	return nil
}

// IsRunning returns whether the replay loop is currently active.
func (e *Engine) IsRunning() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

// StartIndefinite starts the replay loop with no duration bound.
func (e *Engine) StartIndefinite() error {
	return e.start(0)
}

// StartTimed starts the replay loop and stops it after d.
func (e *Engine) StartTimed(d time.Duration) error {
	if d <= 0 {
		return errors.New("duration must be positive")
	}
	return e.start(d)
}

func (e *Engine) start(d time.Duration) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.running {
		return errors.New("replay engine already running")
	}

	e.ctx, e.cancel = context.WithCancel(context.Background())
	if err := e.listener.Start(e.ctx); err != nil {
		e.cancel()
		return err
	}

	e.done = make(chan struct{})
	e.running = true

	if d > 0 {
		e.endTime = time.Now().Add(d)
		e.timer = time.AfterFunc(d, func() {
			e.Stop()
		})
		log.Printf("engine: started (timed=%s, interval=%s)", d, e.interval)
	} else {
		e.endTime = time.Time{}
		log.Printf("engine: started (indefinite, interval=%s)", e.interval)
	}

	go e.pumpEvents(e.ctx)
	go e.run(e.ctx)
	return nil
}

// Stop stops the replay loop.
func (e *Engine) Stop() error {
	return e.StopWithTimeout(0)
}

// StopWithTimeout stops the replay loop, waiting up to timeout for the
// in-flight replay to unwind.
func (e *Engine) StopWithTimeout(timeout time.Duration) error {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return nil
	}

	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}

	done := e.done
	e.running = false
	e.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	select {
	case <-done:
		log.Printf("engine: stopped")
		return nil
	case <-ctx.Done():
		log.Printf("engine: stop timeout exceeded after %v", timeout)
		return ctx.Err()
	}
}

// TimeRemaining returns the remaining duration for timed mode.
func (e *Engine) TimeRemaining() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.running || e.endTime.IsZero() {
		return 0
	}
	remaining := time.Until(e.endTime)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Status is a snapshot of the running loop for display.
type Status struct {
	Running      bool
	State        monitor.State
	NextReplay   time.Time
	Replays      int64
	Overrides    int64
	LastOverride time.Time
}

// Status returns the current loop snapshot.
func (e *Engine) Status() Status {
	st := Status{
		Running:    e.IsRunning(),
		State:      e.mon.State(),
		NextReplay: e.sched.Deadline(),
		Replays:    e.replayCount.Load(),
		Overrides:  e.overrideCount.Load(),
	}
	if ns := e.lastOverride.Load(); ns != 0 {
		st.LastOverride = time.Unix(0, ns)
	}
	return st
}

// pumpEvents feeds live input events into the monitor until the listener
// stream closes.
func (e *Engine) pumpEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-e.listener.Events():
			if !ok {
				return
			}
			e.mon.Observe(ev)
		}
	}
}

// run is the main control loop: wait, quiet window, replay, repeat.
func (e *Engine) run(ctx context.Context) {
	defer close(e.done)

	// Startup grace period absorbs any motion caused by launching the
	// tool itself.
	e.mon.BeginGrace()

	for {
		if err := e.sched.Wait(ctx); err != nil {
			return
		}
		if err := e.awaitQuiet(ctx); err != nil {
			return
		}
		if err := e.replayOnce(ctx); err != nil {
			return
		}
	}
}

// awaitQuiet blocks until a full quiet window passes with no user
// activity, postponing indefinitely while the user keeps working.
func (e *Engine) awaitQuiet(ctx context.Context) error {
	e.mon.BeginQuietCheck()

	for {
		mark := time.Now()
		if err := sleepCtx(ctx, e.quietWindow); err != nil {
			return err
		}
		if !e.mon.ActivitySince(mark) {
			return nil
		}
		log.Printf("engine: user activity during quiet window, postponing replay by %s", e.quietRetry)
		if err := sleepCtx(ctx, e.quietRetry); err != nil {
			return err
		}
	}
}

// replayOnce drives one sampled, synthesized replay through the driver
// while the monitor observes concurrently. Returns a non-nil error only
// on cancellation; overrides abort the replay but keep the loop running.
func (e *Engine) replayOnce(ctx context.Context) error {
	// An override that tripped after the previous replay drained its
	// steps is still a genuine takeover; honor it before starting.
	select {
	case when := <-e.mon.Overrides():
		e.handleOverride(when)
		return nil
	default:
	}

	path := replay.Sample(e.rnd, e.pat)
	steps := e.synth.Steps(path)

	e.mon.Arm(true)
	log.Printf("engine: replaying %d steps from %d sampled points", len(steps), len(path))

	for _, st := range steps {
		if st.Delay > 0 {
			timer := time.NewTimer(st.Delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case when := <-e.mon.Overrides():
				timer.Stop()
				e.handleOverride(when)
				return nil
			case <-timer.C:
			}
		} else {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case when := <-e.mon.Overrides():
				e.handleOverride(when)
				return nil
			default:
			}
		}

		x, y := clamp(st.X, 0, e.maxX), clamp(st.Y, 0, e.maxY)

		// The commanded write must land before the move is issued so the
		// monitor never compares against a stale reference.
		e.mon.SetCommanded(x, y)
		if err := e.driver.MoveTo(x, y); err != nil {
			// A single failed move should not abort a long-running
			// background task; skip the step and continue.
			log.Printf("engine: move failed, skipping step: %v", err)
			continue
		}

		if st.Click {
			if err := e.driver.Click(st.Button, st.Pressed); err != nil {
				if !errors.Is(err, platform.ErrClickUnsupported) {
					log.Printf("engine: click failed, skipping: %v", err)
				}
			}
		}
	}

	// An override may have landed during the final step.
	select {
	case when := <-e.mon.Overrides():
		e.handleOverride(when)
		return nil
	default:
	}

	e.mon.Disarm()
	e.replayCount.Add(1)
	log.Printf("engine: replay %d complete", e.replayCount.Load())
	return nil
}

// handleOverride hands the cursor back to the user: the in-flight replay
// was already abandoned, the interval restarts from now, and the next
// cycle begins with a fresh grace period.
func (e *Engine) handleOverride(when time.Time) {
	e.overrideCount.Add(1)
	e.lastOverride.Store(when.UnixNano())
	e.sched.Reset()
	e.mon.BeginGrace()
	log.Printf("engine: manual override, interval timer reset")
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
