package platform

import (
	"context"
	"log"
	"time"
)

// DefaultPollInterval is how often the polling listener samples the cursor
// position. 50ms keeps detection latency well under the sub-second bound
// without noticeable CPU cost.
const DefaultPollInterval = 50 * time.Millisecond

// PollListener derives move events by sampling the cursor position through
// a CursorDriver. It cannot observe clicks; platforms with a native event
// tap should provide their own listener instead.
type PollListener struct {
	driver   CursorDriver
	interval time.Duration
	events   chan Event
}

// NewPollListener creates a listener polling d every interval.
func NewPollListener(d CursorDriver, interval time.Duration) *PollListener {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &PollListener{
		driver:   d,
		interval: interval,
		events:   make(chan Event, 64),
	}
}

// Start begins polling until ctx is cancelled.
func (p *PollListener) Start(ctx context.Context) error {
	lastX, lastY, err := p.driver.Position()
	if err != nil {
		return err
	}

	go func() {
		defer close(p.events)

		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			x, y, err := p.driver.Position()
			if err != nil {
				// Transient query failures are logged and skipped; the
				// next tick retries.
				log.Printf("platform: position poll failed: %v", err)
				continue
			}

			if x == lastX && y == lastY {
				continue
			}
			lastX, lastY = x, y

			ev := Event{Kind: EventMove, X: x, Y: y, Time: time.Now()}
			select {
			case p.events <- ev:
			default:
				// Consumer is behind; drop rather than block the poll loop.
			}
		}
	}()

	return nil
}

// Events returns the event channel.
func (p *PollListener) Events() <-chan Event {
	return p.events
}
