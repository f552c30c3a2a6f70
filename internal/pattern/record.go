package pattern

import (
	"context"
	"time"

	"github.com/pzielke/ghosthand/internal/platform"
)

// DefaultRecordWindow is how long a recording session captures events.
const DefaultRecordWindow = 8 * time.Second

// Record captures live cursor events from the listener stream for the
// given window and turns them into a pattern with offsets relative to the
// first event. Returns ErrInvalidPattern if too few events were captured.
func Record(ctx context.Context, events <-chan platform.Event, window time.Duration) (Pattern, error) {
	if window <= 0 {
		window = DefaultRecordWindow
	}

	deadline := time.NewTimer(window)
	defer deadline.Stop()

	var (
		p     Pattern
		start time.Time
	)

loop:
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-deadline.C:
			break loop
		case ev, ok := <-events:
			if !ok {
				break loop
			}
			if start.IsZero() {
				start = ev.Time
			}
			p = append(p, Point{
				Kind:    ev.Kind,
				X:       ev.X,
				Y:       ev.Y,
				Button:  ev.Button,
				Pressed: ev.Pressed,
				T:       ev.Time.Sub(start),
			})
		}
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	p.normalize()
	return p, nil
}
