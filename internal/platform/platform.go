// Package platform provides the OS-facing capabilities the replay engine
// depends on: moving the physical cursor and observing live cursor input.
// The engine itself only sees the CursorDriver and InputListener interfaces,
// so tests can substitute synthetic implementations.
package platform

import (
	"context"
	"time"
)

// EventKind distinguishes the live input events a listener can deliver.
type EventKind string

const (
	EventMove  EventKind = "move"
	EventClick EventKind = "click"
)

// Mouse button names as stored in patterns and reported by listeners.
const (
	ButtonLeft   = "left"
	ButtonRight  = "right"
	ButtonMiddle = "middle"
)

// Event is one observed cursor event.
type Event struct {
	Kind    EventKind
	X       int
	Y       int
	Button  string
	Pressed bool
	Time    time.Time
}

// CursorDriver moves the physical cursor. MoveTo is synchronous; a failed
// move is reported but callers are expected to treat it as non-fatal.
type CursorDriver interface {
	// MoveTo places the cursor at absolute screen coordinates.
	MoveTo(x, y int) error

	// Click presses or releases a mouse button at the current position.
	// Drivers without click support return ErrClickUnsupported.
	Click(button string, pressed bool) error

	// Position reports the current absolute cursor position.
	Position() (x, y int, err error)
}

// InputListener delivers a stream of live cursor events. The stream must
// keep flowing while the consumer is sleeping; events are dropped rather
// than blocking the producer when the consumer falls behind.
type InputListener interface {
	// Start begins delivering events until the context is cancelled.
	Start(ctx context.Context) error

	// Events returns the channel events are delivered on. The channel is
	// closed once the listener stops.
	Events() <-chan Event
}

// NewCursorDriver returns the cursor driver for the current platform.
func NewCursorDriver() (CursorDriver, error) {
	return newCursorDriver()
}

// NewInputListener returns the input listener for the current platform.
// All platforms currently use position polling against the driver.
func NewInputListener(d CursorDriver) (InputListener, error) {
	return NewPollListener(d, DefaultPollInterval), nil
}
