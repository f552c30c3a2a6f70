// Package pattern defines the recorded cursor pattern model and its
// on-disk JSON representation.
package pattern

import (
	"errors"
	"time"

	"github.com/pzielke/ghosthand/internal/platform"
)

// ErrInvalidPattern is returned when a pattern has fewer than two points.
var ErrInvalidPattern = errors.New("pattern needs at least two points")

// Point is one recorded cursor event. T is the offset from the pattern
// start; the first point of a pattern has T == 0. Points are immutable
// once recorded.
type Point struct {
	Kind    platform.EventKind `json:"type"`
	X       int                `json:"x"`
	Y       int                `json:"y"`
	Button  string             `json:"button,omitempty"`
	Pressed bool               `json:"pressed,omitempty"`
	T       time.Duration      `json:"t"`
}

// IsClick reports whether the point is a button event.
func (p Point) IsClick() bool {
	return p.Kind == platform.EventClick
}

// Pattern is an ordered sequence of points with non-decreasing offsets.
type Pattern []Point

// Validate checks the pattern is replayable.
func (p Pattern) Validate() error {
	if len(p) < 2 {
		return ErrInvalidPattern
	}
	return nil
}

// Duration returns the recorded length of the pattern.
func (p Pattern) Duration() time.Duration {
	if len(p) == 0 {
		return 0
	}
	return p[len(p)-1].T
}

// normalize rebases offsets so the first point sits at T == 0 and clamps
// any backwards timestamps (clock skew in the recording source).
func (p Pattern) normalize() {
	if len(p) == 0 {
		return
	}
	base := p[0].T
	prev := time.Duration(0)
	for i := range p {
		t := p[i].T - base
		if t < prev {
			t = prev
		}
		p[i].T = t
		prev = t
	}
}
