package replay

import (
	"math"
	"math/rand"
	"time"

	"github.com/pzielke/ghosthand/internal/pattern"
)

// MicroStep is one unit of replay output: either a cursor position to
// command after waiting Delay, or a button event at the current position.
type MicroStep struct {
	X     int
	Y     int
	Delay time.Duration

	// Exact marks steps that land on a sampled point. No tremor is ever
	// applied to exact steps, so the replay arrives at recorded
	// coordinates precisely.
	Exact bool

	Click   bool
	Button  string
	Pressed bool
}

// Synthesizer expands a sampled path into a micro-step stream with
// organic variation. All randomness comes from the injected source, so a
// fixed seed yields an identical stream.
type Synthesizer struct {
	rnd *rand.Rand
}

// NewSynthesizer creates a synthesizer drawing from rnd.
func NewSynthesizer(rnd *rand.Rand) *Synthesizer {
	return &Synthesizer{rnd: rnd}
}

// Steps expands the sampled path into the full micro-step sequence for
// one replay. The caller drains the sequence step by step, waiting each
// step's Delay before issuing it, and may abandon it at any step.
func (s *Synthesizer) Steps(path []pattern.Point) []MicroStep {
	if len(path) == 0 {
		return nil
	}

	steps := make([]MicroStep, 0, len(path)*MinSegmentSteps)

	// Opening step places the cursor on the path's first point.
	first := path[0]
	steps = append(steps, MicroStep{X: first.X, Y: first.Y, Exact: true})

	var pendingPause time.Duration
	for i := 0; i+1 < len(path); i++ {
		steps = s.appendSegment(steps, path[i], path[i+1], &pendingPause)

		// Inter-point hesitation between segments.
		if s.rnd.Float64() < SegmentPauseProbability {
			pendingPause += s.randDuration(SegmentPauseMin, SegmentPauseMax)
		}
	}
	return steps
}

// appendSegment emits the micro-steps for one consecutive point pair.
func (s *Synthesizer) appendSegment(steps []MicroStep, a, b pattern.Point, pendingPause *time.Duration) []MicroStep {
	dur := b.T - a.T
	dur = time.Duration(float64(dur) * s.randFloat(SegmentTimingVariationMin, SegmentTimingVariationMax))

	if dur <= 0 {
		// Simultaneous events (typically a click at the current spot)
		// are issued instantly.
		return append(steps, s.arrivalStep(b, s.takePause(pendingPause)))
	}

	n := int(dur.Seconds() * TargetStepRate)
	if n < MinSegmentSteps {
		n = MinSegmentSteps
	} else if n > MaxSegmentSteps {
		n = MaxSegmentSteps
	}
	base := dur / time.Duration(n)

	for step := 1; step <= n; step++ {
		u := float64(step) / float64(n)
		eased := easeInOut(u)

		x := a.X + int(math.Round(float64(b.X-a.X)*eased))
		y := a.Y + int(math.Round(float64(b.Y-a.Y)*eased))

		delay := time.Duration(float64(base) * s.randFloat(StepTimingVariationMin, StepTimingVariationMax))
		delay += s.pauseBonus()
		delay += s.takePause(pendingPause)

		if step == n {
			steps = append(steps, s.arrivalStep(b, delay))
			continue
		}

		steps = append(steps, MicroStep{
			X:     x + s.tremor(),
			Y:     y + s.tremor(),
			Delay: delay,
		})
	}
	return steps
}

// arrivalStep builds the tremor-free step landing exactly on pt,
// including the button event for click points.
func (s *Synthesizer) arrivalStep(pt pattern.Point, delay time.Duration) MicroStep {
	st := MicroStep{X: pt.X, Y: pt.Y, Delay: delay, Exact: true}
	if pt.IsClick() {
		st.Click = true
		st.Button = pt.Button
		st.Pressed = pt.Pressed
	}
	return st
}

// pauseBonus evaluates the two micro-pause tiers. The checks are
// independent; when both trigger the bonuses add.
func (s *Synthesizer) pauseBonus() time.Duration {
	var bonus time.Duration
	if s.rnd.Float64() < BriefPauseProbability {
		bonus += s.randDuration(BriefPauseMin, BriefPauseMax)
	}
	if s.rnd.Float64() < LongPauseProbability {
		bonus += s.randDuration(LongPauseMin, LongPauseMax)
	}
	return bonus
}

func (s *Synthesizer) takePause(pending *time.Duration) time.Duration {
	d := *pending
	*pending = 0
	return d
}

func (s *Synthesizer) tremor() int {
	return s.rnd.Intn(2*TremorAmplitudePixels+1) - TremorAmplitudePixels
}

func (s *Synthesizer) randFloat(min, max float64) float64 {
	return min + s.rnd.Float64()*(max-min)
}

func (s *Synthesizer) randDuration(min, max time.Duration) time.Duration {
	return min + time.Duration(s.rnd.Float64()*float64(max-min))
}

// easeInOut is the smoothstep curve 3u^2 - 2u^3, accelerating out of and
// decelerating into each sampled point.
func easeInOut(u float64) float64 {
	return u * u * (3.0 - 2.0*u)
}
