package replay

import "time"

// Tuning constants for sampling and trajectory synthesis.
const (
	// InteriorKeepProbability is the chance each interior pattern point
	// survives sampling. Endpoints and click events are always kept.
	InteriorKeepProbability = 0.85

	// TargetStepRate is the nominal micro-step emission rate used to
	// derive a segment's step count from its recorded duration.
	TargetStepRate = 60.0 // steps per second

	MinSegmentSteps = 5
	MaxSegmentSteps = 120

	// Per-step timing variation, applied multiplicatively to the base
	// step delay.
	StepTimingVariationMin = 0.8
	StepTimingVariationMax = 1.2

	// Segment timing variation relative to the recorded duration.
	SegmentTimingVariationMin = 0.85
	SegmentTimingVariationMax = 1.15

	// TremorAmplitudePixels bounds the per-step hand tremor offset on
	// each axis. Intermediate steps only; segment endpoints are exact.
	TremorAmplitudePixels = 2

	// Micro-pause tiers, evaluated independently per step. When both
	// trigger on the same step the bonuses add.
	BriefPauseProbability = 0.30
	BriefPauseMin         = 5 * time.Millisecond
	BriefPauseMax         = 25 * time.Millisecond

	LongPauseProbability = 0.15
	LongPauseMin         = 20 * time.Millisecond
	LongPauseMax         = 150 * time.Millisecond

	// Inter-point pause occasionally inserted between segments.
	SegmentPauseProbability = 0.15
	SegmentPauseMin         = 20 * time.Millisecond
	SegmentPauseMax         = 100 * time.Millisecond
)

// Default screen bounds commanded coordinates are clamped to.
const (
	DefaultMaxX = 3840
	DefaultMaxY = 2160
)
