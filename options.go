package voxel

import "time"

// Option configures a Schematic during creation.
// Use functional options to customize pipeline behavior.
//
// Example:
//
//	// Default: inline frame loop, 60 Hz target tick
//	sch, err := voxel.New(store, palette)
//
//	// Incremental builds driven by a real host loop
//	sch, err := voxel.New(store, palette, voxel.WithFrameLoop(loop))
type Option func(*options)

// options holds optional configuration for Schematic creation.
type options struct {
	loop      FrameLoop
	clock     Clock
	targetFPS int
	bounds    Bounds
}

// defaultOptions returns the default schematic options.
func defaultOptions() options {
	return options{
		loop:      &inlineLoop{},
		clock:     systemClock{},
		targetFPS: 60,
	}
}

// WithFrameLoop injects the host presentation loop used by incremental
// builds. Without one, continuations run back to back on the calling
// goroutine (equivalent to an immediate build with tick bookkeeping).
//
// See integration/ebitenloop for a ready adapter, or [ManualLoop] for
// deterministic headless driving.
func WithFrameLoop(l FrameLoop) Option {
	return func(o *options) {
		if l != nil {
			o.loop = l
		}
	}
}

// WithClock injects the clock used for tick budgeting. Tests inject a fake
// clock to exercise the adaptive budget without real sleeps.
func WithClock(c Clock) Option {
	return func(o *options) {
		if c != nil {
			o.clock = c
		}
	}
}

// WithTargetFPS sets the desired refresh rate. The target tick interval of
// incremental builds is its reciprocal. Values below 1 keep the default 60.
func WithTargetFPS(fps int) Option {
	return func(o *options) {
		if fps >= 1 {
			o.targetFPS = fps
		}
	}
}

// WithBounds sets the initial rendering bounds. Chunks with zero overlap
// are skipped; partially overlapping chunks are built with per-block
// clipping.
func WithBounds(b Bounds) Option {
	return func(o *options) {
		o.bounds = b
	}
}

func (o options) targetTick() time.Duration {
	return time.Second / time.Duration(o.targetFPS)
}
