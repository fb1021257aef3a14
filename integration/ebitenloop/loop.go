// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package ebitenloop

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/gogpu/voxel"
)

// DrawFunc renders one frame to the screen.
type DrawFunc func(screen *ebiten.Image)

// UpdateFunc advances host game state once per tick. A non-nil error stops
// the Ebitengine run loop, matching ebiten.Game.Update semantics.
type UpdateFunc func() error

// Option configures a Loop.
type Option func(*Loop)

// WithDraw sets the host draw callback invoked every frame.
func WithDraw(fn DrawFunc) Option {
	return func(l *Loop) { l.draw = fn }
}

// WithUpdate sets the host update callback invoked every tick, after the
// scheduled build continuations.
func WithUpdate(fn UpdateFunc) Option {
	return func(l *Loop) { l.update = fn }
}

// WithSize sets the logical screen size reported by Layout.
func WithSize(width, height int) Option {
	return func(l *Loop) { l.width, l.height = width, height }
}

// Loop is an ebiten.Game implementing voxel.FrameLoop.
//
// Continuations scheduled by an incremental build run at the start of each
// Update, one batch per tick. Present reports the duration of the most
// recent Draw, measured on the run loop, so the build budget adapts to the
// host game's real rendering cost.
type Loop struct {
	mu    sync.Mutex
	queue []func()

	// lastDraw holds the most recent Draw duration in nanoseconds.
	lastDraw atomic.Int64

	draw   DrawFunc
	update UpdateFunc
	width  int
	height int
}

// Ensure Loop satisfies both contracts.
var (
	_ voxel.FrameLoop = (*Loop)(nil)
	_ ebiten.Game     = (*Loop)(nil)
)

// New creates a loop with the given options. The default layout is 640x480.
func New(opts ...Option) *Loop {
	l := &Loop{width: 640, height: 480}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Schedule queues fn for the next Update. Safe from any goroutine.
func (l *Loop) Schedule(fn func()) {
	l.mu.Lock()
	l.queue = append(l.queue, fn)
	l.mu.Unlock()
}

// Present returns the duration of the most recent Draw. Before the first
// frame it returns zero, which the build budget treats as a free frame.
func (l *Loop) Present() time.Duration {
	return time.Duration(l.lastDraw.Load())
}

// Update runs pending build continuations, then the host update callback.
//
// Continuations scheduled during this batch (the next build tick) run on
// the following Update, keeping one tick per frame.
func (l *Loop) Update() error {
	l.mu.Lock()
	pending := l.queue
	l.queue = nil
	l.mu.Unlock()

	for _, fn := range pending {
		fn()
	}

	if l.update != nil {
		return l.update()
	}
	return nil
}

// Draw renders via the host callback and records the frame cost.
func (l *Loop) Draw(screen *ebiten.Image) {
	start := time.Now()
	if l.draw != nil {
		l.draw(screen)
	}
	l.lastDraw.Store(int64(time.Since(start)))
}

// Layout reports the logical screen size.
func (l *Loop) Layout(outsideWidth, outsideHeight int) (int, int) {
	return l.width, l.height
}
