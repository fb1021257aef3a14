package voxel

import (
	"sync"
	"time"
)

// FrameLoop is the host presentation loop contract consumed by incremental
// builds. The scheduler never touches a real display directly; it only asks
// the loop to run continuations and to present.
type FrameLoop interface {
	// Schedule runs fn at the next presentation opportunity. Calls made
	// from within a scheduled fn must run on a later opportunity, not
	// recursively.
	Schedule(fn func())

	// Present performs (or accounts for) one frame presentation and
	// returns its duration. The duration feeds the adaptive tick budget.
	Present() time.Duration
}

// Clock abstracts time measurement so incremental scheduling is testable
// without a real display loop.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// inlineLoop is the default FrameLoop when none is injected: scheduled
// continuations run back to back on the calling goroutine and presenting is
// free. A trampoline queue keeps deep continuation chains off the stack.
type inlineLoop struct {
	mu      sync.Mutex
	queue   []func()
	running bool
}

func (l *inlineLoop) Schedule(fn func()) {
	l.mu.Lock()
	l.queue = append(l.queue, fn)
	if l.running {
		l.mu.Unlock()
		return
	}
	l.running = true
	l.mu.Unlock()

	for {
		l.mu.Lock()
		if len(l.queue) == 0 {
			l.running = false
			l.mu.Unlock()
			return
		}
		next := l.queue[0]
		l.queue = l.queue[1:]
		l.mu.Unlock()
		next()
	}
}

func (l *inlineLoop) Present() time.Duration { return 0 }

// ManualLoop is a deterministic FrameLoop for tests and headless drivers.
// Scheduled continuations run only when the owner pumps the loop, and
// Present reports a configurable fixed duration.
//
// Typical use:
//
//	loop := voxel.NewManualLoop(8 * time.Millisecond)
//	done := make(chan struct{})
//	go func() {
//	    defer close(done)
//	    sch.Build(ctx, voxel.ModeIncremental)
//	}()
//	loop.Run(done)
type ManualLoop struct {
	mu       sync.Mutex
	queue    []func()
	signal   chan struct{}
	frame    time.Duration
	presents int
}

// NewManualLoop creates a manual loop whose Present reports frameTime.
func NewManualLoop(frameTime time.Duration) *ManualLoop {
	return &ManualLoop{
		signal: make(chan struct{}, 1),
		frame:  frameTime,
	}
}

// Schedule queues fn for the next pump.
func (l *ManualLoop) Schedule(fn func()) {
	l.mu.Lock()
	l.queue = append(l.queue, fn)
	l.mu.Unlock()
	select {
	case l.signal <- struct{}{}:
	default:
	}
}

// Present counts a frame and returns the configured frame time.
func (l *ManualLoop) Present() time.Duration {
	l.mu.Lock()
	l.presents++
	l.mu.Unlock()
	return l.frame
}

// Presents returns how many frames have been presented.
func (l *ManualLoop) Presents() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.presents
}

// Pump runs every currently queued continuation and returns how many ran.
func (l *ManualLoop) Pump() int {
	l.mu.Lock()
	pending := l.queue
	l.queue = nil
	l.mu.Unlock()
	for _, fn := range pending {
		fn()
	}
	return len(pending)
}

// Run pumps scheduled continuations until stop is closed. One continuation
// batch runs per wakeup, mimicking one presentation opportunity per frame.
func (l *ManualLoop) Run(stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			// Drain anything scheduled just before stop to avoid
			// stranding a continuation.
			l.Pump()
			return
		case <-l.signal:
			l.Pump()
		}
	}
}
