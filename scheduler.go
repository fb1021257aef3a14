package voxel

import (
	"context"
	"sync"
	"time"
)

// scheduler orchestrates build sessions over a chunk iterator. All three
// modes share one chunk-processing step (fetch, bounds filter, build or
// skip, cache install) and differ only in how they drain the stream.
type scheduler struct {
	builder   *MeshBuilder
	cache     *ChunkCache
	chunkSize int
	loop      FrameLoop
	clock     Clock
	target    time.Duration

	mu      sync.Mutex
	current *BuildSession
}

func newScheduler(builder *MeshBuilder, cache *ChunkCache, chunkSize int, loop FrameLoop, clock Clock, target time.Duration) *scheduler {
	return &scheduler{
		builder:   builder,
		cache:     cache,
		chunkSize: chunkSize,
		loop:      loop,
		clock:     clock,
		target:    target,
	}
}

// cancel requests cancellation of the running session, if any.
func (sc *scheduler) cancel() {
	sc.mu.Lock()
	if sc.current != nil {
		sc.current.Cancel()
	}
	sc.mu.Unlock()
}

// run executes one build session. Starting a run supersedes any previous
// session: its continuation chain observes the cancel flag on its next tick
// and resolves as cancelled. For instanced sessions the merged meshes are
// returned alongside the stats.
func (sc *scheduler) run(ctx context.Context, mode BuildMode, it ChunkIterator, bounds Bounds) (*BuildStats, []*Mesh, error) {
	session := newSession(mode, it.TotalChunks())

	sc.mu.Lock()
	if sc.current != nil {
		sc.current.Cancel()
	}
	sc.current = session
	sc.mu.Unlock()

	defer func() {
		sc.mu.Lock()
		if sc.current == session {
			sc.current = nil
		}
		sc.mu.Unlock()
	}()

	Logger().Info("build session started", "mode", mode.String(), "chunks", session.total)

	var (
		meshes []*Mesh
		err    error
	)
	switch mode {
	case ModeIncremental:
		err = sc.runIncremental(ctx, session, it, bounds)
	case ModeInstanced:
		meshes, err = sc.runInstanced(ctx, session, it, bounds)
	default:
		err = sc.runImmediate(ctx, session, it, bounds)
	}

	Logger().Info("build session finished",
		"mode", mode.String(),
		"state", session.state.String(),
		"processed", session.processed,
		"skipped", session.skipped,
		"failed", session.failed)
	return session.stats(), meshes, err
}

// runImmediate drains the iterator to exhaustion in one continuous pass,
// strictly in iterator order, with no yielding.
func (sc *scheduler) runImmediate(ctx context.Context, session *BuildSession, it ChunkIterator, bounds Bounds) error {
	for it.HasNext() {
		if stopped(ctx, session) {
			session.state = StateCancelled
			return nil
		}
		chunk, err := it.Next()
		if err != nil {
			return sc.fail(session, err)
		}
		sc.processChunk(session, chunk, bounds, true)
	}
	session.state = StateCompleted
	return nil
}

// runInstanced feeds every kept chunk through the builder's accumulating
// bulk path and returns the merged per-category meshes. The chunk cache is
// bypassed entirely.
func (sc *scheduler) runInstanced(ctx context.Context, session *BuildSession, it ChunkIterator, bounds Bounds) ([]*Mesh, error) {
	if err := sc.builder.StartBatch(); err != nil {
		return nil, sc.fail(session, err)
	}
	for it.HasNext() {
		if stopped(ctx, session) {
			sc.builder.ClearBatch()
			session.state = StateCancelled
			return nil, nil
		}
		chunk, err := it.Next()
		if err != nil {
			sc.builder.ClearBatch()
			return nil, sc.fail(session, err)
		}
		sc.processChunk(session, chunk, bounds, false)
	}
	meshes := sc.builder.FinishBatch()
	uploadMeshes(meshes)
	session.state = StateCompleted
	return meshes, nil
}

// runIncremental processes chunks in budgeted ticks interleaved with the
// frame loop: one present between ticks, then the continuation is scheduled
// for the next presentation opportunity. The budget hill-climbs against the
// target tick interval after every tick.
func (sc *scheduler) runIncremental(ctx context.Context, session *BuildSession, it ChunkIterator, bounds Bounds) error {
	done := make(chan struct{})

	var tick func()
	tick = func() {
		if stopped(ctx, session) {
			session.state = StateCancelled
			close(done)
			return
		}

		start := sc.clock.Now()
		for it.HasNext() && sc.clock.Now().Sub(start) < session.budget {
			chunk, err := it.Next()
			if err != nil {
				sc.fail(session, err)
				close(done)
				return
			}
			sc.processChunk(session, chunk, bounds, true)
			if stopped(ctx, session) {
				break
			}
		}

		if !it.HasNext() && !stopped(ctx, session) {
			session.state = StateCompleted
			close(done)
			return
		}

		work := sc.clock.Now().Sub(start)
		present := sc.loop.Present()
		session.adaptBudget(work+present, sc.target)
		Logger().Debug("incremental tick",
			"work", work,
			"present", present,
			"budget", session.budget,
			"processed", session.processed)
		sc.loop.Schedule(tick)
	}

	sc.loop.Schedule(tick)
	<-done
	return session.err
}

// processChunk is the shared per-chunk step. A chunk with zero overlap with
// the bounds is skipped (and its stale record dropped); a failed build is
// counted and absorbed so the session continues.
func (sc *scheduler) processChunk(session *BuildSession, chunk *ChunkData, bounds Bounds, install bool) {
	if chunk == nil {
		return
	}
	if !bounds.KeepsChunk(chunk.Coord, sc.chunkSize) {
		if install {
			sc.cache.Remove(chunk.Coord)
		}
		session.skipped++
		return
	}

	meshes, err := sc.builder.Build(chunk.Blocks, chunk.Coord, bounds)
	if err != nil {
		session.failed++
		Logger().Warn("chunk build failed", "coord", chunk.Coord.String(), "err", err)
		return
	}
	if install {
		uploadMeshes(meshes)
		sc.cache.Set(chunk.Coord, meshes)
	}
	session.processed++
}

// fail resolves the session as failed with an iterator-level error.
// Chunks already installed remain in the cache; there is no rollback.
func (sc *scheduler) fail(session *BuildSession, err error) error {
	if _, ok := err.(*DataError); !ok {
		err = &DataError{Err: err}
	}
	session.state = StateFailed
	session.err = err
	Logger().Warn("build session aborted", "err", err)
	return err
}

func stopped(ctx context.Context, session *BuildSession) bool {
	if session.Cancelled() {
		return true
	}
	if ctx.Err() != nil {
		session.Cancel()
		return true
	}
	return false
}
