package voxel

import (
	"context"
	"errors"
	"sync"
)

// Schematic is the public entry point of the pipeline: one voxel structure,
// its palette, and the meshes currently derived from it.
//
// All mutation flows through a single logical build/edit path; concurrent
// external reads of mesh data during an active build observe eventually
// consistent partial states.
type Schematic struct {
	store   BlockStore
	palette *Palette
	builder *MeshBuilder
	cache   *ChunkCache
	sched   *scheduler

	mu        sync.Mutex
	bounds    Bounds
	gens      map[ChunkCoord]uint64
	instanced []*Mesh
	disposed  bool
}

// New creates a schematic over the given store and palette.
func New(store BlockStore, palette *Palette, opts ...Option) (*Schematic, error) {
	if store == nil {
		return nil, ErrNilStore
	}
	if palette == nil {
		return nil, ErrNilPalette
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	builder := NewMeshBuilder(palette, store.ChunkSize())
	cache := NewChunkCache()
	return &Schematic{
		store:   store,
		palette: palette,
		builder: builder,
		cache:   cache,
		sched:   newScheduler(builder, cache, store.ChunkSize(), o.loop, o.clock, o.targetTick()),
		bounds:  o.bounds,
		gens:    make(map[ChunkCoord]uint64),
	}, nil
}

// Build runs one build session over the whole structure in the given mode.
// It blocks until the session resolves; incremental sessions execute their
// ticks on the injected frame loop while the caller waits.
//
// Starting a build supersedes any running session. Per-chunk build failures
// are absorbed and counted in the returned stats; only iterator-level data
// errors produce a non-nil error. Cancellation (via ctx) resolves the
// session as [StateCancelled] without error and without rollback.
func (s *Schematic) Build(ctx context.Context, mode BuildMode) (*BuildStats, error) {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return nil, ErrDisposed
	}
	bounds := s.bounds
	s.mu.Unlock()

	// Palette geometry must resolve before the first chunk build.
	if err := s.palette.Precompute(ctx); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			// Cancelled before any chunk work: a cancelled session,
			// not an error.
			return &BuildStats{Mode: mode, State: StateCancelled}, nil
		}
		return nil, err
	}

	stats, instanced, err := s.sched.run(ctx, mode, newStoreIterator(s.store), bounds)
	if mode == ModeInstanced && stats.State == StateCompleted {
		s.mu.Lock()
		old := s.instanced
		s.instanced = instanced
		s.mu.Unlock()
		releaseMeshes(old)
	}
	return stats, err
}

// RebuildAll rebuilds every chunk with an immediate session and prunes
// records whose chunks vanished from the store. Two successive calls with
// no intervening edits produce identical cache membership.
func (s *Schematic) RebuildAll(ctx context.Context) (*BuildStats, error) {
	stats, err := s.Build(ctx, ModeImmediate)
	if err != nil || stats.State != StateCompleted {
		return stats, err
	}

	live := make(map[ChunkCoord]struct{})
	for _, c := range s.store.Chunks() {
		live[c] = struct{}{}
	}
	for _, c := range s.cache.Coords() {
		if _, ok := live[c]; !ok {
			s.cache.Remove(c)
		}
	}
	return stats, nil
}

// RebuildChunk rebuilds a single chunk from current store state. A chunk
// fully outside the active bounds (or now empty) has its record removed and
// disposed without invoking the builder.
//
// Concurrent rebuilds of the same coordinate are sequenced by a generation
// counter: a rebuild that finishes after a newer one started discards its
// result instead of installing stale meshes.
func (s *Schematic) RebuildChunk(ctx context.Context, coord ChunkCoord) error {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return ErrDisposed
	}
	s.gens[coord]++
	gen := s.gens[coord]
	bounds := s.bounds
	s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	if !bounds.KeepsChunk(coord, s.store.ChunkSize()) {
		s.cache.removeIf(coord, func() bool { return s.genCurrent(coord, gen) })
		return nil
	}

	blocks := s.store.ChunkBlocks(coord)
	if len(blocks) == 0 {
		s.cache.removeIf(coord, func() bool { return s.genCurrent(coord, gen) })
		return nil
	}

	meshes, err := s.builder.Build(blocks, coord, bounds)
	if err != nil {
		return err
	}
	if !s.genCurrent(coord, gen) {
		// A newer rebuild of this coordinate superseded us.
		releaseMeshes(meshes)
		return nil
	}
	uploadMeshes(meshes)
	if !s.cache.setIf(coord, meshes, func() bool { return s.genCurrent(coord, gen) }) {
		releaseMeshes(meshes)
	}
	return nil
}

func (s *Schematic) genCurrent(coord ChunkCoord, gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.disposed && s.gens[coord] == gen
}

// Meshes returns the cached meshes for one chunk, if present.
func (s *Schematic) Meshes(coord ChunkCoord) ([]*Mesh, bool) {
	return s.cache.Get(coord)
}

// ChunkCoords returns the coordinates with live cache records.
func (s *Schematic) ChunkCoords() []ChunkCoord {
	return s.cache.Coords()
}

// InstancedMeshes returns the draw batches of the last completed instanced
// build, if any.
func (s *Schematic) InstancedMeshes() []*Mesh {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.instanced
}

// CacheStats returns chunk cache statistics.
func (s *Schematic) CacheStats() CacheStats {
	return s.cache.Stats()
}

// Bounds returns the active rendering bounds.
func (s *Schematic) Bounds() Bounds {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bounds
}

// SetBounds replaces the rendering bounds. The new bounds take effect on
// the next build or rebuild; existing records are not re-evaluated eagerly.
func (s *Schematic) SetBounds(b Bounds) {
	s.mu.Lock()
	s.bounds = b
	s.mu.Unlock()
}

// Cancel requests cancellation of the running build session, if any.
func (s *Schematic) Cancel() {
	s.sched.cancel()
}

// Dispose cancels any running session, disposes every cached mesh and the
// instanced batches, and marks the schematic unusable.
func (s *Schematic) Dispose() {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return
	}
	s.disposed = true
	instanced := s.instanced
	s.instanced = nil
	s.mu.Unlock()

	s.sched.cancel()
	s.cache.Clear()
	releaseMeshes(instanced)
	Logger().Info("schematic disposed")
}
