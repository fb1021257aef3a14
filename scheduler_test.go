package voxel

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/image/math/f32"
)

// faultyIterator yields good chunks, then fails with a data error.
type faultyIterator struct {
	chunks []*ChunkData
	next   int
	err    error
}

func (it *faultyIterator) TotalChunks() int { return len(it.chunks) + 1 }

func (it *faultyIterator) HasNext() bool { return it.next <= len(it.chunks) }

func (it *faultyIterator) Next() (*ChunkData, error) {
	if it.next < len(it.chunks) {
		chunk := it.chunks[it.next]
		it.next++
		return chunk, nil
	}
	it.next++
	return nil, it.err
}

func newTestScheduler() (*scheduler, *ChunkCache) {
	cache := NewChunkCache()
	builder := NewMeshBuilder(solidPalette(), 16)
	sc := newScheduler(builder, cache, 16, &inlineLoop{}, systemClock{}, 16*time.Millisecond)
	return sc, cache
}

func TestDataErrorAbortsSession(t *testing.T) {
	sc, cache := newTestScheduler()

	it := &faultyIterator{
		chunks: []*ChunkData{{
			Coord:  ChunkCoord{},
			Blocks: []Block{{X: 0, Y: 0, Z: 0, Palette: 0}},
		}},
		err: errors.New("corrupt chunk stream"),
	}

	stats, _, err := sc.run(context.Background(), ModeImmediate, it, Bounds{})
	var dataErr *DataError
	if !errors.As(err, &dataErr) {
		t.Fatalf("err = %v, want *DataError", err)
	}
	if stats.State != StateFailed {
		t.Errorf("state = %v, want failed", stats.State)
	}
	if stats.Err == nil {
		t.Error("stats carry no error")
	}

	// Chunks installed before the abort stay installed (no rollback).
	if cache.Len() != 1 {
		t.Errorf("records = %d, want 1", cache.Len())
	}
}

func TestDataErrorAbortsInstancedBatch(t *testing.T) {
	sc, _ := newTestScheduler()

	it := &faultyIterator{err: errors.New("bad data")}
	_, meshes, err := sc.run(context.Background(), ModeInstanced, it, Bounds{})
	if err == nil {
		t.Fatal("expected error")
	}
	if meshes != nil {
		t.Error("failed instanced session returned meshes")
	}
	// The builder must be usable again after the aborted batch.
	if sc.builder.BatchMode() {
		t.Error("builder left in batch mode")
	}
}

func TestNewBuildSupersedesRunning(t *testing.T) {
	sc, _ := newTestScheduler()

	first := newSession(ModeIncremental, 10)
	sc.mu.Lock()
	sc.current = first
	sc.mu.Unlock()

	it := &storeIterator{}
	if _, _, err := sc.run(context.Background(), ModeImmediate, it, Bounds{}); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if !first.Cancelled() {
		t.Error("previous session not cancelled by new build")
	}
	sc.mu.Lock()
	current := sc.current
	sc.mu.Unlock()
	if current != nil {
		t.Error("scheduler still holds a finished session")
	}
}

func TestCancelWithoutSession(t *testing.T) {
	sc, _ := newTestScheduler()
	sc.cancel() // must not panic with no active session
}

func TestProcessChunkSkipRemovesStaleRecord(t *testing.T) {
	sc, cache := newTestScheduler()
	coord := ChunkCoord{X: 9}
	cache.Set(coord, nil)

	session := newSession(ModeImmediate, 1)
	chunk := &ChunkData{Coord: coord, Blocks: []Block{{X: 9 * 16, Palette: 0}}}

	bounds := NewBounds(f32.Vec3{0, 0, 0}, f32.Vec3{10, 10, 10})
	sc.processChunk(session, chunk, bounds, true)

	if session.skipped != 1 {
		t.Errorf("skipped = %d, want 1", session.skipped)
	}
	if _, ok := cache.Get(coord); ok {
		t.Error("stale record survived the skip")
	}
}
