package voxel

import (
	"errors"
	"testing"
)

// countingReleaser records release calls for disposal assertions.
type countingReleaser struct {
	calls int
	err   error
}

func (r *countingReleaser) Release() error {
	r.calls++
	return r.err
}

func meshWithReleaser(r Releaser) *Mesh {
	m := &Mesh{Category: "solid"}
	m.Attach(r)
	return m
}

func TestCacheSetAndGet(t *testing.T) {
	c := NewChunkCache()
	coord := ChunkCoord{X: 1, Y: 2, Z: 3}

	if _, ok := c.Get(coord); ok {
		t.Fatal("empty cache returned a record")
	}

	m := &Mesh{Category: "solid"}
	c.Set(coord, []*Mesh{m})

	got, ok := c.Get(coord)
	if !ok || len(got) != 1 || got[0] != m {
		t.Fatalf("Get = %v,%v", got, ok)
	}
	if c.Len() != 1 {
		t.Errorf("len = %d, want 1", c.Len())
	}
}

func TestCacheReplaceDisposesOld(t *testing.T) {
	c := NewChunkCache()
	coord := ChunkCoord{}

	rel := &countingReleaser{}
	old := meshWithReleaser(rel)
	c.Set(coord, []*Mesh{old})

	replacement := &Mesh{Category: "solid"}
	c.Set(coord, []*Mesh{replacement})

	if rel.calls != 1 {
		t.Errorf("old mesh released %d times, want 1", rel.calls)
	}
	if !old.Released() {
		t.Error("old mesh not marked released")
	}
	got, _ := c.Get(coord)
	if len(got) != 1 || got[0] != replacement {
		t.Error("replacement not installed")
	}

	stats := c.Stats()
	if stats.Installs != 2 || stats.Replacements != 1 {
		t.Errorf("stats = %+v, want 2 installs, 1 replacement", stats)
	}
}

func TestCacheRemoveIdempotent(t *testing.T) {
	c := NewChunkCache()
	coord := ChunkCoord{X: 5}

	rel := &countingReleaser{}
	c.Set(coord, []*Mesh{meshWithReleaser(rel)})

	if !c.Remove(coord) {
		t.Fatal("first Remove returned false")
	}
	if rel.calls != 1 {
		t.Errorf("released %d times, want 1", rel.calls)
	}
	if c.Remove(coord) {
		t.Error("second Remove returned true")
	}
	if c.Stats().Removals != 1 {
		t.Errorf("removals = %d, want 1", c.Stats().Removals)
	}
}

func TestCacheSetIfRejectsSupersededInstall(t *testing.T) {
	c := NewChunkCache()
	coord := ChunkCoord{X: 1}

	newer := meshWithReleaser(&countingReleaser{})
	c.Set(coord, []*Mesh{newer})

	// The guard runs under the cache lock, so a result that went stale
	// after its last check cannot displace the newer record.
	staleRel := &countingReleaser{}
	stale := meshWithReleaser(staleRel)
	if c.setIf(coord, []*Mesh{stale}, func() bool { return false }) {
		t.Fatal("stale install was accepted")
	}
	got, _ := c.Get(coord)
	if len(got) != 1 || got[0] != newer {
		t.Error("newer record was displaced")
	}
	if staleRel.calls != 0 {
		t.Error("rejected install released its meshes itself")
	}
	if c.Stats().Installs != 1 {
		t.Errorf("installs = %d, want 1", c.Stats().Installs)
	}

	if !c.setIf(coord, []*Mesh{stale}, func() bool { return true }) {
		t.Fatal("current install was rejected")
	}
	if !newer.Released() {
		t.Error("displaced record not disposed")
	}
}

func TestCacheRemoveIfRejectsStale(t *testing.T) {
	c := NewChunkCache()
	coord := ChunkCoord{X: 2}

	rel := &countingReleaser{}
	c.Set(coord, []*Mesh{meshWithReleaser(rel)})

	if c.removeIf(coord, func() bool { return false }) {
		t.Fatal("stale remove was accepted")
	}
	if _, ok := c.Get(coord); !ok {
		t.Fatal("record vanished after rejected remove")
	}
	if rel.calls != 0 {
		t.Error("rejected remove disposed the record")
	}

	if !c.removeIf(coord, func() bool { return true }) {
		t.Fatal("current remove was rejected")
	}
	if rel.calls != 1 {
		t.Errorf("released %d times, want 1", rel.calls)
	}
}

func TestCacheNilRecordIsLive(t *testing.T) {
	// A built-but-empty chunk still occupies a record.
	c := NewChunkCache()
	coord := ChunkCoord{}
	c.Set(coord, nil)

	got, ok := c.Get(coord)
	if !ok || got != nil {
		t.Fatalf("Get = %v,%v, want nil,true", got, ok)
	}
	if c.Len() != 1 {
		t.Errorf("len = %d, want 1", c.Len())
	}
}

func TestCacheClear(t *testing.T) {
	c := NewChunkCache()
	rels := []*countingReleaser{{}, {}}
	c.Set(ChunkCoord{X: 0}, []*Mesh{meshWithReleaser(rels[0])})
	c.Set(ChunkCoord{X: 1}, []*Mesh{meshWithReleaser(rels[1])})

	c.Clear()
	if c.Len() != 0 {
		t.Errorf("len after clear = %d", c.Len())
	}
	for i, r := range rels {
		if r.calls != 1 {
			t.Errorf("mesh %d released %d times, want 1", i, r.calls)
		}
	}
	if c.Stats().Removals != 2 {
		t.Errorf("removals = %d, want 2", c.Stats().Removals)
	}
}

func TestCacheCoordsSorted(t *testing.T) {
	c := NewChunkCache()
	c.Set(ChunkCoord{X: 1, Y: 1}, nil)
	c.Set(ChunkCoord{X: 0, Y: 0}, nil)
	c.Set(ChunkCoord{X: 1, Y: 0}, nil)

	coords := c.Coords()
	want := []ChunkCoord{{X: 0}, {X: 1}, {X: 1, Y: 1}}
	if len(coords) != len(want) {
		t.Fatalf("coords = %v", coords)
	}
	for i := range want {
		if coords[i] != want[i] {
			t.Fatalf("coords[%d] = %v, want %v", i, coords[i], want[i])
		}
	}
}

func TestCacheReleaseFailureNonBlocking(t *testing.T) {
	// A failing releaser must not prevent the replacement install.
	c := NewChunkCache()
	coord := ChunkCoord{}

	rel := &countingReleaser{err: errors.New("device lost")}
	c.Set(coord, []*Mesh{meshWithReleaser(rel)})
	c.Set(coord, nil)

	if rel.calls != 1 {
		t.Errorf("released %d times, want 1", rel.calls)
	}
	if _, ok := c.Get(coord); !ok {
		t.Error("replacement record missing")
	}
}
