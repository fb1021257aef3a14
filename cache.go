package voxel

import (
	"sync"
	"sync/atomic"
)

// ChunkCache owns the live meshes per chunk coordinate. Exactly one record
// exists per coordinate at any time; replacing a record disposes the
// previous meshes before the install is considered complete, so a
// coordinate is never left mapped to disposed-but-referenced objects.
//
// The cache is safe for concurrent use. External readers during an active
// build observe eventually-consistent partial states.
type ChunkCache struct {
	mu      sync.RWMutex
	records map[ChunkCoord][]*Mesh

	// Statistics (atomic for zero-allocation reads)
	installs     atomic.Uint64
	replacements atomic.Uint64
	removals     atomic.Uint64
}

// CacheStats contains cache statistics for monitoring.
type CacheStats struct {
	// Records is the number of live chunk records.
	Records int
	// Installs counts every Set, including replacements.
	Installs uint64
	// Replacements counts Sets that displaced an existing record.
	Replacements uint64
	// Removals counts records disposed by Remove or Clear.
	Removals uint64
}

// NewChunkCache creates an empty cache.
func NewChunkCache() *ChunkCache {
	return &ChunkCache{
		records: make(map[ChunkCoord][]*Mesh),
	}
}

// Get returns the meshes cached for coord, if any.
// The returned slice is shared; callers must not mutate it.
func (c *ChunkCache) Get(coord ChunkCoord) ([]*Mesh, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	meshes, ok := c.records[coord]
	return meshes, ok
}

// Set installs meshes for coord. Any previous record's meshes are disposed
// before the new record is visible. Installing nil meshes still creates a
// record (an empty chunk that was built is a live record).
func (c *ChunkCache) Set(coord ChunkCoord, meshes []*Mesh) {
	c.mu.Lock()
	old, replaced := c.records[coord]
	if replaced {
		releaseMeshes(old)
		c.replacements.Add(1)
	}
	c.records[coord] = meshes
	c.mu.Unlock()
	c.installs.Add(1)
}

// setIf installs meshes for coord only while current reports true. The
// check runs under the cache lock, so a rebuild result superseded after
// its last generation check cannot overwrite a newer install.
func (c *ChunkCache) setIf(coord ChunkCoord, meshes []*Mesh, current func() bool) bool {
	c.mu.Lock()
	if current != nil && !current() {
		c.mu.Unlock()
		return false
	}
	old, replaced := c.records[coord]
	if replaced {
		releaseMeshes(old)
		c.replacements.Add(1)
	}
	c.records[coord] = meshes
	c.mu.Unlock()
	c.installs.Add(1)
	return true
}

// removeIf disposes and deletes the record at coord only while current
// reports true, checked under the same lock as the delete.
func (c *ChunkCache) removeIf(coord ChunkCoord, current func() bool) bool {
	c.mu.Lock()
	if current != nil && !current() {
		c.mu.Unlock()
		return false
	}
	meshes, ok := c.records[coord]
	if ok {
		releaseMeshes(meshes)
		delete(c.records, coord)
	}
	c.mu.Unlock()
	if ok {
		c.removals.Add(1)
	}
	return ok
}

// Remove disposes and deletes the record at coord. Removing an absent
// coordinate is a no-op, so Remove is idempotent.
func (c *ChunkCache) Remove(coord ChunkCoord) bool {
	c.mu.Lock()
	meshes, ok := c.records[coord]
	if ok {
		releaseMeshes(meshes)
		delete(c.records, coord)
	}
	c.mu.Unlock()
	if ok {
		c.removals.Add(1)
	}
	return ok
}

// Clear disposes and removes all records.
func (c *ChunkCache) Clear() {
	c.mu.Lock()
	removed := uint64(len(c.records))
	for _, meshes := range c.records {
		releaseMeshes(meshes)
	}
	c.records = make(map[ChunkCoord][]*Mesh)
	c.mu.Unlock()
	c.removals.Add(removed)
}

// Len returns the number of live records.
func (c *ChunkCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.records)
}

// Coords returns the live coordinates in deterministic bottom-up order.
func (c *ChunkCache) Coords() []ChunkCoord {
	c.mu.RLock()
	coords := make([]ChunkCoord, 0, len(c.records))
	for coord := range c.records {
		coords = append(coords, coord)
	}
	c.mu.RUnlock()
	sortCoords(coords)
	return coords
}

// Stats returns current cache statistics.
func (c *ChunkCache) Stats() CacheStats {
	c.mu.RLock()
	records := len(c.records)
	c.mu.RUnlock()
	return CacheStats{
		Records:      records,
		Installs:     c.installs.Load(),
		Replacements: c.replacements.Load(),
		Removals:     c.removals.Load(),
	}
}
