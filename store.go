package voxel

import "sync"

// BlockStore is the voxel data store contract consumed by the pipeline.
// The store owns block truth; the pipeline never caches block data, only
// the meshes derived from it.
//
// Implementations must be safe for concurrent use: batch edits write from
// the caller's goroutine while rebuilds read chunk data concurrently.
type BlockStore interface {
	// ChunkSize returns the per-axis chunk dimension in blocks.
	ChunkSize() int

	// Block returns the palette index at p, if any.
	Block(p BlockPos) (int, bool)

	// SetBlock writes a palette index at p. AirBlock removes the block.
	SetBlock(p BlockPos, palette int)

	// ChunkBlocks returns the blocks of one chunk in deterministic
	// (Y, Z, X) order. The returned slice is owned by the caller.
	ChunkBlocks(c ChunkCoord) []Block

	// Chunks returns every non-empty chunk coordinate in the fixed
	// bottom-up (Y, Z, X) delivery order.
	Chunks() []ChunkCoord

	// Len returns the total number of blocks in the store.
	Len() int
}

// MemStore is an in-memory BlockStore keyed by world position.
// It is safe for concurrent use.
type MemStore struct {
	mu        sync.RWMutex
	chunkSize int
	blocks    map[BlockPos]int
}

// DefaultChunkSize is used when NewMemStore is given a non-positive size.
const DefaultChunkSize = 16

// NewMemStore creates an empty store with the given chunk size.
func NewMemStore(chunkSize int) *MemStore {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &MemStore{
		chunkSize: chunkSize,
		blocks:    make(map[BlockPos]int),
	}
}

// ChunkSize returns the per-axis chunk dimension in blocks.
func (s *MemStore) ChunkSize() int { return s.chunkSize }

// Block returns the palette index at p, if any.
func (s *MemStore) Block(p BlockPos) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, ok := s.blocks[p]
	return idx, ok
}

// SetBlock writes a palette index at p. AirBlock removes the block.
func (s *MemStore) SetBlock(p BlockPos, palette int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if palette == AirBlock {
		delete(s.blocks, p)
		return
	}
	s.blocks[p] = palette
}

// ChunkBlocks returns the blocks of one chunk in (Y, Z, X) order.
func (s *MemStore) ChunkBlocks(c ChunkCoord) []Block {
	s.mu.RLock()
	var out []Block
	for p, idx := range s.blocks {
		if ChunkCoordOf(p, s.chunkSize) == c {
			out = append(out, Block{X: p.X, Y: p.Y, Z: p.Z, Palette: idx})
		}
	}
	s.mu.RUnlock()
	sortBlocks(out)
	return out
}

// Chunks returns every non-empty chunk coordinate in bottom-up order.
func (s *MemStore) Chunks() []ChunkCoord {
	s.mu.RLock()
	seen := make(map[ChunkCoord]struct{})
	for p := range s.blocks {
		seen[ChunkCoordOf(p, s.chunkSize)] = struct{}{}
	}
	s.mu.RUnlock()

	coords := make([]ChunkCoord, 0, len(seen))
	for c := range seen {
		coords = append(coords, c)
	}
	sortCoords(coords)
	return coords
}

// Len returns the total number of blocks in the store.
func (s *MemStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blocks)
}
