package voxel

import (
	"fmt"
	"sort"
)

// BlockPos is an integer position in world grid units.
type BlockPos struct {
	X, Y, Z int
}

// String returns the position as "(x,y,z)".
func (p BlockPos) String() string {
	return fmt.Sprintf("(%d,%d,%d)", p.X, p.Y, p.Z)
}

// ChunkCoord identifies a chunk by its grid index (not world units).
// It is the unique key into the chunk cache.
type ChunkCoord struct {
	X, Y, Z int
}

// String returns the coordinate as "chunk(x,y,z)".
func (c ChunkCoord) String() string {
	return fmt.Sprintf("chunk(%d,%d,%d)", c.X, c.Y, c.Z)
}

// Origin returns the world-space origin of the chunk for the given chunk size.
func (c ChunkCoord) Origin(chunkSize int) BlockPos {
	return BlockPos{X: c.X * chunkSize, Y: c.Y * chunkSize, Z: c.Z * chunkSize}
}

// ChunkCoordOf returns the coordinate of the chunk containing p.
// Uses floor division so negative positions land in the correct chunk.
func ChunkCoordOf(p BlockPos, chunkSize int) ChunkCoord {
	return ChunkCoord{
		X: floorDiv(p.X, chunkSize),
		Y: floorDiv(p.Y, chunkSize),
		Z: floorDiv(p.Z, chunkSize),
	}
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// Block is one voxel: a tagged world position plus its palette index.
type Block struct {
	X, Y, Z int
	Palette int
}

// Pos returns the block's world position.
func (b Block) Pos() BlockPos {
	return BlockPos{X: b.X, Y: b.Y, Z: b.Z}
}

// AirBlock is the palette identifier that clears a block.
const AirBlock = -1

// BlockEdit is a single pending block change: the position and the new
// palette identifier ([AirBlock] removes the block).
type BlockEdit struct {
	Pos     BlockPos
	Palette int
}

// ChunkData is one chunk's raw content as delivered by a ChunkIterator.
type ChunkData struct {
	Coord  ChunkCoord
	Blocks []Block
}

// sortCoords orders chunk coordinates bottom-up by vertical layer, then by
// Z, then by X. This is the fixed delivery order of store-backed iterators
// and must stay stable across runs for reproducible builds.
func sortCoords(coords []ChunkCoord) {
	sort.Slice(coords, func(i, j int) bool {
		a, b := coords[i], coords[j]
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		if a.Z != b.Z {
			return a.Z < b.Z
		}
		return a.X < b.X
	})
}

// sortBlocks orders blocks deterministically within a chunk (Y, Z, X).
func sortBlocks(blocks []Block) {
	sort.Slice(blocks, func(i, j int) bool {
		a, b := blocks[i], blocks[j]
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		if a.Z != b.Z {
			return a.Z < b.Z
		}
		return a.X < b.X
	})
}
