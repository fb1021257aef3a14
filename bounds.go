package voxel

import "golang.org/x/image/math/f32"

// Bounds is an optional axis-aligned region in world units restricting which
// chunks are built and kept. A disabled Bounds keeps everything.
//
// Overlap is inclusive: a chunk whose extent merely touches a bound face
// still participates. Exact clipping of individual blocks inside a
// partially-overlapping chunk is the mesh builder's job, not the filter's.
type Bounds struct {
	Min     f32.Vec3
	Max     f32.Vec3
	Enabled bool
}

// NewBounds returns an enabled Bounds spanning min..max.
func NewBounds(min, max f32.Vec3) Bounds {
	return Bounds{Min: min, Max: max, Enabled: true}
}

// KeepsChunk reports whether the chunk at coord participates in a build.
// The chunk extent is its world origin plus chunkSize on every axis.
// Only a chunk with zero overlap on some axis is rejected.
func (b Bounds) KeepsChunk(coord ChunkCoord, chunkSize int) bool {
	if !b.Enabled {
		return true
	}
	o := coord.Origin(chunkSize)
	min := f32.Vec3{float32(o.X), float32(o.Y), float32(o.Z)}
	size := float32(chunkSize)
	for i := 0; i < 3; i++ {
		if min[i]+size < b.Min[i] || min[i] > b.Max[i] {
			return false
		}
	}
	return true
}

// KeepsBlock reports whether the unit cell of the block at (x,y,z) overlaps
// the bounds. Used by the mesh builder for per-block clipping inside
// partially-overlapping chunks.
func (b Bounds) KeepsBlock(x, y, z int) bool {
	if !b.Enabled {
		return true
	}
	p := [3]float32{float32(x), float32(y), float32(z)}
	for i := 0; i < 3; i++ {
		if p[i]+1 < b.Min[i] || p[i] > b.Max[i] {
			return false
		}
	}
	return true
}
