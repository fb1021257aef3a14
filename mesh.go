package voxel

import (
	"sync"

	"golang.org/x/image/math/f32"
)

// Quantization constants for mesh vertex data.
const (
	// PositionScale is the fixed-point scale applied to chunk-local vertex
	// positions before truncation to int16.
	PositionScale = 1024

	// NormalScale maps unit normal components onto the int8 range.
	NormalScale = 127
)

// MeshGroup is a contiguous index range drawn with a single material.
// Consecutive ranges with the same material are coalesced during merging.
type MeshGroup struct {
	Start         uint32
	Count         uint32
	MaterialIndex uint32
}

// Mesh is one merged, material-grouped geometry buffer produced for a chunk
// (or for a whole schematic in instanced builds).
//
// Vertex positions are chunk-local fixed-point values (see [PositionScale]);
// Origin places the mesh in world space. Indices are stored as uint32;
// uploaders may narrow them to 16 bits when VertexCount fits (see
// [Mesh.Needs32BitIndices]).
//
// A mesh may own external resources (GPU buffers) via attached Releasers.
// Release frees them exactly once; the chunk cache calls it when a record is
// replaced, removed, or cleared.
type Mesh struct {
	Category string
	Origin   f32.Vec3

	Positions []int16   // 3 per vertex, ×PositionScale
	Normals   []int8    // 3 per vertex, ×NormalScale
	UVs       []float32 // 2 per vertex
	Indices   []uint32
	Groups    []MeshGroup

	mu        sync.Mutex
	releasers []Releaser
	released  bool
}

// VertexCount returns the number of vertices in the mesh.
func (m *Mesh) VertexCount() int {
	return len(m.Positions) / 3
}

// IndexCount returns the number of indices in the mesh.
func (m *Mesh) IndexCount() int {
	return len(m.Indices)
}

// Needs32BitIndices reports whether the vertex count exceeds the uint16
// range, requiring a 32-bit index buffer.
func (m *Mesh) Needs32BitIndices() bool {
	return m.VertexCount() > 65535
}

// Attach adds a Releaser freed together with the mesh. Attaching to an
// already released mesh releases r immediately.
func (m *Mesh) Attach(r Releaser) {
	if r == nil {
		return
	}
	m.mu.Lock()
	if m.released {
		m.mu.Unlock()
		if err := r.Release(); err != nil {
			Logger().Warn("release of late attachment failed", "err", err)
		}
		return
	}
	m.releasers = append(m.releasers, r)
	m.mu.Unlock()
}

// Release frees all attached resources. It is idempotent: only the first
// call releases. The returned error wraps the first release failure as a
// *ResourceError; the remaining releasers still run.
func (m *Mesh) Release() error {
	m.mu.Lock()
	if m.released {
		m.mu.Unlock()
		return nil
	}
	m.released = true
	releasers := m.releasers
	m.releasers = nil
	m.mu.Unlock()

	var first error
	for _, r := range releasers {
		if err := r.Release(); err != nil && first == nil {
			first = &ResourceError{Err: err}
		}
	}
	return first
}

// Released reports whether Release has been called.
func (m *Mesh) Released() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.released
}

// releaseMeshes disposes a record's meshes, logging failures at Warn level.
// Disposal failures are non-blocking per the error policy.
func releaseMeshes(meshes []*Mesh) {
	for _, m := range meshes {
		if err := m.Release(); err != nil {
			Logger().Warn("mesh release failed", "category", m.Category, "err", err)
		}
	}
}
