// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"encoding/binary"
	"math"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/voxel"
)

// Interleaved vertex layout of an uploaded voxel mesh.
//
// Each vertex packs the pipeline's quantized streams into VertexStride
// bytes: fixed-point position (int16 ×3, one pad short for alignment),
// normalized normal (int8 ×3, one pad byte), and float UVs.
const (
	// VertexStride is the byte size of one interleaved vertex.
	VertexStride = 20

	positionOffset = 0
	normalOffset   = 8
	uvOffset       = 12
)

// VertexLayout returns the vertex buffer layout matching InterleaveVertices,
// for building render pipelines over uploaded meshes.
//
// Locations: 0 = position (sint16x4, w unused), 1 = normal (snorm8x4,
// w unused), 2 = uv (float32x2).
func VertexLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: VertexStride,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatSint16x4, Offset: positionOffset, ShaderLocation: 0},
				{Format: gputypes.VertexFormatSnorm8x4, Offset: normalOffset, ShaderLocation: 1},
				{Format: gputypes.VertexFormatFloat32x2, Offset: uvOffset, ShaderLocation: 2},
			},
		},
	}
}

// IndexFormat returns the index format an uploaded mesh uses. Meshes within
// the uint16 vertex range use 16-bit indices; larger meshes use 32-bit.
func IndexFormat(m *voxel.Mesh) gputypes.IndexFormat {
	if m.Needs32BitIndices() {
		return gputypes.IndexFormatUint32
	}
	return gputypes.IndexFormatUint16
}

// InterleaveVertices packs a mesh's separate vertex streams into one
// interleaved buffer laid out per VertexLayout.
func InterleaveVertices(m *voxel.Mesh) []byte {
	count := m.VertexCount()
	out := make([]byte, count*VertexStride)
	for v := 0; v < count; v++ {
		base := v * VertexStride

		binary.LittleEndian.PutUint16(out[base:], uint16(m.Positions[v*3]))
		binary.LittleEndian.PutUint16(out[base+2:], uint16(m.Positions[v*3+1]))
		binary.LittleEndian.PutUint16(out[base+4:], uint16(m.Positions[v*3+2]))
		// out[base+6:base+8] stays zero (pad short)

		out[base+normalOffset] = byte(m.Normals[v*3])
		out[base+normalOffset+1] = byte(m.Normals[v*3+1])
		out[base+normalOffset+2] = byte(m.Normals[v*3+2])
		// out[base+normalOffset+3] stays zero (pad byte)

		binary.LittleEndian.PutUint32(out[base+uvOffset:], math.Float32bits(m.UVs[v*2]))
		binary.LittleEndian.PutUint32(out[base+uvOffset+4:], math.Float32bits(m.UVs[v*2+1]))
	}
	return out
}

// EncodeIndices serializes the mesh's indices in the format reported by
// IndexFormat.
func EncodeIndices(m *voxel.Mesh) []byte {
	if m.Needs32BitIndices() {
		out := make([]byte, len(m.Indices)*4)
		for i, idx := range m.Indices {
			binary.LittleEndian.PutUint32(out[i*4:], idx)
		}
		return out
	}
	out := make([]byte, len(m.Indices)*2)
	for i, idx := range m.Indices {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(idx))
	}
	return out
}
