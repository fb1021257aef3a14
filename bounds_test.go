package voxel

import (
	"testing"

	"golang.org/x/image/math/f32"
)

func TestDisabledBoundsKeepEverything(t *testing.T) {
	var b Bounds
	if !b.KeepsChunk(ChunkCoord{X: 100, Y: -50, Z: 3}, 16) {
		t.Error("disabled bounds rejected a chunk")
	}
	if !b.KeepsBlock(-1000, 9999, 0) {
		t.Error("disabled bounds rejected a block")
	}
}

func TestKeepsChunk(t *testing.T) {
	b := NewBounds(f32.Vec3{0, 0, 0}, f32.Vec3{31, 31, 31})

	tests := []struct {
		name  string
		coord ChunkCoord
		want  bool
	}{
		{"fully inside", ChunkCoord{0, 0, 0}, true},
		{"partially overlapping", ChunkCoord{1, 1, 1}, true},
		{"touching max face", ChunkCoord{1, 0, 0}, true},
		{"strictly outside positive", ChunkCoord{2, 0, 0}, false},
		{"strictly outside negative", ChunkCoord{-2, 0, 0}, false},
		{"touching min face", ChunkCoord{-1, 0, 0}, true},
		{"outside on one axis only", ChunkCoord{0, 3, 0}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := b.KeepsChunk(tt.coord, 16); got != tt.want {
				t.Errorf("KeepsChunk(%v) = %v, want %v", tt.coord, got, tt.want)
			}
		})
	}
}

func TestKeepsBlock(t *testing.T) {
	b := NewBounds(f32.Vec3{0, 0, 0}, f32.Vec3{10, 10, 10})

	tests := []struct {
		x, y, z int
		want    bool
	}{
		{5, 5, 5, true},
		{0, 0, 0, true},
		{10, 10, 10, true},
		{11, 5, 5, false},
		{-1, 0, 0, true}, // unit cell [-1,0] touches the min face
		{-2, 0, 0, false},
		{5, 5, 12, false},
	}
	for _, tt := range tests {
		if got := b.KeepsBlock(tt.x, tt.y, tt.z); got != tt.want {
			t.Errorf("KeepsBlock(%d,%d,%d) = %v, want %v", tt.x, tt.y, tt.z, got, tt.want)
		}
	}
}
