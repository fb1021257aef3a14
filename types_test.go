package voxel

import "testing"

func TestChunkCoordOf(t *testing.T) {
	tests := []struct {
		pos       BlockPos
		chunkSize int
		want      ChunkCoord
	}{
		{BlockPos{0, 0, 0}, 16, ChunkCoord{0, 0, 0}},
		{BlockPos{15, 15, 15}, 16, ChunkCoord{0, 0, 0}},
		{BlockPos{16, 0, 0}, 16, ChunkCoord{1, 0, 0}},
		{BlockPos{-1, 0, 0}, 16, ChunkCoord{-1, 0, 0}},
		{BlockPos{-16, -1, -17}, 16, ChunkCoord{-1, -1, -2}},
		{BlockPos{31, 32, 33}, 16, ChunkCoord{1, 2, 2}},
		{BlockPos{3, 3, 3}, 2, ChunkCoord{1, 1, 1}},
	}
	for _, tt := range tests {
		if got := ChunkCoordOf(tt.pos, tt.chunkSize); got != tt.want {
			t.Errorf("ChunkCoordOf(%v, %d) = %v, want %v", tt.pos, tt.chunkSize, got, tt.want)
		}
	}
}

func TestChunkOrigin(t *testing.T) {
	c := ChunkCoord{X: 2, Y: -1, Z: 0}
	got := c.Origin(16)
	want := BlockPos{X: 32, Y: -16, Z: 0}
	if got != want {
		t.Errorf("Origin = %v, want %v", got, want)
	}
}

func TestSortCoordsBottomUp(t *testing.T) {
	coords := []ChunkCoord{
		{X: 1, Y: 1, Z: 0},
		{X: 0, Y: 0, Z: 1},
		{X: 1, Y: 0, Z: 0},
		{X: 0, Y: 0, Z: 0},
	}
	sortCoords(coords)

	want := []ChunkCoord{
		{X: 0, Y: 0, Z: 0},
		{X: 1, Y: 0, Z: 0},
		{X: 0, Y: 0, Z: 1},
		{X: 1, Y: 1, Z: 0},
	}
	for i := range want {
		if coords[i] != want[i] {
			t.Fatalf("coords[%d] = %v, want %v (full: %v)", i, coords[i], want[i], coords)
		}
	}
}

func TestSortBlocksDeterministic(t *testing.T) {
	blocks := []Block{
		{X: 1, Y: 0, Z: 1},
		{X: 0, Y: 1, Z: 0},
		{X: 0, Y: 0, Z: 1},
		{X: 1, Y: 0, Z: 0},
	}
	sortBlocks(blocks)

	want := []Block{
		{X: 1, Y: 0, Z: 0},
		{X: 0, Y: 0, Z: 1},
		{X: 1, Y: 0, Z: 1},
		{X: 0, Y: 1, Z: 0},
	}
	for i := range want {
		if blocks[i] != want[i] {
			t.Fatalf("blocks[%d] = %v, want %v", i, blocks[i], want[i])
		}
	}
}

func TestStringers(t *testing.T) {
	if got := (BlockPos{1, -2, 3}).String(); got != "(1,-2,3)" {
		t.Errorf("BlockPos.String = %q", got)
	}
	if got := (ChunkCoord{0, 1, 2}).String(); got != "chunk(0,1,2)" {
		t.Errorf("ChunkCoord.String = %q", got)
	}
}
