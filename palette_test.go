package voxel

import (
	"context"
	"strings"
	"testing"
)

func TestPaletteAddAndEntry(t *testing.T) {
	p := NewPalette()
	if p.Len() != 0 {
		t.Fatalf("empty palette len = %d", p.Len())
	}

	p.Add(SolidCubeEntry(3, "solid", 0))
	if p.Len() != 4 {
		t.Errorf("len = %d, want 4 (gaps allowed)", p.Len())
	}
	if p.Entry(3) == nil {
		t.Error("entry 3 missing")
	}
	if p.Entry(0) != nil {
		t.Error("gap index returned an entry")
	}
	if p.Entry(-1) != nil || p.Entry(10) != nil {
		t.Error("out of range index returned an entry")
	}

	// Nil and negative-index entries are ignored.
	p.Add(nil)
	p.Add(&PaletteEntry{Index: -1})
	if p.Len() != 4 {
		t.Errorf("len after invalid adds = %d, want 4", p.Len())
	}
}

func TestPrecomputeCullingClassification(t *testing.T) {
	p := NewPalette()
	p.Add(SolidCubeEntry(0, "solid", 0))
	if err := p.Precompute(context.Background()); err != nil {
		t.Fatalf("Precompute failed: %v", err)
	}

	e := p.Entry(0)
	if len(e.culling) != 1 {
		t.Fatalf("culling tables = %d, want 1", len(e.culling))
	}

	// A unit cube has 12 triangles, every one flush with a cell face and
	// therefore cullable.
	tc := e.culling[0]
	if len(tc) != 12 {
		t.Fatalf("triangle count = %d, want 12", len(tc))
	}
	faceSeen := make(map[int8]int)
	for _, f := range tc {
		if f < 0 || f >= faceCount {
			t.Fatalf("triangle cull face = %d, want 0..5", f)
		}
		faceSeen[f]++
	}
	for f := int8(0); f < faceCount; f++ {
		if faceSeen[f] != 2 {
			t.Errorf("face %d has %d triangles, want 2", f, faceSeen[f])
		}
	}
}

func TestPrecomputeNonCullableGeometry(t *testing.T) {
	// A diagonal triangle (non axis-aligned normal) never culls.
	p := NewPalette()
	p.Add(&PaletteEntry{
		Index:    0,
		Category: "deco",
		Geometries: []Geometry{{
			Positions: []float32{0, 0, 0, 1, 0, 1, 1, 1, 1},
			Normals:   []float32{0.7, 0, -0.7, 0.7, 0, -0.7, 0.7, 0, -0.7},
			UVs:       []float32{0, 0, 1, 0, 1, 1},
			Indices:   []uint32{0, 1, 2},
		}},
	})
	if err := p.Precompute(context.Background()); err != nil {
		t.Fatalf("Precompute failed: %v", err)
	}
	tc := p.Entry(0).culling[0]
	if len(tc) != 1 || tc[0] != -1 {
		t.Errorf("culling = %v, want [-1]", tc)
	}
}

func TestPrecomputeHalfBlockFlush(t *testing.T) {
	// A +X face at the half-block plane is still flush and cullable.
	p := NewPalette()
	p.Add(&PaletteEntry{
		Index:    0,
		Category: "slab",
		Geometries: []Geometry{{
			Positions: []float32{0.5, 0, 0, 0.5, 0, 1, 0.5, 1, 1},
			Normals:   []float32{1, 0, 0, 1, 0, 0, 1, 0, 0},
			UVs:       []float32{0, 0, 1, 0, 1, 1},
			Indices:   []uint32{0, 1, 2},
		}},
	})
	if err := p.Precompute(context.Background()); err != nil {
		t.Fatalf("Precompute failed: %v", err)
	}
	tc := p.Entry(0).culling[0]
	if len(tc) != 1 || tc[0] != FaceWest {
		t.Errorf("culling = %v, want [FaceWest]", tc)
	}
}

func TestPrecomputeRejectsBrokenTriangleList(t *testing.T) {
	p := NewPalette()
	p.Add(&PaletteEntry{
		Index:    0,
		Category: "broken",
		Geometries: []Geometry{{
			Positions: []float32{0, 0, 0},
			Indices:   []uint32{0, 0}, // not a multiple of 3
		}},
	})
	err := p.Precompute(context.Background())
	if err == nil || !strings.Contains(err.Error(), "triangle list") {
		t.Fatalf("err = %v, want triangle list error", err)
	}
}

func TestPrecomputeIdempotentUntilChanged(t *testing.T) {
	p := NewPalette()
	p.Add(SolidCubeEntry(0, "solid", 0))
	ctx := context.Background()

	if err := p.Precompute(ctx); err != nil {
		t.Fatalf("Precompute failed: %v", err)
	}
	if err := p.Precompute(ctx); err != nil {
		t.Fatalf("second Precompute failed: %v", err)
	}

	// Adding invalidates: the next Precompute resolves the new entry too.
	p.Add(SolidCubeEntry(1, "solid", 1))
	if err := p.Precompute(ctx); err != nil {
		t.Fatalf("Precompute after add failed: %v", err)
	}
	if len(p.Entry(1).culling) != 1 {
		t.Error("new entry has no culling table")
	}
}

func TestUnitCubeGeometry(t *testing.T) {
	g := UnitCube(7)
	if len(g.Positions) != 24*3 {
		t.Errorf("positions = %d, want 72", len(g.Positions))
	}
	if len(g.Normals) != 24*3 || len(g.UVs) != 24*2 {
		t.Errorf("normals/uvs = %d/%d, want 72/48", len(g.Normals), len(g.UVs))
	}
	if len(g.Indices) != 36 {
		t.Errorf("indices = %d, want 36", len(g.Indices))
	}
	if g.MaterialIndex != 7 {
		t.Errorf("material = %d, want 7", g.MaterialIndex)
	}
	for _, v := range g.Positions {
		if v < 0 || v > 1 {
			t.Fatalf("position component %v outside unit cell", v)
		}
	}
}
