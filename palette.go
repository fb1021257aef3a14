package voxel

import (
	"context"
	"fmt"
	"sync"
)

// Face indices used by occlusion flags. A set bit means the corresponding
// face of the block fully occludes a flush neighboring face.
const (
	FaceWest = iota
	FaceEast
	FaceDown
	FaceUp
	FaceNorth
	FaceSouth
	faceCount
)

// faceDirs maps a face index to the outward neighbor direction whose flush
// faces it occludes. FaceWest occludes a neighbor reached in +X, and so on,
// mirroring the occlusion convention of the accumulating builder.
var faceDirs = [faceCount][3]int{
	{1, 0, 0},  // FaceWest: neighbor at +X has its west face against us
	{-1, 0, 0}, // FaceEast
	{0, 1, 0},  // FaceDown
	{0, -1, 0}, // FaceUp
	{0, 0, 1},  // FaceNorth
	{0, 0, -1}, // FaceSouth
}

// OccludeAll marks every face as fully occluding (a solid unit cube).
const OccludeAll = 1<<faceCount - 1

// Geometry is one renderable primitive of a palette entry, expressed in
// block-local float coordinates (the unit cell 0..1).
type Geometry struct {
	Positions     []float32 // 3 per vertex
	Normals       []float32 // 3 per vertex
	UVs           []float32 // 2 per vertex
	Indices       []uint32  // triangle list
	MaterialIndex uint32
}

// triangleCulling is derived once per geometry by Palette.Precompute:
// for every triangle, the face index (0..5) it can be culled against when
// flush with the block edge, or -1 when the triangle never culls.
type triangleCulling []int8

// PaletteEntry stores the precomputed geometry for one block type, shared
// across chunks.
type PaletteEntry struct {
	Index          int
	OcclusionFlags uint8
	Category       string
	Geometries     []Geometry

	// culling[i] holds the per-triangle cull classification of Geometries[i].
	// Populated by Palette.Precompute.
	culling []triangleCulling
}

// Palette is the set of distinct block types and their geometry.
// Entries are addressed by their palette index; gaps are allowed.
type Palette struct {
	mu      sync.RWMutex
	entries []*PaletteEntry
	ready   bool
}

// NewPalette returns an empty palette.
func NewPalette() *Palette {
	return &Palette{}
}

// Add installs an entry at its index, growing the palette as needed.
// Adding invalidates any previous precomputation.
func (p *Palette) Add(e *PaletteEntry) {
	if e == nil || e.Index < 0 {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	for len(p.entries) <= e.Index {
		p.entries = append(p.entries, nil)
	}
	p.entries[e.Index] = e
	p.ready = false
}

// Entry returns the entry at index, or nil when absent.
func (p *Palette) Entry(index int) *PaletteEntry {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if index < 0 || index >= len(p.entries) {
		return nil
	}
	return p.entries[index]
}

// Len returns the size of the index space (including gaps).
func (p *Palette) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.entries)
}

// Precompute derives per-entry culling tables. It must resolve before the
// first chunk build of a session; the schematic calls it at build start.
// Precompute is idempotent until the palette changes again.
func (p *Palette) Precompute(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ready {
		return nil
	}
	for _, e := range p.entries {
		if e == nil {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		e.culling = e.culling[:0]
		for gi := range e.Geometries {
			g := &e.Geometries[gi]
			if len(g.Indices)%3 != 0 {
				return fmt.Errorf("voxel: palette entry %d geometry %d: index count %d is not a triangle list",
					e.Index, gi, len(g.Indices))
			}
			e.culling = append(e.culling, classifyTriangles(g))
		}
	}
	p.ready = true
	return nil
}

// cullEpsilon is the tolerance for deciding a face is flush with the block
// edge. Faces at the cell boundary (0 or 1) and at half-block planes
// (±0.5 offsets) both count as flush.
const cullEpsilon = 0.01

// classifyTriangles computes, for each triangle of g, the neighbor face it
// is culled against when that neighbor occludes, or -1 when it never culls.
// Only axis-aligned triangles flush with the block edge are cullable.
func classifyTriangles(g *Geometry) triangleCulling {
	tc := make(triangleCulling, len(g.Indices)/3)
	for t := range tc {
		tc[t] = -1
		i0 := g.Indices[t*3]
		if int(i0)*3+2 >= len(g.Normals) {
			continue
		}
		nx := g.Normals[i0*3]
		ny := g.Normals[i0*3+1]
		nz := g.Normals[i0*3+2]
		dx := roundToInt(nx)
		dy := roundToInt(ny)
		dz := roundToInt(nz)
		if abs(dx)+abs(dy)+abs(dz) != 1 {
			continue
		}
		if int(i0)*3+2 >= len(g.Positions) {
			continue
		}
		v0x := g.Positions[i0*3]
		v0y := g.Positions[i0*3+1]
		v0z := g.Positions[i0*3+2]
		if !isFlush(dx, dy, dz, v0x, v0y, v0z) {
			continue
		}
		switch {
		case dx == 1:
			tc[t] = FaceWest
		case dx == -1:
			tc[t] = FaceEast
		case dy == 1:
			tc[t] = FaceDown
		case dy == -1:
			tc[t] = FaceUp
		case dz == 1:
			tc[t] = FaceNorth
		case dz == -1:
			tc[t] = FaceSouth
		}
	}
	return tc
}

func isFlush(dx, dy, dz int, x, y, z float32) bool {
	near := func(v, target float32) bool {
		d := v - target
		return d < cullEpsilon && d > -cullEpsilon
	}
	switch {
	case dx == 1:
		return near(x, 1) || near(x, 0.5)
	case dx == -1:
		return near(x, 0) || near(x, -0.5)
	case dy == 1:
		return near(y, 1) || near(y, 0.5)
	case dy == -1:
		return near(y, 0) || near(y, -0.5)
	case dz == 1:
		return near(z, 1) || near(z, 0.5)
	case dz == -1:
		return near(z, 0) || near(z, -0.5)
	}
	return false
}

func roundToInt(v float32) int {
	if v >= 0 {
		return int(v + 0.5)
	}
	return int(v - 0.5)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// SolidCubeEntry builds a palette entry for a fully occluding unit cube with
// the given palette index, category, and material. Face UVs span 0..1.
func SolidCubeEntry(index int, category string, material uint32) *PaletteEntry {
	return &PaletteEntry{
		Index:          index,
		OcclusionFlags: OccludeAll,
		Category:       category,
		Geometries:     []Geometry{UnitCube(material)},
	}
}

// UnitCube returns the geometry of an axis-aligned unit cube occupying the
// cell 0..1, with one quad per face and outward normals.
func UnitCube(material uint32) Geometry {
	type face struct {
		n [3]float32
		v [4][3]float32
	}
	faces := []face{
		{n: [3]float32{-1, 0, 0}, v: [4][3]float32{{0, 0, 0}, {0, 0, 1}, {0, 1, 1}, {0, 1, 0}}},
		{n: [3]float32{1, 0, 0}, v: [4][3]float32{{1, 0, 1}, {1, 0, 0}, {1, 1, 0}, {1, 1, 1}}},
		{n: [3]float32{0, -1, 0}, v: [4][3]float32{{0, 0, 0}, {1, 0, 0}, {1, 0, 1}, {0, 0, 1}}},
		{n: [3]float32{0, 1, 0}, v: [4][3]float32{{0, 1, 1}, {1, 1, 1}, {1, 1, 0}, {0, 1, 0}}},
		{n: [3]float32{0, 0, -1}, v: [4][3]float32{{1, 0, 0}, {0, 0, 0}, {0, 1, 0}, {1, 1, 0}}},
		{n: [3]float32{0, 0, 1}, v: [4][3]float32{{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1}}},
	}

	g := Geometry{MaterialIndex: material}
	uv := [4][2]float32{{0, 0}, {1, 0}, {1, 1}, {0, 1}}
	for _, f := range faces {
		base := uint32(len(g.Positions) / 3)
		for i, v := range f.v {
			g.Positions = append(g.Positions, v[0], v[1], v[2])
			g.Normals = append(g.Normals, f.n[0], f.n[1], f.n[2])
			g.UVs = append(g.UVs, uv[i][0], uv[i][1])
		}
		g.Indices = append(g.Indices, base, base+1, base+2, base, base+2, base+3)
	}
	return g
}
