package voxel

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"golang.org/x/image/math/f32"
)

// MeshBuilder turns one chunk's raw blocks into merged, material-grouped
// meshes, one per geometry category. Hidden faces flush against occluding
// neighbors are culled using the palette's occlusion flags.
//
// Build is safe for concurrent use in normal mode; batch mode (the
// instanced bulk path) accumulates across calls and must be driven from a
// single goroutine between StartBatch and FinishBatch.
type MeshBuilder struct {
	palette   *Palette
	chunkSize int

	mu        sync.Mutex
	batchMode bool
	batch     map[string]*accumulator
}

// NewMeshBuilder creates a builder over the given palette and chunk size.
func NewMeshBuilder(palette *Palette, chunkSize int) *MeshBuilder {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &MeshBuilder{
		palette:   palette,
		chunkSize: chunkSize,
	}
}

// accumulator collects merged geometry for one category. In batch mode a
// single accumulator spans every chunk of the schematic.
type accumulator struct {
	positions   []int16
	normals     []int8
	uvs         []float32
	indices     []uint32
	groups      []MeshGroup
	vertexCount uint32
}

// Build constructs the meshes for one chunk. Blocks outside the bounds are
// clipped out before meshing. An empty (or fully clipped) chunk yields no
// meshes and no error.
//
// In batch mode the chunk's geometry is folded into the shared accumulators
// and Build returns nil meshes; call FinishBatch to obtain the result.
func (b *MeshBuilder) Build(blocks []Block, coord ChunkCoord, bounds Bounds) ([]*Mesh, error) {
	// The palette tables must be resolved before meshing. Precompute is
	// idempotent, so this is cheap on every call after the first.
	if err := b.palette.Precompute(context.Background()); err != nil {
		return nil, &BuildError{Coord: coord, Err: err}
	}

	kept := make([]Block, 0, len(blocks))
	for _, bl := range blocks {
		if bl.Palette < 0 {
			return nil, &BuildError{
				Coord: coord,
				Err:   fmt.Errorf("block at %v has invalid palette index %d", bl.Pos(), bl.Palette),
			}
		}
		if bounds.KeepsBlock(bl.X, bl.Y, bl.Z) {
			kept = append(kept, bl)
		}
	}
	if len(kept) == 0 {
		return nil, nil
	}

	occ := newOccupancy(kept)
	batches := b.groupByCategory(kept)

	b.mu.Lock()
	batchMode := b.batchMode
	b.mu.Unlock()

	var origin BlockPos
	if !batchMode {
		origin = coord.Origin(b.chunkSize)
	}

	categories := make([]string, 0, len(batches))
	for cat := range batches {
		categories = append(categories, cat)
	}
	sort.Strings(categories)

	var meshes []*Mesh
	for _, cat := range categories {
		acc := &accumulator{}
		if batchMode {
			b.mu.Lock()
			if existing, ok := b.batch[cat]; ok {
				acc = existing
			} else {
				b.batch[cat] = acc
			}
			b.mu.Unlock()
		}

		b.mergeCategory(acc, batches[cat], kept, occ, origin)

		if !batchMode && acc.vertexCount > 0 {
			m := acc.toMesh(cat)
			m.Origin = f32.Vec3{float32(origin.X), float32(origin.Y), float32(origin.Z)}
			meshes = append(meshes, m)
		}
	}
	return meshes, nil
}

// StartBatch switches the builder into accumulating mode for an instanced
// build. Chunks fed through Build merge into shared per-category buffers
// instead of producing per-chunk meshes.
func (b *MeshBuilder) StartBatch() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.batchMode {
		return ErrBatchActive
	}
	b.batchMode = true
	b.batch = make(map[string]*accumulator)
	return nil
}

// FinishBatch leaves accumulating mode and returns one merged mesh per
// category, positioned relative to the world origin. Batch positions are
// quantized world-absolute, so vertices beyond the int16 fixed-point range
// (about 32 world units from the origin) saturate rather than wrap.
func (b *MeshBuilder) FinishBatch() []*Mesh {
	b.mu.Lock()
	batch := b.batch
	b.batchMode = false
	b.batch = nil
	b.mu.Unlock()

	categories := make([]string, 0, len(batch))
	for cat, acc := range batch {
		if acc.vertexCount > 0 {
			categories = append(categories, cat)
		}
	}
	sort.Strings(categories)

	meshes := make([]*Mesh, 0, len(categories))
	for _, cat := range categories {
		meshes = append(meshes, batch[cat].toMesh(cat))
	}
	return meshes
}

// ClearBatch discards accumulated geometry and leaves accumulating mode.
func (b *MeshBuilder) ClearBatch() {
	b.mu.Lock()
	b.batch = nil
	b.batchMode = false
	b.mu.Unlock()
}

// BatchMode reports whether the builder is accumulating.
func (b *MeshBuilder) BatchMode() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.batchMode
}

// groupByCategory buckets block indices by geometry category, then by
// palette index. Blocks with no palette entry are silently dropped, matching
// the tolerant contract of the data store (stale indices render as nothing).
func (b *MeshBuilder) groupByCategory(blocks []Block) map[string]map[int][]int {
	batches := make(map[string]map[int][]int)
	for i, bl := range blocks {
		entry := b.palette.Entry(bl.Palette)
		if entry == nil {
			continue
		}
		byPalette, ok := batches[entry.Category]
		if !ok {
			byPalette = make(map[int][]int)
			batches[entry.Category] = byPalette
		}
		byPalette[bl.Palette] = append(byPalette[bl.Palette], i)
	}
	return batches
}

// mergeCategory appends the geometry of every block in byPalette to acc,
// culling triangles flush against occluding neighbors. Palette indices are
// visited in sorted order so output is deterministic.
func (b *MeshBuilder) mergeCategory(acc *accumulator, byPalette map[int][]int, blocks []Block, occ *occupancy, origin BlockPos) {
	paletteIndices := make([]int, 0, len(byPalette))
	for idx := range byPalette {
		paletteIndices = append(paletteIndices, idx)
	}
	sort.Ints(paletteIndices)

	for _, pi := range paletteIndices {
		entry := b.palette.Entry(pi)
		if entry == nil {
			continue
		}
		for _, blockIdx := range byPalette[pi] {
			bl := blocks[blockIdx]
			for gi := range entry.Geometries {
				g := &entry.Geometries[gi]
				var culling triangleCulling
				if gi < len(entry.culling) {
					culling = entry.culling[gi]
				}
				b.appendInstance(acc, g, culling, bl, occ, origin)
			}
		}
	}
}

// appendInstance merges one geometry instance placed at bl into acc.
// All vertices of the geometry are copied; only indices of culled triangles
// are dropped. An instance whose every triangle is culled contributes
// nothing.
func (b *MeshBuilder) appendInstance(acc *accumulator, g *Geometry, culling triangleCulling, bl Block, occ *occupancy, origin BlockPos) {
	valid := make([]uint32, 0, len(g.Indices))
	for t := 0; t*3+2 < len(g.Indices); t++ {
		visible := true
		if t < len(culling) && culling[t] >= 0 {
			face := int(culling[t])
			d := faceDirs[face]
			if neighbor := occ.at(bl.X+d[0], bl.Y+d[1], bl.Z+d[2]); neighbor > 0 {
				if ne := b.palette.Entry(neighbor - 1); ne != nil && ne.OcclusionFlags&(1<<face) != 0 {
					visible = false
				}
			}
		}
		if visible {
			valid = append(valid, g.Indices[t*3], g.Indices[t*3+1], g.Indices[t*3+2])
		}
	}
	if len(valid) == 0 {
		return
	}

	localVerts := len(g.Positions) / 3
	for v := 0; v < localVerts; v++ {
		rx := float32(bl.X-origin.X) + g.Positions[v*3]
		ry := float32(bl.Y-origin.Y) + g.Positions[v*3+1]
		rz := float32(bl.Z-origin.Z) + g.Positions[v*3+2]
		acc.positions = append(acc.positions,
			quantizePos(rx),
			quantizePos(ry),
			quantizePos(rz))

		if v*3+2 < len(g.Normals) {
			acc.normals = append(acc.normals,
				int8(g.Normals[v*3]*NormalScale),
				int8(g.Normals[v*3+1]*NormalScale),
				int8(g.Normals[v*3+2]*NormalScale))
		} else {
			acc.normals = append(acc.normals, 0, NormalScale, 0)
		}

		if v*2+1 < len(g.UVs) {
			acc.uvs = append(acc.uvs, g.UVs[v*2], g.UVs[v*2+1])
		} else {
			acc.uvs = append(acc.uvs, 0, 0)
		}
	}

	indexStart := uint32(len(acc.indices))
	for _, idx := range valid {
		acc.indices = append(acc.indices, idx+acc.vertexCount)
	}

	// Coalesce with the previous group when the material matches.
	count := uint32(len(valid))
	if n := len(acc.groups); n > 0 && acc.groups[n-1].MaterialIndex == g.MaterialIndex {
		acc.groups[n-1].Count += count
	} else {
		acc.groups = append(acc.groups, MeshGroup{
			Start:         indexStart,
			Count:         count,
			MaterialIndex: g.MaterialIndex,
		})
	}

	acc.vertexCount += uint32(localVerts)
}

// quantizePos converts one mesh-relative coordinate to the fixed-point
// buffer format, saturating at the int16 range instead of wrapping.
func quantizePos(v float32) int16 {
	f := v * PositionScale
	if f >= math.MaxInt16 {
		return math.MaxInt16
	}
	if f <= math.MinInt16 {
		return math.MinInt16
	}
	return int16(f)
}

func (acc *accumulator) toMesh(category string) *Mesh {
	return &Mesh{
		Category:  category,
		Positions: acc.positions,
		Normals:   acc.normals,
		UVs:       acc.uvs,
		Indices:   acc.indices,
		Groups:    acc.groups,
	}
}

// occupancy is a padded voxel map over a chunk's block extent. Values are
// palette index + 1; zero means empty. The one-cell pad lets neighbor
// lookups at the extent edge stay in range.
type occupancy struct {
	minX, minY, minZ int
	strideY, strideZ int
	cells            []int
}

func newOccupancy(blocks []Block) *occupancy {
	minX, minY, minZ := blocks[0].X, blocks[0].Y, blocks[0].Z
	maxX, maxY, maxZ := minX, minY, minZ
	for _, bl := range blocks[1:] {
		minX = minInt(minX, bl.X)
		minY = minInt(minY, bl.Y)
		minZ = minInt(minZ, bl.Z)
		maxX = maxInt(maxX, bl.X)
		maxY = maxInt(maxY, bl.Y)
		maxZ = maxInt(maxZ, bl.Z)
	}

	const pad = 1
	sizeX := maxX - minX + 1 + 2*pad
	sizeY := maxY - minY + 1 + 2*pad
	sizeZ := maxZ - minZ + 1 + 2*pad

	o := &occupancy{
		minX:    minX - pad,
		minY:    minY - pad,
		minZ:    minZ - pad,
		strideY: sizeX,
		strideZ: sizeX * sizeY,
		cells:   make([]int, sizeX*sizeY*sizeZ),
	}
	for _, bl := range blocks {
		o.cells[o.index(bl.X, bl.Y, bl.Z)] = bl.Palette + 1
	}
	return o
}

func (o *occupancy) index(x, y, z int) int {
	return (x - o.minX) + (y-o.minY)*o.strideY + (z-o.minZ)*o.strideZ
}

// at returns palette index + 1 at (x,y,z), or 0 when empty or out of range.
func (o *occupancy) at(x, y, z int) int {
	idx := o.index(x, y, z)
	if idx < 0 || idx >= len(o.cells) {
		return 0
	}
	return o.cells[idx]
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
