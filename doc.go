// Package voxel converts large sparse voxel structures into renderable
// geometry for the GoGPU ecosystem.
//
// # Overview
//
// A voxel structure (a "schematic") is a sparse 3D block grid partitioned
// into fixed-size chunks. voxel turns each chunk into a small set of merged,
// material-grouped meshes, caches them per chunk coordinate, and rebuilds
// only the chunks touched by live edits. Builds never have to block the host
// presentation loop: the scheduler supports a cooperative time-sliced mode
// with an adaptive per-tick budget alongside synchronous and batched modes.
//
// # Quick Start
//
//	import "github.com/gogpu/voxel"
//
//	store := voxel.NewMemStore(16)
//	store.SetBlock(voxel.BlockPos{X: 0, Y: 0, Z: 0}, 0)
//
//	palette := voxel.NewPalette()
//	palette.Add(voxel.SolidCubeEntry(0, "solid", 0))
//
//	sch, err := voxel.New(store, palette)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer sch.Dispose()
//
//	stats, err := sch.Build(context.Background(), voxel.ModeImmediate)
//
// # Build Modes
//
// Three modes drain the same chunk stream with different strategies:
//
//   - [ModeImmediate] processes every chunk in one continuous pass, in
//     iterator order. Deterministic and lowest total latency, but large
//     inputs may stall interaction.
//   - [ModeIncremental] is cooperative: each tick processes chunks until the
//     adaptive time budget runs out, then yields to the host [FrameLoop] so
//     exactly one present happens between ticks.
//   - [ModeInstanced] bypasses the per-chunk cache and merges the whole
//     schematic into one batch of draw-ready meshes per category.
//
// # Architecture
//
// The library is organized into:
//   - Public API: Schematic, Palette, MeshBuilder, ChunkCache, Bounds
//   - Collaborator contracts: BlockStore, ChunkIterator, FrameLoop, MeshUploader
//   - GPU upload: render/ (gogpu/wgpu HAL buffers)
//   - Host loop adapters: integration/ebitenloop
//
// # Coordinate System
//
// Block positions are integer world coordinates; a block occupies the unit
// cell [x,x+1)×[y,y+1)×[z,z+1). Chunk coordinates are grid indices obtained
// by floor division with the store's chunk size. Mesh vertex positions are
// chunk-local and quantized (see [PositionScale]).
package voxel

// Version information
const (
	// Version is the current version of the library
	Version = "0.2.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 2

	// VersionPatch is the patch version
	VersionPatch = 0
)
