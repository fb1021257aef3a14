// Command voxdemo builds meshes for a procedurally generated voxel terrain
// and prints build statistics.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"math"
	"os"
	"time"

	"github.com/gogpu/voxel"
)

func main() {
	var (
		mode    = flag.String("mode", "immediate", "build mode: immediate, incremental, instanced")
		size    = flag.Int("size", 64, "terrain size in blocks per side")
		chunk   = flag.Int("chunk", 16, "chunk size in blocks")
		fps     = flag.Int("fps", 60, "target frame rate for incremental builds")
		edits   = flag.Int("edits", 0, "random block edits to apply after the build")
		verbose = flag.Bool("verbose", false, "enable debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	voxel.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	buildMode, ok := parseMode(*mode)
	if !ok {
		log.Fatalf("unknown mode %q", *mode)
	}

	store := voxel.NewMemStore(*chunk)
	fillTerrain(store, *size)

	palette := voxel.NewPalette()
	palette.Add(voxel.SolidCubeEntry(0, "solid", 0))

	sch, err := voxel.New(store, palette, voxel.WithTargetFPS(*fps))
	if err != nil {
		log.Fatalf("create schematic: %v", err)
	}
	defer sch.Dispose()

	start := time.Now()
	stats, err := sch.Build(context.Background(), buildMode)
	if err != nil {
		log.Fatalf("build: %v", err)
	}
	elapsed := time.Since(start)

	log.Printf("mode=%s state=%s chunks=%d processed=%d skipped=%d failed=%d in %v",
		stats.Mode, stats.State, stats.Total, stats.Processed, stats.Skipped, stats.Failed, elapsed)

	var vertices, indices int
	for _, coord := range sch.ChunkCoords() {
		meshes, _ := sch.Meshes(coord)
		for _, m := range meshes {
			vertices += m.VertexCount()
			indices += m.IndexCount()
		}
	}
	log.Printf("cached %d chunks, %d vertices, %d indices", len(sch.ChunkCoords()), vertices, indices)

	if *edits > 0 {
		applyEdits(sch, *size, *edits)
	}
}

func parseMode(s string) (voxel.BuildMode, bool) {
	switch s {
	case "immediate":
		return voxel.ModeImmediate, true
	case "incremental":
		return voxel.ModeIncremental, true
	case "instanced":
		return voxel.ModeInstanced, true
	}
	return 0, false
}

// fillTerrain writes a rolling heightfield into the store.
func fillTerrain(store *voxel.MemStore, size int) {
	for x := 0; x < size; x++ {
		for z := 0; z < size; z++ {
			fx := float64(x) / float64(size)
			fz := float64(z) / float64(size)
			h := 4 +
				int(6*math.Sin(fx*4*math.Pi)*math.Cos(fz*3*math.Pi)) +
				int(8*fx*fz*float64(size)/16)
			if h < 1 {
				h = 1
			}
			for y := 0; y < h; y++ {
				store.SetBlock(voxel.BlockPos{X: x, Y: y, Z: z}, 0)
			}
		}
	}
}

// applyEdits toggles pseudo-random blocks and rebuilds the affected chunks.
func applyEdits(sch *voxel.Schematic, size, count int) {
	batch := make([]voxel.BlockEdit, 0, count)
	seed := uint64(12345)
	for i := 0; i < count; i++ {
		seed = seed*6364136223846793005 + 1442695040888963407
		x := int(seed>>33) % size
		seed = seed*6364136223846793005 + 1442695040888963407
		z := int(seed>>33) % size
		batch = append(batch, voxel.BlockEdit{
			Pos:     voxel.BlockPos{X: x, Y: 2, Z: z},
			Palette: voxel.AirBlock,
		})
	}

	start := time.Now()
	if err := sch.SetBlocks(context.Background(), batch); err != nil {
		log.Fatalf("edits: %v", err)
	}
	log.Printf("applied %d edits in %v", count, time.Since(start))
}
