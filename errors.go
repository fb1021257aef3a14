package voxel

import (
	"errors"
	"fmt"
)

// Common errors returned by the package.
var (
	// ErrDisposed is returned when operations are attempted on a disposed
	// schematic.
	ErrDisposed = errors.New("voxel: schematic is disposed")

	// ErrNilStore is returned when a schematic is created without a block store.
	ErrNilStore = errors.New("voxel: nil block store")

	// ErrNilPalette is returned when a schematic is created without a palette.
	ErrNilPalette = errors.New("voxel: nil palette")

	// ErrBatchActive is returned when a bulk build is started while a
	// previous batch has not been finished or cleared.
	ErrBatchActive = errors.New("voxel: batch build already active")
)

// DataError reports corrupt or missing chunk data from a ChunkIterator.
// It is fatal: the build session aborts and the error reaches the caller.
// Chunks already installed stay in the cache (no rollback).
type DataError struct {
	Err error
}

func (e *DataError) Error() string {
	return fmt.Sprintf("voxel: chunk data: %v", e.Err)
}

// Unwrap returns the underlying cause.
func (e *DataError) Unwrap() error { return e.Err }

// BuildError reports a single chunk's geometry construction failure.
// It is recoverable: the chunk is skipped, the failure is counted in the
// session summary, and the build continues with the next chunk.
type BuildError struct {
	Coord ChunkCoord
	Err   error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("voxel: build %v: %v", e.Coord, e.Err)
}

// Unwrap returns the underlying cause.
func (e *BuildError) Unwrap() error { return e.Err }

// ResourceError reports a cache or mesh disposal failure. It is never
// blocking: callers log it at Warn level and continue.
type ResourceError struct {
	Err error
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("voxel: resource release: %v", e.Err)
}

// Unwrap returns the underlying cause.
func (e *ResourceError) Unwrap() error { return e.Err }
