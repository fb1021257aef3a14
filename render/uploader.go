// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/voxel"
)

// Uploader errors.
var (
	// ErrNilDevice is returned when creating an uploader without a device.
	ErrNilDevice = errors.New("render: device is nil")

	// ErrNilQueue is returned when creating an uploader without a queue.
	ErrNilQueue = errors.New("render: queue is nil")

	// ErrNoHALProvider is returned when a device provider does not expose
	// raw HAL handles.
	ErrNoHALProvider = errors.New("render: provider does not expose hal handles")

	// ErrClosed is returned when uploading through a closed uploader.
	ErrClosed = errors.New("render: uploader is closed")

	// ErrEmptyMesh is returned when uploading a mesh with no geometry.
	ErrEmptyMesh = errors.New("render: mesh has no geometry")
)

// Uploader implements voxel.MeshUploader over a shared wgpu/hal device.
//
// Each uploaded mesh gets one interleaved vertex buffer and one index
// buffer; the returned Releaser destroys both. The uploader itself holds
// no per-mesh state beyond counters, so a single instance serves any
// number of concurrent build sessions.
type Uploader struct {
	mu     sync.Mutex
	device hal.Device
	queue  hal.Queue
	closed bool

	uploads  uint64
	released uint64

	logger *slog.Logger
}

// Ensure Uploader implements the pipeline's uploader contract.
var _ voxel.MeshUploader = (*Uploader)(nil)

// NewUploader creates an uploader over the host's device and queue. The
// uploader borrows both handles; it never destroys the device.
func NewUploader(device hal.Device, queue hal.Queue) (*Uploader, error) {
	if device == nil {
		return nil, ErrNilDevice
	}
	if queue == nil {
		return nil, ErrNilQueue
	}
	return &Uploader{device: device, queue: queue, logger: slog.New(discardHandler{})}, nil
}

// NewUploaderFromProvider creates an uploader from a device provider that
// exposes raw HAL handles (e.g. a gogpu window).
func NewUploaderFromProvider(provider any) (*Uploader, error) {
	device, queue, ok := halFromProvider(provider)
	if !ok {
		return nil, ErrNoHALProvider
	}
	return NewUploader(device, queue)
}

// Name identifies the uploader in pipeline logs.
func (u *Uploader) Name() string { return "wgpu" }

// Init validates device access before the uploader is registered.
func (u *Uploader) Init() error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.closed {
		return ErrClosed
	}
	if u.device == nil {
		return ErrNilDevice
	}
	return nil
}

// SetLogger routes uploader logging to the given logger.
func (u *Uploader) SetLogger(logger *slog.Logger) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if logger == nil {
		logger = slog.New(discardHandler{})
	}
	u.logger = logger
}

// Upload creates GPU buffers for the mesh and writes its interleaved
// vertex data and indices through the queue.
func (u *Uploader) Upload(m *voxel.Mesh) (voxel.Releaser, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.closed {
		return nil, ErrClosed
	}
	if m == nil || m.VertexCount() == 0 || m.IndexCount() == 0 {
		return nil, ErrEmptyMesh
	}

	vertexData := InterleaveVertices(m)
	indexData := EncodeIndices(m)

	vertexBuf, err := u.createBuffer(
		fmt.Sprintf("voxel-vertices-%s", m.Category),
		vertexData,
		gputypes.BufferUsageVertex|gputypes.BufferUsageCopyDst,
	)
	if err != nil {
		return nil, fmt.Errorf("render: vertex buffer: %w", err)
	}

	indexBuf, err := u.createBuffer(
		fmt.Sprintf("voxel-indices-%s", m.Category),
		indexData,
		gputypes.BufferUsageIndex|gputypes.BufferUsageCopyDst,
	)
	if err != nil {
		u.device.DestroyBuffer(vertexBuf)
		return nil, fmt.Errorf("render: index buffer: %w", err)
	}

	u.uploads++
	u.logger.Debug("mesh uploaded",
		"category", m.Category,
		"vertices", m.VertexCount(),
		"indices", m.IndexCount(),
		"vertexBytes", len(vertexData),
		"indexBytes", len(indexData))

	return &meshBuffers{
		uploader:    u,
		vertexBuf:   vertexBuf,
		indexBuf:    indexBuf,
		indexFormat: IndexFormat(m),
		indexCount:  uint32(m.IndexCount()),
	}, nil
}

// createBuffer allocates a buffer sized to the data and writes the data
// through the queue. Sizes are aligned up to 4 bytes for copy operations.
func (u *Uploader) createBuffer(label string, data []byte, usage gputypes.BufferUsage) (hal.Buffer, error) {
	const copyAlignment = 4
	size := (uint64(len(data)) + copyAlignment - 1) &^ uint64(copyAlignment-1)

	buf, err := u.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  size,
		Usage: usage,
	})
	if err != nil {
		return nil, err
	}
	u.queue.WriteBuffer(buf, 0, data)
	return buf, nil
}

// Close marks the uploader unusable. Buffers of already uploaded meshes
// stay valid until their meshes release them.
func (u *Uploader) Close() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.closed = true
}

// Uploads returns the number of successful uploads.
func (u *Uploader) Uploads() uint64 {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.uploads
}

// Releases returns the number of released mesh buffer sets.
func (u *Uploader) Releases() uint64 {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.released
}

// meshBuffers holds the GPU resources of one uploaded mesh.
type meshBuffers struct {
	mu       sync.Mutex
	uploader *Uploader
	released bool

	vertexBuf   hal.Buffer
	indexBuf    hal.Buffer
	indexFormat gputypes.IndexFormat
	indexCount  uint32
}

// VertexBuffer returns the interleaved vertex buffer, or nil after release.
func (b *meshBuffers) VertexBuffer() hal.Buffer {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.vertexBuf
}

// IndexBuffer returns the index buffer, or nil after release.
func (b *meshBuffers) IndexBuffer() hal.Buffer {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.indexBuf
}

// IndexFormat returns the format of the index buffer.
func (b *meshBuffers) IndexFormat() gputypes.IndexFormat { return b.indexFormat }

// IndexCount returns the number of indices to draw.
func (b *meshBuffers) IndexCount() uint32 { return b.indexCount }

// Release destroys both buffers. Idempotent.
func (b *meshBuffers) Release() error {
	b.mu.Lock()
	if b.released {
		b.mu.Unlock()
		return nil
	}
	b.released = true
	vertexBuf, indexBuf := b.vertexBuf, b.indexBuf
	b.vertexBuf, b.indexBuf = nil, nil
	b.mu.Unlock()

	b.uploader.mu.Lock()
	device := b.uploader.device
	b.uploader.released++
	b.uploader.mu.Unlock()

	if device != nil {
		if vertexBuf != nil {
			device.DestroyBuffer(vertexBuf)
		}
		if indexBuf != nil {
			device.DestroyBuffer(indexBuf)
		}
	}
	return nil
}

// discardHandler drops all log records.
type discardHandler struct{}

func (discardHandler) Enabled(_ context.Context, _ slog.Level) bool { return false }

func (discardHandler) Handle(_ context.Context, _ slog.Record) error { return nil }

func (h discardHandler) WithAttrs(_ []slog.Attr) slog.Handler { return h }

func (h discardHandler) WithGroup(_ string) slog.Handler { return h }
