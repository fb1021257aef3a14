package voxel

import (
	"errors"
	"sync"
)

// Releaser frees an external resource attached to a mesh, typically GPU
// buffers created by an uploader. Release must be safe to call once; the
// mesh guarantees it is not called twice.
type Releaser interface {
	Release() error
}

// MeshUploader is an optional GPU upload provider.
//
// When registered via RegisterUploader, the build pipeline uploads every
// freshly built mesh and attaches the returned Releaser, so the chunk cache
// frees GPU buffers together with the mesh. Upload failures are never fatal:
// the mesh stays CPU-resident and the failure is logged at Warn level.
//
// Implementations are provided by backend packages (e.g., voxel/render).
// Users opt in via explicit registration:
//
//	up, err := render.NewUploader(device, queue)
//	if err != nil { ... }
//	voxel.RegisterUploader(up)
type MeshUploader interface {
	// Name returns the uploader name (e.g., "wgpu").
	Name() string

	// Init initializes upload resources. Called once during registration.
	Init() error

	// Close releases upload resources.
	Close()

	// Upload copies the mesh's vertex and index data to GPU buffers and
	// returns a Releaser that frees them.
	Upload(m *Mesh) (Releaser, error)
}

var (
	uploaderMu sync.RWMutex
	uploader   MeshUploader
)

// RegisterUploader registers a mesh uploader for optional GPU residency.
//
// Only one uploader can be registered. Subsequent calls replace the previous
// one. The uploader's Init() method is called during registration; if it
// fails, the uploader is not registered and the error is returned.
func RegisterUploader(u MeshUploader) error {
	if u == nil {
		return errors.New("voxel: uploader must not be nil")
	}
	if err := u.Init(); err != nil {
		return err
	}
	propagateLogger(u, Logger())
	uploaderMu.Lock()
	old := uploader
	uploader = u
	uploaderMu.Unlock()
	if old != nil {
		old.Close()
	}
	return nil
}

// Uploader returns the currently registered mesh uploader, or nil if none.
func Uploader() MeshUploader {
	uploaderMu.RLock()
	u := uploader
	uploaderMu.RUnlock()
	return u
}

// uploadMeshes pushes freshly built meshes through the registered uploader,
// attaching the returned releasers. A failed upload leaves the mesh
// CPU-resident and is logged, never propagated.
func uploadMeshes(meshes []*Mesh) {
	u := Uploader()
	if u == nil {
		return
	}
	for _, m := range meshes {
		r, err := u.Upload(m)
		if err != nil {
			Logger().Warn("mesh upload failed", "uploader", u.Name(), "err", err)
			continue
		}
		if r != nil {
			m.Attach(r)
		}
	}
}
