// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package render uploads voxel meshes to GPU buffers using gogpu/wgpu.
//
// The package bridges the voxel build pipeline and the GoGPU HAL: it
// receives a shared GPU device from the host application (it never creates
// one), interleaves each mesh's quantized vertex streams into a single
// buffer, and registers as the pipeline's MeshUploader so GPU buffers are
// created on build and destroyed together with their mesh.
//
// Typical wiring:
//
//	up, err := render.NewUploader(device, queue)
//	if err != nil { ... }
//	if err := voxel.RegisterUploader(up); err != nil { ... }
package render
