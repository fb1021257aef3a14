// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// DeviceHandle provides GPU device access from the host application.
//
// This interface is the primary integration point between the voxel
// pipeline and GPU frameworks like gogpu. The host application implements
// DeviceHandle and passes it to the uploader, allowing voxel meshes to live
// on the shared GPU device.
//
// Key principle: the uploader RECEIVES the device from the host, it does
// NOT create one. This keeps GPU resources shared and consistently managed
// across the stack.
//
// DeviceHandle is an alias for gpucontext.DeviceProvider, providing a
// voxel-specific name for the interface while maintaining full
// compatibility with the gpucontext ecosystem.
type DeviceHandle = gpucontext.DeviceProvider

// NullDeviceHandle is a DeviceHandle that provides nil implementations.
// Used when no GPU is available and meshes stay CPU-resident.
type NullDeviceHandle struct{}

// Device returns nil for the null device.
func (NullDeviceHandle) Device() gpucontext.Device { return nil }

// Queue returns nil for the null device.
func (NullDeviceHandle) Queue() gpucontext.Queue { return nil }

// Adapter returns nil for the null device.
func (NullDeviceHandle) Adapter() gpucontext.Adapter { return nil }

// SurfaceFormat returns undefined format for the null device.
func (NullDeviceHandle) SurfaceFormat() gputypes.TextureFormat {
	return gputypes.TextureFormatUndefined
}

// Ensure NullDeviceHandle implements DeviceHandle.
var _ DeviceHandle = NullDeviceHandle{}

// halProvider is implemented by providers that expose raw wgpu/hal handles
// (e.g., a gogpu window). NewUploaderFromProvider uses it to share the
// host's device without going through gpucontext wrappers.
type halProvider interface {
	HalDevice() any
	HalQueue() any
}

// halFromProvider extracts hal handles from a provider, if it carries them.
func halFromProvider(provider any) (hal.Device, hal.Queue, bool) {
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, nil, false
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok {
		return nil, nil, false
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok {
		return nil, nil, false
	}
	return device, queue, true
}
