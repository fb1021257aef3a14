// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"fmt"

	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"
)

// voxelShaderWGSL renders uploaded voxel meshes. Positions arrive as
// fixed-point sint16 and are rescaled by the inverse of the quantization
// scale; normals arrive snorm8 and only need renormalization.
const voxelShaderWGSL = `
struct Camera {
    view_proj: mat4x4<f32>,
    chunk_origin: vec4<f32>,
}

@group(0) @binding(0) var<uniform> camera: Camera;

struct VertexInput {
    @location(0) position: vec4<i32>,
    @location(1) normal: vec4<f32>,
    @location(2) uv: vec2<f32>,
}

struct VertexOutput {
    @builtin(position) clip_position: vec4<f32>,
    @location(0) normal: vec3<f32>,
    @location(1) uv: vec2<f32>,
}

const POSITION_SCALE: f32 = 1024.0;

@vertex
fn vs_main(in: VertexInput) -> VertexOutput {
    var out: VertexOutput;
    let local = vec3<f32>(in.position.xyz) / POSITION_SCALE;
    let world = local + camera.chunk_origin.xyz;
    out.clip_position = camera.view_proj * vec4<f32>(world, 1.0);
    out.normal = normalize(in.normal.xyz);
    out.uv = in.uv;
    return out;
}

@fragment
fn fs_main(in: VertexOutput) -> @location(0) vec4<f32> {
    let light_dir = normalize(vec3<f32>(0.5, 1.0, 0.3));
    let diffuse = max(dot(in.normal, light_dir), 0.0);
    let shade = 0.35 + 0.65 * diffuse;
    return vec4<f32>(vec3<f32>(shade), 1.0);
}
`

// CompileShader compiles the built-in voxel WGSL shader to SPIR-V words.
func CompileShader() ([]uint32, error) {
	return compileWGSL(voxelShaderWGSL)
}

// compileWGSL compiles WGSL source to SPIR-V uint32 words.
func compileWGSL(source string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(source)
	if err != nil {
		return nil, fmt.Errorf("render: shader compilation failed: %w", err)
	}

	// SPIR-V is little-endian 32-bit words.
	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return words, nil
}

// CreateShaderModule compiles the voxel shader and creates a HAL shader
// module on the given device.
func CreateShaderModule(device hal.Device) (hal.ShaderModule, error) {
	if device == nil {
		return nil, ErrNilDevice
	}
	words, err := CompileShader()
	if err != nil {
		return nil, err
	}
	return device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label: "voxel-mesh",
		Source: hal.ShaderSource{
			SPIRV: words,
		},
	})
}
