// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpu

import (
	_ "embed"
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"
)

// Embedded video quad shader source.
//
//go:embed shaders/video.wgsl
var videoShaderSource string

// Pipeline errors.
var (
	// ErrPipelineDestroyed is returned when operating on a destroyed pipeline.
	ErrPipelineDestroyed = errors.New("gpu: video pipeline has been destroyed")

	// ErrNilTexture is returned when building a pipeline without a texture.
	ErrNilTexture = errors.New("gpu: external texture is nil")
)

// videoVertexStride is the byte stride per vertex in the video pipeline.
// Layout per vertex:
//
//	position  (vec2<f32>) = 8 bytes  (location 0)
//	tex_coord (vec2<f32>) = 8 bytes  (location 1)
//
// Total = 16 bytes per vertex.
const videoVertexStride = 16

// videoQuadVertexCount is the number of vertices in the two-triangle quad.
const videoQuadVertexCount = 6

// videoUniformSize is the byte size of the video uniform buffer.
// Layout: projection (mat4x4<f32>) = 64 bytes +
// st_transform (mat4x4<f32>) = 64 bytes + params (vec4<f32>) = 16 bytes
// = 144 bytes.
const videoUniformSize = 144

// VideoPipeline owns the GPU objects that draw one video quad: shader,
// bind group layout, render pipeline, persistent vertex and uniform
// buffers, and the bind group tying them to an ExternalTexture.
//
// The pipeline renders opaque: the frame content replaces whatever is
// behind the quad, so no blend state is attached to the color target.
// Geometry and uniforms are re-uploaded in place via queue.WriteBuffer,
// so a transform or rect change never reallocates GPU objects.
//
// Not safe for concurrent use. All methods must run on the
// render-owning thread.
type VideoPipeline struct {
	device hal.Device
	queue  hal.Queue

	shader     hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	pipeline   hal.RenderPipeline

	vertexBuf  hal.Buffer
	uniformBuf hal.Buffer
	bindGroup  hal.BindGroup

	format    gputypes.TextureFormat
	label     string
	destroyed bool
}

// NewVideoPipeline compiles the video shader and creates the render
// pipeline plus persistent buffers, bound to the given texture's view
// and sampler. format is the color target format of the render passes
// the quad will draw into, i.e. the host's surface format. On any
// partial failure, already-created resources are released before
// returning.
func NewVideoPipeline(device hal.Device, queue hal.Queue, tex *ExternalTexture, format gputypes.TextureFormat, label string) (*VideoPipeline, error) {
	if tex == nil {
		return nil, ErrNilTexture
	}

	p := &VideoPipeline{
		device: device,
		queue:  queue,
		format: format,
		label:  label,
	}
	if err := p.create(tex); err != nil {
		p.destroy()
		return nil, err
	}

	slogger().Info("gpu: video pipeline created", "label", label)
	return p, nil
}

func (p *VideoPipeline) create(tex *ExternalTexture) error {
	spirv, err := compileVideoShader()
	if err != nil {
		return err
	}

	shader, err := p.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  p.label + "_video_shader",
		Source: hal.ShaderSource{SPIRV: spirv},
	})
	if err != nil {
		return fmt.Errorf("create video shader module: %w", err)
	}
	p.shader = shader

	// Bind group layout:
	//   Binding 0: VideoUniforms (uniform buffer, vertex+fragment)
	//   Binding 1: frame texture (texture_2d, fragment)
	//   Binding 2: sampler (fragment)
	bindLayout, err := p.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: p.label + "_video_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			{
				Binding:    2,
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create video bind group layout: %w", err)
	}
	p.bindLayout = bindLayout

	pipeLayout, err := p.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            p.label + "_video_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{p.bindLayout},
	})
	if err != nil {
		return fmt.Errorf("create video pipeline layout: %w", err)
	}
	p.pipeLayout = pipeLayout

	// Opaque color target: video content replaces the destination, so
	// no blend state is attached.
	pipeline, err := p.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  p.label + "_video_pipeline",
		Layout: p.pipeLayout,
		Vertex: hal.VertexState{
			Module:     p.shader,
			EntryPoint: "vs_main",
			Buffers:    videoVertexLayout(),
		},
		Fragment: &hal.FragmentState{
			Module:     p.shader,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{
				{
					Format:    p.format,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return fmt.Errorf("create video pipeline: %w", err)
	}
	p.pipeline = pipeline

	vertexBuf, err := p.device.CreateBuffer(&hal.BufferDescriptor{
		Label: p.label + "_video_verts",
		Size:  videoQuadVertexCount * videoVertexStride,
		Usage: gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create video vertex buffer: %w", err)
	}
	p.vertexBuf = vertexBuf

	uniformBuf, err := p.device.CreateBuffer(&hal.BufferDescriptor{
		Label: p.label + "_video_uniform",
		Size:  videoUniformSize,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create video uniform buffer: %w", err)
	}
	p.uniformBuf = uniformBuf

	bindGroup, err := p.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  p.label + "_video_bind",
		Layout: p.bindLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{
				Buffer: p.uniformBuf.NativeHandle(), Offset: 0, Size: videoUniformSize,
			}},
			{Binding: 1, Resource: gputypes.TextureViewBinding{
				TextureView: tex.View().NativeHandle(),
			}},
			{Binding: 2, Resource: gputypes.SamplerBinding{
				Sampler: tex.Sampler().NativeHandle(),
			}},
		},
	})
	if err != nil {
		return fmt.Errorf("create video bind group: %w", err)
	}
	p.bindGroup = bindGroup

	return nil
}

// compileVideoShader compiles the embedded WGSL source to SPIR-V words.
func compileVideoShader() ([]uint32, error) {
	if videoShaderSource == "" {
		return nil, errors.New("gpu: video shader source is empty")
	}
	spirvBytes, err := naga.Compile(videoShaderSource)
	if err != nil {
		return nil, fmt.Errorf("compile video shader: %w", err)
	}

	// SPIR-V is little-endian 32-bit words.
	spirv := make([]uint32, len(spirvBytes)/4)
	for i := range spirv {
		spirv[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return spirv, nil
}

// UpdateUniforms uploads the projection matrix, the per-frame source
// transform and the opacity to the uniform buffer.
func (p *VideoPipeline) UpdateUniforms(projection, stTransform [16]float32, opacity float32) error {
	if p.destroyed {
		return ErrPipelineDestroyed
	}
	p.queue.WriteBuffer(p.uniformBuf, 0, packVideoUniforms(projection, stTransform, opacity))
	return nil
}

// packVideoUniforms lays out the uniform block byte-for-byte as the
// shader reads it. CPU-side matrices are row-major; WGSL mat4x4 uniform
// columns are stored sequentially, so each matrix is transposed while
// packing. Opacity lands in params.x; params.yzw stay zero.
func packVideoUniforms(projection, stTransform [16]float32, opacity float32) []byte {
	buf := make([]byte, videoUniformSize)
	packMat4ColumnMajor(buf[0:64], projection)
	packMat4ColumnMajor(buf[64:128], stTransform)
	binary.LittleEndian.PutUint32(buf[128:], math.Float32bits(opacity))
	return buf
}

// packMat4ColumnMajor writes a row-major 4x4 matrix into dst transposed,
// column by column.
func packMat4ColumnMajor(dst []byte, m [16]float32) {
	off := 0
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			binary.LittleEndian.PutUint32(dst[off:], math.Float32bits(m[row*4+col]))
			off += 4
		}
	}
}

// UpdateGeometry uploads the quad vertices for the given rect. The top
// edge of the rect carries v=1 and the bottom edge v=0, so frames which
// producers deliver bottom-row-first appear upright without a CPU flip.
func (p *VideoPipeline) UpdateGeometry(minX, minY, maxX, maxY float32) error {
	if p.destroyed {
		return ErrPipelineDestroyed
	}

	quad := videoQuadVertices(minX, minY, maxX, maxY)
	buf := make([]byte, videoQuadVertexCount*videoVertexStride)
	off := 0
	for _, v := range quad {
		for _, f := range v {
			binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(f))
			off += 4
		}
	}

	p.queue.WriteBuffer(p.vertexBuf, 0, buf)
	return nil
}

// videoQuadVertices returns the two-triangle quad for the given rect as
// {x, y, u, v} tuples. v is flipped relative to y: the top edge (minY)
// samples v=1 and the bottom edge (maxY) samples v=0.
func videoQuadVertices(minX, minY, maxX, maxY float32) [videoQuadVertexCount][4]float32 {
	return [videoQuadVertexCount][4]float32{
		{minX, minY, 0, 1}, // top-left
		{maxX, minY, 1, 1}, // top-right
		{maxX, maxY, 1, 0}, // bottom-right
		{maxX, maxY, 1, 0}, // bottom-right
		{minX, maxY, 0, 0}, // bottom-left
		{minX, minY, 0, 1}, // top-left
	}
}

// Format returns the color target format the pipeline renders to.
func (p *VideoPipeline) Format() gputypes.TextureFormat { return p.format }

// RecordDraw records the video quad draw into an existing render pass.
func (p *VideoPipeline) RecordDraw(rp hal.RenderPassEncoder) error {
	if p.destroyed {
		return ErrPipelineDestroyed
	}
	rp.SetPipeline(p.pipeline)
	rp.SetBindGroup(0, p.bindGroup, nil)
	rp.SetVertexBuffer(0, p.vertexBuf, 0)
	rp.Draw(videoQuadVertexCount, 1, 0, 0)
	return nil
}

// Destroy releases all pipeline resources. The first call wins;
// subsequent calls return ErrPipelineDestroyed.
func (p *VideoPipeline) Destroy() error {
	if p.destroyed {
		return ErrPipelineDestroyed
	}
	p.destroy()
	p.destroyed = true

	slogger().Info("gpu: video pipeline destroyed", "label", p.label)
	return nil
}

// destroy releases resources in reverse creation order, tolerating
// partially-constructed state.
func (p *VideoPipeline) destroy() {
	if p.device == nil {
		return
	}
	if p.bindGroup != nil {
		p.device.DestroyBindGroup(p.bindGroup)
		p.bindGroup = nil
	}
	if p.uniformBuf != nil {
		p.device.DestroyBuffer(p.uniformBuf)
		p.uniformBuf = nil
	}
	if p.vertexBuf != nil {
		p.device.DestroyBuffer(p.vertexBuf)
		p.vertexBuf = nil
	}
	if p.pipeline != nil {
		p.device.DestroyRenderPipeline(p.pipeline)
		p.pipeline = nil
	}
	if p.pipeLayout != nil {
		p.device.DestroyPipelineLayout(p.pipeLayout)
		p.pipeLayout = nil
	}
	if p.bindLayout != nil {
		p.device.DestroyBindGroupLayout(p.bindLayout)
		p.bindLayout = nil
	}
	if p.shader != nil {
		p.device.DestroyShaderModule(p.shader)
		p.shader = nil
	}
}

// videoVertexLayout returns the vertex buffer layout for the video
// pipeline. Matches VertexInput in video.wgsl:
//
//	location 0: position (vec2<f32>)
//	location 1: tex_coord (vec2<f32>)
func videoVertexLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: videoVertexStride,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0}, // position
				{Format: gputypes.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1}, // tex_coord
			},
		},
	}
}
