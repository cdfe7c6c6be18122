// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpu

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Texture errors.
var (
	// ErrTextureDestroyed is returned when operating on a destroyed texture.
	ErrTextureDestroyed = errors.New("gpu: external texture has been destroyed")

	// ErrInvalidTextureSize is returned when texture dimensions are invalid.
	ErrInvalidTextureSize = errors.New("gpu: invalid texture size")

	// ErrFrameSizeMismatch is returned when uploaded frame dimensions do
	// not match the texture.
	ErrFrameSizeMismatch = errors.New("gpu: frame size does not match texture")

	// ErrShortFrameData is returned when the uploaded pixel buffer is
	// smaller than width*height*4 bytes.
	ErrShortFrameData = errors.New("gpu: frame data shorter than frame size")
)

// ExternalTexture is a GPU texture whose content is supplied by an
// external frame producer rather than by the draw graph. It bundles the
// texture, its default view and the sampler the video pipeline binds.
//
// The content has no derivable mip chain, so the texture is created
// with a single mip level and sampled with nearest minification,
// linear magnification and clamp-to-edge wrapping on both axes.
//
// All methods must run on the render-owning thread. Destroy is
// guarded so a second call is a no-op returning ErrTextureDestroyed.
type ExternalTexture struct {
	device hal.Device
	queue  hal.Queue

	tex     hal.Texture
	view    hal.TextureView
	sampler hal.Sampler

	width  int
	height int
	label  string

	destroyed atomic.Bool
}

// CreateExternalTexture allocates and configures the external texture.
// On any partial failure, already-created resources are released before
// returning.
func CreateExternalTexture(device hal.Device, queue hal.Queue, width, height int, label string) (*ExternalTexture, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidTextureSize, width, height)
	}

	tex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         label + "_external",
		Size:          hal.Extent3D{Width: uint32(width), Height: uint32(height), DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create external texture: %w", err)
	}

	view, err := device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label: label + "_external_view",
	})
	if err != nil {
		device.DestroyTexture(tex)
		return nil, fmt.Errorf("create external texture view: %w", err)
	}

	sampler, err := device.CreateSampler(&hal.SamplerDescriptor{
		Label:        label + "_external_sampler",
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    gputypes.FilterModeLinear,
		MinFilter:    gputypes.FilterModeNearest,
		MipmapFilter: gputypes.FilterModeNearest,
	})
	if err != nil {
		device.DestroyTextureView(view)
		device.DestroyTexture(tex)
		return nil, fmt.Errorf("create external texture sampler: %w", err)
	}

	slogger().Info("gpu: external texture created",
		"label", label, "width", width, "height", height)

	return &ExternalTexture{
		device:  device,
		queue:   queue,
		tex:     tex,
		view:    view,
		sampler: sampler,
		width:   width,
		height:  height,
		label:   label,
	}, nil
}

// Size returns the texture dimensions in pixels.
func (t *ExternalTexture) Size() (width, height int) {
	return t.width, t.height
}

// View returns the texture view the video pipeline binds.
func (t *ExternalTexture) View() hal.TextureView { return t.view }

// Sampler returns the sampler the video pipeline binds.
func (t *ExternalTexture) Sampler() hal.Sampler { return t.sampler }

// WriteRGBA replaces the texture contents with tightly-packed RGBA8
// pixel data. Frame dimensions must match the texture exactly.
func (t *ExternalTexture) WriteRGBA(data []byte, width, height int) error {
	if t.destroyed.Load() {
		return ErrTextureDestroyed
	}
	if width != t.width || height != t.height {
		return fmt.Errorf("%w: frame %dx%d, texture %dx%d",
			ErrFrameSizeMismatch, width, height, t.width, t.height)
	}
	if len(data) < width*height*4 {
		return fmt.Errorf("%w: got %d bytes, need %d",
			ErrShortFrameData, len(data), width*height*4)
	}

	dst := &hal.ImageCopyTexture{
		Texture:  t.tex,
		MipLevel: 0,
		Origin:   hal.Origin3D{X: 0, Y: 0, Z: 0},
		Aspect:   gputypes.TextureAspectAll,
	}
	layout := &hal.ImageDataLayout{
		Offset:       0,
		BytesPerRow:  uint32(width * 4),
		RowsPerImage: uint32(height),
	}
	size := &hal.Extent3D{
		Width:              uint32(width),
		Height:             uint32(height),
		DepthOrArrayLayers: 1,
	}
	t.queue.WriteTexture(dst, data, layout, size)
	return nil
}

// Destroy releases the sampler, view and texture. The first call wins;
// subsequent calls return ErrTextureDestroyed without touching the GPU.
func (t *ExternalTexture) Destroy() error {
	if t.destroyed.Swap(true) {
		return ErrTextureDestroyed
	}

	t.device.DestroySampler(t.sampler)
	t.device.DestroyTextureView(t.view)
	t.device.DestroyTexture(t.tex)

	slogger().Info("gpu: external texture destroyed", "label", t.label)
	return nil
}

// IsDestroyed reports whether Destroy has run.
func (t *ExternalTexture) IsDestroyed() bool { return t.destroyed.Load() }
