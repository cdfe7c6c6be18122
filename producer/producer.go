// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package producer defines the boundary with external video/camera frame
// producers. A producer decodes frames on its own goroutine, writes them
// into a GPU texture it was bound to at construction, and notifies a
// single listener whenever a new frame is ready.
//
// Implementations live in sub-packages (gst, testsrc) and register
// themselves by name, so hosts can select one without importing it
// directly:
//
//	import _ "github.com/gogpu/videosurface/producer/gst"
//
//	prov, err := producer.NewProvider("gst", producer.Options{URI: url})
package producer

import "errors"

// Package errors.
var (
	// ErrImageReleased is returned when operating on a released image.
	ErrImageReleased = errors.New("producer: image has been released")

	// ErrNilTarget is returned by Open when no texture writer is given.
	ErrNilTarget = errors.New("producer: texture writer is nil")
)

// FrameListener is invoked whenever the producer has decoded a new
// frame. It is called on an arbitrary goroutine (typically the
// producer's decode goroutine) and must not block; forward the signal
// and return.
type FrameListener func()

// TextureWriter is the producer-visible handle to the GPU texture the
// producer's image object is bound to. It is the only way a producer
// can affect GPU state.
//
// WriteRGBA must only be called from the render-owning thread, during
// Image.UpdateImage. Calling it from the decode goroutine is a contract
// violation, not a checked error.
type TextureWriter interface {
	// WriteRGBA replaces the texture contents with tightly-packed
	// RGBA8 pixel data of the given dimensions.
	WriteRGBA(data []byte, width, height int) error

	// Size returns the texture dimensions in pixels.
	Size() (width, height int)
}

// Image is the opaque producer-side image object, bound to one GPU
// texture for its whole lifetime. The caller owns it exclusively and
// must call Release exactly once when done.
type Image interface {
	// SetFrameListener registers the single listener invoked on an
	// arbitrary goroutine whenever a new frame is ready. A nil listener
	// disables notification.
	SetFrameListener(fn FrameListener)

	// UpdateImage materializes the most recently decoded frame into the
	// bound GPU texture. Must be called only from the render-owning
	// thread. If no new frame arrived since the last call, the previous
	// contents are kept and no error is returned.
	UpdateImage() error

	// Transform fills dst with the current 4x4 row-major texture
	// coordinate transform (rotation, crop and letterboxing baked in by
	// the producer). Valid after the first UpdateImage; before that it
	// fills the identity.
	Transform(dst *[16]float32)

	// Release frees the producer-side resources. At most once; the
	// image is unusable afterwards.
	Release() error
}

// Provider constructs producer images bound to a texture. A Provider is
// typically configured once (stream URI, credentials) and can open one
// image per presentation surface.
type Provider interface {
	// Open binds a new image object to the given texture writer and
	// starts frame production. Fails if the producer backend cannot
	// allocate its resources.
	Open(target TextureWriter) (Image, error)
}
