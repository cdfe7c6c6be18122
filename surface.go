package videosurface

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/videosurface/internal/gpu"
	"github.com/gogpu/videosurface/producer"
)

// Surface presents an asynchronously-produced video stream as one quad
// in the draw graph. It owns the external GPU texture for its whole
// lifetime, builds its VideoNode lazily on the first UpdateNode call,
// and relays producer frame signals into render-thread updates through
// a Bridge.
//
// All Surface methods must run on the render-owning thread; the
// producer only ever touches the bridge and the texture writer it was
// opened with.
type Surface struct {
	device hal.Device
	queue  hal.Queue
	format gputypes.TextureFormat

	bridge   *Bridge
	provider producer.Provider
	opts     surfaceOptions

	id         SurfaceID
	registered bool

	tex    *gpu.ExternalTexture
	source *ImageSource
	node   *VideoNode

	// onUpdate schedules a frame, e.g. renderloop.(*Loop).RequestFrame.
	onUpdate func()

	frameSeq  uint64
	destroyed bool
}

// NewSurface creates an unbuilt surface. No GPU resources are
// allocated and the producer is not opened until the first UpdateNode
// call on the render thread.
func NewSurface(dev DeviceHandle, bridge *Bridge, provider producer.Provider, opts ...SurfaceOption) (*Surface, error) {
	if dev == nil {
		return nil, ErrNilDevice
	}
	if bridge == nil {
		return nil, ErrNilBridge
	}
	if provider == nil {
		return nil, ErrNilProvider
	}

	device, queue, err := gpu.ExtractHAL(dev)
	if err != nil {
		return nil, fmt.Errorf("new surface: %w", err)
	}

	o := defaultSurfaceOptions()
	for _, opt := range opts {
		opt(&o)
	}

	return &Surface{
		device:   device,
		queue:    queue,
		format:   dev.SurfaceFormat(),
		bridge:   bridge,
		provider: provider,
		opts:     o,
	}, nil
}

// SetUpdateCallback installs the frame scheduler invoked whenever a
// producer frame needs showing, typically renderloop.(*Loop).RequestFrame.
func (s *Surface) SetUpdateCallback(fn func()) {
	s.onUpdate = fn
}

// UpdateNode returns the surface's draw node, building texture,
// producer binding and node on the first call and reusing them
// thereafter. The quad geometry is recomputed from bounds on every
// call. A build failure leaves the surface unbuilt with no GPU
// resources; the error is final, there is no retry with a blank frame.
func (s *Surface) UpdateNode(existing *VideoNode, bounds Rect) (*VideoNode, error) {
	if s.destroyed {
		return nil, ErrSurfaceDestroyed
	}

	if s.node == nil {
		if err := s.build(); err != nil {
			return nil, err
		}
	} else if existing != nil && existing != s.node {
		return nil, fmt.Errorf("videosurface: node does not belong to this surface")
	}

	s.node.SetRect(bounds)
	return s.node, nil
}

// build allocates the texture, opens the producer and constructs the
// node, unwinding everything on partial failure.
func (s *Surface) build() error {
	tex, err := gpu.CreateExternalTexture(s.device, s.queue, s.opts.frameWidth, s.opts.frameHeight, s.opts.label)
	if err != nil {
		return fmt.Errorf("videosurface: %w", err)
	}

	source, err := newImageSource(s.provider, tex)
	if err != nil {
		_ = tex.Destroy()
		return err
	}

	node, err := newVideoNode(s.device, s.queue, source, s.format, s.opts.label)
	if err != nil {
		_ = source.Release()
		_ = tex.Destroy()
		return err
	}

	s.tex = tex
	s.source = source
	s.node = node

	s.id = s.bridge.Register(s.requestUpdate)
	s.registered = true
	source.SetFrameListener(func() {
		s.bridge.NotifyFrameAvailable(s.id)
	})

	slogger().Info("surface built",
		"id", s.id, "label", s.opts.label,
		"frame_size", fmt.Sprintf("%dx%d", s.opts.frameWidth, s.opts.frameHeight))
	return nil
}

// requestUpdate runs on the render thread when the bridge delivers a
// coalesced frame signal. It marks the node material-dirty and
// schedules a frame. Signals arriving after Destroy find the surface
// torn down and do nothing.
func (s *Surface) requestUpdate() {
	if s.destroyed || s.node == nil {
		return
	}
	s.node.MarkDirty(DirtyMaterial)
	if s.onUpdate != nil {
		s.onUpdate()
	}
}

// Preprocess runs the node's pre-draw hook, pulling the latest
// producer frame. A no-op for an unbuilt surface.
func (s *Surface) Preprocess() error {
	if s.destroyed {
		return ErrSurfaceDestroyed
	}
	if s.node == nil {
		return nil
	}
	s.frameSeq++
	return s.node.Preprocess(&gpu.FrameContext{Seq: s.frameSeq})
}

// Node returns the built node, or nil before the first UpdateNode.
func (s *Surface) Node() *VideoNode { return s.node }

// Built reports whether the surface has a live node.
func (s *Surface) Built() bool { return s.node != nil }

// ID returns the surface's bridge liveness token. The zero SurfaceID
// is returned before the first build.
func (s *Surface) ID() SurfaceID { return s.id }

// Destroy tears the surface down: the bridge registration goes first so
// new producer signals drop, then the node's pipeline, then the
// producer handle, and the texture last. Exactly once; a second call
// returns ErrSurfaceDestroyed. Destroying a never-built surface is
// valid and releases nothing.
func (s *Surface) Destroy() error {
	if s.destroyed {
		return ErrSurfaceDestroyed
	}
	s.destroyed = true

	if s.registered {
		s.bridge.Unregister(s.id)
		s.registered = false
	}
	if s.node != nil {
		s.node.destroy()
		s.node = nil
	}
	if s.source != nil {
		_ = s.source.Release()
		s.source = nil
	}
	if s.tex != nil {
		_ = s.tex.Destroy()
		s.tex = nil
	}

	slogger().Info("surface destroyed", "id", s.id, "label", s.opts.label)
	return nil
}
