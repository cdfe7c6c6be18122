package videosurface

import (
	"fmt"
	"sync/atomic"

	"github.com/gogpu/videosurface/internal/gpu"
	"github.com/gogpu/videosurface/producer"
)

// ImageSource owns the producer-side image handle and its binding to
// the external GPU texture. It is the only object that talks to the
// producer after Open: the surface pulls frames through it on the
// render thread, and releases it exactly once on teardown.
//
// PullLatestFrame must only be called on the render-owning thread.
type ImageSource struct {
	img producer.Image
	tex *gpu.ExternalTexture

	released atomic.Bool
}

// newImageSource opens the producer against the external texture. A
// producer that cannot be opened is fatal to the surface: the error
// wraps ErrProducerUnavailable and the caller must not draw.
func newImageSource(provider producer.Provider, tex *gpu.ExternalTexture) (*ImageSource, error) {
	img, err := provider.Open(tex)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProducerUnavailable, err)
	}
	return &ImageSource{img: img, tex: tex}, nil
}

// PullLatestFrame materializes the most recent producer frame into the
// bound texture and returns the frame's texture-coordinate transform.
// If no new frame arrived since the last pull, the texture keeps its
// previous content and the current transform is returned.
func (s *ImageSource) PullLatestFrame() (Mat4, error) {
	if s.released.Load() {
		return IdentityMat4(), ErrSourceReleased
	}
	if err := s.img.UpdateImage(); err != nil {
		return IdentityMat4(), fmt.Errorf("update image: %w", err)
	}
	var m [16]float32
	s.img.Transform(&m)
	return Mat4(m), nil
}

// SetFrameListener installs the producer-thread callback invoked after
// every published frame. Pass nil to remove the listener.
func (s *ImageSource) SetFrameListener(fn producer.FrameListener) {
	s.img.SetFrameListener(fn)
}

// Release stops the producer and severs the texture binding. The first
// call wins; subsequent calls return ErrSourceReleased. The texture
// itself is owned and destroyed by the Surface, strictly after Release.
func (s *ImageSource) Release() error {
	if s.released.Swap(true) {
		return ErrSourceReleased
	}
	if err := s.img.Release(); err != nil {
		return fmt.Errorf("release producer image: %w", err)
	}
	return nil
}

// IsReleased reports whether Release has run.
func (s *ImageSource) IsReleased() bool { return s.released.Load() }
