package videosurface

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/videosurface/internal/gpu"
)

// DirtyFlags marks which parts of a VideoNode's GPU state need
// re-uploading before the next draw. Geometry and material are
// independent: a bounds change never forces a uniform upload and a
// transform change never rebuilds the quad.
type DirtyFlags uint32

const (
	// DirtyGeometry marks the quad vertices as stale.
	DirtyGeometry DirtyFlags = 1 << iota
	// DirtyMaterial marks the shader uniforms as stale.
	DirtyMaterial
)

// VideoNode is the draw-graph node presenting the external texture. It
// owns the video render pipeline (quad geometry, uniforms, bind group)
// and holds a non-owning reference to the ImageSource; the Surface
// releases the source after the node is torn down.
//
// All methods must run on the render-owning thread.
type VideoNode struct {
	source   *ImageSource
	pipeline *gpu.VideoPipeline

	rect       Rect
	projection Mat4
	transform  Mat4
	opacity    float32

	dirty     DirtyFlags
	destroyed bool
}

// newVideoNode builds the node's GPU pipeline against the source's
// texture, targeting the host's surface format. The transform starts as
// identity and the node starts fully dirty so the first Flush uploads
// everything.
func newVideoNode(device hal.Device, queue hal.Queue, source *ImageSource, format gputypes.TextureFormat, label string) (*VideoNode, error) {
	pipeline, err := gpu.NewVideoPipeline(device, queue, source.tex, format, label)
	if err != nil {
		return nil, fmt.Errorf("build video node: %w", err)
	}
	return &VideoNode{
		source:     source,
		pipeline:   pipeline,
		projection: IdentityMat4(),
		transform:  IdentityMat4(),
		opacity:    1.0,
		dirty:      DirtyGeometry | DirtyMaterial,
	}, nil
}

// Preprocess is the pre-draw hook. It pulls the latest producer frame
// into the texture and refreshes the sampling transform, so the frame
// shown is always the newest one available at draw time, not at
// schedule time. The transform is value-compared: an unchanged matrix
// marks nothing dirty and the uniform upload is skipped. The texture
// bind itself is re-recorded on every draw regardless.
func (n *VideoNode) Preprocess(fc *gpu.FrameContext) error {
	if n.destroyed {
		return ErrSurfaceDestroyed
	}
	m, err := n.source.PullLatestFrame()
	if err != nil {
		return err
	}
	if m != n.transform {
		n.transform = m
		n.dirty |= DirtyMaterial
		if fc != nil {
			slogger().Debug("node: source transform changed", "frame", fc.Seq)
		}
	}
	return nil
}

// SetRect places the quad at the given bounds. A changed rect marks the
// geometry dirty; an equal rect is a no-op.
func (n *VideoNode) SetRect(rect Rect) {
	if rect == n.rect {
		return
	}
	n.rect = rect
	n.dirty |= DirtyGeometry
}

// SetViewport sets the projection to map the given viewport (y-down
// pixel coordinates) to clip space. Marks the material dirty on change.
func (n *VideoNode) SetViewport(width, height float32) {
	proj := OrthoMat4(0, width, 0, height)
	if proj == n.projection {
		return
	}
	n.projection = proj
	n.dirty |= DirtyMaterial
}

// SetOpacity sets the node opacity in [0,1]. Marks the material dirty
// on change.
func (n *VideoNode) SetOpacity(opacity float32) {
	if opacity == n.opacity {
		return
	}
	n.opacity = opacity
	n.dirty |= DirtyMaterial
}

// MarkDirty ORs the given flags into the node's dirty state.
func (n *VideoNode) MarkDirty(flags DirtyFlags) {
	n.dirty |= flags
}

// Dirty returns the pending dirty flags.
func (n *VideoNode) Dirty() DirtyFlags { return n.dirty }

// Transform returns the current sampling transform.
func (n *VideoNode) Transform() Mat4 { return n.transform }

// Rect returns the current quad bounds.
func (n *VideoNode) Rect() Rect { return n.rect }

// Flush uploads whatever is dirty to the GPU and clears the flags.
// Geometry and material upload independently.
func (n *VideoNode) Flush() error {
	if n.destroyed {
		return ErrSurfaceDestroyed
	}
	if n.dirty&DirtyGeometry != 0 {
		if err := n.pipeline.UpdateGeometry(n.rect.MinX, n.rect.MinY, n.rect.MaxX, n.rect.MaxY); err != nil {
			return err
		}
	}
	if n.dirty&DirtyMaterial != 0 {
		if err := n.pipeline.UpdateUniforms([16]float32(n.projection), [16]float32(n.transform), n.opacity); err != nil {
			return err
		}
	}
	n.dirty = 0
	return nil
}

// RecordDraw records the quad draw into the render pass. The texture
// bind group is set on every call.
func (n *VideoNode) RecordDraw(rp hal.RenderPassEncoder) error {
	if n.destroyed {
		return ErrSurfaceDestroyed
	}
	return n.pipeline.RecordDraw(rp)
}

// destroy tears down the node's pipeline. Called by the owning Surface;
// idempotent.
func (n *VideoNode) destroy() {
	if n.destroyed {
		return
	}
	n.destroyed = true
	_ = n.pipeline.Destroy()
}
