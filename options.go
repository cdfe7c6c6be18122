package videosurface

// SurfaceOption configures a Surface during creation.
//
// Example:
//
//	surf := videosurface.NewSurface(dev, bridge, provider,
//		videosurface.WithFrameSize(1920, 1080),
//		videosurface.WithLabel("front_camera"))
type SurfaceOption func(*surfaceOptions)

// surfaceOptions holds optional configuration for Surface creation.
type surfaceOptions struct {
	frameWidth  int
	frameHeight int
	label       string
}

// defaultSurfaceOptions returns the default surface options.
func defaultSurfaceOptions() surfaceOptions {
	return surfaceOptions{
		frameWidth:  1280,
		frameHeight: 720,
		label:       "videosurface",
	}
}

// WithFrameSize sets the pixel dimensions of the external texture the
// producer writes into. Producers are expected to scale or letterbox to
// this size; any residual cropping is expressed through the per-frame
// transform matrix. Non-positive values are ignored.
func WithFrameSize(width, height int) SurfaceOption {
	return func(o *surfaceOptions) {
		if width > 0 && height > 0 {
			o.frameWidth = width
			o.frameHeight = height
		}
	}
}

// WithLabel sets the GPU debug label prefix for the surface's texture
// and pipeline resources.
func WithLabel(label string) SurfaceOption {
	return func(o *surfaceOptions) {
		if label != "" {
			o.label = label
		}
	}
}
