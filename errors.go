package videosurface

import "errors"

// Package errors.
var (
	// ErrProducerUnavailable is returned when the producer-side image
	// object cannot be constructed. Fatal to the surface instance: the
	// surface stays unbuilt and must not be drawn.
	ErrProducerUnavailable = errors.New("videosurface: producer unavailable")

	// ErrSourceReleased is returned when pulling a frame from a source
	// whose producer handle has already been released.
	ErrSourceReleased = errors.New("videosurface: image source has been released")

	// ErrSurfaceDestroyed is returned when building a node on a surface
	// after Destroy.
	ErrSurfaceDestroyed = errors.New("videosurface: surface has been destroyed")

	// ErrNilProvider is returned by NewSurface when no producer provider
	// is given.
	ErrNilProvider = errors.New("videosurface: producer provider is nil")

	// ErrNilDevice is returned by NewSurface when no GPU device handle
	// is given.
	ErrNilDevice = errors.New("videosurface: device handle is nil")

	// ErrNilBridge is returned by NewSurface when no frame-ready bridge
	// is given.
	ErrNilBridge = errors.New("videosurface: bridge is nil")
)
