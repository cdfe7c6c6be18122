package videosurface

import (
	"github.com/gogpu/gpucontext"
)

// DeviceHandle provides GPU device access from the host application.
//
// The host (e.g. a gogpu.App) implements DeviceHandle and passes it to
// NewSurface, so the video surface renders with the application's
// shared GPU device instead of creating its own. To reach the HAL
// layer the provider must also expose HalDevice() any and
// HalQueue() any returning wgpu/hal types, which gogpu providers do.
//
// DeviceHandle is an alias for gpucontext.DeviceProvider, providing a
// videosurface-specific name for the interface while maintaining full
// compatibility with the gpucontext ecosystem.
type DeviceHandle = gpucontext.DeviceProvider
