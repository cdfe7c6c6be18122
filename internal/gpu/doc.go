// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package gpu holds the WebGPU plumbing behind videosurface: the
// external-content texture a producer writes into, and the render
// pipeline that samples it through the per-frame coordinate transform.
//
// Everything in this package must run on the render-owning thread.
// Device and queue handles come from the host application; the package
// never creates its own instance, adapter or device.
package gpu
