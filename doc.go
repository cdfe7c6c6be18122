// Package videosurface presents frames from an asynchronous video or
// camera producer inside a retained-mode draw graph backed by WebGPU.
//
// Frames are decoded by a producer on its own goroutine and written into
// an externally-managed GPU texture. The draw graph renders on a single
// render-owning thread at its own cadence. videosurface is the bridge
// between the two: it marshals the producer's "new frame" signal onto the
// render thread, coalesces bursts into a single pending update, and
// defers the texture update to a pre-draw hook so the newest available
// frame is always the one drawn.
//
// The four moving parts, from producer to draw:
//
//   - producer.Image: the opaque producer-side handle bound to the
//     GPU texture (see the producer package).
//   - [Bridge]: the cross-thread signal-coalescing relay.
//   - [VideoNode]: the draw-graph node; its Preprocess hook pulls the
//     latest frame and transform immediately before drawing.
//   - [Surface]: the addressable item; owns the GPU texture across its
//     lifetime and lazily builds the source and node on first use.
//
// All GPU calls and frame pulls happen on the render loop goroutine (see
// the renderloop package). The only cross-thread entry point is
// [Bridge.NotifyFrameAvailable], which is safe from any goroutine and
// never blocks the producer.
//
// Example:
//
//	loop := renderloop.New(renderloop.DefaultOptions())
//	bridge := videosurface.NewBridge(loop.Post)
//	surf, err := videosurface.NewSurface(device, bridge, provider)
//
//	// On the render thread, once per frame:
//	node, err := surf.UpdateNode(node, bounds)
package videosurface
