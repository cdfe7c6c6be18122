// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpu

// FrameContext carries per-frame bookkeeping through the pre-draw
// phase. The render loop owner creates one per rendered frame and
// passes it to every node's pre-draw hook.
type FrameContext struct {
	// Seq is the monotonically increasing frame number.
	Seq uint64
}
