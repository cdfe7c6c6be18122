package videosurface

import "golang.org/x/image/math/f32"

// Mat4 is a 4x4 float32 matrix in row-major order. It carries the
// per-frame texture-coordinate transform supplied by the producer
// (rotation, crop and letterboxing baked in) and the projection used by
// the video shader.
//
// Mat4 is an array type and therefore comparable with ==. The material
// state of a [VideoNode] relies on this: an unchanged transform compares
// equal and the shader uniform upload is skipped.
type Mat4 = f32.Mat4

// IdentityMat4 returns the 4x4 identity matrix.
func IdentityMat4() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// OrthoMat4 returns a row-major orthographic projection mapping the
// rectangle (left,top)-(right,bottom) to clip space, with y increasing
// downward on the input side (the draw graph's convention).
func OrthoMat4(left, right, top, bottom float32) Mat4 {
	rl := right - left
	bt := bottom - top
	if rl == 0 {
		rl = 1
	}
	if bt == 0 {
		bt = 1
	}
	return Mat4{
		2 / rl, 0, 0, -(right + left) / rl,
		0, -2 / bt, 0, (bottom + top) / bt,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}
