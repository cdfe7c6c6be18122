package videosurface

import (
	"math"
	"testing"
)

// apply multiplies the row-major matrix with the point (x, y, 0, 1) and
// returns the transformed x and y.
func apply(m Mat4, x, y float32) (float32, float32) {
	tx := m[0]*x + m[1]*y + m[3]
	ty := m[4]*x + m[5]*y + m[7]
	return tx, ty
}

func TestIdentityMat4(t *testing.T) {
	id := IdentityMat4()
	x, y := apply(id, 3, -7)
	if x != 3 || y != -7 {
		t.Errorf("identity mapped (3,-7) to (%v,%v)", x, y)
	}
	// Comparability carries the no-op optimization.
	if id != IdentityMat4() {
		t.Error("identity matrices compare unequal")
	}
}

func TestOrthoMat4MapsCorners(t *testing.T) {
	proj := OrthoMat4(0, 800, 0, 600)

	tests := []struct {
		x, y   float32
		cx, cy float32
	}{
		{0, 0, -1, 1},     // top-left to upper-left clip
		{800, 0, 1, 1},    // top-right
		{0, 600, -1, -1},  // bottom-left to lower-left clip
		{800, 600, 1, -1}, // bottom-right
		{400, 300, 0, 0},  // center
	}
	for _, tt := range tests {
		cx, cy := apply(proj, tt.x, tt.y)
		if math.Abs(float64(cx-tt.cx)) > 1e-6 || math.Abs(float64(cy-tt.cy)) > 1e-6 {
			t.Errorf("ortho mapped (%v,%v) to (%v,%v), want (%v,%v)",
				tt.x, tt.y, cx, cy, tt.cx, tt.cy)
		}
	}
}

func TestOrthoMat4DegenerateViewport(t *testing.T) {
	// Zero-sized viewports must not produce NaN or Inf entries.
	for _, proj := range []Mat4{OrthoMat4(0, 0, 0, 600), OrthoMat4(0, 800, 0, 0)} {
		for i, v := range proj {
			if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
				t.Errorf("entry %d = %v for degenerate viewport", i, v)
			}
		}
	}
}

func TestRect(t *testing.T) {
	r := NewRect(10, 20, 300, 200)
	if r.Width() != 300 || r.Height() != 200 {
		t.Errorf("size = %vx%v, want 300x200", r.Width(), r.Height())
	}
	if r.MinY != 20 || r.MaxY != 220 {
		t.Errorf("y range = [%v,%v], want [20,220]", r.MinY, r.MaxY)
	}
	if r.IsEmpty() {
		t.Error("IsEmpty() = true for non-empty rect")
	}
	if !NewRect(0, 0, 0, 10).IsEmpty() {
		t.Error("IsEmpty() = false for zero-width rect")
	}
}
