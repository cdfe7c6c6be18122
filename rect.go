package videosurface

// Rect is an axis-aligned rectangle in the draw graph's coordinate
// convention: y increases downward, so MinY is the geometric top edge
// and MaxY the bottom edge.
type Rect struct {
	MinX, MinY float32
	MaxX, MaxY float32
}

// NewRect returns the rectangle with top-left corner (x, y) and the
// given dimensions.
func NewRect(x, y, width, height float32) Rect {
	return Rect{MinX: x, MinY: y, MaxX: x + width, MaxY: y + height}
}

// Width returns the rectangle width.
func (r Rect) Width() float32 { return r.MaxX - r.MinX }

// Height returns the rectangle height.
func (r Rect) Height() float32 { return r.MaxY - r.MinY }

// IsEmpty reports whether the rectangle has zero or negative area.
func (r Rect) IsEmpty() bool {
	return r.MaxX <= r.MinX || r.MaxY <= r.MinY
}
