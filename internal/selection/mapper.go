package selection

import "math"

// Point is a position in either displayed or native pixel space.
type Point struct {
	X float64
	Y float64
}

// Surface describes where an image is drawn and how large it really is.
// Display dimensions are in displayed pixels, native dimensions in image pixels.
type Surface struct {
	OriginX       float64
	OriginY       float64
	DisplayWidth  float64
	DisplayHeight float64
	NativeWidth   int
	NativeHeight  int
}

// Valid reports whether the surface can map coordinates at all.
func (s Surface) Valid() bool {
	return s.DisplayWidth > 0 && s.DisplayHeight > 0 && s.NativeWidth > 0 && s.NativeHeight > 0
}

// Contains reports whether a displayed position falls on the surface.
// The far edges are inclusive so the opposite corner still maps.
func (s Surface) Contains(x, y float64) bool {
	dx := x - s.OriginX
	dy := y - s.OriginY
	return dx >= 0 && dy >= 0 && dx <= s.DisplayWidth && dy <= s.DisplayHeight
}

// ToNative scales a displayed position into native image coordinates, each axis
// independently. Callers must not cache the result across resizes.
func (s Surface) ToNative(x, y float64) (Point, bool) {
	if !s.Valid() {
		return Point{}, false
	}
	scaleX := float64(s.NativeWidth) / s.DisplayWidth
	scaleY := float64(s.NativeHeight) / s.DisplayHeight
	return Point{
		X: (x - s.OriginX) * scaleX,
		Y: (y - s.OriginY) * scaleY,
	}, true
}

// ToDisplay is the inverse of ToNative.
func (s Surface) ToDisplay(p Point) (float64, float64, bool) {
	if !s.Valid() {
		return 0, 0, false
	}
	scaleX := s.DisplayWidth / float64(s.NativeWidth)
	scaleY := s.DisplayHeight / float64(s.NativeHeight)
	return s.OriginX + p.X*scaleX, s.OriginY + p.Y*scaleY, true
}

// Covers reports whether a displayed position lands on a drawn pixel. Unlike
// Contains the far edges are excluded, so a hit always maps inside the image.
func (s Surface) Covers(x, y float64) bool {
	dx := x - s.OriginX
	dy := y - s.OriginY
	return dx >= 0 && dy >= 0 && dx < s.DisplayWidth && dy < s.DisplayHeight
}

// Clamp keeps a native point within [0, NativeWidth-1] x [0, NativeHeight-1].
func (s Surface) Clamp(p Point) Point {
	return Point{
		X: math.Min(math.Max(p.X, 0), float64(max(s.NativeWidth-1, 0))),
		Y: math.Min(math.Max(p.Y, 0), float64(max(s.NativeHeight-1, 0))),
	}
}
