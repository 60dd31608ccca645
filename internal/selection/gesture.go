package selection

import (
	"fmt"
	"math"
)

// ClickThreshold is the per-axis displacement, in native pixels, below which a
// press/release pair counts as a click rather than a drag.
const ClickThreshold = 5.0

type Kind int

const (
	KindPoint Kind = iota
	KindBox
)

func (k Kind) String() string {
	if k == KindBox {
		return "box"
	}
	return "point"
}

// Region is a selection in native pixel coordinates. For KindPoint only X and Y
// are meaningful; for KindBox only the min/max fields are.
type Region struct {
	Kind Kind
	X    int
	Y    int
	XMin int
	YMin int
	XMax int
	YMax int
}

func (r Region) String() string {
	if r.Kind == KindBox {
		return fmt.Sprintf("box[%d,%d,%d,%d]", r.XMin, r.YMin, r.XMax, r.YMax)
	}
	return fmt.Sprintf("point(%d,%d)", r.X, r.Y)
}

// Classify turns a press and release into a Region. A release within
// ClickThreshold on both axes yields a point at the press position.
func Classify(press, release Point) Region {
	dx := math.Abs(release.X - press.X)
	dy := math.Abs(release.Y - press.Y)
	if dx < ClickThreshold && dy < ClickThreshold {
		return Region{
			Kind: KindPoint,
			X:    int(math.Round(press.X)),
			Y:    int(math.Round(press.Y)),
		}
	}
	return Region{
		Kind: KindBox,
		XMin: int(math.Round(math.Min(press.X, release.X))),
		YMin: int(math.Round(math.Min(press.Y, release.Y))),
		XMax: int(math.Round(math.Max(press.X, release.X))),
		YMax: int(math.Round(math.Max(press.Y, release.Y))),
	}
}

// Tracker follows one press/release gesture at a time.
type Tracker struct {
	pressed bool
	start   Point
	current Point
}

func (t *Tracker) Press(p Point) {
	t.pressed = true
	t.start = p
	t.current = p
}

// Move records the pointer position while dragging, for previews.
func (t *Tracker) Move(p Point) {
	if t.pressed {
		t.current = p
	}
}

// Release completes the gesture. ok is false when there was no press.
func (t *Tracker) Release(p Point) (Region, bool) {
	if !t.pressed {
		return Region{}, false
	}
	t.pressed = false
	return Classify(t.start, p), true
}

// Cancel abandons the gesture without emitting a region.
func (t *Tracker) Cancel() {
	t.pressed = false
}

func (t *Tracker) Active() bool {
	return t.pressed
}

// Span returns the press position and the latest pointer position.
func (t *Tracker) Span() (Point, Point) {
	return t.start, t.current
}
