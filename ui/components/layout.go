package components

import (
	"math"

	"github.com/Rorical/RoriDecor/internal/selection"
)

// Fixed rows around the body: header, input box and status line.
const (
	headerRows = 1
	inputRows  = 3
	statusRows = 1
)

// Rect is a block of terminal cells.
type Rect struct {
	Col  int
	Row  int
	Cols int
	Rows int
}

func (r Rect) Empty() bool {
	return r.Cols <= 0 || r.Rows <= 0
}

func bodyRows(height int) int {
	return max(height-headerRows-inputRows-statusRows, 0)
}

func canvasWidth(width int) int {
	return width * 3 / 5
}

// CanvasArea is the inside of the canvas box for a terminal of the given size.
func CanvasArea(width, height int) Rect {
	return Rect{
		Col:  1,
		Row:  headerRows + 1,
		Cols: max(canvasWidth(width)-2, 0),
		Rows: max(bodyRows(height)-2, 0),
	}
}

// FitImage places an image of w x h pixels inside area, keeping its aspect
// ratio. Each cell holds two vertical pixels, so display rows are doubled.
func FitImage(area Rect, w, h int) selection.Surface {
	if area.Empty() || w <= 0 || h <= 0 {
		return selection.Surface{}
	}
	availW := float64(area.Cols)
	availH := float64(area.Rows * 2)
	scale := math.Min(availW/float64(w), availH/float64(h))
	dw := math.Max(math.Floor(float64(w)*scale), 1)
	dh := math.Max(math.Floor(float64(h)*scale), 1)

	offX := math.Floor((availW - dw) / 2)
	offY := float64(int((availH-dh)/2) &^ 1)
	return selection.Surface{
		OriginX:       float64(area.Col) + offX,
		OriginY:       float64(area.Row*2) + offY,
		DisplayWidth:  dw,
		DisplayHeight: dh,
		NativeWidth:   w,
		NativeHeight:  h,
	}
}

// PointerPosition converts a mouse cell into display pixel coordinates.
func PointerPosition(col, row int) (float64, float64) {
	return float64(col), float64(row * 2)
}
