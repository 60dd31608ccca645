package components

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/image/draw"

	"github.com/Rorical/RoriDecor/internal/selection"
	"github.com/Rorical/RoriDecor/ui/styles"
)

const halfBlock = "▀"

// CanvasInput is everything the canvas draws. Keys identify the images so the
// rendered output can be reused between frames.
type CanvasInput struct {
	Image    image.Image
	ImageKey string
	Mask     image.Image
	MaskKey  string
	Surface  selection.Surface
	Area     Rect
	// Drag is the in-progress box in display coordinates, if any.
	Drag *[2]selection.Point
	// Placeholder is shown when there is no image.
	Placeholder string
}

func (in CanvasInput) key() string {
	drag := ""
	if in.Drag != nil {
		drag = fmt.Sprint(*in.Drag)
	}
	return fmt.Sprintf("%s|%s|%v|%v|%s|%s", in.ImageKey, in.MaskKey, in.Surface, in.Area, drag, in.Placeholder)
}

// Canvas memoizes the last render. The zero value is ready to use.
type Canvas struct {
	lastKey string
	out     string
}

func (c *Canvas) View(in CanvasInput) string {
	k := in.key()
	if c.out != "" && k == c.lastKey {
		return c.out
	}
	c.lastKey = k
	c.out = RenderCanvas(in)
	return c.out
}

// RenderCanvas draws the image with half blocks, tinting masked pixels and
// outlining the drag box. The result is exactly Area.Rows lines of Area.Cols.
func RenderCanvas(in CanvasInput) string {
	if in.Area.Empty() {
		return ""
	}
	if in.Image == nil || !in.Surface.Valid() {
		return placeholder(in.Area, in.Placeholder)
	}

	dw := int(in.Surface.DisplayWidth)
	dh := int(in.Surface.DisplayHeight)
	offX := int(in.Surface.OriginX) - in.Area.Col
	offY := int(in.Surface.OriginY) - in.Area.Row*2

	pixels := image.NewRGBA(image.Rect(0, 0, dw, dh))
	draw.ApproxBiLinear.Scale(pixels, pixels.Bounds(), in.Image, in.Image.Bounds(), draw.Src, nil)

	var mask *image.RGBA
	if in.Mask != nil {
		mask = image.NewRGBA(image.Rect(0, 0, dw, dh))
		draw.NearestNeighbor.Scale(mask, mask.Bounds(), in.Mask, in.Mask.Bounds(), draw.Src, nil)
	}

	box := dragBox(in, offX, offY)

	pixel := func(x, y int) (color.RGBA, bool) {
		sx, sy := x-offX, y-offY
		if sx < 0 || sy < 0 || sx >= dw || sy >= dh {
			return color.RGBA{}, false
		}
		c := pixels.RGBAAt(sx, sy)
		if mask != nil && masked(mask.RGBAAt(sx, sy)) {
			c = blend(c, styles.MaskTint)
		}
		if box.onEdge(sx, sy) {
			c = styles.SelectionEdge
		}
		return c, true
	}

	var b strings.Builder
	for row := 0; row < in.Area.Rows; row++ {
		if row > 0 {
			b.WriteByte('\n')
		}
		for col := 0; col < in.Area.Cols; col++ {
			top, okTop := pixel(col, row*2)
			bottom, okBottom := pixel(col, row*2+1)
			b.WriteString(cell(top, okTop, bottom, okBottom))
		}
	}
	return b.String()
}

func cell(top color.RGBA, okTop bool, bottom color.RGBA, okBottom bool) string {
	if !okTop && !okBottom {
		return " "
	}
	style := lipgloss.NewStyle()
	if okTop {
		style = style.Foreground(hex(top))
	}
	if okBottom {
		style = style.Background(hex(bottom))
	}
	return style.Render(halfBlock)
}

func hex(c color.RGBA) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B))
}

// masked treats any bright mask pixel as selected.
func masked(c color.RGBA) bool {
	return c.A > 0 && (int(c.R)+int(c.G)+int(c.B)) > 3*127
}

func blend(a, b color.RGBA) color.RGBA {
	mix := func(x, y uint8) uint8 { return uint8((int(x) + int(y)) / 2) }
	return color.RGBA{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: 255}
}

type rect struct {
	x0, y0, x1, y1 int
	ok             bool
}

func (r rect) onEdge(x, y int) bool {
	if !r.ok || x < r.x0 || x > r.x1 || y < r.y0 || y > r.y1 {
		return false
	}
	return x == r.x0 || x == r.x1 || y == r.y0 || y == r.y1
}

// dragBox converts the drag span into surface pixel coordinates.
func dragBox(in CanvasInput, offX, offY int) rect {
	if in.Drag == nil {
		return rect{}
	}
	a, b := in.Drag[0], in.Drag[1]
	toLocal := func(v, origin float64) int { return int(math.Round(v - origin)) }
	originX := float64(in.Area.Col + offX)
	originY := float64(in.Area.Row*2 + offY)
	return rect{
		x0: toLocal(math.Min(a.X, b.X), originX),
		y0: toLocal(math.Min(a.Y, b.Y), originY),
		x1: toLocal(math.Max(a.X, b.X), originX),
		y1: toLocal(math.Max(a.Y, b.Y), originY),
		ok: true,
	}
}

func placeholder(area Rect, text string) string {
	return lipgloss.Place(area.Cols, area.Rows, lipgloss.Center, lipgloss.Center,
		styles.MutedStyle().Render(text))
}
