package components

import (
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rorical/RoriDecor/internal/models"
	"github.com/Rorical/RoriDecor/internal/selection"
)

func solid(w, h int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestFitImageKeepsAspectAndCenters(t *testing.T) {
	area := Rect{Col: 1, Row: 2, Cols: 40, Rows: 10}

	// Wide image: width bound.
	s := FitImage(area, 400, 100)
	assert.Equal(t, 40.0, s.DisplayWidth)
	assert.Equal(t, 10.0, s.DisplayHeight)
	assert.Equal(t, 1.0, s.OriginX)
	assert.Equal(t, 8.0, s.OriginY)

	// Tall image: height bound.
	s = FitImage(area, 100, 200)
	assert.Equal(t, 20.0, s.DisplayHeight)
	assert.Equal(t, 10.0, s.DisplayWidth)
	assert.Equal(t, 1.0+15.0, s.OriginX)
	assert.Equal(t, 4.0, s.OriginY)
	assert.Equal(t, 100, s.NativeWidth)
	assert.Equal(t, 200, s.NativeHeight)
}

func TestFitImageDegenerate(t *testing.T) {
	assert.False(t, FitImage(Rect{Cols: 0, Rows: 10}, 10, 10).Valid())
	assert.False(t, FitImage(Rect{Cols: 10, Rows: 10}, 0, 10).Valid())
}

func TestFittedCornersMapToImageCorners(t *testing.T) {
	area := CanvasArea(120, 40)
	s := FitImage(area, 1024, 768)
	p, ok := s.ToNative(s.OriginX, s.OriginY)
	require.True(t, ok)
	assert.InDelta(t, 0, p.X, 1e-9)
	assert.InDelta(t, 0, p.Y, 1e-9)
	p, _ = s.ToNative(s.OriginX+s.DisplayWidth, s.OriginY+s.DisplayHeight)
	assert.InDelta(t, 1024, p.X, 1e-9)
	assert.InDelta(t, 768, p.Y, 1e-9)
}

func TestRenderCanvasFillsArea(t *testing.T) {
	area := Rect{Col: 1, Row: 2, Cols: 12, Rows: 5}
	img := solid(30, 20, color.RGBA{R: 200, A: 255})
	mask := solid(30, 20, color.White)

	out := RenderCanvas(CanvasInput{
		Image:   img,
		Mask:    mask,
		Surface: FitImage(area, 30, 20),
		Area:    area,
		Drag:    &[2]selection.Point{{X: 2, Y: 5}, {X: 8, Y: 10}},
	})
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 5)
	for _, l := range lines {
		assert.Equal(t, 12, lipgloss.Width(l))
	}
	assert.Contains(t, out, halfBlock)
}

func TestRenderCanvasPlaceholder(t *testing.T) {
	area := Rect{Cols: 30, Rows: 3}
	out := RenderCanvas(CanvasInput{Area: area, Placeholder: "No image"})
	assert.Contains(t, out, "No image")
	assert.Len(t, strings.Split(out, "\n"), 3)
}

func TestCanvasMemoizes(t *testing.T) {
	var c Canvas
	in := CanvasInput{Area: Rect{Cols: 10, Rows: 2}, Placeholder: "a"}
	first := c.View(in)
	assert.Equal(t, first, c.View(in))
	in.Placeholder = "b"
	assert.Contains(t, c.View(in), "b")
}

func TestMaskedBlendsTint(t *testing.T) {
	assert.True(t, masked(color.RGBA{R: 255, G: 255, B: 255, A: 255}))
	assert.False(t, masked(color.RGBA{A: 255}))
	assert.False(t, masked(color.RGBA{}))
}

func TestRenderTranscriptKeepsNewest(t *testing.T) {
	msgs := []models.Message{
		{Role: models.User, Content: "first"},
		{Role: models.Assistant, Content: "Here is my plan:\nsecond"},
		{Role: models.User, Content: "third"},
	}
	out := RenderTranscript(msgs, 40, 2)
	assert.Contains(t, out, "third")
	assert.NotContains(t, out, "first")
}

func TestRenderPlanTextHighlightsLinks(t *testing.T) {
	text := "Here is my plan:\nx\n\n1. ADD lamp: light\n     https://shop.example/lamp"
	out := renderPlanText(text)
	assert.Contains(t, out, "ADD")
	assert.Contains(t, out, "https://shop.example/lamp")
}

func TestRenderHeaderShowsDevice(t *testing.T) {
	out := RenderHeader(models.SessionSnapshot{Mode: models.ModeEdit, Device: "NVIDIA A10 (CUDA)"}, 100)
	assert.Contains(t, out, "Edit")
	assert.Contains(t, out, "device: NVIDIA A10 (CUDA)")
}

func TestRenderPanelCreateShowsBadge(t *testing.T) {
	snap := models.SessionSnapshot{
		Settings:       models.Settings{RoomCategory: "Kitchen", Style: "Modern", Provider: "offline", Strength: 0.55},
		InferredRoom:   "Kitchen",
		RoomConfidence: 0.92,
	}
	out := RenderPanel(PanelInput{Session: snap}, 80, 40)
	assert.Contains(t, out, "Detected: Kitchen (92%)")
	assert.Contains(t, out, "55%")
	assert.Contains(t, out, "Balanced")
}

func TestRenderPanelEditDisablesApplyWithoutMask(t *testing.T) {
	snap := models.SessionSnapshot{Mode: models.ModeEdit}
	out := RenderPanel(PanelInput{Session: snap, EditColor: "#ffffff"}, 80, 40)
	assert.Contains(t, out, "Apply: unavailable")

	snap.MaskRef = "/masks/1.png"
	out = RenderPanel(PanelInput{Session: snap, EditColor: "#ffffff"}, 80, 40)
	assert.Contains(t, out, "Apply: enter")
}
