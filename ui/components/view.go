package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/Rorical/RoriDecor/internal/models"
	"github.com/Rorical/RoriDecor/internal/selection"
	"github.com/Rorical/RoriDecor/ui/styles"
)

// RenderView composes the whole screen from the UI model.
func RenderView(m *models.AppModel, canvas *Canvas) string {
	if m.Width <= 0 || m.Height <= 0 {
		return "Loading..."
	}

	area := CanvasArea(m.Width, m.Height)
	body := bodyRows(m.Height)
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.Accent)

	in := CanvasInput{
		Image:       m.DisplayedImage(),
		ImageKey:    m.ImageKey,
		Surface:     m.Surface,
		Area:        area,
		Drag:        dragSpan(m),
		Placeholder: canvasPlaceholder(m.Session),
	}
	if m.ShowOriginal {
		in.ImageKey = m.OriginalKey
	} else {
		in.Mask = m.Mask
		in.MaskKey = m.MaskKey
	}
	left := box.Width(area.Cols).Height(area.Rows).Render(canvas.View(in))

	panelW := max(m.Width-canvasWidth(m.Width)-2, 1)
	panelH := max(body-2, 1)
	panel := RenderPanel(PanelInput{
		Session:      m.Session,
		EditKind:     m.EditKind,
		EditColor:    m.EditColor,
		ShowOriginal: m.ShowOriginal,
		Comparison:   m.ComparisonEnabled,
	}, panelW, panelH)
	right := box.Width(panelW).Height(panelH).MaxHeight(body).Render(panel)

	return lipgloss.JoinVertical(lipgloss.Left,
		RenderHeader(m.Session, m.Width),
		lipgloss.JoinHorizontal(lipgloss.Top, left, right),
		RenderInput(m.Input, m.Width),
		RenderStatus(m.Session, m.Notice, m.Spinner, m.Width),
	)
}

// dragSpan converts the active gesture back into display coordinates.
func dragSpan(m *models.AppModel) *[2]selection.Point {
	if !m.Gesture.Active() {
		return nil
	}
	start, current := m.Gesture.Span()
	x0, y0, ok := m.Surface.ToDisplay(start)
	if !ok {
		return nil
	}
	x1, y1, _ := m.Surface.ToDisplay(current)
	return &[2]selection.Point{{X: x0, Y: y0}, {X: x1, Y: y1}}
}

func canvasPlaceholder(s models.SessionSnapshot) string {
	if s.HasImage() {
		return "Loading image..."
	}
	return "No image. Type a path and press enter to upload."
}
