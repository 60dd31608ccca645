package update

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Rorical/RoriDecor/internal/eventbus"
	"github.com/Rorical/RoriDecor/internal/models"
	"github.com/Rorical/RoriDecor/internal/selection"
	"github.com/Rorical/RoriDecor/ui/components"
)

// HandleMouseMsg turns press/drag/release on the canvas into a selection.
// Positions are mapped to native pixels against the current layout on every
// event and clamped to the image.
func HandleMouseMsg(appModel *models.AppModel, mouseMsg tea.MouseMsg, deps Deps) tea.Cmd {
	x, y := components.PointerPosition(mouseMsg.X, mouseMsg.Y)
	surface := appModel.Surface
	toNative := func() (selection.Point, bool) {
		p, ok := surface.ToNative(x, y)
		return surface.Clamp(p), ok
	}
	inside := surface.Covers(x, y)

	switch mouseMsg.Action {
	case tea.MouseActionPress:
		if mouseMsg.Button != tea.MouseButtonLeft || !inside || !canSelect(appModel) {
			return nil
		}
		p, ok := toNative()
		if !ok {
			return nil
		}
		appModel.Gesture.Press(p)
	case tea.MouseActionMotion:
		if !appModel.Gesture.Active() {
			return nil
		}
		if !inside {
			appModel.Gesture.Cancel()
			return nil
		}
		if p, ok := toNative(); ok {
			appModel.Gesture.Move(p)
		}
	case tea.MouseActionRelease:
		if !appModel.Gesture.Active() {
			return nil
		}
		if !inside || !canSelect(appModel) {
			appModel.Gesture.Cancel()
			return nil
		}
		p, ok := toNative()
		if !ok {
			appModel.Gesture.Cancel()
			return nil
		}
		region, ok := appModel.Gesture.Release(p)
		if !ok {
			return nil
		}
		return send(appModel, deps, eventbus.SegmentEvent{Region: region})
	}
	return nil
}

// canSelect reports whether a gesture may start or complete: edit mode, an
// edited image on screen and no operation in flight.
func canSelect(appModel *models.AppModel) bool {
	s := appModel.Session
	return s.Mode == models.ModeEdit && s.HasImage() && !s.Busy &&
		!appModel.ShowOriginal && appModel.Image != nil
}
