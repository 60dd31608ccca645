package update

import (
	"context"
	"image"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Rorical/RoriDecor/internal/eventbus"
	"github.com/Rorical/RoriDecor/internal/imagecache"
	"github.com/Rorical/RoriDecor/internal/models"
)

// Sender delivers UI events to the core.
type Sender interface {
	SendToCore(event eventbus.UIEvent) error
}

// ImageLoader decodes canvas images.
type ImageLoader interface {
	Load(ctx context.Context, src imagecache.Source) (image.Image, error)
}

// Deps are the collaborators the handlers talk to.
type Deps struct {
	Sender Sender
	Images ImageLoader
}

// CoreEventMsg wraps core events for Bubble Tea
type CoreEventMsg struct {
	Event eventbus.CoreEvent
}

type ImageSlot int

const (
	SlotImage ImageSlot = iota
	SlotMask
	SlotOriginal
)

// ImageLoadedMsg carries a decoded image back to the model. Key is the source
// key the load was started for.
type ImageLoadedMsg struct {
	Slot  ImageSlot
	Key   string
	Image image.Image
	Err   error
}

func HandleUpdate(appModel *models.AppModel, msg tea.Msg, deps Deps) tea.Cmd {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return HandleKeyMsg(appModel, msg, deps)
	case tea.MouseMsg:
		return HandleMouseMsg(appModel, msg, deps)
	case tea.WindowSizeMsg:
		HandleWindowSizeMsg(appModel, msg)
		return nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		appModel.Spinner, cmd = appModel.Spinner.Update(msg)
		return cmd
	case CoreEventMsg:
		return HandleCoreEvent(appModel, msg, deps)
	case ImageLoadedMsg:
		HandleImageLoaded(appModel, msg)
		return nil
	}

	var cmd tea.Cmd
	appModel.Input, cmd = appModel.Input.Update(msg)
	return cmd
}

func HandleWindowSizeMsg(appModel *models.AppModel, sizeMsg tea.WindowSizeMsg) {
	appModel.Width = sizeMsg.Width
	appModel.Height = sizeMsg.Height
	appModel.Input.Width = max(sizeMsg.Width-8, 10)
	// Native coordinates depend on the layout; a drag cannot survive a resize.
	appModel.Gesture.Cancel()
	refreshSurface(appModel)
}
