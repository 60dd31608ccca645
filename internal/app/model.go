package app

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Rorical/RoriDecor/internal/dispatcher"
	"github.com/Rorical/RoriDecor/internal/eventbus"
	"github.com/Rorical/RoriDecor/internal/imagecache"
	"github.com/Rorical/RoriDecor/internal/models"
	"github.com/Rorical/RoriDecor/internal/update"
	"github.com/Rorical/RoriDecor/ui/components"
)

// AppModel is the Bubble Tea model. It holds only UI state and talks to the
// core through the dispatcher.
type AppModel struct {
	appModel   models.AppModel
	dispatcher *dispatcher.EventDispatcher
	images     *imagecache.Cache
	canvas     components.Canvas
	initial    []eventbus.UIEvent
}

func (m *AppModel) deps() update.Deps {
	return update.Deps{Sender: m.dispatcher, Images: m.images}
}

func (m *AppModel) Init() tea.Cmd {
	return tea.Batch(
		m.appModel.Spinner.Tick,
		textinput.Blink,
		m.dispatcher.ListenForCoreEvents(),
		m.sendInitial,
	)
}

// sendInitial asks the core for the startup work once the program runs.
func (m *AppModel) sendInitial() tea.Msg {
	for _, e := range m.initial {
		_ = m.dispatcher.SendToCore(e)
	}
	return nil
}

func (m *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd := update.HandleUpdate(&m.appModel, msg, m.deps())

	// Handle core events and continue listening
	if _, ok := msg.(update.CoreEventMsg); ok {
		return m, tea.Batch(cmd, m.dispatcher.ListenForCoreEvents())
	}
	return m, cmd
}

func (m *AppModel) View() string {
	return components.RenderView(&m.appModel, &m.canvas)
}
