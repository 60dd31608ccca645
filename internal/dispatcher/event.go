package dispatcher

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/Rorical/RoriDecor/internal/eventbus"
	"github.com/Rorical/RoriDecor/internal/update"
)

// EventDispatcher routes UI events to the core and turns core events into
// Bubble Tea messages.
type EventDispatcher struct {
	eventBus *eventbus.EventBus
	logger   *zap.Logger
	ctx      context.Context
	cancel   context.CancelFunc
}

func NewEventDispatcher(eventBus *eventbus.EventBus, logger *zap.Logger) *EventDispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &EventDispatcher{
		eventBus: eventBus,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
	}
}

func (ed *EventDispatcher) Start() {
	ed.eventBus.SetErrorCallback(func(e eventbus.EventBusError) {
		ed.logger.Warn("event bus error", zap.String("op", e.Operation), zap.Error(e.Err))
	})
}

func (ed *EventDispatcher) Stop() {
	ed.cancel()
}

// SendToCore forwards a UI event. A closed bus is reported as nil once the
// dispatcher has stopped.
func (ed *EventDispatcher) SendToCore(event eventbus.UIEvent) error {
	err := ed.eventBus.SendToCore(event)
	if errors.Is(err, eventbus.ErrClosed) && ed.ctx.Err() != nil {
		return nil
	}
	return err
}

// ListenForCoreEvents waits for the next core event. The returned message
// re-arms the listener in the model's Update.
func (ed *EventDispatcher) ListenForCoreEvents() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-ed.ctx.Done():
			return nil
		case event, ok := <-ed.eventBus.CoreToUI():
			if !ok {
				return nil
			}
			return update.CoreEventMsg{Event: event}
		}
	}
}

func (ed *EventDispatcher) GetEventBus() *eventbus.EventBus {
	return ed.eventBus
}
