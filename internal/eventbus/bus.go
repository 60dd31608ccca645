package eventbus

import (
	"errors"
	"sync"
	"time"

	"github.com/Rorical/RoriDecor/internal/models"
	"github.com/Rorical/RoriDecor/internal/selection"
)

// UIEvent represents events sent from UI to Core
type UIEvent interface {
	UIEvent()
}

// CoreEvent represents events sent from Core to UI
type CoreEvent interface {
	CoreEvent()
}

// UploadEvent - UI asks the core to upload a local image
type UploadEvent struct {
	Path string
}

// GenerateEvent - UI asks for a full redesign with the current settings
type GenerateEvent struct{}

// SegmentEvent - UI completed a selection gesture on the image
type SegmentEvent struct {
	Region selection.Region
}

// EditEvent - UI submits an edit for the selected mask
type EditEvent struct {
	Operation models.EditOperation
}

// PlanEvent - UI sends a free-text redesign request
type PlanEvent struct {
	Text string
}

// DetectEvent - UI asks for a manual scan of the room
type DetectEvent struct{}

// ModeEvent - UI switched tabs
type ModeEvent struct {
	Mode models.Mode
}

// ClearMaskEvent - UI dropped the current selection
type ClearMaskEvent struct{}

// SettingsEvent - UI changed the generation settings
type SettingsEvent struct {
	Settings models.Settings
}

// HealthEvent - UI asks for a backend health check
type HealthEvent struct{}

// RefreshHistoryEvent - UI asks to reload the session history
type RefreshHistoryEvent struct{}

func (UploadEvent) UIEvent()         {}
func (GenerateEvent) UIEvent()       {}
func (SegmentEvent) UIEvent()        {}
func (EditEvent) UIEvent()           {}
func (PlanEvent) UIEvent()           {}
func (DetectEvent) UIEvent()         {}
func (ModeEvent) UIEvent()           {}
func (ClearMaskEvent) UIEvent()      {}
func (SettingsEvent) UIEvent()       {}
func (HealthEvent) UIEvent()         {}
func (RefreshHistoryEvent) UIEvent() {}

// StateUpdateEvent - Core pushes a fresh session snapshot to UI
type StateUpdateEvent struct {
	Session models.SessionSnapshot
}

func (e StateUpdateEvent) CoreEvent() {}

// EventBusError represents errors in event processing
type EventBusError struct {
	Operation string
	Err       error
	Timestamp time.Time
}

func (e EventBusError) Error() string {
	return e.Operation + ": " + e.Err.Error()
}

// CircuitBreakerState represents the state of circuit breaker
type CircuitBreakerState int

const (
	CircuitClosed CircuitBreakerState = iota
	CircuitOpen
	CircuitHalfOpen
)

// CircuitBreaker stops sends after repeated failures until resetTimeout passes.
type CircuitBreaker struct {
	mu              sync.Mutex
	maxFailures     int
	resetTimeout    time.Duration
	failureCount    int
	lastFailureTime time.Time
	state           CircuitBreakerState
	now             func() time.Time
}

func NewCircuitBreaker(maxFailures int, resetTimeout time.Duration) *CircuitBreaker {
	return &CircuitBreaker{
		maxFailures:  maxFailures,
		resetTimeout: resetTimeout,
		state:        CircuitClosed,
		now:          time.Now,
	}
}

func (cb *CircuitBreaker) IsOpen() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if cb.state == CircuitOpen && cb.now().Sub(cb.lastFailureTime) > cb.resetTimeout {
		cb.state = CircuitHalfOpen
	}
	return cb.state == CircuitOpen
}

func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.failureCount = 0
	cb.state = CircuitClosed
}

func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.failureCount++
	cb.lastFailureTime = cb.now()

	if cb.failureCount >= cb.maxFailures {
		cb.state = CircuitOpen
	}
}

func (cb *CircuitBreaker) State() CircuitBreakerState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

var (
	ErrCircuitOpen = errors.New("circuit breaker is open")
	ErrFull        = errors.New("channel is full")
	ErrClosed      = errors.New("event bus is closed")
)

// EventBus handles communication between UI and Core with circuit breaker
type EventBus struct {
	mu             sync.RWMutex
	closed         bool
	uiToCore       chan UIEvent
	coreToUI       chan CoreEvent
	errorCallback  func(EventBusError)
	circuitBreaker *CircuitBreaker
}

func NewEventBus() *EventBus {
	return &EventBus{
		uiToCore:       make(chan UIEvent, 100),
		coreToUI:       make(chan CoreEvent, 100),
		circuitBreaker: NewCircuitBreaker(5, 30*time.Second),
	}
}

func (eb *EventBus) SetErrorCallback(callback func(EventBusError)) {
	eb.errorCallback = callback
}

func (eb *EventBus) reportError(operation string, err error) {
	eb.circuitBreaker.RecordFailure()

	if eb.errorCallback != nil {
		eb.errorCallback(EventBusError{
			Operation: operation,
			Err:       err,
			Timestamp: time.Now(),
		})
	}
}

func (eb *EventBus) SendToCore(event UIEvent) error {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	if eb.closed {
		return ErrClosed
	}
	if eb.circuitBreaker.IsOpen() {
		eb.reportError("SendToCore", ErrCircuitOpen)
		return ErrCircuitOpen
	}

	select {
	case eb.uiToCore <- event:
		eb.circuitBreaker.RecordSuccess()
		return nil
	default:
		eb.reportError("SendToCore", ErrFull)
		return ErrFull
	}
}

// SendToUI delivers a state update. Snapshots supersede each other, so when
// the channel is full the oldest pending update is dropped.
func (eb *EventBus) SendToUI(event CoreEvent) error {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	if eb.closed {
		return ErrClosed
	}
	if eb.circuitBreaker.IsOpen() {
		eb.reportError("SendToUI", ErrCircuitOpen)
		return ErrCircuitOpen
	}

	for attempt := 0; attempt < 2; attempt++ {
		select {
		case eb.coreToUI <- event:
			eb.circuitBreaker.RecordSuccess()
			return nil
		default:
			select {
			case <-eb.coreToUI:
			default:
			}
		}
	}
	eb.reportError("SendToUI", ErrFull)
	return ErrFull
}

func (eb *EventBus) UIToCore() <-chan UIEvent {
	return eb.uiToCore
}

func (eb *EventBus) CoreToUI() <-chan CoreEvent {
	return eb.coreToUI
}

func (eb *EventBus) Close() {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	if eb.closed {
		return
	}
	eb.closed = true
	close(eb.uiToCore)
	close(eb.coreToUI)
}
