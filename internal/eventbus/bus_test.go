package eventbus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rorical/RoriDecor/internal/models"
)

func TestSendToCoreDelivers(t *testing.T) {
	eb := NewEventBus()
	defer eb.Close()

	require.NoError(t, eb.SendToCore(PlanEvent{Text: "cozy"}))
	ev := <-eb.UIToCore()
	assert.Equal(t, PlanEvent{Text: "cozy"}, ev)
}

func TestSendToCoreFullReportsError(t *testing.T) {
	eb := NewEventBus()
	defer eb.Close()

	var reported []EventBusError
	eb.SetErrorCallback(func(e EventBusError) { reported = append(reported, e) })
	for i := 0; i < cap(eb.uiToCore); i++ {
		require.NoError(t, eb.SendToCore(GenerateEvent{}))
	}
	assert.ErrorIs(t, eb.SendToCore(GenerateEvent{}), ErrFull)
	require.Len(t, reported, 1)
	assert.Equal(t, "SendToCore", reported[0].Operation)
}

func TestSendToUIDropsOldestWhenFull(t *testing.T) {
	eb := NewEventBus()
	defer eb.Close()

	for i := 0; i < cap(eb.coreToUI)+10; i++ {
		require.NoError(t, eb.SendToUI(StateUpdateEvent{Session: models.SessionSnapshot{Status: "s"}}))
	}
	assert.Len(t, eb.coreToUI, cap(eb.coreToUI))
}

func TestSendAfterClose(t *testing.T) {
	eb := NewEventBus()
	eb.Close()
	eb.Close()
	assert.ErrorIs(t, eb.SendToCore(GenerateEvent{}), ErrClosed)
	assert.ErrorIs(t, eb.SendToUI(StateUpdateEvent{}), ErrClosed)
}

func TestCircuitBreaker(t *testing.T) {
	now := time.Unix(0, 0)
	cb := NewCircuitBreaker(2, time.Second)
	cb.now = func() time.Time { return now }

	cb.RecordFailure()
	assert.False(t, cb.IsOpen())
	cb.RecordFailure()
	assert.True(t, cb.IsOpen())

	now = now.Add(2 * time.Second)
	assert.False(t, cb.IsOpen())
	assert.Equal(t, CircuitHalfOpen, cb.State())

	cb.RecordSuccess()
	assert.Equal(t, CircuitClosed, cb.State())
}
