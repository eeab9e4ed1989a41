package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestEventBus_DeliveryOrder(t *testing.T) {
	bus := NewEventBus(zap.NewNop())

	var order []int
	bus.Subscribe(func(Event) { order = append(order, 1) })
	bus.Subscribe(func(Event) { order = append(order, 2) })
	bus.Subscribe(func(Event) { order = append(order, 3) })

	bus.Publish(EventTurnStarted, TurnPayload{Player: "玩家一", Phase: PhaseNormal})

	// 投递顺序等于注册顺序
	assert.Equal(t, []int{1, 2, 3}, order)
}

func TestEventBus_PayloadAndTimestamp(t *testing.T) {
	bus := NewEventBus(zap.NewNop())

	var received Event
	bus.Subscribe(func(e Event) { received = e })

	bus.Publish(EventCardPlaced, CardPlacedPayload{Player: "玩家一", Card: bell(30), Slot: 5})

	assert.Equal(t, EventCardPlaced, received.Type)
	payload, ok := received.Payload.(CardPlacedPayload)
	require.True(t, ok)
	assert.Equal(t, 5, payload.Slot)
	assert.False(t, received.Timestamp.IsZero())
}

func TestEventBus_PanicIsolation(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	bus := NewEventBus(zap.New(core))

	var delivered bool
	bus.Subscribe(func(Event) { panic("处理函数崩溃") })
	bus.Subscribe(func(Event) { delivered = true })

	// 单个处理函数panic不中断后续投递
	assert.NotPanics(t, func() {
		bus.Publish(EventGameEnded, GameEndedPayload{Reason: WinReasonDeckEmptyDraw})
	})
	assert.True(t, delivered)
	require.Equal(t, 1, logs.Len())
	assert.Contains(t, logs.All()[0].Message, "panic")
}

func TestEventBus_NilHandlerIgnored(t *testing.T) {
	bus := NewEventBus(nil)
	bus.Subscribe(nil)
	assert.NotPanics(t, func() {
		bus.Publish(EventTurnEnded, TurnPayload{})
	})
}
