package ecs

import (
	"testing"

	"github.com/phanxgames/arbor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

func TestDonburiStore_EmitEvent(t *testing.T) {
	world := donburi.NewWorld()
	store := NewDonburiStore(world)

	var received []arbor.InteractionEvent
	InteractionEventType.Subscribe(world, func(w donburi.World, e arbor.InteractionEvent) {
		received = append(received, e)
	})

	store.EmitEvent(arbor.InteractionEvent{
		Type:     arbor.EventPointerDown,
		EntityID: 42,
		GlobalX:  100,
		GlobalY:  200,
		Button:   arbor.MouseButtonLeft,
	})
	store.EmitEvent(arbor.InteractionEvent{Type: arbor.EventPointerEnter, EntityID: 7})

	// Events are queued until processed.
	assert.Empty(t, received)
	InteractionEventType.ProcessEvents(world)

	require.Len(t, received, 2)
	assert.Equal(t, arbor.EventPointerDown, received[0].Type)
	assert.Equal(t, uint32(42), received[0].EntityID)
	assert.Equal(t, 100.0, received[0].GlobalX)
	assert.Equal(t, 200.0, received[0].GlobalY)
	assert.Equal(t, arbor.EventPointerEnter, received[1].Type)
}

func TestDonburiStore_MultipleSubscribers(t *testing.T) {
	world := donburi.NewWorld()
	store := NewDonburiStore(world)

	var count1, count2 int
	InteractionEventType.Subscribe(world, func(w donburi.World, e arbor.InteractionEvent) { count1++ })
	InteractionEventType.Subscribe(world, func(w donburi.World, e arbor.InteractionEvent) { count2++ })

	store.EmitEvent(arbor.InteractionEvent{Type: arbor.EventClick})
	events.ProcessAllEvents(world)

	assert.Equal(t, 1, count1)
	assert.Equal(t, 1, count2)
}

func TestDonburiStore_FromDispatcher(t *testing.T) {
	world := donburi.NewWorld()

	root := arbor.NewGroup("root")
	tagged := arbor.NewRect("tagged", 10, 10)
	tagged.EntityID = 9
	plain := arbor.NewRect("plain", 10, 10)
	plain.X = 20
	root.Add(tagged, plain)

	d := arbor.NewDispatcher(root.Children())
	d.SetEntityStore(NewDonburiStore(world))

	var received []arbor.InteractionEvent
	InteractionEventType.Subscribe(world, func(w donburi.World, e arbor.InteractionEvent) {
		received = append(received, e)
	})

	d.DispatchDiscrete(arbor.EventClick, 5, 5)
	d.DispatchDiscrete(arbor.EventClick, 25, 5)
	d.DispatchHover(5, 5)
	events.ProcessAllEvents(world)

	require.Len(t, received, 3)
	assert.Equal(t, arbor.EventClick, received[0].Type)
	assert.Equal(t, uint32(9), received[0].EntityID)
	assert.Equal(t, arbor.EventPointerEnter, received[1].Type)
	assert.Equal(t, arbor.EventPointerMove, received[2].Type)
}
