package ecs

import (
	"github.com/phanxgames/arbor"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// InteractionEventType is the Donburi event type for arbor interaction events.
var InteractionEventType = events.NewEventType[arbor.InteractionEvent]()

type donburiStore struct {
	world donburi.World
}

// NewDonburiStore creates an EntityStore backed by a Donburi world.
// Events are queued on InteractionEventType; drain them with
// ProcessEvents or events.ProcessAllEvents once per frame.
func NewDonburiStore(world donburi.World) arbor.EntityStore {
	return &donburiStore{world: world}
}

func (s *donburiStore) EmitEvent(event arbor.InteractionEvent) {
	InteractionEventType.Publish(s.world, event)
}
