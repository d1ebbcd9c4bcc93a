// Package ecs provides ECS adapters for arbor's interaction events.
//
// The primary adapter is [NewDonburiStore], which bridges delivered pointer
// events (down, up, move, click, enter, leave) into a [Donburi] world as
// typed events. Subscribe to [InteractionEventType] in your ECS systems to
// receive them.
//
// Usage:
//
//	store := ecs.NewDonburiStore(world)
//	scene.SetEntityStore(store)
//
// Only nodes with a non-zero EntityID are forwarded.
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
