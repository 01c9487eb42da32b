// Package ecs provides ECS adapters for lighttool.
//
// [NewDonburiSink] bridges viewport handle events (hover, drag start, drag,
// drag end) into a [Donburi] world as typed events, and [BridgePriorityPaths]
// publishes the tool's priority paths whenever they change. Subscribe to
// [HandleEventType] and [PriorityPathsEventType] in your ECS systems.
//
// Usage:
//
//	view := viewport.New(viewport.Config{Tool: tool, Camera: cam, Sink: ecs.NewDonburiSink(world)})
//	conn := ecs.BridgePriorityPaths(world, tool)
//	defer conn.Remove()
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
