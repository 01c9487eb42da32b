package ecs

import (
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"

	"github.com/phanxgames/lighttool"
	"github.com/phanxgames/lighttool/viewport"
)

// HandleEventType is the Donburi event type for viewport handle events.
var HandleEventType = events.NewEventType[viewport.HandleEvent]()

// PriorityPathsEvent reports the locations a renderer should update first.
type PriorityPathsEvent struct {
	Paths []lighttool.Path
}

// PriorityPathsEventType is the Donburi event type for priority path changes.
var PriorityPathsEventType = events.NewEventType[PriorityPathsEvent]()

type donburiSink struct {
	world donburi.World
}

// NewDonburiSink creates a viewport.EventSink backed by a Donburi world.
// Events are queued and delivered by HandleEventType.ProcessEvents.
func NewDonburiSink(world donburi.World) viewport.EventSink {
	return &donburiSink{world: world}
}

func (s *donburiSink) EmitEvent(event viewport.HandleEvent) {
	HandleEventType.Publish(s.world, event)
}

// BridgePriorityPaths publishes a PriorityPathsEvent into world each time
// the tool's priority paths change.
func BridgePriorityPaths(world donburi.World, tool *lighttool.Tool) lighttool.Connection {
	return tool.OnPriorityPathsChanged(func(paths []lighttool.Path) {
		PriorityPathsEventType.Publish(world, PriorityPathsEvent{Paths: append([]lighttool.Path(nil), paths...)})
	})
}
