package viewport

import (
	"context"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/phanxgames/lighttool"
)

const (
	defaultDragDeadZone = 4.0 // pixels
	defaultHitRadius    = 8.0 // pixels
)

// EventType identifies the kind of handle interaction event.
type EventType uint8

const (
	EventHoverEnter EventType = iota
	EventHoverLeave
	EventDragStart
	EventDrag
	EventDragEnd
)

var eventTypeNames = [...]string{
	EventHoverEnter: "hoverEnter",
	EventHoverLeave: "hoverLeave",
	EventDragStart:  "dragStart",
	EventDrag:       "drag",
	EventDragEnd:    "dragEnd",
}

func (e EventType) String() string {
	if int(e) < len(eventTypeNames) {
		return eventTypeNames[e]
	}
	return "unknown"
}

// HandleEvent carries handle interaction data for an EventSink.
type HandleEvent struct {
	Type EventType
	// Handle is the metadata key of the handle's parameter.
	Handle string
	// X and Y are the pointer position in screen pixels.
	X, Y float64
}

// EventSink receives handle interaction events, for example to bridge them
// into an ECS world.
type EventSink interface {
	EmitEvent(event HandleEvent)
}

// pointerState tracks the mouse between frames.
type pointerState struct {
	down     bool
	startX   float64
	startY   float64
	lastX    float64
	lastY    float64
	target   lighttool.Handle
	dragging bool
}

// syntheticPointerEvent is a queued pointer event in screen coordinates.
type syntheticPointerEvent struct {
	x, y    float64
	pressed bool
}

// InjectPress queues a left button press at screen coordinates. Queued
// events replace real mouse input, one per frame.
func (v *Viewport) InjectPress(x, y float64) {
	v.injectQueue = append(v.injectQueue, syntheticPointerEvent{x: x, y: y, pressed: true})
}

// InjectMove queues a pointer move with the button held down.
func (v *Viewport) InjectMove(x, y float64) {
	v.injectQueue = append(v.injectQueue, syntheticPointerEvent{x: x, y: y, pressed: true})
}

// InjectRelease queues a button release at screen coordinates.
func (v *Viewport) InjectRelease(x, y float64) {
	v.injectQueue = append(v.injectQueue, syntheticPointerEvent{x: x, y: y})
}

// InjectDrag queues a press at (fromX, fromY), linearly interpolated moves
// and a release at (toX, toY), consuming frames frames. Minimum frames is 2.
func (v *Viewport) InjectDrag(fromX, fromY, toX, toY float64, frames int) {
	if frames < 2 {
		frames = 2
	}
	v.InjectPress(fromX, fromY)
	steps := frames - 2
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps+1)
		v.InjectMove(fromX+(toX-fromX)*t, fromY+(toY-fromY)*t)
	}
	v.InjectRelease(toX, toY)
}

// HasInjectedEvents reports whether queued pointer events remain.
func (v *Viewport) HasInjectedEvents() bool { return len(v.injectQueue) > 0 }

// readPointer feeds the real mouse into the pointer state machine unless
// injected events are pending.
func (v *Viewport) readPointer(ctx context.Context) {
	if len(v.injectQueue) > 0 {
		return
	}
	mx, my := ebiten.CursorPosition()
	v.processPointer(ctx, float64(mx), float64(my), ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft))
}

// processInjected consumes one queued pointer event.
func (v *Viewport) processInjected(ctx context.Context) {
	if len(v.injectQueue) == 0 {
		return
	}
	ev := v.injectQueue[0]
	v.injectQueue = v.injectQueue[1:]
	v.processPointer(ctx, ev.x, ev.y, ev.pressed)
}

// HitTest returns the nearest visible, enabled handle within the hit
// radius of a screen position, or nil.
func (v *Viewport) HitTest(sx, sy float64) lighttool.Handle {
	if !v.tool.HandlesVisible() {
		return nil
	}
	var best lighttool.Handle
	bestDist := v.hitRadius * v.hitRadius
	for _, h := range v.tool.Handles() {
		if !h.Visible() || !h.Enabled() {
			continue
		}
		hx, hy, ok := v.camera.WorldToScreen(h.WorldTransform().Col(3).Vec3())
		if !ok {
			continue
		}
		dx, dy := hx-sx, hy-sy
		if d := dx*dx + dy*dy; d <= bestDist {
			best, bestDist = h, d
		}
	}
	return best
}

// processPointer runs the pointer state machine for the mouse.
func (v *Viewport) processPointer(ctx context.Context, sx, sy float64, pressed bool) {
	ps := &v.pointer
	defer func() { ps.lastX, ps.lastY = sx, sy }()

	switch {
	case pressed && !ps.down:
		v.setHover(nil, sx, sy)
		*ps = pointerState{down: true, startX: sx, startY: sy, target: v.HitTest(sx, sy)}

	case pressed:
		if ps.target == nil {
			return
		}
		if !ps.dragging {
			dx, dy := sx-ps.startX, sy-ps.startY
			if dx*dx+dy*dy < v.deadZone*v.deadZone {
				return
			}
			if err := v.tool.DragBegin(ctx, ps.target, v.camera.DragEvent(ps.startX, ps.startY)); err != nil {
				v.fail(err)
				ps.target = nil
				return
			}
			ps.dragging = true
			v.emit(EventDragStart, ps.target, ps.startX, ps.startY)
		}
		if sx == ps.lastX && sy == ps.lastY {
			return
		}
		v.dragMove(ctx, sx, sy)

	case ps.down:
		if ps.dragging {
			if sx != ps.lastX || sy != ps.lastY {
				v.dragMove(ctx, sx, sy)
			}
			if ps.dragging {
				v.tool.DragEnd()
				v.emit(EventDragEnd, ps.target, sx, sy)
			}
		}
		*ps = pointerState{}

	default:
		v.setHover(v.HitTest(sx, sy), sx, sy)
	}
}

func (v *Viewport) dragMove(ctx context.Context, sx, sy float64) {
	ps := &v.pointer
	if err := v.tool.DragMove(ctx, v.camera.DragEvent(sx, sy)); err != nil {
		// The tool has already ended the drag.
		v.fail(err)
		v.emit(EventDragEnd, ps.target, sx, sy)
		ps.target = nil
		ps.dragging = false
		return
	}
	v.emit(EventDrag, ps.target, sx, sy)
}

func (v *Viewport) setHover(h lighttool.Handle, sx, sy float64) {
	if h == v.hover {
		return
	}
	if v.hover != nil {
		v.emit(EventHoverLeave, v.hover, sx, sy)
	}
	v.hover = h
	if h != nil {
		v.emit(EventHoverEnter, h, sx, sy)
	}
}

func (v *Viewport) emit(t EventType, h lighttool.Handle, sx, sy float64) {
	if v.sink == nil || h == nil {
		return
	}
	v.sink.EmitEvent(HandleEvent{Type: t, Handle: h.Name(), X: sx, Y: sy})
}
