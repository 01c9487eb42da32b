package lighttool

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// scriptStep is a single action in an interaction script.
type scriptStep struct {
	Action string   `json:"action"`
	Paths  []string `json:"paths,omitempty"`
	Path   string   `json:"path,omitempty"`
	Handle string   `json:"handle,omitempty"`
	Value  float64  `json:"value,omitempty"`
	Frames int      `json:"frames,omitempty"`

	// Screen-space drag, converted through the runner's camera.
	FromX float64 `json:"fromX,omitempty"`
	FromY float64 `json:"fromY,omitempty"`
	ToX   float64 `json:"toX,omitempty"`
	ToY   float64 `json:"toY,omitempty"`

	// World-space drag rays as origin followed by direction.
	FromRay *[6]float64 `json:"fromRay,omitempty"`
	ToRay   *[6]float64 `json:"toRay,omitempty"`
}

type interactionScript struct {
	Steps []scriptStep `json:"steps"`
}

type queuedDragKind uint8

const (
	queuedBegin queuedDragKind = iota
	queuedMove
	queuedEnd
)

// queuedDrag is one frame of a scripted drag.
type queuedDrag struct {
	kind   queuedDragKind
	handle Handle
	event  DragEvent
}

// InteractionRunner replays a scripted sequence of selections, drags and
// edits against a Tool, one action per frame.
type InteractionRunner struct {
	tool    *Tool
	context *ViewContext
	camera  *Camera

	steps     []scriptStep
	cursor    int
	waitCount int
	queue     []queuedDrag
	done      bool
}

// LoadInteractionScript parses a JSON script such as
//
//	{"steps": [
//	  {"action": "select", "paths": ["/group/spot"]},
//	  {"action": "preRender"},
//	  {"action": "drag", "handle": "coneAngleParameter",
//	   "fromX": 420, "fromY": 300, "toX": 460, "toY": 300, "frames": 5},
//	  {"action": "setAngle", "value": 30}
//	]}
//
// camera may be nil when the script only uses world-space drags.
func LoadInteractionScript(jsonData []byte, tool *Tool, vc *ViewContext, camera *Camera) (*InteractionRunner, error) {
	var script interactionScript
	if err := json.Unmarshal(jsonData, &script); err != nil {
		return nil, fmt.Errorf("parse interaction script: %w", err)
	}
	if len(script.Steps) == 0 {
		return nil, fmt.Errorf("parse interaction script: no steps")
	}
	for i, st := range script.Steps {
		switch st.Action {
		case "select", "lastSelected", "preRender", "setAngle", "wait", "frame":
		case "drag":
			if st.FromRay == nil && camera == nil {
				return nil, fmt.Errorf("parse interaction script: step %d: screen drag needs a camera", i)
			}
		default:
			return nil, fmt.Errorf("parse interaction script: step %d: unknown action %q", i, st.Action)
		}
	}
	return &InteractionRunner{tool: tool, context: vc, camera: camera, steps: script.Steps}, nil
}

// Done reports whether every step has been executed.
func (r *InteractionRunner) Done() bool {
	return r.done
}

// Run executes the script to completion, settling the tool after every
// frame as a host's render loop would.
func (r *InteractionRunner) Run(ctx context.Context) error {
	for !r.done {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.Step(ctx); err != nil {
			return err
		}
		if err := r.tool.PreRender(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Step advances the runner by one frame.
func (r *InteractionRunner) Step(ctx context.Context) error {
	if r.done {
		return nil
	}
	if len(r.queue) > 0 {
		q := r.queue[0]
		r.queue = r.queue[1:]
		if err := r.applyDrag(ctx, q); err != nil {
			return err
		}
		r.checkDone()
		return nil
	}
	if r.waitCount > 0 {
		r.waitCount--
		r.checkDone()
		return nil
	}
	if r.cursor >= len(r.steps) {
		r.done = true
		return nil
	}

	st := r.steps[r.cursor]
	r.cursor++

	switch st.Action {
	case "select":
		paths := make([]Path, len(st.Paths))
		for i, p := range st.Paths {
			paths[i] = ParsePath(p)
		}
		r.context.SetSelectedPaths(paths)
	case "lastSelected":
		r.context.SetLastSelectedPath(ParsePath(st.Path))
	case "preRender":
		if err := r.tool.PreRender(ctx); err != nil {
			return err
		}
	case "setAngle":
		if err := r.tool.SetAngle(ctx, st.Value); err != nil {
			return err
		}
	case "frame":
		r.context.SetTime(st.Value)
	case "drag":
		h := r.tool.Handle(st.Handle)
		if h == nil {
			return fmt.Errorf("interaction script: unknown handle %q", st.Handle)
		}
		r.queueDrag(h, st)
	case "wait":
		if st.Frames > 0 {
			r.waitCount = st.Frames - 1 // this frame counts as one
		}
	}
	r.checkDone()
	return nil
}

func (r *InteractionRunner) checkDone() {
	if r.cursor >= len(r.steps) && r.waitCount == 0 && len(r.queue) == 0 {
		r.done = true
	}
}

// queueDrag queues a begin, frames-2 interpolated moves and an end.
func (r *InteractionRunner) queueDrag(h Handle, st scriptStep) {
	frames := st.Frames
	if frames < 2 {
		frames = 2
	}
	at := func(t float64) DragEvent {
		if st.FromRay != nil {
			to := st.FromRay
			if st.ToRay != nil {
				to = st.ToRay
			}
			return DragEvent{Line: lerpRay(*st.FromRay, *to, t)}
		}
		x := st.FromX + (st.ToX-st.FromX)*t
		y := st.FromY + (st.ToY-st.FromY)*t
		return r.camera.DragEvent(x, y)
	}
	r.queue = append(r.queue, queuedDrag{kind: queuedBegin, handle: h, event: at(0)})
	steps := frames - 2
	for i := 1; i <= steps; i++ {
		r.queue = append(r.queue, queuedDrag{kind: queuedMove, handle: h, event: at(float64(i) / float64(steps+1))})
	}
	r.queue = append(r.queue, queuedDrag{kind: queuedEnd, handle: h, event: at(1)})
}

func (r *InteractionRunner) applyDrag(ctx context.Context, q queuedDrag) error {
	switch q.kind {
	case queuedBegin:
		return r.tool.DragBegin(ctx, q.handle, q.event)
	case queuedMove:
		return r.tool.DragMove(ctx, q.event)
	default:
		err := r.tool.DragMove(ctx, q.event)
		r.tool.DragEnd()
		return err
	}
}

func lerpRay(from, to [6]float64, t float64) Line {
	var v [6]float64
	for i := range v {
		v[i] = from[i] + (to[i]-from[i])*t
	}
	return Line{
		Origin:    mgl64.Vec3{v[0], v[1], v[2]},
		Direction: mgl64.Vec3{v[3], v[4], v[5]},
	}
}
