package lighttool

import (
	"context"

	"github.com/go-gl/mathgl/mgl64"
)

type sizeInspection struct {
	time     float64
	result   *Result
	original float64
}

// SizeHandle edits a width, height or radius by dragging along an axis of
// the light. All selected lights are scaled by the same multiplier.
type SizeHandle struct {
	handleBase

	axis            mgl64.Vec3
	span            float64
	inspector       *ParameterInspector
	visualiserScale float64

	inspections []sizeInspection
	drag        *LinearDrag
}

func newSizeHandle(env handleEnv, kind HandleKind) *SizeHandle {
	h := &SizeHandle{visualiserScale: env.visualiserScale}
	switch kind {
	case HandleQuadWidth:
		h.handleBase = newHandleBase(env, MetadataWidthParameter, kind, "quad")
		h.axis = mgl64.Vec3{1, 0, 0}
		h.span = 2
	case HandleQuadHeight:
		h.handleBase = newHandleBase(env, MetadataHeightParameter, kind, "quad")
		h.axis = mgl64.Vec3{0, 1, 0}
		h.span = 2
	case HandleRadius:
		h.handleBase = newHandleBase(env, MetadataRadiusParameter, kind, "disk sphere point cylinder")
		h.axis = mgl64.Vec3{1, 0, 0}
		h.span = 1
	default:
		panic("lighttool: not a size handle kind: " + kind.String())
	}
	return h
}

// Axis returns the direction the handle moves in, in light space.
func (h *SizeHandle) Axis() mgl64.Vec3 { return h.axis }

// VisualiserScale returns the display scale of the bound light.
func (h *SizeHandle) VisualiserScale() float64 { return h.visualiserScale }

// Update rebinds the handle to the light at anchor.
func (h *SizeHandle) Update(ctx context.Context, anchor EvalContext, editScope EditScope) error {
	h.inspector = nil
	h.visualiserScale = h.env.visualiserScale
	if err := h.rebind(ctx, anchor, editScope); err != nil {
		return err
	}
	if !h.bound {
		return nil
	}
	h.inspector = h.newInspector(h.name)
	h.visualiserScale = floatAttribute(h.attrs, VisualiserScaleAttribute, h.env.visualiserScale)
	return nil
}

// Inspectors returns the size inspector.
func (h *SizeHandle) Inspectors() []Inspector {
	return inspectorList(h.inspector)
}

func (h *SizeHandle) inspect(ctx context.Context, ec EvalContext) (*Result, error) {
	if h.inspector == nil {
		return nil, nil
	}
	return h.inspector.Inspect(ctx, ec)
}

// AddDragInspection captures the size of the light at ec.
func (h *SizeHandle) AddDragInspection(ctx context.Context, ec EvalContext) error {
	r, err := h.inspect(ctx, ec)
	if err != nil || r == nil {
		return err
	}
	if !h.claim(r) {
		return nil
	}
	v, err := r.Float()
	if err != nil {
		return err
	}
	h.inspections = append(h.inspections, sizeInspection{time: ec.Time, result: r, original: v})
	return nil
}

// DragBegin starts tracking the pointer along the handle axis.
func (h *SizeHandle) DragBegin(ev DragEvent) {
	d := NewLinearDrag(h.parent, Line{Direction: h.axis}, ev)
	h.drag = &d
}

// DragMove scales every captured size by the multiplier the first one
// needs to follow the pointer.
func (h *SizeHandle) DragMove(ctx context.Context, ev DragEvent) error {
	if h.drag == nil || len(h.inspections) == 0 {
		return nil
	}
	delta := h.drag.UpdatedPosition(ev) - h.drag.StartPosition()
	mult := ScaleMultiplier(delta, h.inspections[0].original, h.visualiserScale, h.span)
	for _, in := range h.inspections {
		if ctx.Err() != nil {
			return nil
		}
		if err := writeResult(in.result, in.time, ScaledValue(in.original, mult)); err != nil {
			return err
		}
	}
	return nil
}

// DragEnd releases the captured lights.
func (h *SizeHandle) DragEnd() {
	h.inspections = nil
	h.drag = nil
	h.resetClaims()
}

// UpdateLocalTransform places the handle on the light's edge.
func (h *SizeHandle) UpdateLocalTransform(ctx context.Context) error {
	r, err := h.inspect(ctx, h.anchor)
	if err != nil || r == nil {
		return err
	}
	v, err := r.Float()
	if err != nil {
		return err
	}
	h.local = sizeHandleTransform(h.axis, v/h.span*h.visualiserScale)
	return nil
}
