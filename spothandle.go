package lighttool

import (
	"context"

	"github.com/go-gl/mathgl/mgl64"
)

// spotInspection is the state of one spot light captured at drag begin.
type spotInspection struct {
	time             float64
	cone             *Result
	penumbra         *Result
	originalCone     float64
	originalPenumbra *float64
}

// original returns the captured handle angle edited by a handle of kind.
func (in spotInspection) original(kind HandleKind) float64 {
	if kind == HandleSpotPenumbra && in.originalPenumbra != nil {
		return *in.originalPenumbra
	}
	return in.originalCone
}

// SpotLightHandle edits the cone or penumbra angle of spot lights by
// dragging a point around the edge of the light's cone.
type SpotLightHandle struct {
	handleBase

	cone     *ParameterInspector
	penumbra *ParameterInspector

	penumbraType    PenumbraType
	frustumScale    float64
	lensRadius      float64
	angleMultiplier float64

	inspections []spotInspection
	drag        *SphereDrag
	startAngle  float64
	direction   mgl64.Vec3
}

func newSpotLightHandle(env handleEnv, kind HandleKind) *SpotLightHandle {
	name := MetadataConeAngleParameter
	if kind == HandleSpotPenumbra {
		name = MetadataPenumbraAngleParameter
	}
	return &SpotLightHandle{
		handleBase:      newHandleBase(env, name, kind, "spot"),
		frustumScale:    env.frustumScale,
		angleMultiplier: 1,
	}
}

// PenumbraType returns the penumbra convention of the bound light.
func (h *SpotLightHandle) PenumbraType() PenumbraType { return h.penumbraType }

// AngleMultiplier returns 2 for lights whose cone angle is a half angle.
func (h *SpotLightHandle) AngleMultiplier() float64 { return h.angleMultiplier }

// LensRadius returns the lens radius of the bound light.
func (h *SpotLightHandle) LensRadius() float64 { return h.lensRadius }

// FrustumScale returns the display scale of the bound light.
func (h *SpotLightHandle) FrustumScale() float64 { return h.frustumScale }

// Update rebinds the handle to the spot light at anchor.
func (h *SpotLightHandle) Update(ctx context.Context, anchor EvalContext, editScope EditScope) error {
	h.cone, h.penumbra = nil, nil
	h.penumbraType = PenumbraNone
	h.frustumScale = h.env.frustumScale
	h.lensRadius = 0
	h.angleMultiplier = 1

	if err := h.rebind(ctx, anchor, editScope); err != nil {
		return err
	}
	if !h.bound {
		return nil
	}

	h.cone = h.newInspector(MetadataConeAngleParameter)
	h.penumbra = h.newInspector(MetadataPenumbraAngleParameter)
	h.frustumScale = floatAttribute(h.attrs, FrustumScaleAttribute, h.env.frustumScale)
	if s, ok := h.metadataString(MetadataPenumbraType); ok {
		h.penumbraType, _ = ParsePenumbraType(s)
	}
	if param, ok := h.metadataString(MetadataLensRadiusParameter); ok {
		if v, ok := toFloat(h.shader.Parameters[param]); ok {
			h.lensRadius = v
		}
	}
	if s, ok := h.metadataString(MetadataConeAngleType); ok && s == "half" {
		h.angleMultiplier = 2
	}
	return nil
}

// Inspectors returns the cone inspector, plus the penumbra inspector for
// penumbra handles.
func (h *SpotLightHandle) Inspectors() []Inspector {
	if h.kind == HandleSpotPenumbra {
		return inspectorList(h.cone, h.penumbra)
	}
	return inspectorList(h.cone)
}

// inspect returns the cone and penumbra results at ec. penumbra is nil when
// the light has no penumbra.
func (h *SpotLightHandle) inspect(ctx context.Context, ec EvalContext) (cone, penumbra *Result, err error) {
	if h.cone == nil {
		return nil, nil, nil
	}
	cone, err = h.cone.Inspect(ctx, ec)
	if err != nil || cone == nil {
		return nil, nil, err
	}
	if h.penumbra != nil {
		penumbra, err = h.penumbra.Inspect(ctx, ec)
		if err != nil {
			return nil, nil, err
		}
	}
	return cone, penumbra, nil
}

// handleAngles converts inspected results to handle angles.
func (h *SpotLightHandle) handleAngles(cone, penumbra *Result) (float64, *float64, error) {
	c, err := cone.Float()
	if err != nil {
		return 0, nil, err
	}
	var p *float64
	if penumbra != nil {
		v, err := penumbra.Float()
		if err != nil {
			return 0, nil, err
		}
		p = &v
	}
	coneHandle, penumbraHandle := HandleAngles(c, p, h.penumbraType, h.angleMultiplier)
	return coneHandle, penumbraHandle, nil
}

// AddDragInspection captures the angles of the spot light at ec.
func (h *SpotLightHandle) AddDragInspection(ctx context.Context, ec EvalContext) error {
	cone, penumbra, err := h.inspect(ctx, ec)
	if err != nil || cone == nil {
		return err
	}
	target := cone
	if h.kind == HandleSpotPenumbra {
		if penumbra == nil {
			return nil
		}
		target = penumbra
	}
	if !h.claim(target) {
		return nil
	}
	coneHandle, penumbraHandle, err := h.handleAngles(cone, penumbra)
	if err != nil {
		return err
	}
	h.inspections = append(h.inspections, spotInspection{
		time:             ec.Time,
		cone:             cone,
		penumbra:         penumbra,
		originalCone:     coneHandle,
		originalPenumbra: penumbraHandle,
	})
	return nil
}

func (h *SpotLightHandle) lensCenter() mgl64.Vec3 {
	return mgl64.Vec3{h.lensRadius, 0, 0}
}

// DragBegin starts tracking the pointer on the sphere through the handle.
func (h *SpotLightHandle) DragBegin(ev DragEvent) {
	center := h.lensCenter()
	pos := translation(h.local)
	d := NewSphereDrag(h.parent, center, pos, ev)
	h.drag = &d
	h.startAngle = angleFromCentreline(pos.Sub(center))
	h.direction = pos.Sub(center)
}

// DragMove applies the change in angle to every captured light.
func (h *SpotLightHandle) DragMove(ctx context.Context, ev DragEvent) error {
	if h.drag == nil || len(h.inspections) == 0 {
		return nil
	}
	center := h.lensCenter()
	v := h.drag.UpdatedPoint(ev, h.direction).Sub(center)
	if v.Len() > rayEpsilon {
		h.direction = v
	}
	visual := angleFromCentreline(v)

	first := h.inspections[0]
	original := first.original(h.kind)
	candidate := original + visualAngleSign(h.kind, h.penumbraType)*(visual-h.startAngle)
	clamped := ClampHandleAngle(candidate, first.originalCone, first.originalPenumbra, h.kind, h.penumbraType)
	delta := clamped - original

	for _, in := range h.inspections {
		if ctx.Err() != nil {
			return nil
		}
		angle := clampAngleRange(in.original(h.kind) + delta)
		if h.kind == HandleSpotPenumbra {
			if err := writeResult(in.penumbra, in.time, PlugPenumbraAngle(angle, h.penumbraType, h.angleMultiplier)); err != nil {
				return err
			}
			continue
		}
		if err := writeResult(in.cone, in.time, PlugConeAngle(angle, h.angleMultiplier)); err != nil {
			return err
		}
	}
	return nil
}

// DragEnd releases the captured lights.
func (h *SpotLightHandle) DragEnd() {
	h.inspections = nil
	h.drag = nil
	h.resetClaims()
}

// UpdateLocalTransform places the handle on the edge it edits.
func (h *SpotLightHandle) UpdateLocalTransform(ctx context.Context) error {
	cone, penumbra, err := h.inspect(ctx, h.anchor)
	if err != nil || cone == nil {
		return err
	}
	coneHandle, penumbraHandle, err := h.handleAngles(cone, penumbra)
	if err != nil {
		return err
	}
	angle := handleVisualAngle(h.kind, coneHandle, penumbraHandle, h.penumbraType)
	if h.kind == HandleSpotPenumbra {
		h.local = penumbraHandleTransform(angle, h.frustumScale, h.lensRadius)
	} else {
		h.local = spotHandleTransform(angle, h.frustumScale, h.lensRadius)
	}
	return nil
}

// Angles returns the cone and penumbra handle angles of the anchor light.
func (h *SpotLightHandle) Angles(ctx context.Context) (cone float64, penumbra *float64, err error) {
	c, p, err := h.inspect(ctx, h.anchor)
	if err != nil || c == nil {
		return 0, nil, err
	}
	return h.handleAngles(c, p)
}
