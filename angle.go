package lighttool

import "math"

// maxHandleAngle is the largest angle, in degrees, a spot handle can reach
// from the light's centreline.
const maxHandleAngle = 90.0

// normalizeMultiplier returns 1 for multipliers that cannot be inverted.
func normalizeMultiplier(m float64) float64 {
	if m <= 0 {
		return 1
	}
	return m
}

// HandleAngles converts plug angles to handle angles. The cone handle angle
// is measured from the centreline, so it is half the cone angle, doubled
// again for shaders whose cone angle is already a half angle. penumbra may
// be nil when the light has none. An absolute penumbra is a full angle like
// the cone and takes the same 0.5·angleMultiplier scale, so half-angle
// shaders also get their absolute penumbra doubled.
func HandleAngles(cone float64, penumbra *float64, conv PenumbraType, angleMultiplier float64) (coneHandle float64, penumbraHandle *float64) {
	m := normalizeMultiplier(angleMultiplier)
	coneHandle = cone * 0.5 * m
	if penumbra == nil {
		return coneHandle, nil
	}
	p := *penumbra
	if conv == PenumbraAbsolute {
		p *= 0.5 * m
	}
	return coneHandle, &p
}

// PlugConeAngle is the inverse of the cone conversion in HandleAngles.
func PlugConeAngle(coneHandle, angleMultiplier float64) float64 {
	return coneHandle / (0.5 * normalizeMultiplier(angleMultiplier))
}

// PlugPenumbraAngle is the inverse of the penumbra conversion in HandleAngles.
func PlugPenumbraAngle(penumbraHandle float64, conv PenumbraType, angleMultiplier float64) float64 {
	if conv == PenumbraAbsolute {
		return penumbraHandle / (0.5 * normalizeMultiplier(angleMultiplier))
	}
	return penumbraHandle
}

// VisualAngles returns the angles from the centreline at which the inner
// and outer edges of the light are drawn. Without a penumbra both are the
// cone handle angle.
func VisualAngles(coneHandle float64, penumbraHandle *float64, conv PenumbraType) (inner, outer float64) {
	if penumbraHandle == nil {
		return coneHandle, coneHandle
	}
	p := *penumbraHandle
	switch conv {
	case PenumbraOutset:
		return coneHandle, coneHandle + p
	case PenumbraAbsolute:
		return coneHandle, p
	default:
		return coneHandle - p, coneHandle
	}
}

// handleVisualAngle returns the angle at which the handle of kind is drawn.
func handleVisualAngle(kind HandleKind, coneHandle float64, penumbraHandle *float64, conv PenumbraType) float64 {
	inner, outer := VisualAngles(coneHandle, penumbraHandle, conv)
	if kind == HandleSpotPenumbra {
		if conv == PenumbraOutset || conv == PenumbraAbsolute {
			return outer
		}
		return inner
	}
	if conv == PenumbraOutset || conv == PenumbraAbsolute {
		return inner
	}
	return outer
}

// visualAngleSign is the rate at which the handle angle of kind changes as
// its visual angle increases.
func visualAngleSign(kind HandleKind, conv PenumbraType) float64 {
	if kind == HandleSpotPenumbra && (conv == PenumbraInset || conv == PenumbraNone) {
		return -1
	}
	return 1
}

// ClampHandleAngle limits a candidate handle angle so the light stays valid
// given the original angles captured at drag begin. Results are always in
// [0, 90]. For inset penumbras the cone may not shrink below the penumbra
// and the penumbra may not exceed the cone; for outset penumbras the sum of
// both may not exceed 90. Absolute penumbras are only range clamped.
func ClampHandleAngle(candidate, originalCone float64, originalPenumbra *float64, kind HandleKind, conv PenumbraType) float64 {
	lo, hi := 0.0, maxHandleAngle
	switch kind {
	case HandleSpotCone:
		if originalPenumbra != nil {
			switch conv {
			case PenumbraInset, PenumbraNone:
				lo = math.Max(lo, *originalPenumbra)
			case PenumbraOutset:
				hi = math.Min(hi, maxHandleAngle-*originalPenumbra)
			}
		}
	case HandleSpotPenumbra:
		switch conv {
		case PenumbraInset, PenumbraNone:
			hi = math.Min(hi, originalCone)
		case PenumbraOutset:
			hi = math.Min(hi, maxHandleAngle-originalCone)
		}
	}
	hi = clamp(hi, 0, maxHandleAngle)
	lo = clamp(lo, 0, hi)
	return clamp(candidate, lo, hi)
}

// clampAngleRange limits an angle to [0, 90].
func clampAngleRange(a float64) float64 {
	return clamp(a, 0, maxHandleAngle)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// nonZero substitutes 1 for zero so that zero-sized lights can be scaled.
func nonZero(v float64) float64 {
	if v == 0 {
		return 1
	}
	return v
}

// ScaleMultiplier converts a drag distance along a size handle's axis into
// a multiplier for the original size. span is the number of handle
// displacements making up the full size: 2 for edge handles of a width or
// height, 1 for a radius. axisScale is the display scale along the axis.
// The result is never negative.
func ScaleMultiplier(delta, original, axisScale, span float64) float64 {
	if axisScale == 0 {
		axisScale = 1
	}
	m := 1 + span*delta/(nonZero(original)*axisScale)
	return math.Max(0, m)
}

// ScaledValue applies a multiplier to an original size.
func ScaledValue(original, multiplier float64) float64 {
	return nonZero(original) * multiplier
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }

func degrees(rad float64) float64 { return rad * 180 / math.Pi }
