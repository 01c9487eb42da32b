package lighttool

import (
	"math"
	"testing"
)

const epsilon = 1e-9

func approxEqual(a, b, eps float64) bool {
	return math.Abs(a-b) < eps
}

func ptr(v float64) *float64 { return &v }

func TestHandleAnglesSpotScenario(t *testing.T) {
	cone, pen := HandleAngles(40, ptr(5), PenumbraInset, 1)
	if !approxEqual(cone, 20, epsilon) {
		t.Errorf("cone handle = %f, want 20", cone)
	}
	if pen == nil || !approxEqual(*pen, 5, epsilon) {
		t.Errorf("penumbra handle = %v, want 5", pen)
	}
}

func TestHandleAnglesWithoutPenumbra(t *testing.T) {
	cone, pen := HandleAngles(60, nil, PenumbraOutset, 1)
	if !approxEqual(cone, 30, epsilon) {
		t.Errorf("cone handle = %f, want 30", cone)
	}
	if pen != nil {
		t.Errorf("penumbra handle = %f, want nil", *pen)
	}
}

func TestHandleAnglesHalfConeType(t *testing.T) {
	cone, pen := HandleAngles(20, ptr(10), PenumbraAbsolute, 2)
	if !approxEqual(cone, 20, epsilon) {
		t.Errorf("cone handle = %f, want 20", cone)
	}
	if !approxEqual(*pen, 10, epsilon) {
		t.Errorf("penumbra handle = %f, want 10", *pen)
	}
}

func TestAngleRoundTrip(t *testing.T) {
	convs := []PenumbraType{PenumbraNone, PenumbraInset, PenumbraOutset, PenumbraAbsolute}
	mults := []float64{1, 2}
	values := []float64{0, 0.5, 5, 33.3, 89.9, 120}
	for _, conv := range convs {
		for _, m := range mults {
			for _, v := range values {
				cone, pen := HandleAngles(v, ptr(v/3), conv, m)
				if got := PlugConeAngle(cone, m); !approxEqual(got, v, 1e-9) {
					t.Errorf("%s m=%g: cone %g -> %g -> %g", conv, m, v, cone, got)
				}
				if got := PlugPenumbraAngle(*pen, conv, m); !approxEqual(got, v/3, 1e-9) {
					t.Errorf("%s m=%g: penumbra %g -> %g -> %g", conv, m, v/3, *pen, got)
				}
			}
		}
	}
}

func TestVisualAngles(t *testing.T) {
	tests := []struct {
		conv         PenumbraType
		inner, outer float64
	}{
		{PenumbraNone, 15, 20},
		{PenumbraInset, 15, 20},
		{PenumbraOutset, 20, 25},
		{PenumbraAbsolute, 20, 5},
	}
	for _, tt := range tests {
		t.Run(tt.conv.String(), func(t *testing.T) {
			inner, outer := VisualAngles(20, ptr(5), tt.conv)
			if !approxEqual(inner, tt.inner, epsilon) || !approxEqual(outer, tt.outer, epsilon) {
				t.Errorf("VisualAngles = (%g, %g), want (%g, %g)", inner, outer, tt.inner, tt.outer)
			}
		})
	}
	inner, outer := VisualAngles(20, nil, PenumbraInset)
	if inner != 20 || outer != 20 {
		t.Errorf("VisualAngles without penumbra = (%g, %g), want (20, 20)", inner, outer)
	}
}

func TestClampHandleAngle(t *testing.T) {
	tests := []struct {
		name      string
		candidate float64
		cone      float64
		penumbra  *float64
		kind      HandleKind
		conv      PenumbraType
		want      float64
	}{
		{"cone inset below penumbra", 3, 20, ptr(5), HandleSpotCone, PenumbraInset, 5},
		{"cone inset legal", 10, 20, ptr(5), HandleSpotCone, PenumbraInset, 10},
		{"cone none acts as inset", 1, 20, ptr(5), HandleSpotCone, PenumbraNone, 5},
		{"cone outset above limit", 88, 20, ptr(5), HandleSpotCone, PenumbraOutset, 85},
		{"cone absolute range only", 95, 20, ptr(5), HandleSpotCone, PenumbraAbsolute, 90},
		{"cone negative", -4, 20, nil, HandleSpotCone, PenumbraInset, 0},
		{"cone no penumbra", 3, 20, nil, HandleSpotCone, PenumbraInset, 3},
		{"penumbra inset above cone", 25, 20, ptr(5), HandleSpotPenumbra, PenumbraInset, 20},
		{"penumbra outset above limit", 80, 20, ptr(5), HandleSpotPenumbra, PenumbraOutset, 70},
		{"penumbra absolute range only", 60, 20, ptr(5), HandleSpotPenumbra, PenumbraAbsolute, 60},
		{"penumbra negative", -1, 20, ptr(5), HandleSpotPenumbra, PenumbraAbsolute, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClampHandleAngle(tt.candidate, tt.cone, tt.penumbra, tt.kind, tt.conv)
			if !approxEqual(got, tt.want, epsilon) {
				t.Errorf("ClampHandleAngle = %g, want %g", got, tt.want)
			}
		})
	}
}

func TestClampHandleAngleIdempotent(t *testing.T) {
	convs := []PenumbraType{PenumbraNone, PenumbraInset, PenumbraOutset, PenumbraAbsolute}
	kinds := []HandleKind{HandleSpotCone, HandleSpotPenumbra}
	for _, conv := range convs {
		for _, kind := range kinds {
			for c := -20.0; c <= 120; c += 7.5 {
				once := ClampHandleAngle(c, 30, ptr(70), kind, conv)
				twice := ClampHandleAngle(once, 30, ptr(70), kind, conv)
				if once != twice {
					t.Errorf("%s %s: clamp(%g) = %g, clamp again = %g", conv, kind, c, once, twice)
				}
				if once < 0 || once > 90 {
					t.Errorf("%s %s: clamp(%g) = %g outside [0, 90]", conv, kind, c, once)
				}
			}
		}
	}
}

func TestSpotScenarioStoredConeFloor(t *testing.T) {
	coneHandle, pen := HandleAngles(40, ptr(5), PenumbraInset, 1)
	for _, candidate := range []float64{3, 1, 0, -10} {
		clamped := ClampHandleAngle(candidate, coneHandle, pen, HandleSpotCone, PenumbraInset)
		if stored := PlugConeAngle(clamped, 1); stored < 10-epsilon {
			t.Errorf("candidate %g stored %g, want >= 10", candidate, stored)
		}
	}
}

func TestScaleMultiplier(t *testing.T) {
	tests := []struct {
		name                             string
		delta, original, axisScale, span float64
		want                             float64
	}{
		{"width grows", 1, 4, 1, 2, 1.5},
		{"radius grows", 1, 2, 1, 1, 1.5},
		{"zero width", 0.5, 0, 1, 2, 2},
		{"scaled axis", 2, 4, 2, 2, 1.5},
		{"floored", -10, 4, 1, 2, 0},
		{"zero axis scale", 1, 4, 0, 2, 1.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScaleMultiplier(tt.delta, tt.original, tt.axisScale, tt.span)
			if !approxEqual(got, tt.want, epsilon) {
				t.Errorf("ScaleMultiplier = %g, want %g", got, tt.want)
			}
		})
	}
}

func TestScaleMultiplierNeverNegative(t *testing.T) {
	for d := -100.0; d <= 100; d += 3.3 {
		if m := ScaleMultiplier(d, 2, 1, 2); m < 0 {
			t.Errorf("ScaleMultiplier(%g) = %g", d, m)
		}
	}
}

func TestScaledValue(t *testing.T) {
	if got := ScaledValue(4, 1.5); got != 6 {
		t.Errorf("ScaledValue(4, 1.5) = %g, want 6", got)
	}
	if got := ScaledValue(6, 1.5); got != 9 {
		t.Errorf("ScaledValue(6, 1.5) = %g, want 9", got)
	}
	if got := ScaledValue(0, 2); got != 2 {
		t.Errorf("ScaledValue(0, 2) = %g, want 2", got)
	}
}

func TestHandleVisualAngle(t *testing.T) {
	pen := ptr(5.0)
	if got := handleVisualAngle(HandleSpotCone, 20, pen, PenumbraInset); got != 20 {
		t.Errorf("inset cone = %g, want 20", got)
	}
	if got := handleVisualAngle(HandleSpotPenumbra, 20, pen, PenumbraInset); got != 15 {
		t.Errorf("inset penumbra = %g, want 15", got)
	}
	if got := handleVisualAngle(HandleSpotPenumbra, 20, pen, PenumbraOutset); got != 25 {
		t.Errorf("outset penumbra = %g, want 25", got)
	}
	if got := handleVisualAngle(HandleSpotPenumbra, 20, pen, PenumbraAbsolute); got != 5 {
		t.Errorf("absolute penumbra = %g, want 5", got)
	}
	if visualAngleSign(HandleSpotPenumbra, PenumbraInset) != -1 {
		t.Error("inset penumbra should move against its visual angle")
	}
}

func TestParsePenumbraType(t *testing.T) {
	for _, s := range []string{"inset", "outset", "absolute"} {
		p, ok := ParsePenumbraType(s)
		if !ok || p.String() != s {
			t.Errorf("ParsePenumbraType(%q) = %v, %v", s, p, ok)
		}
	}
	if p, ok := ParsePenumbraType("bogus"); ok || p != PenumbraNone {
		t.Errorf("ParsePenumbraType(bogus) = %v, %v", p, ok)
	}
}
