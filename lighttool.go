package lighttool

import (
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// Path is a scene location, one name per level. The root is the empty path.
type Path []string

// ParsePath splits a slash-separated location such as "/group/light".
// Empty components are ignored, so "/" and "" both yield the root.
func ParsePath(s string) Path {
	var p Path
	for _, name := range strings.Split(s, "/") {
		if name != "" {
			p = append(p, name)
		}
	}
	return p
}

// String returns the slash-separated form of p.
func (p Path) String() string {
	return "/" + strings.Join(p, "/")
}

// Equal reports whether p and other name the same location.
func (p Path) Equal(other Path) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}

// Parent returns the path of the parent location. The root is its own parent.
func (p Path) Parent() Path {
	if len(p) == 0 {
		return p
	}
	return p[:len(p)-1]
}

// Name returns the last component, or "" for the root.
func (p Path) Name() string {
	if len(p) == 0 {
		return ""
	}
	return p[len(p)-1]
}

func containsPath(paths []Path, p Path) bool {
	for _, q := range paths {
		if q.Equal(p) {
			return true
		}
	}
	return false
}

// PenumbraType describes how a penumbra angle composes with the cone angle.
type PenumbraType uint8

const (
	PenumbraNone     PenumbraType = iota // no convention registered; treated as inset
	PenumbraInset                        // penumbra eats into the cone from its edge
	PenumbraOutset                       // penumbra extends outward from the cone edge
	PenumbraAbsolute                     // penumbra is a full angle of its own
)

// ParsePenumbraType maps a metadata string to a PenumbraType. Unknown
// strings report false and map to PenumbraNone.
func ParsePenumbraType(s string) (PenumbraType, bool) {
	switch s {
	case "":
		return PenumbraNone, true
	case "inset":
		return PenumbraInset, true
	case "outset":
		return PenumbraOutset, true
	case "absolute":
		return PenumbraAbsolute, true
	default:
		return PenumbraNone, false
	}
}

func (p PenumbraType) String() string {
	switch p {
	case PenumbraInset:
		return "inset"
	case PenumbraOutset:
		return "outset"
	case PenumbraAbsolute:
		return "absolute"
	default:
		return "none"
	}
}

// HandleKind identifies one of the closed set of handle variants.
type HandleKind uint8

const (
	HandleSpotCone     HandleKind = iota // spot light cone edge
	HandleSpotPenumbra                   // spot light penumbra edge
	HandleQuadWidth                      // quad light width edge
	HandleQuadHeight                     // quad light height edge
	HandleRadius                         // disk, sphere and cylinder radius
)

func (k HandleKind) String() string {
	switch k {
	case HandleSpotCone:
		return "spotCone"
	case HandleSpotPenumbra:
		return "spotPenumbra"
	case HandleQuadWidth:
		return "quadWidth"
	case HandleQuadHeight:
		return "quadHeight"
	case HandleRadius:
		return "radius"
	default:
		return "unknown"
	}
}

// SourceType classifies where an inspected value is authored relative to
// the target edit scope.
type SourceType uint8

const (
	SourceOther      SourceType = iota // no edit scope involved
	SourceUpstream                     // authored upstream of the edit scope
	SourceEditScope                    // authored inside the edit scope
	SourceDownstream                   // overridden downstream of the edit scope
)

func (s SourceType) String() string {
	switch s {
	case SourceUpstream:
		return "upstream"
	case SourceEditScope:
		return "editScope"
	case SourceDownstream:
		return "downstream"
	default:
		return "other"
	}
}

// DirtyKind identifies which part of a scene changed.
type DirtyKind uint8

const (
	DirtyAttributes DirtyKind = iota // attribute or shader parameter values
	DirtyTransform                   // location transforms
	DirtyChildNames                  // hierarchy
	DirtyReadOnly                    // read-only metadata on plugs or edit scopes
)

// Color represents an RGBA color with components in [0, 1].
type Color struct {
	R, G, B, A float64
}

var (
	// HandleColor matches the standard light visualiser.
	HandleColor = Color{1, 0.835, 0.07, 1}
	// HighlightColor is used for the handle under the pointer.
	HighlightColor = Color{0.466, 0.612, 0.741, 1}
	// DisabledColor is used for handles whose parameters are not editable.
	DisabledColor = Color{0.4, 0.4, 0.4, 1}
)

// Rect is an axis-aligned screen rectangle with its origin at the top-left.
type Rect struct {
	X, Y, Width, Height float64
}

// Line is a ray with an origin and a (not necessarily unit) direction.
type Line struct {
	Origin    mgl64.Vec3
	Direction mgl64.Vec3
}

// At returns the point at parameter t along the line.
func (l Line) At(t float64) mgl64.Vec3 {
	return l.Origin.Add(l.Direction.Mul(t))
}

// Transformed returns the line mapped through m.
func (l Line) Transformed(m mgl64.Mat4) Line {
	return Line{
		Origin:    mgl64.TransformCoordinate(l.Origin, m),
		Direction: mgl64.TransformNormal(l.Direction, m),
	}
}
