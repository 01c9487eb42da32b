package lighttool

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// DragEvent carries pointer data for a handle drag.
type DragEvent struct {
	// Line is the world-space view ray through the pointer.
	Line Line
	// X and Y are the pointer position in screen pixels.
	X, Y float64
}

const rayEpsilon = 1e-9

// LinearDrag measures pointer motion along an axis. Positions are
// parameters along the axis line, in units of its direction length.
type LinearDrag struct {
	toLocal mgl64.Mat4
	axis    Line
	start   float64
}

// NewLinearDrag starts a drag along axis, given in the space that
// worldTransform maps to world space.
func NewLinearDrag(worldTransform mgl64.Mat4, axis Line, ev DragEvent) LinearDrag {
	d := LinearDrag{toLocal: worldTransform.Inv(), axis: axis}
	d.start = d.position(ev)
	return d
}

// StartPosition returns the position at which the drag began.
func (d LinearDrag) StartPosition() float64 { return d.start }

// UpdatedPosition returns the position for a new pointer event.
func (d LinearDrag) UpdatedPosition(ev DragEvent) float64 { return d.position(ev) }

func (d LinearDrag) position(ev DragEvent) float64 {
	ray := ev.Line.Transformed(d.toLocal)
	return closestAxisParameter(d.axis, ray)
}

// closestAxisParameter returns the parameter along axis of the point
// closest to ray. Parallel lines project the ray origin onto the axis.
func closestAxisParameter(axis, ray Line) float64 {
	u, v := axis.Direction, ray.Direction
	w0 := axis.Origin.Sub(ray.Origin)
	a := u.Dot(u)
	if a < rayEpsilon {
		return 0
	}
	b := u.Dot(v)
	c := v.Dot(v)
	dd := u.Dot(w0)
	e := v.Dot(w0)
	denom := a*c - b*b
	if math.Abs(denom) < rayEpsilon {
		return -dd / a
	}
	return (b*e - c*dd) / denom
}

// PlanarDrag measures pointer motion in a plane spanned by two axes.
type PlanarDrag struct {
	toLocal      mgl64.Mat4
	origin       mgl64.Vec3
	axis0, axis1 mgl64.Vec3
	start        mgl64.Vec2
}

// NewPlanarDrag starts a drag in the plane through origin spanned by axis0
// and axis1, given in the space worldTransform maps to world space.
func NewPlanarDrag(worldTransform mgl64.Mat4, origin, axis0, axis1 mgl64.Vec3, ev DragEvent) PlanarDrag {
	d := PlanarDrag{toLocal: worldTransform.Inv(), origin: origin, axis0: axis0, axis1: axis1}
	d.start, _ = d.position(ev)
	return d
}

// StartPosition returns the plane coordinates at which the drag began.
func (d PlanarDrag) StartPosition() mgl64.Vec2 { return d.start }

// UpdatedPosition returns the plane coordinates for a new pointer event.
// Rays parallel to the plane keep the start position.
func (d PlanarDrag) UpdatedPosition(ev DragEvent) mgl64.Vec2 {
	p, ok := d.position(ev)
	if !ok {
		return d.start
	}
	return p
}

func (d PlanarDrag) position(ev DragEvent) (mgl64.Vec2, bool) {
	ray := ev.Line.Transformed(d.toLocal)
	normal := d.axis0.Cross(d.axis1)
	denom := normal.Dot(ray.Direction)
	if math.Abs(denom) < rayEpsilon {
		return mgl64.Vec2{}, false
	}
	t := normal.Dot(d.origin.Sub(ray.Origin)) / denom
	rel := ray.At(t).Sub(d.origin)
	return mgl64.Vec2{
		rel.Dot(d.axis0) / d.axis0.Dot(d.axis0),
		rel.Dot(d.axis1) / d.axis1.Dot(d.axis1),
	}, true
}

// AngularDrag measures rotation about an axis through the origin.
type AngularDrag struct {
	planar PlanarDrag
}

// NewAngularDrag starts a rotation drag about axis.
func NewAngularDrag(worldTransform mgl64.Mat4, axis mgl64.Vec3, ev DragEvent) AngularDrag {
	axis0 := perpendicular(axis)
	axis1 := axis.Cross(axis0).Normalize()
	return AngularDrag{planar: NewPlanarDrag(worldTransform, mgl64.Vec3{}, axis0, axis1, ev)}
}

// Rotation returns the signed rotation, in radians, from the drag start.
func (d AngularDrag) Rotation(ev DragEvent) float64 {
	s := d.planar.StartPosition()
	p := d.planar.UpdatedPosition(ev)
	return math.Atan2(s.X()*p.Y()-s.Y()*p.X(), s.Dot(p))
}

func perpendicular(v mgl64.Vec3) mgl64.Vec3 {
	if math.Abs(v.X()) < 0.9 {
		return v.Cross(mgl64.Vec3{1, 0, 0}).Normalize()
	}
	return v.Cross(mgl64.Vec3{0, 1, 0}).Normalize()
}

// SphereDrag tracks the pointer on a sphere around a centre, with the
// radius set by the distance of the start point.
type SphereDrag struct {
	toLocal mgl64.Mat4
	center  mgl64.Vec3
	radius  float64
	start   mgl64.Vec3
}

// NewSphereDrag starts a drag on the sphere around center passing through
// the point of the pointer ray nearest to hint, which is the handle
// position. All points are in the space worldTransform maps to world space.
func NewSphereDrag(worldTransform mgl64.Mat4, center, hint mgl64.Vec3, ev DragEvent) SphereDrag {
	d := SphereDrag{toLocal: worldTransform.Inv(), center: center}
	ray := ev.Line.Transformed(d.toLocal)
	d.start = closestPointOnRay(ray, hint)
	d.radius = d.start.Sub(center).Len()
	if d.radius < rayEpsilon {
		d.start = hint
		d.radius = hint.Sub(center).Len()
	}
	return d
}

// StartPoint returns the point the drag began at.
func (d SphereDrag) StartPoint() mgl64.Vec3 { return d.start }

// Radius returns the sphere radius.
func (d SphereDrag) Radius() float64 { return d.radius }

// UpdatedPoint intersects the pointer ray with the sphere. Of the two
// intersections, the one whose direction from the centre is closer to
// current is returned. Rays missing the sphere use the ray point closest to
// the centre, pushed out to the sphere.
func (d SphereDrag) UpdatedPoint(ev DragEvent, current mgl64.Vec3) mgl64.Vec3 {
	ray := ev.Line.Transformed(d.toLocal)
	o := ray.Origin.Sub(d.center)
	dir := ray.Direction
	a := dir.Dot(dir)
	if a < rayEpsilon {
		return d.start
	}
	b := 2 * o.Dot(dir)
	c := o.Dot(o) - d.radius*d.radius
	disc := b*b - 4*a*c
	if disc < 0 {
		p := closestPointOnRay(ray, d.center).Sub(d.center)
		if p.Len() < rayEpsilon {
			return d.start
		}
		return d.center.Add(p.Normalize().Mul(d.radius))
	}
	sq := math.Sqrt(disc)
	p0 := o.Add(dir.Mul((-b - sq) / (2 * a)))
	p1 := o.Add(dir.Mul((-b + sq) / (2 * a)))
	cur := current.Normalize()
	if p1.Normalize().Dot(cur) > p0.Normalize().Dot(cur) {
		return d.center.Add(p1)
	}
	return d.center.Add(p0)
}

func closestPointOnRay(ray Line, p mgl64.Vec3) mgl64.Vec3 {
	a := ray.Direction.Dot(ray.Direction)
	if a < rayEpsilon {
		return ray.Origin
	}
	t := p.Sub(ray.Origin).Dot(ray.Direction) / a
	return ray.At(t)
}

// angleFromCentreline returns the angle in degrees between v and the -Z
// axis, the direction a light shines in.
func angleFromCentreline(v mgl64.Vec3) float64 {
	l := v.Len()
	if l < rayEpsilon {
		return 0
	}
	return degrees(math.Acos(clamp(-v.Z()/l, -1, 1)))
}
