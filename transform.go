package lighttool

import (
	"github.com/go-gl/mathgl/mgl64"
)

// Attributes overriding the view-level display scales.
const (
	FrustumScaleAttribute    = "gl:light:frustumScale"
	VisualiserScaleAttribute = "gl:visualiser:scale"
)

// spotHandleDistance is the distance of spot handles from the light origin
// at a frustum scale of 1.
const spotHandleDistance = 10.0

// spotHandleTransform places a spot handle at angle degrees from the
// centreline, spotHandleDistance·frustumScale from the light, offset
// sideways by the lens radius.
func spotHandleTransform(angle, frustumScale, lensRadius float64) mgl64.Mat4 {
	return mgl64.Translate3D(lensRadius, 0, 0).
		Mul4(mgl64.HomogRotate3DY(-radians(angle))).
		Mul4(mgl64.Translate3D(0, 0, -spotHandleDistance*frustumScale))
}

// penumbraHandleTransform is spotHandleTransform with the handle turned 45
// degrees about its own Z axis to tell it apart from the cone handle.
func penumbraHandleTransform(angle, frustumScale, lensRadius float64) mgl64.Mat4 {
	return spotHandleTransform(angle, frustumScale, lensRadius).
		Mul4(mgl64.HomogRotate3DZ(radians(45)))
}

// spotHandleDirection is the unit direction from the lens offset towards a
// spot handle at angle degrees from the centreline.
func spotHandleDirection(angle float64) mgl64.Vec3 {
	return mgl64.TransformNormal(mgl64.Vec3{0, 0, -1}, mgl64.HomogRotate3DY(-radians(angle)))
}

// sizeHandleTransform places a size handle at distance along axis.
func sizeHandleTransform(axis mgl64.Vec3, distance float64) mgl64.Mat4 {
	t := axis.Mul(distance)
	return mgl64.Translate3D(t.X(), t.Y(), t.Z())
}

// translation returns the translation part of m.
func translation(m mgl64.Mat4) mgl64.Vec3 {
	return m.Col(3).Vec3()
}

// floatAttribute returns a numeric attribute, or def when absent.
func floatAttribute(attrs Attributes, name string, def float64) float64 {
	if v, ok := attrs[name]; ok {
		if f, ok := toFloat(v); ok {
			return f
		}
	}
	return def
}
