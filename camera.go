package lighttool

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// frameAnim holds active frame-to tweens for the camera target.
type frameAnim struct {
	tweens [3]*gween.Tween
	done   [3]bool
}

// Camera is a perspective camera orbiting a target point. It converts
// between screen pixels and world-space rays for handle dragging.
type Camera struct {
	// Target is the world-space point the camera looks at.
	Target mgl64.Vec3
	// Distance is the distance from the target to the eye.
	Distance float64
	// Yaw and Pitch orient the eye around the target, in degrees.
	// Zero yaw and pitch look down -Z.
	Yaw, Pitch float64
	// FovY is the vertical field of view in degrees.
	FovY      float64
	Near, Far float64
	// Viewport is the screen-space rectangle the camera renders into.
	Viewport Rect

	view, proj, viewProj, invViewProj mgl64.Mat4

	frame *frameAnim
}

// NewCamera creates a camera 20 units in front of the origin.
func NewCamera(viewport Rect) *Camera {
	return &Camera{
		Distance: 20,
		FovY:     45,
		Near:     0.1,
		Far:      1000,
		Viewport: viewport,
	}
}

// Eye returns the world-space camera position.
func (c *Camera) Eye() mgl64.Vec3 {
	yaw, pitch := radians(c.Yaw), radians(c.Pitch)
	offset := mgl64.Vec3{
		math.Sin(yaw) * math.Cos(pitch),
		math.Sin(pitch),
		math.Cos(yaw) * math.Cos(pitch),
	}
	return c.Target.Add(offset.Mul(c.Distance))
}

// computeMatrices refreshes the view and projection matrices.
func (c *Camera) computeMatrices() {
	up := mgl64.Vec3{0, 1, 0}
	if math.Abs(math.Cos(radians(c.Pitch))) < 1e-6 {
		up = mgl64.Vec3{0, 0, -1}
	}
	c.view = mgl64.LookAtV(c.Eye(), c.Target, up)
	aspect := 1.0
	if c.Viewport.Height > 0 {
		aspect = c.Viewport.Width / c.Viewport.Height
	}
	c.proj = mgl64.Perspective(radians(c.FovY), aspect, c.Near, c.Far)
	c.viewProj = c.proj.Mul4(c.view)
	c.invViewProj = c.viewProj.Inv()
}

// WorldToScreen projects a world point to screen pixels. ok is false for
// points behind the camera.
func (c *Camera) WorldToScreen(p mgl64.Vec3) (sx, sy float64, ok bool) {
	c.computeMatrices()
	clip := c.viewProj.Mul4x1(p.Vec4(1))
	if clip.W() <= 0 {
		return 0, 0, false
	}
	ndc := clip.Vec3().Mul(1 / clip.W())
	sx = c.Viewport.X + (ndc.X()+1)*0.5*c.Viewport.Width
	sy = c.Viewport.Y + (1-ndc.Y())*0.5*c.Viewport.Height
	return sx, sy, true
}

// ScreenToRay returns the world-space ray through a screen pixel.
func (c *Camera) ScreenToRay(sx, sy float64) Line {
	c.computeMatrices()
	nx := (sx-c.Viewport.X)/c.Viewport.Width*2 - 1
	ny := 1 - (sy-c.Viewport.Y)/c.Viewport.Height*2
	near := unproject(c.invViewProj, nx, ny, -1)
	far := unproject(c.invViewProj, nx, ny, 1)
	return Line{Origin: near, Direction: far.Sub(near).Normalize()}
}

func unproject(inv mgl64.Mat4, x, y, z float64) mgl64.Vec3 {
	v := inv.Mul4x1(mgl64.Vec4{x, y, z, 1})
	return v.Vec3().Mul(1 / v.W())
}

// DragEvent builds a drag event for a screen pixel.
func (c *Camera) DragEvent(sx, sy float64) DragEvent {
	return DragEvent{Line: c.ScreenToRay(sx, sy), X: sx, Y: sy}
}

// RasterScaleFactor returns the world-space size of one pixel at the depth
// of p.
func (c *Camera) RasterScaleFactor(p mgl64.Vec3) float64 {
	if c.Viewport.Height <= 0 {
		return 1
	}
	depth := p.Sub(c.Eye()).Len()
	return 2 * depth * math.Tan(radians(c.FovY)/2) / c.Viewport.Height
}

// FrameTo animates the camera target to p over duration seconds.
func (c *Camera) FrameTo(p mgl64.Vec3, duration float32, easeFn ease.TweenFunc) {
	if easeFn == nil {
		easeFn = ease.InOutQuad
	}
	c.frame = &frameAnim{}
	for i := range c.frame.tweens {
		c.frame.tweens[i] = gween.New(float32(c.Target[i]), float32(p[i]), duration, easeFn)
	}
}

// Framing reports whether a FrameTo animation is running.
func (c *Camera) Framing() bool { return c.frame != nil }

// Update advances the framing animation by dt seconds.
func (c *Camera) Update(dt float32) {
	if c.frame == nil {
		return
	}
	finished := true
	for i, tw := range c.frame.tweens {
		if c.frame.done[i] {
			continue
		}
		val, done := tw.Update(dt)
		c.Target[i] = float64(val)
		c.frame.done[i] = done
		finished = finished && done
	}
	if finished {
		c.frame = nil
	}
}

// Frame places the camera target on the anchor light of t, animated over
// duration seconds.
func (c *Camera) Frame(t *Tool, duration float32) {
	c.FrameTo(translation(t.GroupTransform()), duration, ease.OutCubic)
}
