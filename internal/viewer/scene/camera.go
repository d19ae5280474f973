// Package scene holds the GL-free parts of the viewer: the orbit camera and
// the vertex data built from a fragment.
package scene

import (
	gomath "math"

	"github.com/Faultbox/meshbridge/pkg/math"
)

// OrbitCamera orbits around a center point.
type OrbitCamera struct {
	Center math.Vec3

	// Spherical coordinates
	Distance float32
	Pitch    float32 // Radians above the XZ plane
	Yaw      float32 // Radians around Y

	MinDistance float32
	MaxDistance float32
	MinPitch    float32
	MaxPitch    float32

	DragSensitivity float32
	ZoomSensitivity float32

	home framing
}

// framing is what Reset returns to.
type framing struct {
	Center   math.Vec3
	Distance float32
	Pitch    float32
	Yaw      float32
}

// NewOrbitCamera creates an orbit camera framing the unit cube.
func NewOrbitCamera() *OrbitCamera {
	c := &OrbitCamera{
		MinPitch:        -1.5,
		MaxPitch:        1.5,
		DragSensitivity: 0.005,
		ZoomSensitivity: 0.1,
	}
	c.FitToBounds(math.Vec3{X: -0.5, Y: -0.5, Z: -0.5}, math.Vec3{X: 0.5, Y: 0.5, Z: 0.5})
	return c
}

// Position returns the camera position in world space.
func (c *OrbitCamera) Position() math.Vec3 {
	sinP, cosP := gomath.Sincos(float64(c.Pitch))
	sinY, cosY := gomath.Sincos(float64(c.Yaw))

	return c.Center.Add(math.Vec3{
		X: c.Distance * float32(cosP*sinY),
		Y: c.Distance * float32(sinP),
		Z: c.Distance * float32(cosP*cosY),
	})
}

// ViewMatrix returns the view matrix for this camera.
func (c *OrbitCamera) ViewMatrix() math.Mat4 {
	return math.LookAt(c.Position(), c.Center, math.Vec3{Y: 1})
}

// HandleDrag updates rotation from a mouse drag delta in pixels.
func (c *OrbitCamera) HandleDrag(deltaX, deltaY float32) {
	c.Yaw -= deltaX * c.DragSensitivity
	c.Pitch = min(max(c.Pitch+deltaY*c.DragSensitivity, c.MinPitch), c.MaxPitch)
}

// HandleZoom updates distance from a scroll wheel delta.
func (c *OrbitCamera) HandleZoom(delta float32) {
	c.Distance -= delta * c.Distance * c.ZoomSensitivity
	c.Distance = min(max(c.Distance, c.MinDistance), c.MaxDistance)
}

// FitToBounds frames the box lo..hi and makes that framing the one Reset
// returns to.
func (c *OrbitCamera) FitToBounds(lo, hi math.Vec3) {
	radius := hi.Sub(lo).Length() / 2
	if radius == 0 {
		radius = 1
	}

	c.Center = lo.Add(hi).Scale(0.5)
	c.Distance = radius * 3
	c.MinDistance = radius * 0.05
	c.MaxDistance = radius * 50
	c.Pitch = 0.5
	c.Yaw = 0.6

	c.home = framing{Center: c.Center, Distance: c.Distance, Pitch: c.Pitch, Yaw: c.Yaw}
}

// Reset returns to the last fitted framing.
func (c *OrbitCamera) Reset() {
	c.Center = c.home.Center
	c.Distance = c.home.Distance
	c.Pitch = c.home.Pitch
	c.Yaw = c.home.Yaw
}

// ClipPlanes returns near and far planes that keep the framed mesh visible
// at any zoom.
func (c *OrbitCamera) ClipPlanes() (near, far float32) {
	return c.MinDistance * 0.5, c.MaxDistance * 2
}
