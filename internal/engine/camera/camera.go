// Package camera provides the orbit camera used by the cloth viewer.
package camera

import (
	gomath "math"

	"github.com/Faultbox/drape/pkg/math"
)

// OrbitCamera orbits around a center point.
type OrbitCamera struct {
	Center math.Vec3

	// Spherical coordinates
	Distance  float32 // Distance from center
	RotationX float32 // Pitch (vertical angle, radians)
	RotationY float32 // Yaw (horizontal angle, radians)

	// Constraints
	MinDistance float32
	MaxDistance float32
	MinPitch    float32
	MaxPitch    float32

	// Sensitivity
	DragSensitivity float32
	ZoomSensitivity float32

	// Projection
	FovY float32
	Near float32
	Far  float32
}

// NewOrbitCamera creates an orbit camera framing a cloth a few units across.
func NewOrbitCamera() *OrbitCamera {
	return &OrbitCamera{
		Distance:        4.0,
		RotationX:       0.15,
		RotationY:       0.0,
		MinDistance:     0.5,
		MaxDistance:     30.0,
		MinPitch:        -1.4,
		MaxPitch:        1.4,
		DragSensitivity: 0.005,
		ZoomSensitivity: 0.1,
		FovY:            gomath.Pi / 4,
		Near:            0.05,
		Far:             100.0,
	}
}

// Position returns the camera position in world space.
func (c *OrbitCamera) Position() math.Vec3 {
	x := c.Distance * float32(gomath.Cos(float64(c.RotationX))*gomath.Sin(float64(c.RotationY)))
	y := c.Distance * float32(gomath.Sin(float64(c.RotationX)))
	z := c.Distance * float32(gomath.Cos(float64(c.RotationX))*gomath.Cos(float64(c.RotationY)))

	return c.Center.Add(math.Vec3{X: x, Y: y, Z: z})
}

// ViewMatrix returns the view matrix for this camera.
func (c *OrbitCamera) ViewMatrix() math.Mat4 {
	return math.LookAt(c.Position(), c.Center, math.Vec3{Y: 1})
}

// ProjectionMatrix returns the perspective projection for the given aspect ratio.
func (c *OrbitCamera) ProjectionMatrix(aspect float32) math.Mat4 {
	return math.Perspective(c.FovY, aspect, c.Near, c.Far)
}

// HandleDrag updates rotation based on mouse drag delta.
func (c *OrbitCamera) HandleDrag(deltaX, deltaY float32) {
	c.RotationY -= deltaX * c.DragSensitivity
	c.RotationX += deltaY * c.DragSensitivity

	if c.RotationX < c.MinPitch {
		c.RotationX = c.MinPitch
	}
	if c.RotationX > c.MaxPitch {
		c.RotationX = c.MaxPitch
	}
}

// HandleZoom updates distance based on scroll wheel delta.
func (c *OrbitCamera) HandleZoom(delta float32) {
	c.Distance -= delta * c.Distance * c.ZoomSensitivity
	if c.Distance < c.MinDistance {
		c.Distance = c.MinDistance
	}
	if c.Distance > c.MaxDistance {
		c.Distance = c.MaxDistance
	}
}

// Ray unprojects a screen pixel into a world-space ray. Returns the camera
// position as origin and a normalized direction through the pixel.
func (c *OrbitCamera) Ray(px, py, width, height int, aspect float32) (origin, dir math.Vec3) {
	origin = c.Position()

	// Pixel to normalized device coordinates, Y flipped.
	ndcX := 2*float32(px)/float32(width) - 1
	ndcY := 1 - 2*float32(py)/float32(height)

	inv := c.ProjectionMatrix(aspect).Mul(c.ViewMatrix()).Inverse()

	near := inv.MulVec4(math.Vec4{ndcX, ndcY, -1, 1})
	far := inv.MulVec4(math.Vec4{ndcX, ndcY, 1, 1})

	nearPt := math.Vec3{X: near[0] / near[3], Y: near[1] / near[3], Z: near[2] / near[3]}
	farPt := math.Vec3{X: far[0] / far[3], Y: far[1] / far[3], Z: far[2] / far[3]}

	dir = farPt.Sub(nearPt).Normalize()
	return origin, dir
}
