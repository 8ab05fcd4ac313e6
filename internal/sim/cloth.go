// Package sim implements the cloth simulation: the point/spring store and the
// sub-stepped Verlet integrator that advances it every frame.
package sim

import (
	"github.com/Faultbox/drape/pkg/math"
)

// Point is one simulated mass node. PrevPosition carries the implicit Verlet
// velocity; Velocity is the explicit value used by the sub-stepped integrator.
type Point struct {
	Position     math.Vec3
	PrevPosition math.Vec3
	Velocity     math.Vec3
	Anchored     bool
	Mass         float32
}

// Spring is a distance constraint between two points. It references points by
// index and does not own them. Immutable after construction.
type Spring struct {
	A, B       int
	RestLength float32
	Stiffness  float32
}

// Settings holds the per-frame simulation parameters. The wind fields are
// mutated between frames by an external source (see GustGenerator).
type Settings struct {
	Gravity              float32
	Substeps             int
	ConstraintIterations int
	Damping              float32

	WindDirection math.Vec3
	WindMagnitude float32

	SelfCollision   bool
	CollisionRadius float32

	// MaxVelocity clamps point speed after force application and after the
	// velocity recompute, as a blow-up safeguard.
	MaxVelocity float32
}

// DefaultSettings returns simulation settings suitable for a medium grid.
func DefaultSettings() *Settings {
	return &Settings{
		Gravity:              9.81,
		Substeps:             3,
		ConstraintIterations: 4,
		Damping:              0.02,
		WindDirection:        math.Vec3{X: 1, Z: 0.4},
		WindMagnitude:        0,
		SelfCollision:        false,
		CollisionRadius:      0.08,
		MaxVelocity:          40,
	}
}

// Cloth is a single cloth instance: it exclusively owns its points, springs
// and settings, and is passed explicitly to the integrator and the mesh
// reconstruction engine. Topology is fixed after construction; only point
// state changes during a run.
type Cloth struct {
	Points   []Point
	Springs  []Spring
	Settings *Settings
}

// Positions appends every point position in index order to dst and returns
// the result. The slice handed out is a copy; the mesh engine never aliases
// the live store.
func (c *Cloth) Positions(dst []math.Vec3) []math.Vec3 {
	dst = dst[:0]
	for i := range c.Points {
		dst = append(dst, c.Points[i].Position)
	}
	return dst
}

// SetPosition overwrites a point's position directly, bypassing forces and
// constraints. This is the injection path for external actors (pointer
// dragging, scripted perturbation) and works on anchored points too.
func (c *Cloth) SetPosition(i int, p math.Vec3) {
	c.Points[i].Position = p
	c.Points[i].PrevPosition = p
	c.Points[i].Velocity = math.Vec3{}
}
