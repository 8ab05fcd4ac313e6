package sim

import (
	gomath "math"
	"math/rand"

	"github.com/Faultbox/drape/pkg/math"
)

// GustGenerator is the external wind source: between frames it retargets the
// wind direction and magnitude at random intervals and eases the cloth
// settings toward the current target, so wind changes read as gusts rather
// than steps. Deterministic for a fixed seed.
type GustGenerator struct {
	rng *rand.Rand

	MaxMagnitude float32
	// RetargetMin/Max bound the random interval between target changes.
	RetargetMin float32
	RetargetMax float32
	// Ease controls how fast settings approach the target, per second.
	Ease float32

	timer     float32
	targetDir math.Vec3
	targetMag float32
}

// NewGustGenerator returns a generator with moderate gusts.
func NewGustGenerator(seed int64) *GustGenerator {
	g := &GustGenerator{
		rng:          rand.New(rand.NewSource(seed)),
		MaxMagnitude: 18,
		RetargetMin:  1.5,
		RetargetMax:  4.5,
		Ease:         1.2,
	}
	g.retarget()
	return g
}

// Update advances the generator by dt seconds and writes the eased wind
// vector into the settings. Call once per frame, between integrator steps.
func (g *GustGenerator) Update(s *Settings, dt float32) {
	g.timer -= dt
	if g.timer <= 0 {
		g.retarget()
	}

	t := g.Ease * dt
	if t > 1 {
		t = 1
	}
	s.WindDirection = s.WindDirection.Lerp(g.targetDir, t)
	s.WindMagnitude += (g.targetMag - s.WindMagnitude) * t
}

func (g *GustGenerator) retarget() {
	g.timer = g.RetargetMin + g.rng.Float32()*(g.RetargetMax-g.RetargetMin)

	// Mostly horizontal wind with a slight vertical component.
	yaw := g.rng.Float64() * 2 * gomath.Pi
	g.targetDir = math.Vec3{
		X: float32(gomath.Cos(yaw)),
		Y: (g.rng.Float32() - 0.5) * 0.4,
		Z: float32(gomath.Sin(yaw)),
	}.Normalize()
	g.targetMag = g.rng.Float32() * g.MaxMagnitude
}
