package sim

import (
	"errors"
	"log/slog"
	gomath "math"
	"runtime"
	"sync"

	"github.com/Faultbox/drape/pkg/math"
)

// ErrNoSettings is returned when a cloth has no settings attached. The
// integrator refuses to run in that case; it is a setup defect, reported
// once rather than every frame.
var ErrNoSettings = errors.New("sim: cloth has no settings")

const (
	// distEpsilon guards divisions when two constrained points coincide.
	distEpsilon = 1e-6
	// massEpsilon keeps the wind term bounded for near-zero masses.
	massEpsilon = 1e-4
	// windForceCap bounds the wind magnitude fed into the force term.
	windForceCap = 60.0
)

// Integrator advances a cloth one frame at a time. It owns scratch state
// sized to the cloth it last saw; a point-count change triggers a one-time
// reallocation, not an error.
type Integrator struct {
	elapsed float64

	// windPhase holds one deterministic phase offset per point index so the
	// wind term is not visually synchronized across the grid.
	windPhase []float32

	settingsReported bool
}

// NewIntegrator returns an integrator with no cached state; scratch arrays
// are sized on first Step.
func NewIntegrator() *Integrator {
	return &Integrator{}
}

// Elapsed returns the accumulated simulation time in seconds.
func (it *Integrator) Elapsed() float64 { return it.elapsed }

// Step advances the cloth by dt seconds, running Substeps sub-steps of
// damping, force application, constraint relaxation, self-collision and
// velocity recovery. Anchored points are left untouched by every phase.
func (it *Integrator) Step(c *Cloth, dt float32) error {
	s := c.Settings
	if s == nil {
		if !it.settingsReported {
			slog.Error("cloth settings missing, integrator disabled")
			it.settingsReported = true
		}
		return ErrNoSettings
	}
	if dt <= 0 {
		return nil
	}

	if len(it.windPhase) != len(c.Points) {
		it.reallocScratch(len(c.Points))
	}

	substeps := s.Substeps
	if substeps < 1 {
		substeps = 1
	}
	iterations := s.ConstraintIterations
	if iterations < 1 {
		iterations = 1
	}
	subDT := dt / float32(substeps)

	for step := 0; step < substeps; step++ {
		it.elapsed += float64(subDT)
		it.applyDamping(c, s)
		it.applyForces(c, s, subDT)
		relaxConstraints(c, iterations)
		if s.SelfCollision && s.CollisionRadius > 0 {
			resolveSelfCollisions(c, s.CollisionRadius)
		}
		it.updateVelocities(c, s, subDT)
	}
	return nil
}

// reallocScratch rebuilds per-point scratch state after a count change.
func (it *Integrator) reallocScratch(n int) {
	it.windPhase = make([]float32, n)
	for i := range it.windPhase {
		// Golden-ratio stride spreads phases over the whole period without
		// adjacent indices clustering.
		it.windPhase[i] = float32(gomath.Mod(float64(i)*2.399963, 2*gomath.Pi))
	}
}

// applyDamping scales velocities down and records the sub-step's previous
// positions. Pure per-point pass, run in parallel.
func (it *Integrator) applyDamping(c *Cloth, s *Settings) {
	factor := 1 - s.Damping
	if factor < 0 {
		factor = 0
	}
	parallelFor(len(c.Points), func(start, end int) {
		for i := start; i < end; i++ {
			p := &c.Points[i]
			if p.Anchored {
				continue
			}
			p.Velocity = p.Velocity.Scale(factor)
			p.PrevPosition = p.Position
		}
	})
}

// applyForces integrates gravity and wind into velocity, clamps it, and
// advances positions. Pure per-point pass, run in parallel.
func (it *Integrator) applyForces(c *Cloth, s *Settings, subDT float32) {
	windDir := s.WindDirection.Normalize()
	windMag := s.WindMagnitude
	if windMag > windForceCap {
		windMag = windForceCap
	}
	t := it.elapsed

	parallelFor(len(c.Points), func(start, end int) {
		for i := start; i < end; i++ {
			p := &c.Points[i]
			if p.Anchored {
				continue
			}

			accel := math.Vec3{Y: -s.Gravity}
			if windMag > 0 {
				mass := p.Mass
				if mass < massEpsilon {
					mass = massEpsilon
				}
				gust := it.windNoise(t, i)
				accel = accel.Add(windDir.Scale(windMag * gust / mass))
			}

			p.Velocity = p.Velocity.Add(accel.Scale(subDT)).ClampLength(s.MaxVelocity)
			p.Position = p.Position.Add(p.Velocity.Scale(subDT))
		}
	})
}

// windNoise is the smooth pseudo-periodic per-point factor that breaks up
// uniform wind motion. Deterministic given elapsed time and point index.
func (it *Integrator) windNoise(t float64, i int) float32 {
	phase := float64(it.windPhase[i])
	w := 0.6 + 0.3*gomath.Sin(t*1.7+phase) + 0.1*gomath.Sin(t*4.3+phase*2.1)
	return float32(w)
}

// relaxConstraints runs the iterative spring solver. Springs are processed
// serially within an iteration (Gauss-Seidel) so results are deterministic;
// the correction is mass-ratio weighted and distributed across iterations.
func relaxConstraints(c *Cloth, iterations int) {
	invIter := 1 / float32(iterations)
	for iter := 0; iter < iterations; iter++ {
		for si := range c.Springs {
			sp := &c.Springs[si]
			pa := &c.Points[sp.A]
			pb := &c.Points[sp.B]
			if pa.Anchored && pb.Anchored {
				continue
			}

			delta := pb.Position.Sub(pa.Position)
			dist := delta.Length()
			if dist < distEpsilon {
				continue
			}

			correction := dist - sp.RestLength
			stretch := correction / sp.RestLength
			if stretch < 0 {
				stretch = -stretch
			}
			stiffness := sp.Stiffness * (1 + stretch*0.5)
			if stiffness > 1 {
				stiffness = 1
			}

			move := delta.Scale(correction / dist * stiffness * invIter)
			switch {
			case pa.Anchored:
				pb.Position = pb.Position.Sub(move)
			case pb.Anchored:
				pa.Position = pa.Position.Add(move)
			default:
				total := pa.Mass + pb.Mass
				pa.Position = pa.Position.Add(move.Scale(pb.Mass / total))
				pb.Position = pb.Position.Sub(move.Scale(pa.Mass / total))
			}
		}
	}
}

// updateVelocities recovers velocity from the sub-step's positional change.
// Pure per-point pass, run in parallel.
func (it *Integrator) updateVelocities(c *Cloth, s *Settings, subDT float32) {
	invDT := 1 / subDT
	parallelFor(len(c.Points), func(start, end int) {
		for i := start; i < end; i++ {
			p := &c.Points[i]
			if p.Anchored {
				continue
			}
			p.Velocity = p.Position.Sub(p.PrevPosition).Scale(invDT).ClampLength(s.MaxVelocity)
		}
	})
}

// parallelSplitThreshold is the point count below which a pass runs inline;
// goroutine fan-out costs more than it saves on small grids.
const parallelSplitThreshold = 2048

// parallelFor splits [0,n) across worker goroutines and waits for all of
// them, giving each phase a full barrier before the next begins.
func parallelFor(n int, fn func(start, end int)) {
	workers := runtime.GOMAXPROCS(0)
	if n < parallelSplitThreshold || workers < 2 {
		fn(0, n)
		return
	}
	if workers > n {
		workers = n
	}
	chunk := (n + workers - 1) / workers

	var wg sync.WaitGroup
	for start := 0; start < n; start += chunk {
		end := start + chunk
		if end > n {
			end = n
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			fn(start, end)
		}(start, end)
	}
	wg.Wait()
}
