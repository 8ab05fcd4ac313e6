// Package session wires the cloth store, integrator, gust generator and mesh
// reconstruction engine into one steppable unit shared by the viewer and the
// streaming server.
package session

import (
	"fmt"

	"github.com/Faultbox/drape/internal/config"
	"github.com/Faultbox/drape/internal/mesh"
	"github.com/Faultbox/drape/internal/sim"
	"github.com/Faultbox/drape/pkg/math"
)

// Session owns one cloth and everything needed to advance and mesh it.
type Session struct {
	cfg *config.Config

	cloth      *sim.Cloth
	integrator *sim.Integrator
	gust       *sim.GustGenerator
	recon      *mesh.Reconstructor

	windEnabled bool
	positions   []math.Vec3
}

// New builds a session from the loaded configuration.
func New(cfg *config.Config) (*Session, error) {
	s := &Session{
		cfg:         cfg,
		integrator:  sim.NewIntegrator(),
		recon:       mesh.NewReconstructor(cfg.Graphics.DoubleSided),
		windEnabled: cfg.Wind.Enabled,
	}

	gust := sim.NewGustGenerator(cfg.Wind.Seed)
	gust.MaxMagnitude = cfg.Wind.MaxMagnitude
	s.gust = gust

	if err := s.Reset(); err != nil {
		return nil, err
	}
	return s, nil
}

// Reset rebuilds the cloth grid from configuration, discarding all point state.
func (s *Session) Reset() error {
	grid, err := gridConfig(s.cfg)
	if err != nil {
		return err
	}
	cloth, err := sim.BuildGrid(grid, settings(s.cfg))
	if err != nil {
		return err
	}
	s.cloth = cloth
	return nil
}

// Step advances the simulation by dt seconds and reconstructs the render
// surface. The returned surface is owned by the session and valid until the
// next Step or Reset.
func (s *Session) Step(dt float32) (*mesh.Surface, error) {
	if s.windEnabled {
		s.gust.Update(s.cloth.Settings, dt)
	} else {
		s.cloth.Settings.WindMagnitude = 0
	}

	if err := s.integrator.Step(s.cloth, dt); err != nil {
		return nil, err
	}

	s.positions = s.cloth.Positions(s.positions)
	return s.recon.Rebuild(s.positions)
}

// Cloth exposes the live point store for input injection.
func (s *Session) Cloth() *sim.Cloth { return s.cloth }

// WindEnabled reports whether the gust generator is driving the wind fields.
func (s *Session) WindEnabled() bool { return s.windEnabled }

// SetWind enables or disables the gust generator. Disabling zeroes the wind
// magnitude immediately so the cloth settles instead of holding the last gust.
func (s *Session) SetWind(enabled bool) {
	s.windEnabled = enabled
	if !enabled {
		s.cloth.Settings.WindMagnitude = 0
	}
}

// ToggleWind flips the wind state and returns the new value.
func (s *Session) ToggleWind() bool {
	s.SetWind(!s.windEnabled)
	return s.windEnabled
}

// SetCollision enables or disables approximate self-collision.
func (s *Session) SetCollision(enabled bool) {
	s.cloth.Settings.SelfCollision = enabled
}

// ReleaseAnchors frees every pinned point so the cloth drops.
func (s *Session) ReleaseAnchors() {
	for i := range s.cloth.Points {
		s.cloth.Points[i].Anchored = false
	}
}

// Drag moves one point to the given position, bypassing the solver. Used for
// pointer interaction.
func (s *Session) Drag(index int, p math.Vec3) {
	if index < 0 || index >= len(s.cloth.Points) {
		return
	}
	s.cloth.SetPosition(index, p)
}

// PickPoint returns the index of the cloth point closest to the ray from
// origin along dir, or -1 if no point lies within maxDist of the ray. dir
// must be normalized.
func (s *Session) PickPoint(origin, dir math.Vec3, maxDist float32) int {
	best := -1
	bestSq := maxDist * maxDist
	for i := range s.cloth.Points {
		toPoint := s.cloth.Points[i].Position.Sub(origin)
		along := toPoint.Dot(dir)
		if along < 0 {
			continue
		}
		perp := toPoint.Sub(dir.Scale(along))
		if dSq := perp.LengthSq(); dSq < bestSq {
			bestSq = dSq
			best = i
		}
	}
	return best
}

func gridConfig(cfg *config.Config) (sim.GridConfig, error) {
	anchors, err := parseAnchors(cfg.Cloth.Anchors)
	if err != nil {
		return sim.GridConfig{}, err
	}

	// Center the grid on the Y axis with the top row at +half height.
	halfW := float32(cfg.Cloth.Cols-1) * cfg.Cloth.Spacing / 2
	halfH := float32(cfg.Cloth.Rows-1) * cfg.Cloth.Spacing / 2

	return sim.GridConfig{
		Cols:      cfg.Cloth.Cols,
		Rows:      cfg.Cloth.Rows,
		Spacing:   cfg.Cloth.Spacing,
		Origin:    math.Vec3{X: -halfW, Y: halfH},
		Mass:      cfg.Cloth.Mass,
		Stiffness: cfg.Cloth.Stiffness,
		Anchors:   anchors,
	}, nil
}

func settings(cfg *config.Config) *sim.Settings {
	return &sim.Settings{
		Gravity:              cfg.Physics.Gravity,
		Substeps:             cfg.Physics.Substeps,
		ConstraintIterations: cfg.Physics.ConstraintIterations,
		Damping:              cfg.Physics.Damping,
		WindDirection:        math.Vec3{X: 1, Z: 0.4},
		WindMagnitude:        0,
		SelfCollision:        cfg.Collision.Enabled,
		CollisionRadius:      cfg.Collision.Radius,
		MaxVelocity:          cfg.Physics.MaxVelocity,
	}
}

func parseAnchors(mode string) (sim.AnchorMode, error) {
	switch mode {
	case "", "none":
		return sim.AnchorNone, nil
	case "corners":
		return sim.AnchorTopCorners, nil
	case "top_row":
		return sim.AnchorTopRow, nil
	default:
		return sim.AnchorNone, fmt.Errorf("unknown anchor mode %q", mode)
	}
}
