package sim

import (
	"fmt"

	"github.com/Faultbox/drape/pkg/math"
)

// AnchorMode selects which points of a freshly built grid are pinned.
type AnchorMode int

const (
	// AnchorNone leaves every point free.
	AnchorNone AnchorMode = iota
	// AnchorTopCorners pins the two top corner points.
	AnchorTopCorners
	// AnchorTopRow pins the entire top row.
	AnchorTopRow
)

// GridConfig describes the initial cloth topology. It is consumed once at
// setup; the resulting topology never changes during a run.
type GridConfig struct {
	Cols, Rows int
	Spacing    float32
	Origin     math.Vec3
	Mass       float32
	Stiffness  float32
	Anchors    AnchorMode
}

// DefaultGridConfig returns a 24x16 grid hanging from its top row.
func DefaultGridConfig() GridConfig {
	return GridConfig{
		Cols:      24,
		Rows:      16,
		Spacing:   0.1,
		Mass:      1,
		Stiffness: 0.9,
		Anchors:   AnchorTopRow,
	}
}

// BuildGrid lays out a Cols x Rows grid of points in the XY plane (row 0 at
// the top, +X to the right, -Y downward) and connects it with structural,
// shear and bend springs. Shear springs get 95% of the structural stiffness
// and bend springs 80%, so diagonals and 2-hop constraints yield first.
func BuildGrid(cfg GridConfig, settings *Settings) (*Cloth, error) {
	if cfg.Cols < 2 || cfg.Rows < 2 {
		return nil, fmt.Errorf("grid must be at least 2x2, got %dx%d", cfg.Cols, cfg.Rows)
	}
	if cfg.Spacing <= 0 {
		return nil, fmt.Errorf("grid spacing must be positive, got %v", cfg.Spacing)
	}
	if cfg.Mass <= 0 {
		return nil, fmt.Errorf("point mass must be positive, got %v", cfg.Mass)
	}
	if cfg.Stiffness <= 0 || cfg.Stiffness > 1 {
		return nil, fmt.Errorf("stiffness must be in (0,1], got %v", cfg.Stiffness)
	}

	points := make([]Point, 0, cfg.Cols*cfg.Rows)
	for r := 0; r < cfg.Rows; r++ {
		for c := 0; c < cfg.Cols; c++ {
			pos := cfg.Origin.Add(math.Vec3{
				X: float32(c) * cfg.Spacing,
				Y: -float32(r) * cfg.Spacing,
			})
			points = append(points, Point{
				Position:     pos,
				PrevPosition: pos,
				Mass:         cfg.Mass,
				Anchored:     anchored(cfg, c, r),
			})
		}
	}

	idx := func(c, r int) int { return r*cfg.Cols + c }

	var springs []Spring
	link := func(a, b int, stiffness float32) {
		rest := points[a].Position.Distance(points[b].Position)
		springs = append(springs, Spring{A: a, B: b, RestLength: rest, Stiffness: stiffness})
	}

	shear := cfg.Stiffness * 0.95
	bend := cfg.Stiffness * 0.8
	for r := 0; r < cfg.Rows; r++ {
		for c := 0; c < cfg.Cols; c++ {
			i := idx(c, r)

			// Structural: direct right and down neighbours.
			if c+1 < cfg.Cols {
				link(i, idx(c+1, r), cfg.Stiffness)
			}
			if r+1 < cfg.Rows {
				link(i, idx(c, r+1), cfg.Stiffness)
			}

			// Shear: both diagonals of each cell.
			if c+1 < cfg.Cols && r+1 < cfg.Rows {
				link(i, idx(c+1, r+1), shear)
				link(idx(c+1, r), idx(c, r+1), shear)
			}

			// Bend: 2-hop neighbours resist folding.
			if c+2 < cfg.Cols {
				link(i, idx(c+2, r), bend)
			}
			if r+2 < cfg.Rows {
				link(i, idx(c, r+2), bend)
			}
		}
	}

	if settings == nil {
		settings = DefaultSettings()
	}
	return &Cloth{Points: points, Springs: springs, Settings: settings}, nil
}

func anchored(cfg GridConfig, c, r int) bool {
	switch cfg.Anchors {
	case AnchorTopCorners:
		return r == 0 && (c == 0 || c == cfg.Cols-1)
	case AnchorTopRow:
		return r == 0
	default:
		return false
	}
}
