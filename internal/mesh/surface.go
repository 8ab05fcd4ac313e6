// Package mesh reconstructs a renderable surface from the simulation's point
// cloud: it infers the logical grid, reorders points into row-major cells,
// smooths the boundary and synthesizes per-vertex normals.
package mesh

import (
	"errors"
	"fmt"

	"github.com/Faultbox/drape/pkg/math"
)

// ErrGridUnresolved is returned when no positive grid dimensions can be
// derived from the point set. The frame's reconstruction is skipped and
// retried on the next call.
var ErrGridUnresolved = errors.New("mesh: could not derive grid dimensions")

// Surface is the renderable output buffer set: row-major width x height
// positions with parallel normals and UVs, plus a triangle index list.
// Positions and Normals are regenerated every frame; UVs and Indices are
// generated once when the grid size is determined.
type Surface struct {
	Width, Height int
	Positions     []math.Vec3
	Normals       []math.Vec3
	UVs           []math.Vec2
	Indices       []uint32
}

// TriangleCount returns the number of triangles in the index list.
func (s *Surface) TriangleCount() int { return len(s.Indices) / 3 }

// Reconstructor owns the grid-ordered scratch buffers and the output
// surface. It is not safe for concurrent use; one instance serves one cloth.
type Reconstructor struct {
	doubleSided bool

	initialized bool
	pointCount  int
	width       int
	height      int

	grid     []math.Vec3 // row-major working copy, never aliased with input
	filled   []bool
	snapshot []math.Vec3 // smoothing pass snapshot

	surface Surface
}

// NewReconstructor returns an engine that emits front faces only, or a
// mirrored back-face index set as well when doubleSided is set.
func NewReconstructor(doubleSided bool) *Reconstructor {
	return &Reconstructor{doubleSided: doubleSided}
}

// Rebuild regenerates the surface from an unordered point snapshot. The
// input is read-only; the returned surface stays owned by the reconstructor
// and is overwritten by the next call.
func (r *Reconstructor) Rebuild(points []math.Vec3) (*Surface, error) {
	if len(points) != r.pointCount {
		// Topology changed under us: drop everything and re-infer.
		r.initialized = false
	}

	if !r.initialized {
		if err := r.initialize(points); err != nil {
			return nil, err
		}
	}

	bounds := computeBounds(points)
	r.assignToCells(points, bounds)
	r.nudgeBorders(bounds)
	smoothEdges(r.grid, r.snapshot, r.width, r.height)

	copy(r.surface.Positions, r.grid)
	computeNormals(r.grid, r.width, r.height, r.surface.Normals)

	return &r.surface, nil
}

// initialize infers the grid dimensions and sizes every buffer, including
// the one-time UV layout and triangle index list.
func (r *Reconstructor) initialize(points []math.Vec3) error {
	w, h, err := inferGridSize(points)
	if err != nil {
		return err
	}

	r.width, r.height = w, h
	r.pointCount = len(points)
	cells := w * h
	r.grid = make([]math.Vec3, cells)
	r.filled = make([]bool, cells)
	r.snapshot = make([]math.Vec3, cells)

	r.surface = Surface{
		Width:     w,
		Height:    h,
		Positions: make([]math.Vec3, cells),
		Normals:   make([]math.Vec3, cells),
		UVs:       buildUVs(w, h),
		Indices:   buildIndices(w, h, r.doubleSided),
	}

	r.initialized = true
	return nil
}

// inferGridSize derives width and height from the point layout: axis extents
// divided by the smallest non-zero axis spacing. When that estimate does not
// multiply out to the point count it falls back to the largest integer
// factor pair, then to a square of side ceil(sqrt(n)).
func inferGridSize(points []math.Vec3) (int, int, error) {
	n := len(points)
	if n < 4 {
		return 0, 0, fmt.Errorf("%w: %d points", ErrGridUnresolved, n)
	}

	b := computeBounds(points)
	minDX := minAxisGap(points, func(v math.Vec3) float32 { return v.X })
	minDY := minAxisGap(points, func(v math.Vec3) float32 { return v.Y })

	var w, h int
	if minDX > 0 && minDY > 0 {
		w = int(roundf((b.maxX-b.minX)/minDX)) + 1
		h = int(roundf((b.maxY-b.minY)/minDY)) + 1
	}

	if w < 1 || h < 1 || w*h != n {
		w, h = factorPair(n)
	}
	if w < 1 || h < 1 {
		side := int(ceilSqrt(n))
		w, h = side, side
	}
	if w < 1 || h < 1 {
		return 0, 0, fmt.Errorf("%w: %d points", ErrGridUnresolved, n)
	}
	return w, h, nil
}

// factorPair returns the factor pair of n closest to square, searching
// divisors downward from floor(sqrt(n)). Returns (0,0) if n < 1.
func factorPair(n int) (int, int) {
	if n < 1 {
		return 0, 0
	}
	for d := int(floorSqrt(n)); d >= 1; d-- {
		if n%d == 0 {
			return n / d, d
		}
	}
	return 0, 0
}

func buildUVs(w, h int) []math.Vec2 {
	uvs := make([]math.Vec2, 0, w*h)
	for row := 0; row < h; row++ {
		for col := 0; col < w; col++ {
			uvs = append(uvs, math.Vec2{
				X: float32(col) / float32(w-1),
				Y: float32(row) / float32(h-1),
			})
		}
	}
	return uvs
}

// buildIndices emits two triangles per grid quad, wound counter-clockwise as
// seen from the rest-plane normal (+Z). With doubleSided set, a mirrored
// winding set is appended so the back of the cloth renders too.
func buildIndices(w, h int, doubleSided bool) []uint32 {
	count := 2 * (w - 1) * (h - 1) * 3
	if doubleSided {
		count *= 2
	}
	indices := make([]uint32, 0, count)

	for row := 0; row < h-1; row++ {
		for col := 0; col < w-1; col++ {
			i0 := uint32(row*w + col)
			i1 := i0 + 1
			i2 := i0 + uint32(w)
			i3 := i2 + 1
			indices = append(indices, i0, i3, i1, i0, i2, i3)
		}
	}

	if doubleSided {
		front := len(indices)
		for i := 0; i < front; i += 3 {
			indices = append(indices, indices[i], indices[i+2], indices[i+1])
		}
	}
	return indices
}
