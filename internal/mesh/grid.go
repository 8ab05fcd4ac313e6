package mesh

import (
	gomath "math"
	"sort"

	"github.com/Faultbox/drape/pkg/math"
)

// axisGapEpsilon separates "same grid line" jitter from a real spacing step
// when scanning sorted axis coordinates.
const axisGapEpsilon = 1e-5

type bounds struct {
	minX, maxX float32
	minY, maxY float32
}

func computeBounds(points []math.Vec3) bounds {
	b := bounds{
		minX: points[0].X, maxX: points[0].X,
		minY: points[0].Y, maxY: points[0].Y,
	}
	for _, p := range points[1:] {
		if p.X < b.minX {
			b.minX = p.X
		}
		if p.X > b.maxX {
			b.maxX = p.X
		}
		if p.Y < b.minY {
			b.minY = p.Y
		}
		if p.Y > b.maxY {
			b.maxY = p.Y
		}
	}
	return b
}

// minAxisGap returns the smallest non-zero pairwise distance along one axis.
// Sorting makes the minimum pairwise gap the minimum adjacent gap.
func minAxisGap(points []math.Vec3, axis func(math.Vec3) float32) float32 {
	vals := make([]float32, len(points))
	for i, p := range points {
		vals[i] = axis(p)
	}
	sort.Slice(vals, func(i, j int) bool { return vals[i] < vals[j] })

	min := float32(0)
	for i := 1; i < len(vals); i++ {
		gap := vals[i] - vals[i-1]
		if gap <= axisGapEpsilon {
			continue
		}
		if min == 0 || gap < min {
			min = gap
		}
	}
	return min
}

// cellIdeal is the regular-grid position of a cell inside the bounding box,
// keeping the given depth. Row 0 maps to the top edge (max Y).
func (r *Reconstructor) cellIdeal(col, row int, b bounds, z float32) math.Vec3 {
	var fx, fy float32
	if r.width > 1 {
		fx = float32(col) / float32(r.width-1)
	}
	if r.height > 1 {
		fy = float32(row) / float32(r.height-1)
	}
	return math.Vec3{
		X: b.minX + fx*(b.maxX-b.minX),
		Y: b.maxY - fy*(b.maxY-b.minY),
		Z: z,
	}
}

// assignToCells maps every point to its nearest grid cell. Cell collisions
// keep the point closest to the cell's ideal center and displace the other
// for re-resolution; cells still empty afterwards copy their nearest filled
// neighbour.
func (r *Reconstructor) assignToCells(points []math.Vec3, b bounds) {
	w, h := r.width, r.height
	for i := range r.filled {
		r.filled[i] = false
	}

	rangeX := b.maxX - b.minX
	rangeY := b.maxY - b.minY

	var displaced []math.Vec3
	for _, p := range points {
		col, row := 0, 0
		if rangeX > 0 {
			col = clampInt(int(roundf((p.X-b.minX)/rangeX*float32(w-1))), 0, w-1)
		}
		if rangeY > 0 {
			row = clampInt(int(roundf((b.maxY-p.Y)/rangeY*float32(h-1))), 0, h-1)
		}
		cell := row*w + col

		if !r.filled[cell] {
			r.grid[cell] = p
			r.filled[cell] = true
			continue
		}

		// Keep whichever point sits closer to the cell's ideal center.
		ideal := r.cellIdeal(col, row, b, 0)
		cur := r.grid[cell]
		dNew := planarDistSq(p, ideal)
		dCur := planarDistSq(cur, ideal)
		if dNew < dCur {
			r.grid[cell] = p
			displaced = append(displaced, cur)
		} else {
			displaced = append(displaced, p)
		}
	}

	// Displaced points take the nearest still-empty cell around their target.
	for _, p := range displaced {
		col, row := 0, 0
		if rangeX > 0 {
			col = clampInt(int(roundf((p.X-b.minX)/rangeX*float32(w-1))), 0, w-1)
		}
		if rangeY > 0 {
			row = clampInt(int(roundf((b.maxY-p.Y)/rangeY*float32(h-1))), 0, h-1)
		}
		if cell, ok := r.nearestMatchingCell(col, row, false); ok {
			r.grid[cell] = p
			r.filled[cell] = true
		}
		// No empty cell left: the point is dropped for this frame.
	}

	// Any hole copies its nearest filled neighbour's point data.
	for cell := range r.filled {
		if r.filled[cell] {
			continue
		}
		if src, ok := r.nearestMatchingCell(cell%w, cell/w, true); ok {
			r.grid[cell] = r.grid[src]
		}
	}
}

// nearestMatchingCell walks outward in Chebyshev rings from (col,row) and
// returns the ring cell with the given filled state closest in Euclidean
// grid distance. The search starts at the center cell itself when wantFilled
// is false.
func (r *Reconstructor) nearestMatchingCell(col, row int, wantFilled bool) (int, bool) {
	w, h := r.width, r.height
	maxRing := w
	if h > maxRing {
		maxRing = h
	}

	start := 0
	if wantFilled {
		start = 1 // a hole never matches itself
	}
	for ring := start; ring <= maxRing; ring++ {
		best := -1
		bestDist := 0
		visit := func(c, rw int) {
			if c < 0 || c >= w || rw < 0 || rw >= h {
				return
			}
			cell := rw*w + c
			if r.filled[cell] != wantFilled {
				return
			}
			dc, dr := c-col, rw-row
			d := dc*dc + dr*dr
			if best < 0 || d < bestDist {
				best = cell
				bestDist = d
			}
		}

		if ring == 0 {
			visit(col, row)
		} else {
			for d := -ring; d <= ring; d++ {
				visit(col+d, row-ring)
				visit(col+d, row+ring)
			}
			for d := -ring + 1; d < ring; d++ {
				visit(col-ring, row+d)
				visit(col+ring, row+d)
			}
		}
		if best >= 0 {
			return best, true
		}
	}
	return 0, false
}

// borderNudge is how far border cells are pulled toward their ideal
// regular-grid position, counteracting integrator drift at the boundary.
const borderNudge = 0.2

// nudgeBorders pulls border cells toward the regular lattice in the plane
// while keeping their simulated depth; interior cells keep their true
// simulated position.
func (r *Reconstructor) nudgeBorders(b bounds) {
	w, h := r.width, r.height
	for row := 0; row < h; row++ {
		for col := 0; col < w; col++ {
			if row != 0 && row != h-1 && col != 0 && col != w-1 {
				continue
			}
			cell := row*w + col
			ideal := r.cellIdeal(col, row, b, r.grid[cell].Z)
			r.grid[cell] = r.grid[cell].Lerp(ideal, borderNudge)
		}
	}
}

func planarDistSq(p, q math.Vec3) float32 {
	dx := p.X - q.X
	dy := p.Y - q.Y
	return dx*dx + dy*dy
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func roundf(v float32) float32 {
	return float32(gomath.Round(float64(v)))
}

func floorSqrt(n int) float64 {
	return gomath.Floor(gomath.Sqrt(float64(n)))
}

func ceilSqrt(n int) float64 {
	return gomath.Ceil(gomath.Sqrt(float64(n)))
}
