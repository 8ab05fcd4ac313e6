package mesh

import (
	"github.com/Faultbox/drape/pkg/math"
)

const (
	// smoothPasses is the number of snapshot-based averaging passes over the
	// boundary. Each pass reads the previous pass's snapshot, so the result
	// does not depend on cell visit order.
	smoothPasses = 2

	// cornerSmoothFactor and edgeSmoothFactor scale the blend toward the
	// neighbour average, relative to an interior baseline of 1. Corners are
	// smoothed least so they keep their silhouette.
	cornerSmoothFactor = 0.3
	edgeSmoothFactor   = 0.5

	// interiorNeighbourWeight down-weights non-boundary neighbours so the
	// averaging follows the edge instead of pulling toward the interior.
	interiorNeighbourWeight = 0.4

	smoothDistEpsilon = 1e-4
)

// smoothEdges relaxes the boundary rows and columns of the grid with
// inverse-distance weighted neighbour averaging. Interior cells are left
// untouched.
func smoothEdges(grid, snapshot []math.Vec3, w, h int) {
	if w < 3 || h < 3 {
		return
	}

	isBoundary := func(col, row int) bool {
		return row == 0 || row == h-1 || col == 0 || col == w-1
	}
	isCorner := func(col, row int) bool {
		return (row == 0 || row == h-1) && (col == 0 || col == w-1)
	}

	for pass := 0; pass < smoothPasses; pass++ {
		copy(snapshot, grid)

		for row := 0; row < h; row++ {
			for col := 0; col < w; col++ {
				if !isBoundary(col, row) {
					continue
				}
				cell := row*w + col
				self := snapshot[cell]

				var sum math.Vec3
				var weight float32
				for dr := -1; dr <= 1; dr++ {
					for dc := -1; dc <= 1; dc++ {
						if dr == 0 && dc == 0 {
							continue
						}
						nc, nr := col+dc, row+dr
						if nc < 0 || nc >= w || nr < 0 || nr >= h {
							continue
						}
						npos := snapshot[nr*w+nc]
						wgt := 1 / (self.Distance(npos) + smoothDistEpsilon)
						if !isBoundary(nc, nr) {
							wgt *= interiorNeighbourWeight
						}
						sum = sum.Add(npos.Scale(wgt))
						weight += wgt
					}
				}
				if weight == 0 {
					continue
				}

				factor := float32(edgeSmoothFactor)
				if isCorner(col, row) {
					factor = cornerSmoothFactor
				}
				grid[cell] = self.Lerp(sum.Scale(1/weight), factor)
			}
		}
	}
}
