package mesh

import (
	"github.com/Faultbox/drape/pkg/math"
)

// restPlaneNormal is the default normal assigned to vertices whose
// accumulated normal stays degenerate: the cloth's rest plane faces +Z.
var restPlaneNormal = math.Vec3{Z: 1}

const degenerateNormalSq = 1e-12

// computeNormals fills out with area-weighted per-vertex normals for the
// row-major grid. The unnormalized cross product of each triangle carries
// twice its area, so summing raw cross products weights by area for free.
func computeNormals(grid []math.Vec3, w, h int, out []math.Vec3) {
	for i := range out {
		out[i] = math.Vec3{}
	}

	for row := 0; row < h-1; row++ {
		for col := 0; col < w-1; col++ {
			i0 := row*w + col
			i1 := i0 + 1
			i2 := i0 + w
			i3 := i2 + 1
			accumulateTriangle(grid, out, i0, i3, i1)
			accumulateTriangle(grid, out, i0, i2, i3)
		}
	}

	fixBoundaryNormals(grid, w, h, out)

	for i := range out {
		n := out[i]
		if !n.IsFinite() || n.LengthSq() < degenerateNormalSq {
			out[i] = restPlaneNormal
			continue
		}
		out[i] = n.Normalize()
	}
}

// accumulateTriangle adds the triangle's raw face normal to its three
// vertices, skipping degenerate or non-finite contributions.
func accumulateTriangle(grid []math.Vec3, out []math.Vec3, a, b, c int) {
	e1 := grid[b].Sub(grid[a])
	e2 := grid[c].Sub(grid[a])
	n := e1.Cross(e2)
	if !n.IsFinite() || n.LengthSq() < degenerateNormalSq {
		return
	}
	out[a] = out[a].Add(n)
	out[b] = out[b].Add(n)
	out[c] = out[c].Add(n)
}

// fixBoundaryNormals revisits boundary and corner vertices whose sum is
// still near zero (no quad contributed on one side) and synthesizes a
// normal from the available row and column neighbours.
func fixBoundaryNormals(grid []math.Vec3, w, h int, out []math.Vec3) {
	for row := 0; row < h; row++ {
		for col := 0; col < w; col++ {
			if row != 0 && row != h-1 && col != 0 && col != w-1 {
				continue
			}
			cell := row*w + col
			if out[cell].IsFinite() && out[cell].LengthSq() >= degenerateNormalSq {
				continue
			}

			var dx, dy math.Vec3
			if col+1 < w {
				dx = grid[cell+1].Sub(grid[cell])
			} else {
				dx = grid[cell].Sub(grid[cell-1])
			}
			if row+1 < h {
				dy = grid[cell+w].Sub(grid[cell])
			} else {
				dy = grid[cell].Sub(grid[cell-w])
			}

			n := dy.Cross(dx)
			if !n.IsFinite() || n.LengthSq() < degenerateNormalSq {
				continue // falls through to the rest-plane default
			}
			out[cell] = n
		}
	}
}
