package sim

const (
	// collisionWindow is the half-width of the point-index window examined
	// for self-collision. Index adjacency is a cheap proxy for spatial
	// adjacency; it holds because the grid is never reordered.
	collisionWindow = 20
	// collisionStride samples every other index in the window to bound cost.
	collisionStride = 2
)

// resolveSelfCollisions pushes apart point pairs that are closer than
// radius, examining only a bounded index window around each point. This is
// an approximate local response, not exact contact resolution: distant
// points that happen to be far apart in the array are never tested.
func resolveSelfCollisions(c *Cloth, radius float32) {
	n := len(c.Points)
	for i := 0; i < n; i++ {
		pi := &c.Points[i]
		for off := collisionStride; off <= collisionWindow; off += collisionStride {
			j := i + off
			if j >= n {
				break
			}
			pj := &c.Points[j]
			if pi.Anchored && pj.Anchored {
				continue
			}

			delta := pj.Position.Sub(pi.Position)
			dist := delta.Length()
			if dist >= radius || dist < distEpsilon {
				// Already separated, or coincident (no usable normal).
				continue
			}

			penetration := radius - dist
			push := delta.Scale(penetration / dist)
			switch {
			case pi.Anchored:
				pj.Position = pj.Position.Add(push)
			case pj.Anchored:
				pi.Position = pi.Position.Sub(push)
			default:
				total := pi.Mass + pj.Mass
				pi.Position = pi.Position.Sub(push.Scale(pj.Mass / total))
				pj.Position = pj.Position.Add(push.Scale(pi.Mass / total))
			}
		}
	}
}
