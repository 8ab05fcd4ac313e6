package mesh

import (
	"errors"
	gomath "math"
	"testing"

	"github.com/Faultbox/drape/pkg/math"
)

// flatGrid lays out w x h points row-major on a regular XY lattice with the
// given spacing, row 0 at the top.
func flatGrid(w, h int, spacing float32) []math.Vec3 {
	points := make([]math.Vec3, 0, w*h)
	for row := 0; row < h; row++ {
		for col := 0; col < w; col++ {
			points = append(points, math.Vec3{
				X: float32(col) * spacing,
				Y: -float32(row) * spacing,
			})
		}
	}
	return points
}

// shuffled returns the points in a deterministic non-row-major order.
func shuffled(points []math.Vec3) []math.Vec3 {
	out := make([]math.Vec3, len(points))
	copy(out, points)
	for i := len(out) - 1; i > 0; i-- {
		j := (i * 7919) % (i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

func TestInferGridSizeExact(t *testing.T) {
	tests := []struct {
		name string
		w, h int
	}{
		{"10x10", 10, 10},
		{"24x16", 24, 16},
		{"5x9", 5, 9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			points := shuffled(flatGrid(tt.w, tt.h, 0.25))
			w, h, err := inferGridSize(points)
			if err != nil {
				t.Fatal(err)
			}
			if w != tt.w || h != tt.h {
				t.Fatalf("inferred %dx%d, want %dx%d", w, h, tt.w, tt.h)
			}
		})
	}
}

func TestInferGridSizeFactorFallback(t *testing.T) {
	// Irregular spacing defeats the extent estimate; 12 points must land on
	// the largest factor pair, 4x3.
	points := flatGrid(4, 3, 0.25)
	for i := range points {
		points[i].X += float32(i%3) * 0.011
		points[i].Y -= float32(i%5) * 0.007
	}
	w, h, err := inferGridSize(points)
	if err != nil {
		t.Fatal(err)
	}
	if w*h != 12 {
		t.Fatalf("inferred %dx%d does not cover 12 points", w, h)
	}
	if w != 4 || h != 3 {
		t.Fatalf("inferred %dx%d, want factor pair 4x3", w, h)
	}
}

func TestInferGridSizeTooFewPoints(t *testing.T) {
	_, _, err := inferGridSize([]math.Vec3{{}, {X: 1}})
	if !errors.Is(err, ErrGridUnresolved) {
		t.Fatalf("expected ErrGridUnresolved, got %v", err)
	}
}

func TestRebuildTriangleCount(t *testing.T) {
	const w, h = 12, 8
	points := flatGrid(w, h, 0.2)

	single := NewReconstructor(false)
	s, err := single.Rebuild(points)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := s.TriangleCount(), 2*(w-1)*(h-1); got != want {
		t.Fatalf("single-sided triangle count = %d, want %d", got, want)
	}

	double := NewReconstructor(true)
	s, err = double.Rebuild(points)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := s.TriangleCount(), 4*(w-1)*(h-1); got != want {
		t.Fatalf("double-sided triangle count = %d, want %d", got, want)
	}
}

func TestRebuildFlatGridNormals(t *testing.T) {
	points := shuffled(flatGrid(10, 10, 0.3))
	r := NewReconstructor(false)
	s, err := r.Rebuild(points)
	if err != nil {
		t.Fatal(err)
	}

	for i, n := range s.Normals {
		if gomath.Abs(float64(n.X)) > 1e-4 || gomath.Abs(float64(n.Y)) > 1e-4 ||
			gomath.Abs(float64(n.Z-1)) > 1e-4 {
			t.Fatalf("vertex %d: normal %v, want rest-plane normal (0,0,1)", i, n)
		}
	}
}

func TestRebuildFlatGridStaysPlanar(t *testing.T) {
	points := flatGrid(10, 10, 0.3)
	r := NewReconstructor(false)
	s, err := r.Rebuild(points)
	if err != nil {
		t.Fatal(err)
	}
	for i, p := range s.Positions {
		if p.Z != 0 {
			t.Fatalf("vertex %d: smoothing/nudging moved a planar point off-plane, Z = %v", i, p.Z)
		}
	}
}

func TestRebuildRowMajorOrder(t *testing.T) {
	const w, h = 8, 6
	points := shuffled(flatGrid(w, h, 0.5))
	r := NewReconstructor(false)
	s, err := r.Rebuild(points)
	if err != nil {
		t.Fatal(err)
	}

	// X must be non-decreasing along each row, Y non-increasing down each
	// column: the unordered input has been put back in grid order.
	for row := 0; row < h; row++ {
		for col := 1; col < w; col++ {
			if s.Positions[row*w+col].X < s.Positions[row*w+col-1].X {
				t.Fatalf("row %d not ordered by X at col %d", row, col)
			}
		}
	}
	for col := 0; col < w; col++ {
		for row := 1; row < h; row++ {
			if s.Positions[row*w+col].Y > s.Positions[(row-1)*w+col].Y {
				t.Fatalf("col %d not ordered by Y at row %d", col, row)
			}
		}
	}
}

func TestRebuildUVCorners(t *testing.T) {
	const w, h = 8, 6
	r := NewReconstructor(false)
	s, err := r.Rebuild(flatGrid(w, h, 0.5))
	if err != nil {
		t.Fatal(err)
	}

	if (s.UVs[0] != math.Vec2{}) {
		t.Fatalf("top-left UV = %v, want (0,0)", s.UVs[0])
	}
	br := s.UVs[len(s.UVs)-1]
	if br.X != 1 || br.Y != 1 {
		t.Fatalf("bottom-right UV = %v, want (1,1)", br)
	}
}

func TestRebuildReinfersOnCountChange(t *testing.T) {
	r := NewReconstructor(false)
	s, err := r.Rebuild(flatGrid(10, 10, 0.2))
	if err != nil {
		t.Fatal(err)
	}
	if s.Width != 10 || s.Height != 10 {
		t.Fatalf("initial grid %dx%d, want 10x10", s.Width, s.Height)
	}

	s, err = r.Rebuild(flatGrid(12, 8, 0.2))
	if err != nil {
		t.Fatal(err)
	}
	if s.Width != 12 || s.Height != 8 {
		t.Fatalf("after count change grid %dx%d, want 12x8", s.Width, s.Height)
	}
	if len(s.Positions) != 96 || len(s.Normals) != 96 {
		t.Fatalf("buffers not resized: %d positions, %d normals", len(s.Positions), len(s.Normals))
	}
}

func TestRebuildRecoversAfterFailure(t *testing.T) {
	r := NewReconstructor(false)
	if _, err := r.Rebuild([]math.Vec3{{}, {X: 1}}); err == nil {
		t.Fatal("expected error for unresolvable point set")
	}
	// Next frame with a sane point set must succeed.
	if _, err := r.Rebuild(flatGrid(6, 6, 0.2)); err != nil {
		t.Fatalf("reconstruction did not recover: %v", err)
	}
}

func TestRebuildToleratesJitter(t *testing.T) {
	// Simulated drift: small per-point displacement must not break
	// reconstruction of a known grid.
	const w, h = 16, 12
	points := flatGrid(w, h, 0.25)
	for i := range points {
		points[i].X += 0.02 * float32(gomath.Sin(float64(i)*1.3))
		points[i].Y += 0.02 * float32(gomath.Cos(float64(i)*0.7))
		points[i].Z += 0.05 * float32(gomath.Sin(float64(i)*0.9))
	}

	r := NewReconstructor(false)
	s, err := r.Rebuild(points)
	if err != nil {
		t.Fatal(err)
	}
	if s.Width*s.Height != w*h {
		t.Fatalf("grid %dx%d does not cover %d points", s.Width, s.Height, w*h)
	}
	for i, n := range s.Normals {
		if !n.IsFinite() {
			t.Fatalf("vertex %d: non-finite normal %v", i, n)
		}
		l := n.Length()
		if l < 0.999 || l > 1.001 {
			t.Fatalf("vertex %d: normal not unit length: %v", i, l)
		}
	}
}

func TestFactorPair(t *testing.T) {
	tests := []struct {
		n, w, h int
	}{
		{100, 10, 10},
		{384, 24, 16},
		{12, 4, 3},
		{7, 7, 1},
	}
	for _, tt := range tests {
		w, h := factorPair(tt.n)
		if w != tt.w || h != tt.h {
			t.Errorf("factorPair(%d) = %d,%d, want %d,%d", tt.n, w, h, tt.w, tt.h)
		}
	}
}
