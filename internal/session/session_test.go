package session

import (
	"testing"

	"github.com/Faultbox/drape/internal/config"
	"github.com/Faultbox/drape/pkg/math"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Cloth.Cols = 12
	cfg.Cloth.Rows = 8
	return cfg
}

func TestNewBuildsGrid(t *testing.T) {
	s, err := New(testConfig())
	if err != nil {
		t.Fatal(err)
	}
	if got := len(s.Cloth().Points); got != 96 {
		t.Fatalf("expected 96 points, got %d", got)
	}
}

func TestNewRejectsBadAnchors(t *testing.T) {
	cfg := testConfig()
	cfg.Cloth.Anchors = "bottom_left"
	if _, err := New(cfg); err == nil {
		t.Fatal("expected error for unknown anchor mode")
	}
}

func TestStepProducesSurface(t *testing.T) {
	s, err := New(testConfig())
	if err != nil {
		t.Fatal(err)
	}

	surface, err := s.Step(1.0 / 60.0)
	if err != nil {
		t.Fatal(err)
	}
	if surface.Width != 12 || surface.Height != 8 {
		t.Fatalf("surface grid %dx%d, want 12x8", surface.Width, surface.Height)
	}
	if len(surface.Positions) != 96 {
		t.Fatalf("surface has %d positions, want 96", len(surface.Positions))
	}
}

func TestResetRestoresLayout(t *testing.T) {
	s, err := New(testConfig())
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 30; i++ {
		if _, err := s.Step(1.0 / 60.0); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.Reset(); err != nil {
		t.Fatal(err)
	}

	// After reset every point is back on the rest plane with zero velocity.
	for i, p := range s.Cloth().Points {
		if p.Position.Z != 0 {
			t.Fatalf("point %d off the rest plane after reset: %v", i, p.Position)
		}
		if (p.Velocity != math.Vec3{}) {
			t.Fatalf("point %d has velocity after reset: %v", i, p.Velocity)
		}
	}
}

func TestSetWindDisableZeroesMagnitude(t *testing.T) {
	s, err := New(testConfig())
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 60; i++ {
		if _, err := s.Step(1.0 / 60.0); err != nil {
			t.Fatal(err)
		}
	}

	s.SetWind(false)
	if got := s.Cloth().Settings.WindMagnitude; got != 0 {
		t.Fatalf("wind magnitude %v after disable, want 0", got)
	}

	if _, err := s.Step(1.0 / 60.0); err != nil {
		t.Fatal(err)
	}
	if got := s.Cloth().Settings.WindMagnitude; got != 0 {
		t.Fatalf("wind magnitude %v kept rising while disabled", got)
	}
}

func TestToggleWind(t *testing.T) {
	s, err := New(testConfig())
	if err != nil {
		t.Fatal(err)
	}
	if !s.WindEnabled() {
		t.Fatal("wind should start enabled")
	}
	if s.ToggleWind() {
		t.Fatal("toggle should disable wind")
	}
	if !s.ToggleWind() {
		t.Fatal("second toggle should re-enable wind")
	}
}

func TestReleaseAnchors(t *testing.T) {
	s, err := New(testConfig())
	if err != nil {
		t.Fatal(err)
	}

	anchored := 0
	for _, p := range s.Cloth().Points {
		if p.Anchored {
			anchored++
		}
	}
	if anchored != 12 {
		t.Fatalf("%d anchored points before release, want the 12-point top row", anchored)
	}

	s.ReleaseAnchors()
	for i, p := range s.Cloth().Points {
		if p.Anchored {
			t.Fatalf("point %d still anchored after release", i)
		}
	}
}

func TestPickPoint(t *testing.T) {
	s, err := New(testConfig())
	if err != nil {
		t.Fatal(err)
	}

	target := s.Cloth().Points[30].Position
	origin := target.Add(math.Vec3{Z: 5})
	dir := math.Vec3{Z: -1}

	if got := s.PickPoint(origin, dir, 0.01); got != 30 {
		t.Fatalf("picked point %d, want 30", got)
	}

	// A ray pointing away from the cloth picks nothing.
	if got := s.PickPoint(origin, math.Vec3{Z: 1}, 0.01); got != -1 {
		t.Fatalf("picked point %d on a miss, want -1", got)
	}
}

func TestDragMovesPoint(t *testing.T) {
	s, err := New(testConfig())
	if err != nil {
		t.Fatal(err)
	}

	want := math.Vec3{X: 3, Y: 2, Z: 1}
	s.Drag(10, want)
	if got := s.Cloth().Points[10].Position; got != want {
		t.Fatalf("point 10 at %v after drag, want %v", got, want)
	}

	// Out-of-range indices are ignored.
	s.Drag(-1, want)
	s.Drag(len(s.Cloth().Points), want)
}
