package sim

import (
	"testing"
)

func TestGustGeneratorDeterministic(t *testing.T) {
	g1 := NewGustGenerator(42)
	g2 := NewGustGenerator(42)
	s1 := DefaultSettings()
	s2 := DefaultSettings()

	for i := 0; i < 600; i++ {
		g1.Update(s1, 1.0/60)
		g2.Update(s2, 1.0/60)
	}

	if s1.WindDirection != s2.WindDirection || s1.WindMagnitude != s2.WindMagnitude {
		t.Fatalf("same seed diverged: %v/%v vs %v/%v",
			s1.WindDirection, s1.WindMagnitude, s2.WindDirection, s2.WindMagnitude)
	}
}

func TestGustGeneratorBounds(t *testing.T) {
	g := NewGustGenerator(7)
	s := DefaultSettings()

	for i := 0; i < 3600; i++ {
		g.Update(s, 1.0/60)
		if s.WindMagnitude < 0 || s.WindMagnitude > g.MaxMagnitude {
			t.Fatalf("frame %d: wind magnitude %v outside [0, %v]", i, s.WindMagnitude, g.MaxMagnitude)
		}
	}
}

func TestGustGeneratorEases(t *testing.T) {
	g := NewGustGenerator(3)
	s := DefaultSettings()
	s.WindMagnitude = 0

	prev := s.WindMagnitude
	maxJump := float32(0)
	for i := 0; i < 600; i++ {
		g.Update(s, 1.0/60)
		jump := s.WindMagnitude - prev
		if jump < 0 {
			jump = -jump
		}
		if jump > maxJump {
			maxJump = jump
		}
		prev = s.WindMagnitude
	}

	// Eased interpolation: per-frame change stays well below the full range.
	if maxJump > g.MaxMagnitude*0.5 {
		t.Fatalf("wind magnitude jumped by %v in one frame", maxJump)
	}
}
