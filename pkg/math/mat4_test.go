package math

import (
	gomath "math"
	"testing"
)

func absf(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

func TestIdentity(t *testing.T) {
	m := Identity()
	if m[0] != 1 || m[5] != 1 || m[10] != 1 || m[15] != 1 {
		t.Error("Identity diagonal should be 1")
	}
	if m[1] != 0 || m[4] != 0 {
		t.Error("Identity off-diagonal should be 0")
	}
}

func TestMulIdentity(t *testing.T) {
	m := Translate(1, 2, 3)
	result := m.Mul(Identity())

	for i := 0; i < 16; i++ {
		if result[i] != m[i] {
			t.Errorf("M * I should equal M, element %d: got %f, want %f", i, result[i], m[i])
		}
	}
}

func TestTranslatePoint(t *testing.T) {
	m := Translate(10, 20, 30)
	got := m.TransformVec3(Vec3{1, 2, 3})
	want := Vec3{11, 22, 33}
	if got != want {
		t.Errorf("TransformVec3: got %v, want %v", got, want)
	}
}

func TestRotateY90(t *testing.T) {
	m := RotateY(float32(gomath.Pi / 2))
	got := m.TransformVec3(Vec3{1, 0, 0})

	// After a 90 degree Y rotation, (1,0,0) maps to approximately (0,0,-1).
	if absf(got.X) > 0.001 || absf(got.Y) > 0.001 || absf(got.Z+1) > 0.001 {
		t.Errorf("RotateY 90: got %v, want (0, 0, -1)", got)
	}
}

func TestInverseRoundTrip(t *testing.T) {
	m := Perspective(1.0, 16.0/9.0, 0.1, 100).Mul(LookAt(Vec3{3, 4, 5}, Vec3{}, Vec3{0, 1, 0}))
	inv := m.Inverse()
	id := m.Mul(inv)

	want := Identity()
	for i := 0; i < 16; i++ {
		if absf(id[i]-want[i]) > 1e-4 {
			t.Fatalf("M * M^-1 element %d: got %f, want %f", i, id[i], want[i])
		}
	}
}

func TestInverseSingular(t *testing.T) {
	var zero Mat4
	if zero.Inverse() != Identity() {
		t.Error("singular matrix inverse should return identity")
	}
}

func TestLookAtForward(t *testing.T) {
	// Camera at +Z looking at origin: the origin should land in front of the
	// camera (negative view-space Z).
	view := LookAt(Vec3{0, 0, 5}, Vec3{}, Vec3{0, 1, 0})
	p := view.TransformVec3(Vec3{0, 0, 0})
	if p.Z >= 0 {
		t.Errorf("expected negative view-space Z, got %v", p.Z)
	}
}
