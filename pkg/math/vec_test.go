package math

import (
	gomath "math"
	"testing"
)

func TestVec2Add(t *testing.T) {
	a := Vec2{1, 2}
	b := Vec2{3, 4}
	got := a.Add(b)
	want := Vec2{4, 6}
	if got != want {
		t.Errorf("Vec2.Add() = %v, want %v", got, want)
	}
}

func TestVec2Length(t *testing.T) {
	v := Vec2{3, 4}
	got := v.Length()
	want := float32(5)
	if got != want {
		t.Errorf("Vec2.Length() = %v, want %v", got, want)
	}
}

func TestVec2Normalize(t *testing.T) {
	v := Vec2{3, 4}
	n := v.Normalize()
	l := n.Length()
	if l < 0.999 || l > 1.001 {
		t.Errorf("Vec2.Normalize().Length() = %v, want ~1", l)
	}
}

func TestVec3Cross(t *testing.T) {
	x := Vec3{1, 0, 0}
	y := Vec3{0, 1, 0}
	got := x.Cross(y)
	want := Vec3{0, 0, 1}
	if got != want {
		t.Errorf("Vec3.Cross() = %v, want %v", got, want)
	}
}

func TestVec3Lerp(t *testing.T) {
	a := Vec3{0, 0, 0}
	b := Vec3{2, 4, 6}
	got := a.Lerp(b, 0.5)
	want := Vec3{1, 2, 3}
	if got != want {
		t.Errorf("Vec3.Lerp() = %v, want %v", got, want)
	}
}

func TestVec3ClampLength(t *testing.T) {
	tests := []struct {
		name string
		v    Vec3
		max  float32
		want float32
	}{
		{"longer than max", Vec3{10, 0, 0}, 3, 3},
		{"shorter than max", Vec3{1, 0, 0}, 3, 1},
		{"zero vector", Vec3{}, 3, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.v.ClampLength(tt.max).Length()
			if gomath.Abs(float64(got-tt.want)) > 1e-5 {
				t.Errorf("ClampLength(%v).Length() = %v, want %v", tt.max, got, tt.want)
			}
		})
	}
}

func TestVec3ClampLengthPreservesDirection(t *testing.T) {
	v := Vec3{3, 4, 0}
	c := v.ClampLength(1)
	dot := c.Normalize().Dot(v.Normalize())
	if dot < 0.999 {
		t.Errorf("ClampLength changed direction, dot = %v", dot)
	}
}

func TestVec3IsFinite(t *testing.T) {
	if !(Vec3{1, 2, 3}).IsFinite() {
		t.Error("finite vector reported as non-finite")
	}
	nan := float32(gomath.NaN())
	if (Vec3{nan, 0, 0}).IsFinite() {
		t.Error("NaN vector reported as finite")
	}
	inf := float32(gomath.Inf(1))
	if (Vec3{0, inf, 0}).IsFinite() {
		t.Error("Inf vector reported as finite")
	}
}

func TestVec3Distance(t *testing.T) {
	a := Vec3{0, 0, 0}
	b := Vec3{0, 3, 4}
	if d := a.Distance(b); d != 5 {
		t.Errorf("Vec3.Distance() = %v, want 5", d)
	}
}
