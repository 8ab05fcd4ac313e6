package sim

import (
	"testing"
)

func TestBuildGridCounts(t *testing.T) {
	cfg := GridConfig{Cols: 5, Rows: 4, Spacing: 0.1, Mass: 1, Stiffness: 0.9}
	c, err := BuildGrid(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}

	if got, want := len(c.Points), 5*4; got != want {
		t.Fatalf("point count = %d, want %d", got, want)
	}

	// Structural: (w-1)h + w(h-1); shear: 2(w-1)(h-1); bend: (w-2)h + w(h-2).
	w, h := cfg.Cols, cfg.Rows
	want := (w-1)*h + w*(h-1) + 2*(w-1)*(h-1) + (w-2)*h + w*(h-2)
	if got := len(c.Springs); got != want {
		t.Fatalf("spring count = %d, want %d", got, want)
	}
}

func TestBuildGridRestLengths(t *testing.T) {
	cfg := GridConfig{Cols: 4, Rows: 4, Spacing: 0.5, Mass: 1, Stiffness: 0.9}
	c, err := BuildGrid(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	for i, sp := range c.Springs {
		if sp.RestLength <= 0 {
			t.Fatalf("spring %d has non-positive rest length %v", i, sp.RestLength)
		}
		if sp.Stiffness <= 0 || sp.Stiffness > 1 {
			t.Fatalf("spring %d has stiffness %v outside (0,1]", i, sp.Stiffness)
		}
		got := c.Points[sp.A].Position.Distance(c.Points[sp.B].Position)
		if got < sp.RestLength*0.999 || got > sp.RestLength*1.001 {
			t.Fatalf("spring %d rest length %v does not match layout distance %v", i, sp.RestLength, got)
		}
	}
}

func TestBuildGridAnchors(t *testing.T) {
	tests := []struct {
		name string
		mode AnchorMode
		want int
	}{
		{"none", AnchorNone, 0},
		{"top corners", AnchorTopCorners, 2},
		{"top row", AnchorTopRow, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := GridConfig{Cols: 6, Rows: 4, Spacing: 0.1, Mass: 1, Stiffness: 0.9, Anchors: tt.mode}
			c, err := BuildGrid(cfg, nil)
			if err != nil {
				t.Fatal(err)
			}
			count := 0
			for i := range c.Points {
				if c.Points[i].Anchored {
					count++
					if i >= cfg.Cols {
						t.Fatalf("anchored point %d is not in the top row", i)
					}
				}
			}
			if count != tt.want {
				t.Fatalf("anchored count = %d, want %d", count, tt.want)
			}
		})
	}
}

func TestBuildGridValidation(t *testing.T) {
	tests := []struct {
		name string
		cfg  GridConfig
	}{
		{"too small", GridConfig{Cols: 1, Rows: 4, Spacing: 0.1, Mass: 1, Stiffness: 0.9}},
		{"zero spacing", GridConfig{Cols: 4, Rows: 4, Mass: 1, Stiffness: 0.9}},
		{"zero mass", GridConfig{Cols: 4, Rows: 4, Spacing: 0.1, Stiffness: 0.9}},
		{"stiffness too high", GridConfig{Cols: 4, Rows: 4, Spacing: 0.1, Mass: 1, Stiffness: 1.5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := BuildGrid(tt.cfg, nil); err == nil {
				t.Fatal("expected error, got nil")
			}
		})
	}
}

func TestPositionsCopies(t *testing.T) {
	cfg := DefaultGridConfig()
	c, err := BuildGrid(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	got := c.Positions(nil)
	if len(got) != len(c.Points) {
		t.Fatalf("positions length = %d, want %d", len(got), len(c.Points))
	}
	// Mutating the copy must not touch the store.
	got[0].X += 100
	if c.Points[0].Position.X == got[0].X {
		t.Fatal("Positions must return a copy, not an alias")
	}
}
