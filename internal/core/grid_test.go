package core

import (
	"testing"
	"time"
)

func TestPackedGridRoundTrip(t *testing.T) {
	g := NewPackedGrid(3, 10)
	if g.Cols != 12 {
		t.Fatalf("cols = %d, want rounded up to 12", g.Cols)
	}
	for i := 0; i < g.Rows; i++ {
		for j := 0; j < g.Cols; j++ {
			g.Set(i, j, uint8((i+j)%4))
		}
	}
	// Overwrite one cell to make sure neighbours keep their bits.
	g.Set(1, 5, 0)
	for i := 0; i < g.Rows; i++ {
		for j := 0; j < g.Cols; j++ {
			want := uint8((i + j) % 4)
			if i == 1 && j == 5 {
				want = 0
			}
			if got := g.At(i, j); got != want {
				t.Fatalf("At(%d,%d) = %d, want %d", i, j, got, want)
			}
		}
	}
	g.CopyRow(0, 2)
	for j := 0; j < g.Cols; j++ {
		if g.At(0, j) != g.At(2, j) {
			t.Fatalf("row copy mismatch at column %d", j)
		}
	}
}

func TestFloat32GridGuardColumns(t *testing.T) {
	g := NewFloat32Grid(2, 8, 1)
	if g.Stride != 10 {
		t.Fatalf("stride = %d, want 10", g.Stride)
	}
	row := g.Row(1)
	for j := range row {
		row[j] = float32(j + 1)
	}
	if g.At(1, -1) != 0 || g.At(1, 8) != 0 {
		t.Fatal("guard columns must stay zero after writing the visible row")
	}
	if g.At(1, 7) != 8 {
		t.Fatalf("At(1,7) = %v, want 8", g.At(1, 7))
	}
	g.CopyRow(0, 1)
	if g.At(0, 3) != 4 {
		t.Fatalf("CopyRow did not copy values, got %v", g.At(0, 3))
	}
	if len(row) != 8 || cap(row) != 8 {
		t.Fatalf("Row must be capped at the visible width, len=%d cap=%d", len(row), cap(row))
	}
}

func TestByteGridBounds(t *testing.T) {
	g := NewByteGrid(4, 3)
	g.Set(3, 2, 7)
	g.Set(4, 0, 9)
	if g.At(3, 2) != 7 {
		t.Fatal("Set/At mismatch")
	}
	if g.At(-1, 0) != 0 || g.At(4, 0) != 0 {
		t.Fatal("out of range reads must return zero")
	}
	g.Clear()
	if g.At(3, 2) != 0 {
		t.Fatal("Clear did not zero the grid")
	}
}

func TestFixedStepPacing(t *testing.T) {
	now := time.Unix(0, 0)
	fs := NewFixedStepClock(10, func() time.Time { return now })
	if !fs.ShouldStep() {
		t.Fatal("first call should step immediately")
	}
	now = now.Add(50 * time.Millisecond)
	if fs.ShouldStep() {
		t.Fatal("half a period should not step")
	}
	now = now.Add(60 * time.Millisecond)
	if !fs.ShouldStep() {
		t.Fatal("a full period should step")
	}
	now = now.Add(10 * time.Second)
	steps := 0
	for i := 0; i < 5; i++ {
		if fs.ShouldStep() {
			steps++
		}
	}
	if steps > 2 {
		t.Fatalf("a long stall produced %d catch-up frames", steps)
	}
}

func TestSectionRegistryIgnoresInvalid(t *testing.T) {
	before := len(Sections())
	RegisterSection("", func(Size, int64) Section { return nil })
	RegisterSection("nil-factory", nil)
	if len(Sections()) != before {
		t.Fatal("invalid registrations must be ignored")
	}
}
