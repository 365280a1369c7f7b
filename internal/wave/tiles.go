package wave

import "fmt"

// Tag selects the update rule of a tile.
type Tag uint8

const (
	HomogeneousInterior Tag = iota
	HeterogeneousInterior
	Top
	Left
	Right
	BottomLeft
	Bottom
	BottomRight
	numTag
)

var tagNames = [...]string{
	"homogeneous", "heterogeneous", "top", "left", "right", "bottom-left", "bottom", "bottom-right",
}

func (t Tag) String() string {
	if int(t) < len(tagNames) {
		return tagNames[t]
	}
	return fmt.Sprintf("Tag(%d)", int(t))
}

// Tile is the rectangle [I0,I1) x [J0,J1) updated with one rule. Column
// bounds are multiples of 4.
type Tile struct {
	Tag    Tag
	I0, I1 int
	J0, J1 int
}

var classifyMatrix = [3][3]Tag{
	{numTag, Top, numTag},
	{Left, HeterogeneousInterior, Right},
	{BottomLeft, Bottom, BottomRight},
}

// classify returns the region of cell (i, j); numTag marks the surface
// corners above the side absorbing layers, which are never updated.
func (f *Field) classify(i, j int) Tag {
	return classifyMatrix[b2i(1 <= i)+b2i(f.layout.topIofB <= i)][b2i(f.damp <= j)+b2i(f.layout.leftJof <= j)]
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}

// isHomogeneous reports whether every load a heterogeneous update would do
// inside the rectangle matches the first cell.
func (f *Field) isHomogeneous(i0, i1, j0, j1 int) bool {
	a := f.a.At(i0, j0)
	b := f.b.At(i0, j0)
	for i := i0; i < i1; i++ {
		ar, an, br := f.a.Row(i), f.a.Row(i+1), f.b.Row(i)
		for j := j0; j < j1; j++ {
			if ar[j] != a || an[j] != a || br[j] != b || f.a.At(i, j+1) != a {
				return false
			}
		}
	}
	return true
}

type tiler struct {
	f     *Field
	tiles []Tile
}

func (t *tiler) add(i0, i1, j0, j1 int) {
	tag := t.f.classify(i0, j0)
	if tag == numTag {
		return
	}
	if tag == HeterogeneousInterior && t.f.isHomogeneous(i0, i1, j0, j1) {
		tag = HomogeneousInterior
	}
	t.tiles = append(t.tiles, Tile{Tag: tag, I0: i0, I1: i1, J0: j0, J1: j1})
}

// splitHorizontal cuts a rectangle at both side absorbing layers.
func (t *tiler) splitHorizontal(i0, i1, j0, j1 int) {
	damp, right := t.f.damp, t.f.layout.leftJof
	switch {
	case j0 < damp && damp < j1:
		t.add(i0, i1, j0, damp)
		t.splitHorizontal(i0, i1, damp, j1)
	case j0 < right && right < j1:
		t.add(i0, i1, j0, right)
		t.add(i0, i1, right, j1)
	default:
		t.add(i0, i1, j0, j1)
	}
}

// splitVertical cuts a rectangle at the surface row and the bottom
// absorbing layer.
func (t *tiler) splitVertical(i0, i1, j0, j1 int) {
	if i0 >= i1 || j0 >= j1 {
		return
	}
	bottom := t.f.layout.topIofB
	switch {
	case i0 < 1 && 1 < i1:
		t.splitHorizontal(i0, 1, j0, j1)
		t.splitVertical(1, i1, j0, j1)
	case i0 < bottom && bottom < i1:
		t.splitHorizontal(i0, bottom, j0, j1)
		t.splitHorizontal(bottom, i1, j0, j1)
	default:
		t.splitHorizontal(i0, i1, j0, j1)
	}
}

// makeTiles carves panel p into tiles for the current pump factor. Within
// each block, stage k is shifted up by k rows and left by 4k columns, so a
// stage only ever reads cells that the previous stage already finished.
func (f *Field) makeTiles(p int) []Tile {
	l := &f.layout
	pf := f.pump
	d := pf - 1
	w := f.w
	th, tw := f.cfg.TileHeight, f.cfg.TileWidth
	t := tiler{f: f}
	i0 := l.trapezoidFirstI(p, 0, pf)
	i1 := l.trapezoidLastI(p, 0, pf)
	for i := i0; i-d < i1; i += th {
		for j := 0; j-4*d < w; j += tw {
			for k := 0; k <= d; k++ {
				t.splitVertical(
					max(i-k, l.trapezoidFirstI(p, k, pf)), min(i-k+th, l.trapezoidLastI(p, k, pf)),
					max(j-4*k, 0), min(j-4*k+tw, w))
			}
		}
	}
	return t.tiles
}

func (f *Field) makeAllTiles() {
	f.tiles = make([][]Tile, f.layout.n)
	for p := range f.tiles {
		f.tiles[p] = f.makeTiles(p)
	}
}

// Tiles returns the tiles of panel p in execution order.
func (f *Field) Tiles(p int) []Tile { return f.tiles[p] }

// VerifyTiles checks that every panel is tiled exactly once per stage, with
// each cell's stages ordered so that a stage never runs before its
// neighbours finished the previous one.
func (f *Field) VerifyTiles() error {
	for p := 0; p < f.layout.n; p++ {
		if err := f.verifyPanel(p); err != nil {
			return fmt.Errorf("panel %d: %w", p, err)
		}
	}
	return nil
}

func (f *Field) verifyPanel(p int) error {
	l := &f.layout
	pf := f.pump
	w := f.w
	i0 := l.trapezoidFirstI(p, 0, pf)
	i1 := l.trapezoidLastI(p, 0, pf)
	depth := make([]uint8, (i1-i0)*w)
	at := func(i, j int) *uint8 { return &depth[(i-i0)*w+j] }

	for n, t := range f.tiles[p] {
		if t.I0 >= t.I1 || t.J0 >= t.J1 {
			return fmt.Errorf("tile %d %+v is empty", n, t)
		}
		if t.I0 < i0 || t.I1 > i1 || t.J0 < 0 || t.J1 > w {
			return fmt.Errorf("tile %d %+v outside rows [%d,%d) or columns [0,%d)", n, t, i0, i1, w)
		}
		if t.J0%4 != 0 || t.J1%4 != 0 {
			return fmt.Errorf("tile %d %+v columns not aligned to 4", n, t)
		}
		if t.Tag == HomogeneousInterior && !f.isHomogeneous(t.I0, t.I1, t.J0, t.J1) {
			return fmt.Errorf("tile %d %+v tagged homogeneous over varying medium", n, t)
		}
		for i := t.I0; i < t.I1; i++ {
			j0, j1 := 0, w
			if i == 0 {
				j0, j1 = f.damp, w-f.damp
			}
			for j := t.J0; j < t.J1; j++ {
				want := f.classify(i, j)
				if want == numTag {
					return fmt.Errorf("tile %d covers unupdated cell (%d,%d)", n, i, j)
				}
				if t.Tag != want && !(t.Tag == HomogeneousInterior && want == HeterogeneousInterior) {
					return fmt.Errorf("tile %d tagged %v covers %v cell (%d,%d)", n, t.Tag, want, i, j)
				}
				d := int(*at(i, j))
				if d >= pf {
					return fmt.Errorf("cell (%d,%d) updated %d times, pump factor %d", i, j, d+1, pf)
				}
				if i < l.trapezoidFirstI(p, d, pf) || i >= l.trapezoidLastI(p, d, pf) {
					return fmt.Errorf("cell (%d,%d) outside stage %d rows", i, j, d)
				}
				if l.trapezoidFirstI(p, d, pf) < i && i-1 != 0 && int(*at(i-1, j)) != d+1 {
					return fmt.Errorf("cell (%d,%d) stage %d runs before the cell above", i, j, d)
				}
				if i+1 < l.trapezoidLastI(p, d, pf) && int(*at(i+1, j)) != d {
					return fmt.Errorf("cell (%d,%d) stage %d runs after the cell below", i, j, d)
				}
				if j0 < j && int(*at(i, j-1)) != d+1 {
					return fmt.Errorf("cell (%d,%d) stage %d runs before the cell to the left", i, j, d)
				}
				if j+1 < j1 && int(*at(i, j+1)) != d {
					return fmt.Errorf("cell (%d,%d) stage %d runs after the cell to the right", i, j, d)
				}
				*at(i, j) = uint8(d + 1)
			}
		}
	}
	for i := i0; i < i1; i++ {
		want := 0
		for k := 0; k < pf; k++ {
			if l.trapezoidFirstI(p, k, pf) <= i && i < l.trapezoidLastI(p, k, pf) {
				want++
			}
		}
		for j := 0; j < w; j++ {
			if i == 0 && (j < f.damp || j >= w-f.damp) {
				continue
			}
			if got := int(*at(i, j)); got != want {
				return fmt.Errorf("cell (%d,%d) updated %d times, want %d", i, j, got, want)
			}
		}
	}
	return nil
}
