package core

// ByteGrid stores a 2D grid of byte-sized cell values in row-major order.
type ByteGrid struct {
	W, H int
	data []uint8
}

// NewByteGrid allocates a grid with the given dimensions.
func NewByteGrid(w, h int) *ByteGrid {
	if w <= 0 {
		w = 1
	}
	if h <= 0 {
		h = 1
	}
	return &ByteGrid{W: w, H: h, data: make([]uint8, w*h)}
}

// Cells exposes the backing slice so callers can read/write values directly.
func (g *ByteGrid) Cells() []uint8 { return g.data }

// Index returns the linear slice index for coordinates (x, y).
func (g *ByteGrid) Index(x, y int) int { return y*g.W + x }

// At returns the value at (x, y), or zero outside the grid.
func (g *ByteGrid) At(x, y int) uint8 {
	if x < 0 || y < 0 || x >= g.W || y >= g.H {
		return 0
	}
	return g.data[y*g.W+x]
}

// Set stores v at (x, y). Out of range writes are ignored.
func (g *ByteGrid) Set(x, y int, v uint8) {
	if x < 0 || y < 0 || x >= g.W || y >= g.H {
		return
	}
	g.data[y*g.W+x] = v
}

// Clear fills the grid with zeros.
func (g *ByteGrid) Clear() {
	clear(g.data)
}

// Float32Grid is a row-major arena of float32 values with Pad zero columns on
// each side of every row. Stencils may read one column past either edge
// without bounds checks in the caller.
type Float32Grid struct {
	Rows, Cols int
	Pad        int
	Stride     int
	data       []float32
}

// NewFloat32Grid allocates a rows x cols grid with pad guard columns per side.
func NewFloat32Grid(rows, cols, pad int) *Float32Grid {
	if rows <= 0 {
		rows = 1
	}
	if cols <= 0 {
		cols = 1
	}
	if pad < 0 {
		pad = 0
	}
	stride := cols + 2*pad
	return &Float32Grid{Rows: rows, Cols: cols, Pad: pad, Stride: stride, data: make([]float32, rows*stride)}
}

// Data exposes the backing slice including guard columns.
func (g *Float32Grid) Data() []float32 { return g.data }

// Index returns the linear index of cell (i, j). j may range over
// [-Pad, Cols+Pad).
func (g *Float32Grid) Index(i, j int) int { return i*g.Stride + g.Pad + j }

// At returns the value at row i, column j.
func (g *Float32Grid) At(i, j int) float32 { return g.data[g.Index(i, j)] }

// Set stores v at row i, column j.
func (g *Float32Grid) Set(i, j int, v float32) { g.data[g.Index(i, j)] = v }

// Row returns the Cols visible values of row i. Writes go to the grid.
func (g *Float32Grid) Row(i int) []float32 {
	k := g.Index(i, 0)
	return g.data[k : k+g.Cols : k+g.Cols]
}

// CopyRow copies the visible part of row src over row dst.
func (g *Float32Grid) CopyRow(dst, src int) {
	copy(g.Row(dst), g.Row(src))
}

// Clear fills the grid, guard columns included, with zeros.
func (g *Float32Grid) Clear() {
	clear(g.data)
}

// PackedGrid stores a 2-bit value per cell, four cells per byte. Cell j of a
// row lives in bits 2*(j&3) of byte j>>2.
type PackedGrid struct {
	Rows, Cols int
	stride     int
	data       []uint8
}

// NewPackedGrid allocates a rows x cols grid. cols is rounded up to a
// multiple of 4.
func NewPackedGrid(rows, cols int) *PackedGrid {
	if rows <= 0 {
		rows = 1
	}
	if cols <= 0 {
		cols = 4
	}
	stride := (cols + 3) >> 2
	return &PackedGrid{Rows: rows, Cols: stride * 4, stride: stride, data: make([]uint8, rows*stride)}
}

// At returns the 2-bit value at (i, j).
func (g *PackedGrid) At(i, j int) uint8 {
	return g.data[i*g.stride+j>>2] >> (2 * (j & 3)) & 3
}

// Set stores the low two bits of v at (i, j).
func (g *PackedGrid) Set(i, j int, v uint8) {
	k := i*g.stride + j>>2
	shift := 2 * (j & 3)
	g.data[k] = g.data[k]&^(3<<shift) | (v&3)<<shift
}

// Row returns the packed bytes of row i.
func (g *PackedGrid) Row(i int) []uint8 {
	k := i * g.stride
	return g.data[k : k+g.stride : k+g.stride]
}

// CopyRow copies packed row src over row dst.
func (g *PackedGrid) CopyRow(dst, src int) {
	copy(g.Row(dst), g.Row(src))
}
