package reservoir

import (
	"seismic-sim/internal/config"
	"seismic-sim/internal/core"
)

// Run is a maximal span [Begin, End) of porous cells in row V.
type Run struct {
	V          int
	Begin, End int
}

// findPorous sets one bit per sandstone pixel in each cell.
func (r *Reservoir) findPorous() {
	r.porous.Clear()
	bits := r.porous.Cells()
	size := r.section.Size()
	for y := 0; y < r.h*config.ReservoirScale && y < size.H; y++ {
		v := y / config.ReservoirScale
		for x := 0; x < r.w*config.ReservoirScale && x < size.W; x++ {
			if r.section.Layer(x, y) == core.MiddleSandstone {
				bits[r.porous.Index(x/config.ReservoirScale, v)] |= 1 << ((y&1)*2 + (x & 1))
			}
		}
	}
}

func (r *Reservoir) isPorous(u, v int) bool { return r.porous.At(u, v) != 0 }

// makeRuns encodes the porous cells of each row as runs, top row first.
func (r *Reservoir) makeRuns() {
	r.runs = r.runs[:0]
	for v := 0; v < r.h; v++ {
		u := 0
		for u < r.w {
			for u < r.w && !r.isPorous(u, v) {
				u++
			}
			if u == r.w {
				break
			}
			begin := u
			for u < r.w && r.isPorous(u, v) {
				u++
			}
			r.runs = append(r.runs, Run{V: v, Begin: begin, End: u})
		}
	}
}

// Runs returns the porous runs in row-major order.
func (r *Reservoir) Runs() []Run { return r.runs }

// DecodeRow expands the runs of row v into one flag per cell column.
func (r *Reservoir) DecodeRow(v int) []bool {
	out := make([]bool, r.w)
	for _, run := range r.runs {
		if run.V != v {
			continue
		}
		for u := run.Begin; u < run.End; u++ {
			out[u] = true
		}
	}
	return out
}

// PorosityMask returns one byte per visible pixel of a w x h view, 1 where
// the pixel is sandstone inside a porous cell.
func (r *Reservoir) PorosityMask(w, h int) []uint8 {
	out := make([]uint8, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			xf := x + r.border
			bit := uint8(1) << ((y&1)*2 + (xf & 1))
			if r.porous.At(xf/config.ReservoirScale, y/config.ReservoirScale)&bit != 0 {
				out[y*w+x] = 1
			}
		}
	}
	return out
}
