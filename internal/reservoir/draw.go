package reservoir

import (
	"image"
	"image/color"
	"sort"

	"seismic-sim/internal/config"
	"seismic-sim/internal/render"
)

// Draw overlays the porous runs on canvas, which covers the visible area.
// Each cell colours its upper-right and lower-left sandstone pixels red for
// gas, green for oil and blue for water, so the wavefield shows through the
// other two.
func (r *Reservoir) Draw(canvas *image.RGBA) {
	r.DrawRows(canvas, 0, r.h)
}

// DrawRows draws the cell rows [v0, v1). Each cell row owns two pixel rows,
// so disjoint row ranges may be drawn concurrently.
func (r *Reservoir) DrawRows(canvas *image.RGBA, v0, v1 int) {
	const scale = config.ReservoirScale
	vw, vh := canvas.Rect.Dx(), canvas.Rect.Dy()
	uleft := r.border / scale
	uright := uleft + vw/scale
	vbottom := min(vh/scale, v1)
	first := sort.Search(len(r.runs), func(k int) bool { return r.runs[k].V >= v0 })
	for _, run := range r.runs[first:] {
		v := run.V
		if v >= vbottom {
			break
		}
		begin, end := max(run.Begin, uleft), min(run.End, uright)
		if begin >= end {
			continue
		}
		top := render.Row(canvas, v*scale, vw)
		low := render.Row(canvas, v*scale+1, vw)
		row := r.row(v)
		for u := begin; u < end; u++ {
			c := &row[u]
			col := color.RGBA{
				R: level(c.Saturation[Gas]),
				G: level(c.Saturation[Oil]),
				B: level(c.Saturation[Water]),
				A: 0xff,
			}
			x := u*scale - r.border
			bits := r.porous.At(u, v)
			if bits&2 != 0 && x+1 < vw {
				render.Pack(top, x+1, col)
			}
			if bits&4 != 0 && x >= 0 {
				render.Pack(low, x, col)
			}
		}
	}
}

func level(s float32) uint8 {
	switch {
	case s <= 0:
		return 0
	case s >= 1:
		return 0xff
	}
	return uint8(s * 0xff)
}
