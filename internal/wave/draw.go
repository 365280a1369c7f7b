package wave

import (
	"image"

	"seismic-sim/internal/render"
)

const (
	clutUpper = render.ClutSize/2 - 1
	clutLower = -render.ClutSize / 2
)

// drawPanel colours the visible rows owned by panel p. Amplitudes are
// clamped to the table range; NaN maps to the lower end.
func (f *Field) drawPanel(p int, dst *image.RGBA, clut *render.Clut) {
	l := &f.layout
	w := min(dst.Rect.Dx(), f.w-2*f.border)
	y0 := max(0, l.firstY[p])
	y1 := min(l.firstY[p+1], dst.Rect.Dy())
	for y := y0; y < y1; y++ {
		i := l.IofY(y)
		u := f.u.Row(i)[f.border : f.border+w]
		out := render.Row(dst, y, w)
		for x, v := range u {
			if v > clutUpper {
				v = clutUpper
			}
			if !(v >= clutLower) {
				v = clutLower
			}
			c := clut[f.rock.At(i, x+f.border)][int(v)+render.ClutSize/2]
			o := out[4*x : 4*x+4 : 4*x+4]
			o[0], o[1], o[2], o[3] = c.R, c.G, c.B, c.A
		}
	}
}

// TileMap returns, for each visible pixel row-major, the tag of the last
// owned-row tile covering it plus one. Zero marks cells no tile updates.
func (f *Field) TileMap() []uint8 {
	vw, vh := f.w-2*f.border, f.h-f.border
	out := make([]uint8, vw*vh)
	l := &f.layout
	for p := 0; p < l.n; p++ {
		for _, t := range f.tiles[p] {
			for i := t.I0; i < t.I1; i++ {
				y := l.firstY[p] + (i - l.firstI[p])
				if y < max(0, l.firstY[p]) || y >= min(l.firstY[p+1], vh) {
					continue
				}
				for j := max(t.J0, f.border); j < min(t.J1, f.border+vw); j++ {
					out[y*vw+j-f.border] = uint8(t.Tag) + 1
				}
			}
		}
	}
	return out
}
