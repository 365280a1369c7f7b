package reservoir

import (
	"image"
	"image/color"
	"math"

	"seismic-sim/internal/core"
	"seismic-sim/internal/render"

	"github.com/sirupsen/logrus"
)

// Hole is a drill hole at visible column X reaching geology row Depth.
type Hole struct {
	X     int
	Depth int
}

// Holes returns the holes drilled so far.
func (r *Reservoir) Holes() []Hole { return r.holes }

// StartHole selects the hole to drill at visible column x. An existing hole
// within the fuzz distance is reused; otherwise a new one is started while
// the table has room. It returns the column of the selected hole.
func (r *Reservoir) StartHole(x int) int {
	x = min(max(x, 0), r.w*2-2*r.border-1)
	r.current = -1
	if len(r.holes) > 0 {
		closest, dist := 0, abs(x-r.holes[0].X)
		for i := 1; i < len(r.holes); i++ {
			if d := abs(x - r.holes[i].X); d < dist {
				closest, dist = i, d
			}
		}
		if dist <= r.cfg.HoleFuzz {
			r.current = closest
			return r.holes[closest].X
		}
	}
	if len(r.holes) >= r.cfg.MaxHoles {
		logrus.Warnf("reservoir: hole table full (%d), not drilling at %d", r.cfg.MaxHoles, x)
		return x
	}
	r.holes = append(r.holes, Hole{X: x})
	r.current = len(r.holes) - 1
	return x
}

// UpdateHole moves the drill bit at depth *y one step in direction dir
// (positive is down) and returns the number of rows of rock newly cut.
// Cutting deepens the current hole; the bit drops twice as fast through
// water and moves three times as fast inside an existing hole.
func (r *Reservoir) UpdateHole(y *int, dir int) int {
	if dir == 0 {
		return 0
	}
	if r.current >= 0 && *y+dir > r.holes[r.current].Depth {
		h := &r.holes[r.current]
		if *y+dir >= r.section.OceanFloor() {
			cost := *y + dir - h.Depth
			*y += dir
			h.Depth = *y
			return cost
		}
		*y += 2 * dir
		h.Depth = *y
		return 0
	}
	*y = max(*y+3*dir, 0)
	return 0
}

// DrawHoles paints each hole as a shaded shaft through the layers it
// crosses. colors gives the shaft colour of each layer.
func (r *Reservoir) DrawHoles(canvas *image.RGBA, colors [core.NumLayer]color.RGBA) {
	d := r.cfg.DrillDiameter
	vw := canvas.Rect.Dx()
	vh := canvas.Rect.Dy()
	var shade [core.NumLayer][]color.RGBA
	for l := range shade {
		shade[l] = make([]color.RGBA, d)
		for j := range shade[l] {
			f := 1 - math.Cos(float64(j-d/2)*(math.Pi/float64(d+1)))
			shade[l][j] = render.Mix(colors[l], color.RGBA{A: 0xff}, float32(f))
		}
	}
	for _, hole := range r.holes {
		xf := hole.X + r.border
		left := hole.X - d/2
		y0 := 0
		for l := core.Ocean; l < core.NumLayer && y0 < hole.Depth; l++ {
			y1 := vh
			if l < core.BottomShale {
				y1 = r.section.Bottom(l, xf)
			}
			y1 = min(y1, hole.Depth, vh)
			for ; y0 < y1; y0++ {
				row := render.Row(canvas, y0, vw)
				for j, c := range shade[l] {
					if x := left + j; x >= 0 && x < vw {
						render.Pack(row, x, c)
					}
				}
			}
		}
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
