package reservoir

import (
	"math"

	"seismic-sim/internal/config"
	"seismic-sim/internal/core"
)

// newSmooth tabulates the extraction weight peak*exp(-dx²/d²) for pixel
// offsets dx in [-2d, 2d].
func newSmooth(d int, peak float32) []float32 {
	c := 2 * d
	out := make([]float32, 2*c+1)
	sharp := 1 / float64(d*d)
	for dx := -c; dx <= c; dx++ {
		out[dx+c] = peak * float32(math.Exp(-sharp*float64(dx*dx)))
	}
	return out
}

func (r *Reservoir) weight(dx int) float32 {
	c := len(r.smooth) / 2
	if dx < -c || dx > c {
		return 0
	}
	return r.smooth[dx+c]
}

// Update advances the fluid by the configured number of sub-steps, each an
// extraction pass followed by a flux pass, and returns the fluid removed by
// the holes per phase.
func (r *Reservoir) Update() [NumPhase]float32 {
	var out [NumPhase]float32
	for t := 0; t < r.cfg.SubSteps; t++ {
		r.extract(&out)
		r.flux()
	}
	return out
}

// extract drains a fraction of each cell near a hole, between the top of
// the sandstone and the hole's depth.
func (r *Reservoir) extract(amount *[NumPhase]float32) {
	d := r.cfg.DrillDiameter
	for _, hole := range r.holes {
		x := hole.X
		uc := r.uOfX(x)
		umin := max(r.uOfX(x-d), 0)
		umax := min(r.uOfX(x+d), r.w-1)
		vmin := max(0, r.bottomCell(core.TopShale, uc))
		vmax := min(hole.Depth/config.ReservoirScale, r.bottomCell(core.MiddleSandstone, uc), r.h-1)
		for v := vmin; v <= vmax; v++ {
			row := r.row(v)
			for u := umin; u <= umax; u++ {
				c := &row[u]
				total := c.Saturation[Gas] + c.Saturation[Oil] + c.Saturation[Water]
				if total == 0 {
					continue
				}
				dx := (u*config.ReservoirScale - r.border + 1) - x
				frac := total * r.weight(dx)
				var p float32
				for k := range c.Saturation {
					taken := c.Saturation[k] * frac
					amount[k] += taken
					c.Saturation[k] -= taken
					p += c.Saturation[k]
				}
				c.Pressure = p
			}
		}
	}
}

// flux moves fluid between neighbours in proportion to their pressure
// difference, carrying the upwind cell's saturations. The flux a cell sends
// right or down is remembered and debited from that neighbour when the
// sweep reaches it.
func (r *Reservoir) flux() {
	clear(r.aboveDelta)
	var left [NumPhase]float32
	for _, run := range r.runs {
		row := r.row(run.V)
		below := r.row(run.V + 1)
		for u := run.Begin; u < run.End; u++ {
			c, rt, bl := &row[u], &row[u+1], &below[u]
			uFlow := (rt.Pressure - c.Pressure) * c.Right
			vFlow := (bl.Pressure - c.Pressure) * c.Below
			srcU, srcV := c, c
			if uFlow >= 0 {
				srcU = rt
			}
			if vFlow >= 0 {
				srcV = bl
			}
			above := &r.aboveDelta[u]
			var p float32
			for k := range c.Saturation {
				du := uFlow * srcU.Saturation[k]
				dv := vFlow * srcV.Saturation[k]
				c.Saturation[k] += (du - left[k]) + (dv - above[k])
				p += c.Saturation[k]
				above[k] = dv
				left[k] = du
			}
			c.Pressure = p
		}
	}
}
