package reservoir

import (
	"math"

	"github.com/sirupsen/logrus"
)

// Trap is a structural high that holds fluid: rows [Top, Bottom) over
// columns [Left, Right). Volume counts the porous cells above the spill
// depth.
type Trap struct {
	Top, Bottom int
	Left, Right int
	Volume      int
}

// A trap wider than maxTrapWidth of the grid and deeper than maxTrapDepth
// of it is too easy to find, so its spill depth is raised until it is not.
const (
	maxTrapWidth = 0.2
	maxTrapDepth = 0.05
)

const noTop = math.MaxInt16

// fill floods every porous cell with water, then replaces the upper part of
// each trap with gas and oil.
func (r *Reservoir) fill() Stats {
	w, h := r.w, r.h
	top := make([]int, w+2)
	bottom := make([]int, w)
	for u := 0; u < w; u++ {
		v := 0
		for v < h && !r.isPorous(u, v) {
			v++
		}
		top[u] = v
		for v < h && r.isPorous(u, v) {
			v++
		}
		bottom[u] = v
	}
	top[w], top[w+1] = noTop, noTop

	hp, vp := r.cfg.HorizontalPermeability, r.cfg.VerticalPermeability
	for _, run := range r.runs {
		row := r.row(run.V)
		for u := run.Begin; u < run.End; u++ {
			c := &row[u]
			*c = Cell{Pressure: 1}
			c.Saturation[Water] = 1
			if r.isPorous(u+1, run.V) {
				c.Right = hp
			}
			if r.isPorous(u, run.V+1) {
				c.Below = vp
			}
		}
	}

	r.traps = findTraps(top, bottom, w, h)
	var stats Stats
	total := 0
	for _, t := range r.traps {
		if t.Volume > 0 {
			stats.NumTrap++
		}
		total += t.Volume
	}
	gasFrac, oilFrac := r.prorate(total)

	for _, t := range r.traps {
		avail := [NumPhase]int{
			Gas:   int(float32(t.Volume) * gasFrac),
			Oil:   int(float32(t.Volume) * oilFrac),
			Water: math.MaxInt,
		}
		phase := Gas
		for v := t.Top; v < t.Bottom && phase < Water; v++ {
			row := r.row(v)
			for u := t.Left; u < t.Right; u++ {
				if !r.isPorous(u, v) {
					continue
				}
				for avail[phase] <= 0 {
					phase++
				}
				if phase == Water {
					break
				}
				c := &row[u]
				c.Saturation = [NumPhase]float32{}
				c.Saturation[phase] = 1
				avail[phase]--
				stats.Volume[phase]++
			}
		}
	}
	return stats
}

// prorate returns the gas and oil fractions of each trap, scaled down when
// the traps hold more than MaxTrapVolume cells in total.
func (r *Reservoir) prorate(total int) (gas, oil float32) {
	gas, oil = r.cfg.GasFraction, r.cfg.OilFraction
	if total > r.cfg.MaxTrapVolume {
		scale := float32(r.cfg.MaxTrapVolume) / float32(total)
		gas *= scale
		oil *= scale
		logrus.Debugf("reservoir: trap volume %d prorated to %d", total, r.cfg.MaxTrapVolume)
	}
	return gas, oil
}

// findTraps walks the column tops left to right. Each trap climbs while the
// top rises, crosses the plateau, and descends while it falls. top must
// carry two sentinel entries past w.
func findTraps(top, bottom []int, w, h int) []Trap {
	var traps []Trap
	last := noTop
	u := 0
	for {
		for u < w && top[u] == last {
			u++
		}
		if u >= w {
			break
		}
		t := Trap{Left: u}
		for top[u] <= last {
			last = top[u]
			u++
		}
		t.Top = last
		right := u
		for u <= w && top[u] >= last {
			if top[u] > last {
				right = u
			}
			last = top[u]
			u++
		}
		t.Right = right

		switch {
		case t.Left == 0 && t.Right == w:
			t.Bottom = max(top[0], top[w-1])
		case t.Left == 0:
			t.Bottom = top[t.Right-1]
		case t.Right == w:
			t.Bottom = top[t.Left]
		default:
			t.Bottom = min(top[t.Left], top[t.Right-1])
		}
		for {
			for t.Left < t.Right && top[t.Left] > t.Bottom {
				t.Left++
			}
			for t.Left < t.Right && top[t.Right-1] > t.Bottom {
				t.Right--
			}
			if float32(t.Right-t.Left) <= float32(w)*maxTrapWidth || float32(t.Bottom-t.Top) <= float32(h)*maxTrapDepth {
				break
			}
			t.Bottom--
		}
		for c := t.Left; c < t.Right; c++ {
			t.Volume += max(0, min(bottom[c], t.Bottom)-top[c])
		}
		traps = append(traps, t)
	}
	return traps
}
