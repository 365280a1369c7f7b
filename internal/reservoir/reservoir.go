// Package reservoir models three-phase fluid in the porous sandstone on a
// grid coarser than the geology by config.ReservoirScale. Cells hold gas, oil
// and water saturations that drift along pressure differences and drain into
// drill holes.
package reservoir

import (
	"fmt"

	"seismic-sim/internal/config"
	"seismic-sim/internal/core"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
)

// Phase indexes the fluid saturations of a cell.
type Phase int

const (
	Gas Phase = iota
	Oil
	Water
	NumPhase
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case Gas:
		return "gas"
	case Oil:
		return "oil"
	case Water:
		return "water"
	}
	return "unknown"
}

// Cell is one reservoir block. Pressure is the sum of the saturations.
// Right and Below are the transmissibilities to the neighbours, zero when
// the neighbour is not porous.
type Cell struct {
	Saturation [NumPhase]float32
	Pressure   float32
	Right      float32
	Below      float32
}

// Stats summarizes the fluid placed in traps when the reservoir was built.
type Stats struct {
	NumTrap int
	// Volume counts gas and oil cells, indexed by Gas and Oil.
	Volume [2]int
}

// Reservoir owns the cell grid, the porosity bits, and the drill holes.
type Reservoir struct {
	cfg     config.Reservoir
	border  int
	section core.Section

	w, h   int
	stride int
	// porous holds one bit per geology pixel of each cell:
	//	0 1
	//	2 3
	porous *core.ByteGrid
	cells  []Cell
	runs   []Run
	traps  []Trap
	smooth []float32

	aboveDelta [][NumPhase]float32

	holes   []Hole
	current int
}

// New classifies the porous cells of section, fills its traps, and returns
// the reservoir with the resulting statistics.
func New(cfg config.Config, s core.Section) (*Reservoir, Stats, error) {
	if err := cfg.Validate(); err != nil {
		return nil, Stats{}, err
	}
	size := s.Size()
	if size.W != cfg.Grid.Width || size.H != cfg.Grid.Height {
		return nil, Stats{}, fmt.Errorf("%w: section is %dx%d, grid is %dx%d",
			config.ErrInvalid, size.W, size.H, cfg.Grid.Width, cfg.Grid.Height)
	}
	w, h := size.W/config.ReservoirScale, size.H/config.ReservoirScale
	r := &Reservoir{
		cfg:        cfg.Reservoir,
		border:     cfg.Grid.HiddenBorder,
		section:    s,
		w:          w,
		h:          h,
		stride:     w + 1,
		porous:     core.NewByteGrid(w, h),
		cells:      make([]Cell, (w+1)*(h+1)),
		aboveDelta: make([][NumPhase]float32, w),
		smooth:     newSmooth(cfg.Reservoir.DrillDiameter, cfg.Reservoir.ExtractionPeak),
		current:    -1,
	}
	r.findPorous()
	r.makeRuns()
	stats := r.fill()
	if len(r.runs) == 0 {
		logrus.Warnf("reservoir: section has no porous cells")
	}
	logrus.Debugf("reservoir %dx%d: %d runs, %d traps, gas %d, oil %d",
		w, h, len(r.runs), stats.NumTrap, stats.Volume[Gas], stats.Volume[Oil])
	return r, stats, nil
}

// Width returns the number of cell columns.
func (r *Reservoir) Width() int { return r.w }

// Height returns the number of cell rows.
func (r *Reservoir) Height() int { return r.h }

// Cells exposes the cell grid row-major with stride Width()+1; the extra
// column and row stay empty.
func (r *Reservoir) Cells() []Cell { return r.cells }

// Cell returns a copy of cell (u, v).
func (r *Reservoir) Cell(u, v int) Cell { return r.cells[v*r.stride+u] }

func (r *Reservoir) row(v int) []Cell { return r.cells[v*r.stride : (v+1)*r.stride] }

// Traps returns the detected traps from left to right.
func (r *Reservoir) Traps() []Trap { return r.traps }

// Totals returns the fluid of each phase summed over the grid.
func (r *Reservoir) Totals() [NumPhase]float64 {
	var out [NumPhase]float64
	phase := make([]float64, 0, len(r.cells))
	for k := range out {
		phase = phase[:0]
		for _, c := range r.cells {
			if c.Saturation[k] != 0 {
				phase = append(phase, float64(c.Saturation[k]))
			}
		}
		out[k] = floats.Sum(phase)
	}
	return out
}

func (r *Reservoir) uOfX(x int) int { return (x + r.border) / config.ReservoirScale }

// bottomCell returns the bottom of layer l under column u in cell rows,
// averaged over the column's pixels.
func (r *Reservoir) bottomCell(l core.Layer, u int) int {
	var sum int
	for x := 0; x < config.ReservoirScale; x++ {
		sum += r.section.Bottom(l, u*config.ReservoirScale+x)
	}
	return sum / (config.ReservoirScale * config.ReservoirScale)
}
