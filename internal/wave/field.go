// Package wave simulates the 2-D elastic wavefield with a staggered-grid
// finite-difference scheme, absorbing side and bottom layers, and a panel
// decomposition that advances several steps per frame between ghost-row
// exchanges.
package wave

import (
	"fmt"
	"image"

	"seismic-sim/internal/config"
	"seismic-sim/internal/core"
	"seismic-sim/internal/parallel"
	"seismic-sim/internal/render"

	"github.com/sirupsen/logrus"
)

// Source supplies the impulse for the next sub-step given the A coefficient
// of the injection cell.
type Source interface {
	Impulse(rockFactor float32) float32
}

// Field owns the wavefield arrays and their panel/tile decomposition.
type Field struct {
	cfg    config.Wave
	border int
	w, h   int
	damp   int
	pump   int

	layout layout
	rock   *core.PackedGrid
	u, vx  *core.Float32Grid
	vy     *core.Float32Grid
	a, b   *core.Float32Grid
	g      grids
	pl, pr []float32
	pb     []float32
	pml    pmlCoeffs

	transfers [][]transfer
	tiles     [][]Tile
	kernel    Kernel

	airgunX, airgunY int
	impulses         []float32
	impulseCount     []int

	cluts render.ClutCache
}

// Option customizes New.
type Option func(*Field)

// WithKernel overrides the configured interior kernel.
func WithKernel(k Kernel) Option {
	return func(f *Field) {
		if k != nil {
			f.kernel = k
		}
	}
}

// New builds a wavefield for section. The section must match the configured
// grid size.
func New(cfg config.Config, s core.Section, opts ...Option) (*Field, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	size := s.Size()
	if size.W != cfg.Grid.Width || size.H != cfg.Grid.Height {
		return nil, fmt.Errorf("%w: section is %dx%d, grid is %dx%d",
			config.ErrInvalid, size.W, size.H, cfg.Grid.Width, cfg.Grid.Height)
	}
	coeffs, err := newCoefficients(cfg.Wave.Materials)
	if err != nil {
		return nil, err
	}
	kernel, err := KernelByName(cfg.Wave.Kernel)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrInvalid, err)
	}

	wc := cfg.Wave
	f := &Field{
		cfg:    wc,
		border: cfg.Grid.HiddenBorder,
		w:      size.W,
		h:      size.H,
		damp:   wc.DampSize,
		pump:   wc.PumpFactor,
		kernel: kernel,
		layout: newLayout(size.H, size.W, wc.Panels, wc.PumpFactorMax, wc.DampSize),
	}
	for _, o := range opts {
		o(f)
	}

	rows := f.layout.rows
	f.rock = core.NewPackedGrid(rows, f.w)
	f.u = core.NewFloat32Grid(rows, f.w, 1)
	f.vx = core.NewFloat32Grid(rows, f.w, 1)
	f.vy = core.NewFloat32Grid(rows, f.w, 1)
	f.a = core.NewFloat32Grid(rows, f.w, 1)
	f.b = core.NewFloat32Grid(rows, f.w, 1)
	f.g = grids{
		stride: f.u.Stride,
		u:      f.u.Data(),
		vx:     f.vx.Data(),
		vy:     f.vy.Data(),
		a:      f.a.Data(),
		b:      f.b.Data(),
	}
	f.pl = make([]float32, rows*f.damp)
	f.pr = make([]float32, rows*f.damp)
	f.pb = make([]float32, f.damp*f.w)
	f.pml = newPML(f.damp, wc.SigmaMax)
	f.impulses = make([]float32, wc.PumpFactorMax)
	f.impulseCount = make([]int, wc.Panels)

	f.buildMedium(s, coeffs)
	f.setTransfers(f.pump)
	for p := 1; p < f.layout.n; p++ {
		f.replicate(p, true)
	}
	f.makeAllTiles()
	if wc.VerifyTiles {
		if err := f.VerifyTiles(); err != nil {
			return nil, fmt.Errorf("wave: tiling: %w", err)
		}
	}
	logrus.Debugf("wavefield %dx%d: %d panels, pump factor %d, %s kernel, %d rows",
		f.w, f.h, f.layout.n, f.pump, f.kernel.Name(), rows)
	return f, nil
}

// Panels returns the number of panels.
func (f *Field) Panels() int { return f.layout.n }

// PumpFactor returns the number of steps per frame.
func (f *Field) PumpFactor() int { return f.pump }

// Size returns the wavefield size including hidden borders.
func (f *Field) Size() core.Size { return core.Size{W: f.w, H: f.h} }

// Kernel returns the interior kernel in use.
func (f *Field) Kernel() Kernel { return f.kernel }

// SetPumpFactor changes the steps per frame, rebuilding ghost transfers and
// tiles.
func (f *Field) SetPumpFactor(d int) error {
	if d < 1 || d > f.cfg.PumpFactorMax {
		return fmt.Errorf("%w: pump factor %d outside [1, %d]", config.ErrInvalid, d, f.cfg.PumpFactorMax)
	}
	if d == f.pump {
		return nil
	}
	f.pump = d
	f.setTransfers(d)
	for p := 1; p < f.layout.n; p++ {
		f.replicate(p, true)
	}
	f.makeAllTiles()
	if f.cfg.VerifyTiles {
		if err := f.VerifyTiles(); err != nil {
			return fmt.Errorf("wave: tiling: %w", err)
		}
	}
	logrus.Infof("pump factor set to %d", d)
	return nil
}

// SetImpulseLocation moves the injection point to visible column x and
// geology row y.
func (f *Field) SetImpulseLocation(x, y int) error {
	j := x + f.border
	if j < 0 || j >= f.w || y < 0 || y >= f.h {
		return fmt.Errorf("wave: impulse location (%d,%d) outside the field", x, y)
	}
	f.airgunX, f.airgunY = x, y
	return nil
}

// UpdateDraw advances every panel by PumpFactor steps when req has
// core.Update and draws the visible rows into canvas when req has
// core.Draw. It returns once all panels are done.
func (f *Field) UpdateDraw(req core.Request, canvas *image.RGBA, look render.Look, src Source, pool *parallel.Pool) {
	ops := updateOps{f: f, req: req}
	if req&core.Draw != 0 && canvas != nil {
		ops.canvas = canvas
		ops.clut = f.cluts.Get(look)
	}
	if req&core.Update != 0 {
		f.loadImpulses(src)
	}
	parallel.GhostCell(f.layout.n, ops, pool)
}

func (f *Field) loadImpulses(src Source) {
	clear(f.impulses)
	if src != nil {
		i := f.layout.IofY(f.airgunY)
		rock := f.a.At(i, f.airgunX+f.border)
		for k := 0; k < f.pump; k++ {
			f.impulses[k] = src.Impulse(rock)
		}
	}
	clear(f.impulseCount)
}

type updateOps struct {
	f      *Field
	req    core.Request
	canvas *image.RGBA
	clut   *render.Clut
}

func (o updateOps) ExchangeBorders(p int) { o.f.replicate(p, false) }

func (o updateOps) UpdateInterior(p int) {
	if o.req&core.Update != 0 {
		o.f.updatePanel(p)
	}
	if o.canvas != nil {
		o.f.drawPanel(p, o.canvas, o.clut)
	}
}

func (f *Field) updatePanel(p int) {
	airgunJ := f.airgunX + f.border
	airgunI := (f.airgunY - f.layout.firstY[p]) + f.layout.firstI[p]
	for _, t := range f.tiles[p] {
		switch t.Tag {
		case HomogeneousInterior:
			f.kernel.homogeneous(&f.g, t)
		case HeterogeneousInterior:
			f.kernel.heterogeneous(&f.g, t)
		case Top:
			f.updateTop(t)
		case Left:
			f.updateLeft(t)
		case Right:
			f.updateRight(t)
		case Bottom:
			f.updateBottom(t)
		case BottomLeft:
			f.updateBottomLeft(t)
		case BottomRight:
			f.updateBottomRight(t)
		}
		if t.I0 <= airgunI && airgunI < t.I1 && t.J0 <= airgunJ && airgunJ < t.J1 {
			n := f.impulseCount[p]
			if n < f.pump {
				f.g.u[f.g.index(airgunI, airgunJ)] += f.impulses[n]
				f.impulseCount[p] = n + 1
			}
		}
	}
}

// CopySurface writes the vertical velocity of the top geology row across
// the visible width into out and returns the number of samples written.
func (f *Field) CopySurface(out []float32) int {
	row := f.vy.Row(f.layout.IofY(0))
	return copy(out, row[f.border:f.w-f.border])
}

// Pressure returns U at geology row y (-1 is the free surface) and column j,
// hidden border included.
func (f *Field) Pressure(y, j int) float32 {
	return f.u.At(f.layout.IofY(y), j)
}

// RockAt returns the material at geology row y and column j.
func (f *Field) RockAt(y, j int) Rock {
	return Rock(f.rock.At(f.layout.IofY(y), j))
}

// Energy returns the sum of U squared over every owned row.
func (f *Field) Energy() float64 {
	var e float64
	for y := -1; y < f.h; y++ {
		for _, v := range f.u.Row(f.layout.IofY(y)) {
			e += float64(v) * float64(v)
		}
	}
	return e
}
