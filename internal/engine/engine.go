// Package engine runs one frame of the simulation: the wavefield and the
// reservoir advance together, the results are drawn, and the worker count is
// retuned between frames.
package engine

import (
	"fmt"
	"image"
	"image/color"
	"time"

	"seismic-sim/internal/airgun"
	"seismic-sim/internal/config"
	"seismic-sim/internal/core"
	"seismic-sim/internal/parallel"
	"seismic-sim/internal/render"
	"seismic-sim/internal/reservoir"
	"seismic-sim/internal/wave"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Output is what one frame produced.
type Output struct {
	// Extracted is the fluid drained by the holes this frame.
	Extracted [reservoir.NumPhase]float32
	// Revenue is Extracted valued at the area's prices.
	Revenue float32
	// Surface holds the vertical velocity along the surface, one sample per
	// visible column. It is nil when the frame did not update.
	Surface []float32
	Workers int
	Busy    float64
	Elapsed time.Duration
}

// Engine owns the simulation state of one playing area.
type Engine struct {
	cfg   config.Config
	clock core.Clock

	gun      *airgun.Gun
	pool     *parallel.Pool
	throttle *parallel.Throttle

	section core.Section
	field   *wave.Field
	res     *reservoir.Reservoir
	stats   reservoir.Stats
	prices  [reservoir.NumPhase]float32

	look          render.Look
	paused        bool
	showReservoir bool
	surface       []float32
	holeColors    [core.NumLayer]color.RGBA

	rigX, drillY int
	drillPrice   float32
	cash         float32
	frames       int
}

// Option customizes New.
type Option func(*Engine)

// WithClock replaces the wall clock used to time frames.
func WithClock(c core.Clock) Option {
	return func(e *Engine) {
		if c != nil {
			e.clock = c
		}
	}
}

// New validates cfg and starts the worker pool. Call Reset before the first
// frame.
func New(cfg config.Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	gun, err := airgun.New(cfg.Airgun)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrInvalid, err)
	}
	limit := cfg.Throttle.WorkerLimit()
	e := &Engine{
		cfg:           cfg,
		clock:         core.SystemClock,
		gun:           gun,
		throttle:      parallel.NewThrottle(cfg.Throttle, cfg.Throttle.InitialWorkers, limit),
		look:          render.DefaultLook(),
		showReservoir: true,
		surface:       make([]float32, cfg.Grid.VisibleWidth()),
	}
	e.pool = parallel.NewPool(e.throttle.Workers())
	for l := core.Ocean; l < core.NumLayer; l++ {
		e.holeColors[l] = render.RockColor(int(wave.RockOf(l)))
	}
	for _, o := range opts {
		o(e)
	}
	return e, nil
}

// Close stops the worker pool.
func (e *Engine) Close() { e.pool.Close() }

// Reset rebuilds the wavefield and reservoir for section and reprices the
// fluids from its traps.
func (e *Engine) Reset(s core.Section) (reservoir.Stats, error) {
	res, stats, err := reservoir.New(e.cfg, s)
	if err != nil {
		return reservoir.Stats{}, fmt.Errorf("reservoir: %w", err)
	}
	field, err := wave.New(e.cfg, s)
	if err != nil {
		return reservoir.Stats{}, fmt.Errorf("wavefield: %w", err)
	}
	if e.field != nil {
		if err := field.SetPumpFactor(e.field.PumpFactor()); err != nil {
			return reservoir.Stats{}, err
		}
	}
	e.section, e.field, e.res, e.stats = s, field, res, stats
	e.prices = Prices(stats)
	e.rigX = e.cfg.Grid.VisibleWidth() * 6 / 10
	e.drillY = 0
	e.drillPrice = 100 / float32(max(e.cfg.Grid.Height-s.OceanFloor(), 1))
	e.frames = 0
	logrus.Infof("new area: %d traps, gas %d, oil %d; prices gas %.3g oil %.3g",
		stats.NumTrap, stats.Volume[reservoir.Gas], stats.Volume[reservoir.Oil],
		e.prices[reservoir.Gas], e.prices[reservoir.Oil])
	return stats, nil
}

// Frame advances the simulation when req has core.Update and the engine is
// not paused, and draws into canvas when req has core.Draw. canvas covers
// the visible area. The worker count is retuned after the frame.
func (e *Engine) Frame(req core.Request, canvas *image.RGBA) Output {
	if e.field == nil {
		return Output{}
	}
	if e.paused {
		req &^= core.Update
	}
	if canvas == nil {
		req &^= core.Draw
	}
	t0 := e.clock()
	var out Output
	var g errgroup.Group
	g.Go(func() error {
		e.field.UpdateDraw(req, canvas, e.look, e.gun, e.pool)
		return nil
	})
	if req&core.Update != 0 {
		g.Go(func() error {
			out.Extracted = e.res.Update()
			return nil
		})
	}
	_ = g.Wait()

	if req&core.Update != 0 {
		n := e.field.CopySurface(e.surface)
		out.Surface = e.surface[:n]
		for k, v := range out.Extracted {
			out.Revenue += v * e.prices[k]
		}
		e.cash += out.Revenue
		e.frames++
	}
	if req&core.Draw != 0 {
		e.res.DrawHoles(canvas, e.holeColors)
		if e.showReservoir {
			e.drawReservoir(canvas)
		}
	}
	t1 := e.clock()

	out.Elapsed = t1.Sub(t0)
	if req&core.Update != 0 {
		if n, changed := e.throttle.Observe(t0, t1); changed {
			e.pool.Resize(n)
		}
	}
	out.Workers = e.pool.Workers()
	out.Busy = e.throttle.BusyFraction()
	logrus.Debugf("frame %d: %v, busy %.2f, %d workers", e.frames, out.Elapsed, out.Busy, out.Workers)
	return out
}

// drawReservoir splits the visible reservoir rows into one band per worker.
func (e *Engine) drawReservoir(canvas *image.RGBA) {
	rows := canvas.Rect.Dy() / config.ReservoirScale
	n := min(max(e.pool.Workers(), 1), max(rows, 1))
	parallel.GhostCell(n, parallel.Bands(func(i int) {
		e.res.DrawRows(canvas, i*rows/n, (i+1)*rows/n)
	}), e.pool)
}

// Fire shoots the airgun at visible column x and geology row y. It reports
// false while the previous pulse is still in flight.
func (e *Engine) Fire(x, y int) bool {
	if e.field == nil || e.gun.Busy() {
		return false
	}
	if err := e.field.SetImpulseLocation(x, y); err != nil {
		logrus.Warnf("airgun: %v", err)
		return false
	}
	return e.gun.Fire(x, y)
}

// SetPumpFactor changes the number of wave steps per frame.
func (e *Engine) SetPumpFactor(d int) error {
	if e.field == nil {
		return fmt.Errorf("engine: no area")
	}
	return e.field.SetPumpFactor(d)
}

// MoveRig positions the rig at visible column x. The rig cannot move while
// the drill is down.
func (e *Engine) MoveRig(x int) bool {
	if e.drillY > 0 {
		return false
	}
	e.rigX = min(max(x, 0), e.cfg.Grid.VisibleWidth()-1)
	return true
}

// Drill moves the drill bit one step down (dir > 0) or up (dir < 0),
// starting or reusing a hole when the bit leaves the surface, and charges
// for the rock cut. The bit stops at the bottom of the visible area. It
// returns the rows cut.
func (e *Engine) Drill(dir int) int {
	if e.res == nil || dir == 0 {
		return 0
	}
	if dir > 0 && e.drillY >= e.cfg.Grid.VisibleHeight()-1 {
		return 0
	}
	if dir > 0 && e.drillY == 0 {
		e.rigX = e.res.StartHole(e.rigX)
	}
	cut := e.res.UpdateHole(&e.drillY, dir)
	e.cash -= e.drillPrice * float32(cut)
	return cut
}

// Rig returns the rig column and drill depth.
func (e *Engine) Rig() (x, depth int) { return e.rigX, e.drillY }

// Workers returns the current worker count.
func (e *Engine) Workers() int { return e.pool.Workers() }

// BusyFraction returns the throttle's last busy fraction.
func (e *Engine) BusyFraction() float64 { return e.throttle.BusyFraction() }

// Stats returns the statistics of the current area.
func (e *Engine) Stats() reservoir.Stats { return e.stats }

// PhasePrices returns the value of one unit of each phase in this area.
func (e *Engine) PhasePrices() [reservoir.NumPhase]float32 { return e.prices }

// Cash returns revenue minus drilling cost since New.
func (e *Engine) Cash() float32 { return e.cash }

// Paused reports whether updates are suspended.
func (e *Engine) Paused() bool { return e.paused }

// SetPaused suspends or resumes updates; drawing continues.
func (e *Engine) SetPaused(p bool) { e.paused = p }

// Look returns the current wavefield colouring.
func (e *Engine) Look() render.Look { return e.look }

// SetLook changes the wavefield colouring.
func (e *Engine) SetLook(l render.Look) { e.look = l }

// SetShowReservoir toggles the fluid overlay.
func (e *Engine) SetShowReservoir(v bool) { e.showReservoir = v }

// ShowReservoir reports whether the fluid overlay is drawn.
func (e *Engine) ShowReservoir() bool { return e.showReservoir }

// Field returns the wavefield of the current area.
func (e *Engine) Field() *wave.Field { return e.field }

// Reservoir returns the reservoir of the current area.
func (e *Engine) Reservoir() *reservoir.Reservoir { return e.res }

// Section returns the geology of the current area.
func (e *Engine) Section() core.Section { return e.section }

// Config returns the engine configuration.
func (e *Engine) Config() config.Config { return e.cfg }

// VisibleSize returns the size of the drawn area in pixels.
func (e *Engine) VisibleSize() core.Size {
	return core.Size{W: e.cfg.Grid.VisibleWidth(), H: e.cfg.Grid.VisibleHeight()}
}

// TileMap returns the wavefield tile tags per visible pixel, or nil before
// the first Reset.
func (e *Engine) TileMap() []uint8 {
	if e.field == nil {
		return nil
	}
	return e.field.TileMap()
}

// PorosityMask marks the visible pixels inside porous reservoir cells, or
// returns nil before the first Reset.
func (e *Engine) PorosityMask() []uint8 {
	if e.res == nil {
		return nil
	}
	s := e.VisibleSize()
	return e.res.PorosityMask(s.W, s.H)
}
