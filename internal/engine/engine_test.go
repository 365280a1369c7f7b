package engine

import (
	"image/color"
	"os"
	"testing"
	"time"

	"seismic-sim/internal/config"
	"seismic-sim/internal/core"
	"seismic-sim/internal/geology"
	"seismic-sim/internal/render"
	"seismic-sim/internal/reservoir"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	if os.Getenv("DEBUG_TESTS") == "" {
		logrus.SetLevel(logrus.WarnLevel)
	}
	os.Exit(m.Run())
}

var testSize = core.Size{W: 96, H: 160}

func testConfig() config.Config {
	cfg := config.DefaultConfig()
	cfg.Grid.Width = testSize.W
	cfg.Grid.Height = testSize.H
	cfg.Wave.Panels = 3
	cfg.Throttle.MaxWorkers = 2
	return cfg
}

func newEngine(t *testing.T, cfg config.Config, opts ...Option) *Engine {
	t.Helper()
	e, err := New(cfg, opts...)
	require.NoError(t, err)
	t.Cleanup(e.Close)
	return e
}

// hillSection holds one trap of 8 gas and 8 oil cells under column 32.
func hillSection(t *testing.T) core.Section {
	t.Helper()
	bottoms := make([][3]int, testSize.W)
	for x := range bottoms {
		u := x / config.ReservoirScale
		top := 30 + min(max(u-24, 24-u), 10)
		bottoms[x] = [3]int{10, 2 * top, 2*top + 20}
	}
	s, err := geology.FromBottoms(testSize, bottoms)
	require.NoError(t, err)
	return s
}

func flatSection(t *testing.T) core.Section {
	t.Helper()
	s, err := geology.Layered(testSize, 20, 40, 60)
	require.NoError(t, err)
	return s
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Wave.PumpFactor = 0
	_, err := New(cfg)
	assert.ErrorIs(t, err, config.ErrInvalid)
}

func TestFrameWithoutAreaIsEmpty(t *testing.T) {
	e := newEngine(t, testConfig())
	assert.Equal(t, Output{}, e.Frame(core.Update|core.Draw, render.NewCanvas(64, 144)))
	assert.False(t, e.Fire(10, 2))
	assert.Error(t, e.SetPumpFactor(2))
}

func TestPrices(t *testing.T) {
	p := Prices(reservoir.Stats{NumTrap: 1, Volume: [2]int{9, 7}})
	assert.InDelta(t, 400.0/37, p[reservoir.Gas], 1e-4)
	assert.InDelta(t, 400.0/9.25, p[reservoir.Oil], 1e-4)
	assert.Zero(t, p[reservoir.Water])

	p = Prices(reservoir.Stats{Volume: [2]int{0, 10}})
	assert.InDelta(t, 400.0/41, p[reservoir.Gas], 1e-4, "missing gas counts as one cell")
	assert.InDelta(t, 400.0/10.25, p[reservoir.Oil], 1e-4)
}

func TestResetAndFrame(t *testing.T) {
	e := newEngine(t, testConfig())
	stats, err := e.Reset(hillSection(t))
	require.NoError(t, err)
	assert.Equal(t, reservoir.Stats{NumTrap: 1, Volume: [2]int{8, 8}}, stats)
	assert.Equal(t, Prices(stats), e.PhasePrices())

	require.True(t, e.Fire(32, 2))
	assert.False(t, e.Fire(40, 2), "pulse still in flight")

	canvas := render.NewCanvas(64, 144)
	var out Output
	for i := 0; i < 20; i++ {
		out = e.Frame(core.Update|core.Draw, canvas)
	}
	require.Len(t, out.Surface, 64)
	var moved bool
	for _, v := range out.Surface {
		moved = moved || v != 0
	}
	assert.True(t, moved)
	assert.Positive(t, e.Field().Energy())
	assert.Equal(t, [reservoir.NumPhase]float32{}, out.Extracted, "no holes, no extraction")
	assert.Contains(t, []int{1, 2}, out.Workers)
}

func TestPausedFrameDrawsWithoutUpdating(t *testing.T) {
	e := newEngine(t, testConfig())
	_, err := e.Reset(flatSection(t))
	require.NoError(t, err)
	require.True(t, e.Fire(32, 2))
	e.Frame(core.Update, nil)
	before := e.Field().Energy()

	e.SetPaused(true)
	canvas := render.NewCanvas(64, 144)
	out := e.Frame(core.Update|core.Draw, canvas)
	assert.Nil(t, out.Surface)
	assert.Equal(t, before, e.Field().Energy())
	assert.NotEqual(t, color.RGBA{A: 0xff}, canvas.RGBAAt(10, 100), "wavefield was drawn")
	assert.Equal(t, color.RGBA{B: 0xff, A: 0xff}, canvas.RGBAAt(1, 40), "reservoir overlay was drawn")

	e.SetShowReservoir(false)
	canvas = render.NewCanvas(64, 144)
	e.Frame(core.Draw, canvas)
	assert.NotEqual(t, color.RGBA{B: 0xff, A: 0xff}, canvas.RGBAAt(1, 40))
}

func TestThrottleGrowsPoolWhenBusy(t *testing.T) {
	cfg := testConfig()
	cfg.Throttle.Settle = 0
	cfg.Throttle.LookBack = 4
	cfg.Throttle.MissTolerance = 1
	cfg.Throttle.MaxWorkers = 3
	base := time.Unix(0, 0)
	calls := 0
	// Frames take 10ms back to back, so the pool is always busy.
	clock := func() time.Time {
		calls++
		return base.Add(time.Duration(calls/2) * 10 * time.Millisecond)
	}
	e := newEngine(t, cfg, WithClock(clock))
	_, err := e.Reset(flatSection(t))
	require.NoError(t, err)

	var workers []int
	for i := 0; i < 6; i++ {
		out := e.Frame(core.Update, nil)
		assert.Equal(t, 10*time.Millisecond, out.Elapsed)
		workers = append(workers, out.Workers)
	}
	assert.Equal(t, []int{1, 2, 2, 3, 3, 3}, workers)
	assert.Equal(t, 3, e.Workers())
	assert.InDelta(t, 1.0, e.BusyFraction(), 1e-9)
}

func TestDrillingCostsAndEarns(t *testing.T) {
	e := newEngine(t, testConfig())
	_, err := e.Reset(hillSection(t))
	require.NoError(t, err)
	require.True(t, e.MoveRig(32))

	cut := 0
	for {
		_, depth := e.Rig()
		if depth >= 70 {
			break
		}
		cut += e.Drill(1)
	}
	assert.False(t, e.MoveRig(10), "rig is anchored while drilling")
	assert.Positive(t, cut)
	price := 100 / float32(testSize.H-10)
	assert.InDelta(t, -price*float32(cut), e.Cash(), 1e-3)

	before := e.Cash()
	out := e.Frame(core.Update, nil)
	assert.Positive(t, out.Extracted[reservoir.Gas])
	assert.Positive(t, out.Revenue)
	assert.InDelta(t, before+out.Revenue, e.Cash(), 1e-3)
	require.Len(t, e.Reservoir().Holes(), 1)
	assert.Equal(t, 32, e.Reservoir().Holes()[0].X)
}

func TestNewAreaPicksLargestVolume(t *testing.T) {
	e := newEngine(t, testConfig())
	hill, flat := hillSection(t), flatSection(t)
	factory := func(size core.Size, seed int64) core.Section {
		assert.Equal(t, testSize, size)
		if seed == 8 {
			return hill
		}
		return flat
	}
	stats, err := e.NewArea(factory, 7, 3)
	require.NoError(t, err)
	assert.Same(t, hill, e.Section())
	assert.Equal(t, 16, stats.Volume[reservoir.Gas]+stats.Volume[reservoir.Oil])

	_, err = e.NewArea(nil, 0, 3)
	assert.Error(t, err)
	_, err = e.NewArea(func(core.Size, int64) core.Section { return nil }, 0, 2)
	assert.Error(t, err)
}

func TestTunableParameters(t *testing.T) {
	e := newEngine(t, testConfig())
	_, err := e.Reset(flatSection(t))
	require.NoError(t, err)

	values := func() map[string]string {
		out := map[string]string{}
		for _, p := range e.Parameters() {
			out[p.Key] = p.Value
		}
		return out
	}
	require.Len(t, e.ParameterControls(), len(e.Parameters()))

	assert.True(t, e.SetIntParameter("pump_factor", 2))
	assert.False(t, e.SetIntParameter("pump_factor", 99))
	assert.True(t, e.SetIntParameter("color_func", int(render.Log)))
	assert.False(t, e.SetIntParameter("color_func", 7))
	assert.True(t, e.SetFloatParameter("show_geology", 0.5))
	assert.False(t, e.SetFloatParameter("show_seismic", 2))
	assert.True(t, e.SetFloatParameter("frequency", 2))
	assert.False(t, e.SetFloatParameter("frequency", 50))
	assert.False(t, e.SetIntParameter("nope", 1))

	v := values()
	assert.Equal(t, "2", v["pump_factor"])
	assert.Equal(t, "1", v["color_func"])
	assert.Equal(t, "0.50", v["show_geology"])
	assert.Equal(t, "1.00", v["show_seismic"])
	assert.Equal(t, "2.00", v["frequency"])
	assert.Equal(t, render.Log, e.Look().Func)

	require.True(t, e.Fire(20, 2))
	assert.False(t, e.SetFloatParameter("frequency", 1), "cannot swap the gun mid-pulse")
}

func TestPumpFactorSurvivesReset(t *testing.T) {
	e := newEngine(t, testConfig())
	_, err := e.Reset(flatSection(t))
	require.NoError(t, err)
	require.NoError(t, e.SetPumpFactor(2))
	_, err = e.Reset(hillSection(t))
	require.NoError(t, err)
	assert.Equal(t, 2, e.Field().PumpFactor())
}

func TestOverlayMaps(t *testing.T) {
	e := newEngine(t, testConfig())
	assert.Equal(t, core.Size{W: 64, H: 144}, e.VisibleSize())
	assert.Nil(t, e.TileMap())
	assert.Nil(t, e.PorosityMask())

	_, err := e.Reset(flatSection(t))
	require.NoError(t, err)
	tiles := e.TileMap()
	mask := e.PorosityMask()
	require.Len(t, tiles, 64*144)
	require.Len(t, mask, 64*144)
	for i, v := range tiles {
		require.NotZero(t, v, "pixel %d has no tile", i)
	}
	// Sandstone spans rows 40..59 of the flat section.
	assert.Equal(t, uint8(1), mask[45*64+10])
	assert.Equal(t, uint8(0), mask[30*64+10])
}

func TestDrillStopsAtBottom(t *testing.T) {
	e := newEngine(t, testConfig())
	_, err := e.Reset(flatSection(t))
	require.NoError(t, err)
	for i := 0; i < 400; i++ {
		e.Drill(1)
	}
	_, depth := e.Rig()
	assert.GreaterOrEqual(t, depth, 143)
	assert.LessOrEqual(t, depth, 144)
	cash := e.Cash()
	assert.Zero(t, e.Drill(1))
	assert.Equal(t, cash, e.Cash())
}

func TestReservoirOverlayDrawnInBands(t *testing.T) {
	cfg := testConfig()
	cfg.Throttle.InitialWorkers = 2
	e := newEngine(t, cfg)
	_, err := e.Reset(hillSection(t))
	require.NoError(t, err)
	require.Equal(t, 2, e.Workers())
	e.SetPaused(true)
	e.SetShowReservoir(false)

	size := e.VisibleSize()
	want := render.NewCanvas(size.W, size.H)
	e.Frame(core.Draw, want)
	e.Reservoir().Draw(want)

	got := render.NewCanvas(size.W, size.H)
	e.SetShowReservoir(true)
	e.Frame(core.Draw, got)
	assert.Equal(t, want.Pix, got.Pix)
}
