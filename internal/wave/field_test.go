package wave

import (
	"math"
	"os"
	"testing"

	"seismic-sim/internal/config"
	"seismic-sim/internal/core"
	"seismic-sim/internal/geology"
	"seismic-sim/internal/parallel"
	"seismic-sim/internal/render"
	prng "seismic-sim/pkg/core"

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

func testConfig(panels, pump int) config.Config {
	cfg := config.DefaultConfig()
	cfg.Grid.Width = 96
	cfg.Grid.Height = 160
	cfg.Wave.Panels = panels
	cfg.Wave.PumpFactor = pump
	cfg.Wave.Noise = 0
	cfg.Wave.VerifyTiles = true
	return cfg
}

func testSection(t *testing.T, cfg config.Config, seed int64) core.Section {
	t.Helper()
	size := core.Size{W: cfg.Grid.Width, H: cfg.Grid.Height}
	m, err := geology.Generate(size, geology.DefaultParams(), prng.NewRNG(seed))
	require.NoError(t, err)
	return m
}

// pulseSource replays fixed values, one per sub-step, then zeros.
type pulseSource struct {
	values []float32
	n      int
}

func (s *pulseSource) Impulse(float32) float32 {
	if s.n < len(s.values) {
		v := s.values[s.n]
		s.n++
		return v
	}
	s.n++
	return 0
}

func run(f *Field, frames int, src Source, pool *parallel.Pool) {
	for k := 0; k < frames; k++ {
		f.UpdateDraw(core.Update, nil, render.DefaultLook(), src, pool)
	}
}

func TestTilingCoversEveryStage(t *testing.T) {
	rng := prng.NewRNG(42)
	for trial := 0; trial < 40; trial++ {
		cfg := testConfig(1+rng.IntN(7), 1+rng.IntN(5))
		cfg.Wave.TileHeight = 1 + rng.IntN(15)
		cfg.Wave.TileWidth = 4 * (1 + rng.IntN(30))
		f, err := New(cfg, testSection(t, cfg, int64(trial)))
		require.NoError(t, err, "trial %d: %+v", trial, cfg.Wave)
		for d := 1; d <= cfg.Wave.PumpFactorMax; d++ {
			require.NoError(t, f.SetPumpFactor(d), "trial %d pump %d", trial, d)
			require.NoError(t, f.VerifyTiles())
		}
	}
}

func TestWideTilesSplitAtBothSides(t *testing.T) {
	cfg := testConfig(1, 1)
	cfg.Wave.TileWidth = 128
	cfg.Wave.TileHeight = 200
	require.Greater(t, cfg.Wave.TileWidth, cfg.Grid.Width-2*cfg.Wave.DampSize)
	require.NoError(t, cfg.Validate())

	f, err := New(cfg, testSection(t, cfg, 9))
	require.NoError(t, err)
	for d := 1; d <= cfg.Wave.PumpFactorMax; d++ {
		require.NoError(t, f.SetPumpFactor(d))
		require.NoError(t, f.VerifyTiles(), "pump %d", d)
		for _, tile := range f.Tiles(0) {
			for _, corner := range [][2]int{{tile.I1 - 1, tile.J0}, {tile.I0, tile.J1 - 1}, {tile.I1 - 1, tile.J1 - 1}} {
				assert.Equal(t, f.classify(tile.I0, tile.J0), f.classify(corner[0], corner[1]), "pump %d tile %+v", d, tile)
			}
		}
	}
}

func TestVerifyTilesDetectsGap(t *testing.T) {
	cfg := testConfig(3, 3)
	f, err := New(cfg, testSection(t, cfg, 1))
	require.NoError(t, err)
	tiles := f.tiles[1]
	f.tiles[1] = append(tiles[:5:5], tiles[6:]...)
	assert.Error(t, f.VerifyTiles())
}

func TestVerifyTilesDetectsMislabel(t *testing.T) {
	cfg := testConfig(2, 2)
	f, err := New(cfg, geology.Uniform(core.Size{W: 96, H: 160}, core.BottomShale))
	require.NoError(t, err)
	for n, tile := range f.tiles[0] {
		if tile.Tag == Left {
			f.tiles[0][n].Tag = HeterogeneousInterior
			break
		}
	}
	assert.Error(t, f.VerifyTiles())
}

func TestTilesNeverStraddleRegions(t *testing.T) {
	cfg := testConfig(4, 4)
	sec, err := geology.Layered(core.Size{W: 96, H: 160}, 20, 40, 60)
	require.NoError(t, err)
	f, err := New(cfg, sec)
	require.NoError(t, err)
	counts := map[Tag]int{}
	for p := 0; p < f.Panels(); p++ {
		for _, tile := range f.Tiles(p) {
			counts[tile.Tag]++
			want := f.classify(tile.I0, tile.J0)
			got := f.classify(tile.I1-1, tile.J1-1)
			require.Equal(t, want, got, "tile %+v straddles regions", tile)
		}
	}
	for _, tag := range []Tag{Top, Left, Right, Bottom, BottomLeft, BottomRight, HeterogeneousInterior, HomogeneousInterior} {
		assert.Positive(t, counts[tag], "no %v tiles", tag)
	}
}

func TestHomogeneousMediumStaysAtRest(t *testing.T) {
	for _, l := range []core.Layer{core.Ocean, core.MiddleSandstone, core.BottomShale} {
		cfg := testConfig(3, 3)
		f, err := New(cfg, geology.Uniform(core.Size{W: 96, H: 160}, l))
		require.NoError(t, err)
		run(f, 100, nil, nil)
		assert.Zero(t, f.Energy(), "layer %v", l)
	}
}

func TestNoiseStaysBounded(t *testing.T) {
	cfg := testConfig(3, 3)
	cfg.Wave.Noise = 1e-6
	f, err := New(cfg, testSection(t, cfg, 4))
	require.NoError(t, err)
	pool := parallel.NewPool(3)
	defer pool.Close()
	run(f, 300, nil, pool)
	for y := -1; y < cfg.Grid.Height; y++ {
		for j := 0; j < cfg.Grid.Width; j++ {
			v := f.Pressure(y, j)
			require.False(t, math.IsNaN(float64(v)))
			require.Less(t, math.Abs(float64(v)), 1e-4, "cell (%d,%d) grew to %g", y, j, v)
		}
	}
}

func TestPointSourceIsCausalAndSymmetric(t *testing.T) {
	cfg := testConfig(1, 1)
	f, err := New(cfg, geology.Uniform(core.Size{W: 96, H: 160}, core.MiddleSandstone))
	require.NoError(t, err)
	const x0, y0, steps = 32, 60, 20
	require.NoError(t, f.SetImpulseLocation(x0, y0))
	j0 := x0 + cfg.Grid.HiddenBorder
	run(f, steps, &pulseSource{values: []float32{100}}, nil)

	var peak float64
	for y := -1; y < cfg.Grid.Height; y++ {
		for j := 0; j < cfg.Grid.Width; j++ {
			v := f.Pressure(y, j)
			dist := abs(y-y0) + abs(j-j0)
			if dist > steps {
				require.Zero(t, v, "disturbance at (%d,%d), %d cells from the source after %d steps", y, j, dist, steps)
			}
			peak = math.Max(peak, math.Abs(float64(v)))
		}
	}
	require.Positive(t, peak)
	for y := y0 - steps; y <= y0+steps; y++ {
		for d := 1; d <= steps; d++ {
			l, r := f.Pressure(y, j0-d), f.Pressure(y, j0+d)
			require.InDelta(t, l, r, 1e-6*peak, "asymmetry at row %d offset %d", y, d)
		}
	}
}

func TestPanelsMatchSinglePanel(t *testing.T) {
	ref := testConfig(1, 1)
	sec := testSection(t, ref, 11)
	single, err := New(ref, sec)
	require.NoError(t, err)
	require.NoError(t, single.SetImpulseLocation(20, 30))

	multiCfg := testConfig(5, 3)
	multi, err := New(multiCfg, sec)
	require.NoError(t, err)
	require.NoError(t, multi.SetImpulseLocation(20, 30))

	pulse := []float32{5, 20, 60, 20, 5, -10, -30}
	pool := parallel.NewPool(4)
	defer pool.Close()
	run(single, 30, &pulseSource{values: pulse}, nil)
	run(multi, 10, &pulseSource{values: pulse}, pool)

	var peak float64
	for y := -1; y < ref.Grid.Height; y++ {
		for j := 0; j < ref.Grid.Width; j++ {
			peak = math.Max(peak, math.Abs(float64(single.Pressure(y, j))))
		}
	}
	require.Positive(t, peak)
	for y := -1; y < ref.Grid.Height; y++ {
		for j := 0; j < ref.Grid.Width; j++ {
			require.InDelta(t, single.Pressure(y, j), multi.Pressure(y, j), 1e-5*peak, "cell (%d,%d)", y, j)
		}
	}
}

func TestKernelsAgree(t *testing.T) {
	cfg := testConfig(3, 2)
	sec := testSection(t, cfg, 5)
	a, err := New(cfg, sec, WithKernel(ScalarKernel))
	require.NoError(t, err)
	b, err := New(cfg, sec, WithKernel(UnrolledKernel))
	require.NoError(t, err)
	require.Equal(t, "scalar", a.Kernel().Name())
	require.Equal(t, "unrolled", b.Kernel().Name())
	for _, f := range []*Field{a, b} {
		require.NoError(t, f.SetImpulseLocation(40, 50))
		run(f, 40, &pulseSource{values: []float32{10, 40, 10}}, nil)
	}
	scale := math.Sqrt(a.Energy())
	require.Positive(t, scale)
	for y := -1; y < cfg.Grid.Height; y++ {
		for j := 0; j < cfg.Grid.Width; j++ {
			require.InDelta(t, a.Pressure(y, j), b.Pressure(y, j), 1e-5*scale, "cell (%d,%d)", y, j)
		}
	}
}

func TestAbsorbingLayersDrainEnergy(t *testing.T) {
	cfg := testConfig(2, 3)
	f, err := New(cfg, geology.Uniform(core.Size{W: 96, H: 160}, core.Ocean))
	require.NoError(t, err)
	require.NoError(t, f.SetImpulseLocation(32, 70))
	src := &pulseSource{values: []float32{10, 50, 100, 50, 10}}
	var peak float64
	for k := 0; k < 1000; k++ {
		run(f, 1, src, nil)
		peak = math.Max(peak, f.Energy())
	}
	require.Positive(t, peak)
	assert.Less(t, f.Energy(), 0.1*peak)
}

func TestSetPumpFactor(t *testing.T) {
	cfg := testConfig(3, 3)
	f, err := New(cfg, testSection(t, cfg, 2))
	require.NoError(t, err)
	assert.ErrorIs(t, f.SetPumpFactor(0), config.ErrInvalid)
	assert.ErrorIs(t, f.SetPumpFactor(cfg.Wave.PumpFactorMax+1), config.ErrInvalid)
	before := len(f.Tiles(1))
	require.NoError(t, f.SetPumpFactor(1))
	assert.Equal(t, 1, f.PumpFactor())
	assert.Less(t, len(f.Tiles(1)), before)
	require.NoError(t, f.VerifyTiles())
}

func TestNewRejectsMismatchedSection(t *testing.T) {
	cfg := testConfig(2, 2)
	_, err := New(cfg, geology.Uniform(core.Size{W: 100, H: 160}, core.Ocean))
	assert.ErrorIs(t, err, config.ErrInvalid)
}

func TestMediumFollowsSection(t *testing.T) {
	cfg := testConfig(4, 2)
	sec := testSection(t, cfg, 8)
	f, err := New(cfg, sec)
	require.NoError(t, err)
	for y := 0; y < cfg.Grid.Height; y++ {
		for j := 0; j < cfg.Grid.Width; j++ {
			require.Equal(t, RockOf(sec.Layer(j, y)), f.RockAt(y, j), "cell (%d,%d)", y, j)
		}
	}
}

func TestSetImpulseLocationBounds(t *testing.T) {
	cfg := testConfig(2, 2)
	f, err := New(cfg, testSection(t, cfg, 3))
	require.NoError(t, err)
	assert.NoError(t, f.SetImpulseLocation(0, 0))
	assert.Error(t, f.SetImpulseLocation(0, cfg.Grid.Height))
	assert.Error(t, f.SetImpulseLocation(cfg.Grid.Width, 5))
	assert.Error(t, f.SetImpulseLocation(-cfg.Grid.HiddenBorder-1, 5))
}

func TestCopySurfaceAndDraw(t *testing.T) {
	cfg := testConfig(3, 3)
	f, err := New(cfg, geology.Uniform(core.Size{W: 96, H: 160}, core.Ocean))
	require.NoError(t, err)
	vw, vh := cfg.Grid.VisibleWidth(), cfg.Grid.VisibleHeight()
	out := make([]float32, 200)
	assert.Equal(t, vw, f.CopySurface(out))

	canvas := render.NewCanvas(vw, vh)
	look := render.DefaultLook()
	f.UpdateDraw(core.Draw, canvas, look, nil, nil)
	want := render.BuildClut(look)[Water][render.ClutSize/2]
	for _, pt := range [][2]int{{0, 0}, {vw - 1, vh - 1}, {vw / 2, vh / 2}} {
		assert.Equal(t, want, canvas.RGBAAt(pt[0], pt[1]), "pixel %v", pt)
	}
	assert.Zero(t, f.Energy(), "draw-only frames must not advance the field")

	require.NoError(t, f.SetImpulseLocation(vw/2, 0))
	run(f, 5, &pulseSource{values: []float32{50, 50, 50}}, nil)
	f.CopySurface(out)
	var moved bool
	for _, v := range out[:vw] {
		moved = moved || v != 0
	}
	assert.True(t, moved, "surface velocity should respond to a shallow source")
}

func TestTileMapCoversVisibleArea(t *testing.T) {
	cfg := testConfig(3, 2)
	f, err := New(cfg, testSection(t, cfg, 6))
	require.NoError(t, err)
	m := f.TileMap()
	require.Len(t, m, cfg.Grid.VisibleWidth()*cfg.Grid.VisibleHeight())
	for i, v := range m {
		require.NotZero(t, v, "pixel %d not covered", i)
	}
}

func TestKernelByName(t *testing.T) {
	k, err := KernelByName("unrolled")
	require.NoError(t, err)
	assert.Equal(t, UnrolledKernel, k)
	_, err = KernelByName("avx")
	assert.Error(t, err)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
