package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigValid(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
}

func TestValidateRejects(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"width not multiple of 4", func(c *Config) { c.Grid.Width = 862 }},
		{"width above max", func(c *Config) { c.Grid.Width = c.Grid.MaxWidth + 4 }},
		{"height above max", func(c *Config) { c.Grid.Height = c.Grid.MaxHeight + 2 }},
		{"pump factor zero", func(c *Config) { c.Wave.PumpFactor = 0 }},
		{"pump factor above max", func(c *Config) { c.Wave.PumpFactor = c.Wave.PumpFactorMax + 1 }},
		{"too many panels", func(c *Config) { c.Wave.Panels = 17 }},
		{"panels too thin", func(c *Config) { c.Wave.Panels = 16; c.Grid.Height = 60 }},
		{"tile width not multiple of 4", func(c *Config) { c.Wave.TileWidth = 30 }},
		{"unknown kernel", func(c *Config) { c.Wave.Kernel = "sse" }},
		{"unstable material", func(c *Config) { c.Wave.Materials.Shale.L = 2.5 }},
		{"permeability sum", func(c *Config) { c.Reservoir.HorizontalPermeability = 0.45 }},
		{"throttle thresholds inverted", func(c *Config) { c.Throttle.BusyFast = 0.9 }},
		{"tolerance beyond lookback", func(c *Config) { c.Throttle.MissTolerance = 15 }},
		{"fractions above one", func(c *Config) { c.Reservoir.GasFraction = 0.7 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestPermeabilitySumMayReachBound(t *testing.T) {
	cfg := DefaultConfig()
	assert.InDelta(t, StabilityBound, float64(cfg.Reservoir.HorizontalPermeability+cfg.Reservoir.VerticalPermeability), 1e-6)
	require.NoError(t, cfg.Validate())

	cfg.Reservoir.HorizontalPermeability = 0.41
	assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
}

func TestShippedMaterialsRespectStabilityBound(t *testing.T) {
	m := DefaultConfig().Wave.Materials
	for _, mat := range []Material{m.Water, m.Sandstone, m.Shale} {
		assert.LessOrEqual(t, float64(mat.M*mat.L), StabilityBound+1e-6)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seismic.yaml")
	body := []byte("wave:\n  pump_factor: 2\n  kernel: scalar\nreservoir:\n  max_holes: 5\n")
	require.NoError(t, os.WriteFile(path, body, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Wave.PumpFactor)
	assert.Equal(t, "scalar", cfg.Wave.Kernel)
	assert.Equal(t, 5, cfg.Reservoir.MaxHoles)
	assert.Equal(t, DefaultConfig().Grid, cfg.Grid)
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("wave:\n  panels: 40\n"), 0o644))
	_, err := Load(path)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestBindParsesFlags(t *testing.T) {
	cfg := DefaultConfig()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	cfg.Bind(fs)
	require.NoError(t, fs.Parse([]string{"--pump-factor=4", "--kernel=scalar", "--verify-tiles"}))
	assert.Equal(t, 4, cfg.Wave.PumpFactor)
	assert.Equal(t, "scalar", cfg.Wave.Kernel)
	assert.True(t, cfg.Wave.VerifyTiles)
}

func TestMarshalRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Wave.Panels = 4
	data, err := cfg.Marshal()
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "rt.yaml")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	back, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, back)
}

func TestPanelRowsCoverHeight(t *testing.T) {
	for n := 1; n <= 16; n++ {
		total := 0
		for p := 0; p < n; p++ {
			total += PanelRows(400, n, p)
		}
		assert.Equal(t, 401, total, "panels=%d", n)
	}
}
