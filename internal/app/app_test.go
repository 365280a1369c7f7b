package app

import (
	"os"
	"strings"
	"testing"

	"seismic-sim/internal/config"
	"seismic-sim/internal/core"
	"seismic-sim/internal/engine"
	_ "seismic-sim/internal/geology"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	if os.Getenv("DEBUG_TESTS") == "" {
		logrus.SetLevel(logrus.WarnLevel)
	}
	os.Exit(m.Run())
}

func TestConfigBind(t *testing.T) {
	cfg := NewConfig()
	fs := pflag.NewFlagSet("view", pflag.ContinueOnError)
	cfg.Bind(fs)
	require.NoError(t, fs.Parse([]string{"--section", "layered", "--scale", "2", "--seed", "9", "--hud-width", "0"}))
	assert.Equal(t, "layered", cfg.Section)
	assert.Equal(t, 2, cfg.Scale)
	assert.Equal(t, int64(9), cfg.Seed)
	assert.Zero(t, cfg.HUDWidth)
	assert.Equal(t, 60, cfg.TPS)
}

func TestFactory(t *testing.T) {
	cfg := NewConfig()
	f, err := cfg.Factory()
	require.NoError(t, err)
	assert.NotNil(t, f)

	cfg.Section = "volcano"
	_, err = cfg.Factory()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "anticline")
	assert.Equal(t, []string{"anticline", "layered", "twin-anticline"}, SectionNames())
}

func TestStatusLines(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Grid.Width, cfg.Grid.Height = 96, 160
	cfg.Wave.Panels = 2
	e, err := engine.New(cfg)
	require.NoError(t, err)
	defer e.Close()
	_, err = e.NewArea(core.Sections()["layered"], 1, 1)
	require.NoError(t, err)

	out := e.Frame(core.Update, nil)
	lines := StatusLines(e, out, true)
	assert.Contains(t, lines[0], "workers")
	assert.Equal(t, "paused", lines[len(lines)-1])
	assert.True(t, strings.HasPrefix(lines[3], "rig 38"))
	for _, l := range lines {
		assert.NotContains(t, l, "pumping", "nothing is extracted without holes")
	}
}
