package app

import (
	"fmt"
	"sort"

	"seismic-sim/internal/core"

	"github.com/spf13/pflag"
)

// Config represents the viewer's command-line parameters.
type Config struct {
	Section  string
	Scale    int
	TPS      int
	Seed     int64
	Trials   int
	HUDWidth int
}

// NewConfig returns a Config populated with sensible defaults.
func NewConfig() *Config {
	return &Config{Section: "anticline", Scale: 1, TPS: 60, Seed: 42, Trials: 4, HUDWidth: 240}
}

// Bind attaches the configuration to the provided FlagSet.
func (c *Config) Bind(fs *pflag.FlagSet) {
	fs.StringVar(&c.Section, "section", c.Section, "geology generator to play on")
	fs.IntVar(&c.Scale, "scale", c.Scale, "pixel scale multiplier")
	fs.IntVar(&c.TPS, "tps", c.TPS, "frames per second")
	fs.Int64Var(&c.Seed, "seed", c.Seed, "seed for the first area")
	fs.IntVar(&c.Trials, "trials", c.Trials, "candidate areas generated per new area")
	fs.IntVar(&c.HUDWidth, "hud-width", c.HUDWidth, "width of the control panel in pixels (0 hides it)")
}

// Factory resolves the configured section generator.
func (c *Config) Factory() (core.SectionFactory, error) {
	f, ok := core.Sections()[c.Section]
	if !ok {
		return nil, fmt.Errorf("unknown section %q (have %v)", c.Section, SectionNames())
	}
	return f, nil
}

// SectionNames lists the registered section generators in order.
func SectionNames() []string {
	names := make([]string, 0, len(core.Sections()))
	for n := range core.Sections() {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
