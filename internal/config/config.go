package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"runtime"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// ReservoirScale is the edge length, in pixels, of one reservoir cell. The
// porosity bitmask packs exactly four sub-pixels per cell.
const ReservoirScale = 2

// StabilityBound caps M*L for every material. Larger products make the
// leapfrog scheme diverge.
const StabilityBound = 0.5

// Material holds the stencil constants for one rock type. A is derived as M/2
// and B as L.
type Material struct {
	M float32 `yaml:"m"`
	L float32 `yaml:"l"`
}

// Materials lists the constants for every rock type.
type Materials struct {
	Water     Material `yaml:"water"`
	Sandstone Material `yaml:"sandstone"`
	Shale     Material `yaml:"shale"`
}

// Grid sizes the playing area.
type Grid struct {
	Width        int `yaml:"width"`
	Height       int `yaml:"height"`
	MaxWidth     int `yaml:"max_width"`
	MaxHeight    int `yaml:"max_height"`
	HiddenBorder int `yaml:"hidden_border"`
}

// Wave controls the wavefield solver and its decomposition.
type Wave struct {
	Panels        int       `yaml:"panels"`
	PanelsMax     int       `yaml:"panels_max"`
	PumpFactor    int       `yaml:"pump_factor"`
	PumpFactorMax int       `yaml:"pump_factor_max"`
	TileHeight    int       `yaml:"tile_height"`
	TileWidth     int       `yaml:"tile_width"`
	DampSize      int       `yaml:"damp_size"`
	SigmaMax      float32   `yaml:"sigma_max"`
	Kernel        string    `yaml:"kernel"`
	VerifyTiles   bool      `yaml:"verify_tiles"`
	Noise         float32   `yaml:"noise"`
	Materials     Materials `yaml:"materials"`
}

// Reservoir controls the fluid model and drilling.
type Reservoir struct {
	HorizontalPermeability float32 `yaml:"horizontal_permeability"`
	VerticalPermeability   float32 `yaml:"vertical_permeability"`
	SubSteps               int     `yaml:"sub_steps"`
	DrillDiameter          int     `yaml:"drill_diameter"`
	MaxHoles               int     `yaml:"max_holes"`
	HoleFuzz               int     `yaml:"hole_fuzz"`
	MaxTrapVolume          int     `yaml:"max_trap_volume"`
	GasFraction            float32 `yaml:"gas_fraction"`
	OilFraction            float32 `yaml:"oil_fraction"`
	ExtractionPeak         float32 `yaml:"extraction_peak"`
}

// Throttle controls the adaptive worker count.
type Throttle struct {
	BusySlow       float64 `yaml:"busy_slow"`
	BusyFast       float64 `yaml:"busy_fast"`
	LookBack       int     `yaml:"look_back"`
	MissTolerance  int     `yaml:"miss_tolerance"`
	Settle         int     `yaml:"settle"`
	TimeLookback   int     `yaml:"time_lookback"`
	MaxWorkers     int     `yaml:"max_workers"`
	InitialWorkers int     `yaml:"initial_workers"`
}

// Airgun shapes the source pulse.
type Airgun struct {
	Kind      string  `yaml:"kind"`
	Frequency float64 `yaml:"frequency"`
	Amplitude float64 `yaml:"amplitude"`
}

// Config is the full engine configuration.
type Config struct {
	Grid      Grid      `yaml:"grid"`
	Wave      Wave      `yaml:"wave"`
	Reservoir Reservoir `yaml:"reservoir"`
	Throttle  Throttle  `yaml:"throttle"`
	Airgun    Airgun    `yaml:"airgun"`
}

// DefaultConfig returns the standard configuration.
func DefaultConfig() Config {
	return Config{
		Grid: Grid{
			Width:        832 + 2*16,
			Height:       384 + 16,
			MaxWidth:     1924 - 192 + 2*16,
			MaxHeight:    1440/2 + 16,
			HiddenBorder: 16,
		},
		Wave: Wave{
			Panels:        10,
			PanelsMax:     16,
			PumpFactor:    3,
			PumpFactorMax: 5,
			TileHeight:    7,
			TileWidth:     16 * 7,
			DampSize:      16,
			SigmaMax:      0.3,
			Kernel:        "unrolled",
			Noise:         1e-6,
			Materials: Materials{
				Water:     Material{M: 0.50, L: 0.25},
				Sandstone: Material{M: 0.3536, L: 0.7071},
				Shale:     Material{M: 0.25, L: 2.00},
			},
		},
		Reservoir: Reservoir{
			HorizontalPermeability: 0.4,
			VerticalPermeability:   0.1,
			SubSteps:               4,
			DrillDiameter:          9,
			MaxHoles:               20,
			HoleFuzz:               3,
			MaxTrapVolume:          1000000,
			GasFraction:            0.5,
			OilFraction:            0.5,
			ExtractionPeak:         0.2,
		},
		Throttle: Throttle{
			BusySlow:       0.80,
			BusyFast:       0.50,
			LookBack:       15,
			MissTolerance:  3,
			Settle:         15,
			TimeLookback:   6,
			InitialWorkers: 1,
		},
		Airgun: Airgun{
			Kind:      "gaussian",
			Frequency: 1,
			Amplitude: 1,
		},
	}
}

// Load reads a YAML file on top of DefaultConfig and validates the result.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Marshal renders the configuration as YAML.
func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// Bind attaches the most commonly tuned fields to the provided FlagSet.
func (c *Config) Bind(fs *pflag.FlagSet) {
	fs.IntVar(&c.Grid.Width, "width", c.Grid.Width, "wavefield width in pixels including hidden border (multiple of 4)")
	fs.IntVar(&c.Grid.Height, "height", c.Grid.Height, "geology height in pixels including hidden border")
	fs.IntVar(&c.Wave.Panels, "panels", c.Wave.Panels, "number of horizontal panels")
	fs.IntVar(&c.Wave.PumpFactor, "pump-factor", c.Wave.PumpFactor, "simulation steps per frame")
	fs.StringVar(&c.Wave.Kernel, "kernel", c.Wave.Kernel, "interior stencil implementation (scalar|unrolled)")
	fs.BoolVar(&c.Wave.VerifyTiles, "verify-tiles", c.Wave.VerifyTiles, "check tile coverage whenever tiles are rebuilt")
	fs.IntVar(&c.Throttle.MaxWorkers, "max-workers", c.Throttle.MaxWorkers, "upper bound for the worker pool (0 = NumCPU)")
	fs.StringVar(&c.Airgun.Kind, "pulse", c.Airgun.Kind, "airgun pulse kind (square|gaussian|gaussian-slope|ricker)")
	fs.Float64Var(&c.Airgun.Frequency, "frequency", c.Airgun.Frequency, "airgun pulse frequency")
	fs.IntVar(&c.Reservoir.DrillDiameter, "drill-diameter", c.Reservoir.DrillDiameter, "drill diameter in pixels")
}

// WorkerLimit resolves MaxWorkers, defaulting to the number of CPUs.
func (t Throttle) WorkerLimit() int {
	if t.MaxWorkers > 0 {
		return t.MaxWorkers
	}
	return runtime.NumCPU()
}

// VisibleWidth is the width of the wavefield without the hidden border.
func (g Grid) VisibleWidth() int { return g.Width - 2*g.HiddenBorder }

// VisibleHeight is the height of the wavefield without the hidden border.
func (g Grid) VisibleHeight() int { return g.Height - g.HiddenBorder }

// Validate checks every invariant the solvers rely on.
func (c Config) Validate() error {
	if err := c.Grid.validate(); err != nil {
		return err
	}
	if err := c.Wave.validate(c.Grid); err != nil {
		return err
	}
	if err := c.Reservoir.validate(c.Grid); err != nil {
		return err
	}
	if err := c.Throttle.validate(); err != nil {
		return err
	}
	return c.Airgun.validate()
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...)
}

func (g Grid) validate() error {
	if g.Width <= 0 || g.Width > g.MaxWidth {
		return invalid("grid.width %d outside (0, %d]", g.Width, g.MaxWidth)
	}
	if g.Height <= 0 || g.Height > g.MaxHeight {
		return invalid("grid.height %d outside (0, %d]", g.Height, g.MaxHeight)
	}
	if g.Width%4 != 0 {
		return invalid("grid.width %d must be a multiple of 4", g.Width)
	}
	if g.HiddenBorder < 0 || g.HiddenBorder%4 != 0 {
		return invalid("grid.hidden_border %d must be a non-negative multiple of 4", g.HiddenBorder)
	}
	if g.VisibleWidth() < 4 || g.VisibleHeight() < 1 {
		return invalid("grid %dx%d leaves no visible area inside hidden border %d", g.Width, g.Height, g.HiddenBorder)
	}
	if g.Width%ReservoirScale != 0 || g.Height%ReservoirScale != 0 {
		return invalid("grid %dx%d must be divisible by the reservoir scale %d", g.Width, g.Height, ReservoirScale)
	}
	return nil
}

// PanelRows returns the number of rows owned by panel p when the wavefield
// (geology height plus the free-surface row) is split into n panels.
func PanelRows(height, n, p int) int {
	rows := height + 1
	return (rows*(p+1))/n - (rows*p)/n
}

func (w Wave) validate(g Grid) error {
	if w.PanelsMax < 1 {
		return invalid("wave.panels_max %d must be positive", w.PanelsMax)
	}
	if w.Panels < 1 || w.Panels > w.PanelsMax {
		return invalid("wave.panels %d outside [1, %d]", w.Panels, w.PanelsMax)
	}
	if w.PumpFactorMax < 1 {
		return invalid("wave.pump_factor_max %d must be positive", w.PumpFactorMax)
	}
	if w.PumpFactor < 1 || w.PumpFactor > w.PumpFactorMax {
		return invalid("wave.pump_factor %d outside [1, %d]", w.PumpFactor, w.PumpFactorMax)
	}
	if w.TileHeight < 1 {
		return invalid("wave.tile_height %d must be positive", w.TileHeight)
	}
	if w.TileWidth < 4 || w.TileWidth%4 != 0 {
		return invalid("wave.tile_width %d must be a positive multiple of 4", w.TileWidth)
	}
	if w.DampSize < 1 || w.DampSize%4 != 0 {
		return invalid("wave.damp_size %d must be a positive multiple of 4", w.DampSize)
	}
	if g.Width < 2*w.DampSize+4 {
		return invalid("grid.width %d too narrow for two absorbing layers of %d", g.Width, w.DampSize)
	}
	if w.SigmaMax <= 0 || w.SigmaMax >= 2 {
		return invalid("wave.sigma_max %g outside (0, 2)", w.SigmaMax)
	}
	switch w.Kernel {
	case "scalar", "unrolled":
	default:
		return invalid("wave.kernel %q; valid: scalar, unrolled", w.Kernel)
	}
	if w.Noise < 0 || math.IsNaN(float64(w.Noise)) {
		return invalid("wave.noise %g must be a non-negative number", w.Noise)
	}
	for _, m := range []struct {
		name string
		mat  Material
	}{
		{"water", w.Materials.Water},
		{"sandstone", w.Materials.Sandstone},
		{"shale", w.Materials.Shale},
	} {
		if m.mat.M <= 0 || m.mat.L <= 0 {
			return invalid("wave.materials.%s constants must be positive", m.name)
		}
		// Small slack so the shipped shale constants (exactly at the bound) pass.
		if float64(m.mat.M)*float64(m.mat.L) > StabilityBound+1e-6 {
			return invalid("wave.materials.%s M*L = %g exceeds stability bound %g",
				m.name, float64(m.mat.M)*float64(m.mat.L), StabilityBound)
		}
	}
	// Ghost rows are copied from owned rows, so every panel must own at
	// least PumpFactorMax rows. The bottom absorbing layer must stay inside
	// the last panel's owned rows, clear of the rows it shares upward.
	for p := 0; p < w.Panels; p++ {
		rows := PanelRows(g.Height, w.Panels, p)
		need := w.PumpFactorMax
		if p == w.Panels-1 {
			need += w.DampSize
		}
		if rows < need {
			return invalid("wave.panels %d leaves panel %d with %d rows, need %d", w.Panels, p, rows, need)
		}
	}
	return nil
}

func (r Reservoir) validate(g Grid) error {
	if r.HorizontalPermeability < 0 || r.VerticalPermeability < 0 {
		return invalid("reservoir permeabilities must be non-negative")
	}
	// The flow update is unstable once the sum exceeds 1/2.
	if sum := float64(r.HorizontalPermeability) + float64(r.VerticalPermeability); sum > StabilityBound+1e-6 {
		return invalid("reservoir permeability sum %g exceeds %g", sum, StabilityBound)
	}
	if r.SubSteps < 1 {
		return invalid("reservoir.sub_steps %d must be positive", r.SubSteps)
	}
	if r.DrillDiameter < 1 || r.DrillDiameter > g.VisibleWidth() {
		return invalid("reservoir.drill_diameter %d outside [1, %d]", r.DrillDiameter, g.VisibleWidth())
	}
	if r.MaxHoles < 1 {
		return invalid("reservoir.max_holes %d must be positive", r.MaxHoles)
	}
	if r.HoleFuzz < 0 {
		return invalid("reservoir.hole_fuzz %d must be non-negative", r.HoleFuzz)
	}
	if r.MaxTrapVolume < 1 {
		return invalid("reservoir.max_trap_volume %d must be positive", r.MaxTrapVolume)
	}
	if r.GasFraction < 0 || r.OilFraction < 0 || r.GasFraction+r.OilFraction > 1 {
		return invalid("reservoir gas/oil fractions %g/%g must be non-negative and sum to at most 1",
			r.GasFraction, r.OilFraction)
	}
	if r.ExtractionPeak <= 0 || r.ExtractionPeak > 1 {
		return invalid("reservoir.extraction_peak %g outside (0, 1]", r.ExtractionPeak)
	}
	return nil
}

func (t Throttle) validate() error {
	if !(0 < t.BusyFast && t.BusyFast < t.BusySlow) {
		return invalid("throttle thresholds need 0 < busy_fast (%g) < busy_slow (%g)", t.BusyFast, t.BusySlow)
	}
	if t.LookBack < 1 || t.LookBack > 32 {
		return invalid("throttle.look_back %d outside [1, 32]", t.LookBack)
	}
	if t.MissTolerance < 0 || t.MissTolerance >= t.LookBack {
		return invalid("throttle.miss_tolerance %d outside [0, %d)", t.MissTolerance, t.LookBack)
	}
	if t.Settle < 0 {
		return invalid("throttle.settle %d must be non-negative", t.Settle)
	}
	if t.TimeLookback < 1 {
		return invalid("throttle.time_lookback %d must be positive", t.TimeLookback)
	}
	if t.MaxWorkers < 0 {
		return invalid("throttle.max_workers %d must be non-negative", t.MaxWorkers)
	}
	if t.InitialWorkers < 1 || t.InitialWorkers > t.WorkerLimit() {
		return invalid("throttle.initial_workers %d outside [1, %d]", t.InitialWorkers, t.WorkerLimit())
	}
	return nil
}

// Validate checks the airgun settings on their own.
func (a Airgun) Validate() error { return a.validate() }

func (a Airgun) validate() error {
	switch a.Kind {
	case "square", "gaussian", "gaussian-slope", "ricker":
	default:
		return invalid("airgun.kind %q; valid: square, gaussian, gaussian-slope, ricker", a.Kind)
	}
	if a.Frequency <= 0 || a.Frequency > 10 {
		return invalid("airgun.frequency %g outside (0, 10]", a.Frequency)
	}
	if a.Amplitude < 0 || a.Amplitude > 10 {
		return invalid("airgun.amplitude %g outside [0, 10]", a.Amplitude)
	}
	return nil
}
