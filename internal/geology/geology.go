package geology

import (
	"fmt"
	"math"

	"seismic-sim/internal/core"
	prng "seismic-sim/pkg/core"
)

// Model is a section described by the bottom of each upper layer per column.
type Model struct {
	w, h       int
	oceanFloor int
	bottoms    [][3]int
}

var _ core.Section = (*Model)(nil)

// Size returns the section dimensions.
func (m *Model) Size() core.Size { return core.Size{W: m.w, H: m.h} }

// Layer returns the layer containing pixel (x, y).
func (m *Model) Layer(x, y int) core.Layer {
	b := &m.bottoms[x]
	if y < b[1] {
		if y < b[0] {
			return core.Ocean
		}
		return core.TopShale
	}
	if y < b[2] {
		return core.MiddleSandstone
	}
	return core.BottomShale
}

// Bottom returns one past the last row of layer l in column x.
func (m *Model) Bottom(l core.Layer, x int) int {
	return m.bottoms[x][l]
}

// OceanFloor returns the ocean depth in pixels.
func (m *Model) OceanFloor() int { return m.oceanFloor }

// FromBottoms builds a Model from explicit per-column bottoms of the ocean,
// top shale and sandstone layers.
func FromBottoms(size core.Size, bottoms [][3]int) (*Model, error) {
	if size.W <= 0 || size.H <= 0 {
		return nil, fmt.Errorf("geology: invalid size %dx%d", size.W, size.H)
	}
	if len(bottoms) != size.W {
		return nil, fmt.Errorf("geology: %d columns of bottoms for width %d", len(bottoms), size.W)
	}
	floor := size.H
	for x, b := range bottoms {
		if b[0] < 0 || b[0] > b[1] || b[1] > b[2] || b[2] > size.H {
			return nil, fmt.Errorf("geology: column %d layers out of order: %v", x, b)
		}
		floor = min(floor, b[0])
	}
	return &Model{w: size.W, h: size.H, oceanFloor: floor, bottoms: bottoms}, nil
}

// Uniform returns a section made entirely of one layer.
func Uniform(size core.Size, l core.Layer) *Model {
	var b [3]int
	for k := range b {
		if core.Layer(k) >= l {
			b[k] = size.H
		}
	}
	bottoms := make([][3]int, size.W)
	for x := range bottoms {
		bottoms[x] = b
	}
	floor := 0
	if l == core.Ocean {
		floor = size.H
	}
	return &Model{w: size.W, h: size.H, oceanFloor: floor, bottoms: bottoms}
}

// Layered returns flat layers with the given bottoms.
func Layered(size core.Size, ocean, topShale, sandstone int) (*Model, error) {
	bottoms := make([][3]int, size.W)
	for x := range bottoms {
		bottoms[x] = [3]int{ocean, topShale, sandstone}
	}
	return FromBottoms(size, bottoms)
}

// Params shapes a generated section. Depths are fractions of the height.
type Params struct {
	Bumps          int
	OceanDepth     float32
	SandstoneDepth float32
	Curvature      float32
	Dip            float32
	Border         int
}

// DefaultParams returns a single anticline under a shallow ocean.
func DefaultParams() Params {
	return Params{
		Bumps:          1,
		OceanDepth:     0.1,
		SandstoneDepth: 0.5,
		Curvature:      0.25,
		Dip:            0.1,
		Border:         16,
	}
}

const (
	maxBumps           = 8
	shaleMinThinness   = 0.05
	sandstoneThickness = 0.1
)

// Generate builds a section whose sandstone layer follows a sum of gaussian
// bumps plus a linear dip.
func Generate(size core.Size, p Params, rng *prng.RNG) (*Model, error) {
	if p.Bumps < 0 || p.Bumps > maxBumps {
		return nil, fmt.Errorf("geology: bumps %d outside [0, %d]", p.Bumps, maxBumps)
	}
	if p.Curvature < 0 || p.Curvature > 1 || p.SandstoneDepth < 0 || p.SandstoneDepth > 1 {
		return nil, fmt.Errorf("geology: curvature and sandstone depth must be in [0, 1]")
	}
	if p.OceanDepth < 0 || p.OceanDepth+2*shaleMinThinness+sandstoneThickness >= 1 {
		return nil, fmt.Errorf("geology: ocean depth %g leaves no room for rock", p.OceanDepth)
	}
	w, h := size.W, size.H

	dipSlope := p.Dip * rng.Choose(0.5, 1) / float32(max(w-1, 1))
	var dip0 float32
	if rng.Choose(0, 1) > 0.5 {
		dip0 = float32(w-1) * dipSlope
		dipSlope = -dipSlope
	}
	bump := bumps(p.Bumps, w, p.Border, rng)

	curve := make([]float32, w)
	curveMin, curveMax := float32(math.MaxFloat32), float32(-math.MaxFloat32)
	for x := range curve {
		c := dip0 + dipSlope*float32(x) + bump[x]*p.Curvature
		curve[x] = c
		curveMin = min(curveMin, c)
		curveMax = max(curveMax, c)
	}

	avail := 1 - p.OceanDepth - 2*shaleMinThinness - sandstoneThickness
	slack := avail - (curveMax - curveMin)
	scale, extra := float32(1), float32(0)
	if slack >= 0 {
		extra = p.SandstoneDepth * slack
	} else {
		scale = avail / (curveMax - curveMin)
	}
	fh := float32(h)
	ocean := int(fh * p.OceanDepth)
	topShale := fh * (p.OceanDepth + shaleMinThinness + extra + scale*curveMax)
	sandstone := topShale + fh*sandstoneThickness

	bottoms := make([][3]int, w)
	for x := range bottoms {
		delta := fh * scale * curve[x]
		b := [3]int{ocean, int(topShale - delta), int(sandstone - delta)}
		// Keep every layer at least one pixel thick after truncation.
		b[1] = max(b[1], b[0]+1)
		b[2] = min(max(b[2], b[1]+1), h-1)
		bottoms[x] = b
	}
	return FromBottoms(size, bottoms)
}

// bumps returns the normalized sum of gaussian bells, 1 at the highest
// anticline and 0 at the lowest point.
func bumps(n, w, border int, rng *prng.RNG) []float32 {
	out := make([]float32, w)
	if n == 0 {
		return out
	}
	margin := float32(w/50 + border)
	center := make([]float32, n)
	amplitude := make([]float32, n)
	sharpness := make([]float32, n)
	for k := 0; k < n; k++ {
		center[k] = rng.Choose(margin, float32(w)-margin)
		amplitude[k] = rng.Choose(50, 150)
		sharpness[k] = 25 / rng.Choose(float32(w), float32(3*w))
	}
	lo, hi := float32(math.MaxFloat32), float32(-math.MaxFloat32)
	for x := range out {
		var sum float32
		for k := 0; k < n; k++ {
			d := (float32(x) - center[k]) * sharpness[k]
			sum += amplitude[k] * float32(math.Exp(float64(-0.5*d*d)))
		}
		out[x] = sum
		lo = min(lo, sum)
		hi = max(hi, sum)
	}
	if hi > lo {
		s := 1 / (hi - lo)
		for x := range out {
			out[x] = (out[x] - lo) * s
		}
	}
	return out
}

func init() {
	core.RegisterSection("anticline", func(size core.Size, seed int64) core.Section {
		m, err := Generate(size, DefaultParams(), prng.NewRNG(seed))
		if err != nil {
			return nil
		}
		return m
	})
	core.RegisterSection("twin-anticline", func(size core.Size, seed int64) core.Section {
		p := DefaultParams()
		p.Bumps = 2
		p.Curvature = 0.35
		m, err := Generate(size, p, prng.NewRNG(seed))
		if err != nil {
			return nil
		}
		return m
	})
	core.RegisterSection("layered", func(size core.Size, _ int64) core.Section {
		m, err := Layered(size, size.H/10, size.H*4/10, size.H*6/10)
		if err != nil {
			return nil
		}
		return m
	})
}
