package wave

import (
	"fmt"
	"math"

	"seismic-sim/internal/config"
	"seismic-sim/internal/core"
)

// Rock identifies the material of a wavefield cell.
type Rock uint8

const (
	Water Rock = iota
	Sandstone
	Shale
	// RockMax is the largest rock id. The packed map has room for one more.
	RockMax = Shale
)

var rockOfLayer = [core.NumLayer]Rock{
	core.Ocean:           Water,
	core.TopShale:        Shale,
	core.MiddleSandstone: Sandstone,
	core.BottomShale:     Shale,
}

// RockOf maps a geology layer to its material.
func RockOf(l core.Layer) Rock { return rockOfLayer[l] }

// coefficients holds the stencil constants per rock: A is M/2, because two
// A values are summed to average M across a face, and B is L.
type coefficients struct {
	a, b [RockMax + 1]float32
}

func newCoefficients(m config.Materials) (coefficients, error) {
	var c coefficients
	for r, mat := range [...]config.Material{Water: m.Water, Sandstone: m.Sandstone, Shale: m.Shale} {
		if float64(mat.M)*float64(mat.L) > config.StabilityBound+1e-6 {
			return c, fmt.Errorf("%w: rock %d has M*L = %g above %g",
				config.ErrInvalid, r, float64(mat.M)*float64(mat.L), config.StabilityBound)
		}
		c.a[r] = mat.M * 0.5
		c.b[r] = mat.L
	}
	return c, nil
}

// buildMedium fills the rock map and the A/B coefficients for every owned
// row, and seeds U with a tiny pattern that keeps the arithmetic away from
// denormals. Row y of the section maps to IofY(y); the free-surface row
// (y = -1) stays water with zero coefficients.
func (f *Field) buildMedium(s core.Section, c coefficients) {
	w := f.w
	for y := 0; y < f.h; y++ {
		i := f.layout.IofY(y)
		for j := 0; j < w; j++ {
			f.rock.Set(i, j, uint8(RockOf(s.Layer(j, y))))
		}
	}
	noise := f.cfg.Noise
	for y := 0; y < f.h; y++ {
		i := f.layout.IofY(y)
		a, b, u := f.a.Row(i), f.b.Row(i), f.u.Row(i)
		for j := 0; j < w; j++ {
			r := f.rock.At(i, j)
			a[j] = c.a[r]
			b[j] = c.b[r]
			if noise != 0 {
				u[j] = float32(math.Sin(float64(i)*0.1)*math.Cos(float64(j)*0.1)) * noise
			}
		}
	}
}
