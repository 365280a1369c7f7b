package render

import (
	"fmt"
	"image/color"
	"math"
)

// ClutSize is the number of entries per rock in a wavefield colour table.
// Entry ClutSize/2 is zero amplitude.
const ClutSize = 1024

// ClutRocks is the number of colour tables, one per 2-bit rock id.
const ClutRocks = 4

// ColorFunc maps amplitude magnitude onto the colour scale.
type ColorFunc uint8

const (
	Linear ColorFunc = iota
	Log
	SignOnly
)

func (c ColorFunc) String() string {
	switch c {
	case Linear:
		return "linear"
	case Log:
		return "log"
	case SignOnly:
		return "sign"
	}
	return fmt.Sprintf("ColorFunc(%d)", int(c))
}

// ParseColorFunc maps a name to a ColorFunc.
func ParseColorFunc(name string) (ColorFunc, error) {
	for _, c := range []ColorFunc{Linear, Log, SignOnly} {
		if c.String() == name {
			return c, nil
		}
	}
	return 0, fmt.Errorf("render: unknown color function %q", name)
}

// Look selects how the wavefield is coloured. ShowGeology and ShowSeismic
// are blend weights in [0, 1].
type Look struct {
	ShowGeology float32
	ShowSeismic float32
	Func        ColorFunc
}

// DefaultLook shows both geology and seismic amplitude linearly.
func DefaultLook() Look { return Look{ShowGeology: 1, ShowSeismic: 1, Func: Linear} }

// Clut holds one colour table per rock id.
type Clut [ClutRocks][ClutSize]color.RGBA

const (
	guideHalf  = 64
	logStretch = 16
)

var (
	negativeEnd = color.RGBA{R: 40, G: 150, B: 255, A: 255}
	positiveEnd = color.RGBA{R: 255, G: 190, B: 40, A: 255}
	rockBase    = [ClutRocks]color.RGBA{
		{R: 20, G: 48, B: 110, A: 255},   // water
		{R: 190, G: 150, B: 90, A: 255},  // sandstone
		{R: 88, G: 88, B: 96, A: 255},    // shale
		{R: 0, G: 0, B: 0, A: 255},
	}
)

// guide returns entry k in [-guideHalf, guideHalf] of the scale that fades
// from base at zero to the signed end colours.
func guide(base color.RGBA, k int) color.RGBA {
	end := positiveEnd
	if k < 0 {
		end = negativeEnd
		k = -k
	}
	k = min(k, guideHalf)
	return Mix(base, end, float32(k)/guideHalf)
}

// Mix blends a toward b by f in [0, 1].
func Mix(a, b color.RGBA, f float32) color.RGBA {
	lerp := func(x, y uint8) uint8 {
		return uint8(float32(x) + (float32(y)-float32(x))*f + 0.5)
	}
	return color.RGBA{R: lerp(a.R, b.R), G: lerp(a.G, b.G), B: lerp(a.B, b.B), A: lerp(a.A, b.A)}
}

// RockColor returns the base colour of rock index k at zero amplitude.
func RockColor(k int) color.RGBA { return rockBase[k] }

func asinh(x float64) float64 { return math.Log(math.Abs(x) + math.Sqrt(x*x+1)) }

// BuildClut computes the colour tables for look.
func BuildClut(look Look) *Clut {
	var transfer [ClutSize + 1]float32
	scale := float64(look.ShowSeismic) * guideHalf
	if look.Func == Log {
		scale /= asinh(logStretch)
	}
	for j := 0; j <= ClutSize/2; j++ {
		u := float64(j) * (2.0 / ClutSize)
		var v float64
		switch look.Func {
		case SignOnly:
			if u != 0 {
				v = 2.0 / 3
			}
		case Log:
			v = asinh(u * logStretch)
		default:
			v = u
		}
		transfer[ClutSize/2+j] = float32(v * scale)
		transfer[ClutSize/2-j] = float32(-v * scale)
	}

	neutral := color.RGBA{A: 255}
	var c Clut
	for r := 0; r < ClutRocks; r++ {
		for j := 0; j < ClutSize; j++ {
			t := transfer[j]
			k := int(t)
			residue := t - float32(k)
			c0, c1 := guide(neutral, k), guide(rockBase[r], k)
			switch {
			case residue > 0:
				c0 = Mix(c0, guide(neutral, k+1), residue)
				c1 = Mix(c1, guide(rockBase[r], k+1), residue)
			case residue < 0:
				c0 = Mix(c0, guide(neutral, k-1), -residue)
				c1 = Mix(c1, guide(rockBase[r], k-1), -residue)
			}
			c[r][j] = Mix(c0, c1, look.ShowGeology)
		}
	}
	return &c
}

// ClutCache rebuilds the colour tables only when the look changes.
type ClutCache struct {
	look Look
	clut *Clut
}

// Get returns the tables for look.
func (c *ClutCache) Get(look Look) *Clut {
	if c.clut == nil || c.look != look {
		c.look = look
		c.clut = BuildClut(look)
	}
	return c.clut
}
