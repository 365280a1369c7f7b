// Package airgun generates the source pulse injected into the wavefield.
package airgun

import (
	"fmt"
	"math"

	"seismic-sim/internal/config"
)

// Kind selects the pulse signature.
type Kind int

const (
	Square Kind = iota
	Gaussian
	GaussianSlope
	Ricker
)

var kindNames = [...]string{"square", "gaussian", "gaussian-slope", "ricker"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// ParseKind maps a name to a Kind.
func ParseKind(name string) (Kind, error) {
	for i, n := range kindNames {
		if n == name {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("airgun: unknown pulse kind %q", name)
}

// PulseSizeMax is the number of samples evaluated for a pulse.
const PulseSizeMax = 256

// sampleClutHalf is half the wavefield colour table size; pulses are scaled
// relative to it so reflections stay visible.
const sampleClutHalf = 512

// Gun is an impulse source. It is not safe for concurrent use; the
// wavefield pulls all impulses for a frame before its panels run.
type Gun struct {
	pulse   []float32
	counter int
	x, y    int
	last    float32
}

// New builds a gun for the given pulse shape.
func New(cfg config.Airgun) (*Gun, error) {
	kind, err := ParseKind(cfg.Kind)
	if err != nil {
		return nil, err
	}
	pulse := Pulse(kind, cfg.Frequency, cfg.Amplitude)
	return &Gun{pulse: pulse, counter: len(pulse)}, nil
}

// Pulse evaluates the signature and drops the leading near-silent samples.
func Pulse(kind Kind, frequency, amplitude float64) []float32 {
	out := make([]float32, 0, PulseSizeMax)
	started := false
	for i := 0; i < PulseSizeMax; i++ {
		t := float64(i-PulseSizeMax/2) * 0.075 * frequency
		var v float64
		switch kind {
		case Square:
			if -1 <= t && t <= 1 {
				v = 1
			}
		case Gaussian:
			v = math.Exp(-0.5 * t * t)
		case GaussianSlope:
			v = -t * math.Exp(-0.5*t*t)
		case Ricker:
			v = (1 - t*t) * math.Exp(-0.5*t*t)
		}
		if !started && math.Abs(v) >= 0.001 {
			started = true
		}
		if started {
			out = append(out, float32(25*2*sampleClutHalf*amplitude*v))
		}
	}
	return out
}

// Fire starts a new pulse at (x, y). It reports false, leaving the gun
// untouched, while the previous pulse is still in flight.
func (g *Gun) Fire(x, y int) bool {
	if g.Busy() {
		return false
	}
	g.counter = 0
	g.x, g.y = x, y
	return true
}

// Busy reports whether a pulse is in flight.
func (g *Gun) Busy() bool { return g.counter < len(g.pulse) }

// Location returns where the gun last fired.
func (g *Gun) Location() (x, y int) { return g.x, g.y }

// Impulse returns the next pulse sample scaled for the rock at the source,
// or zero once the pulse is exhausted. rockFactor is the A coefficient of
// the source cell.
func (g *Gun) Impulse(rockFactor float32) float32 {
	var a float32
	if g.counter < len(g.pulse) {
		a = g.pulse[g.counter] * float32(math.Pow(float64(rockFactor), -1.5)) * 0.1
		g.counter++
	}
	g.last = a
	return a
}

// Last returns the most recent impulse, for meters.
func (g *Gun) Last() float32 { return g.last }

// Len returns the number of samples in the pulse.
func (g *Gun) Len() int { return len(g.pulse) }
