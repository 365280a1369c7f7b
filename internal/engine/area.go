package engine

import (
	"fmt"

	"seismic-sim/internal/core"
	"seismic-sim/internal/reservoir"

	"github.com/sirupsen/logrus"
)

const (
	totalWorth     = 400
	oilToGasPrices = 4
)

// Prices values the fluids of an area so that all of its gas and oil
// together are worth totalWorth, oil being worth oilToGasPrices times gas.
// Water is worthless.
func Prices(s reservoir.Stats) [reservoir.NumPhase]float32 {
	gas := float32(s.Volume[reservoir.Gas])
	oil := float32(s.Volume[reservoir.Oil])
	if gas == 0 {
		gas = 1
	}
	var p [reservoir.NumPhase]float32
	p[reservoir.Gas] = totalWorth / (gas + oil*oilToGasPrices)
	p[reservoir.Oil] = totalWorth / (oil + gas/oilToGasPrices)
	return p
}

// NewArea builds trials candidate sections from factory and resets the
// engine on the one holding the most gas and oil. Candidates use seeds
// seed, seed+1, and so on.
func (e *Engine) NewArea(factory core.SectionFactory, seed int64, trials int) (reservoir.Stats, error) {
	if factory == nil {
		return reservoir.Stats{}, fmt.Errorf("engine: no section factory")
	}
	size := core.Size{W: e.cfg.Grid.Width, H: e.cfg.Grid.Height}
	var (
		best   core.Section
		volume = -1
	)
	for t := 0; t < max(trials, 1); t++ {
		s := factory(size, seed+int64(t))
		if s == nil {
			continue
		}
		_, stats, err := reservoir.New(e.cfg, s)
		if err != nil {
			return reservoir.Stats{}, err
		}
		v := stats.Volume[reservoir.Gas] + stats.Volume[reservoir.Oil]
		logrus.Debugf("area candidate %d: volume %d", t, v)
		if v > volume {
			best, volume = s, v
		}
	}
	if best == nil {
		return reservoir.Stats{}, fmt.Errorf("engine: factory produced no section")
	}
	return e.Reset(best)
}
