package app

import (
	"fmt"

	"seismic-sim/internal/engine"
	"seismic-sim/internal/reservoir"
)

// StatusLines summarises the engine state and the last frame for the HUD.
func StatusLines(e *engine.Engine, out engine.Output, paused bool) []string {
	stats := e.Stats()
	x, depth := e.Rig()
	lines := []string{
		fmt.Sprintf("workers %d  busy %3.0f%%", out.Workers, 100*out.Busy),
		fmt.Sprintf("frame %.1f ms", float64(out.Elapsed.Microseconds())/1000),
		fmt.Sprintf("traps %d  gas %d  oil %d", stats.NumTrap, stats.Volume[reservoir.Gas], stats.Volume[reservoir.Oil]),
		fmt.Sprintf("rig %d  depth %d", x, depth),
		fmt.Sprintf("cash %.1f", e.Cash()),
	}
	if totals := out.Extracted; totals != ([reservoir.NumPhase]float32{}) {
		lines = append(lines, fmt.Sprintf("pumping %.3f gas %.3f oil", totals[reservoir.Gas], totals[reservoir.Oil]))
	}
	if paused {
		lines = append(lines, "paused")
	}
	return lines
}
