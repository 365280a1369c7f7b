package parallel

import (
	"math/bits"
	"time"

	"seismic-sim/internal/config"

	"gonum.org/v1/gonum/floats"
)

// State is the controller input for Decide.
type State struct {
	Workers int
	Max     int
	// WasSlow and WasFast are shift registers of per-frame verdicts; bit 0 is
	// the most recent frame.
	WasSlow uint64
	WasFast uint64
}

// Decide returns the worker count the throttle wants for s.
func Decide(s State, cfg config.Throttle) int {
	mask := uint64(1)<<cfg.LookBack - 1
	fast := bits.OnesCount64(s.WasFast & mask)
	slow := bits.OnesCount64(s.WasSlow & mask)
	switch {
	case slow > cfg.MissTolerance && s.Workers < s.Max:
		return s.Workers + 1
	case slow == 0 && fast >= cfg.LookBack-cfg.MissTolerance && s.Workers > 1:
		return s.Workers - 1
	}
	return s.Workers
}

// Throttle adjusts the worker count from measured frame busy fractions. After
// every change it ignores Settle frames.
type Throttle struct {
	cfg     config.Throttle
	state   State
	settle  int
	busy    float64
	work    []float64
	ends    []time.Time
	history int
}

// NewThrottle starts a controller at initial workers, bounded by maxWorkers.
func NewThrottle(cfg config.Throttle, initial, maxWorkers int) *Throttle {
	maxWorkers = max(maxWorkers, 1)
	initial = min(max(initial, 1), maxWorkers)
	return &Throttle{
		cfg:    cfg,
		state:  State{Workers: initial, Max: maxWorkers},
		settle: cfg.Settle,
		work:   make([]float64, 0, cfg.TimeLookback),
		ends:   make([]time.Time, 0, cfg.TimeLookback),
	}
}

// Workers returns the current worker count.
func (t *Throttle) Workers() int { return t.state.Workers }

// BusyFraction returns the last computed busy fraction.
func (t *Throttle) BusyFraction() float64 { return t.busy }

// Observe records a frame that computed from t0 to t1 and returns the
// resulting worker count and whether it changed.
func (t *Throttle) Observe(t0, t1 time.Time) (int, bool) {
	return t.ObserveBusy(t.busyFraction(t0, t1))
}

// busyFraction is the work time of the last TimeLookback frames divided by
// the wall time they spanned.
func (t *Throttle) busyFraction(t0, t1 time.Time) float64 {
	d := t1.Sub(t0).Seconds()
	var frac float64
	if len(t.ends) == 0 {
		frac = 1
	} else {
		elapsed := t1.Sub(t.ends[0]).Seconds()
		work := floats.Sum(t.work[1:]) + d
		if elapsed > 0 {
			frac = work / elapsed
		}
	}
	if len(t.ends) == cap(t.ends) {
		t.ends = append(t.ends[:0], t.ends[1:]...)
		t.work = append(t.work[:0], t.work[1:]...)
	}
	t.ends = append(t.ends, t1)
	t.work = append(t.work, d)
	return frac
}

// ObserveBusy feeds one busy fraction to the controller.
func (t *Throttle) ObserveBusy(frac float64) (int, bool) {
	t.busy = frac
	if t.settle > 0 {
		t.settle--
		return t.state.Workers, false
	}
	t.state.WasSlow = t.state.WasSlow<<1 | b2u(frac > t.cfg.BusySlow)
	t.state.WasFast = t.state.WasFast<<1 | b2u(frac < t.cfg.BusyFast)
	next := Decide(t.state, t.cfg)
	if next == t.state.Workers {
		return next, false
	}
	t.state.Workers = next
	t.state.WasSlow = 0
	t.state.WasFast = 0
	t.settle = t.cfg.Settle
	t.work = t.work[:0]
	t.ends = t.ends[:0]
	return next, true
}

func b2u(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}
