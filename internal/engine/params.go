package engine

import (
	"strconv"

	"seismic-sim/internal/airgun"
	"seismic-sim/internal/core"
	"seismic-sim/internal/render"

	"github.com/sirupsen/logrus"
)

var _ core.Tunable = (*Engine)(nil)

// ParameterControls lists the settings the HUD can adjust.
func (e *Engine) ParameterControls() []core.ParameterControl {
	return []core.ParameterControl{
		{Key: "pump_factor", Label: "Pump factor", Type: core.ParamTypeInt, Step: 1,
			Min: 1, Max: float64(e.cfg.Wave.PumpFactorMax), HasMin: true, HasMax: true},
		{Key: "show_geology", Label: "Geology", Type: core.ParamTypeFloat, Step: 0.1,
			Min: 0, Max: 1, HasMin: true, HasMax: true},
		{Key: "show_seismic", Label: "Seismic", Type: core.ParamTypeFloat, Step: 0.1,
			Min: 0, Max: 1, HasMin: true, HasMax: true},
		{Key: "color_func", Label: "Color function", Type: core.ParamTypeInt, Step: 1,
			Min: 0, Max: float64(render.SignOnly), HasMin: true, HasMax: true},
		{Key: "frequency", Label: "Airgun frequency", Type: core.ParamTypeFloat, Step: 0.25,
			Min: 0.25, Max: 4, HasMin: true, HasMax: true},
	}
}

// Parameters returns the current value of each control.
func (e *Engine) Parameters() []core.Parameter {
	pump := e.cfg.Wave.PumpFactor
	if e.field != nil {
		pump = e.field.PumpFactor()
	}
	ff := func(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }
	return []core.Parameter{
		{Key: "pump_factor", Label: "Pump factor", Type: core.ParamTypeInt, Value: strconv.Itoa(pump)},
		{Key: "show_geology", Label: "Geology", Type: core.ParamTypeFloat, Value: ff(float64(e.look.ShowGeology))},
		{Key: "show_seismic", Label: "Seismic", Type: core.ParamTypeFloat, Value: ff(float64(e.look.ShowSeismic))},
		{Key: "color_func", Label: "Color function (" + e.look.Func.String() + ")", Type: core.ParamTypeInt, Value: strconv.Itoa(int(e.look.Func))},
		{Key: "frequency", Label: "Airgun frequency", Type: core.ParamTypeFloat, Value: ff(e.cfg.Airgun.Frequency)},
	}
}

// SetIntParameter applies an integer control.
func (e *Engine) SetIntParameter(key string, value int) bool {
	switch key {
	case "pump_factor":
		if err := e.SetPumpFactor(value); err != nil {
			logrus.Warnf("pump factor: %v", err)
			return false
		}
		return true
	case "color_func":
		if value < 0 || value > int(render.SignOnly) {
			return false
		}
		e.look.Func = render.ColorFunc(value)
		return true
	}
	return false
}

// SetFloatParameter applies a floating-point control.
func (e *Engine) SetFloatParameter(key string, value float64) bool {
	switch key {
	case "show_geology", "show_seismic":
		if value < 0 || value > 1 {
			return false
		}
		if key == "show_geology" {
			e.look.ShowGeology = float32(value)
		} else {
			e.look.ShowSeismic = float32(value)
		}
		return true
	case "frequency":
		if e.gun.Busy() {
			return false
		}
		ac := e.cfg.Airgun
		ac.Frequency = value
		if err := ac.Validate(); err != nil {
			return false
		}
		gun, err := airgun.New(ac)
		if err != nil {
			return false
		}
		e.gun, e.cfg.Airgun = gun, ac
		return true
	}
	return false
}
