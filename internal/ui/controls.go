package ui

import (
	"image"
	"math"
	"strconv"

	"seismic-sim/internal/core"
)

const (
	panelPadding   = 12
	lineHeight     = 36
	buttonSize     = 24
	buttonGap      = 6
	headerBaseline = 18
	labelBaseline  = 24
	statusSpacing  = 16
	controlsTop    = panelPadding + headerBaseline + 14
)

type controlState struct {
	control core.ParameterControl
	label   string
	value   string
	number  float64
	valid   bool

	top       int
	minusRect image.Rectangle
	plusRect  image.Rectangle
}

// controls tracks the adjustable parameters of one Tunable.
type controls struct {
	target core.Tunable
	states []controlState
}

func newControls(target core.Tunable, width int) *controls {
	c := &controls{target: target}
	if target == nil {
		return c
	}
	for _, ctrl := range target.ParameterControls() {
		c.states = append(c.states, controlState{control: ctrl, label: ctrl.Label, value: "--"})
	}
	c.layout(width)
	return c
}

func (c *controls) layout(width int) {
	for i := range c.states {
		top := controlsTop + i*lineHeight
		buttonY := top + (lineHeight-buttonSize)/2
		plus := image.Rect(width-panelPadding-buttonSize, buttonY, width-panelPadding, buttonY+buttonSize)
		minus := image.Rect(plus.Min.X-buttonGap-buttonSize, buttonY, plus.Min.X-buttonGap, buttonY+buttonSize)
		c.states[i].top = top
		c.states[i].minusRect = minus
		c.states[i].plusRect = plus
	}
}

// bottom returns the first free row below the controls.
func (c *controls) bottom() int { return controlsTop + len(c.states)*lineHeight }

// refresh reloads the displayed values from the target.
func (c *controls) refresh() {
	if c.target == nil {
		return
	}
	params := map[string]core.Parameter{}
	for _, p := range c.target.Parameters() {
		params[p.Key] = p
	}
	for i := range c.states {
		s := &c.states[i]
		p, ok := params[s.control.Key]
		s.valid = false
		s.value = "--"
		if !ok {
			continue
		}
		if p.Label != "" {
			s.label = p.Label
		}
		v, err := strconv.ParseFloat(p.Value, 64)
		if err != nil {
			continue
		}
		s.number, s.valid = v, true
		s.value = formatValue(s.control, v)
	}
}

// click applies the button under (x, y), relative to the panel, and
// reports whether one was hit.
func (c *controls) click(x, y int) bool {
	for i := range c.states {
		s := &c.states[i]
		if !s.valid {
			continue
		}
		switch {
		case pointInRect(x, y, s.minusRect):
			c.adjust(s, -1)
			return true
		case pointInRect(x, y, s.plusRect):
			c.adjust(s, 1)
			return true
		}
	}
	return false
}

func (c *controls) adjust(s *controlState, dir int) bool {
	target, ok := nextValue(s.control, s.number, dir)
	if !ok || c.target == nil {
		return false
	}
	var applied bool
	switch s.control.Type {
	case core.ParamTypeInt:
		applied = c.target.SetIntParameter(s.control.Key, int(target))
	case core.ParamTypeFloat:
		applied = c.target.SetFloatParameter(s.control.Key, target)
	}
	if applied {
		s.number = target
		s.value = formatValue(s.control, target)
	}
	return applied
}

// nextValue steps current by one increment in direction dir, clamped to the
// control's bounds. ok is false when the value would not change.
func nextValue(ctrl core.ParameterControl, current float64, dir int) (float64, bool) {
	if dir == 0 {
		return current, false
	}
	step := ctrl.Step
	if ctrl.Type == core.ParamTypeInt {
		step = math.Max(math.Round(step), 1)
	} else if step <= 0 {
		step = 0.05
	}
	target := current + float64(dir)*step
	if ctrl.HasMin && target < ctrl.Min {
		target = ctrl.Min
	}
	if ctrl.HasMax && target > ctrl.Max {
		target = ctrl.Max
	}
	if ctrl.Type == core.ParamTypeInt {
		target = math.Round(target)
	}
	if math.Abs(target-current) < 1e-9 {
		return current, false
	}
	return target, true
}

func formatValue(ctrl core.ParameterControl, v float64) string {
	if ctrl.Type == core.ParamTypeInt {
		return strconv.Itoa(int(math.Round(v)))
	}
	step := ctrl.Step
	if step <= 0 {
		step = 0.05
	}
	precision := 2
	switch {
	case step < 0.001:
		precision = 4
	case step < 0.01:
		precision = 3
	case step >= 1:
		precision = 0
	}
	return strconv.FormatFloat(v, 'f', precision, 64)
}

func pointInRect(x, y int, rect image.Rectangle) bool {
	return image.Pt(x, y).In(rect)
}
