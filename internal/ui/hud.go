//go:build ebiten

package ui

import (
	"image"
	"image/color"

	"seismic-sim/internal/core"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font/basicfont"
)

var (
	panelBackground = color.RGBA{R: 16, G: 16, B: 20, A: 255}
	textBright      = color.RGBA{R: 220, G: 220, B: 230, A: 255}
	textDim         = color.RGBA{R: 160, G: 160, B: 170, A: 255}
)

// HUD renders the control panel to the right of the playing area.
type HUD struct {
	title    string
	width    int
	controls *controls
	status   []string

	panel        *ebiten.Image
	pixel        *ebiten.Image
	panelOffsetX int
}

// NewHUD builds a panel of the given width for target.
func NewHUD(title string, target core.Tunable, width int) *HUD {
	if width <= 0 {
		return nil
	}
	h := &HUD{title: title, width: width, controls: newControls(target, width)}
	h.pixel = ebiten.NewImage(1, 1)
	h.pixel.Fill(color.White)
	return h
}

// SetStatus replaces the read-only lines drawn under the controls.
func (h *HUD) SetStatus(lines []string) {
	if h != nil {
		h.status = lines
	}
}

// Update refreshes the displayed values and handles button clicks.
func (h *HUD) Update(panelOffsetX int) {
	if h == nil {
		return
	}
	h.panelOffsetX = panelOffsetX
	h.controls.refresh()
	if !inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		return
	}
	mx, my := ebiten.CursorPosition()
	if mx < panelOffsetX {
		return
	}
	h.controls.click(mx-panelOffsetX, my)
}

// Draw paints the panel at offsetX with the given height.
func (h *HUD) Draw(screen *ebiten.Image, offsetX, height int) {
	if h == nil || height <= 0 {
		return
	}
	if h.panel == nil || h.panel.Bounds().Dy() != height {
		h.panel = ebiten.NewImage(h.width, height)
	}
	h.panel.Fill(panelBackground)

	face := basicfont.Face7x13
	text.Draw(h.panel, h.title, face, panelPadding, panelPadding+headerBaseline, textBright)
	for i := range h.controls.states {
		h.drawControl(&h.controls.states[i])
	}
	y := h.controls.bottom() + statusSpacing
	for _, line := range h.status {
		text.Draw(h.panel, line, face, panelPadding, y, textDim)
		y += statusSpacing
	}

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(float64(offsetX), 0)
	screen.DrawImage(h.panel, op)
}

func (h *HUD) drawControl(s *controlState) {
	face := basicfont.Face7x13
	baseline := s.top + labelBaseline
	text.Draw(h.panel, s.label, face, panelPadding, baseline, textBright)

	valueColor := textBright
	if !s.valid {
		valueColor = textDim
	}
	width := text.BoundString(face, s.value).Dx()
	text.Draw(h.panel, s.value, face, s.minusRect.Min.X-buttonGap-width, baseline, valueColor)

	_, down := nextValue(s.control, s.number, -1)
	_, up := nextValue(s.control, s.number, 1)
	h.drawButton(s.minusRect, "-", s.valid && down)
	h.drawButton(s.plusRect, "+", s.valid && up)
}

func (h *HUD) drawButton(rect image.Rectangle, label string, enabled bool) {
	bg := color.RGBA{R: 54, G: 56, B: 64, A: 255}
	fg := color.RGBA{R: 230, G: 230, B: 240, A: 255}
	if !enabled {
		bg = color.RGBA{R: 32, G: 34, B: 40, A: 255}
		fg = color.RGBA{R: 120, G: 120, B: 130, A: 255}
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(rect.Dx()), float64(rect.Dy()))
	op.GeoM.Translate(float64(rect.Min.X), float64(rect.Min.Y))
	op.ColorScale.ScaleWithColor(bg)
	h.panel.DrawImage(h.pixel, op)

	face := basicfont.Face7x13
	b := text.BoundString(face, label)
	x := rect.Min.X + (rect.Dx()-b.Dx())/2
	y := rect.Min.Y + (rect.Dy()-b.Dy())/2 + b.Dy()
	text.Draw(h.panel, label, face, x, y, fg)
}
