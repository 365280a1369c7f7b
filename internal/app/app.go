//go:build ebiten

package app

import (
	"image"
	"image/color"
	"strings"
	"time"

	"seismic-sim/internal/core"
	"seismic-sim/internal/engine"
	"seismic-sim/internal/render"
	"seismic-sim/internal/ui"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/sirupsen/logrus"
)

// airgunRow is the geology row the airgun fires from.
const airgunRow = 2

var rigColor = color.RGBA{R: 240, G: 240, B: 240, A: 255}

// Game adapts the engine to the ebiten.Game interface.
type Game struct {
	eng     *engine.Engine
	factory core.SectionFactory
	hud     *ui.HUD
	overlay *ui.Overlay

	canvas *image.RGBA
	screen *ebiten.Image
	pixel  *ebiten.Image

	status []string

	cfg      Config
	tickOnce bool
	seed     int64
}

// New constructs a Game and generates its first area.
func New(eng *engine.Engine, factory core.SectionFactory, cfg Config) (*Game, error) {
	size := eng.VisibleSize()
	g := &Game{
		eng:     eng,
		factory: factory,
		hud:     ui.NewHUD("Seismic survey", eng, cfg.HUDWidth),
		overlay: ui.NewOverlay(eng, cfg.Scale),
		canvas:  render.NewCanvas(size.W, size.H),
		screen:  ebiten.NewImage(size.W, size.H),
		pixel:   ebiten.NewImage(1, 1),
		cfg:     cfg,
	}
	g.cfg.Scale = max(cfg.Scale, 1)
	g.pixel.Fill(color.White)
	if err := g.Reset(cfg.Seed); err != nil {
		return nil, err
	}
	return g, nil
}

// Reset generates a new area from seed.
func (g *Game) Reset(seed int64) error {
	g.seed = seed
	if _, err := g.eng.NewArea(g.factory, seed, g.cfg.Trials); err != nil {
		return err
	}
	g.overlay.Invalidate()
	g.tickOnce = false
	return nil
}

// Update handles input and advances the simulation by one frame.
func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.eng.SetPaused(!g.eng.Paused())
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		g.eng.SetPaused(false)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyN) {
		g.tickOnce = true
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		if err := g.Reset(g.seed); err != nil {
			return err
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyS) {
		if err := g.Reset(time.Now().UnixNano()); err != nil {
			return err
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyO) {
		g.eng.SetShowReservoir(!g.eng.ShowReservoir())
	}
	for d, key := range []ebiten.Key{ebiten.KeyDigit1, ebiten.KeyDigit2, ebiten.KeyDigit3, ebiten.KeyDigit4, ebiten.KeyDigit5} {
		if inpututil.IsKeyJustPressed(key) {
			if err := g.eng.SetPumpFactor(d + 1); err != nil {
				logrus.Warnf("pump factor: %v", err)
			}
			g.overlay.Invalidate()
		}
	}
	g.handleRig()
	g.overlay.Update()

	paused := g.eng.Paused()
	if g.tickOnce {
		g.eng.SetPaused(false)
	}
	out := g.eng.Frame(core.Update|core.Draw, g.canvas)
	if g.tickOnce {
		g.eng.SetPaused(paused)
		g.tickOnce = false
	}

	offset := g.eng.VisibleSize().W * g.cfg.Scale
	g.status = StatusLines(g.eng, out, g.eng.Paused())
	g.hud.SetStatus(g.status)
	g.hud.Update(offset)
	return nil
}

func (g *Game) handleRig() {
	x, _ := g.eng.Rig()
	switch {
	case ebiten.IsKeyPressed(ebiten.KeyArrowLeft):
		g.eng.MoveRig(x - 1)
	case ebiten.IsKeyPressed(ebiten.KeyArrowRight):
		g.eng.MoveRig(x + 1)
	case ebiten.IsKeyPressed(ebiten.KeyArrowDown):
		g.eng.Drill(1)
	case ebiten.IsKeyPressed(ebiten.KeyArrowUp):
		g.eng.Drill(-1)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF) {
		g.eng.Fire(x, airgunRow)
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		mx, my := ebiten.CursorPosition()
		size := g.eng.VisibleSize()
		if mx < size.W*g.cfg.Scale && my < size.H*g.cfg.Scale {
			g.eng.Fire(mx/g.cfg.Scale, my/g.cfg.Scale)
		}
	}
}

// Draw uploads the frame and paints the overlay, rig and HUD.
func (g *Game) Draw(screen *ebiten.Image) {
	g.screen.WritePixels(g.canvas.Pix)
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(g.cfg.Scale), float64(g.cfg.Scale))
	screen.DrawImage(g.screen, op)
	g.overlay.Draw(screen)

	x, _ := g.eng.Rig()
	rig := &ebiten.DrawImageOptions{}
	rig.GeoM.Scale(float64(3*g.cfg.Scale), float64(4*g.cfg.Scale))
	rig.GeoM.Translate(float64((x-1)*g.cfg.Scale), 0)
	rig.ColorScale.ScaleWithColor(rigColor)
	screen.DrawImage(g.pixel, rig)

	if g.hud == nil {
		ebitenutil.DebugPrint(screen, strings.Join(g.status, "\n"))
		return
	}
	size := g.eng.VisibleSize()
	g.hud.Draw(screen, size.W*g.cfg.Scale, size.H*g.cfg.Scale)
}

// Layout returns the logical screen size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	size := g.eng.VisibleSize()
	return size.W*g.cfg.Scale + max(g.cfg.HUDWidth, 0), size.H * g.cfg.Scale
}
