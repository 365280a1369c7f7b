//go:build ebiten

package ui

import (
	"image/color"

	"seismic-sim/internal/core"
	"seismic-sim/internal/render"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// LayerSource provides the debugging layers the overlay can show.
type LayerSource interface {
	VisibleSize() core.Size
	// TileMap returns one tile tag plus one per visible pixel.
	TileMap() []uint8
	// PorosityMask returns 1 for visible pixels inside porous cells.
	PorosityMask() []uint8
}

var (
	porousTint = color.RGBA{R: 120, G: 110, B: 20, A: 110}
	clearTint  = color.RGBA{}
)

// Overlay draws optional debugging visuals on top of the playing area.
type Overlay struct {
	src      LayerSource
	scale    int
	showTile bool
	showPore bool

	img   *ebiten.Image
	buf   []byte
	dirty bool
}

// NewOverlay constructs an overlay for src.
func NewOverlay(src LayerSource, scale int) *Overlay {
	return &Overlay{src: src, scale: max(scale, 1)}
}

// Invalidate discards cached layers, e.g. after a new area or pump factor.
func (o *Overlay) Invalidate() { o.dirty = true }

// Update toggles layers: T shows the tile decomposition, P the porosity.
func (o *Overlay) Update() {
	if inpututil.IsKeyJustPressed(ebiten.KeyT) {
		o.showTile = !o.showTile
		o.dirty = true
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		o.showPore = !o.showPore
		o.dirty = true
	}
}

// Draw renders the enabled layers onto screen.
func (o *Overlay) Draw(screen *ebiten.Image) {
	if !o.showTile && !o.showPore {
		return
	}
	size := o.src.VisibleSize()
	total := size.W * size.H
	if total <= 0 {
		return
	}
	if o.img == nil || o.img.Bounds().Dx() != size.W || o.img.Bounds().Dy() != size.H {
		o.img = ebiten.NewImage(size.W, size.H)
		o.buf = make([]byte, 4*total)
		o.dirty = true
	}
	if o.dirty {
		if !o.rebuild(total) {
			return
		}
		o.img.WritePixels(o.buf)
		o.dirty = false
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(o.scale), float64(o.scale))
	screen.DrawImage(o.img, op)
}

func (o *Overlay) rebuild(total int) bool {
	var cells []uint8
	switch {
	case o.showTile:
		cells = o.src.TileMap()
		if len(cells) != total {
			return false
		}
		render.FillPalette(o.buf, cells, tilePalette)
	default:
		cells = o.src.PorosityMask()
		if len(cells) != total {
			return false
		}
		render.FillBinary(o.buf, cells, porousTint, clearTint)
	}
	return true
}

// tilePalette colours tile tags; index 0 is uncovered.
var tilePalette = []color.RGBA{
	{R: 255, G: 0, B: 255, A: 200},
	{R: 30, G: 30, B: 30, A: 40},
	{R: 60, G: 160, B: 60, A: 90},
	{R: 200, G: 200, B: 60, A: 90},
	{R: 200, G: 60, B: 60, A: 90},
	{R: 60, G: 60, B: 200, A: 90},
	{R: 160, G: 60, B: 200, A: 90},
	{R: 60, G: 200, B: 200, A: 90},
	{R: 220, G: 120, B: 40, A: 90},
}
