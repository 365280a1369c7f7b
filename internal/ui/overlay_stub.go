//go:build !ebiten

package ui

import "seismic-sim/internal/core"

// LayerSource provides the debugging layers the overlay can show.
type LayerSource interface {
	VisibleSize() core.Size
	TileMap() []uint8
	PorosityMask() []uint8
}

// Overlay is a no-op placeholder used when the ebiten build tag is absent.
type Overlay struct{}

// NewOverlay constructs a stub overlay.
func NewOverlay(LayerSource, int) *Overlay { return &Overlay{} }

// Invalidate is a no-op in headless builds.
func (o *Overlay) Invalidate() {}

// Update is a no-op in headless builds.
func (o *Overlay) Update() {}

// Draw is a no-op placeholder.
func (o *Overlay) Draw(any) {}
