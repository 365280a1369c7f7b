package render

import (
	"image"
	"image/color"
)

// NewCanvas allocates an opaque black RGBA surface.
func NewCanvas(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, max(w, 1), max(h, 1)))
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 0xff
	}
	return img
}

// Row returns the pixel bytes of row y of dst, limited to w pixels.
func Row(dst *image.RGBA, y, w int) []byte {
	off := dst.PixOffset(dst.Rect.Min.X, dst.Rect.Min.Y+y)
	return dst.Pix[off : off+4*w : off+4*w]
}

// FillBinary converts binary cell data (0/1) into RGBA pixels in buf.
func FillBinary(buf []byte, cells []uint8, on, off color.Color) {
	rOn, gOn, bOn, aOn := on.RGBA()
	rOff, gOff, bOff, aOff := off.RGBA()
	for i, c := range cells {
		base := i * 4
		if c != 0 {
			buf[base+0] = uint8(rOn >> 8)
			buf[base+1] = uint8(gOn >> 8)
			buf[base+2] = uint8(bOn >> 8)
			buf[base+3] = uint8(aOn >> 8)
			continue
		}
		buf[base+0] = uint8(rOff >> 8)
		buf[base+1] = uint8(gOff >> 8)
		buf[base+2] = uint8(bOff >> 8)
		buf[base+3] = uint8(aOff >> 8)
	}
}

// FillPalette converts cell values into RGBA pixels using a palette. When
// the palette is empty the buffer is cleared to transparent black.
func FillPalette(buf []byte, cells []uint8, palette []color.RGBA) {
	if len(palette) == 0 {
		clear(buf[:4*len(cells)])
		return
	}

	last := len(palette) - 1
	for i, c := range cells {
		idx := int(c)
		if idx > last {
			idx = last
		}
		base := i * 4
		col := palette[idx]
		buf[base+0] = col.R
		buf[base+1] = col.G
		buf[base+2] = col.B
		buf[base+3] = col.A
	}
}

// Pack writes col at pixel x of an RGBA row.
func Pack(row []byte, x int, col color.RGBA) {
	p := row[4*x : 4*x+4 : 4*x+4]
	p[0], p[1], p[2], p[3] = col.R, col.G, col.B, col.A
}
