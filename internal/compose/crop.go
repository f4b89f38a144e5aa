// Package compose rasterizes a board into a single frame: cover-crop math,
// rounded clip masks, the sampled frame compositor used by animated
// exports, and the full view renderer used for stills.
package compose

import "image"

// Crop is a source rectangle in media pixels.
type Crop struct {
	SX, SY, SW, SH float64
}

// Rect returns the crop snapped to integer pixels, offset by origin.
func (c Crop) Rect(origin image.Point) image.Rectangle {
	x0 := origin.X + int(c.SX+0.5)
	y0 := origin.Y + int(c.SY+0.5)
	x1 := origin.X + int(c.SX+c.SW+0.5)
	y1 := origin.Y + int(c.SY+c.SH+0.5)
	return image.Rect(x0, y0, x1, y1)
}

// CoverCrop returns the centred part of an nw x nh source that fills a
// dw x dh destination without letterboxing: a source wider than the cell
// loses its sides, a taller one loses top and bottom.
func CoverCrop(dw, dh, nw, nh float64) Crop {
	if dw <= 0 || dh <= 0 || nw <= 0 || nh <= 0 {
		return Crop{}
	}
	cellAspect := dw / dh
	mediaAspect := nw / nh
	if mediaAspect > cellAspect {
		sw := nh * cellAspect
		return Crop{SX: (nw - sw) / 2, SY: 0, SW: sw, SH: nh}
	}
	sh := nw / cellAspect
	return Crop{SX: 0, SY: (nh - sh) / 2, SW: nw, SH: sh}
}

// FitRect places an nw x nh source inside a dw x dh box the way CSS
// object-fit does, returning the drawn rectangle relative to the box.
// Cover may overflow the box; contain stays inside it.
func FitRect(dw, dh, nw, nh float64, cover bool) (x, y, w, h float64) {
	if nw <= 0 || nh <= 0 {
		return 0, 0, 0, 0
	}
	kx, ky := dw/nw, dh/nh
	k := min(kx, ky)
	if cover {
		k = max(kx, ky)
	}
	w, h = nw*k, nh*k
	return (dw - w) / 2, (dh - h) / 2, w, h
}
