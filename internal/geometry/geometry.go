// Package geometry resolves grid templates into pixel rectangles without a
// rendered view, so composition can run headless.
package geometry

import (
	"image"
	"math"

	"github.com/ytget/story-grid/internal/model"
)

// Rect is a rectangle in logical canvas pixels.
type Rect struct {
	X, Y, W, H float64
}

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// Scaled multiplies every coordinate by s.
func (r Rect) Scaled(s float64) Rect {
	return Rect{X: r.X * s, Y: r.Y * s, W: r.W * s, H: r.H * s}
}

// Pixels snaps the rectangle to integer device pixels.
func (r Rect) Pixels() image.Rectangle {
	x0 := int(math.Round(r.X))
	y0 := int(math.Round(r.Y))
	x1 := int(math.Round(r.X + r.W))
	y1 := int(math.Round(r.Y + r.H))
	return image.Rect(x0, y0, x1, y1)
}

// CanvasSize returns the canvas height for a logical width and aspect ratio.
func CanvasSize(aspect model.AspectRatio, width float64) (float64, float64) {
	if aspect.W <= 0 || aspect.H <= 0 {
		return width, width
	}
	return width, math.Round(width * float64(aspect.H) / float64(aspect.W))
}

// track returns the size of one 1fr track given the gaps between n tracks.
func track(total, gap float64, n int) float64 {
	if n <= 0 {
		return 0
	}
	t := (total - gap*float64(n-1)) / float64(n)
	if t < 0 {
		return 0
	}
	return t
}

// Resolve lays a template out on a w x h canvas with equal tracks separated
// by gap, returning one rectangle per slot in slot order.
func Resolve(layout model.GridLayout, w, h, gap float64) []Rect {
	colW := track(w, gap, layout.Cols)
	rowH := track(h, gap, layout.Rows)
	rects := make([]Rect, len(layout.Cells))
	for i, s := range layout.Cells {
		rects[i] = Rect{
			X: float64(s.Col) * (colW + gap),
			Y: float64(s.Row) * (rowH + gap),
			W: float64(s.ColSpan)*colW + float64(s.ColSpan-1)*gap,
			H: float64(s.RowSpan)*rowH + float64(s.RowSpan-1)*gap,
		}
	}
	return rects
}

// Hit returns the index of the slot containing the point, or -1.
func Hit(rects []Rect, x, y float64) int {
	for i, r := range rects {
		if x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H {
			return i
		}
	}
	return -1
}
