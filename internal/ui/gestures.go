package ui

import (
	"image"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
)

// PreviewSurface shows the rendered board and turns taps and drags into
// logical canvas coordinates. A tap selects a cell; a drag pans it.
type PreviewSurface struct {
	widget.BaseWidget

	raster  *canvas.Image
	logical fyne.Size // canvas size in logical pixels

	onTap     func(x, y float64)
	onPress   func(x, y float64)
	onDrag    func(dx, dy float64)
	onDragEnd func()
	dragging  bool
}

// NewPreviewSurface creates an empty preview
func NewPreviewSurface(onTap func(x, y float64), onDrag func(dx, dy float64), onDragEnd func()) *PreviewSurface {
	p := &PreviewSurface{
		raster:    canvas.NewImageFromImage(image.NewRGBA(image.Rect(0, 0, 1, 1))),
		onTap:     onTap,
		onDrag:    onDrag,
		onDragEnd: onDragEnd,
	}
	p.raster.FillMode = canvas.ImageFillContain
	p.raster.ScaleMode = canvas.ImageScaleFastest
	p.raster.SetMinSize(fyne.NewSize(PreviewMinWidth, PreviewMinHeight))
	p.ExtendBaseWidget(p)
	return p
}

// SetFrame swaps in a new rendered frame of a w x h logical canvas
func (p *PreviewSurface) SetFrame(img image.Image, w, h float64) {
	p.logical = fyne.NewSize(float32(w), float32(h))
	p.raster.Image = img
	p.raster.Refresh()
}

// CreateRenderer creates the widget renderer
func (p *PreviewSurface) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(p.raster)
}

// fit returns the contain-fit scale and top-left offset of the canvas
// inside the widget
func (p *PreviewSurface) fit() (scale float32, origin fyne.Position) {
	size := p.Size()
	if p.logical.Width <= 0 || p.logical.Height <= 0 || size.Width <= 0 || size.Height <= 0 {
		return 0, fyne.Position{}
	}
	scale = size.Width / p.logical.Width
	if s := size.Height / p.logical.Height; s < scale {
		scale = s
	}
	origin = fyne.NewPos(
		(size.Width-p.logical.Width*scale)/2,
		(size.Height-p.logical.Height*scale)/2,
	)
	return scale, origin
}

// toLogical maps a widget position onto the logical canvas
func (p *PreviewSurface) toLogical(pos fyne.Position) (float64, float64, bool) {
	scale, origin := p.fit()
	if scale == 0 {
		return 0, 0, false
	}
	x := float64((pos.X - origin.X) / scale)
	y := float64((pos.Y - origin.Y) / scale)
	if x < 0 || y < 0 || x >= float64(p.logical.Width) || y >= float64(p.logical.Height) {
		return 0, 0, false
	}
	return x, y, true
}

// Tapped selects the cell under the pointer
func (p *PreviewSurface) Tapped(ev *fyne.PointEvent) {
	x, y, ok := p.toLogical(ev.Position)
	if ok && p.onTap != nil {
		p.onTap(x, y)
	}
}

// Dragged reports pointer movement in logical pixels
func (p *PreviewSurface) Dragged(ev *fyne.DragEvent) {
	scale, _ := p.fit()
	if scale == 0 || p.onDrag == nil {
		return
	}
	if !p.dragging {
		p.dragging = true
		start := ev.Position.Subtract(fyne.NewPos(ev.Dragged.DX, ev.Dragged.DY))
		p.press(start)
	}
	p.onDrag(float64(ev.Dragged.DX/scale), float64(ev.Dragged.DY/scale))
}

// DragEnd finishes a pan gesture
func (p *PreviewSurface) DragEnd() {
	p.dragging = false
	if p.onDragEnd != nil {
		p.onDragEnd()
	}
}
