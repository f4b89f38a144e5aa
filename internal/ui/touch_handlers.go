package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/mobile"
)

// SetOnPress registers a callback for the start of a gesture. On touch
// screens it fires on touch down, on desktop with the first drag event,
// so a pan always acts on the cell under the finger.
func (p *PreviewSurface) SetOnPress(onPress func(x, y float64)) {
	p.onPress = onPress
}

// press reports the gesture origin in logical pixels
func (p *PreviewSurface) press(pos fyne.Position) {
	if p.onPress == nil {
		return
	}
	if x, y, ok := p.toLogical(pos); ok {
		p.onPress(x, y)
	}
}

// TouchDown handles touch down events
func (p *PreviewSurface) TouchDown(event *mobile.TouchEvent) {
	p.dragging = true
	p.press(event.Position)
}

// TouchUp handles touch up events
func (p *PreviewSurface) TouchUp(*mobile.TouchEvent) {
	p.dragging = false
}

// TouchCancel handles touch cancel events
func (p *PreviewSurface) TouchCancel(*mobile.TouchEvent) {
	p.dragging = false
	if p.onDragEnd != nil {
		p.onDragEnd()
	}
}

var _ mobile.Touchable = (*PreviewSurface)(nil)
