package ui

import (
	"image"
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/mobile"
	"fyne.io/fyne/v2/test"
)

func TestPreviewSurfaceMapsTaps(t *testing.T) {
	test.NewApp()

	var gotX, gotY float64
	taps := 0
	p := NewPreviewSurface(func(x, y float64) {
		gotX, gotY = x, y
		taps++
	}, nil, nil)
	p.SetFrame(image.NewRGBA(image.Rect(0, 0, 100, 200)), 100, 200)
	// contain-fit: scale 2, centred horizontally with a 100px margin
	p.Resize(fyne.NewSize(400, 400))

	p.Tapped(&fyne.PointEvent{Position: fyne.NewPos(150, 100)})
	if taps != 1 || gotX != 25 || gotY != 50 {
		t.Errorf("Expected tap at 25,50, got %v,%v (%d taps)", gotX, gotY, taps)
	}

	p.Tapped(&fyne.PointEvent{Position: fyne.NewPos(50, 100)})
	if taps != 1 {
		t.Error("Tap in the letterbox margin should be ignored")
	}
}

func TestPreviewSurfaceScalesDrags(t *testing.T) {
	test.NewApp()

	var dx, dy float64
	p := NewPreviewSurface(nil, func(x, y float64) { dx, dy = x, y }, nil)
	p.SetFrame(image.NewRGBA(image.Rect(0, 0, 100, 100)), 100, 100)
	p.Resize(fyne.NewSize(200, 200))

	p.Dragged(&fyne.DragEvent{Dragged: fyne.NewDelta(10, -4)})
	if dx != 5 || dy != -2 {
		t.Errorf("Expected drag 5,-2, got %v,%v", dx, dy)
	}
}

func TestPreviewSurfacePressesOnce(t *testing.T) {
	test.NewApp()

	presses := 0
	var px, py float64
	p := NewPreviewSurface(nil, func(float64, float64) {}, nil)
	p.SetOnPress(func(x, y float64) {
		presses++
		px, py = x, y
	})
	p.SetFrame(image.NewRGBA(image.Rect(0, 0, 100, 100)), 100, 100)
	p.Resize(fyne.NewSize(100, 100))

	p.Dragged(&fyne.DragEvent{
		PointEvent: fyne.PointEvent{Position: fyne.NewPos(30, 40)},
		Dragged:    fyne.NewDelta(10, 10),
	})
	p.Dragged(&fyne.DragEvent{
		PointEvent: fyne.PointEvent{Position: fyne.NewPos(40, 50)},
		Dragged:    fyne.NewDelta(10, 10),
	})
	if presses != 1 || px != 20 || py != 30 {
		t.Errorf("Expected one press at 20,30, got %d at %v,%v", presses, px, py)
	}

	p.DragEnd()
	p.TouchDown(&mobile.TouchEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(5, 5)}})
	if presses != 2 || px != 5 || py != 5 {
		t.Errorf("Expected touch down to press at 5,5, got %d at %v,%v", presses, px, py)
	}
}
