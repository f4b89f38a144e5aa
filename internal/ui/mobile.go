package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// Split offsets for the editor layout
const (
	DesktopSplitOffset  = 0.55
	PortraitSplitOffset = 0.6
)

// MobileUI provides mobile-specific UI enhancements
type MobileUI struct {
	app fyne.App
}

// NewMobileUI creates a new mobile UI helper
func NewMobileUI(app fyne.App) *MobileUI {
	return &MobileUI{app: app}
}

// IsMobileDevice checks if the app is running on a mobile device
func (m *MobileUI) IsMobileDevice() bool {
	return fyne.CurrentDevice().IsMobile()
}

// CreateMobileButton creates a button with a touch-sized minimum height on mobile
func (m *MobileUI) CreateMobileButton(text string, onTapped func()) *widget.Button {
	btn := widget.NewButton(text, onTapped)
	if m.IsMobileDevice() {
		btn.Importance = widget.HighImportance
	}
	return btn
}

// GetMobilePadding returns appropriate padding for mobile devices
func (m *MobileUI) GetMobilePadding() float32 {
	if m.IsMobileDevice() {
		return 20
	}
	return 10
}

// IsLandscape returns true if device is in landscape orientation
func (m *MobileUI) IsLandscape() bool {
	orientation := fyne.CurrentDevice().Orientation()
	return orientation == fyne.OrientationHorizontalLeft || orientation == fyne.OrientationHorizontalRight
}

// EditorLayout places the preview and the cell panel side by side on
// desktop and in landscape, stacked in portrait on phones.
func (m *MobileUI) EditorLayout(preview, panel fyne.CanvasObject) fyne.CanvasObject {
	scroll := container.NewVScroll(panel)
	if m.IsMobileDevice() && !m.IsLandscape() {
		split := container.NewVSplit(preview, scroll)
		split.Offset = PortraitSplitOffset
		return split
	}
	split := container.NewHSplit(preview, scroll)
	split.Offset = DesktopSplitOffset
	return split
}
