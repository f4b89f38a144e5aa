package ui

import "time"

// UI-wide constants to avoid magic numbers/strings scattered across the codebase.

// Icons (emojis/symbols)
const (
	IconSettings = "⚙"
	IconFolder   = "📁"
	IconFile     = "📄"
	IconClose    = "×"
	IconStop     = "■"
	IconLanguage = "🌐"
	IconLink     = "🔗"
	IconReset    = "↺"
	IconClear    = "🗑️"
	IconShare    = "📱"
)

// Text fragments
const (
	MiddleDotSeparator  = " · "
	DashPlaceholder     = "—"
	ProgressLabelFormat = "%d%%"
	CellLabelFormat     = "#%d"
)

// Layout sizing
const (
	StatusLabelWidth  float32 = 84
	PercentLabelWidth float32 = 48

	RowMinWidth  float32 = 280
	RowMinHeight float32 = 56
	RowDefaultH  float32 = 56

	PanelMinWidth    float32 = 300
	PreviewMinWidth  float32 = 270
	PreviewMinHeight float32 = 480

	// Touch target minimum sizes (iOS/Android guidelines)
	MinTouchTargetSize float32 = 44
	MobileButtonHeight float32 = 48
)

// Offset slider range in logical pixels
const (
	MaxOffset  = 300.0
	OffsetStep = 1.0
)

// Toast notification sizing and behavior
const (
	ToastWidth    float32 = 300
	ToastHeight   float32 = 120
	ToastAutoHide         = 5 * time.Second
)

// Preview refresh
const (
	PreviewInterval = time.Second / 15
)
