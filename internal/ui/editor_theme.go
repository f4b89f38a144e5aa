package ui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

var (
	accentColor   = color.RGBA{R: 221, G: 42, B: 123, A: 255}
	accentFocus   = color.RGBA{R: 221, G: 42, B: 123, A: 96}
	accentSelect  = color.RGBA{R: 221, G: 42, B: 123, A: 48}
	completeColor = color.RGBA{R: 46, G: 160, B: 67, A: 255}
	failColor     = color.RGBA{R: 183, G: 28, B: 28, A: 255}
)

// EditorTheme keeps the desktop chrome tight so the preview gets the space,
// and grows padding and text on touch screens.
type EditorTheme struct {
	touch bool
}

// NewEditorTheme creates the theme; touch selects the larger mobile metrics
func NewEditorTheme(touch bool) fyne.Theme {
	return &EditorTheme{touch: touch}
}

// Color returns theme colors
func (t *EditorTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	dark := variant == theme.VariantDark
	switch name {
	case theme.ColorNamePrimary, theme.ColorNameHyperlink:
		return accentColor
	case theme.ColorNameFocus:
		return accentFocus
	case theme.ColorNameSelection:
		return accentSelect
	case theme.ColorNameSuccess:
		return completeColor
	case theme.ColorNameError:
		return failColor
	case theme.ColorNameBackground:
		if dark {
			return color.RGBA{R: 18, G: 18, B: 18, A: 255}
		}
		return color.RGBA{R: 246, G: 244, B: 245, A: 255}
	case theme.ColorNameForeground:
		if dark {
			return color.White
		}
		return color.RGBA{R: 33, G: 33, B: 33, A: 255}
	}
	return theme.DefaultTheme().Color(name, variant)
}

// Font returns theme fonts
func (t *EditorTheme) Font(style fyne.TextStyle) fyne.Resource {
	return theme.DefaultTheme().Font(style)
}

// Icon returns theme icons
func (t *EditorTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(name)
}

// Size returns compact desktop sizes, or roomier ones for touch
func (t *EditorTheme) Size(name fyne.ThemeSizeName) float32 {
	if t.touch {
		switch name {
		case theme.SizeNamePadding:
			return 6
		case theme.SizeNameInnerPadding:
			return 12
		case theme.SizeNameText:
			return 15
		case theme.SizeNameScrollBar:
			return 6
		}
		return theme.DefaultTheme().Size(name)
	}

	switch name {
	case theme.SizeNamePadding:
		return 3
	case theme.SizeNameInnerPadding:
		return 6
	case theme.SizeNameLineSpacing:
		return 2
	case theme.SizeNameScrollBar:
		return 10
	case theme.SizeNameText, theme.SizeNameSubHeadingText:
		return 13
	case theme.SizeNameHeadingText:
		return 16
	case theme.SizeNameCaptionText:
		return 10
	case theme.SizeNameInputRadius:
		return 3
	case theme.SizeNameSelectionRadius:
		return 2
	}
	return theme.DefaultTheme().Size(name)
}
