package config

import (
	"os"
	"path/filepath"

	"fyne.io/fyne/v2"

	"github.com/ytget/story-grid/internal/model"
	"github.com/ytget/story-grid/internal/platform"
)

// Settings keys for Fyne preferences
const (
	KeyOutputDir          = "output_directory"
	KeyLayoutIndex        = "layout_index"
	KeyAspectIndex        = "aspect_index"
	KeyGap                = "grid_gap"
	KeyBorderRadius       = "border_radius"
	KeyBackground         = "background_color"
	KeyCanvasWidth        = "canvas_width"
	KeyLanguage           = "app_language"
	KeyAutoRevealComplete = "auto_reveal_on_complete"
)

// Default values
const (
	DefaultCanvasWidth        = 540
	MinCanvasWidth            = 180
	MaxCanvasWidth            = 1080
	DefaultLanguage           = "system"
	DefaultAutoRevealComplete = false
)

// Settings manages application configuration
type Settings struct {
	app fyne.App
}

// NewSettings creates a new settings manager
func NewSettings(app fyne.App) *Settings {
	return &Settings{app: app}
}

// GetOutputDirectory returns where exports are saved
func (s *Settings) GetOutputDirectory() string {
	dir := s.app.Preferences().String(KeyOutputDir)
	if dir == "" {
		defaultDir, err := platform.GetHomeDownloadsDir()
		if err != nil {
			defaultDir = filepath.Join(os.TempDir(), "story-grid")
		}
		s.SetOutputDirectory(defaultDir)
		return defaultDir
	}
	return dir
}

// SetOutputDirectory sets the output directory
func (s *Settings) SetOutputDirectory(dir string) {
	s.app.Preferences().SetString(KeyOutputDir, dir)
}

// GetLayoutIndex returns the last selected layout
func (s *Settings) GetLayoutIndex() int {
	index := s.app.Preferences().IntWithFallback(KeyLayoutIndex, model.DefaultLayoutIndex)
	if index < 0 || index >= len(model.Layouts) {
		return model.DefaultLayoutIndex
	}
	return index
}

// SetLayoutIndex remembers the selected layout
func (s *Settings) SetLayoutIndex(index int) {
	if index < 0 || index >= len(model.Layouts) {
		index = model.DefaultLayoutIndex
	}
	s.app.Preferences().SetInt(KeyLayoutIndex, index)
}

// GetAspectIndex returns the last selected aspect ratio
func (s *Settings) GetAspectIndex() int {
	index := s.app.Preferences().IntWithFallback(KeyAspectIndex, 0)
	if index < 0 || index >= len(model.AspectRatios) {
		return 0
	}
	return index
}

// SetAspectIndex remembers the selected aspect ratio
func (s *Settings) SetAspectIndex(index int) {
	if index < 0 || index >= len(model.AspectRatios) {
		index = 0
	}
	s.app.Preferences().SetInt(KeyAspectIndex, index)
}

// GetExportConfig returns gap, radius and background
func (s *Settings) GetExportConfig() model.ExportConfig {
	p := s.app.Preferences()
	return model.ExportConfig{
		Gap:          float64(p.IntWithFallback(KeyGap, model.DefaultGap)),
		BorderRadius: float64(p.IntWithFallback(KeyBorderRadius, model.DefaultRadius)),
		Background:   p.StringWithFallback(KeyBackground, model.DefaultBgColor),
	}.Normalized()
}

// SetExportConfig stores gap, radius and background after clamping
func (s *Settings) SetExportConfig(cfg model.ExportConfig) {
	cfg = cfg.Normalized()
	p := s.app.Preferences()
	p.SetInt(KeyGap, int(cfg.Gap))
	p.SetInt(KeyBorderRadius, int(cfg.BorderRadius))
	p.SetString(KeyBackground, cfg.Background)
}

// GetCanvasWidth returns the logical width of the canvas in pixels
func (s *Settings) GetCanvasWidth() int {
	width := s.app.Preferences().IntWithFallback(KeyCanvasWidth, DefaultCanvasWidth)
	if width < MinCanvasWidth || width > MaxCanvasWidth {
		s.SetCanvasWidth(width)
		return s.app.Preferences().Int(KeyCanvasWidth)
	}
	return width
}

// SetCanvasWidth sets the canvas width, clamped to 180..1080
func (s *Settings) SetCanvasWidth(width int) {
	if width < MinCanvasWidth {
		width = MinCanvasWidth
	}
	if width > MaxCanvasWidth {
		width = MaxCanvasWidth
	}
	s.app.Preferences().SetInt(KeyCanvasWidth, width)
}

// GetLanguage returns the configured language
func (s *Settings) GetLanguage() string {
	lang := s.app.Preferences().String(KeyLanguage)
	if lang == "" {
		s.SetLanguage(DefaultLanguage)
		return DefaultLanguage
	}
	return lang
}

// SetLanguage sets the application language
func (s *Settings) SetLanguage(lang string) {
	s.app.Preferences().SetString(KeyLanguage, lang)
}

// GetAutoRevealOnComplete returns whether to reveal finished exports
func (s *Settings) GetAutoRevealOnComplete() bool {
	return s.app.Preferences().BoolWithFallback(KeyAutoRevealComplete, DefaultAutoRevealComplete)
}

// SetAutoRevealOnComplete sets whether to reveal finished exports
func (s *Settings) SetAutoRevealOnComplete(autoReveal bool) {
	s.app.Preferences().SetBool(KeyAutoRevealComplete, autoReveal)
}

// GetLanguageOptions returns available language options
func (s *Settings) GetLanguageOptions() map[string]string {
	return map[string]string{
		"system": "System Default",
		"en":     "English",
		"zh-TW":  "繁體中文",
	}
}
