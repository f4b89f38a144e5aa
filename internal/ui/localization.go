package ui

import (
	"strings"

	"fyne.io/fyne/v2/lang"
)

// Localization manages UI text translations
type Localization struct {
	currentLanguage string
	texts           map[string]map[string]string
}

// Text keys for localization
const (
	KeyAppTitle          = "app_title"
	KeyLayout            = "layout"
	KeyAspect            = "aspect"
	KeyGrid              = "grid"
	KeySettings          = "settings"
	KeyFile              = "file"
	KeyLanguage          = "language"
	KeyExportPNG         = "export_png"
	KeyExportGIF         = "export_gif"
	KeyExportVideo       = "export_video"
	KeyStop              = "stop"
	KeyOpen              = "open"
	KeyReveal            = "reveal"
	KeyReplace           = "replace"
	KeyImportURL         = "import_url"
	KeyEnterURL          = "enter_url"
	KeyClear             = "clear"
	KeyReset             = "reset"
	KeyPreset            = "preset"
	KeyFit               = "fit"
	KeyFitCover          = "fit_cover"
	KeyFitContain        = "fit_contain"
	KeyScale             = "scale"
	KeyOffsetX           = "offset_x"
	KeyOffsetY           = "offset_y"
	KeyBrightness        = "brightness"
	KeyContrast          = "contrast"
	KeySaturate          = "saturate"
	KeyBlur              = "blur"
	KeyGrayscale         = "grayscale"
	KeySepia             = "sepia"
	KeyNoCellSelected    = "no_cell_selected"
	KeyEmptyCell         = "empty_cell"
	KeyExportStarted     = "export_started"
	KeyExportCompleted   = "export_completed"
	KeyExportFailed      = "export_failed"
	KeyExportBusy        = "export_busy"
	KeyExportUnavailable = "export_unavailable"
	KeyNothingToExport   = "nothing_to_export"
	KeyImportStarted     = "import_started"
	KeyImportCompleted   = "import_completed"
	KeyImportFailed      = "import_failed"
	KeyClearCache        = "clear_cache"
	KeyClearCacheConfirm = "clear_cache_confirm"
	KeyCacheCleared      = "cache_cleared"
	KeyOutputDirectory   = "output_directory"
	KeyCanvasWidth       = "canvas_width"
	KeyGap               = "gap"
	KeyBorderRadius      = "border_radius"
	KeyBackground        = "background"
	KeyRevealOnComplete  = "reveal_on_complete"
	KeySave              = "save"
	KeyCancel            = "cancel"
	KeyBrowse            = "browse"
	KeySettingsSaved     = "settings_saved"
	KeyErrorOpeningFile  = "error_opening_file"
	KeyUnsupportedFile   = "unsupported_file"
	KeyInvalidURL        = "invalid_url"
	KeyPleaseEnterURL    = "please_enter_url"
	KeyAlreadyInQueue    = "already_in_queue"
)

// NewLocalization creates a new localization manager
func NewLocalization() *Localization {
	l := &Localization{
		currentLanguage: "en",
		texts:           make(map[string]map[string]string),
	}

	l.initializeTexts()
	return l
}

// SetLanguage sets the current language
func (l *Localization) SetLanguage(lang string) {
	if lang == "system" {
		lang = systemLanguage()
	}

	if _, exists := l.texts[lang]; exists {
		l.currentLanguage = lang
	}
}

// systemLanguage maps the OS locale onto a supported language
func systemLanguage() string {
	locale := strings.ToLower(string(lang.SystemLocale()))
	if strings.HasPrefix(locale, "zh") {
		return "zh-TW"
	}
	return "en"
}

// GetText returns localized text for the given key
func (l *Localization) GetText(key string) string {
	if texts, exists := l.texts[l.currentLanguage]; exists {
		if text, found := texts[key]; found {
			return text
		}
	}

	// Fallback to English
	if texts, exists := l.texts["en"]; exists {
		if text, found := texts[key]; found {
			return text
		}
	}

	// Final fallback - return key itself
	return key
}

// GetCurrentLanguage returns the current language code
func (l *Localization) GetCurrentLanguage() string {
	return l.currentLanguage
}

// GetAvailableLanguages returns map of available languages with their display names
func (l *Localization) GetAvailableLanguages() map[string]string {
	return map[string]string{
		"en":    "English",
		"zh-TW": "繁體中文",
	}
}

// initializeTexts initializes all text translations
func (l *Localization) initializeTexts() {
	// English texts
	l.texts["en"] = map[string]string{
		KeyAppTitle:          "Story Grid",
		KeyLayout:            "Layout",
		KeyAspect:            "Aspect",
		KeyGrid:              "Grid",
		KeySettings:          "Settings",
		KeyFile:              "File",
		KeyLanguage:          "Language",
		KeyExportPNG:         "PNG",
		KeyExportGIF:         "GIF",
		KeyExportVideo:       "Video",
		KeyStop:              "Stop",
		KeyOpen:              "Open",
		KeyReveal:            "Reveal",
		KeyReplace:           "Replace",
		KeyImportURL:         "Import URL",
		KeyEnterURL:          "Enter a video URL (https://...)",
		KeyClear:             "Clear",
		KeyReset:             "Reset",
		KeyPreset:            "Preset",
		KeyFit:               "Fit",
		KeyFitCover:          "Cover",
		KeyFitContain:        "Contain",
		KeyScale:             "Scale",
		KeyOffsetX:           "Offset X",
		KeyOffsetY:           "Offset Y",
		KeyBrightness:        "Brightness",
		KeyContrast:          "Contrast",
		KeySaturate:          "Saturation",
		KeyBlur:              "Blur",
		KeyGrayscale:         "Grayscale",
		KeySepia:             "Sepia",
		KeyNoCellSelected:    "Tap a cell to edit it",
		KeyEmptyCell:         "Empty cell",
		KeyExportStarted:     "Export started",
		KeyExportCompleted:   "Export completed",
		KeyExportFailed:      "Export failed",
		KeyExportBusy:        "An export is already in progress",
		KeyExportUnavailable: "Video export is not available on this device",
		KeyNothingToExport:   "Nothing to export",
		KeyImportStarted:     "Import started",
		KeyImportCompleted:   "Import completed",
		KeyImportFailed:      "Import failed",
		KeyClearCache:        "Clear cache",
		KeyClearCacheConfirm: "Remove all media from the grid and clear cached data?",
		KeyCacheCleared:      "Cache cleared",
		KeyOutputDirectory:   "Output Directory",
		KeyCanvasWidth:       "Canvas Width",
		KeyGap:               "Gap",
		KeyBorderRadius:      "Corner Radius",
		KeyBackground:        "Background",
		KeyRevealOnComplete:  "Reveal file when export completes",
		KeySave:              "Save",
		KeyCancel:            "Cancel",
		KeyBrowse:            "Browse",
		KeySettingsSaved:     "Settings saved successfully!",
		KeyErrorOpeningFile:  "Error opening file",
		KeyUnsupportedFile:   "Unsupported file",
		KeyInvalidURL:        "Invalid URL",
		KeyPleaseEnterURL:    "Please enter a URL",
		KeyAlreadyInQueue:    "Already importing",
	}

	// Traditional Chinese texts
	l.texts["zh-TW"] = map[string]string{
		KeyAppTitle:          "限時動態拼貼",
		KeyLayout:            "版面",
		KeyAspect:            "比例",
		KeyGrid:              "格線",
		KeySettings:          "設定",
		KeyFile:              "檔案",
		KeyLanguage:          "語言",
		KeyExportPNG:         "PNG",
		KeyExportGIF:         "GIF",
		KeyExportVideo:       "影片",
		KeyStop:              "停止",
		KeyOpen:              "開啟",
		KeyReveal:            "顯示位置",
		KeyReplace:           "更換",
		KeyImportURL:         "匯入網址",
		KeyEnterURL:          "輸入影片網址 (https://...)",
		KeyClear:             "清除",
		KeyReset:             "重設",
		KeyPreset:            "濾鏡預設",
		KeyFit:               "填滿方式",
		KeyFitCover:          "覆蓋",
		KeyFitContain:        "完整顯示",
		KeyScale:             "縮放",
		KeyOffsetX:           "水平位移",
		KeyOffsetY:           "垂直位移",
		KeyBrightness:        "亮度",
		KeyContrast:          "對比",
		KeySaturate:          "飽和度",
		KeyBlur:              "模糊",
		KeyGrayscale:         "灰階",
		KeySepia:             "懷舊",
		KeyNoCellSelected:    "點選格子開始編輯",
		KeyEmptyCell:         "空白格子",
		KeyExportStarted:     "開始匯出",
		KeyExportCompleted:   "匯出完成",
		KeyExportFailed:      "匯出失敗",
		KeyExportBusy:        "已有匯出正在進行",
		KeyExportUnavailable: "此裝置無法匯出影片",
		KeyNothingToExport:   "沒有可匯出的內容",
		KeyImportStarted:     "開始匯入",
		KeyImportCompleted:   "匯入完成",
		KeyImportFailed:      "匯入失敗",
		KeyClearCache:        "清除快取",
		KeyClearCacheConfirm: "要移除所有媒體並清除快取嗎？",
		KeyCacheCleared:      "快取已清除",
		KeyOutputDirectory:   "輸出資料夾",
		KeyCanvasWidth:       "畫布寬度",
		KeyGap:               "間距",
		KeyBorderRadius:      "圓角",
		KeyBackground:        "背景顏色",
		KeyRevealOnComplete:  "匯出完成後顯示檔案",
		KeySave:              "儲存",
		KeyCancel:            "取消",
		KeyBrowse:            "瀏覽",
		KeySettingsSaved:     "設定已儲存！",
		KeyErrorOpeningFile:  "開啟檔案時發生錯誤",
		KeyUnsupportedFile:   "不支援的檔案",
		KeyInvalidURL:        "網址無效",
		KeyPleaseEnterURL:    "請輸入網址",
		KeyAlreadyInQueue:    "正在匯入中",
	}
}
