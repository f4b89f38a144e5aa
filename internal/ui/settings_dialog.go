package ui

import (
	"fmt"
	"image/color"
	"sort"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/ytget/story-grid/internal/config"
	"github.com/ytget/story-grid/internal/model"
)

// Settings dialog size
const (
	SettingsDialogWidth  = 500
	SettingsDialogHeight = 460
)

// SettingsDialog represents the settings configuration dialog
type SettingsDialog struct {
	settings     *config.Settings
	localization *Localization
	window       fyne.Window
	dialog       *dialog.ConfirmDialog
	onSaved      func()

	// UI components
	outputDirEntry   *widget.Entry
	canvasWidthEntry *widget.Entry
	gapSlider        *widget.Slider
	radiusSlider     *widget.Slider
	backgroundEntry  *widget.Entry
	languageSelect   *widget.Select
	revealCheck      *widget.Check

	languageCodes []string
}

// ShowSettingsDialog creates and shows the settings dialog
func ShowSettingsDialog(window fyne.Window, settings *config.Settings, localization *Localization, onSaved func()) {
	sd := &SettingsDialog{
		settings:     settings,
		localization: localization,
		window:       window,
		onSaved:      onSaved,
	}
	sd.createUI()
	sd.loadCurrentSettings()
	sd.dialog.Show()
}

// createUI creates the settings dialog UI
func (sd *SettingsDialog) createUI() {
	l := sd.localization

	sd.outputDirEntry = widget.NewEntry()
	browseDirBtn := widget.NewButton(l.GetText(KeyBrowse), sd.onBrowseDirectory)
	outputDirRow := container.NewBorder(nil, nil, nil, browseDirBtn, sd.outputDirEntry)

	sd.canvasWidthEntry = widget.NewEntry()
	sd.canvasWidthEntry.SetPlaceHolder(fmt.Sprintf("%d-%d", config.MinCanvasWidth, config.MaxCanvasWidth))

	sd.gapSlider = widget.NewSlider(0, model.MaxGap)
	sd.radiusSlider = widget.NewSlider(0, model.MaxBorderRadius)

	sd.backgroundEntry = widget.NewEntry()
	sd.backgroundEntry.SetPlaceHolder(model.DefaultBgColor)
	sd.backgroundEntry.Validator = func(s string) error {
		if !model.ValidHexColor(s) {
			return fmt.Errorf("expected #RRGGBB")
		}
		return nil
	}
	pickBtn := widget.NewButton("…", sd.onPickColor)
	backgroundRow := container.NewBorder(nil, nil, nil, pickBtn, sd.backgroundEntry)

	options := sd.settings.GetLanguageOptions()
	sd.languageCodes = make([]string, 0, len(options))
	for code := range options {
		sd.languageCodes = append(sd.languageCodes, code)
	}
	sort.Strings(sd.languageCodes)
	labels := make([]string, len(sd.languageCodes))
	for i, code := range sd.languageCodes {
		labels[i] = options[code]
	}
	sd.languageSelect = widget.NewSelect(labels, nil)

	sd.revealCheck = widget.NewCheck(l.GetText(KeyRevealOnComplete), nil)

	form := container.NewVBox(
		widget.NewLabel(l.GetText(KeyOutputDirectory)+":"),
		outputDirRow,

		widget.NewLabel(l.GetText(KeyCanvasWidth)+":"),
		sd.canvasWidthEntry,

		widget.NewSeparator(),
		widget.NewLabel(l.GetText(KeyGap)+":"),
		sd.gapSlider,
		widget.NewLabel(l.GetText(KeyBorderRadius)+":"),
		sd.radiusSlider,
		widget.NewLabel(l.GetText(KeyBackground)+":"),
		backgroundRow,

		widget.NewSeparator(),
		widget.NewLabel(IconLanguage+" "+l.GetText(KeyLanguage)+":"),
		sd.languageSelect,
		sd.revealCheck,
	)

	sd.dialog = dialog.NewCustomConfirm(
		l.GetText(KeySettings),
		l.GetText(KeySave),
		l.GetText(KeyCancel),
		container.NewVScroll(form),
		sd.onSave,
		sd.window,
	)
	sd.dialog.Resize(fyne.NewSize(SettingsDialogWidth, SettingsDialogHeight))
}

// loadCurrentSettings loads current settings into the UI
func (sd *SettingsDialog) loadCurrentSettings() {
	cfg := sd.settings.GetExportConfig()
	sd.outputDirEntry.SetText(sd.settings.GetOutputDirectory())
	sd.canvasWidthEntry.SetText(strconv.Itoa(sd.settings.GetCanvasWidth()))
	sd.gapSlider.SetValue(cfg.Gap)
	sd.radiusSlider.SetValue(cfg.BorderRadius)
	sd.backgroundEntry.SetText(cfg.Background)
	sd.revealCheck.SetChecked(sd.settings.GetAutoRevealOnComplete())

	current := sd.settings.GetLanguage()
	for i, code := range sd.languageCodes {
		if code == current {
			sd.languageSelect.SetSelectedIndex(i)
		}
	}
}

// onBrowseDirectory handles directory browsing
func (sd *SettingsDialog) onBrowseDirectory() {
	dialog.ShowFolderOpen(func(uri fyne.ListableURI, err error) {
		if err != nil || uri == nil {
			return
		}
		sd.outputDirEntry.SetText(uri.Path())
	}, sd.window)
}

// onPickColor opens the colour picker for the background
func (sd *SettingsDialog) onPickColor() {
	picker := dialog.NewColorPicker(sd.localization.GetText(KeyBackground), "", func(c color.Color) {
		sd.backgroundEntry.SetText(hexColor(c))
	}, sd.window)
	picker.Advanced = true
	picker.Show()
}

// hexColor formats a colour as #rrggbb
func hexColor(c color.Color) string {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return fmt.Sprintf("#%02x%02x%02x", n.R, n.G, n.B)
}

// onSave handles saving the settings
func (sd *SettingsDialog) onSave(confirmed bool) {
	if !confirmed {
		return
	}

	if dir := sd.outputDirEntry.Text; dir != "" {
		sd.settings.SetOutputDirectory(dir)
	}

	if width, err := strconv.Atoi(sd.canvasWidthEntry.Text); err == nil {
		sd.settings.SetCanvasWidth(width)
	}

	sd.settings.SetExportConfig(model.ExportConfig{
		Gap:          sd.gapSlider.Value,
		BorderRadius: sd.radiusSlider.Value,
		Background:   sd.backgroundEntry.Text,
	})

	if i := sd.languageSelect.SelectedIndex(); i >= 0 && i < len(sd.languageCodes) {
		sd.settings.SetLanguage(sd.languageCodes[i])
	}
	sd.settings.SetAutoRevealOnComplete(sd.revealCheck.Checked)

	if sd.onSaved != nil {
		sd.onSaved()
	}
	dialog.ShowInformation(sd.localization.GetText(KeySettings), sd.localization.GetText(KeySettingsSaved), sd.window)
}
