package ui

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"github.com/ytget/story-grid/internal/config"
	"github.com/ytget/story-grid/internal/editor"
	"github.com/ytget/story-grid/internal/export"
	"github.com/ytget/story-grid/internal/fetch"
	"github.com/ytget/story-grid/internal/logs"
	"github.com/ytget/story-grid/internal/media"
	"github.com/ytget/story-grid/internal/model"
	"github.com/ytget/story-grid/internal/platform"
)

// Services are the long-lived backends the window drives
type Services struct {
	Session   *editor.Session
	Importer  fetch.Importer
	Sink      *platform.Sink
	UploadDir string // where picked files without a local path are copied
}

// RootUI represents the main editor window
type RootUI struct {
	window       fyne.Window
	app          fyne.App
	settings     *config.Settings
	localization *Localization
	mobile       *MobileUI

	session   *editor.Session
	exporter  export.Exporter
	importer  fetch.Importer
	sink      *platform.Sink
	uploadDir string

	layoutSelect *widget.Select
	aspectSelect *widget.Select
	preview      *PreviewSurface
	panel        *CellPanel
	exportBtns   map[model.ExportFormat]*widget.Button
	exportRow    *TaskRow
	importRow    *TaskRow
	syncing      bool

	// Import tasks waiting to land in a cell
	importTargets map[string]int
	importMutex   sync.Mutex

	// Preview loop
	dirty       atomic.Bool
	previewDone chan struct{}
	closeOnce   sync.Once
	startedAt   time.Time

	// Notification panel
	notificationContainer *fyne.Container
	notificationLabel     *widget.Label
	notificationSpinner   *widget.ProgressBarInfinite

	unsubscribe func()
}

// NewRootUI creates and initializes the editor window
func NewRootUI(window fyne.Window, app fyne.App, settings *config.Settings, services Services) *RootUI {
	localization := NewLocalization()
	localization.SetLanguage(settings.GetLanguage())

	ui := &RootUI{
		window:        window,
		app:           app,
		settings:      settings,
		localization:  localization,
		mobile:        NewMobileUI(app),
		session:       services.Session,
		exporter:      services.Session.Exporter(),
		importer:      services.Importer,
		sink:          services.Sink,
		uploadDir:     services.UploadDir,
		importTargets: make(map[string]int),
		previewDone:   make(chan struct{}),
		startedAt:     time.Now(),
	}

	window.SetTitle(localization.GetText(KeyAppTitle))

	if ui.exporter != nil {
		ui.exporter.SetUpdateCallback(ui.onExportUpdate)
	}
	if ui.importer != nil {
		ui.importer.SetUpdateCallback(ui.onImportUpdate)
	}
	ui.unsubscribe = ui.session.Subscribe(ui.onBoardChange)

	ui.setupUI()
	ui.dirty.Store(true)
	go ui.previewLoop()

	log.Printf("RootUI initialized: exporter=%v importer=%v", ui.exporter != nil, ui.importer != nil)
	return ui
}

// Close stops the preview loop and detaches from the session
func (ui *RootUI) Close() {
	ui.closeOnce.Do(func() {
		close(ui.previewDone)
		if ui.unsubscribe != nil {
			ui.unsubscribe()
		}
	})
}

// setupUI creates and arranges all UI components
func (ui *RootUI) setupUI() {
	ui.createMenu()

	board := ui.session.Board()

	ui.layoutSelect = widget.NewSelect(layoutOptions(), nil)
	ui.layoutSelect.SetSelectedIndex(board.LayoutIndex)
	ui.layoutSelect.OnChanged = func(string) { ui.onLayoutChange(ui.layoutSelect.SelectedIndex()) }

	ui.aspectSelect = widget.NewSelect(aspectOptions(), nil)
	ui.aspectSelect.SetSelectedIndex(board.AspectIndex)
	ui.aspectSelect.OnChanged = func(string) { ui.onAspectChange(ui.aspectSelect.SelectedIndex()) }

	settingsBtn := widget.NewButton(IconSettings, ui.onShowSettings)
	settingsBtn.Importance = widget.LowImportance

	left := container.NewHBox(settingsBtn)
	if logo, err := LoadLogoResource(); err == nil {
		logoImage := canvas.NewImageFromResource(logo)
		logoImage.SetMinSize(fyne.NewSize(32, 32))
		logoImage.FillMode = canvas.ImageFillContain
		left = container.NewHBox(logoImage, settingsBtn)
	}
	pickers := container.NewGridWithColumns(2,
		container.NewBorder(nil, nil, widget.NewLabel(ui.localization.GetText(KeyLayout)), nil, ui.layoutSelect),
		container.NewBorder(nil, nil, widget.NewLabel(ui.localization.GetText(KeyAspect)), nil, ui.aspectSelect),
	)
	topPanel := container.NewBorder(nil, nil, left, nil, pickers)

	// Notification panel under the pickers (hidden by default)
	ui.notificationLabel = widget.NewLabel("")
	ui.notificationLabel.Alignment = fyne.TextAlignLeading
	ui.notificationLabel.Wrapping = fyne.TextWrapWord
	ui.notificationSpinner = widget.NewProgressBarInfinite()
	ui.notificationSpinner.Hide()
	ui.notificationContainer = container.NewBorder(nil, nil, ui.notificationSpinner, nil, ui.notificationLabel)
	ui.notificationContainer.Hide()

	topCombined := container.NewVBox(topPanel, ui.notificationContainer)

	ui.preview = NewPreviewSurface(ui.onPreviewTap, ui.onPreviewDrag, nil)
	ui.preview.SetOnPress(ui.onPreviewTap)
	ui.panel = NewCellPanel(ui.session, ui.localization, ui.mobile, ui.onReplaceFile, ui.onImportURL)
	ui.panel.Sync(board)

	ui.exportBtns = map[model.ExportFormat]*widget.Button{
		model.FormatPNG:   ui.mobile.CreateMobileButton(ui.localization.GetText(KeyExportPNG), func() { ui.onExport(model.FormatPNG) }),
		model.FormatGIF:   ui.mobile.CreateMobileButton(ui.localization.GetText(KeyExportGIF), func() { ui.onExport(model.FormatGIF) }),
		model.FormatVideo: ui.mobile.CreateMobileButton(ui.localization.GetText(KeyExportVideo), func() { ui.onExport(model.FormatVideo) }),
	}
	ui.exportBtns[model.FormatPNG].Importance = widget.HighImportance
	exportBar := container.NewGridWithColumns(3,
		ui.exportBtns[model.FormatPNG],
		ui.exportBtns[model.FormatGIF],
		ui.exportBtns[model.FormatVideo],
	)

	ui.exportRow = NewTaskRow(ui.localization)
	ui.exportRow.SetCallbacks(ui.onStopExport, ui.onRevealFile, ui.onOpenFile)
	ui.importRow = NewTaskRow(ui.localization)
	ui.importRow.SetCallbacks(ui.onStopImport, ui.onRevealFile, ui.onOpenFile)

	bottom := container.NewVBox(exportBar, ui.exportRow, ui.importRow)

	content := container.NewBorder(
		topCombined, // top
		bottom,      // bottom
		nil,         // left
		nil,         // right
		ui.mobile.EditorLayout(ui.preview, ui.panel.Container()),
	)

	ui.window.SetContent(content)
	ui.refreshExportButtons()
	ui.dirty.Store(true)

	log.Printf("UI setup completed successfully")
}

// createMenu creates the application menu
func (ui *RootUI) createMenu() {
	settingsItem := fyne.NewMenuItem(ui.localization.GetText(KeySettings), ui.onShowSettings)
	clearCacheItem := fyne.NewMenuItem(ui.localization.GetText(KeyClearCache), ui.onClearCache)

	languageMenu := fyne.NewMenu(ui.localization.GetText(KeyLanguage))
	for code, name := range ui.localization.GetAvailableLanguages() {
		langCode := code
		langItem := fyne.NewMenuItem(name, func() {
			ui.onLanguageChange(langCode)
		})
		if ui.localization.GetCurrentLanguage() == code {
			langItem.Checked = true
		}
		languageMenu.Items = append(languageMenu.Items, langItem)
	}

	mainMenu := fyne.NewMainMenu(
		fyne.NewMenu(ui.localization.GetText(KeyFile), settingsItem, fyne.NewMenuItemSeparator(), clearCacheItem),
		languageMenu,
	)
	ui.window.SetMainMenu(mainMenu)
}

// onLanguageChange handles language change
func (ui *RootUI) onLanguageChange(langCode string) {
	ui.localization.SetLanguage(langCode)
	ui.settings.SetLanguage(langCode)
	ui.refreshUITexts()
}

// refreshUITexts rebuilds the window with the current language. The
// selected cell survives the rebuild.
func (ui *RootUI) refreshUITexts() {
	selected := ui.panel.Selected()
	ui.window.SetTitle(ui.localization.GetText(KeyAppTitle))
	ui.setupUI()
	ui.panel.Select(selected)
}

// onBoardChange runs on every session edit
func (ui *RootUI) onBoardChange(b model.Board) {
	ui.dirty.Store(true)
	fyne.Do(func() {
		ui.syncing = true
		ui.layoutSelect.SetSelectedIndex(b.LayoutIndex)
		ui.aspectSelect.SetSelectedIndex(b.AspectIndex)
		ui.syncing = false
		ui.panel.Sync(b)
	})
}

func (ui *RootUI) onLayoutChange(index int) {
	if ui.syncing || index < 0 || index == ui.session.Board().LayoutIndex {
		return
	}
	if err := ui.session.SelectLayout(index); err != nil {
		log.Printf("Failed to select layout %d: %v", index, err)
		return
	}
	ui.settings.SetLayoutIndex(index)
	if ui.panel.Selected() >= len(ui.session.Board().Cells) {
		ui.panel.Select(-1)
	}
}

func (ui *RootUI) onAspectChange(index int) {
	if ui.syncing || index < 0 || index == ui.session.Board().AspectIndex {
		return
	}
	if err := ui.session.SelectAspect(index); err != nil {
		log.Printf("Failed to select aspect %d: %v", index, err)
		return
	}
	ui.settings.SetAspectIndex(index)
}

// previewLoop re-renders the preview while it is stale or animated
func (ui *RootUI) previewLoop() {
	ticker := time.NewTicker(PreviewInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ui.previewDone:
			return
		case <-ticker.C:
		}
		if !ui.dirty.Swap(false) && !ui.session.Board().HasAnimated() {
			continue
		}
		frame := ui.session.Preview(time.Since(ui.startedAt), 1)
		if frame == nil {
			continue
		}
		w, h := ui.session.CanvasSize()
		fyne.Do(func() {
			ui.preview.SetFrame(frame, w, h)
		})
	}
}

func (ui *RootUI) onPreviewTap(x, y float64) {
	ui.panel.Select(ui.session.CellAt(x, y))
}

// onPreviewDrag pans the selected cell; offsets live in unscaled media space
func (ui *RootUI) onPreviewDrag(dx, dy float64) {
	i := ui.panel.Selected()
	c, ok := ui.session.Board().Cell(i)
	if !ok || !c.HasMedia() {
		return
	}
	scale := c.Scale()
	if scale <= 0 {
		scale = 1
	}
	ui.session.SetOffset(i, c.OffsetX+dx/scale, c.OffsetY+dy/scale)
}

// onReplaceFile picks a file for cell i
func (ui *RootUI) onReplaceFile(i int) {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			dialog.ShowError(err, ui.window)
			return
		}
		if reader == nil {
			return
		}
		defer reader.Close()

		path, err := ui.localPath(reader)
		if err != nil {
			dialog.ShowError(err, ui.window)
			return
		}
		if err := ui.session.Upload(i, path, reader.URI().MimeType()); err != nil {
			log.Printf("Upload to cell %d failed: %v", i, err)
			if errors.Is(err, media.ErrUnsupported) {
				ui.showNotification(ui.localization.GetText(KeyUnsupportedFile)+": "+filepath.Base(path), false)
				return
			}
			dialog.ShowError(err, ui.window)
			return
		}
		ui.panel.Select(i)
	}, ui.window)
	fd.SetFilter(storage.NewExtensionFileFilter(media.SupportedExtensions()))
	fd.Show()
}

// localPath returns a filesystem path for the picked file. Content URIs
// (Android) are copied into the upload directory first.
func (ui *RootUI) localPath(reader fyne.URIReadCloser) (string, error) {
	uri := reader.URI()
	if uri.Scheme() == "file" {
		return uri.Path(), nil
	}
	if err := platform.CreateDirectoryIfNotExists(ui.uploadDir); err != nil {
		return "", err
	}
	path := platform.UniquePath(filepath.Join(ui.uploadDir, filepath.Base(uri.Name())))
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, reader); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("failed to copy %s: %w", uri.Name(), err)
	}
	logs.LogV("copied %s to %s", uri, path)
	return path, f.Close()
}

// validateURL validates the entered URL
func (ui *RootUI) validateURL(input string) error {
	if strings.TrimSpace(input) == "" {
		return nil
	}

	parsedURL, err := url.Parse(strings.TrimSpace(input))
	if err != nil {
		return err
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("URL must start with http:// or https://")
	}

	return nil
}

// onImportURL asks for a clip URL and fetches it into cell i
func (ui *RootUI) onImportURL(i int) {
	if ui.importer == nil {
		return
	}
	entry := widget.NewEntry()
	entry.SetPlaceHolder(ui.localization.GetText(KeyEnterURL))
	entry.Validator = ui.validateURL

	items := []*widget.FormItem{widget.NewFormItem(IconLink, entry)}
	form := dialog.NewForm(ui.localization.GetText(KeyImportURL), ui.localization.GetText(KeyImportURL), ui.localization.GetText(KeyCancel), items, func(confirmed bool) {
		if confirmed {
			ui.startImport(i, entry.Text)
		}
	}, ui.window)
	form.Resize(fyne.NewSize(ToastWidth*1.5, 0))
	form.Show()
}

func (ui *RootUI) startImport(i int, raw string) {
	urlText := strings.TrimSpace(strings.NewReplacer("\n", "", "\r", "", "\t", " ").Replace(raw))
	if urlText == "" {
		ui.showNotification(ui.localization.GetText(KeyPleaseEnterURL), false)
		return
	}
	if err := ui.validateURL(urlText); err != nil {
		ui.showNotification(ui.localization.GetText(KeyInvalidURL)+": "+err.Error(), false)
		return
	}

	ui.importMutex.Lock()
	defer ui.importMutex.Unlock()
	task, err := ui.importer.Start(urlText)
	if err != nil {
		if strings.Contains(err.Error(), "already in progress") {
			ui.showNotification(ui.localization.GetText(KeyAlreadyInQueue), false)
		} else {
			ui.showNotification(ui.localization.GetText(KeyImportFailed)+": "+err.Error(), false)
		}
		return
	}
	ui.importTargets[task.ID] = i
	ui.showNotification(ui.localization.GetText(KeyImportStarted), true)
}

// onImportUpdate handles updates from the import service
func (ui *RootUI) onImportUpdate(task *model.ImportTask) {
	fyne.Do(func() {
		ui.importRow.UpdateImport(task)
	})

	switch task.Status {
	case model.TaskStatusCompleted:
		ui.importMutex.Lock()
		i, ok := ui.importTargets[task.ID]
		delete(ui.importTargets, task.ID)
		ui.importMutex.Unlock()
		if !ok {
			return
		}
		if err := ui.session.Upload(i, task.OutputPath, ""); err != nil {
			log.Printf("Imported clip %s could not fill cell %d: %v", task.OutputPath, i, err)
			ui.showNotification(ui.localization.GetText(KeyImportFailed)+": "+err.Error(), false)
			return
		}
		ui.showNotification(ui.localization.GetText(KeyImportCompleted)+": "+task.GetDisplayTitle(), false)
	case model.TaskStatusError, model.TaskStatusStopped:
		ui.importMutex.Lock()
		delete(ui.importTargets, task.ID)
		ui.importMutex.Unlock()
		if task.Status == model.TaskStatusError {
			ui.showNotification(ui.localization.GetText(KeyImportFailed)+": "+task.LastError, false)
		} else {
			ui.hideNotification()
		}
	}
}

func (ui *RootUI) onStopImport(taskID string) {
	if err := ui.importer.StopImport(taskID); err != nil {
		log.Printf("Failed to stop import %s: %v", taskID, err)
	}
}

// onExport starts an export off the UI thread
func (ui *RootUI) onExport(format model.ExportFormat) {
	ui.setExportButtonsEnabled(false)
	go func() {
		task, err := ui.session.Export(format)
		fyne.Do(func() {
			ui.refreshExportButtons()
			switch {
			case errors.Is(err, export.ErrExportBusy):
				ui.showNotification(ui.localization.GetText(KeyExportBusy), false)
			case errors.Is(err, export.ErrExportUnavailable):
				ui.showNotification(ui.localization.GetText(KeyExportUnavailable), false)
			case err != nil:
				log.Printf("Export %s failed: %v", format, err)
			case task == nil:
				ui.showNotification(ui.localization.GetText(KeyNothingToExport), false)
			case format.IsAnimated():
				ui.showNotification(ui.localization.GetText(KeyExportStarted), true)
			}
		})
	}()
}

// onExportUpdate handles updates from the export service
func (ui *RootUI) onExportUpdate(task *model.ExportTask) {
	fyne.Do(func() {
		ui.exportRow.UpdateExport(task)
		ui.refreshExportButtons()

		switch task.Status {
		case model.TaskStatusCompleted:
			ui.hideNotification()
			ui.sendCompletionNotification(task)
			if ui.settings.GetAutoRevealOnComplete() && !platform.IsAndroid() {
				ui.onRevealFile(task.OutputPath)
			}
		case model.TaskStatusError:
			ui.hideNotification()
			dialog.ShowError(fmt.Errorf("%s: %s", ui.localization.GetText(KeyExportFailed), task.LastError), ui.window)
		case model.TaskStatusStopped:
			ui.hideNotification()
		}
	})
}

func (ui *RootUI) onStopExport(taskID string) {
	if err := ui.exporter.StopExport(taskID); err != nil {
		log.Printf("Failed to stop export %s: %v", taskID, err)
	}
}

// refreshExportButtons disables the export bar while a recording runs
func (ui *RootUI) refreshExportButtons() {
	ui.setExportButtonsEnabled(ui.exporter != nil && !ui.exporter.Busy())
}

func (ui *RootUI) setExportButtonsEnabled(enabled bool) {
	for _, btn := range ui.exportBtns {
		if enabled {
			btn.Enable()
		} else {
			btn.Disable()
		}
	}
}

// onClearCache drops every cached media object after confirmation
func (ui *RootUI) onClearCache() {
	dialog.ShowConfirm(ui.localization.GetText(KeyClearCache), ui.localization.GetText(KeyClearCacheConfirm), func(confirmed bool) {
		if !confirmed {
			return
		}
		fresh, err := model.NewBoard(ui.settings.GetLayoutIndex(), ui.settings.GetAspectIndex(), ui.settings.GetExportConfig())
		if err != nil {
			dialog.ShowError(err, ui.window)
			return
		}
		if err := ui.session.ResetCaches(fresh); err != nil {
			log.Printf("Cache reset finished with errors: %v", err)
		}
		ui.panel.Select(-1)
		ui.showNotification(ui.localization.GetText(KeyCacheCleared), false)
	}, ui.window)
}

// onShowSettings shows the settings dialog
func (ui *RootUI) onShowSettings() {
	ShowSettingsDialog(ui.window, ui.settings, ui.localization, ui.applySettings)
}

// applySettings pushes saved settings into the running services
func (ui *RootUI) applySettings() {
	if ui.sink != nil {
		ui.sink.Dir = ui.settings.GetOutputDirectory()
	}
	ui.session.SetConfig(ui.settings.GetExportConfig())
	ui.session.SetWidth(float64(ui.settings.GetCanvasWidth()))
	ui.dirty.Store(true)
	if lang := ui.settings.GetLanguage(); lang != ui.localization.GetCurrentLanguage() {
		ui.localization.SetLanguage(lang)
		ui.refreshUITexts()
	}
}

// onRevealFile handles revealing a file in the system file manager
func (ui *RootUI) onRevealFile(filePath string) {
	if filePath == "" {
		return
	}
	if err := platform.OpenFileInManager(filePath); err != nil {
		log.Printf("Error revealing file %s: %v", filePath, err)
		ui.showNotification(ui.localization.GetText(KeyErrorOpeningFile)+": "+err.Error(), false)
	}
}

// onOpenFile handles opening an exported file with the default application
func (ui *RootUI) onOpenFile(filePath, mimeType string) {
	if filePath == "" {
		return
	}
	if err := platform.OpenFileWithDefaultApp(filePath, mimeType); err != nil {
		log.Printf("Error opening file %s: %v", filePath, err)
		ui.showNotification(ui.localization.GetText(KeyErrorOpeningFile)+": "+err.Error(), false)
	}
}

// showNotification displays a message in the notification panel.
// When spinning is true, a spinner is shown to indicate background activity.
func (ui *RootUI) showNotification(message string, spinning bool) {
	fyne.Do(func() {
		if ui.notificationContainer == nil {
			return
		}
		ui.notificationLabel.SetText(message)
		if spinning {
			ui.notificationSpinner.Show()
		} else {
			ui.notificationSpinner.Hide()
		}
		ui.notificationContainer.Show()
		ui.notificationContainer.Refresh()
	})
}

// hideNotification hides the notification panel.
func (ui *RootUI) hideNotification() {
	fyne.Do(func() {
		if ui.notificationContainer == nil {
			return
		}
		ui.notificationSpinner.Hide()
		ui.notificationContainer.Hide()
	})
}

// sendCompletionNotification sends a system notification for a finished export
func (ui *RootUI) sendCompletionNotification(task *model.ExportTask) {
	ui.app.SendNotification(&fyne.Notification{
		Title:   ui.localization.GetText(KeyExportCompleted),
		Content: filepath.Base(task.OutputPath),
	})
	ui.showToastNotification(task)
}

// showToastNotification shows an in-app toast with reveal and open actions
func (ui *RootUI) showToastNotification(task *model.ExportTask) {
	titleLabel := widget.NewLabel(ui.localization.GetText(KeyExportCompleted))
	titleLabel.TextStyle = fyne.TextStyle{Bold: true}

	messageLabel := widget.NewLabel(filepath.Base(task.OutputPath))
	messageLabel.Truncation = fyne.TextTruncateEllipsis

	path, mimeType := task.OutputPath, task.MimeType
	revealBtn := widget.NewButton(ui.localization.GetText(KeyReveal), func() { ui.onRevealFile(path) })
	revealBtn.Importance = widget.HighImportance
	openBtn := widget.NewButton(ui.localization.GetText(KeyOpen), func() { ui.onOpenFile(path, mimeType) })

	var toastPopup *widget.PopUp
	closeBtn := widget.NewButton(IconClose, func() {
		if toastPopup != nil {
			toastPopup.Hide()
		}
	})
	closeBtn.Importance = widget.LowImportance

	header := container.NewBorder(nil, nil, titleLabel, closeBtn)
	actions := container.NewHBox(revealBtn, openBtn)
	if platform.IsAndroid() {
		actions = container.NewHBox(openBtn)
	}
	toastPopup = widget.NewPopUp(container.NewVBox(header, messageLabel, actions), ui.window.Canvas())

	// Top-right corner
	canvasSize := ui.window.Canvas().Size()
	toastSize := fyne.NewSize(ToastWidth, ToastHeight)
	margin := ui.mobile.GetMobilePadding()
	toastPopup.Resize(toastSize)
	toastPopup.Move(fyne.NewPos(canvasSize.Width-toastSize.Width-margin, margin))
	toastPopup.Show()

	time.AfterFunc(ToastAutoHide, func() {
		fyne.Do(toastPopup.Hide)
	})
}
