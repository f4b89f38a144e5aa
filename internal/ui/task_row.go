package ui

import (
	"fmt"
	"image/color"
	"path/filepath"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/ytget/story-grid/internal/model"
)

// Progress calculation constants
const (
	MaxProgressPercent = 100
)

// rowState is what a task row shows, shared by export and import tasks
type rowState struct {
	ID         string
	Title      string
	Detail     string
	Status     model.TaskStatus
	Percent    int
	OutputPath string
	MimeType   string
}

// exportRowState describes an export task
func exportRowState(task *model.ExportTask) rowState {
	detail := string(task.Format)
	if task.Format.IsAnimated() {
		detail = fmt.Sprintf("%s%s%.1fs%s%d frames", task.Format, MiddleDotSeparator, task.DurationSeconds, MiddleDotSeparator, task.Frames)
	}
	return rowState{
		ID:         task.ID,
		Title:      outputTitle(task.OutputPath, string(task.Format)),
		Detail:     detail,
		Status:     task.Status,
		Percent:    task.Percent,
		OutputPath: task.OutputPath,
		MimeType:   task.MimeType,
	}
}

// importRowState describes an import task
func importRowState(task *model.ImportTask) rowState {
	return rowState{
		ID:         task.ID,
		Title:      task.GetDisplayTitle(),
		Detail:     "ETA " + task.GetETAString(),
		Status:     task.Status,
		Percent:    task.Percent,
		OutputPath: task.OutputPath,
	}
}

func outputTitle(path, fallback string) string {
	if path == "" {
		return fallback
	}
	return filepath.Base(path)
}

// TaskRow represents a compact task row widget
type TaskRow struct {
	widget.BaseWidget

	state        rowState
	localization *Localization

	// UI components
	titleLabel    *widget.Label
	statusLabel   *widget.Label
	progressLabel *widget.Label
	detailLabel   *widget.Label
	progressBar   *widget.ProgressBar

	// Action buttons
	stopBtn   *widget.Button
	revealBtn *widget.Button // reveal in file manager
	openBtn   *widget.Button // open file with default app

	// Callbacks
	onStop   func(taskID string)
	onReveal func(filePath string)
	onOpen   func(filePath, mimeType string)
}

// NewTaskRow creates a new, hidden task row widget
func NewTaskRow(localization *Localization) *TaskRow {
	tr := &TaskRow{localization: localization}
	tr.ExtendBaseWidget(tr)
	tr.createUI()
	tr.Hide()
	return tr
}

// SetCallbacks sets the action callbacks
func (tr *TaskRow) SetCallbacks(onStop func(taskID string), onReveal func(filePath string), onOpen func(filePath, mimeType string)) {
	tr.onStop = onStop
	tr.onReveal = onReveal
	tr.onOpen = onOpen
}

// UpdateExport shows an export task
func (tr *TaskRow) UpdateExport(task *model.ExportTask) {
	if task == nil {
		return
	}
	tr.update(exportRowState(task))
}

// UpdateImport shows an import task
func (tr *TaskRow) UpdateImport(task *model.ImportTask) {
	if task == nil {
		return
	}
	tr.update(importRowState(task))
}

func (tr *TaskRow) update(state rowState) {
	tr.state = state
	tr.updateFromState()
	tr.Show()
	tr.Refresh()
}

// createUI creates the UI components
func (tr *TaskRow) createUI() {
	tr.titleLabel = widget.NewLabel("")
	tr.titleLabel.TextStyle = fyne.TextStyle{Bold: true}
	tr.titleLabel.Truncation = fyne.TextTruncateEllipsis

	tr.statusLabel = widget.NewLabel("")
	tr.statusLabel.Alignment = fyne.TextAlignTrailing
	tr.progressLabel = widget.NewLabel("")
	tr.progressLabel.Alignment = fyne.TextAlignTrailing
	tr.detailLabel = widget.NewLabel("")
	tr.detailLabel.TextStyle = fyne.TextStyle{Monospace: true}
	tr.progressBar = widget.NewProgressBar()

	tr.stopBtn = widget.NewButton(IconStop+" "+tr.localization.GetText(KeyStop), func() {
		if tr.onStop != nil {
			tr.onStop(tr.state.ID)
		}
	})
	tr.stopBtn.Importance = widget.DangerImportance

	tr.revealBtn = widget.NewButton(IconFolder, func() {
		if tr.onReveal != nil && tr.state.OutputPath != "" {
			tr.onReveal(tr.state.OutputPath)
		}
	})
	tr.openBtn = widget.NewButton(IconFile, func() {
		if tr.onOpen != nil && tr.state.OutputPath != "" {
			tr.onOpen(tr.state.OutputPath, tr.state.MimeType)
		}
	})
}

// updateFromState refreshes the labels and buttons from the current state
func (tr *TaskRow) updateFromState() {
	s := tr.state
	tr.titleLabel.SetText(s.Title)
	tr.statusLabel.SetText(s.Status.String())
	tr.detailLabel.SetText(s.Detail)

	percent := s.Percent
	if s.Status == model.TaskStatusCompleted {
		percent = MaxProgressPercent
	}
	if percent < 0 {
		percent = 0
	}
	if percent > MaxProgressPercent {
		percent = MaxProgressPercent
	}
	tr.progressLabel.SetText(fmt.Sprintf(ProgressLabelFormat, percent))
	tr.progressBar.SetValue(float64(percent) / MaxProgressPercent)

	if s.Status.CanStop() {
		tr.stopBtn.Show()
	} else {
		tr.stopBtn.Hide()
	}
	if s.Status == model.TaskStatusCompleted && s.OutputPath != "" {
		tr.revealBtn.Show()
		tr.openBtn.Show()
	} else {
		tr.revealBtn.Hide()
		tr.openBtn.Hide()
	}
}

// CreateRenderer creates the widget renderer
func (tr *TaskRow) CreateRenderer() fyne.WidgetRenderer {
	return &taskRowRenderer{taskRow: tr}
}

// taskRowRenderer renders the task row widget
type taskRowRenderer struct {
	taskRow *TaskRow
	layout  *fyne.Container
}

// Layout arranges the components
func (r *taskRowRenderer) Layout(size fyne.Size) {
	if r.layout == nil {
		r.createLayout()
	}
	if size.Width < RowMinWidth {
		size.Width = RowMinWidth
	}
	if size.Height < RowMinHeight {
		size.Height = RowMinHeight
	}
	r.layout.Resize(size)
}

// MinSize returns the minimum size
func (r *taskRowRenderer) MinSize() fyne.Size {
	if r.layout != nil {
		return r.layout.MinSize()
	}
	return fyne.NewSize(RowMinWidth, RowMinHeight)
}

// Refresh refreshes the renderer
func (r *taskRowRenderer) Refresh() {
	if r.layout == nil {
		r.createLayout()
	}
	r.layout.Refresh()
}

// Objects returns the container objects
func (r *taskRowRenderer) Objects() []fyne.CanvasObject {
	if r.layout == nil {
		r.createLayout()
	}
	return []fyne.CanvasObject{r.layout}
}

// Destroy cleans up the renderer
func (r *taskRowRenderer) Destroy() {}

// createLayout creates the main layout
func (r *taskRowRenderer) createLayout() {
	tr := r.taskRow

	// Helper to fix width using a transparent rectangle underneath
	fixedWidth := func(w float32, obj fyne.CanvasObject) fyne.CanvasObject {
		spacer := canvas.NewRectangle(color.RGBA{0, 0, 0, 0})
		spacer.SetMinSize(fyne.NewSize(w, obj.MinSize().Height))
		return container.NewStack(spacer, obj)
	}

	info := container.NewHBox(
		fixedWidth(StatusLabelWidth, tr.statusLabel),
		fixedWidth(PercentLabelWidth, tr.progressLabel),
	)
	actions := container.NewHBox(tr.stopBtn, tr.revealBtn, tr.openBtn)
	rightCluster := container.NewBorder(nil, nil, nil, actions, info)

	header := container.NewBorder(nil, nil, nil, rightCluster, tr.titleLabel)
	r.layout = container.NewVBox(header, tr.detailLabel, tr.progressBar, widget.NewSeparator())
	r.layout.Resize(fyne.NewSize(RowMinWidth, RowDefaultH))
}
