package ui

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/ytget/story-grid/internal/editor"
	"github.com/ytget/story-grid/internal/model"
)

// filterLabelKeys maps filters to their localization keys
var filterLabelKeys = map[model.FilterKey]string{
	model.FilterBrightness: KeyBrightness,
	model.FilterContrast:   KeyContrast,
	model.FilterSaturate:   KeySaturate,
	model.FilterBlur:       KeyBlur,
	model.FilterGrayscale:  KeyGrayscale,
	model.FilterSepia:      KeySepia,
}

// CellPanel edits the selected cell: media, filters, fit and transform
type CellPanel struct {
	session      *editor.Session
	localization *Localization
	mobile       *MobileUI

	index   int // -1 when nothing is selected
	syncing bool

	titleLabel   *widget.Label
	replaceBtn   *widget.Button
	importBtn    *widget.Button
	clearBtn     *widget.Button
	resetBtn     *widget.Button
	presetSelect *widget.Select
	fitRadio     *widget.RadioGroup
	scaleSlider  *widget.Slider
	offsetX      *widget.Slider
	offsetY      *widget.Slider
	filters      map[model.FilterKey]*widget.Slider

	placeholder *widget.Label
	body        *fyne.Container
	content     *fyne.Container

	onReplace func(index int)
	onImport  func(index int)
}

// NewCellPanel creates the panel; onReplace and onImport open the file and
// URL pickers for a cell
func NewCellPanel(session *editor.Session, localization *Localization, mobile *MobileUI, onReplace, onImport func(index int)) *CellPanel {
	cp := &CellPanel{
		session:      session,
		localization: localization,
		mobile:       mobile,
		index:        -1,
		filters:      make(map[model.FilterKey]*widget.Slider),
		onReplace:    onReplace,
		onImport:     onImport,
	}
	cp.createUI()
	return cp
}

// Container returns the panel's root object
func (cp *CellPanel) Container() fyne.CanvasObject {
	return cp.content
}

// Selected returns the selected cell index, or -1
func (cp *CellPanel) Selected() int {
	return cp.index
}

// Select switches the panel to cell i
func (cp *CellPanel) Select(i int) {
	cp.index = i
	cp.Sync(cp.session.Board())
}

// createUI creates the panel widgets
func (cp *CellPanel) createUI() {
	l := cp.localization

	cp.titleLabel = widget.NewLabel("")
	cp.titleLabel.TextStyle = fyne.TextStyle{Bold: true}
	cp.titleLabel.Truncation = fyne.TextTruncateEllipsis

	cp.replaceBtn = cp.mobile.CreateMobileButton(IconFile+" "+l.GetText(KeyReplace), func() {
		if cp.onReplace != nil && cp.index >= 0 {
			cp.onReplace(cp.index)
		}
	})
	cp.importBtn = cp.mobile.CreateMobileButton(IconLink+" "+l.GetText(KeyImportURL), func() {
		if cp.onImport != nil && cp.index >= 0 {
			cp.onImport(cp.index)
		}
	})
	cp.clearBtn = widget.NewButton(IconClear+" "+l.GetText(KeyClear), func() {
		if cp.index >= 0 {
			cp.session.ClearCell(cp.index)
		}
	})
	cp.resetBtn = widget.NewButton(IconReset+" "+l.GetText(KeyReset), func() {
		if cp.index >= 0 {
			cp.session.ResetCell(cp.index)
		}
	})

	cp.presetSelect = widget.NewSelect(presetOptions(), func(name string) {
		if cp.syncing || cp.index < 0 {
			return
		}
		if err := cp.session.ApplyPreset(cp.index, name); err != nil {
			fyne.LogError("apply preset", err)
		}
	})
	cp.presetSelect.PlaceHolder = l.GetText(KeyPreset)

	cp.fitRadio = widget.NewRadioGroup([]string{l.GetText(KeyFitCover), l.GetText(KeyFitContain)}, func(choice string) {
		if cp.syncing || cp.index < 0 {
			return
		}
		fit := model.FitCover
		if choice == l.GetText(KeyFitContain) {
			fit = model.FitContain
		}
		cp.session.SetFit(cp.index, fit)
	})
	cp.fitRadio.Horizontal = true

	cp.scaleSlider = widget.NewSlider(model.MinScalePercent, model.MaxScalePercent)
	cp.scaleSlider.OnChanged = func(v float64) {
		if !cp.syncing && cp.index >= 0 {
			cp.session.SetScale(cp.index, v)
		}
	}
	cp.offsetX = cp.offsetSlider(func(c model.CellState, v float64) (float64, float64) { return v, c.OffsetY })
	cp.offsetY = cp.offsetSlider(func(c model.CellState, v float64) (float64, float64) { return c.OffsetX, v })

	filterRows := container.NewVBox()
	for _, key := range model.FilterKeys {
		r := model.FilterRanges[key]
		slider := widget.NewSlider(r.Min, r.Max)
		slider.Step = r.Step
		key := key
		slider.OnChanged = func(v float64) {
			if !cp.syncing && cp.index >= 0 {
				cp.session.UpdateFilter(cp.index, key, v)
			}
		}
		cp.filters[key] = slider
		filterRows.Add(widget.NewLabel(l.GetText(filterLabelKeys[key])))
		filterRows.Add(slider)
	}

	cp.body = container.NewVBox(
		container.NewGridWithColumns(2, cp.replaceBtn, cp.importBtn),
		container.NewGridWithColumns(2, cp.resetBtn, cp.clearBtn),
		widget.NewSeparator(),
		widget.NewLabel(l.GetText(KeyFit)),
		cp.fitRadio,
		widget.NewLabel(l.GetText(KeyScale)),
		cp.scaleSlider,
		widget.NewLabel(l.GetText(KeyOffsetX)),
		cp.offsetX,
		widget.NewLabel(l.GetText(KeyOffsetY)),
		cp.offsetY,
		widget.NewSeparator(),
		cp.presetSelect,
		filterRows,
	)

	cp.placeholder = widget.NewLabel(l.GetText(KeyNoCellSelected))
	cp.placeholder.Wrapping = fyne.TextWrapWord

	cp.content = container.NewVBox(cp.titleLabel, cp.placeholder, cp.body)
	cp.body.Hide()
}

// offsetSlider builds an offset slider; xy maps the new value onto the
// cell's full offset
func (cp *CellPanel) offsetSlider(xy func(c model.CellState, v float64) (float64, float64)) *widget.Slider {
	s := widget.NewSlider(-MaxOffset, MaxOffset)
	s.Step = OffsetStep
	s.OnChanged = func(v float64) {
		if cp.syncing || cp.index < 0 {
			return
		}
		c, ok := cp.session.Board().Cell(cp.index)
		if !ok {
			return
		}
		x, y := xy(c, v)
		cp.session.SetOffset(cp.index, x, y)
	}
	return s
}

// Sync loads the selected cell of b into the widgets without echoing
// the changes back to the session
func (cp *CellPanel) Sync(b model.Board) {
	c, ok := b.Cell(cp.index)
	if !ok {
		cp.index = -1
		cp.titleLabel.SetText("")
		cp.placeholder.Show()
		cp.body.Hide()
		return
	}

	cp.syncing = true
	defer func() { cp.syncing = false }()

	title := fmt.Sprintf(CellLabelFormat, cp.index+1)
	if c.HasMedia() {
		title += MiddleDotSeparator + c.MediaName
	} else {
		title += MiddleDotSeparator + cp.localization.GetText(KeyEmptyCell)
	}
	cp.titleLabel.SetText(title)
	cp.placeholder.Hide()
	cp.body.Show()

	if c.Fit == model.FitContain {
		cp.fitRadio.SetSelected(cp.localization.GetText(KeyFitContain))
	} else {
		cp.fitRadio.SetSelected(cp.localization.GetText(KeyFitCover))
	}
	cp.scaleSlider.SetValue(c.ScalePercent)
	cp.offsetX.SetValue(c.OffsetX)
	cp.offsetY.SetValue(c.OffsetY)
	for _, key := range model.FilterKeys {
		cp.filters[key].SetValue(c.Filters.Get(key))
	}
	cp.presetSelect.ClearSelected()

	if c.HasMedia() {
		cp.clearBtn.Enable()
		cp.resetBtn.Enable()
	} else {
		cp.clearBtn.Disable()
		cp.resetBtn.Disable()
	}
}
