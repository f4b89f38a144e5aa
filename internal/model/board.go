package model

import (
	"fmt"
	"regexp"
	"strings"
)

// Export config bounds
const (
	MaxGap          = 20
	MaxBorderRadius = 30
	DefaultGap      = 4
	DefaultRadius   = 0
	DefaultBgColor  = "#000000"
)

var hexColorRe = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// ValidHexColor reports whether s is a #RRGGBB colour.
func ValidHexColor(s string) bool {
	return hexColorRe.MatchString(s)
}

// ExportConfig holds grid-wide appearance, independent of cells
type ExportConfig struct {
	Gap          float64 `json:"gap"`
	BorderRadius float64 `json:"border_radius"`
	Background   string  `json:"background"`
}

// DefaultExportConfig returns the initial grid appearance.
func DefaultExportConfig() ExportConfig {
	return ExportConfig{Gap: DefaultGap, BorderRadius: DefaultRadius, Background: DefaultBgColor}
}

// Normalized clamps gap and radius and replaces an invalid colour with black.
func (c ExportConfig) Normalized() ExportConfig {
	c.Gap = clamp(c.Gap, 0, MaxGap)
	c.BorderRadius = clamp(c.BorderRadius, 0, MaxBorderRadius)
	c.Background = strings.TrimSpace(c.Background)
	if !ValidHexColor(c.Background) {
		c.Background = DefaultBgColor
	}
	return c
}

// Board is an immutable snapshot of the editor state. Every update method
// has a value receiver, copies the cell slice and returns the new snapshot,
// so a snapshot handed to an export is never changed underneath it.
type Board struct {
	LayoutIndex int
	AspectIndex int
	Cells       []CellState
	Config      ExportConfig
}

// NewBoard creates a board with empty cells for the given layout.
func NewBoard(layoutIndex, aspectIndex int, cfg ExportConfig) (Board, error) {
	layout, err := LayoutByIndex(layoutIndex)
	if err != nil {
		return Board{}, err
	}
	b := Board{
		LayoutIndex: layoutIndex,
		AspectIndex: aspectIndex,
		Config:      cfg.Normalized(),
		Cells:       make([]CellState, len(layout.Cells)),
	}
	if aspectIndex < 0 || aspectIndex >= len(AspectRatios) {
		b.AspectIndex = 0
	}
	for i := range b.Cells {
		b.Cells[i] = NewCell(i)
	}
	return b, nil
}

// Layout returns the board's grid template.
func (b Board) Layout() GridLayout {
	l, err := LayoutByIndex(b.LayoutIndex)
	if err != nil {
		return Layouts[DefaultLayoutIndex]
	}
	return l
}

// Aspect returns the board's canvas aspect ratio.
func (b Board) Aspect() AspectRatio {
	return AspectByIndex(b.AspectIndex)
}

// Cell returns the cell at index i.
func (b Board) Cell(i int) (CellState, bool) {
	if i < 0 || i >= len(b.Cells) {
		return CellState{}, false
	}
	return b.Cells[i], true
}

// MediaRefs lists every handle held by the board, in slot order.
func (b Board) MediaRefs() []string {
	var refs []string
	for _, c := range b.Cells {
		if c.HasMedia() {
			refs = append(refs, c.MediaRef)
		}
	}
	return refs
}

// HasAnimated reports whether any cell holds video or GIF media.
func (b Board) HasAnimated() bool {
	for _, c := range b.Cells {
		if c.IsAnimated() {
			return true
		}
	}
	return false
}

func (b Board) clone() Board {
	cells := make([]CellState, len(b.Cells))
	copy(cells, b.Cells)
	b.Cells = cells
	return b
}

// WithLayout switches template. Cells carry over by position; the media refs
// of cells beyond the new cell count are returned so the caller can release
// them.
func (b Board) WithLayout(index int) (Board, []string, error) {
	layout, err := LayoutByIndex(index)
	if err != nil {
		return b, nil, err
	}
	next := b
	next.LayoutIndex = index
	next.Cells = make([]CellState, len(layout.Cells))
	for i := range next.Cells {
		if i < len(b.Cells) {
			next.Cells[i] = b.Cells[i]
			next.Cells[i].ID = i
			continue
		}
		next.Cells[i] = NewCell(i)
	}
	var evicted []string
	for i := len(next.Cells); i < len(b.Cells); i++ {
		if b.Cells[i].HasMedia() {
			evicted = append(evicted, b.Cells[i].MediaRef)
		}
	}
	return next, evicted, nil
}

// WithAspect changes the canvas aspect ratio.
func (b Board) WithAspect(index int) (Board, error) {
	if index < 0 || index >= len(AspectRatios) {
		return b, fmt.Errorf("aspect index out of range: %d", index)
	}
	b.AspectIndex = index
	return b, nil
}

// WithConfig replaces the grid-wide appearance.
func (b Board) WithConfig(cfg ExportConfig) Board {
	b.Config = cfg.Normalized()
	return b
}

func (b Board) update(i int, fn func(c *CellState)) Board {
	if i < 0 || i >= len(b.Cells) {
		return b
	}
	next := b.clone()
	fn(&next.Cells[i])
	return next
}

// SetCellMedia binds a resource to a cell, keeping its filters and transform.
// It returns the ref the cell held before, if any.
func (b Board) SetCellMedia(i int, ref, name string, kind MediaKind, durationSeconds float64) (Board, string) {
	old, ok := b.Cell(i)
	if !ok {
		return b, ""
	}
	next := b.update(i, func(c *CellState) {
		c.MediaRef = ref
		c.MediaName = name
		c.MediaKind = kind
		c.DurationSeconds = durationSeconds
	})
	return next, old.MediaRef
}

// SetDuration patches a cell's duration only if it still holds ref; a late
// metadata result for replaced media is dropped.
func (b Board) SetDuration(i int, ref string, seconds float64) (Board, bool) {
	c, ok := b.Cell(i)
	if !ok || c.MediaRef == "" || c.MediaRef != ref {
		return b, false
	}
	return b.update(i, func(c *CellState) { c.DurationSeconds = seconds }), true
}

// UpdateFilter sets one filter of a cell, clamped to its range.
func (b Board) UpdateFilter(i int, key FilterKey, value float64) Board {
	return b.update(i, func(c *CellState) { c.Filters = c.Filters.With(key, value) })
}

// ApplyPreset replaces a cell's filters with a preset.
func (b Board) ApplyPreset(i int, p Preset) Board {
	return b.update(i, func(c *CellState) { c.Filters = p.Filters })
}

// SetFit changes the live-view fit mode of a cell.
func (b Board) SetFit(i int, fit FitMode) Board {
	if fit != FitCover && fit != FitContain {
		return b
	}
	return b.update(i, func(c *CellState) { c.Fit = fit })
}

// SetScale sets a cell's zoom, clamped to 50..200 percent.
func (b Board) SetScale(i int, percent float64) Board {
	return b.update(i, func(c *CellState) {
		c.ScalePercent = clamp(percent, MinScalePercent, MaxScalePercent)
	})
}

// SetOffset sets a cell's translation in logical pixels.
func (b Board) SetOffset(i int, x, y float64) Board {
	return b.update(i, func(c *CellState) {
		c.OffsetX = x
		c.OffsetY = y
	})
}

// ResetCell restores default filters, scale and offset. Media and fit are kept.
func (b Board) ResetCell(i int) Board {
	return b.update(i, func(c *CellState) {
		c.Filters = DefaultFilters
		c.ScalePercent = DefaultScalePercent
		c.OffsetX = 0
		c.OffsetY = 0
	})
}

// ClearCell unbinds a cell's media and returns the released ref.
func (b Board) ClearCell(i int) (Board, string) {
	old, ok := b.Cell(i)
	if !ok {
		return b, ""
	}
	return b.update(i, func(c *CellState) {
		*c = NewCell(i)
	}), old.MediaRef
}
