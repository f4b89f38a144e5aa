package model

import "math"

// MediaKind classifies the resource bound to a cell
type MediaKind string

const (
	MediaImage MediaKind = "image"
	MediaVideo MediaKind = "video"
	MediaGIF   MediaKind = "gif"
)

// IsAnimated returns true for kinds that carry a duration
func (k MediaKind) IsAnimated() bool {
	return k == MediaVideo || k == MediaGIF
}

// FitMode mirrors CSS object-fit for the live view
type FitMode string

const (
	FitCover   FitMode = "cover"
	FitContain FitMode = "contain"
)

// FilterKey names one of the six per-cell filters
type FilterKey string

const (
	FilterBrightness FilterKey = "brightness"
	FilterContrast   FilterKey = "contrast"
	FilterSaturate   FilterKey = "saturate"
	FilterBlur       FilterKey = "blur"
	FilterGrayscale  FilterKey = "grayscale"
	FilterSepia      FilterKey = "sepia"
)

// FilterKeys lists the filters in the order they are applied.
var FilterKeys = []FilterKey{
	FilterBrightness, FilterContrast, FilterSaturate, FilterBlur, FilterGrayscale, FilterSepia,
}

// FilterRange is the inclusive slider range and step of a filter.
type FilterRange struct {
	Min, Max, Step float64
}

// FilterRanges bounds every filter value.
var FilterRanges = map[FilterKey]FilterRange{
	FilterBrightness: {0, 200, 1},
	FilterContrast:   {0, 200, 1},
	FilterSaturate:   {0, 200, 1},
	FilterBlur:       {0, 10, 0.5},
	FilterGrayscale:  {0, 100, 1},
	FilterSepia:      {0, 100, 1},
}

// FilterParams holds CSS-style filter amounts: percentages except Blur (px).
type FilterParams struct {
	Brightness float64 `json:"brightness"`
	Contrast   float64 `json:"contrast"`
	Saturate   float64 `json:"saturate"`
	Blur       float64 `json:"blur"`
	Grayscale  float64 `json:"grayscale"`
	Sepia      float64 `json:"sepia"`
}

// DefaultFilters is the identity filter set.
var DefaultFilters = FilterParams{Brightness: 100, Contrast: 100, Saturate: 100}

// IsIdentity reports whether applying the filters would change nothing.
func (f FilterParams) IsIdentity() bool {
	return f == DefaultFilters
}

// Get returns a filter value by key.
func (f FilterParams) Get(key FilterKey) float64 {
	switch key {
	case FilterBrightness:
		return f.Brightness
	case FilterContrast:
		return f.Contrast
	case FilterSaturate:
		return f.Saturate
	case FilterBlur:
		return f.Blur
	case FilterGrayscale:
		return f.Grayscale
	case FilterSepia:
		return f.Sepia
	}
	return 0
}

// With returns a copy with one filter set, clamped to its range.
func (f FilterParams) With(key FilterKey, value float64) FilterParams {
	r, ok := FilterRanges[key]
	if !ok {
		return f
	}
	value = clamp(value, r.Min, r.Max)
	switch key {
	case FilterBrightness:
		f.Brightness = value
	case FilterContrast:
		f.Contrast = value
	case FilterSaturate:
		f.Saturate = value
	case FilterBlur:
		f.Blur = value
	case FilterGrayscale:
		f.Grayscale = value
	case FilterSepia:
		f.Sepia = value
	}
	return f
}

// Preset is a named filter combination.
type Preset struct {
	Name    string
	Filters FilterParams
}

// Presets are the quick styles offered for every cell.
var Presets = []Preset{
	{"Original", FilterParams{100, 100, 100, 0, 0, 0}},
	{"Warm", FilterParams{105, 105, 130, 0, 0, 20}},
	{"Cool", FilterParams{100, 110, 80, 0, 0, 0}},
	{"Vintage", FilterParams{95, 90, 70, 0, 0, 50}},
	{"B&W", FilterParams{110, 120, 0, 0, 100, 0}},
	{"High contrast", FilterParams{110, 150, 120, 0, 0, 0}},
	{"Soft focus", FilterParams{105, 95, 90, 1, 0, 0}},
	{"Dramatic", FilterParams{90, 140, 110, 0, 0, 10}},
}

// PresetByName finds a preset; the bool is false for unknown names.
func PresetByName(name string) (Preset, bool) {
	for _, p := range Presets {
		if p.Name == name {
			return p, true
		}
	}
	return Preset{}, false
}

// Scale bounds in percent
const (
	MinScalePercent     = 50
	MaxScalePercent     = 200
	DefaultScalePercent = 100
)

// CellState is the per-slot state. MediaRef is the owning handle ID issued by
// the media registry; an empty MediaRef means the cell is empty and every
// other visual attribute is inert.
type CellState struct {
	ID              int          `json:"id"`
	MediaRef        string       `json:"media_ref,omitempty"`
	MediaName       string       `json:"media_name,omitempty"`
	MediaKind       MediaKind    `json:"media_kind"`
	DurationSeconds float64      `json:"duration_seconds"`
	Filters         FilterParams `json:"filters"`
	Fit             FitMode      `json:"fit"`
	ScalePercent    float64      `json:"scale_percent"`
	OffsetX         float64      `json:"offset_x"`
	OffsetY         float64      `json:"offset_y"`
}

// NewCell returns an empty cell with default visual settings.
func NewCell(id int) CellState {
	return CellState{
		ID:           id,
		MediaKind:    MediaImage,
		Filters:      DefaultFilters,
		Fit:          FitCover,
		ScalePercent: DefaultScalePercent,
	}
}

// HasMedia reports whether a resource is bound to the cell.
func (c CellState) HasMedia() bool {
	return c.MediaRef != ""
}

// IsAnimated reports whether the cell contributes to the export duration.
func (c CellState) IsAnimated() bool {
	return c.HasMedia() && c.MediaKind.IsAnimated()
}

// Scale returns the zoom factor (1.0 == 100%).
func (c CellState) Scale() float64 {
	if c.ScalePercent <= 0 {
		return 1
	}
	return c.ScalePercent / 100
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
