package ui

import (
	"fyne.io/fyne/v2"

	"github.com/ytget/story-grid/internal/model"
)

const (
	AppIcon = "story-grid.png"
)

// LoadLogoResource loads the logo from file path
func LoadLogoResource() (fyne.Resource, error) {
	return fyne.LoadResourceFromPath(AppIcon)
}

// layoutOptions returns the select labels for the layout catalog
func layoutOptions() []string {
	options := make([]string, len(model.Layouts))
	for i, l := range model.Layouts {
		options[i] = l.Icon + "  " + l.Name
	}
	return options
}

// aspectOptions returns the select labels for the aspect ratios
func aspectOptions() []string {
	options := make([]string, len(model.AspectRatios))
	for i, a := range model.AspectRatios {
		options[i] = a.Name + "  " + a.Label
	}
	return options
}

// presetOptions returns the filter preset names
func presetOptions() []string {
	options := make([]string, len(model.Presets))
	for i, p := range model.Presets {
		options[i] = p.Name
	}
	return options
}
