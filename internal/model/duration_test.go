package model

import (
	"math"
	"testing"
)

func animatedCell(kind MediaKind, seconds float64) CellState {
	c := NewCell(0)
	c.MediaRef = "media-x"
	c.MediaKind = kind
	c.DurationSeconds = seconds
	return c
}

func TestAggregateDuration(t *testing.T) {
	still := NewCell(0)
	still.MediaRef = "media-still"

	tests := []struct {
		name  string
		cells []CellState
		cap   float64
		want  float64
	}{
		{"empty board", nil, GIFMaxSeconds, DefaultExportSeconds},
		{"stills only", []CellState{still, NewCell(1)}, GIFMaxSeconds, DefaultExportSeconds},
		{"single video", []CellState{still, animatedCell(MediaVideo, 8)}, GIFMaxSeconds, 8},
		{"capped for gif", []CellState{animatedCell(MediaVideo, 20), animatedCell(MediaGIF, 5)}, GIFMaxSeconds, 15},
		{"capped for video", []CellState{animatedCell(MediaVideo, 45)}, VideoMaxSeconds, 30},
		{"under video cap", []CellState{animatedCell(MediaVideo, 20)}, VideoMaxSeconds, 20},
		{"gif placeholder", []CellState{animatedCell(MediaGIF, GIFPlaceholderSeconds)}, GIFMaxSeconds, 6},
		{"zero duration falls back", []CellState{animatedCell(MediaVideo, 0)}, GIFMaxSeconds, DefaultExportSeconds},
		{"infinite is indeterminate", []CellState{animatedCell(MediaVideo, math.Inf(1))}, VideoMaxSeconds, IndeterminateSeconds},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AggregateDuration(tt.cells, tt.cap); got != tt.want {
				t.Errorf("AggregateDuration() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAggregateDurationIgnoresEmptyAnimatedKind(t *testing.T) {
	c := NewCell(0)
	c.MediaKind = MediaVideo
	c.DurationSeconds = 12
	if got := AggregateDuration([]CellState{c}, GIFMaxSeconds); got != DefaultExportSeconds {
		t.Errorf("empty cell counted as animated: %v", got)
	}
}

func TestFrameCount(t *testing.T) {
	tests := []struct {
		seconds, fps float64
		want         int
	}{
		{3, 10, 30},
		{8.04, 10, 80},
		{8.06, 10, 81},
		{0, 10, 1},
	}
	for _, tt := range tests {
		if got := FrameCount(tt.seconds, tt.fps); got != tt.want {
			t.Errorf("FrameCount(%v, %v) = %d, want %d", tt.seconds, tt.fps, got, tt.want)
		}
	}
}

func TestPlaceholderDuration(t *testing.T) {
	if PlaceholderDuration(MediaVideo) != 5 || PlaceholderDuration(MediaGIF) != 6 || PlaceholderDuration(MediaImage) != 0 {
		t.Error("unexpected placeholder durations")
	}
}
