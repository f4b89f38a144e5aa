package model

import (
	"testing"
	"time"
)

func TestImportTask_GetETAString(t *testing.T) {
	tests := []struct {
		etaSec   int
		expected string
	}{
		{-1, "—"},
		{0, "—"},
		{30, "00:30"},
		{90, "01:30"},
		{3600, "01:00:00"},
		{3661, "01:01:01"},
	}

	for _, test := range tests {
		task := &ImportTask{ETASec: test.etaSec}
		if got := task.GetETAString(); got != test.expected {
			t.Errorf("GetETAString() with ETASec=%d = %s, expected %s", test.etaSec, got, test.expected)
		}
	}
}

func TestImportTask_GetDisplayTitle(t *testing.T) {
	tests := []struct {
		title    string
		output   string
		url      string
		expected string
	}{
		{"Clip", "", "https://example.com/v/1", "Clip"},
		{"", "/cache/beach_sunset.mp4", "https://example.com/v/1", "beach_sunset"},
		{"https://example.com/v/1", "", "https://example.com/v/1", "https://example.com/v/1"},
		{"", "", "https://example.com/v/2", "https://example.com/v/2"},
	}

	for _, test := range tests {
		task := &ImportTask{Title: test.title, OutputPath: test.output, URL: test.url}
		if got := task.GetDisplayTitle(); got != test.expected {
			t.Errorf("GetDisplayTitle(%q, %q) = %q, expected %q", test.title, test.output, got, test.expected)
		}
	}
}

func TestParseExportFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    ExportFormat
		wantErr bool
	}{
		{"png", FormatPNG, false},
		{"GIF", FormatGIF, false},
		{"webm", FormatVideo, false},
		{" mp4 ", FormatVideo, false},
		{"video", FormatVideo, false},
		{"tiff", "", true},
	}
	for _, test := range tests {
		got, err := ParseExportFormat(test.in)
		if (err != nil) != test.wantErr {
			t.Errorf("ParseExportFormat(%q) error = %v, wantErr %v", test.in, err, test.wantErr)
			continue
		}
		if got != test.want {
			t.Errorf("ParseExportFormat(%q) = %q, want %q", test.in, got, test.want)
		}
	}
}

func TestExportTask_Elapsed(t *testing.T) {
	task := &ExportTask{}
	if task.Elapsed() != 0 {
		t.Errorf("Elapsed() on unstarted task = %v, want 0", task.Elapsed())
	}
	start := time.Now()
	task.StartedAt = start
	task.FinishedAt = start.Add(1500 * time.Millisecond)
	if got := task.Elapsed(); got != 1500*time.Millisecond {
		t.Errorf("Elapsed() = %v, want 1.5s", got)
	}
}
