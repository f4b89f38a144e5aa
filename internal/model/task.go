package model

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// ExportFormat selects an export orchestrator
type ExportFormat string

const (
	FormatPNG   ExportFormat = "png"
	FormatGIF   ExportFormat = "gif"
	FormatVideo ExportFormat = "video"
)

// IsAnimated reports whether the format records over time.
func (f ExportFormat) IsAnimated() bool {
	return f == FormatGIF || f == FormatVideo
}

// ParseExportFormat accepts png, gif, video, webm and mp4.
func ParseExportFormat(s string) (ExportFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "png":
		return FormatPNG, nil
	case "gif":
		return FormatGIF, nil
	case "video", "webm", "mp4":
		return FormatVideo, nil
	}
	return "", fmt.Errorf("unknown export format %q", s)
}

// ExportTask represents a single export run
type ExportTask struct {
	ID              string
	Format          ExportFormat
	Status          TaskStatus
	Progress        float64 // 0.0 to 1.0
	Percent         int     // 0 to 100
	Frames          int     // frames captured so far
	DurationSeconds float64 // target duration, 0 for PNG
	Extension       string  // output extension without dot
	MimeType        string
	OutputPath      string // where the sink delivered the file
	LastError       string
	StartedAt       time.Time
	FinishedAt      time.Time
}

// Elapsed returns the run time so far, or the total once finished.
func (et *ExportTask) Elapsed() time.Duration {
	if et.StartedAt.IsZero() {
		return 0
	}
	if et.FinishedAt.IsZero() {
		return time.Since(et.StartedAt)
	}
	return et.FinishedAt.Sub(et.StartedAt)
}

// ImportTask represents a remote clip being fetched into the media cache
type ImportTask struct {
	ID         string
	URL        string
	Status     TaskStatus
	Progress   float64
	Percent    int
	ETASec     int    // -1 if unknown
	Title      string // clip title
	OutputPath string // downloaded file
	LastError  string
	StartedAt  time.Time
	FinishedAt time.Time
}

// GetETAString returns ETA formatted as hh:mm:ss, or "—" if unknown
func (it *ImportTask) GetETAString() string {
	if it.ETASec <= 0 {
		return "—"
	}
	hours := it.ETASec / 3600
	minutes := (it.ETASec % 3600) / 60
	seconds := it.ETASec % 60
	if hours > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}

// GetDisplayTitle returns title, filename, or URL in order of preference
func (it *ImportTask) GetDisplayTitle() string {
	if it.Title != "" && !strings.HasPrefix(it.Title, "http") {
		return it.Title
	}
	if it.OutputPath != "" {
		name := filepath.Base(it.OutputPath)
		return strings.TrimSuffix(name, filepath.Ext(name))
	}
	return it.URL
}
