package main

import (
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ytget/story-grid/internal/editor"
	"github.com/ytget/story-grid/internal/export"
	"github.com/ytget/story-grid/internal/media"
	"github.com/ytget/story-grid/internal/model"
	"github.com/ytget/story-grid/internal/platform"
)

func TestParseIndex(t *testing.T) {
	tests := []struct {
		value   string
		want    int
		wantErr bool
	}{
		{"0", 0, false},
		{"4", 4, false},
		{"4 grid", 4, false},
		{"9 grid", len(model.Layouts) - 1, false},
		{"-1", 0, true},
		{"99", 0, true},
		{"nope", 0, true},
	}
	for _, tt := range tests {
		got, err := parseIndex(tt.value, model.LayoutIndexByName, len(model.Layouts))
		if (err != nil) != tt.wantErr {
			t.Errorf("parseIndex(%q) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			continue
		}
		if err == nil && got != tt.want {
			t.Errorf("parseIndex(%q) = %d, want %d", tt.value, got, tt.want)
		}
	}

	if got, err := parseIndex("1:1", model.AspectIndexByName, len(model.AspectRatios)); err != nil || model.AspectRatios[got].Name != "1:1" {
		t.Errorf("Expected aspect 1:1, got %d (%v)", got, err)
	}
}

func TestIsURL(t *testing.T) {
	if !isURL("https://example.com/v") || !isURL("http://example.com") {
		t.Error("Expected http(s) arguments to be URLs")
	}
	if isURL("clip.mp4") || isURL("/tmp/https.png") {
		t.Error("Expected file paths not to be URLs")
	}
}

func TestExportPNGEndToEnd(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "still.png")
	f, err := os.Create(src)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := png.Encode(f, image.NewRGBA(image.Rect(0, 0, 16, 16))); err != nil {
		t.Fatalf("encode: %v", err)
	}
	f.Close()

	board, err := model.NewBoard(0, 3, model.DefaultExportConfig())
	if err != nil {
		t.Fatalf("NewBoard: %v", err)
	}
	out := filepath.Join(dir, "out")
	exporter := export.NewService(&platform.Sink{Dir: out}, export.NewFFmpegFactory())
	session := editor.NewSession(media.NewRegistry(media.NewProber(nil)), exporter, board, 200)
	defer session.Close()

	if err := fill(context.Background(), session, []string{src}, ""); err != nil {
		t.Fatalf("fill: %v", err)
	}
	task, err := runExport(context.Background(), session, exporter, model.FormatPNG)
	if err != nil {
		t.Fatalf("runExport: %v", err)
	}
	if !strings.HasPrefix(task.OutputPath, out) || filepath.Ext(task.OutputPath) != ".png" {
		t.Errorf("Expected a png under %s, got %s", out, task.OutputPath)
	}

	f, err = os.Open(task.OutputPath)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if cfg.Width != cfg.Height || cfg.Width < 200 {
		t.Errorf("Expected a square export at least 200px wide, got %dx%d", cfg.Width, cfg.Height)
	}
}

func TestRunExportEmptyBoard(t *testing.T) {
	board, err := model.NewBoard(0, 0, model.DefaultExportConfig())
	if err != nil {
		t.Fatalf("NewBoard: %v", err)
	}
	exporter := export.NewService(&platform.Sink{Dir: t.TempDir()}, export.NewFFmpegFactory())
	session := editor.NewSession(media.NewRegistry(media.NewProber(nil)), exporter, board, 0)
	defer session.Close()

	if _, err := runExport(context.Background(), session, exporter, model.FormatPNG); err == nil {
		t.Error("Expected an error for a zero-sized canvas")
	}
}
