package model

import (
	"fmt"
	"testing"
)

func populatedBoard(t *testing.T, layoutIndex int) Board {
	t.Helper()
	b, err := NewBoard(layoutIndex, 0, DefaultExportConfig())
	if err != nil {
		t.Fatalf("NewBoard(%d) error: %v", layoutIndex, err)
	}
	for i := range b.Cells {
		b, _ = b.SetCellMedia(i, fmt.Sprintf("media-%d", i), fmt.Sprintf("img%d.jpg", i), MediaImage, 0)
	}
	return b
}

func TestNewBoard(t *testing.T) {
	b, err := NewBoard(DefaultLayoutIndex, 0, DefaultExportConfig())
	if err != nil {
		t.Fatalf("NewBoard error: %v", err)
	}
	if len(b.Cells) != 4 {
		t.Fatalf("expected 4 cells, got %d", len(b.Cells))
	}
	for i, c := range b.Cells {
		if c.ID != i || c.HasMedia() || c.Filters != DefaultFilters || c.ScalePercent != 100 || c.Fit != FitCover {
			t.Errorf("cell %d not initialised with defaults: %+v", i, c)
		}
	}
	if _, err := NewBoard(len(Layouts), 0, DefaultExportConfig()); err == nil {
		t.Error("expected error for out-of-range layout")
	}
}

func TestWithLayoutReleasesNonCarriedCells(t *testing.T) {
	nine := LayoutIndexByName("9 grid")
	two := LayoutIndexByName("2 columns")
	if nine < 0 || two < 0 {
		t.Fatal("layout catalog missing 9 grid or 2 columns")
	}
	b := populatedBoard(t, nine)
	b = b.UpdateFilter(0, FilterSepia, 40)
	b = b.SetScale(1, 150)

	next, evicted, err := b.WithLayout(two)
	if err != nil {
		t.Fatalf("WithLayout error: %v", err)
	}
	if len(evicted) != 7 {
		t.Fatalf("expected 7 evicted refs, got %d: %v", len(evicted), evicted)
	}
	for i, ref := range evicted {
		if want := fmt.Sprintf("media-%d", i+2); ref != want {
			t.Errorf("evicted[%d] = %s, want %s", i, ref, want)
		}
	}
	if len(next.Cells) != 2 {
		t.Fatalf("expected 2 cells, got %d", len(next.Cells))
	}
	if next.Cells[0].MediaRef != "media-0" || next.Cells[0].Filters.Sepia != 40 {
		t.Errorf("cell 0 did not carry over: %+v", next.Cells[0])
	}
	if next.Cells[1].MediaRef != "media-1" || next.Cells[1].ScalePercent != 150 {
		t.Errorf("cell 1 did not carry over: %+v", next.Cells[1])
	}
	if len(b.Cells) != 9 {
		t.Errorf("original snapshot mutated: %d cells", len(b.Cells))
	}
}

func TestWithLayoutGrowing(t *testing.T) {
	b := populatedBoard(t, 0)
	next, evicted, err := b.WithLayout(LayoutIndexByName("6 grid"))
	if err != nil {
		t.Fatalf("WithLayout error: %v", err)
	}
	if len(evicted) != 0 {
		t.Errorf("growing layout should evict nothing, got %v", evicted)
	}
	if len(next.Cells) != 6 || next.Cells[5].HasMedia() || next.Cells[5].ID != 5 {
		t.Errorf("unexpected cells after growing: %+v", next.Cells)
	}
}

func TestResetCellRestoresDefaults(t *testing.T) {
	b := populatedBoard(t, DefaultLayoutIndex)
	b = b.ApplyPreset(2, Presets[3])
	b = b.UpdateFilter(2, FilterBlur, 7)
	b = b.SetScale(2, 180)
	b = b.SetOffset(2, -12, 30)
	b = b.SetFit(2, FitContain)

	for round := 0; round < 2; round++ {
		b = b.ResetCell(2)
		c := b.Cells[2]
		want := FilterParams{100, 100, 100, 0, 0, 0}
		if c.Filters != want {
			t.Errorf("round %d: filters = %+v, want %+v", round, c.Filters, want)
		}
		if c.ScalePercent != 100 || c.OffsetX != 0 || c.OffsetY != 0 {
			t.Errorf("round %d: transform = (%v,%v,%v), want (100,0,0)", round, c.ScalePercent, c.OffsetX, c.OffsetY)
		}
		if c.MediaRef != "media-2" {
			t.Errorf("round %d: reset dropped media", round)
		}
	}
}

func TestUpdatesDoNotMutateReceiver(t *testing.T) {
	b := populatedBoard(t, DefaultLayoutIndex)
	_ = b.UpdateFilter(0, FilterBrightness, 150)
	_ = b.SetScale(0, 200)
	_, _ = b.ClearCell(0)
	if b.Cells[0].Filters.Brightness != 100 || b.Cells[0].ScalePercent != 100 || b.Cells[0].MediaRef != "media-0" {
		t.Errorf("receiver mutated: %+v", b.Cells[0])
	}
}

func TestSetCellMediaReturnsReplacedRef(t *testing.T) {
	b := populatedBoard(t, DefaultLayoutIndex)
	b = b.UpdateFilter(1, FilterContrast, 130)
	next, replaced := b.SetCellMedia(1, "media-new", "clip.mp4", MediaVideo, VideoPlaceholderSeconds)
	if replaced != "media-1" {
		t.Errorf("replaced = %q, want media-1", replaced)
	}
	c := next.Cells[1]
	if c.MediaKind != MediaVideo || c.DurationSeconds != 5 || c.Filters.Contrast != 130 {
		t.Errorf("unexpected cell after replace: %+v", c)
	}
	if _, r := next.SetCellMedia(99, "x", "x", MediaImage, 0); r != "" {
		t.Errorf("out-of-range replace returned %q", r)
	}
}

func TestSetDurationIgnoresStaleRef(t *testing.T) {
	b, _ := NewBoard(DefaultLayoutIndex, 0, DefaultExportConfig())
	b, _ = b.SetCellMedia(0, "media-a", "a.mp4", MediaVideo, VideoPlaceholderSeconds)
	b, _ = b.SetCellMedia(0, "media-b", "b.mp4", MediaVideo, VideoPlaceholderSeconds)

	b, applied := b.SetDuration(0, "media-a", 12)
	if applied || b.Cells[0].DurationSeconds != 5 {
		t.Errorf("stale duration applied: %v %v", applied, b.Cells[0].DurationSeconds)
	}
	b, applied = b.SetDuration(0, "media-b", 12)
	if !applied || b.Cells[0].DurationSeconds != 12 {
		t.Errorf("fresh duration not applied: %v %v", applied, b.Cells[0].DurationSeconds)
	}
}

func TestFilterClamping(t *testing.T) {
	b, _ := NewBoard(DefaultLayoutIndex, 0, DefaultExportConfig())
	b = b.UpdateFilter(0, FilterBrightness, 500)
	b = b.UpdateFilter(0, FilterBlur, -3)
	b = b.UpdateFilter(0, FilterSepia, 101)
	b = b.SetScale(1, 10)
	f := b.Cells[0].Filters
	if f.Brightness != 200 || f.Blur != 0 || f.Sepia != 100 {
		t.Errorf("filters not clamped: %+v", f)
	}
	if b.Cells[1].ScalePercent != MinScalePercent {
		t.Errorf("scale not clamped: %v", b.Cells[1].ScalePercent)
	}
}

func TestExportConfigNormalized(t *testing.T) {
	c := ExportConfig{Gap: 50, BorderRadius: -1, Background: "red"}.Normalized()
	if c.Gap != MaxGap || c.BorderRadius != 0 || c.Background != DefaultBgColor {
		t.Errorf("Normalized() = %+v", c)
	}
	c = ExportConfig{Gap: 8, BorderRadius: 12, Background: " #1a2B3c "}.Normalized()
	if c.Gap != 8 || c.BorderRadius != 12 || c.Background != "#1a2B3c" {
		t.Errorf("Normalized() = %+v", c)
	}
}
