package compose

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/ytget/story-grid/internal/geometry"
	"github.com/ytget/story-grid/internal/model"
)

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func solid(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func rgbaAt(img image.Image, x, y int) color.RGBA {
	return color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
}

var (
	red  = color.RGBA{255, 0, 0, 255}
	blue = color.RGBA{0, 0, 255, 255}
)

func TestCoverCrop(t *testing.T) {
	tests := []struct {
		name           string
		dw, dh, nw, nh float64
		want           Crop
	}{
		{"square media in tall cell loses sides", 100, 200, 400, 400, Crop{SX: 100, SY: 0, SW: 200, SH: 400}},
		{"wide media in wide cell loses sides", 200, 100, 300, 100, Crop{SX: 50, SY: 0, SW: 200, SH: 100}},
		{"tall media in square cell loses top and bottom", 100, 100, 100, 300, Crop{SX: 0, SY: 100, SW: 100, SH: 100}},
		{"matching aspect keeps everything", 50, 100, 200, 400, Crop{SX: 0, SY: 0, SW: 200, SH: 400}},
		{"degenerate", 0, 100, 10, 10, Crop{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CoverCrop(tt.dw, tt.dh, tt.nw, tt.nh)
			if !near(got.SX, tt.want.SX) || !near(got.SY, tt.want.SY) || !near(got.SW, tt.want.SW) || !near(got.SH, tt.want.SH) {
				t.Errorf("CoverCrop(%v,%v,%v,%v) = %+v, want %+v", tt.dw, tt.dh, tt.nw, tt.nh, got, tt.want)
			}
		})
	}
}

func TestCoverCropPreservesCellAspect(t *testing.T) {
	for _, tc := range [][4]float64{{100, 200, 400, 400}, {200, 100, 300, 100}, {320, 180, 1080, 1920}} {
		c := CoverCrop(tc[0], tc[1], tc[2], tc[3])
		if !near(c.SW/c.SH, tc[0]/tc[1]) {
			t.Errorf("crop %+v aspect %v, want %v", c, c.SW/c.SH, tc[0]/tc[1])
		}
		if c.SX < 0 || c.SY < 0 || c.SX+c.SW > tc[2]+1e-9 || c.SY+c.SH > tc[3]+1e-9 {
			t.Errorf("crop %+v escapes %vx%v source", c, tc[2], tc[3])
		}
	}
}

func TestFitRect(t *testing.T) {
	x, y, w, h := FitRect(10, 10, 20, 10, false)
	if !near(x, 0) || !near(y, 2.5) || !near(w, 10) || !near(h, 5) {
		t.Errorf("contain = %v,%v %vx%v", x, y, w, h)
	}
	x, y, w, h = FitRect(10, 10, 20, 10, true)
	if !near(x, -5) || !near(y, 0) || !near(w, 20) || !near(h, 10) {
		t.Errorf("cover = %v,%v %vx%v", x, y, w, h)
	}
}

func TestRoundedMask(t *testing.T) {
	m := RoundedMask(20, 20, 10)
	if m.AlphaAt(0, 0).A > 10 {
		t.Errorf("corner alpha = %d, want ~0", m.AlphaAt(0, 0).A)
	}
	if m.AlphaAt(10, 10).A < 250 {
		t.Errorf("centre alpha = %d, want ~255", m.AlphaAt(10, 10).A)
	}
	if m.Bounds() != image.Rect(0, 0, 20, 20) {
		t.Errorf("mask bounds = %v", m.Bounds())
	}
}

func TestCompositeSkipsUndecodedLayers(t *testing.T) {
	c := NewCompositor(20, 10, 1)
	layers := []Layer{
		{Rect: geometry.Rect{X: 0, Y: 0, W: 10, H: 10}, Image: solid(40, 20, red)},
		{Rect: geometry.Rect{X: 10, Y: 0, W: 10, H: 10}, Image: nil},
	}
	out := c.Composite(layers, model.ExportConfig{Background: "#0000ff"})
	if got := rgbaAt(out, 5, 5); got != red {
		t.Errorf("decoded layer pixel = %v, want red", got)
	}
	if got := rgbaAt(out, 15, 5); got != blue {
		t.Errorf("undecoded layer pixel = %v, want background", got)
	}
	if out != c.Surface() {
		t.Error("Composite should draw into the persistent surface")
	}
}

func TestCompositeRepaintsBackground(t *testing.T) {
	c := NewCompositor(10, 10, 1)
	full := []Layer{{Rect: geometry.Rect{W: 10, H: 10}, Image: solid(10, 10, red)}}
	c.Composite(full, model.ExportConfig{Background: "#0000ff"})
	out := c.Composite(nil, model.ExportConfig{Background: "#0000ff"})
	if got := rgbaAt(out, 5, 5); got != blue {
		t.Errorf("stale pixel %v survived a repaint", got)
	}
}

func TestCompositeClipsRoundedCorners(t *testing.T) {
	c := NewCompositor(20, 20, 1)
	layers := []Layer{{Rect: geometry.Rect{W: 20, H: 20}, Image: solid(20, 20, red)}}
	out := c.Composite(layers, model.ExportConfig{BorderRadius: 10, Background: "#0000ff"})
	if got := rgbaAt(out, 0, 0); got.R > 30 || got.B < 220 {
		t.Errorf("corner pixel = %v, want background", got)
	}
	if got := rgbaAt(out, 10, 10); got != red {
		t.Errorf("centre pixel = %v, want red", got)
	}
}

func TestApplyFilters(t *testing.T) {
	src := solid(4, 4, red)
	if out := ApplyFilters(src, model.DefaultFilters, 1); out != image.Image(src) {
		t.Error("identity filters should return the input")
	}

	gray := ApplyFilters(src, model.FilterParams{Brightness: 100, Contrast: 100, Saturate: 100, Grayscale: 100}, 1)
	if c := rgbaAt(gray, 1, 1); c.R != c.G || c.G != c.B || c.R != 54 {
		t.Errorf("grayscale red = %v, want (54,54,54)", c)
	}

	dark := ApplyFilters(src, model.FilterParams{Brightness: 0, Contrast: 100, Saturate: 100}, 1)
	if c := rgbaAt(dark, 1, 1); c.R != 0 || c.G != 0 || c.B != 0 || c.A != 255 {
		t.Errorf("brightness 0 = %v, want opaque black", c)
	}

	flat := ApplyFilters(src, model.FilterParams{Brightness: 100, Contrast: 0, Saturate: 100}, 1)
	if c := rgbaAt(flat, 1, 1); c.R != 128 || c.G != 128 || c.B != 128 {
		t.Errorf("contrast 0 = %v, want mid gray", c)
	}
}

func TestRenderViewHonoursFitAndScale(t *testing.T) {
	b, err := model.NewBoard(model.LayoutIndexByName("2 columns"), 0, model.ExportConfig{Background: "#0000ff"})
	if err != nil {
		t.Fatal(err)
	}
	b, _ = b.SetCellMedia(0, "media-a", "a.png", model.MediaImage, 0)
	b = b.SetFit(0, model.FitContain)
	b, _ = b.SetCellMedia(1, "media-b", "b.png", model.MediaImage, 0)
	b = b.SetScale(1, 50)

	out := RenderView(b, []image.Image{solid(20, 10, red), solid(10, 10, red)}, 20, 10, ViewScale)
	if out.Bounds() != image.Rect(0, 0, 40, 20) {
		t.Fatalf("output bounds = %v, want 40x20", out.Bounds())
	}
	if got := rgbaAt(out, 10, 1); got != blue {
		t.Errorf("contain letterbox pixel = %v, want background", got)
	}
	if got := rgbaAt(out, 10, 10); got != red {
		t.Errorf("contain centre pixel = %v, want red", got)
	}
	if got := rgbaAt(out, 21, 1); got != blue {
		t.Errorf("zoomed-out margin pixel = %v, want background", got)
	}
	if got := rgbaAt(out, 30, 10); got != red {
		t.Errorf("zoomed-out centre pixel = %v, want red", got)
	}
}

func TestBoardLayersOmitsEmptyCells(t *testing.T) {
	b, _ := model.NewBoard(model.DefaultLayoutIndex, 0, model.ExportConfig{Gap: 0, Background: "#000000"})
	b, _ = b.SetCellMedia(2, "media-c", "c.png", model.MediaImage, 0)
	calls := 0
	layers := BoardLayers(b, 100, 100, func(i int) image.Image {
		calls++
		if i != 2 {
			t.Errorf("frame requested for empty cell %d", i)
		}
		return nil
	})
	if len(layers) != 1 || calls != 1 {
		t.Fatalf("got %d layers, %d calls", len(layers), calls)
	}
	if r := layers[0].Rect; r.X != 0 || r.Y != 50 || r.W != 50 || r.H != 50 {
		t.Errorf("layer rect = %+v", r)
	}
}
