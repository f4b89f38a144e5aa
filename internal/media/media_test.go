package media

import (
	"context"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ytget/story-grid/internal/model"
)

func writePNG(t *testing.T, dir string, w, h int, c color.Color) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	path := filepath.Join(dir, "still.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	return path
}

// writeGIF writes a 3-frame red/green/blue GIF with 100ms frames.
func writeGIF(t *testing.T, dir string) string {
	t.Helper()
	palette := color.Palette{color.RGBA{255, 0, 0, 255}, color.RGBA{0, 255, 0, 255}, color.RGBA{0, 0, 255, 255}}
	g := &gif.GIF{}
	for i := 0; i < 3; i++ {
		p := image.NewPaletted(image.Rect(0, 0, 4, 4), palette)
		for j := range p.Pix {
			p.Pix[j] = uint8(i)
		}
		g.Image = append(g.Image, p)
		g.Delay = append(g.Delay, 10)
	}
	path := filepath.Join(dir, "anim.gif")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := gif.EncodeAll(f, g); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRegistryLifecycle(t *testing.T) {
	r := NewRegistry(nil)
	a := r.Open(Source{Path: "a.png", Kind: model.MediaImage})
	b := r.Open(Source{Path: "b.png", Kind: model.MediaImage})
	if !strings.HasPrefix(a.ID, HandleIDPrefix) || a.ID == b.ID {
		t.Fatalf("unexpected handle IDs %q %q", a.ID, b.ID)
	}
	if r.Live() != 2 {
		t.Fatalf("Live() = %d, want 2", r.Live())
	}
	if !r.Release(a.ID) {
		t.Error("Release(a) = false")
	}
	if r.Release(a.ID) {
		t.Error("double Release(a) = true")
	}
	if _, ok := r.Lookup(a.ID); ok {
		t.Error("released handle still found")
	}
	if _, err := a.NewPlayer(10, Realtime); err == nil {
		t.Error("NewPlayer on released handle should fail")
	}
	if n := r.ReleaseAll(); n != 1 || r.Live() != 0 || r.Released() != 2 {
		t.Errorf("ReleaseAll() = %d, live %d, released %d", n, r.Live(), r.Released())
	}
}

func TestStillPlayer(t *testing.T) {
	path := writePNG(t, t.TempDir(), 8, 6, color.RGBA{10, 20, 30, 255})
	r := NewRegistry(nil)
	h := r.Open(Source{Path: path, Name: "still.png", Kind: model.MediaImage})
	p, err := h.NewPlayer(10, Realtime)
	if err != nil {
		t.Fatalf("NewPlayer error: %v", err)
	}
	defer p.Close()
	img := p.Frame(3 * time.Second)
	if img == nil || img.Bounds().Dx() != 8 || img.Bounds().Dy() != 6 {
		t.Fatalf("unexpected frame %v", img)
	}
}

func TestGIFPlayerLoops(t *testing.T) {
	path := writeGIF(t, t.TempDir())
	r := NewRegistry(nil)
	h := r.Open(Source{Path: path, Kind: model.MediaGIF})
	p, err := h.NewPlayer(10, Realtime)
	if err != nil {
		t.Fatalf("NewPlayer error: %v", err)
	}
	tests := []struct {
		at   time.Duration
		want color.RGBA
	}{
		{0, color.RGBA{255, 0, 0, 255}},
		{150 * time.Millisecond, color.RGBA{0, 255, 0, 255}},
		{250 * time.Millisecond, color.RGBA{0, 0, 255, 255}},
		{300 * time.Millisecond, color.RGBA{255, 0, 0, 255}},
		{1050 * time.Millisecond, color.RGBA{0, 255, 0, 255}},
	}
	for _, tt := range tests {
		img := p.Frame(tt.at)
		if img == nil {
			t.Fatalf("Frame(%v) = nil", tt.at)
		}
		if got := color.RGBAModel.Convert(img.At(1, 1)).(color.RGBA); got != tt.want {
			t.Errorf("Frame(%v) pixel = %v, want %v", tt.at, got, tt.want)
		}
	}
}

func TestParseProbeOutput(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    Info
		wantErr bool
	}{
		{
			name: "full",
			in:   `{"programs":[],"streams":[{"width":1920,"height":1080}],"format":{"duration":"12.480000"}}`,
			want: Info{Width: 1920, Height: 1080, DurationSeconds: 12.48},
		},
		{
			name: "not available",
			in:   `{"streams":[{"width":640,"height":360}],"format":{"duration":"N/A"}}`,
			want: Info{Width: 640, Height: 360, DurationSeconds: model.IndeterminateSeconds, Indeterminate: true},
		},
		{
			name: "missing duration",
			in:   `{"streams":[],"format":{}}`,
			want: Info{DurationSeconds: model.IndeterminateSeconds, Indeterminate: true},
		},
		{name: "garbage", in: `not json`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseProbeOutput([]byte(tt.in))
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestProbeAsyncReleasesProbeHandle(t *testing.T) {
	path := writeGIF(t, t.TempDir())
	r := NewRegistry(NewProber(nil))
	display := r.Open(Source{Path: path, Kind: model.MediaGIF})
	probe := r.Open(Source{Path: path, Kind: model.MediaGIF})

	res := <-r.Prober().ProbeAsync(context.Background(), probe)
	if res.Err != nil {
		t.Fatalf("probe error: %v", res.Err)
	}
	if res.HandleID != probe.ID {
		t.Errorf("result for %s, want %s", res.HandleID, probe.ID)
	}
	if d := res.Info.DurationSeconds; d < 0.299 || d > 0.301 {
		t.Errorf("gif duration = %v, want 0.3", d)
	}
	if _, ok := r.Lookup(probe.ID); ok {
		t.Error("probe handle not released")
	}
	if _, ok := r.Lookup(display.ID); !ok {
		t.Error("display handle released by probe")
	}
}

func TestProbeCacheRoundTrip(t *testing.T) {
	dir := t.TempDir()
	c, err := OpenProbeCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	info := Info{Width: 320, Height: 240, DurationSeconds: 4.5}
	if err := c.Put("k", info); err != nil {
		t.Fatalf("Put error: %v", err)
	}

	reopened, err := OpenProbeCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	if got, ok := reopened.Get("k"); !ok || got != info {
		t.Errorf("Get after reopen = %+v, %v", got, ok)
	}
	if err := reopened.Purge(); err != nil {
		t.Fatalf("Purge error: %v", err)
	}
	if reopened.Len() != 0 {
		t.Error("Purge kept entries")
	}
	if _, err := os.Stat(filepath.Join(dir, ProbeCacheFile)); !os.IsNotExist(err) {
		t.Errorf("cache file still present: %v", err)
	}
}

func TestOpenProbeCacheDiscardsCorruptFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ProbeCacheFile), []byte("garbage"), 0644); err != nil {
		t.Fatal(err)
	}
	c, err := OpenProbeCache(dir)
	if err != nil {
		t.Fatalf("OpenProbeCache error: %v", err)
	}
	if c.Len() != 0 {
		t.Errorf("corrupt cache produced %d entries", c.Len())
	}
}

func TestDecodeSize(t *testing.T) {
	tests := []struct {
		w, h, limit  int
		wantW, wantH int
	}{
		{1920, 1080, 1080, 1080, 606},
		{1080, 1920, 1080, 606, 1080},
		{641, 361, 1080, 640, 360},
		{1, 1, 1080, 2, 2},
	}
	for _, tt := range tests {
		w, h := decodeSize(tt.w, tt.h, tt.limit)
		if w != tt.wantW || h != tt.wantH {
			t.Errorf("decodeSize(%d,%d) = %dx%d, want %dx%d", tt.w, tt.h, w, h, tt.wantW, tt.wantH)
		}
	}
}

func TestBuildDecodeArgs(t *testing.T) {
	args := strings.Join(BuildDecodeArgs("in.mp4", 640, 360, 10), " ")
	for _, want := range []string{"-stream_loop -1", "-i in.mp4", "scale=640:360", "-r 10", "-pix_fmt rgba", "pipe:1"} {
		if !strings.Contains(args, want) {
			t.Errorf("decode args %q missing %q", args, want)
		}
	}
}

func TestVideoPlayerPacing(t *testing.T) {
	late := func() chan *image.RGBA {
		frames := make(chan *image.RGBA, 1)
		time.AfterFunc(2*frameWait, func() { frames <- image.NewRGBA(image.Rect(0, 0, 2, 2)) })
		return frames
	}

	exact := &videoPlayer{fps: 10, wait: Exact.wait(), frames: late(), index: -1}
	if img := exact.Frame(0); img == nil {
		t.Error("exact player returned no frame for a slow decoder")
	}

	realtime := &videoPlayer{fps: 10, wait: Realtime.wait(), frames: late(), index: -1}
	if img := realtime.Frame(0); img != nil {
		t.Error("realtime player should not wait past its frame budget")
	}
}
