package media

import (
	"fmt"
	"image"
	"image/draw"
	"image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"time"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Player is a playback cursor over one handle. Frame returns the picture
// to show at the given elapsed time since the player started, or nil if
// nothing is decoded yet.
type Player interface {
	Frame(at time.Duration) image.Image
	Rewind()
	Close() error
}

// Pacing says how long a player may hold up its caller for a frame that
// is still being decoded.
type Pacing int

const (
	// Realtime callers follow a wall clock; a late frame leaves the
	// previous one on screen.
	Realtime Pacing = iota
	// Exact callers sample a virtual clock and need the frame due at the
	// requested instant, however long decoding takes.
	Exact
)

type stillData struct {
	img image.Image
}

type gifData struct {
	frames   []*image.RGBA
	ends     []time.Duration // cumulative end time of each frame
	duration time.Duration
}

// MinGIFDelay is the delay used for frames declaring 0 or 1 hundredths,
// matching what browsers do.
const MinGIFDelay = 10

func (h *Handle) stillData() (*stillData, error) {
	h.decodeMu.Lock()
	defer h.decodeMu.Unlock()
	if h.still != nil {
		return h.still, nil
	}
	f, err := os.Open(h.Source.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", h.Source.Name, err)
	}
	h.still = &stillData{img: img}
	return h.still, nil
}

func (h *Handle) gifData() (*gifData, error) {
	h.decodeMu.Lock()
	defer h.decodeMu.Unlock()
	if h.anim != nil {
		return h.anim, nil
	}
	f, err := os.Open(h.Source.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open gif: %w", err)
	}
	defer f.Close()
	g, err := gif.DecodeAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode gif %s: %w", h.Source.Name, err)
	}
	h.anim = flattenGIF(g)
	return h.anim, nil
}

// GIFDuration returns the total play time of a decoded GIF.
func GIFDuration(g *gif.GIF) time.Duration {
	var total time.Duration
	for _, d := range g.Delay {
		total += gifDelay(d)
	}
	return total
}

func gifDelay(hundredths int) time.Duration {
	if hundredths <= 1 {
		hundredths = MinGIFDelay
	}
	return time.Duration(hundredths) * 10 * time.Millisecond
}

// flattenGIF renders every frame onto a full canvas, honouring disposal.
func flattenGIF(g *gif.GIF) *gifData {
	w, h := g.Config.Width, g.Config.Height
	if w == 0 || h == 0 {
		for _, p := range g.Image {
			b := p.Bounds()
			w = max(w, b.Max.X)
			h = max(h, b.Max.Y)
		}
	}
	bounds := image.Rect(0, 0, w, h)
	canvas := image.NewRGBA(bounds)
	d := &gifData{}
	for i, p := range g.Image {
		var saved *image.RGBA
		disposal := byte(0)
		if i < len(g.Disposal) {
			disposal = g.Disposal[i]
		}
		if disposal == gif.DisposalPrevious {
			saved = image.NewRGBA(bounds)
			draw.Draw(saved, bounds, canvas, image.Point{}, draw.Src)
		}
		draw.Draw(canvas, p.Bounds(), p, p.Bounds().Min, draw.Over)

		frame := image.NewRGBA(bounds)
		draw.Draw(frame, bounds, canvas, image.Point{}, draw.Src)
		d.frames = append(d.frames, frame)

		delay := 0
		if i < len(g.Delay) {
			delay = g.Delay[i]
		}
		d.duration += gifDelay(delay)
		d.ends = append(d.ends, d.duration)

		switch disposal {
		case gif.DisposalBackground:
			draw.Draw(canvas, p.Bounds(), image.Transparent, image.Point{}, draw.Src)
		case gif.DisposalPrevious:
			canvas = saved
		}
	}
	return d
}

type stillPlayer struct {
	img image.Image
}

func (p *stillPlayer) Frame(time.Duration) image.Image { return p.img }
func (p *stillPlayer) Rewind() {}
func (p *stillPlayer) Close() error { return nil }

// gifPlayer loops the flattened frames; the cursor is purely time based.
type gifPlayer struct {
	data *gifData
}

func (p *gifPlayer) Frame(at time.Duration) image.Image {
	d := p.data
	if d == nil || len(d.frames) == 0 {
		return nil
	}
	if d.duration <= 0 || at < 0 {
		return d.frames[0]
	}
	at %= d.duration
	for i, end := range d.ends {
		if at < end {
			return d.frames[i]
		}
	}
	return d.frames[len(d.frames)-1]
}

func (p *gifPlayer) Rewind() {}
func (p *gifPlayer) Close() error { return nil }
