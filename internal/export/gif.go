package export

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"math"
	"time"

	"github.com/ericpauley/go-quantize/quantize"
	xdraw "golang.org/x/image/draw"

	"github.com/ytget/story-grid/internal/compose"
	"github.com/ytget/story-grid/internal/media"
	"github.com/ytget/story-grid/internal/model"
)

// GIF export settings
const (
	GIFFrameRate   = 10
	GIFMaxColors   = 256
	GIFLoopForever = 0
)

// gifDelay is the per-frame delay in hundredths of a second.
func gifDelay(fps float64) int {
	return int(math.Round(100 / fps))
}

// quantizeFrame maps a frame onto its own median-cut palette. Palettes are
// not shared between frames.
func quantizeFrame(q quantize.MedianCutQuantizer, frame *image.RGBA) *image.Paletted {
	palette := q.Quantize(make(color.Palette, 0, GIFMaxColors), frame)
	if len(palette) == 0 {
		palette = color.Palette{color.Black}
	}
	out := image.NewPaletted(frame.Bounds(), palette)
	xdraw.Draw(out, out.Bounds(), frame, frame.Bounds().Min, xdraw.Src)
	return out
}

// recordGIF samples the board on a virtual frame clock: frame N shows
// every player at N/fps, so cells stay in lockstep however long a single
// composite takes.
func recordGIF(ctx context.Context, job Job, players []media.Player, progress func(done, total int)) ([]byte, error) {
	duration := model.AggregateDuration(job.Board.Cells, model.GIFMaxSeconds)
	total := model.FrameCount(duration, GIFFrameRate)
	w, h := surfaceSize(job.Width, job.Height)

	comp := compose.NewCompositor(w, h, 1)
	q := quantize.MedianCutQuantizer{Aggregation: quantize.Mean}
	anim := &gif.GIF{LoopCount: GIFLoopForever}
	delay := gifDelay(GIFFrameRate)

	for n := 0; n < total; n++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		at := time.Duration(n) * time.Second / GIFFrameRate
		layers := compose.BoardLayers(job.Board, job.Width, job.Height, func(i int) image.Image {
			if players[i] == nil {
				return nil
			}
			return players[i].Frame(at)
		})
		frame := comp.Composite(layers, job.Board.Config)
		anim.Image = append(anim.Image, quantizeFrame(q, frame))
		anim.Delay = append(anim.Delay, delay)
		if progress != nil {
			progress(n+1, total)
		}
	}

	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, anim); err != nil {
		return nil, fmt.Errorf("failed to encode gif: %w", err)
	}
	return buf.Bytes(), nil
}

// surfaceSize converts the logical canvas to even device pixels, which
// yuv420p encoders require and GIF does not mind.
func surfaceSize(w, h float64) (int, int) {
	pw := int(math.Round(w)) &^ 1
	ph := int(math.Round(h)) &^ 1
	return max(pw, 2), max(ph, 2)
}
