package export

import (
	"context"
	"image"
	"log"
	"sync"
	"time"

	"github.com/ytget/story-grid/internal/compose"
	"github.com/ytget/story-grid/internal/media"
	"github.com/ytget/story-grid/internal/model"
)

// Video export settings
const (
	VideoFrameRate  = 30
	RefreshInterval = time.Second / 60
)

// videoRecorder drives the compositor from wall-clock time. A refresh loop
// repaints the shared surface at display rate while a capture loop feeds
// the encoder every frame due by the elapsed time. The encoder stamps
// frames at a constant rate, so a slow encoder is caught up by repeating
// the current surface and the output always holds duration*fps frames.
type videoRecorder struct {
	refresh time.Duration
	fps     float64
	now     func() time.Time
}

func (r videoRecorder) record(ctx context.Context, job Job, players []media.Player, enc Encoder, progress func(done, total int)) ([]byte, int, error) {
	seconds := model.AggregateDuration(job.Board.Cells, model.VideoMaxSeconds)
	duration := time.Duration(seconds * float64(time.Second))
	target := model.FrameCount(seconds, r.fps)
	w, h := surfaceSize(job.Width, job.Height)
	comp := compose.NewCompositor(w, h, 1)

	var mu sync.Mutex
	paint := func(at time.Duration) {
		layers := compose.BoardLayers(job.Board, job.Width, job.Height, func(i int) image.Image {
			if players[i] == nil {
				return nil
			}
			return players[i].Frame(at)
		})
		mu.Lock()
		comp.Composite(layers, job.Board.Config)
		mu.Unlock()
	}
	paint(0)

	frame := image.NewRGBA(comp.Surface().Bounds())
	frames := 0
	capture := func() error {
		mu.Lock()
		copy(frame.Pix, comp.Surface().Pix)
		mu.Unlock()
		if err := enc.WriteFrame(frame); err != nil {
			return err
		}
		frames++
		return nil
	}

	start := r.now()
	captureCtx, stopCapture := context.WithCancel(ctx)
	defer stopCapture()
	var (
		wg         sync.WaitGroup
		captureErr error
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(time.Duration(float64(time.Second) / r.fps))
		defer ticker.Stop()
		for {
			due := min(target, int(r.now().Sub(start).Seconds()*r.fps)+1)
			for frames < due {
				if captureCtx.Err() != nil {
					return
				}
				if err := capture(); err != nil {
					captureErr = err
					stopCapture()
					return
				}
			}
			select {
			case <-captureCtx.Done():
				return
			case <-ticker.C:
			}
		}
	}()

	ticker := time.NewTicker(r.refresh)
	defer ticker.Stop()
	lastPercent := -1
loop:
	for {
		select {
		case <-captureCtx.Done():
			break loop
		case <-ticker.C:
		}
		elapsed := r.now().Sub(start)
		if elapsed >= duration {
			break loop
		}
		paint(elapsed)
		if pct := int(100 * elapsed / duration); pct != lastPercent && progress != nil {
			lastPercent = pct
			progress(pct, 100)
		}
	}
	stopCapture()
	wg.Wait()

	if err := ctx.Err(); err != nil {
		enc.Abort()
		return nil, frames, err
	}
	if captureErr == nil {
		for frames < target && captureErr == nil {
			captureErr = capture()
		}
	}
	if captureErr != nil {
		enc.Abort()
		return nil, frames, captureErr
	}
	data, err := enc.Close()
	if err != nil {
		return nil, frames, err
	}
	log.Printf("video export: %d frames in %s", frames, duration)
	return data, frames, nil
}
