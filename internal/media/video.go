package media

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log"
	"os/exec"
	"strconv"
	"sync"
	"time"
)

// FFmpeg constants for frame decoding
const (
	FFmpegCommand    = "ffmpeg"
	FFmpegLogLevel   = "error"
	RawPixelFormat   = "rgba"
	RawVideoFormat   = "rawvideo"
	StdoutPipe       = "pipe:1"
	MaxDecodeSide    = 1080
	DefaultDecodeFPS = 30
)

// How long Frame blocks for the decoder to catch up. Exact players only
// give up when the decoder has stalled.
const (
	frameWait = 250 * time.Millisecond
	stallWait = 15 * time.Second
)

func (pc Pacing) wait() time.Duration {
	if pc == Exact {
		return stallWait
	}
	return frameWait
}

// videoPlayer streams looping RGBA frames out of an ffmpeg subprocess at a
// fixed rate. Frame pulls decoded frames until it reaches the one due at
// the requested time. A slow decoder leaves the last frame on screen
// after wait.
type videoPlayer struct {
	path   string
	fps    float64
	wait   time.Duration
	width  int
	height int

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	frames  chan *image.RGBA
	current *image.RGBA
	index   int
}

func newVideoPlayer(path string, prober *Prober, fps float64, pacing Pacing) (*videoPlayer, error) {
	if fps <= 0 {
		fps = DefaultDecodeFPS
	}
	if prober == nil {
		prober = NewProber(nil)
	}
	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()
	info, err := prober.probeFile(ctx, path)
	if err != nil {
		return nil, err
	}
	if info.Width <= 0 || info.Height <= 0 {
		return nil, fmt.Errorf("video has no picture: %s", path)
	}
	w, h := decodeSize(info.Width, info.Height, MaxDecodeSide)
	return &videoPlayer{path: path, fps: fps, wait: pacing.wait(), width: w, height: h, index: -1}, nil
}

// decodeSize fits w x h inside limit keeping the aspect, rounded to even
// dimensions as most scalers require.
func decodeSize(w, h, limit int) (int, int) {
	if w > limit || h > limit {
		if w >= h {
			h = h * limit / w
			w = limit
		} else {
			w = w * limit / h
			h = limit
		}
	}
	w, h = w&^1, h&^1
	return max(w, 2), max(h, 2)
}

// BuildDecodeArgs builds the ffmpeg arguments that loop the input forever
// and write raw RGBA frames to stdout.
func BuildDecodeArgs(path string, w, h int, fps float64) []string {
	return []string{
		"-v", FFmpegLogLevel,
		"-nostdin",
		"-stream_loop", "-1",
		"-i", path,
		"-an",
		"-vf", fmt.Sprintf("scale=%d:%d", w, h),
		"-r", strconv.FormatFloat(fps, 'f', -1, 64),
		"-f", RawVideoFormat,
		"-pix_fmt", RawPixelFormat,
		StdoutPipe,
	}
}

func (p *videoPlayer) start() error {
	ctx, cancel := context.WithCancel(context.Background())
	cmd := exec.CommandContext(ctx, FFmpegCommand, BuildDecodeArgs(p.path, p.width, p.height, p.fps)...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return fmt.Errorf("failed to create stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		cancel()
		return fmt.Errorf("failed to start ffmpeg: %w", err)
	}
	frames := make(chan *image.RGBA, 4)
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer close(frames)
		readFrames(ctx, stdout, p.width, p.height, frames)
		_ = cmd.Wait()
	}()
	p.cancel = cancel
	p.done = done
	p.frames = frames
	return nil
}

func readFrames(ctx context.Context, r io.Reader, w, h int, out chan<- *image.RGBA) {
	size := w * h * 4
	for {
		img := image.NewRGBA(image.Rect(0, 0, w, h))
		if _, err := io.ReadFull(r, img.Pix[:size]); err != nil {
			if !errors.Is(err, io.EOF) && ctx.Err() == nil {
				log.Printf("video decode stopped: %v", err)
			}
			return
		}
		select {
		case out <- img:
		case <-ctx.Done():
			return
		}
	}
}

func (p *videoPlayer) Frame(at time.Duration) image.Image {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.frames == nil {
		if err := p.start(); err != nil {
			log.Printf("video player: %v", err)
			return nil
		}
	}
	want := int(at.Seconds()*p.fps + 1e-6)
	timeout := time.NewTimer(p.wait)
	defer timeout.Stop()
pull:
	for p.index < want {
		select {
		case f, ok := <-p.frames:
			if !ok {
				break pull
			}
			p.current = f
			p.index++
		case <-timeout.C:
			break pull
		}
	}
	if p.current == nil {
		return nil
	}
	return p.current
}

func (p *videoPlayer) stop() {
	if p.cancel == nil {
		return
	}
	p.cancel()
	// drain so the reader can observe cancellation
	for range p.frames {
	}
	<-p.done
	p.cancel = nil
	p.frames = nil
	p.done = nil
}

// Rewind restarts decoding from the first frame on the next Frame call.
func (p *videoPlayer) Rewind() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stop()
	p.current = nil
	p.index = -1
}

func (p *videoPlayer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stop()
	return nil
}
