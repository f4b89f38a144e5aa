package export

import (
	"context"
	"image"
	"image/color"
	"sync"
	"testing"
	"time"

	"github.com/ytget/story-grid/internal/media"
	"github.com/ytget/story-grid/internal/model"
)

// fakePlayer returns a solid frame and records every requested instant.
type fakePlayer struct {
	mu      sync.Mutex
	img     *image.RGBA
	asked   []time.Duration
	rewinds int
	closed  bool
	pacing  media.Pacing
}

func newFakePlayer(c color.Color) *fakePlayer {
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for i := 0; i < len(img.Pix); i += 4 {
		r, g, b, a := c.RGBA()
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = uint8(r>>8), uint8(g>>8), uint8(b>>8), uint8(a>>8)
	}
	return &fakePlayer{img: img}
}

func (p *fakePlayer) Frame(at time.Duration) image.Image {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.asked = append(p.asked, at)
	return p.img
}

func (p *fakePlayer) Rewind() {
	p.mu.Lock()
	p.rewinds++
	p.mu.Unlock()
}

func (p *fakePlayer) Close() error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	return nil
}

// fakeSink keeps delivered files in memory.
type fakeSink struct {
	mu    sync.Mutex
	names []string
	mimes []string
	data  [][]byte
}

func (s *fakeSink) Deliver(_ context.Context, name, mimeType string, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.names = append(s.names, name)
	s.mimes = append(s.mimes, mimeType)
	s.data = append(s.data, data)
	return "/downloads/" + name, nil
}

func (s *fakeSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.names)
}

// fakeEncoders counts encoder instances; gate, when set, holds NewEncoder
// until it is closed. Encoders take frameDelay to accept each frame.
type fakeEncoders struct {
	mu         sync.Mutex
	created    int
	gate       chan struct{}
	negErr     error
	frameDelay time.Duration
	encoders   []*fakeEncoder
}

func (f *fakeEncoders) Negotiate(context.Context) (Codec, error) {
	if f.negErr != nil {
		return Codec{}, f.negErr
	}
	return CodecPreference[0], nil
}

func (f *fakeEncoders) NewEncoder(ctx context.Context, codec Codec, w, h int, fps float64) (Encoder, error) {
	f.mu.Lock()
	f.created++
	gate := f.gate
	e := &fakeEncoder{delay: f.frameDelay}
	f.encoders = append(f.encoders, e)
	f.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return e, nil
}

func (f *fakeEncoders) instances() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.created
}

type fakeEncoder struct {
	mu      sync.Mutex
	delay   time.Duration
	frames  int
	closed  bool
	aborted bool
}

func (e *fakeEncoder) WriteFrame(*image.RGBA) error {
	time.Sleep(e.delay)
	e.mu.Lock()
	e.frames++
	e.mu.Unlock()
	return nil
}

func (e *fakeEncoder) Close() ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	return []byte("webm-bytes"), nil
}

func (e *fakeEncoder) Abort() {
	e.mu.Lock()
	e.aborted = true
	e.mu.Unlock()
}

// animatedJob builds a 2-cell job whose first cell animates for seconds.
func animatedJob(t *testing.T, seconds float64, players map[int]*fakePlayer) Job {
	t.Helper()
	b, err := model.NewBoard(model.LayoutIndexByName("2 columns"), 0, model.ExportConfig{Background: "#000000"})
	if err != nil {
		t.Fatal(err)
	}
	b, _ = b.SetCellMedia(0, "media-anim", "a.gif", model.MediaGIF, seconds)
	b, _ = b.SetCellMedia(1, "media-still", "b.png", model.MediaImage, 0)
	return Job{
		Board:  b,
		Width:  40,
		Height: 20,
		Open: func(cell model.CellState, fps float64, pacing media.Pacing) (media.Player, error) {
			p := newFakePlayer(color.RGBA{200, 40, 40, 255})
			p.pacing = pacing
			if players != nil {
				players[cell.ID] = p
			}
			return p, nil
		},
	}
}

func taskSnapshot(s *Service, id string) model.ExportTask {
	s.tasksMutex.RLock()
	defer s.tasksMutex.RUnlock()
	return *s.tasks[id]
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}
