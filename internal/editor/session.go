package editor

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/ytget/story-grid/internal/compose"
	"github.com/ytget/story-grid/internal/export"
	"github.com/ytget/story-grid/internal/geometry"
	"github.com/ytget/story-grid/internal/logs"
	"github.com/ytget/story-grid/internal/media"
	"github.com/ytget/story-grid/internal/model"
)

// PreviewFPS is the sampling rate of preview players
const PreviewFPS = 15

var (
	// ErrCellOutOfRange is returned for a cell index the layout does not have
	ErrCellOutOfRange = errors.New("cell index out of range")

	// ErrUnknownPreset is returned for a preset name that does not exist
	ErrUnknownPreset = errors.New("unknown filter preset")

	// ErrNoExporter is returned when the session was built without an exporter
	ErrNoExporter = errors.New("no exporter configured")
)

// Session owns the board and every media handle it references. All board
// changes go through the session so handles are released exactly once.
type Session struct {
	mu        sync.RWMutex
	board     model.Board
	width     float64
	listeners map[int]func(model.Board)
	nextID    int

	registry *media.Registry
	exporter export.Exporter

	previewMu sync.Mutex
	preview   map[string]*previewEntry

	probes sync.WaitGroup
}

// NewSession starts a session on board with the given logical canvas width.
func NewSession(registry *media.Registry, exporter export.Exporter, board model.Board, width float64) *Session {
	return &Session{
		board:     board,
		width:     width,
		listeners: make(map[int]func(model.Board)),
		registry:  registry,
		exporter:  exporter,
		preview:   make(map[string]*previewEntry),
	}
}

// Board returns the current snapshot.
func (s *Session) Board() model.Board {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.board
}

// Registry returns the media registry.
func (s *Session) Registry() *media.Registry {
	return s.registry
}

// Exporter returns the export service.
func (s *Session) Exporter() export.Exporter {
	return s.exporter
}

// SetWidth changes the logical canvas width.
func (s *Session) SetWidth(width float64) {
	s.mu.Lock()
	s.width = width
	b := s.board
	s.mu.Unlock()
	s.notify(b)
}

// CanvasSize returns the logical canvas size for the current aspect ratio.
func (s *Session) CanvasSize() (float64, float64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return geometry.CanvasSize(s.board.Aspect(), s.width)
}

// CellAt returns the cell under a logical canvas point, or -1.
func (s *Session) CellAt(x, y float64) int {
	s.mu.RLock()
	b := s.board
	w, h := geometry.CanvasSize(b.Aspect(), s.width)
	s.mu.RUnlock()
	return geometry.Hit(geometry.Resolve(b.Layout(), w, h, b.Config.Gap), x, y)
}

// Subscribe registers a callback invoked with every new board snapshot.
// It returns a function that removes the listener.
func (s *Session) Subscribe(fn func(model.Board)) func() {
	if fn == nil {
		return func() {}
	}
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *Session) notify(b model.Board) {
	s.mu.RLock()
	snapshot := make([]func(model.Board), 0, len(s.listeners))
	for _, fn := range s.listeners {
		snapshot = append(snapshot, fn)
	}
	s.mu.RUnlock()
	for _, fn := range snapshot {
		func(cb func(model.Board)) {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("editor: listener panic: %v", r)
				}
			}()
			cb(b)
		}(fn)
	}
}

// apply swaps in the board returned by fn and notifies listeners.
func (s *Session) apply(fn func(model.Board) model.Board) model.Board {
	s.mu.Lock()
	s.board = fn(s.board)
	b := s.board
	s.mu.Unlock()
	s.notify(b)
	return b
}

// release drops handles no cell references any more.
func (s *Session) release(refs ...string) {
	for _, ref := range refs {
		if ref == "" {
			continue
		}
		s.closePreview(ref)
		if s.registry.Release(ref) {
			logs.LogV("editor: released %s", ref)
		}
	}
}

// SelectLayout switches template, releasing media of dropped cells.
func (s *Session) SelectLayout(index int) error {
	s.mu.Lock()
	next, evicted, err := s.board.WithLayout(index)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.board = next
	s.mu.Unlock()

	s.release(evicted...)
	s.notify(next)
	return nil
}

// SelectAspect changes the canvas aspect ratio.
func (s *Session) SelectAspect(index int) error {
	s.mu.Lock()
	next, err := s.board.WithAspect(index)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.board = next
	s.mu.Unlock()

	s.notify(next)
	return nil
}

// SetConfig replaces gap, radius and background.
func (s *Session) SetConfig(cfg model.ExportConfig) {
	s.apply(func(b model.Board) model.Board { return b.WithConfig(cfg) })
}

// Upload binds the file at path to cell i. The previous media of the cell is
// released at once. Animated media starts with a placeholder duration that a
// background probe replaces, unless the cell has changed hands by then.
func (s *Session) Upload(i int, path, mimeType string) error {
	name := filepath.Base(path)
	kind, err := media.Classify(mimeType, name)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if _, ok := s.board.Cell(i); !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %d", ErrCellOutOfRange, i)
	}
	src := media.Source{Path: path, Name: name, Kind: kind}
	h := s.registry.Open(src)
	next, replaced := s.board.SetCellMedia(i, h.ID, name, kind, model.PlaceholderDuration(kind))
	s.board = next
	s.mu.Unlock()

	s.release(replaced)
	s.notify(next)

	if kind.IsAnimated() {
		s.probe(i, h.ID, src)
	}
	return nil
}

// probe reads metadata through a handle of its own, so the owning handle
// never depends on the probe's lifetime.
func (s *Session) probe(i int, ref string, src media.Source) {
	prober := s.registry.Prober()
	if prober == nil {
		return
	}
	ph := s.registry.Open(src)
	results := prober.ProbeAsync(context.Background(), ph)
	s.probes.Add(1)
	go func() {
		defer s.probes.Done()
		res, ok := <-results
		if !ok {
			return
		}
		if res.Err != nil {
			log.Printf("editor: probe of %s failed: %v", src.Name, res.Err)
			return
		}
		s.applyDuration(i, ref, res.Info.DurationSeconds)
	}()
}

func (s *Session) applyDuration(i int, ref string, seconds float64) {
	s.mu.Lock()
	next, applied := s.board.SetDuration(i, ref, seconds)
	if applied {
		s.board = next
	}
	s.mu.Unlock()

	if !applied {
		logs.LogV("editor: dropped late duration for %s", ref)
		return
	}
	s.notify(next)
}

// WaitProbes blocks until every pending duration probe has settled or ctx
// is done.
func (s *Session) WaitProbes(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.probes.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// UpdateFilter sets one filter of cell i.
func (s *Session) UpdateFilter(i int, key model.FilterKey, value float64) {
	s.apply(func(b model.Board) model.Board { return b.UpdateFilter(i, key, value) })
}

// ApplyPreset replaces the filters of cell i with a named preset.
func (s *Session) ApplyPreset(i int, name string) error {
	p, ok := model.PresetByName(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPreset, name)
	}
	s.apply(func(b model.Board) model.Board { return b.ApplyPreset(i, p) })
	return nil
}

// SetFit changes the fit mode of cell i.
func (s *Session) SetFit(i int, fit model.FitMode) {
	s.apply(func(b model.Board) model.Board { return b.SetFit(i, fit) })
}

// SetScale changes the zoom of cell i.
func (s *Session) SetScale(i int, percent float64) {
	s.apply(func(b model.Board) model.Board { return b.SetScale(i, percent) })
}

// SetOffset changes the translation of cell i.
func (s *Session) SetOffset(i int, x, y float64) {
	s.apply(func(b model.Board) model.Board { return b.SetOffset(i, x, y) })
}

// ResetCell restores the default filters and transform of cell i.
func (s *Session) ResetCell(i int) {
	s.apply(func(b model.Board) model.Board { return b.ResetCell(i) })
}

// ClearCell empties cell i and releases its media.
func (s *Session) ClearCell(i int) {
	s.mu.Lock()
	next, ref := s.board.ClearCell(i)
	s.board = next
	s.mu.Unlock()

	s.release(ref)
	s.notify(next)
}

// ResetCaches cancels background probes, purges the probe cache, releases
// every handle and starts over on fresh.
func (s *Session) ResetCaches(fresh model.Board) error {
	var errs []error
	if prober := s.registry.Prober(); prober != nil {
		if n := prober.CancelAll(); n > 0 {
			log.Printf("editor: cancelled %d probes", n)
		}
		if cache := prober.Cache(); cache != nil {
			if err := cache.Purge(); err != nil {
				errs = append(errs, fmt.Errorf("purge probe cache: %w", err))
			}
		}
	}

	s.closeAllPreviews()
	s.registry.ReleaseAll()

	s.mu.Lock()
	s.board = fresh
	s.mu.Unlock()
	s.notify(fresh)

	return errors.Join(errs...)
}

// Export starts an export of the current board. The board is snapshotted
// now, so later edits do not reach a running export.
func (s *Session) Export(format model.ExportFormat) (*model.ExportTask, error) {
	if s.exporter == nil {
		return nil, ErrNoExporter
	}
	return s.exporter.Start(format, s.Job())
}

// Job builds an export job from the current board.
func (s *Session) Job() export.Job {
	s.mu.RLock()
	b := s.board
	w, h := geometry.CanvasSize(b.Aspect(), s.width)
	s.mu.RUnlock()
	return export.Job{Board: b, Width: w, Height: h, Open: s.openPlayer}
}

func (s *Session) openPlayer(cell model.CellState, fps float64, pacing media.Pacing) (media.Player, error) {
	h, ok := s.registry.Lookup(cell.MediaRef)
	if !ok {
		return nil, fmt.Errorf("media handle released: %s", cell.MediaRef)
	}
	return h.NewPlayer(fps, pacing)
}

// Preview renders the board as it looks at playback time at, scaled from
// logical to device pixels.
func (s *Session) Preview(at time.Duration, scale float64) *image.RGBA {
	s.mu.RLock()
	b := s.board
	w, h := geometry.CanvasSize(b.Aspect(), s.width)
	s.mu.RUnlock()

	images := make([]image.Image, len(b.Cells))
	for i, c := range b.Cells {
		if !c.HasMedia() {
			continue
		}
		t := at
		if d := time.Duration(c.DurationSeconds * float64(time.Second)); c.IsAnimated() && d > 0 {
			t = at % d
		}
		p := s.previewPlayer(c, t)
		if p == nil {
			continue
		}
		images[i] = p.Frame(t)
	}
	return compose.RenderView(b, images, w, h, scale)
}

type previewEntry struct {
	player media.Player
	last   time.Duration
}

// previewPlayer returns the cell's preview player, rewound when the
// playback time wrapped around since the previous frame.
func (s *Session) previewPlayer(c model.CellState, t time.Duration) media.Player {
	s.previewMu.Lock()
	defer s.previewMu.Unlock()
	if e, ok := s.preview[c.MediaRef]; ok {
		if t < e.last {
			e.player.Rewind()
		}
		e.last = t
		return e.player
	}
	p, err := s.openPlayer(c, PreviewFPS, media.Realtime)
	if err != nil {
		logs.LogV("editor: preview of %s unavailable: %v", c.MediaName, err)
		return nil
	}
	s.preview[c.MediaRef] = &previewEntry{player: p, last: t}
	return p
}

func (s *Session) closePreview(ref string) {
	s.previewMu.Lock()
	e, ok := s.preview[ref]
	delete(s.preview, ref)
	s.previewMu.Unlock()
	if ok {
		e.player.Close()
	}
}

func (s *Session) closeAllPreviews() {
	s.previewMu.Lock()
	entries := s.preview
	s.preview = make(map[string]*previewEntry)
	s.previewMu.Unlock()
	for _, e := range entries {
		e.player.Close()
	}
}

// Close releases every preview player and handle.
func (s *Session) Close() {
	if prober := s.registry.Prober(); prober != nil {
		prober.CancelAll()
	}
	s.closeAllPreviews()
	s.registry.ReleaseAll()
}
