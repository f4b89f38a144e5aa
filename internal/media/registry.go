package media

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ytget/story-grid/internal/model"
)

// HandleIDPrefix prefixes every issued handle ID
const HandleIDPrefix = "media-"

// Source identifies an uploaded file.
type Source struct {
	Path string
	Name string
	Kind model.MediaKind
}

// Handle is an open reference to a source. A handle stays valid until it
// is released through its registry; decoded still and GIF data is cached
// on the handle and shared by its players.
type Handle struct {
	ID     string
	Source Source

	reg      *Registry
	decodeMu sync.Mutex
	still    *stillData
	anim     *gifData
}

// Registry issues and reclaims handles. Every Open must be paired with a
// Release by whoever owns the returned ID.
type Registry struct {
	mu       sync.RWMutex
	handles  map[string]*Handle
	prober   *Prober
	released int
}

// NewRegistry creates an empty registry. The prober is used by video
// players to size their decode output and may be nil when only stills and
// GIFs are handled.
func NewRegistry(prober *Prober) *Registry {
	return &Registry{
		handles: make(map[string]*Handle),
		prober:  prober,
	}
}

// Open registers a new handle for src.
func (r *Registry) Open(src Source) *Handle {
	h := &Handle{ID: generateHandleID(), Source: src, reg: r}
	r.mu.Lock()
	r.handles[h.ID] = h
	r.mu.Unlock()
	return h
}

// Lookup returns a live handle.
func (r *Registry) Lookup(id string) (*Handle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handles[id]
	return h, ok
}

// Release drops a handle and its decoded data. Releasing an unknown or
// already released ID is a no-op that returns false.
func (r *Registry) Release(id string) bool {
	r.mu.Lock()
	h, ok := r.handles[id]
	if ok {
		delete(r.handles, id)
		r.released++
	}
	r.mu.Unlock()
	if !ok {
		return false
	}
	h.decodeMu.Lock()
	h.still = nil
	h.anim = nil
	h.decodeMu.Unlock()
	return true
}

// ReleaseAll drops every handle and returns how many were live.
func (r *Registry) ReleaseAll() int {
	r.mu.Lock()
	ids := make([]string, 0, len(r.handles))
	for id := range r.handles {
		ids = append(ids, id)
	}
	r.mu.Unlock()
	n := 0
	for _, id := range ids {
		if r.Release(id) {
			n++
		}
	}
	if n > 0 {
		log.Printf("media: released %d handles", n)
	}
	return n
}

// Live returns the number of unreleased handles.
func (r *Registry) Live() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handles)
}

// Released returns how many handles have been released so far.
func (r *Registry) Released() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.released
}

// Prober returns the registry's metadata prober, which may be nil.
func (r *Registry) Prober() *Prober {
	return r.prober
}

func (h *Handle) live() bool {
	if h.reg == nil {
		return false
	}
	_, ok := h.reg.Lookup(h.ID)
	return ok
}

// NewPlayer opens an independent playback cursor positioned at the start.
// fps is the sampling rate the caller intends to use; video decoders emit
// frames at that rate. pacing only matters for video.
func (h *Handle) NewPlayer(fps float64, pacing Pacing) (Player, error) {
	if !h.live() {
		return nil, fmt.Errorf("media handle released: %s", h.ID)
	}
	switch h.Source.Kind {
	case model.MediaImage:
		d, err := h.stillData()
		if err != nil {
			return nil, err
		}
		return &stillPlayer{img: d.img}, nil
	case model.MediaGIF:
		d, err := h.gifData()
		if err != nil {
			return nil, err
		}
		return &gifPlayer{data: d}, nil
	case model.MediaVideo:
		return newVideoPlayer(h.Source.Path, h.reg.prober, fps, pacing)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, h.Source.Kind)
}

// generateHandleID uses UUID v7 so IDs sort by creation time
func generateHandleID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Sprintf(HandleIDPrefix+"%d", time.Now().UnixNano())
	}
	return HandleIDPrefix + id.String()
}
