package media

import (
	"context"
	"encoding/json"
	"fmt"
	"image/gif"
	"log"
	"math"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ytget/story-grid/internal/model"
)

// FFprobe constants for metadata reads
const (
	FFprobeCommand      = "ffprobe"
	FFprobeLogLevel     = "error"
	FFprobeShowEntries  = "stream=width,height:format=duration"
	FFprobeOutputFormat = "json"
	FFprobeVideoStream  = "v:0"
	probeTimeout        = 20 * time.Second
)

// Info is the metadata a cell needs from its media.
type Info struct {
	Width           int     `json:"width"`
	Height          int     `json:"height"`
	DurationSeconds float64 `json:"duration_seconds"`
	Indeterminate   bool    `json:"indeterminate,omitempty"`
}

// ProbeResult is delivered once on the channel returned by ProbeAsync.
type ProbeResult struct {
	HandleID string
	Info     Info
	Err      error
}

// Prober reads media metadata with ffprobe (GIFs are read natively) and
// remembers results in an optional cache.
type Prober struct {
	cache *ProbeCache

	mu       sync.Mutex
	inflight map[int]context.CancelFunc
	nextID   int
}

// NewProber creates a prober; cache may be nil.
func NewProber(cache *ProbeCache) *Prober {
	return &Prober{cache: cache, inflight: make(map[int]context.CancelFunc)}
}

// Cache returns the prober's cache, which may be nil.
func (p *Prober) Cache() *ProbeCache {
	return p.cache
}

// Probe reads the metadata of a handle's source.
func (p *Prober) Probe(ctx context.Context, h *Handle) (Info, error) {
	if h.Source.Kind == model.MediaGIF {
		return probeGIF(h.Source.Path)
	}
	return p.probeFile(ctx, h.Source.Path)
}

// ProbeAsync probes in the background and delivers exactly one result. The
// handle is released as soon as the metadata has been read, whatever the
// outcome, so callers must pass a handle opened only for probing.
func (p *Prober) ProbeAsync(ctx context.Context, h *Handle) <-chan ProbeResult {
	out := make(chan ProbeResult, 1)
	ctx, cancel := context.WithCancel(ctx)

	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.inflight[id] = cancel
	p.mu.Unlock()

	go func() {
		defer func() {
			p.mu.Lock()
			delete(p.inflight, id)
			p.mu.Unlock()
			cancel()
		}()
		info, err := p.Probe(ctx, h)
		if h.reg != nil {
			h.reg.Release(h.ID)
		}
		out <- ProbeResult{HandleID: h.ID, Info: info, Err: err}
		close(out)
	}()
	return out
}

// CancelAll aborts every background probe.
func (p *Prober) CancelAll() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := len(p.inflight)
	for id, cancel := range p.inflight {
		cancel()
		delete(p.inflight, id)
	}
	return n
}

func (p *Prober) probeFile(ctx context.Context, path string) (Info, error) {
	st, err := os.Stat(path)
	if err != nil {
		return Info{}, fmt.Errorf("failed to stat media: %w", err)
	}
	key := cacheKey(path, st)
	if p.cache != nil {
		if info, ok := p.cache.Get(key); ok {
			return info, nil
		}
	}

	cmd := exec.CommandContext(ctx, FFprobeCommand, BuildProbeArgs(path)...)
	output, err := cmd.Output()
	if err != nil {
		return Info{}, fmt.Errorf("failed to run ffprobe: %w", err)
	}
	info, err := ParseProbeOutput(output)
	if err != nil {
		return Info{}, err
	}
	if p.cache != nil {
		if err := p.cache.Put(key, info); err != nil {
			log.Printf("probe cache write failed: %v", err)
		}
	}
	return info, nil
}

// BuildProbeArgs builds the ffprobe arguments for the first video stream.
func BuildProbeArgs(path string) []string {
	return []string{
		"-v", FFprobeLogLevel,
		"-select_streams", FFprobeVideoStream,
		"-show_entries", FFprobeShowEntries,
		"-of", FFprobeOutputFormat,
		path,
	}
}

type probeOutput struct {
	Streams []struct {
		Width  int `json:"width"`
		Height int `json:"height"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// ParseProbeOutput decodes ffprobe's JSON. A missing, unparsable or
// non-finite duration is reported as indeterminate with a stand-in length.
func ParseProbeOutput(data []byte) (Info, error) {
	var out probeOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return Info{}, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}
	var info Info
	if len(out.Streams) > 0 {
		info.Width = out.Streams[0].Width
		info.Height = out.Streams[0].Height
	}
	d, err := strconv.ParseFloat(strings.TrimSpace(out.Format.Duration), 64)
	if err != nil || math.IsNaN(d) || math.IsInf(d, 0) || d <= 0 {
		info.Indeterminate = true
		info.DurationSeconds = model.IndeterminateSeconds
		return info, nil
	}
	info.DurationSeconds = d
	return info, nil
}

func probeGIF(path string) (Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return Info{}, fmt.Errorf("failed to open gif: %w", err)
	}
	defer f.Close()
	g, err := gif.DecodeAll(f)
	if err != nil {
		return Info{}, fmt.Errorf("failed to decode gif: %w", err)
	}
	info := Info{
		Width:           g.Config.Width,
		Height:          g.Config.Height,
		DurationSeconds: GIFDuration(g).Seconds(),
	}
	if len(g.Image) <= 1 {
		// a single frame never advances; keep the placeholder length
		info.DurationSeconds = model.GIFPlaceholderSeconds
	}
	return info, nil
}

func cacheKey(path string, st os.FileInfo) string {
	return fmt.Sprintf("%s|%d|%d", path, st.Size(), st.ModTime().UnixNano())
}
