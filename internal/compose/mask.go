package compose

import (
	"image"
	"sync"

	"github.com/gogpu/gg"
)

type maskKey struct {
	w, h   int
	radius float64
}

// maskCache keeps anti-aliased rounded-rect alpha masks by size; a board
// only ever needs one mask per distinct cell size.
type maskCache struct {
	mu    sync.Mutex
	masks map[maskKey]*image.Alpha
}

func newMaskCache() *maskCache {
	return &maskCache{masks: make(map[maskKey]*image.Alpha)}
}

// get returns nil for square corners so callers can skip masking.
func (c *maskCache) get(w, h int, radius float64) *image.Alpha {
	if radius <= 0 || w <= 0 || h <= 0 {
		return nil
	}
	k := maskKey{w, h, radius}
	c.mu.Lock()
	defer c.mu.Unlock()
	if m, ok := c.masks[k]; ok {
		return m
	}
	m := RoundedMask(w, h, radius)
	c.masks[k] = m
	return m
}

// RoundedMask rasterizes a w x h rounded rectangle into an alpha mask.
// The radius is limited to half the shorter side.
func RoundedMask(w, h int, radius float64) *image.Alpha {
	radius = min(radius, float64(min(w, h))/2)
	dc := gg.NewContext(w, h)
	defer dc.Close()
	dc.DrawRoundedRectangle(0, 0, float64(w), float64(h), radius)
	m := dc.AsMask()
	return &image.Alpha{
		Pix:    m.Data(),
		Stride: m.Width(),
		Rect:   image.Rect(0, 0, m.Width(), m.Height()),
	}
}
