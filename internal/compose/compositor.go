package compose

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/gogpu/gg"
	xdraw "golang.org/x/image/draw"

	"github.com/ytget/story-grid/internal/geometry"
	"github.com/ytget/story-grid/internal/model"
)

// Layer is one occupied slot at a sampled instant. A nil Image means the
// media is not decoded yet and the slot shows background.
type Layer struct {
	Rect  geometry.Rect
	Image image.Image
}

// Compositor draws layers into a persistent surface. Each Composite call
// repaints the whole surface, so the result depends only on its arguments.
type Compositor struct {
	surface *image.RGBA
	scale   float64
	masks   *maskCache
	scratch map[image.Point]*image.RGBA
}

// NewCompositor creates a surface of w x h device pixels; layer rectangles
// are given in logical pixels and multiplied by scale.
func NewCompositor(w, h int, scale float64) *Compositor {
	if scale <= 0 {
		scale = 1
	}
	return &Compositor{
		surface: image.NewRGBA(image.Rect(0, 0, w, h)),
		scale:   scale,
		masks:   newMaskCache(),
		scratch: make(map[image.Point]*image.RGBA),
	}
}

// Surface returns the persistent surface.
func (c *Compositor) Surface() *image.RGBA {
	return c.surface
}

// ParseColor converts a #RRGGBB string, falling back to black.
func ParseColor(hex string) color.Color {
	if !model.ValidHexColor(hex) {
		return color.Black
	}
	return gg.Hex(hex).Color()
}

// Composite fills the background and draws every decoded layer in order,
// cover-cropped and clipped to a rounded rectangle.
func (c *Compositor) Composite(layers []Layer, cfg model.ExportConfig) *image.RGBA {
	draw.Draw(c.surface, c.surface.Bounds(), image.NewUniform(ParseColor(cfg.Background)), image.Point{}, draw.Src)
	radius := cfg.BorderRadius * c.scale
	for _, l := range layers {
		c.drawLayer(l, radius)
	}
	return c.surface
}

func (c *Compositor) drawLayer(l Layer, radius float64) {
	if l.Image == nil {
		return
	}
	dst := l.Rect.Scaled(c.scale).Pixels().Intersect(c.surface.Bounds())
	src := l.Image.Bounds()
	if dst.Empty() || src.Empty() {
		return
	}
	crop := CoverCrop(float64(dst.Dx()), float64(dst.Dy()), float64(src.Dx()), float64(src.Dy()))
	sr := crop.Rect(src.Min).Intersect(src)
	if sr.Empty() {
		return
	}

	tmp := c.scratchFor(dst.Size())
	xdraw.ApproxBiLinear.Scale(tmp, tmp.Bounds(), l.Image, sr, xdraw.Src, nil)
	mask := c.masks.get(dst.Dx(), dst.Dy(), radius)
	if mask == nil {
		xdraw.Draw(c.surface, dst, tmp, image.Point{}, xdraw.Over)
		return
	}
	xdraw.DrawMask(c.surface, dst, tmp, image.Point{}, mask, image.Point{}, xdraw.Over)
}

func (c *Compositor) scratchFor(size image.Point) *image.RGBA {
	if img, ok := c.scratch[size]; ok {
		return img
	}
	img := image.NewRGBA(image.Rectangle{Max: size})
	c.scratch[size] = img
	return img
}

// BoardLayers resolves the board's slots on a w x h logical canvas and
// pairs each with the image returned by frame for that cell index. Empty
// cells are omitted.
func BoardLayers(b model.Board, w, h float64, frame func(i int) image.Image) []Layer {
	rects := geometry.Resolve(b.Layout(), w, h, b.Config.Gap)
	layers := make([]Layer, 0, len(rects))
	for i, r := range rects {
		if i >= len(b.Cells) || !b.Cells[i].HasMedia() {
			continue
		}
		layers = append(layers, Layer{Rect: r, Image: frame(i)})
	}
	return layers
}
