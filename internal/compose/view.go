package compose

import (
	"image"
	"image/draw"

	xdraw "golang.org/x/image/draw"

	"github.com/ytget/story-grid/internal/geometry"
	"github.com/ytget/story-grid/internal/model"
)

// ViewScale is the supersampling factor of still snapshots.
const ViewScale = 2

// RenderView rasterizes the full editor view of a board on a w x h logical
// canvas at the given scale. Unlike Composite it honours each cell's fit
// mode, zoom, offset and filters, so it matches what the editor shows.
// images holds the current picture per cell index; nil entries are skipped.
func RenderView(b model.Board, images []image.Image, w, h, scale float64) *image.RGBA {
	if scale <= 0 {
		scale = 1
	}
	size := geometry.Rect{W: w, H: h}.Scaled(scale).Pixels()
	out := image.NewRGBA(size)
	draw.Draw(out, out.Bounds(), image.NewUniform(ParseColor(b.Config.Background)), image.Point{}, draw.Src)

	masks := newMaskCache()
	radius := b.Config.BorderRadius * scale
	for i, r := range geometry.Resolve(b.Layout(), w, h, b.Config.Gap) {
		if i >= len(images) || i >= len(b.Cells) || images[i] == nil || !b.Cells[i].HasMedia() {
			continue
		}
		cell := b.Cells[i]
		dst := r.Scaled(scale).Pixels().Intersect(out.Bounds())
		if dst.Empty() {
			continue
		}
		tile := renderCell(cell, images[i], r.W, r.H, scale, dst.Size())
		if tile == nil {
			continue
		}
		if mask := masks.get(dst.Dx(), dst.Dy(), radius); mask != nil {
			xdraw.DrawMask(out, dst, tile, tile.Bounds().Min, mask, image.Point{}, xdraw.Over)
		} else {
			xdraw.Draw(out, dst, tile, tile.Bounds().Min, xdraw.Over)
		}
	}
	return out
}

// renderCell draws one cell's media into a transparent tile of size px,
// applying object-fit then "scale(s) translate(tx, ty)" about the centre.
func renderCell(cell model.CellState, img image.Image, cw, ch, scale float64, px image.Point) image.Image {
	src := img.Bounds()
	if src.Empty() {
		return nil
	}
	fx, fy, fw, fh := FitRect(cw, ch, float64(src.Dx()), float64(src.Dy()), cell.Fit != model.FitContain)
	s := cell.Scale()
	cx, cy := cw/2, ch/2
	placed := geometry.Rect{
		X: cx + s*(fx-cx+cell.OffsetX),
		Y: cy + s*(fy-cy+cell.OffsetY),
		W: s * fw,
		H: s * fh,
	}

	tile := image.NewRGBA(image.Rectangle{Max: px})
	xdraw.CatmullRom.Scale(tile, placed.Scaled(scale).Pixels(), img, src, xdraw.Over, nil)
	return ApplyFilters(tile, cell.Filters, scale*s)
}
