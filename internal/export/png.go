package export

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	"github.com/ytget/story-grid/internal/compose"
	"github.com/ytget/story-grid/internal/media"
)

// RenderPNG snapshots the full view at ViewScale, keeping fit, zoom and
// filters, and encodes it as PNG. A zero-sized canvas yields ErrNoSurface.
func RenderPNG(job Job, players []media.Player) ([]byte, error) {
	if job.Width <= 0 || job.Height <= 0 {
		return nil, ErrNoSurface
	}
	images := make([]image.Image, len(job.Board.Cells))
	for i, p := range players {
		if p != nil && i < len(images) {
			images[i] = p.Frame(0)
		}
	}
	img := compose.RenderView(job.Board, images, job.Width, job.Height, compose.ViewScale)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}
	return buf.Bytes(), nil
}
