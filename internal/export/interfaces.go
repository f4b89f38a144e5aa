package export

import (
	"context"
	"image"

	"github.com/ytget/story-grid/internal/media"
	"github.com/ytget/story-grid/internal/model"
)

// Exporter defines the interface for the export service.
type Exporter interface {
	SetUpdateCallback(func(*model.ExportTask))
	Start(format model.ExportFormat, job Job) (*model.ExportTask, error)
	StopExport(taskID string) error
	GetTask(taskID string) (*model.ExportTask, bool)
	Busy() bool
}

// Sink delivers a finished file and reports where it ended up.
type Sink interface {
	Deliver(ctx context.Context, name, mimeType string, data []byte) (string, error)
}

// Encoder consumes raw frames and produces an encoded stream.
type Encoder interface {
	WriteFrame(frame *image.RGBA) error
	// Close flushes the stream and returns the encoded bytes.
	Close() ([]byte, error)
	// Abort discards the stream.
	Abort()
}

// EncoderFactory negotiates a codec and starts encoders for it.
type EncoderFactory interface {
	Negotiate(ctx context.Context) (Codec, error)
	NewEncoder(ctx context.Context, codec Codec, width, height int, fps float64) (Encoder, error)
}

// PlayerOpener opens a fresh playback cursor for a populated cell.
type PlayerOpener func(cell model.CellState, fps float64, pacing media.Pacing) (media.Player, error)

// Job is everything an export needs: the board snapshot taken when the
// export was requested, the logical canvas size and a way to open players.
type Job struct {
	Board  model.Board
	Width  float64
	Height float64
	Open   PlayerOpener
}
