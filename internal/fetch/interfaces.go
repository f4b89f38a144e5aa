package fetch

import (
	"context"

	"github.com/ytget/story-grid/internal/model"
)

// Importer defines the interface for the import service.
type Importer interface {
	SetUpdateCallback(func(*model.ImportTask))
	Import(ctx context.Context, url string) (*model.ImportTask, error)
	Start(url string) (*model.ImportTask, error)
	StopImport(id string) error
	GetTask(id string) (*model.ImportTask, bool)
}

// Progress is a single download progress report
type Progress struct {
	Percent int
	ETASec  int
	Title   string
}

// Downloader fetches one URL into dir and returns the written file.
type Downloader interface {
	Download(ctx context.Context, url, dir string, progress func(Progress)) (path, title string, err error)
}

// Trimmer shortens a clip to at most maxSeconds and returns the resulting path.
type Trimmer interface {
	Trim(ctx context.Context, path string, maxSeconds float64, progress func(float64)) (string, error)
}
