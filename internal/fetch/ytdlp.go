package fetch

import (
	"context"
	"log"
	"path/filepath"
	"time"

	"github.com/lrstanley/go-ytdlp"
)

// yt-dlp settings
const (
	OutputTemplate   = "%(title)s.%(ext)s"
	ClipFormat       = "bv*[height<=1080]+ba/b[height<=1080]/b"
	ProgressInterval = 500 * time.Millisecond
	MaxRetries       = 1
	RetryBackoff     = 2 * time.Second
)

// YTDLP downloads with the yt-dlp binary
type YTDLP struct{}

// Download fetches url into dir, retrying once on failure.
func (YTDLP) Download(ctx context.Context, url, dir string, progress func(Progress)) (string, string, error) {
	dl := ytdlp.New().
		ForceOverwrites().
		RestrictFilenames().
		NoPlaylist().
		Format(ClipFormat).
		Output(filepath.Join(dir, OutputTemplate))

	var title string
	dl.ProgressFunc(ProgressInterval, func(update ytdlp.ProgressUpdate) {
		p := Progress{ETASec: -1}
		if update.TotalBytes > 0 {
			p.Percent = int(float64(update.DownloadedBytes) / float64(update.TotalBytes) * 100)
		}
		if eta := update.ETA(); eta > 0 {
			p.ETASec = int(eta.Seconds())
		}
		if update.Info != nil && update.Info.Title != nil {
			p.Title = *update.Info.Title
			title = p.Title
		}
		if progress != nil {
			progress(p)
		}
	})

	result, err := runWithRetry(ctx, dl, url)
	if err != nil {
		return "", "", err
	}

	info, err := result.GetExtractedInfo()
	if err != nil {
		return "", "", err
	}
	for _, item := range info {
		if item.Filename == nil || *item.Filename == "" {
			continue
		}
		if title == "" && item.Title != nil {
			title = *item.Title
		}
		return *item.Filename, title, nil
	}
	return "", "", ErrNoOutput
}

// runWithRetry attempts the download with a single backoff retry
func runWithRetry(ctx context.Context, dl *ytdlp.Command, url string) (*ytdlp.Result, error) {
	var lastErr error
	for attempt := 0; attempt <= MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(RetryBackoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			log.Printf("Retrying import of %s, attempt %d", url, attempt+1)
		}

		res, err := dl.Run(ctx, url)
		if err == nil {
			return res, nil
		}
		lastErr = err
		log.Printf("Import attempt %d failed for %s: %v", attempt+1, url, err)

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}
	return nil, lastErr
}
