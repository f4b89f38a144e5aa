package media

import (
	"errors"
	"fmt"
	"mime"
	"path/filepath"
	"slices"
	"strings"

	"github.com/ytget/story-grid/internal/model"
)

// ErrUnsupported is returned for files that are neither image nor video.
var ErrUnsupported = errors.New("unsupported media type")

var (
	videoExtensions = []string{".mp4", ".m4v", ".mov", ".webm", ".mkv", ".avi", ".3gp"}
	imageExtensions = []string{".jpg", ".jpeg", ".png", ".webp", ".bmp", ".tif", ".tiff"}
)

// SupportedExtensions lists the file extensions a file picker should offer.
func SupportedExtensions() []string {
	exts := make([]string, 0, len(videoExtensions)+len(imageExtensions)+1)
	exts = append(exts, imageExtensions...)
	exts = append(exts, ".gif")
	return append(exts, videoExtensions...)
}

// Classify maps a declared MIME type (or, when empty, the file extension)
// to a media kind. GIFs get their own kind because they animate.
func Classify(mimeType, name string) (model.MediaKind, error) {
	ext := strings.ToLower(filepath.Ext(name))
	if mimeType == "" {
		mimeType = mime.TypeByExtension(ext)
	}
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = mimeType[:i]
	}
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))

	switch {
	case strings.HasPrefix(mimeType, "video/"):
		return model.MediaVideo, nil
	case mimeType == "image/gif" || ext == ".gif":
		return model.MediaGIF, nil
	case strings.HasPrefix(mimeType, "image/"):
		return model.MediaImage, nil
	}
	// mime tables differ per OS; fall back to well-known extensions
	switch {
	case slices.Contains(videoExtensions, ext):
		return model.MediaVideo, nil
	case slices.Contains(imageExtensions, ext):
		return model.MediaImage, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupported, name)
}
