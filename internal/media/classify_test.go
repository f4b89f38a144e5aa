package media

import (
	"errors"
	"testing"

	"github.com/ytget/story-grid/internal/model"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		mime, name string
		want       model.MediaKind
		wantErr    bool
	}{
		{"image/jpeg", "a.jpg", model.MediaImage, false},
		{"image/png", "photo", model.MediaImage, false},
		{"image/gif", "anim", model.MediaGIF, false},
		{"", "Party.GIF", model.MediaGIF, false},
		{"application/octet-stream", "loop.gif", model.MediaGIF, false},
		{"video/mp4", "clip.mp4", model.MediaVideo, false},
		{"video/webm; codecs=vp9", "clip", model.MediaVideo, false},
		{"", "clip.mov", model.MediaVideo, false},
		{"", "notes.txt", "", true},
		{"application/pdf", "doc.pdf", "", true},
	}
	for _, tt := range tests {
		got, err := Classify(tt.mime, tt.name)
		if (err != nil) != tt.wantErr {
			t.Errorf("Classify(%q, %q) error = %v, wantErr %v", tt.mime, tt.name, err, tt.wantErr)
			continue
		}
		if err != nil && !errors.Is(err, ErrUnsupported) {
			t.Errorf("Classify(%q, %q) error %v is not ErrUnsupported", tt.mime, tt.name, err)
		}
		if got != tt.want {
			t.Errorf("Classify(%q, %q) = %q, want %q", tt.mime, tt.name, got, tt.want)
		}
	}
}

func TestSupportedExtensionsClassify(t *testing.T) {
	for _, ext := range SupportedExtensions() {
		if _, err := Classify("", "file"+ext); err != nil {
			t.Errorf("Offered extension %s is not classified: %v", ext, err)
		}
	}
}
