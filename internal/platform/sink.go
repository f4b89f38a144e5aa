package platform

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ShareFunc offers a file to the platform share sheet. An error means the
// share was unsupported or cancelled.
type ShareFunc func(ctx context.Context, path, mimeType string) error

// Sink delivers exported files. On mobile it stages the file and offers the
// share sheet first; whenever sharing is unavailable or fails the file is
// saved into the output directory instead.
type Sink struct {
	Dir        string
	StagingDir string
	Share      ShareFunc // nil disables sharing
}

// NewSink creates a sink saving into dir. Sharing is enabled on Android.
func NewSink(dir string) *Sink {
	s := &Sink{Dir: dir}
	if IsAndroid() {
		s.Share = AndroidShare
		if cache, err := GetCacheDir(); err == nil {
			s.StagingDir = filepath.Join(cache, "share")
		}
	}
	return s
}

// Deliver implements the export sink. It returns the path of the file the
// user ends up with.
func (s *Sink) Deliver(ctx context.Context, name, mimeType string, data []byte) (string, error) {
	name = filepath.Base(name)
	if s.Share != nil && s.StagingDir != "" {
		path, err := s.tryShare(ctx, name, mimeType, data)
		if err == nil {
			return path, nil
		}
		log.Printf("share unavailable, saving instead: %v", err)
	}
	return s.save(name, data)
}

func (s *Sink) tryShare(ctx context.Context, name, mimeType string, data []byte) (string, error) {
	if err := CreateDirectoryIfNotExists(s.StagingDir); err != nil {
		return "", err
	}
	path := filepath.Join(s.StagingDir, name)
	if err := os.WriteFile(path, data, DefaultFilePermissions); err != nil {
		return "", err
	}
	if err := s.Share(ctx, path, mimeType); err != nil {
		os.Remove(path)
		return "", err
	}
	return path, nil
}

func (s *Sink) save(name string, data []byte) (string, error) {
	if err := CreateDirectoryIfNotExists(s.Dir); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	path := UniquePath(filepath.Join(s.Dir, name))
	if err := os.WriteFile(path, data, DefaultFilePermissions); err != nil {
		return "", fmt.Errorf("failed to save %s: %w", name, err)
	}
	_ = NotifyMediaScanner(path)
	return path, nil
}

// UniquePath returns path, or path with " (n)" before the extension if a
// file with that name already exists.
func UniquePath(path string) string {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return path
	}
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s (%d)%s", base, i, ext)
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
	}
}

// AndroidShare opens the system share sheet for a file.
func AndroidShare(ctx context.Context, path, mimeType string) error {
	cmd := exec.CommandContext(ctx, AMCommand, "start",
		"-a", ActionSend,
		"-t", baseMime(mimeType),
		"--eu", ExtraStream, "file://"+path)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("share intent failed: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}
