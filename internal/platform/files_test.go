package platform

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCreateDirectoryIfNotExists(t *testing.T) {
	tempDir := t.TempDir()
	testDir := filepath.Join(tempDir, "test_dir")

	if _, err := os.Stat(testDir); !os.IsNotExist(err) {
		t.Fatalf("Test directory already exists: %s", testDir)
	}

	if err := CreateDirectoryIfNotExists(testDir); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}

	if _, err := os.Stat(testDir); os.IsNotExist(err) {
		t.Fatalf("Directory was not created: %s", testDir)
	}

	// Second call should not fail
	if err := CreateDirectoryIfNotExists(testDir); err != nil {
		t.Fatalf("Failed to handle existing directory: %v", err)
	}
}

func TestGetHomeDownloadsDir(t *testing.T) {
	if IsAndroid() {
		t.Skip("desktop layout only")
	}
	downloadsDir, err := GetHomeDownloadsDir()
	if err != nil {
		t.Fatalf("Failed to get downloads directory: %v", err)
	}
	if filepath.Base(downloadsDir) != "Downloads" {
		t.Errorf("Expected directory to end with 'Downloads', got: %s", downloadsDir)
	}
}

func TestGetCacheDir(t *testing.T) {
	dir, err := GetCacheDir()
	if err != nil {
		t.Fatalf("GetCacheDir error: %v", err)
	}
	if filepath.Base(dir) != AppCacheDirName {
		t.Errorf("cache dir %s should end with %s", dir, AppCacheDirName)
	}
}

func TestOpenFileInManager_NonExistentFile(t *testing.T) {
	err := OpenFileInManager(filepath.Join(t.TempDir(), "nonexistent.png"))
	if err == nil {
		t.Fatal("Expected error for non-existent file, got nil")
	}
	if !strings.Contains(err.Error(), "does not exist") {
		t.Errorf("Expected 'does not exist' error, got: %v", err)
	}
}

func TestUniquePath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "story-grid-1.png")
	if got := UniquePath(path); got != path {
		t.Errorf("UniquePath on free name = %s", got)
	}
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if got := UniquePath(path); got != filepath.Join(dir, "story-grid-1 (1).png") {
		t.Errorf("UniquePath on taken name = %s", got)
	}
}

func TestSinkSavesWithoutShare(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	sink := &Sink{Dir: dir}
	path, err := sink.Deliver(context.Background(), "story-grid-42.gif", "image/gif", []byte("GIF89a"))
	if err != nil {
		t.Fatalf("Deliver error: %v", err)
	}
	if path != filepath.Join(dir, "story-grid-42.gif") {
		t.Errorf("delivered to %s", path)
	}
	if data, _ := os.ReadFile(path); string(data) != "GIF89a" {
		t.Errorf("file content = %q", data)
	}
}

func TestSinkPrefersShare(t *testing.T) {
	root := t.TempDir()
	var shared string
	sink := &Sink{
		Dir:        filepath.Join(root, "out"),
		StagingDir: filepath.Join(root, "stage"),
		Share: func(_ context.Context, path, mimeType string) error {
			shared = path
			return nil
		},
	}
	path, err := sink.Deliver(context.Background(), "a.webm", "video/webm;codecs=vp9", []byte("data"))
	if err != nil {
		t.Fatal(err)
	}
	if path != shared || filepath.Dir(path) != sink.StagingDir {
		t.Errorf("path = %s, shared = %s", path, shared)
	}
	if _, err := os.Stat(sink.Dir); !os.IsNotExist(err) {
		t.Error("shared file should not also be saved")
	}
}

func TestSinkFallsBackWhenShareFails(t *testing.T) {
	root := t.TempDir()
	sink := &Sink{
		Dir:        filepath.Join(root, "out"),
		StagingDir: filepath.Join(root, "stage"),
		Share: func(context.Context, string, string) error {
			return errors.New("user cancelled")
		},
	}
	path, err := sink.Deliver(context.Background(), "a.png", "image/png", []byte("png"))
	if err != nil {
		t.Fatalf("share failure must not surface: %v", err)
	}
	if filepath.Dir(path) != sink.Dir {
		t.Errorf("fallback saved to %s", path)
	}
	if _, err := os.Stat(filepath.Join(sink.StagingDir, "a.png")); !os.IsNotExist(err) {
		t.Error("staged copy should be removed after a failed share")
	}
}

func TestBaseMime(t *testing.T) {
	if got := baseMime("video/webm;codecs=vp9"); got != "video/webm" {
		t.Errorf("baseMime = %s", got)
	}
	if got := baseMime("image/png"); got != "image/png" {
		t.Errorf("baseMime = %s", got)
	}
}
