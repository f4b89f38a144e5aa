package platform

import (
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// Operating system constants
const (
	OSDarwin  = "darwin"
	OSWindows = "windows"
	OSLinux   = "linux"
	OSAndroid = "android"
)

// File permissions
const (
	DefaultDirPermissions  = 0755
	DefaultFilePermissions = 0644
)

// Command constants
const (
	OpenCommand     = "open"
	ExplorerCommand = "explorer"
	XDGOpenCommand  = "xdg-open"
	CmdCommand      = "cmd"
	StartCommand    = "start"
	AMCommand       = "am"
)

// Command parameters
const (
	MacOSSelectFlag    = "-R"
	WindowsSelectParam = "/select,"
	WindowsCmdFlag     = "/c"
)

// Android locations and intents
const (
	AndroidDownloadsDir = "/sdcard/Download"
	AndroidDownloadsURI = "content://com.android.externalstorage.documents/root/primary/Download"
	ActionView          = "android.intent.action.VIEW"
	ActionSend          = "android.intent.action.SEND"
	ActionMediaScan     = "android.intent.action.MEDIA_SCANNER_SCAN_FILE"
	ExtraStream         = "android.intent.extra.STREAM"
	AppCacheDirName     = "story-grid"
)

// File manager names
var (
	LinuxFileManagers = []string{"nautilus", "dolphin", "thunar", "nemo", "pcmanfm"}
)

// IsAndroid reports whether the process runs on Android, including fyne
// apps that report linux but run as libdist.so.
func IsAndroid() bool {
	return runtime.GOOS == OSAndroid ||
		os.Getenv("ANDROID_DATA") != "" ||
		os.Getenv("ANDROID_ROOT") != "" ||
		os.Getenv("ANDROID_STORAGE") != "" ||
		filepath.Base(os.Args[0]) == "libdist.so"
}

// OpenFileInManager opens the file in the system file manager and highlights it
func OpenFileInManager(filePath string) error {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}
	if _, err := os.Stat(absPath); err != nil {
		return fmt.Errorf("file does not exist: %v", err)
	}

	if IsAndroid() {
		return openFileInManagerAndroid(absPath)
	}
	switch runtime.GOOS {
	case OSDarwin:
		return exec.Command(OpenCommand, MacOSSelectFlag, absPath).Run()
	case OSWindows:
		return exec.Command(ExplorerCommand, WindowsSelectParam, absPath).Run()
	case OSLinux:
		return openFileInManagerLinux(absPath)
	default:
		return fmt.Errorf("unsupported operating system: %s", runtime.GOOS)
	}
}

// openFileInManagerLinux opens directory containing file on Linux
// Note: File selection is not standardized on Linux, so we open the parent directory
func openFileInManagerLinux(filePath string) error {
	dir := filepath.Dir(filePath)

	if err := exec.Command(XDGOpenCommand, dir).Run(); err == nil {
		return nil
	}

	for _, fm := range LinuxFileManagers {
		if _, err := exec.LookPath(fm); err == nil {
			return exec.Command(fm, dir).Run()
		}
	}

	return fmt.Errorf("no suitable file manager found")
}

// openFileInManagerAndroid tries the Downloads root first, then the file's directory
func openFileInManagerAndroid(filePath string) error {
	attempts := [][]string{
		{"start", "-a", ActionView, "-d", AndroidDownloadsURI},
		{"start", "-a", ActionView, "-d", "file://" + filepath.Dir(filePath)},
		{"start", "-a", "android.settings.INTERNAL_STORAGE_SETTINGS"},
	}
	for _, args := range attempts {
		if err := exec.Command(AMCommand, args...).Run(); err == nil {
			return nil
		}
	}
	return fmt.Errorf("failed to open file in manager: no suitable file manager found")
}

// OpenFileWithDefaultApp opens the file with the default system application
func OpenFileWithDefaultApp(filePath, mimeType string) error {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}
	if _, err := os.Stat(absPath); err != nil {
		return fmt.Errorf("file does not exist: %v", err)
	}

	if IsAndroid() {
		args := []string{"start", "-a", ActionView, "-d", "file://" + absPath}
		if mimeType != "" {
			args = append(args, "-t", baseMime(mimeType))
		}
		return exec.Command(AMCommand, args...).Run()
	}
	switch runtime.GOOS {
	case OSDarwin:
		return exec.Command(OpenCommand, absPath).Run()
	case OSWindows:
		return exec.Command(CmdCommand, WindowsCmdFlag, StartCommand, "", absPath).Run()
	case OSLinux:
		return exec.Command(XDGOpenCommand, absPath).Run()
	default:
		return fmt.Errorf("unsupported operating system: %s", runtime.GOOS)
	}
}

// CreateDirectoryIfNotExists creates directory if it doesn't exist
func CreateDirectoryIfNotExists(dirPath string) error {
	if _, err := os.Stat(dirPath); os.IsNotExist(err) {
		return os.MkdirAll(dirPath, DefaultDirPermissions)
	}
	return nil
}

// GetHomeDownloadsDir returns the standard Downloads directory for the user
func GetHomeDownloadsDir() (string, error) {
	if IsAndroid() {
		// external storage keeps exports visible to the Gallery
		return AndroidDownloadsDir, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, "Downloads"), nil
}

// GetCacheDir returns the per-user cache directory for probe results and
// imported clips.
func GetCacheDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		base = os.TempDir()
	}
	return filepath.Join(base, AppCacheDirName), nil
}

// NotifyMediaScanner notifies Android media scanner about new media files
// This makes exported files appear in the Gallery app
func NotifyMediaScanner(filePath string) error {
	if !IsAndroid() {
		return nil
	}

	cmd := exec.Command(AMCommand, "broadcast", "-a", ActionMediaScan, "-d", "file://"+filePath)

	// don't block delivery on the broadcast
	go func() {
		if err := cmd.Run(); err != nil {
			log.Printf("Failed to notify media scanner about %s: %v", filePath, err)
		}
	}()

	return nil
}

// baseMime strips parameters such as ";codecs=vp9".
func baseMime(mimeType string) string {
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		return strings.TrimSpace(mimeType[:i])
	}
	return mimeType
}
