package main

import (
	"fmt"
	"log"
	"path/filepath"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"

	"github.com/ytget/story-grid/internal/config"
	"github.com/ytget/story-grid/internal/editor"
	"github.com/ytget/story-grid/internal/export"
	"github.com/ytget/story-grid/internal/fetch"
	"github.com/ytget/story-grid/internal/media"
	"github.com/ytget/story-grid/internal/model"
	"github.com/ytget/story-grid/internal/platform"
	"github.com/ytget/story-grid/internal/ui"
)

// Version is set during build via -ldflags "-X main.version=X.Y.Z"
var version = "dev"

const (
	AppID   = "com.ytget.story-grid"
	AppName = "Story Grid"

	WindowWidth  = 960
	WindowHeight = 720
)

func main() {
	fmt.Printf("%s v%s starting...\n", AppName, version)

	myApp := app.NewWithID(AppID)
	myApp.Settings().SetTheme(ui.NewEditorTheme(fyne.CurrentDevice().IsMobile()))

	windowTitle := fmt.Sprintf("%s v%s", AppName, version)
	myWindow := myApp.NewWindow(windowTitle)
	myWindow.Resize(fyne.NewSize(WindowWidth, WindowHeight))

	settings := config.NewSettings(myApp)
	outputDir := settings.GetOutputDirectory()
	if err := platform.CreateDirectoryIfNotExists(outputDir); err != nil {
		fmt.Printf("failed to ensure output dir: %v\n", err)
	}

	cacheDir, err := platform.GetCacheDir()
	if err != nil {
		log.Fatalf("no cache directory: %v", err)
	}

	// A broken metadata cache only costs re-probing
	probeCache, err := media.OpenProbeCache(filepath.Join(cacheDir, "probe"))
	if err != nil {
		log.Printf("probe cache disabled: %v", err)
		probeCache = nil
	}
	registry := media.NewRegistry(media.NewProber(probeCache))

	sink := platform.NewSink(outputDir)
	exportSvc := export.NewService(sink, export.NewFFmpegFactory())

	board, err := model.NewBoard(settings.GetLayoutIndex(), settings.GetAspectIndex(), settings.GetExportConfig())
	if err != nil {
		log.Fatalf("failed to create board: %v", err)
	}
	session := editor.NewSession(registry, exportSvc, board, float64(settings.GetCanvasWidth()))

	importSvc := fetch.NewService(filepath.Join(cacheDir, "imports"))

	root := ui.NewRootUI(myWindow, myApp, settings, ui.Services{
		Session:   session,
		Importer:  importSvc,
		Sink:      sink,
		UploadDir: filepath.Join(cacheDir, "uploads"),
	})

	myWindow.SetOnClosed(func() {
		root.Close()
		session.Close()
	})

	myWindow.ShowAndRun()
}
