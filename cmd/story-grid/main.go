package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"syscall"

	"github.com/gogpu/gg"
	"github.com/spf13/cobra"

	"github.com/ytget/story-grid/internal/editor"
	"github.com/ytget/story-grid/internal/export"
	"github.com/ytget/story-grid/internal/fetch"
	"github.com/ytget/story-grid/internal/logs"
	"github.com/ytget/story-grid/internal/media"
	"github.com/ytget/story-grid/internal/model"
	"github.com/ytget/story-grid/internal/platform"
)

var (
	Version = "dev"

	// Command-line configuration
	config struct {
		layout  string
		aspect  string
		gap     float64
		radius  float64
		bg      string
		width   int
		format  string
		out     string
		verbose bool
	}
)

var rootCmd = &cobra.Command{
	Use:   "story-grid [flags] media...",
	Short: "Compose photos and clips into a story collage",
	Long: `story-grid lays images, GIFs and video clips out on a grid and exports
the collage as a PNG still, an animated GIF or a WebM/MP4 video.

Media fill the cells in order. http(s) arguments are fetched with yt-dlp
and cut to the first 30 seconds before they are placed.`,
	Version: Version,
	Args:    cobra.MinimumNArgs(1),
	RunE:    runStoryGrid,
}

func init() {
	rootCmd.Flags().StringVarP(&config.layout, "layout", "l", strconv.Itoa(model.DefaultLayoutIndex),
		"grid layout by catalog index or name, e.g. \"4 grid\"")
	rootCmd.Flags().StringVarP(&config.aspect, "aspect", "a", model.AspectRatios[0].Name,
		"aspect ratio such as 9:16, 1:1 or 4:5")
	rootCmd.Flags().Float64Var(&config.gap, "gap", model.DefaultExportConfig().Gap,
		"gap between cells in logical pixels")
	rootCmd.Flags().Float64Var(&config.radius, "radius", model.DefaultExportConfig().BorderRadius,
		"cell corner radius in logical pixels")
	rootCmd.Flags().StringVar(&config.bg, "bg", model.DefaultExportConfig().Background,
		"background color as #rrggbb")
	rootCmd.Flags().IntVarP(&config.width, "width", "w", 540,
		"logical canvas width")
	rootCmd.Flags().StringVarP(&config.format, "format", "f", "png",
		"export format: png, gif or video")
	rootCmd.Flags().StringVarP(&config.out, "out", "o", ".",
		"output directory")
	rootCmd.Flags().BoolVarP(&config.verbose, "verbose", "v", false,
		"verbose logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runStoryGrid(cmd *cobra.Command, args []string) error {
	if config.verbose {
		logs.SetVerbose(true)
		gg.SetLogger(slog.Default())
	}

	layoutIndex, err := parseIndex(config.layout, model.LayoutIndexByName, len(model.Layouts))
	if err != nil {
		return fmt.Errorf("layout: %w", err)
	}
	aspectIndex, err := parseIndex(config.aspect, model.AspectIndexByName, len(model.AspectRatios))
	if err != nil {
		return fmt.Errorf("aspect: %w", err)
	}
	format, err := model.ParseExportFormat(config.format)
	if err != nil {
		return err
	}
	if !model.ValidHexColor(config.bg) {
		return fmt.Errorf("background %q is not a #rrggbb color", config.bg)
	}

	board, err := model.NewBoard(layoutIndex, aspectIndex, model.ExportConfig{
		Gap:          config.gap,
		BorderRadius: config.radius,
		Background:   config.bg,
	})
	if err != nil {
		return err
	}
	if len(args) > len(board.Cells) {
		return fmt.Errorf("%d media for a %d-cell layout", len(args), len(board.Cells))
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	exporter := export.NewService(&platform.Sink{Dir: config.out}, export.NewFFmpegFactory())
	session := editor.NewSession(media.NewRegistry(media.NewProber(nil)), exporter, board, float64(config.width))
	defer session.Close()

	importDir := ""
	if slices.ContainsFunc(args, isURL) {
		importDir, err = os.MkdirTemp("", "story-grid-import-")
		if err != nil {
			return err
		}
		defer os.RemoveAll(importDir)
	}
	if err := fill(ctx, session, args, importDir); err != nil {
		return err
	}
	if err := session.WaitProbes(ctx); err != nil {
		return err
	}

	task, err := runExport(ctx, session, exporter, format)
	if err != nil {
		return err
	}
	fmt.Println(task.OutputPath)
	return nil
}

// fill places each argument into the next cell. URLs are imported into
// importDir first.
func fill(ctx context.Context, session *editor.Session, args []string, importDir string) error {
	var importer fetch.Importer
	for i, arg := range args {
		path := arg
		if isURL(arg) {
			if importer == nil {
				importer = fetch.NewService(importDir)
			}
			log.Printf("Importing %s", arg)
			task, err := importer.Import(ctx, arg)
			if err != nil {
				return fmt.Errorf("import %s: %w", arg, err)
			}
			path = task.OutputPath
		}
		if err := session.Upload(i, path, ""); err != nil {
			return fmt.Errorf("cell %d: %w", i+1, err)
		}
		logs.LogV("cell %d <- %s", i+1, filepath.Base(path))
	}
	return nil
}

// runExport starts the export and waits for its terminal state. An
// interrupt stops a running recording.
func runExport(ctx context.Context, session *editor.Session, exporter *export.Service, format model.ExportFormat) (*model.ExportTask, error) {
	finished := make(chan *model.ExportTask, 1)
	exporter.SetUpdateCallback(func(task *model.ExportTask) {
		switch {
		case task.Status == model.TaskStatusRecording:
			logs.LogV("export %s: %d%%", task.ID, task.Percent)
		case task.Status.IsFinished():
			select {
			case finished <- task:
			default:
			}
		}
	})

	task, err := session.Export(format)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, errors.New("nothing to export")
	}
	if !format.IsAnimated() {
		return task, nil
	}

	for {
		select {
		case done := <-finished:
			if done.ID != task.ID {
				continue
			}
			switch done.Status {
			case model.TaskStatusCompleted:
				return done, nil
			case model.TaskStatusStopped:
				return nil, context.Canceled
			default:
				return nil, errors.New(done.LastError)
			}
		case <-ctx.Done():
			if err := exporter.StopExport(task.ID); err != nil {
				log.Printf("stop export: %v", err)
			}
			ctx = context.Background()
		}
	}
}

// parseIndex accepts a catalog index or a name
func parseIndex(value string, byName func(string) int, n int) (int, error) {
	if i, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
		if i < 0 || i >= n {
			return 0, fmt.Errorf("index %d out of range [0,%d)", i, n)
		}
		return i, nil
	}
	if i := byName(value); i >= 0 {
		return i, nil
	}
	return 0, fmt.Errorf("unknown name %q", value)
}

func isURL(arg string) bool {
	return strings.HasPrefix(arg, "http://") || strings.HasPrefix(arg, "https://")
}
