package fetch

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// FFmpeg constants for trimming
const (
	FFmpegCommand       = "ffmpeg"
	FFprobeCommand      = "ffprobe"
	FFprobeLogLevel     = "error"
	FFprobeShowEntries  = "format=duration"
	FFprobeOutputFormat = "csv=p=0"
	ProgressPipeTarget  = "pipe:2"
	ProgressTimePrefix  = "out_time_us="
	TrimmedSuffix       = "-clip"
)

// FFmpegTrimmer cuts clips with a stream copy, so no encoder is needed
type FFmpegTrimmer struct{}

// Trim keeps the first maxSeconds of path. Shorter clips are returned as is.
func (FFmpegTrimmer) Trim(ctx context.Context, path string, maxSeconds float64, progress func(float64)) (string, error) {
	duration, err := probeDuration(ctx, path)
	if err != nil {
		return "", err
	}
	if duration <= maxSeconds {
		return path, nil
	}

	output := TrimmedPath(path)
	cmd := exec.CommandContext(ctx, FFmpegCommand, BuildTrimArgs(path, output, maxSeconds)...)

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return "", fmt.Errorf("failed to create stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return "", fmt.Errorf("failed to start ffmpeg: %w", err)
	}

	monitorProgress(stderr, maxSeconds, progress)

	if err := cmd.Wait(); err != nil {
		os.Remove(output)
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("ffmpeg trim failed: %w", err)
	}
	os.Remove(path)
	return output, nil
}

// BuildTrimArgs builds the ffmpeg arguments for a stream-copy cut
func BuildTrimArgs(inputPath, outputPath string, seconds float64) []string {
	return []string{
		"-y",
		"-i", inputPath,
		"-t", strconv.FormatFloat(seconds, 'f', -1, 64),
		"-c", "copy",
		"-progress", ProgressPipeTarget,
		"-nostats",
		outputPath,
	}
}

// TrimmedPath returns the output path for a cut clip
func TrimmedPath(inputPath string) string {
	ext := filepath.Ext(inputPath)
	return strings.TrimSuffix(inputPath, ext) + TrimmedSuffix + ext
}

// probeDuration reads the container duration with ffprobe
func probeDuration(ctx context.Context, path string) (float64, error) {
	cmd := exec.CommandContext(ctx, FFprobeCommand, "-v", FFprobeLogLevel, "-show_entries", FFprobeShowEntries, "-of", FFprobeOutputFormat, path)
	output, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("failed to run ffprobe: %w", err)
	}
	duration, err := strconv.ParseFloat(strings.TrimSpace(string(output)), 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse duration: %w", err)
	}
	return duration, nil
}

// monitorProgress reports ffmpeg progress as a fraction of total seconds
func monitorProgress(stderr io.Reader, totalSeconds float64, progress func(float64)) {
	scanner := bufio.NewScanner(stderr)
	for scanner.Scan() {
		fraction, ok := ParseProgressLine(scanner.Text(), totalSeconds)
		if ok && progress != nil {
			progress(fraction)
		}
	}
}

// ParseProgressLine parses an out_time_us line into a 0..1 fraction
func ParseProgressLine(line string, totalSeconds float64) (float64, bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, ProgressTimePrefix) || totalSeconds <= 0 {
		return 0, false
	}
	us, err := strconv.ParseInt(strings.TrimPrefix(line, ProgressTimePrefix), 10, 64)
	if err != nil {
		return 0, false
	}
	fraction := float64(us) / 1000000.0 / totalSeconds
	if fraction > 1.0 {
		fraction = 1.0
	}
	if fraction < 0 {
		fraction = 0
	}
	return fraction, true
}
