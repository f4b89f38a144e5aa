package model

import "math"

// Duration constants in seconds
const (
	// DefaultExportSeconds is used when nothing on the board animates.
	DefaultExportSeconds = 3.0

	// GIFMaxSeconds bounds palette-animation exports.
	GIFMaxSeconds = 15.0

	// VideoMaxSeconds bounds streaming video exports.
	VideoMaxSeconds = 30.0

	// VideoPlaceholderSeconds is assumed until a video is probed.
	VideoPlaceholderSeconds = 5.0

	// IndeterminateSeconds replaces an unknown or infinite probed duration.
	IndeterminateSeconds = 10.0

	// GIFPlaceholderSeconds is assumed until a GIF's frame delays are read.
	GIFPlaceholderSeconds = 6.0
)

// PlaceholderDuration returns the duration a freshly uploaded cell starts with.
func PlaceholderDuration(kind MediaKind) float64 {
	switch kind {
	case MediaVideo:
		return VideoPlaceholderSeconds
	case MediaGIF:
		return GIFPlaceholderSeconds
	}
	return 0
}

// AggregateDuration returns the export length for a set of cells: the longest
// animated duration capped at maxSeconds, or DefaultExportSeconds when no
// cell animates or none reports a usable duration.
func AggregateDuration(cells []CellState, maxSeconds float64) float64 {
	longest := 0.0
	for _, c := range cells {
		if !c.IsAnimated() {
			continue
		}
		d := c.DurationSeconds
		if math.IsNaN(d) || math.IsInf(d, 0) {
			d = IndeterminateSeconds
		}
		longest = math.Max(longest, d)
	}
	if longest <= 0 {
		return DefaultExportSeconds
	}
	if maxSeconds > 0 && longest > maxSeconds {
		return maxSeconds
	}
	return longest
}

// FrameCount returns round(seconds * fps), at least one frame.
func FrameCount(seconds, fps float64) int {
	n := int(math.Round(seconds * fps))
	if n < 1 {
		return 1
	}
	return n
}
