// Package fetch imports remote clips into the media cache. Downloads run
// through yt-dlp (via github.com/lrstanley/go-ytdlp), then ffmpeg cuts the
// clip to the longest duration a video export can use.
package fetch
