package media

// Package media owns uploaded resources: it classifies files, hands out
// registry handles that must be released by their owner, decodes still,
// GIF and video sources into per-consumer players, and probes metadata
// with ffprobe behind a compressed on-disk cache.
