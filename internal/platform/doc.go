package platform

// Package platform contains OS integration glue: output and cache
// directories, reveal/open in the system file manager, Android media
// scanner and share intents, and the sink that delivers exported files.
