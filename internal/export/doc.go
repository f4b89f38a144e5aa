package export

// Package export turns a board snapshot into a PNG, GIF or video file. It
// hosts the export service with its single-export busy guard, the three
// orchestrators that drive the compositor, codec negotiation and the
// streaming ffmpeg encoder.
