// Package editor holds the editing session: the current board snapshot,
// the media registry behind its cells and the background metadata probes
// that patch durations in once they are known.
package editor
