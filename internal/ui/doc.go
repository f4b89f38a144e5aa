package ui

// Package ui contains the Fyne-based editor window. It wires layout and
// aspect pickers, the live preview, the per-cell panel and the export
// controls to the editing session. All UI strings are localized via
// Localization.
