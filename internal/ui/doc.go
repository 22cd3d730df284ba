// Package ui contains the Fyne-based desktop user interface for the application.
// The window collects a URL, shows the pipeline's progress and status line,
// asks for the output folder and exposes the bitrate and folder preferences
// through its menu. All UI strings are localized via Localization.
package ui
