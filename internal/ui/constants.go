package ui

import "time"

// UI-wide constants to avoid magic numbers/strings scattered across the codebase.

// Icons (emojis/symbols)
const (
	IconSettings = "⚙"
	IconFolder   = "📁"
)

// Text fragments
const (
	BitrateLabelFormat = "%d kbps"
)

// Window sizing
const (
	WindowWidth  float32 = 560
	WindowHeight float32 = 200

	SettingsDialogWidth  float32 = 480
	SettingsDialogHeight float32 = 260
)

// Popup behavior
const (
	PopupAutoHide = 3 * time.Second
)
