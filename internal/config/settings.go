package config

import (
	"strconv"
	"strings"

	"github.com/ytget/yt-mp3/internal/platform"
)

// Settings keys
const (
	KeyBitrate      = "bitrate"
	KeyOutputFolder = "output_folder"
	KeyLanguage     = "language"
)

// Default values
const (
	DefaultBitrate  = 160
	DefaultLanguage = "system"
)

// SupportedLanguages are the accepted values of the language setting
var SupportedLanguages = []string{DefaultLanguage, "en", "ru", "pt"}

// ResolveSetting returns stored when it holds a value, fallback otherwise
func ResolveSetting(stored string, ok bool, fallback string) string {
	if !ok || strings.TrimSpace(stored) == "" {
		return fallback
	}
	return stored
}

// ResolveBitrate parses a stored bitrate. Absent, malformed and
// non-positive values resolve to DefaultBitrate.
func ResolveBitrate(stored string, ok bool) int {
	if !ok {
		return DefaultBitrate
	}
	value, err := strconv.Atoi(strings.TrimSpace(stored))
	if err != nil || value <= 0 {
		return DefaultBitrate
	}
	return value
}

// Settings exposes the user preferences on top of a Store
type Settings struct {
	store Store
}

// NewSettings creates a new settings manager
func NewSettings(store Store) *Settings {
	return &Settings{store: store}
}

// Bitrate returns the configured MP3 bitrate in kbps
func (s *Settings) Bitrate() int {
	return ResolveBitrate(s.store.ReadSetting(KeyBitrate))
}

// SetBitrate persists the MP3 bitrate
func (s *Settings) SetBitrate(kbps int) {
	s.store.WriteSetting(KeyBitrate, strconv.Itoa(kbps))
}

// OutputFolder returns the configured output folder, defaulting to the
// platform downloads directory
func (s *Settings) OutputFolder() string {
	stored, ok := s.store.ReadSetting(KeyOutputFolder)
	return ResolveSetting(stored, ok, platform.DefaultOutputFolder())
}

// SetOutputFolder persists the output folder
func (s *Settings) SetOutputFolder(dir string) {
	s.store.WriteSetting(KeyOutputFolder, dir)
}

// Language returns the UI language code, or "system"
func (s *Settings) Language() string {
	stored, ok := s.store.ReadSetting(KeyLanguage)
	return ResolveSetting(stored, ok, DefaultLanguage)
}

// SetLanguage persists the UI language code
func (s *Settings) SetLanguage(lang string) {
	s.store.WriteSetting(KeyLanguage, lang)
}
