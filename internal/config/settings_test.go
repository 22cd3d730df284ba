package config

import (
	"path/filepath"
	"testing"

	"fyne.io/fyne/v2/test"

	"github.com/ytget/yt-mp3/internal/platform"
)

// memoryStore is an in-memory Store for tests
type memoryStore map[string]string

func (m memoryStore) ReadSetting(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

func (m memoryStore) WriteSetting(key, value string) {
	m[key] = value
}

func TestResolveSetting(t *testing.T) {
	tests := []struct {
		name     string
		stored   string
		ok       bool
		fallback string
		expected string
	}{
		{name: "absent", stored: "", ok: false, fallback: "/default", expected: "/default"},
		{name: "empty", stored: "", ok: true, fallback: "/default", expected: "/default"},
		{name: "blank", stored: "  ", ok: true, fallback: "/default", expected: "/default"},
		{name: "stored", stored: "/music", ok: true, fallback: "/default", expected: "/music"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveSetting(tt.stored, tt.ok, tt.fallback); got != tt.expected {
				t.Errorf("ResolveSetting(%q, %v, %q) = %q, expected %q", tt.stored, tt.ok, tt.fallback, got, tt.expected)
			}
		})
	}
}

func TestResolveBitrate(t *testing.T) {
	tests := []struct {
		name     string
		stored   string
		ok       bool
		expected int
	}{
		{name: "absent", ok: false, expected: DefaultBitrate},
		{name: "valid", stored: "192", ok: true, expected: 192},
		{name: "padded", stored: " 320 ", ok: true, expected: 320},
		{name: "malformed", stored: "fast", ok: true, expected: DefaultBitrate},
		{name: "float", stored: "128.5", ok: true, expected: DefaultBitrate},
		{name: "zero", stored: "0", ok: true, expected: DefaultBitrate},
		{name: "negative", stored: "-64", ok: true, expected: DefaultBitrate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveBitrate(tt.stored, tt.ok); got != tt.expected {
				t.Errorf("ResolveBitrate(%q, %v) = %d, expected %d", tt.stored, tt.ok, got, tt.expected)
			}
		})
	}
}

func TestSettings_Bitrate(t *testing.T) {
	settings := NewSettings(memoryStore{})

	if got := settings.Bitrate(); got != DefaultBitrate {
		t.Errorf("Expected default bitrate %d, got %d", DefaultBitrate, got)
	}

	settings.SetBitrate(256)
	if got := settings.Bitrate(); got != 256 {
		t.Errorf("Expected bitrate 256, got %d", got)
	}
}

func TestSettings_OutputFolder(t *testing.T) {
	settings := NewSettings(memoryStore{})

	if got := settings.OutputFolder(); got != platform.DefaultOutputFolder() {
		t.Errorf("Expected default output folder %s, got %s", platform.DefaultOutputFolder(), got)
	}

	custom := filepath.Join(t.TempDir(), "music")
	settings.SetOutputFolder(custom)
	if got := settings.OutputFolder(); got != custom {
		t.Errorf("Expected output folder %s, got %s", custom, got)
	}
}

func TestSettings_Language(t *testing.T) {
	settings := NewSettings(memoryStore{})

	if got := settings.Language(); got != DefaultLanguage {
		t.Errorf("Expected default language %q, got %q", DefaultLanguage, got)
	}

	settings.SetLanguage("pt")
	if got := settings.Language(); got != "pt" {
		t.Errorf("Expected language pt, got %q", got)
	}
}

func TestSettings_PreferencesStore(t *testing.T) {
	app := test.NewApp()
	settings := NewSettings(NewPreferencesStore(app))

	if got := settings.Bitrate(); got != DefaultBitrate {
		t.Errorf("Expected default bitrate %d, got %d", DefaultBitrate, got)
	}

	settings.SetBitrate(192)
	if got := app.Preferences().String(KeyBitrate); got != "192" {
		t.Errorf("Expected preference value 192, got %q", got)
	}

	// A second settings view over the same preferences sees the value
	reopened := NewSettings(NewPreferencesStore(app))
	if got := reopened.Bitrate(); got != 192 {
		t.Errorf("Expected bitrate 192, got %d", got)
	}
}
