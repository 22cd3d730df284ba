package ui

import (
	"testing"

	"fyne.io/fyne/v2/test"

	"github.com/ytget/yt-mp3/internal/config"
)

func newTestSettingsDialog(t *testing.T) (*SettingsDialog, *config.Settings, *bool) {
	t.Helper()

	app := test.NewApp()
	t.Cleanup(app.Quit)
	window := test.NewWindow(nil)
	t.Cleanup(window.Close)

	settings := config.NewSettings(config.NewPreferencesStore(app))
	saved := false
	sd := NewSettingsDialog(settings, NewLocalization(), window, func() { saved = true })
	return sd, settings, &saved
}

func TestSettingsDialog_LoadCurrentSettings(t *testing.T) {
	sd, settings, _ := newTestSettingsDialog(t)
	folder := t.TempDir()
	settings.SetOutputFolder(folder)
	settings.SetBitrate(256)

	sd.loadCurrentSettings()

	if sd.outputDirEntry.Text != folder {
		t.Errorf("Expected folder %q, got %q", folder, sd.outputDirEntry.Text)
	}
	if sd.bitrateSelect.Selected != "256" {
		t.Errorf("Expected bitrate 256 selected, got %q", sd.bitrateSelect.Selected)
	}
	if sd.languageSelect.Selected != "English" {
		t.Errorf("Expected English selected, got %q", sd.languageSelect.Selected)
	}
}

func TestSettingsDialog_Save(t *testing.T) {
	sd, settings, saved := newTestSettingsDialog(t)
	folder := t.TempDir()

	sd.outputDirEntry.SetText(folder)
	sd.bitrateSelect.SetSelected("320")
	sd.languageSelect.SetSelected("Português")
	sd.onSave(true)

	if !*saved {
		t.Error("Expected onSaved callback")
	}
	if settings.OutputFolder() != folder {
		t.Errorf("Expected folder %q, got %q", folder, settings.OutputFolder())
	}
	if settings.Bitrate() != 320 {
		t.Errorf("Expected bitrate 320, got %d", settings.Bitrate())
	}
	if settings.Language() != "pt" {
		t.Errorf("Expected language pt, got %q", settings.Language())
	}
}

func TestSettingsDialog_CancelKeepsSettings(t *testing.T) {
	sd, settings, saved := newTestSettingsDialog(t)
	settings.SetBitrate(128)

	sd.bitrateSelect.SetSelected("320")
	sd.onSave(false)

	if *saved {
		t.Error("onSaved must not run on cancel")
	}
	if settings.Bitrate() != 128 {
		t.Errorf("Expected bitrate to stay 128, got %d", settings.Bitrate())
	}
}

func TestSettingsDialog_EmptyFolderIgnored(t *testing.T) {
	sd, settings, _ := newTestSettingsDialog(t)
	folder := t.TempDir()
	settings.SetOutputFolder(folder)

	sd.outputDirEntry.SetText("   ")
	sd.onSave(true)

	if settings.OutputFolder() != folder {
		t.Errorf("Expected folder to stay %q, got %q", folder, settings.OutputFolder())
	}
}
