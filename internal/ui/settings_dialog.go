package ui

import (
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/ytget/yt-mp3/internal/config"
	"github.com/ytget/yt-mp3/internal/transcode"
)

// SettingsDialog represents the settings configuration dialog
type SettingsDialog struct {
	settings     *config.Settings
	localization *Localization
	window       fyne.Window
	dialog       *dialog.ConfirmDialog
	onSaved      func()

	// UI components
	outputDirEntry *widget.Entry
	bitrateSelect  *widget.Select
	languageSelect *widget.Select

	// language display name to code
	languageCodes map[string]string
}

// ShowSettingsDialog builds the settings dialog and shows it. onSaved runs
// after the settings were written.
func ShowSettingsDialog(window fyne.Window, settings *config.Settings, localization *Localization, onSaved func()) {
	NewSettingsDialog(settings, localization, window, onSaved).Show()
}

// NewSettingsDialog creates a new settings dialog
func NewSettingsDialog(settings *config.Settings, localization *Localization, window fyne.Window, onSaved func()) *SettingsDialog {
	sd := &SettingsDialog{
		settings:      settings,
		localization:  localization,
		window:        window,
		onSaved:       onSaved,
		languageCodes: make(map[string]string),
	}

	sd.createUI()
	return sd
}

// Show displays the settings dialog
func (sd *SettingsDialog) Show() {
	sd.loadCurrentSettings()
	sd.dialog.Show()
}

// createUI creates the settings dialog UI
func (sd *SettingsDialog) createUI() {
	l := sd.localization

	sd.outputDirEntry = widget.NewEntry()
	sd.outputDirEntry.SetPlaceHolder(l.GetText(KeyOutputFolder))
	browseDirBtn := widget.NewButton(l.GetText(KeyBrowse), sd.onBrowseDirectory)
	outputDirRow := container.NewBorder(nil, nil, nil, browseDirBtn, sd.outputDirEntry)

	bitrateOptions := make([]string, 0, len(transcode.ValidBitrates))
	for _, kbps := range transcode.ValidBitrates {
		bitrateOptions = append(bitrateOptions, strconv.Itoa(kbps))
	}
	sd.bitrateSelect = widget.NewSelect(bitrateOptions, nil)

	languageOptions := []string{}
	languages := l.GetAvailableLanguages()
	for _, code := range sortedKeys(languages) {
		languageOptions = append(languageOptions, languages[code])
		sd.languageCodes[languages[code]] = code
	}
	sd.languageSelect = widget.NewSelect(languageOptions, nil)

	form := widget.NewForm(
		widget.NewFormItem(l.GetText(KeyOutputFolder), outputDirRow),
		widget.NewFormItem(l.GetText(KeyBitrate)+" (kbps)", sd.bitrateSelect),
		widget.NewFormItem(l.GetText(KeyLanguage), sd.languageSelect),
	)

	sd.dialog = dialog.NewCustomConfirm(
		l.GetText(KeySettings),
		l.GetText(KeySave),
		l.GetText(KeyCancel),
		form,
		sd.onSave,
		sd.window,
	)

	sd.dialog.Resize(fyne.NewSize(SettingsDialogWidth, SettingsDialogHeight))
}

// loadCurrentSettings loads current settings into the UI
func (sd *SettingsDialog) loadCurrentSettings() {
	sd.outputDirEntry.SetText(sd.settings.OutputFolder())
	sd.bitrateSelect.SetSelected(strconv.Itoa(sd.settings.Bitrate()))

	languages := sd.localization.GetAvailableLanguages()
	if name, ok := languages[sd.localization.GetCurrentLanguage()]; ok {
		sd.languageSelect.SetSelected(name)
	}
}

// onBrowseDirectory handles directory browsing
func (sd *SettingsDialog) onBrowseDirectory() {
	dialog.ShowFolderOpen(func(uri fyne.ListableURI, err error) {
		if err != nil || uri == nil {
			return
		}
		sd.outputDirEntry.SetText(uri.Path())
	}, sd.window)
}

// onSave handles saving the settings
func (sd *SettingsDialog) onSave(confirmed bool) {
	if !confirmed {
		return
	}
	sd.apply()
	if sd.onSaved != nil {
		sd.onSaved()
	}
}

// apply writes the dialog's values. Empty or invalid values leave the
// stored setting untouched.
func (sd *SettingsDialog) apply() {
	if outputDir := strings.TrimSpace(sd.outputDirEntry.Text); outputDir != "" {
		sd.settings.SetOutputFolder(outputDir)
	}

	if sd.bitrateSelect.Selected != "" {
		if kbps, err := strconv.Atoi(sd.bitrateSelect.Selected); err == nil && transcode.ValidateBitrate(kbps) == nil {
			sd.settings.SetBitrate(kbps)
		}
	}

	if code, ok := sd.languageCodes[sd.languageSelect.Selected]; ok {
		sd.settings.SetLanguage(code)
	}
}
