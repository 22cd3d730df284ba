package ui

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/zap"

	"github.com/ytget/yt-mp3/internal/config"
	"github.com/ytget/yt-mp3/internal/model"
	"github.com/ytget/yt-mp3/internal/platform"
	"github.com/ytget/yt-mp3/internal/transcode"
)

// Submitter runs a conversion for a URL and blocks until it is over
type Submitter interface {
	Submit(ctx context.Context, rawURL string) (*model.Run, error)
}

// folderResult carries the outcome of a folder dialog across goroutines
type folderResult struct {
	path string
	ok   bool
	err  error
}

// RootUI represents the main UI structure. It is the progress sink,
// the folder chooser and the idle notifier of the pipeline.
type RootUI struct {
	window       fyne.Window
	settings     *config.Settings
	localization *Localization
	logger       *zap.Logger
	submitter    Submitter

	ctx    context.Context
	cancel context.CancelFunc

	urlEntry    *widget.Entry
	convertBtn  *widget.Button
	progressBar *widget.ProgressBar
	statusLabel *widget.Label
	folderLabel *widget.Label

	mu         sync.Mutex
	lastOutput string

	// do runs fn on the fyne main goroutine
	do func(fn func())
	// showFolderDialog opens a folder picker and reports the choice to done
	showFolderDialog func(defaultPath string, done func(path string, ok bool, err error))
	// popup shows a short transient message
	popup func(message string)
}

// NewRootUI creates and initializes the main UI. Conversions started from
// the window share a context that is cancelled when the window closes.
func NewRootUI(window fyne.Window, settings *config.Settings, localization *Localization, logger *zap.Logger) *RootUI {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())

	ui := &RootUI{
		window:       window,
		settings:     settings,
		localization: localization,
		logger:       logger,
		ctx:          ctx,
		cancel:       cancel,
		do:           fyne.Do,
	}
	ui.showFolderDialog = ui.openFolderDialog
	ui.popup = ui.showPopup

	window.SetTitle(localization.GetText(KeyAppTitle))
	window.SetOnClosed(cancel)

	ui.setupUI()
	return ui
}

// SetSubmitter connects the UI to the pipeline
func (ui *RootUI) SetSubmitter(submitter Submitter) {
	ui.submitter = submitter
}

// Close cancels any conversion started from this window
func (ui *RootUI) Close() {
	ui.cancel()
}

// setupUI creates and arranges all UI components
func (ui *RootUI) setupUI() {
	ui.createMenu()

	ui.urlEntry = widget.NewEntry()
	ui.urlEntry.SetPlaceHolder(ui.localization.GetText(KeyEnterURL))
	ui.urlEntry.Validator = validateURL
	ui.urlEntry.OnSubmitted = func(string) {
		ui.onConvertClick()
	}

	ui.convertBtn = widget.NewButton(ui.localization.GetText(KeyConvert), ui.onConvertClick)
	ui.convertBtn.Importance = widget.HighImportance

	settingsBtn := widget.NewButton(IconSettings, ui.onShowSettings)
	settingsBtn.Importance = widget.LowImportance

	topPanel := container.NewBorder(nil, nil, settingsBtn, ui.convertBtn, ui.urlEntry)

	ui.progressBar = widget.NewProgressBar()
	ui.progressBar.Max = 100

	ui.statusLabel = widget.NewLabel(ui.localization.GetText(KeyReady))
	ui.statusLabel.Alignment = fyne.TextAlignLeading
	ui.statusLabel.Truncation = fyne.TextTruncateEllipsis

	ui.folderLabel = widget.NewLabel(ui.settings.OutputFolder())
	ui.folderLabel.Truncation = fyne.TextTruncateEllipsis
	folderBtn := widget.NewButton(IconFolder, ui.onChangeFolder)
	folderBtn.Importance = widget.LowImportance
	folderRow := container.NewBorder(nil, nil, folderBtn, nil, ui.folderLabel)

	content := container.NewVBox(
		topPanel,
		ui.progressBar,
		ui.statusLabel,
		widget.NewSeparator(),
		folderRow,
	)

	ui.window.SetContent(container.NewPadded(content))
}

// createMenu creates the application menu
func (ui *RootUI) createMenu() {
	changeFolderItem := fyne.NewMenuItem(ui.localization.GetText(KeyChangeFolder), ui.onChangeFolder)
	showInFolderItem := fyne.NewMenuItem(ui.localization.GetText(KeyShowInFolder), ui.onRevealLastFile)
	playLastItem := fyne.NewMenuItem(ui.localization.GetText(KeyPlayLastFile), ui.onPlayLastFile)
	settingsItem := fyne.NewMenuItem(ui.localization.GetText(KeySettings), ui.onShowSettings)

	current := ui.settings.Bitrate()
	bitrateItems := make([]*fyne.MenuItem, 0, len(transcode.ValidBitrates))
	for _, kbps := range transcode.ValidBitrates {
		kbps := kbps
		item := fyne.NewMenuItem(fmt.Sprintf(BitrateLabelFormat, kbps), func() {
			ui.onBitrateChange(kbps)
		})
		item.Checked = kbps == current
		bitrateItems = append(bitrateItems, item)
	}
	bitrateItem := fyne.NewMenuItem(ui.localization.GetText(KeyBitrate), nil)
	bitrateItem.ChildMenu = fyne.NewMenu("", bitrateItems...)

	languageMenu := fyne.NewMenu(ui.localization.GetText(KeyLanguage))
	for _, code := range sortedKeys(ui.localization.GetAvailableLanguages()) {
		langCode := code
		langItem := fyne.NewMenuItem(ui.localization.GetAvailableLanguages()[code], func() {
			ui.onLanguageChange(langCode)
		})
		langItem.Checked = ui.localization.GetCurrentLanguage() == code
		languageMenu.Items = append(languageMenu.Items, langItem)
	}

	mainMenu := fyne.NewMainMenu(
		fyne.NewMenu(ui.localization.GetText(KeyFile), changeFolderItem, showInFolderItem, playLastItem),
		fyne.NewMenu(ui.localization.GetText(KeySettings), bitrateItem, settingsItem),
		languageMenu,
	)

	ui.window.SetMainMenu(mainMenu)
}

// onLanguageChange handles language change
func (ui *RootUI) onLanguageChange(langCode string) {
	ui.localization.SetLanguage(langCode)
	ui.settings.SetLanguage(langCode)
	ui.refreshUITexts()
	ui.createMenu()
}

// onBitrateChange persists a new bitrate. The run in flight keeps the
// bitrate it started with.
func (ui *RootUI) onBitrateChange(kbps int) {
	if err := transcode.ValidateBitrate(kbps); err != nil {
		ui.logger.Warn("rejected bitrate", zap.Int("bitrate", kbps), zap.Error(err))
		return
	}
	ui.settings.SetBitrate(kbps)
	ui.logger.Info("bitrate changed", zap.Int("bitrate", kbps))
	ui.createMenu()
}

// refreshUITexts updates all UI texts with current language
func (ui *RootUI) refreshUITexts() {
	ui.window.SetTitle(ui.localization.GetText(KeyAppTitle))
	ui.urlEntry.SetPlaceHolder(ui.localization.GetText(KeyEnterURL))
	ui.convertBtn.SetText(ui.localization.GetText(KeyConvert))
	if ui.convertBtn.Disabled() {
		return
	}
	ui.statusLabel.SetText(ui.localization.GetText(KeyReady))
}

// validateURL validates the entered URL
func validateURL(input string) error {
	if strings.TrimSpace(input) == "" {
		return nil // Empty is allowed
	}
	_, err := platform.ValidateURL(input)
	return err
}

// onConvertClick handles the convert button click
func (ui *RootUI) onConvertClick() {
	urlText := strings.TrimSpace(ui.urlEntry.Text)
	if urlText == "" {
		ui.popup(ui.localization.GetText(KeyPleaseEnterURL))
		return
	}
	if err := validateURL(urlText); err != nil {
		ui.popup(ui.localization.GetText(KeyInvalidURL))
		return
	}
	if ui.submitter == nil {
		return
	}

	ui.setControlsEnabled(false)
	ui.logger.Debug("submitting url", zap.String("url", urlText))

	go func() {
		run, err := ui.submitter.Submit(ui.ctx, urlText)
		ui.handleResult(run, err)
	}()
}

// handleResult reacts to a finished Submit call. Progress and the status
// line were already delivered through the sink.
func (ui *RootUI) handleResult(run *model.Run, err error) {
	switch {
	case err == nil:
		if run != nil && run.OutputPath != "" {
			ui.mu.Lock()
			ui.lastOutput = run.OutputPath
			ui.mu.Unlock()
		}
		ui.do(func() {
			ui.urlEntry.SetText("")
		})
	case errors.Is(err, model.ErrBusy):
		ui.popup(ui.localization.GetText(KeyBusy))
	case errors.Is(err, model.ErrInvalidInput):
		ui.popup(ui.localization.GetText(KeyInvalidURL))
	case errors.Is(err, model.ErrCancelled):
		ui.do(func() {
			ui.statusLabel.SetText(ui.localization.GetText(KeyCancelled))
		})
	default:
		ui.logger.Debug("conversion ended with error", zap.Error(err))
	}

	// Rejected submissions never reach Idle notification
	ui.do(func() {
		ui.setControlsEnabled(true)
	})
}

// setControlsEnabled toggles the URL entry and the convert button
func (ui *RootUI) setControlsEnabled(enabled bool) {
	if enabled {
		ui.urlEntry.Enable()
		ui.convertBtn.Enable()
		return
	}
	ui.urlEntry.Disable()
	ui.convertBtn.Disable()
}

// OnProgress updates the progress bar
func (ui *RootUI) OnProgress(percent int) {
	ui.do(func() {
		ui.progressBar.SetValue(float64(percent))
	})
}

// OnStatusMessage updates the status line
func (ui *RootUI) OnStatusMessage(text string) {
	ui.do(func() {
		ui.statusLabel.SetText(ui.localization.StatusText(text))
	})
}

// OnIdle resets the window for the next URL
func (ui *RootUI) OnIdle() {
	ui.do(func() {
		ui.progressBar.SetValue(0)
		ui.statusLabel.SetText(ui.localization.GetText(KeyReady))
		ui.folderLabel.SetText(ui.settings.OutputFolder())
		ui.setControlsEnabled(true)
	})
}

// PromptForFolder shows the folder dialog and waits for the user. It is
// called from the pipeline goroutine, never from the fyne main goroutine.
func (ui *RootUI) PromptForFolder(ctx context.Context, defaultPath string) (string, bool, error) {
	result := make(chan folderResult, 1)
	ui.do(func() {
		ui.showFolderDialog(defaultPath, func(path string, ok bool, err error) {
			result <- folderResult{path: path, ok: ok, err: err}
		})
	})

	select {
	case r := <-result:
		return r.path, r.ok, r.err
	case <-ctx.Done():
		return "", false, ctx.Err()
	}
}

// openFolderDialog opens the fyne folder picker at defaultPath when it exists
func (ui *RootUI) openFolderDialog(defaultPath string, done func(path string, ok bool, err error)) {
	folderDialog := dialog.NewFolderOpen(func(uri fyne.ListableURI, err error) {
		switch {
		case err != nil:
			done("", false, err)
		case uri == nil:
			done("", false, nil)
		default:
			done(uri.Path(), true, nil)
		}
	}, ui.window)

	if defaultPath != "" {
		if lister, err := storage.ListerForURI(storage.NewFileURI(defaultPath)); err == nil {
			folderDialog.SetLocation(lister)
		}
	}
	folderDialog.Show()
}

// onChangeFolder lets the user pick a new default output folder
func (ui *RootUI) onChangeFolder() {
	ui.showFolderDialog(ui.settings.OutputFolder(), func(path string, ok bool, err error) {
		if err != nil {
			ui.logger.Warn("folder dialog failed", zap.Error(err))
			return
		}
		if !ok {
			return
		}
		ui.settings.SetOutputFolder(path)
		ui.folderLabel.SetText(path)
		ui.logger.Info("output folder changed", zap.String("folder", path))
	})
}

// onRevealLastFile shows the last converted file in the system file manager
func (ui *RootUI) onRevealLastFile() {
	ui.withLastOutput("reveal", platform.OpenFileInManager)
}

// onPlayLastFile opens the last converted file in the default player
func (ui *RootUI) onPlayLastFile() {
	ui.withLastOutput("play", platform.OpenFileWithDefaultApp)
}

func (ui *RootUI) withLastOutput(action string, open func(string) error) {
	ui.mu.Lock()
	filePath := ui.lastOutput
	ui.mu.Unlock()

	if filePath == "" {
		ui.popup(ui.localization.GetText(KeyNoOutputYet))
		return
	}

	if err := open(filePath); err != nil {
		ui.logger.Warn(action+" file failed", zap.String("path", filePath), zap.Error(err))
		ui.popup(ui.localization.GetText(KeyErrorOpeningFile) + ": " + err.Error())
	}
}

// onShowSettings shows the settings dialog
func (ui *RootUI) onShowSettings() {
	ShowSettingsDialog(ui.window, ui.settings, ui.localization, func() {
		ui.localization.SetLanguage(ui.settings.Language())
		ui.refreshUITexts()
		ui.folderLabel.SetText(ui.settings.OutputFolder())
		ui.createMenu()
		ui.popup(ui.localization.GetText(KeySettingsSaved))
	})
}

// showPopup displays message over the window and hides it after PopupAutoHide
func (ui *RootUI) showPopup(message string) {
	ui.do(func() {
		popup := widget.NewPopUp(widget.NewLabel(message), ui.window.Canvas())
		popup.Show()
		time.AfterFunc(PopupAutoHide, func() {
			fyne.Do(popup.Hide)
		})
	})
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
