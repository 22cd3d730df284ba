package main

import (
	"context"
	"fmt"
	"os"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"
	"go.uber.org/zap"

	"github.com/ytget/yt-mp3/internal/app"
	"github.com/ytget/yt-mp3/internal/config"
	"github.com/ytget/yt-mp3/internal/platform"
	"github.com/ytget/yt-mp3/internal/ui"
)

// Version is set during build via -ldflags "-X main.version=X.Y.Z"
var version = "dev"

const (
	AppID   = "com.ytget.yt-mp3"
	AppName = "YT to MP3"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "yt-mp3: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, cfgPath, _, err := config.Load("")
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	log, err := app.NewLogger(cfg, true)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	log.Info("yt-mp3 starting", zap.String("version", version), zap.String("config", cfgPath))

	myApp := fyneapp.NewWithID(AppID)

	myWindow := myApp.NewWindow(AppName)
	myWindow.Resize(fyne.NewSize(ui.WindowWidth, ui.WindowHeight))

	settings := config.NewSettings(config.NewPreferencesStore(myApp))
	if err := platform.CreateDirectoryIfNotExists(settings.OutputFolder()); err != nil {
		log.Warn("failed to ensure output folder", zap.String("folder", settings.OutputFolder()), zap.Error(err))
	}

	localization := ui.NewLocalization()
	localization.SetLanguage(settings.Language())

	components, err := app.Open(context.Background(), cfg, log)
	if err != nil {
		return err
	}
	defer components.Close()

	rootUI := ui.NewRootUI(myWindow, settings, localization, log.Named("ui"))
	orchestrator, err := components.Orchestrator(app.Frontend{
		Preferences: settings,
		Chooser:     rootUI,
		Sink:        rootUI,
		Idle:        rootUI,
	})
	if err != nil {
		return err
	}
	rootUI.SetSubmitter(orchestrator)

	myWindow.ShowAndRun()
	return nil
}
