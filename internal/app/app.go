// Package app assembles the conversion pipeline from the loaded
// configuration. Both the desktop window and the command line build
// their orchestrator through it.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/ytget/yt-mp3/internal/config"
	"github.com/ytget/yt-mp3/internal/download"
	"github.com/ytget/yt-mp3/internal/history"
	"github.com/ytget/yt-mp3/internal/logger"
	"github.com/ytget/yt-mp3/internal/pipeline"
	"github.com/ytget/yt-mp3/internal/platform"
	"github.com/ytget/yt-mp3/internal/progress"
	"github.com/ytget/yt-mp3/internal/transcode"
)

// Components are the long-lived pieces shared by every run
type Components struct {
	Config     *config.Config
	Logger     *zap.Logger
	Resolver   *platform.Resolver
	Fetcher    *download.Fetcher
	Transcoder *transcode.Service
	History    *history.Store
}

// Frontend is what a user interface contributes to the orchestrator
type Frontend struct {
	Preferences pipeline.Preferences
	Chooser     pipeline.FolderChooser
	Sink        progress.Sink
	Idle        pipeline.IdleNotifier
}

// NewLogger builds the application logger from cfg
func NewLogger(cfg *config.Config, console bool) (*zap.Logger, error) {
	return logger.New(logger.Config{
		Level:      cfg.Logging.Level,
		Console:    console || cfg.Logging.Console,
		FilePath:   cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
		Compress:   cfg.Logging.Compress,
	})
}

// Open builds the pipeline stages and opens the run history. When the
// config asks for it, yt-dlp is installed first.
func Open(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Components, error) {
	if log == nil {
		log = zap.NewNop()
	}

	ytdlpPath := cfg.Binaries.YtDlp
	if cfg.Binaries.AutoInstallYtDlp {
		installed, err := platform.InstallYtDlp(ctx)
		if err != nil {
			return nil, err
		}
		log.Info("yt-dlp ready", zap.String("path", installed))
		ytdlpPath = installed
	}

	resolver := platform.NewResolver()
	resolver.SetTimeout(cfg.ResolveTimeout())
	resolver.SetFormat(cfg.Pipeline.AudioFormat)
	resolver.SetExecutable(ytdlpPath)

	opener := &download.AutoOpener{
		HTTP: &download.HTTPOpener{Client: http.DefaultClient},
		Command: &download.CommandOpener{
			Executable: ytdlpPath,
			Format:     resolver.Format(),
		},
	}
	fetcher := download.NewFetcher(opener, log.Named("download"))
	fetcher.SetSettleDelay(cfg.SettleDelay())

	transcoder := transcode.NewService(cfg.Binaries.FFmpeg, cfg.Binaries.FFprobe, log.Named("transcode"))

	store, err := history.Open(cfg.Paths.HistoryDB)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}

	return &Components{
		Config:     cfg,
		Logger:     log,
		Resolver:   resolver,
		Fetcher:    fetcher,
		Transcoder: transcoder,
		History:    store,
	}, nil
}

// Orchestrator wires the stages to a user interface
func (c *Components) Orchestrator(front Frontend) (*pipeline.Orchestrator, error) {
	if front.Preferences == nil || front.Chooser == nil {
		return nil, errors.New("app: preferences and folder chooser are required")
	}

	return pipeline.New(pipeline.Options{
		Resolver:     c.Resolver,
		Fetcher:      c.Fetcher,
		Transcoder:   c.Transcoder,
		Preferences:  front.Preferences,
		Chooser:      front.Chooser,
		Sink:         front.Sink,
		Recorder:     c.History,
		IdleNotifier: front.Idle,
		Logger:       c.Logger.Named("pipeline"),
		DisplayDelay: c.Config.DisplayDelay(),
		LockPath:     c.Config.Paths.LockFile,
	})
}

// Close releases the history database and flushes the logger
func (c *Components) Close() error {
	err := c.History.Close()
	_ = c.Logger.Sync()
	return err
}
