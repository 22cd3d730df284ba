package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/ytget/yt-mp3/internal/config"
	"github.com/ytget/yt-mp3/internal/model"
	"github.com/ytget/yt-mp3/internal/progress"
)

type testPrefs struct{ folder string }

func (p *testPrefs) Bitrate() int               { return config.DefaultBitrate }
func (p *testPrefs) OutputFolder() string       { return p.folder }
func (p *testPrefs) SetOutputFolder(dir string) { p.folder = dir }

type testChooser struct{}

func (testChooser) PromptForFolder(ctx context.Context, defaultPath string) (string, bool, error) {
	return defaultPath, true, nil
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()

	cfg := config.Default()
	cfg.Paths.HistoryDB = filepath.Join(dir, "history.db")
	cfg.Paths.LockFile = filepath.Join(dir, "yt-mp3.lock")
	cfg.Logging.File = filepath.Join(dir, "logs", "yt-mp3.log")
	cfg.Pipeline.DisplayDelayMS = 0
	cfg.Pipeline.SettleDelayMS = 0
	return &cfg
}

func TestOpen(t *testing.T) {
	cfg := testConfig(t)

	components, err := Open(context.Background(), cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer components.Close()

	if components.Resolver == nil || components.Fetcher == nil || components.Transcoder == nil {
		t.Fatal("Expected all pipeline stages to be built")
	}
	if components.History.Path() != cfg.Paths.HistoryDB {
		t.Errorf("Expected history at %s, got %s", cfg.Paths.HistoryDB, components.History.Path())
	}
	if _, err := os.Stat(cfg.Paths.HistoryDB); err != nil {
		t.Errorf("History database was not created: %v", err)
	}
}

func TestComponents_Orchestrator(t *testing.T) {
	components, err := Open(context.Background(), testConfig(t), nil)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer components.Close()

	if _, err := components.Orchestrator(Frontend{}); err == nil {
		t.Error("Expected error without preferences and chooser")
	}

	orch, err := components.Orchestrator(Frontend{
		Preferences: &testPrefs{folder: t.TempDir()},
		Chooser:     testChooser{},
		Sink:        progress.Discard,
	})
	if err != nil {
		t.Fatalf("Orchestrator failed: %v", err)
	}
	if orch.State() != model.StateIdle {
		t.Errorf("Expected idle orchestrator, got %s", orch.State())
	}
}

func TestNewLogger_WritesFile(t *testing.T) {
	cfg := testConfig(t)

	log, err := NewLogger(cfg, false)
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}
	log.Info("hello")
	_ = log.Sync()

	data, err := os.ReadFile(cfg.Logging.File)
	if err != nil {
		t.Fatalf("Log file was not written: %v", err)
	}
	if len(data) == 0 {
		t.Error("Log file is empty")
	}
}

func TestNewLogger_InvalidLevel(t *testing.T) {
	cfg := testConfig(t)
	cfg.Logging.Level = "loud"

	if _, err := NewLogger(cfg, false); err == nil {
		t.Error("Expected error for invalid level")
	}
}
