package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// AppName is used for config, data and lock locations
const AppName = "yt-mp3"

// Environment variable names. Values from the process environment or a
// .env file in the working directory override the config file.
const (
	EnvConfigPath     = "YTMP3_CONFIG"
	EnvFFmpegPath     = "YTMP3_FFMPEG_PATH"
	EnvFFprobePath    = "YTMP3_FFPROBE_PATH"
	EnvYtDlpPath      = "YTMP3_YTDLP_PATH"
	EnvAutoInstall    = "YTMP3_AUTO_INSTALL_YTDLP"
	EnvAudioFormat    = "YTMP3_AUDIO_FORMAT"
	EnvLogLevel       = "YTMP3_LOG_LEVEL"
	EnvLogFile        = "YTMP3_LOG_FILE"
	EnvSettingsFile   = "YTMP3_SETTINGS_FILE"
	EnvHistoryDB      = "YTMP3_HISTORY_DB"
	EnvLockFile       = "YTMP3_LOCK_FILE"
	EnvDisplayDelayMS = "YTMP3_DISPLAY_DELAY_MS"
	EnvSettleDelayMS  = "YTMP3_SETTLE_DELAY_MS"
)

// Binaries contains the external tools the pipeline runs.
type Binaries struct {
	FFmpeg           string `toml:"ffmpeg"`
	FFprobe          string `toml:"ffprobe"`
	YtDlp            string `toml:"yt_dlp"`
	AutoInstallYtDlp bool   `toml:"auto_install_yt_dlp"`
}

// Paths contains file locations used by the application.
type Paths struct {
	SettingsFile string `toml:"settings_file"`
	HistoryDB    string `toml:"history_db"`
	LockFile     string `toml:"lock_file"`
}

// Logging contains configuration for log output.
type Logging struct {
	Level      string `toml:"level"`
	File       string `toml:"file"`
	Console    bool   `toml:"console"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
	Compress   bool   `toml:"compress"`
}

// Pipeline contains timing and source selection knobs.
type Pipeline struct {
	AudioFormat           string `toml:"audio_format"`
	ResolveTimeoutSeconds int    `toml:"resolve_timeout_seconds"`
	SettleDelayMS         int    `toml:"settle_delay_ms"`
	DisplayDelayMS        int    `toml:"display_delay_ms"`
}

// Config encapsulates all configuration values for yt-mp3.
//
// User preferences (bitrate, output folder) are not part of it; they live
// in the settings Store.
type Config struct {
	Binaries Binaries `toml:"binaries"`
	Paths    Paths    `toml:"paths"`
	Logging  Logging  `toml:"logging"`
	Pipeline Pipeline `toml:"pipeline"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	configDir := userDir(os.UserConfigDir, ".config")
	cacheDir := userDir(os.UserCacheDir, ".cache")

	return Config{
		Binaries: Binaries{
			FFmpeg: "ffmpeg",
			YtDlp:  "yt-dlp",
		},
		Paths: Paths{
			SettingsFile: filepath.Join(configDir, AppName, "settings.toml"),
			HistoryDB:    filepath.Join(configDir, AppName, "history.db"),
			LockFile:     filepath.Join(os.TempDir(), AppName+".lock"),
		},
		Logging: Logging{
			Level:      "info",
			File:       filepath.Join(cacheDir, AppName, "logs", AppName+".log"),
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		Pipeline: Pipeline{
			ResolveTimeoutSeconds: 60,
			SettleDelayMS:         1000,
			DisplayDelayMS:        2000,
		},
	}
}

// DefaultConfigPath returns the default configuration file location.
func DefaultConfigPath() string {
	return filepath.Join(userDir(os.UserConfigDir, ".config"), AppName, "config.toml")
}

// Load reads the config file at path (or the default location), applies
// environment overrides and validates the result. The returned bool
// reports whether a config file was found.
func Load(path string) (*Config, string, bool, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg := Default()

	if path == "" {
		path = getEnv(EnvConfigPath, DefaultConfigPath())
	}
	resolvedPath, err := expandPath(path)
	if err != nil {
		return nil, "", false, err
	}

	exists := true
	data, err := os.ReadFile(resolvedPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		exists = false
	case err != nil:
		return nil, "", false, fmt.Errorf("read config: %w", err)
	default:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func (c *Config) applyEnv() {
	c.Binaries.FFmpeg = getEnv(EnvFFmpegPath, c.Binaries.FFmpeg)
	c.Binaries.FFprobe = getEnv(EnvFFprobePath, c.Binaries.FFprobe)
	c.Binaries.YtDlp = getEnv(EnvYtDlpPath, c.Binaries.YtDlp)
	c.Binaries.AutoInstallYtDlp = getEnvBool(EnvAutoInstall, c.Binaries.AutoInstallYtDlp)
	c.Pipeline.AudioFormat = getEnv(EnvAudioFormat, c.Pipeline.AudioFormat)
	c.Logging.Level = getEnv(EnvLogLevel, c.Logging.Level)
	c.Logging.File = getEnv(EnvLogFile, c.Logging.File)
	c.Paths.SettingsFile = getEnv(EnvSettingsFile, c.Paths.SettingsFile)
	c.Paths.HistoryDB = getEnv(EnvHistoryDB, c.Paths.HistoryDB)
	c.Paths.LockFile = getEnv(EnvLockFile, c.Paths.LockFile)
	c.Pipeline.DisplayDelayMS = getEnvInt(EnvDisplayDelayMS, c.Pipeline.DisplayDelayMS)
	c.Pipeline.SettleDelayMS = getEnvInt(EnvSettleDelayMS, c.Pipeline.SettleDelayMS)
}

func (c *Config) normalize() error {
	var err error
	for _, p := range []*string{&c.Paths.SettingsFile, &c.Paths.HistoryDB, &c.Paths.LockFile, &c.Logging.File} {
		if *p, err = expandPath(strings.TrimSpace(*p)); err != nil {
			return err
		}
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if strings.TrimSpace(c.Binaries.FFmpeg) == "" {
		c.Binaries.FFmpeg = "ffmpeg"
	}
	if strings.TrimSpace(c.Binaries.YtDlp) == "" {
		c.Binaries.YtDlp = "yt-dlp"
	}
	return nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error; got %q", c.Logging.Level)
	}
	if c.Pipeline.ResolveTimeoutSeconds < 0 {
		return errors.New("pipeline.resolve_timeout_seconds must be >= 0")
	}
	if c.Pipeline.SettleDelayMS < 0 || c.Pipeline.DisplayDelayMS < 0 {
		return errors.New("pipeline delays must be >= 0")
	}
	return nil
}

// EnsureDirectories creates the parent directories of configured files.
func (c *Config) EnsureDirectories() error {
	for _, file := range []string{c.Paths.SettingsFile, c.Paths.HistoryDB, c.Paths.LockFile, c.Logging.File} {
		if file == "" {
			continue
		}
		dir := filepath.Dir(file)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// ResolveTimeout returns the metadata query timeout
func (c *Config) ResolveTimeout() time.Duration {
	return time.Duration(c.Pipeline.ResolveTimeoutSeconds) * time.Second
}

// SettleDelay returns the pause after a completed download
func (c *Config) SettleDelay() time.Duration {
	return time.Duration(c.Pipeline.SettleDelayMS) * time.Millisecond
}

// DisplayDelay returns how long the success state stays visible
func (c *Config) DisplayDelay() time.Duration {
	return time.Duration(c.Pipeline.DisplayDelayMS) * time.Millisecond
}

// Sample returns the TOML encoding of the default configuration.
func Sample() ([]byte, error) {
	return toml.Marshal(Default())
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

// getEnvInt gets an environment variable as int or returns a default value.
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func userDir(lookup func() (string, error), homeFallback string) string {
	if dir, err := lookup(); err == nil && dir != "" {
		return dir
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, homeFallback)
	}
	return os.TempDir()
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	absolute, err := filepath.Abs(filepath.Clean(pathValue))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", pathValue, err)
	}
	return absolute, nil
}
