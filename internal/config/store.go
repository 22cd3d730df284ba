package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"fyne.io/fyne/v2"
	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"
)

// Store persists scalar settings by key. Writes are synchronous and
// best-effort: a backend never surfaces storage failures to callers.
type Store interface {
	ReadSetting(key string) (string, bool)
	WriteSetting(key, value string)
}

// PreferencesStore keeps settings in the fyne application preferences
type PreferencesStore struct {
	prefs fyne.Preferences
}

// NewPreferencesStore creates a store backed by app preferences
func NewPreferencesStore(app fyne.App) *PreferencesStore {
	return &PreferencesStore{prefs: app.Preferences()}
}

// ReadSetting returns the stored value; an empty string counts as absent
func (s *PreferencesStore) ReadSetting(key string) (string, bool) {
	value := s.prefs.String(key)
	return value, value != ""
}

// WriteSetting stores value under key
func (s *PreferencesStore) WriteSetting(key, value string) {
	s.prefs.SetString(key, value)
}

// File permissions
const (
	settingsFilePermissions = 0o644
	settingsDirPermissions  = 0o755
)

// FileStore keeps settings in a flat TOML document on disk
type FileStore struct {
	mu     sync.Mutex
	path   string
	values map[string]string
	logger *zap.Logger
}

// OpenFileStore loads the settings file at path. A missing or unreadable
// file yields an empty store; the problem is logged, not returned.
func OpenFileStore(path string, logger *zap.Logger) *FileStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &FileStore{
		path:   path,
		values: make(map[string]string),
		logger: logger,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logger.Warn("read settings file", zap.String("path", path), zap.Error(err))
		}
		return s
	}
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		logger.Warn("parse settings file", zap.String("path", path), zap.Error(err))
		return s
	}
	for key, value := range raw {
		text, ok := scalarString(value)
		if !ok {
			logger.Warn("skip non-scalar setting", zap.String("path", path), zap.String("key", key))
			continue
		}
		s.values[key] = text
	}
	return s
}

// scalarString renders a decoded TOML scalar as text. Tables and arrays
// have no single-value form.
func scalarString(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case map[string]any, []any, nil:
		return "", false
	default:
		return fmt.Sprint(v), true
	}
}

// Path returns the location of the settings file
func (s *FileStore) Path() string {
	return s.path
}

// ReadSetting returns the value stored under key
func (s *FileStore) ReadSetting(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.values[key]
	return value, ok
}

// WriteSetting stores value under key and rewrites the file
func (s *FileStore) WriteSetting(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = value
	if err := s.flush(); err != nil {
		s.logger.Warn("write settings file",
			zap.String("path", s.path),
			zap.String("key", key),
			zap.Error(err),
		)
	}
}

// flush replaces the file atomically through a temp file in the same directory
func (s *FileStore) flush() error {
	data, err := toml.Marshal(s.values)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, settingsDirPermissions); err != nil {
		return fmt.Errorf("create settings directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".settings-*.toml")
	if err != nil {
		return fmt.Errorf("create temp settings file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp settings file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp settings file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp settings file: %w", err)
	}
	if err := os.Chmod(tmpName, settingsFilePermissions); err != nil {
		return fmt.Errorf("chmod settings file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace settings file: %w", err)
	}
	return nil
}
