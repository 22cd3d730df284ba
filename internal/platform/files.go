package platform

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// DefaultDirPermissions is used for every directory the app creates
const DefaultDirPermissions = 0o755

// Directory names
const (
	DownloadsDirName         = "Downloads"
	FallbackDownloadsDirName = "downloads"
)

// LinuxFileManagers are tried in order when xdg-open cannot show a folder
var LinuxFileManagers = []string{"nautilus", "dolphin", "thunar", "nemo", "pcmanfm"}

// ErrUnsupportedOS is returned on systems without a known file manager command
var ErrUnsupportedOS = errors.New("unsupported operating system")

// OpenFileInManager shows the file in the system file manager. macOS and
// Windows select the file; Linux opens its folder.
func OpenFileInManager(filePath string) error {
	absPath, err := existingAbsPath(filePath)
	if err != nil {
		return err
	}

	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", "-R", absPath).Run()
	case "windows":
		return exec.Command("explorer", "/select,", absPath).Run()
	case "linux":
		return revealDirLinux(filepath.Dir(absPath))
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedOS, runtime.GOOS)
	}
}

func revealDirLinux(dir string) error {
	if err := exec.Command("xdg-open", dir).Run(); err == nil {
		return nil
	}

	for _, fm := range LinuxFileManagers {
		if _, err := exec.LookPath(fm); err == nil {
			return exec.Command(fm, dir).Run()
		}
	}
	return errors.New("no suitable file manager found")
}

// OpenFileWithDefaultApp opens the file with the application registered for it
func OpenFileWithDefaultApp(filePath string) error {
	absPath, err := existingAbsPath(filePath)
	if err != nil {
		return err
	}

	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", absPath).Run()
	case "windows":
		return exec.Command("cmd", "/c", "start", "", absPath).Run()
	case "linux":
		return exec.Command("xdg-open", absPath).Run()
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedOS, runtime.GOOS)
	}
}

func existingAbsPath(filePath string) (string, error) {
	if filePath == "" {
		return "", errors.New("file path is empty")
	}
	if _, err := os.Stat(filePath); err != nil {
		return "", fmt.Errorf("file does not exist: %w", err)
	}
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path: %w", err)
	}
	return absPath, nil
}

// CreateDirectoryIfNotExists creates dirPath and its parents when missing
func CreateDirectoryIfNotExists(dirPath string) error {
	if _, err := os.Stat(dirPath); errors.Is(err, os.ErrNotExist) {
		return os.MkdirAll(dirPath, DefaultDirPermissions)
	}
	return nil
}

// GetHomeDownloadsDir returns the standard Downloads directory for the user
func GetHomeDownloadsDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, DownloadsDirName), nil
}

// DefaultOutputFolder returns the platform downloads directory, or a
// directory under the system temp dir when the home directory is unknown.
func DefaultOutputFolder() string {
	dir, err := GetHomeDownloadsDir()
	if err != nil {
		return filepath.Join(os.TempDir(), FallbackDownloadsDirName)
	}
	return dir
}
