package platform

import (
	"context"
	"fmt"

	"github.com/lrstanley/go-ytdlp"
)

// InstallYtDlp makes sure a usable yt-dlp binary is available, downloading
// it into the go-ytdlp cache when none is found on the system. It returns
// the path of the binary.
func InstallYtDlp(ctx context.Context) (string, error) {
	resolved, err := ytdlp.Install(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("install yt-dlp: %w", err)
	}
	return resolved.Executable, nil
}
