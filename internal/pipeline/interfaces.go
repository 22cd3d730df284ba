package pipeline

import (
	"context"

	"github.com/ytget/yt-mp3/internal/model"
)

// Resolver turns a URL into source metadata
type Resolver interface {
	Resolve(ctx context.Context, rawURL string) (*model.ResolvedSource, error)
}

// FolderChooser asks the user where to write the output. ok is false when
// the user cancelled.
type FolderChooser interface {
	PromptForFolder(ctx context.Context, defaultPath string) (path string, ok bool, err error)
}

// Preferences is the subset of the settings store the pipeline reads and writes
type Preferences interface {
	Bitrate() int
	OutputFolder() string
	SetOutputFolder(dir string)
}

// Recorder stores finished runs
type Recorder interface {
	Record(ctx context.Context, run *model.Run) error
}

// IdleNotifier is told when the orchestrator is ready for the next URL
type IdleNotifier interface {
	OnIdle()
}
