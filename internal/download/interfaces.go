package download

import (
	"context"
	"io"

	"github.com/ytget/yt-mp3/internal/model"
	"github.com/ytget/yt-mp3/internal/progress"
)

// StreamOpener opens the media byte stream of a resolved source. total is
// the expected size in bytes, or 0 when unknown.
type StreamOpener interface {
	Open(ctx context.Context, src *model.ResolvedSource) (stream io.ReadCloser, total int64, err error)
}

// Downloader defines the interface of the fetch stage.
type Downloader interface {
	Fetch(ctx context.Context, src *model.ResolvedSource, outputFolder string, reporter progress.Reporter) (*model.TempArtifact, error)
}
