package transcode

import (
	"context"

	"github.com/ytget/yt-mp3/internal/model"
	"github.com/ytget/yt-mp3/internal/progress"
)

// Transcoder defines the interface for the transcode stage.
type Transcoder interface {
	// Transcode encodes temp into outputFolder/fileName. durationSec is the
	// media duration if known, 0 otherwise.
	Transcode(ctx context.Context, temp *model.TempArtifact, outputFolder, fileName string, bitrateKbps int, durationSec float64, reporter progress.Reporter) (*model.OutputArtifact, error)
}
