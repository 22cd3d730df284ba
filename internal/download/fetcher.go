package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ytget/yt-mp3/internal/model"
	"github.com/ytget/yt-mp3/internal/platform"
	"github.com/ytget/yt-mp3/internal/progress"
)

// Fetch defaults
const (
	TempFilePrefix     = "tmp_"
	DefaultSettleDelay = time.Second
	copyBufferSize     = 32 * 1024
)

// Fetcher streams a resolved source into a temporary file
type Fetcher struct {
	opener StreamOpener
	settle time.Duration
	logger *zap.Logger
}

// NewFetcher creates a fetch stage reading through opener
func NewFetcher(opener StreamOpener, logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{
		opener: opener,
		settle: DefaultSettleDelay,
		logger: logger,
	}
}

// SetSettleDelay sets the pause between the final 100% event and return
func (f *Fetcher) SetSettleDelay(d time.Duration) {
	if d < 0 {
		d = 0
	}
	f.settle = d
}

// TempFileName returns "tmp_<sanitized title>.<ext>" for src
func TempFileName(src *model.ResolvedSource) string {
	ext := platform.SanitizeFilename(strings.TrimPrefix(src.Ext, "."))
	if ext == "" {
		ext = platform.DefaultAudioExt
	}
	return TempFilePrefix + platform.FileBaseName(src.Title, src.ID) + "." + ext
}

// Fetch downloads src into outputFolder. On failure the partially written
// temp file is left where it is.
func (f *Fetcher) Fetch(ctx context.Context, src *model.ResolvedSource, outputFolder string, reporter progress.Reporter) (*model.TempArtifact, error) {
	if reporter == nil {
		reporter = nopReporter{}
	}

	if err := platform.CreateDirectoryIfNotExists(outputFolder); err != nil {
		return nil, fmt.Errorf("%w: create output folder: %w", model.ErrSourceStream, err)
	}
	tempPath := filepath.Join(outputFolder, TempFileName(src))

	stream, total, err := f.opener.Open(ctx, src)
	if err != nil {
		return nil, wrapStreamError(err)
	}

	file, err := os.Create(tempPath)
	if err != nil {
		stream.Close()
		return nil, fmt.Errorf("%w: create temp file: %w", model.ErrSourceStream, err)
	}

	f.logger.Debug("fetch started",
		zap.String("source_id", src.ID),
		zap.String("temp_path", tempPath),
		zap.Int64("total_bytes", total),
	)

	counter := &countingWriter{w: file, total: total, reporter: reporter}
	written, copyErr := io.CopyBuffer(counter, stream, make([]byte, copyBufferSize))
	closeStreamErr := stream.Close()
	closeFileErr := file.Close()

	switch {
	case copyErr != nil:
		return nil, fmt.Errorf("%w: after %d bytes: %w", model.ErrSourceStream, written, copyErr)
	case closeStreamErr != nil:
		return nil, wrapStreamError(closeStreamErr)
	case closeFileErr != nil:
		return nil, fmt.Errorf("%w: close temp file: %w", model.ErrSourceStream, closeFileErr)
	}

	if total > 0 && written < total {
		f.logger.Warn("stream ended early",
			zap.String("source_id", src.ID),
			zap.Int64("written", written),
			zap.Int64("expected", total),
		)
	}

	reporter.Finish(100)
	f.logger.Info("fetch finished", zap.String("temp_path", tempPath), zap.Int64("bytes", written))

	if f.settle > 0 {
		select {
		case <-time.After(f.settle):
		case <-ctx.Done():
		}
	}

	return &model.TempArtifact{FilePath: tempPath}, nil
}

func wrapStreamError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, model.ErrSourceStream) {
		return err
	}
	return fmt.Errorf("%w: %w", model.ErrSourceStream, err)
}

// countingWriter writes through to w and reports floor(downloaded*100/total)
type countingWriter struct {
	w          io.Writer
	total      int64
	downloaded int64
	reporter   progress.Reporter
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.downloaded += int64(n)
	if c.total > 0 {
		c.reporter.Report(Percent(c.downloaded, c.total))
	}
	return n, err
}

// Percent returns floor(downloaded*100/total) clamped to [0,100]
func Percent(downloaded, total int64) int {
	if total <= 0 || downloaded <= 0 {
		return 0
	}
	p := downloaded * 100 / total
	if p > 100 {
		return 100
	}
	return int(p)
}

type nopReporter struct{}

func (nopReporter) Report(int) {}
func (nopReporter) Finish(int) {}
