package transcode

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/ytget/yt-mp3/internal/model"
	"github.com/ytget/yt-mp3/internal/platform"
	"github.com/ytget/yt-mp3/internal/progress"
)

// FFmpeg constants for MP3 encoding
const (
	AudioCodec   = "libmp3lame"
	OutputFormat = "mp3"
	OutputExt    = ".mp3"

	// Executable and I/O constants
	FFmpegCommand       = "ffmpeg"
	FFprobeCommand      = "ffprobe"
	FFprobeLogLevel     = "error"
	FFprobeShowEntries  = "format=duration"
	FFprobeOutputFormat = "csv=p=0"
	ProgressPipeTarget  = "pipe:2"
	ProgressTimePrefix  = "out_time_us="
	ProgressStatePrefix = "progress="
)

// Progress limits. 99 is reserved for "encoded, awaiting cleanup".
const (
	MaxEncodePercent = 98
	DonePercent      = 99
	stderrTailLines  = 8
	maxStderrLine    = 1 << 20
)

var progressKeyValue = regexp.MustCompile(`^[a-z0-9_]+=\S*$`)

// ValidBitrates lists the MPEG-1 Layer III bitrates in kbps
var ValidBitrates = []int{32, 40, 48, 56, 64, 80, 96, 112, 128, 160, 192, 224, 256, 320}

// Service runs ffmpeg to produce MP3 files
type Service struct {
	ffmpegPath  string
	ffprobePath string
	logger      *zap.Logger
}

// NewService creates a transcode service. An empty ffmpegPath means
// "ffmpeg" on PATH; an empty ffprobePath is derived from ffmpegPath.
func NewService(ffmpegPath, ffprobePath string, logger *zap.Logger) *Service {
	if ffmpegPath == "" {
		ffmpegPath = FFmpegCommand
	}
	if ffprobePath == "" {
		ffprobePath = DeriveFFprobePath(ffmpegPath)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
		logger:      logger,
	}
}

// DeriveFFprobePath returns the ffprobe binary that sits next to ffmpegPath
func DeriveFFprobePath(ffmpegPath string) string {
	dir, base := filepath.Split(ffmpegPath)
	if !strings.Contains(base, FFmpegCommand) {
		return FFprobeCommand
	}
	return dir + strings.Replace(base, FFmpegCommand, FFprobeCommand, 1)
}

// ValidateBitrate reports whether kbps is a legal MP3 bitrate
func ValidateBitrate(kbps int) error {
	for _, b := range ValidBitrates {
		if b == kbps {
			return nil
		}
	}
	return fmt.Errorf("%w: unsupported bitrate %d kbps", model.ErrEncode, kbps)
}

// OutputFileName returns "<base>.mp3"
func OutputFileName(base string) string {
	return base + OutputExt
}

// Transcode encodes temp into outputFolder/fileName. On failure the
// partial output is removed and the temp file is left alone.
func (s *Service) Transcode(ctx context.Context, temp *model.TempArtifact, outputFolder, fileName string, bitrateKbps int, durationSec float64, reporter progress.Reporter) (*model.OutputArtifact, error) {
	if reporter == nil {
		reporter = nopReporter{}
	}
	if err := ValidateBitrate(bitrateKbps); err != nil {
		return nil, err
	}
	if _, err := os.Stat(temp.FilePath); err != nil {
		return nil, fmt.Errorf("%w: input file: %w", model.ErrEncode, err)
	}
	if err := platform.CreateDirectoryIfNotExists(outputFolder); err != nil {
		return nil, fmt.Errorf("%w: create output folder: %w", model.ErrEncode, err)
	}

	out := &model.OutputArtifact{FolderPath: outputFolder, FileName: fileName}
	outputPath := out.Path()

	if durationSec <= 0 {
		d, err := s.probeDuration(ctx, temp.FilePath)
		if err != nil {
			s.logger.Debug("duration unknown, reporting heartbeat only", zap.Error(err))
		}
		durationSec = d
	}

	args := BuildFFmpegArgs(temp.FilePath, outputPath, bitrateKbps)
	cmd := exec.CommandContext(ctx, s.ffmpegPath, args...)

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: stderr pipe: %w", model.ErrEncode, err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: start ffmpeg: %w", model.ErrEncode, err)
	}

	s.logger.Debug("ffmpeg started",
		zap.String("input", temp.FilePath),
		zap.String("output", outputPath),
		zap.Int("bitrate_kbps", bitrateKbps),
		zap.Float64("duration_sec", durationSec),
	)

	// The pipe must be drained before Wait
	tail, scanErr := monitorProgress(stderr, durationSec, reporter)
	if scanErr != nil {
		s.logger.Warn("read ffmpeg progress", zap.Error(scanErr))
	}
	if err := cmd.Wait(); err != nil {
		if rmErr := os.Remove(outputPath); rmErr != nil && !os.IsNotExist(rmErr) {
			s.logger.Warn("remove partial output", zap.String("path", outputPath), zap.Error(rmErr))
		}
		if len(tail) > 0 {
			return nil, fmt.Errorf("%w: ffmpeg: %w: %s", model.ErrEncode, err, strings.Join(tail, "; "))
		}
		return nil, fmt.Errorf("%w: ffmpeg: %w", model.ErrEncode, err)
	}

	reporter.Finish(DonePercent)
	s.logger.Info("transcode finished", zap.String("output", outputPath))
	return out, nil
}

// BuildFFmpegArgs builds the ffmpeg command arguments
func BuildFFmpegArgs(inputPath, outputPath string, bitrateKbps int) []string {
	return []string{
		"-y",            // Overwrite output file
		"-i", inputPath, // Input file
		"-vn",                  // Drop any video stream
		"-codec:a", AudioCodec, // Audio codec
		"-b:a", strconv.Itoa(bitrateKbps) + "k", // Audio bitrate
		"-f", OutputFormat, // Container
		"-progress", ProgressPipeTarget, // Progress to stderr
		"-nostats", // No stats output
		outputPath, // Output file
	}
}

// probeDuration gets the duration of a media file using ffprobe
func (s *Service) probeDuration(ctx context.Context, filePath string) (float64, error) {
	cmd := exec.CommandContext(ctx, s.ffprobePath, "-v", FFprobeLogLevel, "-show_entries", FFprobeShowEntries, "-of", FFprobeOutputFormat, filePath)
	output, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("failed to run ffprobe: %w", err)
	}

	duration, err := strconv.ParseFloat(strings.TrimSpace(string(output)), 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse duration: %w", err)
	}
	return duration, nil
}

// monitorProgress reads ffmpeg's stderr until EOF. With a known duration it
// reports a percent capped at MaxEncodePercent; without one it re-reports
// the last value at every progress block. It returns the last few
// non-progress lines for error messages. stderr is always read to EOF, even
// after a scan error, so ffmpeg never blocks on a full pipe.
func monitorProgress(stderr io.Reader, totalDuration float64, reporter progress.Reporter) ([]string, error) {
	scanner := bufio.NewScanner(stderr)
	scanner.Buffer(make([]byte, 0, 64*1024), maxStderrLine)
	current := 0
	var tail []string

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if us, ok := ParseOutTime(line); ok {
			if totalDuration > 0 {
				if p := EncodePercent(float64(us)/1e6, totalDuration); p > current {
					current = p
				}
			}
			continue
		}

		if strings.HasPrefix(line, ProgressStatePrefix) {
			reporter.Report(current)
			continue
		}

		if line != "" && !progressKeyValue.MatchString(line) {
			tail = append(tail, line)
			if len(tail) > stderrTailLines {
				tail = tail[1:]
			}
		}
	}

	if err := scanner.Err(); err != nil {
		_, _ = io.Copy(io.Discard, stderr)
		return tail, fmt.Errorf("scan ffmpeg stderr: %w", err)
	}
	return tail, nil
}

// ParseOutTime parses an "out_time_us=<n>" progress line
func ParseOutTime(line string) (int64, bool) {
	if !strings.HasPrefix(line, ProgressTimePrefix) {
		return 0, false
	}
	us, err := strconv.ParseInt(strings.TrimPrefix(line, ProgressTimePrefix), 10, 64)
	if err != nil || us < 0 {
		return 0, false
	}
	return us, true
}

// EncodePercent converts encoded seconds into a percent of totalSeconds,
// capped at MaxEncodePercent
func EncodePercent(encodedSeconds, totalSeconds float64) int {
	if totalSeconds <= 0 || encodedSeconds <= 0 {
		return 0
	}
	p := int(encodedSeconds / totalSeconds * 100)
	if p > MaxEncodePercent {
		return MaxEncodePercent
	}
	return p
}

type nopReporter struct{}

func (nopReporter) Report(int) {}
func (nopReporter) Finish(int) {}
