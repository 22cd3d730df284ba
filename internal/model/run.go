package model

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// RunIDPrefix prefixes every generated run identifier
const RunIDPrefix = "run-"

// DownloadRequest is what the user submitted, fixed once the pipeline starts
type DownloadRequest struct {
	SourceURL    string
	OutputFolder string
	BitrateKbps  int
}

// ResolvedSource is the metadata extracted from a source URL
type ResolvedSource struct {
	ID          string
	Title       string            // raw title; sanitize before using in a path
	WebpageURL  string            // canonical page URL reported by the service
	StreamURL   string            // direct media URL of the selected audio format
	Ext         string            // container extension of the selected format
	Protocol    string            // transfer protocol of the selected format (https, m3u8_native, ...)
	Headers     map[string]string // HTTP headers required to fetch StreamURL
	DurationSec float64           // 0 if unknown
	SizeBytes   int64             // 0 if unknown
}

// TempArtifact is the intermediate downloaded media file
type TempArtifact struct {
	FilePath string
}

// OutputArtifact is the final MP3 file
type OutputArtifact struct {
	FolderPath string
	FileName   string
}

// Path returns the full path of the output file
func (o OutputArtifact) Path() string {
	return filepath.Join(o.FolderPath, o.FileName)
}

// ProgressState is what the progress sink displays
type ProgressState struct {
	Percent int    // 0 to 100
	Message string // status line
}

// Run records a single pass through the pipeline
type Run struct {
	ID          string
	URL         string
	Title       string
	State       State
	BitrateKbps int
	TempPath    string
	OutputPath  string
	LastError   string
	StartedAt   time.Time
	FinishedAt  time.Time
}

// NewRun creates a run record for the given URL
func NewRun(url string) *Run {
	return &Run{
		ID:        NewRunID(),
		URL:       url,
		State:     StateIdle,
		StartedAt: time.Now(),
	}
}

// NewRunID generates a unique run ID using UUID v7 so IDs sort by creation time
func NewRunID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Sprintf(RunIDPrefix+"%d", time.Now().UnixNano())
	}
	return RunIDPrefix + id.String()
}

// Elapsed returns how long the run took, or has taken so far
func (r *Run) Elapsed() time.Duration {
	if r.StartedAt.IsZero() {
		return 0
	}
	if r.FinishedAt.IsZero() {
		return time.Since(r.StartedAt)
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// GetElapsedString returns the elapsed time formatted as hh:mm:ss, or a dash placeholder if unknown
func (r *Run) GetElapsedString() string {
	secs := int(r.Elapsed().Seconds())
	if secs <= 0 {
		return "—"
	}

	hours := secs / 3600
	minutes := (secs % 3600) / 60
	seconds := secs % 60

	if hours > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}

// GetDisplayTitle returns title, output filename, or URL in order of preference
func (r *Run) GetDisplayTitle() string {
	if r.Title != "" && !strings.HasPrefix(r.Title, "http") {
		return r.Title
	}

	if r.OutputPath != "" {
		// Support both / and \ separators regardless of host OS
		parts := strings.FieldsFunc(r.OutputPath, func(c rune) bool {
			return c == '/' || c == '\\'
		})
		if len(parts) > 0 {
			filename := parts[len(parts)-1]
			if idx := strings.LastIndex(filename, "."); idx > 0 {
				filename = filename[:idx]
			}
			return filename
		}
	}

	return r.URL
}
