package platform

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lrstanley/go-ytdlp"

	"github.com/ytget/yt-mp3/internal/model"
)

// Timeout constants
const (
	DefaultResolveTimeout = 60 * time.Second
)

// Format selection: audio-only, best quality, m4a preferred so the temp
// file has a container ffmpeg always understands.
const (
	DefaultAudioFormat = "bestaudio[ext=m4a]/bestaudio"
	DefaultAudioExt    = "m4a"
)

// Availability values reported by yt-dlp for content the user cannot fetch
var (
	RestrictedAvailability = []string{"private", "premium_only", "subscriber_only", "needs_auth"}
)

// yt-dlp error fragments that mean the content itself is gone or restricted
var (
	UnavailableMarkers = []string{
		"video unavailable",
		"private video",
		"has been removed",
		"is not available",
		"members-only",
		"sign in to confirm your age",
		"account associated with this video has been terminated",
		"this live event will begin",
	}
)

// dumpFunc runs a metadata query and returns yt-dlp's JSON output
type dumpFunc func(ctx context.Context, url, format string) (string, error)

// Resolver turns a source URL into ResolvedSource metadata using yt-dlp
type Resolver struct {
	timeout    time.Duration
	format     string
	executable string
	dump       dumpFunc
}

// NewResolver creates a new resolver
func NewResolver() *Resolver {
	r := &Resolver{
		timeout: DefaultResolveTimeout,
		format:  DefaultAudioFormat,
	}
	r.dump = r.dumpJSON
	return r
}

// SetExecutable points the resolver at a specific yt-dlp binary. An empty
// path lets go-ytdlp find one on PATH or in its cache.
func (r *Resolver) SetExecutable(path string) {
	r.executable = path
}

// SetTimeout sets the timeout for metadata queries
func (r *Resolver) SetTimeout(timeout time.Duration) {
	r.timeout = timeout
}

// SetFormat sets the yt-dlp format selector
func (r *Resolver) SetFormat(format string) {
	if format == "" {
		format = DefaultAudioFormat
	}
	r.format = format
}

// Format returns the yt-dlp format selector in use
func (r *Resolver) Format() string {
	return r.format
}

// Resolve validates rawURL, extracts its canonical ID and fetches metadata
func (r *Resolver) Resolve(ctx context.Context, rawURL string) (*model.ResolvedSource, error) {
	u, err := ValidateURL(rawURL)
	if err != nil {
		return nil, err
	}

	target := u.String()
	var canonicalID string
	if IsYouTubeURL(u) {
		canonicalID, err = ExtractVideoID(rawURL)
		if err != nil {
			return nil, err
		}
		// Drops list= and friends so yt-dlp never expands a playlist
		target = fmt.Sprintf(YouTubeVideoURLTemplate, canonicalID)
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	output, err := r.dump(ctx, target, r.format)
	if err != nil {
		return nil, classifyError(err)
	}

	src, err := parseYTDLPJSONOutput(output)
	if err != nil {
		if errors.Is(err, model.ErrContentUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", model.ErrUnreachableSource, err)
	}

	if canonicalID != "" {
		src.ID = canonicalID
	}
	if src.WebpageURL == "" {
		src.WebpageURL = target
	}

	return src, nil
}

// dumpJSON asks yt-dlp for the metadata of the selected audio format
func (r *Resolver) dumpJSON(ctx context.Context, url, format string) (string, error) {
	dl := ytdlp.New().
		SkipDownload().
		DumpJSON().
		NoPlaylist().
		NoWarnings().
		Format(format)
	if r.executable != "" {
		dl.SetExecutable(r.executable)
	}

	result, err := dl.Run(ctx, url)
	if err != nil {
		if result != nil && strings.TrimSpace(result.Stderr) != "" {
			return "", fmt.Errorf("%w: %s", err, strings.TrimSpace(result.Stderr))
		}
		return "", err
	}
	return result.Stdout, nil
}

// ytdlpInfo is the subset of yt-dlp's info JSON the pipeline needs
type ytdlpInfo struct {
	ID             string            `json:"id"`
	Title          string            `json:"title"`
	WebpageURL     string            `json:"webpage_url"`
	URL            string            `json:"url"`
	Ext            string            `json:"ext"`
	Protocol       string            `json:"protocol"`
	Duration       float64           `json:"duration"`
	Filesize       float64           `json:"filesize"`
	FilesizeApprox float64           `json:"filesize_approx"`
	HTTPHeaders    map[string]string `json:"http_headers"`
	Availability   string            `json:"availability"`
}

// parseYTDLPJSONOutput decodes the first JSON document of yt-dlp's output
func parseYTDLPJSONOutput(output string) (*model.ResolvedSource, error) {
	var line string
	for _, l := range strings.Split(strings.TrimSpace(output), "\n") {
		if l = strings.TrimSpace(l); l != "" {
			line = l
			break
		}
	}
	if line == "" {
		return nil, errors.New("empty metadata output")
	}

	var info ytdlpInfo
	if err := json.Unmarshal([]byte(line), &info); err != nil {
		return nil, fmt.Errorf("failed to parse metadata: %w", err)
	}
	if info.ID == "" {
		return nil, errors.New("metadata has no id")
	}

	for _, a := range RestrictedAvailability {
		if info.Availability == a {
			return nil, fmt.Errorf("%w: availability is %s", model.ErrContentUnavailable, a)
		}
	}

	title := strings.TrimSpace(info.Title)
	if title == "" {
		title = info.ID
	}

	ext := info.Ext
	if ext == "" {
		ext = DefaultAudioExt
	}

	size := info.Filesize
	if size <= 0 {
		size = info.FilesizeApprox
	}

	return &model.ResolvedSource{
		ID:          info.ID,
		Title:       title,
		WebpageURL:  info.WebpageURL,
		StreamURL:   info.URL,
		Ext:         ext,
		Protocol:    info.Protocol,
		Headers:     info.HTTPHeaders,
		DurationSec: info.Duration,
		SizeBytes:   int64(size),
	}, nil
}

// classifyError maps a yt-dlp failure onto the resolver error taxonomy
func classifyError(err error) error {
	if errors.Is(err, model.ErrContentUnavailable) || errors.Is(err, model.ErrUnreachableSource) {
		return err
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range UnavailableMarkers {
		if strings.Contains(msg, marker) {
			return fmt.Errorf("%w: %w", model.ErrContentUnavailable, err)
		}
	}
	return fmt.Errorf("%w: %w", model.ErrUnreachableSource, err)
}
