package platform

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/ytget/yt-mp3/internal/model"
)

// URL templates
const (
	YouTubeVideoURLTemplate = "https://www.youtube.com/watch?v=%s"
)

// Allowed URL schemes
const (
	SchemeHTTP  = "http"
	SchemeHTTPS = "https"
)

// YouTube hosts recognised for canonical ID extraction
var (
	YouTubeHosts = []string{
		"youtube.com",
		"www.youtube.com",
		"m.youtube.com",
		"music.youtube.com",
		"youtube-nocookie.com",
		"www.youtube-nocookie.com",
	}
	YouTubeShortHost = "youtu.be"

	// Path prefixes that carry the video ID as the next segment
	YouTubeIDPathPrefixes = []string{"/shorts/", "/embed/", "/live/", "/v/"}
)

var videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// ValidateURL checks that input is a non-empty absolute http(s) URL
func ValidateURL(input string) (*url.URL, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: URL is empty", model.ErrInvalidInput)
	}

	parsed, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrInvalidInput, err)
	}

	if parsed.Scheme != SchemeHTTP && parsed.Scheme != SchemeHTTPS {
		return nil, fmt.Errorf("%w: URL must start with http:// or https://", model.ErrInvalidInput)
	}

	if parsed.Host == "" {
		return nil, fmt.Errorf("%w: URL has no host", model.ErrInvalidInput)
	}

	return parsed, nil
}

// IsYouTubeURL reports whether u points at a YouTube host
func IsYouTubeURL(u *url.URL) bool {
	host := strings.ToLower(u.Hostname())
	if host == YouTubeShortHost {
		return true
	}
	for _, h := range YouTubeHosts {
		if host == h {
			return true
		}
	}
	return false
}

// ExtractVideoID extracts the canonical YouTube video ID from the supported URL forms:
//   - https://www.youtube.com/watch?v=VIDEO_ID&list=...
//   - https://youtu.be/VIDEO_ID
//   - https://www.youtube.com/shorts/VIDEO_ID
//   - https://www.youtube.com/embed/VIDEO_ID
//   - https://www.youtube.com/live/VIDEO_ID
func ExtractVideoID(input string) (string, error) {
	u, err := ValidateURL(input)
	if err != nil {
		return "", err
	}
	if !IsYouTubeURL(u) {
		return "", fmt.Errorf("%w: not a YouTube URL: %s", model.ErrInvalidInput, u.Host)
	}

	var id string
	if strings.ToLower(u.Hostname()) == YouTubeShortHost {
		id = firstSegment(u.Path)
	} else if v := u.Query().Get("v"); v != "" {
		id = v
	} else {
		for _, prefix := range YouTubeIDPathPrefixes {
			if strings.HasPrefix(u.Path, prefix) {
				id = firstSegment(strings.TrimPrefix(u.Path, prefix))
				break
			}
		}
	}

	if !videoIDPattern.MatchString(id) {
		return "", fmt.Errorf("%w: no video id found in URL: %s", model.ErrInvalidInput, input)
	}
	return id, nil
}

func firstSegment(path string) string {
	path = strings.TrimPrefix(path, "/")
	if idx := strings.Index(path, "/"); idx >= 0 {
		path = path[:idx]
	}
	return path
}
