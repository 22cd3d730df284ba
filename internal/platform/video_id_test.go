package platform

import (
	"errors"
	"testing"

	"github.com/ytget/yt-mp3/internal/model"
)

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "empty", input: "", wantErr: true},
		{name: "whitespace only", input: "   \t", wantErr: true},
		{name: "no scheme", input: "youtube.com/watch?v=dQw4w9WgXcQ", wantErr: true},
		{name: "ftp scheme", input: "ftp://example.com/file", wantErr: true},
		{name: "no host", input: "https:///watch", wantErr: true},
		{name: "https", input: "https://www.youtube.com/watch?v=dQw4w9WgXcQ", wantErr: false},
		{name: "http with padding", input: "  http://example.com/video  ", wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateURL(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateURL(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, model.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestExtractVideoID(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		expected string
		wantErr  bool
	}{
		{
			name:     "watch URL",
			url:      "https://www.youtube.com/watch?v=zmXUWKwxDg4",
			expected: "zmXUWKwxDg4",
		},
		{
			name:     "watch URL with playlist",
			url:      "https://www.youtube.com/watch?v=zmXUWKwxDg4&list=PL123&start_radio=1",
			expected: "zmXUWKwxDg4",
		},
		{
			name:     "short link",
			url:      "https://youtu.be/zmXUWKwxDg4?t=42",
			expected: "zmXUWKwxDg4",
		},
		{
			name:     "shorts",
			url:      "https://youtube.com/shorts/zmXUWKwxDg4",
			expected: "zmXUWKwxDg4",
		},
		{
			name:     "embed",
			url:      "https://www.youtube-nocookie.com/embed/zmXUWKwxDg4",
			expected: "zmXUWKwxDg4",
		},
		{
			name:     "live",
			url:      "https://www.youtube.com/live/zmXUWKwxDg4?feature=share",
			expected: "zmXUWKwxDg4",
		},
		{
			name:     "music",
			url:      "https://music.youtube.com/watch?v=zmXUWKwxDg4",
			expected: "zmXUWKwxDg4",
		},
		{
			name:    "id too short",
			url:     "https://www.youtube.com/watch?v=abc",
			wantErr: true,
		},
		{
			name:    "playlist only",
			url:     "https://www.youtube.com/playlist?list=PL123",
			wantErr: true,
		},
		{
			name:    "not youtube",
			url:     "https://vimeo.com/123456",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := ExtractVideoID(tt.url)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ExtractVideoID(%q) error = %v, wantErr %v", tt.url, err, tt.wantErr)
			}
			if err != nil {
				if !errors.Is(err, model.ErrInvalidInput) {
					t.Errorf("expected ErrInvalidInput, got %v", err)
				}
				return
			}
			if id != tt.expected {
				t.Errorf("expected id %q, got %q", tt.expected, id)
			}
		})
	}
}
