package download

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os/exec"
	"strings"

	"github.com/ytget/yt-mp3/internal/model"
)

// Protocols yt-dlp reports for plain progressive downloads
const (
	ProtocolHTTP  = "http"
	ProtocolHTTPS = "https"
)

// Command defaults
const (
	DefaultYtDlpBinary = "yt-dlp"
	maxStderrBytes     = 8 * 1024
)

// HTTPOpener fetches direct stream URLs with a plain GET
type HTTPOpener struct {
	Client *http.Client
}

// Open issues the request with the source headers and returns the body
func (o *HTTPOpener) Open(ctx context.Context, src *model.ResolvedSource) (io.ReadCloser, int64, error) {
	if src.StreamURL == "" {
		return nil, 0, fmt.Errorf("%w: source has no stream URL", model.ErrSourceStream)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.StreamURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: build request: %w", model.ErrSourceStream, err)
	}
	for k, v := range src.Headers {
		req.Header.Set(k, v)
	}

	client := o.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", model.ErrSourceStream, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, 0, fmt.Errorf("%w: unexpected status %s", model.ErrSourceStream, resp.Status)
	}

	total := resp.ContentLength
	if total <= 0 {
		total = src.SizeBytes
	}
	return resp.Body, total, nil
}

// CommandOpener pipes the media through `yt-dlp -o -`. It handles the
// fragmented protocols (DASH, HLS) a single GET cannot.
type CommandOpener struct {
	Executable string
	Format     string
}

// Open starts yt-dlp writing the selected format to stdout
func (o *CommandOpener) Open(ctx context.Context, src *model.ResolvedSource) (io.ReadCloser, int64, error) {
	target := src.WebpageURL
	if target == "" {
		return nil, 0, fmt.Errorf("%w: source has no page URL", model.ErrSourceStream)
	}

	exe := o.Executable
	if exe == "" {
		exe = DefaultYtDlpBinary
	}

	cmd := exec.CommandContext(ctx, exe, o.args(target)...)
	stderr := &tailBuffer{max: maxStderrBytes}
	cmd.Stderr = stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, 0, fmt.Errorf("%w: stdout pipe: %w", model.ErrSourceStream, err)
	}
	if err := cmd.Start(); err != nil {
		return nil, 0, fmt.Errorf("%w: start %s: %w", model.ErrSourceStream, exe, err)
	}

	return &commandStream{ReadCloser: stdout, cmd: cmd, stderr: stderr}, src.SizeBytes, nil
}

func (o *CommandOpener) args(target string) []string {
	args := []string{"--no-playlist", "--no-part", "--quiet", "--no-warnings"}
	if o.Format != "" {
		args = append(args, "-f", o.Format)
	}
	return append(args, "-o", "-", target)
}

// commandStream closes the pipe and reaps the process. A non-zero exit
// status surfaces as the Close error.
type commandStream struct {
	io.ReadCloser
	cmd    *exec.Cmd
	stderr *tailBuffer
}

func (s *commandStream) Close() error {
	_ = s.ReadCloser.Close()
	if err := s.cmd.Wait(); err != nil {
		if msg := strings.TrimSpace(s.stderr.String()); msg != "" {
			return fmt.Errorf("yt-dlp: %w: %s", err, msg)
		}
		return fmt.Errorf("yt-dlp: %w", err)
	}
	return nil
}

// AutoOpener picks HTTPOpener for progressive http(s) sources and
// CommandOpener for everything else
type AutoOpener struct {
	HTTP    StreamOpener
	Command StreamOpener
}

// Open dispatches on the source protocol
func (o *AutoOpener) Open(ctx context.Context, src *model.ResolvedSource) (io.ReadCloser, int64, error) {
	if IsDirectHTTP(src) {
		return o.HTTP.Open(ctx, src)
	}
	return o.Command.Open(ctx, src)
}

// IsDirectHTTP reports whether src can be fetched with a single GET
func IsDirectHTTP(src *model.ResolvedSource) bool {
	if src.StreamURL == "" {
		return false
	}
	switch src.Protocol {
	case ProtocolHTTP, ProtocolHTTPS:
		return true
	case "":
		lower := strings.ToLower(src.StreamURL)
		return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
	default:
		return false
	}
}

// tailBuffer keeps the last max bytes written to it
type tailBuffer struct {
	buf []byte
	max int
}

func (b *tailBuffer) Write(p []byte) (int, error) {
	b.buf = append(b.buf, p...)
	if over := len(b.buf) - b.max; over > 0 {
		b.buf = append(b.buf[:0], b.buf[over:]...)
	}
	return len(p), nil
}

func (b *tailBuffer) String() string {
	return string(b.buf)
}
