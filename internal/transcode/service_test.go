package transcode

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ytget/yt-mp3/internal/model"
)

type recordingReporter struct {
	mu       sync.Mutex
	reports  []int
	finishes []int
}

func (r *recordingReporter) Report(p int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports = append(r.reports, p)
}

func (r *recordingReporter) Finish(p int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finishes = append(r.finishes, p)
}

func TestBuildFFmpegArgs(t *testing.T) {
	args := BuildFFmpegArgs("/tmp/tmp_Test.m4a", "/music/Test.mp3", 192)

	expectedArgs := []string{
		"-y",
		"-i", "/tmp/tmp_Test.m4a",
		"-vn",
		"-codec:a", AudioCodec,
		"-b:a", "192k",
		"-f", "mp3",
		"-progress", "pipe:2",
		"-nostats",
		"/music/Test.mp3",
	}

	if len(args) != len(expectedArgs) {
		t.Fatalf("Expected %d args, got %d", len(expectedArgs), len(args))
	}
	for i, expected := range expectedArgs {
		if args[i] != expected {
			t.Errorf("Arg %d: expected %s, got %s", i, expected, args[i])
		}
	}
}

func TestValidateBitrate(t *testing.T) {
	for _, b := range ValidBitrates {
		if err := ValidateBitrate(b); err != nil {
			t.Errorf("ValidateBitrate(%d) unexpected error: %v", b, err)
		}
	}
	for _, b := range []int{0, -1, 100, 161, 384} {
		if err := ValidateBitrate(b); !errors.Is(err, model.ErrEncode) {
			t.Errorf("ValidateBitrate(%d): expected ErrEncode, got %v", b, err)
		}
	}
}

func TestDeriveFFprobePath(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"ffmpeg", "ffprobe"},
		{"/opt/bin/ffmpeg", "/opt/bin/ffprobe"},
		{"/ffmpeg/bin/ffmpeg.exe", "/ffmpeg/bin/ffprobe.exe"},
		{"/usr/bin/avconv", "ffprobe"},
	}

	for _, tt := range tests {
		if got := DeriveFFprobePath(tt.input); got != tt.expected {
			t.Errorf("DeriveFFprobePath(%s) = %s, expected %s", tt.input, got, tt.expected)
		}
	}
}

func TestParseOutTime(t *testing.T) {
	tests := []struct {
		line string
		us   int64
		ok   bool
	}{
		{"out_time_us=1500000", 1500000, true},
		{"out_time_us=0", 0, true},
		{"out_time_us=N/A", 0, false},
		{"out_time_us=-5", 0, false},
		{"out_time=00:00:01.500000", 0, false},
		{"progress=continue", 0, false},
	}

	for _, tt := range tests {
		us, ok := ParseOutTime(tt.line)
		if us != tt.us || ok != tt.ok {
			t.Errorf("ParseOutTime(%q) = (%d, %v), expected (%d, %v)", tt.line, us, ok, tt.us, tt.ok)
		}
	}
}

func TestEncodePercent(t *testing.T) {
	tests := []struct {
		encoded, total float64
		expected       int
	}{
		{0, 100, 0},
		{50, 100, 50},
		{99.9, 100, MaxEncodePercent},
		{150, 100, MaxEncodePercent},
		{10, 0, 0},
	}

	for _, tt := range tests {
		if got := EncodePercent(tt.encoded, tt.total); got != tt.expected {
			t.Errorf("EncodePercent(%v, %v) = %d, expected %d", tt.encoded, tt.total, got, tt.expected)
		}
	}
}

func TestMonitorProgress_WithDuration(t *testing.T) {
	input := strings.Join([]string{
		"Input #0, mov,mp4,m4a from 'tmp_Test.m4a':",
		"out_time_us=2500000",
		"progress=continue",
		"out_time_us=1000000",
		"progress=continue",
		"out_time_us=7500000",
		"progress=continue",
		"out_time_us=10000000",
		"progress=end",
	}, "\n")

	reporter := &recordingReporter{}
	tail, err := monitorProgress(strings.NewReader(input), 10, reporter)
	if err != nil {
		t.Fatalf("Unexpected scan error: %v", err)
	}

	expected := []int{25, 25, 75, MaxEncodePercent}
	if len(reporter.reports) != len(expected) {
		t.Fatalf("Expected reports %v, got %v", expected, reporter.reports)
	}
	for i, p := range expected {
		if reporter.reports[i] != p {
			t.Errorf("Report %d: expected %d, got %d", i, p, reporter.reports[i])
		}
	}
	if len(tail) != 1 || !strings.HasPrefix(tail[0], "Input #0") {
		t.Errorf("Unexpected stderr tail: %v", tail)
	}
}

func TestMonitorProgress_HeartbeatOnly(t *testing.T) {
	input := "out_time_us=1000000\nprogress=continue\nout_time_us=2000000\nprogress=end\n"

	reporter := &recordingReporter{}
	if _, err := monitorProgress(strings.NewReader(input), 0, reporter); err != nil {
		t.Fatalf("Unexpected scan error: %v", err)
	}

	if len(reporter.reports) != 2 {
		t.Fatalf("Expected one heartbeat per progress block, got %v", reporter.reports)
	}
	for _, p := range reporter.reports {
		if p != 0 {
			t.Errorf("Heartbeat should re-report the current value 0, got %d", p)
		}
	}
}

func TestMonitorProgress_OverlongLineKeepsDraining(t *testing.T) {
	pr, pw := io.Pipe()
	writerDone := make(chan error, 1)
	go func() {
		long := strings.Repeat("x", 2*maxStderrLine) + "\n"
		if _, err := io.WriteString(pw, long); err != nil {
			writerDone <- err
			return
		}
		_, err := io.WriteString(pw, "out_time_us=1000000\nprogress=end\n")
		pw.Close()
		writerDone <- err
	}()

	monitorDone := make(chan error, 1)
	go func() {
		_, err := monitorProgress(pr, 10, &recordingReporter{})
		monitorDone <- err
	}()

	select {
	case err := <-writerDone:
		if err != nil {
			t.Fatalf("Writer failed: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Writer blocked: stderr was not drained")
	}

	select {
	case err := <-monitorDone:
		if !errors.Is(err, bufio.ErrTooLong) {
			t.Errorf("Expected bufio.ErrTooLong, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("monitorProgress did not return")
	}
}

func writeFakeBinary(t *testing.T, dir, name, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script fakes are not supported on Windows")
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("Failed to write fake %s: %v", name, err)
	}
	return path
}

// fakeFFmpeg writes its last argument and emits progress for a 4 second input
const fakeFFmpeg = `for last; do :; done
echo "out_time_us=2000000" >&2
echo "progress=continue" >&2
echo "out_time_us=4000000" >&2
echo "progress=end" >&2
printf 'ID3' > "$last"
`

func newTempArtifact(t *testing.T, dir string) *model.TempArtifact {
	t.Helper()
	path := filepath.Join(dir, "tmp_Test.m4a")
	if err := os.WriteFile(path, []byte("m4a"), 0o644); err != nil {
		t.Fatalf("Failed to write temp artifact: %v", err)
	}
	return &model.TempArtifact{FilePath: path}
}

func TestService_Transcode(t *testing.T) {
	dir := t.TempDir()
	bin := t.TempDir()
	ffmpeg := writeFakeBinary(t, bin, "ffmpeg", fakeFFmpeg)
	temp := newTempArtifact(t, dir)

	reporter := &recordingReporter{}
	service := NewService(ffmpeg, "", nil)

	out, err := service.Transcode(context.Background(), temp, dir, "Test.mp3", 160, 4, reporter)
	if err != nil {
		t.Fatalf("Transcode failed: %v", err)
	}

	if out.Path() != filepath.Join(dir, "Test.mp3") {
		t.Errorf("Unexpected output path %s", out.Path())
	}
	if data, err := os.ReadFile(out.Path()); err != nil || string(data) != "ID3" {
		t.Errorf("Expected output file written by ffmpeg, got %q (%v)", data, err)
	}
	if _, err := os.Stat(temp.FilePath); err != nil {
		t.Errorf("Temp file must be left for the caller to clean up: %v", err)
	}
	if len(reporter.finishes) != 1 || reporter.finishes[0] != DonePercent {
		t.Errorf("Expected Finish(%d), got %v", DonePercent, reporter.finishes)
	}
	for _, p := range reporter.reports {
		if p > MaxEncodePercent {
			t.Errorf("Intermediate report %d exceeds %d", p, MaxEncodePercent)
		}
	}
}

func TestService_TranscodeProbesDuration(t *testing.T) {
	dir := t.TempDir()
	bin := t.TempDir()
	ffmpeg := writeFakeBinary(t, bin, "ffmpeg", fakeFFmpeg)
	writeFakeBinary(t, bin, "ffprobe", "echo 8.0\n")
	temp := newTempArtifact(t, dir)

	reporter := &recordingReporter{}
	if _, err := NewService(ffmpeg, "", nil).Transcode(context.Background(), temp, dir, "Test.mp3", 128, 0, reporter); err != nil {
		t.Fatalf("Transcode failed: %v", err)
	}

	expected := []int{25, 50}
	if len(reporter.reports) != len(expected) {
		t.Fatalf("Expected reports %v from probed duration, got %v", expected, reporter.reports)
	}
	for i, p := range expected {
		if reporter.reports[i] != p {
			t.Errorf("Report %d: expected %d, got %d", i, p, reporter.reports[i])
		}
	}
}

func TestService_TranscodeFailure(t *testing.T) {
	dir := t.TempDir()
	bin := t.TempDir()
	ffmpeg := writeFakeBinary(t, bin, "ffmpeg", `for last; do :; done
printf 'partial' > "$last"
echo "Invalid data found when processing input" >&2
exit 1
`)
	temp := newTempArtifact(t, dir)

	reporter := &recordingReporter{}
	_, err := NewService(ffmpeg, "", nil).Transcode(context.Background(), temp, dir, "Test.mp3", 160, 10, reporter)
	if !errors.Is(err, model.ErrEncode) {
		t.Fatalf("Expected ErrEncode, got %v", err)
	}
	if !strings.Contains(err.Error(), "Invalid data found") {
		t.Errorf("Expected ffmpeg stderr in error, got %v", err)
	}

	if _, statErr := os.Stat(filepath.Join(dir, "Test.mp3")); !os.IsNotExist(statErr) {
		t.Error("Partial output must be removed on failure")
	}
	if _, statErr := os.Stat(temp.FilePath); statErr != nil {
		t.Error("Temp file must survive a failed transcode")
	}
	if len(reporter.finishes) != 0 {
		t.Errorf("Finish must not be called on failure, got %v", reporter.finishes)
	}
}

func TestService_TranscodeInvalidInput(t *testing.T) {
	dir := t.TempDir()
	service := NewService(filepath.Join(dir, "no-ffmpeg"), "", nil)

	tests := []struct {
		name    string
		temp    *model.TempArtifact
		bitrate int
	}{
		{name: "bad bitrate", temp: &model.TempArtifact{FilePath: filepath.Join(dir, "x.m4a")}, bitrate: 100},
		{name: "missing temp", temp: &model.TempArtifact{FilePath: filepath.Join(dir, "missing.m4a")}, bitrate: 160},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.Transcode(context.Background(), tt.temp, dir, "Test.mp3", tt.bitrate, 10, nil)
			if !errors.Is(err, model.ErrEncode) {
				t.Errorf("Expected ErrEncode, got %v", err)
			}
		})
	}
}

func TestService_MissingFFmpeg(t *testing.T) {
	dir := t.TempDir()
	temp := newTempArtifact(t, dir)
	service := NewService(filepath.Join(dir, "no-ffmpeg"), "", nil)

	_, err := service.Transcode(context.Background(), temp, dir, "Test.mp3", 160, 10, nil)
	if !errors.Is(err, model.ErrEncode) {
		t.Fatalf("Expected ErrEncode, got %v", err)
	}
}
