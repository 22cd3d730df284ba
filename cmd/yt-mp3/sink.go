package main

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
)

const progressBarWidth = 30

// terminalSink prints pipeline progress. On a terminal it draws a progress
// bar, elsewhere it writes one line per update.
type terminalSink struct {
	mu      sync.Mutex
	out     io.Writer
	bar     *progressbar.ProgressBar
	message string
}

func newTerminalSink(out io.Writer) *terminalSink {
	s := &terminalSink{out: out}
	if isTerminal(out) {
		s.bar = progressbar.NewOptions(100,
			progressbar.OptionSetWriter(out),
			progressbar.OptionSetWidth(progressBarWidth),
			progressbar.OptionSetPredictTime(false),
			progressbar.OptionSetDescription(""),
		)
	}
	return s
}

func (s *terminalSink) OnProgress(percent int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.bar != nil {
		_ = s.bar.Set(percent)
		return
	}
	fmt.Fprintf(s.out, "%s %d%%\n", s.message, percent)
}

func (s *terminalSink) OnStatusMessage(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if text == "" || text == s.message {
		return
	}
	s.message = text
	if s.bar != nil {
		s.bar.Describe(text)
		return
	}
	fmt.Fprintln(s.out, text)
}

// Close leaves the bar at its last state and moves to a fresh line
func (s *terminalSink) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.bar != nil {
		_ = s.bar.Exit()
		fmt.Fprintln(s.out)
	}
}

func isTerminal(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
