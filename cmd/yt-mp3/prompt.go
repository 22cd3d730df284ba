package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// promptChooser asks for the output folder on the terminal. An empty
// answer keeps the default; "q" or end of input cancels.
type promptChooser struct {
	in            *bufio.Reader
	out           io.Writer
	folder        string
	acceptDefault bool
}

func newPromptChooser(in io.Reader, out io.Writer, folder string, acceptDefault bool) *promptChooser {
	return &promptChooser{
		in:            bufio.NewReader(in),
		out:           out,
		folder:        strings.TrimSpace(folder),
		acceptDefault: acceptDefault,
	}
}

func (p *promptChooser) PromptForFolder(ctx context.Context, defaultPath string) (string, bool, error) {
	if p.folder != "" {
		return p.folder, true, nil
	}
	if p.acceptDefault {
		return defaultPath, true, nil
	}

	fmt.Fprintf(p.out, "Save to [%s] (q to cancel): ", defaultPath)

	type answer struct {
		line string
		err  error
	}
	answers := make(chan answer, 1)
	go func() {
		line, err := p.in.ReadString('\n')
		answers <- answer{line: line, err: err}
	}()

	var a answer
	select {
	case a = <-answers:
	case <-ctx.Done():
		return "", false, ctx.Err()
	}

	if a.err != nil && !errors.Is(a.err, io.EOF) {
		return "", false, fmt.Errorf("read folder: %w", a.err)
	}
	text := strings.TrimSpace(a.line)
	switch {
	case errors.Is(a.err, io.EOF) && text == "":
		return "", false, nil
	case strings.EqualFold(text, "q"):
		return "", false, nil
	case text == "":
		return defaultPath, true, nil
	default:
		return text, true, nil
	}
}
