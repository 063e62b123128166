package cli

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
)

// ErrInputCanceled is returned when a read is abandoned because its context ended.
var ErrInputCanceled = errors.New("input canceled")

type line struct {
	err  error
	text string
}

// LineReader reads trimmed lines from an input stream and gives up when the
// caller's context ends. One goroutine scans the input, so a line that
// arrives after a canceled read is still delivered to the next one.
type LineReader struct {
	src   io.Reader
	lines chan line
	once  sync.Once
}

// NewLineReader creates a reader over src.
func NewLineReader(src io.Reader) *LineReader {
	return &LineReader{src: src, lines: make(chan line)}
}

func (r *LineReader) scan() {
	go func() {
		scanner := bufio.NewScanner(r.src)
		for scanner.Scan() {
			r.lines <- line{text: scanner.Text()}
		}
		err := scanner.Err()
		if err == nil {
			err = io.EOF
		}
		r.lines <- line{err: err}
		close(r.lines)
	}()
}

// ReadLine returns the next line without surrounding whitespace. A final
// line without a newline is returned normally; after it comes io.EOF.
func (r *LineReader) ReadLine(ctx context.Context) (string, error) {
	if ctx.Err() != nil {
		return "", ErrInputCanceled
	}
	r.once.Do(r.scan)

	select {
	case <-ctx.Done():
		return "", ErrInputCanceled
	case l, ok := <-r.lines:
		if !ok {
			return "", io.EOF
		}
		if l.err != nil {
			return "", l.err
		}
		return strings.TrimSpace(l.text), nil
	}
}

// Confirm asks a yes/no question on w and reads the answer from r.
// Only y or yes count as yes; end of input counts as no.
func Confirm(ctx context.Context, r *LineReader, w io.Writer, question string) (bool, error) {
	if _, err := io.WriteString(w, FormatPrompt(question+" [y/N]")); err != nil {
		return false, err
	}

	answer, err := r.ReadLine(ctx)
	switch {
	case errors.Is(err, io.EOF):
		return false, nil
	case err != nil:
		return false, err
	}

	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes", nil
}
