package parser

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"go.uber.org/multierr"
)

// ParseWarning describes a line that was dropped during parsing
type ParseWarning struct {
	Source string
	Line   int
	Raw    string
	Reason string
	Err    error
}

func (w *ParseWarning) Error() string {
	if w.Err != nil {
		return fmt.Sprintf("%s:%d: %s: %v", w.Source, w.Line, w.Reason, w.Err)
	}
	return fmt.Sprintf("%s:%d: %s: %q", w.Source, w.Line, w.Reason, w.Raw)
}

func (w *ParseWarning) Unwrap() error {
	return w.Err
}

// SourceError reports an input that could not be opened or read as a whole
type SourceError struct {
	Path string
	Err  error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("failed to read %s: %v", e.Path, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// combineWarnings folds warnings and an optional source error into one error value
func combineWarnings(sourceErr error, warnings []*ParseWarning) error {
	errs := make([]error, 0, len(warnings)+1)
	if sourceErr != nil {
		errs = append(errs, sourceErr)
	}
	for _, w := range warnings {
		errs = append(errs, w)
	}
	return multierr.Combine(errs...)
}

// scanLines calls fn with every trimmed, non-blank line and its 1-based line
// number. Lines end at "\n", "\r\n" or a bare "\r" and have no length limit.
func scanLines(r io.Reader, fn func(lineNum int, line string)) error {
	reader := bufio.NewReader(r)
	var buf []byte
	lineNum := 0

	emit := func() {
		lineNum++
		if line := strings.TrimSpace(string(buf)); line != "" {
			fn(lineNum, line)
		}
		buf = buf[:0]
	}

	for {
		b, err := reader.ReadByte()
		if err == io.EOF {
			if len(buf) > 0 {
				emit()
			}
			return nil
		}
		if err != nil {
			return err
		}

		switch b {
		case '\n':
			emit()
		case '\r':
			emit()
			if next, _ := reader.Peek(1); len(next) == 1 && next[0] == '\n' {
				_, _ = reader.ReadByte()
			}
		default:
			buf = append(buf, b)
		}
	}
}
