package output

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// SinkWriteError reports that the requested destination could not be written
type SinkWriteError struct {
	Path string
	Err  error
}

func (e *SinkWriteError) Error() string {
	return fmt.Sprintf("failed to write output to %s: %v", e.Path, e.Err)
}

func (e *SinkWriteError) Unwrap() error {
	return e.Err
}

// WriteResult describes where the output ended up
type WriteResult struct {
	Path     string
	Fallback bool
	Bytes    int
}

// Sink writes rendered output to a file, or to stdout when no file is requested
// or the file cannot be written
type Sink struct {
	fs     afero.Fs
	stdout io.Writer
	logger *zap.Logger
}

// NewSink creates a Sink writing files through fs and falling back to stdout
func NewSink(fs afero.Fs, stdout io.Writer, logger *zap.Logger) *Sink {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if stdout == nil {
		stdout = os.Stdout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sink{fs: fs, stdout: stdout, logger: logger}
}

// Write stores data at path, or prints it when path is empty. When the file
// write fails the content is printed instead and a *SinkWriteError is returned
// alongside a result marked as fallback.
func (s *Sink) Write(path string, data []byte) (WriteResult, error) {
	if path == "" {
		if err := s.print(data); err != nil {
			return WriteResult{}, err
		}
		return WriteResult{Bytes: len(data)}, nil
	}

	if err := atomicWrite(s.fs, path, data); err != nil {
		writeErr := &SinkWriteError{Path: path, Err: err}
		s.logger.Error("failed to write output file, printing to stdout instead",
			zap.String("path", path),
			zap.Error(err))

		var combined error = writeErr
		if printErr := s.print(data); printErr != nil {
			combined = multierr.Append(combined, printErr)
		}
		return WriteResult{Fallback: true, Bytes: len(data)}, combined
	}

	s.logger.Info("output written",
		zap.String("path", path),
		zap.Int("bytes", len(data)))

	return WriteResult{Path: path, Bytes: len(data)}, nil
}

// print writes data to stdout, terminating it with a newline
func (s *Sink) print(data []byte) error {
	if len(data) == 0 || data[len(data)-1] != '\n' {
		data = append(data[:len(data):len(data)], '\n')
	}
	if _, err := s.stdout.Write(data); err != nil {
		return fmt.Errorf("failed to write to stdout: %w", err)
	}
	return nil
}

// atomicWrite writes data to path using a temp file + rename
func atomicWrite(fs afero.Fs, path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := fs.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	tmpFile, err := afero.TempFile(fs, dir, ".diamix-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		fs.Remove(tmpPath)
		return fmt.Errorf("writing output: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		fs.Remove(tmpPath)
		return fmt.Errorf("closing output: %w", err)
	}

	if err := fs.Rename(tmpPath, path); err != nil {
		fs.Remove(tmpPath)
		return fmt.Errorf("renaming output: %w", err)
	}
	return nil
}
