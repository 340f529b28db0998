package logger

import (
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log formats accepted by New
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// New creates a logger writing to w in the named format
func New(w io.Writer, format string, verbose bool) (*zap.Logger, error) {
	switch strings.ToLower(format) {
	case "", FormatConsole:
		return NewCLILogger(w, verbose), nil
	case FormatJSON:
		return NewJSONLogger(w, verbose), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
}

// NewCLILogger creates a console logger for command line tools writing to w.
// Only warnings and errors are shown unless verbose is set, which enables
// stage progress and debug diagnostics.
func NewCLILogger(w io.Writer, verbose bool) *zap.Logger {
	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.TimeKey = ""
	encoderConfig.CallerKey = ""
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	return newLogger(zapcore.NewConsoleEncoder(encoderConfig), w, verbose)
}

// NewJSONLogger creates a logger with the production JSON encoder, for runs
// whose stderr is collected by a log pipeline
func NewJSONLogger(w io.Writer, verbose bool) *zap.Logger {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return newLogger(zapcore.NewJSONEncoder(encoderConfig), w, verbose)
}

func newLogger(encoder zapcore.Encoder, w io.Writer, verbose bool) *zap.Logger {
	level := zapcore.WarnLevel
	if verbose {
		level = zapcore.DebugLevel
	}

	core := zapcore.NewCore(encoder, zapcore.Lock(zapcore.AddSync(w)), level)
	return zap.New(core)
}
