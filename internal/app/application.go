package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc"
	"github.com/spf13/afero"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"diamix/internal/config"
	"diamix/internal/consolidator"
	"diamix/internal/diarization"
	"diamix/internal/diarization/pyannote"
	"diamix/internal/matcher"
	"diamix/internal/output"
	"diamix/internal/parser"
	"diamix/internal/performance"
)

// Application wires the merge pipeline and the diarization entry point together
type Application struct {
	config    *config.Configuration
	zapLogger *zap.Logger
	fs        afero.Fs
	stdout    io.Writer
	provider  diarization.Provider
}

// Option customizes an Application
type Option func(*Application)

// WithLogger sets the logger used by every pipeline component
func WithLogger(logger *zap.Logger) Option {
	return func(a *Application) { a.zapLogger = logger }
}

// WithFilesystem sets the filesystem inputs are read from and outputs written to
func WithFilesystem(fs afero.Fs) Option {
	return func(a *Application) { a.fs = fs }
}

// WithStdout sets the writer used for console output and sink fallback
func WithStdout(w io.Writer) Option {
	return func(a *Application) { a.stdout = w }
}

// WithProvider replaces the configured diarization provider
func WithProvider(p diarization.Provider) Option {
	return func(a *Application) { a.provider = p }
}

// NewApplication creates a new application instance from cfg
func NewApplication(cfg *config.Configuration, opts ...Option) (*Application, error) {
	if cfg == nil {
		cfg = config.NewConfiguration()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	app := &Application{
		config:    cfg,
		zapLogger: zap.NewNop(),
		fs:        afero.NewOsFs(),
		stdout:    os.Stdout,
	}
	for _, opt := range opts {
		opt(app)
	}
	if app.zapLogger == nil {
		app.zapLogger = zap.NewNop()
	}

	return app, nil
}

// MergeOptions names the inputs and destination of one merge run
type MergeOptions struct {
	SegmentPath    string
	TranscriptPath string
	// OutputPath is empty to print to stdout.
	OutputPath string
	// Format overrides output.format from the configuration when set.
	Format output.Format
}

// Report summarizes a merge run
type Report struct {
	RunID        string
	Segments     int
	Entries      int
	Merged       int
	Consolidated int
	Warnings     []*parser.ParseWarning
	// SourceErrors holds inputs that could not be read; the run continues with empty input.
	SourceErrors []error
	Output       output.WriteResult
	// SinkError is set when the requested output file could not be written and
	// the result went to stdout instead.
	SinkError error
	Stages    []performance.StageMetrics
}

// Merge runs parse, merge, consolidate and render for the given inputs.
// Malformed lines, missing inputs and an unwritable output file are contained
// and reported on the Report; an error is returned only when the run cannot
// produce output at all.
func (app *Application) Merge(ctx context.Context, opts MergeOptions) (*Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	format := opts.Format
	if format == "" {
		parsed, err := output.ParseFormat(app.config.GetOutputFormat())
		if err != nil {
			return nil, err
		}
		format = parsed
	}

	report := &Report{RunID: uuid.NewString()}
	logger := app.zapLogger.With(zap.String("run_id", report.RunID))
	monitor := performance.NewStageMonitor(logger)

	logger.Info("starting merge",
		zap.String("segments_path", opts.SegmentPath),
		zap.String("transcript_path", opts.TranscriptPath),
		zap.String("output_path", opts.OutputPath),
		zap.String("format", string(format)))

	// The two sources are independent reads
	var segResult parser.SegmentResult
	var entryResult parser.EntryResult
	var wg conc.WaitGroup
	wg.Go(func() {
		timer := monitor.StartStage("segments")
		segResult = parser.NewSegmentParserWithLogger(app.fs, logger).ParseFile(opts.SegmentPath)
		monitor.EndStage(timer, len(segResult.Segments))
	})
	wg.Go(func() {
		timer := monitor.StartStage("entries")
		entryResult = parser.NewEntryParserWithLogger(app.fs, logger).ParseFile(opts.TranscriptPath)
		monitor.EndStage(timer, len(entryResult.Entries))
	})
	wg.Wait()

	report.Segments = len(segResult.Segments)
	report.Entries = len(entryResult.Entries)
	report.Warnings = append(append(report.Warnings, segResult.Warnings...), entryResult.Warnings...)
	for _, err := range []error{segResult.Err, entryResult.Err} {
		if err != nil {
			report.SourceErrors = append(report.SourceErrors, err)
		}
	}

	if err := ctx.Err(); err != nil {
		return report, err
	}

	timer := monitor.StartStage("merge")
	merged := matcher.NewMergerWithLogger(logger).Merge(segResult.Segments, entryResult.Entries)
	monitor.EndStage(timer, len(merged))
	report.Merged = len(merged)

	timer = monitor.StartStage("consolidate")
	turns := consolidator.NewConsolidatorWithLogger(app.config.GetGapTolerance(), logger).Consolidate(merged)
	monitor.EndStage(timer, len(turns))
	report.Consolidated = len(turns)

	timer = monitor.StartStage("render")
	data, err := output.NewEncoder(format, logger).Encode(turns)
	monitor.EndStage(timer, len(turns))
	if err != nil {
		return report, fmt.Errorf("failed to render output: %w", err)
	}

	result, err := output.NewSink(app.fs, app.stdout, logger).Write(opts.OutputPath, data)
	report.Output = result
	if err != nil {
		if !result.Fallback {
			return report, err
		}
		// A single error means stdout took the output; more means it was lost
		if len(multierr.Errors(err)) > 1 {
			return report, err
		}
		report.SinkError = err
	}

	report.Stages = monitor.GetMetrics()
	monitor.LogCurrentMetrics()

	logger.Info("merge completed",
		zap.Int("segments", report.Segments),
		zap.Int("entries", report.Entries),
		zap.Int("merged", report.Merged),
		zap.Int("consolidated", report.Consolidated),
		zap.Int("warnings", len(report.Warnings)),
		zap.Bool("fallback", result.Fallback))

	return report, nil
}

// newProvider builds the pyannote provider from the configured diarization settings
func (app *Application) newProvider() (diarization.Provider, config.DiarizationSettings, error) {
	settings, err := app.config.DiarizationSettings()
	if err != nil {
		return nil, settings, err
	}
	if app.provider != nil {
		return app.provider, settings, nil
	}

	return pyannote.NewProviderWithLogger(pyannote.Config{
		BaseURL: settings.BaseURL,
		Token:   settings.Token,
		Timeout: settings.Timeout,
	}, app.fs, app.zapLogger), settings, nil
}
