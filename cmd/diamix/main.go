package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"diamix/internal/app"
	"diamix/internal/config"
	"diamix/internal/consolidator"
	"diamix/internal/logger"
	"diamix/internal/output"
)

const version = "1.0.0"

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

// main is the application entry point
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run parses arguments, executes one merge and returns the process exit code
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	flags := pflag.NewFlagSet("diamix", pflag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.Usage = func() { printUsage(stderr, flags) }

	var (
		outputPath  = flags.StringP("output", "o", "", "Write the merged transcript to this file instead of stdout")
		format      = flags.StringP("format", "f", "", "Output format: text, json or yaml")
		configFile  = flags.StringP("config", "c", "", "Read settings from this config file")
		gap         = flags.Float64P("gap", "g", consolidator.DefaultGapTolerance, "Maximum gap in seconds between fused entries")
		verbose     = flags.BoolP("verbose", "v", false, "Log debug diagnostics to stderr")
		versionFlag = flags.Bool("version", false, "Show version information")
	)

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	if *versionFlag {
		printVersion(stdout)
		return exitOK
	}

	if flags.NArg() != 2 {
		fmt.Fprintln(stderr, "Error: expected a segment file and a transcript file")
		printUsage(stderr, flags)
		return exitUsage
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitError
	}
	if flags.Changed("gap") {
		cfg.Set("merge.gap_tolerance", *gap)
	}
	if flags.Changed("format") {
		cfg.Set("output.format", *format)
	}
	if flags.Changed("verbose") {
		cfg.Set("log.verbose", *verbose)
	}

	zapLogger, err := logger.New(stderr, cfg.GetLogFormat(), cfg.GetVerbose())
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitError
	}
	defer zapLogger.Sync()

	application, err := app.NewApplication(cfg, app.WithLogger(zapLogger), app.WithStdout(stdout))
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitError
	}

	report, err := application.Merge(ctx, app.MergeOptions{
		SegmentPath:    flags.Arg(0),
		TranscriptPath: flags.Arg(1),
		OutputPath:     *outputPath,
	})
	if err != nil {
		zapLogger.Error("merge failed", zap.Error(err))
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitError
	}

	printReport(stderr, report)
	return exitOK
}

// printReport tells the user where the result went
func printReport(w io.Writer, report *app.Report) {
	for _, err := range report.SourceErrors {
		fmt.Fprintf(w, "Warning: %v\n", err)
	}

	switch {
	case report.SinkError != nil:
		var sinkErr *output.SinkWriteError
		if errors.As(report.SinkError, &sinkErr) {
			fmt.Fprintf(w, "Error: could not write %s: %v\n", sinkErr.Path, sinkErr.Err)
		} else {
			fmt.Fprintf(w, "Error: %v\n", report.SinkError)
		}
		fmt.Fprintln(w, "Merged output printed to stdout instead")
	case report.Output.Path != "":
		fmt.Fprintf(w, "Merged output written to %s\n", report.Output.Path)
	}
}

// printUsage displays command line usage information
func printUsage(w io.Writer, flags *pflag.FlagSet) {
	fmt.Fprintln(w, "diamix - Merge speaker diarization with a transcript log")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "USAGE:")
	fmt.Fprintln(w, "    diamix <segment-file> <transcript-file> [OPTIONS]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "OPTIONS:")
	fmt.Fprint(w, flags.FlagUsages())
	fmt.Fprintln(w)
	fmt.Fprintln(w, "EXAMPLES:")
	fmt.Fprintln(w, "    diamix meeting.dia meeting.log                 # Print merged transcript")
	fmt.Fprintln(w, "    diamix meeting.dia meeting.log -o merged.txt   # Write merged transcript")
	fmt.Fprintln(w, "    diamix meeting.dia meeting.log -f json         # Structured output")
}

// printVersion displays version information
func printVersion(w io.Writer) {
	fmt.Fprintln(w, "diamix")
	fmt.Fprintf(w, "Version: %s\n", version)
}
