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
	"diamix/internal/logger"
)

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

// run diarizes one audio file and returns the process exit code
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	flags := pflag.NewFlagSet("diarize", pflag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.Usage = func() { printUsage(stderr, flags) }

	var (
		configFile  = flags.StringP("config", "c", "", "Read settings from this config file")
		envFile     = flags.String("env-file", "", "Load environment variables from this .env file")
		numSpeakers = flags.Int("num-speakers", 0, "Exact number of speakers, 0 to detect")
		minSpeakers = flags.Int("min-speakers", 0, "Lower bound on the number of speakers")
		maxSpeakers = flags.Int("max-speakers", 0, "Upper bound on the number of speakers")
		verbose     = flags.BoolP("verbose", "v", false, "Log progress to stderr")
	)

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	if flags.NArg() != 1 {
		fmt.Fprintln(stderr, "Error: expected an audio file")
		printUsage(stderr, flags)
		return exitUsage
	}

	if *envFile != "" {
		if err := config.LoadDotEnv(*envFile); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return exitError
		}
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitError
	}
	if flags.Changed("num-speakers") {
		cfg.Set("dia.num_speakers", *numSpeakers)
	}
	if flags.Changed("min-speakers") {
		cfg.Set("dia.min_speakers", *minSpeakers)
	}
	if flags.Changed("max-speakers") {
		cfg.Set("dia.max_speakers", *maxSpeakers)
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

	diaPath, err := application.Diarize(ctx, flags.Arg(0))
	if err != nil {
		zapLogger.Error("diarization failed", zap.Error(err))
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitError
	}

	fmt.Fprintf(stdout, "Diarization written to %s\n", diaPath)
	return exitOK
}

// printUsage displays command line usage information
func printUsage(w io.Writer, flags *pflag.FlagSet) {
	fmt.Fprintln(w, "diarize - Produce a speaker segment file for an audio recording")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "USAGE:")
	fmt.Fprintln(w, "    diarize <audio-file> [OPTIONS]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "OPTIONS:")
	fmt.Fprint(w, flags.FlagUsages())
	fmt.Fprintln(w)
	fmt.Fprintln(w, "CONFIGURATION:")
	fmt.Fprintln(w, "    The sidecar URL, model and token come from the config file or from")
	fmt.Fprintln(w, "    DIAMIX_DIA_BASE_URL, DIAMIX_DIA_MODEL and DIAMIX_DIA_TOKEN (or HF_TOKEN).")
}
