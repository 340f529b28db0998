package app

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"diamix/internal/diarization"
)

const healthCheckTimeout = 10 * time.Second

// DiaPath returns the .dia path written next to an audio file
func DiaPath(audioPath string) string {
	return strings.TrimSuffix(audioPath, filepath.Ext(audioPath)) + ".dia"
}

// Diarize runs the diarization provider on audioPath and writes its segments to
// the matching .dia file, returning that path
func (app *Application) Diarize(ctx context.Context, audioPath string) (string, error) {
	if audioPath == "" {
		return "", fmt.Errorf("audio path is required")
	}
	if _, err := app.fs.Stat(audioPath); err != nil {
		return "", fmt.Errorf("audio file %s: %w", audioPath, err)
	}

	provider, settings, err := app.newProvider()
	if err != nil {
		return "", err
	}

	healthCtx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	available := provider.IsAvailable(healthCtx)
	cancel()
	if !available {
		return "", fmt.Errorf("%w: %s at %s", diarization.ErrProviderUnavailable, provider.Name(), settings.BaseURL)
	}

	app.zapLogger.Info("starting diarization",
		zap.String("provider", provider.Name()),
		zap.String("audio_path", audioPath),
		zap.String("model", settings.Model))

	resp, err := provider.Diarize(ctx, diarization.Request{
		AudioPath:   audioPath,
		Model:       settings.Model,
		NumSpeakers: settings.NumSpeakers,
		MinSpeakers: settings.MinSpeakers,
		MaxSpeakers: settings.MaxSpeakers,
	})
	if err != nil {
		return "", fmt.Errorf("diarization failed: %w", err)
	}

	var buf bytes.Buffer
	if err := diarization.WriteSegments(&buf, resp.Segments); err != nil {
		return "", err
	}

	diaPath := DiaPath(audioPath)
	if err := afero.WriteFile(app.fs, diaPath, buf.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", diaPath, err)
	}

	app.zapLogger.Info("diarization written",
		zap.String("path", diaPath),
		zap.Int("segments", len(resp.Segments)),
		zap.Int("num_speakers", resp.NumSpeakers))

	return diaPath, nil
}
