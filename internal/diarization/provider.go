// Package diarization defines speaker segments, the .dia file format and the
// provider interface used to obtain segments from an audio recording.
package diarization

import (
	"context"
	"errors"
)

// ErrProviderUnavailable is returned when a provider fails its health check.
var ErrProviderUnavailable = errors.New("diarization provider unavailable")

// Request holds parameters for a diarization call.
type Request struct {
	// AudioPath is the path to the audio file to diarize.
	AudioPath string `json:"audio_path"`
	// Model is the pipeline identifier, e.g. "pyannote/speaker-diarization-3.1".
	Model string `json:"model,omitempty"`
	// NumSpeakers is the exact number of speakers (0 = auto-detect).
	NumSpeakers int `json:"num_speakers,omitempty"`
	// MinSpeakers is the minimum expected number of speakers.
	MinSpeakers int `json:"min_speakers,omitempty"`
	// MaxSpeakers is the maximum expected number of speakers.
	MaxSpeakers int `json:"max_speakers,omitempty"`
}

// Response holds the result of a diarization call.
type Response struct {
	Segments    []Segment `json:"segments"`
	NumSpeakers int       `json:"num_speakers"`
}

// Provider is the interface that diarization backends must implement.
type Provider interface {
	Name() string
	IsAvailable(ctx context.Context) bool
	Diarize(ctx context.Context, req Request) (*Response, error)
}
