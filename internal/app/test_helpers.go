package app

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"diamix/internal/config"
	"diamix/internal/diarization"
)

// MockDiarizationServer provides a fake pyannote sidecar for tests
type MockDiarizationServer struct {
	server   *httptest.Server
	segments []diarization.Segment
	status   int
	requests atomic.Int32
}

// NewMockDiarizationServer creates a sidecar answering /diarize with segments,
// or with status when it is not 200
func NewMockDiarizationServer(segments []diarization.Segment, status int) *MockDiarizationServer {
	mock := &MockDiarizationServer{
		segments: segments,
		status:   status,
	}
	mock.server = httptest.NewServer(http.HandlerFunc(mock.handle))
	return mock
}

// URL returns the mock server URL
func (m *MockDiarizationServer) URL() string {
	return m.server.URL
}

// Requests returns how many diarization requests were received
func (m *MockDiarizationServer) Requests() int {
	return int(m.requests.Load())
}

// Close shuts down the mock server
func (m *MockDiarizationServer) Close() {
	m.server.Close()
}

func (m *MockDiarizationServer) handle(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/health":
		w.WriteHeader(http.StatusOK)
	case "/diarize":
		m.requests.Add(1)
		if m.status != http.StatusOK {
			http.Error(w, fmt.Sprintf("mock failure %d", m.status), m.status)
			return
		}
		type wireSegment struct {
			SpeakerID string  `json:"speaker_id"`
			StartTime float64 `json:"start_time"`
			EndTime   float64 `json:"end_time"`
		}
		speakers := map[string]bool{}
		wire := make([]wireSegment, len(m.segments))
		for i, seg := range m.segments {
			wire[i] = wireSegment{SpeakerID: seg.Speaker, StartTime: seg.Start, EndTime: seg.End}
			speakers[seg.Speaker] = true
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"segments":     wire,
			"num_speakers": len(speakers),
		})
	default:
		http.NotFound(w, r)
	}
}

// TestApplication bundles an application with its in-memory filesystem and captured stdout
type TestApplication struct {
	*Application
	Fs     afero.Fs
	Stdout *bytes.Buffer
}

// NewTestApplication creates an application on an in-memory filesystem
func NewTestApplication(cfg *config.Configuration, logger *zap.Logger, opts ...Option) (*TestApplication, error) {
	fs := afero.NewMemMapFs()
	stdout := &bytes.Buffer{}
	if logger == nil {
		logger = zap.NewNop()
	}

	all := append([]Option{WithFilesystem(fs), WithStdout(stdout), WithLogger(logger)}, opts...)
	app, err := NewApplication(cfg, all...)
	if err != nil {
		return nil, fmt.Errorf("failed to create test application: %w", err)
	}

	return &TestApplication{
		Application: app,
		Fs:          fs,
		Stdout:      stdout,
	}, nil
}

// WriteFile stores content on the test filesystem
func (ta *TestApplication) WriteFile(path, content string) error {
	return afero.WriteFile(ta.Fs, path, []byte(content), 0644)
}

// ReadFile returns content from the test filesystem
func (ta *TestApplication) ReadFile(path string) (string, error) {
	data, err := afero.ReadFile(ta.Fs, path)
	return string(data), err
}
