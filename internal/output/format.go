package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"diamix/internal/transcript"
)

// Format selects how consolidated turns are serialized
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat maps a user-supplied name to a Format
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "text", "txt":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown output format %q", name)
	}
}

// Record is the structured form of one rendered turn
type Record struct {
	Index      int    `json:"index" yaml:"index"`
	Speaker    string `json:"speaker" yaml:"speaker"`
	LogSpeaker string `json:"log_speaker" yaml:"log_speaker"`
	Start      string `json:"start" yaml:"start"`
	End        string `json:"end" yaml:"end"`
	StartTime  int    `json:"start_time" yaml:"start_time"`
	EndTime    int    `json:"end_time" yaml:"end_time"`
	Text       string `json:"text" yaml:"text"`
	Parts      int    `json:"parts" yaml:"parts"`
}

// Records converts turns into numbered records. Unmatched turns report the
// unknown sentinel as speaker and keep their original label in LogSpeaker.
func Records(entries []transcript.ConsolidatedEntry) []Record {
	records := make([]Record, len(entries))
	for i, entry := range entries {
		records[i] = Record{
			Index:      i + 1,
			Speaker:    entry.DiaSpeaker,
			LogSpeaker: entry.LogSpeaker,
			Start:      entry.OriginalStartTime,
			End:        entry.OriginalEndTime,
			StartTime:  entry.StartTime,
			EndTime:    entry.EndTime,
			Text:       entry.Text,
			Parts:      entry.Parts,
		}
	}
	return records
}

// Encoder serializes consolidated turns to a writer in a fixed format
type Encoder struct {
	format Format
	logger *zap.Logger
}

// NewEncoder creates an Encoder for the given format
func NewEncoder(format Format, logger *zap.Logger) *Encoder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Encoder{format: format, logger: logger}
}

// Format returns the encoder's output format
func (e *Encoder) Format() Format {
	return e.format
}

// Encode renders entries into bytes
func (e *Encoder) Encode(entries []transcript.ConsolidatedEntry) ([]byte, error) {
	switch e.format {
	case FormatText:
		return []byte(Render(entries)), nil
	case FormatJSON:
		data, err := json.MarshalIndent(Records(entries), "", "  ")
		if err != nil {
			e.logger.Error("failed to marshal turns to JSON", zap.Error(err))
			return nil, fmt.Errorf("failed to marshal turns to JSON: %w", err)
		}
		return append(data, '\n'), nil
	case FormatYAML:
		data, err := yaml.Marshal(Records(entries))
		if err != nil {
			e.logger.Error("failed to marshal turns to YAML", zap.Error(err))
			return nil, fmt.Errorf("failed to marshal turns to YAML: %w", err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("unknown output format %q", e.format)
	}
}

// EncodeTo renders entries and writes them to w
func (e *Encoder) EncodeTo(w io.Writer, entries []transcript.ConsolidatedEntry) error {
	data, err := e.Encode(entries)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		e.logger.Error("failed to write output", zap.Error(err))
		return fmt.Errorf("failed to write output: %w", err)
	}

	e.logger.Debug("encoded turns",
		zap.String("format", string(e.format)),
		zap.Int("turns", len(entries)),
		zap.Int("bytes", len(data)))

	return nil
}
