package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"diamix/internal/transcript"
)

func TestParseFormat(t *testing.T) {
	tests := map[string]Format{
		"":      FormatText,
		"text":  FormatText,
		"TXT":   FormatText,
		"json":  FormatJSON,
		" yaml": FormatYAML,
		"yml":   FormatYAML,
	}
	for name, want := range tests {
		got, err := ParseFormat(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}

	_, err := ParseFormat("xml")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown output format")
}

func sampleTurns() []transcript.ConsolidatedEntry {
	first := turn("A", "X", "00:00", "00:02", "hello there", "1. [X] 00:00-00:02 : hello")
	first.EndTime = 4
	first.Parts = 2
	second := turn(transcript.UnknownSpeaker, "Y", "00:40", "00:42", "late", "3. [Y] 00:40-00:42 : late")
	second.StartTime = 40
	second.EndTime = 42
	return []transcript.ConsolidatedEntry{first, second}
}

func TestEncoder_Encode(t *testing.T) {
	t.Run("should encode text lines", func(t *testing.T) {
		data, err := NewEncoder(FormatText, nil).Encode(sampleTurns())

		require.NoError(t, err)
		assert.Equal(t, "1. [A] 00:00-00:02 : hello there\n2. [Y] 00:40-00:42 : late", string(data))
	})

	t.Run("should encode JSON records", func(t *testing.T) {
		// Act
		data, err := NewEncoder(FormatJSON, zap.NewNop()).Encode(sampleTurns())

		// Assert
		require.NoError(t, err)
		var records []Record
		require.NoError(t, json.Unmarshal(data, &records))
		require.Len(t, records, 2)
		assert.Equal(t, Record{
			Index: 1, Speaker: "A", LogSpeaker: "X", Start: "00:00", End: "00:02",
			StartTime: 0, EndTime: 4, Text: "hello there", Parts: 2,
		}, records[0])
		assert.Equal(t, transcript.UnknownSpeaker, records[1].Speaker)
		assert.Equal(t, "Y", records[1].LogSpeaker)
	})

	t.Run("should encode YAML records", func(t *testing.T) {
		data, err := NewEncoder(FormatYAML, nil).Encode(sampleTurns())

		require.NoError(t, err)
		var records []Record
		require.NoError(t, yaml.Unmarshal(data, &records))
		require.Len(t, records, 2)
		assert.Equal(t, 2, records[1].Index)
		assert.Equal(t, "late", records[1].Text)
		assert.Contains(t, string(data), "log_speaker: X")
	})

	t.Run("should reject unknown format", func(t *testing.T) {
		enc := NewEncoder(Format("xml"), nil)

		_, err := enc.Encode(sampleTurns())

		assert.Error(t, err)
		assert.Equal(t, Format("xml"), enc.Format())
	})
}

func TestEncoder_EncodeTo(t *testing.T) {
	t.Run("should write encoded bytes", func(t *testing.T) {
		var buf bytes.Buffer

		err := NewEncoder(FormatText, nil).EncodeTo(&buf, sampleTurns())

		require.NoError(t, err)
		assert.Contains(t, buf.String(), "1. [A]")
	})

	t.Run("should wrap writer errors", func(t *testing.T) {
		err := NewEncoder(FormatText, nil).EncodeTo(errWriter{}, sampleTurns())

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to write output")
	})
}

type errWriter struct{}

func (errWriter) Write([]byte) (int, error) {
	return 0, errors.New("broken pipe")
}
