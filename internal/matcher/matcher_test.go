package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"diamix/internal/diarization"
	"diamix/internal/transcript"
)

func TestMatch(t *testing.T) {
	segments := []diarization.Segment{
		{Start: 0, End: 3, Speaker: "A"},
		{Start: 3, End: 6, Speaker: "B"},
	}

	t.Run("should pick the segment with the largest overlap", func(t *testing.T) {
		assert.Equal(t, "A", Match(segments, 0, 2))
		assert.Equal(t, "B", Match(segments, 2, 5))
	})

	t.Run("should return unknown for empty segment set", func(t *testing.T) {
		assert.Equal(t, transcript.UnknownSpeaker, Match(nil, 0, 10))
		assert.Equal(t, transcript.UnknownSpeaker, Match([]diarization.Segment{}, 5, 1))
	})

	t.Run("should return unknown when nothing overlaps", func(t *testing.T) {
		assert.Equal(t, transcript.UnknownSpeaker, Match(segments, 6, 9), "touching at the boundary is not overlap")
		assert.Equal(t, transcript.UnknownSpeaker, Match(segments, 20, 30))
	})

	t.Run("should return unknown for zero-length or inverted intervals", func(t *testing.T) {
		assert.Equal(t, transcript.UnknownSpeaker, Match(segments, 2, 2))
		assert.Equal(t, transcript.UnknownSpeaker, Match(segments, 5, 1))
	})

	t.Run("should keep the earliest segment on ties", func(t *testing.T) {
		// Arrange
		tied := []diarization.Segment{
			{Start: 0, End: 2, Speaker: "first"},
			{Start: 2, End: 4, Speaker: "second"},
		}

		// Act & Assert
		for i := 0; i < 10; i++ {
			assert.Equal(t, "first", Match(tied, 1, 3))
		}
	})

	t.Run("should scan past later-starting overlapping segments", func(t *testing.T) {
		// Arrange
		overlapping := []diarization.Segment{
			{Start: 0, End: 1.5, Speaker: "short"},
			{Start: 0.5, End: 10, Speaker: "long"},
			{Start: 9, End: 9.5, Speaker: "tail"},
		}

		// Act
		speaker := Match(overlapping, 1, 9)

		// Assert
		assert.Equal(t, "long", speaker)
	})
}

func TestMerger_Merge(t *testing.T) {
	entries := []transcript.LogEntry{
		{StartTime: 0, EndTime: 2, LogSpeaker: "X", Text: "hello", OriginalLine: "1. [X] 00:00-00:02 : hello"},
		{StartTime: 2, EndTime: 5, LogSpeaker: "X", Text: "world", OriginalLine: "2. [X] 00:02-00:05 : world"},
		{StartTime: 40, EndTime: 42, LogSpeaker: "Y", Text: "late", OriginalLine: "3. [Y] 00:40-00:42 : late"},
	}
	segments := []diarization.Segment{
		{Start: 0, End: 3, Speaker: "A"},
		{Start: 3, End: 6, Speaker: "B"},
	}

	t.Run("should annotate every entry and keep original fields", func(t *testing.T) {
		// Act
		merged := Merge(segments, entries)

		// Assert
		require.Len(t, merged, 3)
		assert.Equal(t, "A", merged[0].DiaSpeaker)
		assert.Equal(t, "B", merged[1].DiaSpeaker)
		assert.Equal(t, transcript.UnknownSpeaker, merged[2].DiaSpeaker)
		for i := range entries {
			assert.Equal(t, entries[i], merged[i].LogEntry)
		}
	})

	t.Run("should return empty when either side is empty", func(t *testing.T) {
		assert.Empty(t, Merge(nil, entries))
		assert.Empty(t, Merge(segments, nil))
		assert.NotNil(t, Merge(nil, nil))
	})

	t.Run("should log unmatched entries", func(t *testing.T) {
		// Arrange
		core, logs := observer.New(zapcore.DebugLevel)
		merger := NewMergerWithLogger(zap.New(core))

		// Act
		merger.Merge(segments, entries)

		// Assert
		assert.Equal(t, 1, logs.FilterMessage("no diarization segment overlaps entry").Len())
		summary := logs.FilterMessage("merged entries").All()
		require.Len(t, summary, 1)
		assert.Equal(t, int64(1), summary[0].ContextMap()["unknown"])
	})
}
