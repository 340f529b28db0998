package output

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"diamix/internal/transcript"
)

func turn(speaker, label, start, end, text, original string) transcript.ConsolidatedEntry {
	return transcript.ConsolidatedEntry{
		MergedEntry: transcript.MergedEntry{
			LogEntry: transcript.LogEntry{
				LogSpeaker:        label,
				Text:              text,
				OriginalLine:      original,
				OriginalStartTime: start,
				OriginalEndTime:   end,
			},
			DiaSpeaker: speaker,
		},
		Parts: 1,
	}
}

func TestRenderLine(t *testing.T) {
	t.Run("should substitute the diarization speaker and keep original timestamps", func(t *testing.T) {
		// Arrange
		entry := turn("SPEAKER_01", "Спикер 1", "00:00", "00:07", "hello world", "5. [Спикер 1] 00:00-00:02 : hello")

		// Act
		line := RenderLine(0, entry)

		// Assert
		assert.Equal(t, "1. [SPEAKER_01] 00:00-00:07 : hello world", line)
	})

	t.Run("should keep unknown lines verbatim except for the index", func(t *testing.T) {
		entry := turn(transcript.UnknownSpeaker, "Host", "1:02:03", "1:02:09", "ignored", "17. [Host] 1:02:03-1:02:09 : 42. kept as is")

		line := RenderLine(2, entry)

		assert.Equal(t, "3. [Host] 1:02:03-1:02:09 : 42. kept as is", line)
	})
}

func TestRender(t *testing.T) {
	t.Run("should renumber and join with newlines", func(t *testing.T) {
		entries := []transcript.ConsolidatedEntry{
			turn("A", "X", "00:00", "00:02", "hello", "1. [X] 00:00-00:02 : hello"),
			turn("B", "X", "00:02", "00:05", "world", "2. [X] 00:02-00:05 : world"),
		}

		assert.Equal(t, "1. [A] 00:00-00:02 : hello\n2. [B] 00:02-00:05 : world", Render(entries))
	})

	t.Run("should render nothing for no entries", func(t *testing.T) {
		assert.Equal(t, "", Render(nil))
		assert.Empty(t, RenderLines(nil))
	})
}
