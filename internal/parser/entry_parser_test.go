package parser

import (
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"diamix/internal/timecode"
	"diamix/internal/transcript"
)

func TestEntryParser_ParseLine(t *testing.T) {
	parser := NewEntryParser()

	t.Run("should decode all fields and keep verbatim text", func(t *testing.T) {
		// Arrange
		line := "1. [Спикер 1] 00:00-00:02 : Ну все кроме оперблока его прислали"

		// Act
		entry, warning := parser.ParseLine(line)

		// Assert
		require.Nil(t, warning)
		assert.Equal(t, transcript.LogEntry{
			StartTime:         0,
			EndTime:           2,
			LogSpeaker:        "Спикер 1",
			Text:              "Ну все кроме оперблока его прислали",
			OriginalLine:      line,
			OriginalStartTime: "00:00",
			OriginalEndTime:   "00:02",
		}, entry)
	})

	t.Run("should accept hour timestamps and loose spacing", func(t *testing.T) {
		entry, warning := parser.ParseLine("12.[Host]01:00:05-01:00:09: welcome back")

		require.Nil(t, warning)
		assert.Equal(t, 3605, entry.StartTime)
		assert.Equal(t, 3609, entry.EndTime)
		assert.Equal(t, "Host", entry.LogSpeaker)
		assert.Equal(t, "welcome back", entry.Text)
	})

	t.Run("should keep colons inside the text", func(t *testing.T) {
		entry, warning := parser.ParseLine("3. [A] 00:10-00:12 : note: this matters")

		require.Nil(t, warning)
		assert.Equal(t, "note: this matters", entry.Text)
	})

	t.Run("should allow empty text", func(t *testing.T) {
		entry, warning := parser.ParseLine("3. [A] 00:10-00:12 :")

		require.Nil(t, warning)
		assert.Equal(t, "", entry.Text)
	})

	t.Run("should reject lines without the transcript shape", func(t *testing.T) {
		for _, line := range []string{
			"no index here",
			"1. missing label 00:00-00:01 : x",
			"1. [] 00:00-00:01 : x",
			"1. [A] 00:00 00:01 : x",
		} {
			_, warning := parser.ParseLine(line)
			require.NotNil(t, warning, line)
			assert.Equal(t, "line does not match transcript format", warning.Reason, line)
		}
	})

	t.Run("should reject fractional timestamps", func(t *testing.T) {
		// Act
		_, warning := parser.ParseLine("1. [A] 00:00.5-00:02 : x")

		// Assert
		require.NotNil(t, warning)
		assert.Equal(t, "invalid start timestamp", warning.Reason)
		var parseErr *timecode.ParseError
		assert.True(t, errors.As(warning, &parseErr))
	})

	t.Run("should reject bad end timestamp", func(t *testing.T) {
		_, warning := parser.ParseLine("1. [A] 00:00-0x:02 : x")

		require.NotNil(t, warning)
		assert.Equal(t, "invalid end timestamp", warning.Reason)
	})
}

func TestEntryParser_Parse(t *testing.T) {
	t.Run("should parse, number and sort entries", func(t *testing.T) {
		// Arrange
		parser := NewEntryParser()
		input := strings.Join([]string{
			"1. [X] 00:05-00:07 : second",
			"",
			"2. [Y] 00:00-00:02 : first",
			"3. [Z] 00:05-00:06 : third",
		}, "\n")

		// Act
		result := parser.Parse(strings.NewReader(input))

		// Assert
		require.NoError(t, result.Err)
		require.Len(t, result.Entries, 3)
		assert.Equal(t, "first", result.Entries[0].Text)
		assert.Equal(t, 3, result.Entries[0].LineNumber)
		assert.Equal(t, "second", result.Entries[1].Text, "equal starts keep source order")
		assert.Equal(t, "third", result.Entries[2].Text)
	})

	t.Run("should warn with line number and continue", func(t *testing.T) {
		// Arrange
		core, logs := observer.New(zapcore.WarnLevel)
		parser := NewEntryParserWithLogger(afero.NewMemMapFs(), zap.New(core))
		input := "1. [X] 00:00-00:02 : ok\ngarbage line\n3. [X] 00:aa-00:05 : bad time\n4. [X] 00:05-00:06 : ok too"

		// Act
		result := parser.Parse(strings.NewReader(input))

		// Assert
		assert.Len(t, result.Entries, 2)
		require.Len(t, result.Warnings, 2)
		assert.Equal(t, 2, result.Warnings[0].Line)
		assert.Equal(t, "garbage line", result.Warnings[0].Raw)
		assert.Equal(t, 3, result.Warnings[1].Line)
		assert.Equal(t, "<input>", result.Warnings[1].Source)

		entries := logs.FilterMessage("skipping transcript line").All()
		require.Len(t, entries, 2)
		assert.Equal(t, int64(2), entries[0].ContextMap()["line"])
		assert.Equal(t, "garbage line", entries[0].ContextMap()["raw"])
	})
}

func TestEntryParser_LongAndOddLines(t *testing.T) {
	t.Run("should keep valid entries around an over-long line", func(t *testing.T) {
		// Arrange
		huge := strings.Repeat("y", 1536*1024)
		input := "1. [X] 00:00-00:02 : hello\n" + huge + "\n3. [X] 00:05-00:07 : bye\n"
		parser := NewEntryParser()

		// Act
		result := parser.Parse(strings.NewReader(input))

		// Assert
		require.NoError(t, result.Err)
		require.Len(t, result.Entries, 2)
		assert.Equal(t, "hello", result.Entries[0].Text)
		assert.Equal(t, "bye", result.Entries[1].Text)
		assert.Equal(t, 3, result.Entries[1].LineNumber)
		require.Len(t, result.Warnings, 1)
		assert.Equal(t, 2, result.Warnings[0].Line)
	})

	t.Run("should split on bare carriage returns", func(t *testing.T) {
		input := "1. [X] 00:00-00:02 : hello\r2. [Y] 00:02-00:05 : world\r"

		result := NewEntryParser().Parse(strings.NewReader(input))

		assert.Empty(t, result.Warnings)
		require.Len(t, result.Entries, 2)
		assert.Equal(t, "Y", result.Entries[1].LogSpeaker)
		assert.Equal(t, 2, result.Entries[1].LineNumber)
	})
}

func TestEntryParser_ParseFile(t *testing.T) {
	t.Run("should read from filesystem", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, "/data/meeting.log", []byte("1. [X] 00:00-00:02 : hello\r\n2. [X] 00:02-00:05 : world\r\n"), 0644))
		parser := NewEntryParserWithLogger(fs, zap.NewNop())

		result := parser.ParseFile("/data/meeting.log")

		require.NoError(t, result.Err)
		require.Len(t, result.Entries, 2)
		assert.Equal(t, "2. [X] 00:02-00:05 : world", result.Entries[1].OriginalLine)
	})

	t.Run("should name the file in warnings", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, "/data/meeting.log", []byte("not a transcript line\n"), 0644))
		parser := NewEntryParserWithLogger(fs, zap.NewNop())

		result := parser.ParseFile("/data/meeting.log")

		require.NoError(t, result.Err)
		require.Len(t, result.Warnings, 1)
		assert.Equal(t, "/data/meeting.log", result.Warnings[0].Source)
		assert.Contains(t, result.Warnings[0].Error(), "/data/meeting.log:1")
	})

	t.Run("should report missing file without failing", func(t *testing.T) {
		parser := NewEntryParserWithLogger(afero.NewMemMapFs(), zap.NewNop())

		result := parser.ParseFile("/data/missing.log")

		assert.Empty(t, result.Entries)
		assert.True(t, errors.Is(result.Err, os.ErrNotExist))
		assert.Error(t, result.Combined())
	})
}
