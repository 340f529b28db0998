package output

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"diamix/internal/transcript"
)

var leadingIndexRegex = regexp.MustCompile(`^\d+\.`)

// RenderLine formats the turn at zero-based position i in the transcript line format.
// Matched turns get the diarization speaker and the original timestamp text of
// their first entry; unmatched turns keep their original line with only the
// leading index replaced.
func RenderLine(i int, entry transcript.ConsolidatedEntry) string {
	if entry.HasSpeaker() {
		return fmt.Sprintf("%d. [%s] %s-%s : %s",
			i+1, entry.DiaSpeaker, entry.OriginalStartTime, entry.OriginalEndTime, entry.Text)
	}
	return leadingIndexRegex.ReplaceAllLiteralString(entry.OriginalLine, strconv.Itoa(i+1)+".")
}

// RenderLines renumbers and formats every turn in order
func RenderLines(entries []transcript.ConsolidatedEntry) []string {
	lines := make([]string, len(entries))
	for i, entry := range entries {
		lines[i] = RenderLine(i, entry)
	}
	return lines
}

// Render returns the rendered lines joined by newlines, without a trailing newline
func Render(entries []transcript.ConsolidatedEntry) string {
	return strings.Join(RenderLines(entries), "\n")
}
