package transcript

import "fmt"

// UnknownSpeaker marks an entry that no diarization segment overlaps
const UnknownSpeaker = "UNKNOWN"

// LogEntry represents one parsed transcript line with its original speaker label.
// The verbatim line and timestamp text are kept so rendering never has to
// reconstruct them from the decoded seconds.
type LogEntry struct {
	StartTime         int    `json:"start_time" yaml:"start_time"`
	EndTime           int    `json:"end_time" yaml:"end_time"`
	LogSpeaker        string `json:"log_speaker" yaml:"log_speaker"`
	Text              string `json:"text" yaml:"text"`
	OriginalLine      string `json:"original_line" yaml:"original_line"`
	OriginalStartTime string `json:"original_start" yaml:"original_start"`
	OriginalEndTime   string `json:"original_end" yaml:"original_end"`
	LineNumber        int    `json:"line_number" yaml:"line_number"`
}

// Validate checks if the LogEntry has valid values
func (e *LogEntry) Validate() error {
	if e.StartTime < 0 {
		return fmt.Errorf("start_time cannot be negative")
	}

	if e.OriginalLine == "" {
		return fmt.Errorf("original_line cannot be empty")
	}

	return nil
}

// MergedEntry is a LogEntry annotated with the diarization speaker chosen for it
type MergedEntry struct {
	LogEntry
	DiaSpeaker string `json:"dia_speaker" yaml:"dia_speaker"`
}

// HasSpeaker reports whether a diarization segment was matched
func (m MergedEntry) HasSpeaker() bool {
	return m.DiaSpeaker != UnknownSpeaker
}

// ConsolidatedEntry is one speaker turn built from Parts consecutive merged entries
type ConsolidatedEntry struct {
	MergedEntry
	Parts int `json:"parts" yaml:"parts"`
}
