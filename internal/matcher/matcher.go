// Package matcher assigns diarization speakers to transcript entries by
// maximal temporal overlap.
package matcher

import (
	"go.uber.org/zap"

	"diamix/internal/diarization"
	"diamix/internal/transcript"
)

// Match returns the speaker of the segment that overlaps [start, end) the most.
// Every segment is scanned since segments may overlap each other. Ties keep the
// earliest segment in the given order. Returns transcript.UnknownSpeaker when
// segments is empty or nothing overlaps.
func Match(segments []diarization.Segment, start, end float64) string {
	best := transcript.UnknownSpeaker
	maxOverlap := 0.0

	for _, seg := range segments {
		if overlap := seg.Overlap(start, end); overlap > maxOverlap {
			maxOverlap = overlap
			best = seg.Speaker
		}
	}

	return best
}

// Merger annotates transcript entries with their matched diarization speaker
type Merger struct {
	logger *zap.Logger
}

// NewMerger creates a Merger with a no-op logger
func NewMerger() *Merger {
	return &Merger{logger: zap.NewNop()}
}

// NewMergerWithLogger creates a Merger with the given logger
func NewMergerWithLogger(logger *zap.Logger) *Merger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Merger{logger: logger}
}

// Merge matches every entry against the full segment set. When either input
// is empty there is nothing to merge and an empty slice is returned.
func (m *Merger) Merge(segments []diarization.Segment, entries []transcript.LogEntry) []transcript.MergedEntry {
	if len(segments) == 0 || len(entries) == 0 {
		m.logger.Info("nothing to merge",
			zap.Int("segments", len(segments)),
			zap.Int("entries", len(entries)))
		return []transcript.MergedEntry{}
	}

	merged := make([]transcript.MergedEntry, 0, len(entries))
	unknown := 0
	for _, entry := range entries {
		speaker := Match(segments, float64(entry.StartTime), float64(entry.EndTime))
		if speaker == transcript.UnknownSpeaker {
			unknown++
			m.logger.Debug("no diarization segment overlaps entry",
				zap.Int("line", entry.LineNumber),
				zap.Int("start_time", entry.StartTime),
				zap.Int("end_time", entry.EndTime))
		}
		merged = append(merged, transcript.MergedEntry{
			LogEntry:   entry,
			DiaSpeaker: speaker,
		})
	}

	m.logger.Info("merged entries",
		zap.Int("merged", len(merged)),
		zap.Int("unknown", unknown))

	return merged
}

// Merge is a convenience wrapper around a Merger without logging
func Merge(segments []diarization.Segment, entries []transcript.LogEntry) []transcript.MergedEntry {
	return NewMerger().Merge(segments, entries)
}
