package diarization

import (
	"fmt"
	"io"
	"sort"
)

// Segment represents a speaker-attributed time range in seconds
type Segment struct {
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Speaker string  `json:"speaker"`
}

// Validate checks if the Segment has valid values
func (s *Segment) Validate() error {
	if s.Start < 0 {
		return fmt.Errorf("start cannot be negative")
	}

	if s.End <= s.Start {
		return fmt.Errorf("end must be greater than start")
	}

	if s.Speaker == "" {
		return fmt.Errorf("speaker cannot be empty")
	}

	return nil
}

// Overlap returns the length of the intersection between the segment and [start, end),
// or zero when they do not intersect
func (s Segment) Overlap(start, end float64) float64 {
	overlap := min(end, s.End) - max(start, s.Start)
	if overlap < 0 {
		return 0
	}
	return overlap
}

// SortSegments orders segments by start time, keeping input order for equal starts
func SortSegments(segments []Segment) {
	sort.SliceStable(segments, func(i, j int) bool {
		return segments[i].Start < segments[j].Start
	})
}

// WriteSegments writes segments in the .dia line format: "start end speaker"
// with start and end fixed to three decimals
func WriteSegments(w io.Writer, segments []Segment) error {
	for _, seg := range segments {
		if _, err := fmt.Fprintf(w, "%.3f %.3f %s\n", seg.Start, seg.End, seg.Speaker); err != nil {
			return fmt.Errorf("failed to write segment: %w", err)
		}
	}
	return nil
}
