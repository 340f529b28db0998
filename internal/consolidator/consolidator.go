package consolidator

import (
	"go.uber.org/zap"

	"diamix/internal/transcript"
)

// DefaultGapTolerance is the largest distance in seconds between two entries
// of the same speaker that still fuses them into one turn
const DefaultGapTolerance = 5

// Consolidator combines consecutive merged entries of the same diarization
// speaker into single turns
type Consolidator struct {
	gapTolerance float64
	logger       *zap.Logger
}

// NewConsolidator creates a Consolidator with the given gap tolerance in seconds
func NewConsolidator(gapTolerance float64) *Consolidator {
	return &Consolidator{
		gapTolerance: gapTolerance,
		logger:       zap.NewNop(),
	}
}

// NewConsolidatorWithLogger creates a Consolidator with the given gap tolerance and logger
func NewConsolidatorWithLogger(gapTolerance float64, logger *zap.Logger) *Consolidator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Consolidator{
		gapTolerance: gapTolerance,
		logger:       logger,
	}
}

// GapTolerance returns the configured tolerance in seconds
func (c *Consolidator) GapTolerance() float64 {
	return c.gapTolerance
}

// Consolidate folds entries left to right. An entry joins the current turn when
// it has the same speaker and |next.start - current.end| <= tolerance; the
// absolute value lets entries that start before the turn ends join it too.
func (c *Consolidator) Consolidate(entries []transcript.MergedEntry) []transcript.ConsolidatedEntry {
	consolidated := make([]transcript.ConsolidatedEntry, 0, len(entries))
	if len(entries) == 0 {
		return consolidated
	}

	current := transcript.ConsolidatedEntry{MergedEntry: entries[0], Parts: 1}
	for _, next := range entries[1:] {
		if c.fuses(current, next) {
			current = fuse(current, next)
			continue
		}

		consolidated = append(consolidated, current)
		current = transcript.ConsolidatedEntry{MergedEntry: next, Parts: 1}
	}
	consolidated = append(consolidated, current)

	c.logger.Info("consolidated speaker turns",
		zap.Int("entries", len(entries)),
		zap.Int("turns", len(consolidated)),
		zap.Float64("gap_tolerance", c.gapTolerance))

	return consolidated
}

// Reconsolidate runs another pass over already consolidated turns, keeping
// the accumulated part counts
func (c *Consolidator) Reconsolidate(turns []transcript.ConsolidatedEntry) []transcript.ConsolidatedEntry {
	out := make([]transcript.ConsolidatedEntry, 0, len(turns))
	for _, turn := range turns {
		if n := len(out); n > 0 && c.fuses(out[n-1], turn.MergedEntry) {
			fused := fuse(out[n-1], turn.MergedEntry)
			fused.Parts = out[n-1].Parts + turn.Parts
			out[n-1] = fused
			continue
		}
		out = append(out, turn)
	}
	return out
}

func (c *Consolidator) fuses(current transcript.ConsolidatedEntry, next transcript.MergedEntry) bool {
	if next.DiaSpeaker != current.DiaSpeaker {
		return false
	}
	gap := next.StartTime - current.EndTime
	if gap < 0 {
		gap = -gap
	}
	return float64(gap) <= c.gapTolerance
}

// fuse returns a new turn; current is passed by value so nothing already
// emitted is modified
func fuse(current transcript.ConsolidatedEntry, next transcript.MergedEntry) transcript.ConsolidatedEntry {
	current.EndTime = max(current.EndTime, next.EndTime)
	current.Text += " " + next.Text
	current.Parts++
	return current
}

// Consolidate folds entries with the default gap tolerance
func Consolidate(entries []transcript.MergedEntry) []transcript.ConsolidatedEntry {
	return NewConsolidator(DefaultGapTolerance).Consolidate(entries)
}
