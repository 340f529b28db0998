package timecode

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseError reports a timestamp that could not be decoded
type ParseError struct {
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid timestamp %q: %v", e.Text, e.Err)
	}
	return fmt.Sprintf("invalid timestamp %q", e.Text)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Encode formats seconds as HH:MM:SS.mmm
func Encode(seconds float64) string {
	hours := int(seconds / 3600)
	minutes := int(math.Mod(seconds, 3600) / 60)
	secs := math.Mod(seconds, 60)
	return fmt.Sprintf("%02d:%02d:%06.3f", hours, minutes, secs)
}

// Decode converts HH:MM:SS, MM:SS or SS into whole seconds.
// Every component must be an integer; fractional seconds are rejected.
func Decode(text string) (int, error) {
	parts := strings.Split(text, ":")
	if len(parts) > 3 {
		return 0, &ParseError{Text: text, Err: fmt.Errorf("expected at most 3 components, got %d", len(parts))}
	}

	total := 0
	for _, part := range parts {
		value, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return 0, &ParseError{Text: text, Err: err}
		}
		if total > math.MaxInt/60 || total < math.MinInt/60 {
			return 0, &ParseError{Text: text, Err: strconv.ErrRange}
		}
		total *= 60
		if (value > 0 && total > math.MaxInt-value) || (value < 0 && total < math.MinInt-value) {
			return 0, &ParseError{Text: text, Err: strconv.ErrRange}
		}
		total += value
	}

	return total, nil
}
