package parser

import (
	"io"
	"strconv"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"diamix/internal/diarization"
)

// SegmentResult holds the segments read from a .dia source and the lines that were dropped
type SegmentResult struct {
	Segments []diarization.Segment
	Warnings []*ParseWarning
	// Err is set when the source could not be read at all; Segments is then empty.
	Err error
}

// Combined returns the source error and every warning as a single error, or nil
func (r SegmentResult) Combined() error {
	return combineWarnings(r.Err, r.Warnings)
}

// SegmentParser reads diarization segments in the "start end speaker" line format
type SegmentParser struct {
	fs     afero.Fs
	logger *zap.Logger
}

// NewSegmentParser creates a SegmentParser reading from the OS filesystem
func NewSegmentParser() *SegmentParser {
	return &SegmentParser{
		fs:     afero.NewOsFs(),
		logger: zap.NewNop(),
	}
}

// NewSegmentParserWithLogger creates a SegmentParser with the given filesystem and logger
func NewSegmentParserWithLogger(fs afero.Fs, logger *zap.Logger) *SegmentParser {
	if logger == nil {
		logger = zap.NewNop()
	}
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &SegmentParser{
		fs:     fs,
		logger: logger,
	}
}

// ParseFile opens path and parses it. A missing or unreadable file yields an
// empty result with Err set instead of failing the caller.
func (sp *SegmentParser) ParseFile(path string) SegmentResult {
	file, err := sp.fs.Open(path)
	if err != nil {
		sp.logger.Error("failed to open diarization file",
			zap.String("path", path),
			zap.Error(err))
		return SegmentResult{Segments: []diarization.Segment{}, Err: &SourceError{Path: path, Err: err}}
	}
	defer file.Close()

	return sp.parse(path, file)
}

// Parse reads segments from r
func (sp *SegmentParser) Parse(r io.Reader) SegmentResult {
	return sp.parse("<input>", r)
}

func (sp *SegmentParser) parse(source string, r io.Reader) SegmentResult {
	result := SegmentResult{Segments: []diarization.Segment{}}

	err := scanLines(r, func(lineNum int, line string) {
		seg, warning := sp.parseLine(source, lineNum, line)
		if warning != nil {
			sp.logger.Warn("skipping diarization line",
				zap.String("source", source),
				zap.Int("line", lineNum),
				zap.String("reason", warning.Reason),
				zap.String("raw", line))
			result.Warnings = append(result.Warnings, warning)
			return
		}
		result.Segments = append(result.Segments, seg)
	})
	if err != nil {
		sp.logger.Error("failed to read diarization source",
			zap.String("source", source),
			zap.Error(err))
		return SegmentResult{Segments: []diarization.Segment{}, Warnings: result.Warnings, Err: &SourceError{Path: source, Err: err}}
	}

	diarization.SortSegments(result.Segments)

	sp.logger.Info("parsed diarization source",
		zap.String("source", source),
		zap.Int("segments", len(result.Segments)),
		zap.Int("warnings", len(result.Warnings)))

	return result
}

func (sp *SegmentParser) parseLine(source string, lineNum int, line string) (diarization.Segment, *ParseWarning) {
	parts := strings.Fields(line)
	if len(parts) < 3 {
		return diarization.Segment{}, &ParseWarning{Source: source, Line: lineNum, Raw: line, Reason: "expected start, end and speaker"}
	}

	start, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return diarization.Segment{}, &ParseWarning{Source: source, Line: lineNum, Raw: line, Reason: "invalid start time", Err: err}
	}

	end, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return diarization.Segment{}, &ParseWarning{Source: source, Line: lineNum, Raw: line, Reason: "invalid end time", Err: err}
	}

	return diarization.Segment{
		Start:   start,
		End:     end,
		Speaker: strings.Join(parts[2:], " "),
	}, nil
}
