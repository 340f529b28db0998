package parser

import (
	"io"
	"regexp"
	"sort"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"diamix/internal/timecode"
	"diamix/internal/transcript"
)

// EntryResult holds the entries read from a transcript source and the lines that were dropped
type EntryResult struct {
	Entries  []transcript.LogEntry
	Warnings []*ParseWarning
	// Err is set when the source could not be read at all; Entries is then empty.
	Err error
}

// Combined returns the source error and every warning as a single error, or nil
func (r EntryResult) Combined() error {
	return combineWarnings(r.Err, r.Warnings)
}

// EntryParser reads transcript lines of the form "N. [label] start-end : text"
type EntryParser struct {
	fs     afero.Fs
	logger *zap.Logger
	// Pre-compiled line pattern
	lineRegex *regexp.Regexp
}

// NewEntryParser creates an EntryParser reading from the OS filesystem
func NewEntryParser() *EntryParser {
	return NewEntryParserWithLogger(afero.NewOsFs(), zap.NewNop())
}

// NewEntryParserWithLogger creates an EntryParser with the given filesystem and logger
func NewEntryParserWithLogger(fs afero.Fs, logger *zap.Logger) *EntryParser {
	if logger == nil {
		logger = zap.NewNop()
	}
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &EntryParser{
		fs:        fs,
		logger:    logger,
		lineRegex: regexp.MustCompile(`^\d+\.\s*\[([^\]]+)\]\s*([^-]+)-(\S+)\s*:\s*(.*)`),
	}
}

// ParseFile opens path and parses it. A missing or unreadable file yields an
// empty result with Err set instead of failing the caller.
func (ep *EntryParser) ParseFile(path string) EntryResult {
	file, err := ep.fs.Open(path)
	if err != nil {
		ep.logger.Error("failed to open transcript file",
			zap.String("path", path),
			zap.Error(err))
		return EntryResult{Entries: []transcript.LogEntry{}, Err: &SourceError{Path: path, Err: err}}
	}
	defer file.Close()

	return ep.parse(path, file)
}

// Parse reads transcript entries from r
func (ep *EntryParser) Parse(r io.Reader) EntryResult {
	return ep.parse("<input>", r)
}

func (ep *EntryParser) parse(source string, r io.Reader) EntryResult {
	result := EntryResult{Entries: []transcript.LogEntry{}}

	err := scanLines(r, func(lineNum int, line string) {
		entry, warning := ep.ParseLine(line)
		if warning != nil {
			warning.Source = source
			warning.Line = lineNum
			ep.logger.Warn("skipping transcript line",
				zap.String("source", source),
				zap.Int("line", lineNum),
				zap.String("reason", warning.Reason),
				zap.String("raw", line))
			result.Warnings = append(result.Warnings, warning)
			return
		}
		entry.LineNumber = lineNum
		result.Entries = append(result.Entries, entry)
	})
	if err != nil {
		ep.logger.Error("failed to read transcript source",
			zap.String("source", source),
			zap.Error(err))
		return EntryResult{Entries: []transcript.LogEntry{}, Warnings: result.Warnings, Err: &SourceError{Path: source, Err: err}}
	}

	sort.SliceStable(result.Entries, func(i, j int) bool {
		return result.Entries[i].StartTime < result.Entries[j].StartTime
	})

	ep.logger.Info("parsed transcript source",
		zap.String("source", source),
		zap.Int("entries", len(result.Entries)),
		zap.Int("warnings", len(result.Warnings)))

	return result
}

// ParseLine decodes a single trimmed transcript line. The returned warning
// carries no position; callers scanning a source fill it in.
func (ep *EntryParser) ParseLine(line string) (transcript.LogEntry, *ParseWarning) {
	matches := ep.lineRegex.FindStringSubmatch(line)
	if matches == nil {
		return transcript.LogEntry{}, &ParseWarning{Raw: line, Reason: "line does not match transcript format"}
	}

	label := strings.TrimSpace(matches[1])
	startText := strings.TrimSpace(matches[2])
	endText := strings.TrimSpace(matches[3])

	start, err := timecode.Decode(startText)
	if err != nil {
		return transcript.LogEntry{}, &ParseWarning{Raw: line, Reason: "invalid start timestamp", Err: err}
	}

	end, err := timecode.Decode(endText)
	if err != nil {
		return transcript.LogEntry{}, &ParseWarning{Raw: line, Reason: "invalid end timestamp", Err: err}
	}

	return transcript.LogEntry{
		StartTime:         start,
		EndTime:           end,
		LogSpeaker:        label,
		Text:              strings.TrimSpace(matches[4]),
		OriginalLine:      line,
		OriginalStartTime: startText,
		OriginalEndTime:   endText,
	}, nil
}
