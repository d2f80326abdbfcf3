// Package source discovers and parses Claude Code JSONL session files.
package source

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/theirongolddev/ccmonitor/internal/model"
)

// MaxLineBytes bounds a single JSONL line. Longer lines are skipped.
const MaxLineBytes = 8 * 1024 * 1024

// SkipReason says why a line produced no record.
type SkipReason string

// Skip reasons, in the order the parser checks them.
const (
	SkipNone         SkipReason = ""
	SkipBlank        SkipReason = "blank"
	SkipTruncated    SkipReason = "truncated"
	SkipTooLong      SkipReason = "too_long"
	SkipNotAssistant SkipReason = "not_assistant"
	SkipDecode       SkipReason = "decode_error"
	SkipSchema       SkipReason = "schema_mismatch"
)

// ParseResult holds the output of parsing a single JSONL file.
type ParseResult struct {
	Records []model.UsageRecord
	Lines   int
	Skipped map[SkipReason]int
	Err     error
}

// SkippedLines counts lines that were not blank and still produced no record.
func (r ParseResult) SkippedLines() int {
	n := 0
	for reason, c := range r.Skipped {
		if reason != SkipBlank && reason != SkipNotAssistant {
			n += c
		}
	}
	return n
}

// ParseFile reads a JSONL session file and returns its usage records in file order.
// Bad lines are counted and skipped; only open and read failures set Err.
func ParseFile(df DiscoveredFile, logger *slog.Logger) ParseResult {
	f, err := os.Open(df.Path)
	if err != nil {
		return ParseResult{Err: fmt.Errorf("opening %s: %w", df.Path, err)}
	}
	defer func() { _ = f.Close() }()

	result := ParseReader(f, df.SessionID, orDiscard(logger).With("file", df.Path))
	if result.Err != nil {
		result.Err = fmt.Errorf("reading %s: %w", df.Path, result.Err)
	}
	return result
}

// ParseReader parses newline-delimited records from r.
func ParseReader(r io.Reader, fallbackSession string, logger *slog.Logger) ParseResult {
	logger = orDiscard(logger)
	result := ParseResult{Skipped: make(map[SkipReason]int)}
	br := bufio.NewReaderSize(r, 256*1024)

	for {
		line, tooLong, err := readLine(br)
		if len(line) > 0 || tooLong || err == nil {
			result.Lines++
			var (
				rec    model.UsageRecord
				reason SkipReason
			)
			if tooLong {
				reason = SkipTooLong
			} else {
				rec, reason = ParseLine(line, fallbackSession)
			}
			if reason == SkipNone {
				result.Records = append(result.Records, rec)
			} else {
				result.Skipped[reason]++
				if reason != SkipBlank && reason != SkipNotAssistant {
					logger.Debug("skipping line", "line", result.Lines, "reason", string(reason))
				}
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return result
			}
			result.Err = err
			return result
		}
	}
}

func orDiscard(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return logger
}

// readLine returns the next line without its terminator. Lines past
// MaxLineBytes are drained and reported as tooLong with no content.
func readLine(br *bufio.Reader) (line []byte, tooLong bool, err error) {
	var buf []byte
	for {
		var chunk []byte
		chunk, err = br.ReadSlice('\n')
		if !tooLong {
			if len(buf)+len(chunk) > MaxLineBytes+1 {
				tooLong = true
				buf = nil
			} else {
				buf = append(buf, chunk...)
			}
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		if tooLong {
			return nil, true, err
		}
		return bytes.TrimRight(buf, "\r\n"), false, err
	}
}

// ParseLine turns one log line into a usage record, or says why it can't.
// Lines without a sessionId inherit fallbackSession.
func ParseLine(line []byte, fallbackSession string) (model.UsageRecord, SkipReason) {
	trimmed := bytes.TrimSpace(line)
	if len(trimmed) == 0 {
		return model.UsageRecord{}, SkipBlank
	}
	if trimmed[0] != '{' || trimmed[len(trimmed)-1] != '}' {
		return model.UsageRecord{}, SkipTruncated
	}

	// A line of another type still counts when it matches the record
	// schema. Without a "usage" key it cannot, so skip the decode.
	typ := extractTopLevelType(trimmed)
	otherType := typ != "" && typ != "assistant"
	if otherType && !bytes.Contains(trimmed, usageKey) {
		return model.UsageRecord{}, SkipNotAssistant
	}

	var entry RawEntry
	if err := json.Unmarshal(trimmed, &entry); err != nil {
		if otherType {
			return model.UsageRecord{}, SkipNotAssistant
		}
		return model.UsageRecord{}, SkipDecode
	}

	rec, ok := entry.toRecord()
	if !ok {
		if otherType {
			return model.UsageRecord{}, SkipNotAssistant
		}
		return model.UsageRecord{}, SkipSchema
	}
	if rec.SessionID == "" {
		rec.SessionID = fallbackSession
	}
	return rec, SkipNone
}

func (e RawEntry) toRecord() (model.UsageRecord, bool) {
	if e.Timestamp == "" || e.Message == nil || e.Message.Model == "" || e.Message.Usage == nil {
		return model.UsageRecord{}, false
	}
	ts, err := time.Parse(time.RFC3339Nano, e.Timestamp)
	if err != nil {
		return model.UsageRecord{}, false
	}

	u := e.Message.Usage
	if u.InputTokens == nil || u.OutputTokens == nil {
		return model.UsageRecord{}, false
	}
	usage := model.TokenUsage{
		InputTokens:              *u.InputTokens,
		OutputTokens:             *u.OutputTokens,
		CacheCreationInputTokens: u.CacheCreationInputTokens,
		CacheReadInputTokens:     u.CacheReadInputTokens,
	}
	if usage.InputTokens < 0 || usage.OutputTokens < 0 ||
		usage.CacheCreationInputTokens < 0 || usage.CacheReadInputTokens < 0 {
		return model.UsageRecord{}, false
	}

	cost := e.Message.CostUSD
	if cost == nil {
		cost = e.CostUSD
	}

	return model.UsageRecord{
		Timestamp:   ts.UTC(),
		SessionID:   e.SessionID,
		ProjectPath: e.Cwd,
		Model:       e.Message.Model,
		Usage:       usage,
		CostUSD:     cost,
	}, true
}

// usageKey must appear in any line that can carry token counts.
var usageKey = []byte(`"usage"`)

// typeKey is the byte sequence for a JSON key named "type" (with quotes).
var typeKey = []byte(`"type"`)

// extractTopLevelType finds the top-level "type" field in a JSONL line.
// Tracks brace depth and string boundaries so nested "type" keys are ignored.
func extractTopLevelType(line []byte) string {
	depth := 0
	for i := 0; i < len(line); {
		switch line[i] {
		case '"':
			if depth == 1 && bytes.HasPrefix(line[i:], typeKey) {
				if val, isKey := classifyType(line, i+len(typeKey)); isKey {
					return val
				}
			}
			i = skipJSONString(line, i)
		case '{':
			depth++
			i++
		case '}':
			depth--
			i++
		default:
			i++
		}
	}
	return ""
}

// classifyType checks whether pos follows a JSON key (expects : then value).
// isKey=false means "type" appeared as a value and the caller should keep scanning.
func classifyType(line []byte, pos int) (val string, isKey bool) {
	i := skipSpaces(line, pos)
	if i >= len(line) || line[i] != ':' {
		return "", false
	}
	i = skipSpaces(line, i+1)
	if i >= len(line) || line[i] != '"' {
		return "", true // null, number, etc.
	}
	i++

	end := bytes.IndexByte(line[i:], '"')
	if end < 0 || end > 32 {
		return "", true
	}
	return string(line[i : i+end]), true
}

// skipJSONString advances past a JSON string starting at the opening quote.
//
//nolint:gosec // manual bounds checking throughout
func skipJSONString(line []byte, i int) int {
	i++
	for i < len(line) {
		switch line[i] {
		case '\\':
			i += 2
		case '"':
			return i + 1
		default:
			i++
		}
	}
	return i
}

func skipSpaces(line []byte, i int) int {
	for i < len(line) && (line[i] == ' ' || line[i] == '\t') {
		i++
	}
	return i
}
