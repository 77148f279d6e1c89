package logtail

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/khidmat-portal/khidmat/internal/logging"
)

// Read returns at most maxLines from the end of the file at path.
// maxLines <= 0 returns every line.
func Read(path string, maxLines int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer func() { _ = file.Close() }()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if maxLines <= 0 {
		var lines []string
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read log: %w", err)
		}
		return lines, nil
	}

	ring := make([]string, maxLines)
	count := 0
	idx := 0
	for scanner.Scan() {
		ring[idx] = scanner.Text()
		idx = (idx + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	lines := make([]string, count)
	if count == maxLines {
		for i := range count {
			lines[i] = ring[(idx+i)%maxLines]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}

// Field is one key=value pair from a log line.
type Field struct {
	Key   string
	Value string
}

// Entry is a parsed log line.
type Entry struct {
	Raw          string
	Time         time.Time
	Level        zerolog.Level
	Message      string
	Fields       []Field
	Continuation bool
}

var levelAbbrev = map[string]zerolog.Level{
	"TRC": zerolog.TraceLevel,
	"DBG": zerolog.DebugLevel,
	"INF": zerolog.InfoLevel,
	"WRN": zerolog.WarnLevel,
	"ERR": zerolog.ErrorLevel,
	"FTL": zerolog.FatalLevel,
	"PNC": zerolog.PanicLevel,
}

// Parse decodes a single console-formatted line.
func Parse(line string) Entry {
	entry := Entry{Raw: line, Level: zerolog.NoLevel}
	stampLen := len(logging.TimeFormat)
	if len(line) < stampLen {
		entry.Continuation = true
		entry.Message = strings.TrimSpace(line)
		return entry
	}
	stamp, err := time.ParseInLocation(logging.TimeFormat, line[:stampLen], time.Local)
	if err != nil {
		entry.Continuation = true
		entry.Message = strings.TrimSpace(line)
		return entry
	}
	entry.Time = stamp

	rest := strings.TrimSpace(line[stampLen:])
	abbrev, after, _ := strings.Cut(rest, " ")
	if level, known := levelAbbrev[abbrev]; known {
		entry.Level = level
		rest = after
	}

	tokens := splitTokens(rest)
	firstField := len(tokens)
	for i := len(tokens) - 1; i >= 0; i-- {
		if !isField(tokens[i]) {
			break
		}
		firstField = i
	}
	entry.Message = strings.Join(tokens[:firstField], " ")
	for _, tok := range tokens[firstField:] {
		key, value, _ := strings.Cut(tok, "=")
		entry.Fields = append(entry.Fields, Field{Key: key, Value: strings.Trim(value, `"`)})
	}
	return entry
}

// Field returns the value for key and whether it was present.
func (e Entry) Field(key string) (string, bool) {
	for _, f := range e.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return "", false
}

// ParseAll parses lines, attaching continuation lines to the level of the
// entry they follow.
func ParseAll(lines []string) []Entry {
	entries := make([]Entry, 0, len(lines))
	last := zerolog.NoLevel
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		entry := Parse(line)
		if entry.Continuation {
			entry.Level = last
		} else {
			last = entry.Level
		}
		entries = append(entries, entry)
	}
	return entries
}

// Filter keeps entries at or above min whose raw text contains needle.
// Entries without a level are always kept.
func Filter(entries []Entry, min zerolog.Level, needle string) []Entry {
	needle = strings.ToLower(strings.TrimSpace(needle))
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.Level != zerolog.NoLevel && e.Level < min {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(e.Raw), needle) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// splitTokens splits on spaces, keeping double-quoted runs together.
func splitTokens(s string) []string {
	var (
		tokens  []string
		current strings.Builder
		quoted  bool
		escaped bool
	)
	for _, r := range s {
		switch {
		case escaped:
			escaped = false
		case r == '\\' && quoted:
			escaped = true
		case r == '"':
			quoted = !quoted
		case r == ' ' && !quoted:
			if current.Len() > 0 {
				tokens = append(tokens, current.String())
				current.Reset()
			}
			continue
		}
		current.WriteRune(r)
	}
	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}
	return tokens
}

func isField(tok string) bool {
	key, _, ok := strings.Cut(tok, "=")
	if !ok || key == "" {
		return false
	}
	for _, r := range key {
		if r != '_' && r != '-' && r != '.' && (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}
