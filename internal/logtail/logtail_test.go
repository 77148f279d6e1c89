package logtail

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestRead(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "test.log")

	var content strings.Builder
	var expectedAll []string
	for i := 1; i <= 10; i++ {
		line := fmt.Sprintf("Line %d", i)
		content.WriteString(line + "\n")
		expectedAll = append(expectedAll, line)
	}
	if err := os.WriteFile(logPath, []byte(content.String()), 0o644); err != nil {
		t.Fatalf("failed to create test log file: %v", err)
	}

	tests := []struct {
		name     string
		maxLines int
		expected []string
	}{
		{"read all (0)", 0, expectedAll},
		{"read all (negative)", -1, expectedAll},
		{"read partial (5)", 5, expectedAll[5:]},
		{"read exactly all (10)", 10, expectedAll},
		{"read more than exists (20)", 20, expectedAll},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Read(logPath, tt.maxLines)
			if err != nil {
				t.Fatalf("Read() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Read() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestRead_MissingFile(t *testing.T) {
	lines, err := Read(filepath.Join(t.TempDir(), "nope.log"), 10)
	if err != nil || lines != nil {
		t.Fatalf("Read() = %v, %v; want nil, nil", lines, err)
	}
}

func TestParse(t *testing.T) {
	entry := Parse(`2026-10-19 09:14:03 WRN request failed error="dial tcp: refused" method=GET path=zones`)
	if entry.Continuation {
		t.Fatalf("entry parsed as continuation")
	}
	if entry.Level != zerolog.WarnLevel {
		t.Fatalf("Level = %v, want warn", entry.Level)
	}
	if entry.Time.Format("15:04:05") != "09:14:03" {
		t.Fatalf("Time = %v", entry.Time)
	}
	if entry.Message != "request failed" {
		t.Fatalf("Message = %q", entry.Message)
	}
	if v, ok := entry.Field("error"); !ok || v != "dial tcp: refused" {
		t.Fatalf("error field = %q, %v", v, ok)
	}
	if v, _ := entry.Field("path"); v != "zones" {
		t.Fatalf("path field = %q", v)
	}
	if _, ok := entry.Field("missing"); ok {
		t.Fatalf("unexpected field")
	}
}

func TestParse_MessageWithoutFieldsOrLevel(t *testing.T) {
	entry := Parse("2026-10-19 09:14:03 plain message a=b here")
	if entry.Level != zerolog.NoLevel {
		t.Fatalf("Level = %v, want none", entry.Level)
	}
	if entry.Message != "plain message a=b here" {
		t.Fatalf("Message = %q", entry.Message)
	}
	if len(entry.Fields) != 0 {
		t.Fatalf("Fields = %v", entry.Fields)
	}
}

func TestParseAllAndFilter(t *testing.T) {
	lines := []string{
		"2026-10-19 09:00:00 DBG list request entity=zones",
		"2026-10-19 09:00:01 INF list loaded entity=zones rows=10",
		"2026-10-19 09:00:02 ERR delete failed entity=roles",
		"goroutine 1 [running]:",
		"",
		"2026-10-19 09:00:03 WRN retrying entity=zones",
	}
	entries := ParseAll(lines)
	if len(entries) != 5 {
		t.Fatalf("ParseAll returned %d entries, want 5", len(entries))
	}
	if !entries[3].Continuation || entries[3].Level != zerolog.ErrorLevel {
		t.Fatalf("continuation = %#v", entries[3])
	}

	warn := Filter(entries, zerolog.WarnLevel, "")
	if len(warn) != 3 {
		t.Fatalf("warn filter kept %d, want 3", len(warn))
	}

	zones := Filter(entries, zerolog.TraceLevel, "ZONES")
	if len(zones) != 3 {
		t.Fatalf("needle filter kept %d, want 3", len(zones))
	}
}
