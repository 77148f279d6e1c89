package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestNew_WritesPlainLinesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "khidmat.log")

	logger, err := New(Options{Level: "info", File: path})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info().Str("entity", "zones").Msg("list loaded")
	logger.Debug().Msg("hidden")
	if err := logger.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	text := string(data)
	if !strings.Contains(text, "INF list loaded entity=zones") {
		t.Fatalf("log = %q, want plain console line", text)
	}
	if strings.Contains(text, "hidden") {
		t.Fatalf("debug line written at info level: %q", text)
	}
	if strings.Contains(text, "\x1b[") {
		t.Fatalf("file output must not carry ANSI colors: %q", text)
	}
}

func TestNew_DebugFlagRaisesVerbosity(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "warn", Debug: true, Stderr: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if logger.GetLevel() != zerolog.DebugLevel {
		t.Fatalf("level = %v, want debug", logger.GetLevel())
	}
	logger.Debug().Msg("visible")
	if !strings.Contains(buf.String(), "visible") {
		t.Fatalf("stderr = %q", buf.String())
	}

	trace, err := New(Options{Level: "trace", Debug: true, Stderr: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if trace.GetLevel() != zerolog.TraceLevel {
		t.Fatalf("debug flag must not lower trace: %v", trace.GetLevel())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    zerolog.Level
		wantErr bool
	}{
		{"", zerolog.InfoLevel, false},
		{" DEBUG ", zerolog.DebugLevel, false},
		{"warning", zerolog.WarnLevel, false},
		{"error", zerolog.ErrorLevel, false},
		{"loud", zerolog.NoLevel, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseLevel(%q) error = %v", tt.in, err)
		}
		if !tt.wantErr && got != tt.want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNopClose(t *testing.T) {
	if err := Nop().Close(); err != nil {
		t.Fatalf("Nop().Close() = %v", err)
	}
	var nilLogger *Logger
	if err := nilLogger.Close(); err != nil {
		t.Fatalf("nil Close() = %v", err)
	}
}
