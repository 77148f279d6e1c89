package notify

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestBoard_CurrentExpires(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	b := NewBoard(3, time.Second)
	b.now = func() time.Time { return now }

	if _, ok := b.Current(); ok {
		t.Fatalf("empty board should have no current notice")
	}

	Success(b, "deleted %s", "zone")
	n, ok := b.Current()
	if !ok || n.Message != "deleted zone" || n.Level != LevelSuccess {
		t.Fatalf("Current = %#v, %v", n, ok)
	}

	now = now.Add(2 * time.Second)
	if _, ok := b.Current(); ok {
		t.Fatalf("notice should have expired")
	}
}

func TestBoard_HelpersUseBoardClock(t *testing.T) {
	stamp := time.Date(2020, 6, 1, 8, 30, 0, 0, time.UTC)
	b := NewBoard(3, time.Second)
	b.now = func() time.Time { return stamp }

	Warn(b, "zone %d unreachable", 4)
	got := b.History()
	if len(got) != 1 || !got[0].At.Equal(stamp) {
		t.Fatalf("History = %#v, want At = %v", got, stamp)
	}

	explicit := stamp.Add(-time.Hour)
	b.Push(Notice{Level: LevelInfo, Message: "kept", At: explicit})
	if got := b.History()[1].At; !got.Equal(explicit) {
		t.Fatalf("explicit At = %v, want %v", got, explicit)
	}
}

func TestBoard_HistoryIsBounded(t *testing.T) {
	b := NewBoard(2, time.Minute)
	Info(b, "one")
	Warn(b, "two")
	Error(b, "three")

	got := b.History()
	if len(got) != 2 || got[0].Message != "two" || got[1].Message != "three" {
		t.Fatalf("History = %#v", got)
	}
	got[0].Message = "mutated"
	if b.History()[0].Message != "two" {
		t.Fatalf("History should return a copy")
	}
}

func TestTeeAndLogSink(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	b := NewBoard(0, 0)

	sink := Tee(b, LogSink(logger), nil)
	Error(sink, "failed to load %s", "khat")

	if n, ok := b.Current(); !ok || n.Level != LevelError {
		t.Fatalf("board did not receive notice: %#v", n)
	}
	out := buf.String()
	if !strings.Contains(out, `"level":"error"`) || !strings.Contains(out, "failed to load khat") {
		t.Fatalf("log output = %q", out)
	}
}

func TestHelpersIgnoreNilSink(t *testing.T) {
	Info(nil, "nothing")
	Discard.Push(Notice{Message: "dropped"})
}
