package notify

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Level ranks a notice.
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelSuccess:
		return "success"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// Notice is a single toast message.
type Notice struct {
	Level   Level
	Message string
	At      time.Time // zero is stamped by the Board on Push
}

// Sink receives notices. Push must not block.
type Sink interface {
	Push(Notice)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Notice)

func (f SinkFunc) Push(n Notice) { f(n) }

// Discard drops every notice.
var Discard Sink = SinkFunc(func(Notice) {})

// Tee fans a notice out to several sinks.
func Tee(sinks ...Sink) Sink {
	return SinkFunc(func(n Notice) {
		for _, s := range sinks {
			if s != nil {
				s.Push(n)
			}
		}
	})
}

// LogSink writes notices to the log so they show up in the activity view.
func LogSink(logger zerolog.Logger) Sink {
	return SinkFunc(func(n Notice) {
		var ev *zerolog.Event
		switch n.Level {
		case LevelError:
			ev = logger.Error()
		case LevelWarn:
			ev = logger.Warn()
		default:
			ev = logger.Info()
		}
		ev.Str("notice", n.Level.String()).Msg(n.Message)
	})
}

func push(s Sink, level Level, format string, args ...any) {
	if s == nil {
		return
	}
	s.Push(Notice{Level: level, Message: fmt.Sprintf(format, args...)})
}

func Info(s Sink, format string, args ...any)    { push(s, LevelInfo, format, args...) }
func Success(s Sink, format string, args ...any) { push(s, LevelSuccess, format, args...) }
func Warn(s Sink, format string, args ...any)    { push(s, LevelWarn, format, args...) }
func Error(s Sink, format string, args ...any)   { push(s, LevelError, format, args...) }

const (
	defaultCapacity = 50
	defaultTTL      = 5 * time.Second
)

// Board keeps a bounded history of notices; the newest unexpired one is
// shown as a toast.
type Board struct {
	mu    sync.Mutex
	items []Notice
	max   int
	ttl   time.Duration
	now   func() time.Time
}

// NewBoard returns a Board holding up to capacity notices, each visible for ttl.
func NewBoard(capacity int, ttl time.Duration) *Board {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Board{max: capacity, ttl: ttl, now: time.Now}
}

// Push records a notice, dropping the oldest once full.
func (b *Board) Push(n Notice) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if n.At.IsZero() {
		n.At = b.now()
	}
	b.items = append(b.items, n)
	if len(b.items) > b.max {
		b.items = append(b.items[:0], b.items[len(b.items)-b.max:]...)
	}
}

// Current returns the newest notice that has not yet expired.
func (b *Board) Current() (Notice, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.items) == 0 {
		return Notice{}, false
	}
	latest := b.items[len(b.items)-1]
	if b.now().Sub(latest.At) > b.ttl {
		return Notice{}, false
	}
	return latest, true
}

// History returns all retained notices, oldest first.
func (b *Board) History() []Notice {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Notice, len(b.items))
	copy(out, b.items)
	return out
}
