package testutil

import (
	"context"
	"log/slog"
	"sync"
)

type TestLogRecord struct {
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

// logSink is shared by every handler derived via WithAttrs or WithGroup, so
// records logged through a scoped logger still land in one place.
type logSink struct {
	mu      sync.Mutex
	records []TestLogRecord
}

// TestLogHandler captures records for assertions. Attrs bound with
// Logger.With are folded into each captured record; group names prefix the
// keys the way slog renders them.
type TestLogHandler struct {
	sink   *logSink
	prefix string
	bound  []slog.Attr
}

func NewTestLogHandler() *TestLogHandler {
	return &TestLogHandler{sink: &logSink{}}
}

func (h *TestLogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return true
}

func (h *TestLogHandler) Handle(ctx context.Context, record slog.Record) error {
	attrs := make(map[string]any, record.NumAttrs()+len(h.bound))
	for _, attr := range h.bound {
		attrs[h.prefix+attr.Key] = attr.Value.Any()
	}
	record.Attrs(func(attr slog.Attr) bool {
		attrs[h.prefix+attr.Key] = attr.Value.Any()
		return true
	})

	h.sink.mu.Lock()
	defer h.sink.mu.Unlock()

	h.sink.records = append(h.sink.records, TestLogRecord{
		Level:   record.Level,
		Message: record.Message,
		Attrs:   attrs,
	})

	return nil
}

func (h *TestLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	derived := *h
	derived.bound = append(append([]slog.Attr(nil), h.bound...), attrs...)
	return &derived
}

func (h *TestLogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	derived := *h
	derived.prefix = h.prefix + name + "."
	return &derived
}

func (h *TestLogHandler) GetRecords() []TestLogRecord {
	h.sink.mu.Lock()
	defer h.sink.mu.Unlock()
	return append([]TestLogRecord(nil), h.sink.records...)
}

func (h *TestLogHandler) GetRecordsByLevel(level slog.Level) []TestLogRecord {
	var filtered []TestLogRecord
	for _, record := range h.GetRecords() {
		if record.Level == level {
			filtered = append(filtered, record)
		}
	}
	return filtered
}

func (h *TestLogHandler) Reset() {
	h.sink.mu.Lock()
	defer h.sink.mu.Unlock()
	h.sink.records = h.sink.records[:0]
}

func (h *TestLogHandler) ContainsMessage(level slog.Level, message string) bool {
	for _, record := range h.GetRecordsByLevel(level) {
		if record.Message == message {
			return true
		}
	}
	return false
}

func (h *TestLogHandler) CountByLevel(level slog.Level) int {
	return len(h.GetRecordsByLevel(level))
}
