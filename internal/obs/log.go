// Package obs wires the cause bus into structured logging and Prometheus
// metrics, kept out of truth/ itself since observation is a host concern,
// not part of the front end (spec §1 NEW "Ambient stack").
package obs

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"

	slogmulti "github.com/samber/slog-multi"
)

// Level is the shared, mutable log level the stderr handler reads from,
// grounded on reusee-tai/logs' package-level slog.LevelVar. The ring
// handler does not read it and retains records at every level.
var Level = new(slog.LevelVar)

// RingHandler retains the last n log records in memory so the CLI can dump
// them on --debug without re-running at debug level from the start.
type RingHandler struct {
	mu      sync.Mutex
	cap     int
	records []slog.Record
	attrs   []slog.Attr
	groups  []string
}

// NewRingHandler constructs a RingHandler holding at most capacity records.
func NewRingHandler(capacity int) *RingHandler {
	return &RingHandler{cap: capacity}
}

func (h *RingHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *RingHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, r)
	if over := len(h.records) - h.cap; h.cap > 0 && over > 0 {
		h.records = h.records[over:]
	}
	return nil
}

func (h *RingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	cp := *h
	cp.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &cp
}

func (h *RingHandler) WithGroup(name string) slog.Handler {
	cp := *h
	cp.groups = append(append([]string{}, h.groups...), name)
	return &cp
}

// Dump renders every retained record as text, oldest first.
func (h *RingHandler) Dump(w io.Writer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	text := slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})
	for _, r := range h.records {
		_ = text.Handle(context.Background(), r)
	}
}

// NewLogger builds the fanned-out slog.Logger the program and CLI share: a
// stderr text handler plus an in-memory ring the caller can Dump, following
// the layered-handler-fan-out shape of reusee-tai/logs' Logger constructor,
// adapted from slog-journal to a plain ring buffer.
func NewLogger(ring *RingHandler) *slog.Logger {
	stderrHandler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: Level})
	return slog.New(slogmulti.Fanout(stderrHandler, ring))
}
