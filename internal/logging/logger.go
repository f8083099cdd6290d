// Package logging provides the slog handler used by the scoresync tools.
// Lines look like:
//
//	[2025-12-30 09:32:51] [WARN] [frames] message key=value
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// CategoryKey is the attribute that fills the bracketed category column.
const CategoryKey = "category"

const defaultCategory = "global"

// New returns a logger writing the bracketed line format to w.
func New(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(NewHandler(w, level))
}

// ParseLevel parses a log level string into slog.Level.
func ParseLevel(levelStr string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(levelStr)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func levelToString(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN"
	case level >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}

// Handler is a slog.Handler producing one bracketed line per record.
type Handler struct {
	mu       *sync.Mutex
	w        io.Writer
	level    slog.Level
	category string
	attrs    []slog.Attr
	group    string
	now      func() time.Time
}

func NewHandler(w io.Writer, level slog.Level) *Handler {
	return &Handler{mu: &sync.Mutex{}, w: w, level: level, category: defaultCategory, now: time.Now}
}

func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	category := h.category
	var attrs []string
	for _, a := range h.attrs {
		attrs = append(attrs, formatAttr(a))
	}
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == CategoryKey && h.group == "" {
			category = a.Value.String()
			return true
		}
		attrs = append(attrs, formatAttr(h.qualify(a)))
		return true
	})

	t := r.Time
	if t.IsZero() {
		t = h.now()
	}
	line := fmt.Sprintf("[%s] [%s] [%s] %s",
		t.Format("2006-01-02 15:04:05"),
		levelToString(r.Level),
		category,
		r.Message,
	)
	if len(attrs) > 0 {
		line += " " + strings.Join(attrs, " ")
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, line+"\n")
	return err
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := h.clone()
	for _, a := range attrs {
		if a.Key == CategoryKey && h.group == "" {
			c.category = a.Value.String()
			continue
		}
		c.attrs = append(c.attrs, h.qualify(a))
	}
	return c
}

func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	c := h.clone()
	if c.group != "" {
		c.group += "." + name
	} else {
		c.group = name
	}
	return c
}

func (h *Handler) clone() *Handler {
	c := *h
	c.attrs = append([]slog.Attr(nil), h.attrs...)
	return &c
}

func (h *Handler) qualify(a slog.Attr) slog.Attr {
	if h.group == "" {
		return a
	}
	return slog.Attr{Key: h.group + "." + a.Key, Value: a.Value}
}

func formatAttr(a slog.Attr) string {
	v := a.Value.Resolve().String()
	if strings.ContainsAny(v, " \t\"=") || v == "" {
		v = fmt.Sprintf("%q", v)
	}
	return a.Key + "=" + v
}
