// Package logger implements a logging adapter using log/slog.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/muesli/termenv"
	"go.trai.ch/quill/internal/ui/output"
	"go.trai.ch/quill/internal/ui/style"
)

// consoleHandler writes one colored line per record: a level mark, the
// message, then key=value attributes.
type consoleHandler struct {
	out   *termenv.Output
	mu    *sync.Mutex
	level slog.Leveler
	// prefix is the pre-rendered form of the attributes added by WithAttrs.
	prefix string
	groups []string
}

func newConsoleHandler(w io.Writer, level slog.Leveler) *consoleHandler {
	if w == nil {
		w = os.Stderr
	}
	if level == nil {
		level = slog.LevelInfo
	}
	return &consoleHandler{out: output.New(w), mu: &sync.Mutex{}, level: level}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

//nolint:gocritic // slog.Handler interface requires slog.Record by value
func (h *consoleHandler) Handle(_ context.Context, r slog.Record) error {
	mark, color := levelMark(r.Level)

	var b strings.Builder
	if mark != "" {
		b.WriteString(mark)
		b.WriteByte(' ')
	}
	b.WriteString(r.Message)
	b.WriteString(h.prefix)
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(&b, h.groups, a)
		return true
	})

	line := h.out.String(b.String()).Foreground(termenv.RGBColor(string(color))).String() + "\n"

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.out.WriteString(line)
	return err
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	var b strings.Builder
	b.WriteString(h.prefix)
	for _, a := range attrs {
		writeAttr(&b, h.groups, a)
	}
	next := *h
	next.prefix = b.String()
	return &next
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.groups = append(append([]string(nil), h.groups...), name)
	return &next
}

// levelMark returns the icon and color for records at level. Info has no icon.
func levelMark(level slog.Level) (string, string) {
	switch {
	case level >= slog.LevelError:
		return style.Cross, string(style.Red)
	case level >= slog.LevelWarn:
		return style.Warning, string(style.Yellow)
	case level < slog.LevelInfo:
		return style.Dot, string(style.Slate)
	default:
		return "", string(style.Quill)
	}
}

// writeAttr appends " group.key=value", flattening nested groups.
func writeAttr(b *strings.Builder, groups []string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() == slog.KindGroup {
		inner := groups
		if a.Key != "" {
			inner = append(append([]string(nil), groups...), a.Key)
		}
		for _, ga := range a.Value.Group() {
			writeAttr(b, inner, ga)
		}
		return
	}
	b.WriteByte(' ')
	for _, g := range groups {
		b.WriteString(g)
		b.WriteByte('.')
	}
	b.WriteString(a.Key)
	b.WriteByte('=')
	b.WriteString(a.Value.String())
}
