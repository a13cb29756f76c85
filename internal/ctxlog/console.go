// Copyright (c) daqtools 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package ctxlog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/TylerBrock/colorjson"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// timeFormat is the format used for timestamps in console log messages.
const timeFormat = "[15:04:05.000]"

var (
	styleTime  = lipgloss.NewStyle().Faint(true)
	styleDebug = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	styleInfo  = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	styleWarn  = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	styleError = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
)

// ConsoleHandler is a slog handler that renders human-readable, optionally
// colorized lines: a timestamp, a styled level, the message, then any
// attributes as an indented JSON object.
type ConsoleHandler struct {
	opts   *slog.HandlerOptions
	mu     *sync.Mutex
	w      io.Writer
	color  bool
	attrs  []slog.Attr
	prefix string
}

// NewConsole creates a ConsoleHandler writing to w. Color is enabled only
// when w is a terminal and NO_COLOR is unset.
func NewConsole(w io.Writer, opts *slog.HandlerOptions) *ConsoleHandler {
	if opts == nil {
		opts = &slog.HandlerOptions{}
	}

	color := false
	if f, ok := w.(*os.File); ok {
		color = term.IsTerminal(int(f.Fd())) && os.Getenv("NO_COLOR") == ""
	}

	return &ConsoleHandler{
		opts:  opts,
		mu:    &sync.Mutex{},
		w:     w,
		color: color,
	}
}

// Enabled implements slog.Handler.
func (h *ConsoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	minLevel := slog.LevelInfo
	if h.opts.Level != nil {
		minLevel = h.opts.Level.Level()
	}

	return level >= minLevel
}

// WithAttrs implements slog.Handler.
func (h *ConsoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)

	return &clone
}

// WithGroup implements slog.Handler. Groups become dotted key prefixes.
func (h *ConsoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	clone := *h
	clone.prefix = h.prefix + name + "."

	return &clone
}

// Handle implements slog.Handler.
func (h *ConsoleHandler) Handle(_ context.Context, r slog.Record) error {
	fields := make(map[string]any, r.NumAttrs()+len(h.attrs))

	for _, a := range h.attrs {
		fields[h.prefix+a.Key] = attrValue(a.Value)
	}

	r.Attrs(func(a slog.Attr) bool {
		fields[h.prefix+a.Key] = attrValue(a.Value)
		return true
	})

	line := styleIfColor(h.color, styleTime, r.Time.Format(timeFormat)) +
		" " + h.levelTag(r.Level) + " " + r.Message

	if len(fields) > 0 {
		rendered, err := h.renderFields(fields)
		if err != nil {
			return err
		}

		line += " " + rendered
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := fmt.Fprintln(h.w, line)

	return err
}

func (h *ConsoleHandler) levelTag(level slog.Level) string {
	tag := level.String() + ":"

	switch {
	case level <= slog.LevelDebug:
		return styleIfColor(h.color, styleDebug, tag)
	case level <= slog.LevelInfo:
		return styleIfColor(h.color, styleInfo, tag)
	case level < slog.LevelError:
		return styleIfColor(h.color, styleWarn, tag)
	default:
		return styleIfColor(h.color, styleError, tag)
	}
}

// renderFields serializes the attribute map. Values are round-tripped
// through encoding/json so the color formatter only ever sees plain JSON
// types.
func (h *ConsoleHandler) renderFields(fields map[string]any) (string, error) {
	raw, err := json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("marshal log attributes: %w", err)
	}

	if !h.color {
		return string(raw), nil
	}

	var clean map[string]any
	if err := json.Unmarshal(raw, &clean); err != nil {
		return "", fmt.Errorf("round-trip log attributes: %w", err)
	}

	f := colorjson.NewFormatter()
	f.Indent = 0

	colored, err := f.Marshal(clean)
	if err != nil {
		return "", fmt.Errorf("colorize log attributes: %w", err)
	}

	return string(colored), nil
}

func attrValue(v slog.Value) any {
	v = v.Resolve()

	switch v.Kind() {
	case slog.KindString:
		return v.String()
	case slog.KindInt64:
		return v.Int64()
	case slog.KindUint64:
		return v.Uint64()
	case slog.KindFloat64:
		return v.Float64()
	case slog.KindBool:
		return v.Bool()
	case slog.KindTime:
		return v.Time()
	case slog.KindDuration:
		return v.Duration().String()
	default:
		return fmt.Sprint(v.Any())
	}
}

func styleIfColor(color bool, s lipgloss.Style, text string) string {
	if !color {
		return text
	}

	return s.Render(text)
}
