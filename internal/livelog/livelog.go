// Copyright (c) daqtools 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package livelog colorizes pDAQ-style log streams. A Scheme maps log
// levels and component names to terminal styles and can be overridden
// by a YAML file in the operator's home directory.
package livelog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/charmbracelet/lipgloss"
	"github.com/goccy/go-yaml"
	"github.com/spf13/afero"
)

// SchemeFileName is the per-user color scheme file, looked up under the
// operator's home directory unless EnvColors points elsewhere.
const SchemeFileName = ".daqctl_colors.yaml"

// EnvColors overrides the color scheme file location.
const EnvColors = "DAQCTL_COLORS"

// ErrReadScheme is returned when the scheme file exists but cannot be
// read or parsed.
var ErrReadScheme = errors.New("cannot read color scheme")

// Style is one entry in a Scheme. Colors are lipgloss color strings:
// ANSI palette indexes ("1", "214") or hex ("#ff8700").
type Style struct {
	Foreground string `yaml:"foreground,omitempty"`
	Background string `yaml:"background,omitempty"`
	Bold       bool   `yaml:"bold,omitempty"`
}

func (s Style) render(text string) string {
	st := lipgloss.NewStyle()
	if s.Foreground != "" {
		st = st.Foreground(lipgloss.Color(s.Foreground))
	}
	if s.Background != "" {
		st = st.Background(lipgloss.Color(s.Background))
	}
	if s.Bold {
		st = st.Bold(true)
	}

	return st.Render(text)
}

// Scheme maps log lines to styles. Component styles win over level
// styles; lines that match neither get Default.
type Scheme struct {
	Default    Style            `yaml:"default"`
	Levels     map[string]Style `yaml:"levels"`
	Components map[string]Style `yaml:"components"`
}

// DefaultScheme returns the built-in scheme used when no scheme file
// exists.
func DefaultScheme() Scheme {
	return Scheme{
		Default: Style{},
		Levels: map[string]Style{
			"TRACE": {Foreground: "8"},
			"DEBUG": {Foreground: "8"},
			"INFO":  {Foreground: "6"},
			"WARN":  {Foreground: "3"},
			"ERROR": {Foreground: "1", Bold: true},
			"FATAL": {Foreground: "15", Background: "1", Bold: true},
		},
		Components: map[string]Style{},
	}
}

// SchemePath resolves the scheme file location: the EnvColors override
// if set, else SchemeFileName under home.
func SchemePath(home string) string {
	if p := os.Getenv(EnvColors); p != "" {
		return p
	}

	return filepath.Join(home, SchemeFileName)
}

// LoadScheme reads the scheme file at path, falling back to
// DefaultScheme when the file does not exist. Entries in the file are
// merged over the defaults, so a scheme file only needs to list the
// styles it changes.
func LoadScheme(fs afero.Fs, path string) (Scheme, error) {
	scheme := DefaultScheme()

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			return scheme, nil
		}

		return scheme, fmt.Errorf("%w: %w", ErrReadScheme, err)
	}

	var overlay Scheme
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return scheme, fmt.Errorf("%w %q: %w", ErrReadScheme, path, err)
	}

	if overlay.Default != (Style{}) {
		scheme.Default = overlay.Default
	}

	for level, style := range overlay.Levels {
		scheme.Levels[level] = style
	}

	for component, style := range overlay.Components {
		scheme.Components[component] = style
	}

	return scheme, nil
}

// Dump renders the scheme as YAML, in the format LoadScheme accepts.
func (s Scheme) Dump() (string, error) {
	data, err := yaml.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("cannot render color scheme: %w", err)
	}

	return string(data), nil
}

// headerPattern matches the "component LEVEL [timestamp]" header that
// opens each log entry. Continuation lines do not match and inherit the
// style of the entry they belong to.
var headerPattern = regexp.MustCompile(
	`^(\S+)\s+(-|TRACE|DEBUG|INFO|WARN|ERROR|FATAL)\s+\[`)

// Classify reports the component and level of a log line header. ok is
// false for continuation lines and non-log noise.
func Classify(line string) (component, level string, ok bool) {
	m := headerPattern.FindStringSubmatch(line)
	if m == nil {
		return "", "", false
	}

	return m[1], m[2], true
}

// Renderer applies a Scheme to log lines. When color is off it passes
// lines through untouched.
type Renderer struct {
	scheme Scheme
	color  bool

	// continuation lines keep the style of the entry they extend
	last Style
}

// NewRenderer returns a Renderer for scheme. Pass color=false when the
// output is not a terminal.
func NewRenderer(scheme Scheme, color bool) *Renderer {
	return &Renderer{scheme: scheme, color: color, last: scheme.Default}
}

// Line returns the styled form of one log line.
func (r *Renderer) Line(line string) string {
	if !r.color {
		return line
	}

	component, level, ok := Classify(line)
	if ok {
		r.last = r.scheme.styleFor(component, level)
	}

	return r.last.render(line)
}

func (s Scheme) styleFor(component, level string) Style {
	if st, found := s.Components[component]; found {
		return st
	}

	if st, found := s.Levels[level]; found {
		return st
	}

	return s.Default
}
