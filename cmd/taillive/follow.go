// Copyright (c) daqtools 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package taillive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/daqtools/daqctl/internal/livelog"
	"github.com/spf13/afero"
)

const pollInterval = 500 * time.Millisecond

var statusStyle = lipgloss.NewStyle().Reverse(true)

// followFile runs the full-screen viewer over path, appending new lines
// as the file grows.
func followFile(ctx context.Context, fs afero.Fs, path string, scheme livelog.Scheme) error {
	f, err := fs.Open(path)
	if err != nil {
		return fmt.Errorf("cannot open %s: %w", path, err)
	}
	defer f.Close()

	m := newFollowModel(path, f, livelog.NewRenderer(scheme, true))

	_, err = tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen()).Run()
	if errors.Is(err, tea.ErrProgramKilled) {
		// context cancellation lands here; the caller reports the interrupt
		return ctx.Err()
	}

	return err
}

// pollMsg fires when the poll timer elapses; drainedMsg reports that a
// read pass found no complete new lines.
type pollMsg struct{}

type drainedMsg struct{}

type linesMsg []string

type followModel struct {
	path     string
	src      io.Reader
	renderer *livelog.Renderer

	vp      viewport.Model
	lines   []string
	partial string
	ready   bool
	follow  bool
}

func newFollowModel(path string, src io.Reader, renderer *livelog.Renderer) *followModel {
	return &followModel{
		path:     path,
		src:      src,
		renderer: renderer,
		follow:   true,
	}
}

func (m *followModel) Init() tea.Cmd {
	return m.readMore
}

// readMore drains whatever the file has grown by since the last poll.
// A trailing fragment without a newline is held back until it completes.
func (m *followModel) readMore() tea.Msg {
	buf := make([]byte, 64*1024)

	var pending []string

	for {
		n, err := m.src.Read(buf)
		if n > 0 {
			text := m.partial + string(buf[:n])
			parts := strings.Split(text, "\n")
			m.partial = parts[len(parts)-1]
			pending = append(pending, parts[:len(parts)-1]...)
		}

		if err != nil {
			break
		}
	}

	if len(pending) == 0 {
		return drainedMsg{}
	}

	return linesMsg(pending)
}

func schedulePoll() tea.Cmd {
	return tea.Tick(pollInterval, func(time.Time) tea.Msg {
		return pollMsg{}
	})
}

func (m *followModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "end", "G":
			m.follow = true
			m.vp.GotoBottom()
		case "home", "g":
			m.follow = false
			m.vp.GotoTop()
		default:
			// manual scrolling suspends follow until the user returns
			// to the bottom
			var cmd tea.Cmd
			m.vp, cmd = m.vp.Update(msg)
			m.follow = m.vp.AtBottom()

			return m, cmd
		}

	case tea.WindowSizeMsg:
		if !m.ready {
			m.vp = viewport.New(msg.Width, msg.Height-1)
			m.ready = true
		} else {
			m.vp.Width = msg.Width
			m.vp.Height = msg.Height - 1
		}

		m.refresh()

	case linesMsg:
		for _, line := range msg {
			m.lines = append(m.lines, m.renderer.Line(line))
		}

		m.refresh()

		return m, m.readMore

	case drainedMsg:
		return m, schedulePoll()

	case pollMsg:
		return m, m.readMore
	}

	return m, nil
}

func (m *followModel) refresh() {
	if !m.ready {
		return
	}

	m.vp.SetContent(strings.Join(m.lines, "\n"))

	if m.follow {
		m.vp.GotoBottom()
	}
}

func (m *followModel) View() string {
	if !m.ready {
		return "loading " + m.path
	}

	status := statusStyle.Width(m.vp.Width).Render(
		fmt.Sprintf(" %s  %d lines  (q quits, G follows)", m.path, len(m.lines)))

	return m.vp.View() + "\n" + status
}
