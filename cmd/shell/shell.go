// Copyright (c) daqtools 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package shell is an interactive line-oriented front end: each line is
// dispatched as one command invocation, with tab completion and history.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/daqtools/daqctl/internal/argset"
	"github.com/daqtools/daqctl/internal/command"
	"github.com/daqtools/daqctl/internal/ctxlog"
	"github.com/daqtools/daqctl/internal/dispatch"
	"github.com/daqtools/daqctl/internal/registry"
	"github.com/daqtools/daqctl/internal/workspace"
	"github.com/peterh/liner"
)

const (
	prompt          = "daqctl> "
	historyFileName = "history"
)

// RegistryFunc supplies a fresh registry per dispatched line. Argument
// sets are single-parse, so each line needs its own table.
type RegistryFunc func() *registry.Registry

type cmd struct {
	newRegistry RegistryFunc
}

// New returns the shell command. newRegistry must build the same
// registry the top-level dispatcher uses.
func New(newRegistry RegistryFunc) command.Command {
	return &cmd{newRegistry: newRegistry}
}

func (*cmd) Name() string {
	return "shell"
}

func (*cmd) Description() string {
	return "Run commands interactively."
}

func (*cmd) Epilog() string {
	return "Tab completes command names and flags; exit or EOF leaves the shell."
}

func (*cmd) AddArguments(*argset.Set) error {
	return nil
}

// The shell runs anywhere; each dispatched command applies its own
// host check.
func (*cmd) IsValidHost(*argset.Set) bool {
	return true
}

func (c *cmd) Run(ctx context.Context, _ *argset.Set) error {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)
	line.SetCompleter(c.completer())

	histPath := c.historyPath()
	if histPath != "" {
		if f, err := os.Open(histPath); err == nil {
			_, _ = line.ReadHistory(f)
			f.Close()
		}
	}

	defer c.saveHistory(ctx, line, histPath)

	for {
		select {
		case <-ctx.Done():
			return command.ErrInterrupted
		default:
		}

		input, err := line.Prompt(prompt)
		if errors.Is(err, liner.ErrPromptAborted) {
			continue
		}

		if errors.Is(err, io.EOF) {
			fmt.Println()
			return nil
		}

		if err != nil {
			return fmt.Errorf("cannot read input: %w", err)
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		if input == "exit" || input == "quit" {
			return nil
		}

		line.AppendHistory(input)

		code := dispatch.New(c.newRegistry()).Main(ctx, strings.Fields(input))
		if code == dispatch.ExitInterrupted {
			return command.ErrInterrupted
		}
	}
}

// completer completes command names in the first word and that command's
// flags afterwards.
func (c *cmd) completer() liner.Completer {
	reg := c.newRegistry()

	flagsByName := make(map[string][]string, reg.Len())
	for _, cm := range reg.All() {
		set := argset.New(cm.Name())
		if err := cm.AddArguments(set); err != nil {
			continue
		}

		flagsByName[cm.Name()] = set.FlagNames()
	}

	names := reg.Names()

	return func(line string) []string {
		fields := strings.Fields(line)

		if len(fields) == 0 || (len(fields) == 1 && !strings.HasSuffix(line, " ")) {
			var word string
			if len(fields) == 1 {
				word = fields[0]
			}

			var out []string
			for _, n := range names {
				if strings.HasPrefix(n, word) {
					out = append(out, n+" ")
				}
			}

			return out
		}

		prefix := line[:strings.LastIndex(line, " ")+1]

		var word string
		if !strings.HasSuffix(line, " ") {
			word = fields[len(fields)-1]
		}

		var out []string
		for _, f := range flagsByName[fields[0]] {
			if strings.HasPrefix(f, word) {
				out = append(out, prefix+f)
			}
		}

		return out
	}
}

func (*cmd) historyPath() string {
	paths, err := workspace.Default()
	if err != nil {
		return ""
	}

	return filepath.Join(paths.ConfigDir(), historyFileName)
}

func (*cmd) saveHistory(ctx context.Context, line *liner.State, path string) {
	if path == "" {
		return
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		ctxlog.Debug(ctx, "cannot create history dir", "error", err)
		return
	}

	f, err := os.Create(path)
	if err != nil {
		ctxlog.Debug(ctx, "cannot save history", "error", err)
		return
	}
	defer f.Close()

	_, _ = line.WriteHistory(f)
}
