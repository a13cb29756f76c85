// Copyright (c) daqtools 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package flash drives a flasher run. The available flasher modes come
// from the flasher kit installed under the workspace config directory;
// without the kit the command degrades at argument-setup time.
package flash

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/daqtools/daqctl/internal/argset"
	"github.com/daqtools/daqctl/internal/command"
	"github.com/daqtools/daqctl/internal/ctxlog"
	"github.com/daqtools/daqctl/internal/hostid"
	"github.com/daqtools/daqctl/internal/workspace"
	"github.com/spf13/afero"
)

const (
	// KitDirName is the flasher kit directory under the config dir.
	KitDirName = "flashers"

	modeFlag     = "mode"
	durationFlag = "duration"
)

var (
	// ErrNoKit is returned when the flasher kit is not installed.
	ErrNoKit = errors.New("flasher kit not installed")
	// ErrBadMode is returned for a mode the kit does not define.
	ErrBadMode = errors.New("unknown flasher mode")
)

type cmd struct {
	modes []string
}

// New returns the flash command.
func New() command.Command {
	return &cmd{}
}

func (*cmd) Name() string {
	return "flash"
}

func (*cmd) Description() string {
	return "Run the flashers in a configured mode."
}

func (*cmd) Epilog() string {
	return "Modes are the *.xml files of the installed flasher kit."
}

// AddArguments enumerates the kit's modes into the flag usage. A missing
// kit is a missing optional capability, not a defect.
func (c *cmd) AddArguments(set *argset.Set) error {
	modes, err := kitModes(workspace.FsFactory())
	if err != nil {
		return command.Unavailable("flasher kit", err)
	}

	c.modes = modes

	set.Flags().StringP(modeFlag, "M", modes[0],
		"flasher mode, one of: "+strings.Join(modes, ", "))
	set.Flags().IntP(durationFlag, "d", 30, "flash duration in seconds")
	set.EnableNoHostCheck()

	return nil
}

func (*cmd) IsValidHost(*argset.Set) bool {
	return hostid.IsHost(hostid.Control)
}

func (c *cmd) Run(ctx context.Context, set *argset.Set) error {
	mode, _ := set.Flags().GetString(modeFlag)

	found := false
	for _, m := range c.modes {
		if m == mode {
			found = true
			break
		}
	}

	if !found {
		return fmt.Errorf("%w: %q (have: %s)", ErrBadMode, mode, strings.Join(c.modes, ", "))
	}

	duration, _ := set.Flags().GetInt(durationFlag)

	ctxlog.Info(ctx, "starting flasher run", "mode", mode, "duration_s", duration)

	select {
	case <-ctx.Done():
		return command.ErrInterrupted
	default:
	}

	return nil
}

// kitModes lists the mode names defined by the installed kit, sorted.
func kitModes(fs afero.Fs) ([]string, error) {
	paths, err := workspace.Default()
	if err != nil {
		return nil, err
	}

	kitDir := filepath.Join(paths.ConfigDir(), KitDirName)

	entries, err := afero.ReadDir(fs, kitDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNoKit, kitDir)
	}

	var modes []string

	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".xml") {
			continue
		}

		modes = append(modes, strings.TrimSuffix(e.Name(), ".xml"))
	}

	if len(modes) == 0 {
		return nil, fmt.Errorf("%w: no modes in %s", ErrNoKit, kitDir)
	}

	sort.Strings(modes)

	return modes, nil
}
