// Copyright (c) daqtools 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package workspace resolves the standard daqctl file locations: the
// current-workspace symlink, the last-run-number file and the per-user
// config directory.
package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

const (
	// CurrentLink is the name of the symlink in the user's home directory
	// pointing at the active workspace.
	CurrentLink = "daq-current"

	runNumberName = ".daq-last-run"
	configDirName = ".daqctl"
)

// RequiredSubdirs must exist in a directory for it to count as a workspace.
var RequiredSubdirs = []string{"dash", "src"}

// FsFactory returns the filesystem used by this package; replaced in tests.
var FsFactory = func() afero.Fs {
	return afero.NewOsFs()
}

var (
	// ErrBadRunNumber is returned when the run-number file is malformed.
	ErrBadRunNumber = errors.New("bad run number")
	// ErrNotSymlink is returned when the current-workspace path exists but
	// is not a symlink.
	ErrNotSymlink = errors.New("current workspace path is not a symlink")
	// ErrNotWorkspace is returned when a directory is missing the expected
	// workspace layout.
	ErrNotWorkspace = errors.New("not a workspace directory")
	// ErrSymlinkUnsupported is returned when the filesystem cannot do
	// symlink operations.
	ErrSymlinkUnsupported = errors.New("filesystem does not support symlinks")
)

// Paths resolves standard locations under the user's home directory.
type Paths struct {
	Home string
}

// Default resolves Paths from the current user's home directory.
func Default() (Paths, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Paths{}, fmt.Errorf("cannot resolve home directory: %w", err)
	}

	return Paths{Home: home}, nil
}

// Current returns the current-workspace symlink path.
func (p Paths) Current() string {
	return filepath.Join(p.Home, CurrentLink)
}

// RunNumberFile returns the last-run-number file path.
func (p Paths) RunNumberFile() string {
	return filepath.Join(p.Home, runNumberName)
}

// ConfigDir returns the per-user config directory.
func (p Paths) ConfigDir() string {
	return filepath.Join(p.Home, configDirName)
}

// ClusterFile returns the cluster description path, honoring the
// DAQCTL_CLUSTER override.
func (p Paths) ClusterFile() string {
	if v := os.Getenv("DAQCTL_CLUSTER"); v != "" {
		return v
	}

	return filepath.Join(p.ConfigDir(), "cluster.hcl")
}

// RunConfigDir returns the directory holding run configuration files.
func (p Paths) RunConfigDir() string {
	return filepath.Join(p.ConfigDir(), "configs")
}

// PidDir returns the directory holding component pid files.
func (p Paths) PidDir() string {
	return filepath.Join(p.ConfigDir(), "run")
}

// LastRun reads the last run and subrun numbers. A missing file yields the
// initial pair (1, 0).
func LastRun(fs afero.Fs, path string) (run, subrun int, err error) {
	exists, err := afero.Exists(fs, path)
	if err != nil {
		return 0, 0, fmt.Errorf("cannot check %s: %w", path, err)
	}

	if !exists {
		return 1, 0, nil
	}

	raw, err := afero.ReadFile(fs, path)
	if err != nil {
		return 0, 0, fmt.Errorf("cannot read %s: %w", path, err)
	}

	line := strings.TrimSpace(strings.SplitN(string(raw), "\n", 2)[0])
	if _, err := fmt.Sscanf(line, "%d %d", &run, &subrun); err != nil {
		return 0, 0, fmt.Errorf("%w: %q in %s", ErrBadRunNumber, line, path)
	}

	return run, subrun, nil
}

// SetLastRun writes the last run and subrun numbers.
func SetLastRun(fs afero.Fs, path string, run, subrun int) error {
	if run < 0 || subrun < 0 {
		return fmt.Errorf("%w: %d %d", ErrBadRunNumber, run, subrun)
	}

	content := fmt.Sprintf("%d %d\n", run, subrun)
	if err := afero.WriteFile(fs, path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("cannot update %s: %w", path, err)
	}

	return nil
}

// CurrentTarget returns the target of the current-workspace symlink.
func CurrentTarget(fs afero.Fs, link string) (string, error) {
	lr, ok := fs.(afero.LinkReader)
	if !ok {
		return "", ErrSymlinkUnsupported
	}

	target, err := lr.ReadlinkIfPossible(link)
	if err != nil {
		return "", fmt.Errorf("cannot read %s: %w", link, err)
	}

	return target, nil
}

// Repoint validates target as a workspace and repoints the current symlink
// at it. An existing non-symlink at the link path is refused.
func Repoint(fs afero.Fs, link, target string) error {
	linker, ok := fs.(afero.Linker)
	if !ok {
		return ErrSymlinkUnsupported
	}

	if fi, _, err := lstat(fs, link); err == nil && fi.Mode()&os.ModeSymlink == 0 {
		return fmt.Errorf("%w: %s", ErrNotSymlink, link)
	}

	fi, err := fs.Stat(target)
	if err != nil || !fi.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrNotWorkspace, target)
	}

	for _, d := range RequiredSubdirs {
		sub := filepath.Join(target, d)
		if ok, err := afero.DirExists(fs, sub); err != nil || !ok {
			return fmt.Errorf("%w: %s (missing %q)", ErrNotWorkspace, target, d)
		}
	}

	// Replace any existing link.
	_ = fs.Remove(link)

	if err := linker.SymlinkIfPossible(target, link); err != nil {
		return fmt.Errorf("cannot link %s to %s: %w", link, target, err)
	}

	return nil
}

func lstat(fs afero.Fs, path string) (os.FileInfo, bool, error) {
	if ls, ok := fs.(afero.Lstater); ok {
		return ls.LstatIfPossible(path)
	}

	fi, err := fs.Stat(path)

	return fi, false, err
}
