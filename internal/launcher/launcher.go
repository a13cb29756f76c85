// Copyright (c) daqtools 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package launcher starts, stops and probes the DAQ components named in the
// cluster description. Local components are spawned directly and tracked
// through pid files; components pinned to other hosts are reached over ssh.
package launcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/daqtools/daqctl/internal/cluster"
	"github.com/daqtools/daqctl/internal/ctxlog"
	"github.com/hashicorp/go-multierror"
	"github.com/spf13/afero"
)

var (
	// ErrNoComponents is returned when the description names no components.
	ErrNoComponents = errors.New("no components in the cluster description")
	// ErrStart is returned when a component could not be started.
	ErrStart = errors.New("could not start component")
	// ErrStop is returned when a component could not be stopped.
	ErrStop = errors.New("could not stop component")
)

// startDetached spawns argv as a daemonized process with the given
// environment and returns its pid; replaced in tests.
var startDetached = func(argv []string, logPath string, env []string) (int, error) {
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Env = env

	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return 0, err
		}

		defer f.Close() //nolint:errcheck

		cmd.Stdout = f
		cmd.Stderr = f
	}

	if err := cmd.Start(); err != nil {
		return 0, err
	}

	pid := cmd.Process.Pid

	return pid, cmd.Process.Release()
}

// signalProcess delivers sig to pid; replaced in tests.
var signalProcess = func(pid int, sig syscall.Signal) error {
	return syscall.Kill(pid, sig)
}

// runRemote executes a command line on host via ssh; replaced in tests.
var runRemote = func(ctx context.Context, host, commandLine string) error {
	return exec.CommandContext(ctx, "ssh", host, commandLine).Run()
}

// Status describes one component's liveness.
type Status struct {
	Component string
	Host      string
	Pid       int
	Running   bool
}

// RunConfigEnv is the environment variable carrying the selected run
// configuration name into launched components.
const RunConfigEnv = "DAQ_RUN_CONFIG"

// Launcher drives component lifecycle operations for one cluster.
type Launcher struct {
	desc      *cluster.Description
	fs        afero.Fs
	pidDir    string
	localHost string
	dryRun    bool
	force     bool
	runConfig string
}

// New creates a launcher. localHost is the short name of the machine the
// launcher runs on; components pinned elsewhere are handled over ssh.
func New(desc *cluster.Description, fs afero.Fs, pidDir, localHost string) *Launcher {
	return &Launcher{
		desc:      desc,
		fs:        fs,
		pidDir:    pidDir,
		localHost: strings.Split(localHost, ".")[0],
	}
}

// SetDryRun makes every operation log what it would do instead of doing it.
func (l *Launcher) SetDryRun(v bool) {
	l.dryRun = v
}

// SetForce makes Kill escalate to SIGKILL instead of the default SIGTERM.
func (l *Launcher) SetForce(v bool) {
	l.force = v
}

// SetRunConfig selects the run configuration exported to launched
// components via RunConfigEnv.
func (l *Launcher) SetRunConfig(name string) {
	l.runConfig = name
}

// Launch starts every component in the description, continuing past
// per-component failures and aggregating them.
func (l *Launcher) Launch(ctx context.Context) error {
	if len(l.desc.Components) == 0 {
		return ErrNoComponents
	}

	if !l.dryRun {
		if err := l.fs.MkdirAll(l.pidDir, 0o755); err != nil {
			return fmt.Errorf("%w: %v", ErrStart, err)
		}
	}

	var result *multierror.Error

	for _, comp := range l.desc.Components {
		if err := ctx.Err(); err != nil {
			result = multierror.Append(result, err)
			break
		}

		if err := l.launchOne(ctx, comp); err != nil {
			result = multierror.Append(result,
				fmt.Errorf("%w: %s: %v", ErrStart, comp.Name, err))
		}
	}

	return result.ErrorOrNil()
}

func (l *Launcher) launchOne(ctx context.Context, comp cluster.Component) error {
	if l.dryRun {
		ctxlog.Info(ctx, "would start component",
			"component", comp.Name, "host", comp.Host, "exec", comp.Exec)
		return nil
	}

	if !l.isLocal(comp) {
		line := "nohup " + comp.Exec + " >/dev/null 2>&1 &"
		if l.runConfig != "" {
			line = RunConfigEnv + "=" + shellQuote(l.runConfig) + " " + line
		}

		ctxlog.Debug(ctx, "starting remote component", "component", comp.Name, "host", comp.Host)

		return runRemote(ctx, comp.Host, line)
	}

	logPath := ""
	if comp.LogDir != "" {
		logPath = filepath.Join(comp.LogDir, comp.Name+".log")
	}

	env := os.Environ()
	if l.runConfig != "" {
		env = append(env, RunConfigEnv+"="+l.runConfig)
	}

	pid, err := startDetached(strings.Fields(comp.Exec), logPath, env)
	if err != nil {
		return err
	}

	ctxlog.Info(ctx, "started component", "component", comp.Name, "pid", pid)

	return l.writePid(comp, pid)
}

// Kill stops every component, continuing past per-component failures.
// Components without a pid file are treated as already stopped.
func (l *Launcher) Kill(ctx context.Context) error {
	if len(l.desc.Components) == 0 {
		return ErrNoComponents
	}

	var result *multierror.Error

	for _, comp := range l.desc.Components {
		if err := ctx.Err(); err != nil {
			result = multierror.Append(result, err)
			break
		}

		if err := l.killOne(ctx, comp); err != nil {
			result = multierror.Append(result,
				fmt.Errorf("%w: %s: %v", ErrStop, comp.Name, err))
		}
	}

	return result.ErrorOrNil()
}

func (l *Launcher) killOne(ctx context.Context, comp cluster.Component) error {
	if l.dryRun {
		ctxlog.Info(ctx, "would stop component", "component", comp.Name, "host", comp.Host)
		return nil
	}

	if !l.isLocal(comp) {
		pkill := "pkill -f "
		if l.force {
			pkill = "pkill -9 -f "
		}

		return runRemote(ctx, comp.Host, pkill+shellQuote(comp.Exec))
	}

	pid, ok, err := l.readPid(comp)
	if err != nil {
		return err
	}

	if !ok {
		ctxlog.Debug(ctx, "component not running", "component", comp.Name)
		return nil
	}

	sig := syscall.SIGTERM
	if l.force {
		sig = syscall.SIGKILL
	}

	if err := signalProcess(pid, sig); err != nil && !errors.Is(err, syscall.ESRCH) {
		return err
	}

	ctxlog.Info(ctx, "stopped component", "component", comp.Name, "pid", pid)

	return l.fs.Remove(l.pidFile(comp))
}

// Probe reports the liveness of every component, in description order.
func (l *Launcher) Probe(ctx context.Context) ([]Status, error) {
	if len(l.desc.Components) == 0 {
		return nil, ErrNoComponents
	}

	out := make([]Status, 0, len(l.desc.Components))

	for _, comp := range l.desc.Components {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		st := Status{Component: comp.Name, Host: comp.Host}

		if l.isLocal(comp) {
			if pid, ok, err := l.readPid(comp); err == nil && ok {
				st.Pid = pid
				st.Running = signalProcess(pid, syscall.Signal(0)) == nil
			}
		} else {
			st.Running = runRemote(ctx, comp.Host, "pgrep -f "+shellQuote(comp.Exec)) == nil
		}

		out = append(out, st)
	}

	return out, nil
}

func (l *Launcher) isLocal(comp cluster.Component) bool {
	return strings.Split(comp.Host, ".")[0] == l.localHost
}

func (l *Launcher) pidFile(comp cluster.Component) string {
	return filepath.Join(l.pidDir, comp.Name+".pid")
}

func (l *Launcher) writePid(comp cluster.Component, pid int) error {
	return afero.WriteFile(l.fs, l.pidFile(comp), []byte(strconv.Itoa(pid)+"\n"), 0o644)
}

func (l *Launcher) readPid(comp cluster.Component) (int, bool, error) {
	raw, err := afero.ReadFile(l.fs, l.pidFile(comp))
	if err != nil {
		if os.IsNotExist(err) {
			return 0, false, nil
		}

		return 0, false, err
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	if err != nil {
		return 0, false, fmt.Errorf("bad pid file for %s: %w", comp.Name, err)
	}

	return pid, true, nil
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
