// Copyright (c) daqtools 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runnumber

import (
	"bytes"
	"context"
	"testing"

	"github.com/daqtools/daqctl/internal/argset"
	"github.com/daqtools/daqctl/internal/workspace"
	"github.com/prashantv/gostub"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (afero.Fs, *cmd, *bytes.Buffer) {
	t.Helper()
	t.Setenv("HOME", "/home/daq")

	fs := afero.NewMemMapFs()

	stubs := gostub.Stub(&workspace.FsFactory, func() afero.Fs { return fs })
	t.Cleanup(stubs.Reset)

	out := &bytes.Buffer{}

	return fs, &cmd{Out: out}, out
}

func parse(t *testing.T, c *cmd, argv ...string) *argset.Set {
	t.Helper()

	set := argset.New(c.Name())
	require.NoError(t, c.AddArguments(set))
	require.NoError(t, set.Parse(argv))

	return set
}

func TestRun_PrintsCurrent(t *testing.T) {
	fs, c, out := setup(t)
	require.NoError(t, workspace.SetLastRun(fs, "/home/daq/.daq-last-run", 137155, 3))

	require.NoError(t, c.Run(context.Background(), parse(t, c)))

	assert.Equal(t, "137155 3\n", out.String())
}

func TestRun_PrintsInitialPairWhenMissing(t *testing.T) {
	_, c, out := setup(t)

	require.NoError(t, c.Run(context.Background(), parse(t, c)))

	assert.Equal(t, "1 0\n", out.String())
}

func TestRun_SetsNumber(t *testing.T) {
	fs, c, out := setup(t)

	require.NoError(t, c.Run(context.Background(), parse(t, c, "137156")))

	assert.Empty(t, out.String())

	run, subrun, err := workspace.LastRun(fs, "/home/daq/.daq-last-run")
	require.NoError(t, err)
	assert.Equal(t, 137156, run)
	assert.Equal(t, 0, subrun)
}

func TestRun_Reset(t *testing.T) {
	fs, c, _ := setup(t)
	require.NoError(t, workspace.SetLastRun(fs, "/home/daq/.daq-last-run", 137155, 7))

	require.NoError(t, c.Run(context.Background(), parse(t, c, "--reset")))

	run, subrun, err := workspace.LastRun(fs, "/home/daq/.daq-last-run")
	require.NoError(t, err)
	assert.Equal(t, 137155, run)
	assert.Equal(t, 0, subrun)
}

func TestRun_RejectsBadNumber(t *testing.T) {
	_, c, _ := setup(t)

	assert.ErrorIs(t, c.Run(context.Background(), parse(t, c, "abc")), ErrBadNumber)
	assert.ErrorIs(t, c.Run(context.Background(), parse(t, c, "0")), ErrBadNumber)
}
