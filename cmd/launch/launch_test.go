// Copyright (c) daqtools 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package launch

import (
	"testing"

	"github.com/daqtools/daqctl/internal/argset"
	"github.com/daqtools/daqctl/internal/workspace"
	"github.com/prashantv/gostub"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) afero.Fs {
	t.Helper()
	t.Setenv("HOME", "/home/daq")

	fs := afero.NewMemMapFs()

	stubs := gostub.Stub(&workspace.FsFactory, func() afero.Fs { return fs })
	t.Cleanup(stubs.Reset)

	return fs
}

func parse(t *testing.T, c *cmd, argv ...string) *argset.Set {
	t.Helper()

	set := argset.New(c.Name())
	require.NoError(t, c.AddArguments(set))
	require.NoError(t, set.Parse(argv))

	return set
}

func TestResolveRunConfig(t *testing.T) {
	t.Run("empty flag is accepted", func(t *testing.T) {
		setup(t)

		cfg, err := resolveRunConfig(parse(t, &cmd{}))

		require.NoError(t, err)
		assert.Empty(t, cfg)
	})

	t.Run("known configuration is accepted", func(t *testing.T) {
		fs := setup(t)
		require.NoError(t, afero.WriteFile(fs,
			"/home/daq/.daqctl/configs/sps-64.xml", []byte("<runConfig/>"), 0o644))

		cfg, err := resolveRunConfig(parse(t, &cmd{}, "--config", "sps-64"))

		require.NoError(t, err)
		assert.Equal(t, "sps-64", cfg)
	})

	t.Run("unknown configuration is rejected", func(t *testing.T) {
		setup(t)

		_, err := resolveRunConfig(parse(t, &cmd{}, "-c", "no-such"))

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrNoConfig)
		assert.Contains(t, err.Error(), "no-such")
	})
}
