// Copyright (c) daqtools 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package hostid

import (
	"testing"

	"github.com/prashantv/gostub"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const description = `
host "expcont" {
  roles = ["control"]
}

host "access" {
  roles = ["build", "control"]
}

host "ichub01" {
  roles = ["hub"]
}
`

func descriptionFs(t *testing.T) afero.Fs {
	t.Helper()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "cluster.hcl", []byte(description), 0o644))

	return fs
}

func TestClassIs(t *testing.T) {
	assert.True(t, (Control | Build).Is(Build))
	assert.True(t, (Control | Build).Is(Control|Hub))
	assert.False(t, Control.Is(Hub))
	assert.False(t, Unknown.Is(Control|Build|Hub))
}

func TestClassString(t *testing.T) {
	assert.Equal(t, "control", Control.String())
	assert.Equal(t, "control/build", (Control | Build).String())
	assert.Equal(t, "unknown", Unknown.String())
}

func TestParse(t *testing.T) {
	t.Run("single role", func(t *testing.T) {
		c, err := Parse("control")
		require.NoError(t, err)
		assert.Equal(t, Control, c)
	})

	t.Run("role list with spaces", func(t *testing.T) {
		c, err := Parse("build, hub")
		require.NoError(t, err)
		assert.True(t, c.Is(Build))
		assert.True(t, c.Is(Hub))
		assert.False(t, c.Is(Control))
	})

	t.Run("bad role", func(t *testing.T) {
		_, err := Parse("janitor")
		assert.ErrorIs(t, err, ErrBadClass)
	})
}

func TestDetect(t *testing.T) {
	t.Run("env override wins", func(t *testing.T) {
		t.Setenv(EnvOverride, "control")

		c, err := Detect(afero.NewMemMapFs(), "cluster.hcl")
		require.NoError(t, err)
		assert.Equal(t, Control, c)
	})

	t.Run("hostname lookup", func(t *testing.T) {
		t.Setenv(EnvOverride, "")

		stub := gostub.Stub(&Hostname, func() (string, error) {
			return "access.spts.example.edu", nil
		})
		defer stub.Reset()

		c, err := Detect(descriptionFs(t), "cluster.hcl")
		require.NoError(t, err)
		assert.True(t, c.Is(Build))
		assert.True(t, c.Is(Control))
	})

	t.Run("host absent from description", func(t *testing.T) {
		t.Setenv(EnvOverride, "")

		stub := gostub.Stub(&Hostname, func() (string, error) {
			return "laptop", nil
		})
		defer stub.Reset()

		c, err := Detect(descriptionFs(t), "cluster.hcl")
		require.NoError(t, err)
		assert.Equal(t, Unknown, c)
	})

	t.Run("missing description", func(t *testing.T) {
		t.Setenv(EnvOverride, "")

		stub := gostub.Stub(&Hostname, func() (string, error) {
			return "expcont", nil
		})
		defer stub.Reset()

		_, err := Detect(afero.NewMemMapFs(), "cluster.hcl")
		assert.Error(t, err)
	})
}
