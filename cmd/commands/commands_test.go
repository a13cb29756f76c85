// Copyright (c) daqtools 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package commands

import (
	"bytes"
	"context"
	"testing"

	"github.com/daqtools/daqctl/internal/argset"
	"github.com/daqtools/daqctl/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCmd struct {
	name string
}

func (f *fakeCmd) Name() string        { return f.name }
func (f *fakeCmd) Description() string { return "does " + f.name + " things" }
func (f *fakeCmd) Epilog() string      { return "" }

func (f *fakeCmd) AddArguments(set *argset.Set) error {
	set.Flags().BoolP("force", "f", false, "")
	return nil
}

func (f *fakeCmd) IsValidHost(*argset.Set) bool           { return true }
func (f *fakeCmd) Run(context.Context, *argset.Set) error { return nil }

func setup(t *testing.T, manifest []string, names ...string) (*cmd, *bytes.Buffer) {
	t.Helper()

	newRegistry := func() *registry.Registry {
		reg := registry.New()
		for _, n := range names {
			_ = reg.Add(&fakeCmd{name: n})
		}

		return reg
	}

	out := &bytes.Buffer{}

	return &cmd{
		Out:         out,
		newRegistry: newRegistry,
		manifest:    func() []string { return manifest },
	}, out
}

func parse(t *testing.T, c *cmd, argv ...string) *argset.Set {
	t.Helper()

	set := argset.New(c.Name())
	require.NoError(t, c.AddArguments(set))
	require.NoError(t, set.Parse(argv))

	return set
}

func TestRun_Default(t *testing.T) {
	c, out := setup(t, nil, "launch", "kill")

	require.NoError(t, c.Run(context.Background(), parse(t, c)))

	assert.Contains(t, out.String(), "launch")
	assert.Contains(t, out.String(), "does kill things")
}

func TestRun_Names(t *testing.T) {
	c, out := setup(t, nil, "launch", "kill")

	require.NoError(t, c.Run(context.Background(), parse(t, c, "--names")))

	assert.Equal(t, "launch kill\n", out.String())
}

func TestRun_Args(t *testing.T) {
	t.Run("known command", func(t *testing.T) {
		c, out := setup(t, nil, "launch")

		require.NoError(t, c.Run(context.Background(), parse(t, c, "--args", "launch")))

		assert.Equal(t, "--force -f\n", out.String())
	})

	t.Run("unknown command", func(t *testing.T) {
		c, out := setup(t, nil, "launch")

		require.NoError(t, c.Run(context.Background(), parse(t, c, "--args", "nope")))

		assert.Contains(t, out.String(), "no such command: nope")
	})
}

func TestRun_Verify(t *testing.T) {
	t.Run("consistent", func(t *testing.T) {
		c, out := setup(t, []string{"launch"}, "launch")

		require.NoError(t, c.Run(context.Background(), parse(t, c, "--verify")))

		assert.Equal(t, "ok\n", out.String())
	})

	t.Run("missing registration", func(t *testing.T) {
		c, out := setup(t, []string{"launch", "kill"}, "launch")

		require.NoError(t, c.Run(context.Background(), parse(t, c, "--verify")))

		assert.Contains(t, out.String(), "registration problems")
		assert.Contains(t, out.String(), `"kill" is defined but never registered`)
	})
}
