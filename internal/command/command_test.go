// Copyright (c) daqtools 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package command

import (
	"context"
	"errors"
	"testing"

	"github.com/daqtools/daqctl/internal/argset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnavailable(t *testing.T) {
	t.Run("with reason", func(t *testing.T) {
		err := Unavailable("flasher kit", errors.New("no such directory"))

		assert.ErrorIs(t, err, ErrUnavailable)
		assert.ErrorContains(t, err, "flasher kit")
		assert.ErrorContains(t, err, "no such directory")
	})

	t.Run("without reason", func(t *testing.T) {
		err := Unavailable("flasher kit", nil)

		assert.ErrorIs(t, err, ErrUnavailable)
		assert.ErrorContains(t, err, "flasher kit")
	})
}

func TestProblem(t *testing.T) {
	p := NewProblem("flash", Unavailable("flasher kit", nil))

	t.Run("carries the original name", func(t *testing.T) {
		assert.Equal(t, "flash", p.Name())
	})

	t.Run("accepts any host", func(t *testing.T) {
		assert.True(t, p.IsValidHost(nil))
	})

	t.Run("declares no arguments", func(t *testing.T) {
		set := argset.New("flash")

		require.NoError(t, p.AddArguments(set))
		assert.Empty(t, set.FlagNames())
	})

	t.Run("run reports the load failure", func(t *testing.T) {
		err := p.Run(context.Background(), nil)

		require.ErrorIs(t, err, ErrUnavailable)
		assert.ErrorContains(t, err, `cannot run "flash"`)
		assert.ErrorContains(t, err, "flasher kit")
	})

	t.Run("epilog is the failure message", func(t *testing.T) {
		assert.Contains(t, p.Epilog(), "flasher kit")
	})
}
