// Copyright (c) daqtools 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package argset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_DeclaredFlags(t *testing.T) {
	s := New("launch")
	s.Flags().StringP("config", "c", "", "run configuration")
	s.Flags().BoolP("dry-run", "n", false, "dry run")

	require.NoError(t, s.Parse([]string{"-c", "sps-64", "--dry-run"}))

	cfg, err := s.Flags().GetString("config")
	require.NoError(t, err)
	assert.Equal(t, "sps-64", cfg)

	dry, err := s.Flags().GetBool("dry-run")
	require.NoError(t, err)
	assert.True(t, dry)
	assert.Empty(t, s.Leftovers())
}

func TestParse_Positionals(t *testing.T) {
	t.Run("bound in declaration order", func(t *testing.T) {
		s := New("x")
		s.Positional("first", "")
		s.OptionalPositional("second", "")

		require.NoError(t, s.Parse([]string{"a", "b"}))

		assert.Equal(t, "a", s.Arg("first"))
		assert.Equal(t, "b", s.Arg("second"))
		assert.True(t, s.HasArg("second"))
	})

	t.Run("optional omitted", func(t *testing.T) {
		s := New("x")
		s.OptionalPositional("only", "")

		require.NoError(t, s.Parse(nil))

		assert.False(t, s.HasArg("only"))
		assert.Empty(t, s.Arg("only"))
	})

	t.Run("required missing", func(t *testing.T) {
		s := New("x")
		s.Positional("needed", "")

		err := s.Parse(nil)

		require.ErrorIs(t, err, ErrMissingArgument)
		assert.ErrorContains(t, err, "needed")
	})
}

func TestParse_Leftovers(t *testing.T) {
	t.Run("unknown long flag", func(t *testing.T) {
		s := New("x")
		s.Flags().Bool("known", false, "")

		require.NoError(t, s.Parse([]string{"--known", "--mystery"}))

		assert.Equal(t, []string{"--mystery"}, s.Leftovers())
	})

	t.Run("unknown long flag with inline value", func(t *testing.T) {
		s := New("x")

		require.NoError(t, s.Parse([]string{"--mystery=42"}))

		assert.Equal(t, []string{"--mystery=42"}, s.Leftovers())
	})

	t.Run("unknown shorthand", func(t *testing.T) {
		s := New("x")
		s.Flags().BoolP("verbose", "v", false, "")

		require.NoError(t, s.Parse([]string{"-v", "-z"}))

		assert.Equal(t, []string{"-z"}, s.Leftovers())
	})

	t.Run("surplus positionals", func(t *testing.T) {
		s := New("x")
		s.Positional("one", "")

		require.NoError(t, s.Parse([]string{"a", "b", "c"}))

		assert.Equal(t, "a", s.Arg("one"))
		assert.Equal(t, []string{"b", "c"}, s.Leftovers())
	})

	t.Run("leftovers slice is a copy", func(t *testing.T) {
		s := New("x")

		require.NoError(t, s.Parse([]string{"--mystery"}))

		left := s.Leftovers()
		left[0] = "mutated"
		assert.Equal(t, []string{"--mystery"}, s.Leftovers())
	})
}

func TestParse_KnownFlagConsumesValue(t *testing.T) {
	// the value token of a declared non-bool flag must not be mistaken
	// for a positional
	s := New("x")
	s.Flags().StringP("out", "o", "", "")
	s.OptionalPositional("pos", "")

	require.NoError(t, s.Parse([]string{"--out", "file.txt", "actual"}))

	out, err := s.Flags().GetString("out")
	require.NoError(t, err)
	assert.Equal(t, "file.txt", out)
	assert.Equal(t, "actual", s.Arg("pos"))
}

func TestParse_DoubleDash(t *testing.T) {
	s := New("x")
	s.OptionalPositional("pos", "")

	require.NoError(t, s.Parse([]string{"--", "--not-a-flag"}))

	assert.Equal(t, "--not-a-flag", s.Arg("pos"))
	assert.Empty(t, s.Leftovers())
}

func TestParse_BadValueForDeclaredFlag(t *testing.T) {
	s := New("x")
	s.Flags().Int("count", 0, "")

	err := s.Parse([]string{"--count", "many"})

	assert.ErrorContains(t, err, "invalid arguments")
}

func TestParse_Twice(t *testing.T) {
	s := New("x")

	require.NoError(t, s.Parse(nil))
	assert.ErrorIs(t, s.Parse(nil), ErrAlreadyParsed)
}

func TestParse_DoesNotMutateArgv(t *testing.T) {
	argv := []string{"--mystery", "pos", "-z"}
	s := New("x")

	require.NoError(t, s.Parse(argv))

	assert.Equal(t, []string{"--mystery", "pos", "-z"}, argv)
}

func TestNoHostCheck(t *testing.T) {
	t.Run("not declared", func(t *testing.T) {
		s := New("x")

		require.NoError(t, s.Parse([]string{"--nohostcheck"}))

		assert.False(t, s.NoHostCheck())
		assert.Equal(t, []string{"--nohostcheck"}, s.Leftovers(),
			"undeclared reserved flag is a leftover like any other")
	})

	t.Run("declared and set", func(t *testing.T) {
		s := New("x")
		s.EnableNoHostCheck()

		require.NoError(t, s.Parse([]string{"--nohostcheck"}))

		assert.True(t, s.NoHostCheck())
	})

	t.Run("declared and unset", func(t *testing.T) {
		s := New("x")
		s.EnableNoHostCheck()

		require.NoError(t, s.Parse(nil))

		assert.False(t, s.NoHostCheck())
	})
}

func TestFlagNames(t *testing.T) {
	s := New("x")
	s.Flags().StringP("config", "c", "", "")
	s.Flags().Bool("dry-run", false, "")

	assert.Equal(t, []string{"--config", "--dry-run", "-c"}, s.FlagNames())
}

func TestUsage(t *testing.T) {
	s := New("deploy")
	s.Positional("source", "bundle location")
	s.Flags().StringP("dest", "d", "", "destination directory")

	u := s.Usage()

	assert.Contains(t, u, "deploy <source>")
	assert.Contains(t, u, "--dest")
	assert.Contains(t, u, "bundle location")
}
