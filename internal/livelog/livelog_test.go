// Copyright (c) daqtools 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package livelog

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	t.Run("header line", func(t *testing.T) {
		component, level, ok := Classify(
			"cncserver ERROR [2026-01-17 17:02:56.123456] boom")

		require.True(t, ok)
		assert.Equal(t, "cncserver", component)
		assert.Equal(t, "ERROR", level)
	})

	t.Run("untagged level", func(t *testing.T) {
		_, level, ok := Classify("dash - [2026-01-17 17:02:56] note")

		require.True(t, ok)
		assert.Equal(t, "-", level)
	})

	t.Run("continuation line", func(t *testing.T) {
		_, _, ok := Classify("  traceback line")
		assert.False(t, ok)
	})
}

func TestSchemePath(t *testing.T) {
	t.Run("default under home", func(t *testing.T) {
		t.Setenv(EnvColors, "")
		assert.Equal(t, "/home/daq/"+SchemeFileName, SchemePath("/home/daq"))
	})

	t.Run("env override", func(t *testing.T) {
		t.Setenv(EnvColors, "/etc/daq/colors.yaml")
		assert.Equal(t, "/etc/daq/colors.yaml", SchemePath("/home/daq"))
	})
}

func TestLoadScheme(t *testing.T) {
	t.Run("missing file yields defaults", func(t *testing.T) {
		scheme, err := LoadScheme(afero.NewMemMapFs(), "nope.yaml")

		require.NoError(t, err)
		assert.Equal(t, DefaultScheme(), scheme)
	})

	t.Run("file overlays defaults", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, "colors.yaml", []byte(`
levels:
  ERROR:
    foreground: "#ff0000"
components:
  cncserver:
    foreground: "5"
    bold: true
`), 0o644))

		scheme, err := LoadScheme(fs, "colors.yaml")

		require.NoError(t, err)
		assert.Equal(t, Style{Foreground: "#ff0000"}, scheme.Levels["ERROR"])
		assert.Equal(t, Style{Foreground: "5", Bold: true}, scheme.Components["cncserver"])
		assert.Equal(t, DefaultScheme().Levels["INFO"], scheme.Levels["INFO"],
			"untouched defaults survive")
	})

	t.Run("bad yaml", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, "colors.yaml", []byte("{{"), 0o644))

		_, err := LoadScheme(fs, "colors.yaml")
		assert.ErrorIs(t, err, ErrReadScheme)
	})
}

func TestSchemeDump(t *testing.T) {
	out, err := DefaultScheme().Dump()

	require.NoError(t, err)
	assert.Contains(t, out, "levels:")
	assert.Contains(t, out, "ERROR:")
}

func TestRenderer(t *testing.T) {
	t.Run("color off passes through", func(t *testing.T) {
		r := NewRenderer(DefaultScheme(), false)
		line := "cncserver ERROR [2026-01-17 17:02:56] boom"

		assert.Equal(t, line, r.Line(line))
	})

	t.Run("component style wins over level style", func(t *testing.T) {
		scheme := DefaultScheme()
		scheme.Components["cncserver"] = Style{Bold: true}

		assert.Equal(t, Style{Bold: true}, scheme.styleFor("cncserver", "ERROR"))
		assert.Equal(t, scheme.Levels["ERROR"], scheme.styleFor("stringhub-1", "ERROR"))
	})

	t.Run("continuation lines keep the entry style", func(t *testing.T) {
		scheme := Scheme{
			Levels: map[string]Style{"ERROR": {Bold: true}},
		}
		r := NewRenderer(scheme, true)

		r.Line("cncserver ERROR [2026-01-17 17:02:56] boom")
		assert.Equal(t, Style{Bold: true}, r.last)

		r.Line("  traceback line")
		assert.Equal(t, Style{Bold: true}, r.last, "continuation does not reset the style")
	})
}
