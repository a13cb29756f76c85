// Copyright (c) daqtools 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package logsort merges DAQ component log files into one stream ordered by
// timestamp. Component logs use one-line headers of the form
//
//	component LEVEL [2026-01-17 17:02:56.123456] message
//
// with untagged continuation lines belonging to the preceding entry.
package logsort

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/spf13/afero"
)

const timeLayout = "2006-01-02 15:04:05.999999"

var linePattern = regexp.MustCompile(
	`^(\S+)\s+(-|TRACE|DEBUG|INFO|WARN|ERROR|FATAL)\s+\[([^\]]+)\]\s?(.*)$`)

// ErrBadTimestamp is returned when an entry header carries an unparseable
// timestamp.
var ErrBadTimestamp = errors.New("bad log timestamp")

// Level is a log severity; the zero value is the untagged "-" level.
type Level int8

// Severity order used as a sort tiebreaker.
const (
	LevelNone Level = iota
	LevelTrace
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

var levelNames = []string{"-", "TRACE", "DEBUG", "INFO", "WARN", "ERROR", "FATAL"}

// String renders the level tag.
func (l Level) String() string {
	if l < LevelNone || int(l) >= len(levelNames) {
		return fmt.Sprintf("???%d???", int(l))
	}

	return levelNames[l]
}

func parseLevel(s string) Level {
	for i, name := range levelNames {
		if name == s {
			return Level(i)
		}
	}

	return LevelNone
}

// Entry is one log record, possibly spanning several source lines.
type Entry struct {
	Component string
	Level     Level
	Time      time.Time
	Text      string
}

// String renders the entry in the canonical one-line-header form.
func (e Entry) String() string {
	return fmt.Sprintf("%s %s [%s] %s",
		e.Component, e.Level, e.Time.Format(timeLayout), e.Text)
}

// Parse reads entries from r. Lines before the first header are ignored;
// untagged lines are appended to the preceding entry.
func Parse(r io.Reader) ([]Entry, error) {
	var entries []Entry

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()

		m := linePattern.FindStringSubmatch(line)
		if m == nil {
			if len(entries) > 0 {
				entries[len(entries)-1].Text += "\n" + line
			}

			continue
		}

		ts, err := time.Parse(timeLayout, m[3])
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrBadTimestamp, m[3])
		}

		entries = append(entries, Entry{
			Component: m[1],
			Level:     parseLevel(m[2]),
			Time:      ts,
			Text:      m[4],
		})
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

// ParseFile reads entries from the file at path.
func ParseFile(fs afero.Fs, path string) ([]Entry, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, err
	}

	defer f.Close() //nolint:errcheck

	entries, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return entries, nil
}

// Merge combines entry slices into one slice ordered by time, then level,
// then component. The sort is stable so same-instant entries keep their
// file order.
func Merge(groups ...[]Entry) []Entry {
	var all []Entry

	for _, g := range groups {
		all = append(all, g...)
	}

	sort.SliceStable(all, func(i, j int) bool {
		if !all[i].Time.Equal(all[j].Time) {
			return all[i].Time.Before(all[j].Time)
		}

		if all[i].Level != all[j].Level {
			return all[i].Level < all[j].Level
		}

		return all[i].Component < all[j].Component
	})

	return all
}

// SortFiles parses every path, merges the entries and writes the combined
// stream to w.
func SortFiles(fs afero.Fs, paths []string, w io.Writer) error {
	groups := make([][]Entry, 0, len(paths))

	for _, p := range paths {
		entries, err := ParseFile(fs, p)
		if err != nil {
			return err
		}

		groups = append(groups, entries)
	}

	var sb strings.Builder

	for _, e := range Merge(groups...) {
		sb.WriteString(e.String())
		sb.WriteByte('\n')
	}

	_, err := io.WriteString(w, sb.String())

	return err
}
