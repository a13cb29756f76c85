// Copyright (c) daqtools 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package argset

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/pflag"
)

const noHostCheckFlag = "nohostcheck"

var (
	// ErrMissingArgument is returned when a required positional argument is absent.
	ErrMissingArgument = errors.New("missing required argument")
	// ErrAlreadyParsed is returned when Parse is called twice on the same set.
	ErrAlreadyParsed = errors.New("argument set already parsed")
)

// Set is the argument grammar for a single subcommand: a pflag flag set plus
// an ordered list of positional declarations. Parsing is permissive; tokens
// that do not belong to the declared grammar are captured as leftovers
// instead of aborting the parse.
type Set struct {
	name        string
	fs          *pflag.FlagSet
	positionals []positional
	values      map[string]string
	leftovers   []string
	parsed      bool
}

type positional struct {
	name     string
	usage    string
	required bool
}

// New creates an empty argument set for the named subcommand.
func New(name string) *Set {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(discard{})

	return &Set{
		name:   name,
		fs:     fs,
		values: make(map[string]string),
	}
}

// Name returns the subcommand name this set belongs to. This is the reserved
// selection key carried alongside the parsed values.
func (s *Set) Name() string {
	return s.name
}

// Flags exposes the underlying flag set for declarations and typed lookups.
func (s *Set) Flags() *pflag.FlagSet {
	return s.fs
}

// EnableNoHostCheck declares the reserved --nohostcheck flag. Commands that
// are locked to a host type but may legitimately run elsewhere call this
// from AddArguments.
func (s *Set) EnableNoHostCheck() {
	s.fs.BoolP(noHostCheckFlag, "m", false, "disable the host type check for this command")
}

// NoHostCheck reports whether the reserved --nohostcheck flag was declared
// and set. Sets without the flag always report false.
func (s *Set) NoHostCheck() bool {
	f := s.fs.Lookup(noHostCheckFlag)
	if f == nil {
		return false
	}

	v, err := s.fs.GetBool(noHostCheckFlag)

	return err == nil && v
}

// Positional declares a required positional argument. Positionals are bound
// in declaration order.
func (s *Set) Positional(name, usage string) {
	s.positionals = append(s.positionals, positional{name: name, usage: usage, required: true})
}

// OptionalPositional declares a positional argument that may be omitted.
func (s *Set) OptionalPositional(name, usage string) {
	s.positionals = append(s.positionals, positional{name: name, usage: usage})
}

// Arg returns the value bound to the named positional, or "" if it was
// omitted.
func (s *Set) Arg(name string) string {
	return s.values[name]
}

// HasArg reports whether the named positional was supplied.
func (s *Set) HasArg(name string) bool {
	_, ok := s.values[name]
	return ok
}

// Leftovers returns the tokens that were not recognized by the declared
// grammar. The slice is a copy.
func (s *Set) Leftovers() []string {
	out := make([]string, len(s.leftovers))
	copy(out, s.leftovers)

	return out
}

// Parse binds argv to the declared grammar. Unrecognized flag tokens and
// surplus positionals are captured as leftovers rather than reported as
// errors; a malformed value for a declared flag or a missing required
// positional is still an error.
func (s *Set) Parse(argv []string) error {
	if s.parsed {
		return ErrAlreadyParsed
	}

	s.parsed = true

	known, leftovers := s.splitUnknown(argv)

	if err := s.fs.Parse(known); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}

	rest := s.fs.Args()
	for _, p := range s.positionals {
		if len(rest) == 0 {
			if p.required {
				return fmt.Errorf("%w: %s", ErrMissingArgument, p.name)
			}

			break
		}

		s.values[p.name] = rest[0]
		rest = rest[1:]
	}

	s.leftovers = append(leftovers, rest...)

	return nil
}

// splitUnknown partitions argv into tokens the flag set can parse and tokens
// naming flags that were never declared. A "--" terminator hands everything
// after it to the flag set untouched.
func (s *Set) splitUnknown(argv []string) (known, leftovers []string) {
	for i := 0; i < len(argv); i++ {
		tok := argv[i]

		switch {
		case tok == "--":
			known = append(known, argv[i:]...)
			return known, leftovers

		case strings.HasPrefix(tok, "--"):
			name, _, hasValue := strings.Cut(tok[2:], "=")

			f := s.fs.Lookup(name)
			if f == nil {
				leftovers = append(leftovers, tok)
				continue
			}

			known = append(known, tok)
			if !hasValue && f.Value.Type() != "bool" && i+1 < len(argv) {
				i++
				known = append(known, argv[i])
			}

		case strings.HasPrefix(tok, "-") && len(tok) > 1:
			needsValue, ok := s.scanShorthands(tok)
			if !ok {
				leftovers = append(leftovers, tok)
				continue
			}

			known = append(known, tok)
			if needsValue && i+1 < len(argv) {
				i++
				known = append(known, argv[i])
			}

		default:
			known = append(known, tok)
		}
	}

	return known, leftovers
}

// scanShorthands walks a "-abc" token. It reports whether the final
// shorthand expects a value from the next token, and whether every
// shorthand in the token is declared.
func (s *Set) scanShorthands(tok string) (needsValue, ok bool) {
	body, _, hasValue := strings.Cut(tok[1:], "=")

	for j, r := range body {
		f := s.fs.ShorthandLookup(string(r))
		if f == nil {
			return false, false
		}

		if f.Value.Type() == "bool" {
			continue
		}

		// A non-bool shorthand consumes the remainder of the token as its
		// value, or the next token when nothing remains.
		rest := body[j+len(string(r)):]

		return rest == "" && !hasValue, true
	}

	return false, true
}

// FlagNames returns every declared flag spelling ("--name" plus "-x"
// shorthands), sorted, for shell completion.
func (s *Set) FlagNames() []string {
	var names []string

	s.fs.VisitAll(func(f *pflag.Flag) {
		names = append(names, "--"+f.Name)
		if f.Shorthand != "" {
			names = append(names, "-"+f.Shorthand)
		}
	})

	sort.Strings(names)

	return names
}

// Usage returns a one-line synopsis followed by the flag usages.
func (s *Set) Usage() string {
	var sb strings.Builder

	sb.WriteString(s.name)

	for _, p := range s.positionals {
		if p.required {
			fmt.Fprintf(&sb, " <%s>", p.name)
		} else {
			fmt.Fprintf(&sb, " [%s]", p.name)
		}
	}

	sb.WriteString("\n")

	if u := s.fs.FlagUsages(); u != "" {
		sb.WriteString(u)
	}

	for _, p := range s.positionals {
		fmt.Fprintf(&sb, "  %-14s %s\n", p.name, p.usage)
	}

	return sb.String()
}

// discard suppresses pflag's own error output; callers render errors.
type discard struct{}

func (discard) Write(p []byte) (int, error) {
	return len(p), nil
}
