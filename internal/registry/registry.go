// Copyright (c) daqtools 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package registry holds the process-wide, ordered collection of known
// commands. It is populated once during startup by an explicit registration
// list and is read-only afterwards.
package registry

import (
	"errors"
	"fmt"

	"github.com/daqtools/daqctl/internal/command"
	"github.com/hashicorp/go-multierror"
)

var (
	// ErrEmptyName is returned when a command reports an empty name.
	ErrEmptyName = errors.New("command name must not be empty")
	// ErrDuplicateName is returned when a name is registered twice.
	ErrDuplicateName = errors.New("duplicate command name")
)

// Registry is an append-only-at-startup, ordered collection of commands,
// unique by name.
type Registry struct {
	ordered []command.Command
	byName  map[string]command.Command
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{byName: make(map[string]command.Command)}
}

// Add registers cmd. Registration order is preserved. A duplicate or empty
// name is a programming error; it is reported here and again, aggregated,
// by Verify.
func (r *Registry) Add(cmd command.Command) error {
	name := cmd.Name()
	if name == "" {
		return ErrEmptyName
	}

	// Keep the entry so Verify can see the collision.
	r.ordered = append(r.ordered, cmd)

	if _, exists := r.byName[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateName, name)
	}

	r.byName[name] = cmd

	return nil
}

// All returns the registered commands in registration order. The slice is a
// copy.
func (r *Registry) All() []command.Command {
	out := make([]command.Command, len(r.ordered))
	copy(out, r.ordered)

	return out
}

// Lookup returns the command registered under name.
func (r *Registry) Lookup(name string) (command.Command, bool) {
	c, ok := r.byName[name]
	return c, ok
}

// Names returns the registered names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.byName))

	seen := make(map[string]struct{}, len(r.byName))
	for _, c := range r.ordered {
		if _, dup := seen[c.Name()]; dup {
			continue
		}

		seen[c.Name()] = struct{}{}
		names = append(names, c.Name())
	}

	return names
}

// Len returns the number of distinct registered names.
func (r *Registry) Len() int {
	return len(r.byName)
}

// Verify is the development-time consistency check: it flags duplicate
// registrations and manifest entries that were never registered (a command
// implemented but missing from the registration list). The result is an
// aggregated, non-fatal warning list, nil when everything is consistent.
func Verify(r *Registry, manifest []string) error {
	var result *multierror.Error

	seen := make(map[string]int, len(r.ordered))
	for _, c := range r.ordered {
		seen[c.Name()]++
	}

	for name, n := range seen {
		if n > 1 {
			result = multierror.Append(result,
				fmt.Errorf("%w: %q registered %d times", ErrDuplicateName, name, n))
		}
	}

	for _, name := range manifest {
		if _, ok := seen[name]; !ok {
			result = multierror.Append(result,
				fmt.Errorf("command %q is defined but never registered", name))
		}
	}

	return result.ErrorOrNil()
}
