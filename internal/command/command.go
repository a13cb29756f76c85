// Copyright (c) daqtools 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package command defines the capability contract every daqctl subcommand
// satisfies, and the degraded stand-in used when a subcommand cannot set
// itself up on this host.
package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/daqtools/daqctl/internal/argset"
)

var (
	// ErrUnavailable marks a failure caused by a missing optional capability
	// (an uninstalled kit, a missing data directory). Argument-setup failures
	// wrapping it degrade the command instead of aborting the whole tool.
	ErrUnavailable = errors.New("optional capability unavailable")
	// ErrInterrupted signals a user-initiated cancellation out of Run.
	ErrInterrupted = errors.New("interrupted")
)

// Command is a named, pluggable unit of CLI behavior.
//
// AddArguments declares the command's grammar on the given set and may fail
// with an error wrapping ErrUnavailable when an optional capability the
// grammar depends on is absent. IsValidHost gates execution on the current
// machine; Run is the sole place side effects occur.
type Command interface {
	Name() string
	Description() string
	Epilog() string
	AddArguments(set *argset.Set) error
	IsValidHost(set *argset.Set) bool
	Run(ctx context.Context, set *argset.Set) error
}

// Unavailable wraps reason so that errors.Is(err, ErrUnavailable) holds.
func Unavailable(capability string, reason error) error {
	if reason == nil {
		return fmt.Errorf("%w: %s", ErrUnavailable, capability)
	}

	return fmt.Errorf("%w: %s: %v", ErrUnavailable, capability, reason)
}

// Problem is the stand-in registered in place of a command whose
// AddArguments failed with ErrUnavailable. It accepts any host so that the
// underlying failure is always reported, never masked by the host check.
type Problem struct {
	name    string
	message string
}

// NewProblem creates a stand-in carrying the failed command's name and the
// failure's message.
func NewProblem(name string, cause error) *Problem {
	return &Problem{name: name, message: cause.Error()}
}

// Name returns the original command's name.
func (p *Problem) Name() string {
	return p.name
}

// Description describes the degraded state.
func (p *Problem) Description() string {
	return fmt.Sprintf("%q could not be loaded on this host", p.name)
}

// Epilog returns the underlying failure message.
func (p *Problem) Epilog() string {
	return p.message
}

// AddArguments declares nothing; the real grammar could not be built.
func (*Problem) AddArguments(*argset.Set) error {
	return nil
}

// IsValidHost always accepts so the failure path stays reachable.
func (*Problem) IsValidHost(*argset.Set) bool {
	return true
}

// Run reports the load failure and signals unsuccessful termination.
func (p *Problem) Run(context.Context, *argset.Set) error {
	return fmt.Errorf("%w: cannot run %q: %s", ErrUnavailable, p.name, p.message)
}
