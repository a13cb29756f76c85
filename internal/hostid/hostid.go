// Copyright (c) daqtools 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package hostid classifies the current machine against the cluster
// description. Commands use the classification to refuse to run on hosts
// where they make no sense.
package hostid

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/daqtools/daqctl/internal/cluster"
	"github.com/daqtools/daqctl/internal/workspace"
	"github.com/spf13/afero"
)

// EnvOverride short-circuits detection, e.g. DAQCTL_HOST_TYPE=control,build.
const EnvOverride = "DAQCTL_HOST_TYPE"

// Class is a bitmask of host roles.
type Class uint8

// Host classes. A machine can hold several roles at once.
const (
	Unknown Class = 0
	Control Class = 1 << iota
	Build
	Hub
)

// ErrBadClass is returned when a class name cannot be parsed.
var ErrBadClass = errors.New("unrecognized host class")

// Hostname reports the local host name; replaced in tests.
var Hostname = os.Hostname

// Is reports whether this class holds any of the roles in mask.
func (c Class) Is(mask Class) bool {
	return c&mask != 0
}

// String renders the held roles, slash separated.
func (c Class) String() string {
	var parts []string

	if c.Is(Control) {
		parts = append(parts, cluster.RoleControl)
	}

	if c.Is(Build) {
		parts = append(parts, cluster.RoleBuild)
	}

	if c.Is(Hub) {
		parts = append(parts, cluster.RoleHub)
	}

	if len(parts) == 0 {
		return "unknown"
	}

	return strings.Join(parts, "/")
}

// Parse decodes a comma-separated role list into a class.
func Parse(s string) (Class, error) {
	c := Unknown

	for _, part := range strings.Split(s, ",") {
		switch strings.TrimSpace(part) {
		case cluster.RoleControl:
			c |= Control
		case cluster.RoleBuild:
			c |= Build
		case cluster.RoleHub:
			c |= Hub
		case "":
		default:
			return Unknown, fmt.Errorf("%w: %q", ErrBadClass, part)
		}
	}

	return c, nil
}

// FromRoles converts cluster description roles into a class. Roles the
// description validator would reject are ignored here.
func FromRoles(roles []string) Class {
	c := Unknown

	for _, r := range roles {
		switch r {
		case cluster.RoleControl:
			c |= Control
		case cluster.RoleBuild:
			c |= Build
		case cluster.RoleHub:
			c |= Hub
		}
	}

	return c
}

// Detect classifies the current machine. The DAQCTL_HOST_TYPE override wins;
// otherwise the local host name is looked up in the cluster description. A
// host absent from the description is Unknown.
func Detect(fs afero.Fs, clusterPath string) (Class, error) {
	if v := os.Getenv(EnvOverride); v != "" {
		return Parse(v)
	}

	hn, err := Hostname()
	if err != nil {
		return Unknown, fmt.Errorf("cannot determine host name: %w", err)
	}

	desc, err := cluster.Load(fs, clusterPath)
	if err != nil {
		return Unknown, err
	}

	h, ok := desc.HostByName(hn)
	if !ok {
		return Unknown, nil
	}

	return FromRoles(h.Roles), nil
}

// IsHost reports whether the current machine holds any role in mask, using
// the default cluster description location. Any detection failure counts as
// an unknown host, which never satisfies a mask.
func IsHost(mask Class) bool {
	paths, err := workspace.Default()
	if err != nil {
		return false
	}

	c, err := Detect(workspace.FsFactory(), paths.ClusterFile())
	if err != nil {
		return false
	}

	return c.Is(mask)
}
