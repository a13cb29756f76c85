// Copyright (c) daqtools 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package cluster loads and validates the HCL cluster description: which
// hosts make up the DAQ cluster, what roles they play, and which components
// run where.
package cluster

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsimple"
	"github.com/spf13/afero"
	"github.com/zclconf/go-cty/cty"
)

// Host roles understood by the tools.
const (
	RoleControl = "control"
	RoleBuild   = "build"
	RoleHub     = "hub"
)

var (
	// ErrReadDescription is returned when the description file cannot be read.
	ErrReadDescription = errors.New("failed to read cluster description")
	// ErrParseDescription is returned when the description file cannot be decoded.
	ErrParseDescription = errors.New("failed to parse cluster description")
	// ErrUnknownRole is returned for a role outside the known set.
	ErrUnknownRole = errors.New("unknown host role")
	// ErrUnknownHost is returned when a component names a host that has no block.
	ErrUnknownHost = errors.New("component references unknown host")
)

// Description is the decoded cluster description file.
type Description struct {
	Name       string      `hcl:"name,optional"`
	Hosts      []Host      `hcl:"host,block"`
	Components []Component `hcl:"component,block"`
}

// Host is one machine in the cluster.
type Host struct {
	Name  string   `hcl:"name,label"`
	Roles []string `hcl:"roles"`
}

// Component is one DAQ process pinned to a host.
type Component struct {
	Name   string `hcl:"name,label"`
	Host   string `hcl:"host"`
	Exec   string `hcl:"exec"`
	LogDir string `hcl:"log_dir,optional"`
}

// Load reads and decodes the description at path and validates it. The HCL
// evaluation context exposes the process environment as `env`, so exec lines
// can reference e.g. env.HOME.
func Load(fs afero.Fs, path string) (*Description, error) {
	src, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, errors.Join(ErrReadDescription, err)
	}

	var desc Description
	if err := hclsimple.Decode(path, src, evalContext(), &desc); err != nil {
		return nil, errors.Join(ErrParseDescription, err)
	}

	if err := desc.Validate(); err != nil {
		return nil, err
	}

	return &desc, nil
}

// Validate aggregates every structural problem in the description.
func (d *Description) Validate() error {
	var result *multierror.Error

	hosts := make(map[string]struct{}, len(d.Hosts))

	for _, h := range d.Hosts {
		hosts[h.Name] = struct{}{}

		for _, r := range h.Roles {
			switch r {
			case RoleControl, RoleBuild, RoleHub:
			default:
				result = multierror.Append(result,
					fmt.Errorf("%w: %q on host %q", ErrUnknownRole, r, h.Name))
			}
		}
	}

	for _, c := range d.Components {
		if _, ok := hosts[c.Host]; !ok {
			result = multierror.Append(result,
				fmt.Errorf("%w: %q wants host %q", ErrUnknownHost, c.Name, c.Host))
		}
	}

	return result.ErrorOrNil()
}

// HostByName returns the host block for name. Host names are matched on the
// first label of a fully qualified name, so "expcont.example.edu" finds
// "expcont".
func (d *Description) HostByName(name string) (Host, bool) {
	short := strings.Split(name, ".")[0]

	for _, h := range d.Hosts {
		if h.Name == name || h.Name == short {
			return h, true
		}
	}

	return Host{}, false
}

// ComponentsOn returns the components pinned to the named host, in file
// order.
func (d *Description) ComponentsOn(host string) []Component {
	var out []Component

	for _, c := range d.Components {
		if c.Host == host {
			out = append(out, c)
		}
	}

	return out
}

func evalContext() *hcl.EvalContext {
	env := map[string]cty.Value{}

	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			continue
		}

		env[k] = cty.StringVal(v)
	}

	vars := map[string]cty.Value{"env": cty.EmptyObjectVal}
	if len(env) > 0 {
		vars["env"] = cty.ObjectVal(env)
	}

	return &hcl.EvalContext{Variables: vars}
}
