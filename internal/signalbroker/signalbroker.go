// Copyright (c) daqtools 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package signalbroker listens for OS termination signals. By default it
// watches os.Interrupt, syscall.SIGINT, syscall.SIGTERM and syscall.SIGQUIT.
//
// The watchdog cancels the root context on the first signal so the running
// subcommand can wind down; a second signal terminates the process
// immediately.
package signalbroker

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/daqtools/daqctl/internal/ctxlog"
)

var termSignals = []os.Signal{
	syscall.SIGINT,
	syscall.SIGTERM,
	syscall.SIGQUIT,
	os.Interrupt,
}

// New creates a signal channel subscribed to the signals that should
// terminate the process.
func New(ctx context.Context, sigs ...os.Signal) chan os.Signal {
	ch := make(chan os.Signal, 1)

	if len(sigs) == 0 {
		sigs = termSignals
	}

	ctxlog.Debug(ctx, "signalbroker", "detail", "subscribing", "signals", sigs)
	signal.Notify(ch, sigs...)

	return ch
}
