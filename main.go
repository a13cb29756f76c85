// Copyright (c) daqtools 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package main is the entry point for the daqctl command-line application.
package main

import (
	"context"
	"os"

	"github.com/daqtools/daqctl/cmd"
	"github.com/daqtools/daqctl/internal/ctxlog"
	"github.com/daqtools/daqctl/internal/signalbroker"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	ctx = ctxlog.New(ctx, ctxlog.DefaultLogger)
	defer cancel()

	sigCh := signalbroker.New(ctx)

	go signalbroker.Watch(ctx, sigCh, cancel, os.Exit)

	os.Exit(cmd.Main(ctx, os.Args[1:]))
}
