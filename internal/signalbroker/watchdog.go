// Copyright (c) daqtools 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package signalbroker

import (
	"context"
	"os"

	"github.com/daqtools/daqctl/internal/ctxlog"
)

// Exiter terminates the process; replaced in tests.
type Exiter func(code int)

// Watch monitors sigCh. On the first signal it cancels the context so the
// selected command can stop cleanly; on a second signal it calls exit.
// Closing sigCh stops the watchdog.
func Watch(ctx context.Context, sigCh chan os.Signal, cancel context.CancelFunc, exit Exiter) {
	seen := false

	for sig := range sigCh {
		if seen {
			ctxlog.Logger(ctx).Warn("watchdog",
				"detail", "second signal, terminating now", "signal", sig.String())
			exit(1)

			return
		}

		seen = true

		ctxlog.Logger(ctx).Info("watchdog",
			"detail", "signal received, cancelling the running command", "signal", sig.String())
		cancel()
	}
}
