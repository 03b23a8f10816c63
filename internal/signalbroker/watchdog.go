// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package signalbroker

import (
	"context"
	"os"

	"github.com/matt-FFFFFF/treebatch/internal/ctxlog"
)

// Watch reads sigCh until ctx is done or sigCh is closed.
// The second signal of a given kind calls cancel and returns.
func Watch(ctx context.Context, sigCh <-chan os.Signal, cancel context.CancelFunc) {
	seen := make(map[os.Signal]struct{})

	for {
		select {
		case <-ctx.Done():
			return
		case sig, ok := <-sigCh:
			if !ok {
				return
			}

			if _, dup := seen[sig]; dup {
				ctxlog.Warn(ctx, "received signal again, no longer waiting for running jobs", "signal", sig.String())
				cancel()

				return
			}

			ctxlog.Warn(ctx, "received signal, running jobs cannot be interrupted; send again to stop waiting", "signal", sig.String())

			seen[sig] = struct{}{}
		}
	}
}
