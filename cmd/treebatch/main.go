// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package main contains the treebatch command-line interface (CLI).
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/matt-FFFFFF/treebatch"
	"github.com/matt-FFFFFF/treebatch/cmd/treebatch/run"
	"github.com/matt-FFFFFF/treebatch/cmd/treebatch/shell"
	"github.com/matt-FFFFFF/treebatch/cmd/treebatch/show"
	"github.com/matt-FFFFFF/treebatch/cmd/treebatch/validate"
	"github.com/matt-FFFFFF/treebatch/internal/ctxlog"
	"github.com/matt-FFFFFF/treebatch/internal/signalbroker"
	"github.com/urfave/cli/v3"
)

func newRootCmd() *cli.Command {
	return &cli.Command{
		Commands: []*cli.Command{
			run.NewCommand(),
			validate.NewCommand(),
			show.NewCommand(),
			shell.NewCommand(),
		},
		Writer:    os.Stdout,
		ErrWriter: os.Stderr,
		Name:      "treebatch",
		Description: `Treebatch runs a batch of source image tree migrations.
Each config file describes one job: a location, a camera, a date range and the
input and output image trees. Valid jobs run concurrently through the migration
engine, optionally followed by encoding a video of the migrated images.`,
		Usage:     "treebatch run north-ridge.yaml south-gate.toml",
		Version:   fmt.Sprintf("%s (commit: %s)", treebatch.Version, treebatch.Commit),
		Copyright: "Copyright (c) matt-FFFFFF 2025. All rights reserved.",
		Authors: []any{
			"Matt White (matt-FFFFFF)",
		},
		EnableShellCompletion: true,
	}
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	ctx = ctxlog.New(ctx, ctxlog.DefaultLogger)

	sigCh := signalbroker.New(ctx)

	go signalbroker.Watch(ctx, sigCh, cancel)

	err := newRootCmd().Run(ctx, os.Args)

	signalbroker.Stop(sigCh)

	if ctx.Err() != nil {
		ctxlog.Error(ctx, "command terminated due to cancellation", "error", ctx.Err())
		cancel()
		os.Exit(1)
	}

	cancel()

	if err != nil {
		ctxlog.Error(ctx, "command failed", "error", err)
		os.Exit(1)
	}

	ctxlog.Info(ctx, "command completed successfully")
}
