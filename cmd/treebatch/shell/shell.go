// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package shell contains the shell subcommand.
package shell

import (
	"context"

	"github.com/matt-FFFFFF/treebatch/cmd/treebatch/flags"
	"github.com/matt-FFFFFF/treebatch/internal/ctxlog"
	"github.com/matt-FFFFFF/treebatch/internal/report"
	batchshell "github.com/matt-FFFFFF/treebatch/internal/shell"
	"github.com/urfave/cli/v3"
)

// NewCommand returns the shell subcommand.
func NewCommand() *cli.Command {
	return &cli.Command{
		Name:      "shell",
		Usage:     "Build and run a batch from an interactive prompt",
		ArgsUsage: "[CONFIG...]",
		Description: `Start a prompt with the given config files registered.
Type 'help' at the prompt for the available commands.`,
		Flags:  append(flags.Settings(), flags.Engine()...),
		Action: actionFunc,
	}
}

func actionFunc(ctx context.Context, cmd *cli.Command) error {
	o, err := flags.NewOrchestrator(ctx, cmd)
	if err != nil {
		return err
	}

	if err := o.Register(ctx, cmd.Args().Slice()...); err != nil {
		return err
	}

	if err := batchshell.Run(ctx, o, cmd.Writer); err != nil {
		return err
	}

	if o.InFlight() == 0 {
		return nil
	}

	ctxlog.Warn(ctx, "waiting for running jobs to finish", "inFlight", o.InFlight())

	if err := o.WaitIdle(ctx); err != nil {
		return err
	}

	o.Poll(ctx)

	return report.WriteText(cmd.Writer, o.Snapshot())
}
