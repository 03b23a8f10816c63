// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package validate contains the validate subcommand.
package validate

import (
	"context"
	"errors"
	"fmt"

	"github.com/matt-FFFFFF/treebatch/cmd/treebatch/flags"
	"github.com/matt-FFFFFF/treebatch/internal/migration"
	"github.com/matt-FFFFFF/treebatch/internal/orchestrator"
	"github.com/matt-FFFFFF/treebatch/internal/report"
	"github.com/urfave/cli/v3"
)

var (
	// ErrNoConfigs is returned when no config files are given.
	ErrNoConfigs = errors.New("no config files given")
	// ErrInvalidConfigs is returned when any config file is invalid.
	ErrInvalidConfigs = errors.New("invalid config files")
)

// NewCommand returns the validate subcommand.
func NewCommand() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "Check config files without running any job",
		ArgsUsage: "CONFIG...",
		Flags:     []cli.Flag{flags.Output()},
		Action:    actionFunc,
	}
}

func actionFunc(ctx context.Context, cmd *cli.Command) error {
	format, err := flags.FormatFrom(cmd)
	if err != nil {
		return err
	}

	paths := cmd.Args().Slice()
	if len(paths) == 0 {
		return ErrNoConfigs
	}

	o := orchestrator.New(migration.NewLoader(), migration.NoopMigrator{}, nil)
	if err := o.Register(ctx, paths...); err != nil {
		return err
	}

	snap := o.Snapshot()
	if err := report.Write(cmd.Writer, snap, format); err != nil {
		return err
	}

	if n := snap.Count(orchestrator.ItemInvalidConfig); n > 0 {
		return fmt.Errorf("%w: %d of %d", ErrInvalidConfigs, n, len(snap.Items))
	}

	return nil
}
