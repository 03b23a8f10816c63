// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package show contains the show subcommand.
package show

import (
	"context"
	"errors"
	"fmt"

	"github.com/matt-FFFFFF/treebatch/internal/color"
	"github.com/matt-FFFFFF/treebatch/internal/migration"
	"github.com/matt-FFFFFF/treebatch/internal/report"
	"github.com/urfave/cli/v3"
)

var (
	// ErrNoConfigs is returned when no config files are given.
	ErrNoConfigs = errors.New("no config files given")
	// ErrInvalidConfigs is returned when any config file could not be loaded.
	ErrInvalidConfigs = errors.New("invalid config files")
)

// NewCommand returns the show subcommand.
func NewCommand() *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Print config files as the migration engine will receive them",
		ArgsUsage: "CONFIG...",
		Description: `Load each config file, resolve its paths and print it as YAML.
Invalid files are reported on stderr.`,
		Action: actionFunc,
	}
}

func actionFunc(ctx context.Context, cmd *cli.Command) error {
	paths := cmd.Args().Slice()
	if len(paths) == 0 {
		return ErrNoConfigs
	}

	loader := migration.NewLoader()

	var invalid int

	for _, p := range paths {
		cfg, err := loader.Validate(ctx, p)
		if err != nil {
			invalid++

			fmt.Fprintf(cmd.ErrWriter, "%s %v\n", color.Colorize("Error:", color.FgRed), err) //nolint:errcheck

			continue
		}

		if err := report.WriteConfigYAML(cmd.Writer, p, cfg, color.Enabled()); err != nil {
			return err
		}
	}

	if invalid > 0 {
		return fmt.Errorf("%w: %d of %d", ErrInvalidConfigs, invalid, len(paths))
	}

	return nil
}
