// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package migration

import (
	"context"
	"errors"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/matt-FFFFFF/treebatch/internal/ctxlog"
	"github.com/matt-FFFFFF/treebatch/internal/procexec"
)

// DefaultBinary is the migration engine executable looked up on PATH when none is configured.
const DefaultBinary = "tree-migration"

const maxErrorOutput = 2048

// Options are the per-run switches passed to the migration engine.
type Options struct {
	ForestGreen bool
	Progress    func(line string) // Receives the engine's latest output line, may be nil
}

// Migrator runs a single tree migration job to completion.
type Migrator interface {
	Migrate(ctx context.Context, cfg *Config, opts Options) error
}

var (
	_ Migrator = (*ExecMigrator)(nil)
	_ Migrator = NoopMigrator{}
)

// ExecMigrator runs the migration engine as an external program.
// The job configuration is written to a temporary YAML file and passed with --config.
type ExecMigrator struct {
	Binary string
}

// NewExecMigrator creates an ExecMigrator for binary, or DefaultBinary if empty.
func NewExecMigrator(binary string) *ExecMigrator {
	if binary == "" {
		binary = DefaultBinary
	}

	return &ExecMigrator{Binary: binary}
}

// Migrate implements Migrator.
// Failures are returned as *Error.
func (m *ExecMigrator) Migrate(ctx context.Context, cfg *Config, opts Options) error {
	logger := ctxlog.Logger(ctx).With("job", cfg.String())

	fail := func(exitCode int, output string, err error) error {
		return &Error{
			Location: cfg.Location,
			Camera:   cfg.Camera,
			ExitCode: exitCode,
			Output:   output,
			Err:      err,
		}
	}

	b, err := yaml.Marshal(cfg)
	if err != nil {
		return fail(-1, "", err)
	}

	f, err := os.CreateTemp("", "treebatch-job-*.yaml")
	if err != nil {
		return fail(-1, "", err)
	}

	defer os.Remove(f.Name()) //nolint:errcheck

	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return fail(-1, "", err)
	}

	if err := f.Close(); err != nil {
		return fail(-1, "", err)
	}

	args := []string{"--config", f.Name()}
	if opts.ForestGreen {
		args = append(args, "--forest-green")
	}

	logger.Debug("running migration engine", "binary", m.Binary, "args", args)

	res := procexec.Run(ctx, &procexec.Command{
		Path:       m.Binary,
		Args:       args,
		OnProgress: opts.Progress,
	})
	if res.Error != nil {
		return fail(res.ExitCode, res.StdErrTail(maxErrorOutput), errors.Join(ErrMigratorFailed, res.Error))
	}

	logger.Info("migration complete", "duration", res.Duration.String())

	return nil
}

// NoopMigrator accepts every job without doing any work. It is used for dry runs.
type NoopMigrator struct{}

// Migrate implements Migrator.
func (NoopMigrator) Migrate(ctx context.Context, cfg *Config, opts Options) error {
	ctxlog.Info(ctx, "dry run, skipping migration", "job", cfg.String(), "forestGreen", opts.ForestGreen)
	return nil
}
