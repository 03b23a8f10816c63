// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package run contains the run subcommand.
package run

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/matt-FFFFFF/treebatch/cmd/treebatch/flags"
	"github.com/matt-FFFFFF/treebatch/internal/ctxlog"
	"github.com/matt-FFFFFF/treebatch/internal/orchestrator"
	"github.com/matt-FFFFFF/treebatch/internal/progress"
	"github.com/matt-FFFFFF/treebatch/internal/report"
	"github.com/matt-FFFFFF/treebatch/internal/tui"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v3"
)

const (
	tuiFlag            = "tui"
	progressBufferSize = 64
)

var (
	// ErrNoConfigs is returned when run is called without config files outside the TUI.
	ErrNoConfigs = errors.New("no config files given")
	// ErrBatchFailed is returned when any config is invalid or any job failed.
	ErrBatchFailed = errors.New("batch finished with errors")
	// ErrNotTerminal is returned when the TUI is requested without a terminal.
	ErrNotTerminal = errors.New("the TUI needs a terminal on stdout")
)

// isTerminal is replaced in tests.
var isTerminal = func() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// NewCommand returns the run subcommand.
func NewCommand() *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "Validate config files and run every valid job",
		ArgsUsage: "CONFIG...",
		Description: `Register each config file, run one migration job per valid config and wait for all of them.
Jobs run concurrently. A job that fails does not stop the others.

Config files may be YAML, JSON, TOML or HCL and may be remote. Remote files use
Hashicorp's go-getter syntax, see https://github.com/hashicorp/go-getter.

With --tui the batch is shown in an interactive terminal interface, where more
files can be added and processing is started by hand.`,
		Flags: append(append(append(flags.Settings(), flags.Engine()...), flags.Output()),
			&cli.BoolFlag{
				Name:     tuiFlag,
				Aliases:  []string{"t", "interactive"},
				Usage:    "Run with the interactive terminal interface",
				OnlyOnce: true,
			},
		),
		Action: actionFunc,
	}
}

func actionFunc(ctx context.Context, cmd *cli.Command) error {
	format, err := flags.FormatFrom(cmd)
	if err != nil {
		return err
	}

	paths := cmd.Args().Slice()

	if cmd.Bool(tuiFlag) {
		return runTUI(ctx, cmd, paths, format)
	}

	if len(paths) == 0 {
		return ErrNoConfigs
	}

	return runHeadless(ctx, cmd, paths, format)
}

func runHeadless(ctx context.Context, cmd *cli.Command, paths []string, format report.Format) error {
	reporter := progress.NewChannelReporter(progressBufferSize)
	reporter.Listen(&progressLogger{ctx: ctx})

	o, err := flags.NewOrchestrator(ctx, cmd, orchestrator.WithReporter(reporter))
	if err != nil {
		reporter.Close()
		return err
	}

	if err := o.Register(ctx, paths...); err != nil {
		reporter.Close()
		return err
	}

	n, err := o.StartProcessing(ctx)
	if err != nil {
		reporter.Close()
		return err
	}

	ctxlog.Info(ctx, "waiting for jobs", "jobs", n)

	waitErr := o.WaitIdle(ctx)
	reporter.Close()

	if waitErr != nil {
		ctxlog.Warn(ctx, "stopped waiting for running jobs", "inFlight", o.InFlight())
	}

	o.Poll(ctx)

	return finish(cmd, o.Snapshot(), format, waitErr)
}

func runTUI(ctx context.Context, cmd *cli.Command, paths []string, format report.Format) error {
	if !isTerminal() {
		return ErrNotTerminal
	}

	ctxlog.Info(ctx, "starting interactive TUI mode")

	buf := new(bytes.Buffer)
	tuiCtx := ctxlog.NewForTUI(ctx, buf)

	reporter := tui.NewReporter()

	o, err := flags.NewOrchestrator(tuiCtx, cmd, orchestrator.WithReporter(reporter))
	if err != nil {
		return err
	}

	if err := o.Register(tuiCtx, paths...); err != nil {
		return err
	}

	_, runErr := tui.NewRunner(tuiCtx, o, reporter).Run()

	buf.WriteTo(cmd.ErrWriter) //nolint:errcheck

	if runErr != nil && ctx.Err() == nil {
		return fmt.Errorf("tui: %w", runErr)
	}

	var waitErr error

	if o.InFlight() > 0 {
		ctxlog.Warn(ctx, "waiting for running jobs to finish", "inFlight", o.InFlight())
		waitErr = o.WaitIdle(ctx)
	}

	o.Poll(ctx)

	return finish(cmd, o.Snapshot(), format, waitErr)
}

// finish writes the results and turns the batch outcome into the command error.
func finish(cmd *cli.Command, snap orchestrator.Snapshot, format report.Format, waitErr error) error {
	if err := report.Write(cmd.Writer, snap, format); err != nil {
		return err
	}

	if waitErr != nil {
		return waitErr
	}

	if snap.State == orchestrator.StateProcessingErrors || snap.Count(orchestrator.ItemInvalidConfig) > 0 {
		return fmt.Errorf("%w: %s", ErrBatchFailed, report.Summary(snap))
	}

	return nil
}

// progressLogger logs job progress events while the batch runs without the TUI.
type progressLogger struct {
	ctx context.Context
}

func (l *progressLogger) OnEvent(e progress.Event) {
	args := []any{"path", e.Path, "phase", e.Phase.String(), "event", e.Type.String()}

	switch e.Type {
	case progress.EventFailed:
		ctxlog.Warn(l.ctx, "job step failed", append(args, "error", e.Err)...)
	case progress.EventProgress:
		ctxlog.Debug(l.ctx, "job output", append(args, "line", e.Message)...)
	case progress.EventSkipped:
		ctxlog.Info(l.ctx, "job step skipped", append(args, "reason", e.Message)...)
	default:
		ctxlog.Info(l.ctx, "job progress", args...)
	}
}
