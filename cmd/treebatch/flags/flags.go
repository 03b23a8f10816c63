// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package flags contains the flags shared by the treebatch subcommands.
// Every flag can also be set with a TREEBATCH_ environment variable,
// e.g. --frame-rate is read from TREEBATCH_FRAME_RATE.
package flags

import (
	"context"
	"fmt"
	"strings"

	"github.com/matt-FFFFFF/treebatch/internal/ctxlog"
	"github.com/matt-FFFFFF/treebatch/internal/migration"
	"github.com/matt-FFFFFF/treebatch/internal/orchestrator"
	"github.com/matt-FFFFFF/treebatch/internal/report"
	"github.com/matt-FFFFFF/treebatch/internal/video"
	"github.com/urfave/cli/v3"
)

const (
	ForestGreenFlag    = "forest-green"
	VideoFlag          = "video"
	CodecFlag          = "codec"
	EncoderFlag        = "encoder"
	VideoOutputDirFlag = "video-output-dir"
	FrameRateFlag      = "frame-rate"
	VideoExtFlag       = "video-ext"
	MigratorFlag       = "migrator"
	DryRunFlag         = "dry-run"
	OutputFlag         = "output"

	envPrefix = "TREEBATCH_"
)

// EnvVar returns the environment variable name for a flag.
func EnvVar(flag string) string {
	return envPrefix + strings.ToUpper(strings.ReplaceAll(flag, "-", "_"))
}

func env(flag string) cli.ValueSourceChain {
	return cli.EnvVars(EnvVar(flag))
}

// Settings returns the flags that make up orchestrator.Settings.
func Settings() []cli.Flag {
	defaults := orchestrator.DefaultSettings()

	return []cli.Flag{
		&cli.BoolFlag{
			Name:     ForestGreenFlag,
			Usage:    "Pass the forest green option to the migration engine",
			Sources:  env(ForestGreenFlag),
			OnlyOnce: true,
		},
		&cli.BoolFlag{
			Name:     VideoFlag,
			Usage:    "Encode a video from the migrated images of each job",
			Sources:  env(VideoFlag),
			OnlyOnce: true,
		},
		&cli.StringFlag{
			Name:     CodecFlag,
			Usage:    "Video codec, one of " + strings.Join(video.CodecNames(), ", "),
			Value:    defaults.Codec.String(),
			Sources:  env(CodecFlag),
			OnlyOnce: true,
			Validator: func(s string) error {
				_, err := video.ParseCodec(s)
				return err
			},
		},
		&cli.StringFlag{
			Name:      EncoderFlag,
			Usage:     "Path to the ffmpeg executable, or \"auto\" to look it up on PATH. The video step is skipped when empty",
			Sources:   env(EncoderFlag),
			TakesFile: true,
			OnlyOnce:  true,
		},
		&cli.StringFlag{
			Name:      VideoOutputDirFlag,
			Usage:     "Directory for the videos. Defaults to the migrated images directory",
			Sources:   env(VideoOutputDirFlag),
			TakesFile: true,
			OnlyOnce:  true,
		},
		&cli.IntFlag{
			Name:     FrameRateFlag,
			Aliases:  []string{"fps"},
			Usage:    fmt.Sprintf("Video frame rate, %d to %d", video.MinFrameRate, video.MaxFrameRate),
			Value:    defaults.FrameRate,
			Sources:  env(FrameRateFlag),
			OnlyOnce: true,
		},
		&cli.StringFlag{
			Name:     VideoExtFlag,
			Usage:    "Video file extension",
			Value:    defaults.VideoExtension,
			Sources:  env(VideoExtFlag),
			OnlyOnce: true,
		},
	}
}

// Engine returns the flags that select the migration engine.
func Engine() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:      MigratorFlag,
			Usage:     "Migration engine executable",
			Value:     migration.DefaultBinary,
			Sources:   env(MigratorFlag),
			TakesFile: true,
			OnlyOnce:  true,
		},
		&cli.BoolFlag{
			Name:     DryRunFlag,
			Aliases:  []string{"n"},
			Usage:    "Validate and dispatch jobs without running the migration engine",
			Sources:  env(DryRunFlag),
			OnlyOnce: true,
		},
	}
}

// Output returns the output format flag.
func Output() cli.Flag {
	return &cli.StringFlag{
		Name:     OutputFlag,
		Aliases:  []string{"o"},
		Usage:    "Output format, one of " + strings.Join(report.Formats(), ", "),
		Value:    string(report.FormatText),
		Sources:  env(OutputFlag),
		OnlyOnce: true,
		Validator: func(s string) error {
			_, err := report.ParseFormat(s)
			return err
		},
	}
}

// SettingsFrom builds and validates settings from the parsed flags.
func SettingsFrom(cmd *cli.Command) (orchestrator.Settings, error) {
	codec, err := video.ParseCodec(cmd.String(CodecFlag))
	if err != nil {
		return orchestrator.Settings{}, err
	}

	s := orchestrator.Settings{
		ForestGreen:    cmd.Bool(ForestGreenFlag),
		VideoEnabled:   cmd.Bool(VideoFlag),
		Codec:          codec,
		EncoderPath:    cmd.String(EncoderFlag),
		VideoOutputDir: cmd.String(VideoOutputDirFlag),
		FrameRate:      cmd.Int(FrameRateFlag),
		VideoExtension: strings.TrimPrefix(cmd.String(VideoExtFlag), "."),
	}

	if err := s.Validate(); err != nil {
		return orchestrator.Settings{}, err
	}

	return s, nil
}

// MigratorFrom returns the migration engine selected by the flags.
func MigratorFrom(cmd *cli.Command) migration.Migrator {
	if cmd.Bool(DryRunFlag) {
		return migration.NoopMigrator{}
	}

	return migration.NewExecMigrator(cmd.String(MigratorFlag))
}

// FormatFrom returns the output format selected by the flags.
func FormatFrom(cmd *cli.Command) (report.Format, error) {
	return report.ParseFormat(cmd.String(OutputFlag))
}

// NewOrchestrator builds an orchestrator from the settings and engine flags.
func NewOrchestrator(ctx context.Context, cmd *cli.Command, opts ...orchestrator.Option) (*orchestrator.Orchestrator, error) {
	settings, err := SettingsFrom(cmd)
	if err != nil {
		return nil, err
	}

	opts = append([]orchestrator.Option{orchestrator.WithSettings(settings)}, opts...)
	o := orchestrator.New(migration.NewLoader(), MigratorFrom(cmd), video.NewFFmpegEncoder(), opts...)

	if settings.VideoRequested() {
		ctxlog.Debug(ctx, "video step requested", "codec", settings.Codec.String(), "frameRate", settings.FrameRate)
	}

	return o, nil
}
