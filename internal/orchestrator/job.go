// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/matt-FFFFFF/treebatch/internal/ctxlog"
	"github.com/matt-FFFFFF/treebatch/internal/migration"
	"github.com/matt-FFFFFF/treebatch/internal/progress"
	"github.com/matt-FFFFFF/treebatch/internal/video"
)

// ErrJobPanic is the failure recorded when a job panics.
var ErrJobPanic = errors.New("job panicked")

// VideoConfigBuilder derives an encoding job. video.BuildConfig is the default.
type VideoConfigBuilder func(encoderPath, inputDir, outputDir, fileName string, frameRate int, codec video.Codec) (*video.Config, error)

// job is one dispatched item. It owns a clone of the item's config.
type job struct {
	path     string
	itemID   string
	cfg      *migration.Config
	settings Settings

	migrator   migration.Migrator
	encoder    video.Encoder
	buildVideo VideoConfigBuilder
	reporter   progress.Reporter
	send       func(Signal)
}

// run executes the job and sends exactly one signal, even if a collaborator panics.
func (j *job) run(ctx context.Context) {
	sent := false
	finish := func(err error) {
		if sent {
			return
		}

		sent = true

		j.send(Signal{Path: j.path, ItemID: j.itemID, Err: err})
	}

	defer func() {
		if r := recover(); r != nil {
			ctxlog.Error(ctx, "job panicked", "panic", r)
			finish(fmt.Errorf("%w: %v", ErrJobPanic, r))
		}
	}()

	finish(j.execute(ctx))
}

// execute runs migration and the optional video step. Only a migration failure is returned.
func (j *job) execute(ctx context.Context) error {
	logger := ctxlog.Logger(ctx)

	j.report(progress.PhaseMigration, progress.EventStarted, "migrating "+j.cfg.String(), nil)

	opts := migration.Options{
		ForestGreen: j.settings.ForestGreen,
		Progress: func(line string) {
			j.report(progress.PhaseMigration, progress.EventProgress, line, nil)
		},
	}

	if err := j.migrator.Migrate(ctx, j.cfg, opts); err != nil {
		logger.Error("migration failed", "error", err)
		j.report(progress.PhaseMigration, progress.EventFailed, "migration failed", err)

		return err
	}

	j.report(progress.PhaseMigration, progress.EventCompleted, "migration complete", nil)

	if !j.settings.VideoRequested() {
		j.report(progress.PhaseEncoding, progress.EventSkipped, "video disabled", nil)
		return nil
	}

	fileName := video.FileName(j.cfg.Location, j.cfg.Camera, j.cfg.StartDate, j.cfg.EndDate, j.settings.VideoExtension)

	vc, err := j.buildVideo(
		j.settings.EncoderPath,
		j.cfg.OutputPath,
		j.settings.VideoOutputDir,
		fileName,
		j.settings.FrameRate,
		j.settings.Codec,
	)
	if err != nil {
		logger.Warn("could not build video config", "error", err)
		j.report(progress.PhaseEncoding, progress.EventFailed, "video config failed", err)

		return nil
	}

	j.report(progress.PhaseEncoding, progress.EventStarted, "encoding "+vc.FileName, nil)

	if err := j.encoder.Encode(ctx, vc); err != nil {
		logger.Warn("video encoding failed", "error", err)
		j.report(progress.PhaseEncoding, progress.EventFailed, "video encoding failed", err)

		return nil
	}

	j.report(progress.PhaseEncoding, progress.EventCompleted, "video written to "+vc.OutputPath(), nil)

	return nil
}

func (j *job) report(phase progress.Phase, typ progress.EventType, msg string, err error) {
	j.reporter.Report(progress.Event{
		Path:      j.path,
		ItemID:    j.itemID,
		Phase:     phase,
		Type:      typ,
		Message:   msg,
		Timestamp: time.Now(),
		Err:       err,
	})
}
