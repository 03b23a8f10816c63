// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package orchestrator

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/matt-FFFFFF/treebatch/internal/ctxlog"
	"github.com/matt-FFFFFF/treebatch/internal/migration"
	"github.com/matt-FFFFFF/treebatch/internal/progress"
	"github.com/matt-FFFFFF/treebatch/internal/video"
)

const idlePollInterval = 10 * time.Millisecond

var (
	// ErrEmptyRegistry is returned when processing is started with nothing registered.
	ErrEmptyRegistry = errors.New("no configs registered")
	// ErrProcessingInProgress is returned when an operation is not allowed while a batch is running.
	ErrProcessingInProgress = errors.New("processing in progress")
	// ErrNoConfig is recorded on an item when the validator returns neither a config nor an error.
	ErrNoConfig = errors.New("validator returned no config")
)

// Validator checks a configuration path at registration time.
type Validator interface {
	Validate(ctx context.Context, path string) (*migration.Config, error)
}

// EncoderResolver turns the configured encoder path into an executable path.
type EncoderResolver func(path string) (string, error)

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithReporter sets the progress reporter jobs send events to.
func WithReporter(r progress.Reporter) Option {
	return func(o *Orchestrator) {
		if r != nil {
			o.reporter = r
		}
	}
}

// WithSettings sets the initial settings. They are not validated.
func WithSettings(s Settings) Option {
	return func(o *Orchestrator) {
		o.settings = s
	}
}

// WithVideoConfigBuilder replaces video.BuildConfig.
func WithVideoConfigBuilder(b VideoConfigBuilder) Option {
	return func(o *Orchestrator) {
		if b != nil {
			o.buildVideo = b
		}
	}
}

// WithEncoderResolver replaces video.ResolveEncoder.
func WithEncoderResolver(r EncoderResolver) Option {
	return func(o *Orchestrator) {
		if r != nil {
			o.resolveEncoder = r
		}
	}
}

// Orchestrator owns the item registry and the signal queue.
type Orchestrator struct {
	validator Validator
	migrator  migration.Migrator
	encoder   video.Encoder

	buildVideo     VideoConfigBuilder
	resolveEncoder EncoderResolver
	reporter       progress.Reporter

	settings Settings
	registry *registry
	queue    *signalQueue
	state    AppState
	inFlight atomic.Int64
}

// New creates an Orchestrator.
func New(validator Validator, migrator migration.Migrator, encoder video.Encoder, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		validator:      validator,
		migrator:       migrator,
		encoder:        encoder,
		buildVideo:     video.BuildConfig,
		resolveEncoder: video.ResolveEncoder,
		reporter:       progress.NewNullReporter(),
		settings:       DefaultSettings(),
		registry:       newRegistry(),
		queue:          &signalQueue{},
		state:          StateEmpty,
	}

	for _, opt := range opts {
		opt(o)
	}

	return o
}

// Register validates each path and stores the result, replacing any previous entry for the path.
// Validation failures are recorded on the item, not returned.
func (o *Orchestrator) Register(ctx context.Context, paths ...string) error {
	if o.state == StateProcessing {
		return ErrProcessingInProgress
	}

	if len(paths) == 0 {
		return nil
	}

	for _, p := range paths {
		cfg, err := o.validator.Validate(ctx, p)
		if cfg == nil && err == nil {
			err = &migration.ValidationError{Path: p, Err: ErrNoConfig}
		}

		it := o.registry.put(p, cfg, err)

		if err != nil {
			ctxlog.Info(ctx, "registered invalid config", "path", p, "error", err)
			continue
		}

		ctxlog.Debug(ctx, "registered config", "path", p, "id", it.ID)
	}

	// A new registration ends any completed batch.
	o.state = StateValidConfigs
	o.recompute()

	return nil
}

// StartProcessing dispatches one job per valid item without an outcome and returns how many
// jobs were started. Items with invalid configs are skipped.
func (o *Orchestrator) StartProcessing(ctx context.Context) (int, error) {
	if o.state == StateProcessing {
		return 0, ErrProcessingInProgress
	}

	if o.registry.len() == 0 {
		return 0, ErrEmptyRegistry
	}

	o.state = StateProcessing
	n := o.dispatch(ctx, o.batchSettings(ctx))

	ctxlog.Info(ctx, "processing started", "jobs", n)

	return n, nil
}

// dispatch starts a job for every valid item without an outcome.
func (o *Orchestrator) dispatch(ctx context.Context, settings Settings) int {
	jobCtx := context.WithoutCancel(ctx)

	var n int

	for _, it := range o.registry.all() {
		if !it.Valid() || it.Outcome != nil {
			continue
		}

		j := &job{
			path:       it.Path,
			itemID:     it.ID,
			cfg:        it.Config.Clone(),
			settings:   settings,
			migrator:   o.migrator,
			encoder:    o.encoder,
			buildVideo: o.buildVideo,
			reporter:   o.reporter,
			send:       o.queue.push,
		}

		o.inFlight.Add(1)
		n++

		go func() {
			defer o.inFlight.Add(-1)

			j.run(ctxlog.New(jobCtx, ctxlog.Logger(jobCtx).With("path", j.path)))
		}()
	}

	return n
}

// batchSettings copies the settings for a batch, resolving the encoder.
// An unresolvable encoder disables the video step for the batch.
func (o *Orchestrator) batchSettings(ctx context.Context) Settings {
	s := o.settings
	if !s.VideoRequested() {
		return s
	}

	path, err := o.resolveEncoder(s.EncoderPath)
	if err != nil {
		ctxlog.Warn(ctx, "video step disabled", "error", err)

		s.EncoderPath = ""

		return s
	}

	s.EncoderPath = path

	return s
}

// Clear removes every item. Running jobs are not stopped; their signals will be dropped.
func (o *Orchestrator) Clear() {
	o.registry.clear()
	o.state = StateEmpty
}

// Poll drains every queued signal, applies it to the registry and recomputes the application state.
// It never blocks.
func (o *Orchestrator) Poll(ctx context.Context) AppState {
	for _, s := range o.queue.drain() {
		if !o.registry.markOutcome(s) {
			ctxlog.Debug(ctx, "dropped stale signal", "path", s.Path, "id", s.ItemID)
			continue
		}

		if s.Err != nil {
			ctxlog.Debug(ctx, "job failed", "path", s.Path, "error", s.Err)
		} else {
			ctxlog.Debug(ctx, "job succeeded", "path", s.Path)
		}
	}

	prev := o.state
	o.recompute()

	if prev != o.state {
		ctxlog.Info(ctx, "state changed", "from", prev.String(), "to", o.state.String())
	}

	return o.state
}

func (o *Orchestrator) recompute() {
	o.state = deriveAppState(o.state, o.registry.all())
}

// State returns the application state as of the last Poll, Register or Clear.
func (o *Orchestrator) State() AppState {
	return o.state
}

// Settings returns the current settings.
func (o *Orchestrator) Settings() Settings {
	return o.settings
}

// SetSettings validates and replaces the settings. Running jobs keep the settings they started with.
func (o *Orchestrator) SetSettings(s Settings) error {
	if o.state == StateProcessing {
		return ErrProcessingInProgress
	}

	if err := s.Validate(); err != nil {
		return err
	}

	o.settings = s

	return nil
}

// InFlight returns the number of jobs that have not yet returned.
func (o *Orchestrator) InFlight() int {
	return int(o.inFlight.Load())
}

// WaitIdle blocks until no job is running or ctx is done.
// Signals are not applied; call Poll afterwards.
func (o *Orchestrator) WaitIdle(ctx context.Context) error {
	ticker := time.NewTicker(idlePollInterval)
	defer ticker.Stop()

	for o.inFlight.Load() > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}

	return nil
}
