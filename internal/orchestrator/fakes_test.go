// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package orchestrator

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/matt-FFFFFF/treebatch/internal/migration"
	"github.com/matt-FFFFFF/treebatch/internal/video"
)

// fakeValidator accepts paths listed in valid and rejects everything else.
type fakeValidator struct {
	valid map[string]*migration.Config
}

func newFakeValidator(valid ...string) *fakeValidator {
	v := &fakeValidator{valid: make(map[string]*migration.Config)}
	for _, p := range valid {
		v.valid[p] = &migration.Config{
			Location:   "loc-" + p,
			Camera:     "cam01",
			StartDate:  time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			EndDate:    time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
			InputPath:  "/srv/raw/" + p,
			OutputPath: "/srv/migrated/" + p,
		}
	}

	return v
}

func (v *fakeValidator) Validate(_ context.Context, path string) (*migration.Config, error) {
	if cfg, ok := v.valid[path]; ok {
		return cfg, nil
	}

	return nil, &migration.ValidationError{Path: path, Err: migration.ErrMissingField}
}

// fakeMigrator fails locations in fail, panics for locations in panics,
// and blocks locations in gates until the gate is closed.
type fakeMigrator struct {
	mu     sync.Mutex
	fail   map[string]bool
	panics map[string]bool
	gates  map[string]chan struct{}
	calls  []migration.Options
	mutate bool
	output string // Sent to Options.Progress when set
}

func newFakeMigrator() *fakeMigrator {
	return &fakeMigrator{
		fail:   make(map[string]bool),
		panics: make(map[string]bool),
		gates:  make(map[string]chan struct{}),
	}
}

func (m *fakeMigrator) Migrate(_ context.Context, cfg *migration.Config, opts migration.Options) error {
	m.mu.Lock()
	m.calls = append(m.calls, opts)
	gate := m.gates[cfg.Location]
	fail := m.fail[cfg.Location]
	doPanic := m.panics[cfg.Location]
	mutate := m.mutate
	output := m.output
	m.mu.Unlock()

	if output != "" && opts.Progress != nil {
		opts.Progress(output)
	}

	if gate != nil {
		<-gate
	}

	if mutate {
		cfg.Location = "mutated"
		cfg.OutputPath = "/elsewhere"
	}

	if doPanic {
		panic("migrator exploded")
	}

	if fail {
		return &migration.Error{Location: cfg.Location, Camera: cfg.Camera, ExitCode: 1, Err: migration.ErrMigratorFailed}
	}

	return nil
}

func (m *fakeMigrator) gate(location string) chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()

	ch := make(chan struct{})
	m.gates[location] = ch

	return ch
}

func (m *fakeMigrator) optionsSeen() []migration.Options {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]migration.Options(nil), m.calls...)
}

var errEncode = errors.New("ffmpeg exploded")

type fakeEncoder struct {
	mu      sync.Mutex
	fail    bool
	encoded []*video.Config
}

func (e *fakeEncoder) Encode(_ context.Context, cfg *video.Config) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.encoded = append(e.encoded, cfg)

	if e.fail {
		return &video.EncodeError{OutputPath: cfg.OutputPath(), ExitCode: 1, Err: errEncode}
	}

	return nil
}

func (e *fakeEncoder) configs() []*video.Config {
	e.mu.Lock()
	defer e.mu.Unlock()

	return append([]*video.Config(nil), e.encoded...)
}

type builderCall struct {
	encoderPath string
	inputDir    string
	outputDir   string
	fileName    string
	frameRate   int
	codec       video.Codec
}

type fakeBuilder struct {
	mu    sync.Mutex
	err   error
	calls []builderCall
}

func (b *fakeBuilder) build(encoderPath, inputDir, outputDir, fileName string, frameRate int, codec video.Codec) (*video.Config, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.calls = append(b.calls, builderCall{encoderPath, inputDir, outputDir, fileName, frameRate, codec})

	if b.err != nil {
		return nil, &video.ConfigError{Err: b.err}
	}

	if outputDir == "" {
		outputDir = inputDir
	}

	return &video.Config{
		EncoderPath:  encoderPath,
		InputDir:     inputDir,
		ImagePattern: video.DefaultImagePattern,
		OutputDir:    outputDir,
		FileName:     fileName,
		FrameRate:    frameRate,
		Codec:        codec,
	}, nil
}

func (b *fakeBuilder) recorded() []builderCall {
	b.mu.Lock()
	defer b.mu.Unlock()

	return append([]builderCall(nil), b.calls...)
}

func resolveTo(path string) EncoderResolver {
	return func(string) (string, error) {
		return path, nil
	}
}

func resolveFail(string) (string, error) {
	return "", video.ErrEncoderNotFound
}
