// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package orchestrator

import (
	"context"
	"testing"
	"time"

	"github.com/matt-FFFFFF/treebatch/internal/migration"
	"github.com/matt-FFFFFF/treebatch/internal/progress"
	"github.com/matt-FFFFFF/treebatch/internal/video"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type harness struct {
	o        *Orchestrator
	migrator *fakeMigrator
	encoder  *fakeEncoder
	builder  *fakeBuilder
}

func newHarness(valid []string, opts ...Option) *harness {
	h := &harness{
		migrator: newFakeMigrator(),
		encoder:  &fakeEncoder{},
		builder:  &fakeBuilder{},
	}

	opts = append([]Option{
		WithVideoConfigBuilder(h.builder.build),
		WithEncoderResolver(resolveTo("/usr/bin/ffmpeg")),
	}, opts...)

	h.o = New(newFakeValidator(valid...), h.migrator, h.encoder, opts...)

	return h
}

// settle waits for every job to return and applies their signals.
func (h *harness) settle(t *testing.T) AppState {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, h.o.WaitIdle(ctx))

	return h.o.Poll(ctx)
}

func itemStates(s Snapshot) map[string]ItemState {
	m := make(map[string]ItemState, len(s.Items))
	for _, it := range s.Items {
		m[it.Path] = it.State
	}

	return m
}

func TestRegister_Transitions(t *testing.T) {
	ctx := context.Background()

	t.Run("zero items", func(t *testing.T) {
		h := newHarness(nil)
		require.NoError(t, h.o.Register(ctx))
		assert.Equal(t, StateEmpty, h.o.Poll(ctx))
	})

	t.Run("one invalid", func(t *testing.T) {
		h := newHarness(nil)
		require.NoError(t, h.o.Register(ctx, "bad.yaml"))
		assert.Equal(t, StateInvalidConfigs, h.o.Poll(ctx))
	})

	t.Run("only valid", func(t *testing.T) {
		h := newHarness([]string{"a", "b"})
		require.NoError(t, h.o.Register(ctx, "a", "b"))
		assert.Equal(t, StateValidConfigs, h.o.Poll(ctx))
	})
}

type emptyValidator struct{}

func (emptyValidator) Validate(context.Context, string) (*migration.Config, error) {
	return nil, nil //nolint:nilnil
}

func TestRegister_NilConfigIsInvalid(t *testing.T) {
	ctx := context.Background()
	o := New(emptyValidator{}, newFakeMigrator(), &fakeEncoder{})

	require.NoError(t, o.Register(ctx, "a"))
	assert.Equal(t, StateInvalidConfigs, o.Poll(ctx))

	snap := o.Snapshot()
	require.Len(t, snap.Items, 1)
	assert.Equal(t, ItemInvalidConfig, snap.Items[0].State)
	require.ErrorIs(t, snap.Items[0].ConfigErr, ErrNoConfig)

	var verr *migration.ValidationError
	require.ErrorAs(t, snap.Items[0].ConfigErr, &verr)
	assert.Equal(t, "a", verr.Path)

	n, err := o.StartProcessing(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestScenario_MixedBatch(t *testing.T) {
	ctx := context.Background()
	h := newHarness([]string{"A", "C"})
	h.migrator.fail["loc-C"] = true

	require.NoError(t, h.o.Register(ctx, "A", "B", "C"))
	assert.Equal(t, StateInvalidConfigs, h.o.Poll(ctx))

	snap := h.o.Snapshot()
	assert.Equal(t, map[string]ItemState{
		"A": ItemValidConfig,
		"B": ItemInvalidConfig,
		"C": ItemValidConfig,
	}, itemStates(snap))
	assert.False(t, snap.CanProcess)

	n, err := h.o.StartProcessing(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n, "invalid item is never dispatched")
	assert.Equal(t, ItemInvalidConfig, itemStates(h.o.Snapshot())["B"])

	assert.Equal(t, StateProcessingErrors, h.settle(t))

	snap = h.o.Snapshot()
	assert.Equal(t, map[string]ItemState{
		"A": ItemProcessingDone,
		"B": ItemInvalidConfig,
		"C": ItemProcessingError,
	}, itemStates(snap))

	var merr *migration.Error

	require.ErrorAs(t, snap.Items[2].Err, &merr)
	assert.Equal(t, "loc-C", merr.Location)

	// Completion is stable across further ticks.
	assert.Equal(t, StateProcessingErrors, h.o.Poll(ctx))
	assert.Equal(t, StateProcessingErrors, h.o.Poll(ctx))
}

func TestScenario_AllSucceed(t *testing.T) {
	ctx := context.Background()
	h := newHarness([]string{"a", "b", "c"})

	require.NoError(t, h.o.Register(ctx, "a", "b", "c"))

	n, err := h.o.StartProcessing(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	assert.Equal(t, StateProcessingDone, h.settle(t))

	snap := h.o.Snapshot()
	assert.Equal(t, 3, snap.Count(ItemProcessingDone))
	assert.True(t, snap.CanProcess)
	assert.True(t, snap.CanClear)
	assert.Equal(t, 0, snap.InFlight)
}

func TestScenario_ProcessingIsVisibleUntilSignalsDrain(t *testing.T) {
	ctx := context.Background()
	h := newHarness([]string{"a"})
	gate := h.migrator.gate("loc-a")

	require.NoError(t, h.o.Register(ctx, "a"))
	_, err := h.o.StartProcessing(ctx)
	require.NoError(t, err)

	assert.Equal(t, StateProcessing, h.o.Poll(ctx))

	snap := h.o.Snapshot()
	assert.Equal(t, ItemProcessing, snap.Items[0].State)
	assert.False(t, snap.CanProcess)
	assert.False(t, snap.CanClear)
	assert.Equal(t, 1, snap.InFlight)

	close(gate)
	assert.Equal(t, StateProcessingDone, h.settle(t))
}

func TestScenario_ClearAndReRegisterDropsStaleSignal(t *testing.T) {
	ctx := context.Background()
	h := newHarness([]string{"P"})
	h.migrator.fail["loc-P"] = true
	gate := h.migrator.gate("loc-P")

	require.NoError(t, h.o.Register(ctx, "P"))
	_, err := h.o.StartProcessing(ctx)
	require.NoError(t, err)

	h.o.Clear()
	assert.Equal(t, StateEmpty, h.o.Poll(ctx))

	require.NoError(t, h.o.Register(ctx, "P"))
	assert.Equal(t, StateValidConfigs, h.o.Poll(ctx))

	close(gate)
	assert.Equal(t, StateValidConfigs, h.settle(t))

	snap := h.o.Snapshot()
	require.Len(t, snap.Items, 1)
	assert.Equal(t, ItemValidConfig, snap.Items[0].State, "the old job's failure must not land on the new entry")
	assert.NoError(t, snap.Items[0].Err)
}

func TestClear_SignalForRemovedPathIsIgnored(t *testing.T) {
	ctx := context.Background()
	h := newHarness([]string{"a"})
	gate := h.migrator.gate("loc-a")

	require.NoError(t, h.o.Register(ctx, "a"))
	_, err := h.o.StartProcessing(ctx)
	require.NoError(t, err)

	h.o.Clear()
	close(gate)

	assert.Equal(t, StateEmpty, h.settle(t))
	assert.Empty(t, h.o.Snapshot().Items)
}

func TestConfigIsNeverModifiedByJobs(t *testing.T) {
	ctx := context.Background()
	h := newHarness([]string{"a"})
	h.migrator.mutate = true

	require.NoError(t, h.o.Register(ctx, "a"))

	before := *h.o.Snapshot().Items[0].Config

	_, err := h.o.StartProcessing(ctx)
	require.NoError(t, err)
	h.settle(t)

	assert.Equal(t, before, *h.o.Snapshot().Items[0].Config)
}

func TestJobPanicBecomesFailure(t *testing.T) {
	ctx := context.Background()
	h := newHarness([]string{"a", "b"})
	h.migrator.panics["loc-a"] = true

	require.NoError(t, h.o.Register(ctx, "a", "b"))
	_, err := h.o.StartProcessing(ctx)
	require.NoError(t, err)

	assert.Equal(t, StateProcessingErrors, h.settle(t))

	snap := h.o.Snapshot()
	assert.Equal(t, ItemProcessingError, snap.Items[0].State)
	require.ErrorIs(t, snap.Items[0].Err, ErrJobPanic)
	assert.Equal(t, ItemProcessingDone, snap.Items[1].State)
}

func TestStartProcessing_Guards(t *testing.T) {
	ctx := context.Background()

	t.Run("empty registry", func(t *testing.T) {
		h := newHarness(nil)
		_, err := h.o.StartProcessing(ctx)
		require.ErrorIs(t, err, ErrEmptyRegistry)
		assert.Equal(t, StateEmpty, h.o.State())
	})

	t.Run("while processing", func(t *testing.T) {
		h := newHarness([]string{"a"})
		gate := h.migrator.gate("loc-a")

		require.NoError(t, h.o.Register(ctx, "a"))
		_, err := h.o.StartProcessing(ctx)
		require.NoError(t, err)

		_, err = h.o.StartProcessing(ctx)
		require.ErrorIs(t, err, ErrProcessingInProgress)
		require.ErrorIs(t, h.o.Register(ctx, "b"), ErrProcessingInProgress)
		require.ErrorIs(t, h.o.SetSettings(DefaultSettings()), ErrProcessingInProgress)

		close(gate)
		h.settle(t)
	})

	t.Run("only invalid configs", func(t *testing.T) {
		h := newHarness(nil)
		require.NoError(t, h.o.Register(ctx, "bad.yaml"))

		n, err := h.o.StartProcessing(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)
		assert.Equal(t, StateProcessingDone, h.settle(t))
		assert.Equal(t, ItemInvalidConfig, h.o.Snapshot().Items[0].State)
	})
}

func TestRegisterAfterBatchDispatchesOnlyNewItems(t *testing.T) {
	ctx := context.Background()
	h := newHarness([]string{"a", "b"})

	require.NoError(t, h.o.Register(ctx, "a"))
	_, err := h.o.StartProcessing(ctx)
	require.NoError(t, err)
	assert.Equal(t, StateProcessingDone, h.settle(t))

	require.NoError(t, h.o.Register(ctx, "b"))
	assert.Equal(t, StateValidConfigs, h.o.State())

	n, err := h.o.StartProcessing(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, StateProcessingDone, h.settle(t))
	assert.Len(t, h.migrator.optionsSeen(), 2)
}

func TestReRegisterFailedItemRetries(t *testing.T) {
	ctx := context.Background()
	h := newHarness([]string{"a"})
	h.migrator.fail["loc-a"] = true

	require.NoError(t, h.o.Register(ctx, "a"))
	_, err := h.o.StartProcessing(ctx)
	require.NoError(t, err)
	assert.Equal(t, StateProcessingErrors, h.settle(t))

	h.migrator.mu.Lock()
	h.migrator.fail["loc-a"] = false
	h.migrator.mu.Unlock()

	require.NoError(t, h.o.Register(ctx, "a"))
	assert.Equal(t, ItemValidConfig, h.o.Snapshot().Items[0].State)

	_, err = h.o.StartProcessing(ctx)
	require.NoError(t, err)
	assert.Equal(t, StateProcessingDone, h.settle(t))
}

func TestSettings(t *testing.T) {
	h := newHarness(nil)
	assert.Equal(t, DefaultSettings(), h.o.Settings())

	s := DefaultSettings()
	s.FrameRate = 0
	s.Codec = video.Codec(42)

	err := h.o.SetSettings(s)
	require.ErrorIs(t, err, ErrInvalidSettings)
	require.ErrorIs(t, err, video.ErrFrameRate)
	require.ErrorIs(t, err, video.ErrUnknownCodec)
	assert.Equal(t, DefaultSettings(), h.o.Settings())

	s = DefaultSettings()
	s.VideoExtension = "../mov"
	require.ErrorIs(t, h.o.SetSettings(s), ErrInvalidSettings)

	s = DefaultSettings()
	s.FrameRate = 25
	s.Codec = video.CodecProRes
	require.NoError(t, h.o.SetSettings(s))
	assert.Equal(t, s, h.o.Snapshot().Settings)
}

func TestForestGreenIsPassedToMigrator(t *testing.T) {
	ctx := context.Background()
	s := DefaultSettings()
	s.ForestGreen = true
	h := newHarness([]string{"a"}, WithSettings(s))

	require.NoError(t, h.o.Register(ctx, "a"))
	_, err := h.o.StartProcessing(ctx)
	require.NoError(t, err)
	h.settle(t)

	require.Len(t, h.migrator.optionsSeen(), 1)
	assert.True(t, h.migrator.optionsSeen()[0].ForestGreen)
}

func videoSettings() Settings {
	s := DefaultSettings()
	s.VideoEnabled = true
	s.Codec = video.CodecH264
	s.FrameRate = 12
	s.VideoOutputDir = "/srv/videos"
	s.EncoderPath = video.AutoEncoder

	return s
}

func TestVideoStep(t *testing.T) {
	ctx := context.Background()

	t.Run("encodes after migration", func(t *testing.T) {
		h := newHarness([]string{"a"}, WithSettings(videoSettings()))

		require.NoError(t, h.o.Register(ctx, "a"))
		_, err := h.o.StartProcessing(ctx)
		require.NoError(t, err)
		assert.Equal(t, StateProcessingDone, h.settle(t))

		calls := h.builder.recorded()
		require.Len(t, calls, 1)
		assert.Equal(t, builderCall{
			encoderPath: "/usr/bin/ffmpeg",
			inputDir:    "/srv/migrated/a",
			outputDir:   "/srv/videos",
			fileName:    "loc-a-cam01-2024-03-01-2024-03-31.mov",
			frameRate:   12,
			codec:       video.CodecH264,
		}, calls[0])
		assert.Len(t, h.encoder.configs(), 1)
	})

	t.Run("encoder failure does not fail the item", func(t *testing.T) {
		h := newHarness([]string{"a"}, WithSettings(videoSettings()))
		h.encoder.fail = true

		require.NoError(t, h.o.Register(ctx, "a"))
		_, err := h.o.StartProcessing(ctx)
		require.NoError(t, err)
		assert.Equal(t, StateProcessingDone, h.settle(t))
		assert.Len(t, h.encoder.configs(), 1)
	})

	t.Run("config build failure does not fail the item", func(t *testing.T) {
		h := newHarness([]string{"a"}, WithSettings(videoSettings()))
		h.builder.err = video.ErrNoImages

		require.NoError(t, h.o.Register(ctx, "a"))
		_, err := h.o.StartProcessing(ctx)
		require.NoError(t, err)
		assert.Equal(t, StateProcessingDone, h.settle(t))
		assert.Empty(t, h.encoder.configs())
	})

	t.Run("unresolvable encoder skips video", func(t *testing.T) {
		h := newHarness([]string{"a"}, WithSettings(videoSettings()), WithEncoderResolver(resolveFail))

		require.NoError(t, h.o.Register(ctx, "a"))
		_, err := h.o.StartProcessing(ctx)
		require.NoError(t, err)
		assert.Equal(t, StateProcessingDone, h.settle(t))
		assert.Empty(t, h.builder.recorded())
	})

	t.Run("empty encoder path skips video", func(t *testing.T) {
		s := videoSettings()
		s.EncoderPath = ""

		var resolved int

		h := newHarness([]string{"a"}, WithSettings(s), WithEncoderResolver(func(string) (string, error) {
			resolved++
			return "/usr/bin/ffmpeg", nil
		}))

		require.NoError(t, h.o.Register(ctx, "a"))
		_, err := h.o.StartProcessing(ctx)
		require.NoError(t, err)
		assert.Equal(t, StateProcessingDone, h.settle(t))
		assert.Zero(t, resolved)
		assert.Empty(t, h.builder.recorded())
		assert.Empty(t, h.encoder.configs())
	})

	t.Run("codec none skips video", func(t *testing.T) {
		s := videoSettings()
		s.Codec = video.CodecNone
		h := newHarness([]string{"a"}, WithSettings(s))

		require.NoError(t, h.o.Register(ctx, "a"))
		_, err := h.o.StartProcessing(ctx)
		require.NoError(t, err)
		h.settle(t)
		assert.Empty(t, h.builder.recorded())
	})

	t.Run("migration failure skips video", func(t *testing.T) {
		h := newHarness([]string{"a"}, WithSettings(videoSettings()))
		h.migrator.fail["loc-a"] = true

		require.NoError(t, h.o.Register(ctx, "a"))
		_, err := h.o.StartProcessing(ctx)
		require.NoError(t, err)
		assert.Equal(t, StateProcessingErrors, h.settle(t))
		assert.Empty(t, h.builder.recorded())
	})
}

func TestProgressEvents(t *testing.T) {
	ctx := context.Background()
	reporter := progress.NewChannelReporter(32)
	h := newHarness([]string{"a"}, WithSettings(videoSettings()), WithReporter(reporter))

	require.NoError(t, h.o.Register(ctx, "a"))
	_, err := h.o.StartProcessing(ctx)
	require.NoError(t, err)
	h.settle(t)
	reporter.Close()

	var got []string
	for ev := range reporter.Events() {
		assert.Equal(t, "a", ev.Path)
		assert.Equal(t, h.o.Snapshot().Items[0].ID, ev.ItemID)
		got = append(got, ev.Phase.String()+":"+ev.Type.String())
	}

	assert.Equal(t, []string{
		"migration:started",
		"migration:completed",
		"encoding:started",
		"encoding:completed",
	}, got)
}

func TestProgressEvents_MigrationOutput(t *testing.T) {
	ctx := context.Background()
	reporter := progress.NewChannelReporter(32)
	h := newHarness([]string{"a"}, WithReporter(reporter))
	h.migrator.output = "copied 120 of 480 images"

	require.NoError(t, h.o.Register(ctx, "a"))
	_, err := h.o.StartProcessing(ctx)
	require.NoError(t, err)
	h.settle(t)
	reporter.Close()

	var got []progress.Event
	for ev := range reporter.Events() {
		if ev.Type == progress.EventProgress {
			got = append(got, ev)
		}
	}

	require.Len(t, got, 1)
	assert.Equal(t, progress.PhaseMigration, got[0].Phase)
	assert.Equal(t, "copied 120 of 480 images", got[0].Message)
}

func TestSnapshot_PreservesRegistrationOrder(t *testing.T) {
	ctx := context.Background()
	h := newHarness([]string{"c", "a"})

	require.NoError(t, h.o.Register(ctx, "c", "b", "a"))
	require.NoError(t, h.o.Register(ctx, "b"))

	var paths []string
	for _, it := range h.o.Snapshot().Items {
		paths = append(paths, it.Path)
	}

	assert.Equal(t, []string{"c", "b", "a"}, paths)
}

func TestWaitIdle_ContextDone(t *testing.T) {
	h := newHarness([]string{"a"})
	gate := h.migrator.gate("loc-a")

	require.NoError(t, h.o.Register(context.Background(), "a"))
	_, err := h.o.StartProcessing(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	require.ErrorIs(t, h.o.WaitIdle(ctx), context.DeadlineExceeded)

	close(gate)
	h.settle(t)
}

func TestJobsSurviveCallerCancellation(t *testing.T) {
	h := newHarness([]string{"a"})
	gate := h.migrator.gate("loc-a")

	ctx, cancel := context.WithCancel(context.Background())

	require.NoError(t, h.o.Register(ctx, "a"))
	_, err := h.o.StartProcessing(ctx)
	require.NoError(t, err)

	cancel()
	close(gate)

	assert.Equal(t, StateProcessingDone, h.settle(t))
}
