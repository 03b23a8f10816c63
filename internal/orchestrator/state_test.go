// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package orchestrator

import (
	"errors"
	"testing"

	"github.com/matt-FFFFFF/treebatch/internal/migration"
	"github.com/stretchr/testify/assert"
)

var (
	errBadConfig = errors.New("bad config")
	errMigrate   = errors.New("migrate failed")
)

func validItem() *Item {
	return &Item{Path: "valid.yaml", Config: &migration.Config{Location: "l", Camera: "c"}}
}

func invalidItem() *Item {
	return &Item{Path: "invalid.yaml", ConfigErr: errBadConfig}
}

func doneItem() *Item {
	it := validItem()
	it.Outcome = &Outcome{}

	return it
}

func failedItem() *Item {
	it := validItem()
	it.Outcome = &Outcome{Err: errMigrate}

	return it
}

func TestClassifyItem(t *testing.T) {
	apps := []AppState{
		StateEmpty, StateInvalidConfigs, StateValidConfigs,
		StateProcessing, StateProcessingDone, StateProcessingErrors,
	}

	for _, app := range apps {
		t.Run(app.String(), func(t *testing.T) {
			assert.Equal(t, ItemProcessingDone, classifyItem(app, doneItem()))
			assert.Equal(t, ItemProcessingError, classifyItem(app, failedItem()))
			assert.Equal(t, ItemInvalidConfig, classifyItem(app, invalidItem()))

			want := ItemValidConfig
			if app == StateProcessing {
				want = ItemProcessing
			}

			assert.Equal(t, want, classifyItem(app, validItem()))
		})
	}
}

func TestClassifyItem_UnknownOnlyForBrokenItems(t *testing.T) {
	assert.Equal(t, ItemUnknown, classifyItem(StateValidConfigs, &Item{Path: "broken"}))
}

func TestDeriveAppState(t *testing.T) {
	tests := []struct {
		name  string
		prev  AppState
		items []*Item
		want  AppState
	}{
		{name: "empty registry", prev: StateProcessing, items: nil, want: StateEmpty},
		{name: "all valid", prev: StateEmpty, items: []*Item{validItem(), validItem()}, want: StateValidConfigs},
		{name: "one invalid", prev: StateEmpty, items: []*Item{validItem(), invalidItem()}, want: StateInvalidConfigs},
		{name: "only invalid", prev: StateValidConfigs, items: []*Item{invalidItem()}, want: StateInvalidConfigs},
		{name: "still running", prev: StateProcessing, items: []*Item{doneItem(), validItem()}, want: StateProcessing},
		{name: "running with a failure", prev: StateProcessing, items: []*Item{failedItem(), validItem()}, want: StateProcessing},
		{name: "all succeeded", prev: StateProcessing, items: []*Item{doneItem(), invalidItem()}, want: StateProcessingDone},
		{name: "finished with failure", prev: StateProcessing, items: []*Item{doneItem(), failedItem(), invalidItem()}, want: StateProcessingErrors},
		{name: "done is sticky", prev: StateProcessingDone, items: []*Item{doneItem(), invalidItem()}, want: StateProcessingDone},
		{name: "errors are sticky", prev: StateProcessingErrors, items: []*Item{failedItem()}, want: StateProcessingErrors},
		{name: "after registration with outcomes", prev: StateValidConfigs, items: []*Item{failedItem(), validItem()}, want: StateValidConfigs},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, deriveAppState(tc.prev, tc.items))
		})
	}
}

func TestStateStrings(t *testing.T) {
	assert.Equal(t, "done with errors", StateProcessingErrors.String())
	assert.Equal(t, "unknown", AppState(99).String())
	assert.Equal(t, "ready", ItemValidConfig.String())
	assert.Equal(t, "unknown", ItemUnknown.String())
	assert.True(t, ItemProcessingError.Terminal())
	assert.False(t, ItemProcessing.Terminal())
}
