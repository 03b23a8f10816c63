// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/matt-FFFFFF/treebatch/internal/color"
	"github.com/matt-FFFFFF/treebatch/internal/migration"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *migration.Config {
	return &migration.Config{
		Location:   "north-ridge",
		Camera:     "cam01",
		StartDate:  time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
		InputPath:  "/jobs/raw",
		OutputPath: "/srv/migrated",
	}
}

func TestWriteConfigYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteConfigYAML(&buf, "/jobs/a.toml", testConfig(), false))

	want := "---\n# /jobs/a.toml\n" +
		"location: north-ridge\n" +
		"camera: cam01\n" +
		"start_date: \"2024-03-01\"\n" +
		"end_date: \"2024-03-31\"\n" +
		"input_path: /jobs/raw\n" +
		"output_path: /srv/migrated\n"

	assert.Equal(t, want, buf.String())
}

func TestWriteConfigYAML_Colour(t *testing.T) {
	prev := color.SetEnabled(true)
	t.Cleanup(func() { color.SetEnabled(prev) })

	var buf bytes.Buffer
	require.NoError(t, WriteConfigYAML(&buf, "/jobs/a.toml", testConfig(), true))

	assert.Contains(t, buf.String(), "\033[")
	assert.Contains(t, buf.String(), "north-ridge")
	assert.Contains(t, buf.String(), "/jobs/a.toml")
}
