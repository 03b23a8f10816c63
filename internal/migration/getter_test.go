// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package migration

import (
	"context"
	"path/filepath"
	"testing"

	getter "github.com/hashicorp/go-getter/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsRemote(t *testing.T) {
	assert.True(t, IsRemote("git::https://example.com/repo.git//a.yaml"))
	assert.True(t, IsRemote("https://example.com/a.yaml"))
	assert.True(t, IsRemote("s3::https://bucket.s3.amazonaws.com/a.toml"))
	assert.False(t, IsRemote("/jobs/a.yaml"))
	assert.False(t, IsRemote("./jobs/a.yaml"))
}

func TestRemoteFileName(t *testing.T) {
	assert.Equal(t, "north.yaml", remoteFileName("git::https://example.com/configs.git//jobs/north.yaml?ref=main"))
	assert.Equal(t, "a.toml", remoteFileName("https://example.com/a.toml"))
}

func TestSplitFileNameFromGetterURL(t *testing.T) {
	tests := []struct {
		url      string
		wantURL  string
		wantFile string
	}{
		{
			url:      "git::http://notexist//file.yaml",
			wantURL:  "git::http://notexist",
			wantFile: "file.yaml",
		},
		{
			url:      "git::https://example.com/configs.git//jobs/north.yaml?ref=main",
			wantURL:  "git::https://example.com/configs.git//jobs?ref=main",
			wantFile: "north.yaml",
		},
		{
			url: "https://example.com/north.yaml",
		},
		{
			url: "git::https://example.com/configs.git//",
		},
	}

	for _, tc := range tests {
		t.Run(tc.url, func(t *testing.T) {
			gotURL, gotFile := splitFileNameFromGetterURL(tc.url)
			assert.Equal(t, tc.wantURL, gotURL)
			assert.Equal(t, tc.wantFile, gotFile)
		})
	}
}

func TestPlanFetch(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantSrc string
		mode    getter.Mode
		file    string
	}{
		{
			name:    "repository subdirectory",
			src:     "git::https://example.com/configs.git//jobs/north.yaml?ref=main",
			wantSrc: "git::https://example.com/configs.git//jobs?ref=main",
			mode:    getter.ModeDir,
			file:    filepath.Join("dst", "dir", "north.yaml"),
		},
		{
			name:    "single remote file",
			src:     "https://example.com/north.yaml",
			wantSrc: "https://example.com/north.yaml",
			mode:    getter.ModeFile,
			file:    filepath.Join("dst", "north.yaml"),
		},
		{
			name:    "local file",
			src:     "./testdata/job.yaml",
			wantSrc: "./testdata",
			mode:    getter.ModeDir,
			file:    filepath.Join("dst", "dir", "job.yaml"),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			plan, err := planFetch(tc.src, "/work", "dst")
			require.NoError(t, err)
			assert.Equal(t, tc.wantSrc, plan.req.Src)
			assert.Equal(t, tc.mode, plan.req.GetMode)
			assert.Equal(t, tc.file, plan.file)
		})
	}
}

func TestFetchConfigFile(t *testing.T) {
	t.Run("empty url", func(t *testing.T) {
		b, err := fetchConfigFile(context.Background(), "")
		require.ErrorIs(t, err, ErrGetConfigFile)
		assert.Nil(t, b)
	})

	t.Run("unreachable remote", func(t *testing.T) {
		b, err := fetchConfigFile(context.Background(), "git::http://notexist//file.yaml")
		require.ErrorIs(t, err, ErrGetConfigFile)
		assert.Nil(t, b)
	})

	t.Run("local file", func(t *testing.T) {
		b, err := fetchConfigFile(context.Background(), "./testdata/job.yaml")
		require.NoError(t, err)
		assert.Contains(t, string(b), "location: north-ridge")
	})
}
