// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package migration

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	getter "github.com/hashicorp/go-getter/v2"
	"github.com/matt-FFFFFF/treebatch/internal/ctxlog"
)

const (
	goGetterPathSeparator = "//"
	goGetterRefSeparator  = "?"
	goGetterForcedPrefix  = "::"
	minimumGetterParts    = 3 // Minimum parts in a go-getter URL: scheme, host, and path
)

// fetchRemote is replaced in tests.
var fetchRemote = fetchConfigFile

// IsRemote reports whether the path should be fetched with go-getter rather than read from the local filesystem.
func IsRemote(path string) bool {
	return strings.Contains(path, goGetterForcedPrefix) || strings.Contains(path, "://")
}

// remoteFileName returns the file name part of a go-getter URL, without any query string.
func remoteFileName(url string) string {
	name := url
	if i := strings.Index(name, goGetterRefSeparator); i >= 0 {
		name = name[:i]
	}

	return filepath.Base(name)
}

// fetchPlan is a go-getter request and the file to read once it has completed.
type fetchPlan struct {
	req  *getter.Request
	file string
}

// planFetch decides how src is downloaded into dst.
// Sources with a subdirectory (repo.git//jobs/a.yaml) download the enclosing directory,
// since go-getter cannot fetch a single file out of a repository.
// Local files download their parent directory. Anything else is fetched as a single file.
func planFetch(src, pwd, dst string) (*fetchPlan, error) {
	local, err := getter.Detect(&getter.Request{Src: src, Pwd: pwd}, &getter.FileGetter{})
	if err != nil {
		return nil, err
	}

	req := &getter.Request{
		Src: src,
		Pwd: pwd,
	}

	if local {
		req.Src = filepath.Dir(src)
		req.Dst = filepath.Join(dst, "dir")
		req.GetMode = getter.ModeDir

		return &fetchPlan{req: req, file: filepath.Join(req.Dst, filepath.Base(src))}, nil
	}

	if dir, name := splitFileNameFromGetterURL(src); name != "" {
		req.Src = dir
		req.Dst = filepath.Join(dst, "dir")
		req.GetMode = getter.ModeDir

		return &fetchPlan{req: req, file: filepath.Join(req.Dst, name)}, nil
	}

	name := remoteFileName(src)
	if name == "" || name == "." || name == "/" {
		return nil, fmt.Errorf("no file name in %s", src)
	}

	req.Dst = filepath.Join(dst, name)
	req.GetMode = getter.ModeFile

	return &fetchPlan{req: req, file: req.Dst}, nil
}

// fetchConfigFile downloads the config file at src into a temporary directory and returns its content.
// The temporary directory is removed before returning.
func fetchConfigFile(ctx context.Context, src string) ([]byte, error) {
	if src == "" {
		return nil, ErrGetConfigFile
	}

	fail := func(err error) ([]byte, error) {
		return nil, fmt.Errorf("%w: %s: %w", ErrGetConfigFile, src, err)
	}

	tmpDir, err := os.MkdirTemp("", "treebatch-fetch-*")
	if err != nil {
		return fail(err)
	}

	defer os.RemoveAll(tmpDir) //nolint:errcheck

	wd, err := os.Getwd()
	if err != nil {
		return fail(err)
	}

	plan, err := planFetch(src, wd, tmpDir)
	if err != nil {
		return fail(err)
	}

	ctxlog.Debug(ctx, "fetching config", "source", plan.req.Src, "file", filepath.Base(plan.file))

	client := &getter.Client{DisableSymlinks: true}
	if _, err := client.Get(ctx, plan.req); err != nil {
		return fail(err)
	}

	b, err := os.ReadFile(plan.file)
	if err != nil {
		return fail(err)
	}

	return b, nil
}

// splitFileNameFromGetterURL splits a go-getter URL with a subdirectory into the directory URL and the file name.
// Any ref query parameter is carried over to the returned URL. Both results are empty when url has no subdirectory.
func splitFileNameFromGetterURL(url string) (string, string) {
	var ref string

	parts := strings.Split(url, goGetterPathSeparator)
	if len(parts) < minimumGetterParts {
		return "", ""
	}

	last := parts[len(parts)-1]

	if before, after, found := strings.Cut(last, goGetterRefSeparator); found {
		ref = after
		last = before
	}

	if filepath.Clean(last) == filepath.Dir(last) {
		return "", ""
	}

	fileName := filepath.Base(last)

	if dir := filepath.Dir(last); dir == "." {
		parts = parts[:len(parts)-1]
	} else {
		parts[len(parts)-1] = dir
	}

	newURL := strings.Join(parts, goGetterPathSeparator)

	if ref != "" {
		newURL += goGetterRefSeparator + ref
	}

	return newURL, fileName
}
