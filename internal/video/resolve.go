// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package video

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

const (
	// DefaultEncoder is the executable looked up on PATH for AutoEncoder.
	DefaultEncoder = "ffmpeg"
	// AutoEncoder requests a PATH lookup of DefaultEncoder instead of an explicit path.
	AutoEncoder = "auto"
)

var (
	// ErrEncoderNotFound is returned when the encoder cannot be resolved to an executable file.
	ErrEncoderNotFound = errors.New("encoder not found")
	// ErrNoEncoder is returned when no encoder is configured.
	ErrNoEncoder = errors.New("no encoder configured")
)

// ResolveEncoder returns the absolute path of the encoder.
// An explicit path must be an executable file. AutoEncoder is looked up as DefaultEncoder on PATH.
// An empty path is never resolved.
func ResolveEncoder(path string) (string, error) {
	if path == "" {
		return "", ErrNoEncoder
	}

	if !strings.EqualFold(path, AutoEncoder) {
		if !isExecutable(path) {
			return "", fmt.Errorf("%w: %s", ErrEncoderNotFound, path)
		}

		return filepath.Abs(path)
	}

	name := DefaultEncoder
	if runtime.GOOS == "windows" {
		name += ".exe"
	}

	for _, p := range strings.Split(os.Getenv("PATH"), string(os.PathListSeparator)) {
		if p == "" {
			continue
		}

		candidate := filepath.Join(p, name)
		if isExecutable(candidate) {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("%w: %s not in PATH", ErrEncoderNotFound, name)
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}

	// check if the file is executable if not Windows
	return runtime.GOOS == "windows" || info.Mode()&0o111 != 0
}
