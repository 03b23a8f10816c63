// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package orchestrator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/matt-FFFFFF/treebatch/internal/video"
)

// ErrInvalidSettings is returned when settings fail validation.
var ErrInvalidSettings = errors.New("invalid settings")

// Settings are the global options copied into every job when a batch starts.
type Settings struct {
	ForestGreen    bool        // Passed to the migration engine
	VideoEnabled   bool        // Enables the video step
	Codec          video.Codec // CodecNone disables the video step
	EncoderPath    string      // Empty disables the video step; video.AutoEncoder looks up ffmpeg on PATH
	VideoOutputDir string      // Empty means next to the migrated images
	FrameRate      int
	VideoExtension string // Container extension without the dot
}

// DefaultSettings returns the settings used when none are given.
func DefaultSettings() Settings {
	return Settings{
		Codec:          video.CodecNone,
		FrameRate:      video.DefaultFrameRate,
		VideoExtension: video.DefaultExtension,
	}
}

// VideoRequested reports whether the video step should run, before the encoder is resolved.
// An encoder location must be configured.
func (s Settings) VideoRequested() bool {
	return s.VideoEnabled && s.Codec != video.CodecNone && s.EncoderPath != ""
}

// Validate checks the settings and returns every problem found.
func (s Settings) Validate() error {
	var result error

	if !s.Codec.Valid() {
		result = multierror.Append(result, fmt.Errorf("%w: %s", video.ErrUnknownCodec, s.Codec))
	}

	if s.FrameRate < video.MinFrameRate || s.FrameRate > video.MaxFrameRate {
		result = multierror.Append(result, fmt.Errorf("%w: %d", video.ErrFrameRate, s.FrameRate))
	}

	if strings.ContainsAny(s.VideoExtension, `/\`) {
		result = multierror.Append(result, fmt.Errorf("video extension %q contains a path separator", s.VideoExtension))
	}

	if result != nil {
		return errors.Join(ErrInvalidSettings, result)
	}

	return nil
}
