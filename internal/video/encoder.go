// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package video

import (
	"context"
	"fmt"
	"strconv"

	"github.com/matt-FFFFFF/treebatch/internal/ctxlog"
	"github.com/matt-FFFFFF/treebatch/internal/procexec"
)

const maxErrorOutput = 2048

// Encoder renders a video from a Config.
type Encoder interface {
	Encode(ctx context.Context, cfg *Config) error
}

var _ Encoder = (*FFmpegEncoder)(nil)

// EncodeError is returned when the encoder fails.
type EncodeError struct {
	OutputPath string
	ExitCode   int
	Output     string // Tail of the encoder's error output
	Err        error
}

// Error implements the error interface.
func (e *EncodeError) Error() string {
	return fmt.Sprintf("encoding %s failed (exit code %d): %v", e.OutputPath, e.ExitCode, e.Err)
}

// Unwrap returns the underlying error.
func (e *EncodeError) Unwrap() error {
	return e.Err
}

// FFmpegEncoder encodes an image sequence with ffmpeg.
type FFmpegEncoder struct{}

// NewFFmpegEncoder creates a new FFmpegEncoder.
func NewFFmpegEncoder() *FFmpegEncoder {
	return &FFmpegEncoder{}
}

// Encode implements Encoder. Failures are returned as *EncodeError.
func (e *FFmpegEncoder) Encode(ctx context.Context, cfg *Config) error {
	logger := ctxlog.Logger(ctx).With("output", cfg.OutputPath())
	logger.Debug("starting encoder", "codec", cfg.Codec.String(), "frameRate", cfg.FrameRate)

	res := procexec.Run(ctx, &procexec.Command{
		Path: cfg.EncoderPath,
		Args: Args(cfg),
	})
	if res.Error != nil {
		return &EncodeError{
			OutputPath: cfg.OutputPath(),
			ExitCode:   res.ExitCode,
			Output:     res.StdErrTail(maxErrorOutput),
			Err:        res.Error,
		}
	}

	logger.Info("video encoded", "duration", res.Duration.String())

	return nil
}

// Args builds the ffmpeg argument list for cfg, without the executable name.
func Args(cfg *Config) []string {
	args := make([]string, 0, 24)

	args = append(args, "-hide_banner", "-nostdin", "-y", "-loglevel", "error")

	args = append(args,
		"-framerate", strconv.Itoa(cfg.FrameRate),
		"-pattern_type", "glob",
		"-i", cfg.InputPattern(),
	)

	switch cfg.Codec {
	case CodecH264:
		args = append(args, "-c:v", "libx264", "-pix_fmt", "yuv420p", "-crf", "18")
	case CodecProRes:
		args = append(args, "-c:v", "prores_ks", "-profile:v", "3", "-pix_fmt", "yuv422p10le")
	case CodecNone:
	}

	return append(args, cfg.OutputPath())
}
