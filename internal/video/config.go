// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package video

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"
)

const (
	// MinFrameRate is the lowest accepted frame rate.
	MinFrameRate = 1
	// MaxFrameRate is the highest accepted frame rate.
	MaxFrameRate = 25
	// DefaultFrameRate is used when no frame rate is configured.
	DefaultFrameRate = 4
	// DefaultExtension is the video container extension used when none is configured.
	DefaultExtension = "mov"
	// DefaultImagePattern matches the migrated images inside the input directory.
	DefaultImagePattern = "*.jpg"

	dateLayout = "2006-01-02"
)

var (
	// ErrUnknownCodec is returned when a codec name is not recognised.
	ErrUnknownCodec = errors.New("unknown codec")
	// ErrCodecNone is returned when a config is requested for CodecNone.
	ErrCodecNone = errors.New("codec is none")
	// ErrFrameRate is returned when the frame rate is out of range.
	ErrFrameRate = fmt.Errorf("frame rate must be between %d and %d", MinFrameRate, MaxFrameRate)
	// ErrEncoderPath is returned when no encoder path is set.
	ErrEncoderPath = errors.New("encoder path is empty")
	// ErrInputDir is returned when the image directory does not exist.
	ErrInputDir = errors.New("image directory does not exist")
	// ErrNoImages is returned when the image directory contains no images.
	ErrNoImages = errors.New("no images found")
	// ErrOutputDir is returned when the output directory does not exist.
	ErrOutputDir = errors.New("output directory does not exist")
	// ErrFileName is returned when the output file name is empty or contains a path separator.
	ErrFileName = errors.New("invalid output file name")
)

// ConfigError is returned by BuildConfig.
type ConfigError struct {
	Err error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "video config: " + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Config is a fully checked encoding job.
type Config struct {
	EncoderPath  string
	InputDir     string
	ImagePattern string
	OutputDir    string
	FileName     string
	FrameRate    int
	Codec        Codec
}

// OutputPath is the full path of the video file.
func (c *Config) OutputPath() string {
	return filepath.Join(c.OutputDir, c.FileName)
}

// InputPattern is the glob handed to the encoder.
func (c *Config) InputPattern() string {
	return filepath.Join(c.InputDir, c.ImagePattern)
}

// FileName builds `<location>-<camera>-<start>-<end>.<ext>` with dates as YYYY-MM-DD.
// An empty ext falls back to DefaultExtension.
func FileName(location, camera string, start, end time.Time, ext string) string {
	ext = strings.TrimPrefix(ext, ".")
	if ext == "" {
		ext = DefaultExtension
	}

	return fmt.Sprintf("%s-%s-%s-%s.%s", location, camera, start.Format(dateLayout), end.Format(dateLayout), ext)
}

// BuildConfig checks the encoding parameters against the filesystem.
// outputDir defaults to inputDir when empty.
// Failures are returned as *ConfigError.
func BuildConfig(encoderPath, inputDir, outputDir, fileName string, frameRate int, codec Codec) (*Config, error) {
	fail := func(err error) (*Config, error) {
		return nil, &ConfigError{Err: err}
	}

	switch {
	case !codec.Valid():
		return fail(fmt.Errorf("%w: %s", ErrUnknownCodec, codec))
	case codec == CodecNone:
		return fail(ErrCodecNone)
	case frameRate < MinFrameRate || frameRate > MaxFrameRate:
		return fail(fmt.Errorf("%w: %d", ErrFrameRate, frameRate))
	case encoderPath == "":
		return fail(ErrEncoderPath)
	case fileName == "" || strings.ContainsAny(fileName, `/\`):
		return fail(fmt.Errorf("%w: %q", ErrFileName, fileName))
	}

	fs := FsFactory()

	if ok, err := afero.IsDir(fs, inputDir); err != nil || !ok {
		return fail(fmt.Errorf("%w: %s", ErrInputDir, inputDir))
	}

	if outputDir == "" {
		outputDir = inputDir
	}

	if ok, err := afero.IsDir(fs, outputDir); err != nil || !ok {
		return fail(fmt.Errorf("%w: %s", ErrOutputDir, outputDir))
	}

	c := &Config{
		EncoderPath:  encoderPath,
		InputDir:     inputDir,
		ImagePattern: DefaultImagePattern,
		OutputDir:    outputDir,
		FileName:     fileName,
		FrameRate:    frameRate,
		Codec:        codec,
	}

	matches, err := afero.Glob(fs, c.InputPattern())
	if err != nil {
		return fail(err)
	}

	if len(matches) == 0 {
		return fail(fmt.Errorf("%w: %s", ErrNoImages, c.InputPattern()))
	}

	return c, nil
}
