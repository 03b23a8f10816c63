// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package migration

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/afero"
)

// DateLayout is the layout used for dates in configuration files and video file names.
const DateLayout = "2006-01-02"

// Config is a validated tree migration job.
// Once returned by a Loader it is never modified; jobs receive a Clone.
type Config struct {
	Location   string
	Camera     string
	StartDate  time.Time
	EndDate    time.Time
	InputPath  string // Source image tree, absolute
	OutputPath string // Destination of the migrated images, absolute
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}

	clone := *c

	return &clone
}

// String returns a short human-readable description of the job.
func (c *Config) String() string {
	return fmt.Sprintf("%s/%s %s..%s",
		c.Location, c.Camera, c.StartDate.Format(DateLayout), c.EndDate.Format(DateLayout))
}

// MarshalYAML writes the configuration in the file format the Loader reads.
func (c *Config) MarshalYAML() (any, error) {
	return newFileConfig(c), nil
}

// fileConfig is the on-disk representation shared by every supported format.
type fileConfig struct {
	Location   string `yaml:"location" toml:"location" hcl:"location,optional"`
	Camera     string `yaml:"camera" toml:"camera" hcl:"camera,optional"`
	StartDate  string `yaml:"start_date" toml:"start_date" hcl:"start_date,optional"`
	EndDate    string `yaml:"end_date" toml:"end_date" hcl:"end_date,optional"`
	InputPath  string `yaml:"input_path" toml:"input_path" hcl:"input_path,optional"`
	OutputPath string `yaml:"output_path" toml:"output_path" hcl:"output_path,optional"`
}

func newFileConfig(c *Config) *fileConfig {
	return &fileConfig{
		Location:   c.Location,
		Camera:     c.Camera,
		StartDate:  c.StartDate.Format(DateLayout),
		EndDate:    c.EndDate.Format(DateLayout),
		InputPath:  c.InputPath,
		OutputPath: c.OutputPath,
	}
}

// toConfig checks every field and returns all problems found, not just the first.
// Relative paths are resolved against baseDir.
func (fc *fileConfig) toConfig(fs afero.Fs, baseDir string) (*Config, error) {
	var result error

	required := []struct {
		name  string
		value string
	}{
		{"location", fc.Location},
		{"camera", fc.Camera},
		{"start_date", fc.StartDate},
		{"end_date", fc.EndDate},
		{"input_path", fc.InputPath},
		{"output_path", fc.OutputPath},
	}

	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			result = multierror.Append(result, fmt.Errorf("%w: %s", ErrMissingField, r.name))
		}
	}

	for _, name := range []string{fc.Location, fc.Camera} {
		if strings.ContainsAny(name, `/\`) {
			result = multierror.Append(result, fmt.Errorf("%w: %q", ErrInvalidName, name))
		}
	}

	c := &Config{
		Location:   strings.TrimSpace(fc.Location),
		Camera:     strings.TrimSpace(fc.Camera),
		InputPath:  resolvePath(baseDir, fc.InputPath),
		OutputPath: resolvePath(baseDir, fc.OutputPath),
	}

	var startErr, endErr error

	if fc.StartDate != "" {
		if c.StartDate, startErr = time.Parse(DateLayout, fc.StartDate); startErr != nil {
			result = multierror.Append(result, fmt.Errorf("%w: start_date %q", ErrInvalidDate, fc.StartDate))
		}
	}

	if fc.EndDate != "" {
		if c.EndDate, endErr = time.Parse(DateLayout, fc.EndDate); endErr != nil {
			result = multierror.Append(result, fmt.Errorf("%w: end_date %q", ErrInvalidDate, fc.EndDate))
		}
	}

	if fc.StartDate != "" && fc.EndDate != "" && startErr == nil && endErr == nil && c.EndDate.Before(c.StartDate) {
		result = multierror.Append(result, fmt.Errorf("%w: %s < %s", ErrDateRange, fc.EndDate, fc.StartDate))
	}

	if c.InputPath != "" {
		if ok, err := afero.IsDir(fs, c.InputPath); err != nil || !ok {
			result = multierror.Append(result, fmt.Errorf("%w: %s", ErrInputPath, c.InputPath))
		}
	}

	if result != nil {
		return nil, result
	}

	return c, nil
}

func resolvePath(baseDir, p string) string {
	p = strings.TrimSpace(p)

	switch {
	case p == "":
		return ""
	case filepath.IsAbs(p):
		return filepath.Clean(p)
	}

	return filepath.Join(baseDir, p)
}
