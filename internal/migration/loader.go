// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package migration

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/matt-FFFFFF/treebatch/internal/ctxlog"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"
)

type format int

const (
	formatUnknown format = iota
	formatYAML
	formatTOML
	formatHCL
)

// Loader reads and validates job configurations from local files or go-getter URLs.
type Loader struct{}

// NewLoader creates a new Loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Validate reads the configuration at path and checks it.
// Any failure is returned as a *ValidationError.
func (l *Loader) Validate(ctx context.Context, path string) (*Config, error) {
	logger := ctxlog.Logger(ctx).With("config", path)

	c, err := l.load(ctx, path)
	if err != nil {
		logger.Debug("config rejected", "error", err)
		return nil, &ValidationError{Path: path, Err: err}
	}

	logger.Debug("config accepted", "job", c.String())

	return c, nil
}

func (l *Loader) load(ctx context.Context, path string) (*Config, error) {
	fs := FsFactory()

	var (
		content []byte
		name    string
		baseDir string
		err     error
	)

	if IsRemote(path) {
		name = remoteFileName(path)

		if baseDir, err = os.Getwd(); err != nil {
			return nil, errors.Join(ErrGetConfigFile, err)
		}

		if content, err = fetchRemote(ctx, path); err != nil {
			return nil, err
		}
	} else {
		name = path
		baseDir = filepath.Dir(path)

		if content, err = afero.ReadFile(fs, path); err != nil {
			return nil, errors.Join(ErrGetConfigFile, err)
		}
	}

	f := formatFromName(name)
	if f == formatUnknown {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(name))
	}

	fc, err := decode(f, name, content)
	if err != nil {
		return nil, errors.Join(ErrDecode, err)
	}

	return fc.toConfig(fs, baseDir)
}

func formatFromName(name string) format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml", ".json":
		return formatYAML
	case ".toml":
		return formatTOML
	case ".hcl":
		return formatHCL
	default:
		return formatUnknown
	}
}

func decode(f format, name string, content []byte) (*fileConfig, error) {
	fc := new(fileConfig)

	switch f {
	case formatYAML:
		if err := yaml.UnmarshalWithOptions(content, fc, yaml.DisallowUnknownField()); err != nil {
			return nil, err
		}
	case formatTOML:
		if err := toml.NewDecoder(bytes.NewReader(content)).DisallowUnknownFields().Decode(fc); err != nil {
			return nil, err
		}
	case formatHCL:
		file, diags := hclparse.NewParser().ParseHCL(content, name)
		if diags.HasErrors() {
			return nil, diags
		}

		if diags := gohcl.DecodeBody(file.Body, nil, fc); diags.HasErrors() {
			return nil, diags
		}
	default:
		return nil, ErrUnsupportedFormat
	}

	return fc, nil
}
