// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package migration

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingField is returned when a required configuration field is empty.
	ErrMissingField = errors.New("missing required field")
	// ErrInvalidDate is returned when a date is not in YYYY-MM-DD format.
	ErrInvalidDate = errors.New("invalid date, expected YYYY-MM-DD")
	// ErrDateRange is returned when the end date is before the start date.
	ErrDateRange = errors.New("end date is before start date")
	// ErrInvalidName is returned when a location or camera contains characters that cannot be used in a file name.
	ErrInvalidName = errors.New("name contains a path separator")
	// ErrInputPath is returned when the input path does not exist or is not a directory.
	ErrInputPath = errors.New("input path is not a directory")
	// ErrUnsupportedFormat is returned when the configuration file extension is not recognised.
	ErrUnsupportedFormat = errors.New("unsupported config format")
	// ErrDecode is returned when the configuration file cannot be decoded.
	ErrDecode = errors.New("could not decode config")
	// ErrGetConfigFile is returned when a configuration cannot be read or fetched.
	ErrGetConfigFile = errors.New("could not get config file")
	// ErrMigratorFailed is returned when the migration engine exits unsuccessfully.
	ErrMigratorFailed = errors.New("migration engine failed")
)

// ValidationError describes why a configuration could not be accepted.
type ValidationError struct {
	Path string // Path or URL of the configuration
	Err  error  // Underlying problems, possibly a *multierror.Error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid config %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Error is a structured migration failure.
type Error struct {
	Location string // Location of the failed job
	Camera   string // Camera of the failed job
	ExitCode int    // Exit code of the migration engine, -1 if it did not run
	Output   string // Tail of the engine's error output
	Err      error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("migration of %s/%s failed", e.Location, e.Camera)
	if e.ExitCode > 0 {
		msg += fmt.Sprintf(" (exit code %d)", e.ExitCode)
	}

	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}

	return msg
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}
