// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package procexec runs external programs, such as the tree migrator and ffmpeg, and captures
// their output up to a fixed limit.
package procexec
