// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package video turns a tree of migrated images into a time-lapse video using ffmpeg.
package video
