// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package migration loads and validates tree migration job configurations and runs the
// external migration engine.
//
// A job configuration names a camera location, a camera, a date range and the source and
// destination image trees. It can be written as YAML, JSON, TOML or HCL:
//
//	location    = "north-ridge"
//	camera      = "cam01"
//	start_date  = "2024-03-01"
//	end_date    = "2024-03-31"
//	input_path  = "./raw"
//	output_path = "./migrated"
//
// Configurations may also be fetched from a remote source using a go-getter URL, for example
// `git::https://example.com/configs.git//north-ridge.yaml?ref=main`.
package migration
