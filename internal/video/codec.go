// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package video

import (
	"fmt"
	"strings"
)

// Codec selects the video codec. CodecNone disables encoding.
type Codec int

const (
	// CodecNone disables the video step.
	CodecNone Codec = iota
	// CodecH264 encodes with libx264.
	CodecH264
	// CodecProRes encodes with prores_ks.
	CodecProRes
)

// String implements the Stringer interface for Codec.
func (c Codec) String() string {
	switch c {
	case CodecNone:
		return "none"
	case CodecH264:
		return "h264"
	case CodecProRes:
		return "prores"
	default:
		return fmt.Sprintf("codec(%d)", int(c))
	}
}

// Valid reports whether c is a known codec.
func (c Codec) Valid() bool {
	return c >= CodecNone && c <= CodecProRes
}

// ParseCodec parses a codec name. It accepts the String forms plus "h.264" and "" (none).
func ParseCodec(s string) (Codec, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return CodecNone, nil
	case "h264", "h.264":
		return CodecH264, nil
	case "prores":
		return CodecProRes, nil
	default:
		return CodecNone, fmt.Errorf("%w: %q", ErrUnknownCodec, s)
	}
}

// CodecNames returns the accepted codec names, for flag usage text.
func CodecNames() []string {
	return []string{CodecNone.String(), CodecH264.String(), CodecProRes.String()}
}
