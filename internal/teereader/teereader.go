// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package teereader

import (
	"bytes"
	"io"
	"strings"
	"sync"
)

// LastLineReader passes reads through unchanged and tracks the last complete, non-blank line.
// LastLine may be called concurrently with Read.
type LastLineReader struct {
	reader   io.Reader
	partial  []byte
	lastLine string
	mu       sync.RWMutex
}

// New wraps r.
func New(r io.Reader) *LastLineReader {
	return &LastLineReader{reader: r}
}

// Read implements io.Reader.
func (lr *LastLineReader) Read(p []byte) (int, error) {
	n, err := lr.reader.Read(p)
	if n > 0 {
		lr.mu.Lock()
		lr.consume(p[:n])
		lr.mu.Unlock()
	}

	return n, err //nolint:wrapcheck
}

// consume must be called with the write lock held.
func (lr *LastLineReader) consume(data []byte) {
	lr.partial = append(lr.partial, data...)

	for {
		i := bytes.IndexByte(lr.partial, '\n')
		if i < 0 {
			return
		}

		// Progress bars rewrite the line with carriage returns; keep the newest segment.
		line := string(lr.partial[:i])
		if j := strings.LastIndexByte(strings.TrimRight(line, "\r"), '\r'); j >= 0 {
			line = line[j+1:]
		}

		if line = strings.TrimSpace(line); line != "" {
			lr.lastLine = line
		}

		lr.partial = lr.partial[i+1:]
	}
}

// LastLine returns the last complete line read, truncated to maxLength when maxLength > 3.
func (lr *LastLineReader) LastLine(maxLength int) string {
	lr.mu.RLock()
	defer lr.mu.RUnlock()

	if maxLength > 3 && len(lr.lastLine) > maxLength {
		return lr.lastLine[:maxLength-3] + "..."
	}

	return lr.lastLine
}
