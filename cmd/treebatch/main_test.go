// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd_Subcommands(t *testing.T) {
	root := newRootCmd()

	var names []string
	for _, c := range root.Commands {
		names = append(names, c.Name)
	}

	assert.Equal(t, []string{"run", "validate", "show", "shell"}, names)
}

func TestRootCmd_Version(t *testing.T) {
	var out bytes.Buffer

	root := newRootCmd()
	root.Writer = &out

	require.NoError(t, root.Run(context.Background(), []string{"treebatch", "--version"}))
	assert.Contains(t, out.String(), "treebatch version dev (commit: unknown)")
}
