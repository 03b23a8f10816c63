// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/TylerBrock/colorjson"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/matt-FFFFFF/treebatch/internal/color"
	"github.com/matt-FFFFFF/treebatch/internal/orchestrator"
)

// Format selects how a snapshot is rendered.
type Format string

const (
	// FormatText is one status line per item.
	FormatText Format = "text"
	// FormatTable is a bordered table.
	FormatTable Format = "table"
	// FormatJSON is indented JSON.
	FormatJSON Format = "json"
)

// ErrUnknownFormat is returned when a format name is not recognised.
var ErrUnknownFormat = errors.New("unknown output format")

// Formats returns the accepted format names.
func Formats() []string {
	return []string{string(FormatText), string(FormatTable), string(FormatJSON)}
}

// ParseFormat parses a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatText, FormatTable, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// Write renders snap in format f.
func Write(w io.Writer, snap orchestrator.Snapshot, f Format) error {
	switch f {
	case FormatText:
		return WriteText(w, snap)
	case FormatTable:
		return WriteTable(w, snap)
	case FormatJSON:
		return WriteJSON(w, snap, color.Enabled())
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
}

// Symbol returns the status marker for an item state.
func Symbol(s orchestrator.ItemState) string {
	switch s {
	case orchestrator.ItemProcessingDone:
		return color.Colorize("✓", color.FgGreen)
	case orchestrator.ItemProcessingError:
		return color.Colorize("✗", color.FgRed)
	case orchestrator.ItemInvalidConfig:
		return color.Colorize("!", color.FgYellow)
	case orchestrator.ItemProcessing:
		return color.Colorize("…", color.FgCyan)
	case orchestrator.ItemValidConfig:
		return color.Colorize("•", color.FgWhite)
	default:
		return color.Colorize("?", color.FgWhite)
	}
}

// Detail is the one-line description shown next to an item: its error, or its job.
func Detail(it orchestrator.ItemView) string {
	switch {
	case it.Err != nil:
		return it.Err.Error()
	case it.ConfigErr != nil:
		return it.ConfigErr.Error()
	case it.Config != nil:
		return it.Config.String()
	default:
		return ""
	}
}

// Summary is a one-line count of items per state.
func Summary(snap orchestrator.Snapshot) string {
	parts := []string{fmt.Sprintf("%d item(s)", len(snap.Items))}

	for _, s := range []orchestrator.ItemState{
		orchestrator.ItemProcessingDone,
		orchestrator.ItemProcessingError,
		orchestrator.ItemProcessing,
		orchestrator.ItemValidConfig,
		orchestrator.ItemInvalidConfig,
	} {
		if n := snap.Count(s); n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, s))
		}
	}

	return fmt.Sprintf("%s: %s", snap.State, strings.Join(parts, ", "))
}

// WriteText writes one status line per item followed by the summary.
func WriteText(w io.Writer, snap orchestrator.Snapshot) error {
	for _, it := range snap.Items {
		var labelColour color.Code

		switch it.State {
		case orchestrator.ItemProcessingDone:
			labelColour = color.FgGreen
		case orchestrator.ItemProcessingError:
			labelColour = color.FgRed
		case orchestrator.ItemInvalidConfig:
			labelColour = color.FgYellow
		default:
			labelColour = color.FgWhite
		}

		if _, err := fmt.Fprintf(w, "%s %s\n", Symbol(it.State), color.Colorize(it.Path, color.Bold, labelColour)); err != nil {
			return err
		}

		if it.State == orchestrator.ItemProcessingError || it.State == orchestrator.ItemInvalidConfig {
			if _, err := fmt.Fprintf(w, "  %s %s\n", color.Colorize("➜ Error:", labelColour), Detail(it)); err != nil {
				return err
			}
		}
	}

	_, err := fmt.Fprintln(w, Summary(snap))

	return err
}

// WriteTable writes a rounded table of the items followed by the summary.
func WriteTable(w io.Writer, snap orchestrator.Snapshot) error {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"", "Config", "State", "Detail"})

	for _, it := range snap.Items {
		tw.AppendRow(table.Row{Symbol(it.State), it.Path, it.State.String(), Detail(it)})
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignCenter},
		{Number: 4, WidthMax: 80},
	})

	_, err := fmt.Fprintf(w, "%s\n%s\n", tw.Render(), Summary(snap))

	return err
}

type jsonItem struct {
	Path  string `json:"path"`
	ID    string `json:"id"`
	State string `json:"state"`
	Job   string `json:"job,omitempty"`
	Error string `json:"error,omitempty"`
}

type jsonSnapshot struct {
	State    string     `json:"state"`
	InFlight int        `json:"in_flight"`
	Items    []jsonItem `json:"items"`
}

// WriteJSON writes the snapshot as indented JSON, coloured when colour is set.
func WriteJSON(w io.Writer, snap orchestrator.Snapshot, colour bool) error {
	js := jsonSnapshot{
		State:    snap.State.String(),
		InFlight: snap.InFlight,
		Items:    make([]jsonItem, 0, len(snap.Items)),
	}

	for _, it := range snap.Items {
		ji := jsonItem{Path: it.Path, ID: it.ID, State: it.State.String()}

		if it.Config != nil {
			ji.Job = it.Config.String()
		}

		switch {
		case it.Err != nil:
			ji.Error = it.Err.Error()
		case it.ConfigErr != nil:
			ji.Error = it.ConfigErr.Error()
		}

		js.Items = append(js.Items, ji)
	}

	// colorjson only understands the generic shapes produced by encoding/json.
	b, err := json.Marshal(js)
	if err != nil {
		return err
	}

	var generic map[string]any
	if err := json.Unmarshal(b, &generic); err != nil {
		return err
	}

	f := colorjson.NewFormatter()
	f.Indent = 2
	f.DisabledColor = !colour

	out, err := f.Marshal(generic)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(w, "%s\n", out)

	return err
}
