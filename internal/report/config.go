// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/goccy/go-yaml/lexer"
	"github.com/goccy/go-yaml/printer"
	"github.com/matt-FFFFFF/treebatch/internal/color"
	"github.com/matt-FFFFFF/treebatch/internal/migration"
)

// WriteConfigYAML writes cfg as a YAML document headed by a comment naming its source.
func WriteConfigYAML(w io.Writer, source string, cfg *migration.Config, colour bool) error {
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	doc := string(b)
	header := "# " + source

	if colour {
		doc = highlighter().PrintTokens(lexer.Tokenize(doc))
		header = color.Colorize(header, color.Faint)
	}

	if !strings.HasSuffix(doc, "\n") {
		doc += "\n"
	}

	_, err = fmt.Fprintf(w, "---\n%s\n%s", header, doc)

	return err
}

func highlighter() *printer.Printer {
	prop := func(codes ...color.Code) printer.PrintFunc {
		return func() *printer.Property {
			return &printer.Property{
				Prefix: color.ControlString(codes...),
				Suffix: color.ControlString(color.Reset),
			}
		}
	}

	return &printer.Printer{
		MapKey:  prop(color.FgHiCyan),
		String:  prop(color.FgHiGreen),
		Number:  prop(color.FgHiMagenta),
		Bool:    prop(color.FgHiMagenta),
		Comment: prop(color.Faint),
	}
}
