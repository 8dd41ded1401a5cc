// Package output renders command results as a table, JSON or YAML.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pterm/pterm"
	"gopkg.in/yaml.v3"
)

// Format is an output format accepted by --output.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// ParseFormat validates a --output value; empty means table.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FormatTable:
		return FormatTable, nil
	case FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported output format %q (expected table, json or yaml)", s)
	}
}

// Printer writes results in one format.
type Printer struct {
	Format Format
	Out    io.Writer
}

// NewPrinter returns a Printer writing to stdout.
func NewPrinter(format Format) *Printer {
	return &Printer{Format: format, Out: os.Stdout}
}

// Print renders data. In table mode rows is rendered with its first row as
// the header; JSON and YAML render data itself.
func (p *Printer) Print(data any, rows [][]string) error {
	switch p.Format {
	case FormatJSON:
		enc := json.NewEncoder(p.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	case FormatYAML:
		enc := yaml.NewEncoder(p.Out)
		enc.SetIndent(2)
		if err := enc.Encode(data); err != nil {
			return err
		}
		return enc.Close()
	default:
		if len(rows) <= 1 {
			_, err := fmt.Fprintln(p.Out, "No results.")
			return err
		}
		return pterm.DefaultTable.
			WithHasHeader().
			WithWriter(p.Out).
			WithData(pterm.TableData(rows)).
			Render()
	}
}

// Structured reports whether output is meant for machines, in which case
// commands skip spinners and decorations.
func (p *Printer) Structured() bool {
	return p.Format == FormatJSON || p.Format == FormatYAML
}
