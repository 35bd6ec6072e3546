// Package cliout formats eigenlog-cli's output as a table, JSON, or CSV.
package cliout

import "io"

// Format selects the output rendering.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatCSV   Format = "csv"
)

// Formatter renders data to w.
type Formatter interface {
	Format(w io.Writer, data any) error
}

// New returns the Formatter for the named format, defaulting to table for
// anything unrecognized.
func New(format Format) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{}
	case FormatCSV:
		return &CSVFormatter{}
	default:
		return &TableFormatter{}
	}
}
