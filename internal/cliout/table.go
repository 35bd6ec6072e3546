package cliout

import (
	"encoding/json"
	"io"
	"text/tabwriter"
)

// TableFormatter renders data as an aligned ASCII table.
type TableFormatter struct{}

func (f *TableFormatter) Format(w io.Writer, data any) error {
	rs, err := toRowSet(data)
	if err != nil {
		// Fall back to JSON for shapes the reflector doesn't understand.
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	if len(rs.Headers) > 0 {
		writeRow(tw, rs.Headers)
	}
	for _, row := range rs.Rows {
		writeRow(tw, row)
	}
	return nil
}

func writeRow(tw *tabwriter.Writer, cells []string) {
	for i, c := range cells {
		if i > 0 {
			tw.Write([]byte("\t"))
		}
		tw.Write([]byte(c))
	}
	tw.Write([]byte("\n"))
}
