package cliout

import (
	"encoding/csv"
	"io"
)

// CSVFormatter renders data as CSV, headers first.
type CSVFormatter struct{}

func (f *CSVFormatter) Format(w io.Writer, data any) error {
	rs, err := toRowSet(data)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if len(rs.Headers) > 0 {
		if err := cw.Write(rs.Headers); err != nil {
			return err
		}
	}
	for _, row := range rs.Rows {
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
