package cliout

import (
	"bytes"
	"strings"
	"testing"
)

type row struct {
	Host string `json:"host"`
	Rows int    `json:"rows"`
}

func TestTableFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := New(FormatTable)
	if err := f.Format(&buf, []row{{Host: "h1", Rows: 3}, {Host: "h2", Rows: 5}}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "HOST") || !strings.Contains(out, "h1") {
		t.Errorf("table output missing expected content: %q", out)
	}
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := New(FormatJSON)
	if err := f.Format(&buf, []row{{Host: "h1", Rows: 3}}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"host": "h1"`) {
		t.Errorf("json output missing field: %q", buf.String())
	}
}

func TestCSVFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := New(FormatCSV)
	if err := f.Format(&buf, []row{{Host: "h1", Rows: 3}}); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 || !strings.Contains(lines[0], "HOST") {
		t.Errorf("csv output = %q", buf.String())
	}
}
