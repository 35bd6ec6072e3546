package cliout

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/eigenlog/eigenlog/internal/telemetry/logger"
)

// rowSet is the common tabular shape both TableFormatter and CSVFormatter
// render: a header row plus string rows, derived by reflection over a
// slice of structs, a single struct, or a map. A Record's Tags map is
// operator-supplied free-form data -- the same channel logger.redact
// guards on the write path -- so formatValue applies the same
// key-pattern redaction here rather than only at log time.
type rowSet struct {
	Headers []string
	Rows    [][]string
}

func toRowSet(data any) (rowSet, error) {
	v := reflect.ValueOf(data)
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return rowSet{}, nil
		}
		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		return sliceRowSet(v), nil
	case reflect.Map:
		return mapRowSet(v), nil
	case reflect.Struct:
		return structRowSet(v), nil
	default:
		return rowSet{}, fmt.Errorf("cliout: unsupported type %s", v.Kind())
	}
}

func sliceRowSet(v reflect.Value) rowSet {
	if v.Len() == 0 {
		return rowSet{}
	}

	first := v.Index(0)
	if first.Kind() == reflect.Ptr {
		first = first.Elem()
	}

	var headers []string
	var fieldIndices []int

	if first.Kind() == reflect.Struct {
		t := first.Type()
		for i := 0; i < t.NumField(); i++ {
			field := t.Field(i)
			if !field.IsExported() {
				continue
			}
			headers = append(headers, strings.ToUpper(headerName(field)))
			fieldIndices = append(fieldIndices, i)
		}
	} else {
		headers = []string{"VALUE"}
	}

	rs := rowSet{Headers: headers}
	for i := 0; i < v.Len(); i++ {
		elem := v.Index(i)
		if elem.Kind() == reflect.Ptr {
			elem = elem.Elem()
		}

		var row []string
		if elem.Kind() == reflect.Struct && len(fieldIndices) > 0 {
			for col, idx := range fieldIndices {
				val := formatValue(elem.Field(idx))
				if logger.IsSensitiveKey(headers[col]) {
					val = "***REDACTED***"
				}
				row = append(row, val)
			}
		} else {
			row = []string{formatValue(elem)}
		}
		rs.Rows = append(rs.Rows, row)
	}
	return rs
}

func mapRowSet(v reflect.Value) rowSet {
	rs := rowSet{Headers: []string{"KEY", "VALUE"}}
	iter := v.MapRange()
	for iter.Next() {
		key := formatValue(iter.Key())
		val := formatValue(iter.Value())
		if logger.IsSensitiveKey(key) {
			val = "***REDACTED***"
		}
		rs.Rows = append(rs.Rows, []string{key, val})
	}
	return rs
}

func structRowSet(v reflect.Value) rowSet {
	rs := rowSet{Headers: []string{"FIELD", "VALUE"}}
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		name := headerName(field)
		val := formatValue(v.Field(i))
		if logger.IsSensitiveKey(name) {
			val = "***REDACTED***"
		}
		rs.Rows = append(rs.Rows, []string{name, val})
	}
	return rs
}

func headerName(field reflect.StructField) string {
	name := field.Name
	if jsonTag := field.Tag.Get("json"); jsonTag != "" {
		parts := strings.Split(jsonTag, ",")
		if parts[0] != "" && parts[0] != "-" {
			name = parts[0]
		}
	}
	return name
}

func formatValue(v reflect.Value) string {
	if !v.IsValid() {
		return ""
	}
	if v.Kind() == reflect.Interface || v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return ""
		}
		v = v.Elem()
	}

	if v.Type() == reflect.TypeOf(time.Time{}) {
		t := v.Interface().(time.Time)
		if t.IsZero() {
			return "-"
		}
		return t.Format(time.RFC3339)
	}

	switch v.Kind() {
	case reflect.String:
		return v.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return fmt.Sprintf("%d", v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return fmt.Sprintf("%d", v.Uint())
	case reflect.Float32, reflect.Float64:
		return fmt.Sprintf("%.2f", v.Float())
	case reflect.Bool:
		if v.Bool() {
			return "true"
		}
		return "false"
	case reflect.Map:
		return formatTagsMap(v)
	case reflect.Slice:
		if v.Len() == 0 {
			return "-"
		}
		return fmt.Sprintf("%d items", v.Len())
	default:
		return fmt.Sprintf("%v", v.Interface())
	}
}

// formatTagsMap renders a map as sorted "key=value" pairs, redacting any
// value whose key looks like a credential -- a Record's Tags field is the
// one place an operator-supplied string can reach the CLI's output
// unvalidated, so the same key-pattern check logger applies before
// logging a tag is applied again here before printing one.
func formatTagsMap(v reflect.Value) string {
	if v.Len() == 0 {
		return "-"
	}
	if v.Type().Key().Kind() != reflect.String || v.Type().Elem().Kind() != reflect.String {
		return fmt.Sprintf("%d items", v.Len())
	}

	keys := make([]string, 0, v.Len())
	iter := v.MapRange()
	for iter.Next() {
		keys = append(keys, iter.Key().String())
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		val := v.MapIndex(reflect.ValueOf(k)).String()
		if logger.IsSensitiveKey(k) {
			val = "***REDACTED***"
		}
		pairs = append(pairs, k+"="+val)
	}
	return strings.Join(pairs, ", ")
}
