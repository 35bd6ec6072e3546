// Package wire implements the serialization negotiator (C5): choosing
// between the compact binary form and JSON based on an HTTP Content-Type or
// Accept header, and encoding/decoding values in either.
package wire

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"strings"

	"github.com/eigenlog/eigenlog/internal/domain"
)

// Format is a recognized wire encoding.
type Format int

const (
	// Binary is the compact, positional on-disk encoding. It is also the
	// canonical encoding for Record values regardless of the wire format
	// negotiated with a client.
	Binary Format = iota
	JSON
)

const (
	mimeBinary = "application/octet-stream"
	mimeJSON   = "application/json"
)

// MIME returns the wire MIME type for a format.
func (f Format) MIME() string {
	switch f {
	case JSON:
		return mimeJSON
	default:
		return mimeBinary
	}
}

// ParseMIME maps a Content-Type/Accept value to a Format. Parameters (e.g.
// "; charset=utf-8") are ignored. Unknown MIME types fail with
// ErrUnsupportedSerializationMimeType.
func ParseMIME(mime string) (Format, error) {
	base := strings.TrimSpace(strings.SplitN(mime, ";", 2)[0])
	switch strings.ToLower(base) {
	case mimeBinary, "":
		return Binary, nil
	case mimeJSON:
		return JSON, nil
	default:
		return 0, domain.ErrUnsupportedSerializationMimeType.WithDetails(mime)
	}
}

// Encode serializes v in format f.
func Encode(f Format, v any) ([]byte, error) {
	switch f {
	case JSON:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, domain.ErrSerialization.WithCause(err)
		}
		return b, nil
	default:
		var buf bytes.Buffer
		if err := gob.NewEncoder(&buf).Encode(v); err != nil {
			return nil, domain.ErrSerialization.WithCause(err)
		}
		return buf.Bytes(), nil
	}
}

// Decode deserializes data in format f into v (a pointer).
func Decode(f Format, data []byte, v any) error {
	switch f {
	case JSON:
		if err := json.Unmarshal(data, v); err != nil {
			return domain.ErrSerialization.WithCause(err)
		}
		return nil
	default:
		if err := gob.NewDecoder(bytes.NewReader(data)).Decode(v); err != nil {
			return domain.ErrSerialization.WithCause(err)
		}
		return nil
	}
}

// EncodeRecord serializes a single Record in the canonical on-disk binary
// form. Used by the storage engine to build the value half of a KV entry
// regardless of the wire format the batch arrived in.
func EncodeRecord(r domain.Record) ([]byte, error) {
	return Encode(Binary, r)
}

// DecodeRecord deserializes a Record from its canonical on-disk binary form.
func DecodeRecord(data []byte) (domain.Record, error) {
	var r domain.Record
	err := Decode(Binary, data, &r)
	return r, err
}
