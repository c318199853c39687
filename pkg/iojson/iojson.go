// Package iojson reads and writes JSON documents for command line output.
package iojson

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// Error is the document written to the error stream when a value cannot be
// encoded.
type Error struct {
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

// encode writes v as indented JSON. HTML escaping is off so product names
// such as "Salt & Pepper" print as typed.
func encode(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// WriteWith writes obj to w. Nothing reaches w when encoding fails; the
// failure is written to ew as an Error document and returned.
func WriteWith(w io.Writer, ew io.Writer, obj any) error {
	var buf bytes.Buffer
	if err := encode(&buf, obj); err != nil {
		doc := Error{Message: "encode output", Data: map[string]any{"json_error": err.Error()}}
		if werr := encode(ew, doc); werr != nil {
			return werr
		}
		return fmt.Errorf("encode output: %w", err)
	}

	_, err := buf.WriteTo(w)
	return err
}
