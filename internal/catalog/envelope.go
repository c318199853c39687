package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// envelope is the API's standard response wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message,omitempty"`
}

func (e envelope) ok() bool {
	d := bytes.TrimSpace(e.Data)
	return e.Success && len(d) > 0 && !bytes.Equal(d, []byte("null"))
}

// decodeList accepts the list shapes the API has served: a bare array,
// {success, data: [...]} and {success, data: {products: [...]}}.
func decodeList(raw json.RawMessage) ([]json.RawMessage, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty response")
	}

	var items []json.RawMessage
	if raw[0] == '[' {
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("decode list: %w", err)
		}
		return items, nil
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	if !env.ok() {
		return nil, nil
	}

	data := bytes.TrimSpace(env.Data)
	if len(data) == 0 {
		return nil, nil
	}
	if data[0] == '[' {
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, fmt.Errorf("decode data: %w", err)
		}
		return items, nil
	}

	var page struct {
		Products []json.RawMessage `json:"products"`
	}
	if err := json.Unmarshal(data, &page); err != nil {
		return nil, fmt.Errorf("decode page: %w", err)
	}
	return page.Products, nil
}
