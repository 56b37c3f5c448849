package tree

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// MarshalJSON writes the keys in tree order. HTML characters in strings are
// not escaped.
func (t *Tree) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range t.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := marshalJSONValue(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		value, err := marshalJSONValue(t.values[k])
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func marshalJSONValue(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(plainValue(v)); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// UnmarshalJSON reads a JSON object keeping its key order. Numbers are kept
// as json.Number so they round-trip unchanged.
func (t *Tree) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	parsed, err := decodeJSONObject(dec)
	if err != nil {
		return err
	}
	*t = *parsed
	return nil
}

// DecodeJSON reads a JSON document whose top level must be an object
func DecodeJSON(r io.Reader) (*Tree, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	t, err := decodeJSONObject(dec)
	if err != nil {
		return nil, &InvalidInputError{Reason: "malformed JSON document", Err: err}
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, &InvalidInputError{Reason: "trailing data after JSON document"}
	}
	return t, nil
}

// EncodeJSON writes t as indented JSON
func EncodeJSON(w io.Writer, t *Tree) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(t); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

func decodeJSONObject(dec *json.Decoder) (*Tree, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("top level must be an object, got %v", tok)
	}
	return decodeJSONObjectBody(dec)
}

// decodeJSONObjectBody reads the members of an object whose '{' was consumed
func decodeJSONObjectBody(dec *json.Decoder) (*Tree, error) {
	t := New()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("object key must be a string, got %v", tok)
		}

		value, err := decodeJSONValue(dec)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", key, err)
		}
		t.Set(key, value)
	}
	// closing '}'
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return t, nil
}

func decodeJSONValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	delim, ok := tok.(json.Delim)
	if !ok {
		// string, json.Number, bool or nil
		return tok, nil
	}

	switch delim {
	case '{':
		return decodeJSONObjectBody(dec)
	case '[':
		list := []any{}
		for dec.More() {
			item, err := decodeJSONValue(dec)
			if err != nil {
				return nil, err
			}
			list = append(list, item)
		}
		// closing ']'
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return list, nil
	default:
		return nil, fmt.Errorf("unexpected delimiter %v", delim)
	}
}
