package tree

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Format is a tree file format
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// ParseFormat maps a format name or file extension to a Format
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("unsupported format: %q (use json, yaml or toml)", s)
	}
}

// FormatOf derives the format from the extension of path
func FormatOf(path string) (Format, error) {
	return ParseFormat(filepath.Ext(path))
}

// Decode reads a tree in the given format
func Decode(data []byte, format Format) (*Tree, error) {
	switch format {
	case FormatJSON:
		return DecodeJSON(bytes.NewReader(data))
	case FormatYAML:
		return DecodeYAML(bytes.NewReader(data))
	case FormatTOML:
		return DecodeTOML(bytes.NewReader(data))
	default:
		return nil, fmt.Errorf("unsupported format: %q", format)
	}
}

// Encode serialises a tree in the given format
func Encode(t *Tree, format Format) ([]byte, error) {
	var buf bytes.Buffer
	var err error

	switch format {
	case FormatJSON:
		err = EncodeJSON(&buf, t)
	case FormatYAML:
		err = EncodeYAML(&buf, t)
	case FormatTOML:
		err = EncodeTOML(&buf, t)
	default:
		err = fmt.Errorf("unsupported format: %q", format)
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// LoadFile reads a tree file, deriving the format from its extension
func LoadFile(path string) (*Tree, Format, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, "", &InvalidInputError{Reason: path, Err: err}
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, "", &InvalidInputError{Reason: "file not found: " + path, Err: err}
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to read %s: %w", path, err)
	}

	t, err := Decode(data, format)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", path, err)
	}
	return t, format, nil
}

// SaveFile writes a tree file, creating parent directories as needed
func SaveFile(path string, t *Tree, format Format) error {
	data, err := Encode(t, format)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
