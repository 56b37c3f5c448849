package tree

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"codeberg.org/snonux/lingochain/internal/testutil"
)

const yamlDoc = `welcome: Hello
menu:
  file: File
  items:
    - Open
    - Save
  count: 2
  enabled: true
`

func TestYAMLKeepsOrderAndTypes(t *testing.T) {
	tr, err := DecodeYAML(strings.NewReader(yamlDoc))
	if err != nil {
		t.Fatalf("DecodeYAML failed: %v", err)
	}

	if !reflect.DeepEqual(tr.Keys(), []string{"welcome", "menu"}) {
		t.Errorf("Keys() = %v", tr.Keys())
	}
	menu, _ := tr.Get("menu")
	if !reflect.DeepEqual(menu.(*Tree).Keys(), []string{"file", "items", "count", "enabled"}) {
		t.Errorf("menu keys = %v", menu.(*Tree).Keys())
	}
	if count := tr.ToMap()["menu"].(map[string]any)["count"]; count != 2 {
		t.Errorf("count = %#v, want int 2", count)
	}
	if !reflect.DeepEqual(Texts(tr), []string{"Hello", "File", "Open", "Save"}) {
		t.Errorf("Texts() = %v", Texts(tr))
	}

	var buf bytes.Buffer
	if err := EncodeYAML(&buf, tr); err != nil {
		t.Fatalf("EncodeYAML failed: %v", err)
	}
	if buf.String() != yamlDoc {
		t.Errorf("round trip:\n%s\nwant:\n%s", buf.String(), yamlDoc)
	}
}

func TestYAMLAliases(t *testing.T) {
	doc := "base: &greet Hello\ncopy: *greet\n"
	tr, err := DecodeYAML(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("DecodeYAML failed: %v", err)
	}
	if v, _ := tr.Get("copy"); v != "Hello" {
		t.Errorf("copy = %v, want Hello", v)
	}
}

const yamlScalars = `title: Version
version: 1.0
mask: 0x1F
big: 1e3
empty: ~
quoted: "1.0"
flags:
  - 1.50
  - Yes please
`

func TestYAMLScalarsRoundTripVerbatim(t *testing.T) {
	tr, err := DecodeYAML(strings.NewReader(yamlScalars))
	if err != nil {
		t.Fatalf("DecodeYAML failed: %v", err)
	}
	if !reflect.DeepEqual(Texts(tr), []string{"Version", "1.0", "Yes please"}) {
		t.Fatalf("Texts() = %v", Texts(tr))
	}

	out, err := Rebuild(tr, []string{"Version", "1.0", "Yes please"})
	if err != nil {
		t.Fatalf("Rebuild failed: %v", err)
	}
	data, err := Encode(out, FormatYAML)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if string(data) != yamlScalars {
		t.Errorf("round trip:\n%s\nwant:\n%s", data, yamlScalars)
	}
}

func TestYAMLScalarsToOtherFormats(t *testing.T) {
	tr, err := DecodeYAML(strings.NewReader("mask: 0x1F\nbig: 1e3\nlist:\n  - 2\n  - two\nnone: ~\n"))
	if err != nil {
		t.Fatalf("DecodeYAML failed: %v", err)
	}

	data, err := Encode(tr, FormatJSON)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	for _, want := range []string{`"mask": 31`, `"big": 1000`, `"none": null`, "2,", `"two"`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("JSON %s missing %s", data, want)
		}
	}

	m := tr.ToMap()
	if m["mask"] != 31 || m["big"] != float64(1000) || m["none"] != nil {
		t.Errorf("ToMap() = %#v", m)
	}
	if !reflect.DeepEqual(m["list"], []any{2, "two"}) {
		t.Errorf("list = %#v", m["list"])
	}
}

func TestYAMLRejectsNonMapping(t *testing.T) {
	_, err := DecodeYAML(strings.NewReader("- a\n- b\n"))
	var invalid *InvalidInputError
	if !errors.As(err, &invalid) {
		t.Errorf("expected *InvalidInputError, got %v", err)
	}
}

func TestJSONNumbersToYAML(t *testing.T) {
	tr := mustJSON(t, `{"n":42,"f":1.5}`)
	data, err := Encode(tr, FormatYAML)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if string(data) != "n: 42\nf: 1.5\n" {
		t.Errorf("Encode() = %q", data)
	}
}

const tomlDoc = `title = "Settings"
zebra = "Stripes"

[dialog]
ok = "OK"
cancel = "Cancel"
width = 400

[[tips]]
text = "Press F1"
`

func TestTOMLKeepsDocumentOrder(t *testing.T) {
	tr, err := DecodeTOML(strings.NewReader(tomlDoc))
	if err != nil {
		t.Fatalf("DecodeTOML failed: %v", err)
	}

	if !reflect.DeepEqual(tr.Keys(), []string{"title", "zebra", "dialog", "tips"}) {
		t.Errorf("Keys() = %v", tr.Keys())
	}
	dialog, _ := tr.Get("dialog")
	if !reflect.DeepEqual(dialog.(*Tree).Keys(), []string{"ok", "cancel", "width"}) {
		t.Errorf("dialog keys = %v", dialog.(*Tree).Keys())
	}
	if width, _ := dialog.(*Tree).Get("width"); width != int64(400) {
		t.Errorf("width = %#v, want int64(400)", width)
	}
	want := []string{"Settings", "Stripes", "OK", "Cancel", "Press F1"}
	if !reflect.DeepEqual(Texts(tr), want) {
		t.Errorf("Texts() = %v, want %v", Texts(tr), want)
	}
}

func TestTOMLEncode(t *testing.T) {
	tr, err := DecodeTOML(strings.NewReader(tomlDoc))
	if err != nil {
		t.Fatalf("DecodeTOML failed: %v", err)
	}

	data, err := Encode(tr, FormatTOML)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	again, err := DecodeTOML(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("re-decode failed: %v\n%s", err, data)
	}
	if !reflect.DeepEqual(again.ToMap(), tr.ToMap()) {
		t.Errorf("TOML round trip changed values:\n%s", data)
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{in: "json", want: FormatJSON},
		{in: ".yml", want: FormatYAML},
		{in: "YAML", want: FormatYAML},
		{in: ".toml", want: FormatTOML},
		{in: ".php", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFormat() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoadSaveFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "en", "messages.json")
	testutil.CreateTestFile(t, src, []byte(`{"hello":"Hello","bye":"Goodbye"}`))

	tr, format, err := LoadFile(src)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if format != FormatJSON {
		t.Errorf("format = %q", format)
	}

	dst := filepath.Join(dir, "de", "messages.yaml")
	if err := SaveFile(dst, tr, FormatYAML); err != nil {
		t.Fatalf("SaveFile failed: %v", err)
	}
	testutil.AssertFileExists(t, dst)

	data, _ := os.ReadFile(dst)
	if string(data) != "hello: Hello\nbye: Goodbye\n" {
		t.Errorf("saved YAML = %q", data)
	}
}

func TestLoadFileErrors(t *testing.T) {
	dir := t.TempDir()
	testutil.CreateTestFile(t, filepath.Join(dir, "list.json"), []byte(`[1,2]`))
	testutil.CreateTestFile(t, filepath.Join(dir, "lang.php"), []byte(`<?php return [];`))

	for _, name := range []string{"missing.json", "list.json", "lang.php"} {
		t.Run(name, func(t *testing.T) {
			_, _, err := LoadFile(filepath.Join(dir, name))
			var invalid *InvalidInputError
			if !errors.As(err, &invalid) {
				t.Errorf("LoadFile(%s) error = %v, want *InvalidInputError", name, err)
			}
		})
	}
}
