package batch

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestReadBatchFile(t *testing.T) {
	tests := []struct {
		name        string
		fileContent string
		want        []Entry
	}{
		{
			name:        "empty file",
			fileContent: "",
			want:        nil,
		},
		{
			name:        "only whitespace",
			fileContent: "   \n\t\r\n   ",
			want:        nil,
		},
		{
			name: "texts with translations",
			fileContent: `apple = Apfel
cat = Katze
dog = Hund`,
			want: []Entry{
				{Text: "apple", Translation: "Apfel"},
				{Text: "cat", Translation: "Katze"},
				{Text: "dog", Translation: "Hund"},
			},
		},
		{
			name: "mixed format",
			fileContent: `Good morning
cat = Katze
See you later
bread =`,
			want: []Entry{
				{Text: "Good morning", NeedsTranslation: true},
				{Text: "cat", Translation: "Katze"},
				{Text: "See you later", NeedsTranslation: true},
				{Text: "bread", NeedsTranslation: true},
			},
		},
		{
			name: "comments and blank lines",
			fileContent: `
# greetings
Hello

  cat = Katze  

= orphan
`,
			want: []Entry{
				{Text: "Hello", NeedsTranslation: true},
				{Text: "cat", Translation: "Katze"},
			},
		},
		{
			name:        "windows line endings",
			fileContent: "apple\r\ncat = Katze\r\ndog",
			want: []Entry{
				{Text: "apple", NeedsTranslation: true},
				{Text: "cat", Translation: "Katze"},
				{Text: "dog", NeedsTranslation: true},
			},
		},
		{
			name:        "only first equals splits",
			fileContent: "a = b = c",
			want: []Entry{
				{Text: "a", Translation: "b = c"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "batch.txt")
			if err := os.WriteFile(path, []byte(tt.fileContent), 0644); err != nil {
				t.Fatalf("Failed to write batch file: %v", err)
			}

			got, err := ReadBatchFile(path)
			if err != nil {
				t.Fatalf("ReadBatchFile() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ReadBatchFile() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestReadBatchFile_Missing(t *testing.T) {
	if _, err := ReadBatchFile(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestPendingAndFill(t *testing.T) {
	entries := []Entry{
		{Text: "Hello", NeedsTranslation: true},
		{Text: "cat", Translation: "Katze"},
		{Text: "Bye", NeedsTranslation: true},
	}

	pending := Pending(entries)
	if !reflect.DeepEqual(pending, []string{"Hello", "Bye"}) {
		t.Fatalf("Pending() = %v", pending)
	}

	if err := Fill(entries, []string{"Hallo"}); err == nil {
		t.Error("Expected error for translation count mismatch")
	}

	if err := Fill(entries, []string{"Hallo", "Tschüss"}); err != nil {
		t.Fatalf("Fill() error = %v", err)
	}
	if entries[0].Translation != "Hallo" || entries[2].Translation != "Tschüss" || entries[1].Translation != "Katze" {
		t.Errorf("Fill() produced %#v", entries)
	}
	if len(Pending(entries)) != 0 {
		t.Error("entries still pending after Fill")
	}
}

func TestWriteBatchFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "de.txt")
	entries := []Entry{
		{Text: "Hello", Translation: "Hallo"},
		{Text: "untranslated"},
	}

	if err := WriteBatchFile(path, entries); err != nil {
		t.Fatalf("WriteBatchFile() error = %v", err)
	}

	got, err := ReadBatchFile(path)
	if err != nil {
		t.Fatalf("ReadBatchFile() error = %v", err)
	}
	want := []Entry{
		{Text: "Hello", Translation: "Hallo"},
		{Text: "untranslated", NeedsTranslation: true},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("round trip = %#v, want %#v", got, want)
	}
}
