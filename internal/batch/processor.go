package batch

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Entry is one line of a batch file
type Entry struct {
	Text        string
	Translation string
	// NeedsTranslation is false when the line already carries a translation
	NeedsTranslation bool
}

// ReadBatchFile reads texts from a file, one per line.
// Supported line formats:
// - Text only: "Good morning" (will be translated)
// - With translation: "Good morning = Guten Morgen" (kept as is)
// - Lines starting with '#' and blank lines are ignored
func ReadBatchFile(filename string) ([]Entry, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read batch file: %w", err)
	}
	return ParseBatch(content)
}

// ParseBatch parses batch file content
func ParseBatch(content []byte) ([]Entry, error) {
	var entries []Entry

	scanner := bufio.NewScanner(bytes.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		text, translation, found := strings.Cut(line, "=")
		if !found {
			entries = append(entries, Entry{Text: line, NeedsTranslation: true})
			continue
		}

		text = strings.TrimSpace(text)
		translation = strings.TrimSpace(translation)
		if text == "" {
			// Nothing to translate from
			continue
		}
		entries = append(entries, Entry{
			Text:             text,
			Translation:      translation,
			NeedsTranslation: translation == "",
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to parse batch file: %w", err)
	}

	return entries, nil
}

// Pending returns the texts that still need a translation, in file order
func Pending(entries []Entry) []string {
	var texts []string
	for _, e := range entries {
		if e.NeedsTranslation {
			texts = append(texts, e.Text)
		}
	}
	return texts
}

// Fill stores translations for the pending entries, in the order Pending
// returned them
func Fill(entries []Entry, translations []string) error {
	if want := len(Pending(entries)); want != len(translations) {
		return fmt.Errorf("got %d translations for %d pending entries", len(translations), want)
	}

	i := 0
	for j := range entries {
		if !entries[j].NeedsTranslation {
			continue
		}
		entries[j].Translation = translations[i]
		entries[j].NeedsTranslation = false
		i++
	}
	return nil
}

// Format renders entries in batch file syntax
func Format(entries []Entry) string {
	var b strings.Builder
	for _, e := range entries {
		if e.Translation == "" {
			fmt.Fprintf(&b, "%s\n", e.Text)
			continue
		}
		fmt.Fprintf(&b, "%s = %s\n", e.Text, e.Translation)
	}
	return b.String()
}

// WriteBatchFile writes entries in batch file syntax
func WriteBatchFile(filename string, entries []Entry) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(filename, []byte(Format(entries)), 0644); err != nil {
		return fmt.Errorf("failed to write batch file: %w", err)
	}
	return nil
}
