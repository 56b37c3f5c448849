package internal

import (
	"strings"
	"testing"
)

func TestContentHash(t *testing.T) {
	// Known MD5 of "Hello"
	if got := ContentHash("Hello"); got != "8b1a9953c4611296a827abf8c47804d7" {
		t.Errorf("ContentHash(Hello) = %s", got)
	}

	long := strings.Repeat("ябълка ", 10000)
	if got := ContentHash(long); len(got) != 32 {
		t.Errorf("Expected 32 character digest, got %d", len(got))
	}

	if ContentHash("a") == ContentHash("b") {
		t.Error("Different inputs produced the same digest")
	}
}

func TestExcerpt(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		max      int
		expected string
	}{
		{"shorter than limit", "Hello", 10, "Hello"},
		{"exact limit", "Hello", 5, "Hello"},
		{"truncated", "Hello World", 5, "Hello"},
		{"multibyte", "ябълка", 3, "ябъ"},
		{"zero limit", "Hello", 0, ""},
		{"empty", "", 5, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Excerpt(tt.input, tt.max); got != tt.expected {
				t.Errorf("Excerpt(%q, %d) = %q, want %q", tt.input, tt.max, got, tt.expected)
			}
		})
	}
}
