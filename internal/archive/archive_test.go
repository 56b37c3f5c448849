package archive

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDir(t *testing.T) {
	tmpDir := t.TempDir()

	localeDir := filepath.Join(tmpDir, "de")
	if err := os.MkdirAll(filepath.Join(localeDir, "admin"), 0755); err != nil {
		t.Fatalf("Failed to create locale directory: %v", err)
	}
	if err := os.WriteFile(filepath.Join(localeDir, "app.json"), []byte(`{"a":"b"}`), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}
	if err := os.WriteFile(filepath.Join(localeDir, "admin", "menu.yaml"), []byte("a: b\n"), 0644); err != nil {
		t.Fatalf("Failed to create sub file: %v", err)
	}

	archived, err := Dir(localeDir)
	if err != nil {
		t.Fatalf("Dir failed: %v", err)
	}

	if _, err := os.Stat(localeDir); !os.IsNotExist(err) {
		t.Error("Locale directory still exists after archiving")
	}

	if filepath.Dir(archived) != filepath.Join(tmpDir, DirName) {
		t.Errorf("Archived to %s, want a child of %s", archived, filepath.Join(tmpDir, DirName))
	}

	name := filepath.Base(archived)
	if !strings.HasPrefix(name, "de-") {
		t.Errorf("Archive name %s should start with 'de-'", name)
	}
	if _, err := time.Parse("20060102-150405", strings.TrimPrefix(name, "de-")); err != nil {
		t.Errorf("Archive name %s does not carry a timestamp: %v", name, err)
	}

	// Check that the files moved along
	for _, file := range []string{"app.json", filepath.Join("admin", "menu.yaml")} {
		if _, err := os.Stat(filepath.Join(archived, file)); err != nil {
			t.Errorf("Archived file %s missing: %v", file, err)
		}
	}
}

func TestDirSameSecond(t *testing.T) {
	fixed := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	now = func() time.Time { return fixed }
	defer func() { now = time.Now }()

	tmpDir := t.TempDir()
	localeDir := filepath.Join(tmpDir, "fr")

	var paths []string
	for i := 0; i < 2; i++ {
		if err := os.MkdirAll(localeDir, 0755); err != nil {
			t.Fatalf("Failed to create locale directory: %v", err)
		}
		path, err := Dir(localeDir)
		if err != nil {
			t.Fatalf("Dir failed: %v", err)
		}
		paths = append(paths, path)
	}

	if paths[0] == paths[1] {
		t.Errorf("Both archives ended up in %s", paths[0])
	}
	if filepath.Base(paths[1]) != "fr-20250301-120000.000000" {
		t.Errorf("Second archive = %s, want fr-20250301-120000.000000", filepath.Base(paths[1]))
	}
}

func TestDirErrors(t *testing.T) {
	tmpDir := t.TempDir()

	if _, err := Dir(filepath.Join(tmpDir, "missing")); err == nil || !strings.Contains(err.Error(), "does not exist") {
		t.Errorf("Expected missing directory error, got %v", err)
	}

	file := filepath.Join(tmpDir, "app.json")
	if err := os.WriteFile(file, []byte("{}"), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}
	if _, err := Dir(file); err == nil || !strings.Contains(err.Error(), "not a directory") {
		t.Errorf("Expected not a directory error, got %v", err)
	}
}
