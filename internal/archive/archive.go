// Package archive moves locale directories out of the way before they are
// regenerated.
package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DirName is the directory, next to the archived one, that receives archives
const DirName = "archive"

var now = time.Now

// Dir moves dir to <parent>/archive/<name>-<timestamp> and returns the new
// location
func Dir(dir string) (string, error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return "", fmt.Errorf("directory does not exist: %s", dir)
	}
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return "", fmt.Errorf("not a directory: %s", dir)
	}

	archiveDir := filepath.Join(filepath.Dir(dir), DirName)
	if err := os.MkdirAll(archiveDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	name := filepath.Base(dir)
	t := now()
	archivePath := filepath.Join(archiveDir, fmt.Sprintf("%s-%s", name, t.Format("20060102-150405")))

	// Two archives within the same second
	if _, err := os.Stat(archivePath); err == nil {
		archivePath = filepath.Join(archiveDir, fmt.Sprintf("%s-%s", name, t.Format("20060102-150405.000000")))
	}

	if err := os.Rename(dir, archivePath); err != nil {
		return "", fmt.Errorf("failed to archive %s: %w", dir, err)
	}
	return archivePath, nil
}
