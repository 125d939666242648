package marker

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Exists reports whether the flag file at path is present.
func Exists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// Touch creates (or truncates) a zero-byte flag file, creating parent
// directories as needed.
func Touch(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create flag directory: %w", err)
	}
	if err := os.WriteFile(path, nil, 0644); err != nil {
		return fmt.Errorf("failed to write flag %s: %w", path, err)
	}
	return nil
}

// Remove deletes the flag file. A missing flag is not an error.
func Remove(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove flag %s: %w", path, err)
	}
	return nil
}
