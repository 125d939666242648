// Package checksum computes and persists the combined hash of the web
// interface sources.
package checksum

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const chunkSize = 4096

// HashFile returns the hex SHA-256 digest of a single file.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	buf := make([]byte, chunkSize)
	if _, err := io.CopyBuffer(h, f, buf); err != nil {
		return "", fmt.Errorf("failed to hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// HashFiles returns a combined digest: SHA-256 over the concatenated hex
// digests of each file, in the given order.
func HashFiles(paths []string) (string, error) {
	combined := sha256.New()
	for _, p := range paths {
		sum, err := HashFile(p)
		if err != nil {
			return "", err
		}
		combined.Write([]byte(sum))
	}
	return hex.EncodeToString(combined.Sum(nil)), nil
}

// Load reads the stored checksum. A missing file yields an empty string.
func Load(path string) (string, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to open checksum file: %w", err)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	line, err := r.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read checksum file: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// Save writes the checksum value, without a trailing newline.
func Save(path, sum string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create checksum directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(sum), 0644); err != nil {
		return fmt.Errorf("failed to write checksum file: %w", err)
	}
	return nil
}
