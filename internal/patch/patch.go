// Package patch weakens symbols in the prebuilt WiFi driver archive so the
// firmware can provide its own implementations.
package patch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/ghost-toolbox/ghost-prebuild/internal/marker"
)

// DefaultSymbols are weakened in libnet80211.a, in this order.
var DefaultSymbols = []string{"s", "ieee80211_raw_frame_sanity_check"}

var (
	ErrLibraryMissing = errors.New("library archive not found")
	ErrNoSymbols      = errors.New("no symbols to weaken")
	ErrNoBackup       = errors.New("no backup archive to restore")
	ErrInvalidName    = errors.New("invalid file name")
)

// ValidFileName reports whether name is a plain file name inside the
// library directory.
func ValidFileName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, `/\`) && filepath.Base(name) == name
}

// Weakener weakens a single symbol. An empty output rewrites input in place.
type Weakener interface {
	WeakenSymbol(ctx context.Context, symbol, input, output string) error
}

// Patcher applies the one-time symbol patch to a static library.
type Patcher struct {
	LibDir   string
	Library  string
	FlagName string
	Symbols  []string
	Tool     Weakener
	Log      *zap.Logger
}

// Result describes what Apply did.
type Result struct {
	Skipped bool
	Flag    string
	Steps   int
}

func (p *Patcher) logger() *zap.Logger {
	if p.Log == nil {
		return zap.NewNop()
	}
	return p.Log
}

// LibraryPath returns the archive path.
func (p *Patcher) LibraryPath() string {
	return filepath.Join(p.LibDir, p.Library)
}

// FlagPath returns the flag file path.
func (p *Patcher) FlagPath() string {
	return filepath.Join(p.LibDir, p.FlagName)
}

// BackupPath returns the path of the untouched archive copy.
func (p *Patcher) BackupPath() string {
	return p.LibraryPath() + ".old"
}

// intermediatePath returns the output of the first objcopy pass.
func (p *Patcher) intermediatePath() string {
	return p.LibraryPath() + ".patched"
}

// Applied reports whether the flag file is present.
func (p *Patcher) Applied() bool {
	return marker.Exists(p.FlagPath())
}

// Apply weakens every configured symbol unless the flag file exists.
// The flag is written only after all steps succeed.
func (p *Patcher) Apply(ctx context.Context) (Result, error) {
	log := p.logger()
	flag := p.FlagPath()
	res := Result{Flag: flag}

	if !ValidFileName(p.FlagName) {
		return res, fmt.Errorf("%w: flag file %q", ErrInvalidName, p.FlagName)
	}
	if !ValidFileName(p.Library) {
		return res, fmt.Errorf("%w: library %q", ErrInvalidName, p.Library)
	}

	if marker.Exists(flag) {
		log.Debug("library already patched", zap.String("flag", flag))
		res.Skipped = true
		return res, nil
	}

	if len(p.Symbols) == 0 {
		return res, ErrNoSymbols
	}

	lib := p.LibraryPath()
	if _, err := os.Stat(lib); err != nil {
		return res, fmt.Errorf("%w: %s", ErrLibraryMissing, lib)
	}

	patched := p.intermediatePath()
	backup := p.BackupPath()

	log.Info("patching library", zap.String("lib", lib), zap.Strings("symbols", p.Symbols))

	// First pass reads the pristine archive.
	if err := p.Tool.WeakenSymbol(ctx, p.Symbols[0], lib, patched); err != nil {
		return res, err
	}
	res.Steps++

	if err := os.Remove(backup); err != nil && !errors.Is(err, os.ErrNotExist) {
		return res, fmt.Errorf("failed to remove old backup: %w", err)
	}
	if err := os.Rename(lib, backup); err != nil {
		return res, fmt.Errorf("failed to back up library: %w", err)
	}

	if err := p.finish(ctx, patched, lib); err != nil {
		// Put the pristine archive back so the next build can retry.
		if rerr := os.Rename(backup, lib); rerr != nil {
			log.Warn("failed to restore library", zap.Error(rerr))
		}
		return res, err
	}
	res.Steps += len(p.Symbols) - 1

	if err := marker.Touch(flag); err != nil {
		return res, err
	}

	log.Info("library patched", zap.String("flag", flag), zap.Int("steps", res.Steps))
	return res, nil
}

// finish weakens the remaining symbols and installs the result at lib.
func (p *Patcher) finish(ctx context.Context, patched, lib string) error {
	last := len(p.Symbols) - 1
	if last == 0 {
		if err := copyFile(patched, lib); err != nil {
			return fmt.Errorf("failed to install patched library: %w", err)
		}
		return nil
	}

	for _, sym := range p.Symbols[1:last] {
		if err := p.Tool.WeakenSymbol(ctx, sym, patched, ""); err != nil {
			return err
		}
	}
	return p.Tool.WeakenSymbol(ctx, p.Symbols[last], patched, lib)
}

// Revert restores the backup archive and clears the flag.
func (p *Patcher) Revert() error {
	backup := p.BackupPath()
	if _, err := os.Stat(backup); err != nil {
		return fmt.Errorf("%w: %s", ErrNoBackup, backup)
	}
	if err := os.Rename(backup, p.LibraryPath()); err != nil {
		return fmt.Errorf("failed to restore library: %w", err)
	}
	if err := os.Remove(p.intermediatePath()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove intermediate archive: %w", err)
	}
	p.logger().Info("library restored", zap.String("lib", p.LibraryPath()))
	return marker.Remove(p.FlagPath())
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0644)
}
