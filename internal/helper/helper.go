// Package helper places pioarduino-build.py in every framework tools
// directory PlatformIO may import it from.
package helper

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/ghost-toolbox/ghost-prebuild/embedded"
	"github.com/ghost-toolbox/ghost-prebuild/internal/pioenv"
)

var (
	ErrHelperMissing = errors.New("build helper script is missing from the repository; please update your checkout")
	ErrNoToolDir     = errors.New("unable to place build helper in any known framework directory")
)

// Installer copies the helper script into framework tool directories.
type Installer struct {
	ProjectDir string
	// Source is relative to ProjectDir unless absolute.
	Source   string
	ToolDirs []string
	// EmbeddedFallback uses the built-in stub when Source is missing.
	EmbeddedFallback bool
	Log              *zap.Logger
}

// Result lists what Ensure did per directory.
type Result struct {
	Installed []string
	Present   []string
	Embedded  bool
}

// Placed is the number of directories that now hold the helper.
func (r Result) Placed() int {
	return len(r.Installed) + len(r.Present)
}

func (in *Installer) sourcePath() string {
	if filepath.IsAbs(in.Source) {
		return in.Source
	}
	return filepath.Join(in.ProjectDir, in.Source)
}

// loadSource reads the helper from the repository or the embedded stub.
func (in *Installer) loadSource() ([]byte, bool, error) {
	data, err := os.ReadFile(in.sourcePath())
	if err == nil {
		return data, false, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, false, fmt.Errorf("failed to read build helper: %w", err)
	}
	if in.EmbeddedFallback {
		return embedded.BuildHelper(), true, nil
	}
	return nil, false, fmt.Errorf("%w: %s", ErrHelperMissing, in.sourcePath())
}

// Ensure installs the helper wherever it is absent. Existing copies are
// left untouched.
func (in *Installer) Ensure() (Result, error) {
	log := in.Log
	if log == nil {
		log = zap.NewNop()
	}

	if in.ProjectDir == "" {
		return Result{}, pioenv.ErrProjectDirUndefined
	}

	data, fromEmbedded, err := in.loadSource()
	if err != nil {
		return Result{}, err
	}

	res := Result{Embedded: fromEmbedded}
	for _, dir := range in.ToolDirs {
		target := filepath.Join(dir, embedded.BuildHelperName)
		if _, err := os.Stat(target); err == nil {
			res.Present = append(res.Present, target)
			continue
		}

		if err := os.MkdirAll(dir, 0755); err != nil {
			return res, fmt.Errorf("failed to create %s: %w", dir, err)
		}
		if err := os.WriteFile(target, data, 0644); err != nil {
			return res, fmt.Errorf("failed to install build helper: %w", err)
		}
		log.Info("installed build helper", zap.String("path", target), zap.Bool("embedded", fromEmbedded))
		res.Installed = append(res.Installed, target)
	}

	if res.Placed() == 0 {
		return res, ErrNoToolDir
	}
	return res, nil
}
