// Package pioenv resolves the PlatformIO directories a pre-build step needs.
package pioenv

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// FrameworkPackage is the Arduino core package name.
const FrameworkPackage = "framework-arduinoespressif32"

// DefaultMCU is used when neither flags nor config name one.
const DefaultMCU = "esp32"

var ErrProjectDirUndefined = errors.New("PROJECT_DIR is undefined")

// Environment variable names honoured by Resolve.
const (
	EnvProjectDir  = "PROJECT_DIR"
	EnvCoreDir     = "PLATFORMIO_CORE_DIR"
	EnvPackagesDir = "PLATFORMIO_PACKAGES_DIR"
)

// Options carries explicit overrides, usually from command-line flags.
type Options struct {
	ProjectDir   string
	CoreDir      string
	PackagesDir  string
	FrameworkDir string
	MCU          string

	// Getenv defaults to os.Getenv.
	Getenv func(string) string
	// HomeDir defaults to os.UserHomeDir.
	HomeDir func() (string, error)
	// WorkDir defaults to os.Getwd.
	WorkDir func() (string, error)
}

// Env is a resolved PlatformIO environment.
type Env struct {
	ProjectDir   string
	CoreDir      string
	PackagesDir  string
	FrameworkDir string
	MCU          string
}

// clean drops values PlatformIO left unexpanded.
func clean(v string) string {
	v = strings.TrimSpace(v)
	if v == "" || strings.Contains(v, "$") {
		return ""
	}
	return v
}

func first(values ...string) string {
	for _, v := range values {
		if v = clean(v); v != "" {
			return v
		}
	}
	return ""
}

// Resolve fills in every directory from opts, the environment and defaults.
func Resolve(opts Options) (Env, error) {
	getenv := opts.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	home := opts.HomeDir
	if home == nil {
		home = os.UserHomeDir
	}
	wd := opts.WorkDir
	if wd == nil {
		wd = os.Getwd
	}

	env := Env{MCU: first(opts.MCU, DefaultMCU)}

	env.ProjectDir = first(opts.ProjectDir, getenv(EnvProjectDir))
	if env.ProjectDir == "" {
		dir, err := wd()
		if err != nil || clean(dir) == "" {
			return Env{}, ErrProjectDirUndefined
		}
		env.ProjectDir = dir
	}

	env.CoreDir = first(opts.CoreDir, getenv(EnvCoreDir))
	if env.CoreDir == "" {
		if h, err := home(); err == nil && h != "" {
			env.CoreDir = filepath.Join(h, ".platformio")
		}
	}

	env.PackagesDir = first(opts.PackagesDir, getenv(EnvPackagesDir))
	if env.PackagesDir == "" && env.CoreDir != "" {
		env.PackagesDir = filepath.Join(env.CoreDir, "packages")
	}

	env.FrameworkDir = first(opts.FrameworkDir)
	if env.FrameworkDir == "" && env.PackagesDir != "" {
		env.FrameworkDir = filepath.Join(env.PackagesDir, FrameworkPackage)
	}

	return env, nil
}

// ToolDirs returns the candidate framework tools directories, de-duplicated
// and in lookup order.
func (e Env) ToolDirs() []string {
	var candidates []string
	if e.FrameworkDir != "" {
		candidates = append(candidates, filepath.Join(e.FrameworkDir, "tools"))
	}
	if e.CoreDir != "" {
		candidates = append(candidates, filepath.Join(e.CoreDir, "packages", FrameworkPackage, "tools"))
	}
	if e.PackagesDir != "" {
		candidates = append(candidates, filepath.Join(e.PackagesDir, FrameworkPackage, "tools"))
	}

	seen := make(map[string]bool, len(candidates))
	dirs := candidates[:0]
	for _, d := range candidates {
		d = filepath.Clean(d)
		if seen[d] {
			continue
		}
		seen[d] = true
		dirs = append(dirs, d)
	}
	return dirs
}

// SDKLibDir returns the prebuilt ESP-IDF library directory for the MCU.
func (e Env) SDKLibDir() string {
	return filepath.Join(e.FrameworkDir, "tools", "sdk", e.MCU, "lib")
}

// ProjectPath joins rel onto the project directory unless it is absolute.
func (e Env) ProjectPath(rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(e.ProjectDir, rel)
}
