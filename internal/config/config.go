// Package config loads ghost-prebuild.toml.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/ghost-toolbox/ghost-prebuild/internal/patch"
)

// FileName is looked up in the project directory when no path is given.
const FileName = "ghost-prebuild.toml"

// Minifier names accepted in [web].
const (
	MinifierRemote = "remote"
	MinifierLocal  = "local"
	MinifierNone   = "none"
)

// Config holds every pre-build setting.
type Config struct {
	Patch  PatchConfig
	Web    WebConfig
	Helper HelperConfig
}

// PatchConfig controls the WiFi library patch.
type PatchConfig struct {
	Enabled  bool
	MCU      string
	Library  string
	Symbols  []string
	FlagFile string
	Objcopy  string
}

// WebConfig controls the web asset header.
type WebConfig struct {
	Enabled       bool
	SourceDir     string
	Header        string
	ChecksumFile  string
	Extensions    []string
	Minifier      string
	RemoteTimeout time.Duration
	Guard         string
	BytesPerLine  int
	Jobs          int
}

// HelperConfig controls placement of pioarduino-build.py.
type HelperConfig struct {
	Enabled          bool
	Source           string
	EmbeddedFallback bool
}

// Default returns the settings the firmware build uses out of the box.
func Default() Config {
	return Config{
		Patch: PatchConfig{
			Enabled:  true,
			Library:  "libnet80211.a",
			Symbols:  []string{"s", "ieee80211_raw_frame_sanity_check"},
			FlagFile: ".patched",
		},
		Web: WebConfig{
			Enabled:       true,
			SourceDir:     "embedded_resources/web_interface",
			Header:        "include/webFiles.h",
			ChecksumFile:  "checksum.sha256",
			Extensions:    []string{"html", "css", "js"},
			Minifier:      MinifierRemote,
			RemoteTimeout: 30 * time.Second,
			Guard:         "WEB_FILES_H",
			BytesPerLine:  15,
			Jobs:          4,
		},
		Helper: HelperConfig{
			Enabled: true,
			Source:  "tools/pioarduino-build.py",
		},
	}
}

type fileConfig struct {
	Patch struct {
		Enabled  bool     `toml:"enabled"`
		MCU      string   `toml:"mcu"`
		Library  string   `toml:"library"`
		Symbols  []string `toml:"symbols"`
		FlagFile string   `toml:"flag_file"`
		Objcopy  string   `toml:"objcopy"`
	} `toml:"patch"`
	Web struct {
		Enabled       bool     `toml:"enabled"`
		SourceDir     string   `toml:"source_dir"`
		Header        string   `toml:"header"`
		ChecksumFile  string   `toml:"checksum_file"`
		Extensions    []string `toml:"extensions"`
		Minifier      string   `toml:"minifier"`
		RemoteTimeout string   `toml:"remote_timeout"`
		Guard         string   `toml:"guard"`
		BytesPerLine  int      `toml:"bytes_per_line"`
		Jobs          int      `toml:"jobs"`
	} `toml:"web"`
	Helper struct {
		Enabled          bool   `toml:"enabled"`
		Source           string `toml:"source"`
		EmbeddedFallback bool   `toml:"embedded_fallback"`
	} `toml:"helper"`
}

// Load reads path over the defaults. A missing file returns Default().
func Load(path string) (Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}

	if meta.IsDefined("patch", "enabled") {
		cfg.Patch.Enabled = raw.Patch.Enabled
	}
	if meta.IsDefined("patch", "mcu") {
		cfg.Patch.MCU = strings.TrimSpace(raw.Patch.MCU)
	}
	if meta.IsDefined("patch", "library") {
		cfg.Patch.Library = strings.TrimSpace(raw.Patch.Library)
	}
	if meta.IsDefined("patch", "symbols") {
		cfg.Patch.Symbols = normalizeList(raw.Patch.Symbols)
	}
	if meta.IsDefined("patch", "flag_file") {
		cfg.Patch.FlagFile = strings.TrimSpace(raw.Patch.FlagFile)
	}
	if meta.IsDefined("patch", "objcopy") {
		cfg.Patch.Objcopy = strings.TrimSpace(raw.Patch.Objcopy)
	}

	if meta.IsDefined("web", "enabled") {
		cfg.Web.Enabled = raw.Web.Enabled
	}
	if meta.IsDefined("web", "source_dir") {
		cfg.Web.SourceDir = strings.TrimSpace(raw.Web.SourceDir)
	}
	if meta.IsDefined("web", "header") {
		cfg.Web.Header = strings.TrimSpace(raw.Web.Header)
	}
	if meta.IsDefined("web", "checksum_file") {
		cfg.Web.ChecksumFile = strings.TrimSpace(raw.Web.ChecksumFile)
	}
	if meta.IsDefined("web", "extensions") {
		exts := normalizeList(raw.Web.Extensions)
		for i, e := range exts {
			exts[i] = strings.ToLower(strings.TrimPrefix(e, "."))
		}
		cfg.Web.Extensions = exts
	}
	if meta.IsDefined("web", "minifier") {
		cfg.Web.Minifier = strings.ToLower(strings.TrimSpace(raw.Web.Minifier))
	}
	if meta.IsDefined("web", "remote_timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.Web.RemoteTimeout))
		if err != nil {
			return Config{}, fmt.Errorf("parse remote_timeout: %w", err)
		}
		cfg.Web.RemoteTimeout = d
	}
	if meta.IsDefined("web", "guard") {
		cfg.Web.Guard = strings.TrimSpace(raw.Web.Guard)
	}
	if meta.IsDefined("web", "bytes_per_line") {
		cfg.Web.BytesPerLine = raw.Web.BytesPerLine
	}
	if meta.IsDefined("web", "jobs") {
		cfg.Web.Jobs = raw.Web.Jobs
	}

	if meta.IsDefined("helper", "enabled") {
		cfg.Helper.Enabled = raw.Helper.Enabled
	}
	if meta.IsDefined("helper", "source") {
		cfg.Helper.Source = strings.TrimSpace(raw.Helper.Source)
	}
	if meta.IsDefined("helper", "embedded_fallback") {
		cfg.Helper.EmbeddedFallback = raw.Helper.EmbeddedFallback
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values that cannot be repaired with a default.
func (c Config) Validate() error {
	switch c.Web.Minifier {
	case MinifierRemote, MinifierLocal, MinifierNone:
	default:
		return fmt.Errorf("invalid minifier %q (want remote, local or none)", c.Web.Minifier)
	}
	if c.Web.BytesPerLine <= 0 {
		return fmt.Errorf("bytes_per_line must be positive, got %d", c.Web.BytesPerLine)
	}
	if c.Web.RemoteTimeout <= 0 {
		return fmt.Errorf("remote_timeout must be positive, got %s", c.Web.RemoteTimeout)
	}
	if c.Web.Jobs <= 0 {
		return fmt.Errorf("jobs must be positive, got %d", c.Web.Jobs)
	}
	if c.Patch.Enabled && len(c.Patch.Symbols) == 0 {
		return errors.New("patch.symbols must not be empty")
	}
	if c.Patch.Enabled && !patch.ValidFileName(c.Patch.Library) {
		return fmt.Errorf("patch.library must be a plain file name, got %q", c.Patch.Library)
	}
	if c.Patch.Enabled && !patch.ValidFileName(c.Patch.FlagFile) {
		return fmt.Errorf("patch.flag_file must be a plain file name, got %q", c.Patch.FlagFile)
	}
	if c.Patch.Enabled && c.Patch.FlagFile == c.Patch.Library {
		return errors.New("patch.flag_file must differ from patch.library")
	}
	if c.Web.Enabled && len(c.Web.Extensions) == 0 {
		return errors.New("web.extensions must not be empty")
	}
	return nil
}

func normalizeList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
