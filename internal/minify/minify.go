// Package minify shrinks HTML, CSS and JavaScript before they are embedded.
package minify

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Kind is an asset type.
type Kind string

const (
	HTML Kind = "html"
	CSS  Kind = "css"
	JS   Kind = "js"
)

var ErrUnsupportedKind = errors.New("unsupported file type")

// KindOf derives the asset kind from a file name.
func KindOf(name string) (Kind, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	switch Kind(ext) {
	case HTML, CSS, JS:
		return Kind(ext), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedKind, ext)
}

// Minifier returns a minified copy of src.
type Minifier interface {
	Minify(ctx context.Context, kind Kind, src []byte) ([]byte, error)
}

// Passthrough leaves assets untouched.
type Passthrough struct{}

// Minify returns src unchanged.
func (Passthrough) Minify(_ context.Context, _ Kind, src []byte) ([]byte, error) {
	return src, nil
}

// Options configure New.
type Options struct {
	Timeout time.Duration
	BaseURL string
	Log     *zap.Logger
}

// New returns the minifier registered under name: remote, local or none.
func New(name string, opts Options) (Minifier, error) {
	switch name {
	case "remote":
		return NewRemote(opts.BaseURL, opts.Timeout, opts.Log), nil
	case "local":
		return NewLocal(), nil
	case "none", "":
		return Passthrough{}, nil
	}
	return nil, fmt.Errorf("unknown minifier %q", name)
}
