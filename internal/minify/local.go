package minify

import (
	"context"
	"fmt"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
	tdminify "github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/html"
)

// Local minifies without network access: esbuild for CSS and JavaScript,
// tdewolff/minify for HTML.
type Local struct {
	m *tdminify.M
}

// NewLocal creates a Local minifier.
func NewLocal() *Local {
	m := tdminify.New()
	m.Add("text/html", &html.Minifier{
		KeepDocumentTags: true,
		KeepEndTags:      true,
		KeepQuotes:       true,
	})
	return &Local{m: m}
}

// Minify implements Minifier.
func (l *Local) Minify(_ context.Context, kind Kind, src []byte) ([]byte, error) {
	switch kind {
	case HTML:
		out, err := l.m.Bytes("text/html", src)
		if err != nil {
			return nil, fmt.Errorf("minify html: %w", err)
		}
		return out, nil
	case CSS:
		return transform(src, api.LoaderCSS)
	case JS:
		return transform(src, api.LoaderJS)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedKind, kind)
}

func transform(src []byte, loader api.Loader) ([]byte, error) {
	result := api.Transform(string(src), api.TransformOptions{
		Loader:            loader,
		MinifyWhitespace:  true,
		MinifyIdentifiers: true,
		MinifySyntax:      true,
		Target:            api.ES2017,
	})
	if len(result.Errors) > 0 {
		msgs := make([]string, 0, len(result.Errors))
		for _, e := range result.Errors {
			if e.Location != nil {
				msgs = append(msgs, fmt.Sprintf("%d:%d: %s", e.Location.Line, e.Location.Column, e.Text))
			} else {
				msgs = append(msgs, e.Text)
			}
		}
		return nil, fmt.Errorf("esbuild: %s", strings.Join(msgs, "; "))
	}
	return result.Code, nil
}
