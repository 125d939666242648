package minify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultBaseURL hosts the Toptal minifier APIs.
const DefaultBaseURL = "https://www.toptal.com/developers"

var remotePaths = map[Kind]string{
	HTML: "/html-minifier/api/raw",
	CSS:  "/cssminifier/api/raw",
	JS:   "/javascript-minifier/api/raw",
}

// maxResponse caps a minifier response body.
const maxResponse = 16 << 20

// Remote posts assets to a minification web API. Any failure other than
// cancellation returns the input unchanged.
type Remote struct {
	BaseURL string
	Client  *http.Client
	Log     *zap.Logger
}

// NewRemote creates a Remote minifier. An empty baseURL uses DefaultBaseURL.
func NewRemote(baseURL string, timeout time.Duration, log *zap.Logger) *Remote {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Remote{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: timeout},
		Log:     log,
	}
}

// Minify implements Minifier.
func (r *Remote) Minify(ctx context.Context, kind Kind, src []byte) ([]byte, error) {
	path, ok := remotePaths[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedKind, kind)
	}

	out, err := r.post(ctx, r.BaseURL+path, src)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		r.Log.Warn("remote minify failed, embedding unminified source",
			zap.String("kind", string(kind)), zap.Error(err))
		return src, nil
	}
	return out, nil
}

func (r *Remote) post(ctx context.Context, endpoint string, src []byte) ([]byte, error) {
	form := url.Values{"input": {string(src)}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := r.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponse))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%s: status %d", endpoint, resp.StatusCode)
	}
	if len(body) == 0 && len(src) != 0 {
		return nil, fmt.Errorf("%s: empty response", endpoint)
	}
	return body, nil
}
