// Package webasset embeds the web interface into a C header, regenerating it
// only when the sources change.
package webasset

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ghost-toolbox/ghost-prebuild/internal/cheader"
	"github.com/ghost-toolbox/ghost-prebuild/internal/checksum"
	"github.com/ghost-toolbox/ghost-prebuild/internal/minify"
)

var ErrSourceMissing = errors.New("source directory does not exist")

// ProgressCallback is called after each asset is compressed.
type ProgressCallback func(done, total int)

// Embedder turns a directory of HTML/CSS/JS into a header of gzip arrays.
type Embedder struct {
	SourceDir    string
	HeaderPath   string
	ChecksumPath string
	Extensions   []string
	Guard        string
	BytesPerLine int
	Jobs         int
	// Notice names the source directory inside the generated header.
	Notice   string
	Minifier minify.Minifier
	Log      *zap.Logger

	progress ProgressCallback
}

// Result describes the outcome of Build.
type Result struct {
	UpToDate bool
	Files    []string
	Checksum string
	Header   string
	// Bytes is the total compressed size embedded in the header.
	Bytes int
}

// SetProgressCallback sets the progress callback function.
func (e *Embedder) SetProgressCallback(cb ProgressCallback) {
	e.progress = cb
}

func (e *Embedder) logger() *zap.Logger {
	if e.Log == nil {
		return zap.NewNop()
	}
	return e.Log
}

// Collect returns the source files grouped by extension in configured order,
// sorted by name within each extension. Hidden files are skipped.
func (e *Embedder) Collect() ([]string, error) {
	info, err := os.Stat(e.SourceDir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrSourceMissing, e.SourceDir)
	}

	entries, err := os.ReadDir(e.SourceDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", e.SourceDir, err)
	}

	var files []string
	for _, ext := range e.Extensions {
		suffix := "." + strings.ToLower(ext)
		var group []string
		for _, entry := range entries {
			if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
				continue
			}
			if strings.ToLower(filepath.Ext(entry.Name())) == suffix {
				group = append(group, filepath.Join(e.SourceDir, entry.Name()))
			}
		}
		sort.Strings(group)
		files = append(files, group...)
	}
	return files, nil
}

// Stale reports whether the header must be regenerated, along with the
// collected files and their combined checksum.
func (e *Embedder) Stale() (bool, []string, string, error) {
	files, err := e.Collect()
	if err != nil {
		return false, nil, "", err
	}

	sum, err := checksum.HashFiles(files)
	if err != nil {
		return false, nil, "", err
	}

	stored, err := checksum.Load(e.ChecksumPath)
	if err != nil {
		return false, nil, "", err
	}

	if sum != stored {
		return true, files, sum, nil
	}
	if _, err := os.Stat(e.HeaderPath); err != nil {
		return true, files, sum, nil
	}
	return false, files, sum, nil
}

// Build regenerates the header when the sources changed or force is set.
func (e *Embedder) Build(ctx context.Context, force bool) (Result, error) {
	log := e.logger()

	stale, files, sum, err := e.Stale()
	if err != nil {
		return Result{}, err
	}

	res := Result{Files: files, Checksum: sum, Header: e.HeaderPath}
	if !stale && !force {
		log.Info("web assets up to date, nothing to process", zap.String("header", e.HeaderPath))
		res.UpToDate = true
		return res, nil
	}

	log.Info("embedding web assets", zap.Int("files", len(files)), zap.String("source", e.SourceDir))

	blobs, err := e.compressAll(ctx, files)
	if err != nil {
		return Result{}, err
	}

	if err := e.writeHeader(files, blobs); err != nil {
		return Result{}, err
	}

	for _, b := range blobs {
		res.Bytes += len(b)
	}

	if err := checksum.Save(e.ChecksumPath, sum); err != nil {
		return Result{}, err
	}

	log.Info("web assets embedded", zap.String("header", e.HeaderPath), zap.Int("bytes", res.Bytes))
	return res, nil
}

// compressAll minifies and gzips files concurrently, preserving order.
func (e *Embedder) compressAll(ctx context.Context, files []string) ([][]byte, error) {
	minifier := e.Minifier
	if minifier == nil {
		minifier = minify.Passthrough{}
	}

	jobs := e.Jobs
	if jobs <= 0 {
		jobs = 1
	}

	blobs := make([][]byte, len(files))

	var (
		mu    sync.Mutex
		count int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)

	for i, path := range files {
		g.Go(func() error {
			out, err := compressFile(gctx, minifier, path)
			if err != nil {
				return err
			}
			blobs[i] = out

			mu.Lock()
			count++
			if e.progress != nil {
				e.progress(count, len(files))
			}
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return blobs, nil
}

func compressFile(ctx context.Context, m minify.Minifier, path string) ([]byte, error) {
	kind, err := minify.KindOf(path)
	if err != nil {
		return nil, err
	}

	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	minified, err := m.Minify(ctx, kind, src)
	if err != nil {
		return nil, fmt.Errorf("failed to minify %s: %w", filepath.Base(path), err)
	}

	return Gzip(minified)
}

// Gzip compresses data with a zeroed header so identical input yields
// identical output.
func Gzip(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
	if err != nil {
		return nil, err
	}
	if _, err := zw.Write(data); err != nil {
		return nil, fmt.Errorf("gzip: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("gzip: %w", err)
	}
	return buf.Bytes(), nil
}

// writeHeader writes to a temporary file and renames it into place.
func (e *Embedder) writeHeader(files []string, blobs [][]byte) error {
	dir := filepath.Dir(e.HeaderPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create header directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".webFiles-*.h")
	if err != nil {
		return fmt.Errorf("failed to create temporary header: %w", err)
	}
	defer os.Remove(tmp.Name())

	notice := e.Notice
	if notice == "" {
		notice = e.SourceDir
	}

	hw := cheader.NewWriter(tmp, e.Guard, e.BytesPerLine)
	if err := hw.Begin(notice); err != nil {
		tmp.Close()
		return err
	}
	for i, path := range files {
		if err := hw.Array(cheader.VarName(path), blobs[i]); err != nil {
			tmp.Close()
			return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
		}
	}
	if err := hw.End(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), e.HeaderPath); err != nil {
		return fmt.Errorf("failed to install header: %w", err)
	}
	return nil
}
