// Package source locates configuration files by probing extension candidates.
package source

import (
	"context"
	"errors"
	"path/filepath"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"vuetifyconf-cli/internal/ast"
)

// ErrNotFound means no extension candidate exists for a base path. It is the
// normal "nothing configured here" case, not a failure.
var ErrNotFound = errors.New("no configuration file found")

// Extensions lists the probed extensions in priority order.
var Extensions = []string{"mts", "ts", "mjs", "js"}

// File is a located configuration source.
type File struct {
	Path    string
	Content []byte
	Dialect ast.Dialect
}

// Reader resolves logical configuration names against a file system.
type Reader struct {
	fs afero.Fs
}

// NewReader creates a reader over fs. A nil fs uses the OS file system.
func NewReader(fs afero.Fs) *Reader {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Reader{fs: fs}
}

// Fs returns the underlying file system.
func (r *Reader) Fs() afero.Fs {
	return r.fs
}

// Candidates returns base with every probed extension appended.
func Candidates(base string) []string {
	paths := make([]string, len(Extensions))
	for i, ext := range Extensions {
		paths[i] = base + "." + ext
	}
	return paths
}

// DialectOf returns the dialect implied by a file extension.
func DialectOf(path string) ast.Dialect {
	switch filepath.Ext(path) {
	case ".mts", ".ts", ".cts":
		return ast.DialectTS
	default:
		return ast.DialectJS
	}
}

// Locate returns the first readable candidate of base, which must not carry
// an extension. ErrNotFound is returned when none exists; a candidate that
// cannot be read counts as absent.
func (r *Reader) Locate(base string) (File, error) {
	for _, path := range r.Existing(base) {
		content, err := afero.ReadFile(r.fs, path)
		if err != nil {
			continue
		}
		return File{Path: path, Content: content, Dialect: DialectOf(path)}, nil
	}
	return File{}, ErrNotFound
}

// Existing returns every candidate of base that exists, in priority order.
func (r *Reader) Existing(base string) []string {
	var found []string
	for _, path := range Candidates(base) {
		if info, err := r.fs.Stat(path); err == nil && !info.IsDir() {
			found = append(found, filepath.Clean(path))
		}
	}
	return found
}

// Probe checks several base paths concurrently and returns, for each one,
// the path Locate would read or "" when absent. Probing only stats files;
// nothing is read.
func (r *Reader) Probe(ctx context.Context, bases []string) ([]string, error) {
	found := make([]string, len(bases))
	g, ctx := errgroup.WithContext(ctx)
	for i, base := range bases {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if paths := r.Existing(base); len(paths) > 0 {
				found[i] = paths[0]
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return found, nil
}
