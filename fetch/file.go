package fetch

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/encoding"

	"docfrag/config"
)

// FileFetcher retrieves fragments from local file system using file: URLs.
type FileFetcher struct {
	// when not empty only files under root could be read
	root     string
	maxSize  int64
	codePage encoding.Encoding
	log      *zap.Logger
}

// NewFileFetcher creates fetcher for file: URLs. Non empty root restricts
// access to files under it, cp forces text encoding of files.
func NewFileFetcher(conf *config.FetchConfig, root string, cp encoding.Encoding, log *zap.Logger) (*FileFetcher, error) {
	f := &FileFetcher{maxSize: conf.MaxSize, codePage: cp, log: log}
	if len(root) > 0 {
		abs, err := filepath.Abs(root)
		if err != nil {
			return nil, fmt.Errorf("unable to resolve root directory: %w", err)
		}
		f.root = abs
	}
	return f, nil
}

func (f *FileFetcher) Fetch(ctx context.Context, uri string) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	u, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("unable to parse URL: %w", err)
	}
	name := PathFromURL(u)
	if !f.allowed(name) {
		return nil, fmt.Errorf("%w: %s", ErrForbidden, name)
	}

	fi, err := os.Stat(name)
	if err != nil {
		return nil, err
	}
	if !fi.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %s is not a regular file", ErrUnrecognized, name)
	}
	if f.maxSize > 0 && fi.Size() > f.maxSize {
		return nil, fmt.Errorf("%w: %s has %d bytes", ErrTooLarge, name, fi.Size())
	}

	data, err := os.ReadFile(name)
	if err != nil {
		return nil, err
	}
	f.log.Debug("Fragment read", zap.String("file", name), zap.Int("bytes", len(data)))

	src := Source{Data: data, URL: u, CodePage: f.codePage}
	if mt := mediaTypeByName(name); len(mt) > 0 {
		src.ContentType = mt
	}
	return Parse(src)
}

func (f *FileFetcher) allowed(name string) bool {
	if len(f.root) == 0 {
		return true
	}
	rel, err := filepath.Rel(f.root, name)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && !filepath.IsAbs(rel)
}

// FileURL converts local path to file: URL.
func FileURL(name string) (*url.URL, error) {
	abs, err := filepath.Abs(name)
	if err != nil {
		return nil, err
	}
	p := filepath.ToSlash(abs)
	if !strings.HasPrefix(p, "/") {
		// windows drive letter
		p = "/" + p
	}
	return &url.URL{Scheme: "file", Path: p}, nil
}

// PathFromURL converts file: URL back to local path.
func PathFromURL(u *url.URL) string {
	p := u.Path
	if runtime.GOOS == "windows" && len(p) > 2 && p[0] == '/' && p[2] == ':' {
		p = p[1:]
	}
	return filepath.Clean(filepath.FromSlash(p))
}
