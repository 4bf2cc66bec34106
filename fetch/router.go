package fetch

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/encoding"

	"docfrag/config"
)

// New prepares router with all fetchers configuration allows. Non empty root
// limits file access, see NewFileFetcher.
func New(conf *config.FetchConfig, root string, cp encoding.Encoding, log *zap.Logger) (*Router, error) {
	hf := NewHTTPFetcher(conf, log.Named("http"))
	r := NewRouter().Handle("http", hf).Handle("https", hf)
	if conf.AllowFile {
		ff, err := NewFileFetcher(conf, root, cp, log.Named("file"))
		if err != nil {
			return nil, err
		}
		r.Handle("file", ff)
	}
	return r, nil
}

// Router dispatches requests to fetchers by URL scheme.
type Router struct {
	fetchers map[string]Fetcher
}

func NewRouter() *Router {
	return &Router{fetchers: make(map[string]Fetcher)}
}

// Handle registers fetcher for scheme, replacing previous one.
func (r *Router) Handle(scheme string, f Fetcher) *Router {
	r.fetchers[strings.ToLower(scheme)] = f
	return r
}

func (r *Router) Fetch(ctx context.Context, uri string) (*Document, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("unable to parse URL: %w", err)
	}
	f, ok := r.fetchers[strings.ToLower(u.Scheme)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}
	return f.Fetch(ctx, uri)
}
