package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"docfrag/config"
)

const acceptFragments = "text/html, application/xhtml+xml, application/xml;q=0.9, text/xml;q=0.9, text/plain;q=0.8, */*;q=0.1"

// HTTPFetcher retrieves fragments over http and https.
type HTTPFetcher struct {
	client *http.Client
	conf   config.FetchConfig
	log    *zap.Logger
}

func NewHTTPFetcher(conf *config.FetchConfig, log *zap.Logger) *HTTPFetcher {
	return &HTTPFetcher{
		client: &http.Client{Timeout: conf.Timeout},
		conf:   *conf,
		log:    log,
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, uri string) (*Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", acceptFragments)
	if len(f.conf.UserAgent) > 0 {
		req.Header.Set("User-Agent", f.conf.UserAgent)
	}
	for k, v := range f.conf.Headers {
		req.Header.Set(k, v)
	}
	if len(f.conf.AuthToken) > 0 {
		req.Header.Set("Authorization", authorization(f.conf.AuthToken.Value()))
	}

	f.log.Debug("Fetching fragment", zap.String("url", uri))

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{URL: uri, Code: resp.StatusCode}
	}

	data, err := readLimited(resp.Body, f.conf.MaxSize)
	if err != nil {
		return nil, fmt.Errorf("unable to read response from %s: %w", uri, err)
	}

	ct := resp.Header.Get("Content-Type")
	f.log.Debug("Fragment received", zap.String("url", uri), zap.String("content_type", ct), zap.Int("bytes", len(data)))

	return Parse(Source{Data: data, ContentType: ct, URL: resp.Request.URL})
}

// readLimited reads everything, max of 0 means no limit.
// authorization makes header value from token. Bare token is sent with Bearer
// scheme, value which already names its scheme goes as is.
func authorization(token string) string {
	if strings.ContainsAny(token, " \t") {
		return token
	}
	return "Bearer " + token
}

func readLimited(r io.Reader, max int64) ([]byte, error) {
	if max <= 0 {
		return io.ReadAll(r)
	}
	data, err := io.ReadAll(io.LimitReader(r, max+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > max {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, max)
	}
	return data, nil
}
