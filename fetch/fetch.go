// Package fetch retrieves documents referenced by include-fragment
// placeholders and turns them into structured fragments ready for splicing.
package fetch

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrUnrecognized means resource was retrieved but it is not something
	// which could be used as document fragment.
	ErrUnrecognized      = errors.New("not a document fragment")
	ErrUnsupportedScheme = errors.New("unsupported URL scheme")
	ErrTooLarge          = errors.New("resource is too large")
	ErrForbidden         = errors.New("access to resource is not allowed")
)

// StatusError is returned for HTTP responses outside of 2xx range.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d for %s", e.Code, e.URL)
}

// Document is successfully parsed fragment.
type Document struct {
	// URL document was finally retrieved from, after redirects.
	URL       string
	MediaType string
	// Stylesheets are absolute stylesheet references in document order.
	Stylesheets []string
	// Markup is serialized document content: body of HTML document, root
	// element of XML one, preformatted block for plain text.
	Markup string
}

// Fetcher retrieves resource and parses it as structured document. Any error
// means there is no fragment to splice. Fetch may be called from multiple
// goroutines.
type Fetcher interface {
	Fetch(ctx context.Context, uri string) (*Document, error)
}

// FetcherFunc adapts ordinary function to Fetcher.
type FetcherFunc func(ctx context.Context, uri string) (*Document, error)

func (f FetcherFunc) Fetch(ctx context.Context, uri string) (*Document, error) {
	return f(ctx, uri)
}
