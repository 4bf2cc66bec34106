package include

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"golang.org/x/net/html"

	"docfrag/dom"
	"docfrag/fetch"
	"docfrag/page"
)

const testBase = "https://example.com/site/index.html"

var errTransport = errors.New("connection refused")

// testHost is page document with geometry under test control. Elements not
// in geo are laid out by the page itself.
type testHost struct {
	*page.Document
	geo map[*html.Node]dom.Rect
}

func (h *testHost) Geometry(n *html.Node) dom.Rect {
	if r, ok := h.geo[n]; ok {
		return r
	}
	return h.Document.Geometry(n)
}

// fragments answers fetches from a table and records every request.
type fragments struct {
	mu       sync.Mutex
	docs     map[string]*fetch.Document
	errs     map[string]error
	requests []string
}

func newFragments() *fragments {
	return &fragments{docs: make(map[string]*fetch.Document), errs: make(map[string]error)}
}

func (f *fragments) add(uri, markup string, stylesheets ...string) *fragments {
	f.docs[uri] = &fetch.Document{URL: uri, MediaType: "text/html", Markup: markup, Stylesheets: stylesheets}
	return f
}

func (f *fragments) fail(uri string, err error) *fragments {
	f.errs[uri] = err
	return f
}

func (f *fragments) Fetch(ctx context.Context, uri string) (*fetch.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.requests = append(f.requests, uri)
	if err, ok := f.errs[uri]; ok {
		return nil, err
	}
	if d, ok := f.docs[uri]; ok {
		return d, nil
	}
	return nil, &fetch.StatusError{URL: uri, Code: 404}
}

func (f *fragments) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

type fixture struct {
	host  *testHost
	sched *Scheduler
	loop  *Loop
}

func setup(t *testing.T, markup string, fetcher fetch.Fetcher, opts Options) *fixture {
	t.Helper()

	base, err := url.Parse(testBase)
	if err != nil {
		t.Fatal(err)
	}
	doc, err := page.Parse(strings.NewReader(markup), base, page.Options{
		Viewport:   dom.Size{Width: 1000, Height: 800},
		LineHeight: 20,
	})
	if err != nil {
		t.Fatalf("Failed to parse page: %v", err)
	}
	host := &testHost{Document: doc, geo: make(map[*html.Node]dom.Rect)}
	loop := NewLoop(context.Background(), 2)
	log := zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller()))
	sched := NewScheduler(host, fetcher, loop, opts, log)
	doc.Observe(sched)
	return &fixture{host: host, sched: sched, loop: loop}
}

func (fx *fixture) run(t *testing.T) {
	t.Helper()
	if err := fx.loop.Run(); err != nil {
		t.Fatalf("Loop run failed: %v", err)
	}
}

func (fx *fixture) find(selector string) *goquery.Selection {
	return goquery.NewDocumentFromNode(fx.host.Root()).Find(selector)
}

func (fx *fixture) node(t *testing.T, selector string) *html.Node {
	t.Helper()
	sel := fx.find(selector)
	if sel.Length() != 1 {
		t.Fatalf("Expected single %q element, found %d", selector, sel.Length())
	}
	return sel.Get(0)
}

func (fx *fixture) placeholder(t *testing.T, selector string) *Placeholder {
	t.Helper()
	p, ok := fx.sched.Placeholder(fx.node(t, selector))
	if !ok {
		t.Fatalf("Element %q is not known to scheduler", selector)
	}
	return p
}

// checkExclusive verifies element carries either live reference or source
// record, never both and never none.
func checkExclusive(t *testing.T, n *html.Node) {
	t.Helper()
	_, href := dom.Attr(n, dom.AttrHref)
	_, src := dom.Attr(n, dom.AttrSource)
	if href == src {
		t.Errorf("href present = %v, data-src present = %v, want exactly one", href, src)
	}
}

func childTags(n *html.Node) []string {
	var tags []string
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.ElementNode:
			tags = append(tags, c.Data)
		case html.TextNode:
			tags = append(tags, "#text")
		}
	}
	return tags
}
