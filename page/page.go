// Package page is headless host document for include engine. It keeps parsed
// HTML tree, lays it out in a simple block flow to answer geometry questions
// and tells observer about include-fragment elements coming and going.
package page

import (
	"bytes"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"

	"docfrag/dom"
)

type Options struct {
	Viewport   dom.Size
	LineHeight float64
	// CodePage forces page encoding, otherwise it is detected from BOM and
	// meta elements.
	CodePage encoding.Encoding
}

// Document implements dom.Host.
type Document struct {
	root     *html.Node
	base     *url.URL
	opts     Options
	observer dom.Observer

	scrollY float64
	boxes   map[*html.Node]dom.Rect
}

// Parse reads HTML page. base is page URL used to resolve references.
func Parse(r io.Reader, base *url.URL, opts Options) (*Document, error) {
	var err error
	if opts.CodePage != nil {
		r = opts.CodePage.NewDecoder().Reader(r)
	} else if r, err = charset.NewReader(r, "text/html"); err != nil {
		return nil, fmt.Errorf("unable to detect page encoding: %w", err)
	}
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("unable to parse page: %w", err)
	}
	if opts.LineHeight <= 0 {
		opts.LineHeight = 1
	}
	d := &Document{root: root, base: base, opts: opts}
	d.applyBaseElement()
	return d, nil
}

// applyBaseElement honours <base href> the same way browsers do.
func (d *Document) applyBaseElement() {
	href, ok := goquery.NewDocumentFromNode(d.root).Find("base[href]").First().Attr("href")
	if !ok {
		return
	}
	if d.base == nil {
		if u, err := url.Parse(href); err == nil {
			d.base = u
		}
		return
	}
	if u, err := d.base.Parse(href); err == nil {
		d.base = u
	}
}

func (d *Document) Root() *html.Node { return d.root }

// Observe sets observer. Placeholders already in the document are not
// reported until Connect is called.
func (d *Document) Observe(o dom.Observer) {
	d.observer = o
}

// Connect reports all include-fragment elements present in the document, in
// document order, as if page has just been built.
func (d *Document) Connect() {
	d.notifyConnected(d.root)
}

// ScrollTo sets vertical scroll position of the viewport.
func (d *Document) ScrollTo(y float64) {
	d.scrollY = y
}

func (d *Document) ScrollY() float64 { return d.scrollY }

// Height returns laid out height of the whole document.
func (d *Document) Height() float64 {
	d.layout()
	var h float64
	for _, b := range d.boxes {
		h = max(h, b.Bottom)
	}
	return h
}

// Render writes document as HTML.
func (d *Document) Render(w io.Writer) error {
	return html.Render(w, d.root)
}

func (d *Document) String() string {
	var buf bytes.Buffer
	if err := d.Render(&buf); err != nil {
		return ""
	}
	return buf.String()
}

func (d *Document) ResolveURL(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if d.base == nil {
		u, err := url.Parse(ref)
		if err != nil {
			return "", err
		}
		return u.String(), nil
	}
	u, err := d.base.Parse(ref)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

func (d *Document) Viewport() dom.Size {
	return d.opts.Viewport
}

func (d *Document) Geometry(n *html.Node) dom.Rect {
	d.layout()
	b, ok := d.boxes[n]
	if !ok {
		return dom.Rect{}
	}
	return dom.NewRect(b.Top-d.scrollY, b.Left, b.Width, b.Height)
}

func (d *Document) InsertBefore(ref, n *html.Node) {
	if ref.Parent == nil {
		return
	}
	ref.Parent.InsertBefore(n, ref)
	d.changed()
	if d.connected(n) {
		d.notifyConnected(n)
	}
}

func (d *Document) Clear(n *html.Node) {
	wasConnected := d.connected(n)
	var removed []*html.Node
	for c := n.FirstChild; c != nil; c = n.FirstChild {
		n.RemoveChild(c)
		removed = append(removed, c)
	}
	d.changed()
	if wasConnected {
		for _, c := range removed {
			d.notifyDisconnected(c)
		}
	}
}

func (d *Document) Append(parent, child *html.Node) {
	parent.AppendChild(child)
	d.changed()
	if d.connected(child) {
		d.notifyConnected(child)
	}
}

func (d *Document) AppendMarkup(parent *html.Node, markup string) error {
	nodes, err := html.ParseFragment(strings.NewReader(markup), parent)
	if err != nil {
		return err
	}
	for _, n := range nodes {
		parent.AppendChild(n)
	}
	d.changed()
	if d.connected(parent) {
		for _, n := range nodes {
			d.notifyConnected(n)
		}
	}
	return nil
}

func (d *Document) Remove(n *html.Node) {
	if n.Parent == nil {
		return
	}
	wasConnected := d.connected(n)
	n.Parent.RemoveChild(n)
	d.changed()
	if wasConnected {
		d.notifyDisconnected(n)
	}
}

// Unwrap moves children of n in front of it and removes n. Moved nodes stay
// connected, so only n itself is reported as disconnected.
func (d *Document) Unwrap(n *html.Node) {
	if n.Parent == nil {
		return
	}
	for c := n.FirstChild; c != nil; c = n.FirstChild {
		n.RemoveChild(c)
		n.Parent.InsertBefore(c, n)
	}
	d.Remove(n)
}

func (d *Document) connected(n *html.Node) bool {
	for ; n != nil; n = n.Parent {
		if n == d.root {
			return true
		}
	}
	return false
}

func (d *Document) changed() {
	d.boxes = nil
}

// placeholdersIn returns include-fragment elements of the subtree, n itself
// included, in document order.
func placeholdersIn(n *html.Node) []*html.Node {
	if n.Type != html.ElementNode && n.Type != html.DocumentNode {
		return nil
	}
	var found []*html.Node
	if dom.IsPlaceholder(n) {
		found = append(found, n)
	}
	goquery.NewDocumentFromNode(n).Find(dom.PlaceholderSelector).Each(func(_ int, s *goquery.Selection) {
		found = append(found, s.Nodes...)
	})
	return found
}

func (d *Document) notifyConnected(n *html.Node) {
	if d.observer == nil {
		return
	}
	for _, p := range placeholdersIn(n) {
		// observer may have changed the tree in the meantime
		if d.connected(p) {
			d.observer.Connected(p)
		}
	}
}

func (d *Document) notifyDisconnected(n *html.Node) {
	if d.observer == nil {
		return
	}
	for _, p := range placeholdersIn(n) {
		d.observer.Disconnected(p)
	}
}
