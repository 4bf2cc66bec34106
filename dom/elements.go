package dom

import (
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Element markers and attributes used by include machinery.
const (
	AttrIs      = "is"
	AttrHref    = "href"
	AttrLoading = "loading"
	AttrSource  = "data-src"
	AttrRole    = "role"
	AttrData    = "data"

	PlaceholderIs = "include-fragment"
	LoaderIs      = "doc-fragment"

	RoleNone = "none"

	// PlaceholderSelector matches include-fragment elements.
	PlaceholderSelector = `a[is="include-fragment"]`
)

func Attr(n *html.Node, key string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func SetAttr(n *html.Node, key, val string) {
	for i := range n.Attr {
		if n.Attr[i].Namespace == "" && n.Attr[i].Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func RemoveAttr(n *html.Node, key string) {
	attrs := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			continue
		}
		attrs = append(attrs, a)
	}
	n.Attr = attrs
}

// IsPlaceholder reports whether n is <a is="include-fragment">.
func IsPlaceholder(n *html.Node) bool {
	if n == nil || n.Type != html.ElementNode || n.DataAtom != atom.A {
		return false
	}
	is, _ := Attr(n, AttrIs)
	return is == PlaceholderIs
}

// IsLoader reports whether n is <object is="doc-fragment">.
func IsLoader(n *html.Node) bool {
	if n == nil || n.Type != html.ElementNode || n.DataAtom != atom.Object {
		return false
	}
	is, _ := Attr(n, AttrIs)
	return is == LoaderIs
}

// NewLoaderElement creates detached <object is="doc-fragment" data="src">.
func NewLoaderElement(src string) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Object,
		Data:     atom.Object.String(),
		Attr: []html.Attribute{
			{Key: AttrIs, Val: LoaderIs},
			{Key: AttrData, Val: src},
		},
	}
}

// NewStylesheetLink creates detached <link rel="stylesheet" href="href">.
func NewStylesheetLink(href string) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Link,
		Data:     atom.Link.String(),
		Attr: []html.Attribute{
			{Key: "rel", Val: "stylesheet"},
			{Key: AttrHref, Val: href},
		},
	}
}
