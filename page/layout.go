package page

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"docfrag/dom"
)

// Elements which start a new row in the flow.
var blockElements = map[atom.Atom]bool{
	atom.Address: true, atom.Article: true, atom.Aside: true, atom.Blockquote: true,
	atom.Dd: true, atom.Details: true, atom.Dialog: true, atom.Div: true, atom.Dl: true,
	atom.Dt: true, atom.Fieldset: true, atom.Figcaption: true, atom.Figure: true,
	atom.Footer: true, atom.Form: true, atom.H1: true, atom.H2: true, atom.H3: true,
	atom.H4: true, atom.H5: true, atom.H6: true, atom.Header: true, atom.Hgroup: true,
	atom.Hr: true, atom.Li: true, atom.Main: true, atom.Nav: true, atom.Ol: true,
	atom.P: true, atom.Pre: true, atom.Section: true, atom.Table: true, atom.Tr: true,
	atom.Ul: true, atom.Img: true, atom.Video: true, atom.Iframe: true, atom.Object: true,
	atom.Summary: true,
}

// Elements which take no space.
var hiddenElements = map[atom.Atom]bool{
	atom.Head: true, atom.Script: true, atom.Style: true, atom.Template: true,
	atom.Noscript: true, atom.Title: true, atom.Meta: true, atom.Link: true, atom.Base: true,
}

// layout places every block element and every placeholder into a single
// column, one line high unless children take more room. Pre counts its text
// lines. Result is cached until the tree changes.
func (d *Document) layout() {
	if d.boxes != nil {
		return
	}
	d.boxes = make(map[*html.Node]dom.Rect)

	lh := d.opts.LineHeight
	width := d.opts.Viewport.Width

	var (
		y    float64
		walk func(n *html.Node)
	)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && hiddenElements[n.DataAtom] {
			return
		}
		box := n.Type == html.ElementNode && (blockElements[n.DataAtom] || dom.IsPlaceholder(n))
		if dom.IsLoader(n) {
			// loader has no presentation
			box = false
		}
		start := y
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if !box {
			return
		}
		if y == start {
			y += lh * float64(lines(n))
		}
		d.boxes[n] = dom.NewRect(start, 0, width, y-start)
	}
	walk(d.root)
}

func lines(n *html.Node) int {
	if n.DataAtom != atom.Pre {
		return 1
	}
	var text strings.Builder
	for c := range n.Descendants() {
		if c.Type == html.TextNode {
			text.WriteString(c.Data)
		}
	}
	return max(1, strings.Count(strings.TrimSuffix(text.String(), "\n"), "\n")+1)
}
