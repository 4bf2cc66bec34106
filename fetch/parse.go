package fetch

import (
	"bytes"
	"fmt"
	"io"
	"net/url"
	"regexp"
	"strings"

	"github.com/beevik/etree"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
)

// Source describes retrieved resource before parsing.
type Source struct {
	Data []byte
	// ContentType is full Content-Type value, may carry charset parameter.
	// When empty content type is sniffed from data.
	ContentType string
	URL         *url.URL
	// CodePage forces text decoding, used for files without any encoding
	// information.
	CodePage encoding.Encoding
}

// Parse classifies source and parses it into Document. Sources which are not
// markup or plain text result in ErrUnrecognized.
func Parse(src Source) (*Document, error) {
	ct := src.ContentType
	if len(ct) == 0 {
		ct = sniff(src.Data)
	}
	mt := mediaTypeOf(ct)

	doc := &Document{MediaType: mt}
	if src.URL != nil {
		doc.URL = src.URL.String()
	}

	var err error
	switch classify(mt) {
	case classHTML:
		err = parseHTML(doc, src, ct)
	case classXML:
		err = parseXML(doc, src)
	case classText:
		err = parseText(doc, src, ct)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnrecognized, mt)
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func decodedReader(src Source, contentType string) (io.Reader, error) {
	if src.CodePage != nil {
		return src.CodePage.NewDecoder().Reader(bytes.NewReader(src.Data)), nil
	}
	return charset.NewReader(bytes.NewReader(src.Data), contentType)
}

func parseHTML(doc *Document, src Source, contentType string) error {
	r, err := decodedReader(src, contentType)
	if err != nil {
		return fmt.Errorf("unable to detect encoding: %w", err)
	}
	root, err := html.Parse(r)
	if err != nil {
		return fmt.Errorf("unable to parse html: %w", err)
	}

	var documentElement *html.Node
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			documentElement = c
			break
		}
	}
	if documentElement == nil {
		return fmt.Errorf("%w: html without document element", ErrUnrecognized)
	}

	var links []*html.Node
	for n := range documentElement.Descendants() {
		if n.Type != html.ElementNode || n.DataAtom != atom.Link {
			continue
		}
		var rel, href string
		for _, a := range n.Attr {
			switch a.Key {
			case "rel":
				rel = a.Val
			case "href":
				href = a.Val
			}
		}
		if len(href) > 0 && hasToken(rel, "stylesheet") {
			doc.Stylesheets = append(doc.Stylesheets, resolve(src.URL, href))
			links = append(links, n)
		}
	}
	// links are spliced separately, in front of content
	for _, n := range links {
		n.Parent.RemoveChild(n)
	}

	// fragment root content: whatever is left in head followed by body
	var buf strings.Builder
	for part := documentElement.FirstChild; part != nil; part = part.NextSibling {
		if part.Type != html.ElementNode || (part.DataAtom != atom.Head && part.DataAtom != atom.Body) {
			continue
		}
		for c := part.FirstChild; c != nil; c = c.NextSibling {
			if err := html.Render(&buf, c); err != nil {
				return fmt.Errorf("unable to serialize html: %w", err)
			}
		}
	}
	doc.Markup = buf.String()
	return nil
}

// pseudoAttrPattern matches pseudo-attributes of xml-stylesheet processing
// instruction: href="..." or type='...'.
var pseudoAttrPattern = regexp.MustCompile(`([A-Za-z_][\w.-]*)\s*=\s*(?:"([^"]*)"|'([^']*)')`)

func pseudoAttrs(inst string) map[string]string {
	attrs := make(map[string]string)
	for _, m := range pseudoAttrPattern.FindAllStringSubmatch(inst, -1) {
		val := m[2]
		if len(val) == 0 {
			val = m[3]
		}
		attrs[m[1]] = html.UnescapeString(val)
	}
	return attrs
}

func parseXML(doc *Document, src Source) error {
	xd := etree.NewDocument()
	xd.ReadSettings = etree.ReadSettings{
		CharsetReader: charset.NewReaderLabel,
		Permissive:    true,
	}
	var r io.Reader = bytes.NewReader(src.Data)
	if src.CodePage != nil {
		r = src.CodePage.NewDecoder().Reader(r)
	}
	if _, err := xd.ReadFrom(r); err != nil {
		return fmt.Errorf("unable to parse xml: %w", err)
	}
	root := xd.Root()
	if root == nil {
		return fmt.Errorf("%w: xml without root element", ErrUnrecognized)
	}

	// Only prolog carries stylesheet instructions
	for _, tok := range xd.Child {
		if _, ok := tok.(*etree.Element); ok {
			break
		}
		pi, ok := tok.(*etree.ProcInst)
		if !ok || pi.Target != "xml-stylesheet" {
			continue
		}
		attrs := pseudoAttrs(pi.Inst)
		href := attrs["href"]
		if len(href) == 0 {
			continue
		}
		if typ := strings.ToLower(attrs["type"]); len(typ) > 0 && typ != "text/css" {
			// transformations are not stylesheets of the document
			continue
		}
		doc.Stylesheets = append(doc.Stylesheets, resolve(src.URL, href))
	}

	out := etree.NewDocument()
	out.SetRoot(root.Copy())
	markup, err := out.WriteToString()
	if err != nil {
		return fmt.Errorf("unable to serialize xml: %w", err)
	}
	doc.Markup = markup
	return nil
}

func parseText(doc *Document, src Source, contentType string) error {
	r, err := decodedReader(src, contentType)
	if err != nil {
		return fmt.Errorf("unable to detect encoding: %w", err)
	}
	text, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("unable to read text: %w", err)
	}
	doc.Markup = "<pre>" + html.EscapeString(string(text)) + "</pre>"
	return nil
}

func hasToken(list, token string) bool {
	for _, f := range strings.Fields(list) {
		if strings.EqualFold(f, token) {
			return true
		}
	}
	return false
}

func resolve(base *url.URL, ref string) string {
	if base == nil {
		return ref
	}
	u, err := base.Parse(ref)
	if err != nil {
		return ref
	}
	return u.String()
}
