package fetch

import (
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/h2non/filetype"
)

type docClass int

const (
	classNone docClass = iota
	classHTML
	classXML
	classText
)

// classify decides how resource of given media type is parsed. Only markup
// languages and plain text make document fragments.
func classify(mediaType string) docClass {
	switch mediaType {
	case "text/html":
		return classHTML
	case "text/plain":
		return classText
	case "application/xhtml+xml", "application/xml", "text/xml":
		return classXML
	}
	if strings.HasSuffix(mediaType, "+xml") {
		return classXML
	}
	return classNone
}

// extension table takes precedence over system mime database which is often
// incomplete or plain wrong for markup.
var mediaTypesByExt = map[string]string{
	".html":  "text/html",
	".htm":   "text/html",
	".xhtml": "application/xhtml+xml",
	".xht":   "application/xhtml+xml",
	".xml":   "application/xml",
	".xsl":   "application/xml",
	".svg":   "image/svg+xml",
	".txt":   "text/plain",
	".text":  "text/plain",
}

// mediaTypeByName guesses media type from file name, returns empty string
// when it cannot.
func mediaTypeByName(name string) string {
	ext := strings.ToLower(path.Ext(name))
	if len(ext) == 0 {
		return ""
	}
	if mt, ok := mediaTypesByExt[ext]; ok {
		return mt
	}
	if ct := mime.TypeByExtension(ext); len(ct) > 0 {
		return mediaTypeOf(ct)
	}
	return ""
}

// mediaTypeOf extracts lowercased media type from Content-Type value.
func mediaTypeOf(contentType string) string {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		// be lenient, servers send garbage
		mt, _, _ = strings.Cut(contentType, ";")
	}
	return strings.ToLower(strings.TrimSpace(mt))
}

// sniff detects content type of untyped data. Binary formats known to
// filetype win over generic detection, which would happily call many of them
// text.
func sniff(data []byte) string {
	if kind, err := filetype.Match(data); err == nil && kind != filetype.Unknown {
		return kind.MIME.Value
	}
	return http.DetectContentType(data)
}
