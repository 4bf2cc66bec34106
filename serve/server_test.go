package serve

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap/zaptest"

	"docfrag/compose"
	"docfrag/config"
	"docfrag/fetch"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T) (*httptest.Server, string) {
	t.Helper()

	root := t.TempDir()
	files := map[string]string{
		"index.html":        `<a is="include-fragment" href="parts/header.html">Header</a>`,
		"docs/lazy.html":    `<pre>` + strings.Repeat("x\n", 200) + `</pre><a id="f" is="include-fragment" href="../parts/header.html" loading="lazy">later</a>`,
		"docs/escape.html":  `<a is="include-fragment" href="../../secret.html">secret</a>`,
		"parts/header.html": `<header>Site header</header>`,
		"style.css":         `header { color: red }`,
	}
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	// next to root, must not be reachable
	if err := os.WriteFile(filepath.Join(filepath.Dir(root), "secret.html"), []byte("<p>secret</p>"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.LoadConfiguration("")
	if err != nil {
		t.Fatal(err)
	}
	log := zaptest.NewLogger(t)
	fetcher, err := fetch.New(&cfg.Fetch, root, nil, log)
	if err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewServer(NewServer(root, compose.NewComposer(cfg, fetcher, log), log).Handler())
	t.Cleanup(srv.Close)
	return srv, root
}

func get(t *testing.T, uri string) (int, http.Header, string) {
	t.Helper()
	resp, err := http.Get(uri)
	if err != nil {
		t.Fatalf("GET %s: %v", uri, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp.StatusCode, resp.Header, string(body)
}

func TestServePages(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		name     string
		path     string
		status   int
		contains string
		missing  string
	}{
		{"index", "/", http.StatusOK, "<header>Site header</header>", ""},
		{"explicit page", "/index.html", http.StatusOK, `data-src="parts/header.html"`, ""},
		{"lazy untouched", "/docs/lazy.html", http.StatusOK, "later", "Site header"},
		{"lazy printed", "/docs/lazy.html?print", http.StatusOK, "Site header", "later"},
		{"lazy scrolled", "/docs/lazy.html?scroll=100&scroll=3900", http.StatusOK, "Site header", ""},
		{"unwrapped", "/index.html?unwrap=true", http.StatusOK, "<header>Site header</header>", "include-fragment"},
		{"outside of root", "/docs/escape.html", http.StatusOK, `href="../../secret.html"`, "<p>secret</p>"},
		{"static", "/style.css", http.StatusOK, "color: red", ""},
		{"bad scroll", "/index.html?scroll=down", http.StatusBadRequest, "bad scroll position", ""},
		{"not found", "/nope.html", http.StatusNotFound, "not found", ""},
		{"traversal", "/../secret.html", http.StatusNotFound, "", "secret"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, _, body := get(t, srv.URL+tt.path)
			if status != tt.status {
				t.Fatalf("status = %d, want %d\n%s", status, tt.status, body)
			}
			if len(tt.contains) > 0 && !strings.Contains(body, tt.contains) {
				t.Errorf("body does not contain %q:\n%s", tt.contains, body)
			}
			if len(tt.missing) > 0 && strings.Contains(body, tt.missing) {
				t.Errorf("body contains %q:\n%s", tt.missing, body)
			}
		})
	}
}

func TestServeHeaders(t *testing.T) {
	srv, _ := newTestServer(t)

	_, hdr, _ := get(t, srv.URL+"/index.html")
	if hdr.Get("X-Fragments-Loaded") != "1" || hdr.Get("X-Fragments-Reverted") != "0" {
		t.Errorf("fragment headers = %v", hdr)
	}
	if !strings.HasPrefix(hdr.Get("Content-Type"), "text/html") {
		t.Errorf("Content-Type = %q", hdr.Get("Content-Type"))
	}

	_, hdr, _ = get(t, srv.URL+"/docs/escape.html")
	if hdr.Get("X-Fragments-Reverted") != "1" {
		t.Errorf("fragment outside of root was not reverted: %v", hdr)
	}
}

func TestLocalPath(t *testing.T) {
	s := &Server{root: filepath.FromSlash("/srv/site")}

	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"/index.html", "/srv/site/index.html", true},
		{"/docs/../index.html", "/srv/site/index.html", true},
		{"/../../etc/passwd", "/srv/site/etc/passwd", true},
		{"/a\\..\\b", "", false},
		{"/a\x00b", "", false},
	}
	for _, tt := range tests {
		got, ok := s.localPath(tt.in)
		if ok != tt.ok || (ok && got != filepath.FromSlash(tt.want)) {
			t.Errorf("localPath(%q) = %q, %v, want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
