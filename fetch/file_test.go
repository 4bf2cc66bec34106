package fetch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap/zaptest"
	"golang.org/x/text/encoding/charmap"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(name), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(name, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return name
}

func fileURI(t *testing.T, name string) string {
	t.Helper()
	u, err := FileURL(name)
	if err != nil {
		t.Fatal(err)
	}
	return u.String()
}

func TestFileFetcher(t *testing.T) {
	root := t.TempDir()
	header := writeFile(t, filepath.Join(root, "parts", "header.html"), `<link rel="stylesheet" href="site.css"><header>Site</header>`)
	notes := writeFile(t, filepath.Join(root, "parts", "notes.txt"), "plain <notes>")
	writeFile(t, filepath.Join(root, "parts", "big.html"), "<p>"+string(make([]byte, 2048))+"</p>")
	outside := writeFile(t, filepath.Join(t.TempDir(), "secret.html"), "<p>secret</p>")

	f, err := NewFileFetcher(testFetchConfig(), root, nil, zaptest.NewLogger(t))
	if err != nil {
		t.Fatal(err)
	}

	t.Run("html", func(t *testing.T) {
		doc, err := f.Fetch(context.Background(), fileURI(t, header))
		if err != nil {
			t.Fatalf("Fetch() error = %v", err)
		}
		if doc.Markup != "<header>Site</header>" {
			t.Errorf("Markup = %q", doc.Markup)
		}
		if len(doc.Stylesheets) != 1 || doc.Stylesheets[0] != fileURI(t, filepath.Join(root, "parts", "site.css")) {
			t.Errorf("Stylesheets = %v", doc.Stylesheets)
		}
	})

	t.Run("text", func(t *testing.T) {
		doc, err := f.Fetch(context.Background(), fileURI(t, notes))
		if err != nil {
			t.Fatalf("Fetch() error = %v", err)
		}
		if doc.Markup != "<pre>plain &lt;notes&gt;</pre>" {
			t.Errorf("Markup = %q", doc.Markup)
		}
	})

	t.Run("outside of root", func(t *testing.T) {
		if _, err := f.Fetch(context.Background(), fileURI(t, outside)); !errors.Is(err, ErrForbidden) {
			t.Errorf("Fetch() error = %v, want ErrForbidden", err)
		}
	})

	t.Run("traversal", func(t *testing.T) {
		uri := fileURI(t, root) + "/parts/../../secret.html"
		if _, err := f.Fetch(context.Background(), uri); !errors.Is(err, ErrForbidden) {
			t.Errorf("Fetch() error = %v, want ErrForbidden", err)
		}
	})

	t.Run("too large", func(t *testing.T) {
		if _, err := f.Fetch(context.Background(), fileURI(t, filepath.Join(root, "parts", "big.html"))); !errors.Is(err, ErrTooLarge) {
			t.Errorf("Fetch() error = %v, want ErrTooLarge", err)
		}
	})

	t.Run("missing", func(t *testing.T) {
		if _, err := f.Fetch(context.Background(), fileURI(t, filepath.Join(root, "none.html"))); !errors.Is(err, os.ErrNotExist) {
			t.Errorf("Fetch() error = %v, want not exist", err)
		}
	})

	t.Run("directory", func(t *testing.T) {
		if _, err := f.Fetch(context.Background(), fileURI(t, filepath.Join(root, "parts"))); !errors.Is(err, ErrUnrecognized) {
			t.Errorf("Fetch() error = %v, want ErrUnrecognized", err)
		}
	})
}

func TestFileFetcherCodePage(t *testing.T) {
	root := t.TempDir()
	name := filepath.Join(root, "greeting.txt")
	if err := os.WriteFile(name, []byte{0xcf, 0xf0, 0xe8}, 0644); err != nil {
		t.Fatal(err)
	}

	f, err := NewFileFetcher(testFetchConfig(), "", charmap.Windows1251, zaptest.NewLogger(t))
	if err != nil {
		t.Fatal(err)
	}
	doc, err := f.Fetch(context.Background(), fileURI(t, name))
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if doc.Markup != "<pre>При</pre>" {
		t.Errorf("Markup = %q", doc.Markup)
	}
}

func TestFileURLRoundTrip(t *testing.T) {
	name := filepath.Join(t.TempDir(), "dir with space", "page.html")
	u, err := FileURL(name)
	if err != nil {
		t.Fatal(err)
	}
	if u.Scheme != "file" {
		t.Errorf("Scheme = %q", u.Scheme)
	}
	if got := PathFromURL(u); got != name {
		t.Errorf("PathFromURL() = %q, want %q", got, name)
	}
}
