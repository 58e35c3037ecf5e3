package main

import (
	"net/http"
	"strings"
	"testing"

	"github.com/alecthomas/chroma/v2/styles"
)

func TestThemeCSSVariables(t *testing.T) {
	css := themeCSS(styles.Fallback)
	for _, want := range []string{":root", "--bg:", "--fg:", "--link:"} {
		if !strings.Contains(css, want) {
			t.Errorf("themeCSS output %q does not contain %q", css, want)
		}
	}
}

func TestNewListingUnknownTheme(t *testing.T) {
	l, err := newListing(http.Dir(t.TempDir()), "definitely-not-a-theme", discardLogger())
	if err != nil {
		t.Fatalf("newListing: %v", err)
	}
	if l.css == "" {
		t.Error("listing css is empty, want fallback theme variables")
	}
}

func TestListingPage(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "b.txt", "data")
	writeFile(t, root, "a_dir/child.txt", "x")
	writeFile(t, root, "readme.md", "# Hello Project\n\nSome words.")
	srv := newTestServer(t, root)

	rec := doRequest(t, srv, http.MethodGet, "/")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if got, want := rec.Header().Get("Content-Type"), "text/html; charset=utf-8"; got != want {
		t.Errorf("Content-Type = %q, want %q", got, want)
	}
	checkBaseHeaders(t, rec)

	body := rec.Body.String()
	for _, want := range []string{`href="a_dir/"`, `href="b.txt"`, "4 B", "Hello Project"} {
		if !strings.Contains(body, want) {
			t.Errorf("listing does not contain %q", want)
		}
	}
	if strings.Contains(body, `href="../"`) {
		t.Error("root listing has a parent link")
	}
	if dir, file := strings.Index(body, "a_dir/"), strings.Index(body, "b.txt"); dir > file {
		t.Error("directories are not listed first")
	}
}

func TestListingSubdirHasParent(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "docs/guide.txt", "g")
	srv := newTestServer(t, root)

	rec := doRequest(t, srv, http.MethodGet, "/docs/")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `href="../"`) {
		t.Error("subdirectory listing has no parent link")
	}
	if !strings.Contains(body, "Index of /docs/") {
		t.Error("listing title does not name the directory")
	}
}

func TestListingEscapesNames(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a<b>.txt", "x")
	srv := newTestServer(t, root)

	rec := doRequest(t, srv, http.MethodGet, "/")

	body := rec.Body.String()
	if !strings.Contains(body, "a&lt;b&gt;.txt") {
		t.Error("entry name is not HTML-escaped")
	}
	if !strings.Contains(body, `href="a%3Cb%3E.txt"`) {
		t.Error("entry link is not URL-escaped")
	}
}

func TestListingSkipsHugeReadme(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "readme.md", strings.Repeat("a", maxReadmeSize+1))
	srv := newTestServer(t, root)

	rec := doRequest(t, srv, http.MethodGet, "/")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if strings.Contains(rec.Body.String(), "<article>") {
		t.Error("oversized readme was rendered")
	}
}

func TestListingUppercaseReadme(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "README.md", "# Shouting")
	srv := newTestServer(t, root)

	rec := doRequest(t, srv, http.MethodGet, "/")

	if !strings.Contains(rec.Body.String(), "Shouting") {
		t.Error("README.md was not rendered")
	}
}
