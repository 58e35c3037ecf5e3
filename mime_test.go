package main

import (
	"strings"
	"testing"
)

func TestMimeTableDocumentedTypes(t *testing.T) {
	table, err := loadMimeTable()
	if err != nil {
		t.Fatalf("loadMimeTable: %v", err)
	}

	tests := []struct {
		path string
		want string
	}{
		{"index.html", "text/html; charset=utf-8"},
		{"legacy.htm", "text/html; charset=utf-8"},
		{"app.css", "text/css; charset=utf-8"},
		{"app.js", "text/javascript; charset=utf-8"},
		{"data.json", "application/json; charset=utf-8"},
		{"logo.png", "image/png"},
		{"photo.jpg", "image/jpeg"},
		{"photo.jpeg", "image/jpeg"},
		{"anim.gif", "image/gif"},
		{"icon.svg", "image/svg+xml; charset=utf-8"},
		{"favicon.ico", "image/x-icon"},
		{"notes.txt", "text/plain; charset=utf-8"},
		{"readme.md", "text/markdown; charset=utf-8"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := table.Lookup(tt.path); got != tt.want {
				t.Errorf("Lookup(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestMimeTableCaseInsensitive(t *testing.T) {
	table, err := loadMimeTable()
	if err != nil {
		t.Fatalf("loadMimeTable: %v", err)
	}

	tests := []struct {
		path string
		want string
	}{
		{"INDEX.HTML", "text/html; charset=utf-8"},
		{"Photo.JPG", "image/jpeg"},
		{"styles.CsS", "text/css; charset=utf-8"},
	}
	for _, tt := range tests {
		if got := table.Lookup(tt.path); got != tt.want {
			t.Errorf("Lookup(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestMimeTableFallback(t *testing.T) {
	table, err := loadMimeTable()
	if err != nil {
		t.Fatalf("loadMimeTable: %v", err)
	}

	// Not in the table, known to the platform registry.
	if got := table.Lookup("app.wasm"); got != "application/wasm" {
		t.Errorf("Lookup(app.wasm) = %q, want application/wasm", got)
	}

	// Unknown everywhere.
	if got := table.Lookup("blob.zz9"); got != fallbackType {
		t.Errorf("Lookup(blob.zz9) = %q, want %q", got, fallbackType)
	}
	if got := table.Lookup("Makefile"); got != fallbackType {
		t.Errorf("Lookup(Makefile) = %q, want %q", got, fallbackType)
	}
}

func TestMimeTableEntriesWellFormed(t *testing.T) {
	table, err := loadMimeTable()
	if err != nil {
		t.Fatalf("loadMimeTable: %v", err)
	}
	for ext := range table.types {
		if !strings.HasPrefix(ext, ".") {
			t.Errorf("entry %q does not start with a dot", ext)
		}
		if ext != strings.ToLower(ext) {
			t.Errorf("entry %q is not lowercase", ext)
		}
	}
}
