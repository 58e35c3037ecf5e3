package main

import (
	_ "embed"
	"errors"
	"fmt"
	"mime"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/xplshn/tracerr2"
)

//go:embed mime.yml
var mimeAsset []byte

const fallbackType = "application/octet-stream"

// MimeTable maps lowercased file extensions, leading dot included, to the
// Content-Type value served for them. Read-only after loading.
type MimeTable struct {
	types map[string]string
}

func loadMimeTable() (*MimeTable, error) {
	var types map[string]string
	if err := yaml.Unmarshal(mimeAsset, &types); err != nil {
		return nil, tracerr.Wrapf(err, "error parsing embedded mime table")
	}
	if len(types) == 0 {
		return nil, errors.New("embedded mime table is empty")
	}
	for ext, value := range types {
		if !strings.HasPrefix(ext, ".") {
			return nil, fmt.Errorf("mime table entry %q: extensions start with a dot", ext)
		}
		if ext != strings.ToLower(ext) {
			return nil, fmt.Errorf("mime table entry %q: extensions are lowercase", ext)
		}
		if value == "" {
			return nil, fmt.Errorf("mime table entry %q has an empty type", ext)
		}
	}
	return &MimeTable{types: types}, nil
}

// Lookup resolves the Content-Type for a file path: the embedded table
// first, then the platform registry, then octet-stream.
func (t *MimeTable) Lookup(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if ct, ok := t.types[ext]; ok {
		return ct
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return fallbackType
}
