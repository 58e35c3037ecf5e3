package main

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/dustin/go-humanize"
	"github.com/xplshn/tracerr2"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmdhtml "github.com/yuin/goldmark/renderer/html"
)

//go:embed html/listing.page.tmpl
var embedFS embed.FS

// maxReadmeSize caps how much markdown gets rendered into a listing page.
const maxReadmeSize = 800 * 1024

var md = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithParserOptions(
		parser.WithAutoHeadingID(),
	),
	goldmark.WithRendererOptions(
		gmdhtml.WithHardWraps(),
		gmdhtml.WithXHTML(),
		gmdhtml.WithUnsafe(),
	),
)

type ListingEntry struct {
	Name    string
	URL     template.URL
	Size    string
	IsDir   bool
	ModTime time.Time
}

type ListingPageData struct {
	Path    string
	Parent  string
	Entries []ListingEntry
	Readme  template.HTML
	CSS     template.CSS
}

// Listing renders the index page for directories without an index.html.
type Listing struct {
	root   http.FileSystem
	tmpl   *template.Template
	css    template.CSS
	logger *slog.Logger
}

func newListing(root http.FileSystem, themeName string, logger *slog.Logger) (*Listing, error) {
	theme := styles.Get(themeName)
	if theme == nil {
		theme = styles.Fallback
	}

	ts, err := template.New("listing.page.tmpl").Funcs(template.FuncMap{
		"formatTime": func(t time.Time) string {
			return t.Format("Jan 2, 2006 at 15:04 MST")
		},
	}).ParseFS(embedFS, "html/listing.page.tmpl")
	if err != nil {
		return nil, tracerr.Wrapf(err, "failed to parse listing template")
	}

	return &Listing{
		root:   root,
		tmpl:   ts,
		css:    template.CSS(themeCSS(theme)),
		logger: logger,
	}, nil
}

// Render writes the index page for the directory open as d.
func (l *Listing) Render(w http.ResponseWriter, upath string, d http.File) {
	infos, err := d.Readdir(-1)
	if err != nil {
		l.logger.Error("failed to read directory", "path", upath, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	entries := make([]ListingEntry, 0, len(infos))
	readmeName := ""
	for _, info := range infos {
		name := info.Name()
		entry := ListingEntry{
			Name:    name,
			IsDir:   info.IsDir(),
			ModTime: info.ModTime(),
		}
		href := (&url.URL{Path: name}).String()
		if info.IsDir() {
			entry.Name += "/"
			entry.URL = template.URL(href + "/")
			entry.Size = "-"
		} else {
			entry.URL = template.URL(href)
			entry.Size = toPretty(info.Size())
			if strings.EqualFold(name, "readme.md") && info.Size() <= maxReadmeSize {
				readmeName = name
			}
		}
		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].IsDir != entries[j].IsDir {
			return entries[i].IsDir
		}
		return entries[i].Name < entries[j].Name
	})

	data := &ListingPageData{
		Path:    upath,
		Entries: entries,
		CSS:     l.css,
	}
	if upath != "/" {
		data.Path += "/"
		data.Parent = "../"
	}
	if readmeName != "" {
		data.Readme = l.renderReadme(upath, readmeName)
	}

	var buf bytes.Buffer
	if err := l.tmpl.ExecuteTemplate(&buf, "listing", data); err != nil {
		l.logger.Error("failed to render listing", "path", upath, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil && !isClientGone(err) {
		l.logger.Error("write failed", "path", upath, "error", err)
	}
}

// renderReadme converts a directory's readme for the listing footer.
// Failures only cost the preview, never the listing.
func (l *Listing) renderReadme(upath, name string) template.HTML {
	f, err := l.root.Open(path.Join(upath, name))
	if err != nil {
		l.logger.Warn("failed to open readme", "path", upath, "error", err)
		return ""
	}
	defer f.Close()

	src, err := io.ReadAll(f)
	if err != nil {
		l.logger.Warn("failed to read readme", "path", upath, "error", err)
		return ""
	}

	var buf bytes.Buffer
	if err := md.Convert(src, &buf); err != nil {
		l.logger.Warn("markdown conversion failed", "path", upath, "error", err)
		return ""
	}
	return template.HTML(buf.String())
}

func toPretty(b int64) string {
	return humanize.Bytes(uint64(b))
}

// themeCSS expands a chroma style into the CSS variables the listing
// template reads.
func themeCSS(theme *chroma.Style) string {
	bg := theme.Get(chroma.Background)
	txt := theme.Get(chroma.Text)
	kw := theme.Get(chroma.Keyword)
	cm := theme.Get(chroma.Comment)
	ln := theme.Get(chroma.LiteralNumber)
	return fmt.Sprintf(`:root {
  --bg: %s; --fg: %s; --muted: %s;
  --link: %s; --accent: %s;
}`, bg.Background, txt.Colour, cm.Colour, kw.Colour, ln.Colour)
}
