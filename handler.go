package main

import (
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"path"
	"strconv"
	"strings"
	"syscall"
)

// Responder serves files below a root directory. Path resolution leans on
// http.Dir, which cleans the request path so it cannot escape the root.
type Responder struct {
	root    http.FileSystem
	types   *MimeTable
	listing *Listing
	logger  *slog.Logger
}

func (h *Responder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodOptions:
		// Pre-flight: empty 200, no path lookup.
		w.WriteHeader(http.StatusOK)
		return
	case http.MethodGet, http.MethodHead:
	default:
		w.Header().Set("Allow", "GET, HEAD, OPTIONS")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	upath := path.Clean("/" + r.URL.Path)
	f, err := h.root.Open(upath)
	if err != nil {
		h.openError(w, r, upath, err)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		h.logger.Error("stat failed", "path", upath, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	if info.IsDir() {
		h.serveDir(w, r, upath, f)
		return
	}
	h.serveFile(w, r, upath, f, info.Size())
}

// Missing and unreadable paths are a routine 404, anything else a logged 500.
func (h *Responder) openError(w http.ResponseWriter, r *http.Request, upath string, err error) {
	if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) || errors.Is(err, syscall.ENOTDIR) {
		http.NotFound(w, r)
		return
	}
	h.logger.Error("open failed", "path", upath, "error", err)
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

func (h *Responder) serveDir(w http.ResponseWriter, r *http.Request, upath string, d http.File) {
	if !strings.HasSuffix(r.URL.Path, "/") {
		localRedirect(w, r, upath+"/")
		return
	}

	index := path.Join(upath, "index.html")
	f, err := h.root.Open(index)
	if err == nil {
		defer f.Close()
		if info, serr := f.Stat(); serr == nil && !info.IsDir() {
			h.serveFile(w, r, index, f, info.Size())
			return
		}
	}

	h.listing.Render(w, upath, d)
}

func (h *Responder) serveFile(w http.ResponseWriter, r *http.Request, name string, f http.File, size int64) {
	w.Header().Set("Content-Type", h.types.Lookup(name))
	w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	if _, err := io.Copy(w, f); err != nil && !isClientGone(err) {
		h.logger.Error("write failed", "path", name, "error", err)
	}
}

// localRedirect replies like http.Redirect but keeps the query string.
func localRedirect(w http.ResponseWriter, r *http.Request, newPath string) {
	if q := r.URL.RawQuery; q != "" {
		newPath += "?" + q
	}
	w.Header().Set("Location", newPath)
	w.WriteHeader(http.StatusMovedPermanently)
}

// isClientGone reports whether a response write failed only because the
// client went away. Those failures are suppressed, not logged.
func isClientGone(err error) bool {
	return errors.Is(err, syscall.EPIPE) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, net.ErrClosed)
}
