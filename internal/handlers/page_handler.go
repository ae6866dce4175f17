package handlers

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
)

// PageHandler serves the form pages and their assets from a public dir
type PageHandler struct {
	dir      string
	notFound http.Handler
}

// NewPageHandler serves files under dir. Missing files and directories go
// to notFound.
func NewPageHandler(dir string, notFound http.Handler) *PageHandler {
	return &PageHandler{dir: dir, notFound: notFound}
}

// Page serves one fixed file, e.g. index.html for /
func (h *PageHandler) Page(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.serveFile(w, r, name)
	}
}

// Static serves the request path from the public dir
func (h *PageHandler) Static(w http.ResponseWriter, r *http.Request) {
	h.serveFile(w, r, r.URL.Path)
}

func (h *PageHandler) serveFile(w http.ResponseWriter, r *http.Request, name string) {
	// rooted Clean drops any .. that would leave dir
	full := filepath.Join(h.dir, filepath.FromSlash(path.Clean("/"+name)))

	info, err := os.Stat(full)
	if err != nil || info.IsDir() {
		h.notFound.ServeHTTP(w, r)
		return
	}
	http.ServeFile(w, r, full)
}
