package httpserver

import (
	"errors"
	"io/fs"
	"net/http"
	"path"
	"strings"
)

func (r *Router) cacheControl(w http.ResponseWriter) {
	if r.opts.Production {
		w.Header().Set("Cache-Control", "public, max-age=86400")
		return
	}
	w.Header().Set("Cache-Control", "no-cache, max-age=0")
}

func (r *Router) serveFile(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		data, err := fs.ReadFile(r.Static, name)
		if err != nil {
			http.NotFound(w, req)
			return
		}
		r.cacheControl(w)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(data)
	}
}

// handleStatic serves assets by path and falls back to the app shell for
// anything without a file extension.
func (r *Router) handleStatic(w http.ResponseWriter, req *http.Request) {
	name := strings.TrimPrefix(path.Clean("/"+req.URL.Path), "/")
	if name == "" || path.Ext(name) == "" {
		r.serveFile("index.html")(w, req)
		return
	}
	if _, err := fs.Stat(r.Static, name); errors.Is(err, fs.ErrNotExist) {
		http.NotFound(w, req)
		return
	}
	r.cacheControl(w)
	http.ServeFileFS(w, req, r.Static, name)
}
