package handlers

import (
	"net/http"
	"os"
	"path"
	"path/filepath"

	"github.com/upb/rental-portal/utils"
)

// SPAHandler serves the single-page app build in dir. Paths that do not
// name a file get index.html so the client router can render them.
func SPAHandler(dir string) http.Handler {
	index := filepath.Join(dir, "index.html")

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := filepath.Join(dir, filepath.FromSlash(path.Clean("/"+r.URL.Path)))
		if serveFile(w, r, name) {
			return
		}

		w.Header().Set("Cache-Control", "no-store")
		if !serveFile(w, r, index) {
			_ = utils.WriteNotFound(w, "Frontend build not found")
		}
	})
}

// serveFile writes the regular file at name and reports whether it existed.
// http.ServeFile is avoided because it redirects index.html requests.
func serveFile(w http.ResponseWriter, r *http.Request, name string) bool {
	f, err := os.Open(name)
	if err != nil {
		return false
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		return false
	}

	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
	return true
}

// StaticHandler serves build assets that every page needs, including the
// public ones, so it is mounted outside the page guard.
func StaticHandler(dir string) http.Handler {
	return http.FileServer(http.Dir(dir))
}
