package server

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
)

// staticHandler serves the frontend build. Unknown paths get index.html so
// client-side routes resolve.
func (s *Server) staticHandler() http.Handler {
	if s.config.StaticDir == "" {
		return http.NotFoundHandler()
	}

	root := s.config.StaticDir
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := filepath.Join(root, filepath.FromSlash(path.Clean("/"+r.URL.Path)))
		if info, err := os.Stat(name); err == nil && !info.IsDir() {
			http.ServeFile(w, r, name)
			return
		}

		index := filepath.Join(root, "index.html")
		if _, err := os.Stat(index); err != nil {
			http.NotFound(w, r)
			return
		}
		http.ServeFile(w, r, index)
	})
}
