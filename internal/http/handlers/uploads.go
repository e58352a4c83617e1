package handlers

import (
	"net/http"
	"os"
	"path"
	"strings"

	"inhouse52/internal/models"
)

// Uploads serves stored files under /uploads/. Directory listings are not
// exposed.
func Uploads(dir string) http.Handler {
	files := http.FileServer(noDirFS{http.Dir(dir)})
	return http.StripPrefix(models.UploadsPrefix, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := path.Clean("/" + r.URL.Path)
		if name == "/" || strings.HasSuffix(r.URL.Path, "/") {
			writeError(w, http.StatusNotFound, "file not found")
			return
		}
		w.Header().Set("X-Content-Type-Options", "nosniff")
		files.ServeHTTP(w, r)
	}))
}

type noDirFS struct {
	fs http.FileSystem
}

func (n noDirFS) Open(name string) (http.File, error) {
	f, err := n.fs.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if info.IsDir() {
		f.Close()
		return nil, os.ErrNotExist
	}
	return f, nil
}
