package staticserver

import (
	"io/fs"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

const indexFile = "index.html"

// registerFrontendHandler answers GET and HEAD from files and falls back to
// index.html for unknown paths so client-side routes resolve.
func registerFrontendHandler(e *echo.Echo, files fs.FS) {
	fileServer := http.FileServer(http.FS(files))

	e.Match([]string{http.MethodGet, http.MethodHead}, "/*", func(c echo.Context) error {
		path := c.Request().URL.Path

		if path != "/" {
			cleanPath := strings.TrimPrefix(path, "/")
			if isFile(files, cleanPath) {
				fileServer.ServeHTTP(c.Response(), c.Request())
				return nil
			}
		}

		index, err := files.Open(indexFile)
		if err != nil {
			return echo.ErrNotFound
		}
		defer index.Close()

		if _, err := index.Stat(); err != nil {
			return echo.ErrNotFound
		}

		return c.Stream(http.StatusOK, "text/html; charset=utf-8", index)
	})
}

func isFile(files fs.FS, name string) bool {
	if !fs.ValidPath(name) {
		return false
	}
	info, err := fs.Stat(files, name)
	return err == nil && !info.IsDir()
}

// HasIndex reports whether files contains a top-level index.html.
func HasIndex(files fs.FS) bool {
	return files != nil && isFile(files, indexFile)
}
