//go:build linux

package window

import (
	"sync"

	"github.com/malivvan/webkitgtk"
)

const webkitAppName = "deskshell"

func init() {
	Register("webkitgtk", newWebkitGTK)
}

// webkitWindow opens a WebKitGTK window. The library creates windows on
// its own event loop, so title and URL are recorded and applied in Run.
type webkitWindow struct {
	opts  Options
	mu    sync.Mutex
	title string
	url   string
}

func newWebkitGTK(opts Options) (Window, error) {
	return &webkitWindow{opts: opts, title: opts.Title}, nil
}

func (w *webkitWindow) SetTitle(title string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.title = title
}

func (w *webkitWindow) Navigate(url string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.url = url
	return nil
}

func (w *webkitWindow) Run() error {
	w.mu.Lock()
	title, url := w.title, w.url
	w.mu.Unlock()

	app := webkitgtk.New(webkitgtk.AppOptions{
		Name:  webkitAppName,
		Debug: w.opts.Debug,
	})
	app.Open(webkitgtk.WindowOptions{
		Title:  title,
		Width:  w.opts.Width,
		Height: w.opts.Height,
		URL:    url,
	})
	return app.Run()
}
