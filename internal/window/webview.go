//go:build cgo

package window

import (
	"fmt"
	"sync"

	webview "github.com/webview/webview_go"
)

func init() {
	Register("webview", newWebview)
}

// webviewWindow drives the platform webview (WebKitGTK, WKWebView, WebView2)
// through github.com/webview/webview_go.
type webviewWindow struct {
	w        webview.WebView
	stopOnce sync.Once
}

func newWebview(opts Options) (Window, error) {
	w := webview.New(opts.Debug)
	if w == nil {
		return nil, fmt.Errorf("%w: webview could not create a window", ErrUnavailable)
	}
	w.SetSize(opts.Width, opts.Height, webview.HintNone)
	if opts.Title != "" {
		w.SetTitle(opts.Title)
	}
	return &webviewWindow{w: w}, nil
}

func (v *webviewWindow) SetTitle(title string) {
	v.w.SetTitle(title)
}

func (v *webviewWindow) Navigate(url string) error {
	v.w.Navigate(url)
	return nil
}

func (v *webviewWindow) Run() error {
	v.w.Run()
	v.w.Destroy()
	return nil
}

func (v *webviewWindow) Bind(name string, fn any) error {
	return v.w.Bind(name, fn)
}

// Stop terminates the main loop; webview allows this from any goroutine.
func (v *webviewWindow) Stop() {
	v.stopOnce.Do(v.w.Terminate)
}
